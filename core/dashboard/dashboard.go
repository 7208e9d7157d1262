// Package dashboard computes the per-user aggregates shown on the dashboard.
// Every function is pure: it only reads the snapshots it is given.
package dashboard

import (
	"sort"

	"github.com/trezcool/wazazi/core/file"
	"github.com/trezcool/wazazi/core/meeting"
	"github.com/trezcool/wazazi/core/messaging"
	"github.com/trezcool/wazazi/core/user"
)

// RecentLimit is the number of items in each "recent" list.
const RecentLimit = 2

type Summary struct {
	UnreadMessages      int                      `json:"unreadMessages"`
	RecentConversations []messaging.Conversation `json:"recentConversations"`
	PendingMeetings     int                      `json:"pendingMeetings"`
	UpcomingMeetings    []meeting.Request        `json:"upcomingMeetings"`
	UpcomingCount       int                      `json:"upcomingMeetingsCount"`
	FilesCount          int                      `json:"filesCount"`
	RecentFiles         []file.Summary           `json:"recentFiles"`
}

// Summarize builds the dashboard of usr. convs are expected to be usr's conversations.
func Summarize(usr user.User, convs []messaging.Conversation, meetings []meeting.Request, files []file.File) Summary {
	upcoming := UpcomingMeetings(usr, meetings)
	recentFiles := RecentFiles(files)
	summaries := make([]file.Summary, 0, len(recentFiles))
	for _, f := range recentFiles {
		summaries = append(summaries, file.Summarize(f))
	}
	return Summary{
		UnreadMessages:      UnreadCount(convs),
		RecentConversations: RecentConversations(convs),
		PendingMeetings:     PendingCount(meetings),
		UpcomingMeetings:    upcoming,
		UpcomingCount:       len(upcoming),
		FilesCount:          len(files),
		RecentFiles:         summaries,
	}
}

// UnreadCount is the total number of messages in convs. There is no read tracking.
func UnreadCount(convs []messaging.Conversation) int {
	var total int
	for _, c := range convs {
		total += len(c.Messages)
	}
	return total
}

// RecentConversations returns the non-empty conversations with the latest last message first.
func RecentConversations(convs []messaging.Conversation) []messaging.Conversation {
	recent := make([]messaging.Conversation, 0, len(convs))
	for _, c := range convs {
		if len(c.Messages) > 0 {
			recent = append(recent, c)
		}
	}
	sort.SliceStable(recent, func(i, j int) bool {
		a, _ := recent[i].LastMessage()
		b, _ := recent[j].LastMessage()
		return a.Timestamp.After(b.Timestamp)
	})
	return head(recent)
}

// RecentFiles returns the last uploaded files, newest first. Files carry no timestamp: upload order is used.
func RecentFiles(files []file.File) []file.File {
	recent := make([]file.File, 0, RecentLimit)
	for i := len(files) - 1; i >= 0 && len(recent) < RecentLimit; i-- {
		recent = append(recent, files[i])
	}
	return recent
}

// UpcomingMeetings returns the Pending or Confirmed meetings involving usr, soonest first.
// usr is involved as the parent (by email) or as the teacher (by ID).
func UpcomingMeetings(usr user.User, meetings []meeting.Request) []meeting.Request {
	upcoming := make([]meeting.Request, 0)
	for _, m := range meetings {
		if (m.ParentID == usr.Email || m.TeacherID == usr.ID) && m.Status.Upcoming() {
			upcoming = append(upcoming, m)
		}
	}
	sort.SliceStable(upcoming, func(i, j int) bool {
		ti, iok := upcoming[i].PreferredTime()
		tj, jok := upcoming[j].PreferredTime()
		if iok != jok {
			return iok // unparsable dates last
		}
		return ti.Before(tj)
	})
	return head(upcoming)
}

func PendingCount(meetings []meeting.Request) int {
	var n int
	for _, m := range meetings {
		if m.Status == meeting.StatusPending {
			n++
		}
	}
	return n
}

// Participant returns the first participant of conv who is not usr.
func Participant(conv messaging.Conversation, usr user.User) (messaging.Participant, bool) {
	for _, p := range conv.Participants {
		if p.ID != usr.ID {
			return p, true
		}
	}
	return messaging.Participant{}, false
}

// MeetingParticipantName is the other party of m from usr's point of view.
func MeetingParticipantName(m meeting.Request, usr user.User) string {
	if usr.Role == user.RoleParent {
		return m.TeacherName
	}
	return m.RequestedBy
}

func head[T any](items []T) []T {
	if len(items) > RecentLimit {
		return items[:RecentLimit]
	}
	return items
}
