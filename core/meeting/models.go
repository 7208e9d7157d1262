package meeting

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

type Status string

const (
	StatusPending   Status = "Pending"
	StatusConfirmed Status = "Confirmed"
	StatusRejected  Status = "Rejected"
)

var (
	AllStatuses = []Status{StatusPending, StatusConfirmed, StatusRejected}

	ErrInvalidStatus = errors.New("invalid status")
)

func ParseStatus(s string) (Status, error) {
	s = strings.TrimSpace(s)
	for _, st := range AllStatuses {
		if strings.EqualFold(string(st), s) {
			return st, nil
		}
	}
	return "", ErrInvalidStatus
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusRejected:
		return true
	default:
		return false
	}
}

// Upcoming reports whether the meeting may still take place.
func (s Status) Upcoming() bool {
	switch s {
	case StatusPending, StatusConfirmed:
		return true
	case StatusRejected:
		return false
	default:
		return false
	}
}

// Request is a meeting request from a parent to a teacher.
// The parent is identified by email, the teacher by ID.
type Request struct {
	ID                string `json:"id"`
	RequestedBy       string `json:"requestedBy"` // parent's name
	ParentID          string `json:"parentId"`    // parent's email
	TeacherID         string `json:"teacherId"`
	TeacherName       string `json:"teacherName"`
	Reason            string `json:"reason"`
	PreferredDateTime string `json:"preferredDateTime"`
	Status            Status `json:"status"`
}

// dateTimeLayouts are the accepted PreferredDateTime formats, the first one being the HTML datetime-local format.
var dateTimeLayouts = []string{"2006-01-02T15:04", time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04", "2006-01-02"}

// PreferredTime parses PreferredDateTime. Unparsable values sort last.
func (r Request) PreferredTime() (time.Time, bool) {
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(r.PreferredDateTime)); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// NewRequest contains information needed to request a meeting.
type NewRequest struct {
	TeacherID         string `json:"teacherId" validate:"notblank"`
	Reason            string `json:"reason" validate:"notblank"`
	PreferredDateTime string `json:"preferredDateTime" validate:"notblank"`
}

type StatusUpdate struct {
	Status Status `json:"status" validate:"required,oneof=Confirmed Rejected Pending"`
}
