package emailsvc

import (
	"fmt"
	"strings"
	"time"

	"github.com/trezcool/wazazi/core/meeting"
)

const meetingDuration = 30 * time.Minute

var icsEscaper = strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\n", `\n`)

// meetingInvite renders req as an iCalendar event, in floating local time.
// It reports false when the preferred date cannot be parsed.
func meetingInvite(req meeting.Request, appName string, now time.Time) ([]byte, bool) {
	start, ok := req.PreferredTime()
	if !ok {
		return nil, false
	}
	const layout = "20060102T150405"

	var b strings.Builder
	line := func(format string, args ...interface{}) {
		_, _ = fmt.Fprintf(&b, format+"\r\n", args...)
	}
	line("BEGIN:VCALENDAR")
	line("VERSION:2.0")
	line("PRODID:-//%s//Meetings//EN", icsEscaper.Replace(appName))
	line("METHOD:PUBLISH")
	line("BEGIN:VEVENT")
	line("UID:%s@%s", req.ID, strings.ToLower(strings.ReplaceAll(appName, " ", "")))
	line("DTSTAMP:%sZ", now.UTC().Format(layout))
	line("DTSTART:%s", start.Format(layout))
	line("DTEND:%s", start.Add(meetingDuration).Format(layout))
	line("SUMMARY:%s", icsEscaper.Replace(fmt.Sprintf("Meeting between %s and %s", req.RequestedBy, req.TeacherName)))
	line("DESCRIPTION:%s", icsEscaper.Replace(req.Reason))
	line("STATUS:CONFIRMED")
	line("END:VEVENT")
	line("END:VCALENDAR")
	return []byte(b.String()), true
}
