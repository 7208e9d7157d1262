package emailsvc

import (
	"bytes"
	"fmt"
	"net/mail"
	"time"

	"github.com/trezcool/wazazi/core"
	"github.com/trezcool/wazazi/core/meeting"
	"github.com/trezcool/wazazi/core/user"
)

type UserFinder interface {
	GetByID(id string) (user.User, error)
	GetByEmail(email string) (user.User, error)
}

// MeetingNotifier emails the teacher about new requests and the parent about status changes.
type MeetingNotifier struct {
	users   UserFinder
	mailer  core.EmailService
	logger  core.Logger
	appName string
}

// NowFunc stamps the calendar invites.
var NowFunc = time.Now

var _ meeting.Notifier = (*MeetingNotifier)(nil)

func NewMeetingNotifier(conf *core.Config, users UserFinder, mailer core.EmailService, logger core.Logger) *MeetingNotifier {
	return &MeetingNotifier{users: users, mailer: mailer, logger: logger, appName: conf.AppName}
}

func (n *MeetingNotifier) MeetingRequested(req meeting.Request) {
	teacher, err := n.users.GetByID(req.TeacherID)
	if err != nil {
		n.logger.Warn(fmt.Sprintf("meeting %s: teacher %s not found", req.ID, req.TeacherID), err)
		return
	}
	n.mailer.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: teacher.Name, Address: teacher.Email}},
		Subject:      "New meeting request from " + req.RequestedBy,
		TemplateName: "meeting_requested",
		TemplateData: req,
	})
}

// MeetingStatusChanged emails the parent. Confirmations copy the teacher and carry a calendar invite.
func (n *MeetingNotifier) MeetingStatusChanged(req meeting.Request) {
	to := mail.Address{Name: req.RequestedBy, Address: req.ParentID}
	if parent, err := n.users.GetByEmail(req.ParentID); err == nil {
		to.Name = parent.Name
	}
	msg := &core.EmailMessage{
		To:           []mail.Address{to},
		Subject:      fmt.Sprintf("Meeting request %s", req.Status),
		TemplateName: "meeting_status",
		TemplateData: req,
	}

	if req.Status == meeting.StatusConfirmed {
		if teacher, err := n.users.GetByID(req.TeacherID); err == nil {
			msg.Cc = append(msg.Cc, mail.Address{Name: teacher.Name, Address: teacher.Email})
		}
		if invite, ok := meetingInvite(req, n.appName, NowFunc()); ok {
			if err := msg.Attach(bytes.NewReader(invite), "meeting.ics", "text/calendar; charset=utf-8; method=PUBLISH"); err != nil {
				n.logger.Warn(fmt.Sprintf("meeting %s: attaching invite: %v", req.ID, err), err)
			}
		} else {
			n.logger.Debug(fmt.Sprintf("meeting %s: no invite for %q", req.ID, req.PreferredDateTime))
		}
	}
	n.mailer.SendMessages(msg)
}
