package meeting

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/wazazi/core"
	"github.com/trezcool/wazazi/core/user"
)

var ErrNotFound = errors.New("meeting request not found")

// Notifier is told about scheduling events. Implementations must not block.
type Notifier interface {
	MeetingRequested(req Request)
	MeetingStatusChanged(req Request)
}

type Service struct {
	requests *core.Collection[Request]
	notifier Notifier

	pendingCount *core.Computed[int]
}

func NewService(kv core.KVStore, notifier Notifier) *Service {
	svc := &Service{
		requests: core.NewCollection[Request](core.KeyMeetings, kv),
		notifier: notifier,
	}
	svc.pendingCount = core.NewComputed(svc.countPending, svc.requests)
	return svc
}

func (svc *Service) Load(ctx context.Context) error { return svc.requests.Load(ctx) }

func (svc *Service) OnChange(fn func()) (unsubscribe func()) { return svc.requests.OnChange(fn) }

// RequestMeeting files a Pending request from parent to the teacher.
func (svc *Service) RequestMeeting(
	ctx context.Context,
	reason, preferredDateTime string,
	parent user.User,
	teacherID, teacherName string,
) (Request, error) {
	req := Request{
		ID:                core.NewID(),
		RequestedBy:       parent.Name,
		ParentID:          parent.Email,
		TeacherID:         teacherID,
		TeacherName:       teacherName,
		Reason:            reason,
		PreferredDateTime: preferredDateTime,
		Status:            StatusPending,
	}
	err := svc.requests.Mutate(ctx, func(reqs []Request) ([]Request, error) {
		return append(reqs, req), nil
	})
	if err != nil {
		return Request{}, err
	}
	if svc.notifier != nil {
		svc.notifier.MeetingRequested(req)
	}
	return req, nil
}

// UpdateRequestStatus overwrites the status of request id, whatever it was.
// Updating a missing request is a no-op.
func (svc *Service) UpdateRequestStatus(ctx context.Context, id string, status Status) error {
	if !status.Valid() {
		return core.NewValidationError(ErrInvalidStatus, core.FieldError{Field: "status", Error: ErrInvalidStatus.Error()})
	}

	var (
		updated Request
		found   bool
	)
	err := svc.requests.Mutate(ctx, func(reqs []Request) ([]Request, error) {
		for i := range reqs {
			if reqs[i].ID == id {
				reqs[i].Status = status
				updated, found = reqs[i], true
			}
		}
		return reqs, nil
	})
	if err != nil {
		return err
	}
	if found && svc.notifier != nil {
		svc.notifier.MeetingStatusChanged(updated)
	}
	return nil
}

func (svc *Service) All() []Request { return svc.requests.Items() }

func (svc *Service) Get(id string) (Request, error) {
	if req, ok := svc.requests.Find(func(r Request) bool { return r.ID == id }); ok {
		return req, nil
	}
	return Request{}, ErrNotFound
}

// ForParent returns the requests filed by the parent with the given email.
func (svc *Service) ForParent(email string) []Request {
	return svc.requests.Filter(func(r Request) bool { return r.ParentID == email })
}

func (svc *Service) ForTeacher(teacherID string) []Request {
	return svc.requests.Filter(func(r Request) bool { return r.TeacherID == teacherID })
}

// ForUser returns what usr gets to see: parents their own requests, teachers the ones addressed to them.
func (svc *Service) ForUser(usr user.User) []Request {
	switch usr.Role {
	case user.RoleParent:
		return svc.ForParent(usr.Email)
	case user.RoleTeacher:
		return svc.ForTeacher(usr.ID)
	case user.RoleAdmin:
		return []Request{}
	default:
		return []Request{}
	}
}

// PendingCount is the live number of Pending requests.
func (svc *Service) PendingCount() *core.Computed[int] { return svc.pendingCount }

func (svc *Service) countPending() int {
	var n int
	for _, r := range svc.requests.Items() {
		if r.Status == StatusPending {
			n++
		}
	}
	return n
}
