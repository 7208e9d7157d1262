package meeting_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/wazazi/core/meeting"
	"github.com/trezcool/wazazi/core/user"
	"github.com/trezcool/wazazi/storage/kv/memkv"
)

var (
	john = user.User{ID: "parent1", Name: "John Doe", Email: "parent1@family.com", Role: user.RoleParent}
	jane = user.User{ID: "teacher1", Name: "Jane Smith", Email: "teacher1@school.com", Role: user.RoleTeacher}
)

type notifierSpy struct {
	mu        sync.Mutex
	requested []meeting.Request
	changed   []meeting.Request
}

func (n *notifierSpy) MeetingRequested(req meeting.Request) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.requested = append(n.requested, req)
}

func (n *notifierSpy) MeetingStatusChanged(req meeting.Request) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changed = append(n.changed, req)
}

func TestService_scenario(t *testing.T) {
	ctx := context.Background()
	kv := memkv.New()
	spy := new(notifierSpy)
	svc := meeting.NewService(kv, spy)
	require.NoError(t, svc.Load(ctx))

	req, err := svc.RequestMeeting(ctx, "Grades", "2024-05-10T15:00", john, jane.ID, jane.Name)
	require.NoError(t, err)
	assert.Equal(t, meeting.Request{
		ID:                req.ID,
		RequestedBy:       "John Doe",
		ParentID:          "parent1@family.com",
		TeacherID:         "teacher1",
		TeacherName:       "Jane Smith",
		Reason:            "Grades",
		PreferredDateTime: "2024-05-10T15:00",
		Status:            meeting.StatusPending,
	}, req)
	assert.Equal(t, []meeting.Request{req}, spy.requested)
	assert.Equal(t, 1, svc.PendingCount().Get())

	other, err := svc.RequestMeeting(ctx, "Trip", "2024-05-11T09:00", john, jane.ID, jane.Name)
	require.NoError(t, err)

	require.NoError(t, svc.UpdateRequestStatus(ctx, req.ID, meeting.StatusConfirmed))
	got, err := svc.Get(req.ID)
	require.NoError(t, err)
	want := req
	want.Status = meeting.StatusConfirmed
	assert.Equal(t, want, got, "only the status changes")
	assert.Equal(t, []meeting.Request{want}, spy.changed)
	assert.Equal(t, 1, svc.PendingCount().Get())

	untouched, err := svc.Get(other.ID)
	require.NoError(t, err)
	assert.Equal(t, other, untouched)

	// transitions are not restricted
	require.NoError(t, svc.UpdateRequestStatus(ctx, req.ID, meeting.StatusPending))
	got, _ = svc.Get(req.ID)
	assert.Equal(t, meeting.StatusPending, got.Status)

	// persisted
	reloaded := meeting.NewService(kv, nil)
	require.NoError(t, reloaded.Load(ctx))
	assert.Equal(t, svc.All(), reloaded.All())
	assert.Equal(t, 2, reloaded.PendingCount().Get())
}

func TestService_UpdateRequestStatus(t *testing.T) {
	ctx := context.Background()
	spy := new(notifierSpy)
	svc := meeting.NewService(memkv.New(), spy)
	require.NoError(t, svc.Load(ctx))

	require.NoError(t, svc.UpdateRequestStatus(ctx, "ghost", meeting.StatusConfirmed))
	assert.Empty(t, spy.changed, "missing requests are ignored")

	err := svc.UpdateRequestStatus(ctx, "ghost", "Maybe")
	assert.ErrorIs(t, err, meeting.ErrInvalidStatus)

	_, err = svc.Get("ghost")
	assert.ErrorIs(t, err, meeting.ErrNotFound)
}

func TestService_ForUser(t *testing.T) {
	ctx := context.Background()
	svc := meeting.NewService(memkv.New(), nil)
	require.NoError(t, svc.Load(ctx))

	mary := user.User{ID: "parent2", Name: "Mary", Email: "mary@family.com", Role: user.RoleParent}
	peter := user.User{ID: "teacher2", Name: "Peter", Email: "peter@school.com", Role: user.RoleTeacher}
	admin := user.User{ID: "admin0", Role: user.RoleAdmin}

	r1, err := svc.RequestMeeting(ctx, "a", "2024-05-10T15:00", john, jane.ID, jane.Name)
	require.NoError(t, err)
	r2, err := svc.RequestMeeting(ctx, "b", "2024-05-10T15:00", mary, jane.ID, jane.Name)
	require.NoError(t, err)
	r3, err := svc.RequestMeeting(ctx, "c", "2024-05-10T15:00", john, peter.ID, peter.Name)
	require.NoError(t, err)

	assert.Equal(t, []meeting.Request{r1, r3}, svc.ForUser(john))
	assert.Equal(t, []meeting.Request{r1, r2}, svc.ForUser(jane))
	assert.Equal(t, []meeting.Request{r3}, svc.ForUser(peter))
	assert.Empty(t, svc.ForUser(admin))
	assert.Len(t, svc.All(), 3)
}

func TestParseStatus(t *testing.T) {
	got, err := meeting.ParseStatus(" confirmed ")
	require.NoError(t, err)
	assert.Equal(t, meeting.StatusConfirmed, got)

	_, err = meeting.ParseStatus("done")
	assert.ErrorIs(t, err, meeting.ErrInvalidStatus)
}

func TestRequest_PreferredTime(t *testing.T) {
	tests := []struct {
		in     string
		wantOK bool
	}{
		{"2024-05-10T15:00", true},
		{"2024-05-10T15:00:00Z", true},
		{"2024-05-10", true},
		{"next friday", false},
	}
	for _, tt := range tests {
		_, ok := meeting.Request{PreferredDateTime: tt.in}.PreferredTime()
		assert.Equal(t, tt.wantOK, ok, tt.in)
	}
}
