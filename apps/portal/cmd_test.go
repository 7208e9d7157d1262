package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/wazazi/core/meeting"
	"github.com/trezcool/wazazi/core/portal"
	"github.com/trezcool/wazazi/core/user"
	"github.com/trezcool/wazazi/tests"
)

func setup(t *testing.T) (*client, *bytes.Buffer) {
	out := new(bytes.Buffer)
	return &client{app: testutil.NewApp(t, true), out: out}, out
}

func (c *client) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	buf := c.out.(*bytes.Buffer)
	buf.Reset()
	require.NoError(t, c.run(args), buf.String())
	return buf.String()
}

func (c *client) login(t *testing.T, email, role, password string) {
	t.Helper()
	c.mustRun(t, "logout")
	c.mustRun(t, "login", "--email", email, "--role", role, "--password", password)
	usr, ok := c.app.Session.Current()
	require.True(t, ok)
	require.Equal(t, email, usr.Email)
}

func Test_client_session(t *testing.T) {
	c, out := setup(t)

	assert.ErrorIs(t, c.run([]string{"whoami"}), portal.ErrNoSession)
	assert.Contains(t, out.String(), "not logged in")

	err := c.run([]string{"login", "--email", "parent1@family.com", "--role", "Teacher", "--password", "password"})
	assert.ErrorIs(t, err, user.ErrAuthenticationFailed)
	_, ok := c.app.Session.Current()
	assert.False(t, ok)

	readPasswordFunc = func(int) ([]byte, error) { return []byte("password"), nil }
	assert.Contains(t, c.mustRun(t, "login", "--email", "PARENT1@family.com", "--role", "parent"), "logged in as John Doe (Parent)")
	assert.Contains(t, c.mustRun(t, "whoami"), "John Doe <parent1@family.com> Parent (parent1)")

	c.mustRun(t, "logout")
	_, ok = c.app.Session.Current()
	assert.False(t, ok)
}

func Test_client_signup(t *testing.T) {
	c, _ := setup(t)

	err := c.run([]string{"signup", "--name", "Eve", "--email", "eve@school.com", "--role", "Admin", "--password", "S3cure!pwd"})
	assert.ErrorIs(t, err, user.ErrInvalidRole)

	err = c.run([]string{"signup", "--name", "Jane", "--email", "teacher1@school.com", "--role", "Teacher", "--password", "S3cure!pwd"})
	assert.ErrorIs(t, err, user.ErrEmailExists)

	out := c.mustRun(t, "signup", "--name", "Ann Lee", "--email", "ann@school.com", "--role", "teacher", "--password", "S3cure!pwd")
	assert.Contains(t, out, "welcome Ann Lee! logged in as Teacher")

	usr, ok := c.app.Session.Current()
	require.True(t, ok)
	assert.Equal(t, "ann@school.com", usr.Email)
}

func Test_client_users(t *testing.T) {
	c, _ := setup(t)
	c.login(t, "parent1@family.com", "Parent", "password")

	assert.ErrorIs(t, c.run([]string{"users"}), errPermissionDenied)
	out := c.mustRun(t, "users", "--role", "teacher")
	assert.Contains(t, out, "teacher1@school.com")
	assert.Contains(t, out, "teacher2@school.com")
	assert.NotContains(t, out, "mary.williams@parent.com")
	assert.ErrorIs(t, c.run([]string{"users", "rm", "teacher2"}), errPermissionDenied)

	c.login(t, "admin@admin.com", "Admin", "admin")
	out = c.mustRun(t, "users")
	assert.Contains(t, out, "parent1@family.com")
	assert.NotContains(t, out, "admin@admin.com")

	assert.ErrorIs(t, c.run([]string{"users", "rm", "admin0"}), errPermissionDenied)
	assert.ErrorIs(t, c.run([]string{"users", "rm", "ghost"}), user.ErrNotFound)
	assert.Contains(t, c.mustRun(t, "users", "rm", "teacher2"), "deleted teacher2@school.com")
	_, err := c.app.Users.GetByID("teacher2")
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func Test_client_messages(t *testing.T) {
	c, _ := setup(t)
	c.login(t, "parent1@family.com", "Parent", "password")

	out := c.mustRun(t, "conversations")
	assert.Contains(t, out, "conv1")
	assert.Contains(t, out, "John Doe: Thanks for the reminder!")
	assert.NotContains(t, out, "conv2")

	assert.ErrorIs(t, c.run([]string{"send", "conv2", "hello"}), errPermissionDenied)

	c.mustRun(t, "send", "conv1", "See", "you", "Friday")
	conv1, err := c.app.Messages.Get("conv1")
	require.NoError(t, err)
	require.Len(t, conv1.Messages, 3)
	assert.Equal(t, "See you Friday", conv1.Messages[2].Text)
	assert.Equal(t, "parent1", conv1.Messages[2].SenderID)

	conv2, err := c.app.Messages.Get("conv2")
	require.NoError(t, err)
	assert.Len(t, conv2.Messages, 1)

	out = c.mustRun(t, "conversations", "conv1")
	assert.Contains(t, out, "John Doe: See you Friday")

	// one-to-one conversations are reused
	c.mustRun(t, "send", "--to", "teacher1", "--title", "Another one", "Hi again")
	assert.Len(t, c.app.Messages.ForUser("parent1"), 1)

	err = c.run([]string{"send", "--to", "ghost", "--title", "Hi", "Hello"})
	assert.Contains(t, c.describe(err), "unknown recipient ghost")

	c.mustRun(t, "send", "--to", "teacher2", "--title", "Field trip", "Is it on Monday?")
	assert.Len(t, c.app.Messages.ForUser("parent1"), 2)

	c.mustRun(t, "send", "--to", "teacher1", "--group", "--title", "Study group", "Welcome")
	assert.Len(t, c.app.Messages.ForUser("parent1"), 3)

	c.mustRun(t, "join", "conv2")
	c.mustRun(t, "join", "conv2")
	conv2, err = c.app.Messages.Get("conv2")
	require.NoError(t, err)
	assert.Equal(t, []string{"parent2", "teacher1", "parent1"}, conv2.ParticipantIDs)
}

func Test_client_meetings(t *testing.T) {
	c, _ := setup(t)
	c.login(t, "teacher1@school.com", "Teacher", "password")
	assert.ErrorIs(t, c.run([]string{"request", "--teacher", "teacher1", "--reason", "x", "--at", "2024-05-10T15:00"}), errPermissionDenied)

	c.login(t, "parent1@family.com", "Parent", "password")
	err := c.run([]string{"request", "--teacher", "parent2", "--reason", "Grades", "--at", "2024-05-10T15:00"})
	assert.Contains(t, c.describe(err), "teacher: not a teacher")

	c.mustRun(t, "request", "--teacher", "teacher1", "--reason", "Grades", "--at", "2024-05-10T15:00")
	reqs := c.app.Meetings.ForParent("parent1@family.com")
	require.Len(t, reqs, 1)
	want := reqs[0]
	assert.Equal(t, meeting.StatusPending, want.Status)
	assert.Equal(t, "teacher1", want.TeacherID)

	assert.ErrorIs(t, c.run([]string{"confirm", want.ID}), errPermissionDenied)

	c.login(t, "teacher2@school.com", "Teacher", "password")
	assert.ErrorIs(t, c.run([]string{"confirm", want.ID}), errPermissionDenied)

	c.login(t, "teacher1@school.com", "Teacher", "password")
	assert.Contains(t, c.mustRun(t, "meetings"), "Grades")
	c.mustRun(t, "confirm", want.ID)

	got, err := c.app.Meetings.Get(want.ID)
	require.NoError(t, err)
	want.Status = meeting.StatusConfirmed
	assert.Equal(t, want, got)

	c.login(t, "admin@admin.com", "Admin", "admin")
	c.mustRun(t, "reject", want.ID)
	got, err = c.app.Meetings.Get(want.ID)
	require.NoError(t, err)
	assert.Equal(t, meeting.StatusRejected, got.Status)
}

func Test_client_files(t *testing.T) {
	c, _ := setup(t)
	path := filepath.Join(t.TempDir(), "report.txt")
	require.NoError(t, os.WriteFile(path, []byte("all good"), 0o600))

	c.login(t, "teacher1@school.com", "Teacher", "password")
	assert.Contains(t, c.mustRun(t, "upload", path), "uploaded report.txt")
	assert.Error(t, c.run([]string{"upload", filepath.Join(t.TempDir(), "missing.txt")}))
	require.Equal(t, 1, c.app.Files.Count())

	f := c.app.Files.All()[0]
	assert.Contains(t, c.mustRun(t, "files"), "report.txt")

	c.login(t, "parent1@family.com", "Parent", "password")
	assert.ErrorIs(t, c.run([]string{"rm", f.ID}), errPermissionDenied)

	c.login(t, "teacher1@school.com", "Teacher", "password")
	c.mustRun(t, "rm", f.ID)
	assert.Equal(t, 0, c.app.Files.Count())
}

func Test_client_dashboard(t *testing.T) {
	c, _ := setup(t)
	c.login(t, "parent1@family.com", "Parent", "password")
	c.mustRun(t, "request", "--teacher", "teacher1", "--reason", "Grades", "--at", "2024-05-10T15:00")

	out := c.mustRun(t, "dashboard")
	assert.Contains(t, out, "Welcome back, John Doe")
	assert.Contains(t, out, "Messages: 2")
	assert.Contains(t, out, "Jane Smith: Thanks for the reminder! We're confirmed for 3 PM.")
	assert.Contains(t, out, "Meetings: 1 upcoming, 1 pending")
	assert.Contains(t, out, "2024-05-10T15:00 with Jane Smith (Pending)")
	assert.Contains(t, out, "Files: 0")
}
