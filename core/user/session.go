package user

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/trezcool/wazazi/core"
)

// Session holds the currently authenticated user of one client, persisted under core.KeySession.
type Session struct {
	svc     *Service
	kv      core.KVStore
	current *core.Observable[*User]
}

func NewSession(svc *Service, kv core.KVStore) *Session {
	return &Session{
		svc:     svc,
		kv:      kv,
		current: core.NewObservable[*User](nil),
	}
}

// Load restores the persisted session marker, if any.
func (s *Session) Load(ctx context.Context) error {
	data, err := s.kv.Get(ctx, core.KeySession)
	if err != nil {
		if errors.Is(err, core.ErrKeyNotFound) {
			s.current.Set(nil)
			return nil
		}
		return errors.Wrap(err, "loading session")
	}
	var usr User
	if err := json.Unmarshal(data, &usr); err != nil {
		return errors.Wrap(err, "decoding session")
	}
	s.current.Set(&usr)
	return nil
}

// Current returns the session holder.
func (s *Session) Current() (User, bool) {
	if usr := s.current.Get(); usr != nil {
		return *usr, true
	}
	return User{}, false
}

func (s *Session) Subscribe(fn func(*User)) (unsubscribe func()) { return s.current.Subscribe(fn) }

func (s *Session) OnChange(fn func()) (unsubscribe func()) { return s.current.OnChange(fn) }

// Login authenticates the user and opens the session. A failed login leaves the session untouched.
func (s *Session) Login(ctx context.Context, email, pwd, role string) (User, error) {
	usr, err := s.svc.Authenticate(email, pwd, role)
	if err != nil {
		return User{}, err
	}
	if err := s.set(ctx, usr); err != nil {
		return User{}, err
	}
	return usr, nil
}

// Signup registers a Parent or Teacher and logs them in.
func (s *Session) Signup(ctx context.Context, nu NewUser) (User, error) {
	usr, err := s.svc.Signup(ctx, nu)
	if err != nil {
		return User{}, err
	}
	return s.Login(ctx, usr.Email, nu.Password, string(usr.Role))
}

// Logout clears the session and its persisted marker.
func (s *Session) Logout(ctx context.Context) error {
	s.current.Set(nil)
	return errors.Wrap(s.kv.Delete(ctx, core.KeySession), "clearing session")
}

// Users lists every user except the session holder.
func (s *Session) Users() []User {
	var id string
	if usr, ok := s.Current(); ok {
		id = usr.ID
	}
	return s.svc.Others(id)
}

// DeleteUser removes a user. Their conversations, meetings and files are left as they are.
func (s *Session) DeleteUser(ctx context.Context, id string) error {
	return s.svc.Delete(ctx, id)
}

func (s *Session) set(ctx context.Context, usr User) error {
	s.current.Set(&usr)
	data, err := json.Marshal(usr)
	if err != nil {
		return errors.Wrap(err, "encoding session")
	}
	return errors.Wrap(s.kv.Put(ctx, core.KeySession, data), "saving session")
}
