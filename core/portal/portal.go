// Package portal bundles the stores of one client into an application context.
package portal

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/wazazi/core"
	"github.com/trezcool/wazazi/core/dashboard"
	"github.com/trezcool/wazazi/core/file"
	"github.com/trezcool/wazazi/core/meeting"
	"github.com/trezcool/wazazi/core/messaging"
	"github.com/trezcool/wazazi/core/user"
)

var ErrNoSession = errors.New("not logged in")

type Options struct {
	Validate    *validator.Validate
	Notifier    meeting.Notifier
	MaxFileSize int64
	// Seed loads the demo users and conversations into empty stores.
	Seed bool
}

type App struct {
	KV       core.KVStore
	Validate *validator.Validate
	Users    *user.Service
	Session  *user.Session
	Messages *messaging.Service
	Meetings *meeting.Service
	Files    *file.Service
}

// New builds the stores on top of kv and loads their persisted state.
func New(ctx context.Context, kv core.KVStore, opts Options) (*App, error) {
	var (
		accounts []user.Account
		convs    []messaging.Conversation
	)
	if opts.Seed {
		fx, err := LoadSeed()
		if err != nil {
			return nil, errors.Wrap(err, "loading seed")
		}
		if accounts, err = fx.Accounts(); err != nil {
			return nil, errors.Wrap(err, "seeding users")
		}
		if convs, err = fx.BuildConversations(messaging.NowFunc()); err != nil {
			return nil, errors.Wrap(err, "seeding conversations")
		}
	}

	usrSvc := user.NewService(kv, opts.Validate, accounts...)
	app := &App{
		KV:       kv,
		Validate: opts.Validate,
		Users:    usrSvc,
		Session:  user.NewSession(usrSvc, kv),
		Messages: messaging.NewService(kv, convs...),
		Meetings: meeting.NewService(kv, opts.Notifier),
		Files:    file.NewService(kv, opts.MaxFileSize),
	}
	if err := app.Load(ctx); err != nil {
		return nil, err
	}
	return app, nil
}

// Load (re)loads every store from the persisted snapshots.
func (app *App) Load(ctx context.Context) error {
	loaders := []struct {
		name string
		load func(context.Context) error
	}{
		{core.KeyUsers, app.Users.Load},
		{core.KeySession, app.Session.Load},
		{core.KeyConversations, app.Messages.Load},
		{core.KeyMeetings, app.Meetings.Load},
		{core.KeyFiles, app.Files.Load},
	}
	for _, l := range loaders {
		if err := l.load(ctx); err != nil {
			return errors.Wrapf(err, "loading %s", l.name)
		}
	}
	return nil
}

// Watch calls fn with the persistence key of every store that changes.
func (app *App) Watch(fn func(store string)) (unsubscribe func()) {
	unsubs := []func(){
		app.Users.OnChange(func() { fn(core.KeyUsers) }),
		app.Session.OnChange(func() { fn(core.KeySession) }),
		app.Messages.OnChange(func() { fn(core.KeyConversations) }),
		app.Meetings.OnChange(func() { fn(core.KeyMeetings) }),
		app.Files.OnChange(func() { fn(core.KeyFiles) }),
	}
	return func() {
		for _, unsub := range unsubs {
			unsub()
		}
	}
}

// Dashboard summarizes the stores for the session holder.
func (app *App) Dashboard() (dashboard.Summary, error) {
	usr, ok := app.Session.Current()
	if !ok {
		return dashboard.Summary{}, ErrNoSession
	}
	return app.DashboardFor(usr), nil
}

func (app *App) DashboardFor(usr user.User) dashboard.Summary {
	return dashboard.Summarize(usr, app.Messages.ForUser(usr.ID), app.Meetings.All(), app.Files.All())
}

// CurrentUser returns the session holder or ErrNoSession.
func (app *App) CurrentUser() (user.User, error) {
	usr, ok := app.Session.Current()
	if !ok {
		return user.User{}, ErrNoSession
	}
	return usr, nil
}
