// Package testutil holds fixtures shared by the packages' tests.
package testutil

import (
	"context"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/wazazi/core"
	"github.com/trezcool/wazazi/core/meeting"
	"github.com/trezcool/wazazi/core/portal"
	"github.com/trezcool/wazazi/core/user"
	"github.com/trezcool/wazazi/storage/kv/memkv"
)

func init() {
	// hashing dominates test time otherwise
	user.HashCost = bcrypt.MinCost
}

type NopLogger struct{}

var _ core.Logger = NopLogger{}

func (NopLogger) Debug(string, ...interface{}) {}
func (NopLogger) Info(string, ...interface{})  {}
func (NopLogger) Warn(string, ...interface{})  {}
func (NopLogger) Error(string, ...interface{}) {}
func (NopLogger) Fatal(string, ...interface{}) {}

// Config returns a test-mode configuration with in-memory storage.
func Config() *core.Config {
	return &core.Config{
		Env:                       "TEST",
		TestMode:                  true,
		AppName:                   "Wazazi",
		SecretKey:                 "test-secret",
		FrontendBaseURL:           "http://localhost:4200",
		JWTExpirationDelta:        time.Hour,
		JWTRefreshExpirationDelta: 4 * time.Hour,
		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,
		MaxFileSize:               1 << 20,
		DefaultFromEmail:          "noreply@localhost",
		Server: core.ServerConfig{
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Storage: core.StorageConfig{Engine: "memory"},
	}
}

// NewValidator returns a validator with the core and user rules registered, and its translator.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate, translator := core.NewValidator()
	user.InitValidators(validate, translator)
	return validate, translator
}

// NewApp builds a portal over a fresh in-memory store.
func NewApp(t *testing.T, seed bool, notifier ...meeting.Notifier) *portal.App {
	t.Helper()

	validate, _ := NewValidator()
	return NewAppWith(t, validate, seed, notifier...)
}

// NewAppWith is NewApp with the caller's validator, for tests translating its errors.
func NewAppWith(t *testing.T, validate *validator.Validate, seed bool, notifier ...meeting.Notifier) *portal.App {
	t.Helper()

	opts := portal.Options{Validate: validate, MaxFileSize: Config().MaxFileSize, Seed: seed}
	if len(notifier) > 0 {
		opts.Notifier = notifier[0]
	}
	app, err := portal.New(context.Background(), memkv.New(), opts)
	require.NoError(t, err)
	return app
}

// CreateUser registers a user of any role, admins included.
func CreateUser(t *testing.T, svc *user.Service, name, email, pwd string, role user.Role) user.User {
	t.Helper()

	usr, err := svc.Register(context.Background(), user.NewUser{Name: name, Email: email, Password: pwd, Role: role})
	require.NoError(t, err, "CreateUser(%s)", email)
	return usr
}
