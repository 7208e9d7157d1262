package user

import (
	"bytes"
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/wazazi/core"
)

var (
	// errors
	ErrNotFound             = errors.New("user not found")
	ErrEmailExists          = errors.New("a user with this email already exists")
	ErrAuthenticationFailed = errors.New("invalid credentials")
	ErrInvalidRole          = errors.New("invalid role")
)

// Service manages the user accounts. Deleting a user does not touch anything referencing it.
type Service struct {
	accounts *core.Collection[Account]
	validate *validator.Validate
}

func NewService(kv core.KVStore, validate *validator.Validate, seed ...Account) *Service {
	return &Service{
		accounts: core.NewCollection(core.KeyUsers, kv, seed...),
		validate: validate,
	}
}

func (svc *Service) Load(ctx context.Context) error { return svc.accounts.Load(ctx) }

func (svc *Service) OnChange(fn func()) (unsubscribe func()) { return svc.accounts.OnChange(fn) }

// Authenticate returns the user matching all of email, password and role (case-insensitive).
// It fails with ErrAuthenticationFailed whichever field did not match.
func (svc *Service) Authenticate(email, pwd, role string) (User, error) {
	email = core.CleanString(email, true /* lower */)
	role = core.CleanString(role)
	acc, ok := svc.accounts.Find(func(a Account) bool {
		return a.Email == email && strings.EqualFold(string(a.Role), role)
	})
	if !ok || acc.CheckPassword(pwd) != nil {
		return User{}, ErrAuthenticationFailed
	}
	return acc.User, nil
}

// Register creates a user of any role under the account policy: the email must be
// well-formed and the password must not resemble the name or email.
func (svc *Service) Register(ctx context.Context, nu NewUser) (User, error) {
	nu.clean()
	if err := svc.validate.Struct(strictNewUser(nu)); err != nil {
		return User{}, err
	}
	return svc.register(ctx, nu)
}

// register validates nu and creates a new user, unless its email is already registered.
func (svc *Service) register(ctx context.Context, nu NewUser) (User, error) {
	nu.clean()
	if err := svc.validate.Struct(nu); err != nil {
		return User{}, err
	}

	acc := Account{
		User: User{
			ID:    core.NewID(),
			Name:  nu.Name,
			Email: nu.Email,
			Role:  nu.Role,
		},
	}
	if err := acc.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}

	err := svc.accounts.Mutate(ctx, func(accs []Account) ([]Account, error) {
		for _, a := range accs {
			if a.Email == acc.Email {
				return nil, core.NewValidationError(ErrEmailExists, core.FieldError{Field: "email", Error: ErrEmailExists.Error()})
			}
		}
		return append(accs, acc), nil
	})
	if err != nil {
		return User{}, err
	}
	return acc.User, nil
}

// Signup registers a Parent or Teacher. Admins are only created by the admin tool.
// Only blank fields, unknown roles and duplicate emails are rejected.
func (svc *Service) Signup(ctx context.Context, nu NewUser) (User, error) {
	nu.clean()
	if nu.Role == RoleAdmin {
		return User{}, invalidRoleError(nu.Role)
	}
	return svc.register(ctx, nu)
}

func (svc *Service) QueryAll() []User {
	return svc.query(func(Account) bool { return true })
}

func (svc *Service) GetByID(id string) (User, error) {
	if acc, ok := svc.accounts.Find(func(a Account) bool { return a.ID == id }); ok {
		return acc.User, nil
	}
	return User{}, ErrNotFound
}

func (svc *Service) GetByEmail(email string) (User, error) {
	email = core.CleanString(email, true /* lower */)
	if acc, ok := svc.accounts.Find(func(a Account) bool { return a.Email == email }); ok {
		return acc.User, nil
	}
	return User{}, ErrNotFound
}

// GetByIDOrEmail looks a user up by ID first, then by email.
func (svc *Service) GetByIDOrEmail(key string) (User, error) {
	if usr, err := svc.GetByID(core.CleanString(key)); err == nil {
		return usr, nil
	}
	return svc.GetByEmail(key)
}

func (svc *Service) Teachers() []User {
	return svc.query(func(a Account) bool { return a.Role == RoleTeacher })
}

func (svc *Service) Parents() []User {
	return svc.query(func(a Account) bool { return a.Role == RoleParent })
}

// Others returns every user but the one with excludedID.
func (svc *Service) Others(excludedID string) []User {
	return svc.query(func(a Account) bool { return a.ID != excludedID })
}

// SetPassword changes the password of the user identified by ID or email.
func (svc *Service) SetPassword(ctx context.Context, key, pwd string) error {
	usr, err := svc.GetByIDOrEmail(key)
	if err != nil {
		return err
	}
	var hashed Account
	if err := hashed.SetPassword(pwd); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	return svc.accounts.Mutate(ctx, func(accs []Account) ([]Account, error) {
		for i := range accs {
			if accs[i].ID == usr.ID {
				accs[i].PasswordHash = hashed.PasswordHash
			}
		}
		return accs, nil
	})
}

// RequestPasswordReset makes a reset token for the user with email.
func (svc *Service) RequestPasswordReset(email string, tokens ResetTokens) (PasswordReset, error) {
	email = core.CleanString(email, true /* lower */)
	acc, ok := svc.accounts.Find(func(a Account) bool { return a.Email == email })
	if !ok {
		return PasswordReset{}, ErrNotFound
	}
	return PasswordReset{User: acc.User, UID: EncodeUID(acc.User), Token: tokens.Make(acc)}, nil
}

// ResetPassword sets the new password of the user of a reset link. The link is single-use.
func (svc *Service) ResetPassword(ctx context.Context, data ResetUserPassword, tokens ResetTokens) error {
	if err := svc.validate.Struct(data); err != nil {
		return err
	}
	invalidLink := core.NewValidationError(ErrInvalidResetToken, core.FieldError{Field: "token", Error: ErrInvalidResetToken.Error()})

	id, err := decodeUID(data.UID)
	if err != nil {
		return invalidLink
	}
	acc, ok := svc.accounts.Find(func(a Account) bool { return a.ID == id })
	if !ok || tokens.Verify(acc, data.Token) != nil {
		return invalidLink
	}

	var hashed Account
	if err := hashed.SetPassword(data.Password); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	return svc.accounts.Mutate(ctx, func(accs []Account) ([]Account, error) {
		for i := range accs {
			if accs[i].ID == acc.ID {
				// the token was spent by a concurrent reset
				if !bytes.Equal(accs[i].PasswordHash, acc.PasswordHash) {
					return nil, invalidLink
				}
				accs[i].PasswordHash = hashed.PasswordHash
				return accs, nil
			}
		}
		return nil, invalidLink
	})
}

// Import adds accounts whose ID and email are both unknown, and reports how many were added.
func (svc *Service) Import(ctx context.Context, accs ...Account) (int, error) {
	var added int
	err := svc.accounts.Mutate(ctx, func(existing []Account) ([]Account, error) {
		for _, acc := range accs {
			dup := false
			for _, e := range existing {
				if e.ID == acc.ID || e.Email == acc.Email {
					dup = true
					break
				}
			}
			if !dup {
				existing = append(existing, acc)
				added++
			}
		}
		return existing, nil
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}

// Delete removes the users with the given ids. Unknown ids are ignored.
func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	del := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		del[id] = struct{}{}
	}
	return svc.accounts.Mutate(ctx, func(accs []Account) ([]Account, error) {
		kept := make([]Account, 0, len(accs))
		for _, a := range accs {
			if _, ok := del[a.ID]; !ok {
				kept = append(kept, a)
			}
		}
		return kept, nil
	})
}

func (svc *Service) query(pred func(Account) bool) []User {
	accs := svc.accounts.Filter(pred)
	users := make([]User, 0, len(accs))
	for _, a := range accs {
		users = append(users, a.User)
	}
	return users
}
