package user

import (
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/wazazi/core"
)

type Role string

// Roles
const (
	RoleParent  Role = "Parent"
	RoleTeacher Role = "Teacher"
	RoleAdmin   Role = "Admin"
)

var (
	AllRoles    = []Role{RoleParent, RoleTeacher, RoleAdmin}
	SignupRoles = []Role{RoleParent, RoleTeacher}

	// HashCost is the bcrypt cost of new password hashes.
	HashCost = bcrypt.DefaultCost

	Roles = []RoleInfo{
		{Name: "Parent", Value: RoleParent},
		{Name: "Teacher", Value: RoleTeacher},
		{Name: "Admin", Value: RoleAdmin},
	}
)

type RoleInfo struct {
	Name  string `json:"name"`
	Value Role   `json:"value"`
}

// ParseRole matches s against the known roles, ignoring case.
func ParseRole(s string) (Role, error) {
	s = core.CleanString(s)
	for _, role := range AllRoles {
		if strings.EqualFold(string(role), s) {
			return role, nil
		}
	}
	return "", ErrInvalidRole
}

func (r Role) Valid() bool {
	switch r {
	case RoleParent, RoleTeacher, RoleAdmin:
		return true
	default:
		return false
	}
}

func (r Role) Lower() string { return strings.ToLower(string(r)) }

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

func (u User) IsParent() bool  { return u.Role == RoleParent }
func (u User) IsTeacher() bool { return u.Role == RoleTeacher }
func (u User) IsAdmin() bool   { return u.Role == RoleAdmin }

// Account is a User as persisted, along with its credentials.
type Account struct {
	User
	PasswordHash []byte `json:"passwordHash"`
}

func (a *Account) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), HashCost)
	if err != nil {
		return err
	}
	a.PasswordHash = hash
	return nil
}

func (a *Account) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(pwd))
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Name     string `json:"name" validate:"notblank"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
	Role     Role   `json:"role" validate:"required,role"`
}

// strictNewUser adds the account policy enforced by the admin tool:
// an RFC 5322 email and a password unlike the name or email.
type strictNewUser struct {
	Name     string `json:"name" validate:"notblank"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     Role   `json:"role" validate:"required,role"`
}

func (nu *NewUser) clean() {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	if role, err := ParseRole(string(nu.Role)); err == nil {
		nu.Role = role
	}
}

// ResetUserPassword completes a password reset with the UID and token of the reset link.
type ResetUserPassword struct {
	UID             string `json:"uid" validate:"required"`
	Token           string `json:"token" validate:"required"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

// PasswordReset is what a reset link carries.
type PasswordReset struct {
	User  User
	UID   string
	Token string
}

// Credentials identify a user at login. Role is matched case-insensitively.
type Credentials struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required"`
}

func (c *Credentials) Clean() {
	c.Email = core.CleanString(c.Email, true /* lower */)
	c.Role = core.CleanString(c.Role)
}
