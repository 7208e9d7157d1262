package user

import (
	"fmt"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/trezcool/wazazi/core"
)

var (
	roleTag  = "role"
	roleText = "invalid role"

	// password policy
	pwdMaxSim      = .7
	pwdAttrSimTag  = "pwdtoosim"
	pwdAttrSimText = "password cannot be similar to user attributes"
)

// InitValidators registers the user validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(roleTag, roleValidation)
	core.RegisterCustomTranslation(validate, translator, roleTag, roleText)

	validate.RegisterStructValidation(strictNewUserValidation, strictNewUser{})
	core.RegisterCustomTranslation(validate, translator, pwdAttrSimTag, pwdAttrSimText)
}

// Custom Validators

// roleValidation checks that the role is one of AllRoles.
func roleValidation(fl validator.FieldLevel) bool {
	switch role := fl.Field().Interface().(type) {
	case Role:
		return role.Valid()
	case string:
		return Role(role).Valid()
	default:
		return false
	}
}

// strictNewUserValidation rejects passwords too similar to the user's name or email.
func strictNewUserValidation(sl validator.StructLevel) {
	nu, ok := sl.Current().Interface().(strictNewUser)
	if !ok || nu.Password == "" {
		return
	}
	if tooSimilar(nu.Password, nu.Name) || tooSimilar(nu.Password, nu.Email) {
		sl.ReportError(nu.Password, "password", "Password", pwdAttrSimTag, "")
	}
}

func tooSimilar(pwd, usrAttr string) bool {
	if usrAttr == "" {
		return false
	}
	pwd, usrAttr = strings.ToLower(pwd), strings.ToLower(usrAttr)
	ratio := difflib.NewMatcher(strings.Split(pwd, ""), strings.Split(usrAttr, "")).QuickRatio()
	return ratio >= pwdMaxSim
}

func invalidRoleError(role Role) error {
	return core.NewValidationError(
		fmt.Errorf("%w: %q", ErrInvalidRole, role),
		core.FieldError{Field: "role", Error: roleText},
	)
}
