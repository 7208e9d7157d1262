package core_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/wazazi/core"
)

func TestValidationError(t *testing.T) {
	cause := errors.New("duplicate")
	err := core.NewValidationError(cause, core.FieldError{Field: "email", Error: "taken"})
	assert.EqualError(t, err, "duplicate")
	assert.ErrorIs(t, err, cause)

	err = core.NewValidationError(nil, core.FieldError{Field: "email", Error: "taken"})
	assert.EqualError(t, err, "email: taken")
}

func TestShutdownError(t *testing.T) {
	err := core.NewShutdownError("integrity issue")
	assert.True(t, core.IsShutdown(errors.Wrap(err, "handling request")))
	assert.False(t, core.IsShutdown(errors.New("integrity issue")))
}
