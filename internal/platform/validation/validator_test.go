package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type signup struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
}

func TestStruct(t *testing.T) {
	v := New()

	assert.NoError(t, v.Struct(signup{Email: "ana@ntnu.no", Password: "longenough"}))

	err := v.Struct(signup{Email: "nope", Password: "short"})
	if assert.Error(t, err) {
		assert.Equal(t, "email: email; password: min=8", err.Error())
	}
}
