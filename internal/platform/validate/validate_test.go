// Copyright (c) 2026 Herdcount. All rights reserved.

package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herdcount/herdcount/internal/platform/apperr"
	"github.com/herdcount/herdcount/internal/platform/validate"
)

/*
TestValidator_Required tests the mandatory field validation logic.
*/
func TestValidator_Required(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		value    string
		hasError bool
	}{
		{"valid_string", "username", "rancher", false},
		{"empty_string", "username", "", true},
		{"whitespace_only", "username", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Required(tt.field, tt.value)

			if tt.hasError {
				assert.True(t, v.HasErrors())
				err := v.Err()
				require.NotNil(t, err)

				ae := apperr.As(err)
				require.NotNil(t, ae)
				assert.Equal(t, apperr.CodeInvalidInput, ae.Code)
				assert.Equal(t, tt.field, ae.Details[0].Field)
			} else {
				assert.False(t, v.HasErrors())
				assert.Nil(t, v.Err())
			}
		})
	}
}

/*
TestValidator_OneOf checks the enumerated-value rule.
*/
func TestValidator_OneOf(t *testing.T) {
	v := &validate.Validator{}
	v.OneOf("status", "active", "active", "inactive")
	assert.False(t, v.HasErrors())

	v.OneOf("status", "retired", "active", "inactive")
	assert.True(t, v.HasErrors())
}

/*
TestValidator_Chain_Failure tests error accumulation in the chain.
*/
func TestValidator_Chain_Failure(t *testing.T) {
	v := &validate.Validator{}

	err := v.
		Required("username", "").
		MaxLen("name", "abcdef", 3).
		Present("count", false).
		Err()

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Len(t, ae.Details, 3)
}

/*
TestIsUUID accepts canonical UUIDs only.
*/
func TestIsUUID(t *testing.T) {
	assert.True(t, validate.IsUUID("0190f2a4-5c1e-7b7e-9a55-1d2f0e3c4b5a"))
	assert.True(t, validate.IsUUID("0190F2A4-5C1E-7B7E-9A55-1D2F0E3C4B5A"))
	assert.False(t, validate.IsUUID("unknown"))
	assert.False(t, validate.IsUUID(""))
}

/*
TestValidator_NotEmpty treats whitespace as content.
*/
func TestValidator_NotEmpty(t *testing.T) {
	assert.NoError(t, (&validate.Validator{}).NotEmpty("username", "   ").Err())
	assert.NoError(t, (&validate.Validator{}).NotEmpty("username", "rancher").Err())

	err := (&validate.Validator{}).NotEmpty("username", "").Err()
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidInput))
}
