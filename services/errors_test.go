package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDomainError(t *testing.T) {
	baseErr := errors.New("base error")
	domainErr := NewDomainError(ErrorTypeNotFound, "resource not found", baseErr)

	assert.Equal(t, ErrorTypeNotFound, domainErr.Type)
	assert.Equal(t, "resource not found", domainErr.Message)
	assert.Equal(t, baseErr, domainErr.Err)
	assert.NotNil(t, domainErr.Details)
}

func TestDomainError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *DomainError
		wantMsg string
	}{
		{
			name: "error with wrapped error",
			err: &DomainError{
				Type:    ErrorTypeNotFound,
				Message: "person not found",
				Err:     errors.New("db error"),
			},
			wantMsg: "not_found: person not found (db error)",
		},
		{
			name: "error without wrapped error",
			err: &DomainError{
				Type:    ErrorTypeValidation,
				Message: "invalid input",
				Err:     nil,
			},
			wantMsg: "validation: invalid input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.err.Error())
		})
	}
}

func TestDomainError_Unwrap(t *testing.T) {
	baseErr := errors.New("base error")
	domainErr := NewDomainError(ErrorTypeInternal, "internal error", baseErr)

	unwrapped := errors.Unwrap(domainErr)
	assert.Equal(t, baseErr, unwrapped)
}

func TestDomainError_Is(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{
			name:   "same error type",
			err:    NewDomainError(ErrorTypeNotFound, "not found", nil),
			target: ErrPersonNotFound,
			want:   true,
		},
		{
			name:   "different error type",
			err:    NewDomainError(ErrorTypeValidation, "validation", nil),
			target: ErrPersonNotFound,
			want:   false,
		},
		{
			name:   "not a domain error",
			err:    NewDomainError(ErrorTypeNotFound, "not found", nil),
			target: errors.New("regular error"),
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.Is(tt.err, tt.target))
		})
	}
}

func TestDomainError_WithDetail(t *testing.T) {
	err := NewDomainError(ErrorTypeValidation, "validation error", nil)

	err.WithDetail("field", "email").WithDetail("value", "invalid-email")

	assert.Equal(t, "email", err.Details["field"])
	assert.Equal(t, "invalid-email", err.Details["value"])
}

func TestIsNotFoundError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"person not found", ErrPersonNotFound, true},
		{"organization not found", ErrOrganizationNotFound, true},
		{"skill not found", ErrSkillNotFound, true},
		{"change event not found", ErrChangeEventNotFound, true},
		{"validation error", ErrInvalidInput, false},
		{"plain error", errors.New("nope"), false},
		{"nil error", nil, false},
		{"wrapped not found", fmt.Errorf("fetching: %w", ErrSkillNotFound), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsNotFoundError(tt.err))
		})
	}
}

func TestIsValidationError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"invalid input", ErrInvalidInput, true},
		{"invalid entity type", ErrInvalidEntityType, true},
		{"invalid proficiency", ErrInvalidProficiency, true},
		{"not found error", ErrPersonNotFound, false},
		{"plain error", errors.New("nope"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidationError(tt.err))
		})
	}
}

func TestIsConflictError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"duplicate email", ErrDuplicateEmail, true},
		{"duplicate skill name", ErrDuplicateSkillName, true},
		{"concurrent update", ErrConcurrentUpdate, true},
		{"not found error", ErrSkillNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsConflictError(tt.err))
		})
	}
}

func TestIsInternalError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"internal", ErrInternal, true},
		{"database", ErrDatabaseError, true},
		{"transaction failed", ErrTransactionFailed, true},
		{"external error", ErrChangeLogUnavailable, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsInternalError(tt.err))
		})
	}
}

func TestIsExternalError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"change log unavailable", ErrChangeLogUnavailable, true},
		{"reference fetch failed", ErrReferenceDataFetch, true},
		{"subscription unavailable", ErrSubscriptionUnavailable, true},
		{"internal error", ErrInternal, false},
		{"wrapped external", WrapError(ErrorTypeExternal, "refresh failed", errors.New("timeout")), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsExternalError(tt.err))
		})
	}
}

func TestGetErrorType(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"not found", ErrPersonNotFound, ErrorTypeNotFound},
		{"validation", ErrInvalidInput, ErrorTypeValidation},
		{"conflict", ErrDuplicateEmail, ErrorTypeConflict},
		{"internal", ErrInternal, ErrorTypeInternal},
		{"external", ErrReferenceDataFetch, ErrorTypeExternal},
		{"plain error", errors.New("nope"), ErrorType("")},
		{"nil", nil, ErrorType("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetErrorType(tt.err))
		})
	}
}

func TestGetErrorDetails(t *testing.T) {
	err := NewDomainError(ErrorTypeValidation, "bad field", nil).
		WithDetail("field", "proficiency")

	details := GetErrorDetails(err)
	require.NotNil(t, details)
	assert.Equal(t, "proficiency", details["field"])

	assert.Nil(t, GetErrorDetails(errors.New("plain")))
}

func TestWrapError(t *testing.T) {
	baseErr := errors.New("connection refused")
	wrapped := WrapError(ErrorTypeExternal, "change log unavailable", baseErr)

	assert.True(t, IsExternalError(wrapped))
	assert.True(t, errors.Is(wrapped, ErrChangeLogUnavailable))
	assert.ErrorContains(t, wrapped, "connection refused")
}

func TestSentinelTaxonomy(t *testing.T) {
	// Every sentinel must carry the type its category claims
	byType := map[ErrorType][]*DomainError{
		ErrorTypeNotFound: {
			ErrPersonNotFound,
			ErrOrganizationNotFound,
			ErrSkillNotFound,
			ErrSkillApplicationNotFound,
			ErrChangeEventNotFound,
		},
		ErrorTypeValidation: {
			ErrInvalidInput,
			ErrInvalidEntityType,
			ErrInvalidEntityID,
			ErrInvalidEmail,
			ErrInvalidProficiency,
		},
		ErrorTypeConflict: {
			ErrDuplicateEmail,
			ErrDuplicateSkillName,
			ErrConcurrentUpdate,
		},
		ErrorTypeInternal: {
			ErrInternal,
			ErrDatabaseError,
			ErrTransactionFailed,
			ErrCacheFailed,
		},
		ErrorTypeExternal: {
			ErrChangeLogUnavailable,
			ErrReferenceDataFetch,
			ErrSubscriptionUnavailable,
		},
	}

	for errType, sentinels := range byType {
		for _, sentinel := range sentinels {
			assert.Equal(t, errType, sentinel.Type, sentinel.Message)
		}
	}
}
