package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorsCarryStatus(t *testing.T) {
	cases := []struct {
		err    *Error
		status int
		code   string
	}{
		{Validation("", "bad"), http.StatusBadRequest, CodeValidation},
		{Auth(CodeInvalidCredentials, "nope"), http.StatusUnauthorized, CodeInvalidCredentials},
		{Forbidden(CodeQuotaExceeded, "limit"), http.StatusForbidden, CodeQuotaExceeded},
		{NotFound(CodeLessonNotFound, "missing"), http.StatusNotFound, CodeLessonNotFound},
		{Conflict(CodeAlreadyEnrolled, "dup"), http.StatusConflict, CodeAlreadyEnrolled},
		{Internal(errors.New("boom")), http.StatusInternalServerError, CodeInternal},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, tc.err.Status)
		assert.Equal(t, tc.code, tc.err.Code)
	}
}

func TestAsUnwrapsWrappedErrors(t *testing.T) {
	base := Forbidden(CodeNotEnrolled, "not enrolled in module")
	wrapped := fmt.Errorf("complete lesson: %w", base)

	got, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, CodeNotEnrolled, got.Code)
	assert.Equal(t, CodeNotEnrolled, CodeOf(wrapped))
	assert.True(t, errors.Is(wrapped, Forbidden(CodeNotEnrolled, "other text")))
	assert.False(t, errors.Is(wrapped, Forbidden(CodeQuotaExceeded, "")))
	assert.Equal(t, "", CodeOf(errors.New("plain")))
}
