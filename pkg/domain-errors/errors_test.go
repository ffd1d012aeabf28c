package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	err := New(CodeNotFound, "wizard session not found")
	assert.True(t, HasCode(err, CodeNotFound))
	assert.False(t, HasCode(err, CodeBadRequest))
	assert.False(t, HasCode(errors.New("plain"), CodeNotFound))
}

func TestHasCode_Wrapped(t *testing.T) {
	inner := New(CodeUnprocessable, "empty placeholder")
	wrapped := fmt.Errorf("submit document request: %w", inner)
	assert.True(t, HasCode(wrapped, CodeUnprocessable))
	assert.Equal(t, CodeUnprocessable, CodeOf(wrapped))
}

func TestWrap_PreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeUnavailable, "external api unreachable")
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "external api unreachable", MessageOf(err))
}

func TestMessageOf_UncodedErrorDoesNotLeak(t *testing.T) {
	assert.Equal(t, "internal error", MessageOf(errors.New("pq: relation missing")))
}

func TestToHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeBadRequest:    http.StatusBadRequest,
		CodeUnauthorized:  http.StatusUnauthorized,
		CodeForbidden:     http.StatusForbidden,
		CodeNotFound:      http.StatusNotFound,
		CodeUnprocessable: http.StatusUnprocessableEntity,
		CodeUnavailable:   http.StatusServiceUnavailable,
		CodeInternal:      http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, ToHTTPStatus(code), string(code))
	}
}
