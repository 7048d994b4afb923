package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "without wrapped error",
			err:  MissingField("title"),
			want: "[VALIDATION_ERROR] Missing required field: title",
		},
		{
			name: "with wrapped error",
			err:  Wrap(errors.New("dial tcp: refused"), KindInternal, "report failed"),
			want: "[INTERNAL_ERROR] report failed: dial tcp: refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	original := errors.New("requested entity was not found")
	err := Provider(original)

	assert.ErrorIs(t, err, original)
	assert.Equal(t, "requested entity was not found", err.Message)
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Validation("bad"), http.StatusBadRequest},
		{"unavailable", Unavailable("Firebase not initialized"), http.StatusInternalServerError},
		{"provider", Provider(errors.New("boom")), http.StatusInternalServerError},
		{"unauthorized", New(KindUnauthorized, "no"), http.StatusUnauthorized},
		{"rate limited", New(KindRateLimited, "slow down"), http.StatusTooManyRequests},
		{"wrapped validation", fmt.Errorf("decode: %w", MissingField("tokens")), http.StatusBadRequest},
		{"plain error", errors.New("unexpected"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusCode(tt.err))
		})
	}
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "Missing required field: body", Message(fmt.Errorf("ctx: %w", MissingField("body"))))
	assert.Equal(t, "plain", Message(errors.New("plain")))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindUnavailable, KindOf(Unavailable("x")))
	assert.Equal(t, KindInternal, KindOf(errors.New("x")))
}
