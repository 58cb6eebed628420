package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf_WrappedError(t *testing.T) {
	err := fmt.Errorf("settle bet b1: %w", Conflict("bet already settled"))

	assert.Equal(t, KindConflict, KindOf(err))
	assert.True(t, Is(err, KindConflict))
	assert.Equal(t, "bet already settled", MessageOf(err))
}

func TestKindOf_PlainErrorIsInternal(t *testing.T) {
	err := errors.New("connection reset")

	assert.Equal(t, KindInternal, KindOf(err))
	assert.False(t, Is(err, KindNotFound))
	assert.Equal(t, "An internal error occurred", MessageOf(err))
}

func TestUpstream_UnwrapsCause(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	err := Upstream("match lookup failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "match lookup failed: dial tcp: timeout", err.Error())
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(KindOf(err)))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(KindValidation))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(KindNotFound))
	assert.Equal(t, http.StatusConflict, HTTPStatus(KindConflict))
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(KindUnauthorized))
	assert.Equal(t, http.StatusForbidden, HTTPStatus(KindForbidden))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(KindInternal))
}
