package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf_SeesThroughWrapping(t *testing.T) {
	err := NotFound("credit class %s not found", "abc")
	wrapped := fmt.Errorf("loading class: %w", err)

	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.True(t, IsKind(wrapped, KindNotFound))
	assert.Equal(t, Kind(0), KindOf(errors.New("plain")))
}

func TestError_MessageIncludesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := ChainUnavailable("rpc dial failed", cause)

	assert.Equal(t, "rpc dial failed: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestIsChain(t *testing.T) {
	assert.True(t, IsChain(ChainUnavailable("down", nil)))
	assert.True(t, IsChain(ChainExecution("reverted", nil)))
	assert.False(t, IsChain(Conflict("already minted")))
	assert.False(t, IsChain(nil))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, 400, HTTPStatus(Validation("bad input")))
	assert.Equal(t, 404, HTTPStatus(NotFound("missing")))
	assert.Equal(t, 409, HTTPStatus(Conflict("taken")))
	assert.Equal(t, 503, HTTPStatus(ChainUnavailable("down", nil)))
	assert.Equal(t, 502, HTTPStatus(ChainExecution("reverted", nil)))
	assert.Equal(t, 500, HTTPStatus(errors.New("unknown")))
}
