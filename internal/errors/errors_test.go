package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsCode(t *testing.T) {
	base := NotFound("tab")
	wrapped := Wrap(base, "activate failed")

	assert.Equal(t, CodeNotFound, GetCode(wrapped))
	assert.True(t, stderrors.Is(wrapped, base))
	assert.Equal(t, "activate failed: tab not found", wrapped.Error())
}

func TestWrapPlainError(t *testing.T) {
	assert.Nil(t, Wrap(nil, "noop"))

	wrapped := Wrap(fmt.Errorf("disk gone"), "read failed")
	assert.Equal(t, CodeInternalError, GetCode(wrapped))
	assert.Equal(t, "read failed: disk gone", wrapped.Error())
	assert.Equal(t, "UNKNOWN", GetCode(fmt.Errorf("plain")))
}

func TestGetCodeThroughFmtWrap(t *testing.T) {
	err := fmt.Errorf("outer: %w", InvalidInput("bad format"))
	assert.Equal(t, CodeInvalidInput, GetCode(err))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, HTTPStatus(NotFound("x")))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(InvalidInput("x")))
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(New(CodeDatasetUnavailable, "x")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(fmt.Errorf("x")))
}

func TestWithCode(t *testing.T) {
	err := WithCode(CodeDatabaseError, fmt.Errorf("conn refused"))
	assert.Equal(t, CodeDatabaseError, GetCode(err))
	assert.Nil(t, WithCode(CodeDatabaseError, nil))
}
