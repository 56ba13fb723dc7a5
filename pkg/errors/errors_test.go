package errors

import (
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	err := &Error{Type: ErrorTypeServerError, Message: "boom", Code: 503}
	assert.Equal(t, "server_error error (code 503): boom", err.Error())

	err = New(ErrorTypeConfig, "save folder is required")
	assert.Equal(t, "config error: save folder is required", err.Error())
}

func TestWrapUnwrap(t *testing.T) {
	err := Wrap(ErrorTypeFilesystem, fs.ErrPermission, "failed to stat file")

	assert.ErrorIs(t, err, fs.ErrPermission)
	assert.Contains(t, err.Error(), "failed to stat file")
	assert.True(t, IsType(err, ErrorTypeFilesystem))
}

func TestFromStatusCode(t *testing.T) {
	tests := []struct {
		code int
		want ErrorType
	}{
		{404, ErrorTypeNotFound},
		{410, ErrorTypeNotFound},
		{500, ErrorTypeServerError},
		{502, ErrorTypeServerError},
		{403, ErrorTypeUnknown},
		{0, ErrorTypeNetwork},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status %d", tt.code), func(t *testing.T) {
			err := FromStatusCode(tt.code, "http://example.com")
			assert.Equal(t, tt.want, err.Type)
			assert.Equal(t, tt.code, err.Code)
		})
	}
}

func TestTypeOfWrapped(t *testing.T) {
	inner := New(ErrorTypeNetwork, "connection refused")
	outer := fmt.Errorf("fetch page: %w", inner)

	assert.Equal(t, ErrorTypeNetwork, TypeOf(outer))
	assert.True(t, IsType(outer, ErrorTypeNetwork))
	assert.False(t, IsType(outer, ErrorTypeParsing))
	assert.Equal(t, ErrorTypeUnknown, TypeOf(fmt.Errorf("plain")))
}
