package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsInnerCode(t *testing.T) {
	inner := SchemaInvalid("missing column grade")
	wrapped := Wrap(inner, "failed to load snapshot")

	assert.Equal(t, CodeSchemaInvalid, GetCode(wrapped))
	assert.Equal(t, "failed to load snapshot: missing column grade", wrapped.Error())
}

func TestWrapPlainErrorIsInternal(t *testing.T) {
	wrapped := Wrap(fmt.Errorf("boom"), "render failed")
	assert.Equal(t, CodeInternalError, GetCode(wrapped))
	assert.Nil(t, Wrap(nil, "ignored"))
}

func TestGetCodeThroughFmtWrap(t *testing.T) {
	err := fmt.Errorf("outer: %w", DatasetNotFound("data_input/loan_clean"))
	assert.Equal(t, CodeDatasetNotFound, GetCode(err))
	assert.True(t, IsFatal(err))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{InvalidInput("bad condition"), http.StatusBadRequest},
		{NotFound("chart"), http.StatusNotFound},
		{DatasetNotLoaded(), http.StatusServiceUnavailable},
		{DatasetUnreadable("x.csv", fmt.Errorf("eof")), http.StatusServiceUnavailable},
		{fmt.Errorf("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.err), tt.err.Error())
	}
}

func TestIsFatal(t *testing.T) {
	assert.False(t, IsFatal(InvalidInput("x")))
	assert.True(t, IsFatal(ConfigInvalid("x")))
	assert.False(t, IsFatal(nil))
}
