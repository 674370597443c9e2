package errors_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/turtacn/EcoExpand-AI/pkg/errors"
)

func TestHTTPStatusForCode(t *testing.T) {
	t.Parallel()

	cases := map[errors.ErrorCode]int{
		errors.CodeNotFound:             http.StatusNotFound,
		errors.CodeInvalidParam:         http.StatusBadRequest,
		errors.CodeValidation:           http.StatusBadRequest,
		errors.CodeUpstream:             http.StatusBadGateway,
		errors.CodeIngestion:            http.StatusInternalServerError,
		errors.CodeUnavailable:          http.StatusServiceUnavailable,
		errors.ErrCodeGraphNodeNotFound: http.StatusNotFound,
		errors.ErrorCode("NOPE_999"):    http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, errors.HTTPStatusForCode(code), "code %s", code)
	}
}

func TestClientServerClassification(t *testing.T) {
	t.Parallel()

	assert.True(t, errors.IsClientError(errors.CodeNotFound))
	assert.False(t, errors.IsServerError(errors.CodeNotFound))
	assert.True(t, errors.IsServerError(errors.CodeUpstream))
	assert.False(t, errors.IsClientError(errors.CodeInternal))
}

func TestModuleForCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "RISK", errors.ModuleForCode(errors.ErrCodeClusteringFailed))
	assert.Equal(t, "GRAPH", errors.ModuleForCode(errors.ErrCodeGraphNodeNotFound))
	assert.Equal(t, "COMMON", errors.ModuleForCode(errors.CodeInternal))
	assert.Equal(t, "OK", errors.ModuleForCode(errors.CodeOK))
}

func TestDefaultMessageForCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "upstream service failure", errors.DefaultMessageForCode(errors.CodeUpstream))
	assert.Equal(t, "internal server error", errors.DefaultMessageForCode(errors.ErrorCode("X")))
}
