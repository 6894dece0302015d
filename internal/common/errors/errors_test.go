package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAs_FindsWrappedStandardError(t *testing.T) {
	cause := stderrors.New("connection reset")
	err := fmt.Errorf("assign advisor: %w", NewAssignmentPersistFailedError(42, cause))

	stdErr, ok := As(err)
	require.True(t, ok)
	assert.Equal(t, ErrCodeAssignmentPersistFailed, stdErr.Code)
	assert.Equal(t, int64(42), stdErr.Metadata["submissionId"])
	assert.True(t, stderrors.Is(err, cause))
	assert.True(t, HasCode(err, ErrCodeAssignmentPersistFailed))
	assert.False(t, HasCode(err, ErrCodeCursorUpdateFailed))
}

func TestAs_PlainError(t *testing.T) {
	_, ok := As(stderrors.New("plain"))
	assert.False(t, ok)
}

func TestConvertToBPMNError(t *testing.T) {
	tests := []struct {
		name        string
		err         *StandardError
		wantRetries int
	}{
		{"retryable persistence", NewDatabaseInsertFailedError(stderrors.New("x")), 3},
		{"zip lookup", NewZipLookupFailedError("90001", stderrors.New("x")), 2},
		{"validation never retries", NewSubmissionValidationError("firstName"), 0},
		{"not found never retries", NewAdvisorNotFoundError(7), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bpmn := ConvertToBPMNError(tt.err)
			assert.Equal(t, string(tt.err.Code), bpmn.Code)
			assert.Equal(t, tt.wantRetries, bpmn.Retries)

			vars := bpmn.ToErrorVariables()
			assert.Equal(t, string(tt.err.Code), vars["errorCode"])
			assert.Equal(t, string(tt.err.Code), vars["originalErrorCode"])
			assert.NotEmpty(t, vars["timestamp"])
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(ErrCodeSubmissionValidationFailed))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(ErrCodeInvalidTerritories))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(ErrCodeAdvisorNotFound))
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(ErrCodeAuthentication))
	assert.Equal(t, http.StatusForbidden, HTTPStatus(ErrCodeForbidden))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(ErrCodeAssignmentPersistFailed))
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(ErrCodeSearchQueryFailed))
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeSubmissionValidationFailed))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeInvalidTerritories))
	assert.Equal(t, "PERSISTENCE", GetErrorCategory(ErrCodeCursorUpdateFailed))
	assert.Equal(t, "PERSISTENCE", GetErrorCategory(ErrCodeAssignmentPersistFailed))
	assert.Equal(t, "NOT_FOUND", GetErrorCategory(ErrCodeSubmissionNotFound))
	assert.Equal(t, "NOTIFICATION", GetErrorCategory(ErrCodeNotificationSendFailed))
	assert.Equal(t, "INTEGRATION", GetErrorCategory(ErrCodeCRMSyncFailed))
	assert.Equal(t, "AUTH", GetErrorCategory(ErrCodeAuthentication))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
}

func TestIsRetryableErrorCode(t *testing.T) {
	assert.True(t, IsRetryableErrorCode(ErrCodeCursorUpdateFailed))
	assert.False(t, IsRetryableErrorCode(ErrCodeInvalidAssignmentMethod))
}
