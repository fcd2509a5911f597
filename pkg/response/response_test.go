package response

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"scanbatch-rest-api/pkg/apierror"
)

func TestError(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "api error keeps its status",
			err:        apierror.NotFound(""),
			wantStatus: http.StatusNotFound,
			wantBody:   `{"code":"NOT_FOUND","error":"Resource not found"}`,
		},
		{
			name:       "wrapped api error hides its cause",
			err:        fmt.Errorf("handler: %w", apierror.InternalError("Failed to fetch scans").WithCause(cause)),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"code":"INTERNAL_ERROR","error":"Failed to fetch scans"}`,
		},
		{
			name:       "plain error becomes a 500",
			err:        cause,
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"code":"INTERNAL_ERROR","error":"an unexpected error occurred"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			Error(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestErrorUnwrapsCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("disk full")
	err := apierror.InternalError("Failed to save scan data").WithCause(cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Failed to save scan data: disk full", err.Error())
}

func TestJSON(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	Created(rec, []string{"a"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `["a"]`, rec.Body.String())
}
