package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"detectserver/internal/detection"
	"detectserver/internal/logger"
	"detectserver/internal/services/codec"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		detail string
	}{
		{"decode", errors.Wrap(&codec.DecodeError{Reason: "empty upload"}, "decode"), http.StatusBadRequest, "invalid image: empty upload"},
		{"not found", &detection.NotFoundError{ClassName: "cat"}, http.StatusNotFound, "cat not found in photo"},
		{"schema", errors.Wrap(&detection.SchemaError{Index: 2, Reason: "bad"}, "normalize"), http.StatusInternalServerError, "malformed detection at index 2: bad"},
		{"too large", &http.MaxBytesError{Limit: 10}, http.StatusRequestEntityTooLarge, "upload exceeds the size limit"},
		{"other", errors.New("session exploded"), http.StatusInternalServerError, "object detection failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, detail := classify(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.detail, detail)
		})
	}
}

func TestRespondError_WritesDetail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	respondError(c, logger.Discard(), &detection.NotFoundError{ClassName: "dog"})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"detail":"dog not found in photo"}`, rec.Body.String())
}
