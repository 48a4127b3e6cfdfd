package handlers

import (
	"io"
	"net/http"

	"detectserver/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

const uploadField = "file"

// errMissingFile is returned when the multipart form has no upload field.
var errMissingFile = errors.New("field required: " + uploadField)

// readUpload returns the bytes of the uploaded file, reading at most maxBytes
// of request body.
func readUpload(c *gin.Context, maxBytes int64) ([]byte, error) {
	if c.Request.ContentLength > maxBytes {
		return nil, &http.MaxBytesError{Limit: maxBytes}
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)

	header, err := c.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, errMissingFile
	}

	file, err := header.Open()
	if err != nil {
		return nil, errors.Wrap(err, "open upload")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.Wrap(err, "read upload")
	}
	return data, nil
}

// rejectUpload answers a failed readUpload.
func rejectUpload(c *gin.Context, log *logger.Logger, err error) {
	if errors.Is(err, errMissingFile) {
		respondDetail(c, http.StatusUnprocessableEntity, err.Error())
		return
	}
	respondError(c, log, err)
}
