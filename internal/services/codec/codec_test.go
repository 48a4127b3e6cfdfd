package codec

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func TestEncodeDecode(t *testing.T) {
	img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(10, 200, 30, 0), 48, 64, gocv.MatTypeCV8UC3)
	defer img.Close()

	data, err := EncodeJPEG(img, 95)
	require.NoError(t, err)
	require.NotEmpty(t, data)
	// JPEG SOI marker
	assert.Equal(t, []byte{0xFF, 0xD8}, data[:2])

	decoded, err := Decode(data)
	require.NoError(t, err)
	defer decoded.Close()

	assert.Equal(t, 64, decoded.Cols())
	assert.Equal(t, 48, decoded.Rows())
	assert.Equal(t, 3, decoded.Channels())
}

func TestEncodeJPEG_QualityFallback(t *testing.T) {
	img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 8, 8, gocv.MatTypeCV8UC3)
	defer img.Close()

	data, err := EncodeJPEG(img, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestEncodeJPEG_EmptyImage(t *testing.T) {
	img := gocv.NewMat()
	defer img.Close()

	_, err := EncodeJPEG(img, 90)
	assert.Error(t, err)
}

func TestDecode_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"garbage", []byte("definitely not an image")},
		{"truncated header", []byte{0xFF, 0xD8, 0xFF}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mat, err := Decode(tt.data)
			defer mat.Close()

			var decodeErr *DecodeError
			require.True(t, errors.As(err, &decodeErr), "got %v", err)
		})
	}
}
