package objectstore

import (
	"encoding/base64"
	"testing"

	"github.com/phrazzld/accounts-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dataURL(mediaType string, data []byte) string {
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func TestParseDataURL(t *testing.T) {
	raw := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a}

	tests := []struct {
		name        string
		payload     string
		contentType string
		ext         string
	}{
		{"png", dataURL("image/png", raw), "image/png", ".png"},
		{"jpeg", dataURL("image/jpeg", raw), "image/jpeg", ".jpg"},
		{"jpg alias", dataURL("image/jpg", raw), "image/jpeg", ".jpg"},
		{"gif", dataURL("image/gif", raw), "image/gif", ".gif"},
		{"webp", dataURL("image/webp", raw), "image/webp", ".webp"},
		{"upper case media type", dataURL("IMAGE/PNG", raw), "image/png", ".png"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			img, err := ParseDataURL(tc.payload)
			require.NoError(t, err)
			assert.Equal(t, tc.contentType, img.ContentType)
			assert.Equal(t, tc.ext, img.Extension)
			assert.Equal(t, raw, img.Data)
		})
	}
}

func TestParseDataURL_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    error
	}{
		{"empty", "", ErrMalformedPayload},
		{"no comma", "data:image/png;base64", ErrMalformedPayload},
		{"no data prefix", "image/png;base64,AAAA", ErrMalformedPayload},
		{"not base64 encoded", "data:image/png,AAAA", ErrMalformedPayload},
		{"invalid base64", "data:image/png;base64,@@@", ErrMalformedPayload},
		{"empty data", "data:image/png;base64,", ErrMalformedPayload},
		{"svg", dataURL("image/svg+xml", []byte("<svg/>")), ErrUnsupportedImage},
		{"pdf", dataURL("application/pdf", []byte("%PDF")), ErrUnsupportedImage},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseDataURL(tc.payload)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestParseDataURL_ErrorsAreInvalidImage(t *testing.T) {
	_, err := ParseDataURL("garbage")
	assert.ErrorIs(t, err, domain.ErrInvalidImage)

	_, err = ParseDataURL(dataURL("text/html", []byte("<p>")))
	assert.ErrorIs(t, err, domain.ErrInvalidImage)
}
