package objectstore

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/phrazzld/accounts-api/internal/domain"
)

var (
	// ErrMalformedPayload is returned when an image payload is not a base64
	// data URL.
	ErrMalformedPayload = fmt.Errorf("%w: malformed data url", domain.ErrInvalidImage)

	// ErrUnsupportedImage is returned when the payload's media type is not an
	// accepted image type.
	ErrUnsupportedImage = fmt.Errorf("%w: unsupported media type", domain.ErrInvalidImage)
)

// imageExtensions maps accepted media types to object extensions.
var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ImagePayload is a decoded image ready for upload.
type ImagePayload struct {
	ContentType string
	Extension   string
	Data        []byte
}

// ParseDataURL decodes a payload of the form data:image/png;base64,<data>.
func ParseDataURL(payload string) (*ImagePayload, error) {
	header, encoded, ok := strings.Cut(payload, ",")
	if !ok || encoded == "" {
		return nil, ErrMalformedPayload
	}

	mediaType, found := strings.CutPrefix(header, "data:")
	if !found {
		return nil, ErrMalformedPayload
	}
	mediaType, found = strings.CutSuffix(mediaType, ";base64")
	if !found {
		return nil, ErrMalformedPayload
	}
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))

	ext, ok := imageExtensions[mediaType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedImage, mediaType)
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	if len(data) == 0 {
		return nil, ErrMalformedPayload
	}

	if mediaType == "image/jpg" {
		mediaType = "image/jpeg"
	}

	return &ImagePayload{ContentType: mediaType, Extension: ext, Data: data}, nil
}
