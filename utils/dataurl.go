package utils

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrNotDataURL    = errors.New("not a base64 data URL")
	ErrNotImage      = errors.New("content is not an image")
	ErrImageTooLarge = errors.New("image exceeds the size limit")
)

// EncodeImageDataURL returns the inline representation stored on documents. The media
// type is sniffed from the content rather than trusted from the client.
func EncodeImageDataURL(data []byte, maxBytes int) (string, error) {
	if maxBytes > 0 && len(data) > maxBytes {
		return "", ErrImageTooLarge
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", ErrNotImage
	}
	return "data:" + mt.String() + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// DecodeDataURL splits a base64 data URL into its declared media type and payload.
func DecodeDataURL(s string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", nil, ErrNotDataURL
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrNotDataURL
	}
	mediaType, ok := strings.CutSuffix(header, ";base64")
	if !ok {
		return "", nil, ErrNotDataURL
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrNotDataURL, err)
	}
	return mediaType, data, nil
}

// NormalizeImageDataURL checks a client supplied data URL and re-encodes it in canonical form.
// Empty input is passed through.
func NormalizeImageDataURL(s string, maxBytes int) (string, error) {
	if s == "" {
		return "", nil
	}
	_, data, err := DecodeDataURL(s)
	if err != nil {
		return "", err
	}
	return EncodeImageDataURL(data, maxBytes)
}
