package domain

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
)

// Sketch is an uploaded image held in memory as a data URL.
type Sketch struct {
	DataURL  string
	Filename string
}

// NewSketch encodes raw image bytes as a data URL. The MIME type is sniffed
// from the content; nothing about size or type is rejected here.
func NewSketch(data []byte, filename string) Sketch {
	mime := http.DetectContentType(data)
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = mime[:i]
	}
	return Sketch{
		DataURL:  EncodeDataURL(mime, data),
		Filename: filename,
	}
}

// Bytes decodes the data URL back into binary form.
func (s Sketch) Bytes() ([]byte, string, error) {
	return DecodeDataURL(s.DataURL)
}

func EncodeDataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURL parses a base64 data URL into its bytes and MIME type.
func DecodeDataURL(u string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(u, "data:")
	if !ok {
		return nil, "", ErrInvalidDataURL
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", ErrInvalidDataURL
	}
	mime, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return nil, "", fmt.Errorf("%w: not base64", ErrInvalidDataURL)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
	}
	return data, mime, nil
}
