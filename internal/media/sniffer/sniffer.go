package sniffer

import (
	"bytes"
	"errors"
	"net/http"
	"path/filepath"
	"strings"
)

type MediaType string

const (
	TypeJPEG MediaType = "jpeg"
	TypePNG  MediaType = "png"
)

var (
	ErrUnknownType          = errors.New("unknown media type")
	ErrUnsupportedExtension = errors.New("unsupported file extension")
)

// allowedExtensions maps accepted upload extensions to the type their
// content must sniff as.
var allowedExtensions = map[string]MediaType{
	".jpg":  TypeJPEG,
	".jpeg": TypeJPEG,
	".png":  TypePNG,
}

type Result struct {
	Type MediaType
	MIME string
}

// Extension is the canonical file extension for the type.
func (r Result) Extension() string {
	if r.Type == TypeJPEG {
		return "jpg"
	}
	return string(r.Type)
}

// CheckExtension validates filename against the jpg/jpeg/png allow-list.
func CheckExtension(filename string) (MediaType, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	mediaType, ok := allowedExtensions[ext]
	if !ok {
		return "", ErrUnsupportedExtension
	}
	return mediaType, nil
}

func DetectHead(head []byte) (Result, error) {
	if isJPEG(head) {
		return Result{Type: TypeJPEG, MIME: "image/jpeg"}, nil
	}
	if isPNG(head) {
		return Result{Type: TypePNG, MIME: "image/png"}, nil
	}
	return Result{}, ErrUnknownType
}

func isJPEG(head []byte) bool {
	return len(head) > 3 &&
		head[0] == 0xff &&
		head[1] == 0xd8 &&
		head[2] == 0xff
}

func isPNG(head []byte) bool {
	pngMagic := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	return len(head) >= len(pngMagic) && bytes.Equal(head[:len(pngMagic)], pngMagic)
}

// MimeTypeFromHTTP returns the declared media type without parameters.
// Browsers send image/jpg for some jpeg files, which is folded into image/jpeg.
func MimeTypeFromHTTP(header http.Header) string {
	contentType := header.Get("Content-Type")
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		contentType = contentType[:idx]
	}
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if contentType == "image/jpg" || contentType == "image/pjpeg" {
		return "image/jpeg"
	}
	return contentType
}
