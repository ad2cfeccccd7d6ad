package model

import (
	"bytes"
	"errors"
	"io"
	"strings"
)

// Declared media types accepted for upload. Matching is exact.
const (
	MediaTypeMPEG = "audio/mpeg"
	MediaTypeWAV  = "audio/wav"
	MediaTypeMP3  = "audio/mp3"
	MediaTypeMP4  = "audio/mp4"
	MediaTypeM4A  = "audio/x-m4a"

	MediaTypeUnknown = "application/octet-stream"
)

var allowedMediaTypes = []string{
	MediaTypeMPEG,
	MediaTypeWAV,
	MediaTypeMP3,
	MediaTypeMP4,
	MediaTypeM4A,
}

// AllowedMediaTypes returns a copy of the upload allow-list.
func AllowedMediaTypes() []string {
	return append([]string(nil), allowedMediaTypes...)
}

func IsAllowedMediaType(mediaType string) bool {
	for _, allowed := range allowedMediaTypes {
		if mediaType == allowed {
			return true
		}
	}
	return false
}

// SelectedFile is one user-chosen file, alive for a single upload attempt.
type SelectedFile struct {
	Name      string
	MediaType string
	// Size is -1 when unknown.
	Size int64

	open func() (io.ReadCloser, error)
}

func NewSelectedFile(name, mediaType string, size int64, open func() (io.ReadCloser, error)) SelectedFile {
	return SelectedFile{
		Name:      strings.TrimSpace(name),
		MediaType: strings.TrimSpace(mediaType),
		Size:      size,
		open:      open,
	}
}

func NewSelectedFileFromBytes(name, mediaType string, data []byte) SelectedFile {
	return NewSelectedFile(name, mediaType, int64(len(data)), func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	})
}

// Open returns the file content. Each call starts from the beginning.
func (f SelectedFile) Open() (io.ReadCloser, error) {
	if f.open == nil {
		return nil, errors.New("selected file has no content source")
	}
	return f.open()
}
