package media

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/Nephrolytics-ai/polyglot-upload/pkg/model"
	"github.com/Nephrolytics-ai/polyglot-upload/pkg/utils"
	"github.com/h2non/filetype"
)

// sniffLen covers every header filetype knows how to match.
const sniffLen = 261

// The declared type a browser would attach to the file, keyed by extension.
var extensionMediaTypes = map[string]string{
	".mp3":  model.MediaTypeMPEG,
	".mpga": model.MediaTypeMPEG,
	".mpeg": model.MediaTypeMPEG,
	".wav":  model.MediaTypeWAV,
	".mp4":  model.MediaTypeMP4,
	".m4a":  model.MediaTypeM4A,
}

// FromPath describes the regular file at path as a SelectedFile. The file is
// reopened on every SelectedFile.Open call.
func FromPath(path string) (model.SelectedFile, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return model.SelectedFile{}, utils.WrapIfNotNil(errors.New("file path is required"))
	}

	info, err := os.Stat(path)
	if err != nil {
		return model.SelectedFile{}, utils.WrapIfNotNil(err)
	}
	if !info.Mode().IsRegular() {
		return model.SelectedFile{}, utils.WrapIfNotNil(fmt.Errorf("%s is not a regular file", path))
	}

	mediaType, err := DeclaredType(path)
	if err != nil {
		return model.SelectedFile{}, utils.WrapIfNotNil(err)
	}

	return model.NewSelectedFile(filepath.Base(path), mediaType, info.Size(), func() (io.ReadCloser, error) {
		return os.Open(path)
	}), nil
}

// DeclaredType resolves the media type from the extension first and only
// reads the file when the extension says nothing.
func DeclaredType(path string) (string, error) {
	if mediaType := TypeByExtension(filepath.Ext(path)); mediaType != "" {
		return mediaType, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = f.Close()
	}()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	return SniffType(head[:n]), nil
}

// TypeByExtension returns "" when the extension is unknown.
func TypeByExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if mediaType, ok := extensionMediaTypes[ext]; ok {
		return mediaType
	}

	mediaType := mime.TypeByExtension(ext)
	if mediaType == "" {
		return ""
	}
	if base, _, err := mime.ParseMediaType(mediaType); err == nil {
		return base
	}
	return mediaType
}

// SniffType maps recognized content back through the extension table so a
// sniffed file gets the same declared type as a named one.
func SniffType(head []byte) string {
	kind, err := filetype.Match(head)
	if err != nil || kind == filetype.Unknown {
		return model.MediaTypeUnknown
	}
	if mediaType := TypeByExtension(kind.Extension); mediaType != "" {
		return mediaType
	}
	if kind.MIME.Value != "" {
		return kind.MIME.Value
	}
	return model.MediaTypeUnknown
}
