package assets

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/webp"

	"github.com/JaimeStill/estate/pkg/formatting"
)

// formats maps accepted extensions to the decoder name image.DecodeConfig reports.
var formats = map[string]string{
	".jpg":  "jpeg",
	".jpeg": "jpeg",
	".png":  "png",
	".gif":  "gif",
	".webp": "webp",
}

// Validate checks that data is a non-empty image within the size limit whose
// header matches the extension of filename.
func (s *store) Validate(data []byte, filename string) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: file is empty", ErrInvalidUpload)
	}
	if s.maxSize > 0 && int64(len(data)) > s.maxSize {
		return fmt.Errorf("%w: file exceeds %s limit", ErrInvalidUpload, formatting.FormatBytes(s.maxSize, 0))
	}

	ext := strings.ToLower(filepath.Ext(filename))
	want, ok := formats[ext]
	if !ok {
		return fmt.Errorf("%w: unsupported file type %q", ErrInvalidUpload, ext)
	}

	_, got, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: not a readable image", ErrInvalidUpload)
	}
	if got != want {
		return fmt.Errorf("%w: content is %s but name says %s", ErrInvalidUpload, got, ext)
	}

	return nil
}
