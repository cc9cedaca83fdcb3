package storage

import (
	"errors"
	"fmt"
	"mime"

	"github.com/h2non/filetype"
)

// ResumeContentType is the only accepted resume format.
const ResumeContentType = "application/pdf"

var (
	ErrEmptyFile         = errors.New("file is empty")
	ErrUnsupportedFormat = errors.New("only PDF files are allowed")
	ErrFileTooLarge      = errors.New("file exceeds the size limit")
)

// ValidateResume checks both the declared content type and the file's
// magic bytes, so a renamed file of another type is rejected.
func ValidateResume(declaredType string, content []byte, maxBytes int64) error {
	if len(content) == 0 {
		return ErrEmptyFile
	}
	if maxBytes > 0 && int64(len(content)) > maxBytes {
		return fmt.Errorf("%w: %d bytes > %d", ErrFileTooLarge, len(content), maxBytes)
	}

	mediaType, _, err := mime.ParseMediaType(declaredType)
	if err != nil || mediaType != ResumeContentType {
		return fmt.Errorf("%w: declared %q", ErrUnsupportedFormat, declaredType)
	}

	kind, err := filetype.Match(content)
	if err != nil || kind.MIME.Value != ResumeContentType {
		return fmt.Errorf("%w: content sniffed as %q", ErrUnsupportedFormat, kind.MIME.Value)
	}
	return nil
}
