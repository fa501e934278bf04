// Package resume validates uploaded resume attachments.
package resume

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/garnizeh/interntrack/pkg/models"
)

const (
	// MaxSize is the largest accepted attachment.
	MaxSize = 5 << 20
	// ContentType is the only accepted media type.
	ContentType = "application/pdf"
)

var (
	ErrTooLarge    = errors.New("resume exceeds 5 MiB")
	ErrContentType = errors.New("resume must be a PDF")
	ErrEmpty       = errors.New("resume is empty")
	ErrUnreadable  = errors.New("resume is not a readable PDF")
)

// Validate checks size, media type and that data parses as a PDF with at
// least one page. It returns the page count.
func Validate(data []byte, contentType string) (int, error) {
	if len(data) == 0 {
		return 0, ErrEmpty
	}
	if len(data) > MaxSize {
		return 0, ErrTooLarge
	}
	if !isPDFType(contentType) {
		return 0, fmt.Errorf("%q: %w", contentType, ErrContentType)
	}
	return pages(data)
}

// FromMultipart reads and validates an uploaded file part.
func FromMultipart(file multipart.File, header *multipart.FileHeader) (*models.Resume, error) {
	if header.Size > MaxSize {
		return nil, ErrTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(file, MaxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read resume: %w", err)
	}

	contentType := header.Header.Get("Content-Type")
	if _, err := Validate(data, contentType); err != nil {
		return nil, err
	}

	return &models.Resume{
		Data:        data,
		ContentType: ContentType,
		FileName:    fileName(header.Filename),
		Size:        int64(len(data)),
	}, nil
}

func isPDFType(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	return err == nil && mt == ContentType
}

// pages guards the parser, which panics on some malformed inputs.
func pages(data []byte) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("%v: %w", r, ErrUnreadable)
		}
	}()

	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return 0, ErrUnreadable
	}
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("%v: %w", err, ErrUnreadable)
	}
	if n = reader.NumPage(); n < 1 {
		return 0, fmt.Errorf("no pages: %w", ErrUnreadable)
	}
	return n, nil
}

func fileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "resume.pdf"
	}
	return name
}
