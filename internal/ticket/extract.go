package ticket

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// TextSource yields the raw text of an uploaded ticket document.
type TextSource interface {
	ExtractText() (string, error)
}

// PDFBytes extracts plain text from an in-memory PDF document.
type PDFBytes []byte

func (b PDFBytes) ExtractText() (text string, err error) {
	// The pdf library panics on some malformed inputs; a broken upload
	// must surface as an extraction error, not kill the handler.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return "", err
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	if _, err := io.Copy(&sb, plain); err != nil {
		return "", err
	}
	return sb.String(), nil
}
