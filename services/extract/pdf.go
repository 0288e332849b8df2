package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

type PDFExtractor struct {
	MaxFileSize int64
}

// Extract reads the text layer page by page. The parser panics on some malformed
// files, so a panic is turned into an error for the whole file.
func (e *PDFExtractor) Extract(ctx context.Context, path string) (text string, err error) {
	size, err := checkSize(path, e.MaxFileSize)
	if err != nil {
		return "", err
	}

	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("pdf parser panicked: %v", r)
		}
	}()

	reader, err := pdf.NewReader(file, size)
	if err != nil {
		return "", fmt.Errorf("could not open pdf: %w", err)
	}

	var sb strings.Builder
	pages := reader.NumPage()
	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("could not read page %d: %w", i, err)
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}

	if strings.TrimSpace(sb.String()) == "" {
		return "", errors.New("pdf has no text layer")
	}
	return sb.String(), nil
}
