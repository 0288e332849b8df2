package extract

import (
	"context"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// TextExtractor reads plain text files. Files over MaxFileSize are truncated.
type TextExtractor struct {
	MaxFileSize int64
}

func (e *TextExtractor) Extract(ctx context.Context, path string) (string, error) {
	data, err := readPrefix(path, e.MaxFileSize)
	if err != nil {
		return "", err
	}
	return decodeText(data)
}

// readPrefix reads at most limit bytes of the file.
func readPrefix(path string, limit int64) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return io.ReadAll(io.LimitReader(file, limit))
}

// checkSize rejects binary formats that cannot be truncated safely.
func checkSize(path string, limit int64) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	if info.Size() > limit {
		return 0, fmt.Errorf("%w: %d bytes, limit is %d", ErrFileTooLarge, info.Size(), limit)
	}
	return info.Size(), nil
}

// decodeText honours a UTF-8 or UTF-16 byte order mark and falls back to
// Windows-1252 for content that is not valid UTF-8.
func decodeText(data []byte) (string, error) {
	decoded, _, err := transform.Bytes(unicode.BOMOverride(transform.Nop), data)
	if err != nil {
		return "", fmt.Errorf("could not decode text: %w", err)
	}
	if complete := trimPartialRune(decoded); utf8.Valid(complete) {
		return string(complete), nil
	}

	decoded, err = charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("could not decode text: %w", err)
	}
	return string(decoded), nil
}

// trimPartialRune drops a multi-byte sequence cut off at the end of data, as left
// behind by a size-limited read.
func trimPartialRune(data []byte) []byte {
	for i := len(data) - 1; i >= 0 && i >= len(data)-utf8.UTFMax; i-- {
		if !utf8.RuneStart(data[i]) {
			continue
		}
		if !utf8.FullRune(data[i:]) {
			return data[:i]
		}
		break
	}
	return data
}
