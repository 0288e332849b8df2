package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/jhillyerd/enmime"
	"golang.org/x/net/html"
)

var (
	rtfControlPattern = regexp.MustCompile(`\\[a-zA-Z]+-?\d* ?|\\'[0-9a-fA-F]{2}|[{}]`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// GenericExtractor makes a best effort for formats without a dedicated family:
// markup, e-mail, RTF and anything else that turns out to be text.
type GenericExtractor struct {
	MaxFileSize int64
}

func (e *GenericExtractor) Extract(ctx context.Context, path string) (string, error) {
	data, err := readPrefix(path, e.MaxFileSize)
	if err != nil {
		return "", err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm", ".xhtml", ".xml":
		return markupText(data)
	case ".eml":
		return emailText(data)
	case ".rtf":
		return rtfText(data), nil
	}

	if !looksLikeText(data) {
		return "", ErrUnsupportedFormat
	}
	return decodeText(data)
}

// markupText keeps the text nodes of an HTML or XML document, skipping scripts
// and styles.
func markupText(data []byte) (string, error) {
	tokenizer := html.NewTokenizer(bytes.NewReader(data))

	var sb strings.Builder
	skipping := 0
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			if err := tokenizer.Err(); !errors.Is(err, io.EOF) {
				return "", fmt.Errorf("could not tokenize markup: %w", err)
			}
			return strings.TrimSpace(whitespacePattern.ReplaceAllString(sb.String(), " ")), nil
		case html.StartTagToken:
			if isSkippedElement(tokenizer) {
				skipping++
			}
		case html.EndTagToken:
			if isSkippedElement(tokenizer) && skipping > 0 {
				skipping--
			}
		case html.TextToken:
			if skipping == 0 {
				sb.Write(tokenizer.Text())
				sb.WriteString(" ")
			}
		}
	}
}

func isSkippedElement(tokenizer *html.Tokenizer) bool {
	name, _ := tokenizer.TagName()
	switch string(name) {
	case "script", "style", "noscript":
		return true
	}
	return false
}

// emailText returns the subject and body of a MIME message, preferring the plain
// text part.
func emailText(data []byte) (string, error) {
	envelope, err := enmime.ReadEnvelope(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("could not parse message: %w", err)
	}

	body := envelope.Text
	if strings.TrimSpace(body) == "" && envelope.HTML != "" {
		body, err = markupText([]byte(envelope.HTML))
		if err != nil {
			return "", err
		}
	}

	subject := envelope.GetHeader("Subject")
	if subject == "" {
		return body, nil
	}
	return subject + "\n\n" + body, nil
}

func rtfText(data []byte) string {
	text := rtfControlPattern.ReplaceAllString(string(data), "")
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))
}

// looksLikeText rejects content with NUL bytes or too many invalid sequences.
func looksLikeText(data []byte) bool {
	if len(data) == 0 {
		return true
	}
	sample := trimPartialRune(data[:min(len(data), 8192)])
	if bytes.IndexByte(sample, 0) >= 0 {
		return false
	}
	sampled := len(sample)

	invalid := 0
	for len(sample) > 0 {
		r, size := utf8.DecodeRune(sample)
		if r == utf8.RuneError && size == 1 {
			invalid++
		}
		sample = sample[size:]
	}
	return invalid*10 < sampled
}
