package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"regexp"
	"strings"
)

// Main body parts of the zipped word processing formats.
const (
	ooxmlBodyPart = "word/document.xml"
	odfBodyPart   = "content.xml"
)

var (
	errNoBodyPart = errors.New("archive has no document body")
	tagPattern    = regexp.MustCompile(`<[^>]*>`)
	spacePattern  = regexp.MustCompile(`[ \t]+`)
)

// WordExtractor walks the XML of a .docx or .odt body and keeps paragraph
// structure.
type WordExtractor struct {
	MaxFileSize int64
}

// RawXMLExtractor strips every tag from the document body. It is the fallback
// when the body cannot be decoded as well-formed XML.
type RawXMLExtractor struct {
	MaxFileSize int64
}

func (e *WordExtractor) Extract(ctx context.Context, path string) (string, error) {
	body, part, err := readBodyPart(path, e.MaxFileSize)
	if err != nil {
		return "", err
	}

	if part == ooxmlBodyPart {
		return decodeWordXML(body, ooxmlElements)
	}
	return decodeWordXML(body, odfElements)
}

func (e *RawXMLExtractor) Extract(ctx context.Context, path string) (string, error) {
	body, _, err := readBodyPart(path, e.MaxFileSize)
	if err != nil {
		return "", err
	}

	text := tagPattern.ReplaceAllString(string(body), " ")
	text = html.UnescapeString(text)
	text = strings.TrimSpace(spacePattern.ReplaceAllString(text, " "))
	if text == "" {
		return "", errors.New("document body has no text")
	}
	return text, nil
}

func readBodyPart(path string, limit int64) ([]byte, string, error) {
	if _, err := checkSize(path, limit); err != nil {
		return nil, "", err
	}

	archive, err := zip.OpenReader(path)
	if err != nil {
		return nil, "", fmt.Errorf("could not open archive: %w", err)
	}
	defer archive.Close()

	for _, file := range archive.File {
		if file.Name != ooxmlBodyPart && file.Name != odfBodyPart {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, "", fmt.Errorf("could not open %s: %w", file.Name, err)
		}
		data, err := io.ReadAll(io.LimitReader(rc, limit))
		rc.Close()
		if err != nil {
			return nil, "", fmt.Errorf("could not read %s: %w", file.Name, err)
		}
		return data, file.Name, nil
	}

	return nil, "", errNoBodyPart
}

// wordElements names the elements that matter when flattening a body to text.
// A nil text set means character data is kept wherever it appears.
type wordElements struct {
	text       map[string]bool
	paragraphs map[string]bool
	breaks     map[string]bool
	tabs       map[string]bool
	spaces     map[string]bool
}

var ooxmlElements = wordElements{
	text:       map[string]bool{"t": true},
	paragraphs: map[string]bool{"p": true},
	breaks:     map[string]bool{"br": true, "cr": true},
	tabs:       map[string]bool{"tab": true},
}

var odfElements = wordElements{
	paragraphs: map[string]bool{"p": true, "h": true},
	breaks:     map[string]bool{"line-break": true},
	tabs:       map[string]bool{"tab": true},
	spaces:     map[string]bool{"s": true},
}

func decodeWordXML(body []byte, elements wordElements) (string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(body))

	var sb strings.Builder
	inText := 0
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("malformed document xml: %w", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			name := t.Name.Local
			switch {
			case elements.text[name]:
				inText++
			case elements.breaks[name]:
				sb.WriteString("\n")
			case elements.tabs[name]:
				sb.WriteString("\t")
			case elements.spaces[name]:
				sb.WriteString(" ")
			}
		case xml.EndElement:
			name := t.Name.Local
			switch {
			case elements.text[name]:
				inText--
			case elements.paragraphs[name]:
				sb.WriteString("\n")
			}
		case xml.CharData:
			if elements.text == nil || inText > 0 {
				sb.Write(t)
			}
		}
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", errors.New("document body has no text")
	}
	return text, nil
}
