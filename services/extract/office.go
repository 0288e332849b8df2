package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/meghashyamc/buscador/logger"
	"github.com/meghashyamc/buscador/services/occurrence"
)

type ResultKind int

const (
	RawText ResultKind = iota
	PrecomputedMatches
)

const maxReportedOutput = 512

// OfficeResult is what the office extraction helper returned for one file.
type OfficeResult struct {
	Kind    ResultKind
	Text    string
	Matches []occurrence.Excerpt
}

// OfficeRunner extracts spreadsheets and presentations. With an empty term it
// returns raw text; otherwise it may also locate the term itself.
type OfficeRunner interface {
	Run(ctx context.Context, path string, extension string, term string) (*OfficeResult, error)
}

// OfficeExtractor adapts an OfficeRunner to the Extractor interfaces.
type OfficeExtractor struct {
	Runner OfficeRunner
}

func (e *OfficeExtractor) Extract(ctx context.Context, path string) (string, error) {
	result, err := e.Runner.Run(ctx, path, strings.ToLower(filepath.Ext(path)), "")
	if err != nil {
		return "", err
	}
	return result.Text, nil
}

func (e *OfficeExtractor) ExtractForQuery(ctx context.Context, path string, term string) (*OfficeResult, error) {
	return e.Runner.Run(ctx, path, strings.ToLower(filepath.Ext(path)), term)
}

// OfficeCommand runs the external helper as
// `<command...> <path> <extension> [term]`.
type OfficeCommand struct {
	command []string
	timeout time.Duration
	logger  logger.Logger
}

func NewOfficeCommand(logger logger.Logger, command []string, timeout time.Duration) (*OfficeCommand, error) {
	if len(command) == 0 {
		return nil, errors.New("office extractor command cannot be empty")
	}
	return &OfficeCommand{command: command, timeout: timeout, logger: logger}, nil
}

type officeOutput struct {
	Content string        `json:"content"`
	Matches []officeMatch `json:"matches"`
}

type officeMatch struct {
	Position int    `json:"position"`
	Excerpt  string `json:"excerpt"`
	Location string `json:"location"`
}

func (c *OfficeCommand) Run(ctx context.Context, path string, extension string, term string) (*OfficeResult, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	args := append([]string{}, c.command[1:]...)
	args = append(args, path, extension)
	if term != "" {
		args = append(args, term)
	}

	cmd := exec.CommandContext(ctx, c.command[0], args...)
	cmd.WaitDelay = time.Second
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	if err != nil {
		processErr := &ExternalProcessError{
			Command: c.command[0],
			Output:  tail(stderr.String(), stdout.String()),
			Err:     err,
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			processErr.ExitCode = exitErr.ExitCode()
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			processErr.Err = ctxErr
		}
		c.logger.Warn("office extractor failed", "path", path, "err", processErr.Error())
		return nil, processErr
	}

	c.logger.Debug("office extractor finished", "path", path, "duration", time.Since(start).String())
	return parseOfficeOutput(c.command[0], stdout.String(), term)
}

// parseOfficeOutput treats output starting with '{' as pre-scanned JSON when a
// term was given; anything else is raw text.
func parseOfficeOutput(command string, output string, term string) (*OfficeResult, error) {
	trimmed := strings.TrimSpace(output)
	if term == "" || !strings.HasPrefix(trimmed, "{") {
		return &OfficeResult{Kind: RawText, Text: strings.TrimRight(output, "\r\n")}, nil
	}

	var parsed officeOutput
	if err := json.Unmarshal([]byte(trimmed), &parsed); err != nil {
		return nil, &ExternalProcessError{
			Command: command,
			Output:  tail(trimmed),
			Err:     fmt.Errorf("malformed output: %w", err),
		}
	}

	matches := make([]occurrence.Excerpt, 0, len(parsed.Matches))
	for _, match := range parsed.Matches {
		matches = append(matches, occurrence.Excerpt{
			Offset:   match.Position,
			Text:     match.Excerpt,
			Location: match.Location,
		})
	}

	return &OfficeResult{Kind: PrecomputedMatches, Text: parsed.Content, Matches: matches}, nil
}

// tail returns the end of the first non-empty output.
func tail(outputs ...string) string {
	for _, output := range outputs {
		output = strings.TrimSpace(output)
		if output == "" {
			continue
		}
		if len(output) > maxReportedOutput {
			output = "..." + output[len(output)-maxReportedOutput:]
		}
		return output
	}
	return ""
}
