package extract

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrExtraction        = errors.New("extraction error")
	ErrExternalProcess   = errors.New("external process error")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrFileTooLarge      = errors.New("file too large")
)

// ExtractionError means one file could not be turned into text. It never
// concerns more than that file.
type ExtractionError struct {
	Path   string
	Family Family
	Err    error
}

// ExternalProcessError is returned by the office extraction subprocess.
type ExternalProcessError struct {
	Command  string
	ExitCode int
	Output   string
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("could not extract %s text from %s: %s", e.Family, e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

func (e *ExtractionError) Is(target error) bool {
	return target == ErrExtraction
}

func (e *ExternalProcessError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s failed", e.Command)
	if e.ExitCode != 0 {
		fmt.Fprintf(&sb, " with exit code %d", e.ExitCode)
	}
	if e.Err != nil {
		fmt.Fprintf(&sb, ": %s", e.Err)
	}
	if e.Output != "" {
		fmt.Fprintf(&sb, " (%s)", e.Output)
	}
	return sb.String()
}

func (e *ExternalProcessError) Unwrap() error {
	return e.Err
}

func (e *ExternalProcessError) Is(target error) bool {
	return target == ErrExternalProcess
}
