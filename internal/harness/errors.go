package harness

import (
	"fmt"
	"sort"
	"strings"
)

// MissingInputError is returned when an input set lacks one or more of the
// keys a tool declares as expected. It is raised before any file is written.
type MissingInputError struct {
	Tool string
	Keys []string
}

func (e *MissingInputError) Error() string {
	keys := append([]string{}, e.Keys...)
	sort.Strings(keys)
	return fmt.Sprintf("tool %q: missing required input(s): %s", e.Tool, strings.Join(keys, ", "))
}

// UnversionedToolError is returned when a tool does not declare a version.
// Built-in tools declare the literal version "builtin"; everything else must
// carry an explicit version string.
type UnversionedToolError struct {
	Tool string
}

func (e *UnversionedToolError) Error() string {
	return fmt.Sprintf("no version defined for tool %q", e.Tool)
}

// MultipleFilesError is returned when the identity tool is handed more than
// one file; the identity operation is defined for a single source only.
type MultipleFilesError struct {
	Tool  string
	Key   string
	Count int
}

func (e *MultipleFilesError) Error() string {
	return fmt.Sprintf("tool %q: input %q holds %d files, expected exactly one", e.Tool, e.Key, e.Count)
}

// ResolutionError is returned when a mounted location is requested for a
// path that is not mount-backed.
type ResolutionError struct {
	Path string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("path %q is not mount-backed", e.Path)
}

// ExecutionError carries the exit status and captured stderr of a failed
// external command.
type ExecutionError struct {
	Command  string
	ExitCode int
	Stderr   string
}

func (e *ExecutionError) Error() string {
	msg := fmt.Sprintf("command %q exited with code %d", e.Command, e.ExitCode)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

// UnboundSlotError is returned when a command template references a slot
// that is not present in the parameter set.
type UnboundSlotError struct {
	Slot     string
	Template string
}

func (e *UnboundSlotError) Error() string {
	return fmt.Sprintf("template %q references unbound slot %q", e.Template, e.Slot)
}
