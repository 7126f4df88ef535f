package harness

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"
	"time"
)

// ExternalCommandTool materializes its output by templating a command line
// from the bound parameters and executing it with stdout redirected into the
// output file. Tool families in the run config are thin declarations over
// this type.
type ExternalCommandTool struct {
	Name        string
	ToolVersion string
	// Path is the program (plus fixed arguments) bound to the {path} slot.
	Path string
	// Options is bound to the {options} slot.
	Options    string
	Expected   []string
	Output     string
	Mountpoint string
	// Template overrides the default command template
	// "{path} {options} {<first expected key>}".
	Template string
}

func (t *ExternalCommandTool) Descriptor() Descriptor {
	return Descriptor{
		Name:       t.Name,
		Expected:   t.Expected,
		Output:     t.Output,
		Mountpoint: t.Mountpoint,
	}
}

func (t *ExternalCommandTool) Version() (string, error) {
	if strings.TrimSpace(t.ToolVersion) == "" {
		return "", &UnversionedToolError{Tool: t.Name}
	}
	return t.ToolVersion, nil
}

func (t *ExternalCommandTool) Defaults() Params {
	return Params{"path": t.Path, "options": t.Options}
}

func (t *ExternalCommandTool) template() string {
	if t.Template != "" {
		return t.Template
	}
	data := "data"
	if len(t.Expected) > 0 {
		data = t.Expected[0]
	}
	return "{path} {options} {" + data + "}"
}

func (t *ExternalCommandTool) Run(ctx context.Context, outputPath string, params Params) (*Benchmark, error) {
	cmdStr, err := ExpandTemplate(t.template(), params)
	if err != nil {
		return nil, err
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = out.Close() }()

	cmd := exec.CommandContext(ctx, "sh", "-c", cmdStr)
	// The command gets no stdin; tools read their inputs from the
	// templated paths.
	cmd.Stdin = strings.NewReader("")
	cmd.Stdout = out
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	dur := time.Since(start)

	exitCode := -1
	if cmd.ProcessState != nil {
		exitCode = cmd.ProcessState.ExitCode()
	}
	if runErr != nil {
		return nil, &ExecutionError{
			Command:  cmdStr,
			ExitCode: exitCode,
			Stderr:   truncate(stderr.String(), 8_000),
		}
	}

	return &Benchmark{
		Command:    cmdStr,
		ExitCode:   exitCode,
		StartedAt:  start.UTC(),
		DurationMS: dur.Milliseconds(),
	}, nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n]
}
