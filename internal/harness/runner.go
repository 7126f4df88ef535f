package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ExecOptions controls one invocation.
type ExecOptions struct {
	// DryRun refreshes provenance metadata without running the tool.
	DryRun bool
}

// Runner drives one tool invocation end to end: redirect mounts, bind
// inputs, record provenance, and — unless running dry — build parameters,
// execute, and persist the benchmark. A Runner holds no state across
// invocations; output-path uniqueness is the caller's responsibility.
type Runner struct {
	Tool    Tool
	Globals Params
	// Marker is the deferred-resolution prefix substituted into redirected
	// inputs; DefaultMarker if empty.
	Marker string
	Log    zerolog.Logger

	schema  *jsonschema.Schema
	mountRE *regexp.Regexp
}

// Execute runs the tool once against inputs, producing outputPath and its
// sidecar records. The execution record is written even in dry-run mode;
// the output and benchmark only on a real run.
func (r *Runner) Execute(ctx context.Context, inputs InputSet, outputPath string, opts ExecOptions) error {
	desc := r.Tool.Descriptor()

	mountRE := r.mountRE
	if mountRE == nil && desc.Mountpoint != "" {
		re, err := regexp.Compile(desc.Mountpoint)
		if err != nil {
			return fmt.Errorf("tool %q: mountpoint pattern: %w", desc.Name, err)
		}
		mountRE = re
	}
	marker := r.Marker
	if marker == "" {
		marker = DefaultMarker
	}
	inputs = inputs.Redirect(mountRE, marker)

	bound, err := desc.Bind(inputs)
	if err != nil {
		return err
	}

	version, err := r.Tool.Version()
	if err != nil {
		return err
	}

	record := NewExecutionRecord(desc.Name, version, bound, outputPath)
	if err := record.Write(outputPath); err != nil {
		return fmt.Errorf("tool %q: write execution record: %w", desc.Name, err)
	}

	if opts.DryRun {
		r.Log.Warn().
			Str("tool", desc.Name).
			Str("output", outputPath).
			Msg("dry run: meta information has been updated, no computation performed")
		return nil
	}

	params := BuildParams(r.Globals, r.Tool.Defaults(), bound, outputPath)
	if r.schema != nil {
		doc, err := schemaDocument(params)
		if err != nil {
			return fmt.Errorf("tool %q: params: %w", desc.Name, err)
		}
		if err := r.schema.Validate(doc); err != nil {
			return fmt.Errorf("tool %q: params: %w", desc.Name, err)
		}
	}

	benchmark, err := r.Tool.Run(ctx, outputPath, params)
	if err != nil {
		return err
	}
	if benchmark == nil {
		return nil
	}
	if err := WriteBenchmark(outputPath, benchmark); err != nil {
		return fmt.Errorf("tool %q: write benchmark: %w", desc.Name, err)
	}
	return nil
}

// schemaDocument round-trips params through JSON; the schema validator only
// accepts values shaped like json.Unmarshal output.
func schemaDocument(params Params) (any, error) {
	b, err := json.Marshal(map[string]any(params))
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
