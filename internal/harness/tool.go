package harness

import (
	"context"
)

// Descriptor is the static declaration of a tool.
type Descriptor struct {
	// Name identifies the tool in the registry and in execution records.
	Name string
	// Expected lists the input keys that must be present in any input set
	// bound to this tool.
	Expected []string
	// Output is the default output filename used when the caller does not
	// designate an output path.
	Output string
	// Mountpoint, when non-empty, is a regular expression matching input
	// paths that were redirected through the distributed layer at
	// scheduling time. Matching leaves are rewritten to the deferred
	// marker form before binding.
	Mountpoint string
}

// Tool is one named, versioned unit of work. Run materializes outputPath
// from the bound parameters and may return a benchmark of the execution;
// built-in tools that do no real computation return a nil benchmark.
type Tool interface {
	Descriptor() Descriptor
	Version() (string, error)
	Defaults() Params
	Run(ctx context.Context, outputPath string, params Params) (*Benchmark, error)
}

// Bind validates inputs against the descriptor's expected keys and returns
// the bound subset plus any extra entries the set carries. It has no side
// effects; a MissingInputError aborts before anything touches the
// filesystem.
func (d Descriptor) Bind(inputs InputSet) (InputSet, error) {
	var missing []string
	for _, key := range d.Expected {
		if _, ok := inputs[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingInputError{Tool: d.Name, Keys: missing}
	}
	bound := make(InputSet, len(inputs))
	for k, n := range inputs {
		bound[k] = n
	}
	return bound, nil
}
