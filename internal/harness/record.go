package harness

import (
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/zeebo/blake3"

	"github.com/cgat-developers/cgat-bench/internal/fsutil"
)

// RecordInput is one resolved input of an execution, post mount-redirection.
// Digest is the blake3 hash of the file contents when the path is locally
// readable; deferred (marker-prefixed) and unreadable paths carry no digest.
type RecordInput struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Digest string `json:"digest,omitempty"`
}

// ExecutionRecord is the provenance metadata persisted alongside an output
// artifact. It is written on every invocation, dry-run included, and never
// deleted by the harness.
type ExecutionRecord struct {
	InvocationID string        `json:"invocation_id"`
	Tool         string        `json:"tool"`
	Version      string        `json:"version"`
	Inputs       []RecordInput `json:"inputs"`
	Output       string        `json:"output"`
	Timestamp    time.Time     `json:"timestamp"`
}

// Benchmark is the performance record captured from one real execution.
type Benchmark struct {
	Command    string    `json:"command,omitempty"`
	ExitCode   int       `json:"exit_code"`
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
}

// RecordPath returns the execution-record sidecar path for an output.
func RecordPath(outputPath string) string { return outputPath + ".meta.json" }

// BenchmarkPath returns the benchmark sidecar path for an output.
func BenchmarkPath(outputPath string) string { return outputPath + ".bench.json" }

// MountMarkerPath returns the mount-marker sidecar path for an output.
func MountMarkerPath(outputPath string) string { return outputPath + ".mnt" }

// NewExecutionRecord builds the provenance record for one invocation of
// tool/version against the bound inputs.
func NewExecutionRecord(tool, version string, bound InputSet, outputPath string) ExecutionRecord {
	flat := bound.Flatten()
	inputs := make([]RecordInput, 0, len(flat))
	for _, np := range flat {
		in := RecordInput{Name: np.Name, Path: np.Path}
		if digest, err := digestFile(np.Path); err == nil {
			in.Digest = digest
		}
		inputs = append(inputs, in)
	}
	return ExecutionRecord{
		InvocationID: ulid.Make().String(),
		Tool:         tool,
		Version:      version,
		Inputs:       inputs,
		Output:       outputPath,
		Timestamp:    time.Now().UTC(),
	}
}

// Write persists the record to the sidecar next to outputPath, overwriting
// any previous record.
func (r ExecutionRecord) Write(outputPath string) error {
	return fsutil.WriteJSON(RecordPath(outputPath), r)
}

// ReadExecutionRecord loads the record sidecar for outputPath.
func ReadExecutionRecord(outputPath string) (ExecutionRecord, error) {
	var rec ExecutionRecord
	b, err := os.ReadFile(RecordPath(outputPath))
	if err != nil {
		return rec, err
	}
	if err := json.Unmarshal(b, &rec); err != nil {
		return rec, err
	}
	return rec, nil
}

// WriteBenchmark persists a benchmark keyed to outputPath.
func WriteBenchmark(outputPath string, b *Benchmark) error {
	return fsutil.WriteJSON(BenchmarkPath(outputPath), b)
}

func digestFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()
	h := blake3.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
