package harness

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"

	"github.com/cgat-developers/cgat-bench/internal/fsutil"
)

// IdentityTool materializes its output as a zero-copy reference to a single
// source file. A regular source is symlinked; a mount-backed source gets an
// empty placeholder carrying the source's timestamps plus a ".mnt" sidecar
// naming the resolved mounted location, so staleness checks keep working
// without the mount being visible at scheduling time.
type IdentityTool struct {
	Resolver Resolver
	// GlobSuffix, when non-empty, propagates companion files matching
	// source+GlobSuffix (e.g. ".bai", "*.tbi") to sibling outputs.
	GlobSuffix string
	// Mountpoint is the optional redirect pattern, see Descriptor.
	Mountpoint string
	Log        zerolog.Logger
}

func (t *IdentityTool) Descriptor() Descriptor {
	return Descriptor{
		Name:       "identity",
		Expected:   []string{"file"},
		Output:     "result.bam",
		Mountpoint: t.Mountpoint,
	}
}

func (t *IdentityTool) Version() (string, error) { return "builtin", nil }

func (t *IdentityTool) Defaults() Params { return nil }

func (t *IdentityTool) Run(ctx context.Context, outputPath string, params Params) (*Benchmark, error) {
	_ = ctx

	source, err := t.singleFile(params)
	if err != nil {
		return nil, err
	}
	source, err = filepath.Abs(source)
	if err != nil {
		return nil, err
	}

	link := os.Symlink
	if t.Resolver != nil && t.Resolver.IsMounted(source) {
		link = t.touchAndMark
	}

	if !fsutil.Exists(outputPath) {
		if err := link(source, outputPath); err != nil && !errors.Is(err, fs.ErrExist) {
			return nil, err
		}
	}

	if t.GlobSuffix != "" {
		if err := t.linkSiblings(source, outputPath, link); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

func (t *IdentityTool) singleFile(params Params) (string, error) {
	v, ok := params["file"]
	if !ok {
		return "", &MissingInputError{Tool: "identity", Keys: []string{"file"}}
	}
	switch fn := v.(type) {
	case string:
		return fn, nil
	case []string:
		if len(fn) == 1 {
			return fn[0], nil
		}
		return "", &MultipleFilesError{Tool: "identity", Key: "file", Count: len(fn)}
	default:
		return "", fmt.Errorf("tool \"identity\": input \"file\" is not a path: %T", v)
	}
}

// touchAndMark creates an empty placeholder at dest inheriting the source's
// access and modification times, and records the resolved mounted location
// in the ".mnt" sidecar.
func (t *IdentityTool) touchAndMark(source, dest string) error {
	location, err := t.Resolver.MountedLocation(source)
	if err != nil {
		return err
	}
	atime, mtime, err := fsutil.StatTimes(source)
	if err != nil {
		// The marker form is not statable on this node; fall back to the
		// resolved location.
		atime, mtime, err = fsutil.StatTimes(location)
		if err != nil {
			return err
		}
	}
	if err := fsutil.Touch(dest, atime, mtime); err != nil {
		return err
	}
	return os.WriteFile(MountMarkerPath(dest), []byte(location), 0o644)
}

// linkSiblings applies the chosen link strategy to every file matching
// source+GlobSuffix. Sibling output names are derived by replacing the
// source basename; matches that do not share it as a prefix are skipped.
func (t *IdentityTool) linkSiblings(source, outputPath string, link func(string, string) error) error {
	matches, err := doublestar.FilepathGlob(source + t.GlobSuffix)
	if err != nil {
		return fmt.Errorf("tool \"identity\": glob %q: %w", source+t.GlobSuffix, err)
	}
	prefix := filepath.Base(source)
	for _, m := range matches {
		base := filepath.Base(m)
		if !strings.HasPrefix(base, prefix) || base == prefix {
			t.Log.Warn().
				Str("match", m).
				Str("source", source).
				Msg("glob match does not extend the source basename, skipping")
			continue
		}
		target := outputPath + base[len(prefix):]
		if fsutil.Exists(target) {
			continue
		}
		abs, err := filepath.Abs(m)
		if err != nil {
			return err
		}
		if err := link(abs, target); err != nil && !errors.Is(err, fs.ErrExist) {
			return err
		}
	}
	return nil
}
