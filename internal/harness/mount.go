package harness

import (
	"path/filepath"
	"strings"
)

// DefaultMarker is the deferred-resolution prefix written into redirected
// input paths. The executing node resolves marked paths against its own
// mount root.
const DefaultMarker = "arv="

// Resolver answers whether a path is backed by a distributed mount and, if
// so, where it resolves on the local node. Implementations must be cheap and
// side-effect free; they are called from any worker node.
type Resolver interface {
	IsMounted(path string) bool
	MountedLocation(path string) (string, error)
}

// PrefixResolver recognizes mount-backed paths by the deferred-resolution
// marker or by residing under a configured mount root.
type PrefixResolver struct {
	// Root is the node-local directory the distributed filesystem is
	// mounted at (e.g. "/keep"). Empty means no local mount.
	Root string
	// Marker is the deferred-resolution prefix; DefaultMarker if empty.
	Marker string
}

func (r *PrefixResolver) marker() string {
	if r.Marker == "" {
		return DefaultMarker
	}
	return r.Marker
}

// IsMounted reports whether path carries the deferred marker or lies under
// the mount root.
func (r *PrefixResolver) IsMounted(path string) bool {
	if strings.Contains(path, r.marker()) {
		return true
	}
	return r.underRoot(path)
}

// MountedLocation returns the node-local path for a mount-backed path.
// Marked paths resolve against the mount root; paths already under the root
// resolve to themselves.
func (r *PrefixResolver) MountedLocation(path string) (string, error) {
	marker := r.marker()
	if idx := strings.Index(path, marker); idx >= 0 {
		rest := path[idx+len(marker):]
		if r.Root == "" {
			return rest, nil
		}
		return filepath.Join(r.Root, rest), nil
	}
	if r.underRoot(path) {
		return path, nil
	}
	return "", &ResolutionError{Path: path}
}

func (r *PrefixResolver) underRoot(path string) bool {
	if r.Root == "" {
		return false
	}
	root := strings.TrimSuffix(r.Root, string(filepath.Separator))
	return path == root || strings.HasPrefix(path, root+string(filepath.Separator))
}
