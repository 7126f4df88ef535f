package harness

import (
	"fmt"
	"regexp"
	"sort"
)

// InputNode is one node of an input tree. Exactly one of Path, List, Map is
// set: Path for a leaf file path, List for an ordered collection, Map for a
// nested mapping. Nesting depth is unbounded.
type InputNode struct {
	Path string
	List []*InputNode
	Map  map[string]*InputNode
}

// InputSet maps input names to file paths or nested collections of them.
// It is owned by the caller; the harness never mutates a set it is handed.
type InputSet map[string]*InputNode

// PathNode returns a leaf node for a single file path.
func PathNode(path string) *InputNode { return &InputNode{Path: path} }

// ListNode returns an ordered collection of leaf paths.
func ListNode(paths ...string) *InputNode {
	n := &InputNode{List: make([]*InputNode, 0, len(paths))}
	for _, p := range paths {
		n.List = append(n.List, PathNode(p))
	}
	return n
}

// IsLeaf reports whether n holds a single file path.
func (n *InputNode) IsLeaf() bool {
	return n != nil && n.List == nil && n.Map == nil
}

// Leaves returns every leaf path in the tree, visiting each exactly once.
// List entries keep their order; map keys are visited in sorted order.
func (n *InputNode) Leaves() []string {
	if n == nil {
		return nil
	}
	var out []string
	n.walk(func(p string) { out = append(out, p) })
	return out
}

func (n *InputNode) walk(fn func(path string)) {
	switch {
	case n == nil:
	case n.IsLeaf():
		fn(n.Path)
	case n.List != nil:
		for _, c := range n.List {
			c.walk(fn)
		}
	default:
		for _, k := range sortedKeys(n.Map) {
			n.Map[k].walk(fn)
		}
	}
}

// Transform returns a new tree with fn applied to every leaf path. The
// receiver is left untouched.
func (n *InputNode) Transform(fn func(path string) string) *InputNode {
	switch {
	case n == nil:
		return nil
	case n.IsLeaf():
		return PathNode(fn(n.Path))
	case n.List != nil:
		out := &InputNode{List: make([]*InputNode, 0, len(n.List))}
		for _, c := range n.List {
			out.List = append(out.List, c.Transform(fn))
		}
		return out
	default:
		out := &InputNode{Map: make(map[string]*InputNode, len(n.Map))}
		for k, c := range n.Map {
			out.Map[k] = c.Transform(fn)
		}
		return out
	}
}

// Transform applies fn to every leaf of every entry, returning a new set.
func (s InputSet) Transform(fn func(path string) string) InputSet {
	out := make(InputSet, len(s))
	for k, n := range s {
		out[k] = n.Transform(fn)
	}
	return out
}

// Redirect rewrites every leaf matching pattern to the deferred-resolution
// marker form, so that mount resolution happens on the executing node rather
// than at scheduling time. The input set is not modified.
func (s InputSet) Redirect(pattern *regexp.Regexp, marker string) InputSet {
	if pattern == nil {
		return s
	}
	return s.Transform(func(p string) string {
		return pattern.ReplaceAllString(p, marker)
	})
}

// Flatten returns name/path pairs for every leaf, with nested entries named
// by slash-joined key and index segments (e.g. "reads/0").
func (s InputSet) Flatten() []NamedPath {
	var out []NamedPath
	for _, k := range sortedKeys(s) {
		flattenNode(k, s[k], &out)
	}
	return out
}

// NamedPath is one flattened leaf of an input set.
type NamedPath struct {
	Name string
	Path string
}

func flattenNode(name string, n *InputNode, out *[]NamedPath) {
	switch {
	case n == nil:
	case n.IsLeaf():
		*out = append(*out, NamedPath{Name: name, Path: n.Path})
	case n.List != nil:
		if len(n.List) == 1 {
			flattenNode(name, n.List[0], out)
			return
		}
		for i, c := range n.List {
			flattenNode(fmt.Sprintf("%s/%d", name, i), c, out)
		}
	default:
		for _, k := range sortedKeys(n.Map) {
			flattenNode(name+"/"+k, n.Map[k], out)
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
