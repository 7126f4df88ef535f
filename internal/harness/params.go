package harness

import (
	"fmt"
	"regexp"
	"strings"
)

// Params is the merged parameter set a tool executes against.
type Params map[string]any

var slotRE = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

// BuildParams merges, in increasing precedence, the global configuration
// parameters, the tool's declared defaults, and the bound inputs, and binds
// the designated output path under "output_file".
func BuildParams(globals Params, defaults Params, bound InputSet, outputPath string) Params {
	out := make(Params, len(globals)+len(defaults)+len(bound)+1)
	for k, v := range globals {
		out[k] = v
	}
	for k, v := range defaults {
		out[k] = v
	}
	for k, n := range bound {
		out[k] = nodeValue(n)
	}
	out["output_file"] = outputPath
	return out
}

// nodeValue collapses an input node for parameter binding: a leaf becomes
// its path, a single-element list its sole path, anything else the ordered
// list of leaf paths.
func nodeValue(n *InputNode) any {
	if n.IsLeaf() {
		return n.Path
	}
	leaves := n.Leaves()
	if len(leaves) == 1 {
		return leaves[0]
	}
	return leaves
}

// ExpandTemplate substitutes every {slot} in tmpl from params. All
// referenced slots must be bound; an unbound slot fails before any command
// line is produced.
func ExpandTemplate(tmpl string, params Params) (string, error) {
	var missing *UnboundSlotError
	expanded := slotRE.ReplaceAllStringFunc(tmpl, func(m string) string {
		slot := m[1 : len(m)-1]
		v, ok := params[slot]
		if !ok {
			if missing == nil {
				missing = &UnboundSlotError{Slot: slot, Template: tmpl}
			}
			return m
		}
		return renderValue(v)
	})
	if missing != nil {
		return "", missing
	}
	return expanded, nil
}

func renderValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []string:
		return strings.Join(t, " ")
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			parts = append(parts, renderValue(e))
		}
		return strings.Join(parts, " ")
	default:
		return fmt.Sprint(v)
	}
}
