package harness

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

type registeredTool struct {
	tool    Tool
	version string
	schema  *jsonschema.Schema
	mountRE *regexp.Regexp
}

// Registry holds the open set of tools available to the harness. Every tool
// must declare a version at registration time; an unversioned tool is
// rejected before it can ever run.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]registeredTool
}

func NewRegistry() *Registry {
	return &Registry{tools: map[string]registeredTool{}}
}

// Register adds a tool. paramsSchema, when non-nil, is a JSON schema the
// merged parameter set is validated against before each execution.
func (r *Registry) Register(t Tool, paramsSchema map[string]any) error {
	desc := t.Descriptor()
	name := strings.TrimSpace(desc.Name)
	if name == "" {
		return fmt.Errorf("tool has no name")
	}

	version, err := t.Version()
	if err != nil {
		return err
	}
	if strings.TrimSpace(version) == "" {
		return &UnversionedToolError{Tool: name}
	}

	var mountRE *regexp.Regexp
	if desc.Mountpoint != "" {
		mountRE, err = regexp.Compile(desc.Mountpoint)
		if err != nil {
			return fmt.Errorf("tool %q: mountpoint pattern: %w", name, err)
		}
	}

	var schema *jsonschema.Schema
	if paramsSchema != nil {
		schema, err = compileParamsSchema(paramsSchema)
		if err != nil {
			return fmt.Errorf("tool %q: params schema: %w", name, err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tools[name]; ok {
		return fmt.Errorf("tool %q already registered", name)
	}
	r.tools[name] = registeredTool{
		tool:    t,
		version: version,
		schema:  schema,
		mountRE: mountRE,
	}
	return nil
}

// Resolve returns the registered tool by name.
func (r *Registry) Resolve(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rt, ok := r.tools[name]
	if !ok {
		return nil, false
	}
	return rt.tool, true
}

// Names returns the sorted registered tool names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for n := range r.tools {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Version returns the declared version of a registered tool.
func (r *Registry) Version(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rt, ok := r.tools[name]
	if !ok {
		return "", false
	}
	return rt.version, true
}

// Runner builds a Runner for one registered tool, wiring in the global
// parameter store and the log sink.
func (r *Registry) Runner(name string, globals Params, log zerolog.Logger) (*Runner, error) {
	r.mu.RLock()
	rt, ok := r.tools[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
	return &Runner{
		Tool:    rt.tool,
		Globals: globals,
		Log:     log,
		schema:  rt.schema,
		mountRE: rt.mountRE,
	}, nil
}

func compileParamsSchema(schema map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("params.json", strings.NewReader(string(b))); err != nil {
		return nil, err
	}
	return c.Compile("params.json")
}
