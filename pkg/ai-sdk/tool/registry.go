package tool

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/svasthya/svasthya/pkg/ai-sdk/types"
)

// Registry is the immutable table of tool definitions and their implementations.
// It is built once at startup and safe for concurrent reads.
type Registry struct {
	definitions []Definition
	index       map[string]int
	funcs       map[string]Func
	schemas     map[string]*jsonschema.Schema
}

// NewRegistry pairs every definition with its implementation. A name present in
// one table but not the other, a duplicate name, or a schema that does not
// compile is a configuration error.
func NewRegistry(definitions []Definition, funcs map[string]Func) (*Registry, error) {
	r := &Registry{
		definitions: make([]Definition, 0, len(definitions)),
		index:       make(map[string]int, len(definitions)),
		funcs:       make(map[string]Func, len(definitions)),
		schemas:     make(map[string]*jsonschema.Schema, len(definitions)),
	}

	var problems []string

	for _, def := range definitions {
		if def.Name == "" {
			problems = append(problems, "definition with empty name")
			continue
		}
		if _, dup := r.index[def.Name]; dup {
			problems = append(problems, fmt.Sprintf("duplicate definition %q", def.Name))
			continue
		}

		fn, ok := funcs[def.Name]
		if !ok || fn == nil {
			problems = append(problems, fmt.Sprintf("definition %q has no implementation", def.Name))
			continue
		}

		schema, err := compileSchema(def)
		if err != nil {
			problems = append(problems, fmt.Sprintf("definition %q: %v", def.Name, err))
			continue
		}

		r.index[def.Name] = len(r.definitions)
		r.definitions = append(r.definitions, def)
		r.funcs[def.Name] = fn
		r.schemas[def.Name] = schema
	}

	var orphans []string
	for name := range funcs {
		if _, ok := r.index[name]; !ok && !containsDefinition(definitions, name) {
			orphans = append(orphans, name)
		}
	}
	sort.Strings(orphans)
	for _, name := range orphans {
		problems = append(problems, fmt.Sprintf("implementation %q has no definition", name))
	}

	if len(problems) > 0 {
		return nil, fmt.Errorf("inconsistent tool registry: %s", strings.Join(problems, "; "))
	}

	return r, nil
}

// MustNewRegistry is like NewRegistry but panics on inconsistency
func MustNewRegistry(definitions []Definition, funcs map[string]Func) *Registry {
	r, err := NewRegistry(definitions, funcs)
	if err != nil {
		panic(err)
	}
	return r
}

// Definitions returns the definitions in registration order
func (r *Registry) Definitions() []Definition {
	return append([]Definition(nil), r.definitions...)
}

// Definition returns the definition registered under name
func (r *Registry) Definition(name string) (Definition, bool) {
	i, ok := r.index[name]
	if !ok {
		return Definition{}, false
	}
	return r.definitions[i], true
}

// Lookup returns the implementation registered under name
func (r *Registry) Lookup(name string) (Func, bool) {
	fn, ok := r.funcs[name]
	return fn, ok
}

// Tools returns the function manifest handed to the model
func (r *Registry) Tools() []types.Tool {
	tools := make([]types.Tool, 0, len(r.definitions))
	for _, def := range r.definitions {
		tools = append(tools, def.ToTypesTool())
	}
	return tools
}

func (r *Registry) schema(name string) *jsonschema.Schema {
	return r.schemas[name]
}

func compileSchema(def Definition) (*jsonschema.Schema, error) {
	data, err := json.Marshal(def.JSONSchema())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	url := fmt.Sprintf("tools/%s.json", def.Name)

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to add schema: %w", err)
	}

	schema, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	return schema, nil
}

func containsDefinition(definitions []Definition, name string) bool {
	for _, def := range definitions {
		if def.Name == name {
			return true
		}
	}
	return false
}
