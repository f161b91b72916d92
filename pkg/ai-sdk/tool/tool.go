package tool

import (
	"context"

	"github.com/svasthya/svasthya/pkg/ai-sdk/types"
)

// ParameterType is the JSON schema type of a tool parameter
type ParameterType string

const (
	TypeString  ParameterType = "string"
	TypeNumber  ParameterType = "number"
	TypeInteger ParameterType = "integer"
	TypeBoolean ParameterType = "boolean"
	TypeObject  ParameterType = "object"
	TypeArray   ParameterType = "array"
)

// Parameter describes one named argument of a tool
type Parameter struct {
	Name        string
	Type        ParameterType
	Description string
	Required    bool
}

// Definition is the declaration of a tool as advertised to the model.
// Parameters keeps declaration order.
type Definition struct {
	Name        string
	Description string
	Parameters  []Parameter
}

// Arguments is the raw argument bag produced by the model
type Arguments map[string]any

// Result is the structured outcome of a tool, handed back to the model verbatim
type Result map[string]any

// Func is the executable implementation behind a Definition
type Func func(ctx context.Context, args Arguments) (Result, error)

// RequiredParameters returns the names of required parameters in declaration order
func (d Definition) RequiredParameters() []string {
	required := []string{}
	for _, p := range d.Parameters {
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return required
}

// JSONSchema renders the parameter list as a JSON schema object
func (d Definition) JSONSchema() map[string]any {
	properties := make(map[string]any, len(d.Parameters))
	for _, p := range d.Parameters {
		property := map[string]any{
			"type": string(p.Type),
		}
		if p.Description != "" {
			property["description"] = p.Description
		}
		properties[p.Name] = property
	}

	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if required := d.RequiredParameters(); len(required) > 0 {
		schema["required"] = required
	}

	return schema
}

// ToTypesTool converts the definition to the provider-neutral declaration
func (d Definition) ToTypesTool() types.Tool {
	order := make([]string, 0, len(d.Parameters))
	for _, p := range d.Parameters {
		order = append(order, p.Name)
	}

	return types.Tool{
		Name:          d.Name,
		Description:   d.Description,
		Parameters:    d.JSONSchema(),
		PropertyOrder: order,
	}
}
