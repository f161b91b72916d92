package types

// Tool is the provider-neutral function declaration sent to the model.
// Parameters is a JSON schema object ({"type":"object","properties":...,"required":[...]}).
// PropertyOrder lists the property names in declaration order.
type Tool struct {
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	Parameters    map[string]any `json:"parameters"`
	PropertyOrder []string       `json:"property_order,omitempty"`
}
