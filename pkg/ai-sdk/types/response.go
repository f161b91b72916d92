package types

// GenerateResponse represents a response from text generation
type GenerateResponse struct {
	Content      string     `json:"content"`
	ToolCalls    []ToolCall `json:"tool_calls,omitempty"`
	Usage        Usage      `json:"usage"`
	FinishReason string     `json:"finish_reason"`
	Model        string     `json:"model"`
}

// FinishReason constants
const (
	FinishReasonStop          = "stop"
	FinishReasonLength        = "length"
	FinishReasonToolCalls     = "tool_calls"
	FinishReasonContentFilter = "content_filter"
	FinishReasonError         = "error"
)

// Blocked reports whether the provider withheld the reply, leaving neither
// text nor a function call
func (r *GenerateResponse) Blocked() bool {
	return r.FinishReason == FinishReasonContentFilter && r.Content == "" && len(r.ToolCalls) == 0
}
