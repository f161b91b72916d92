package gemini

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/svasthya/svasthya/pkg/ai-sdk/provider"
	"github.com/svasthya/svasthya/pkg/ai-sdk/types"
	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured
const DefaultModel = "gemini-2.5-flash"

// Provider implements the LanguageModel interface for Google Gemini
type Provider struct {
	client *genai.Client

	RequestSettings RequestSettings
}

type RequestSettings struct {
	Model           string
	MaxOutputTokens int32
	Temperature     float32
}

type Config struct {
	APIKey          string
	Model           string
	MaxOutputTokens int32
	HTTPClient      *http.Client
}

// New creates a new Gemini provider
func New(ctx context.Context, config Config) (*Provider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     config.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: config.HTTPClient,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := config.Model
	if model == "" {
		model = DefaultModel
	}

	maxOutputTokens := config.MaxOutputTokens
	if maxOutputTokens <= 0 {
		maxOutputTokens = 4096
	}

	return &Provider{
		client: client,
		RequestSettings: RequestSettings{
			Model:           model,
			MaxOutputTokens: maxOutputTokens,
		},
	}, nil
}

// Generate implements the Generate method of the LanguageModel interface
func (p *Provider) Generate(ctx context.Context, req provider.GenerateRequest) (*types.GenerateResponse, error) {
	config := &genai.GenerateContentConfig{
		MaxOutputTokens: p.RequestSettings.MaxOutputTokens,
	}

	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}

	temperature := p.RequestSettings.Temperature
	if req.Temperature > 0 {
		temperature = req.Temperature
	}
	if temperature > 0 {
		config.Temperature = genai.Ptr(temperature)
	}

	if req.System != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{genai.NewPartFromText(req.System)},
		}
	}

	tools := convertTools(req.Tools)
	if len(tools) > 0 {
		config.Tools = tools
	}

	contents := convertMessages(req.Messages)

	resp, err := p.client.Models.GenerateContent(ctx, p.RequestSettings.Model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("gemini api error: %w", err)
	}

	return convertResponse(resp, p.RequestSettings.Model)
}

// ID returns the model identifier
func (p *Provider) ID() string {
	return fmt.Sprintf("gemini:%s", p.RequestSettings.Model)
}

func convertResponse(resp *genai.GenerateContentResponse, model string) (*types.GenerateResponse, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, types.ErrEmptyResponse
	}

	candidate := resp.Candidates[0]

	response := &types.GenerateResponse{
		FinishReason: mapFinishReason(candidate.FinishReason),
		Model:        model,
	}

	if resp.UsageMetadata != nil {
		response.Usage = types.Usage{
			PromptTokens:      int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens:  int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:       int(resp.UsageMetadata.TotalTokenCount),
			CachedInputTokens: int(resp.UsageMetadata.CachedContentTokenCount),
		}
	}

	var parts []*genai.Part
	if candidate.Content != nil {
		parts = candidate.Content.Parts
	}

	for _, part := range parts {
		if part.Text != "" {
			response.Content += part.Text
		}
		if part.FunctionCall != nil {
			id := part.FunctionCall.ID
			if id == "" {
				// Gemini API does not always return call ids
				id = uuid.New().String()
			}
			toolCall := types.ToolCall{
				ID:        id,
				Name:      part.FunctionCall.Name,
				Arguments: part.FunctionCall.Args,
			}
			if len(part.ThoughtSignature) > 0 {
				toolCall.Metadata = map[string]any{
					"thought_signature": part.ThoughtSignature,
				}
			}
			response.ToolCalls = append(response.ToolCalls, toolCall)
		}
	}

	if len(response.ToolCalls) > 0 {
		response.FinishReason = types.FinishReasonToolCalls
	}

	if response.Blocked() {
		return nil, fmt.Errorf("%w: blocked by safety filters (%s)", types.ErrEmptyResponse, candidate.FinishReason)
	}

	return response, nil
}

// convertMessages converts types.Message to Gemini content format
func convertMessages(messages []types.Message) []*genai.Content {
	var result []*genai.Content

	for _, msg := range messages {
		// System messages go through SystemInstruction
		if msg.Role == types.RoleSystem {
			continue
		}

		var parts []*genai.Part

		// Gemini uses "user" or "model"
		role := "user"
		if msg.Role == types.RoleAssistant {
			role = "model"
		}

		if msg.Content != "" && msg.Role != types.RoleTool {
			parts = append(parts, genai.NewPartFromText(msg.Content))
		}

		for _, tc := range msg.ToolCalls {
			part := &genai.Part{
				FunctionCall: &genai.FunctionCall{
					Name: tc.Name,
					Args: tc.Arguments,
				},
			}
			if sig, ok := tc.Metadata["thought_signature"].([]byte); ok && len(sig) > 0 {
				part.ThoughtSignature = sig
			}
			parts = append(parts, part)
		}

		for _, tr := range msg.ToolResults {
			response := tr.Data
			if response == nil {
				response = map[string]any{"result": tr.Content}
			}
			parts = append(parts, &genai.Part{
				FunctionResponse: &genai.FunctionResponse{
					Name:     tr.ToolName,
					Response: response,
				},
			})
		}

		if len(parts) > 0 {
			result = append(result, &genai.Content{
				Role:  role,
				Parts: parts,
			})
		}
	}

	return result
}

// convertTools converts types.Tool to Gemini function declarations
func convertTools(tools []types.Tool) []*genai.Tool {
	if len(tools) == 0 {
		return nil
	}

	var functionDeclarations []*genai.FunctionDeclaration
	for _, tool := range tools {
		schema := convertParametersToSchema(tool.Parameters)
		if schema != nil && len(tool.PropertyOrder) > 0 {
			schema.PropertyOrdering = tool.PropertyOrder
		}

		functionDeclarations = append(functionDeclarations, &genai.FunctionDeclaration{
			Name:        tool.Name,
			Description: tool.Description,
			Parameters:  schema,
		})
	}

	return []*genai.Tool{{
		FunctionDeclarations: functionDeclarations,
	}}
}

// convertParametersToSchema converts a JSON schema map to genai.Schema
func convertParametersToSchema(params map[string]any) *genai.Schema {
	if params == nil {
		return nil
	}

	schema := &genai.Schema{
		Type: genai.TypeObject,
	}

	if typeVal, ok := params["type"].(string); ok {
		schema.Type = mapSchemaType(typeVal)
	}

	if desc, ok := params["description"].(string); ok {
		schema.Description = desc
	}

	if props, ok := params["properties"].(map[string]any); ok {
		schema.Properties = make(map[string]*genai.Schema)
		for name, propVal := range props {
			if propMap, ok := propVal.(map[string]any); ok {
				schema.Properties[name] = convertParametersToSchema(propMap)
			}
		}
	}

	switch required := params["required"].(type) {
	case []string:
		schema.Required = append(schema.Required, required...)
	case []any:
		for _, r := range required {
			if str, ok := r.(string); ok {
				schema.Required = append(schema.Required, str)
			}
		}
	}

	if items, ok := params["items"].(map[string]any); ok {
		schema.Items = convertParametersToSchema(items)
	}

	return schema
}

// mapSchemaType converts JSON schema type to genai.Type
func mapSchemaType(t string) genai.Type {
	switch t {
	case "string":
		return genai.TypeString
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	default:
		return genai.TypeUnspecified
	}
}

// mapFinishReason maps Gemini finish reasons to standard format
func mapFinishReason(reason genai.FinishReason) string {
	switch reason {
	case genai.FinishReasonMaxTokens:
		return types.FinishReasonLength
	case genai.FinishReasonSafety, genai.FinishReasonRecitation:
		return types.FinishReasonContentFilter
	default:
		return types.FinishReasonStop
	}
}
