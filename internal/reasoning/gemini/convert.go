package gemini

import (
	"fmt"

	"google.golang.org/genai"

	"github.com/parley-dev/parley/internal/catalog"
	"github.com/parley-dev/parley/internal/reasoning"
	"github.com/parley-dev/parley/internal/session"
)

// toGeminiContents converts session history to Gemini Content format.
// Tool turns carry only the call id, so the originating invocation's tool
// name is resolved from the preceding assistant turns.
func toGeminiContents(history []session.Turn) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	callNames := make(map[string]string)
	for _, turn := range history {
		if turn.Role == session.RoleAssistant && turn.ToolCall != nil {
			callNames[turn.ToolCall.ID] = turn.ToolCall.Name
		}
		if content := turnToGeminiContent(turn, callNames); content != nil {
			contents = append(contents, content)
		}
	}
	return contents
}

// turnToGeminiContent converts a single turn to Gemini Content format.
func turnToGeminiContent(turn session.Turn, callNames map[string]string) *genai.Content {
	switch turn.Role {
	case session.RoleUser:
		if turn.Text == "" {
			return nil
		}
		return &genai.Content{
			Role:  "user",
			Parts: []*genai.Part{genai.NewPartFromText(turn.Text)},
		}

	case session.RoleAssistant:
		if turn.ToolCall != nil {
			return &genai.Content{
				Role: "model",
				Parts: []*genai.Part{{
					FunctionCall: &genai.FunctionCall{
						Name: turn.ToolCall.Name,
						Args: turn.ToolCall.Args,
					},
				}},
			}
		}
		if turn.Text == "" {
			return nil
		}
		return &genai.Content{
			Role:  "model",
			Parts: []*genai.Part{genai.NewPartFromText(turn.Text)},
		}

	case session.RoleTool:
		name := callNames[turn.CallID]
		if name == "" {
			name = turn.CallID
		}
		return &genai.Content{
			Role: "user",
			Parts: []*genai.Part{{
				FunctionResponse: &genai.FunctionResponse{
					Name: name,
					Response: map[string]any{
						"content": turn.Text,
					},
				},
			}},
		}
	}
	return nil
}

// defaultSafetySettings returns safety settings with blocking disabled for
// all categories; the confirmation gate, not the model, guards mutations.
func defaultSafetySettings() []*genai.SafetySetting {
	return []*genai.SafetySetting{
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdOff},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdOff},
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdOff},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdOff},
	}
}

// toGeminiTools converts catalog descriptors to Gemini tools.
func toGeminiTools(descs []catalog.Descriptor) []*genai.Tool {
	if len(descs) == 0 {
		return nil
	}

	functionDeclarations := make([]*genai.FunctionDeclaration, 0, len(descs))
	for _, d := range descs {
		fd := &genai.FunctionDeclaration{
			Name:        d.Name,
			Description: d.Description,
		}
		if d.Parameters != nil {
			fd.Parameters = toGeminiSchema(d.Parameters)
		}
		functionDeclarations = append(functionDeclarations, fd)
	}

	return []*genai.Tool{
		{FunctionDeclarations: functionDeclarations},
	}
}

// toGeminiSchema converts a catalog Schema to a Gemini Schema.
func toGeminiSchema(params *catalog.Schema) *genai.Schema {
	schema := &genai.Schema{
		Type:        toGeminiType(params.Type),
		Description: params.Description,
	}

	if params.Properties != nil {
		schema.Properties = make(map[string]*genai.Schema, len(params.Properties))
		for name, prop := range params.Properties {
			schema.Properties[name] = toGeminiSchema(prop)
		}
	}
	if params.Items != nil {
		schema.Items = toGeminiSchema(params.Items)
	}
	if len(params.Enum) > 0 {
		schema.Enum = params.Enum
	}
	if len(params.Required) > 0 {
		schema.Required = params.Required
	}

	return schema
}

// toGeminiType converts a schema type to a Gemini Type.
func toGeminiType(t catalog.Type) genai.Type {
	switch t {
	case catalog.TypeString:
		return genai.TypeString
	case catalog.TypeNumber:
		return genai.TypeNumber
	case catalog.TypeInteger:
		return genai.TypeInteger
	case catalog.TypeBoolean:
		return genai.TypeBoolean
	case catalog.TypeArray:
		return genai.TypeArray
	case catalog.TypeObject:
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}

// fromGeminiResponse converts a Gemini response to a reasoning Outcome.
func fromGeminiResponse(resp *genai.GenerateContentResponse) (*reasoning.Outcome, error) {
	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return nil, fmt.Errorf("content blocked by safety filters")
	}
	if candidate.Content == nil {
		return nil, fmt.Errorf("candidate has no content")
	}

	// One proposed function call wins over any accompanying text.
	for _, part := range candidate.Content.Parts {
		if part.FunctionCall != nil {
			return reasoning.ToolCallOutcome(session.ToolCall{
				ID:   newCallID(), // Gemini doesn't provide IDs
				Name: part.FunctionCall.Name,
				Args: part.FunctionCall.Args,
			}), nil
		}
	}

	var text string
	for _, part := range candidate.Content.Parts {
		text += part.Text
	}
	return reasoning.TextOutcome(text), nil
}
