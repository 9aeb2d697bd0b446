package gemini

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/parley-dev/parley/internal/catalog"
	"github.com/parley-dev/parley/internal/reasoning"
	"github.com/parley-dev/parley/internal/session"
)

// fakeGeminiClient captures the request and returns a canned response.
type fakeGeminiClient struct {
	lastModel    string
	lastContents []*genai.Content
	lastConfig   *genai.GenerateContentConfig
	resp         *genai.GenerateContentResponse
	err          error
}

func (f *fakeGeminiClient) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.lastModel = model
	f.lastContents = contents
	f.lastConfig = config
	return f.resp, f.err
}

func textCandidate(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Role:  "model",
				Parts: []*genai.Part{genai.NewPartFromText(text)},
			},
		}},
	}
}

func TestToGeminiContents_RoleMapping(t *testing.T) {
	history := []session.Turn{
		session.UserTurn("log 8 hours"),
		session.AssistantToolCallTurn(session.ToolCall{
			ID: "call_1", Name: "log_time", Args: map[string]any{"hours": 8.0},
		}),
		session.ToolResultTurn("call_1", "logged"),
		session.AssistantTextTurn("Done."),
	}

	contents := toGeminiContents(history)
	require.Len(t, contents, 4)

	assert.Equal(t, "user", contents[0].Role)
	assert.Equal(t, "model", contents[1].Role)
	require.NotNil(t, contents[1].Parts[0].FunctionCall)
	assert.Equal(t, "log_time", contents[1].Parts[0].FunctionCall.Name)
	require.NotNil(t, contents[2].Parts[0].FunctionResponse)
	assert.Equal(t, "log_time", contents[2].Parts[0].FunctionResponse.Name)
	assert.Equal(t, "model", contents[3].Role)
}

func TestToGeminiContents_SkipsEmptyTurns(t *testing.T) {
	contents := toGeminiContents([]session.Turn{
		session.UserTurn(""),
		session.AssistantTextTurn(""),
	})
	assert.Empty(t, contents)
}

func TestToGeminiTools_SchemaConversion(t *testing.T) {
	tools := toGeminiTools([]catalog.Descriptor{{
		Name:        "log_time",
		Description: "Logs hours against a project",
		Parameters: &catalog.Schema{
			Type: catalog.TypeObject,
			Properties: map[string]*catalog.Schema{
				"project": {Type: catalog.TypeString, Enum: []string{"INTERNAL", "CLIENT"}},
				"hours":   {Type: catalog.TypeNumber},
			},
			Required: []string{"project", "hours"},
		},
	}})

	require.Len(t, tools, 1)
	require.Len(t, tools[0].FunctionDeclarations, 1)
	fd := tools[0].FunctionDeclarations[0]
	assert.Equal(t, "log_time", fd.Name)
	require.NotNil(t, fd.Parameters)
	assert.Equal(t, genai.TypeObject, fd.Parameters.Type)
	assert.Equal(t, genai.TypeString, fd.Parameters.Properties["project"].Type)
	assert.Equal(t, []string{"INTERNAL", "CLIENT"}, fd.Parameters.Properties["project"].Enum)
	assert.Equal(t, []string{"project", "hours"}, fd.Parameters.Required)
}

func TestComplete_TextOutcome(t *testing.T) {
	client := &fakeGeminiClient{resp: textCandidate("You have 3 entries this week.")}
	svc := New(client, "", nil)

	outcome, err := svc.Complete(context.Background(), reasoning.Request{
		SystemPrompt: "Be brief.",
		History:      []session.Turn{session.UserTurn("show my entries")},
	})

	require.NoError(t, err)
	assert.Equal(t, reasoning.KindText, outcome.Kind)
	assert.Equal(t, "You have 3 entries this week.", outcome.Text)
	assert.Equal(t, "gemini-2.0-flash", client.lastModel)
	require.NotNil(t, client.lastConfig.SystemInstruction)
}

func TestComplete_ToolCallOutcome_AssignsCallID(t *testing.T) {
	client := &fakeGeminiClient{resp: &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Role: "model",
				Parts: []*genai.Part{{
					FunctionCall: &genai.FunctionCall{
						Name: "log_time",
						Args: map[string]any{"project": "INTERNAL", "hours": 8.0},
					},
				}},
			},
		}},
	}}
	svc := New(client, "gemini-1.5-pro", nil)

	outcome, err := svc.Complete(context.Background(), reasoning.Request{
		History: []session.Turn{session.UserTurn("log 8 hours on INTERNAL")},
		Tools:   []catalog.Descriptor{{Name: "log_time", Destructive: true}},
	})

	require.NoError(t, err)
	require.Equal(t, reasoning.KindToolCall, outcome.Kind)
	assert.Equal(t, "log_time", outcome.Proposal.Name)
	assert.NotEmpty(t, outcome.Proposal.ID)
	assert.Equal(t, "gemini-1.5-pro", client.lastModel)
}

func TestComplete_NoCandidates(t *testing.T) {
	client := &fakeGeminiClient{resp: &genai.GenerateContentResponse{}}
	svc := New(client, "", nil)

	_, err := svc.Complete(context.Background(), reasoning.Request{
		History: []session.Turn{session.UserTurn("hi")},
	})
	require.Error(t, err)
}

func TestComplete_SafetyBlock(t *testing.T) {
	client := &fakeGeminiClient{resp: &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			FinishReason: genai.FinishReasonSafety,
			Content:      &genai.Content{},
		}},
	}}
	svc := New(client, "", nil)

	_, err := svc.Complete(context.Background(), reasoning.Request{
		History: []session.Turn{session.UserTurn("hi")},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "safety")
}
