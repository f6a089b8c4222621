package fields

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const extractionSystemPrompt = `You extract structured data from resume text.
Respond with a single JSON object with these keys:
  "name": full candidate name or ""
  "email": email address or ""
  "phone": phone number or ""
  "skills": array of skill strings
  "work_experience": array of {"title","company","start","end"}
  "education": array of {"degree","institution","year"} where year is an integer or null
  "total_years_exp": total years of professional experience as a number
Use only information present in the text. Do not invent values.`

// chatClient is the slice of the OpenAI API the extractor needs.
type chatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIExtractor extracts résumé fields with a chat completion constrained
// to JSON output.
type OpenAIExtractor struct {
	client chatClient
	model  string
}

var _ Extractor = (*OpenAIExtractor)(nil)

// NewOpenAIExtractor creates an extractor backed by the given model.
func NewOpenAIExtractor(client *openai.Client, model string) *OpenAIExtractor {
	return &OpenAIExtractor{client: client, model: model}
}

// Extract asks the model for a structured profile of the résumé text.
func (e *OpenAIExtractor) Extract(ctx context.Context, text string) (*Profile, error) {
	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: extractionSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to request field extraction: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("field extraction returned no choices")
	}

	raw := cleanJSONBlock(resp.Choices[0].Message.Content)
	var p Profile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("failed to parse extraction response: %w", err)
	}
	return &p, nil
}

// cleanJSONBlock strips markdown code fences that models sometimes wrap
// around JSON output.
func cleanJSONBlock(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}
