package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/DelanoMarcell/litigation-chatbot/types"
)

var answerSchema = &jsonschema.Definition{
	Type: jsonschema.Object,
	Properties: map[string]jsonschema.Definition{
		"answer":    {Type: jsonschema.String},
		"citations": {Type: jsonschema.Array, Items: &jsonschema.Definition{Type: jsonschema.String}},
	},
	Required:             []string{"answer", "citations"},
	AdditionalProperties: false,
}

// OpenAIService talks to an OpenAI-compatible chat completion endpoint.
type OpenAIService struct {
	client *openai.Client
	model  string
}

func NewOpenAIService(baseURL, apiKey, model string) *OpenAIService {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAIService{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

func (s *OpenAIService) request(messages []types.Message, withSchema bool) openai.ChatCompletionRequest {
	openaiMessages := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		openaiMessages = append(openaiMessages, openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}
	req := openai.ChatCompletionRequest{
		Model:       s.model,
		Messages:    openaiMessages,
		Temperature: 0.1,
	}
	if withSchema {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "cited_answer",
				Schema: answerSchema,
				Strict: true,
			},
		}
	}
	return req
}

// isSchemaRejection reports whether the backend refused the structured
// response format itself, as opposed to failing the request for any other
// reason. Only this case gets the one-shot fallback without the schema.
func isSchemaRejection(err error) bool {
	var apiErr *openai.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.HTTPStatusCode != http.StatusBadRequest {
		return false
	}
	msg := strings.ToLower(apiErr.Message)
	return strings.Contains(msg, "response_format") || strings.Contains(msg, "json_schema") || strings.Contains(msg, "schema")
}

func (s *OpenAIService) Complete(ctx context.Context, messages []types.Message) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, s.request(messages, true))
	if err != nil && isSchemaRejection(err) {
		resp, err = s.client.CreateChatCompletion(ctx, s.request(messages, false))
	}
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no response generated")
	}
	return resp.Choices[0].Message.Content, nil
}

func (s *OpenAIService) CompleteStream(ctx context.Context, messages []types.Message, handler types.StreamHandler) (string, error) {
	stream, err := s.client.CreateChatCompletionStream(ctx, s.request(messages, true))
	if err != nil && isSchemaRejection(err) {
		stream, err = s.client.CreateChatCompletionStream(ctx, s.request(messages, false))
	}
	if err != nil {
		return "", err
	}
	defer stream.Close()

	var raw strings.Builder
	for {
		resp, err := stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return raw.String(), nil
			}
			return raw.String(), err
		}
		if len(resp.Choices) == 0 {
			continue
		}
		if delta := resp.Choices[0].Delta.Content; delta != "" {
			raw.WriteString(delta)
			handler(delta)
		}
	}
}
