package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/DelanoMarcell/litigation-chatbot/types"
)

var geminiAnswerSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"answer":    {Type: genai.TypeString},
		"citations": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
	},
	Required: []string{"answer", "citations"},
}

// GeminiService is the alternate chat provider behind the same
// ChatService boundary.
type GeminiService struct {
	client    *genai.Client
	modelName string
}

func NewGeminiService(ctx context.Context, apiKey, modelName string) (*GeminiService, error) {
	if apiKey == "" {
		return nil, errors.New("no Gemini API key provided")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &GeminiService{
		client:    client,
		modelName: modelName,
	}, nil
}

// newChat converts our message list into a Gemini chat session. Models are
// cheap handles, so each call builds its own rather than mutating shared
// state.
func (s *GeminiService) newChat(messages []types.Message, withSchema bool) (*genai.ChatSession, genai.Text) {
	model := s.client.GenerativeModel(s.modelName)
	model.SetTemperature(0.1)
	if withSchema {
		model.ResponseMIMEType = "application/json"
		model.ResponseSchema = geminiAnswerSchema
	}

	var history []*genai.Content
	var last string
	for i, msg := range messages {
		switch msg.Role {
		case "system":
			model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(msg.Content)}}
		case "assistant":
			history = append(history, &genai.Content{Role: "model", Parts: []genai.Part{genai.Text(msg.Content)}})
		default:
			if i == len(messages)-1 {
				last = msg.Content
				continue
			}
			history = append(history, &genai.Content{Role: "user", Parts: []genai.Part{genai.Text(msg.Content)}})
		}
	}
	chat := model.StartChat()
	chat.History = history
	return chat, genai.Text(last)
}

func geminiSchemaRejection(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "response_schema") || strings.Contains(msg, "response_mime_type") || strings.Contains(msg, "schema")
}

func (s *GeminiService) Complete(ctx context.Context, messages []types.Message) (string, error) {
	chat, prompt := s.newChat(messages, true)
	resp, err := chat.SendMessage(ctx, prompt)
	if err != nil && geminiSchemaRejection(err) {
		chat, prompt = s.newChat(messages, false)
		resp, err = chat.SendMessage(ctx, prompt)
	}
	if err != nil {
		return "", err
	}
	return candidateText(resp), nil
}

func (s *GeminiService) CompleteStream(ctx context.Context, messages []types.Message, handler types.StreamHandler) (string, error) {
	chat, prompt := s.newChat(messages, true)
	iter := chat.SendMessageStream(ctx, prompt)

	var raw strings.Builder
	first := true
	for {
		resp, err := iter.Next()
		if err == iterator.Done {
			return raw.String(), nil
		}
		if err != nil {
			// The schema rejection surfaces on the first recv; anything
			// later is a genuine stream failure.
			if first && geminiSchemaRejection(err) {
				chat, prompt = s.newChat(messages, false)
				iter = chat.SendMessageStream(ctx, prompt)
				first = false
				continue
			}
			return raw.String(), err
		}
		first = false
		if fragment := candidateText(resp); fragment != "" {
			raw.WriteString(fragment)
			handler(fragment)
		}
	}
}

func candidateText(resp *genai.GenerateContentResponse) string {
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
	}
	return b.String()
}
