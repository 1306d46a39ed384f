package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/packages/param"
	"github.com/openai/openai-go/v2/shared"
)

// OpenAIClient talks to the OpenAI Chat Completions API. Providers that expose
// an OpenAI-compatible endpoint (Groq, Together, X.AI and friends) reuse this
// client with their own base URL and provider name.
type OpenAIClient struct {
	client   *openai.Client
	provider string
	model    string
}

// NewOpenAIClient creates a client for the OpenAI API itself.
func NewOpenAIClient(apiKey, baseURL, model string) *OpenAIClient {
	return NewOpenAICompatClient("openai", apiKey, baseURL, model)
}

// NewOpenAICompatClient creates a client for any OpenAI-compatible endpoint.
// The provider name is reported by Name and used in errors.
func NewOpenAICompatClient(provider, apiKey, baseURL, model string) *OpenAIClient {
	var opts []option.RequestOption
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(opts...)
	return &OpenAIClient{client: &client, provider: provider, model: model}
}

// Complete sends a non-streaming completion request.
func (o *OpenAIClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	start := time.Now()

	completion, err := o.client.Chat.Completions.New(ctx, o.buildParams(req))
	if err != nil {
		return nil, o.wrapError(err)
	}
	if len(completion.Choices) == 0 {
		return nil, &ProviderError{Provider: o.provider, Message: "response contained no choices"}
	}

	choice := completion.Choices[0]
	return &CompletionResponse{
		Content:    choice.Message.Content,
		StopReason: string(choice.FinishReason),
		Usage: Usage{
			InputTokens:  int(completion.Usage.PromptTokens),
			OutputTokens: int(completion.Usage.CompletionTokens),
		},
		Model:    completion.Model,
		Duration: time.Since(start),
	}, nil
}

// Stream sends a streaming completion request.
func (o *OpenAIClient) Stream(ctx context.Context, req CompletionRequest) (<-chan StreamEvent, error) {
	eventChan := make(chan StreamEvent)
	go o.streamRequest(ctx, eventChan, req)
	return eventChan, nil
}

// Name returns the provider name.
func (o *OpenAIClient) Name() string {
	return o.provider
}

// Helper methods

func (o *OpenAIClient) buildParams(req CompletionRequest) openai.ChatCompletionNewParams {
	model := req.Model
	if model == "" {
		model = o.model
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	for _, m := range req.Messages {
		switch m.Role {
		case RoleAssistant:
			messages = append(messages, openai.AssistantMessage(m.Content))
		case RoleSystem:
			messages = append(messages, openai.SystemMessage(m.Content))
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(model),
		Messages: messages,
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = param.NewOpt(int64(req.MaxTokens))
	}
	if req.Temperature != nil {
		params.Temperature = param.NewOpt(*req.Temperature)
	}
	return params
}

func (o *OpenAIClient) streamRequest(ctx context.Context, eventChan chan StreamEvent, req CompletionRequest) {
	defer close(eventChan)

	stream := o.client.Chat.Completions.NewStreaming(ctx, o.buildParams(req))
	var fullContent []byte

	for stream.Next() {
		chunk := stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		fullContent = append(fullContent, delta...)
		eventChan <- StreamEvent{Type: "delta", Content: delta}
	}

	if err := stream.Err(); err != nil {
		eventChan <- StreamEvent{Type: "error", Error: o.wrapError(err).Error()}
		return
	}

	eventChan <- StreamEvent{
		Type: "done",
		Response: &CompletionResponse{
			Content: string(fullContent),
			Model:   o.model,
		},
	}
}

// CheckModel reports whether the endpoint serves the named model.
func (o *OpenAIClient) CheckModel(ctx context.Context, model string) (bool, error) {
	_, err := o.client.Models.Get(ctx, model)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) && apiErr.StatusCode == 404 {
			return false, nil
		}
		return false, o.wrapError(err)
	}
	return true, nil
}

// Models lists the model IDs the endpoint serves.
func (o *OpenAIClient) Models(ctx context.Context) ([]string, error) {
	page, err := o.client.Models.List(ctx)
	if err != nil {
		return nil, o.wrapError(err)
	}
	var ids []string
	for page != nil {
		for _, m := range page.Data {
			ids = append(ids, m.ID)
		}
		page, err = page.GetNextPage()
		if err != nil {
			return nil, o.wrapError(err)
		}
	}
	return ids, nil
}

func (o *OpenAIClient) wrapError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = apiErr.Error()
		}
		return &ProviderError{Provider: o.provider, Code: apiErr.StatusCode, Message: msg}
	}
	return fmt.Errorf("request failed: %w", err)
}
