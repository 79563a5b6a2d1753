// Package openaicompat implements quackquery.Provider for any
// OpenAI-compatible chat completions API.
//
// Works with OpenAI, OpenRouter, Groq, Together, DeepSeek, Mistral, Ollama,
// vLLM, LM Studio, and any other provider implementing the same API shape.
package openaicompat

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	quackquery "github.com/QuackQuery/QuackQuery"
)

// Provider implements quackquery.Provider over an OpenAI-compatible endpoint.
type Provider struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
	name    string
}

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithName overrides the provider name reported by Name() (default "openai").
func WithName(name string) ProviderOption {
	return func(p *Provider) { p.name = name }
}

// WithHTTPClient replaces the HTTP client (useful for tests).
func WithHTTPClient(c *http.Client) ProviderOption {
	return func(p *Provider) { p.client = c }
}

// NewProvider creates an OpenAI-compatible chat provider.
//
// baseURL is the API base (e.g. "https://api.openai.com/v1",
// "http://localhost:11434/v1"). The /chat/completions path is appended
// automatically.
func NewProvider(apiKey, model, baseURL string, opts ...ProviderOption) *Provider {
	p := &Provider{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{},
		name:    "openai",
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the provider name (default "openai", configurable via WithName).
func (p *Provider) Name() string { return p.name }

// Chat sends a non-streaming chat request and returns the complete response.
func (p *Provider) Chat(ctx context.Context, req quackquery.ChatRequest) (quackquery.ChatResponse, error) {
	body := buildBody(p.model, req.Messages, false)
	payload, err := json.Marshal(body)
	if err != nil {
		return quackquery.ChatResponse{}, p.wrapErr("marshal body: " + err.Error())
	}

	resp, err := p.post(ctx, payload)
	if err != nil {
		return quackquery.ChatResponse{}, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return quackquery.ChatResponse{}, p.wrapErr("read response: " + err.Error())
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return quackquery.ChatResponse{}, &quackquery.ErrHTTP{
			Status:     resp.StatusCode,
			Body:       string(respBody),
			RetryAfter: quackquery.ParseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	var parsed chatCompletion
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return quackquery.ChatResponse{}, p.wrapErr("parse response: " + err.Error())
	}
	if len(parsed.Choices) == 0 {
		return quackquery.ChatResponse{}, p.wrapErr("no choices in response")
	}

	return quackquery.ChatResponse{
		Content: parsed.Choices[0].Message.Content,
		Usage: quackquery.Usage{
			InputTokens:  parsed.Usage.PromptTokens,
			OutputTokens: parsed.Usage.CompletionTokens,
		},
	}, nil
}

// ChatStream streams text deltas into ch, then returns the final accumulated
// response. The channel is closed when streaming completes.
func (p *Provider) ChatStream(ctx context.Context, req quackquery.ChatRequest, ch chan<- string) (quackquery.ChatResponse, error) {
	defer close(ch)

	body := buildBody(p.model, req.Messages, true)
	payload, err := json.Marshal(body)
	if err != nil {
		return quackquery.ChatResponse{}, p.wrapErr("marshal body: " + err.Error())
	}

	resp, err := p.post(ctx, payload)
	if err != nil {
		return quackquery.ChatResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return quackquery.ChatResponse{}, &quackquery.ErrHTTP{
			Status:     resp.StatusCode,
			Body:       string(b),
			RetryAfter: quackquery.ParseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	var fullContent strings.Builder
	var usage quackquery.Usage

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimPrefix(line, "data: ")
		if data == "" || data == "[DONE]" {
			continue
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			continue
		}
		if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
			fullContent.WriteString(chunk.Choices[0].Delta.Content)
			ch <- chunk.Choices[0].Delta.Content
		}
		if chunk.Usage != nil {
			usage.InputTokens = chunk.Usage.PromptTokens
			usage.OutputTokens = chunk.Usage.CompletionTokens
		}
	}

	return quackquery.ChatResponse{
		Content: fullContent.String(),
		Usage:   usage,
	}, nil
}

func (p *Provider) post(ctx context.Context, payload []byte) (*http.Response, error) {
	url := p.baseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, p.wrapErr("create request: " + err.Error())
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, p.wrapErr("request failed: " + err.Error())
	}
	return resp, nil
}

func (p *Provider) wrapErr(msg string) error {
	return &quackquery.ErrLLM{Provider: p.name, Message: msg}
}

// buildBody converts protocol messages to a chat completions request body.
// Messages with images become multi-part content blocks with data-URI
// image_url entries.
func buildBody(model string, messages []quackquery.ChatMessage, stream bool) map[string]any {
	msgs := make([]map[string]any, 0, len(messages))
	for _, m := range messages {
		if len(m.Images) == 0 {
			msgs = append(msgs, map[string]any{"role": m.Role, "content": m.Content})
			continue
		}

		blocks := []map[string]any{}
		if m.Content != "" {
			blocks = append(blocks, map[string]any{"type": "text", "text": m.Content})
		}
		for _, img := range m.Images {
			blocks = append(blocks, map[string]any{
				"type": "image_url",
				"image_url": map[string]any{
					"url": fmt.Sprintf("data:%s;base64,%s", img.MimeType, img.Base64),
				},
			})
		}
		msgs = append(msgs, map[string]any{"role": m.Role, "content": blocks})
	}

	body := map[string]any{
		"model":    model,
		"messages": msgs,
	}
	if stream {
		body["stream"] = true
		body["stream_options"] = map[string]any{"include_usage": true}
	}
	return body
}

// ---- Response parsing types ----

type chatCompletion struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage usageBlock `json:"usage"`
}

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
	Usage *usageBlock `json:"usage"`
}

type usageBlock struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

var _ quackquery.Provider = (*Provider)(nil)
