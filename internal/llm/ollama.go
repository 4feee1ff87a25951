// internal/llm/ollama.go
package llm

import (
	"context"
	"strings"
	"time"

	httpclient "nexus-talent/internal/common/http"
)

const DefaultOllamaModel = "llama3"

// Ollama calls a local Ollama generate endpoint without streaming.
type Ollama struct {
	url    string
	model  string
	client *httpclient.Client
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaResponse struct {
	Response string `json:"response"`
}

func NewOllama(url, model string, timeout time.Duration) *Ollama {
	if model == "" {
		model = DefaultOllamaModel
	}
	return &Ollama{
		url:    url,
		model:  model,
		client: httpclient.NewClient(timeout),
	}
}

func (o *Ollama) Name() string { return "ollama" }

// Generate has no separate system channel, so the system instruction is
// prepended to the prompt.
func (o *Ollama) Generate(ctx context.Context, prompt, system string) (string, error) {
	full := prompt
	if system != "" {
		full = system + "\n\n" + prompt
	}

	var out ollamaResponse
	err := o.client.PostJSON(ctx, o.url, nil, ollamaRequest{
		Model:  o.model,
		Prompt: full,
		Stream: false,
	}, &out)
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(out.Response)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
