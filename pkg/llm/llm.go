package llm

import (
	"context"
)

type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type GenerateRequest struct {
	Model  string `json:"model" yaml:"model"`
	Prompt string `json:"prompt" yaml:"prompt"`
	Stream bool   `json:"stream" yaml:"stream"`
}

type GenerateResponse struct {
	Model    string `json:"model,omitempty" yaml:"model,omitempty"`
	Response string `json:"response" yaml:"response"`
	Done     bool   `json:"done" yaml:"done"`
	Context  []int  `json:"context,omitempty" yaml:"context,omitempty"`
}
