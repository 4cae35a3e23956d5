package nl2sql

import (
	"context"
	"fmt"
	"time"

	"github.com/asksql/asksql/internal/observability"
	"github.com/asksql/asksql/internal/schema"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Model       string
	Messages    []Message
	Temperature float64
	TopP        float64
}

type ChatClient interface {
	Complete(ctx context.Context, req ChatRequest) (string, error)
}

type Result struct {
	SQL    string `json:"sql"`
	Prompt string `json:"prompt"`
	Model  string `json:"model"`
}

type GeneratorConfig struct {
	Client      ChatClient
	Model       string
	Temperature float64
	TopP        float64
	Dialect     Dialect
}

// Generator turns a question plus schema into one SQL statement.
type Generator struct {
	client      ChatClient
	model       string
	temperature float64
	topP        float64
	dialect     Dialect
}

func NewGenerator(cfg GeneratorConfig) (*Generator, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("chat client is required")
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	dialect := cfg.Dialect
	if dialect.Name == "" {
		dialect = MySQL
	}
	return &Generator{
		client:      cfg.Client,
		model:       model,
		temperature: cfg.Temperature,
		topP:        cfg.TopP,
		dialect:     dialect,
	}, nil
}

func (g *Generator) Dialect() Dialect {
	return g.dialect
}

func (g *Generator) Generate(ctx context.Context, question string, description schema.Description) (Result, error) {
	prompt := BuildPrompt(question, description, g.dialect)

	start := time.Now()
	content, err := g.client.Complete(ctx, ChatRequest{
		Model: g.model,
		Messages: []Message{
			{Role: "system", Content: g.dialect.SystemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: g.temperature,
		TopP:        g.topP,
	})
	observability.ObserveCompletion(time.Since(start))
	if err != nil {
		return Result{}, fmt.Errorf("request completion: %w", err)
	}

	return Result{
		SQL:    SanitizeSQL(content),
		Prompt: prompt,
		Model:  g.model,
	}, nil
}
