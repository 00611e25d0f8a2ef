package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"code-mentor/api/internal/llm"
)

const DefaultModel = "gemini-2.5-flash"

type Engine struct {
	APIKey string
	Model  string

	// Attempts - сколько раз пробуем GenerateContent при транзиентных сбоях.
	Attempts int
	Backoff  time.Duration
}

func New(apiKey, model string) *Engine {
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultModel
	}
	return &Engine{
		APIKey:   strings.TrimSpace(apiKey),
		Model:    model,
		Attempts: 3,
		Backoff:  300 * time.Millisecond,
	}
}

func (e *Engine) Name() string     { return "gemini" }
func (e *Engine) GetModel() string { return e.Model }

func (e *Engine) CheckConfig() error {
	if e.APIKey == "" {
		return &llm.ConfigError{Provider: "Gemini", EnvVar: "GEMINI_API_KEY"}
	}
	return nil
}

// Generate отправляет промпт и снимки как inline-картинки, возвращает сырой текст ответа.
func (e *Engine) Generate(ctx context.Context, prompt string, attachments []string) (string, error) {
	if err := e.CheckConfig(); err != nil {
		return "", err
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(e.APIKey))
	if err != nil {
		return "", fmt.Errorf("gemini: client: %w", err)
	}
	defer cl.Close()

	m := cl.GenerativeModel(e.Model)
	if m == nil {
		return "", fmt.Errorf("gemini: model is nil")
	}

	parts := buildParts(prompt, llm.DecodeImages(attachments))

	attempts := e.Attempts
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		resp, err := m.GenerateContent(ctx, parts...)
		if err != nil {
			lastErr = err
			if attempt == attempts || !sleep(ctx, time.Duration(attempt)*e.Backoff) {
				break
			}
			continue
		}
		txt := firstText(resp)
		if strings.TrimSpace(txt) == "" {
			return "", errors.New("gemini: empty response")
		}
		return txt, nil
	}
	return "", lastErr
}

func buildParts(prompt string, images []llm.Image) []genai.Part {
	parts := make([]genai.Part, 0, len(images)+1)
	parts = append(parts, genai.Text(prompt))
	for _, img := range images {
		parts = append(parts, &genai.Blob{MIMEType: img.MIME, Data: img.Data})
	}
	return parts
}

// firstText склеивает текстовые части первого кандидата, у которого они есть.
func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		var b strings.Builder
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		if b.Len() > 0 {
			return b.String()
		}
	}
	return ""
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
