package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"code-mentor/api/internal/util"
)

// ErrNotConfigured - у движка нет ключа; сеть при этом не трогаем.
var ErrNotConfigured = errors.New("llm: credential not configured")

// ConfigError names the provider and the env variable that has to be set.
type ConfigError struct {
	Provider string
	EnvVar   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s API not configured. Please add your API key to .env file as %s", e.Provider, e.EnvVar)
}

func (e *ConfigError) Is(target error) bool { return target == ErrNotConfigured }

// Engine - внешняя генерация текста. attachments - снимки в виде data:URI,
// движок сам решает, как их передать модели.
type Engine interface {
	Name() string
	GetModel() string
	CheckConfig() error
	Generate(ctx context.Context, prompt string, attachments []string) (string, error)
}

type Engines struct {
	Gemini  Engine
	OpenAI  Engine
	Default string
}

func (e *Engines) GetEngine(llmName string) (Engine, error) {
	name := strings.ToLower(strings.TrimSpace(llmName))
	if name == "" {
		name = strings.ToLower(e.Default)
	}
	switch name {
	case "gemini", "":
		if e.Gemini != nil {
			return e.Gemini, nil
		}
	case "gpt", "openai":
		if e.OpenAI != nil {
			return e.OpenAI, nil
		}
	}
	return nil, fmt.Errorf("unknown llm_name %q; use 'gemini' or 'gpt'", llmName)
}

// Image - декодированный снимок.
type Image struct {
	MIME string
	Data []byte
}

// DecodeImages разбирает data:URI; битые и не-картиночные вложения пропускаются.
func DecodeImages(attachments []string) []Image {
	out := make([]Image, 0, len(attachments))
	for _, a := range attachments {
		if strings.TrimSpace(a) == "" {
			continue
		}
		b, hint, err := util.DecodeBase64MaybeDataURL(a)
		if err != nil || len(b) == 0 {
			continue
		}
		mime := util.PickMIME("", hint, b)
		if !util.IsImageMIME(mime) {
			continue
		}
		out = append(out, Image{MIME: mime, Data: b})
	}
	return out
}
