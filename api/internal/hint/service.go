package hint

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"code-mentor/api/internal/llm"
)

// Outcome - чем закончился вызов Generate; идёт в метрики.
type Outcome string

const (
	OutcomeOK             Outcome = "ok"
	OutcomeDegraded       Outcome = "degraded"
	OutcomeConfigError    Outcome = "config_error"
	OutcomeTransportError Outcome = "transport_error"
)

type Option func(*Service)

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

func WithOutcomeHook(fn func(Outcome)) Option {
	return func(s *Service) { s.onOutcome = fn }
}

// Service: промпт -> модель -> разбор. Никогда не паникует и не возвращает error:
// все сбои превращаются в Response.Error.
type Service struct {
	engine    llm.Engine
	log       *zap.Logger
	onOutcome func(Outcome)
}

func NewService(engine llm.Engine, opts ...Option) *Service {
	s := &Service{engine: engine, log: zap.NewNop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// WithEngine returns a copy of the service bound to another engine.
func (s *Service) WithEngine(engine llm.Engine) *Service {
	cp := *s
	cp.engine = engine
	return &cp
}

func (s *Service) Engine() llm.Engine { return s.engine }

func (s *Service) Generate(ctx context.Context, req Request) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("hint generation panicked", zap.Any("panic", r))
			resp = failure(fmt.Sprintf("Failed to generate hints: %v", r))
			s.report(OutcomeTransportError)
		}
	}()

	if err := s.checkConfig(); err != nil {
		s.log.Warn("hint engine not configured", zap.Error(err))
		s.report(OutcomeConfigError)
		return failure(err.Error())
	}

	prompt := BuildPrompt(req)
	text, err := s.engine.Generate(ctx, prompt, req.CaptureBlobs())
	if err != nil {
		s.log.Error("hint generation failed",
			zap.String("engine", s.engine.Name()),
			zap.String("model", s.engine.GetModel()),
			zap.Error(err))
		s.report(OutcomeTransportError)
		return failure("Failed to generate hints: " + err.Error())
	}

	resp, degraded := parse(text)
	if degraded {
		s.log.Info("hint reply did not match the section format", zap.Int("reply_len", len(text)))
		s.report(OutcomeDegraded)
	} else {
		s.report(OutcomeOK)
	}
	return resp
}

func (s *Service) checkConfig() error {
	if s.engine == nil {
		return &llm.ConfigError{Provider: "Gemini", EnvVar: "GEMINI_API_KEY"}
	}
	return s.engine.CheckConfig()
}

func (s *Service) report(o Outcome) {
	if s.onOutcome != nil {
		s.onOutcome(o)
	}
}
