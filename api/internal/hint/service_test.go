package hint

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"code-mentor/api/internal/llm"
)

type fakeEngine struct {
	key     string
	reply   string
	err     error
	panics  bool
	calls   int
	prompt  string
	attachs []string
}

func (f *fakeEngine) Name() string     { return "fake" }
func (f *fakeEngine) GetModel() string { return "fake-1" }

func (f *fakeEngine) CheckConfig() error {
	if f.key == "" {
		return &llm.ConfigError{Provider: "Gemini", EnvVar: "GEMINI_API_KEY"}
	}
	return nil
}

func (f *fakeEngine) Generate(_ context.Context, prompt string, attachments []string) (string, error) {
	f.calls++
	f.prompt = prompt
	f.attachs = attachments
	if f.panics {
		panic("provider SDK bug")
	}
	return f.reply, f.err
}

const goodReply = "HINTS:\n1. Think about a lookup structure.\n2. Consider one pass.\nENCOURAGEMENT:\nYou're close!\nNEXT_STEPS:\n- Try a map.\n"

func recordOutcomes(list *[]Outcome) Option {
	return WithOutcomeHook(func(o Outcome) { *list = append(*list, o) })
}

func TestGenerateWithoutCredential(t *testing.T) {
	var outcomes []Outcome
	eng := &fakeEngine{reply: goodReply}
	svc := NewService(eng, recordOutcomes(&outcomes))

	got := svc.Generate(context.Background(), twoSumRequest())

	assert.Equal(t, 0, eng.calls)
	assert.Equal(t, []string{}, got.Hints)
	assert.Equal(t, []string{}, got.NextSteps)
	assert.Empty(t, got.Encouragement)
	assert.Contains(t, got.Error, "not configured")
	assert.Contains(t, got.Error, "GEMINI_API_KEY")
	assert.Equal(t, []Outcome{OutcomeConfigError}, outcomes)
}

func TestGenerateWithNilEngine(t *testing.T) {
	got := NewService(nil).Generate(context.Background(), twoSumRequest())
	assert.Empty(t, got.Hints)
	assert.Contains(t, got.Error, "not configured")
}

func TestGenerateSuccess(t *testing.T) {
	var outcomes []Outcome
	eng := &fakeEngine{key: "k", reply: goodReply}
	svc := NewService(eng, recordOutcomes(&outcomes))

	req := twoSumRequest()
	for i := 0; i < 7; i++ {
		req.CaptureData = append(req.CaptureData, fmt.Sprintf("data:image/jpeg;base64,%d", i))
	}
	got := svc.Generate(context.Background(), req)

	require.Equal(t, 1, eng.calls)
	assert.Equal(t, BuildPrompt(req), eng.prompt)
	assert.Len(t, eng.attachs, MaxCaptures)
	assert.Equal(t, "data:image/jpeg;base64,6", eng.attachs[MaxCaptures-1])

	assert.Equal(t, Parse(goodReply), got)
	assert.Empty(t, got.Error)
	assert.Equal(t, []Outcome{OutcomeOK}, outcomes)
}

func TestGenerateStripsCodeFence(t *testing.T) {
	eng := &fakeEngine{key: "k", reply: "```\n" + goodReply + "```"}
	got := NewService(eng).Generate(context.Background(), twoSumRequest())
	assert.Equal(t, []string{"Try a map."}, got.NextSteps)
}

func TestGenerateDegradedReply(t *testing.T) {
	var outcomes []Outcome
	eng := &fakeEngine{key: "k", reply: "I think you should use a dictionary."}
	got := NewService(eng, recordOutcomes(&outcomes)).Generate(context.Background(), twoSumRequest())

	assert.Equal(t, []string{"I think you should use a dictionary...."}, got.Hints)
	assert.Equal(t, DefaultEncouragement, got.Encouragement)
	assert.Empty(t, got.Error)
	assert.Equal(t, []Outcome{OutcomeDegraded}, outcomes)
}

func TestGenerateTransportError(t *testing.T) {
	var outcomes []Outcome
	eng := &fakeEngine{key: "k", err: errors.New("googleapi: Error 503: model overloaded")}
	got := NewService(eng, recordOutcomes(&outcomes)).Generate(context.Background(), twoSumRequest())

	assert.Equal(t, []string{}, got.Hints)
	assert.Equal(t, []string{}, got.NextSteps)
	assert.Empty(t, got.Encouragement)
	assert.Equal(t, "Failed to generate hints: googleapi: Error 503: model overloaded", got.Error)
	assert.Equal(t, []Outcome{OutcomeTransportError}, outcomes)
}

func TestGenerateRecoversFromEnginePanic(t *testing.T) {
	eng := &fakeEngine{key: "k", panics: true}
	got := NewService(eng).Generate(context.Background(), twoSumRequest())

	assert.Empty(t, got.Hints)
	assert.Contains(t, got.Error, "provider SDK bug")
}

func TestWithEngineDoesNotMutateOriginal(t *testing.T) {
	a := &fakeEngine{key: "k", reply: goodReply}
	b := &fakeEngine{key: "k", reply: goodReply}
	svc := NewService(a)

	other := svc.WithEngine(b)
	other.Generate(context.Background(), twoSumRequest())

	assert.Same(t, a, svc.Engine())
	assert.Equal(t, 0, a.calls)
	assert.Equal(t, 1, b.calls)
}

func TestGenerateDegradedFencedReplyPreviewsRawText(t *testing.T) {
	raw := "```\nI think you should use a dictionary.\n```"
	eng := &fakeEngine{key: "k", reply: raw}
	got := NewService(eng).Generate(context.Background(), twoSumRequest())

	assert.Equal(t, []string{raw + "..."}, got.Hints)
	assert.Equal(t, DefaultEncouragement, got.Encouragement)
}
