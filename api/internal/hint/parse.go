package hint

import (
	"strings"

	"code-mentor/api/internal/util"
)

const (
	DefaultEncouragement = "Keep going! You're on the right track."
	FallbackHint         = "Review your code logic and consider the problem constraints."

	rawPreviewRunes = 200
)

type parseState int

const (
	seekingHeader parseState = iota
	inHints
	inEncouragement
	inNextSteps
)

var headers = []struct {
	literal string
	state   parseState
}{
	{HeaderHints, inHints},
	{HeaderEncouragement, inEncouragement},
	{HeaderNextSteps, inNextSteps},
}

type sections struct {
	hints         []string
	encouragement []string
	nextSteps     []string
}

// extract подменяется в тестах, чтобы проверить ветку с паникой.
var extract = extractSections

// Parse разбирает свободный ответ модели. Результат всегда содержит хотя бы одну подсказку.
func Parse(text string) Response {
	resp, _ := parse(text)
	return resp
}

// parse also reports whether a fallback had to be used for the hints.
// Code fences are ignored for sections; the fallback preview keeps the raw text.
func parse(text string) (resp Response, degraded bool) {
	defer func() {
		if r := recover(); r != nil {
			resp = Response{
				Hints:         []string{FallbackHint},
				Encouragement: DefaultEncouragement,
				NextSteps:     []string{},
			}
			degraded = true
		}
	}()

	s := extract(util.StripCodeFences(text))

	hints := firstN(s.hints, MaxHints)
	if len(hints) == 0 {
		hints = []string{rawPreview(text)}
		degraded = true
	}

	encouragement := strings.TrimSpace(strings.Join(s.encouragement, "\n"))
	if encouragement == "" {
		encouragement = DefaultEncouragement
	}

	return Response{
		Hints:         hints,
		Encouragement: encouragement,
		NextSteps:     firstN(s.nextSteps, MaxNextSteps),
	}, degraded
}

func extractSections(text string) sections {
	var s sections
	state := seekingHeader

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")

		if next, rest, ok := matchHeader(line); ok {
			state = next
			line = rest
			if strings.TrimSpace(line) == "" {
				continue
			}
		}

		switch state {
		case inHints:
			if h := stripEnumeration(strings.TrimSpace(line)); h != "" {
				s.hints = append(s.hints, h)
			}
		case inEncouragement:
			s.encouragement = append(s.encouragement, line)
		case inNextSteps:
			if st := stripBullet(strings.TrimSpace(line)); st != "" {
				s.nextSteps = append(s.nextSteps, st)
			}
		}
	}
	return s
}

// matchHeader узнаёт заголовок без учёта регистра, в том числе обёрнутый
// в markdown (**HINTS:**, ### HINTS:). rest - текст после двоеточия на той же строке.
func matchHeader(line string) (parseState, string, bool) {
	t := strings.TrimLeft(strings.TrimSpace(line), "#* ")
	for _, h := range headers {
		if len(t) < len(h.literal) || !strings.EqualFold(t[:len(h.literal)], h.literal) {
			continue
		}
		rest := strings.TrimLeft(t[len(h.literal):], "*")
		return h.state, rest, true
	}
	return seekingHeader, "", false
}

// stripEnumeration: "12. text" -> "text".
func stripEnumeration(s string) string {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i > 0 && i < len(s) && s[i] == '.' {
		s = s[i+1:]
	}
	return strings.TrimSpace(s)
}

// stripBullet: "- text" / "* text" -> "text".
func stripBullet(s string) string {
	if s != "" && (s[0] == '-' || s[0] == '*') {
		s = s[1:]
	}
	return strings.TrimSpace(s)
}

func rawPreview(text string) string {
	r := []rune(text)
	if len(r) > rawPreviewRunes {
		r = r[:rawPreviewRunes]
	}
	return string(r) + "..."
}

func firstN(items []string, n int) []string {
	if len(items) > n {
		items = items[:n]
	}
	return append(make([]string, 0, len(items)), items...)
}
