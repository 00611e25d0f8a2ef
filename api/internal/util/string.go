package util

import "strings"

// StripCodeFences снимает обёртку ```...``` вокруг всего ответа модели.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return s
	}
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimPrefix(s, "```")
	// ```text\n... - отрезаем тег языка
	if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.ContainsAny(s[:nl], " :") {
		s = s[nl+1:]
	}
	return strings.TrimSpace(s)
}

// Truncate режет строку по рунам и добавляет suffix, если было что резать.
func Truncate(s string, n int, suffix string) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + suffix
}
