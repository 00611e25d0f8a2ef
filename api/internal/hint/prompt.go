package hint

import (
	"fmt"
	"strconv"
	"strings"
)

// Заголовки ответа. Их же ищет Parse - менять только вместе.
const (
	HeaderHints         = "HINTS:"
	HeaderEncouragement = "ENCOURAGEMENT:"
	HeaderNextSteps     = "NEXT_STEPS:"
)

const defaultDescription = `Given an array of integers nums and an integer target, return indices of the two numbers such that they add up to target.
You may assume that each input would have exactly one solution, and you may not use the same element twice.`

const instructions = `**Your Task:**
Analyze the student's code and provide educational guidance without giving away the complete solution.

Please respond in this exact format:

` + HeaderHints + `
1. [First hint about their approach or a small issue]
2. [Second hint about algorithm or data structure]
3. [Third hint about optimization or edge cases]

` + HeaderEncouragement + `
[A brief encouraging message about what they're doing right]

` + HeaderNextSteps + `
- [Specific next step they should take]
- [Another actionable suggestion]

Be supportive, educational, and progressive in your hints. Don't give the full solution.`

// BuildPrompt собирает промпт в фиксированном порядке секций:
// метаданные, описание, код, (вывод), инструкция.
func BuildPrompt(req Request) string {
	var b strings.Builder

	b.WriteString("You are a helpful coding mentor assisting a student solve a LeetCode problem.\n\n")

	p := req.Problem
	b.WriteString("**Problem Information:**\n")
	fmt.Fprintf(&b, "- Name: %s\n", p.Name)
	fmt.Fprintf(&b, "- Difficulty: %s\n", p.Difficulty)
	fmt.Fprintf(&b, "- Topics: %s\n", strings.Join(p.Topics, ", "))
	fmt.Fprintf(&b, "- Acceptance Rate: %s%%\n\n", strconv.FormatFloat(p.AcceptanceRate, 'f', -1, 64))

	desc := strings.TrimSpace(p.Description)
	if desc == "" {
		desc = defaultDescription
	}
	b.WriteString("**Problem Description:**\n")
	b.WriteString(desc)
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "**Student's Code (%s):**\n", req.Language)
	fmt.Fprintf(&b, "```%s\n%s\n```\n\n", req.Language, req.UserCode)

	if req.CodeOutput != "" {
		b.WriteString("**Code Output:**\n")
		b.WriteString(req.CodeOutput)
		b.WriteString("\n\n")
	}

	b.WriteString(instructions)
	return b.String()
}
