package insight

import (
	"fmt"
	"strings"

	"github.com/abhisek/orbit/internal/concept"
)

const systemPrompt = `You write short insights for a learner exploring a map of Artificial Intelligence concepts.

Rules:
- Stay under 50 words.
- Make it sound futuristic and engaging, but keep it accurate.
- Plain text only. No markdown, no lists, no emoji.`

// buildUserMessage asks for an insight about n, with its description as
// context when it has one.
func buildUserMessage(n *concept.Node) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Provide a concise, fascinating insight about %q in the context of Artificial Intelligence.\n", n.Name)
	if d := strings.TrimSpace(n.Description); d != "" {
		fmt.Fprintf(&b, "Context: %s\n", d)
	}
	b.WriteString("Keep it under 50 words and make it sound futuristic and engaging.")
	return b.String()
}
