package qa

import (
	"fmt"
	"strings"

	"casebot/internal/domain/cases"
	"casebot/internal/ports"
)

const systemInstruction = "You are the company's portfolio assistant. " +
	"Answer strictly to the point, short and clear. " +
	"Use only the provided materials. " +
	"Put links into the answer as Markdown."

// Phrases the model must not pad answers with.
var forbiddenFillers = []string{
	"as an AI",
	"based on the provided materials",
	"in conclusion",
	"it is worth noting",
}

// buildPrompt enumerates the ranked cases and constrains the model to citing
// only the listed titles and links.
func buildPrompt(question string, records []cases.Record) ports.Prompt {
	var sb strings.Builder

	sb.WriteString("Here is the list of cases:\n")
	for idx, record := range records {
		fmt.Fprintf(&sb, "[%d] %s — %s\n", idx+1, record.Title, record.URL)
	}

	fmt.Fprintf(&sb, "\nQuestion: %s\n\n", question)

	sb.WriteString("Answer briefly and to the point.\n")
	sb.WriteString("Pick only 3-4 items from the list above.\n")
	sb.WriteString("Use exactly the titles given above and cite each pick with its link, strictly in this format:\n")
	sb.WriteString("1) title [Magnit](https://example.com)\n")
	sb.WriteString("2) title [KazanExpress](https://example.com)\n")
	sb.WriteString("and so on.\n")
	sb.WriteString("Never invent titles or links that are not in the list.\n")
	sb.WriteString("Never mention the same company twice.\n")
	sb.WriteString("Avoid the phrases: " + strings.Join(quoteAll(forbiddenFillers), ", ") + ".\n")

	return ports.Prompt{
		System: systemInstruction,
		User:   sb.String(),
	}
}

func quoteAll(phrases []string) []string {
	out := make([]string, 0, len(phrases))
	for _, phrase := range phrases {
		out = append(out, fmt.Sprintf("%q", phrase))
	}
	return out
}
