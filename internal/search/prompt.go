package search

import (
	"fmt"
	"strings"

	"github.com/hpungsan/howto/internal/i18n"
	"github.com/hpungsan/howto/internal/provider"
)

// LanguageInstruction tells the model which language to answer in.
func LanguageInstruction(lang string) string {
	return fmt.Sprintf("IMPORTANT: Respond ONLY in %s, regardless of the language of the sources above.", i18n.Name(lang))
}

// SummaryPrompt builds the summarization prompt from the exact videos and
// articles returned to the caller.
func SummaryPrompt(q string, videos []provider.Video, articles []provider.Article, lang string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Based on these tutorials for \"%s\", create a helpful step-by-step guide with clear instructions, tools needed, time required, and difficulty level.\n\n", q)

	b.WriteString("Videos found:\n")
	for i, v := range videos {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "- %s (%s)", v.Title, v.Channel)
	}

	b.WriteString("\n\nArticles found:\n")
	for i, a := range articles {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "- %s (%s)", a.Title, a.Website)
	}

	fmt.Fprintf(&b, "\n\nPlease generate a concise but comprehensive guide that someone could follow to accomplish \"%s\".\n\n", q)
	b.WriteString(LanguageInstruction(lang))
	return b.String()
}

// FollowUpPrompt builds the prompt for a follow-up question.
func FollowUpPrompt(originalQuery, followUpQuery, lang string) string {
	return fmt.Sprintf(`The user asked: "How to %s"

Now they have a follow-up question: "%s"

Please provide a clear, concise answer to their follow-up question in the context of the original how-to guide.

%s`, originalQuery, followUpQuery, LanguageInstruction(lang))
}

// ShareText is the text offered when a user shares a guide.
func ShareText(q, summary string) string {
	return fmt.Sprintf("Check out this HowTo guide: How to %s\n\n%s", q, summary)
}
