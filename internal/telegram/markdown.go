package telegram

import (
	"strings"
	"unicode/utf8"
)

// SplitMessage cuts text into chunks of at most maxLen runes, preferring to
// break after a newline in the second half of a chunk.
func SplitMessage(text string, maxLen int) []string {
	if utf8.RuneCountInString(text) <= maxLen {
		return []string{text}
	}

	var parts []string
	runes := []rune(text)
	for len(runes) > 0 {
		if len(runes) <= maxLen {
			parts = append(parts, string(runes))
			break
		}

		splitAt := maxLen
		for i := maxLen - 1; i > maxLen/2; i-- {
			if runes[i] == '\n' {
				splitAt = i + 1
				break
			}
		}

		parts = append(parts, string(runes[:splitAt]))
		runes = runes[splitAt:]
	}
	return parts
}

var markdownEscaper = strings.NewReplacer(
	"_", `\_`,
	"*", `\*`,
	"`", "\\`",
	"[", `\[`,
)

// EscapeMarkdown makes user-supplied text safe inside a legacy Markdown
// message (descriptions, usernames, assistant replies quoted in history).
func EscapeMarkdown(text string) string {
	return markdownEscaper.Replace(text)
}

// FixMarkdown closes a dangling code fence or inline code span so Telegram
// accepts the message. Assistant replies are the usual offenders.
func FixMarkdown(text string) string {
	if strings.Count(text, "```")%2 != 0 {
		text += "\n```"
	}
	return closeInlineCode(text)
}

func closeInlineCode(text string) string {
	var sb strings.Builder
	sb.Grow(len(text) + 1)
	inFence := false
	inlineOpen := false

	for i := 0; i < len(text); i++ {
		if strings.HasPrefix(text[i:], "```") {
			if inlineOpen {
				sb.WriteByte('`')
				inlineOpen = false
			}
			inFence = !inFence
			sb.WriteString("```")
			i += 2
			continue
		}
		if !inFence && text[i] == '`' {
			inlineOpen = !inlineOpen
		}
		sb.WriteByte(text[i])
	}

	if inlineOpen {
		sb.WriteByte('`')
	}
	return sb.String()
}
