package utils

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func codeStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Background(lipgloss.Color("236")).
		Padding(0, 1)
}

func boldStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true)
}

func italicStyle() lipgloss.Style {
	return lipgloss.NewStyle().Italic(true)
}

func titleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true)
}

func listStyle() lipgloss.Style {
	return lipgloss.NewStyle().MarginLeft(2)
}

var (
	orderedListRe = regexp.MustCompile(`^(\d+)\.\s+(.*)`)
	inlineCodeRe  = regexp.MustCompile("`[^`]+`")
	boldRe        = regexp.MustCompile(`\*\*[^*]+\*\*`)
	italicRe      = regexp.MustCompile(`_[^_]+_`)
)

// RenderMarkdown applies lightweight terminal styling to assistant
// content: headings, lists, fenced code, and inline code/bold/italic.
// Anything it does not recognize passes through untouched, which
// matters for partially streamed content.
func RenderMarkdown(text string) string {
	var b strings.Builder
	inCode := false

	for _, line := range strings.Split(text, "\n") {
		switch {
		case strings.HasPrefix(line, "```"):
			inCode = !inCode

		case inCode:
			b.WriteString(codeStyle().Render(line) + "\n")

		case strings.HasPrefix(line, "# "), strings.HasPrefix(line, "## "), strings.HasPrefix(line, "### "):
			b.WriteString(titleStyle().Render(renderInline(strings.TrimLeft(line, "# "))) + "\n")

		case strings.HasPrefix(line, "- "), strings.HasPrefix(line, "* "):
			b.WriteString(listStyle().Render("• "+renderInline(line[2:])) + "\n")

		default:
			if m := orderedListRe.FindStringSubmatch(line); len(m) == 3 {
				b.WriteString(listStyle().Render(m[1]+". "+renderInline(m[2])) + "\n")
				continue
			}
			b.WriteString(renderInline(line) + "\n")
		}
	}

	return strings.TrimSuffix(b.String(), "\n")
}

func renderInline(line string) string {
	line = inlineCodeRe.ReplaceAllStringFunc(line, func(m string) string {
		return codeStyle().Render(strings.Trim(m, "`"))
	})
	line = boldRe.ReplaceAllStringFunc(line, func(m string) string {
		return boldStyle().Render(strings.Trim(m, "*"))
	})
	line = italicRe.ReplaceAllStringFunc(line, func(m string) string {
		return italicStyle().Render(strings.Trim(m, "_"))
	})
	return line
}
