package components

import (
	"strings"

	"github.com/calder-dev/tidechat/ui/styles"
)

// RenderStatus renders the bottom bar. Error text gets the error style
// instead of the muted bar.
func RenderStatus(status string, isError, streaming bool, dots int, width int) string {
	content := status
	if streaming {
		content += strings.Repeat(".", dots)
	}
	if isError {
		return styles.ErrorStyle().Width(width).Render(content)
	}
	return styles.StatusStyle(width).Render(content)
}
