package components

import (
	"github.com/calder-dev/tidechat/ui/styles"
)

// RenderInput renders the prompt line. The box greys out while input is
// frozen by a stream or a pending approval.
func RenderInput(input string, enabled bool, width int) string {
	if !enabled {
		return styles.InputDisabledStyle(width).Render(input)
	}
	return styles.InputStyle(width).Render(input)
}
