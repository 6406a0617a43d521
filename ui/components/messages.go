package components

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/calder-dev/tidechat/internal/models"
	"github.com/calder-dev/tidechat/internal/utils"
	"github.com/calder-dev/tidechat/ui/styles"
)

// RenderMessages renders the conversation. streamingID marks the
// message still receiving chunks; it gets a cursor instead of a usage
// footer.
func RenderMessages(messages []models.Message, streamingID string) string {
	if len(messages) == 0 {
		return styles.ProgramStyle().Render("TideChat") + "\n" +
			styles.AnnotationStyle().Render("Type a message and press enter · /attach <path> stages a file · esc cancels a stream") + "\n\n"
	}

	var b strings.Builder

	for _, msg := range messages {
		switch msg.Role {
		case models.RoleUser:
			b.WriteString(styles.UserStyle().Render("You: "+msg.Content) + "\n")
			for _, att := range msg.Attachments {
				b.WriteString(styles.AnnotationStyle().Render("⎘ "+att.Name+" ("+att.MimeType+")") + "\n")
			}
			b.WriteString("\n")

		case models.RoleAssistant:
			content := utils.RenderMarkdown(msg.Content)
			if msg.ID == streamingID {
				content += "▌"
			}
			b.WriteString(styles.AssistantStyle().Render("Assistant: "+content) + "\n")
			b.WriteString(renderAnnotations(msg.Annotations))
			if msg.Usage != nil {
				b.WriteString(styles.UsageStyle().Render(formatUsage(msg.Usage)) + "\n")
			}
			b.WriteString("\n")

		case models.RoleApproval:
			b.WriteString(renderApproval(msg.Approval) + "\n\n")
		}
	}

	return b.String()
}

func renderAnnotations(anns []models.Annotation) string {
	var b strings.Builder
	for i, ann := range anns {
		label := ann.Label
		if label == "" {
			label = ann.URL
		}
		line := fmt.Sprintf("[%d] %s", i+1, label)
		if ann.URL != "" && ann.Label != "" {
			line += " · " + ann.URL
		}
		b.WriteString(styles.AnnotationStyle().Render(line) + "\n")
	}
	return b.String()
}

func renderApproval(req *models.ApprovalRequest) string {
	if req == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString("Tool approval required\n")
	b.WriteString(fmt.Sprintf("Tool:   %s\n", req.ToolName))
	b.WriteString(fmt.Sprintf("Server: %s\n", req.ServerLabel))
	if len(req.Arguments) > 0 {
		if args, err := json.MarshalIndent(req.Arguments, "", "  "); err == nil {
			b.WriteString("Args:  " + string(args) + "\n")
		}
	}
	b.WriteString("[y] approve  ·  [n] reject")
	return styles.ApprovalStyle().Render(b.String())
}

func formatUsage(u *models.Usage) string {
	return fmt.Sprintf("%d tokens (%d prompt, %d completion) · %.1fs",
		u.TotalTokens, u.PromptTokens, u.CompletionTokens, u.Duration/1000)
}
