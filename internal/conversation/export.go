package conversation

import (
	"fmt"
	"strings"
)

const (
	exportTimeLayout = "2006-01-02 15:04:05"
	exportRule       = "============================================================"
)

// ExportFilename is the attachment name for a transcript download.
func ExportFilename(id string) string {
	return fmt.Sprintf("conversation_%s.txt", id)
}

// RenderExport formats a conversation as the downloadable transcript.
func RenderExport(d *Detail) string {
	business := strings.TrimSpace(d.BusinessName)
	if business == "" {
		business = DefaultBusinessName
	}
	duration := "N/A"
	if d.DurationSeconds != nil {
		duration = fmt.Sprintf("%d", *d.DurationSeconds)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s - Conversation Export\n", business)
	fmt.Fprintf(&b, "Date: %s\n", d.StartedAt.Format(exportTimeLayout))
	fmt.Fprintf(&b, "Duration: %s seconds\n", duration)
	b.WriteString(exportRule + "\n\n")

	for _, msg := range d.Messages {
		fmt.Fprintf(&b, "[%s] %s: %s\n\n", msg.CreatedAt.Format(exportTimeLayout), speakerLabel(msg.Role), msg.Content)
	}

	if d.Summary != nil && strings.TrimSpace(*d.Summary) != "" {
		b.WriteString("\n" + exportRule + "\n")
		b.WriteString("SUMMARY:\n")
		b.WriteString(*d.Summary)
		b.WriteString("\n")
	}
	return b.String()
}
