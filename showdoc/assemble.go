package showdoc

import (
	"fmt"
	"strings"

	"showlog/internal/models"
)

// Assemble builds the publishable document from the collected show data.
// Assembly is pure: the same inputs always produce the same document, and
// every transcript result gets exactly one subsection and one summary line,
// in request order.
func Assemble(meta models.ShowMetadata, playByPlay, personalNotes string, transcripts []models.TranscriptResult) models.ShowDocument {
	var body strings.Builder

	fmt.Fprintf(&body, "%s | %s | %s\n\n", meta.EventDate, meta.Promotion, meta.ShowName)
	body.WriteString("--- PLAY BY PLAY ANALYSIS ---\n" + strings.TrimSpace(playByPlay) + "\n\n")
	body.WriteString("--- YOUR ANGLE ---\n" + strings.TrimSpace(personalNotes) + "\n\n")

	blocks := []string{"--- HIGHLIGHT TRANSCRIPTS ---"}
	for _, result := range transcripts {
		if result.Success {
			blocks = append(blocks, fmt.Sprintf("[Video ID: %s]\n%s\n", result.VideoID, strings.TrimSpace(result.Text)))
		} else {
			blocks = append(blocks, fmt.Sprintf("[Video ID: %s] Transcript missing (%s).\n", result.VideoID, result.FailureNote()))
		}
	}
	body.WriteString(strings.TrimSpace(strings.Join(blocks, "\n")) + "\n\n")

	lines := []string{"--- TRANSCRIPT SUMMARY ---"}
	for _, result := range transcripts {
		status := "OK (ready)"
		if !result.Success {
			status = fmt.Sprintf("FAILED (%s)", result.FailureNote())
		}
		lines = append(lines, fmt.Sprintf("- %s: %s", result.VideoID, status))
	}
	body.WriteString(strings.Join(lines, "\n"))

	return models.ShowDocument{
		Title: meta.DocTitle(),
		Body:  body.String(),
	}
}
