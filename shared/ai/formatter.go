package ai

import (
	"context"
	"fmt"
	"log"
	"strings"

	"google.golang.org/genai"

	"showlog/shared/config"
)

const (
	// maxFormatChars caps how much text gets sent for formatting in one run.
	maxFormatChars = 1_000_000
	// chunkMaxChars keeps each request comfortably inside model limits.
	chunkMaxChars = 10_000
)

const formatInstructions = `You are an assistant that only formats the provided text. Do not rewrite, change, or omit any words or punctuation. Only adjust spacing, line breaks, and headers while keeping all content identical. Output ONLY the formatted text, with no explanations and no notes.

The input is a wrestling show document with a date header, play-by-play text, personal notes, and raw transcript blocks. Format it as follows:
- Keep all text exactly as-is; do not change sentence meaning or wording.
- Keep the title line (YYYY-MM-DD | PROMOTION | SHOW) at the very top.
- Convert section markers like --- PLAY BY PLAY ANALYSIS --- into uppercase headers of the form *** PLAY BY PLAY ANALYSIS ***, separated by a single blank line.
- Keep paragraph breaks inside the play-by-play and personal notes sections.
- For each transcript, add a single-line header like VIDEO TRANSCRIPT: <video id> and preserve the transcript line breaks below it.
- Output plain text without code fences or markdown.
- Preserve the order and all characters of the content.

Now format the following document exactly as requested.

`

// Formatter reflows assembled show documents with Gemini without changing
// their words.
type Formatter struct {
	client *genai.Client
	model  string
}

func NewFormatter(cfg *config.AIConfig) (*Formatter, error) {
	ctx := context.Background()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.GeminiAPIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Formatter{
		client: client,
		model:  cfg.Model,
	}, nil
}

// Format sends the document body through the model in chunks and returns the
// reformatted text. Chunks the model returns empty are kept as-is so no words
// are ever lost.
func (f *Formatter) Format(ctx context.Context, body string) (string, error) {
	if len(body) > maxFormatChars {
		return "", fmt.Errorf("document too large for AI formatting (%d chars)", len(body))
	}

	chunks := splitChunks(body, chunkMaxChars)
	if len(chunks) == 0 {
		return "", nil
	}

	formatted := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		prompt := fmt.Sprintf("%s(Chunk %d/%d)\n\n%s", formatInstructions, i+1, len(chunks), chunk)

		parts := []*genai.Part{
			genai.NewPartFromText(prompt),
		}

		contents := []*genai.Content{
			genai.NewContentFromParts(parts, genai.RoleUser),
		}

		result, err := f.client.Models.GenerateContent(ctx, f.model, contents, nil)
		if err != nil {
			return "", fmt.Errorf("AI formatting failed on chunk %d/%d: %w", i+1, len(chunks), err)
		}

		text := result.Text()
		if strings.TrimSpace(text) == "" {
			log.Printf("Warning: AI returned empty formatted content for chunk %d/%d, keeping original chunk text", i+1, len(chunks))
			text = chunk
		}
		formatted = append(formatted, text)
	}

	return strings.Join(formatted, "\n"), nil
}

// splitChunks cuts text into pieces of at most chunkSize bytes, breaking at
// the last newline before the limit, then the last space, then mid-word as a
// last resort. Whitespace at a break is consumed rather than carried over.
func splitChunks(text string, chunkSize int) []string {
	if text == "" {
		return nil
	}

	var chunks []string
	pos := 0
	for pos < len(text) {
		end := pos + chunkSize
		if end > len(text) {
			end = len(text)
		}
		splitAt := end
		if end < len(text) {
			if idx := strings.LastIndexByte(text[pos:end], '\n'); idx > 0 {
				splitAt = pos + idx
			} else if idx := strings.LastIndexByte(text[pos:end], ' '); idx > 0 {
				splitAt = pos + idx
			}
		}
		chunks = append(chunks, text[pos:splitAt])
		pos = splitAt
		for pos < len(text) && (text[pos] == '\n' || text[pos] == ' ') {
			pos++
		}
	}
	return chunks
}
