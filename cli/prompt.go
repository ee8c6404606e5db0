package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"showlog/internal/models"
)

// endSentinel terminates multi-line paste input.
const endSentinel = "::end::"

// Prompter collects run inputs from an interactive terminal.
type Prompter struct {
	reader *bufio.Reader
	out    io.Writer
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		reader: bufio.NewReader(in),
		out:    out,
	}
}

// Metadata walks the user through the event details. Known promotions get a
// numbered pick list of their weekly shows; PPVs and unknown promotions take
// a free-form show name.
func (p *Prompter) Metadata(knownPromotions map[string][]string) (models.ShowMetadata, error) {
	fmt.Fprintf(p.out, "## STEP 1: METADATA\n\n")

	date, err := p.promptDate("Enter event date (YYYY-MM-DD): ")
	if err != nil {
		return models.ShowMetadata{}, err
	}

	promotion, err := p.promptRequired("Enter promotion (e.g., WWE or AEW): ")
	if err != nil {
		return models.ShowMetadata{}, err
	}

	isPPV, err := p.promptYesNo("Is this a PPV (Pay-Per-View)? (y/N): ", false)
	if err != nil {
		return models.ShowMetadata{}, err
	}

	meta := models.ShowMetadata{
		EventDate: date,
		Promotion: promotion,
		ShowType:  models.ShowTypeTV,
	}

	promoKey := strings.ToUpper(promotion)
	switch {
	case isPPV:
		meta.ShowType = models.ShowTypePPV
		meta.ShowName, err = p.promptRequired("Enter PPV show name (e.g., Royal Rumble): ")
	case len(knownPromotions[promoKey]) > 0:
		meta.ShowName, err = p.promptSelect(fmt.Sprintf("Select the show for %s:", promoKey), knownPromotions[promoKey])
	default:
		meta.ShowName, err = p.promptRequired("Enter show (e.g., RAW): ")
	}
	if err != nil {
		return models.ShowMetadata{}, err
	}

	fmt.Fprintf(p.out, "\nGenerating doc named '%s'...\n\n", meta.DocTitle())
	return meta, nil
}

// PlayByPlay reads the pasted recap text up to the end sentinel.
func (p *Prompter) PlayByPlay() (string, error) {
	fmt.Fprintf(p.out, "## STEP 2: Play-by-Play\n\n")
	return p.readBlock("Paste your copied Play-by-Play recap text.\nFinish with a line containing only '::end::' (without quotes).")
}

// PersonalNotes reads the pasted personal notes up to the end sentinel.
func (p *Prompter) PersonalNotes() (string, error) {
	fmt.Fprintf(p.out, "\n## STEP 3: YOUR ANGLE (Personal Notes)\n\n")
	return p.readBlock("Paste your personal notes.\nFinish with a line containing only '::end::' (without quotes).")
}

// VideoIDs reads the comma-separated highlight video IDs. Blank entries are
// dropped; duplicates are kept and fetched independently.
func (p *Prompter) VideoIDs() ([]string, error) {
	fmt.Fprintf(p.out, "\n## STEP 4: YouTube Transcripts\n\n")
	for {
		raw, err := p.promptRequired("Enter all YouTube video IDs, separated by a comma: ")
		if err != nil {
			return nil, err
		}
		var ids []string
		for _, part := range strings.Split(raw, ",") {
			if id := strings.TrimSpace(part); id != "" {
				ids = append(ids, id)
			}
		}
		if len(ids) > 0 {
			return ids, nil
		}
		fmt.Fprintln(p.out, "At least one video ID is required to proceed.")
	}
}

// Confirm asks a yes/no question; empty input picks the default.
func (p *Prompter) Confirm(message string, defaultValue bool) (bool, error) {
	return p.promptYesNo(message, defaultValue)
}

func (p *Prompter) readBlock(instructions string) (string, error) {
	fmt.Fprintln(p.out, instructions)
	for {
		var lines []string
		sawEOF := false
		for {
			line, err := p.reader.ReadString('\n')
			if err != nil && err != io.EOF {
				return "", fmt.Errorf("failed to read input: %w", err)
			}
			text := strings.TrimRight(line, "\r\n")
			if strings.TrimSpace(text) == endSentinel {
				break
			}
			if text != "" || err == nil {
				lines = append(lines, text)
			}
			if err == io.EOF {
				sawEOF = true
				break
			}
		}

		content := strings.TrimSpace(strings.Join(lines, "\n"))
		if content != "" {
			return content, nil
		}
		if sawEOF {
			return "", errors.New("input ended before any text was entered")
		}
		fmt.Fprintln(p.out, "Input cannot be empty. Please paste your text before typing '::end::'.")
	}
}

func (p *Prompter) promptDate(message string) (string, error) {
	for {
		response, err := p.promptLine(message)
		if err != nil {
			return "", err
		}
		if _, parseErr := time.Parse("2006-01-02", response); parseErr == nil {
			return response, nil
		}
		fmt.Fprintln(p.out, "Invalid date format. Please use YYYY-MM-DD.")
	}
}

func (p *Prompter) promptRequired(message string) (string, error) {
	for {
		response, err := p.promptLine(message)
		if err != nil {
			return "", err
		}
		if response != "" {
			return response, nil
		}
		fmt.Fprintln(p.out, "This field is required.")
	}
}

func (p *Prompter) promptYesNo(message string, defaultValue bool) (bool, error) {
	for {
		response, err := p.promptLine(message)
		if err != nil {
			return false, err
		}
		switch strings.ToLower(response) {
		case "":
			return defaultValue, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(p.out, "Please answer 'y' or 'n'.")
	}
}

func (p *Prompter) promptSelect(message string, options []string) (string, error) {
	fmt.Fprintln(p.out, message)
	for i, option := range options {
		fmt.Fprintf(p.out, " %d) %s\n", i+1, option)
	}
	for {
		response, err := p.promptLine("Enter the number of your choice: ")
		if err != nil {
			return "", err
		}
		if idx, convErr := strconv.Atoi(response); convErr == nil && idx >= 1 && idx <= len(options) {
			return options[idx-1], nil
		}
		fmt.Fprintln(p.out, "Invalid selection; enter the number corresponding to your choice.")
	}
}

func (p *Prompter) promptLine(message string) (string, error) {
	fmt.Fprint(p.out, message)
	line, err := p.reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
