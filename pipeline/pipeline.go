package pipeline

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/atotto/clipboard"

	"showlog/cli"
	"showlog/gdocs"
	"showlog/internal/models"
	"showlog/shared/ai"
	"showlog/shared/config"
	"showlog/showdoc"
	"showlog/transcripts"
)

type userPrompter interface {
	Metadata(knownPromotions map[string][]string) (models.ShowMetadata, error)
	PlayByPlay() (string, error)
	PersonalNotes() (string, error)
	VideoIDs() ([]string, error)
	Confirm(message string, defaultValue bool) (bool, error)
}

type transcriptFetcher interface {
	FetchAll(ctx context.Context, videoIDs []string) []models.TranscriptResult
}

type documentPublisher interface {
	Publish(ctx context.Context, doc models.ShowDocument) (*models.PublishResult, error)
}

type bodyFormatter interface {
	Format(ctx context.Context, body string) (string, error)
}

// Pipeline drives one interactive run: collect the show details and
// transcripts, assemble the document, publish it to Google Docs.
type Pipeline struct {
	config    *config.Config
	prompter  userPrompter
	fetcher   transcriptFetcher
	publisher documentPublisher
	formatter bodyFormatter
}

func New(cfg *config.Config) *Pipeline {
	return &Pipeline{config: cfg}
}

// Initialize builds the collaborators that need setup. Publishing needs
// Google authorization, so first runs open the browser consent flow here,
// before any text is collected.
func (p *Pipeline) Initialize(ctx context.Context) error {
	log.Println("Initializing show logger...")

	if p.prompter == nil {
		p.prompter = cli.NewPrompter(os.Stdin, os.Stdout)
	}

	if p.fetcher == nil {
		jar, err := transcripts.LoadCookieJar(p.config.Transcripts.CookiesFile, p.config.Transcripts.CookiesFromBrowser)
		if err != nil {
			return fmt.Errorf("failed to load cookies: %w", err)
		}
		if p.config.Transcripts.CookiesFile != "" || p.config.Transcripts.CookiesFromBrowser != "" {
			log.Println("Cookies loaded")
		}
		p.fetcher = transcripts.NewFetcher(transcripts.NewClient(jar), p.config.Transcripts.Languages)
		log.Println("Transcript fetcher initialized")
	}

	if p.publisher == nil {
		publisher, err := gdocs.NewPublisher(ctx, &p.config.Google)
		if err != nil {
			return fmt.Errorf("failed to create Google Docs publisher: %w", err)
		}
		p.publisher = publisher
		log.Println("Google Docs publisher initialized")
	}

	if p.formatter == nil && p.config.AIEnabled() {
		formatter, err := ai.NewFormatter(&p.config.AI)
		if err != nil {
			return fmt.Errorf("failed to create AI formatter: %w", err)
		}
		p.formatter = formatter
		log.Println("AI formatter initialized")
	}

	return nil
}

// Run executes one collect-assemble-publish cycle and returns the published
// document. Individual transcript failures are annotated in the document
// rather than aborting the run.
func (p *Pipeline) Run(ctx context.Context) (*models.PublishResult, error) {
	fmt.Println("Starting the show logger...")
	fmt.Println("This run will build your master doc.")
	fmt.Println()

	meta, err := p.prompter.Metadata(p.config.Promotions)
	if err != nil {
		return nil, err
	}

	playByPlay, err := p.prompter.PlayByPlay()
	if err != nil {
		return nil, err
	}

	personalNotes, err := p.prompter.PersonalNotes()
	if err != nil {
		return nil, err
	}

	videoIDs, err := p.prompter.VideoIDs()
	if err != nil {
		return nil, err
	}

	log.Printf("Fetching transcripts for %d videos...", len(videoIDs))
	results := p.fetcher.FetchAll(ctx, videoIDs)

	doc := showdoc.Assemble(meta, playByPlay, personalNotes, results)

	successes := 0
	for _, result := range results {
		if result.Success {
			successes++
		}
	}
	fmt.Println("\nCollected Data Summary:")
	fmt.Printf(" - Doc title: %s\n", doc.Title)
	fmt.Printf(" - Play-by-Play length: %d words\n", len(strings.Fields(playByPlay)))
	fmt.Printf(" - Personal Notes length: %d words\n", len(strings.Fields(personalNotes)))
	fmt.Printf(" - Transcript successes: %d/%d\n", successes, len(results))

	fmt.Println("\n## STEP 5: BUILDING DOCUMENT")

	if p.formatter != nil {
		if err := p.maybeFormat(ctx, &doc); err != nil {
			return nil, err
		}
	}

	log.Println("Creating the Google Doc...")
	result, err := p.publisher.Publish(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to publish document: %w", err)
	}

	fmt.Println("... Success!")
	fmt.Println()
	fmt.Println("Your new document is ready in your Google Drive.")
	fmt.Println(result.URL)

	if err := clipboard.WriteAll(result.URL); err == nil {
		fmt.Println("(URL copied to clipboard)")
	}

	return result, nil
}

// maybeFormat offers the AI formatting pass. Formatting failures are never
// fatal; the unformatted body is published instead.
func (p *Pipeline) maybeFormat(ctx context.Context, doc *models.ShowDocument) error {
	question := fmt.Sprintf("Would you like to format this document with AI (%s)? (y/N): ", p.config.AI.Model)
	useAI, err := p.prompter.Confirm(question, false)
	if err != nil {
		return err
	}
	if !useAI {
		return nil
	}

	log.Println("Formatting document with AI...")
	formatted, err := p.formatter.Format(ctx, doc.Body)
	if err != nil {
		log.Printf("Warning: AI formatting failed: %v", err)
		log.Println("Continuing with the unformatted document.")
		return nil
	}
	doc.Body = formatted
	log.Println("AI formatting applied.")
	return nil
}
