package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"showlog/internal/models"
	"showlog/shared/config"
)

type scriptedPrompter struct {
	meta         models.ShowMetadata
	playByPlay   string
	notes        string
	videoIDs     []string
	confirm      bool
	confirmCalls int
}

func (s *scriptedPrompter) Metadata(map[string][]string) (models.ShowMetadata, error) {
	return s.meta, nil
}

func (s *scriptedPrompter) PlayByPlay() (string, error) { return s.playByPlay, nil }

func (s *scriptedPrompter) PersonalNotes() (string, error) { return s.notes, nil }

func (s *scriptedPrompter) VideoIDs() ([]string, error) { return s.videoIDs, nil }

func (s *scriptedPrompter) Confirm(string, bool) (bool, error) {
	s.confirmCalls++
	return s.confirm, nil
}

type stubFetcher struct {
	results []models.TranscriptResult
	gotIDs  []string
}

func (s *stubFetcher) FetchAll(_ context.Context, videoIDs []string) []models.TranscriptResult {
	s.gotIDs = videoIDs
	return s.results
}

type stubPublisher struct {
	published []models.ShowDocument
	result    *models.PublishResult
	err       error
}

func (s *stubPublisher) Publish(_ context.Context, doc models.ShowDocument) (*models.PublishResult, error) {
	s.published = append(s.published, doc)
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type stubFormatter struct {
	out    string
	err    error
	called bool
}

func (s *stubFormatter) Format(_ context.Context, body string) (string, error) {
	s.called = true
	if s.err != nil {
		return "", s.err
	}
	return s.out, nil
}

func testMetadata() models.ShowMetadata {
	return models.ShowMetadata{
		EventDate: "2024-05-01",
		Promotion: "Acme Wrestling",
		ShowName:  "Spring Clash",
		ShowType:  models.ShowTypeTV,
	}
}

func newTestPipeline(prompter *scriptedPrompter, fetcher *stubFetcher, publisher *stubPublisher) *Pipeline {
	p := New(&config.Config{})
	p.prompter = prompter
	p.fetcher = fetcher
	p.publisher = publisher
	return p
}

func TestRunPublishesAssembledDocument(t *testing.T) {
	prompter := &scriptedPrompter{
		meta:       testMetadata(),
		playByPlay: "Match was great.",
		notes:      "I loved it.",
		videoIDs:   []string{"vid1", "vid2"},
	}
	fetcher := &stubFetcher{results: []models.TranscriptResult{
		models.NewTranscript("vid1", "so much action"),
		models.NewTranscriptFailure("vid2", models.FailureNoCaptions, ""),
	}}
	publisher := &stubPublisher{result: &models.PublishResult{
		DocumentID: "doc789",
		URL:        "https://docs.google.com/document/d/doc789/edit",
	}}

	p := newTestPipeline(prompter, fetcher, publisher)

	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if result.DocumentID != "doc789" {
		t.Errorf("DocumentID = %q, want doc789", result.DocumentID)
	}

	if len(publisher.published) != 1 {
		t.Fatalf("Published %d documents, want 1", len(publisher.published))
	}
	doc := publisher.published[0]
	if doc.Title != "2024-05-01_ACME_WRESTLING_TV_SPRING_CLASH" {
		t.Errorf("Title = %q", doc.Title)
	}
	for _, want := range []string{"Match was great.", "I loved it.", "[Video ID: vid1]", "so much action", "[Video ID: vid2] Transcript missing"} {
		if !strings.Contains(doc.Body, want) {
			t.Errorf("Body missing %q", want)
		}
	}

	if len(fetcher.gotIDs) != 2 || fetcher.gotIDs[0] != "vid1" {
		t.Errorf("Fetcher got IDs %v, want [vid1 vid2]", fetcher.gotIDs)
	}
	if prompter.confirmCalls != 0 {
		t.Errorf("Confirm called %d times with no formatter configured, want 0", prompter.confirmCalls)
	}
}

func TestRunReturnsPublishError(t *testing.T) {
	prompter := &scriptedPrompter{
		meta:       testMetadata(),
		playByPlay: "text",
		notes:      "notes",
		videoIDs:   []string{"vid1"},
	}
	fetcher := &stubFetcher{results: []models.TranscriptResult{
		models.NewTranscript("vid1", "words"),
	}}
	publisher := &stubPublisher{err: errors.New("invalid_grant: token expired")}

	p := newTestPipeline(prompter, fetcher, publisher)

	_, err := p.Run(context.Background())
	if err == nil {
		t.Fatal("Expected error when publishing fails")
	}
	if !strings.Contains(err.Error(), "failed to publish document") {
		t.Errorf("Error = %v, want publish failure wrap", err)
	}
}

func TestRunAppliesAIFormatting(t *testing.T) {
	prompter := &scriptedPrompter{
		meta:       testMetadata(),
		playByPlay: "text",
		notes:      "notes",
		videoIDs:   []string{"vid1"},
		confirm:    true,
	}
	fetcher := &stubFetcher{results: []models.TranscriptResult{
		models.NewTranscript("vid1", "words"),
	}}
	publisher := &stubPublisher{result: &models.PublishResult{DocumentID: "d1", URL: "u"}}
	formatter := &stubFormatter{out: "*** FORMATTED BODY ***"}

	p := newTestPipeline(prompter, fetcher, publisher)
	p.formatter = formatter

	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if !formatter.called {
		t.Fatal("Formatter was not called")
	}
	if publisher.published[0].Body != "*** FORMATTED BODY ***" {
		t.Errorf("Published body = %q, want the formatted text", publisher.published[0].Body)
	}
}

func TestRunKeepsUnformattedBodyWhenFormattingFails(t *testing.T) {
	prompter := &scriptedPrompter{
		meta:       testMetadata(),
		playByPlay: "text",
		notes:      "notes",
		videoIDs:   []string{"vid1"},
		confirm:    true,
	}
	fetcher := &stubFetcher{results: []models.TranscriptResult{
		models.NewTranscript("vid1", "words"),
	}}
	publisher := &stubPublisher{result: &models.PublishResult{DocumentID: "d1", URL: "u"}}
	formatter := &stubFormatter{err: errors.New("model overloaded")}

	p := newTestPipeline(prompter, fetcher, publisher)
	p.formatter = formatter

	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if !strings.Contains(publisher.published[0].Body, "Match was great.") && !strings.Contains(publisher.published[0].Body, "text") {
		t.Errorf("Published body = %q, want the original assembled body", publisher.published[0].Body)
	}
}

func TestRunSkipsFormattingWhenDeclined(t *testing.T) {
	prompter := &scriptedPrompter{
		meta:       testMetadata(),
		playByPlay: "text",
		notes:      "notes",
		videoIDs:   []string{"vid1"},
		confirm:    false,
	}
	fetcher := &stubFetcher{results: []models.TranscriptResult{
		models.NewTranscript("vid1", "words"),
	}}
	publisher := &stubPublisher{result: &models.PublishResult{DocumentID: "d1", URL: "u"}}
	formatter := &stubFormatter{out: "should not appear"}

	p := newTestPipeline(prompter, fetcher, publisher)
	p.formatter = formatter

	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if prompter.confirmCalls != 1 {
		t.Errorf("Confirm called %d times, want 1", prompter.confirmCalls)
	}
	if formatter.called {
		t.Error("Formatter ran even though the user declined")
	}
}
