package transcripts

import (
	"context"
	"errors"
	"log"
	"time"

	"golang.org/x/time/rate"

	"showlog/internal/models"
)

// fetchError is a classified transcript failure. Errors without a
// classification are treated as fetch errors.
type fetchError struct {
	reason models.FailureReason
	msg    string
}

func (e *fetchError) Error() string {
	return e.msg
}

// Fetcher turns video IDs into transcript results. A failure for one ID never
// affects the others; callers always get one result per requested ID, in
// request order.
type Fetcher struct {
	client    *Client
	languages []string
	limiter   *rate.Limiter
}

// NewFetcher wires a fetcher over the given client. Preferred languages are
// tried in order, with English defaults appended.
func NewFetcher(client *Client, languages []string) *Fetcher {
	return &Fetcher{
		client:    client,
		languages: preferredLanguages(languages),
		limiter:   rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

// FetchAll fetches transcripts for every requested ID in order. Duplicate IDs
// are fetched independently.
func (f *Fetcher) FetchAll(ctx context.Context, videoIDs []string) []models.TranscriptResult {
	results := make([]models.TranscriptResult, 0, len(videoIDs))
	for _, videoID := range videoIDs {
		if err := f.limiter.Wait(ctx); err != nil {
			results = append(results, models.NewTranscriptFailure(videoID, models.FailureFetchError, "fetch canceled: "+err.Error()))
			continue
		}
		result := f.Fetch(ctx, videoID)
		if result.Success {
			log.Printf("Transcript %s: OK (%d chars)", videoID, len(result.Text))
		} else {
			log.Printf("Transcript %s: FAILED (%s)", videoID, result.FailureNote())
		}
		results = append(results, result)
	}
	return results
}

// Fetch fetches a single transcript, absorbing every failure into the result.
func (f *Fetcher) Fetch(ctx context.Context, videoID string) models.TranscriptResult {
	text, err := f.client.Transcript(ctx, videoID, f.languages)
	if err != nil {
		var classified *fetchError
		if errors.As(err, &classified) {
			return models.NewTranscriptFailure(videoID, classified.reason, classified.msg)
		}
		return models.NewTranscriptFailure(videoID, models.FailureFetchError, err.Error())
	}
	return models.NewTranscript(videoID, text)
}
