package gdocs

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"google.golang.org/api/docs/v1"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"showlog/internal/models"
	"showlog/shared/config"
)

const documentMimeType = "application/vnd.google-apps.document"

// Publisher creates Google Docs and fills them with assembled show documents.
type Publisher struct {
	drive *drive.Service
	docs  *docs.Service
}

// NewPublisher authenticates against Google and builds the Drive and Docs
// services. First runs walk the user through the browser authorization flow.
func NewPublisher(ctx context.Context, cfg *config.GoogleConfig) (*Publisher, error) {
	httpClient, err := newOAuthClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return newPublisher(ctx, option.WithHTTPClient(httpClient))
}

func newPublisher(ctx context.Context, opts ...option.ClientOption) (*Publisher, error) {
	driveService, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}
	docsService, err := docs.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Docs service: %w", err)
	}
	return &Publisher{drive: driveService, docs: docsService}, nil
}

// Publish creates an empty document with the assembled title, then writes the
// whole body in a single insert. If the write fails, the placeholder document
// is deleted again so failed runs leave nothing behind.
func (p *Publisher) Publish(ctx context.Context, doc models.ShowDocument) (*models.PublishResult, error) {
	file, err := p.drive.Files.Create(&drive.File{
		Name:     doc.Title,
		MimeType: documentMimeType,
	}).Fields("id").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create document: %w", describeAPIError(err))
	}
	if file.Id == "" {
		return nil, errors.New("drive returned an empty document ID")
	}
	log.Printf("Created document %s (%s)", file.Id, doc.Title)

	if err := p.writeBody(ctx, file.Id, doc.Body); err != nil {
		p.cleanup(ctx, file.Id)
		return nil, fmt.Errorf("failed to write document body: %w", describeAPIError(err))
	}

	return &models.PublishResult{
		DocumentID: file.Id,
		URL:        DocumentURL(file.Id),
	}, nil
}

func (p *Publisher) writeBody(ctx context.Context, documentID, body string) error {
	if body == "" {
		return nil
	}
	req := &docs.BatchUpdateDocumentRequest{
		Requests: []*docs.Request{{
			InsertText: &docs.InsertTextRequest{
				Text:                 body,
				EndOfSegmentLocation: &docs.EndOfSegmentLocation{},
			},
		}},
	}
	_, err := p.docs.Documents.BatchUpdate(documentID, req).Context(ctx).Do()
	return err
}

// cleanup deletes the placeholder document after a failed write. Best effort.
func (p *Publisher) cleanup(ctx context.Context, documentID string) {
	if err := p.drive.Files.Delete(documentID).Context(ctx).Do(); err != nil {
		log.Printf("Warning: failed to delete placeholder document %s: %v", documentID, err)
		return
	}
	log.Printf("Deleted placeholder document %s after failed write", documentID)
}

// DocumentURL returns the edit URL for a document ID.
func DocumentURL(documentID string) string {
	return "https://docs.google.com/document/d/" + documentID + "/edit"
}

// describeAPIError adds guidance to errors the user has to fix in the Google
// Cloud console, like the Docs or Drive API being disabled for the project.
func describeAPIError(err error) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	for _, item := range apiErr.Errors {
		if item.Reason == "SERVICE_DISABLED" || item.Reason == "accessNotConfigured" {
			return fmt.Errorf("%w (enable the Google Docs and Drive APIs for your project, then retry)", err)
		}
	}
	for _, detail := range apiErr.Details {
		if m, ok := detail.(map[string]any); ok {
			if reason, ok := m["reason"].(string); ok && reason == "SERVICE_DISABLED" {
				return fmt.Errorf("%w (enable the Google Docs and Drive APIs for your project, then retry)", err)
			}
		}
	}
	if apiErr.Code == 403 && strings.Contains(apiErr.Message, "has not been used in project") {
		return fmt.Errorf("%w (enable the Google Docs and Drive APIs for your project, then retry)", err)
	}
	return err
}
