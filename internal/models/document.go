package models

// ShowDocument is a fully assembled document ready for publishing.
type ShowDocument struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// PublishResult identifies a successfully published document.
type PublishResult struct {
	DocumentID string `json:"document_id"`
	URL        string `json:"url"`
}
