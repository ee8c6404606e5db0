package transcripts

import (
	"encoding/json"
	"html"
	"regexp"
	"strings"
)

// json3 is YouTube's segmented caption format: a flat list of events whose
// segments carry the caption text.
type json3Body struct {
	Events []json3Event `json:"events"`
}

type json3Event struct {
	Segs []json3Seg `json:"segs"`
}

type json3Seg struct {
	UTF8 string `json:"utf8"`
}

// parseJSON3 flattens a json3 payload into plain text. Segment-internal
// newlines become spaces; empty segments are dropped. A payload with no
// events yields empty text, not an error.
func parseJSON3(data []byte) (string, error) {
	var body json3Body
	if err := json.Unmarshal(data, &body); err != nil {
		return "", err
	}
	var chunks []string
	for _, event := range body.Events {
		for _, seg := range event.Segs {
			text := strings.TrimSpace(strings.ReplaceAll(seg.UTF8, "\n", " "))
			if text != "" {
				chunks = append(chunks, text)
			}
		}
	}
	return strings.Join(chunks, " "), nil
}

var (
	timestampRe = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}[.,]\d{3} -->`)
	cueIndexRe  = regexp.MustCompile(`^\d+$`)
	markupTagRe = regexp.MustCompile(`<[^>]+>`)
)

// stripCaptionMarkup extracts plain text from VTT/SRT/srv-style caption
// payloads: headers, cue indexes, and timestamp lines are dropped, tags are
// removed, and entities unescaped.
func stripCaptionMarkup(payload string) string {
	var lines []string
	for _, raw := range strings.Split(payload, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || line == "WEBVTT" || strings.HasPrefix(line, "NOTE") {
			continue
		}
		if timestampRe.MatchString(line) || cueIndexRe.MatchString(line) {
			continue
		}
		line = strings.TrimSpace(html.UnescapeString(markupTagRe.ReplaceAllString(line, "")))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, " ")
}
