package transcripts

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/andybalholm/brotli"

	"showlog/internal/models"
)

const (
	youtubeBase          = "https://www.youtube.com"
	playerURL            = youtubeBase + "/youtubei/v1/player"
	userAgent            = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/135.0.0.0 Safari/537.36"
	clientName           = "WEB"
	clientCode           = "1" // X-YouTube-Client-Name code for WEB
	defaultClientVersion = "2.20250312.04.00"

	maxResponseBytes = 32 << 20
)

var (
	apiKeyRe    = regexp.MustCompile(`"INNERTUBE_API_KEY":"([^"]+)"`)
	clientVerRe = regexp.MustCompile(`"INNERTUBE_CLIENT_VERSION":"([^"]+)"`)
)

// Client talks to YouTube's player endpoint and caption URLs. One instance
// serves a whole run; the API key scraped from the first watch page is reused.
type Client struct {
	httpClient *http.Client
	apiKey     string
	clientVer  string
}

// NewClient returns a caption client. A nil jar means no cookies are sent.
func NewClient(jar http.CookieJar) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Jar:     jar,
		},
	}
}

type playerResponse struct {
	PlayabilityStatus struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
	Captions struct {
		Renderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"` // "asr" marks automatic captions
}

// Transcript fetches the caption text for one video, preferring manual tracks
// in the given language order over automatic ones. Classified failures are
// returned as *fetchError.
func (c *Client) Transcript(ctx context.Context, videoID string, languages []string) (string, error) {
	player, err := c.player(ctx, videoID)
	if err != nil {
		return "", err
	}

	switch status := player.PlayabilityStatus.Status; status {
	case "", "OK":
	case "LOGIN_REQUIRED", "AGE_CHECK_REQUIRED", "CONTENT_CHECK_REQUIRED":
		detail := "authentication required (age-restricted or members-only video)"
		if reason := player.PlayabilityStatus.Reason; reason != "" {
			detail = "authentication required: " + reason
		}
		return "", &fetchError{reason: models.FailureAuthRequired, msg: detail}
	default:
		detail := fmt.Sprintf("video not playable (%s)", status)
		if reason := player.PlayabilityStatus.Reason; reason != "" {
			detail = fmt.Sprintf("video not playable: %s", reason)
		}
		return "", &fetchError{reason: models.FailureFetchError, msg: detail}
	}

	tracks := player.Captions.Renderer.CaptionTracks
	if len(tracks) == 0 {
		return "", &fetchError{reason: models.FailureNoCaptions, msg: "no captions available for this video"}
	}

	var lastErr error
	for _, track := range orderTracks(tracks, languages) {
		text, err := c.captionText(ctx, track.BaseURL)
		if err != nil {
			lastErr = err
			continue
		}
		if text != "" {
			return text, nil
		}
	}
	if lastErr != nil {
		return "", fmt.Errorf("caption download failed: %w", lastErr)
	}
	return "", &fetchError{reason: models.FailureNoCaptions, msg: "caption tracks contained no text"}
}

// ensureKey scrapes the innertube API key and client version from the watch
// page (falling back to the home page). The watch page visit also primes any
// session cookies in the jar.
func (c *Client) ensureKey(ctx context.Context, videoID string) error {
	if c.apiKey != "" && c.clientVer != "" {
		return nil
	}

	sources := []string{youtubeBase + "/watch?v=" + url.QueryEscape(videoID), youtubeBase}
	for _, source := range sources {
		if c.apiKey != "" && c.clientVer != "" {
			break
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			continue
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			continue
		}
		data, err := decodeBody(resp)
		resp.Body.Close()
		if err != nil {
			continue
		}

		if c.apiKey == "" {
			if m := apiKeyRe.FindSubmatch(data); len(m) == 2 {
				c.apiKey = string(m[1])
			}
		}
		if c.clientVer == "" {
			if m := clientVerRe.FindSubmatch(data); len(m) == 2 {
				c.clientVer = string(m[1])
			}
		}
	}

	if c.clientVer == "" {
		c.clientVer = defaultClientVersion
	}
	if c.apiKey == "" {
		return errors.New("innertube api key not found on watch page")
	}
	return nil
}

func (c *Client) player(ctx context.Context, videoID string) (*playerResponse, error) {
	if err := c.ensureKey(ctx, videoID); err != nil {
		return nil, err
	}

	body, err := json.Marshal(map[string]any{
		"context": map[string]any{
			"client": map[string]any{
				"clientName":    clientName,
				"clientVersion": c.clientVer,
			},
		},
		"videoId": videoID,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, playerURL+"?key="+c.apiKey, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")
	req.Header.Set("Referer", youtubeBase+"/")
	req.Header.Set("Origin", youtubeBase)
	req.Header.Set("X-YouTube-Client-Name", clientCode)
	req.Header.Set("X-YouTube-Client-Version", c.clientVer)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("player request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("player request returned status %d", resp.StatusCode)
	}

	data, err := decodeBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read player response: %w", err)
	}

	var player playerResponse
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, fmt.Errorf("failed to parse player response: %w", err)
	}
	return &player, nil
}

// captionText downloads one caption track, forcing the json3 format and
// falling back to markup stripping when the payload is not json3.
func (c *Client) captionText(ctx context.Context, baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid caption url: %w", err)
	}
	q := u.Query()
	q.Set("fmt", "json3")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("caption request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("caption request returned status %d", resp.StatusCode)
	}

	data, err := decodeBody(resp)
	if err != nil {
		return "", fmt.Errorf("failed to read caption response: %w", err)
	}

	if text, err := parseJSON3(data); err == nil {
		return text, nil
	}
	return stripCaptionMarkup(string(data)), nil
}

// decodeBody reads a response body, decompressing by Content-Encoding when
// the transport did not already do so.
func decodeBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body
	switch strings.ToLower(resp.Header.Get("Content-Encoding")) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	case "br":
		reader = brotli.NewReader(resp.Body)
	case "deflate":
		fl := flate.NewReader(resp.Body)
		defer fl.Close()
		reader = fl
	}
	return io.ReadAll(io.LimitReader(reader, maxResponseBytes))
}
