package gdocs

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/docs/v1"
	"google.golang.org/api/drive/v3"

	"showlog/shared/config"
)

// Scopes: drive.file only reaches documents this tool created; documents is
// needed for batchUpdate writes.
var oauthScopes = []string{drive.DriveFileScope, docs.DocumentsScope}

// newOAuthClient builds an authenticated HTTP client. The token is loaded
// from the configured token file or obtained interactively on first run, and
// refreshed tokens are persisted automatically.
func newOAuthClient(ctx context.Context, cfg *config.GoogleConfig) (*http.Client, error) {
	oauthConfig, err := loadOAuthConfig(cfg)
	if err != nil {
		return nil, err
	}

	token, err := getToken(ctx, oauthConfig, cfg.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("failed to get OAuth token: %w", err)
	}

	tokenSource := &tokenSaver{
		config:    oauthConfig,
		token:     token,
		tokenFile: cfg.TokenFile,
	}
	return oauth2.NewClient(ctx, tokenSource), nil
}

// loadOAuthConfig prefers an installed-app credentials file when one exists,
// falling back to a client ID and secret from the environment.
func loadOAuthConfig(cfg *config.GoogleConfig) (*oauth2.Config, error) {
	if data, err := os.ReadFile(cfg.CredentialsFile); err == nil {
		oauthConfig, err := google.ConfigFromJSON(data, oauthScopes...)
		if err != nil {
			return nil, fmt.Errorf("failed to parse credentials file %s: %w", cfg.CredentialsFile, err)
		}
		return oauthConfig, nil
	}

	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("google OAuth client missing: provide a credentials file or set GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET")
	}
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Scopes:       oauthScopes,
		Endpoint:     google.Endpoint,
	}, nil
}

// tokenSaver wraps an oauth2.TokenSource to automatically save refreshed
// tokens, so a refreshed token survives to the next run.
type tokenSaver struct {
	config    *oauth2.Config
	token     *oauth2.Token
	tokenFile string
	mu        sync.Mutex
}

func (ts *tokenSaver) Token() (*oauth2.Token, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	tokenSource := ts.config.TokenSource(context.Background(), ts.token)
	newToken, err := tokenSource.Token()
	if err != nil {
		return nil, err
	}

	if newToken.AccessToken != ts.token.AccessToken {
		log.Println("Token refreshed, saving to file")
		ts.token = newToken
		if err := saveToken(ts.tokenFile, newToken); err != nil {
			log.Printf("Warning: Failed to save refreshed token: %v", err)
		}
	}

	return newToken, nil
}

// getToken retrieves an OAuth2 token from disk or runs the authorization flow.
// An expired token with a refresh token is kept; the tokenSaver refreshes it.
func getToken(ctx context.Context, config *oauth2.Config, tokenFile string) (*oauth2.Token, error) {
	tok, err := tokenFromFile(tokenFile)
	if err == nil {
		if tok.RefreshToken != "" {
			log.Printf("Loaded token from file (expires: %v)", tok.Expiry)
			return tok, nil
		}
		if tok.Valid() {
			return tok, nil
		}
	}

	log.Println("Getting new token from web...")
	tok, err = getTokenFromWeb(ctx, config)
	if err != nil {
		return nil, err
	}

	if err := saveToken(tokenFile, tok); err != nil {
		log.Printf("Warning: Failed to save token: %v", err)
	}
	return tok, nil
}

// getTokenFromWeb runs the installed-app authorization flow: a loopback
// listener receives the redirect while the user approves access in a browser.
func getTokenFromWeb(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("unable to start local listener for the OAuth redirect: %w", err)
	}
	defer listener.Close()

	flowConfig := *config
	flowConfig.RedirectURL = fmt.Sprintf("http://%s/", listener.Addr().String())

	state, err := randomState()
	if err != nil {
		return nil, err
	}

	type callback struct {
		code string
		err  error
	}
	callbacks := make(chan callback, 1)

	server := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		switch {
		case query.Get("state") != state:
			http.Error(w, "state mismatch", http.StatusBadRequest)
			callbacks <- callback{err: errors.New("authorization redirect carried an unexpected state")}
		case query.Get("error") != "":
			fmt.Fprintln(w, "Authorization failed. You can close this window.")
			callbacks <- callback{err: fmt.Errorf("authorization declined: %s", query.Get("error"))}
		case query.Get("code") == "":
			http.Error(w, "missing code", http.StatusBadRequest)
			callbacks <- callback{err: errors.New("authorization redirect carried no code")}
		default:
			fmt.Fprintln(w, "Authorization complete. You can close this window and return to the terminal.")
			callbacks <- callback{code: query.Get("code")}
		}
	})}
	go server.Serve(listener)
	defer server.Close()

	authURL := flowConfig.AuthCodeURL(state, oauth2.AccessTypeOffline)
	fmt.Printf("\nOpen this link in your browser to authorize access to Google Docs:\n\n  %s\n\nWaiting for authorization... (Ctrl+C to cancel)\n", authURL)

	select {
	case cb := <-callbacks:
		if cb.err != nil {
			return nil, cb.err
		}
		tok, err := flowConfig.Exchange(ctx, cb.code)
		if err != nil {
			return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
		}
		fmt.Println("\nAuthorization successful.")
		return tok, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate OAuth state: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}

func saveToken(path string, token *oauth2.Token) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("unable to create token directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("unable to cache oauth token: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(token); err != nil {
		return fmt.Errorf("failed to encode oauth token: %w", err)
	}
	fmt.Printf("Token saved to: %s\n", path)
	return nil
}
