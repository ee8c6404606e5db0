package transcripts

import (
	"bufio"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
	_ "modernc.org/sqlite"
)

// storedCookie pairs a cookie with the host it was stored under. The Domain
// field is only set for cookies that apply to subdomains; host-only cookies
// keep it empty and rely on the host here.
type storedCookie struct {
	host   string
	cookie *http.Cookie
}

// LoadCookieJar builds the cookie jar for caption requests. A cookies file
// takes precedence over a browser import when both are configured. With
// neither, the jar starts empty and only holds cookies YouTube sets during
// the run.
func LoadCookieJar(cookiesFile, cookiesFromBrowser string) (http.CookieJar, error) {
	switch {
	case cookiesFile != "":
		f, err := os.Open(cookiesFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open cookies file: %w", err)
		}
		defer f.Close()
		stored, err := parseNetscapeCookies(f)
		if err != nil {
			return nil, fmt.Errorf("failed to parse cookies file %s: %w", cookiesFile, err)
		}
		return jarFromCookies(stored)
	case cookiesFromBrowser != "":
		stored, err := browserCookies(cookiesFromBrowser)
		if err != nil {
			return nil, err
		}
		return jarFromCookies(stored)
	default:
		return jarFromCookies(nil)
	}
}

func jarFromCookies(stored []storedCookie) (http.CookieJar, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}
	grouped := make(map[string][]*http.Cookie)
	for _, sc := range stored {
		grouped[sc.host] = append(grouped[sc.host], sc.cookie)
	}
	for host, cookies := range grouped {
		jar.SetCookies(&url.URL{Scheme: "https", Host: host}, cookies)
	}
	return jar, nil
}

// parseNetscapeCookies reads a cookies.txt export: seven tab-separated fields
// per line (domain, subdomain flag, path, secure flag, expiry, name, value).
// Comments and blank lines are skipped, except the #HttpOnly_ prefix which
// marks a live cookie. Expired entries are dropped.
func parseNetscapeCookies(r io.Reader) ([]storedCookie, error) {
	var stored []storedCookie
	now := time.Now()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r\n")

		httpOnly := false
		if strings.HasPrefix(line, "#HttpOnly_") {
			line = strings.TrimPrefix(line, "#HttpOnly_")
			httpOnly = true
		} else if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) != 7 {
			return nil, fmt.Errorf("malformed cookie on line %d: expected 7 tab-separated fields, got %d", lineNo, len(fields))
		}

		expiry, err := strconv.ParseInt(fields[4], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed cookie expiry on line %d: %w", lineNo, err)
		}
		if expiry != 0 && time.Unix(expiry, 0).Before(now) {
			continue
		}

		host := strings.TrimPrefix(fields[0], ".")
		cookie := &http.Cookie{
			Path:     fields[2],
			Secure:   strings.EqualFold(fields[3], "TRUE"),
			Name:     fields[5],
			Value:    fields[6],
			HttpOnly: httpOnly,
		}
		if strings.EqualFold(fields[1], "TRUE") {
			cookie.Domain = host
		}
		if expiry != 0 {
			cookie.Expires = time.Unix(expiry, 0)
		}
		stored = append(stored, storedCookie{host: host, cookie: cookie})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return stored, nil
}

// browserCookies imports cookies from a browser shorthand like "firefox" or
// "firefox:/path/to/profile".
func browserCookies(spec string) ([]storedCookie, error) {
	browser, profile, _ := strings.Cut(spec, ":")
	switch strings.ToLower(strings.TrimSpace(browser)) {
	case "firefox":
		return firefoxCookies(profile)
	case "chrome", "chromium", "edge", "brave", "opera", "vivaldi":
		return nil, fmt.Errorf("%s stores cookies encrypted; export a Netscape cookies file and set SHOWLOG_COOKIES_FILE instead", browser)
	default:
		return nil, fmt.Errorf("unsupported browser %q for cookie import (supported: firefox)", browser)
	}
}

func firefoxCookies(profileDir string) ([]storedCookie, error) {
	dbPath := ""
	if profileDir != "" {
		dbPath = filepath.Join(profileDir, "cookies.sqlite")
	} else {
		var err error
		dbPath, err = defaultFirefoxCookieDB()
		if err != nil {
			return nil, err
		}
	}
	return readFirefoxCookieDB(dbPath)
}

// defaultFirefoxCookieDB locates the most recently used Firefox profile.
func defaultFirefoxCookieDB() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	patterns := []string{
		filepath.Join(home, ".mozilla", "firefox", "*", "cookies.sqlite"),
		filepath.Join(home, "snap", "firefox", "common", ".mozilla", "firefox", "*", "cookies.sqlite"),
		filepath.Join(home, "Library", "Application Support", "Firefox", "Profiles", "*", "cookies.sqlite"),
	}

	var newest string
	var newestMod time.Time
	for _, pattern := range patterns {
		matches, _ := filepath.Glob(pattern)
		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil {
				continue
			}
			if info.ModTime().After(newestMod) {
				newest, newestMod = match, info.ModTime()
			}
		}
	}
	if newest == "" {
		return "", errors.New("no firefox profile with a cookies.sqlite found")
	}
	return newest, nil
}

// readFirefoxCookieDB reads YouTube and Google cookies from a Firefox
// cookies.sqlite. The database is opened read-only; close Firefox first if
// the file is locked.
func readFirefoxCookieDB(dbPath string) ([]storedCookie, error) {
	db, err := sql.Open("sqlite", "file:"+dbPath+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open firefox cookie database %s: %w", dbPath, err)
	}
	defer db.Close()

	rows, err := db.Query(`SELECT host, path, isSecure, expiry, name, value, isHttpOnly
		FROM moz_cookies
		WHERE host LIKE '%youtube.com' OR host LIKE '%google.com'`)
	if err != nil {
		return nil, fmt.Errorf("failed to read firefox cookies from %s: %w", dbPath, err)
	}
	defer rows.Close()

	now := time.Now()
	var stored []storedCookie
	for rows.Next() {
		var host, path, name, value string
		var isSecure, isHTTPOnly int
		var expiry int64
		if err := rows.Scan(&host, &path, &isSecure, &expiry, &name, &value, &isHTTPOnly); err != nil {
			return nil, err
		}
		if expiry != 0 && time.Unix(expiry, 0).Before(now) {
			continue
		}

		cookie := &http.Cookie{
			Name:     name,
			Value:    value,
			Path:     path,
			Secure:   isSecure != 0,
			HttpOnly: isHTTPOnly != 0,
		}
		if strings.HasPrefix(host, ".") {
			cookie.Domain = strings.TrimPrefix(host, ".")
		}
		if expiry != 0 {
			cookie.Expires = time.Unix(expiry, 0)
		}
		stored = append(stored, storedCookie{host: strings.TrimPrefix(host, "."), cookie: cookie})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stored, nil
}
