package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries everything the process reads from the environment. A .env
// file in the working directory is merged in first when present; real
// environment variables win.
type Config struct {
	Port          string
	SpreadsheetID string
	GID           string
	UploadDir     string
	FetchTimeout  time.Duration
}

// Load reads .env (if any) and the environment and applies defaults.
// GOOGLE_SHEET_URL is the full browser URL of the published tabell sheet;
// the spreadsheet id and gid are extracted from it.
func Load() (Config, error) {
	// Missing .env is fine; explicit env vars are enough.
	_ = godotenv.Load()

	cfg := Config{
		Port:         getEnv("PORT", "8080"),
		UploadDir:    getEnv("UPLOAD_DIR", "uploads"),
		FetchTimeout: 30 * time.Second,
	}
	if raw := os.Getenv("FETCH_TIMEOUT_SECONDS"); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil || secs <= 0 {
			return Config{}, fmt.Errorf("invalid FETCH_TIMEOUT_SECONDS %q", raw)
		}
		cfg.FetchTimeout = time.Duration(secs) * time.Second
	}

	sheetURL := os.Getenv("GOOGLE_SHEET_URL")
	if sheetURL != "" {
		id, gid, err := ParseSheetURL(sheetURL)
		if err != nil {
			return Config{}, err
		}
		cfg.SpreadsheetID = id
		cfg.GID = gid
	}
	return cfg, nil
}

var (
	sheetIDPattern = regexp.MustCompile(`/d/([a-zA-Z0-9_-]+)`)
	gidPattern     = regexp.MustCompile(`gid=(\d+)`)
)

// ParseSheetURL extracts the spreadsheet id and worksheet gid from a pasted
// Google Sheets URL. The gid defaults to "0" when the URL has none, which
// is the first worksheet.
func ParseSheetURL(url string) (id, gid string, err error) {
	m := sheetIDPattern.FindStringSubmatch(url)
	if m == nil {
		return "", "", fmt.Errorf("no spreadsheet id in sheet URL %q", url)
	}
	id = m[1]
	gid = "0"
	if g := gidPattern.FindStringSubmatch(url); g != nil {
		gid = g[1]
	}
	return id, gid, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
