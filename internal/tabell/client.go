package tabell

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"skud-compare-api/internal/models"
)

// defaultBaseURL is the host serving published Google Sheets CSV exports.
const defaultBaseURL = "https://docs.google.com"

// defaultFetchTimeout bounds one CSV download end to end.
const defaultFetchTimeout = 30 * time.Second

// ClientConfig identifies the tabell sheet and tunes the transport.
type ClientConfig struct {
	SpreadsheetID string
	GID           string        // worksheet gid, "0" when unset
	BaseURL       string        // overridable for tests
	Timeout       time.Duration // wall timeout per fetch
}

// Client fetches the published tabell CSV and decodes it into entries.
type Client struct {
	cfg        ClientConfig
	schema     Schema
	httpClient *http.Client
	log        *zap.SugaredLogger
}

// NewClient applies config defaults and builds the fetch client.
func NewClient(cfg ClientConfig, log *zap.SugaredLogger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.GID == "" {
		cfg.GID = "0"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultFetchTimeout
	}
	return &Client{
		cfg:        cfg,
		schema:     DefaultSchema(),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log,
	}
}

// FetchTabell downloads the sheet and parses the entries whose month falls
// inside [from, to].
func (c *Client) FetchTabell(ctx context.Context, from, to time.Time) ([]models.TabellEntry, error) {
	rows, err := c.fetchRows(ctx)
	if err != nil {
		return nil, err
	}
	entries := ParseRows(c.schema, rows, from, to)
	c.log.Infow("tabell fetched", "rows", len(rows), "entries", len(entries))
	return entries, nil
}

// FetchProjects downloads the sheet and lists its distinct projects.
func (c *Client) FetchProjects(ctx context.Context) ([]string, error) {
	rows, err := c.fetchRows(ctx)
	if err != nil {
		return nil, err
	}
	return ProjectsFromRows(c.schema, rows), nil
}

func (c *Client) exportURL() string {
	return fmt.Sprintf("%s/spreadsheets/d/%s/export?format=csv&gid=%s",
		c.cfg.BaseURL, c.cfg.SpreadsheetID, c.cfg.GID)
}

func (c *Client) fetchRows(ctx context.Context) ([][]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.exportURL(), nil)
	if err != nil {
		return nil, fmt.Errorf("build sheet request: %w", err)
	}
	// Google serves anonymous exports more reliably to browser agents.
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch sheet: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch sheet: unexpected status %d", resp.StatusCode)
	}

	// Published exports are BOM-prefixed UTF-8; the decoder strips the BOM.
	reader := csv.NewReader(transform.NewReader(resp.Body, unicode.UTF8BOM.NewDecoder()))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("decode sheet csv: %w", err)
	}
	return rows, nil
}
