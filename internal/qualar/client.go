// Package qualar provides a client for CETESB's Qualar data export endpoint.
package qualar

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/qualarmap/qualarmap/internal/measurement"
	"github.com/qualarmap/qualarmap/internal/provider/resilience"
)

const (
	// DefaultBaseURL is the base URL of the Qualar portal.
	DefaultBaseURL = "https://qualar.cetesb.sp.gov.br/qualar"

	// ProviderName identifies this provider.
	ProviderName = "qualar"

	loginPath  = "/autenticador"
	exportPath = "/exportar_dados_avancados.do"

	exportDateLayout = "02/01/2006"
	rowTimeLayout    = "02/01/2006 15:04"
)

// ClientConfig holds configuration for the Qualar client.
type ClientConfig struct {
	// BaseURL is the portal base URL (defaults to DefaultBaseURL).
	BaseURL string

	// Username and Password are the portal credentials used for the form
	// login that establishes the export session.
	Username string
	Password string

	// HTTPClient is the HTTP client to use (must implement HTTPDoer).
	// If nil, a default resilient client will be created.
	HTTPClient HTTPDoer

	// Timeout for individual requests (default: 30s, exports are slow).
	Timeout time.Duration
}

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a Qualar export client. It logs in once to obtain the session
// cookies and reuses them across export calls. The client is not safe for
// concurrent use before Login has completed.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient HTTPDoer
	cookies    []*http.Cookie
}

// NewClient creates a new Qualar client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpClient = resilience.NewClient(resilience.ClientConfig{
			Name:            ProviderName,
			Timeout:         timeout,
			MaxRetries:      3,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     10 * time.Second,
		})
	}

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		username:   cfg.Username,
		password:   cfg.Password,
		httpClient: httpClient,
	}
}

// Login performs the portal form login and stores the session cookies.
func (c *Client) Login(ctx context.Context) error {
	form := url.Values{}
	form.Set("cetesb_login", c.username)
	form.Set("cetesb_password", c.password)

	resp, err := c.postForm(ctx, loginPath, form)
	if err != nil {
		return fmt.Errorf("qualar login: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from login endpoint", resp.StatusCode)
	}
	if cookies := resp.Cookies(); len(cookies) > 0 {
		c.cookies = cookies
	}
	if len(c.cookies) == 0 {
		return fmt.Errorf("login established no session cookie")
	}
	return nil
}

// Export downloads hourly readings of one indicator at one station for the
// date range and parses them into measurements. Rows without a value are
// skipped.
func (c *Client) Export(ctx context.Context, stationID, indicatorID int, from, to time.Time) ([]measurement.Measurement, error) {
	if len(c.cookies) == 0 {
		if err := c.Login(ctx); err != nil {
			return nil, err
		}
	}

	form := url.Values{}
	form.Set("dataInicialStr", from.Format(exportDateLayout))
	form.Set("dataFinalStr", to.Format(exportDateLayout))
	form.Set("estacaoVO.nestcaMonto", strconv.Itoa(stationID))
	form.Set("nparmtsSelecionados", strconv.Itoa(indicatorID))
	form.Set("iTipoDado", "P")

	resp, err := c.postForm(ctx, exportPath, form)
	if err != nil {
		return nil, fmt.Errorf("qualar export: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from export endpoint", resp.StatusCode)
	}

	return parseExport(resp.Body, stationID, indicatorID)
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}
	return c.httpClient.Do(req)
}

// parseExport reads the semicolon-separated export: a header line followed
// by date;hour;...;value rows. Values carry comma decimals; an empty value
// column means the station did not report that hour.
func parseExport(r io.Reader, stationID, indicatorID int) ([]measurement.Measurement, error) {
	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1

	var measurements []measurement.Measurement
	header := true
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse export: %w", err)
		}
		if header {
			header = false
			continue
		}
		if len(row) < 3 {
			continue
		}

		measuredAt, err := parseRowTime(row[0], row[1])
		if err != nil {
			return nil, fmt.Errorf("parse export row time: %w", err)
		}

		raw := strings.TrimSpace(row[len(row)-1])
		if raw == "" || raw == "--" {
			continue
		}
		value, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
		if err != nil {
			return nil, fmt.Errorf("parse export value %q: %w", raw, err)
		}

		measurements = append(measurements, measurement.Measurement{
			StationID:   stationID,
			IndicatorID: indicatorID,
			MeasuredAt:  measuredAt,
			Value:       value,
		})
	}
	return measurements, nil
}

// parseRowTime handles the portal's 24:00 rows, which mean midnight of the
// following day.
func parseRowTime(date, hour string) (time.Time, error) {
	date = strings.TrimSpace(date)
	hour = strings.TrimSpace(hour)

	rollover := hour == "24:00"
	if rollover {
		hour = "00:00"
	}
	t, err := time.ParseInLocation(rowTimeLayout, date+" "+hour, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	if rollover {
		t = t.AddDate(0, 0, 1)
	}
	return t, nil
}
