package collector

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// UniverseProvider lists the tickers a ranking run should cover.
type UniverseProvider interface {
	Tickers(ctx context.Context, limit int) ([]string, error)
}

// DemoTickers is the fallback A-share sample used when no universe is configured.
var DemoTickers = []string{
	"000001", "600000", "600519", "000651", "000333", "601318", "600036", "600104",
	"002415", "300750", "000002", "601398", "601988", "601939", "000858", "600030",
	"600009", "600028", "600837", "600048", "600585", "601633", "601888", "002475",
	"000726", "601012", "601899", "002352", "603288", "600196",
}

// StaticUniverse serves a fixed ticker list.
type StaticUniverse []string

func (s StaticUniverse) Tickers(_ context.Context, limit int) ([]string, error) {
	return head(s, limit), nil
}

// CustomUniverse serves a user-supplied ticker list. The list is taken
// whole; limit only applies to discovered universes.
type CustomUniverse []string

func (c CustomUniverse) Tickers(context.Context, int) ([]string, error) {
	return dedupe(c), nil
}

// HTMLTableUniverse scrapes tickers from one column of an HTML table, such
// as an index constituents page.
type HTMLTableUniverse struct {
	URL      string
	Selector string // table selector, e.g. "table#constituents"
	Column   int    // zero-based cell index holding the ticker
	Client   *http.Client
}

// NewHTMLTableUniverse creates a scraper for the table matched by selector.
func NewHTMLTableUniverse(url, selector string, column int, proxyURL string) *HTMLTableUniverse {
	return &HTMLTableUniverse{
		URL:      url,
		Selector: selector,
		Column:   column,
		Client:   newHTTPClient(proxyURL, 30*time.Second),
	}
}

func (u *HTMLTableUniverse) Tickers(ctx context.Context, limit int) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	resp, err := u.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch universe: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch universe: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse universe html: %w", err)
	}

	var tickers []string
	doc.Find(u.Selector).First().Find("tr").Each(func(_ int, row *goquery.Selection) {
		cell := row.Find("td").Eq(u.Column)
		if cell.Length() == 0 {
			return // header row
		}
		if t := strings.TrimSpace(cell.Text()); t != "" {
			tickers = append(tickers, t)
		}
	})
	tickers = dedupe(tickers)
	if len(tickers) == 0 {
		return nil, fmt.Errorf("no tickers found in %s (selector %q, column %d)", u.URL, u.Selector, u.Column)
	}
	return head(tickers, limit), nil
}

// ParseTickers splits a comma separated ticker list, dropping blanks and duplicates.
func ParseTickers(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return dedupe(out)
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func head(in []string, limit int) []string {
	if limit > 0 && len(in) > limit {
		return append([]string(nil), in[:limit]...)
	}
	return append([]string(nil), in...)
}
