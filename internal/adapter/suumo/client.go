// Package suumo scrapes the SUUMO rent market pages ("家賃相場") into rent rows.
//
// Three pages are involved per line:
//
//	/chintai/soba/<area>/ensen/   lists the lines of an area (.searchitem-list li a)
//	<line href>                   holds a search form with hidden ar/bs/ra/rn fields
//	<form action>?ar=..&rn=..     renders one .js-graph-data row per station
package suumo

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/couchcryptid/station-scout/internal/adapter/transport"
	"github.com/couchcryptid/station-scout/internal/domain"
)

// sortByStation orders the rent table by station sequence along the line.
const sortByStation = "1"

// hiddenFields are the form inputs the rent table query needs.
var hiddenFields = []string{"ar", "bs", "ra", "rn"}

// Client implements domain.RentSource on top of a transport.Fetcher.
type Client struct {
	fetcher      transport.Fetcher
	baseURL      *url.URL
	buildingType string
	layout       string
	logger       *slog.Logger
}

// NewClient creates a SUUMO client. buildingType and layout map to the ts and
// mdKbn query parameters, e.g. "1" (mansion) and "03" (1LDK/2K/2DK).
func NewClient(fetcher transport.Fetcher, baseURL, buildingType, layout string, logger *slog.Logger) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse suumo base url: %w", err)
	}
	return &Client{
		fetcher:      fetcher,
		baseURL:      base,
		buildingType: buildingType,
		layout:       layout,
		logger:       logger,
	}, nil
}

// Lines lists the lines of an area in page order. A line name listed twice
// keeps its first position.
func (c *Client) Lines(ctx context.Context, area string) ([]domain.Line, error) {
	pageURL := c.resolve(fmt.Sprintf("/chintai/soba/%s/ensen/", url.PathEscape(area)))
	doc, err := c.document(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("area %s: %w", area, err)
	}

	var lines []domain.Line
	seen := make(map[string]bool)
	doc.Find(".searchitem-list li").Each(func(_ int, li *goquery.Selection) {
		a := li.Find("a").First()
		if a.Length() == 0 {
			return
		}
		name := strings.TrimSpace(a.Text())
		href, ok := a.Attr("href")
		if !ok || name == "" || seen[name] {
			return
		}
		seen[name] = true
		lines = append(lines, domain.Line{Area: area, Name: name, URL: c.resolve(href)})
	})

	c.logger.Debug("area lines listed", "area", area, "lines", len(lines))
	return lines, nil
}

// StationRents fetches the line page, follows its rent search form and parses
// the resulting table.
func (c *Client) StationRents(ctx context.Context, line domain.Line) ([]domain.RentRow, error) {
	linePage, err := c.document(ctx, c.resolve(line.URL))
	if err != nil {
		return nil, fmt.Errorf("line %s: %w", line.Name, err)
	}

	tableURL, err := c.rentTableURL(linePage)
	if err != nil {
		return nil, fmt.Errorf("line %s: %w", line.Name, err)
	}

	table, err := c.document(ctx, tableURL)
	if err != nil {
		return nil, fmt.Errorf("line %s rent table: %w", line.Name, err)
	}

	rows := parseRentTable(table)
	c.logger.Debug("rent table parsed", "line", line.Name, "stations", len(rows))
	return rows, nil
}

// rentTableURL builds the rent table query from the line page's search form.
func (c *Client) rentTableURL(doc *goquery.Document) (string, error) {
	section := doc.Find(".ui-section-body").First()
	if section.Length() == 0 {
		return "", fmt.Errorf("line page has no .ui-section-body")
	}

	action, ok := section.Find("form").First().Attr("action")
	if !ok || action == "" {
		return "", fmt.Errorf("line page has no rent search form")
	}

	query := url.Values{}
	for _, name := range hiddenFields {
		value, ok := section.Find(fmt.Sprintf(`input[name="%s"]`, name)).First().Attr("value")
		if !ok {
			return "", fmt.Errorf("rent search form is missing %q", name)
		}
		query.Set(name, value)
	}
	query.Set("sort", sortByStation)
	query.Set("ts", c.buildingType)
	query.Set("mdKbn", c.layout)

	return c.resolve(action) + "?" + query.Encode(), nil
}

// parseRentTable reads one row per .js-graph-data element. The rent figure is
// only trusted when the strong figure and a listing link are both present;
// otherwise the row carries domain.RentSentinel.
func parseRentTable(doc *goquery.Document) []domain.RentRow {
	var rows []domain.RentRow
	doc.Find(".js-graph-data").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}

		nameCell := cells.Eq(0)
		station := nameCell.Text()
		if a := nameCell.Find("a").First(); a.Length() > 0 {
			station = a.Text()
		}
		station = strings.TrimSpace(station)
		if station == "" {
			return
		}

		rows = append(rows, domain.RentRow{Station: station, Rent: parseRent(cells)})
	})
	return rows
}

func parseRent(cells *goquery.Selection) float64 {
	figure := cells.Eq(1).Find(".graphpanel_matrix-td_graphinfo-strong").First()
	if figure.Length() == 0 || cells.Length() < 4 || cells.Eq(3).Find("a").Length() == 0 {
		return domain.RentSentinel
	}
	rent, err := strconv.ParseFloat(strings.TrimSpace(figure.Text()), 64)
	if err != nil {
		return domain.RentSentinel
	}
	return rent
}

func (c *Client) document(ctx context.Context, pageURL string) (*goquery.Document, error) {
	body, err := c.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", pageURL, err)
	}
	return doc, nil
}

// resolve turns a site-relative reference into an absolute URL.
func (c *Client) resolve(ref string) string {
	u, err := url.Parse(ref)
	if err != nil {
		return c.baseURL.String() + ref
	}
	return c.baseURL.ResolveReference(u).String()
}
