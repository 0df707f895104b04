// Package navitime implements the routing service ports on top of the
// NAVITIME transport and reachable APIs published through RapidAPI.
package navitime

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/couchcryptid/station-scout/internal/adapter/transport"
	"github.com/couchcryptid/station-scout/internal/domain"
)

// Headers returns the RapidAPI authentication headers for a service base URL.
func Headers(apiKey, baseURL string) http.Header {
	h := http.Header{}
	h.Set("x-rapidapi-key", apiKey)
	if u, err := url.Parse(baseURL); err == nil && u.Host != "" {
		h.Set("x-rapidapi-host", u.Host)
	}
	return h
}

// Autocomplete implements domain.NodeSearcher.
type Autocomplete struct {
	fetcher transport.Fetcher
	baseURL string
}

// NewAutocomplete creates a node searcher against the transport API.
func NewAutocomplete(fetcher transport.Fetcher, baseURL string) *Autocomplete {
	return &Autocomplete{fetcher: fetcher, baseURL: strings.TrimRight(baseURL, "/")}
}

// SearchNodes returns prefix matches for word in service order.
func (a *Autocomplete) SearchNodes(ctx context.Context, word string) ([]domain.NodeCandidate, error) {
	params := url.Values{
		"word":       {word},
		"word_match": {"prefix"},
	}
	body, err := a.fetcher.Fetch(ctx, a.baseURL+"/transport_node/autocomplete?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("autocomplete %s: %w", word, err)
	}

	var resp autocompleteResponse
	if err := decode(body, &resp); err != nil {
		return nil, fmt.Errorf("autocomplete %s: %w", word, err)
	}

	out := make([]domain.NodeCandidate, 0, len(resp.Items))
	for _, item := range resp.Items {
		out = append(out, domain.NodeCandidate{ID: item.ID, Name: item.Name})
	}
	return out, nil
}

// Reachability implements domain.ReachabilityService.
type Reachability struct {
	fetcher transport.Fetcher
	baseURL string
	logger  *slog.Logger
}

// NewReachability creates a reachability client against the reachable API.
func NewReachability(fetcher transport.Fetcher, baseURL string, logger *slog.Logger) *Reachability {
	return &Reachability{fetcher: fetcher, baseURL: strings.TrimRight(baseURL, "/"), logger: logger}
}

// Reachable lists the stations reachable from q.NodeID within q.TermMinutes.
func (r *Reachability) Reachable(ctx context.Context, q domain.ReachabilityQuery) ([]domain.ReachableStation, error) {
	params := url.Values{
		"term":          {strconv.Itoa(q.TermMinutes)},
		"start":         {q.NodeID},
		"transit_limit": {strconv.Itoa(q.TransitLimit)},
		"node_type":     {"station"},
		"limit":         {strconv.Itoa(q.ResultLimit)},
	}
	if len(q.ExcludedModes) > 0 {
		params.Set("unuse", strings.Join(q.ExcludedModes, "."))
	}

	body, err := r.fetcher.Fetch(ctx, r.baseURL+"/reachable_transit?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("reachable from %s: %w", q.NodeID, err)
	}

	var resp reachableResponse
	if err := decode(body, &resp); err != nil {
		return nil, fmt.Errorf("reachable from %s: %w", q.NodeID, err)
	}

	out := make([]domain.ReachableStation, 0, len(resp.Items))
	for _, item := range resp.Items {
		out = append(out, domain.ReachableStation{
			Name:         item.Name,
			Time:         int(item.Time),
			TransitCount: int(item.TransitCount),
		})
	}
	r.logger.Debug("reachable stations fetched", "node_id", q.NodeID, "stations", len(out))
	return out, nil
}

func decode(body []byte, v any) error {
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// NAVITIME API response types.

type autocompleteResponse struct {
	Items []nodeItem `json:"items"`
}

type nodeItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type reachableResponse struct {
	Items []reachableItem `json:"items"`
}

type reachableItem struct {
	Name         string  `json:"name"`
	Time         flexInt `json:"time"`
	TransitCount flexInt `json:"transit_count"`
}

// flexInt accepts both JSON numbers and numeric strings.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("parse %s as integer: %w", data, err)
	}
	*f = flexInt(n)
	return nil
}
