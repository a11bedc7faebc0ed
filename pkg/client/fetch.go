// Package client talks to the listing backend: building requests,
// decoding the loosely specified response envelopes and caching
// results with a stale-while-revalidate policy.
package client

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/minchang/zipscout/pkg/schema"
)

var (
	noFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "zipscout_upstream_fetches_total",
		Help: "The total number of upstream listing fetches",
	}, []string{"path"})
	noFetchErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "zipscout_upstream_fetch_errors_total",
		Help: "The total number of failed upstream fetches",
	})
	noInvalidRows = promauto.NewCounter(prometheus.CounterOpts{
		Name: "zipscout_upstream_invalid_rows_total",
		Help: "The total number of rows failing schema validation",
	})
)

// rowSchema is deliberately loose. Rows from different crawler
// generations disagree on almost everything except having an identity.
const rowSchema = `{
	"type": "object",
	"anyOf": [
		{"required": ["id"]},
		{"required": ["doc_id"]},
		{"required": ["case_number"]}
	]
}`

// ListResponse is a decoded result page.
type ListResponse struct {
	Items []schema.Record `json:"items"`
	Total int             `json:"total"`
}

type Fetcher struct {
	BaseUrl       string
	Client        *http.Client
	RetryCount    int
	RetryInterval time.Duration

	rowSchema *jsonschema.Schema
}

func NewFetcher(baseUrl string) *Fetcher {
	compiled, err := jsonschema.CompileString("listing-row.json", rowSchema)
	if err != nil {
		// the schema is a package constant, this cannot happen at runtime
		panic(err)
	}
	return &Fetcher{
		BaseUrl:       strings.TrimRight(baseUrl, "/"),
		Client:        &http.Client{Timeout: 8 * time.Second},
		RetryCount:    1,
		RetryInterval: 1500 * time.Millisecond,
		rowSchema:     compiled,
	}
}

// FetchList requests one listing page and decodes whichever envelope
// shape the backend answered with.
func (f *Fetcher) FetchList(ctx context.Context, path string, params url.Values) (*ListResponse, error) {
	body, err := f.get(ctx, path, params)
	if err != nil {
		return nil, err
	}
	return f.decodeList(body)
}

// FetchColumns loads the sortable column names for one dataset.
func (f *Fetcher) FetchColumns(ctx context.Context, path string) ([]string, error) {
	body, err := f.get(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	var raw any
	if err := sonic.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("columns decode: %w", err)
	}
	switch v := raw.(type) {
	case []any:
		return toStrings(v), nil
	case map[string]any:
		if cols, ok := v["columns"].([]any); ok {
			return toStrings(cols), nil
		}
		if cols, ok := v["sortable"].([]any); ok {
			return toStrings(cols), nil
		}
	}
	return nil, fmt.Errorf("columns: unexpected payload shape")
}

func (f *Fetcher) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := f.BaseUrl + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	var lastErr error
	for attempt := 0; attempt <= f.RetryCount; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(f.RetryInterval):
			}
		}
		body, err := f.once(ctx, u)
		if err == nil {
			noFetches.WithLabelValues(path).Inc()
			return body, nil
		}
		lastErr = err
		slog.Warn("upstream fetch failed", "url", u, "attempt", attempt, "error", err)
	}
	noFetchErrors.Inc()
	return nil, lastErr
}

func (f *Fetcher) once(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("upstream status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// decodeList accepts {items,total_items}, {results,count}, {items,total}
// and a bare array. Unknown keys are ignored.
func (f *Fetcher) decodeList(body []byte) (*ListResponse, error) {
	var raw any
	if err := sonic.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("list decode: %w", err)
	}
	out := &ListResponse{}
	switch v := raw.(type) {
	case []any:
		out.Items = f.toRecords(v)
		out.Total = len(out.Items)
	case map[string]any:
		rows, ok := v["items"].([]any)
		if !ok {
			rows, _ = v["results"].([]any)
		}
		out.Items = f.toRecords(rows)
		out.Total = pickTotal(v, len(out.Items))
	default:
		return nil, fmt.Errorf("list: unexpected payload shape")
	}
	return out, nil
}

func pickTotal(envelope map[string]any, fallback int) int {
	for _, key := range []string{"total_items", "totalItems", "total", "count"} {
		if n, ok := schema.Num(envelope[key]); ok {
			return int(n)
		}
	}
	return fallback
}

func (f *Fetcher) toRecords(rows []any) []schema.Record {
	out := make([]schema.Record, 0, len(rows))
	for _, row := range rows {
		m, ok := row.(map[string]any)
		if !ok {
			noInvalidRows.Inc()
			continue
		}
		if err := f.rowSchema.Validate(m); err != nil {
			noInvalidRows.Inc()
			slog.Debug("dropping row that failed validation", "error", err)
			continue
		}
		out = append(out, schema.Record(m))
	}
	return out
}

func toStrings(v []any) []string {
	out := make([]string, 0, len(v))
	for _, e := range v {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
