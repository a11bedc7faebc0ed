package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
)

func TestFetchListEnvelopeShapes(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		items   int
		total   int
	}{
		{"items-total_items", `{"items":[{"id":"a"},{"id":"b"}],"total_items":812}`, 2, 812},
		{"results-count", `{"results":[{"id":"a"}],"count":41}`, 1, 41},
		{"items-total", `{"items":[{"id":"a"}],"total":7}`, 1, 7},
		{"bare-array", `[{"id":"a"},{"id":"b"},{"id":"c"}]`, 3, 3},
		{"no-total", `{"items":[{"id":"a"}]}`, 1, 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(c.payload))
			}))
			defer srv.Close()

			f := NewFetcher(srv.URL)
			resp, err := f.FetchList(context.Background(), "/api/v1/auction-completed/", nil)
			if err != nil {
				t.Fatal(err)
			}
			if len(resp.Items) != c.items {
				t.Errorf("items = %d, want %d", len(resp.Items), c.items)
			}
			if resp.Total != c.total {
				t.Errorf("total = %d, want %d", resp.Total, c.total)
			}
		})
	}
}

func TestFetchListPassesParams(t *testing.T) {
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`{"items":[]}`))
	}))
	defer srv.Close()

	params := url.Values{}
	params.Set("province", "서울특별시")
	params.Set("page", "2")
	f := NewFetcher(srv.URL)
	if _, err := f.FetchList(context.Background(), "/api/v1/real-transactions/", params); err != nil {
		t.Fatal(err)
	}
	if gotQuery.Get("province") != "서울특별시" || gotQuery.Get("page") != "2" {
		t.Errorf("query = %v", gotQuery)
	}
}

func TestFetchListRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"items":[{"id":"a"}],"total":1}`))
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL)
	f.RetryInterval = 0
	resp, err := f.FetchList(context.Background(), "/api/v1/auction-completed/", nil)
	if err != nil {
		t.Fatal(err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
	if resp.Total != 1 {
		t.Errorf("total = %d", resp.Total)
	}
}

func TestFetchListGivesUpAfterRetry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL)
	f.RetryInterval = 0
	if _, err := f.FetchList(context.Background(), "/api/v1/auction-completed/", nil); err == nil {
		t.Fatal("expected error")
	}
}

func TestFetchColumns(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"columns":["appraised_value","sale_date","usage"]}`))
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL)
	cols, err := f.FetchColumns(context.Background(), "/api/v1/auction-completed/columns")
	if err != nil {
		t.Fatal(err)
	}
	if len(cols) != 3 || cols[1] != "sale_date" {
		t.Errorf("cols = %v", cols)
	}
}

func TestToRecordsSkipsNonObjects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items":[{"id":"a"},"garbage",{"id":"b"}],"total":3}`))
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL)
	resp, err := f.FetchList(context.Background(), "/api/v1/auction-completed/", nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Items) != 2 {
		t.Errorf("items = %d, want 2", len(resp.Items))
	}
}

func TestToRecordsDropsIdentitylessRows(t *testing.T) {
	f := NewFetcher("http://unused")
	rows := []any{
		map[string]any{"id": "a", "usage": "아파트"},
		map[string]any{"usage": "오피스텔"},
		map[string]any{"case_number": "2024타경0001"},
	}
	out := f.toRecords(rows)
	if len(out) != 2 {
		t.Fatalf("records = %d, want 2", len(out))
	}
	if out[0].Id() != "a" || out[1].Id() != "2024타경0001" {
		t.Errorf("kept wrong rows: %v", out)
	}
}
