package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"retail-dashboard/internal/models"
)

func TestNewSSEHandlers(t *testing.T) {
	analytics := createTestAnalytics()
	logger := testLogger()

	handlers := NewSSEHandlers(analytics, logger)

	if handlers == nil {
		t.Fatal("NewSSEHandlers() returned nil")
	}
	if handlers.analytics != analytics {
		t.Error("NewSSEHandlers() should set analytics field")
	}
	if handlers.logger != logger {
		t.Error("NewSSEHandlers() should set logger field")
	}
}

func TestSSEHandlers_renderCountryTable(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(), testLogger())

	html, err := handlers.renderCountryTable([]models.Point{
		{Label: "Germany", Value: 59.98},
		{Label: "Poland", Value: 999.99},
		{Label: "<b>Atlantis</b>", Value: 1},
	})
	if err != nil {
		t.Fatalf("renderCountryTable() failed: %v", err)
	}

	expectedContent := []string{
		`<div id="country-content">`,
		`<table class="modern-table">`,
		"<th>Country</th>",
		"<th>Revenue</th>",
		"Germany",
		"59.98",
		"Poland",
		"999.99",
		"&lt;b&gt;Atlantis&lt;/b&gt;",
	}
	for _, content := range expectedContent {
		if !strings.Contains(html, content) {
			t.Errorf("expected HTML to contain %q", content)
		}
	}
}

func TestSSEHandlers_renderCountryTable_LargeDataset(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(), testLogger())

	points := make([]models.Point, 75)
	for i := range points {
		points[i] = models.Point{Label: fmt.Sprintf("Country%02d", i), Value: float64(i * 10)}
	}

	html, err := handlers.renderCountryTable(points)
	if err != nil {
		t.Fatalf("renderCountryTable() failed: %v", err)
	}

	rowCount := strings.Count(html, "<tr>") - 1 // header row
	if rowCount != maxTableRows {
		t.Errorf("expected %d rows, got %d", maxTableRows, rowCount)
	}
}

func TestSSEHandlers_HandleSales(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/sse/sales", nil)
	w := httptest.NewRecorder()
	handlers.HandleSales(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/event-stream") {
		t.Errorf("expected content-type to contain 'text/event-stream', got %q", ct)
	}

	body := w.Body.String()
	for _, want := range []string{"monthlySales", "countrySales", "<table", "Sales data loaded"} {
		if !strings.Contains(body, want) {
			t.Errorf("response should contain %q", want)
		}
	}
}

func TestSSEHandlers_HandleSales_SignalsSelectRange(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(), testLogger())

	signals := url.QueryEscape(`{"start":"2023-02-01","end":"2023-02-28"}`)
	req := httptest.NewRequest(http.MethodGet, "/sse/sales?datastar="+signals, nil)
	w := httptest.NewRecorder()
	handlers.HandleSales(w, req)

	body := w.Body.String()
	if !strings.Contains(body, "Germany") {
		t.Error("february should include the Germany sale")
	}
	if strings.Contains(body, "Poland") {
		t.Error("the Poland sale is in January and should be filtered out")
	}
}

func TestSSEHandlers_HandleSales_BadSignals(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(), testLogger())

	tests := []struct {
		name    string
		signals string
	}{
		{"malformed json", `{"start":`},
		{"bad date", `{"start":"16/01/2023"}`},
		{"inverted range", `{"start":"2023-02-01","end":"2023-01-01"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/sse/sales?datastar="+url.QueryEscape(tt.signals), nil)
			w := httptest.NewRecorder()
			handlers.HandleSales(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("expected status 400, got %d", w.Code)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("expected a JSON error, got content-type %q", ct)
			}
		})
	}
}

func TestSSEHandlers_HandleProducts(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(), testLogger())

	signals := url.QueryEscape(`{"category":"Electronics"}`)
	req := httptest.NewRequest(http.MethodGet, "/sse/products?datastar="+signals, nil)
	w := httptest.NewRecorder()
	handlers.HandleProducts(w, req)

	body := w.Body.String()
	for _, want := range []string{"subcategorySales", "Computers", "Mobiles", "Products loaded for Electronics"} {
		if !strings.Contains(body, want) {
			t.Errorf("response should contain %q", want)
		}
	}
}

func TestSSEHandlers_HandleChannels(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(), testLogger())

	signals := url.QueryEscape(`{"channel":"TeleShop"}`)
	req := httptest.NewRequest(http.MethodGet, "/sse/channels?datastar="+signals, nil)
	w := httptest.NewRecorder()
	handlers.HandleChannels(w, req)

	body := w.Body.String()
	for _, want := range []string{"weekdaySales", "customerGenders", "Friday", "Channel data loaded for TeleShop"} {
		if !strings.Contains(body, want) {
			t.Errorf("response should contain %q", want)
		}
	}
}

func TestSSEHandlers_HandleChannelSplit(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/sse/channel-split", nil)
	w := httptest.NewRecorder()
	handlers.HandleChannelSplit(w, req)

	body := w.Body.String()
	if !strings.Contains(body, "channelSplit") {
		t.Error("response should contain channelSplit signal")
	}
	if !strings.Contains(body, "Channel split loaded for Monday") {
		t.Error("an empty selection should default to Monday")
	}
}

func TestSSEHandlers_HeaderConsistency(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(), testLogger())

	sseEndpoints := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"sales", handlers.HandleSales},
		{"products", handlers.HandleProducts},
		{"channels", handlers.HandleChannels},
		{"channel-split", handlers.HandleChannelSplit},
	}

	for _, endpoint := range sseEndpoints {
		t.Run(endpoint.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			w := httptest.NewRecorder()

			endpoint.handler(w, req)

			if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/event-stream") {
				t.Errorf("expected content-type to contain 'text/event-stream', got %q", ct)
			}
			if cc := w.Header().Get("Cache-Control"); cc != "no-cache" {
				t.Errorf("expected cache-control 'no-cache', got %q", cc)
			}

			body := w.Body.String()
			if !strings.Contains(body, "event:") || !strings.Contains(body, "data:") {
				t.Error("response should contain SSE event format")
			}
		})
	}
}

func TestRenderStatus(t *testing.T) {
	html, err := renderStatus("sales-status", "Loaded <3 rows")
	if err != nil {
		t.Fatal(err)
	}
	if html != `<div id="sales-status">Loaded &lt;3 rows</div>` {
		t.Errorf("unexpected status fragment %q", html)
	}
}
