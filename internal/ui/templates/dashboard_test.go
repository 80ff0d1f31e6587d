package templates

import (
	"context"
	"strings"
	"testing"
	"time"

	"retail-dashboard/internal/models"
)

func TestDashboard(t *testing.T) {
	opts := models.DatasetOptions{
		Channels:   []string{"e-Shop", "TeleShop"},
		Categories: []string{"Books", "Home & kitchen"},
		Weekdays:   []string{"Monday", "Tuesday"},
		MinDate:    time.Date(2011, 1, 25, 0, 0, 0, 0, time.UTC),
		MaxDate:    time.Date(2014, 2, 28, 0, 0, 0, 0, time.UTC),
	}

	var b strings.Builder
	if err := Dashboard(opts).Render(context.Background(), &b); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	html := b.String()

	expected := []string{
		"<title>Retail Dashboard</title>",
		"Overall sales",
		"Products",
		"Sales channels",
		`<option value="e-Shop">e-Shop</option>`,
		`<option value="Home &amp; kitchen">Home &amp; kitchen</option>`,
		`min="2011-01-25" max="2014-02-28"`,
		"@get('/sse/sales')",
		"@get('/sse/products')",
		"@get('/sse/channels')",
		"@get('/sse/channel-split')",
		`id="country-content"`,
		`id="sales-status"`,
		`id="products-status"`,
		`id="channels-status"`,
		`id="split-status"`,
		"&#34;category&#34;:&#34;Books&#34;",
		`data-on-click="$tab = &#39;products&#39;"`,
		`<button data-on-click="$tab = &#39;channels&#39;" data-class-active="$tab == &#39;channels&#39;">Sales channels</button>`,
	}
	for _, want := range expected {
		if !strings.Contains(html, want) {
			t.Errorf("dashboard should contain %q", want)
		}
	}
}

func TestDashboard_EmptyDataset(t *testing.T) {
	var b strings.Builder
	if err := Dashboard(models.DatasetOptions{}).Render(context.Background(), &b); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if strings.Contains(b.String(), "min=") {
		t.Error("date inputs should be unbounded without data")
	}
	if strings.Contains(b.String(), "<option") {
		t.Error("no options expected without data")
	}
}
