package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"retail-dashboard/internal/config"
	"retail-dashboard/internal/models"
	"retail-dashboard/internal/observability"
)

// Analytics holds the current dataset and answers dashboard queries against
// it. Queries take a snapshot of the dataset pointer and never block a load.
type Analytics struct {
	mu       sync.RWMutex
	dataset  *Dataset
	loadedAt time.Time
	source   string
	logger   *slog.Logger
}

func NewAnalytics() *Analytics {
	return &Analytics{
		dataset: NewDataset(nil),
		logger:  slog.Default(),
	}
}

// SetData replaces the dataset with the given merged records.
func (a *Analytics) SetData(records []models.MergedRecord) {
	a.swap(NewDataset(records), "memory")
}

func (a *Analytics) swap(ds *Dataset, source string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.dataset = ds
	a.loadedAt = time.Now()
	a.source = source
}

// LoadFromSources loads and merges the configured files, reusing the merged
// table cache when every source still has the path, size and mtime it was
// built from.
func (a *Analytics) LoadFromSources(ctx context.Context, cfg config.DataConfig) (err error) {
	ctx, span := observability.StartSpan(ctx, "dataset.load")
	defer func() {
		if err != nil {
			span.SetError(err)
		}
		span.End(ctx, a.logger)
	}()

	src := SourcesFromConfig(cfg)
	cache := &datasetCache{dir: cfg.CacheDir}

	if cfg.CacheEnabled {
		records, err := cache.load(src)
		if err == nil {
			a.swap(NewDataset(records), "cache")
			a.logger.Info("loaded from cache", "records", len(records))
			return nil
		}
		a.logger.Debug("cache not used", "reason", err)
	}

	var stamps []sourceStamp
	if cfg.CacheEnabled {
		var stampErr error
		if stamps, stampErr = stampSources(src); stampErr != nil {
			a.logger.Warn("cannot stamp sources, cache disabled for this load", "error", stampErr)
		}
	}

	start := time.Now()
	raw, err := NewLoader(a.logger).Load(ctx, src)
	if err != nil {
		return fmt.Errorf("load sources: %w", err)
	}

	records := Merge(raw)
	if len(records) != len(raw.Transactions) {
		return fmt.Errorf("merge produced %d records from %d transactions", len(records), len(raw.Transactions))
	}

	a.swap(NewDataset(records), src.TransactionsDir)
	span.SetTag("records", strconv.Itoa(len(records)))

	if stamps != nil {
		if err := cache.save(src, stamps, records); err != nil {
			a.logger.Warn("failed to save cache", "error", err)
		}
	}

	a.logger.Info("dataset ready",
		"records", len(records),
		"duration", time.Since(start),
	)
	return nil
}

// Dataset returns the current immutable dataset.
func (a *Analytics) Dataset() *Dataset {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.dataset
}

func (a *Analytics) snapshot(ctx context.Context, operation string) (*Dataset, func()) {
	ctx, span := observability.StartSpan(ctx, operation)
	ds := a.Dataset()
	span.SetTag("records", strconv.Itoa(ds.Len()))
	return ds, func() { span.End(ctx, a.logger) }
}

func (a *Analytics) MonthlyRevenue(ctx context.Context, start, end time.Time) []models.Series {
	ds, done := a.snapshot(ctx, "aggregate.monthly_revenue")
	defer done()
	return MonthlyRevenueByChannel(ds, start, end)
}

func (a *Analytics) CountryRevenue(ctx context.Context, start, end time.Time) models.Series {
	ds, done := a.snapshot(ctx, "aggregate.country_revenue")
	defer done()
	return RevenueByCountry(ds, start, end)
}

func (a *Analytics) SubcategoryRevenue(ctx context.Context, category string) []models.Series {
	ds, done := a.snapshot(ctx, "aggregate.subcategory_revenue")
	defer done()
	return SubcategoryRevenueByGender(ds, category)
}

func (a *Analytics) WeekdaySales(ctx context.Context, channel string) models.Series {
	ds, done := a.snapshot(ctx, "aggregate.weekday_sales")
	defer done()
	return SalesByWeekday(ds, channel)
}

func (a *Analytics) CustomerGenders(ctx context.Context, channel string) models.Series {
	ds, done := a.snapshot(ctx, "aggregate.customer_genders")
	defer done()
	return CustomersByGender(ds, channel)
}

func (a *Analytics) ChannelSplit(ctx context.Context, day string) models.Series {
	ds, done := a.snapshot(ctx, "aggregate.channel_split")
	defer done()
	return ChannelSplitForWeekday(ds, day)
}

func (a *Analytics) Options() models.DatasetOptions {
	return a.Dataset().Options()
}

func (a *Analytics) ExportWorkbook(ctx context.Context, w io.Writer, p ExportParams) error {
	ds, done := a.snapshot(ctx, "export.workbook")
	defer done()
	return WriteWorkbook(w, ds, p)
}

// Stats is served on the admin endpoint.
func (a *Analytics) Stats() map[string]any {
	a.mu.RLock()
	ds, loadedAt, source := a.dataset, a.loadedAt, a.source
	a.mu.RUnlock()

	opts := ds.Options()
	return map[string]any{
		"record_count": ds.Len(),
		"loaded_at":    loadedAt,
		"source":       source,
		"channels":     len(opts.Channels),
		"categories":   len(opts.Categories),
		"min_date":     opts.MinDate,
		"max_date":     opts.MaxDate,
	}
}
