package services

import (
	"slices"
	"time"

	"retail-dashboard/internal/models"
)

// Dataset is the merged table. It is never modified after construction, so
// one instance can serve any number of concurrent readers.
type Dataset struct {
	records []models.MergedRecord
	options models.DatasetOptions
}

func NewDataset(records []models.MergedRecord) *Dataset {
	ds := &Dataset{records: slices.Clone(records)}
	ds.options = ds.buildOptions()
	return ds
}

func (d *Dataset) Len() int {
	return len(d.records)
}

// Records returns a copy of the merged table.
func (d *Dataset) Records() []models.MergedRecord {
	return slices.Clone(d.records)
}

func (d *Dataset) Options() models.DatasetOptions {
	opts := d.options
	opts.Channels = slices.Clone(opts.Channels)
	opts.Categories = slices.Clone(opts.Categories)
	opts.Weekdays = slices.Clone(opts.Weekdays)
	return opts
}

// DateBounds returns the first and last transaction dates; both are zero for
// an empty dataset.
func (d *Dataset) DateBounds() (time.Time, time.Time) {
	return d.options.MinDate, d.options.MaxDate
}

// buildOptions lists channels and categories in order of first appearance.
func (d *Dataset) buildOptions() models.DatasetOptions {
	opts := models.DatasetOptions{
		Channels:   []string{},
		Categories: []string{},
		Weekdays:   WeekdayNames(),
	}

	seenChannel := make(map[string]bool)
	seenCategory := make(map[string]bool)

	for i, r := range d.records {
		if r.StoreType != "" && !seenChannel[r.StoreType] {
			seenChannel[r.StoreType] = true
			opts.Channels = append(opts.Channels, r.StoreType)
		}
		if r.Category != "" && !seenCategory[r.Category] {
			seenCategory[r.Category] = true
			opts.Categories = append(opts.Categories, r.Category)
		}
		if i == 0 || r.Date.Before(opts.MinDate) {
			opts.MinDate = r.Date
		}
		if i == 0 || r.Date.After(opts.MaxDate) {
			opts.MaxDate = r.Date
		}
	}
	return opts
}
