package handlers

import (
	"fmt"
	"time"

	"retail-dashboard/internal/errors"
	"retail-dashboard/internal/models"
)

const dateLayout = "2006-01-02"

// selection is the full set of dashboard controls. Empty fields fall back to
// the defaults the dashboard page starts with.
type selection struct {
	Start    string `json:"start"`
	End      string `json:"end"`
	Category string `json:"category"`
	Channel  string `json:"channel"`
	Day      string `json:"day"`
}

func (s selection) dateRange(opts models.DatasetOptions) (time.Time, time.Time, error) {
	start, end := opts.MinDate, opts.MaxDate

	if s.Start != "" {
		d, err := time.Parse(dateLayout, s.Start)
		if err != nil {
			return time.Time{}, time.Time{}, errors.InvalidParam("start", err)
		}
		start = d
	}
	if s.End != "" {
		d, err := time.Parse(dateLayout, s.End)
		if err != nil {
			return time.Time{}, time.Time{}, errors.InvalidParam("end", err)
		}
		end = d
	}

	if end.Before(start) {
		return time.Time{}, time.Time{}, errors.InvalidParam("end",
			fmt.Errorf("end %s is before start %s", end.Format(dateLayout), start.Format(dateLayout)))
	}
	return start, end, nil
}

func (s selection) category(opts models.DatasetOptions) string {
	if s.Category == "" && len(opts.Categories) > 0 {
		return opts.Categories[0]
	}
	return s.Category
}

func (s selection) channel(opts models.DatasetOptions) string {
	if s.Channel == "" && len(opts.Channels) > 0 {
		return opts.Channels[0]
	}
	return s.Channel
}

func (s selection) day() string {
	if s.Day == "" {
		return time.Monday.String()
	}
	return s.Day
}
