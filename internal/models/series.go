package models

import "time"

type Point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Text  string  `json:"text,omitempty"`
}

type Series struct {
	Name   string  `json:"name"`
	Points []Point `json:"points"`
}

// DatasetOptions feeds the dashboard's filter controls.
type DatasetOptions struct {
	Channels   []string  `json:"channels"`
	Categories []string  `json:"categories"`
	Weekdays   []string  `json:"weekdays"`
	MinDate    time.Time `json:"min_date"`
	MaxDate    time.Time `json:"max_date"`
}
