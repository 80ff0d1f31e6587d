package services

import (
	"cmp"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"retail-dashboard/internal/models"
)

const monthLayout = "2006-01"

var weekdayOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// WeekdayNames lists the day axis, Monday first.
func WeekdayNames() []string {
	names := make([]string, len(weekdayOrder))
	for i, d := range weekdayOrder {
		names[i] = d.String()
	}
	return names
}

// ParseWeekday matches an English day name, ignoring case.
func ParseWeekday(name string) (time.Weekday, bool) {
	for _, d := range weekdayOrder {
		if strings.EqualFold(d.String(), strings.TrimSpace(name)) {
			return d, true
		}
	}
	return 0, false
}

// MonthlyRevenueByChannel sums positive amounts per (month, channel) within
// the inclusive date range. There is one series per channel, sorted by name;
// a month with no revenue for a channel is absent from that channel's series.
func MonthlyRevenueByChannel(ds *Dataset, start, end time.Time) []models.Series {
	start, end = civilDate(start), civilDate(end)

	sums := make(map[string]map[string]decimal.Decimal)
	for _, r := range ds.records {
		if !r.PositiveAmount() || r.StoreType == "" || !inRange(r.Date, start, end) {
			continue
		}
		months, ok := sums[r.StoreType]
		if !ok {
			months = make(map[string]decimal.Decimal)
			sums[r.StoreType] = months
		}
		month := r.Date.Format(monthLayout)
		months[month] = months[month].Add(r.TotalAmount.Decimal)
	}

	series := make([]models.Series, 0, len(sums))
	for _, channel := range slices.Sorted(maps.Keys(sums)) {
		months := sums[channel]
		points := make([]models.Point, 0, len(months))
		for _, month := range slices.Sorted(maps.Keys(months)) {
			total := months[month].RoundBank(2)
			points = append(points, models.Point{
				Label: month,
				Value: total.InexactFloat64(),
				Text:  thousands(total),
			})
		}
		series = append(series, models.Series{Name: channel, Points: points})
	}
	return series
}

// RevenueByCountry sums positive amounts per country within the inclusive
// date range. Countries without revenue are absent, not zero.
func RevenueByCountry(ds *Dataset, start, end time.Time) models.Series {
	start, end = civilDate(start), civilDate(end)

	sums := make(map[string]decimal.Decimal)
	for _, r := range ds.records {
		if !r.PositiveAmount() || r.Country == "" || !inRange(r.Date, start, end) {
			continue
		}
		sums[r.Country] = sums[r.Country].Add(r.TotalAmount.Decimal)
	}

	return models.Series{Name: "Sales", Points: sortedPoints(sums)}
}

// SubcategoryRevenueByGender pivots positive revenue of one category into
// subcategory rows and F/M columns. Rows are ordered by ascending F+M total;
// a missing gender cell counts as zero. The result is empty when the
// category has no revenue.
func SubcategoryRevenueByGender(ds *Dataset, category string) []models.Series {
	type cells struct{ female, male decimal.Decimal }

	pivot := make(map[string]*cells)
	for _, r := range ds.records {
		if !r.PositiveAmount() || r.Category != category || r.Subcategory == "" {
			continue
		}
		if r.Gender != "F" && r.Gender != "M" {
			continue
		}
		c, ok := pivot[r.Subcategory]
		if !ok {
			c = &cells{}
			pivot[r.Subcategory] = c
		}
		if r.Gender == "F" {
			c.female = c.female.Add(r.TotalAmount.Decimal)
		} else {
			c.male = c.male.Add(r.TotalAmount.Decimal)
		}
	}

	if len(pivot) == 0 {
		return []models.Series{}
	}

	rows := slices.Collect(maps.Keys(pivot))
	slices.SortFunc(rows, func(a, b string) int {
		ta := pivot[a].female.Add(pivot[a].male)
		tb := pivot[b].female.Add(pivot[b].male)
		if c := ta.Cmp(tb); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})

	female := models.Series{Name: "F", Points: make([]models.Point, 0, len(rows))}
	male := models.Series{Name: "M", Points: make([]models.Point, 0, len(rows))}
	for _, sub := range rows {
		c := pivot[sub]
		female.Points = append(female.Points, models.Point{Label: sub, Value: round2(c.female)})
		male.Points = append(male.Points, models.Point{Label: sub, Value: round2(c.male)})
	}
	return []models.Series{female, male}
}

// SalesByWeekday sums every amount of one channel, refunds included, on a
// fixed Monday to Sunday axis with zeros for days without sales. A channel
// with no transactions yields no points.
func SalesByWeekday(ds *Dataset, channel string) models.Series {
	series := models.Series{Name: channel, Points: []models.Point{}}

	var sums [7]decimal.Decimal
	found := false
	for _, r := range ds.records {
		if r.StoreType != channel {
			continue
		}
		found = true
		if r.TotalAmount.Valid {
			sums[r.Date.Weekday()] = sums[r.Date.Weekday()].Add(r.TotalAmount.Decimal)
		}
	}
	if !found {
		return series
	}

	for _, d := range weekdayOrder {
		series.Points = append(series.Points, models.Point{Label: d.String(), Value: round2(sums[d])})
	}
	return series
}

// CustomersByGender counts distinct customers of one channel per gender.
func CustomersByGender(ds *Dataset, channel string) models.Series {
	customers := make(map[string]map[string]struct{})
	for _, r := range ds.records {
		if r.StoreType != channel || r.Gender == "" || r.CustomerID == "" {
			continue
		}
		ids, ok := customers[r.Gender]
		if !ok {
			ids = make(map[string]struct{})
			customers[r.Gender] = ids
		}
		ids[r.CustomerID] = struct{}{}
	}

	points := make([]models.Point, 0, len(customers))
	for _, gender := range slices.Sorted(maps.Keys(customers)) {
		points = append(points, models.Point{Label: gender, Value: float64(len(customers[gender]))})
	}
	return models.Series{Name: channel, Points: points}
}

// ChannelSplitForWeekday sums every amount, refunds included, per channel
// for transactions on the given day. An unrecognised day yields no points.
func ChannelSplitForWeekday(ds *Dataset, day string) models.Series {
	weekday, ok := ParseWeekday(day)
	if !ok {
		return models.Series{Name: day, Points: []models.Point{}}
	}

	sums := make(map[string]decimal.Decimal)
	for _, r := range ds.records {
		if r.Date.Weekday() != weekday || r.StoreType == "" || !r.TotalAmount.Valid {
			continue
		}
		sums[r.StoreType] = sums[r.StoreType].Add(r.TotalAmount.Decimal)
	}

	return models.Series{Name: weekday.String(), Points: sortedPoints(sums)}
}

func sortedPoints(sums map[string]decimal.Decimal) []models.Point {
	points := make([]models.Point, 0, len(sums))
	for _, label := range slices.Sorted(maps.Keys(sums)) {
		points = append(points, models.Point{Label: label, Value: round2(sums[label])})
	}
	return points
}

func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func inRange(d, start, end time.Time) bool {
	return !d.Before(start) && !d.After(end)
}

func round2(d decimal.Decimal) float64 {
	return d.RoundBank(2).InexactFloat64()
}

// thousands renders an amount as hover text, e.g. 12345.6 -> "12.35k".
func thousands(d decimal.Decimal) string {
	return d.Div(decimal.NewFromInt(1000)).StringFixedBank(2) + "k"
}
