// Package calendar lays out a month as Sunday-first weeks and attaches the
// reservations that fall inside it.
package calendar

import (
	"fmt"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/Astemirdum/booking-service/reservation/internal/model"
)

var ErrInvalidMonth = errors.New("invalid year or month")

func check(year, month int) error {
	if year < 1 || year > 9999 || month < 1 || month > 12 {
		return errors.Wrapf(ErrInvalidMonth, "%d-%d", year, month)
	}
	return nil
}

// Weeks returns the rows of the month grid. Cells outside the month are 0.
func Weeks(year, month int) ([][7]int, error) {
	if err := check(year, month); err != nil {
		return nil, err
	}
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	days := first.AddDate(0, 1, -1).Day()

	var (
		weeks [][7]int
		week  [7]int
	)
	col := int(first.Weekday())
	for day := 1; day <= days; day++ {
		week[col] = day
		col++
		if col == 7 {
			weeks = append(weeks, week)
			week, col = [7]int{}, 0
		}
	}
	if col > 0 {
		weeks = append(weeks, week)
	}
	return weeks, nil
}

func Adjacent(year, month int) (prev, next model.YearMonth) {
	prev = model.YearMonth{Year: year, Month: month - 1}
	if prev.Month < 1 {
		prev = model.YearMonth{Year: year - 1, Month: 12}
	}
	next = model.YearMonth{Year: year, Month: month + 1}
	if next.Month > 12 {
		next = model.YearMonth{Year: year + 1, Month: 1}
	}
	return prev, next
}

// Bounds returns the first and last day of the month in model.DateLayout.
func Bounds(year, month int) (from, to string, err error) {
	if err = check(year, month); err != nil {
		return "", "", err
	}
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return first.Format(model.DateLayout), first.AddDate(0, 1, -1).Format(model.DateLayout), nil
}

func Group(reservations []model.Reservation) map[string][]model.CalendarEntry {
	grouped := make(map[string][]model.CalendarEntry)
	for _, r := range reservations {
		grouped[r.Date] = append(grouped[r.Date], model.CalendarEntry{
			ID:   r.ID,
			Time: r.Time,
			Name: r.Name,
		})
	}
	for _, entries := range grouped {
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Time < entries[j].Time
		})
	}
	return grouped
}

func Build(year, month int, reservations []model.Reservation) (model.Calendar, error) {
	weeks, err := Weeks(year, month)
	if err != nil {
		return model.Calendar{}, err
	}
	prefix := fmt.Sprintf("%04d-%02d-", year, month)
	inMonth := make([]model.Reservation, 0, len(reservations))
	for _, r := range reservations {
		if len(r.Date) == len(prefix)+2 && r.Date[:len(prefix)] == prefix {
			inMonth = append(inMonth, r)
		}
	}
	prev, next := Adjacent(year, month)
	return model.Calendar{
		Year:         year,
		Month:        month,
		Weeks:        weeks,
		Reservations: Group(inMonth),
		Prev:         prev,
		Next:         next,
	}, nil
}
