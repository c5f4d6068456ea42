package handler

import (
	"errors"
	"net/http"
	"time"
)

const dateLayout = "2006-01-02"

func parseDateQuery(r *http.Request, key string) (*time.Time, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// resolvePeriod turns the canned report periods into a concrete date range.
// Explicit startDate/endDate win over period.
func resolvePeriod(r *http.Request) (*time.Time, *time.Time, error) {
	start, err := parseDateQuery(r, "startDate")
	if err != nil {
		return nil, nil, errors.New("invalid startDate")
	}
	end, err := parseDateQuery(r, "endDate")
	if err != nil {
		return nil, nil, errors.New("invalid endDate")
	}
	if start != nil || end != nil {
		if start != nil && end != nil && start.After(*end) {
			return nil, nil, errors.New("startDate must be before endDate")
		}
		if end != nil {
			e := end.Add(24*time.Hour - time.Nanosecond)
			end = &e
		}
		return start, end, nil
	}

	now := time.Now()
	var from time.Time
	switch r.URL.Query().Get("period") {
	case "":
		return nil, nil, nil
	case "daily":
		from = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	case "weekly":
		from = now.AddDate(0, 0, -7)
	case "monthly":
		from = now.AddDate(0, -1, 0)
	case "yearly":
		from = now.AddDate(-1, 0, 0)
	default:
		return nil, nil, errors.New("invalid period (use daily, weekly, monthly or yearly)")
	}
	return &from, &now, nil
}
