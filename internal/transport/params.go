package transport

import (
	"net/http"
	"time"
)

const dateLayout = "2006-01-02"

// parseDate parses a calendar date in YYYY-MM-DD form
func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

// parseDateRange reads the optional from/to query parameters. A missing
// parameter comes back nil, which downstream means "unbounded".
func parseDateRange(r *http.Request) (from, to *time.Time, err error) {
	if s := r.URL.Query().Get("from"); s != "" {
		t, err := parseDate(s)
		if err != nil {
			return nil, nil, err
		}
		from = &t
	}
	if s := r.URL.Query().Get("to"); s != "" {
		t, err := parseDate(s)
		if err != nil {
			return nil, nil, err
		}
		to = &t
	}
	return from, to, nil
}
