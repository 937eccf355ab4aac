package http

import (
	"net/http"
	"strconv"
	"time"

	"guidecal/pkg/config"
	apperrors "guidecal/pkg/errors"
)

func ExtractLimitOffset(r *http.Request) (int, int64, error) {
	query := r.URL.Query()

	limit := 0
	if s := query.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid limit parameter: " + s)
		}
		limit = v
	}

	var offset int64 = 0
	if s := query.Get("offset"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid offset parameter: " + s)
		}
		offset = v
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	return limit, offset, nil
}

// ExtractDate parses a query or body date in 2006-01-02 form into a UTC
// midnight instant.
func ExtractDate(value, field string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, apperrors.InvalidInput("invalid " + field + ", must be YYYY-MM-DD")
	}
	return t.UTC(), nil
}

// ExtractTimeRange parses optional from/to query parameters. Either RFC3339
// instants or bare dates are accepted; a bare date means midnight UTC.
func ExtractTimeRange(r *http.Request) (from, to *time.Time, err error) {
	query := r.URL.Query()

	if s := query.Get("from"); s != "" {
		t, parseErr := parseInstant(s)
		if parseErr != nil {
			return nil, nil, apperrors.InvalidInput("invalid from parameter, must be RFC3339 or YYYY-MM-DD")
		}
		from = &t
	}
	if s := query.Get("to"); s != "" {
		t, parseErr := parseInstant(s)
		if parseErr != nil {
			return nil, nil, apperrors.InvalidInput("invalid to parameter, must be RFC3339 or YYYY-MM-DD")
		}
		to = &t
	}

	if from != nil && to != nil && !from.Before(*to) {
		return nil, nil, apperrors.InvalidInput("from must be before to")
	}

	return from, to, nil
}

func parseInstant(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
