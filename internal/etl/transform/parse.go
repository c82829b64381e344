// Package transform maps raw extracted records to staging records,
// marking each one valid or invalid. Malformed rows never abort a batch;
// they come out flagged with a validation reason instead.
package transform

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Accepted order date layouts, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02/01/2006",
}

func parseDate(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}

func parseDecimal(value string) *decimal.Decimal {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return nil
	}
	return &d
}

func parseInt(value string) *int {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return nil
	}
	return &n
}
