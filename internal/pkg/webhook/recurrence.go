package webhook

import (
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

const (
	PeriodMonth = "month"
	PeriodYear  = "year"
)

// daysPerPeriod uses the 30-day-month billing convention.
func daysPerPeriod(period string) int {
	switch period {
	case PeriodMonth:
		return 30
	case PeriodYear:
		return 365
	default:
		return 0
	}
}

// Recurrence is the normalized billing cadence of an offer
// (e.g. quarterly = month x 3). The zero value means "unrecognized".
type Recurrence struct {
	Period     string
	Multiplier int
}

// ParseOffer normalizes a free-form offer value into a Recurrence. The
// input may be a plain token ("trimestral"), a JSON-looking string that is
// opportunistically parsed into an object, or an already-decoded object
// with interval/count fields. Parse failures fall back to treating the
// original string as a token; anything unrecognized yields the zero value.
func ParseOffer(raw any) Recurrence {
	switch v := raw.(type) {
	case string:
		s := strings.TrimSpace(v)
		if strings.HasPrefix(s, "{") {
			var obj map[string]any
			if err := json.Unmarshal([]byte(s), &obj); err == nil {
				return recurrenceFromObject(obj)
			}
		}
		return recurrenceFromToken(s)
	case map[string]any:
		return recurrenceFromObject(v)
	default:
		return Recurrence{}
	}
}

func recurrenceFromToken(token string) Recurrence {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "mensal", "monthly", "month":
		return Recurrence{Period: PeriodMonth, Multiplier: 1}
	case "bimestral":
		return Recurrence{Period: PeriodMonth, Multiplier: 2}
	case "trimestral", "quarterly":
		return Recurrence{Period: PeriodMonth, Multiplier: 3}
	case "semestral":
		return Recurrence{Period: PeriodMonth, Multiplier: 6}
	case "anual", "annual", "yearly", "year":
		return Recurrence{Period: PeriodYear, Multiplier: 1}
	default:
		return Recurrence{}
	}
}

func recurrenceFromObject(obj map[string]any) Recurrence {
	interval := strings.ToLower(strings.TrimSpace(objectString(obj, "interval", "period")))
	count := objectInt(obj, 1, "count", "interval_count", "multiplier")
	if count < 1 {
		count = 1
	}

	switch interval {
	case "month", "months", "monthly", "mensal":
		return Recurrence{Period: PeriodMonth, Multiplier: count}
	case "year", "years", "yearly", "annual", "anual":
		return Recurrence{Period: PeriodYear, Multiplier: count}
	default:
		return Recurrence{}
	}
}

func objectString(obj map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := obj[k]; ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
	}
	return ""
}

func objectInt(obj map[string]any, def int, keys ...string) int {
	for _, k := range keys {
		v, ok := obj[k]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		case string:
			if parsed, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
				return parsed
			}
		}
	}
	return def
}

// DaysFor converts a recurrence into a day count for due-date arithmetic.
// Unrecognized periods and non-positive totals yield 0, which callers
// treat as "no due date".
func DaysFor(rec Recurrence, quantity int) int {
	perPeriod := daysPerPeriod(rec.Period)
	if perPeriod == 0 {
		return 0
	}
	days := perPeriod * rec.Multiplier * quantity
	if days <= 0 {
		return 0
	}
	return days
}

// DurationMonths buckets a recurrence into the plan duration variants
// {1, 3, 6, 12}. Year periods always map to 12; unrecognized periods
// return 0 so the caller can fall back to the base plan.
func DurationMonths(rec Recurrence) int {
	switch rec.Period {
	case PeriodYear:
		return 12
	case PeriodMonth:
		switch {
		case rec.Multiplier <= 1:
			return 1
		case rec.Multiplier <= 3:
			return 3
		case rec.Multiplier <= 6:
			return 6
		default:
			return 12
		}
	default:
		return 0
	}
}
