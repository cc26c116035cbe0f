package scheduler

import (
	"strings"
	"time"
)

// DefaultPeriod applies when a workflow has no usable interval or schedule.
const DefaultPeriod = 90 * 24 * time.Hour

const day = 24 * time.Hour

// Month and year tokens use fixed day counts.
var intervals = map[string]time.Duration{
	"P1D":  day,
	"P1W":  7 * day,
	"P2W":  14 * day,
	"P1M":  30 * day,
	"P3M":  90 * day,
	"P6M":  180 * day,
	"P1Y":  365 * day,
	"PT1M": time.Minute,
	"PT5M": 5 * time.Minute,
	"PT1H": time.Hour,
}

var descriptions = map[string]string{
	"P1D":  "daily",
	"P1W":  "weekly",
	"P2W":  "biweekly",
	"P1M":  "monthly",
	"P3M":  "quarterly",
	"P6M":  "semiannual",
	"P1Y":  "yearly",
	"PT1M": "every minute",
	"PT5M": "every 5 minutes",
	"PT1H": "every hour",
}

// ParseInterval looks a token up in the fixed interval table. Unknown tokens report false
// together with DefaultPeriod.
func ParseInterval(token string) (time.Duration, bool) {
	d, ok := intervals[normalizeToken(token)]
	if !ok {
		return DefaultPeriod, false
	}
	return d, true
}

// DescribeInterval translates a token into the phrase used in replies.
func DescribeInterval(token string) (string, bool) {
	s, ok := descriptions[normalizeToken(token)]
	return s, ok
}

// IntervalInfo is one row of the interval vocabulary.
type IntervalInfo struct {
	Token       string        `json:"token"`
	Description string        `json:"description"`
	Duration    time.Duration `json:"durationNs"`
}

// Intervals lists the vocabulary ordered from shortest to longest period.
func Intervals() []IntervalInfo {
	order := []string{"PT1M", "PT5M", "PT1H", "P1D", "P1W", "P2W", "P1M", "P3M", "P6M", "P1Y"}
	out := make([]IntervalInfo, 0, len(order))
	for _, tok := range order {
		out = append(out, IntervalInfo{Token: tok, Description: descriptions[tok], Duration: intervals[tok]})
	}
	return out
}

func normalizeToken(token string) string {
	return strings.ToUpper(strings.TrimSpace(token))
}
