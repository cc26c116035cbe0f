package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextCronRun(t *testing.T) {
	// Wednesday.
	base := time.Date(2025, time.January, 15, 10, 30, 0, 0, time.UTC)

	cases := []struct {
		name string
		expr string
		from time.Time
		now  time.Time
		want time.Time
	}{
		{
			name: "daily at a fixed time later today",
			expr: "0 14 * * *",
			from: base, now: base,
			want: time.Date(2025, time.January, 15, 14, 0, 0, 0, time.UTC),
		},
		{
			name: "daily time already passed moves to tomorrow",
			expr: "0 9 * * *",
			from: base, now: base,
			want: time.Date(2025, time.January, 16, 9, 0, 0, 0, time.UTC),
		},
		{
			name: "every three months on the first",
			expr: "0 9 1 */3 *",
			from: base, now: base,
			want: time.Date(2025, time.April, 1, 9, 0, 0, 0, time.UTC),
		},
		{
			name: "month step repeats until after now",
			expr: "0 9 1 */3 *",
			from: base, now: time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC),
			want: time.Date(2025, time.July, 1, 9, 0, 0, 0, time.UTC),
		},
		{
			name: "weekday literal lands on the next monday",
			expr: "30 8 * * 1",
			from: base, now: base,
			want: time.Date(2025, time.January, 20, 8, 30, 0, 0, time.UTC),
		},
		{
			name: "pinned day of month this month",
			expr: "0 12 20 * *",
			from: base, now: base,
			want: time.Date(2025, time.January, 20, 12, 0, 0, 0, time.UTC),
		},
		{
			name: "pinned day of month already passed",
			expr: "0 12 10 * *",
			from: base, now: base,
			want: time.Date(2025, time.February, 10, 12, 0, 0, 0, time.UTC),
		},
		{
			name: "pinned date passed this year",
			expr: "0 9 1 1 *",
			from: base, now: base,
			want: time.Date(2026, time.January, 1, 9, 0, 0, 0, time.UTC),
		},
		{
			name: "day 30 skips february",
			expr: "0 9 30 * *",
			from: time.Date(2025, time.February, 1, 8, 0, 0, 0, time.UTC),
			now:  time.Date(2025, time.February, 1, 8, 0, 0, 0, time.UTC),
			want: time.Date(2025, time.March, 30, 9, 0, 0, 0, time.UTC),
		},
		{
			name: "day 31 skips a 30 day month",
			expr: "0 9 31 * *",
			from: time.Date(2025, time.April, 1, 8, 0, 0, 0, time.UTC),
			now:  time.Date(2025, time.April, 1, 8, 0, 0, 0, time.UTC),
			want: time.Date(2025, time.May, 31, 9, 0, 0, 0, time.UTC),
		},
		{
			name: "day 31 after a run steps over april",
			expr: "0 9 31 * *",
			from: time.Date(2025, time.March, 31, 9, 0, 0, 0, time.UTC),
			now:  time.Date(2025, time.March, 31, 9, 0, 0, 0, time.UTC),
			want: time.Date(2025, time.May, 31, 9, 0, 0, 0, time.UTC),
		},
		{
			name: "leap day waits for a leap year",
			expr: "0 9 29 2 *",
			from: time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
			now:  time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
			want: time.Date(2028, time.February, 29, 9, 0, 0, 0, time.UTC),
		},
		{
			name: "unsupported forms are unconstrained",
			expr: "*/15 9 * * *",
			from: base, now: base,
			want: time.Date(2025, time.January, 16, 9, 30, 0, 0, time.UTC),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NextCronRun(tc.expr, tc.from, tc.now)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.True(t, got.After(tc.now))
		})
	}
}

func TestNextCronRun_Malformed(t *testing.T) {
	now := time.Date(2025, time.January, 15, 10, 30, 0, 0, time.UTC)
	for _, expr := range []string{"", "0 9 * *", "0 9 * * * *", "61 9 * * *", "0 9 * */0 *"} {
		_, err := NextCronRun(expr, now, now)
		assert.Error(t, err, expr)
	}
}
