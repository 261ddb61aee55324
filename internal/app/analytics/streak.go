package analytics

import (
	"sort"
	"time"

	"cf_buddy/internal/domain/model"
)

// Day is a calendar day counted from 1970-01-01. Differences between Days are
// whole calendar days regardless of DST.
type Day int64

func DayOf(t time.Time, loc *time.Location) Day {
	y, m, d := t.In(loc).Date()
	return Day(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}

func (d Day) String() string {
	return time.Unix(int64(d)*86400, 0).UTC().Format(model.DateLayout)
}

// SolveDays returns the distinct days with at least one accepted submission, ascending.
func SolveDays(subs []model.Submission, loc *time.Location) []Day {
	seen := make(map[Day]struct{})
	for _, s := range subs {
		if s.Accepted() {
			seen[DayOf(s.CreatedAt, loc)] = struct{}{}
		}
	}
	days := make([]Day, 0, len(seen))
	for d := range seen {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	return days
}

// MaxStreak is the longest run of consecutive days in an ascending,
// duplicate-free list. A gap of more than one day breaks a run.
func MaxStreak(days []Day) int {
	best, run := 0, 0
	for i, d := range days {
		if i > 0 && d-days[i-1] == 1 {
			run++
		} else {
			run = 1
		}
		best = max(best, run)
	}
	return best
}

// CurrentStreak is the run ending today or yesterday; zero otherwise.
func CurrentStreak(days []Day, today Day) int {
	if len(days) == 0 {
		return 0
	}
	last := days[len(days)-1]
	if last != today && last != today-1 {
		return 0
	}
	run := 1
	for i := len(days) - 2; i >= 0 && days[i+1]-days[i] == 1; i-- {
		run++
	}
	return run
}

func since(days []Day, from Day) []Day {
	i := sort.Search(len(days), func(i int) bool { return days[i] >= from })
	return days[i:]
}
