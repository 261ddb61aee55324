package analytics

import (
	"sort"
	"time"

	"cf_buddy/internal/domain/model"
)

type ActivityPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
	Level int    `json:"level"`
}

type RatingBucket struct {
	Rating int `json:"rating"`
	Count  int `json:"count"`
}

type TagCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type Summary struct {
	Handle                 string          `json:"handle"`
	RatingHistory          []RatingPoint   `json:"rating_history"`
	RatingHistoryAvailable bool            `json:"rating_history_available"`
	ActivityHeatmap        []ActivityPoint `json:"activity_heatmap"`
	SolvedAllTime          int             `json:"solved_all_time"`
	SolvedLastYear         int             `json:"solved_last_year"`
	SolvedLastMonth        int             `json:"solved_last_month"`
	MaxStreakAllTime       int             `json:"max_streak_all_time"`
	MaxStreakLastYear      int             `json:"max_streak_last_year"`
	CurrentStreak          int             `json:"current_streak"`
	RatingDistribution     []RatingBucket  `json:"rating_distribution"`
	TagDistribution        []TagCount      `json:"tag_distribution"`
}

// Summarize computes the submission-derived part of a Summary. Days are
// evaluated in loc.
func Summarize(subs []model.Submission, now time.Time, loc *time.Location) Summary {
	today := DayOf(now, loc)
	yearAgo := DayOf(now.AddDate(-1, 0, 0), loc)
	monthAgo := DayOf(now.AddDate(0, -1, 0), loc)

	days := SolveDays(subs, loc)
	s := Summary{
		ActivityHeatmap:   heatmap(subs, days, today, yearAgo, loc),
		MaxStreakAllTime:  MaxStreak(days),
		MaxStreakLastYear: MaxStreak(since(days, yearAgo)),
		CurrentStreak:     CurrentStreak(days, today),
	}

	solved := firstSolves(subs)
	ratings := make(map[int]int)
	tags := make(map[string]int)
	for _, fs := range solved {
		s.SolvedAllTime++
		d := DayOf(fs.at, loc)
		if d >= yearAgo {
			s.SolvedLastYear++
		}
		if d >= monthAgo {
			s.SolvedLastMonth++
		}
		if fs.problem.Rating != nil {
			ratings[*fs.problem.Rating]++
		}
		for _, t := range fs.problem.Tags {
			tags[t]++
		}
	}

	s.RatingDistribution = make([]RatingBucket, 0, len(ratings))
	for r, c := range ratings {
		s.RatingDistribution = append(s.RatingDistribution, RatingBucket{Rating: r, Count: c})
	}
	sort.Slice(s.RatingDistribution, func(i, j int) bool {
		return s.RatingDistribution[i].Rating < s.RatingDistribution[j].Rating
	})

	s.TagDistribution = make([]TagCount, 0, len(tags))
	for name, c := range tags {
		s.TagDistribution = append(s.TagDistribution, TagCount{Name: name, Count: c})
	}
	sort.Slice(s.TagDistribution, func(i, j int) bool {
		a, b := s.TagDistribution[i], s.TagDistribution[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Name < b.Name
	})
	return s
}

type firstSolve struct {
	problem model.Problem
	at      time.Time
}

// firstSolves keeps the earliest accepted submission of every problem.
func firstSolves(subs []model.Submission) map[model.ProblemKey]firstSolve {
	out := make(map[model.ProblemKey]firstSolve)
	for _, s := range subs {
		if !s.Accepted() || s.Problem.ContestID == 0 {
			continue
		}
		key := s.Problem.Key()
		if prev, ok := out[key]; !ok || s.CreatedAt.Before(prev.at) {
			out[key] = firstSolve{problem: s.Problem, at: s.CreatedAt}
		}
	}
	return out
}

// heatmap covers every day from the later of the first solve and one year
// ago through the later of the last solve and today.
func heatmap(subs []model.Submission, days []Day, today, yearAgo Day, loc *time.Location) []ActivityPoint {
	if len(days) == 0 {
		return []ActivityPoint{}
	}
	counts := make(map[Day]int)
	for _, s := range subs {
		if s.Accepted() {
			counts[DayOf(s.CreatedAt, loc)]++
		}
	}
	start, end := max(days[0], yearAgo), max(days[len(days)-1], today)

	out := make([]ActivityPoint, 0, end-start+1)
	for d := start; d <= end; d++ {
		c := counts[d]
		out = append(out, ActivityPoint{Date: d.String(), Count: c, Level: activityLevel(c)})
	}
	return out
}

func activityLevel(count int) int {
	switch {
	case count >= 10:
		return 4
	case count >= 6:
		return 3
	case count >= 3:
		return 2
	case count > 0:
		return 1
	}
	return 0
}
