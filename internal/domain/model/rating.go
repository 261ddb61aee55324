package model

import "time"

// RatingChange is one contest entry of a user's rating history.
type RatingChange struct {
	ContestID   int       `json:"contest_id"`
	ContestName string    `json:"contest_name"`
	Rank        int       `json:"rank"`
	OldRating   int       `json:"old_rating"`
	NewRating   int       `json:"new_rating"`
	UpdatedAt   time.Time `json:"updated_at"`
}
