package store

import "time"

type User struct {
	ID             int64     `json:"id"`
	ExternalUserID string    `json:"external_user_id"`
	PasswordHash   string    `json:"-"` // Do not expose this in JSON responses
	CreatedAt      time.Time `json:"created_at"`
}

// Order controls the direction of entry listings. History reads newest first,
// insights read oldest first to chart a trend.
type Order string

const (
	OrderNewestFirst Order = "desc"
	OrderOldestFirst Order = "asc"
)

// ListFilter narrows an entry listing. Zero values mean no filtering.
type ListFilter struct {
	Order  Order
	Mood   string // exact mood label
	Search string // substring over transcript and response
}
