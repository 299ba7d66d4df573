package domain

import (
	"time"
)

// PostVersion is an immutable snapshot of a post's title and content.
// Versions start at 1 and increase by exactly one per content-changing
// update; they are only ever removed as a cascade of post deletion.
type PostVersion struct {
	ID        string
	PostID    string
	Title     string
	Content   string
	Version   int
	CreatedAt time.Time
}
