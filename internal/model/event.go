package model

import "time"

const (
	EventPostCreated    = "post.created"
	EventPostUpdated    = "post.updated"
	EventPostDeleted    = "post.deleted"
	EventProfileUpdated = "profile.updated"
)

// ContentEvent is published after a committed change to a post or profile.
type ContentEvent struct {
	Type             string    `json:"type"`
	PostID           uint      `json:"post_id,omitempty"`
	UserID           uint      `json:"user_id"`
	ImageURL         string    `json:"image_url,omitempty"`
	PreviousImageURL string    `json:"previous_image_url,omitempty"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// OrphanedImage returns the image reference this event leaves unreferenced.
func (e ContentEvent) OrphanedImage() string {
	switch e.Type {
	case EventPostDeleted:
		return e.ImageURL
	case EventPostUpdated, EventProfileUpdated:
		if e.PreviousImageURL != e.ImageURL {
			return e.PreviousImageURL
		}
	}
	return ""
}
