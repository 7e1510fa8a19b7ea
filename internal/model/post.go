package model

import "time"

const MaxPostContentLength = 1000

// Post rows are always read joined with the owner's public fields; Username
// and ProfilePicture are read-only and have no column in the posts table.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index:idx_posts_user_created,priority:1" json:"user_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	ImageURL  *string   `gorm:"size:255" json:"image_url"`
	CreatedAt time.Time `gorm:"index;index:idx_posts_user_created,priority:2" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Owner *User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`

	Username       string  `gorm:"column:username;->;-:migration" json:"username"`
	ProfilePicture *string `gorm:"column:profile_picture;->;-:migration" json:"profile_picture"`
}
