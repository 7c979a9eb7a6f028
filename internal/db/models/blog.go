package models

import "time"

// Blog represents a blog post.
type Blog struct {
	// ID is the unique identifier for the post.
	ID uint64 `gorm:"primaryKey" json:"id"`
	// Title is the headline of the post.
	Title string `gorm:"size:255;not null" json:"title"`
	// Content is the body text.
	Content string `gorm:"type:text;not null" json:"content"`
	// Image is the public path of the attached image, nil when there is none.
	Image *string `gorm:"size:255" json:"image"`
	// AuthorID references the user that created the post.
	AuthorID uint64 `gorm:"not null;index" json:"authorId"`
	// Author is the creating user, loaded on demand.
	Author *User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
	// CreatedAt is the timestamp when the post was created (managed by GORM).
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt is the timestamp when the post was last updated (managed by GORM).
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the database table name for the Blog model.
func (Blog) TableName() string {
	return "blogs"
}

// AuthorName returns the loaded author's name or an empty string.
func (b *Blog) AuthorName() string {
	if b.Author == nil {
		return ""
	}

	return b.Author.Name
}
