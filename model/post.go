package model

import "time"

// Post is a short timeline entry with an optional attached image URL.
type Post struct {
	ID        int64      `json:"id" gorm:"primaryKey"`
	Content   string     `json:"content" gorm:"size:140;not null"`
	Img       string     `json:"img" gorm:"size:255"` // public object-storage URL, empty when none
	UserID    int64      `json:"userId" gorm:"not null;index"`
	User      *User      `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Hashtags  []*Hashtag `json:"hashtags,omitempty" gorm:"many2many:post_hashtags"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Hashtag is a unique tag extracted from post content.
type Hashtag struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Title     string    `json:"title" gorm:"size:32;not null;uniqueIndex"`
	CreatedAt time.Time `json:"createdAt"`
}
