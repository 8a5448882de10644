package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"time"
)

type Post struct {
	gorm.Model

	Title   string         `gorm:"column:title" json:"title"`
	Slug    string         `gorm:"column:slug;uniqueIndex:idx_posts_slug,where:deleted_at IS NULL" json:"slug"` // url key under /blog/, free again once the post is deleted
	Summary string         `gorm:"column:summary" json:"summary"`
	Content string         `gorm:"column:content" json:"content"`
	Tags    pq.StringArray `gorm:"column:tags;type:text[]" json:"tags"`

	Published   bool       `gorm:"column:published;index" json:"published"`
	PublishedAt *time.Time `gorm:"column:published_at;index" json:"published_at"` // set the first time the post is published

	AuthorID uuid.UUID `gorm:"column:author_id;type:uuid;index" json:"author_id"`
}
