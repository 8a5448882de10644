// Package posts is the blog content store.
package posts

import (
	"context"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"membership-dashboard/app/server/models"
	"strings"
	"time"
)

var (
	ErrNotFound  = errors.New("post not found")
	ErrSlugTaken = errors.New("slug already in use")
	ErrNoTitle   = errors.New("title required")
	ErrNoSlug    = errors.New("title has no characters usable in a slug")
)

type Store struct {
	l   *zap.Logger
	db  *gorm.DB
	now func() time.Time
}

func New(l *zap.Logger, db *gorm.DB) *Store {
	if l == nil {
		l = zap.NewNop()
	}
	return &Store{l: l, db: db, now: time.Now}
}

type Filter struct {
	Query         string // case-insensitive substring of title or summary
	Tag           string
	PublishedOnly bool
	Offset        int
	Limit         int // negative lists everything
}

func (s *Store) List(ctx context.Context, filter Filter) ([]models.Post, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Post{})
	if filter.PublishedOnly {
		query = query.Where("published = ?", true)
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		like := containsPattern(q)
		query = query.Where("LOWER(title) LIKE ? OR LOWER(summary) LIKE ?", like, like)
	}
	if tag := strings.TrimSpace(filter.Tag); tag != "" {
		query = query.Where("? = ANY(tags)", strings.ToLower(tag))
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}

	if filter.Limit >= 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset)
	}

	var list []models.Post
	if err := query.Order("published_at DESC NULLS LAST").Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}

	return list, count, nil
}

func (s *Store) Get(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := s.db.WithContext(ctx).First(&post, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get post %d: %w", id, err)
	}
	return &post, nil
}

func (s *Store) GetBySlug(ctx context.Context, slug string, publishedOnly bool) (*models.Post, error) {
	query := s.db.WithContext(ctx).Where("slug = ?", slug)
	if publishedOnly {
		query = query.Where("published = ?", true)
	}

	var post models.Post
	if err := query.First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get post %q: %w", slug, err)
	}
	return &post, nil
}

// Fields are the editable columns of a post; nil means unchanged.
type Fields struct {
	Title     *string   `json:"title"`
	Slug      *string   `json:"slug"`
	Summary   *string   `json:"summary"`
	Content   *string   `json:"content"`
	Tags      *[]string `json:"tags"`
	Published *bool     `json:"published"`
}

func (s *Store) apply(fields *Fields, post *models.Post) {
	if fields.Title != nil {
		post.Title = strings.TrimSpace(*fields.Title)
	}
	if fields.Slug != nil {
		post.Slug = Slugify(*fields.Slug)
	}
	if fields.Summary != nil {
		post.Summary = *fields.Summary
	}
	if fields.Content != nil {
		post.Content = *fields.Content
	}
	if fields.Tags != nil {
		post.Tags = normalizeTags(*fields.Tags)
	}
	if fields.Published != nil {
		post.Published = *fields.Published
		if post.Published && post.PublishedAt == nil {
			now := s.now()
			post.PublishedAt = &now
		}
	}
}

func (s *Store) Create(ctx context.Context, author uuid.UUID, fields *Fields) (*models.Post, error) {
	post := models.Post{AuthorID: author}
	s.apply(fields, &post)

	if post.Title == "" {
		return nil, ErrNoTitle
	}
	if post.Slug == "" {
		post.Slug = Slugify(post.Title)
	}
	if post.Slug == "" {
		return nil, ErrNoSlug
	}

	if err := s.checkSlug(ctx, post.Slug, 0); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSlugTaken
		}
		return nil, fmt.Errorf("create post: %w", err)
	}

	return &post, nil
}

func (s *Store) Update(ctx context.Context, id uint, fields *Fields) (*models.Post, error) {
	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.apply(fields, post)
	if post.Title == "" {
		return nil, ErrNoTitle
	}
	if post.Slug == "" {
		post.Slug = Slugify(post.Title)
	}
	if post.Slug == "" {
		return nil, ErrNoSlug
	}

	if err := s.checkSlug(ctx, post.Slug, post.ID); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Save(post).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSlugTaken
		}
		return nil, fmt.Errorf("update post %d: %w", id, err)
	}

	return post, nil
}

func (s *Store) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Post{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete post %d: %w", id, res.Error)
	} else if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) checkSlug(ctx context.Context, slug string, exceptID uint) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Post{}).
		Where("slug = ? AND id <> ?", slug, exceptID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("count slug: %w", err)
	} else if count > 0 {
		return ErrSlugTaken
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern is a LIKE pattern matching q literally anywhere in a lowercased column.
func containsPattern(q string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(q)) + "%"
}

func normalizeTags(tags []string) pq.StringArray {
	seen := make(map[string]struct{}, len(tags))
	out := pq.StringArray{}
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
