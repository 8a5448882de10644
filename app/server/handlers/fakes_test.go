package handlers

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/google/uuid"
	"membership-dashboard/app/server/models"
	"membership-dashboard/app/server/permissions"
	"membership-dashboard/app/server/posts"
	"membership-dashboard/app/server/profiles"
	"membership-dashboard/app/server/session"
)

// cheap parameters keep the tests fast
var testHashParams = &argon2id.Params{
	Memory:      1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

func mustHash(password string) string {
	hash, err := argon2id.CreateHash(password, testHashParams)
	if err != nil {
		panic(err)
	}
	return hash
}

type fakeProfiles struct {
	mu       sync.Mutex
	byID     map[uuid.UUID]*models.Profile
	hashes   map[uuid.UUID]string
	audit    []models.AuditLog
	lastSeen map[uuid.UUID]time.Time
	listed   profiles.ListFilter
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{
		byID:     make(map[uuid.UUID]*models.Profile),
		hashes:   make(map[uuid.UUID]string),
		lastSeen: make(map[uuid.UUID]time.Time),
	}
}

func (f *fakeProfiles) add(email string, role permissions.Role, password string) *models.Profile {
	p := &models.Profile{ID: uuid.New(), Email: email, Role: string(role)}
	f.byID[p.ID] = p
	f.hashes[p.ID] = mustHash(password)
	return p
}

func (f *fakeProfiles) copyOf(p *models.Profile) *models.Profile {
	c := *p
	return &c
}

func (f *fakeProfiles) Get(_ context.Context, id uuid.UUID) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return nil, profiles.ErrNotFound
	}
	return f.copyOf(p), nil
}

func (f *fakeProfiles) GetByEmail(_ context.Context, email string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.byID {
		if p.Email == profiles.NormalizeEmail(email) {
			return f.copyOf(p), nil
		}
	}
	return nil, profiles.ErrNotFound
}

func (f *fakeProfiles) Create(ctx context.Context, profile *models.Profile, passwordHash string) error {
	if _, err := f.GetByEmail(ctx, profile.Email); err == nil {
		return profiles.ErrEmailTaken
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	profile.ID = uuid.New()
	profile.Email = profiles.NormalizeEmail(profile.Email)
	f.byID[profile.ID] = f.copyOf(profile)
	f.hashes[profile.ID] = passwordHash
	return nil
}

func (f *fakeProfiles) UpdateFields(ctx context.Context, id uuid.UUID, fields *profiles.Fields) (*models.Profile, error) {
	f.mu.Lock()
	p, ok := f.byID[id]
	if !ok {
		f.mu.Unlock()
		return nil, profiles.ErrNotFound
	}
	if fields.DisplayName != nil {
		p.DisplayName = strings.TrimSpace(*fields.DisplayName)
	}
	if fields.Nickname != nil {
		p.Nickname = strings.TrimSpace(*fields.Nickname)
	}
	if fields.SocialHandle != nil {
		p.SocialHandle = strings.TrimPrefix(strings.TrimSpace(*fields.SocialHandle), "@")
	}
	f.mu.Unlock()
	return f.Get(ctx, id)
}

func (f *fakeProfiles) TouchLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastSeen[id] = at
	return nil
}

func (f *fakeProfiles) PasswordHash(_ context.Context, id uuid.UUID) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	hash, ok := f.hashes[id]
	if !ok {
		return "", profiles.ErrNotFound
	}
	return hash, nil
}

func (f *fakeProfiles) SetPasswordHash(_ context.Context, id uuid.UUID, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.hashes[id]; !ok {
		return profiles.ErrNotFound
	}
	f.hashes[id] = hash
	return nil
}

func (f *fakeProfiles) List(_ context.Context, filter profiles.ListFilter) ([]models.Profile, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listed = filter
	var list []models.Profile
	for _, p := range f.byID {
		list = append(list, *p)
	}
	return list, int64(len(list)), nil
}

func (f *fakeProfiles) SetRole(ctx context.Context, actor string, id uuid.UUID, role permissions.Role) (*models.Profile, error) {
	f.mu.Lock()
	p, ok := f.byID[id]
	if !ok {
		f.mu.Unlock()
		return nil, profiles.ErrNotFound
	}
	p.Role = string(role)
	f.audit = append(f.audit, models.AuditLog{ActorID: actor, Action: models.AuditActionRoleChange, TargetID: id, Detail: string(role)})
	f.mu.Unlock()
	return f.Get(ctx, id)
}

func (f *fakeProfiles) SetBan(ctx context.Context, actor string, id uuid.UUID, banned bool, reason string) (*models.Profile, error) {
	if banned && reason == "" {
		return nil, profiles.ErrBanReasonRequired
	}
	f.mu.Lock()
	p, ok := f.byID[id]
	if !ok {
		f.mu.Unlock()
		return nil, profiles.ErrNotFound
	}
	p.IsBanned = banned
	p.BanReason = reason
	action := models.AuditActionUnban
	if banned {
		action = models.AuditActionBan
	}
	f.audit = append(f.audit, models.AuditLog{ActorID: actor, Action: action, TargetID: id, Detail: reason})
	f.mu.Unlock()
	return f.Get(ctx, id)
}

func (f *fakeProfiles) PromoteByEmail(ctx context.Context, actor string, email string) (*models.Profile, error) {
	p, err := f.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return f.SetRole(ctx, actor, p.ID, permissions.RoleAdmin)
}

func (f *fakeProfiles) AuditTrail(_ context.Context, limit int) ([]models.AuditLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if limit < len(f.audit) {
		return f.audit[:limit], nil
	}
	return f.audit, nil
}

type fakePosts struct {
	posts   map[uint]*models.Post
	filter  posts.Filter
	listErr error
	nextID  uint
}

func newFakePosts() *fakePosts {
	return &fakePosts{posts: make(map[uint]*models.Post), nextID: 1}
}

func (f *fakePosts) List(_ context.Context, filter posts.Filter) ([]models.Post, int64, error) {
	f.filter = filter
	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	var list []models.Post
	for _, p := range f.posts {
		if filter.PublishedOnly && !p.Published {
			continue
		}
		list = append(list, *p)
	}
	return list, int64(len(list)), nil
}

func (f *fakePosts) Get(_ context.Context, id uint) (*models.Post, error) {
	p, ok := f.posts[id]
	if !ok {
		return nil, posts.ErrNotFound
	}
	return p, nil
}

func (f *fakePosts) GetBySlug(_ context.Context, slug string, publishedOnly bool) (*models.Post, error) {
	for _, p := range f.posts {
		if p.Slug == slug && (p.Published || !publishedOnly) {
			return p, nil
		}
	}
	return nil, posts.ErrNotFound
}

func (f *fakePosts) Create(_ context.Context, author uuid.UUID, fields *posts.Fields) (*models.Post, error) {
	if fields.Title == nil || strings.TrimSpace(*fields.Title) == "" {
		return nil, posts.ErrNoTitle
	}
	slug := posts.Slugify(*fields.Title)
	for _, p := range f.posts {
		if p.Slug == slug {
			return nil, posts.ErrSlugTaken
		}
	}
	p := &models.Post{Title: *fields.Title, Slug: slug, AuthorID: author}
	p.ID = f.nextID
	f.nextID++
	f.posts[p.ID] = p
	return p, nil
}

func (f *fakePosts) Update(ctx context.Context, id uint, fields *posts.Fields) (*models.Post, error) {
	p, err := f.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if fields.Title != nil {
		p.Title = *fields.Title
	}
	if fields.Published != nil {
		p.Published = *fields.Published
	}
	return p, nil
}

func (f *fakePosts) Delete(_ context.Context, id uint) error {
	if _, ok := f.posts[id]; !ok {
		return posts.ErrNotFound
	}
	delete(f.posts, id)
	return nil
}

type fakeSessions struct {
	mu       sync.Mutex
	sessions map[string]session.Session
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{sessions: make(map[string]session.Session)}
}

func (f *fakeSessions) Create(_ context.Context, s session.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[s.SessionID] = s
	return nil
}

func (f *fakeSessions) Get(_ context.Context, id string) (*session.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, session.ErrNotFound
	}
	return &s, nil
}

func (f *fakeSessions) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, id)
	return nil
}

func (f *fakeSessions) Validate(ctx context.Context, id string) (bool, error) {
	if _, err := f.Get(ctx, id); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (f *fakeSessions) issue(profile *models.Profile) string {
	id, err := session.GenerateID()
	if err != nil {
		panic(err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[id] = session.Session{
		SessionID: id,
		UserID:    profile.ID.String(),
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	return id
}

type fakeGate struct {
	forgotten []string
}

func (g *fakeGate) Forget(token string) {
	g.forgotten = append(g.forgotten, token)
}
