package handlers

import (
	"context"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"membership-dashboard/app/server/jwt"
	"membership-dashboard/app/server/models"
	"membership-dashboard/app/server/permissions"
	"membership-dashboard/app/server/posts"
	"membership-dashboard/app/server/profiles"
	"membership-dashboard/app/server/session"
	"time"
)

type ProfileStore interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)
	Create(ctx context.Context, profile *models.Profile, passwordHash string) error
	UpdateFields(ctx context.Context, id uuid.UUID, fields *profiles.Fields) (*models.Profile, error)
	TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	PasswordHash(ctx context.Context, id uuid.UUID) (string, error)
	SetPasswordHash(ctx context.Context, id uuid.UUID, hash string) error
	List(ctx context.Context, filter profiles.ListFilter) ([]models.Profile, int64, error)
	SetRole(ctx context.Context, actor string, id uuid.UUID, role permissions.Role) (*models.Profile, error)
	SetBan(ctx context.Context, actor string, id uuid.UUID, banned bool, reason string) (*models.Profile, error)
	PromoteByEmail(ctx context.Context, actor string, email string) (*models.Profile, error)
	AuditTrail(ctx context.Context, limit int) ([]models.AuditLog, error)
}

type PostStore interface {
	List(ctx context.Context, filter posts.Filter) ([]models.Post, int64, error)
	Get(ctx context.Context, id uint) (*models.Post, error)
	GetBySlug(ctx context.Context, slug string, publishedOnly bool) (*models.Post, error)
	Create(ctx context.Context, author uuid.UUID, fields *posts.Fields) (*models.Post, error)
	Update(ctx context.Context, id uint, fields *posts.Fields) (*models.Post, error)
	Delete(ctx context.Context, id uint) error
}

// GateCache is the part of the auth gate handlers touch: logout forgets the cached result.
type GateCache interface {
	Forget(token string)
}

// RecoveryDelivery hands a password recovery token to the member.
type RecoveryDelivery func(ctx context.Context, email string, token string) error

type App struct {
	l        *zap.Logger           // logger
	profiles ProfileStore          // profile store
	posts    PostStore             // blog store
	sessions session.Store         // session store
	gate     GateCache             // auth gate cache
	jwt      *jwt.JWT              // recovery token signer
	deliver  RecoveryDelivery      // recovery token delivery
	cookie   session.CookieOptions // session cookie flags
	ttl      time.Duration         // session lifetime
	now      func() time.Time
}

type Options struct {
	SessionTTL   time.Duration
	CookieSecure bool
	Deliver      RecoveryDelivery // defaults to logging the token at debug level
}

func NewApp(l *zap.Logger, ps ProfileStore, bs PostStore, ss session.Store, g GateCache, j *jwt.JWT, opts Options) *App {
	if l == nil {
		l = zap.NewNop()
	}
	a := &App{
		l:        l,
		profiles: ps,
		posts:    bs,
		sessions: ss,
		gate:     g,
		jwt:      j,
		deliver:  opts.Deliver,
		cookie:   session.CookieOptions{Secure: opts.CookieSecure},
		ttl:      opts.SessionTTL,
		now:      time.Now,
	}
	if a.ttl <= 0 {
		a.ttl = 24 * time.Hour
	}
	if a.deliver == nil {
		a.deliver = a.logRecovery
	}
	return a
}

func (a *App) logRecovery(_ context.Context, email string, token string) error {
	a.l.Info("password recovery requested", zap.String("email", email))
	a.l.Debug("password recovery token", zap.String("email", email), zap.String("token", token))
	return nil
}
