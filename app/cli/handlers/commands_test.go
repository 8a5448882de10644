package handlers

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"membership-dashboard/app/server/models"
	"membership-dashboard/app/server/permissions"
	"membership-dashboard/app/server/profiles"
)

type call struct {
	actor  string
	banned bool
	reason string
}

type fakeAdmin struct {
	profile *models.Profile
	calls   []call
}

func (f *fakeAdmin) GetByEmail(_ context.Context, email string) (*models.Profile, error) {
	if f.profile == nil || profiles.NormalizeEmail(email) != f.profile.Email {
		return nil, profiles.ErrNotFound
	}
	p := *f.profile
	return &p, nil
}

func (f *fakeAdmin) PromoteByEmail(ctx context.Context, actor string, email string) (*models.Profile, error) {
	p, err := f.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	f.calls = append(f.calls, call{actor: actor})
	f.profile.Role = string(permissions.RoleAdmin)
	p.Role = f.profile.Role
	return p, nil
}

func (f *fakeAdmin) SetBan(_ context.Context, actor string, id uuid.UUID, banned bool, reason string) (*models.Profile, error) {
	if banned && reason == "" {
		return nil, profiles.ErrBanReasonRequired
	}
	if f.profile == nil || f.profile.ID != id {
		return nil, profiles.ErrNotFound
	}
	f.calls = append(f.calls, call{actor: actor, banned: banned, reason: reason})
	f.profile.IsBanned = banned
	f.profile.BanReason = reason
	p := *f.profile
	return &p, nil
}

func run(t *testing.T, store ProfileAdmin, args ...string) (string, error) {
	t.Helper()
	cmd := NewApp(nil, store).Command()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func newFakeAdmin() *fakeAdmin {
	return &fakeAdmin{profile: &models.Profile{ID: uuid.New(), Email: "alice@example.com", Role: "user"}}
}

func TestPromote(t *testing.T) {
	store := newFakeAdmin()

	out, err := run(t, store, "promote", "--email", "Alice@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "alice@example.com is now admin")
	require.Len(t, store.calls, 1)
	assert.Equal(t, profiles.ActorCLI, store.calls[0].actor)
}

func TestPromote_Unknown(t *testing.T) {
	_, err := run(t, newFakeAdmin(), "promote", "--email", "ghost@example.com")
	assert.ErrorContains(t, err, "no profile")
}

func TestPromote_MissingFlag(t *testing.T) {
	_, err := run(t, newFakeAdmin(), "promote")
	assert.Error(t, err)
}

func TestBanAndUnban(t *testing.T) {
	store := newFakeAdmin()

	out, err := run(t, store, "ban", "--email", "alice@example.com", "--reason", "spam")
	require.NoError(t, err)
	assert.Contains(t, out, "banned: spam")
	assert.True(t, store.profile.IsBanned)

	out, err = run(t, store, "unban", "--email", "alice@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "is not banned")
	assert.False(t, store.profile.IsBanned)

	require.Len(t, store.calls, 2)
	assert.Equal(t, profiles.ActorCLI, store.calls[1].actor)
}

func TestBan_BlankReason(t *testing.T) {
	store := newFakeAdmin()

	_, err := run(t, store, "ban", "--email", "alice@example.com", "--reason", "   ")
	assert.ErrorContains(t, err, "needs a reason")
	assert.False(t, store.profile.IsBanned)
}
