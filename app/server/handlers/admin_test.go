package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"membership-dashboard/app/server/models"
	"membership-dashboard/app/server/permissions"
)

func TestUserBanUpdate(t *testing.T) {
	ta := newTestApp(t)
	admin := ta.profiles.add("root@example.com", permissions.RoleAdmin, "correct horse")
	member := ta.profiles.add("alice@example.com", permissions.RoleUser, "correct horse")

	tests := []struct {
		name   string
		target string
		body   string
		want   int
	}{
		{name: "self ban", target: admin.ID.String(), body: `{"banned":true,"reason":"oops"}`, want: http.StatusConflict},
		{name: "no reason", target: member.ID.String(), body: `{"banned":true,"reason":"  "}`, want: http.StatusBadRequest},
		{name: "bad id", target: "42", body: `{"banned":true,"reason":"spam"}`, want: http.StatusBadRequest},
		{name: "ban", target: member.ID.String(), body: `{"banned":true,"reason":"spam"}`, want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, setup := ta.signedIn(admin, ta.UserBanUpdate)
			rec := call(h, http.MethodPut, "/admin/users/"+tt.target+"/ban", tt.body, withParam("id", tt.target, setup))
			assert.Equal(t, tt.want, rec.Code)
		})
	}

	assert.True(t, ta.profiles.byID[member.ID].IsBanned)
	assert.Equal(t, "spam", ta.profiles.byID[member.ID].BanReason)
	require.Len(t, ta.profiles.audit, 1)
	assert.Equal(t, admin.ID.String(), ta.profiles.audit[0].ActorID)
	assert.Equal(t, models.AuditActionBan, ta.profiles.audit[0].Action)

	// a banned member keeps signing in but loses nothing beyond the defaults
	assert.Equal(t, permissions.Default(), permissions.Resolve(ta.profiles.byID[member.ID]))
}

func TestUserRoleUpdate(t *testing.T) {
	ta := newTestApp(t)
	admin := ta.profiles.add("root@example.com", permissions.RoleAdmin, "correct horse")
	member := ta.profiles.add("alice@example.com", permissions.RoleUser, "correct horse")

	h, setup := ta.signedIn(admin, ta.UserRoleUpdate)
	rec := call(h, http.MethodPut, "/", `{"role":"user"}`, withParam("id", admin.ID.String(), setup))
	assert.Equal(t, http.StatusConflict, rec.Code)

	h, setup = ta.signedIn(admin, ta.UserRoleUpdate)
	rec = call(h, http.MethodPut, "/", `{"role":"owner"}`, withParam("id", member.ID.String(), setup))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	h, setup = ta.signedIn(admin, ta.UserRoleUpdate)
	rec = call(h, http.MethodPut, "/", `{"role":"ADMIN"}`, withParam("id", member.ID.String(), setup))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin", decode[models.Profile](t, rec).Role)
}

func TestUserPromote(t *testing.T) {
	ta := newTestApp(t)
	admin := ta.profiles.add("root@example.com", permissions.RoleAdmin, "correct horse")
	member := ta.profiles.add("alice@example.com", permissions.RoleUser, "correct horse")

	h, setup := ta.signedIn(admin, ta.UserPromote)
	rec := call(h, http.MethodPost, "/admin/users/promote", `{"email":"ALICE@example.com"}`, setup)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, permissions.IsAdmin(ta.profiles.byID[member.ID].Role))

	h, setup = ta.signedIn(admin, ta.UserPromote)
	rec = call(h, http.MethodPost, "/admin/users/promote", `{"email":"ghost@example.com"}`, setup)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUserList(t *testing.T) {
	ta := newTestApp(t)
	admin := ta.profiles.add("root@example.com", permissions.RoleAdmin, "correct horse")
	ta.profiles.add("alice@example.com", permissions.RoleUser, "correct horse")

	h, setup := ta.signedIn(admin, ta.UserList)
	rec := call(h, http.MethodGet, "/admin/users?q=ali&banned=false&page=2&limit=10", "", setup)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[listResponse[models.Profile]](t, rec)
	assert.Equal(t, int64(2), body.Total)
	assert.Equal(t, "ali", ta.profiles.listed.Query)
	require.NotNil(t, ta.profiles.listed.Banned)
	assert.False(t, *ta.profiles.listed.Banned)
	assert.Equal(t, 10, ta.profiles.listed.Offset)
	assert.Equal(t, 10, ta.profiles.listed.Limit)

	h, setup = ta.signedIn(admin, ta.UserList)
	rec = call(h, http.MethodGet, "/admin/users?banned=perhaps", "", setup)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuditList(t *testing.T) {
	ta := newTestApp(t)
	admin := ta.profiles.add("root@example.com", permissions.RoleAdmin, "correct horse")
	member := ta.profiles.add("alice@example.com", permissions.RoleUser, "correct horse")
	for i := 0; i < 3; i++ {
		_, err := ta.profiles.SetRole(context.Background(), admin.ID.String(), member.ID, permissions.RoleUser)
		require.NoError(t, err)
	}

	h, setup := ta.signedIn(admin, ta.AuditList)
	rec := call(h, http.MethodGet, "/admin/audit?limit=2", "", setup)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.AuditLog](t, rec), 2)

	h, setup = ta.signedIn(admin, ta.AuditList)
	rec = call(h, http.MethodGet, "/admin/audit?limit=-1", "", setup)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPostCreate(t *testing.T) {
	ta := newTestApp(t)
	admin := ta.profiles.add("root@example.com", permissions.RoleAdmin, "correct horse")

	h, setup := ta.signedIn(admin, ta.PostCreate)
	rec := call(h, http.MethodPost, "/admin/posts", `{"title":"Olá Mundo"}`, setup)
	require.Equal(t, http.StatusCreated, rec.Code)

	post := decode[models.Post](t, rec)
	assert.Equal(t, "ola-mundo", post.Slug)
	assert.Equal(t, admin.ID, post.AuthorID)

	h, setup = ta.signedIn(admin, ta.PostCreate)
	rec = call(h, http.MethodPost, "/admin/posts", `{"title":"Ola mundo"}`, setup)
	assert.Equal(t, http.StatusConflict, rec.Code)

	h, setup = ta.signedIn(admin, ta.PostCreate)
	rec = call(h, http.MethodPost, "/admin/posts", `{"summary":"no title"}`, setup)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPostUpdateAndDelete(t *testing.T) {
	ta := newTestApp(t)
	admin := ta.profiles.add("root@example.com", permissions.RoleAdmin, "correct horse")
	ta.posts.posts[1] = &models.Post{Title: "Draft", Slug: "draft"}
	ta.posts.posts[1].ID = 1

	rec := call(ta.PostUpdate, http.MethodPut, "/admin/posts/1", `{"published":true}`, withParam("id", "1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, ta.posts.posts[1].Published)

	rec = call(ta.PostUpdate, http.MethodPut, "/admin/posts/x", `{}`, withParam("id", "x", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	h, setup := ta.signedIn(admin, ta.PostDelete)
	rec = call(h, http.MethodDelete, "/admin/posts/1", "", withParam("id", "1", setup))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = call(ta.PostDelete, http.MethodDelete, "/admin/posts/1", "", withParam("id", "1", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
