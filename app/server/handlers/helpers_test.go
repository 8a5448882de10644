package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"membership-dashboard/app/server/jwt"
	"membership-dashboard/app/server/middlewares"
	"membership-dashboard/app/server/models"
	"membership-dashboard/app/server/session"
)

type testApp struct {
	*App
	profiles *fakeProfiles
	posts    *fakePosts
	sessions *fakeSessions
	gate     *fakeGate
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	j, err := jwt.New("test-signing-key")
	require.NoError(t, err)

	ta := &testApp{
		profiles: newFakeProfiles(),
		posts:    newFakePosts(),
		sessions: newFakeSessions(),
		gate:     &fakeGate{},
	}
	ta.App = NewApp(nil, ta.profiles, ta.posts, ta.sessions, ta.gate, j, Options{
		SessionTTL: time.Hour,
	})
	return ta
}

// call runs h against a fresh request; body is sent as JSON when not empty.
func call(h echo.HandlerFunc, method, target, body string, setup func(c echo.Context)) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	if setup != nil {
		setup(c)
	}
	_ = h(c)
	return rec
}

// signedIn wraps h the way the signed-in route groups do and returns a
// setup that attaches a live session of profile.
func (ta *testApp) signedIn(profile *models.Profile, h echo.HandlerFunc) (echo.HandlerFunc, func(c echo.Context)) {
	token := ta.sessions.issue(profile)
	wrapped := middlewares.RequireProfile(ta.sessions, ta.profiles, session.CookieOptions{}, nil)(h)
	return wrapped, withCookie(token)
}

func withParam(name, value string, then func(c echo.Context)) func(c echo.Context) {
	return func(c echo.Context) {
		c.SetParamNames(name)
		c.SetParamValues(value)
		if then != nil {
			then(c)
		}
	}
}

func withCookie(token string) func(c echo.Context) {
	return func(c echo.Context) {
		c.Request().AddCookie(&http.Cookie{Name: session.CookieName, Value: token})
	}
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}
