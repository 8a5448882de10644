package gate

import "strings"

type routeClass int

const (
	routeOther     routeClass = iota // not listed: checked, never redirected to login
	routePublic                      // bypasses the session check
	routeLogin                       // checked only to bounce signed-in users
	routeProtected                   // requires a session
)

// Routes classifies request paths. A pattern ending in "*" matches the base path
// and everything below it ("/blog*" matches "/blog" and "/blog/x" but not "/blogroll").
type Routes struct {
	Public    []string
	Static    []string // plain prefixes, matched as-is
	Protected []string
	LoginPath string
}

func DefaultRoutes(loginPath string) Routes {
	return Routes{
		Public: []string{
			"/register*",
			"/recuperar-senha*",
			"/blog*",
			"/pages*",
			"/health",
			"/metrics",
			"/api/docs*",
		},
		Static: []string{
			"/static/",
			"/assets/",
			"/favicon.ico",
			"/robots.txt",
		},
		Protected: []string{
			"/dashboard*",
			"/admin*",
		},
		LoginPath: loginPath,
	}
}

func (r Routes) classify(path string) routeClass {
	for _, prefix := range r.Static {
		if strings.HasPrefix(path, prefix) {
			return routePublic
		}
	}
	if matchPath(r.LoginPath, path) {
		return routeLogin
	}
	for _, pattern := range r.Public {
		if matchPattern(pattern, path) {
			return routePublic
		}
	}
	for _, pattern := range r.Protected {
		if matchPattern(pattern, path) {
			return routeProtected
		}
	}
	return routeOther
}

func matchPattern(pattern, path string) bool {
	if base, ok := strings.CutSuffix(pattern, "*"); ok {
		return path == base || strings.HasPrefix(path, strings.TrimSuffix(base, "/")+"/")
	}
	return matchPath(pattern, path)
}

// matchPath tolerates one trailing slash.
func matchPath(want, path string) bool {
	return path == want || path == want+"/"
}
