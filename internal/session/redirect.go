// Package session decides where a client lands when it starts up.
package session

import (
	"net/url"
	"regexp"
	"strings"
)

const (
	SignInRoute  = "/(auth)/sign-in"
	DefaultRoute = "/(tabs)/map"
)

var (
	detailRoute = regexp.MustCompile(`^/(event|report|communities/post)/[^/]+$`)
	tabRoute    = regexp.MustCompile(`^/(map|community|reports|events|menu)$`)
)

var authRoutes = []string{"/sign-in", "/sign-up", "/confirm"}

// IsAuthRoute reports whether path belongs to the sign-in flow.
func IsAuthRoute(path string) bool {
	if strings.HasPrefix(path, "/(auth)") {
		return true
	}
	for _, r := range authRoutes {
		if path == r || strings.HasPrefix(path, r+"?") {
			return true
		}
	}
	return false
}

// ResolveRedirect returns the route the client should replace its current
// one with, or "" to leave navigation untouched.
//
// Signed-out users always go to sign-in, carrying the path they started on
// as the redirect parameter so sign-in can send them back. Signed-in users are only moved
// when there is no history to return to or when they are still sitting on
// an auth screen; deep links to a detail page or a tab survive that move.
func ResolveRedirect(hasUser bool, initialPath string, canGoBack bool) string {
	if !hasUser {
		return SignInRedirect(initialPath)
	}
	if canGoBack && !IsAuthRoute(initialPath) {
		return ""
	}

	if detailRoute.MatchString(initialPath) {
		return initialPath
	}
	if m := tabRoute.FindStringSubmatch(initialPath); m != nil {
		return "/(tabs)/" + m[1]
	}
	return DefaultRoute
}

// SignInRedirect is the sign-in route with path as its redirect parameter.
// Auth screens and empty paths are not carried over.
func SignInRedirect(path string) string {
	if path == "" || IsAuthRoute(path) {
		return SignInRoute
	}
	return SignInRoute + "?" + url.Values{"redirect": {path}}.Encode()
}
