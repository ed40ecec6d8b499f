// Package guard decides whether a navigation may proceed given the presence
// of a session credential.
package guard

import (
	"fmt"
	"path"
	"strings"
)

// Navigable paths.
const (
	LandingPath     = "/"
	SignInPath      = "/auth/signin"
	SignUpPath      = "/auth/signup"
	ProtectedPrefix = "/protected"
	ListPath        = ProtectedPrefix + "/todo"
)

// CookieName is the cookie carrying the session credential on HTTP requests.
const CookieName = "token"

// TaskPath returns the single-task edit path for id.
func TaskPath(id int) string {
	return fmt.Sprintf("%s/%d", ListPath, id)
}

// Decision is the outcome of a guard check.
type Decision struct {
	// Allow is true when the navigation may proceed.
	Allow bool
	// Target is the redirect location when Allow is false.
	Target string
}

// Allow lets the navigation proceed.
func Allow() Decision { return Decision{Allow: true} }

// Redirect sends the navigation to target.
func Redirect(target string) Decision { return Decision{Target: target} }

// IsProtected reports whether p lies in the protected namespace.
func IsProtected(p string) bool {
	p = clean(p)
	return p == ProtectedPrefix || strings.HasPrefix(p, ProtectedPrefix+"/")
}

// Decide is a pure predicate over the path and credential presence.
// Validity of the credential is not checked here; the remote API rejects
// invalid credentials on the first data call.
func Decide(p string, hasCredential bool) Decision {
	if IsProtected(p) && !hasCredential {
		return Redirect(SignInPath)
	}
	return Allow()
}

func clean(p string) string {
	if p == "" {
		return LandingPath
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}
