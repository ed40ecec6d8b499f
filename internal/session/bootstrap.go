// Package session performs the per-page credential check that runs before
// any page-specific work.
package session

import (
	"path"

	"gtodo/internal/credential"
	"gtodo/internal/guard"
)

// Kind distinguishes bootstrap outcomes.
type Kind int

const (
	// Proceed lets the page render; on protected pages it also releases
	// the initial data fetch.
	Proceed Kind = iota
	// Redirect sends the visitor elsewhere before anything else happens.
	Redirect
)

// Outcome is the result of Bootstrap.
type Outcome struct {
	Kind Kind
	// Target is set for Redirect.
	Target string
	// Protected is true when the page is in the protected namespace.
	Protected bool
}

// Confirmed reports whether a protected page may issue its data fetch.
func (o Outcome) Confirmed() bool {
	return o.Kind == Proceed && o.Protected
}

// IsPublicOnly reports whether p is a page a signed-in user should skip.
func IsPublicOnly(p string) bool {
	if p == "" {
		p = guard.LandingPath
	}
	switch path.Clean(p) {
	case guard.LandingPath, guard.SignInPath, guard.SignUpPath:
		return true
	}
	return false
}

// Bootstrap reads the store exactly once and decides what the page at p
// may do. It never fails open: a protected page without a credential is
// redirected to the sign-in entry point.
func Bootstrap(p string, store credential.Reader) Outcome {
	has := false
	if store != nil {
		_, has = store.Get()
	}
	protected := guard.IsProtected(p)

	switch {
	case protected && !has:
		return Outcome{Kind: Redirect, Target: guard.SignInPath, Protected: true}
	case protected:
		return Outcome{Kind: Proceed, Protected: true}
	case has && IsPublicOnly(p):
		return Outcome{Kind: Redirect, Target: guard.ListPath}
	default:
		return Outcome{Kind: Proceed}
	}
}
