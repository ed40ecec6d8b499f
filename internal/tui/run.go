package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"gtodo/internal/credential"
	"gtodo/internal/session"
	"gtodo/internal/tasklist"
)

// Result describes how the view ended.
type Result struct {
	// Redirect is the page the session moved to, or "" for a plain quit.
	Redirect string
	// SignedOut is true when the user logged out, false when the remote
	// API ended the session.
	SignedOut bool
}

// Run shows the list until the user quits or the session ends.
func Run(ctx context.Context, list *tasklist.Synchronizer, store credential.Store, outcome session.Outcome, opts ...tea.ProgramOption) (Result, error) {
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(New(ctx, list, store, outcome), opts...)
	final, err := p.Run()
	if err != nil {
		return Result{}, fmt.Errorf("run list view: %w", err)
	}
	m, ok := final.(Model)
	if !ok {
		return Result{}, nil
	}
	return Result{Redirect: m.Redirect(), SignedOut: m.SignedOut()}, nil
}
