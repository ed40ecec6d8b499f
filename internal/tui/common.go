package tui

// mode is what keystrokes currently drive.
type mode int

const (
	modeBrowse mode = iota
	modeAdd
	modeEdit
)

// --- Messages ---

// loadedMsg reports the end of a full fetch (initial load or refresh).
type loadedMsg struct {
	err error
}

// mutatedMsg reports the end of a mutation and its re-fetch.
type mutatedMsg struct {
	op  string
	err error
}

// committedMsg reports the end of an edit commit.
type committedMsg struct {
	id  int
	err error
}
