package credential

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
)

// File is a Store persisted as an oauth2 token JSON file.
// The file is read on every Get so a credential written by another
// invocation is picked up without restarting.
type File struct {
	path string
}

// NewFile creates a File store at path.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the token file path.
func (f *File) Path() string {
	return f.path
}

// Get implements Reader. An unreadable or corrupt file counts as no credential.
func (f *File) Get() (string, bool) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return "", false
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return "", false
	}
	if token.AccessToken == "" {
		return "", false
	}
	return token.AccessToken, true
}

// Set implements Store. The directory is created with mode 0700 and the
// file written with mode 0600.
func (f *File) Set(value string) error {
	if value == "" {
		return f.Clear()
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(Token(value), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, data, 0600)
}

// Clear implements Store.
func (f *File) Clear() error {
	err := os.Remove(f.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
