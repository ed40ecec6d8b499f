// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"gtodo/internal/service"
)

// FormatGreeting writes the list header line.
func FormatGreeting(w io.Writer, name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		fmt.Fprintln(w, "Hello!")
		return
	}
	fmt.Fprintf(w, "Hello, %s!\n", name)
}

// FormatTask formats a task line.
// Format: "{ID:>4}  [x] {TEXT}\n" (4-wide right-aligned id, two spaces, checkbox, text)
func FormatTask(w io.Writer, task service.Task) {
	fmt.Fprintf(w, "%4d  %s %s\n", task.ID, Checkbox(task.Done), NormalizeText(task.Text))
}

// FormatList writes the greeting followed by every task, or a placeholder
// when the list is empty.
func FormatList(w io.Writer, name string, tasks []service.Task) {
	FormatGreeting(w, name)
	if len(tasks) == 0 {
		fmt.Fprintln(w, "no tasks")
		return
	}
	for _, t := range tasks {
		FormatTask(w, t)
	}
}

// Checkbox renders the completion flag.
func Checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

// NormalizeText normalizes a task text for single-line display.
// - Empty or whitespace-only texts become "(untitled)"
// - Newlines are replaced with spaces
func NormalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r", " ")
	text = strings.ReplaceAll(text, "\n", " ")

	if strings.TrimSpace(text) == "" {
		return "(untitled)"
	}
	return text
}
