package report

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/gookit/color"
	"gopkg.in/yaml.v3"
)

// A single diagnostic.
type Entry struct {
	Severity Severity `yaml:"severity"`
	Topic    string   `yaml:"topic"`
	Message  string   `yaml:"message"`
}

// Append-only, concurrency-safe list of entries.
type Results struct {
	mu      sync.Mutex
	entries []Entry
}

// Creates an empty result list.
func New() *Results {
	return &Results{}
}

// Appends an entry.
func (r *Results) Add(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}

// Appends an error entry.
func (r *Results) Error(topic, msg string) {
	r.Add(Entry{Severity: Error, Topic: topic, Message: msg})
}

// Appends a warning entry.
func (r *Results) Warning(topic, msg string) {
	r.Add(Entry{Severity: Warning, Topic: topic, Message: msg})
}

// Appends a note entry.
func (r *Results) Note(topic, msg string) {
	r.Add(Entry{Severity: Note, Topic: topic, Message: msg})
}

// Appends all entries of other. A nil other is a no-op.
func (r *Results) Merge(other *Results) {
	if other == nil || other == r {
		return
	}
	entries := other.Entries()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entries...)
}

// Appends the entries of other that are less severe than an error.
func (r *Results) MergeWarnings(other *Results) {
	if other == nil || other == r {
		return
	}
	for _, e := range other.Entries() {
		if e.Severity < Error {
			r.Add(e)
		}
	}
}

// Returns a snapshot of the entries in insertion order.
func (r *Results) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Returns the number of entries with the given severity.
func (r *Results) Count(s Severity) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.entries {
		if e.Severity == s {
			n++
		}
	}
	return n
}

// Returns the highest severity recorded, or [None] when empty.
func (r *Results) Type() Severity {
	r.mu.Lock()
	defer r.mu.Unlock()
	highest := None
	for _, e := range r.entries {
		if e.Severity > highest {
			highest = e.Severity
		}
	}
	return highest
}

// Whether the results describe a successful run.
//
// Errors always invalidate the results. Warnings invalidate them only when
// allowWarnings is false.
func (r *Results) Valid(allowWarnings bool) bool {
	switch r.Type() {
	case Error:
		return false
	case Warning:
		return allowWarnings
	}
	return true
}

// Writes the entries as a human-readable list, one line per entry.
func (r *Results) Print(w io.Writer) {
	for _, e := range r.Entries() {
		fmt.Fprintf(w, " - %s | [%s] %s\n", label(e.Severity), e.Topic, indent(e.Message))
	}
}

// Returns the padded, colored severity label.
func label(s Severity) string {
	text := fmt.Sprintf("%-7s", strings.ToUpper(s.String()))
	switch s {
	case Error:
		return color.Danger.Sprint(text)
	case Warning:
		return color.Warn.Sprint(text)
	case Note:
		return color.Info.Sprint(text)
	}
	return text
}

// Indents continuation lines so multi-line messages stay under their entry.
func indent(msg string) string {
	return strings.ReplaceAll(strings.TrimRight(msg, "\n"), "\n", "\n   ")
}

// Writes v as a YAML document.
func PrintYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
