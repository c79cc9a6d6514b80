// Package tui provides a Bubble Tea terminal UI for a battle.
package tui

import "strings"

// History keeps entered commands for up/down recall. Recalling with a
// partly typed line walks only the entries that start with it.
type History struct {
	entries []string
	max     int
	cursor  int    // -1 = not navigating
	prefix  string // typed text when navigation started
}

// NewHistory creates a history holding at most max commands.
func NewHistory(max int) *History {
	return &History{
		entries: make([]string, 0, max),
		max:     max,
		cursor:  -1,
	}
}

// Push records a command. An earlier copy of the same command moves to
// the end instead of being stored twice.
func (h *History) Push(cmd string) {
	for i, e := range h.entries {
		if e == cmd {
			h.entries = append(h.entries[:i], h.entries[i+1:]...)
			break
		}
	}
	h.entries = append(h.entries, cmd)
	if len(h.entries) > h.max {
		h.entries = h.entries[1:]
	}
	h.cursor = -1
}

// Prev returns the next older entry matching typed. typed is only read
// when navigation starts.
func (h *History) Prev(typed string) (string, bool) {
	start := h.cursor
	if start == -1 {
		h.prefix = typed
		start = len(h.entries)
	}
	for i := start - 1; i >= 0; i-- {
		if strings.HasPrefix(h.entries[i], h.prefix) {
			h.cursor = i
			return h.entries[i], true
		}
	}
	if h.cursor == -1 {
		return "", false
	}
	return h.entries[h.cursor], true
}

// Next returns the next newer matching entry. Past the newest it returns
// the text that was typed before navigating, with ok false.
func (h *History) Next() (string, bool) {
	if h.cursor == -1 {
		return "", false
	}
	for i := h.cursor + 1; i < len(h.entries); i++ {
		if strings.HasPrefix(h.entries[i], h.prefix) {
			h.cursor = i
			return h.entries[i], true
		}
	}
	h.cursor = -1
	return h.prefix, false
}

// ResetCursor leaves navigation.
func (h *History) ResetCursor() {
	h.cursor = -1
	h.prefix = ""
}

// Len returns the number of stored commands.
func (h *History) Len() int { return len(h.entries) }
