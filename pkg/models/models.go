// Package models defines the note and session entities shared by the
// sync engine and the remote API client. Field names and JSON tags match
// the remote store's schema exactly, so values round-trip unchanged.
package models

import "time"

// NoteStatus is the tri-state workflow status of a note. Transitions are
// unconstrained: any status is reachable from any other.
type NoteStatus string

const (
	StatusActive  NoteStatus = "active"
	StatusPending NoteStatus = "pending"
	StatusDone    NoteStatus = "done"
)

// Valid reports whether s is one of the three known statuses.
func (s NoteStatus) Valid() bool {
	switch s {
	case StatusActive, StatusPending, StatusDone:
		return true
	}
	return false
}

// NoteColor is a purely presentational display tag. It never affects
// behavior anywhere in the engine.
type NoteColor string

const (
	ColorWhite  NoteColor = "white"
	ColorYellow NoteColor = "yellow"
	ColorBlue   NoteColor = "blue"
	ColorGreen  NoteColor = "green"
	ColorRed    NoteColor = "red"
	ColorPurple NoteColor = "purple"
)

// Colors lists every display tag in presentation order.
func Colors() []NoteColor {
	return []NoteColor{ColorWhite, ColorYellow, ColorBlue, ColorGreen, ColorRed, ColorPurple}
}

// Note is a short text note. ID is generated client-side at creation and
// is the sole join key with the remote store; it never changes. EndDate,
// when set, is a calendar date in YYYY-MM-DD form and flips the note from
// a general note to a task.
type Note struct {
	ID        string     `json:"id"`
	Content   string     `json:"content"`
	CreatedAt int64      `json:"createdAt"` // epoch milliseconds
	Color     NoteColor  `json:"color"`
	EndDate   string     `json:"endDate,omitempty"`
	Status    NoteStatus `json:"status"`
}

// EndDateLayout is the wire format of Note.EndDate.
const EndDateLayout = "2006-01-02"

// Created returns the creation timestamp as a time.Time.
func (n Note) Created() time.Time {
	return time.UnixMilli(n.CreatedAt)
}

// Session is the authenticated identity held by the client: an opaque
// bearer credential plus the user handle it belongs to.
type Session struct {
	Token string `json:"token"`
	Email string `json:"email"`
}
