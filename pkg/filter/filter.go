// Package filter derives visible subsets and per-category counts from a
// note collection under a multi-select filter model.
//
// Every note belongs to exactly one of four categories: done and pending
// follow the status directly; active notes split into tasks (due date
// present) and general (no due date).
package filter

import "github.com/notemanager/notesync/pkg/models"

// Tag is one of the four note categories.
type Tag string

const (
	TagGeneral Tag = "general"
	TagTasks   Tag = "tasks"
	TagPending Tag = "pending"
	TagDone    Tag = "done"
)

// Tags lists the categories in display order.
func Tags() []Tag {
	return []Tag{TagGeneral, TagTasks, TagPending, TagDone}
}

// ParseTag converts a string to a Tag, reporting whether it is known.
func ParseTag(s string) (Tag, bool) {
	switch Tag(s) {
	case TagGeneral, TagTasks, TagPending, TagDone:
		return Tag(s), true
	}
	return "", false
}

// Classify maps a note to its single category. The mapping is total and
// exclusive: done and pending win regardless of the due date, and a note
// without a due date is never a task.
func Classify(n models.Note) Tag {
	switch n.Status {
	case models.StatusDone:
		return TagDone
	case models.StatusPending:
		return TagPending
	}
	if n.EndDate != "" {
		return TagTasks
	}
	return TagGeneral
}

// Counts holds the per-category totals over a full collection.
type Counts struct {
	General int
	Tasks   int
	Pending int
	Done    int
}

// Of returns the count for a single tag.
func (c Counts) Of(tag Tag) int {
	switch tag {
	case TagGeneral:
		return c.General
	case TagTasks:
		return c.Tasks
	case TagPending:
		return c.Pending
	case TagDone:
		return c.Done
	}
	return 0
}

// Count classifies every note in the collection. It always works on the
// unfiltered collection, so the totals do not move while filters toggle.
func Count(notes []models.Note) Counts {
	var c Counts
	for _, n := range notes {
		switch Classify(n) {
		case TagGeneral:
			c.General++
		case TagTasks:
			c.Tasks++
		case TagPending:
			c.Pending++
		case TagDone:
			c.Done++
		}
	}
	return c
}

// Set is the active multi-select filter. The zero value is the empty
// set, which is the distinguished "show all" state rather than "show
// none".
type Set struct {
	active map[Tag]struct{}
}

// Toggle flips membership of tag in the set.
func (s *Set) Toggle(tag Tag) {
	if s.active == nil {
		s.active = make(map[Tag]struct{})
	}
	if _, ok := s.active[tag]; ok {
		delete(s.active, tag)
	} else {
		s.active[tag] = struct{}{}
	}
}

// Has reports whether tag is selected.
func (s *Set) Has(tag Tag) bool {
	_, ok := s.active[tag]
	return ok
}

// Empty reports whether no filter is selected.
func (s *Set) Empty() bool {
	return len(s.active) == 0
}

// Visible returns the notes whose category is selected, in collection
// order. An empty set returns every note.
func (s *Set) Visible(notes []models.Note) []models.Note {
	if s.Empty() {
		out := make([]models.Note, len(notes))
		copy(out, notes)
		return out
	}

	out := make([]models.Note, 0, len(notes))
	for _, n := range notes {
		if s.Has(Classify(n)) {
			out = append(out, n)
		}
	}
	return out
}
