// Package notes owns the authoritative in-memory note collection for
// the current session.
//
// Every mutation is optimistic: the collection changes synchronously,
// then a matching remote operation is dispatched on a detached goroutine
// that never blocks the caller and never retries. A failed remote write
// is diagnostic only; the local collection stays as-is and the next full
// Load reconciles. The single exception is an authorization failure,
// which tears the session down.
//
// Completion handlers capture the session epoch at dispatch time and
// drop their result if the session changed underneath them, so a late
// response from a previous session cannot touch the current collection.
package notes

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/notemanager/notesync/pkg/client"
	"github.com/notemanager/notesync/pkg/id"
	"github.com/notemanager/notesync/pkg/models"
	"github.com/notemanager/notesync/pkg/session"
)

// Exporter receives newly created dated notes. The calendar package
// provides the real one.
type Exporter interface {
	Export(models.Note)
}

// Store holds the note collection, newest first.
type Store struct {
	api      *client.Client
	session  *session.Manager
	exporter Exporter
	log      zerolog.Logger

	mu    sync.Mutex
	notes []models.Note

	inflight sync.WaitGroup
}

// New creates an empty store bound to the given session. The store
// registers itself with the session so the collection is cleared on
// logout or invalidation; notes are never retained across sessions.
// exporter may be nil to disable calendar export.
func New(api *client.Client, sess *session.Manager, exporter Exporter, log zerolog.Logger) *Store {
	s := &Store{
		api:      api,
		session:  sess,
		exporter: exporter,
		log:      log,
	}
	sess.OnClear(s.Reset)
	return s
}

// Load fetches the full collection for the authenticated user,
// replacing the local one. An authorization failure invalidates the
// session and leaves the collection empty without surfacing an error;
// any other failure leaves the collection empty and is returned. No
// retry either way.
func (s *Store) Load(ctx context.Context) error {
	if !s.session.Active() {
		return nil
	}

	fetched, err := s.api.ListNotes(ctx)
	if err != nil {
		s.Reset()
		if client.IsAuthFailure(err) {
			s.session.Invalidate()
			return nil
		}
		return fmt.Errorf("load notes: %w", err)
	}

	s.mu.Lock()
	s.notes = fetched
	s.mu.Unlock()
	return nil
}

// Add creates a note from the trimmed content and prepends it to the
// collection, then requests remote creation in the background. Blank
// content or a missing session is a silent no-op returning nil. A dated
// note is additionally handed to the exporter, regardless of how the
// remote creation turns out.
func (s *Store) Add(content string, color models.NoteColor, endDate string) *models.Note {
	content = strings.TrimSpace(content)
	if content == "" || !s.session.Active() {
		return nil
	}

	note := models.Note{
		ID:        id.New(),
		Content:   content,
		CreatedAt: time.Now().UnixMilli(),
		Color:     color,
		EndDate:   endDate,
		Status:    models.StatusActive,
	}

	s.mu.Lock()
	s.notes = append([]models.Note{note}, s.notes...)
	s.mu.Unlock()

	s.dispatch("create", func(ctx context.Context) error {
		_, err := s.api.CreateNote(ctx, note)
		return err
	})

	if note.EndDate != "" && s.exporter != nil {
		s.exporter.Export(note)
	}

	return &note
}

// Remove deletes the note locally (removing an absent ID is a no-op on
// local state) and requests remote deletion in the background.
func (s *Store) Remove(noteID string) {
	if !s.session.Active() {
		return
	}

	s.mu.Lock()
	for i, n := range s.notes {
		if n.ID == noteID {
			s.notes = append(s.notes[:i], s.notes[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	s.dispatch("delete", func(ctx context.Context) error {
		return s.api.DeleteNote(ctx, noteID)
	})
}

// SetStatus replaces the status of the matching note in place, keeping
// every other field and the collection order, then requests a partial
// remote update in the background.
func (s *Store) SetStatus(noteID string, status models.NoteStatus) {
	if !s.session.Active() {
		return
	}

	s.mu.Lock()
	for i := range s.notes {
		if s.notes[i].ID == noteID {
			s.notes[i].Status = status
			break
		}
	}
	s.mu.Unlock()

	s.dispatch("update", func(ctx context.Context) error {
		_, err := s.api.UpdateNoteStatus(ctx, noteID, status)
		return err
	})
}

// Notes returns a snapshot of the collection in its current order.
func (s *Store) Notes() []models.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Note, len(s.notes))
	copy(out, s.notes)
	return out
}

// Reset drops the collection.
func (s *Store) Reset() {
	s.mu.Lock()
	s.notes = nil
	s.mu.Unlock()
}

// Wait blocks until every in-flight background remote call has
// completed. Short-lived processes call it before exiting so optimistic
// writes reach the remote store; tests use it for determinism.
func (s *Store) Wait() {
	s.inflight.Wait()
}

// dispatch runs a remote call on a detached goroutine. The call is
// never retried and its outcome never blocks or reorders local
// mutations. Completions from a superseded session are dropped.
func (s *Store) dispatch(op string, call func(context.Context) error) {
	epoch := s.session.Epoch()
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()

		err := call(context.Background())
		if err == nil {
			return
		}
		if s.session.Epoch() != epoch {
			s.log.Debug().Str("op", op).Msg("dropping completion from superseded session")
			return
		}
		if client.IsAuthFailure(err) {
			s.session.Invalidate()
			return
		}
		s.log.Error().Err(err).Str("op", op).Msg("remote call failed, keeping local state")
	}()
}
