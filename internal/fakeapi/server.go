// Package fakeapi implements an in-process fake of the NoteManager
// remote APIs for tests: the auth endpoints under /api/auth and the note
// collection under /api/notes, with the same status codes and error
// payloads as the real server.
//
// The fake keeps everything in memory and adds two fault knobs: token
// revocation (turns every authenticated call into a 403) and a forced
// status for the note endpoints (for transport-failure scenarios).
package fakeapi

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/notemanager/notesync/pkg/models"
)

// Server is the fake API. Zero value is not usable; call NewServer.
type Server struct {
	router *mux.Router

	mu           sync.Mutex
	users        map[string]string        // email -> password
	tokens       map[string]string        // token -> email
	notes        map[string][]models.Note // email -> owned notes
	noteRequests int
	failNotes    int           // forced status for note endpoints, 0 = disabled
	holdNotes    chan struct{} // when set, note endpoints block until it closes
}

// NewServer builds a fake API with no users and no notes.
func NewServer() *Server {
	s := &Server{
		users:  make(map[string]string),
		tokens: make(map[string]string),
		notes:  make(map[string][]models.Note),
	}

	r := mux.NewRouter()
	r.HandleFunc("/api/auth/signup", s.handleSignup).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/api/notes", s.authenticated(s.handleListNotes)).Methods(http.MethodGet)
	r.HandleFunc("/api/notes", s.authenticated(s.handleCreateNote)).Methods(http.MethodPost)
	r.HandleFunc("/api/notes/{id}", s.authenticated(s.handleUpdateNote)).Methods(http.MethodPut)
	r.HandleFunc("/api/notes/{id}", s.authenticated(s.handleDeleteNote)).Methods(http.MethodDelete)
	s.router = r

	return s
}

// Handler returns the fake's HTTP handler, ready for httptest.NewServer.
func (s *Server) Handler() http.Handler { return s.router }

// AddUser registers an account without going through signup.
func (s *Server) AddUser(email, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[email] = password
}

// RevokeAll invalidates every issued token, so the next authenticated
// request fails with 403 as an expired credential would.
func (s *Server) RevokeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = make(map[string]string)
}

// FailNotesWith forces every note endpoint to answer with the given
// status. Pass 0 to restore normal behavior.
func (s *Server) FailNotesWith(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNotes = status
}

// HoldNotes makes every note-endpoint request block until the returned
// release function is called. Used to keep a background remote call
// in flight while the test switches sessions underneath it.
func (s *Server) HoldNotes() (release func()) {
	ch := make(chan struct{})
	s.mu.Lock()
	s.holdNotes = ch
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			s.holdNotes = nil
			s.mu.Unlock()
			close(ch)
		})
	}
}

// NoteRequests reports how many note-endpoint requests were received,
// including failed and rejected ones.
func (s *Server) NoteRequests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.noteRequests
}

// Notes returns a copy of the notes stored for email, in insertion order.
func (s *Server) Notes(email string) []models.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Note, len(s.notes[email]))
	copy(out, s.notes[email])
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[req.Email]; exists {
		writeMessage(w, http.StatusBadRequest, "Email already in use")
		return
	}
	s.users[req.Email] = req.Password
	writeMessage(w, http.StatusCreated, "User created successfully")
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	password, exists := s.users[req.Email]
	if !exists || password != req.Password {
		writeMessage(w, http.StatusBadRequest, "Invalid email or password")
		return
	}

	token := uuid.NewString()
	s.tokens[token] = req.Email
	writeJSON(w, http.StatusOK, models.Session{Token: token, Email: req.Email})
}

// authenticated wraps a note handler with bearer-token checking and the
// configured fault knobs. A missing token is a 401, an unknown or
// revoked one a 403, matching the real server.
func (s *Server) authenticated(next func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.noteRequests++
		forced := s.failNotes
		hold := s.holdNotes
		s.mu.Unlock()

		if hold != nil {
			<-hold
		}

		if forced != 0 {
			writeMessage(w, forced, "injected failure")
			return
		}

		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if token == "" || token == r.Header.Get("Authorization") {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		s.mu.Lock()
		email, ok := s.tokens[token]
		s.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusForbidden)
			return
		}

		next(w, r, email)
	}
}

func (s *Server) handleListNotes(w http.ResponseWriter, _ *http.Request, email string) {
	s.mu.Lock()
	notes := make([]models.Note, len(s.notes[email]))
	copy(notes, s.notes[email])
	s.mu.Unlock()

	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].CreatedAt > notes[j].CreatedAt
	})
	writeJSON(w, http.StatusOK, notes)
}

func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request, email string) {
	var note models.Note
	if err := json.NewDecoder(r.Body).Decode(&note); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid note")
		return
	}

	s.mu.Lock()
	s.notes[email] = append(s.notes[email], note)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, note)
}

func (s *Server) handleUpdateNote(w http.ResponseWriter, r *http.Request, email string) {
	noteID := mux.Vars(r)["id"]

	var req struct {
		Status models.NoteStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid update")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, note := range s.notes[email] {
		if note.ID == noteID {
			s.notes[email][i].Status = req.Status
			writeJSON(w, http.StatusOK, s.notes[email][i])
			return
		}
	}
	writeMessage(w, http.StatusNotFound, "Note not found")
}

func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request, email string) {
	noteID := mux.Vars(r)["id"]

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, note := range s.notes[email] {
		if note.ID == noteID {
			s.notes[email] = append(s.notes[email][:i], s.notes[email][i+1:]...)
			writeMessage(w, http.StatusOK, "Note deleted")
			return
		}
	}
	writeMessage(w, http.StatusNotFound, "Note not found")
}
