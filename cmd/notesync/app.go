package main

import (
	"context"
	"errors"
	"os"

	"github.com/rs/zerolog"

	"github.com/notemanager/notesync/pkg/calendar"
	"github.com/notemanager/notesync/pkg/client"
	"github.com/notemanager/notesync/pkg/config"
	"github.com/notemanager/notesync/pkg/keystore"
	"github.com/notemanager/notesync/pkg/logger"
	"github.com/notemanager/notesync/pkg/notes"
	"github.com/notemanager/notesync/pkg/session"
)

var errNotSignedIn = errors.New(`not signed in; run "notesync login" first`)

// app wires the full client stack for one CLI invocation.
type app struct {
	keys    *keystore.Store
	api     *client.Client
	session *session.Manager
	store   *notes.Store
	log     zerolog.Logger
}

func newApp() (*app, error) {
	cfg, err := config.Load("")
	if err != nil {
		return nil, err
	}

	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	build := logger.New().Level(level).ToWriter(zerolog.ConsoleWriter{Out: os.Stderr})
	if cfg.LogPath != "" {
		build = build.ToPath(cfg.LogPath)
	}
	log, err := build.Make()
	if err != nil {
		return nil, err
	}

	keys, err := keystore.Open(cfg.CredentialsPath)
	if err != nil {
		return nil, err
	}

	api := client.New(cfg.ServerURL)
	sess := session.New(api, keys, log)
	exporter := &calendar.Exporter{Log: log}

	return &app{
		keys:    keys,
		api:     api,
		session: sess,
		store:   notes.New(api, sess, exporter, log),
		log:     log,
	}, nil
}

// close drains in-flight background writes before the process exits, so
// optimistic mutations reach the server even from a short-lived command.
func (a *app) close() {
	a.store.Wait()
	_ = a.keys.Close()
}

// restore picks up the persisted session, failing when there is none.
func (a *app) restore(ctx context.Context) error {
	if !a.session.Restore(ctx) {
		return errNotSignedIn
	}
	return nil
}
