// Package calendar turns a dated note into a Google Calendar deep link
// and hands it to the system browser. Export is one-way: nothing about
// its outcome flows back into the note collection.
package calendar

import (
	"net/url"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/notemanager/notesync/pkg/models"
)

// titleLimit is how much of the note content becomes the event title.
const titleLimit = 60

// EventURL builds the calendar link for a dated note: an all-day event
// spanning the note's end date, titled with the first 60 characters of
// the content and carrying the full content as details. Returns false
// when the note has no end date or the date does not parse.
func EventURL(note models.Note) (string, bool) {
	if note.EndDate == "" {
		return "", false
	}

	day, err := time.Parse(models.EndDateLayout, note.EndDate)
	if err != nil {
		return "", false
	}

	title := note.Content
	if runes := []rune(title); len(runes) > titleLimit {
		title = string(runes[:titleLimit])
	}

	start := day.Format("20060102")
	end := day.AddDate(0, 0, 1).Format("20060102")

	var b strings.Builder
	b.WriteString("https://calendar.google.com/calendar/render?action=TEMPLATE")
	b.WriteString("&text=" + url.QueryEscape(title))
	b.WriteString("&details=" + url.QueryEscape(note.Content))
	b.WriteString("&dates=" + start + "/" + end)

	return b.String(), true
}

// Exporter opens calendar links externally. The zero OpenURL launches
// the system browser; tests substitute their own.
type Exporter struct {
	OpenURL func(rawURL string) error
	Log     zerolog.Logger
}

// Export opens the calendar link for note, if it has an end date. Fire
// and forget: failures are logged and never reported to the caller.
func (e *Exporter) Export(note models.Note) {
	rawURL, ok := EventURL(note)
	if !ok {
		return
	}

	open := e.OpenURL
	if open == nil {
		open = openBrowser
	}
	if err := open(rawURL); err != nil {
		e.Log.Warn().Err(err).Str("note", note.ID).Msg("could not open calendar link")
	}
}

func openBrowser(rawURL string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", rawURL).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", rawURL).Start()
	default:
		return exec.Command("xdg-open", rawURL).Start()
	}
}
