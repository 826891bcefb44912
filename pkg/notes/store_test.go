package notes_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notemanager/notesync/internal/fakeapi"
	"github.com/notemanager/notesync/pkg/client"
	"github.com/notemanager/notesync/pkg/filter"
	"github.com/notemanager/notesync/pkg/keystore"
	"github.com/notemanager/notesync/pkg/models"
	"github.com/notemanager/notesync/pkg/notes"
	"github.com/notemanager/notesync/pkg/session"
)

type stubExporter struct {
	exported []models.Note
}

func (e *stubExporter) Export(n models.Note) {
	e.exported = append(e.exported, n)
}

type harness struct {
	fake     *fakeapi.Server
	api      *client.Client
	mgr      *session.Manager
	store    *notes.Store
	exporter *stubExporter
}

// newHarness wires the full client stack against the fake API, with
// alice registered but not signed in.
func newHarness(t *testing.T) *harness {
	t.Helper()

	fake := fakeapi.NewServer()
	srv := httptest.NewServer(fake.Handler())
	t.Cleanup(srv.Close)

	keys, err := keystore.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = keys.Close() })

	api := client.New(srv.URL)
	mgr := session.New(api, keys, zerolog.Nop())
	exporter := &stubExporter{}

	fake.AddUser("alice@example.com", "s3cret")

	return &harness{
		fake:     fake,
		api:      api,
		mgr:      mgr,
		store:    notes.New(api, mgr, exporter, zerolog.Nop()),
		exporter: exporter,
	}
}

func (h *harness) signIn(t *testing.T) {
	t.Helper()
	require.NoError(t, h.mgr.SignIn(context.Background(), "alice@example.com", "s3cret"))
}

func TestAddGeneralNote(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)

	added := h.store.Add("Buy milk", models.ColorWhite, "")
	require.NotNil(t, added)

	got := h.store.Notes()
	require.Len(t, got, 1)
	assert.Equal(t, "Buy milk", got[0].Content)
	assert.Equal(t, models.StatusActive, got[0].Status)
	assert.Empty(t, got[0].EndDate)
	assert.NotEmpty(t, got[0].ID)
	assert.NotZero(t, got[0].CreatedAt)

	c := filter.Count(got)
	assert.Equal(t, filter.Counts{General: 1}, c)

	// The optimistic write reaches the remote store.
	h.store.Wait()
	remote := h.fake.Notes("alice@example.com")
	require.Len(t, remote, 1)
	assert.Equal(t, added.ID, remote[0].ID)
}

func TestAddTrimsContent(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)

	added := h.store.Add("  keep the middle  ", models.ColorBlue, "")
	require.NotNil(t, added)
	assert.Equal(t, "keep the middle", added.Content)
}

func TestAddBlankContentIsSilentNoOp(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)
	before := h.fake.NoteRequests()

	assert.Nil(t, h.store.Add("", models.ColorWhite, ""))
	assert.Nil(t, h.store.Add("   \t\n", models.ColorWhite, ""))

	h.store.Wait()
	assert.Empty(t, h.store.Notes())
	assert.Equal(t, before, h.fake.NoteRequests(), "no remote call for rejected content")
}

func TestAddWithoutSessionIsNoOp(t *testing.T) {
	h := newHarness(t)

	assert.Nil(t, h.store.Add("orphan", models.ColorWhite, ""))
	h.store.Wait()
	assert.Empty(t, h.store.Notes())
	assert.Zero(t, h.fake.NoteRequests())
}

func TestFailedLoginIssuesNoNoteCalls(t *testing.T) {
	h := newHarness(t)

	err := h.mgr.SignIn(context.Background(), "alice@example.com", "wrong")
	require.ErrorIs(t, err, client.ErrInvalidCredentials)

	assert.False(t, h.mgr.Active())
	assert.Empty(t, h.store.Notes())
	assert.Zero(t, h.fake.NoteRequests())
}

func TestNewestNotePrepended(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)

	h.store.Add("first", models.ColorWhite, "")
	h.store.Add("second", models.ColorWhite, "")
	h.store.Add("third", models.ColorWhite, "")

	got := h.store.Notes()
	require.Len(t, got, 3)
	assert.Equal(t, "third", got[0].Content)
	assert.Equal(t, "second", got[1].Content)
	assert.Equal(t, "first", got[2].Content)
}

func TestMutationSequence(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)

	a := h.store.Add("a", models.ColorWhite, "")
	b := h.store.Add("b", models.ColorYellow, "2024-05-01")
	c := h.store.Add("c", models.ColorRed, "")
	h.store.Wait() // creates reach the remote before the updates race them

	h.store.SetStatus(b.ID, models.StatusPending)
	h.store.SetStatus(b.ID, models.StatusDone)
	h.store.Remove(a.ID)

	got := h.store.Notes()
	require.Len(t, got, 2)
	assert.Equal(t, c.ID, got[0].ID)
	assert.Equal(t, b.ID, got[1].ID)
	assert.Equal(t, models.StatusDone, got[1].Status, "latest SetStatus value wins")

	h.store.Wait()
	assert.Len(t, h.fake.Notes("alice@example.com"), 2)
}

func TestRemoveAbsentIDKeepsCollection(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)

	h.store.Add("keep", models.ColorWhite, "")
	h.store.Remove("does-not-exist")

	got := h.store.Notes()
	require.Len(t, got, 1)
	assert.Equal(t, "keep", got[0].Content)
}

func TestSetStatusPreservesFieldsAndOrder(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)

	h.store.Add("a", models.ColorWhite, "")
	b := h.store.Add("b", models.ColorPurple, "2024-05-01")
	h.store.Add("c", models.ColorWhite, "")

	h.store.SetStatus(b.ID, models.StatusPending)

	got := h.store.Notes()
	require.Len(t, got, 3)
	assert.Equal(t, b.ID, got[1].ID, "updates do not reorder")
	assert.Equal(t, models.StatusPending, got[1].Status)
	assert.Equal(t, "b", got[1].Content)
	assert.Equal(t, models.ColorPurple, got[1].Color)
	assert.Equal(t, "2024-05-01", got[1].EndDate)
	assert.Equal(t, b.CreatedAt, got[1].CreatedAt)
}

func TestLoadInheritsServerOrder(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)

	// Seed the remote store directly, out of creation order.
	for _, n := range []models.Note{
		{ID: "old", Content: "old", CreatedAt: 100, Color: models.ColorWhite, Status: models.StatusActive},
		{ID: "new", Content: "new", CreatedAt: 300, Color: models.ColorWhite, Status: models.StatusActive},
		{ID: "mid", Content: "mid", CreatedAt: 200, Color: models.ColorWhite, Status: models.StatusActive},
	} {
		_, err := h.api.CreateNote(context.Background(), n)
		require.NoError(t, err)
	}

	require.NoError(t, h.store.Load(context.Background()))

	got := h.store.Notes()
	require.Len(t, got, 3)
	assert.Equal(t, []string{"new", "mid", "old"}, []string{got[0].ID, got[1].ID, got[2].ID})
}

func TestLoadReplacesLocalCollection(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)

	h.store.Add("local only", models.ColorWhite, "")
	h.store.Wait()

	require.NoError(t, h.store.Load(context.Background()))
	got := h.store.Notes()
	require.Len(t, got, 1)
	assert.Equal(t, "local only", got[0].Content)
}

func TestLoadAuthFailureInvalidatesQuietly(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)
	h.store.Add("about to vanish", models.ColorWhite, "")
	h.store.Wait()

	h.fake.RevokeAll()

	err := h.store.Load(context.Background())
	require.NoError(t, err, "authorization failure must not surface")
	assert.False(t, h.mgr.Active(), "session torn down")
	assert.Empty(t, h.store.Notes())
}

func TestLoadTransportFailureReportsAndLeavesEmpty(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)

	h.fake.FailNotesWith(500)
	err := h.store.Load(context.Background())
	require.Error(t, err)

	assert.True(t, h.mgr.Active(), "non-auth failure keeps the session")
	assert.Empty(t, h.store.Notes())
}

func TestFailedRemoteCreateKeepsOptimisticNote(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)

	h.fake.FailNotesWith(500)
	added := h.store.Add("still here", models.ColorWhite, "")
	require.NotNil(t, added)

	h.store.Wait()

	got := h.store.Notes()
	require.Len(t, got, 1, "no rollback on remote failure")
	assert.Equal(t, added.ID, got[0].ID)
	assert.True(t, h.mgr.Active())
	assert.Empty(t, h.fake.Notes("alice@example.com"))
}

func TestAuthFailureOnWriteForcesLogout(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)

	h.fake.RevokeAll()
	h.store.Add("rejected upstream", models.ColorWhite, "")
	h.store.Wait()

	assert.False(t, h.mgr.Active())
	assert.Empty(t, h.store.Notes(), "collection cleared with the session")
}

func TestStaleCompletionFromPreviousSessionIsDropped(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)

	release := h.fake.HoldNotes()
	h.store.Add("from the old session", models.ColorWhite, "")

	// Switch sessions while the create is still in flight. The old
	// token is revoked, so the held request will come back 403.
	h.fake.RevokeAll()
	h.mgr.SignOut()
	h.signIn(t)

	release()
	h.store.Wait()

	assert.True(t, h.mgr.Active(), "stale 403 must not tear down the new session")
	assert.Empty(t, h.store.Notes())
}

func TestDatedAddExportsToCalendar(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)

	h.store.Add("undated", models.ColorWhite, "")
	dated := h.store.Add("dated", models.ColorGreen, "2024-05-01")

	require.Len(t, h.exporter.exported, 1)
	assert.Equal(t, dated.ID, h.exporter.exported[0].ID)
	assert.Equal(t, "2024-05-01", h.exporter.exported[0].EndDate)
}

func TestExportHappensEvenWhenRemoteCreateFails(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)

	h.fake.FailNotesWith(500)
	h.store.Add("dated", models.ColorGreen, "2024-05-01")
	h.store.Wait()

	assert.Len(t, h.exporter.exported, 1, "export is independent of the remote outcome")
}

func TestLogoutClearsCollection(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)

	h.store.Add("gone on logout", models.ColorWhite, "")
	h.store.Wait()
	h.mgr.SignOut()

	assert.Empty(t, h.store.Notes())
}
