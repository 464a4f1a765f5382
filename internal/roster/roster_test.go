package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskpad/internal/kvstore"
	"taskpad/internal/model"
)

func newRosterForTests(t *testing.T, dir string) *Service {
	t.Helper()
	store, err := kvstore.Open(dir)
	require.NoError(t, err)
	svc, err := NewService(store)
	require.NoError(t, err)
	return svc
}

func TestService_SeedsTwoEntries(t *testing.T) {
	svc := newRosterForTests(t, t.TempDir())

	entries := svc.List()
	require.Len(t, entries, 2)
	assert.Equal(t, Entry{ID: 1, Username: "admin", Role: model.RoleAdmin}, entries[0])
	assert.Equal(t, Entry{ID: 2, Username: "user", Role: model.RoleUser}, entries[1])
}

func TestService_AddEntry_ContinuesIDSequence(t *testing.T) {
	svc := newRosterForTests(t, t.TempDir())

	e, err := svc.AddEntry("carol", model.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, 3, e.ID)

	require.NoError(t, svc.DeleteEntry(3))
	e, err = svc.AddEntry("dave", model.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, 3, e.ID, "sequence continues from the last remaining entry")
}

func TestService_MutationsPersistAcrossRestart(t *testing.T) {
	dir := t.TempDir()
	svc := newRosterForTests(t, dir)

	_, err := svc.AddEntry("carol", model.RoleUser)
	require.NoError(t, err)
	require.NoError(t, svc.SetRole(2, model.RoleAdmin))
	require.NoError(t, svc.DeleteEntry(1))

	reloaded := newRosterForTests(t, dir)
	entries := reloaded.List()
	require.Len(t, entries, 2)
	assert.Equal(t, Entry{ID: 2, Username: "user", Role: model.RoleAdmin}, entries[0])
	assert.Equal(t, Entry{ID: 3, Username: "carol", Role: model.RoleUser}, entries[1])
}

func TestService_SeedIsNotPersistedUntilMutation(t *testing.T) {
	dir := t.TempDir()
	store, err := kvstore.Open(dir)
	require.NoError(t, err)
	_, err = NewService(store)
	require.NoError(t, err)

	var entries []Entry
	ok, err := store.Get("users", &entries)
	require.NoError(t, err)
	assert.False(t, ok, "defaults live in memory only")
}

func TestService_DeleteEntry_AbsentIDIsNoOp(t *testing.T) {
	svc := newRosterForTests(t, t.TempDir())

	require.NoError(t, svc.DeleteEntry(99))
	assert.Len(t, svc.List(), 2)
}

func TestService_SetRole_AbsentIDIsNoOp(t *testing.T) {
	svc := newRosterForTests(t, t.TempDir())

	require.NoError(t, svc.SetRole(99, model.RoleAdmin))

	entries := svc.List()
	assert.Equal(t, model.RoleAdmin, entries[0].Role)
	assert.Equal(t, model.RoleUser, entries[1].Role)
}
