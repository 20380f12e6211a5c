package mailer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/welldanyogia/webrana-mailsender/internal/errors"
	"github.com/welldanyogia/webrana-mailsender/internal/models"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestWorkingSet_AddIsIdempotent(t *testing.T) {
	ws := NewWorkingSet()
	alice := models.Recipient{Name: "Alice", Address: "alice@x.com"}

	ws.Add(alice)
	ws.Add(alice)

	assert.Equal(t, []models.Recipient{alice}, ws.Snapshot().Recipients)
	assert.True(t, ws.Contains(alice))
	assert.True(t, ws.HasRecipients())
}

func TestWorkingSet_RemoveAbsentIsNoop(t *testing.T) {
	ws := NewWorkingSet()
	alice := models.Recipient{Name: "Alice", Address: "alice@x.com"}
	bob := models.Recipient{Name: "Bob", Address: "bob@x.com"}
	ws.Add(alice)

	ws.Remove(bob)
	assert.True(t, ws.Contains(alice))

	ws.Remove(alice)
	assert.False(t, ws.HasRecipients())
}

func TestWorkingSet_SetAttachments(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.pdf", "%PDF")
	b := writeFile(t, dir, "b.txt", "hello")

	ws := NewWorkingSet()
	assert.Nil(t, ws.Snapshot().Attachments)
	assert.False(t, ws.HasAttachments())

	require.NoError(t, ws.SetAttachments([]string{a, b}))
	assert.Equal(t, []string{a, b}, ws.Snapshot().Attachments)
	assert.True(t, ws.HasAttachments())

	// Choosing again replaces the list.
	require.NoError(t, ws.SetAttachments([]string{b}))
	assert.Equal(t, []string{b}, ws.Snapshot().Attachments)
}

func TestWorkingSet_SetAttachmentsRejectsBadPaths(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "a.pdf", "%PDF")

	tests := []struct {
		name  string
		paths []string
	}{
		{"missing file", []string{good, filepath.Join(dir, "missing.pdf")}},
		{"directory", []string{dir}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := NewWorkingSet()
			require.NoError(t, ws.SetAttachments([]string{good}))

			err := ws.SetAttachments(tt.paths)

			assert.Equal(t, apperrors.KindInvalidFilePath, apperrors.KindOf(err))
			assert.Equal(t, []string{good}, ws.Snapshot().Attachments, "list unchanged")
		})
	}
}

func TestWorkingSet_SnapshotIsACopy(t *testing.T) {
	ws := NewWorkingSet()
	ws.Add(models.Recipient{Name: "Alice", Address: "alice@x.com"})

	snap := ws.Snapshot()
	snap.Recipients[0].Name = "Mallory"

	assert.Equal(t, "Alice", ws.Snapshot().Recipients[0].Name)
}

func TestWorkingSet_Clear(t *testing.T) {
	dir := t.TempDir()
	ws := NewWorkingSet()
	ws.Add(models.Recipient{Name: "Alice", Address: "alice@x.com"})
	require.NoError(t, ws.SetAttachments([]string{writeFile(t, dir, "a.pdf", "x")}))

	ws.Clear()

	assert.Equal(t, WorkingState{}, ws.Snapshot())
}
