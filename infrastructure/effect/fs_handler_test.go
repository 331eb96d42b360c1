package effect_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShaheerHaq03/Desktop-AI-Assistant/domain/entities"
	"github.com/ShaheerHaq03/Desktop-AI-Assistant/infrastructure/effect"
)

func TestFSHandler_Read(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	h := effect.NewFSHandler()
	req := entities.NewActionRequest(entities.ActionFileRead, path)

	result, err := h.Perform(context.Background(), req, path)
	require.NoError(t, err)
	assert.Equal(t, "hello", result.Data["content"])
	assert.Equal(t, 5, result.Data["size"])
}

func TestFSHandler_ReadMissingFileFails(t *testing.T) {
	h := effect.NewFSHandler()
	path := filepath.Join(t.TempDir(), "missing.txt")
	req := entities.NewActionRequest(entities.ActionFileRead, path)

	_, err := h.Perform(context.Background(), req, path)
	assert.Error(t, err)
}

func TestFSHandler_WriteNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.txt")
	h := effect.NewFSHandler()
	req := entities.NewActionRequest(entities.ActionFileWrite, path).WithPayload([]byte("content"))

	result, err := h.Perform(context.Background(), req, path)
	require.NoError(t, err)

	// No prior content: nothing replaced, no backup needed.
	assert.False(t, result.Replaced)
	assert.Empty(t, result.BackupHandle)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))
}

func TestFSHandler_OverwriteBacksUpFirst(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	h := effect.NewFSHandler()
	req := entities.NewActionRequest(entities.ActionFileWrite, path).WithPayload([]byte("new"))

	result, err := h.Perform(context.Background(), req, path)
	require.NoError(t, err)
	assert.True(t, result.Replaced)
	assert.Equal(t, path+effect.BackupSuffix, result.BackupHandle)

	backup, err := os.ReadFile(result.BackupHandle)
	require.NoError(t, err)
	assert.Equal(t, "old", string(backup))

	current, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(current))
}

func TestFSHandler_WriteCreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep", "nested", "a.txt")
	h := effect.NewFSHandler()
	req := entities.NewActionRequest(entities.ActionFileWrite, path).WithPayload([]byte("x"))

	_, err := h.Perform(context.Background(), req, path)
	require.NoError(t, err)

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestFSHandler_DeleteBacksUpFirst(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("doomed"), 0o644))

	h := effect.NewFSHandler()
	req := entities.NewActionRequest(entities.ActionFileDelete, path)

	result, err := h.Perform(context.Background(), req, path)
	require.NoError(t, err)
	assert.True(t, result.Replaced)
	assert.Equal(t, path+effect.BackupSuffix, result.BackupHandle)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))

	backup, err := os.ReadFile(result.BackupHandle)
	require.NoError(t, err)
	assert.Equal(t, "doomed", string(backup))
}

func TestFSHandler_DeleteMissingFileFails(t *testing.T) {
	h := effect.NewFSHandler()
	path := filepath.Join(t.TempDir(), "missing.txt")
	req := entities.NewActionRequest(entities.ActionFileDelete, path)

	_, err := h.Perform(context.Background(), req, path)
	assert.Error(t, err)
}

func TestFSHandler_List(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("x"), 0o644))

	h := effect.NewFSHandler()
	req := entities.NewActionRequest(entities.ActionFileList, dir)

	result, err := h.Perform(context.Background(), req, dir)
	require.NoError(t, err)

	files, ok := result.Data["files"].([]string)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"a.txt", "b.txt"}, files)
}

func TestFSHandler_FindByPattern(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "report.pdf"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "draft.pdf"), []byte("x"), 0o644))

	h := effect.NewFSHandler()
	req := entities.NewActionRequest(entities.ActionFileFind, dir).WithDetail("*.pdf")

	result, err := h.Perform(context.Background(), req, dir)
	require.NoError(t, err)

	matches, ok := result.Data["matches"].([]string)
	require.True(t, ok)
	assert.Len(t, matches, 2)
}

func TestFSHandler_FindBySubstring(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Meeting-Notes.md"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.md"), []byte("x"), 0o644))

	h := effect.NewFSHandler()
	req := entities.NewActionRequest(entities.ActionFileFind, dir).WithDetail("notes")

	result, err := h.Perform(context.Background(), req, dir)
	require.NoError(t, err)

	matches, ok := result.Data["matches"].([]string)
	require.True(t, ok)
	require.Len(t, matches, 1)
	assert.Contains(t, matches[0], "Meeting-Notes.md")
}

func TestFSHandler_UnsupportedKindFails(t *testing.T) {
	h := effect.NewFSHandler()
	req := entities.NewActionRequest(entities.ActionScreenshot, "")

	_, err := h.Perform(context.Background(), req, "")
	assert.Error(t, err)
}

func TestFSHandler_CancelledContext(t *testing.T) {
	h := effect.NewFSHandler()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	path := filepath.Join(t.TempDir(), "a.txt")
	req := entities.NewActionRequest(entities.ActionFileRead, path)

	_, err := h.Perform(ctx, req, path)
	assert.Error(t, err)
}
