package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestScratchManager_CreateRequestFolder(t *testing.T) {
	tempDir := t.TempDir()
	sm := NewScratchManager(tempDir, zap.NewNop())

	t.Run("creates folder for a uuid request ID", func(t *testing.T) {
		id := "6a3847a3-14f5-4c7e-a5d1-26c7fb0bf6ef"

		folderPath, err := sm.CreateRequestFolder(id)

		require.NoError(t, err)
		assert.DirExists(t, folderPath)
		assert.Equal(t, filepath.Join(tempDir, id), folderPath)
	})

	t.Run("is idempotent", func(t *testing.T) {
		p1, err := sm.CreateRequestFolder("REQ-1")
		require.NoError(t, err)
		p2, err := sm.CreateRequestFolder("REQ-1")
		require.NoError(t, err)
		assert.Equal(t, p1, p2)
	})

	t.Run("rejects empty ID", func(t *testing.T) {
		_, err := sm.CreateRequestFolder("")
		assert.ErrorIs(t, err, ErrEmptyRequestID)
	})

	t.Run("rejects ID that sanitizes to nothing", func(t *testing.T) {
		_, err := sm.CreateRequestFolder("../..")
		assert.ErrorIs(t, err, ErrEmptyRequestID)
	})
}

func TestScratchManager_Write(t *testing.T) {
	tempDir := t.TempDir()
	sm := NewScratchManager(tempDir, zap.NewNop())

	pdfPath, err := sm.Write("req-1", "form.pdf", []byte("%PDF"))
	require.NoError(t, err)
	jsonPath, err := sm.Write("req-1", "../datos.json", []byte("{}"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(tempDir, "req-1", "form.pdf"), pdfPath)
	assert.Equal(t, filepath.Join(tempDir, "req-1", "datos.json"), jsonPath)
	content, err := os.ReadFile(pdfPath)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF"), content)

	t.Run("unnamed upload gets a default name", func(t *testing.T) {
		p, err := sm.Write("req-1", "../", []byte("x"))
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(tempDir, "req-1", "upload"), p)
	})

	t.Run("folder removal leaves scratch empty", func(t *testing.T) {
		require.NoError(t, sm.DeleteRequestFolder("req-1"))
		entries, err := os.ReadDir(tempDir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func TestScratchManager_DeleteRequestFolder(t *testing.T) {
	tempDir := t.TempDir()
	sm := NewScratchManager(tempDir, zap.NewNop())

	folder, err := sm.CreateRequestFolder("DELETE-ME")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(folder, "f.pdf"), []byte("x"), 0644))

	require.NoError(t, sm.DeleteRequestFolder("DELETE-ME"))
	assert.NoDirExists(t, folder)

	// idempotent
	assert.NoError(t, sm.DeleteRequestFolder("NEVER-EXISTED"))

	// never removes the scratch root itself
	assert.NoError(t, sm.DeleteRequestFolder("../"))
	assert.DirExists(t, tempDir)
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"keeps valid characters", "ABC123-XYZ", "ABC123-XYZ"},
		{"removes path separators", "../../../etc/passwd", "etcpasswd"},
		{"removes special characters", "test<>:\"|?*file", "testfile"},
		{"keeps extension", "input.pdf", "input.pdf"},
		{"preserves underscores and hyphens", "test_file-name", "test_file-name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeName(tt.input))
		})
	}
}
