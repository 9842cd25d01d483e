package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9\-_.]`)

// ScratchManager holds uploads while a request is in flight.
// Each request gets its own folder named after the request ID.
type ScratchManager struct {
	baseDir string
	logger  *zap.Logger
}

// NewScratchManager creates a ScratchManager rooted at baseDir
func NewScratchManager(baseDir string, logger *zap.Logger) *ScratchManager {
	return &ScratchManager{
		baseDir: baseDir,
		logger:  logger,
	}
}

// CreateRequestFolder creates {baseDir}/{requestID}/ and returns its path
func (m *ScratchManager) CreateRequestFolder(requestID string) (string, error) {
	safeName := SanitizeName(requestID)
	if safeName == "" {
		return "", fmt.Errorf("cannot create scratch folder: %w", ErrEmptyRequestID)
	}

	folderPath := filepath.Join(m.baseDir, safeName)
	if err := os.MkdirAll(folderPath, 0755); err != nil {
		m.logger.Error("Failed to create scratch folder",
			zap.String("request_id", requestID),
			zap.String("folder_path", folderPath),
			zap.Error(err))
		return "", fmt.Errorf("failed to create folder: %w", err)
	}

	return folderPath, nil
}

// Write stores one upload inside the request folder and returns its path
func (m *ScratchManager) Write(requestID, name string, content []byte) (string, error) {
	folder, err := m.CreateRequestFolder(requestID)
	if err != nil {
		return "", err
	}

	safeName := SanitizeName(name)
	if safeName == "" {
		safeName = "upload"
	}
	path := filepath.Join(folder, safeName)
	if err := validateWithin(m.baseDir, path); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return "", fmt.Errorf("failed to write scratch file: %w", err)
	}
	return path, nil
}

// DeleteRequestFolder removes a request folder and its contents
func (m *ScratchManager) DeleteRequestFolder(requestID string) error {
	folderPath := filepath.Join(m.baseDir, SanitizeName(requestID))
	if folderPath == filepath.Clean(m.baseDir) {
		return nil
	}

	if _, err := os.Stat(folderPath); os.IsNotExist(err) {
		return nil
	}

	if err := os.RemoveAll(folderPath); err != nil {
		m.logger.Error("Failed to delete scratch folder",
			zap.String("request_id", requestID),
			zap.String("folder_path", folderPath),
			zap.Error(err))
		return fmt.Errorf("failed to delete folder: %w", err)
	}
	return nil
}

// SanitizeName returns a filesystem-safe version of name
func SanitizeName(name string) string {
	name = strings.ReplaceAll(name, "..", "")
	name = strings.ReplaceAll(name, "/", "")
	name = strings.ReplaceAll(name, "\\", "")
	return unsafeNameChars.ReplaceAllString(name, "")
}
