// internal/storage/audit_store.go
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TimestampLayout is the stem of every audit artifact, e.g. "2024-03-07 14.05.09"
const TimestampLayout = "2006-01-02 15.04.05"

// FileType tags an artifact for logging
type FileType int

const (
	FileTypeGeneric FileType = iota
	FileTypePDF
	FileTypeJSON
)

func (t FileType) String() string {
	switch t {
	case FileTypePDF:
		return "pdf"
	case FileTypeJSON:
		return "json"
	default:
		return "generic"
	}
}

// FileStorage defines the write side of the audit directory
type FileStorage interface {
	// SaveFileWithType writes content to fullPath, creating parent directories.
	// The artifact type is recorded in logs.
	SaveFileWithType(fullPath string, content []byte, fileType FileType) error

	// ValidatePath checks that fullPath stays inside the store
	ValidatePath(fullPath string) error
}

// Artifacts names the three files one fill request leaves behind
type Artifacts struct {
	Stamp     string
	InputPDF  string
	DataJSON  string
	OutputPDF string
}

// FieldLogPath is where the fill process writes its per-field log next to the output
func (a Artifacts) FieldLogPath() string {
	return strings.TrimSuffix(a.OutputPDF, filepath.Ext(a.OutputPDF)) + "_log.json"
}

// AuditStore keeps the durable per-request copies of input, data and output
type AuditStore struct {
	baseDir string
	logger  *zap.Logger
	now     func() time.Time

	mu       sync.Mutex
	reserved map[string]struct{}
}

// NewAuditStore creates an AuditStore rooted at baseDir
func NewAuditStore(baseDir string, logger *zap.Logger) *AuditStore {
	return &AuditStore{
		baseDir:  baseDir,
		logger:   logger,
		now:      time.Now,
		reserved: make(map[string]struct{}),
	}
}

// Dir returns the audit directory
func (s *AuditStore) Dir() string {
	return s.baseDir
}

// EnsureDir creates the audit directory if it is missing
func (s *AuditStore) EnsureDir() error {
	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		s.logger.Error("Failed to create audit directory",
			zap.String("path", s.baseDir),
			zap.Error(err))
		return fmt.Errorf("failed to create audit directory: %w", err)
	}
	return nil
}

// FormatTimestamp renders t in the audit stem layout
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// Reserve picks a fresh stem for one request. When another request in the same
// second already claimed the plain timestamp, a short uuid suffix is appended.
func (s *AuditStore) Reserve() (Artifacts, error) {
	stamp := FormatTimestamp(s.now())

	s.mu.Lock()
	defer s.mu.Unlock()

	s.prune(stamp)

	stem := stamp
	if s.taken(stem) {
		stem = stamp + "-" + uuid.NewString()[:8]
	}
	s.reserved[stem] = struct{}{}

	a := Artifacts{
		Stamp:     stem,
		InputPDF:  filepath.Join(s.baseDir, stem+"-input.pdf"),
		DataJSON:  filepath.Join(s.baseDir, stem+"-datos.json"),
		OutputPDF: filepath.Join(s.baseDir, stem+"-output.pdf"),
	}
	if err := s.ValidatePath(a.InputPDF); err != nil {
		return Artifacts{}, err
	}

	s.logger.Debug("Reserved audit stem", zap.String("stem", stem))
	return a, nil
}

// prune forgets stems from earlier seconds; the files on disk still guard them
func (s *AuditStore) prune(stamp string) {
	for stem := range s.reserved {
		if !strings.HasPrefix(stem, stamp) {
			delete(s.reserved, stem)
		}
	}
}

// taken reports whether stem is in use by this process or already on disk
func (s *AuditStore) taken(stem string) bool {
	if _, ok := s.reserved[stem]; ok {
		return true
	}
	_, err := os.Stat(filepath.Join(s.baseDir, stem+"-input.pdf"))
	return err == nil
}

// SaveFileWithType writes content with type-specific logging
func (s *AuditStore) SaveFileWithType(fullPath string, content []byte, fileType FileType) error {
	if err := s.ValidatePath(fullPath); err != nil {
		return err
	}

	parentDir := filepath.Dir(fullPath)
	if err := os.MkdirAll(parentDir, 0755); err != nil {
		s.logger.Error("Failed to create parent directories",
			zap.String("path", parentDir),
			zap.Error(err))
		return fmt.Errorf("failed to create directories: %w", err)
	}

	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		s.logger.Error("Failed to write file",
			zap.String("path", fullPath),
			zap.Error(err))
		return fmt.Errorf("failed to write file: %w", err)
	}

	s.logger.Debug("Audit file saved",
		zap.String("path", fullPath),
		zap.Int("size", len(content)),
		zap.Stringer("file_type", fileType))

	return nil
}

// ValidatePath checks that the path is safe and within the audit directory
func (s *AuditStore) ValidatePath(fullPath string) error {
	return validateWithin(s.baseDir, fullPath)
}

func validateWithin(baseDir, fullPath string) error {
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return fmt.Errorf("failed to resolve base path: %w", err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) && absPath != absBase {
		return fmt.Errorf("%w: %s", ErrPathEscapesBase, fullPath)
	}

	return nil
}
