package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ArtifactManager owns the on-disk layout for exported transcript artifacts.
type ArtifactManager struct {
	baseDir string
	pdfDir  string
}

func NewArtifactManager(baseDir string) (*ArtifactManager, error) {
	am := &ArtifactManager{
		baseDir: baseDir,
		pdfDir:  filepath.Join(baseDir, "pdf"),
	}

	for _, dir := range []string{am.baseDir, am.pdfDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	return am, nil
}

// PDFPath maps a meeting id to its exported PDF location. The id is
// sanitized so a hostile meetingId cannot escape the pdf directory.
func (am *ArtifactManager) PDFPath(meetingID string) string {
	return filepath.Join(am.pdfDir, sanitizeID(meetingID)+".pdf")
}

func sanitizeID(id string) string {
	var b strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}

	name := strings.Trim(b.String(), ".")
	if name == "" {
		name = "meeting"
	}
	return name
}
