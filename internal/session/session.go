// Package session scopes the temporary artifacts of one analysis request.
package session

import (
	"path"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

type Session struct {
	ID      string
	WorkDir string
}

// New allocates a fresh session under tempRoot. Nothing is created on disk.
func New(tempRoot string) *Session {
	id := uuid.NewString()
	return &Session{
		ID:      id,
		WorkDir: filepath.Join(tempRoot, id),
	}
}

// BlobName returns the object name for a local file, namespaced by session.
func (s *Session) BlobName(localPath string) string {
	return path.Join(s.ID, filepath.Base(localPath))
}

// UploadDir holds the client video, apart from the frames and staged dirs so
// no upload name can shadow them.
func (s *Session) UploadDir() string {
	return filepath.Join(s.WorkDir, "upload")
}

func (s *Session) FramesDir() string {
	return filepath.Join(s.WorkDir, "frames")
}

// StagedDir holds frame copies pulled back from the blob store.
func (s *Session) StagedDir() string {
	return filepath.Join(s.WorkDir, "staged")
}

// SafeFilename reduces a client-supplied name to a base name that cannot
// escape the session directory and carries no control characters.
func SafeFilename(name string) string {
	base := filepath.Base(filepath.Clean("/" + filepath.ToSlash(StripControl(name))))
	if base == "/" || base == "." || base == ".." {
		return "upload"
	}
	return base
}

// StripControl replaces control characters (CR and LF included) with '_'.
func StripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return '_'
		}
		return r
	}, s)
}
