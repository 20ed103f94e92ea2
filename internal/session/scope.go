package session

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"sync"

	"go.uber.org/zap"
)

// Resource kinds registered on a Scope.
const (
	KindLocalFile = "local_file"
	KindLocalDir  = "local_dir"
	KindBlob      = "blob"
	KindModelFile = "model_file"
)

type ReleaseFunc func(ctx context.Context) error

type resource struct {
	kind    string
	name    string
	release ReleaseFunc
}

// Scope tracks every artifact created during a request and releases them in
// reverse order. One failing release never blocks the rest.
type Scope struct {
	mu        sync.Mutex
	resources []resource
	released  bool
	logger    *zap.Logger

	// OnFailure, when set, is called once per failed release.
	OnFailure func(kind string)
}

func NewScope(logger *zap.Logger) *Scope {
	return &Scope{logger: logger}
}

func (s *Scope) Register(kind, name string, release ReleaseFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resources = append(s.resources, resource{kind: kind, name: name, release: release})
}

// RegisterFile removes path on release; a file that is already gone counts
// as released.
func (s *Scope) RegisterFile(path string) {
	s.Register(KindLocalFile, path, func(context.Context) error {
		return ignoreNotExist(os.Remove(path))
	})
}

func (s *Scope) RegisterDir(path string) {
	s.Register(KindLocalDir, path, func(context.Context) error {
		return os.RemoveAll(path)
	})
}

func (s *Scope) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.resources)
}

// Release runs every registered release exactly once. Later calls are no-ops.
func (s *Scope) Release(ctx context.Context) {
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return
	}
	s.released = true
	resources := s.resources
	s.resources = nil
	s.mu.Unlock()

	for i := len(resources) - 1; i >= 0; i-- {
		s.releaseOne(ctx, resources[i])
	}
}

func (s *Scope) releaseOne(ctx context.Context, r resource) {
	defer func() {
		if p := recover(); p != nil {
			s.logger.Error("cleanup panicked",
				zap.String("kind", r.kind),
				zap.String("name", r.name),
				zap.Any("panic", p),
			)
			s.failed(r.kind)
		}
	}()

	if err := r.release(ctx); err != nil {
		s.logger.Warn("cleanup failed",
			zap.String("kind", r.kind),
			zap.String("name", r.name),
			zap.Error(err),
		)
		s.failed(r.kind)
		return
	}
	s.logger.Debug("released", zap.String("kind", r.kind), zap.String("name", r.name))
}

func (s *Scope) failed(kind string) {
	if s.OnFailure != nil {
		s.OnFailure(kind)
	}
}

func ignoreNotExist(err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
