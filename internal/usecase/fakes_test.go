package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/safewatch/safewatch-analysis-service/internal/domain/entity"
	"github.com/safewatch/safewatch-analysis-service/internal/domain/port"
)

type fakeExtractor struct {
	frames     int
	err        error
	videoPaths []string
	mu         sync.Mutex
}

func (f *fakeExtractor) ExtractFrames(_ context.Context, videoPath, outputDir string) (*port.FrameExtractionResult, error) {
	f.mu.Lock()
	f.videoPaths = append(f.videoPaths, videoPath)
	f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, err
	}
	res := &port.FrameExtractionResult{FPS: 30, Stride: 60}
	for i := 1; i <= f.frames; i++ {
		p := filepath.Join(outputDir, fmt.Sprintf("frame_%04d.jpg", i))
		if err := os.WriteFile(p, []byte(fmt.Sprintf("frame %d", i)), 0o644); err != nil {
			return nil, err
		}
		res.FramePaths = append(res.FramePaths, p)
	}
	res.FrameCount = len(res.FramePaths)
	return res, nil
}

type fakeBlobStore struct {
	mu         sync.Mutex
	objects    map[string][]byte
	putNames   []string
	failPutAt  int // 1-based; 0 disables
	puts       int
	deleteErr  error
	deleteCall int
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: map[string][]byte{}}
}

func (s *fakeBlobStore) Put(_ context.Context, localPath, objectName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts++
	if s.failPutAt > 0 && s.puts == s.failPutAt {
		return errors.New("bucket unavailable")
	}
	data, err := os.ReadFile(localPath)
	if err != nil {
		return err
	}
	s.objects[objectName] = data
	s.putNames = append(s.putNames, objectName)
	return nil
}

func (s *fakeBlobStore) Get(_ context.Context, objectName, destPath string) error {
	s.mu.Lock()
	data, ok := s.objects[objectName]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("object %s not found", objectName)
	}
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return err
	}
	return os.WriteFile(destPath, data, 0o644)
}

func (s *fakeBlobStore) Delete(_ context.Context, objectName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteCall++
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.objects, objectName)
	return nil
}

func (s *fakeBlobStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

type fakeModel struct {
	mu        sync.Mutex
	text      string
	genErr    error
	uploadErr error
	listErr   error
	models    []entity.ModelInfo
	uploaded  map[string]bool
	prompt    string
	images    int
	seq       int
}

func newFakeModel(text string) *fakeModel {
	return &fakeModel{text: text, uploaded: map[string]bool{}}
}

func (m *fakeModel) UploadImage(_ context.Context, localPath string) (*port.ModelFile, error) {
	if m.uploadErr != nil {
		return nil, m.uploadErr
	}
	if _, err := os.Stat(localPath); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	name := fmt.Sprintf("files/%d", m.seq)
	m.uploaded[name] = true
	return &port.ModelFile{Name: name, URI: "https://files.example/" + name, MIMEType: "image/jpeg"}, nil
}

func (m *fakeModel) DeleteFile(_ context.Context, file *port.ModelFile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.uploaded, file.Name)
	return nil
}

func (m *fakeModel) GenerateContent(_ context.Context, prompt string, images []*port.ModelFile) (string, error) {
	m.mu.Lock()
	m.prompt = prompt
	m.images = len(images)
	m.mu.Unlock()
	if m.genErr != nil {
		return "", m.genErr
	}
	return m.text, nil
}

func (m *fakeModel) ListModels(context.Context) ([]entity.ModelInfo, error) {
	return m.models, m.listErr
}

func (m *fakeModel) live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.uploaded)
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []entity.RiskEvent
	err    error
}

func (n *fakeNotifier) NotifyRisk(_ context.Context, event entity.RiskEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return n.err
}
