package filestore

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/autograde/go-grader/archive"
)

type fileLocalStore struct {
	dir  string            // directory to store file
	name map[string]string // id to name mapping
	mu   sync.RWMutex
}

// NewFileLocalStore create new local file store
func NewFileLocalStore(dir string) FileStore {
	return &fileLocalStore{
		dir:  filepath.Clean(dir),
		name: make(map[string]string),
	}
}

// Add stores the archive. The id keeps the archive extension of name so that
// the stored file could be extracted by its path.
func (s *fileLocalStore) Add(name string, r io.Reader) (string, error) {
	name = filepath.Base(filepath.Clean("/" + filepath.ToSlash(name)))
	if name == "/" {
		name = "upload"
	}
	ext := ""
	if f := archive.DetectFormat(name); f != archive.FormatUnknown {
		ext = "." + f.String()
	}

	f, id, err := s.newFile(ext)
	if err != nil {
		return "", err
	}
	_, err = io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(f.Name())
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.name[id] = name
	return id, nil
}

func (s *fileLocalStore) Get(id string) (string, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !validID(id) {
		return "", "", false
	}
	p := filepath.Join(s.dir, id)
	if _, err := os.Stat(p); err != nil {
		return "", "", false
	}
	name, ok := s.name[id]
	if !ok {
		name = id
	}
	return name, p, true
}

func (s *fileLocalStore) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.name, id)
	if !validID(id) {
		return false
	}
	return os.Remove(filepath.Join(s.dir, id)) == nil
}

func (s *fileLocalStore) List() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fi, err := os.ReadDir(s.dir)
	if err != nil {
		return nil
	}

	names := make(map[string]string, len(fi))
	for _, f := range fi {
		if f.IsDir() {
			continue
		}
		names[f.Name()] = s.name[f.Name()]
	}
	return names
}

func (s *fileLocalStore) newFile(ext string) (*os.File, string, error) {
	for range [50]struct{}{} {
		id, err := generateID()
		if err != nil {
			return nil, "", err
		}
		id += ext
		f, err := os.OpenFile(filepath.Join(s.dir, id), os.O_CREATE|os.O_RDWR|os.O_EXCL, 0o644)
		if err == nil {
			return f, id, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, "", err
		}
	}
	return nil, "", errUniqueIDNotGenerated
}

func validID(id string) bool {
	return id != "" && !strings.ContainsAny(id, `/\`) && id != "." && id != ".."
}
