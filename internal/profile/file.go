package profile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// document is the on-disk layout: one map of values per profile name.
//
//	profiles:
//	  default:
//	    queen_session_id: sess_1718000000000_ab12cd34e
type document struct {
	Profiles map[string]map[string]string `yaml:"profiles"`
}

// FileStore keeps values in a YAML file shared by several named profiles.
// Every operation rereads the file so separate CLI invocations see each
// other's writes.
type FileStore struct {
	path    string
	profile string
	mu      sync.Mutex
}

// NewFileStore creates a FileStore for profile inside path. The file is
// created on first write.
func NewFileStore(path, profile string) *FileStore {
	return &FileStore{path: path, profile: profile}
}

func (s *FileStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return "", err
	}
	v, ok := doc.Profiles[s.profile][key]
	if !ok {
		return "", notFound(key)
	}
	return v, nil
}

func (s *FileStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	values := doc.Profiles[s.profile]
	if values == nil {
		values = make(map[string]string)
		doc.Profiles[s.profile] = values
	}
	values[key] = value
	return s.write(doc)
}

func (s *FileStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	values, ok := doc.Profiles[s.profile]
	if !ok {
		return nil
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return s.write(doc)
}

// Ping checks that the profile file is readable and parses.
func (s *FileStore) Ping(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.read()
	return err
}

func (s *FileStore) read() (*document, error) {
	doc := &document{Profiles: make(map[string]map[string]string)}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read profile file: %w", err)
	}
	if err := yaml.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("parse profile file %s: %w", s.path, err)
	}
	if doc.Profiles == nil {
		doc.Profiles = make(map[string]map[string]string)
	}
	return doc, nil
}

// write replaces the file through a rename so readers never see a
// half-written document.
func (s *FileStore) write(doc *document) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal profile file: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create profile dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".profile-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp profile file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write profile file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close profile file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace profile file: %w", err)
	}
	return nil
}
