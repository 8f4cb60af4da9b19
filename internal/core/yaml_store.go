package core

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// maxYAMLFileSize caps config file reads at 1 MB.
const maxYAMLFileSize = 1 << 20

// YAMLStore reads and writes one YAML document of type T. Unknown keys are
// rejected on load so that typos in hand-edited files surface as errors.
type YAMLStore[T any] struct {
	fs           FileSystem
	rootDir      string
	filename     string
	allowMissing bool // Load returns the zero T for a missing file
	header       string
}

// NewYAMLStore creates a store for rootDir/filename.
func NewYAMLStore[T any](fs FileSystem, rootDir, filename string, allowMissing bool) *YAMLStore[T] {
	return &YAMLStore[T]{
		fs:           fs,
		rootDir:      rootDir,
		filename:     filename,
		allowMissing: allowMissing,
	}
}

// WithHeader sets a comment block written above the document on Save.
// Each line is prefixed with "# ".
func (s *YAMLStore[T]) WithHeader(lines ...string) *YAMLStore[T] {
	var b bytes.Buffer
	for _, l := range lines {
		b.WriteString("# " + l + "\n")
	}
	s.header = b.String()
	return s
}

func (s *YAMLStore[T]) Path() string {
	return filepath.Join(s.rootDir, s.filename)
}

func (s *YAMLStore[T]) Exists() bool {
	_, err := s.fs.Stat(s.Path())
	return err == nil
}

// Load decodes the file. An empty file yields the zero T.
func (s *YAMLStore[T]) Load() (T, error) {
	var result T

	info, err := s.fs.Stat(s.Path())
	switch {
	case errors.Is(err, os.ErrNotExist) && s.allowMissing:
		return result, nil
	case err != nil:
		return result, err
	case info.Size() > maxYAMLFileSize:
		return result, fmt.Errorf("%s exceeds maximum size (%d bytes > %d byte limit)", s.Path(), info.Size(), maxYAMLFileSize)
	}

	data, err := s.fs.ReadFile(s.Path())
	if err != nil {
		return result, err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&result); err != nil && !errors.Is(err, io.EOF) {
		return result, fmt.Errorf("invalid %s: %w", s.Path(), err)
	}
	return result, nil
}

// Save writes data atomically, creating the directory if needed.
func (s *YAMLStore[T]) Save(data T) error {
	var buf bytes.Buffer
	buf.WriteString(s.header)

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("failed to marshal %s: %w", s.filename, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to marshal %s: %w", s.filename, err)
	}

	if err := s.fs.MkdirAll(s.rootDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", s.rootDir, err)
	}
	if err := s.fs.WriteFileAtomic(s.Path(), buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.Path(), err)
	}
	return nil
}
