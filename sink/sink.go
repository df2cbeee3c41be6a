// Package sink provides output destinations for the generated client module.
package sink

import (
	"bytes"
	"cmp"
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
)

// OutputSink is where a generation run puts its module. Implementations
// must be safe for concurrent calls.
type OutputSink interface {
	// WriteFile replaces the file at path with content. The path is
	// relative; the sink determines the actual location. Readers never
	// observe a partially written file.
	WriteFile(ctx context.Context, path string, content []byte) error
}

// Reader is implemented by sinks that can return previously written
// content. It is used to detect stale output.
type Reader interface {
	// ReadFile returns the current content at path. A missing file is
	// reported with an error matching os.ErrNotExist.
	ReadFile(ctx context.Context, path string) ([]byte, error)
}

// FilesystemSink writes below a directory on disk.
type FilesystemSink struct {
	Root string
	Mode os.FileMode // zero means 0644
}

// NewFilesystemSink creates a FilesystemSink writing below root.
func NewFilesystemSink(root string) *FilesystemSink {
	return &FilesystemSink{Root: root, Mode: 0644}
}

// ForFile returns a sink rooted at the directory containing file together
// with the sink-relative name of file.
func ForFile(file string) (*FilesystemSink, string) {
	return NewFilesystemSink(filepath.Dir(file)), filepath.Base(file)
}

// resolve maps a sink-relative path to a location below Root.
func (s *FilesystemSink) resolve(name string) (string, error) {
	if err := ValidatePath(name); err != nil {
		return "", errors.Wrapf(err, "invalid path %q", name)
	}
	target := filepath.Join(s.Root, filepath.FromSlash(name))
	rel, err := filepath.Rel(s.Root, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.Newf("path escapes root directory: %q", name)
	}
	return target, nil
}

// WriteFile atomically replaces name below Root, creating parent
// directories. Content is staged in a hidden temp file next to the target
// and renamed into place, so a canceled or failed write leaves the previous
// file intact.
func (s *FilesystemSink) WriteFile(ctx context.Context, name string, content []byte) error {
	target, err := s.resolve(name)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return errors.Wrap(err, "create directories")
	}

	staged, err := stage(filepath.Dir(target), content, cmp.Or(s.Mode, 0644))
	if err != nil {
		return err
	}
	// The context is checked once more right before the rename: a run
	// superseded while staging must not replace newer output.
	if err := ctx.Err(); err != nil {
		_ = os.Remove(staged)
		return err
	}
	if err := os.Rename(staged, target); err != nil {
		_ = os.Remove(staged)
		return errors.Wrap(err, "rename temp file")
	}
	return nil
}

// stage writes content to a new .routegen-*.tmp file in dir and returns its
// path. The file is removed again on failure.
func stage(dir string, content []byte, mode os.FileMode) (staged string, err error) {
	f, err := os.CreateTemp(dir, ".routegen-*.tmp")
	if err != nil {
		return "", errors.Wrap(err, "create temp file")
	}
	defer func() {
		if err != nil {
			_ = os.Remove(f.Name())
		}
	}()

	if _, err := f.Write(content); err != nil {
		_ = f.Close()
		return "", errors.Wrap(err, "write temp file")
	}
	if err := f.Close(); err != nil {
		return "", errors.Wrap(err, "close temp file")
	}
	if err := os.Chmod(f.Name(), mode); err != nil {
		return "", errors.Wrap(err, "set file mode")
	}
	return f.Name(), nil
}

// ReadFile returns the current content of name below Root.
func (s *FilesystemSink) ReadFile(ctx context.Context, name string) ([]byte, error) {
	target, err := s.resolve(name)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(target)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", name)
	}
	return data, nil
}

// MemorySink keeps written files in a map. It is safe for concurrent use
// and mostly useful in tests and for stale-output checks.
type MemorySink struct {
	mu     sync.RWMutex
	files  map[string][]byte
	writes int
}

// NewMemorySink returns an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{files: make(map[string][]byte)}
}

// WriteFile stores a copy of content under name.
func (s *MemorySink) WriteFile(ctx context.Context, name string, content []byte) error {
	if err := ValidatePath(name); err != nil {
		return errors.Wrapf(err, "invalid path %q", name)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[name] = append([]byte{}, content...)
	s.writes++
	return nil
}

// ReadFile returns a copy of the content stored under name.
func (s *MemorySink) ReadFile(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.files[name]
	if !ok {
		return nil, errors.Wrapf(os.ErrNotExist, "read %s", name)
	}
	return bytes.Clone(data), nil
}

// Files snapshots every stored file.
func (s *MemorySink) Files() map[string][]byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]byte, len(s.files))
	for name, data := range s.files {
		out[name] = bytes.Clone(data)
	}
	return out
}

// Get returns a copy of one stored file, or nil.
func (s *MemorySink) Get(name string) []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return bytes.Clone(s.files[name])
}

// Writes returns the number of successful WriteFile calls.
func (s *MemorySink) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

// Reset forgets every file and the write count.
func (s *MemorySink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files = make(map[string][]byte)
	s.writes = 0
}

// ValidatePath rejects names a sink must not write to. A valid name is
// relative, slash separated, already clean and free of ".." elements.
func ValidatePath(name string) error {
	switch {
	case name == "":
		return errors.New("path is empty")
	case strings.HasPrefix(name, "/") || filepath.IsAbs(name) || hasDriveLetter(name):
		return errors.New("absolute paths not allowed")
	}
	slashed := filepath.ToSlash(name)
	for _, elem := range strings.Split(slashed, "/") {
		if elem == ".." {
			return errors.New("path traversal not allowed")
		}
	}
	if clean := path.Clean(slashed); clean != slashed {
		return errors.Newf("path is not clean (expected %q, got %q)", clean, name)
	}
	return nil
}

// hasDriveLetter matches Windows volume prefixes such as "C:" on every
// platform.
func hasDriveLetter(name string) bool {
	if len(name) < 2 || name[1] != ':' {
		return false
	}
	c := name[0] | 0x20
	return c >= 'a' && c <= 'z'
}
