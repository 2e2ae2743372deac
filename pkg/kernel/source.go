// Package kernel models device kernels on the host side: their source text,
// the signature declared by their entry point, and the launch configuration
// used to invoke them.
//
// The package replaces a notebook-style kernel wrapper with plain data
// types. A Source is written to disk by a Store, compiled by a
// nvcc.Compiler, then loaded into a Handle that carries the parsed
// Signature plus mutable Block/Grid shapes.
//
// Pipeline states:
//
//	Source -> Compiled -> Loaded (default 1x1x1 launch) -> Configured -> Launched -> Verified
//
// No transition skips compilation; editing the source restarts the pipeline
// from Source.
package kernel

import (
	"os"
	"path/filepath"
	"regexp"

	"github.com/pkg/errors"
)

// Source is device-language source text for a single kernel. Immutable once
// compiled; edit-and-recompile means a new Source.
type Source struct {
	// Name is the base name the source file is stored under. Must be a
	// plain identifier so it pairs cleanly with the compiled artifact.
	Name string

	// Body is the device-language source text.
	Body string
}

var namePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ErrBadName is returned when a source name is not a plain identifier.
var ErrBadName = errors.New("kernel: source name must be an identifier")

// Store persists kernel sources under a single directory so the compiler
// adapter can pick them up by path.
type Store struct {
	dir string
}

// NewStore returns a Store rooted at dir. The directory is created lazily on
// the first Write.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the store's root directory.
func (s *Store) Dir() string { return s.dir }

// Write persists src as <dir>/<name>.cu and returns the path. Overwrite is
// idempotent: writing the same source twice leaves one file with the latest
// body.
func (s *Store) Write(src Source) (string, error) {
	if !namePattern.MatchString(src.Name) {
		return "", errors.Wrapf(ErrBadName, "%q", src.Name)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "kernel: create source dir %s", s.dir)
	}
	path := filepath.Join(s.dir, src.Name+".cu")
	if err := os.WriteFile(path, []byte(src.Body), 0o644); err != nil {
		return "", errors.Wrapf(err, "kernel: write source %s", path)
	}
	return path, nil
}
