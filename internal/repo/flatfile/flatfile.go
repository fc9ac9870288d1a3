// Package flatfile stores delimited records in a plain text file: one record
// per line, fields joined by domain.FieldDelimiter, no header, no quoting and
// no trailing newline. Blank lines are skipped on read and not written back;
// any other byte sequence survives a read and write unchanged, and records a
// write could not reproduce (such as CRLF line ends) are rejected as corrupt.
// Files are rewritten whole through a temporary file and an atomic rename,
// guarded by an flock(2) on a sibling lock file.
package flatfile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/mkrupp/taskmgr/internal/domain"
	"github.com/mkrupp/taskmgr/internal/infra/logging"
)

// ErrLockTimeout is returned when the lock file stays locked for longer than the configured timeout.
var ErrLockTimeout = errors.New("lock timeout")

const (
	recordSeparator = "\n"
	lockRetryDelay  = 10 * time.Millisecond
)

// Config holds settings shared by all flat files.
type Config struct {
	// LockTimeout bounds how long Lock waits for another writer
	LockTimeout time.Duration `env:"LOCK_TIMEOUT" default:"5s"`
}

// Record is a parsed line of a flat file.
type Record struct {
	Line   int // 1-based line number in the file
	Fields []string
}

// File is a delimited record file on disk.
type File struct {
	path string
	cfg  Config
	log  logging.Logger
}

// New returns a File for path, creating its parent directory if needed.
// The file itself is not created until the first write.
func New(ctx context.Context, path string, cfg Config) (*File, error) {
	log := logging.GetLogger("repo.flatfile").With(logging.Group("file", "path", path))

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.ErrorContext(ctx, "init file failed", "error", err)

		return nil, fmt.Errorf("mkdir all: %w", err)
	}

	return &File{path: path, cfg: cfg, log: log}, nil
}

// Path returns the path of the backing file.
func (f *File) Path() string {
	return f.path
}

// Lock acquires an exclusive lock on the file for a read-modify-write cycle.
// The returned function releases the lock.
func (f *File) Lock(ctx context.Context) (release func(), err error) {
	lockfile := f.path + ".lock"
	log := f.log.With(logging.Group("lock", "file", lockfile))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "lock failed", "error", err)
		} else {
			log.DebugContext(ctx, "lock acquired")
		}
	}()

	file, err := os.OpenFile(lockfile, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	deadline := time.Now().Add(f.cfg.LockTimeout)

	for {
		err = syscall.Flock(int(file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
		if err == nil {
			break
		}

		if !errors.Is(err, syscall.EWOULDBLOCK) {
			_ = file.Close()

			return nil, fmt.Errorf("flock: %w", err)
		}

		if !time.Now().Before(deadline) {
			_ = file.Close()

			return nil, fmt.Errorf("%w: %s", ErrLockTimeout, lockfile)
		}

		select {
		case <-ctx.Done():
			_ = file.Close()

			return nil, fmt.Errorf("wait for lock: %w", ctx.Err())
		case <-time.After(lockRetryDelay):
		}
	}

	return func() {
		_ = syscall.Flock(int(file.Fd()), syscall.LOCK_UN)
		_ = file.Close()

		log.DebugContext(ctx, "lock released")
	}, nil
}

// ReadRecords parses every non-empty line of the file.
// If fields is positive, every record must have exactly that many fields.
// A missing file reads as an empty store.
func (f *File) ReadRecords(ctx context.Context, fields int) (records []Record, err error) {
	defer func() {
		if err != nil {
			f.log.ErrorContext(ctx, "read records failed", "error", err)
		} else {
			f.log.DebugContext(ctx, "records read", "count", len(records))
		}
	}()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("read file: %w", err)
	}

	return ParseRecords(f.path, data, fields)
}

// WriteRecords replaces the file content with the given records.
func (f *File) WriteRecords(ctx context.Context, records [][]string) (err error) {
	defer func() {
		if err != nil {
			f.log.ErrorContext(ctx, "write records failed", "error", err)
		} else {
			f.log.DebugContext(ctx, "records written", "count", len(records))
		}
	}()

	data, err := FormatRecords(records)
	if err != nil {
		return fmt.Errorf("format records: %w", err)
	}

	if err := WriteFileAtomic(f.path, data, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}

	return nil
}

// ParseRecords splits data into records. The path is only used in errors.
// Returns a *domain.CorruptStoreError for a wrong field count or a carriage return.
func ParseRecords(path string, data []byte, fields int) ([]Record, error) {
	var records []Record

	for i, line := range strings.Split(string(data), recordSeparator) {
		if line == "" {
			continue
		}

		if strings.Contains(line, "\r") {
			return nil, &domain.CorruptStoreError{Path: path, Line: i + 1, Reason: "carriage return in record"}
		}

		record := Record{
			Line:   i + 1,
			Fields: strings.Split(line, domain.FieldDelimiter),
		}

		if fields > 0 && len(record.Fields) != fields {
			return nil, &domain.CorruptStoreError{
				Path:   path,
				Line:   record.Line,
				Reason: fmt.Sprintf("expected %d fields, got %d", fields, len(record.Fields)),
			}
		}

		records = append(records, record)
	}

	return records, nil
}

// FormatRecords joins records into file content.
// Returns domain.ErrInvalidField if a field would break the record structure.
func FormatRecords(records [][]string) ([]byte, error) {
	var buf bytes.Buffer

	for i, record := range records {
		for j, field := range record {
			if err := domain.ValidateField(fmt.Sprintf("record %d field %d", i+1, j+1), field); err != nil {
				return nil, err
			}
		}

		if i > 0 {
			buf.WriteString(recordSeparator)
		}

		buf.WriteString(strings.Join(record, domain.FieldDelimiter))
	}

	return buf.Bytes(), nil
}

// WriteFileAtomic replaces path with data by writing a temporary file in the
// same directory and renaming it over the target.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}

	tmpName := tmp.Name()
	committed := false

	defer func() {
		_ = tmp.Close()

		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := io.Copy(tmp, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write: %w", err)
	}

	if err := tmp.Chmod(perm); err != nil {
		return fmt.Errorf("chmod: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}

	committed = true

	return syncDir(dir)
}

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return fmt.Errorf("open dir: %w", err)
	}
	defer d.Close()

	if err := d.Sync(); err != nil {
		return fmt.Errorf("sync dir: %w", err)
	}

	return nil
}
