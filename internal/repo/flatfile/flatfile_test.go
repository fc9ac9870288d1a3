package flatfile_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/mkrupp/taskmgr/internal/domain"
	"github.com/mkrupp/taskmgr/internal/repo/flatfile"
)

func newTestFile(t *testing.T, content *string) *flatfile.File {
	t.Helper()

	path := filepath.Join(t.TempDir(), "store", "records.txt")

	file, err := flatfile.New(context.Background(), path, flatfile.Config{LockTimeout: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if content != nil {
		if err := os.WriteFile(path, []byte(*content), 0o644); err != nil {
			t.Fatalf("write fixture: %v", err)
		}
	}

	return file
}

func ptr(s string) *string { return &s }

func TestFile_ReadRecords(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content *string
		fields  int
		want    []flatfile.Record
		wantErr error
	}{
		{
			name:    "missing file is empty",
			content: nil,
			fields:  2,
			want:    nil,
		},
		{
			name:    "empty file is empty",
			content: ptr(""),
			fields:  2,
			want:    nil,
		},
		{
			name:    "parses records and skips blank lines",
			content: ptr("admin;password\n\nbob;secret\n"),
			fields:  2,
			want: []flatfile.Record{
				{Line: 1, Fields: []string{"admin", "password"}},
				{Line: 3, Fields: []string{"bob", "secret"}},
			},
		},
		{
			name:    "CRLF line endings are corrupt",
			content: ptr("admin;password\r\nbob;secret"),
			fields:  2,
			wantErr: domain.ErrCorruptStore,
		},
		{
			name:    "carriage return inside a field is corrupt",
			content: ptr("admin;pass\rword"),
			fields:  0,
			wantErr: domain.ErrCorruptStore,
		},
		{
			name:    "missing delimiter is corrupt",
			content: ptr("admin;password\nbob"),
			fields:  2,
			wantErr: domain.ErrCorruptStore,
		},
		{
			name:    "extra fields are corrupt",
			content: ptr("admin;pass;word"),
			fields:  2,
			wantErr: domain.ErrCorruptStore,
		},
		{
			name:    "any field count when unchecked",
			content: ptr("a;b;c\nd"),
			fields:  0,
			want: []flatfile.Record{
				{Line: 1, Fields: []string{"a", "b", "c"}},
				{Line: 2, Fields: []string{"d"}},
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			file := newTestFile(t, tt.content)

			got, err := file.ReadRecords(context.Background(), tt.fields)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ReadRecords() error = %v, wantErr %v", err, tt.wantErr)
			}

			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ReadRecords() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFile_CorruptStoreErrorLine(t *testing.T) {
	t.Parallel()

	file := newTestFile(t, ptr("admin;password\nbroken"))

	_, err := file.ReadRecords(context.Background(), 2)

	var corrupt *domain.CorruptStoreError
	if !errors.As(err, &corrupt) {
		t.Fatalf("ReadRecords() error = %v, want CorruptStoreError", err)
	}

	if corrupt.Line != 2 || corrupt.Path != file.Path() {
		t.Errorf("CorruptStoreError = %+v, want line 2 of %s", corrupt, file.Path())
	}
}

func TestFile_WriteRecords_RoundTrip(t *testing.T) {
	t.Parallel()

	content := "bob;Title;Desc;2099-01-01;2024-05-01;No\nann;Other;More text;2024-01-01;2023-12-01;Yes"
	file := newTestFile(t, ptr(content))
	ctx := context.Background()

	records, err := file.ReadRecords(ctx, 6)
	if err != nil {
		t.Fatalf("ReadRecords() error = %v", err)
	}

	fields := make([][]string, 0, len(records))
	for _, r := range records {
		fields = append(fields, r.Fields)
	}

	if err := file.WriteRecords(ctx, fields); err != nil {
		t.Fatalf("WriteRecords() error = %v", err)
	}

	got, err := os.ReadFile(file.Path())
	if err != nil {
		t.Fatalf("read file: %v", err)
	}

	if string(got) != content {
		t.Errorf("round trip content\nwant: %q\ngot:  %q", content, got)
	}

	entries, err := os.ReadDir(filepath.Dir(file.Path()))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}

	for _, e := range entries {
		if filepath.Ext(e.Name()) != ".txt" {
			t.Errorf("unexpected leftover file %q", e.Name())
		}
	}
}

func TestFile_WriteRecords_RejectsDelimiter(t *testing.T) {
	t.Parallel()

	file := newTestFile(t, ptr("admin;password"))

	err := file.WriteRecords(context.Background(), [][]string{{"bob", "pass;word"}})
	if !errors.Is(err, domain.ErrInvalidField) {
		t.Fatalf("WriteRecords() error = %v, want %v", err, domain.ErrInvalidField)
	}

	got, _ := os.ReadFile(file.Path())
	if string(got) != "admin;password" {
		t.Errorf("file modified on failed write: %q", got)
	}
}

func TestFile_Lock_Exclusive(t *testing.T) {
	t.Parallel()

	file := newTestFile(t, nil)
	ctx := context.Background()

	release, err := file.Lock(ctx)
	if err != nil {
		t.Fatalf("Lock() error = %v", err)
	}

	if _, err := file.Lock(ctx); !errors.Is(err, flatfile.ErrLockTimeout) {
		t.Fatalf("second Lock() error = %v, want %v", err, flatfile.ErrLockTimeout)
	}

	release()

	release, err = file.Lock(ctx)
	if err != nil {
		t.Fatalf("Lock() after release error = %v", err)
	}

	release()
}
