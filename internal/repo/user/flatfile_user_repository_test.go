package user_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/mkrupp/taskmgr/internal/domain"
	"github.com/mkrupp/taskmgr/internal/repo/user"
)

func setupFlatFileUserRepo(t *testing.T, content string) (*user.FlatFileUserRepository, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "user.txt")

	if content != "" {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write fixture: %v", err)
		}
	}

	repo, err := user.NewFlatFileUserRepository(context.Background(), user.FlatFileUserRepositoryConfig{Path: path})
	if err != nil {
		t.Fatalf("NewFlatFileUserRepository() error = %v", err)
	}

	t.Cleanup(func() { _ = repo.Close() })

	return repo, path
}

func TestFlatFileUserRepository_Load(t *testing.T) {
	t.Parallel()

	repo, _ := setupFlatFileUserRepo(t, "admin;password\nbob;builder")

	got, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := []domain.User{
		{Username: "admin", Password: "password"},
		{Username: "bob", Password: "builder"},
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("Load() = %v, want %v", got, want)
	}
}

func TestFlatFileUserRepository_LoadCorrupt(t *testing.T) {
	t.Parallel()

	repo, _ := setupFlatFileUserRepo(t, "admin;password\nbob")

	_, err := repo.Load(context.Background())
	if !errors.Is(err, domain.ErrCorruptStore) {
		t.Fatalf("Load() error = %v, want %v", err, domain.ErrCorruptStore)
	}
}

func TestFlatFileUserRepository_RoundTrip(t *testing.T) {
	t.Parallel()

	const content = "admin;password\nBob;builder\ncarol;"

	repo, path := setupFlatFileUserRepo(t, content)
	ctx := context.Background()

	users, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if err := repo.Save(ctx, users); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}

	if string(got) != content {
		t.Errorf("round trip\nwant: %q\ngot:  %q", content, got)
	}
}
