package fileutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"

	"github.com/thoreinstein/projgen/internal/errors"
)

func TestReadFileWithLimit(t *testing.T) {
	tempDir := t.TempDir()

	tests := []struct {
		name    string
		size    int64
		wantErr bool
	}{
		{"small file", 100, false},
		{"exact limit", MaxFileSize, false},
		{"too large", MaxFileSize + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(tempDir, tt.name)
			f, err := os.Create(path)
			if err != nil {
				t.Fatal(err)
			}

			if err := f.Truncate(tt.size); err != nil {
				t.Fatal(err)
			}
			f.Close()

			_, err = ReadFileWithLimit(afero.NewOsFs(), path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ReadFileWithLimit() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrFileTooLarge) {
				t.Errorf("expected ErrFileTooLarge, got %v", err)
			}
		})
	}
}

func TestReadFileWithLimit_Missing(t *testing.T) {
	_, err := ReadFileWithLimit(afero.NewMemMapFs(), "/nope/App.projgen")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist in chain, got %v", err)
	}
}

func TestReadFileWithLimit_Directory(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadFileWithLimit(afero.NewOsFs(), dir)
	if err == nil {
		t.Fatal("expected error when reading a directory")
	}
	if errors.Is(err, fs.ErrNotExist) {
		t.Errorf("a directory must not look like a missing file: %v", err)
	}
}

func TestReadFileWithLimit_MemFs(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if err := afero.WriteFile(fsys, "/cfg/App.projgen", []byte(`{"projectName":"App"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := ReadFileWithLimit(fsys, "/cfg/App.projgen")
	if err != nil {
		t.Fatalf("ReadFileWithLimit() error = %v", err)
	}
	if string(got) != `{"projectName":"App"}` {
		t.Errorf("content = %q", got)
	}
}
