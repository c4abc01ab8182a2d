package storage

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalSaveListDelete(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s, err := NewLocal(root, "/uploads/")
	if err != nil {
		t.Fatalf("NewLocal() error = %v", err)
	}

	data := []byte("%PDF-1.4 test")
	if err := s.Save(ctx, "cv/1/a.pdf", "application/pdf", bytes.NewReader(data), int64(len(data))); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := os.ReadFile(filepath.Join(root, "cv", "1", "a.pdf"))
	if err != nil || !bytes.Equal(got, data) {
		t.Fatalf("stored = %q, %v", got, err)
	}

	if u := s.URL("cv/1/a.pdf"); u != "/uploads/cv/1/a.pdf" {
		t.Errorf("URL() = %q", u)
	}

	objects, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(objects) != 1 || objects[0].Key != "cv/1/a.pdf" {
		t.Errorf("List() = %+v", objects)
	}

	if err := s.Delete(ctx, "cv/1/a.pdf"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	// deleting twice is fine
	if err := s.Delete(ctx, "cv/1/a.pdf"); err != nil {
		t.Errorf("second Delete() error = %v", err)
	}
}

func TestCleanKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
		err  bool
	}{
		{"cv/1/a.pdf", "cv/1/a.pdf", false},
		{"/cv/1/a.pdf", "cv/1/a.pdf", false},
		{"", "", true},
		{"../etc/passwd", "", true},
		{"cv/../../etc/passwd", "", true},
		{"cv/./a.pdf", "", true},
		{"cv//a.pdf", "", true},
		{`cv\..\a.pdf`, "", true},
	}
	for _, tt := range tests {
		got, err := cleanKey(tt.key)
		if tt.err {
			if !errors.Is(err, ErrInvalidKey) {
				t.Errorf("cleanKey(%q) error = %v, want ErrInvalidKey", tt.key, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("cleanKey(%q) = %q, %v; want %q", tt.key, got, err, tt.want)
		}
	}
}

func TestLocalRejectsTraversal(t *testing.T) {
	s, err := NewLocal(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("NewLocal() error = %v", err)
	}
	err = s.Save(context.Background(), "../escape.pdf", "application/pdf", bytes.NewReader([]byte("x")), 1)
	if !errors.Is(err, ErrInvalidKey) {
		t.Errorf("Save() error = %v, want ErrInvalidKey", err)
	}
}
