// Copyright 2025 Lattice ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package imagenet

import (
	"os"
	"path/filepath"
	"testing"
)

func writeLabels(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "labels.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeLabels(t,
		"n01440764\ttench\ttench, Tinca tinca\n"+
			"n01443537\tgoldfish\tgoldfish, Carassius auratus\n"+
			"\n") // trailing blank line is tolerated

	attrs, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if attrs.Len() != 2 {
		t.Fatalf("Len = %d, want 2", attrs.Len())
	}
	if attrs.Synsets[0] != "n01440764" {
		t.Errorf("Synsets[0] = %q", attrs.Synsets[0])
	}
	if attrs.Class(1) != "goldfish" {
		t.Errorf("Class(1) = %q", attrs.Class(1))
	}
	if attrs.ClassesLong[1] != "goldfish, Carassius auratus" {
		t.Errorf("ClassesLong[1] = %q", attrs.ClassesLong[1])
	}
}

func TestLoad_Malformed(t *testing.T) {
	path := writeLabels(t, "n01440764 tench only-spaces\n")
	if _, err := Load(path); err == nil {
		t.Error("Expected error for line without tabs")
	}
}

func TestLoad_Empty(t *testing.T) {
	path := writeLabels(t, "")
	if _, err := Load(path); err == nil {
		t.Error("Expected error for empty file")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/does/not/exist.txt"); err == nil {
		t.Error("Expected error for missing file")
	}
}
