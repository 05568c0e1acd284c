package privilege

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAvailable(t *testing.T) {
	dir := t.TempDir()
	if Available(dir) {
		t.Fatalf("empty dir should not be elevated")
	}

	if err := os.MkdirAll(filepath.Join(dir, "dev", "osd0"), 0o755); err != nil {
		t.Fatal(err)
	}
	if Available(dir) {
		t.Fatalf("osd dir alone should not be elevated")
	}

	if err := os.WriteFile(filepath.Join(dir, "dev", "sudo"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if !Available(dir) {
		t.Fatalf("sentinel dir plus marker should be elevated")
	}
}

func TestAvailableMarkerWithoutOSDDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "dev"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "dev", "sudo"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if Available(dir) {
		t.Fatalf("marker without osd dir should not be elevated")
	}
}

func TestAvailableOSDSentinelMustBeDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "dev"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "dev", "osd0"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "dev", "sudo"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if Available(dir) {
		t.Fatalf("osd0 file should not count as sentinel")
	}
}
