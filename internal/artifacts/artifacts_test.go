package artifacts

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

type fakeConf string

func (f fakeConf) ConfigValue(ctx context.Context, name string) string {
	if name != "admin_socket" {
		return ""
	}
	return string(f)
}

func TestCleanRemovesSocketDir(t *testing.T) {
	dir := t.TempDir()
	asok := filepath.Join(dir, "asok", "$name.asok")
	if err := os.MkdirAll(filepath.Dir(asok), 0o755); err != nil {
		t.Fatal(err)
	}

	c := &Cleaner{Conf: fakeConf(asok), Log: zerolog.Nop()}
	c.Clean(context.Background())

	if _, err := os.Stat(filepath.Dir(asok)); !os.IsNotExist(err) {
		t.Fatalf("socket dir should be gone, stat err: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("parent must survive: %v", err)
	}
}

func TestCleanUnresolvableIsNoop(t *testing.T) {
	removed := false
	c := &Cleaner{
		Conf:   fakeConf(""),
		Remove: func(string) error { removed = true; return nil },
		Log:    zerolog.Nop(),
	}
	c.Clean(context.Background())
	if removed {
		t.Fatalf("nothing should be removed without a socket path")
	}
}

func TestCleanRefusesSuspiciousDirs(t *testing.T) {
	for _, sock := range []string{"/name.asok", "name.asok"} {
		removed := ""
		c := &Cleaner{
			Conf:   fakeConf(sock),
			Remove: func(p string) error { removed = p; return nil },
			Log:    zerolog.Nop(),
		}
		c.Clean(context.Background())
		if removed != "" {
			t.Fatalf("socket %q: removed %q", sock, removed)
		}
	}
}
