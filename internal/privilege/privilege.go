// Package privilege decides whether this run may use sudo.
package privilege

import (
	"os"
	"path/filepath"
)

// Available reports whether the cluster checkout was brought up with
// elevated helpers. The start tooling leaves dev/osd0 (first OSD data
// dir) and a dev/sudo marker under the working directory when sudo was
// in play; unmount, unmap and cross-user signaling then need it too.
func Available(dir string) bool {
	st, err := os.Stat(filepath.Join(dir, "dev", "osd0"))
	if err != nil || !st.IsDir() {
		return false
	}
	if _, err := os.Stat(filepath.Join(dir, "dev", "sudo")); err != nil {
		return false
	}
	return true
}
