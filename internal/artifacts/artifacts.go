// Package artifacts removes the cluster's transient runtime state
// after the daemons are gone.
package artifacts

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// ConfigQuerier resolves one option from the active configuration.
type ConfigQuerier interface {
	ConfigValue(ctx context.Context, name string) string
}

type Cleaner struct {
	Conf ConfigQuerier
	// Remove defaults to os.RemoveAll.
	Remove func(path string) error
	Log    zerolog.Logger
}

// Clean resolves the admin-socket path and recursively removes its
// directory. Best-effort: a missing config or a failed removal is
// logged, never fatal. Suspicious directories (root, empty, relative
// dot) are refused outright.
func (c *Cleaner) Clean(ctx context.Context) {
	log := c.Log.With().Str("component", "artifacts").Logger()
	remove := c.Remove
	if remove == nil {
		remove = os.RemoveAll
	}

	sock := c.Conf.ConfigValue(ctx, "admin_socket")
	if sock == "" {
		log.Debug().Msg("admin socket path not resolvable, skipping")
		return
	}
	dir := filepath.Dir(sock)
	if dir == "" || dir == "." || dir == string(filepath.Separator) {
		log.Warn().Str("dir", dir).Msg("refusing to remove suspicious socket directory")
		return
	}
	if err := remove(dir); err != nil {
		log.Debug().Err(err).Str("dir", dir).Msg("socket directory removal failed")
		return
	}
	log.Info().Str("dir", dir).Msg("removed socket directory")
}
