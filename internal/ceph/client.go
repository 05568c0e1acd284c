// Package ceph wraps the external cluster tools (ceph, ceph-conf, rbd)
// behind typed, best-effort queries. Every query returns an empty
// result when the tool fails or the cluster is not running; teardown
// treats that as "nothing to do", never as an error.
package ceph

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tovyjs/ceph/internal/config"
	"github.com/tovyjs/ceph/pkg/shell"
)

type Client struct {
	cfg  config.Config
	run  shell.Runner
	priv shell.Runner
	log  zerolog.Logger
}

// New builds a client. When elevated is set, operations that need root
// (rbd unmap) go through sudo; queries never do.
func New(cfg config.Config, run shell.Runner, elevated bool, log zerolog.Logger) *Client {
	priv := run
	if elevated {
		priv = shell.Sudo(run)
	}
	return &Client{
		cfg:  cfg,
		run:  run,
		priv: priv,
		log:  log.With().Str("component", "ceph").Logger(),
	}
}

// MonAddrs queries the live monitor topology. An empty Topology means
// the cluster is unreachable, which matches no mounts downstream.
func (c *Client) MonAddrs(ctx context.Context) Topology {
	res, err := c.run(ctx, c.cfg.Tool("ceph"), "-c", c.cfg.ConfPath, "mon", "metadata")
	if err != nil {
		c.log.Debug().Err(err).Msg("mon metadata query failed")
		return Topology{}
	}
	return parseMonMetadata(res.Stdout)
}

// ClientMountPoints asks the metadata servers for their client
// sessions and returns every mount point they report. This catches
// fuse clients that do not appear as cluster-protocol mounts in the
// mount table.
func (c *Client) ClientMountPoints(ctx context.Context) []string {
	res, err := c.run(ctx, c.cfg.Tool("ceph"), "-c", c.cfg.ConfPath, "tell", "mds.*", "client", "ls")
	if err != nil {
		c.log.Debug().Err(err).Msg("mds client ls failed")
		return nil
	}
	return parseMountPoints(res.Stdout)
}

// ConfigValue looks up one option from the active configuration.
// Empty string when the config or the tool is missing.
func (c *Client) ConfigValue(ctx context.Context, name string) string {
	res, err := c.run(ctx, c.cfg.Tool("ceph-conf"), "-c", c.cfg.ConfPath, "--show-config-value", name)
	if err != nil {
		c.log.Debug().Err(err).Str("option", name).Msg("config value lookup failed")
		return ""
	}
	return strings.TrimSpace(string(res.Stdout))
}

// RBDDevices lists currently mapped block devices for this cluster.
func (c *Client) RBDDevices(ctx context.Context) []string {
	res, err := c.run(ctx, c.cfg.Tool("rbd"), "device", "list", "-c", c.cfg.ConfPath)
	if err != nil {
		c.log.Debug().Err(err).Msg("rbd device list failed")
		return nil
	}
	return parseDeviceColumn(res.Stdout)
}

// RBDUnmap detaches one mapped device. Needs root on most systems, so
// it runs on the elevated path when one exists.
func (c *Client) RBDUnmap(ctx context.Context, dev string) error {
	_, err := c.priv(ctx, c.cfg.Tool("rbd"), "device", "unmap", dev)
	return err
}
