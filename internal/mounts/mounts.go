// Package mounts force-unmounts cluster filesystems belonging to the
// cluster being torn down, leaving unrelated mounts of the same
// protocol alone.
package mounts

import (
	"context"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/disk"

	"github.com/tovyjs/ceph/internal/ceph"
	"github.com/tovyjs/ceph/pkg/shell"
)

// Cluster is the slice of the query client the reclaimer needs.
type Cluster interface {
	MonAddrs(ctx context.Context) ceph.Topology
	ClientMountPoints(ctx context.Context) []string
}

type Reclaimer struct {
	Cluster Cluster
	// Partitions enumerates the mount table; defaults to gopsutil.
	Partitions func(ctx context.Context, all bool) ([]disk.PartitionStat, error)
	// Unmount force-unmounts one mount point.
	Unmount func(ctx context.Context, target string) error
	Log     zerolog.Logger
}

// ForceUnmount returns an Unmount implementation shelling out to
// umount -f, through sudo when elevated.
func ForceUnmount(run shell.Runner, elevated bool) func(ctx context.Context, target string) error {
	if elevated {
		run = shell.Sudo(run)
	}
	return func(ctx context.Context, target string) error {
		_, err := run(ctx, "umount", "-f", target)
		return err
	}
}

// Reclaim unmounts every cluster-protocol mount whose first source
// endpoint belongs to the target cluster's monitor set, then every
// mount point the metadata servers report for their clients. Failed
// unmounts are logged and skipped; an empty topology or empty mount
// table is a silent no-op.
func (r *Reclaimer) Reclaim(ctx context.Context) {
	parts := r.Partitions
	if parts == nil {
		parts = disk.PartitionsWithContext
	}
	log := r.Log.With().Str("component", "mounts").Logger()

	topo := r.Cluster.MonAddrs(ctx)
	mounts, err := parts(ctx, true)
	if err != nil {
		log.Debug().Err(err).Msg("mount table enumeration failed")
		mounts = nil
	}
	for _, m := range mounts {
		if !strings.Contains(m.Fstype, "ceph") {
			continue
		}
		ep := firstEndpoint(m.Device)
		if !topo.Contains(ep) {
			log.Debug().Str("mountpoint", m.Mountpoint).Str("endpoint", ep).Msg("mount not backed by this cluster, leaving alone")
			continue
		}
		log.Info().Str("mountpoint", m.Mountpoint).Msg("unmounting")
		if err := r.Unmount(ctx, m.Mountpoint); err != nil {
			log.Warn().Err(err).Str("mountpoint", m.Mountpoint).Msg("unmount failed")
		}
	}

	// fuse clients show up in mds sessions, not as ceph-protocol
	// sources in the mount table
	for _, mp := range r.Cluster.ClientMountPoints(ctx) {
		log.Info().Str("mountpoint", mp).Msg("unmounting client-reported mount")
		if err := r.Unmount(ctx, mp); err != nil {
			log.Warn().Err(err).Str("mountpoint", mp).Msg("unmount failed")
		}
	}
}

var msgrPrefixRe = regexp.MustCompile(`^v\d+:`)

// firstEndpoint reduces a mount source like
// "10.0.0.1:6789,10.0.0.2:6789:/" to its first host:port. Messenger
// version prefixes and bracketed IPv6 hosts are tolerated. Used only
// for topology matching; the unmount always targets the mount point.
func firstEndpoint(source string) string {
	first, _, _ := strings.Cut(source, ",")
	first = strings.TrimPrefix(first, msgrPrefixRe.FindString(first))
	if strings.HasPrefix(first, "[") {
		end := strings.Index(first, "]")
		if end < 0 {
			return first
		}
		host, rest := first[:end+1], first[end+1:]
		if !strings.HasPrefix(rest, ":") {
			return host
		}
		port := rest[1:]
		if i := strings.IndexByte(port, ':'); i >= 0 {
			port = port[:i]
		}
		return host + ":" + port
	}
	fields := strings.SplitN(first, ":", 3)
	if len(fields) < 2 {
		return first
	}
	return fields[0] + ":" + fields[1]
}
