package mounts

import (
	"context"
	"reflect"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/disk"

	"github.com/tovyjs/ceph/internal/ceph"
)

type fakeCluster struct {
	topo   ceph.Topology
	client []string
}

func (f *fakeCluster) MonAddrs(ctx context.Context) ceph.Topology { return f.topo }

func (f *fakeCluster) ClientMountPoints(ctx context.Context) []string { return f.client }

func TestFirstEndpoint(t *testing.T) {
	cases := map[string]string{
		"10.0.0.1:6789,10.0.0.2:6789:/":     "10.0.0.1:6789",
		"10.0.0.1:6789:/some/path":          "10.0.0.1:6789",
		"10.0.0.9:6789:/":                   "10.0.0.9:6789",
		"10.0.0.1:6789":                     "10.0.0.1:6789",
		"v1:10.0.0.1:6789:/":                "10.0.0.1:6789",
		"v2:10.0.0.1:3300/0":                "10.0.0.1:3300/0",
		"[::1]:6789:/":                      "[::1]:6789",
		"[2001:db8::1]:6789,[::1]:6789:/":   "[2001:db8::1]:6789",
		"v2:[2001:db8::1]:3300,[::1]:6789:": "[2001:db8::1]:3300",
		"ceph-fuse":                         "ceph-fuse",
	}
	for in, want := range cases {
		if got := firstEndpoint(in); got != want {
			t.Fatalf("firstEndpoint(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestReclaimMatchesTopology(t *testing.T) {
	var unmounted []string
	r := &Reclaimer{
		Cluster: &fakeCluster{
			topo: ceph.TopologyFrom("[v2:10.0.0.1:3300/0,v1:10.0.0.1:6789/0]"),
		},
		Partitions: func(ctx context.Context, all bool) ([]disk.PartitionStat, error) {
			return []disk.PartitionStat{
				{Device: "10.0.0.1:6789,10.0.0.2:6789:/", Mountpoint: "/mnt/ours", Fstype: "ceph"},
				{Device: "10.0.0.9:6789:/", Mountpoint: "/mnt/theirs", Fstype: "ceph"},
				{Device: "/dev/sda1", Mountpoint: "/", Fstype: "ext4"},
			}, nil
		},
		Unmount: func(ctx context.Context, target string) error {
			unmounted = append(unmounted, target)
			return nil
		},
		Log: zerolog.Nop(),
	}
	r.Reclaim(context.Background())

	want := []string{"/mnt/ours"}
	if !reflect.DeepEqual(unmounted, want) {
		t.Fatalf("unmounted: %v, want %v", unmounted, want)
	}
}

func TestReclaimClientReportedMounts(t *testing.T) {
	var unmounted []string
	r := &Reclaimer{
		Cluster: &fakeCluster{client: []string{"/mnt/fuse-a", "/mnt/fuse-b"}},
		Partitions: func(ctx context.Context, all bool) ([]disk.PartitionStat, error) {
			return nil, nil
		},
		Unmount: func(ctx context.Context, target string) error {
			unmounted = append(unmounted, target)
			return nil
		},
		Log: zerolog.Nop(),
	}
	r.Reclaim(context.Background())

	want := []string{"/mnt/fuse-a", "/mnt/fuse-b"}
	if !reflect.DeepEqual(unmounted, want) {
		t.Fatalf("unmounted: %v, want %v", unmounted, want)
	}
}

func TestReclaimEmptyTopologyIsNoop(t *testing.T) {
	// cluster down: nothing matches, nothing is touched
	calls := 0
	r := &Reclaimer{
		Cluster: &fakeCluster{},
		Partitions: func(ctx context.Context, all bool) ([]disk.PartitionStat, error) {
			return []disk.PartitionStat{
				{Device: "10.0.0.1:6789:/", Mountpoint: "/mnt/ours", Fstype: "ceph"},
			}, nil
		},
		Unmount: func(ctx context.Context, target string) error {
			calls++
			return nil
		},
		Log: zerolog.Nop(),
	}
	r.Reclaim(context.Background())
	if calls != 0 {
		t.Fatalf("expected no unmounts, got %d", calls)
	}
}
