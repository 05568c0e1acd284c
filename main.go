// stop tears down a local single-host Ceph development cluster:
// unmounts its filesystems, unmaps its block devices, kills the
// daemons, and removes the admin-socket directory. Safe to run against
// a cluster that is already partially or fully stopped.
package main

import (
	"context"
	"fmt"
	"os"
	"os/user"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tovyjs/ceph/internal/artifacts"
	"github.com/tovyjs/ceph/internal/ceph"
	"github.com/tovyjs/ceph/internal/config"
	"github.com/tovyjs/ceph/internal/mounts"
	"github.com/tovyjs/ceph/internal/plan"
	"github.com/tovyjs/ceph/internal/privilege"
	"github.com/tovyjs/ceph/internal/rbdmap"
	"github.com/tovyjs/ceph/internal/reaper"
	"github.com/tovyjs/ceph/pkg/shell"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop [all] [mon|ceph-mon] [mds|ceph-mds] [osd|ceph-osd] [mgr|ceph-mgr] [rgw|ceph-rgw] [--crimson]",
		Short: "Stop a local Ceph development cluster",
		Long: `stop shuts down a vstart-style development cluster running on this
host. By default everything is torn down: cluster filesystems are
force-unmounted, rbd devices unmapped, every daemon killed, and the
admin-socket directory removed. Naming one or more roles restricts the
run to killing those daemons only.`,
		Args: cobra.ArbitraryArgs,
		// role tokens and --crimson are positional and order-free;
		// they go through one token loop instead of flag parsing
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := plan.Parse(args)
			if err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), plan.Usage)
				return err
			}
			return run(cmd.Context(), p)
		},
	}
}

func run(ctx context.Context, p plan.Plan) error {
	cfg := config.FromEnv()
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(cfg.LogLevel).With().Timestamp().Logger()

	me, err := user.Current()
	if err != nil {
		return fmt.Errorf("resolve current user: %w", err)
	}

	elevated := privilege.Available(".")
	runner := shell.Command(0)
	client := ceph.New(cfg, runner, elevated, log)
	reap := &reaper.Reaper{
		Sig: &reaper.ProcSignaler{Run: runner, User: me.Username},
		Log: log,
	}

	if !p.All {
		reap.StopRoles(ctx, p)
		return nil
	}

	// Order matters: mounts before their backing daemons die, block
	// unmaps before the exporting osds go away, artifacts last.
	(&mounts.Reclaimer{
		Cluster: client,
		Unmount: mounts.ForceUnmount(runner, elevated),
		Log:     log,
	}).Reclaim(ctx)

	(&rbdmap.Reclaimer{Mapper: client, Log: log}).Reclaim(ctx)

	leftovers := reap.StopAll(ctx, p.OSD, elevated)

	(&artifacts.Cleaner{Conf: client, Log: log}).Clean(ctx)

	if len(leftovers) > 0 {
		warn := color.New(color.FgYellow, color.Bold)
		_, _ = warn.Fprintf(os.Stderr, "warning: some processes never fully stopped: %v\n", leftovers)
	}
	return nil
}
