// Package reaper terminates cluster daemons with a bounded
// signal-and-wait loop per process name.
package reaper

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tovyjs/ceph/internal/plan"
)

// Signaler sends a termination signal to every process whose command
// line matches pattern, scoped to the invoking user. It reports
// whether any process matched.
type Signaler interface {
	Signal(ctx context.Context, pattern string, elevated bool) (bool, error)
}

const maxAttempts = 5

type Reaper struct {
	Sig Signaler
	// Sleep is the backoff wait; defaults to time.Sleep.
	Sleep func(time.Duration)
	// Interval scales the backoff (waits 0, t, 2t, 3t, 4t). Default 1s.
	Interval time.Duration
	Log      zerolog.Logger
}

func (r *Reaper) sleep(d time.Duration) {
	if r.Sleep != nil {
		r.Sleep(d)
		return
	}
	time.Sleep(d)
}

func (r *Reaper) interval() time.Duration {
	if r.Interval > 0 {
		return r.Interval
	}
	return time.Second
}

// reap signals pattern repeatedly until an attempt matches nothing,
// waiting i*interval before attempt i. Returns false when processes
// still matched on the final attempt.
func (r *Reaper) reap(ctx context.Context, pattern string, elevated bool) bool {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		r.sleep(time.Duration(attempt) * r.interval())
		found, err := r.Sig.Signal(ctx, pattern, elevated)
		if err != nil {
			// no process table to consult means nothing to reap
			r.Log.Debug().Err(err).Str("pattern", pattern).Msg("signal pass failed")
			return true
		}
		if !found {
			return true
		}
		r.Log.Debug().Str("pattern", pattern).Int("attempt", attempt+1).Msg("processes still running")
	}
	return false
}

func (r *Reaper) signalOnce(ctx context.Context, pattern string, elevated bool) {
	if _, err := r.Sig.Signal(ctx, pattern, elevated); err != nil {
		r.Log.Debug().Err(err).Str("pattern", pattern).Msg("signal pass failed")
	}
}

// StopAll reaps every cluster daemon in dependency order, then makes
// one best-effort pass over valgrind-wrapped builds (those never
// linger in normal dev runs, so no retry). It returns the names that
// still had matching processes after the final attempt.
func (r *Reaper) StopAll(ctx context.Context, osd string, elevated bool) []string {
	log := r.Log.With().Str("component", "reaper").Logger()
	var leftovers []string
	for _, name := range []string{"ceph-mon", "ceph-mds", osd, "ceph-mgr", "radosgw", "lt-radosgw", "apache2"} {
		log.Info().Str("name", name).Msg("stopping")
		if !r.reap(ctx, name, elevated) {
			log.Warn().Str("name", name).Msg("processes survived all attempts")
			leftovers = append(leftovers, name)
		}
	}
	r.signalOnce(ctx, "valgrind.*ceph-mon", false)
	// osd instrumentation runs under the cluster user, the rest do not
	r.signalOnce(ctx, "valgrind.*"+osd, elevated)
	r.signalOnce(ctx, "valgrind.*ceph-mds", false)
	return leftovers
}

// StopRoles sends one best-effort signal pass per selected role,
// always unprivileged and scoped to the invoking user's processes.
// That asymmetry with StopAll is inherited behavior, kept on purpose.
func (r *Reaper) StopRoles(ctx context.Context, p plan.Plan) {
	log := r.Log.With().Str("component", "reaper").Logger()
	for _, role := range p.Roles() {
		for _, name := range roleTargets(role, p.OSD) {
			log.Info().Str("name", name).Msg("stopping")
			r.signalOnce(ctx, name, false)
		}
	}
}

func roleTargets(r plan.Role, osd string) []string {
	switch r {
	case plan.Mon:
		return []string{"ceph-mon"}
	case plan.MDS:
		return []string{"ceph-mds"}
	case plan.OSD:
		return []string{osd}
	case plan.Mgr:
		return []string{"ceph-mgr"}
	case plan.RGW:
		return []string{"radosgw", "lt-radosgw", "apache2"}
	}
	return nil
}
