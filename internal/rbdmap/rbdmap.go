// Package rbdmap unmaps the cluster's block devices and verifies none
// remain.
package rbdmap

import (
	"context"

	"github.com/rs/zerolog"
)

// Mapper is the block-mapping side of the cluster client.
type Mapper interface {
	RBDDevices(ctx context.Context) []string
	RBDUnmap(ctx context.Context, dev string) error
}

type Reclaimer struct {
	Mapper Mapper
	Log    zerolog.Logger
}

// Reclaim unmaps every listed device, then re-queries the list. A
// non-empty list afterwards is a warning, never an error; the run
// continues either way.
func (r *Reclaimer) Reclaim(ctx context.Context) {
	log := r.Log.With().Str("component", "rbdmap").Logger()

	devs := r.Mapper.RBDDevices(ctx)
	if len(devs) == 0 {
		return
	}
	for _, dev := range devs {
		log.Info().Str("device", dev).Msg("unmapping")
		if err := r.Mapper.RBDUnmap(ctx, dev); err != nil {
			log.Debug().Err(err).Str("device", dev).Msg("unmap failed")
		}
	}
	if left := r.Mapper.RBDDevices(ctx); len(left) > 0 {
		log.Warn().Strs("devices", left).Msg("block devices still mapped after unmap")
	}
}
