// Package plan turns the argument list into an immutable description of
// what to tear down.
package plan

import "fmt"

type Role string

const (
	Mon Role = "mon"
	Mgr Role = "mgr"
	MDS Role = "mds"
	OSD Role = "osd"
	RGW Role = "rgw"
)

// Roles in teardown order.
var Order = []Role{Mon, MDS, OSD, Mgr, RGW}

const (
	OSDDefault = "ceph-osd"
	OSDCrimson = "crimson-osd"
)

const Usage = "usage: stop [all] [mon|ceph-mon] [mds|ceph-mds] [osd|ceph-osd] [mgr|ceph-mgr] [rgw|ceph-rgw] [--crimson]"

// Plan is built once by Parse and never mutated afterwards.
type Plan struct {
	// All selects the full teardown: mounts, block mappings, every
	// daemon, runtime artifacts. Any explicit role token clears it.
	All   bool
	roles map[Role]bool
	// OSD is the object storage daemon binary targeted this run.
	OSD string
}

func (p Plan) Has(r Role) bool { return p.roles[r] }

// Roles returns the selected roles in teardown order.
func (p Plan) Roles() []Role {
	out := []Role{}
	for _, r := range Order {
		if p.roles[r] {
			out = append(out, r)
		}
	}
	return out
}

type UsageError struct {
	Token string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("unrecognized argument %q", e.Token)
}

// Parse accumulates tokens into a Plan. The default is "stop
// everything"; the first role token switches the plan to named roles
// only, regardless of where it appears. --crimson retargets the OSD
// binary and is independent of that choice.
func Parse(args []string) (Plan, error) {
	p := Plan{All: true, roles: map[Role]bool{}, OSD: OSDDefault}
	for _, a := range args {
		switch a {
		case "all":
			// already the default; kept for symmetry with the roles
		case "mon", "ceph-mon":
			p.pick(Mon)
		case "mgr", "ceph-mgr":
			p.pick(Mgr)
		case "mds", "ceph-mds":
			p.pick(MDS)
		case "osd", "ceph-osd":
			p.pick(OSD)
		case "rgw", "ceph-rgw":
			p.pick(RGW)
		case "--crimson":
			p.OSD = OSDCrimson
		default:
			return Plan{}, &UsageError{Token: a}
		}
	}
	return p, nil
}

func (p *Plan) pick(r Role) {
	p.All = false
	p.roles[r] = true
}
