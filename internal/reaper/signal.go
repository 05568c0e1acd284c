package reaper

import (
	"context"
	"os"
	"regexp"
	"strings"
	"syscall"

	"github.com/shirou/gopsutil/v3/process"
	"golang.org/x/sys/unix"

	"github.com/tovyjs/ceph/pkg/shell"
)

// ProcSignaler is the production Signaler. Unprivileged passes walk
// the process table directly and signal the invoking user's matches;
// elevated passes go through sudo pkill, since another user's
// processes cannot be signaled in-process.
type ProcSignaler struct {
	Run  shell.Runner
	User string
	// Sig defaults to SIGTERM.
	Sig syscall.Signal
}

func (s *ProcSignaler) signal() syscall.Signal {
	if s.Sig != 0 {
		return s.Sig
	}
	return unix.SIGTERM
}

// isPattern reports whether target is a command-line regex (the
// valgrind-wrapped builds) rather than a plain daemon name.
func isPattern(target string) bool {
	return strings.Contains(target, "*")
}

// matchesTarget decides whether one process is a target. Plain daemon
// names compare against the process name only; a command line
// mentioning the daemon (an editor on ceph-osd.cc, tail on a log) is
// not a daemon. Patterns match the full command line.
func matchesTarget(target string, re *regexp.Regexp, name, cmdline string) bool {
	if re != nil {
		return re.MatchString(cmdline)
	}
	return name == target
}

func (s *ProcSignaler) Signal(ctx context.Context, target string, elevated bool) (bool, error) {
	if elevated {
		return s.pkill(ctx, target)
	}
	var re *regexp.Regexp
	if isPattern(target) {
		var err error
		re, err = regexp.Compile(target)
		if err != nil {
			return false, err
		}
	}
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return false, err
	}
	self := int32(os.Getpid())
	found := false
	for _, p := range procs {
		if p.Pid == self {
			continue
		}
		user, err := p.UsernameWithContext(ctx)
		if err != nil || user != s.User {
			continue
		}
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		cmdline := ""
		if re != nil {
			cmdline, err = p.CmdlineWithContext(ctx)
			if err != nil {
				continue
			}
		}
		if !matchesTarget(target, re, name, cmdline) {
			continue
		}
		found = true
		_ = p.SendSignalWithContext(ctx, s.signal())
	}
	return found, nil
}

func (s *ProcSignaler) pkill(ctx context.Context, target string) (bool, error) {
	run := shell.Sudo(s.Run)
	args := []string{"-u", s.User}
	// Full-cmdline matching is reserved for the wrapped-build
	// patterns: a plain name under -f would match our own sudo/pkill
	// command line, so the loop could never observe "not found".
	if isPattern(target) {
		args = append(args, "-f")
	}
	args = append(args, target)
	res, err := run(ctx, "pkill", args...)
	switch res.Code {
	case 0:
		return true, nil
	case 1:
		// pkill found nothing to signal
		return false, nil
	}
	return false, err
}
