package ceph

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// Endpoint is one monitor network address.
type Endpoint struct {
	Host string
	Port int
}

// Topology is the set of monitor addresses known to the cluster. The
// raw serialized form is kept because mount matching is a substring
// check against it, exactly as reported by the tool (v1/v2 prefixes
// and nonce suffixes included).
type Topology struct {
	Endpoints []Endpoint
	raw       string
}

func (t Topology) Empty() bool { return t.raw == "" }

// Contains reports whether hostport occurs anywhere in the serialized
// address set.
func (t Topology) Contains(hostport string) bool {
	return hostport != "" && strings.Contains(t.raw, hostport)
}

type monMetadata struct {
	Name  string `json:"name"`
	Addrs string `json:"addrs"`
	Addr  string `json:"addr"`
}

var endpointRe = regexp.MustCompile(`(\d+\.\d+\.\d+\.\d+):(\d+)`)

// TopologyFrom builds a topology from serialized monitor address
// strings as the cluster reports them.
func TopologyFrom(addrs ...string) Topology {
	var parts []string
	var eps []Endpoint
	for _, s := range addrs {
		if s == "" {
			continue
		}
		parts = append(parts, s)
		for _, match := range endpointRe.FindAllStringSubmatch(s, -1) {
			port, err := strconv.Atoi(match[2])
			if err != nil {
				continue
			}
			eps = append(eps, Endpoint{Host: match[1], Port: port})
		}
	}
	return Topology{Endpoints: eps, raw: strings.Join(parts, " ")}
}

// parseMonMetadata reads the JSON array emitted by `ceph mon metadata`.
// Anything unparsable yields an empty topology rather than an error.
func parseMonMetadata(data []byte) Topology {
	var mons []monMetadata
	if err := json.Unmarshal(data, &mons); err != nil {
		return Topology{}
	}
	var addrs []string
	for _, m := range mons {
		s := m.Addrs
		if s == "" {
			s = m.Addr
		}
		addrs = append(addrs, s)
	}
	return TopologyFrom(addrs...)
}

var mountPointRe = regexp.MustCompile(`"mount_point"\s*:\s*"([^"]+)"`)

// parseMountPoints extracts client-reported mount paths from the mds
// session listing, deduplicated in order of appearance.
func parseMountPoints(data []byte) []string {
	seen := map[string]bool{}
	var out []string
	for _, m := range mountPointRe.FindAllSubmatch(data, -1) {
		p := string(m[1])
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// parseDeviceColumn pulls the device field out of the fixed-width
// table printed by `rbd device list`. Image names may contain spaces,
// so rows are sliced at the header's device column instead of being
// split on whitespace.
func parseDeviceColumn(data []byte) []string {
	lines := strings.Split(string(data), "\n")
	if len(lines) < 2 {
		return nil
	}
	col := strings.Index(strings.ToLower(lines[0]), "device")
	if col < 0 {
		return nil
	}
	var out []string
	for _, line := range lines[1:] {
		if len(line) <= col {
			continue
		}
		dev := strings.TrimSpace(line[col:])
		if dev == "" {
			continue
		}
		out = append(out, dev)
	}
	return out
}
