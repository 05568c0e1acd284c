// Package config resolves the runtime environment for a teardown run:
// where the cluster binaries live, which conf file identifies the
// cluster, and how chatty to be.
package config

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

type Config struct {
	// BinDir holds the cluster tools (ceph, ceph-conf, rbd). Empty
	// means resolve through PATH.
	BinDir string
	// ConfPath is the cluster configuration file handed to every tool.
	ConfPath string
	LogLevel zerolog.Level
}

// FromEnv builds the config once at startup. CEPH_BIN and
// CEPH_CONF_PATH override the vstart-style defaults of ./bin and
// ./ceph.conf relative to the working directory.
func FromEnv() Config {
	v := viper.New()
	v.SetDefault("conf", "ceph.conf")
	_ = v.BindEnv("bin", "CEPH_BIN")
	_ = v.BindEnv("conf", "CEPH_CONF_PATH")
	_ = v.BindEnv("log", "STOP_LOG")

	bin := v.GetString("bin")
	if bin == "" {
		if st, err := os.Stat("bin"); err == nil && st.IsDir() {
			bin = "bin"
		}
	}

	level := zerolog.InfoLevel
	if s := v.GetString("log"); s != "" {
		if l, err := zerolog.ParseLevel(s); err == nil {
			level = l
		}
	}

	return Config{
		BinDir:   bin,
		ConfPath: v.GetString("conf"),
		LogLevel: level,
	}
}

// Tool returns the invocation path for a cluster binary.
func (c Config) Tool(name string) string {
	if c.BinDir == "" {
		return name
	}
	return filepath.Join(c.BinDir, name)
}
