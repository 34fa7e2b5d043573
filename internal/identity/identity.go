// Package identity describes the host the daemon runs on.
package identity

import (
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
)

// DefaultVersion is reported when the binary carries no module version.
const DefaultVersion = "devel"

// Info holds host identity information.
type Info struct {
	Hostname string `json:"hostname"`
	Model    string `json:"model"`   // board model, e.g. "Raspberry Pi 4 Model B Rev 1.4"
	Version  string `json:"version"` // daemon version
}

// Get collects the identity of the running host.
func Get() Info {
	return Info{
		Hostname: GetHostname(),
		Model:    GetModel(),
		Version:  GetVersion(),
	}
}

// GetHostname returns the system hostname.
func GetHostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "ws281x"
	}
	return h
}

// GetVersion returns the main module version stamped by the Go toolchain,
// or DefaultVersion for local builds.
func GetVersion() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok || bi.Main.Version == "" || bi.Main.Version == "(devel)" {
		return DefaultVersion
	}
	return bi.Main.Version
}

// GetModel reads the board model from the device tree.
// Returns "unknown" off a Pi.
func GetModel() string {
	return GetModelFromRoot("/")
}

// GetModelFromRoot reads <root>/proc/device-tree/model.
// This variant is exported for testing.
func GetModelFromRoot(root string) string {
	data, err := os.ReadFile(filepath.Join(root, "proc", "device-tree", "model"))
	if err != nil {
		return "unknown"
	}
	// The device tree string is NUL terminated.
	m := strings.TrimSpace(strings.TrimRight(string(data), "\x00"))
	if m == "" {
		return "unknown"
	}
	return m
}

// IsRaspberryPi reports whether model names a Raspberry Pi board.
func IsRaspberryPi(model string) bool {
	return strings.HasPrefix(model, "Raspberry Pi")
}
