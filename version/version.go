// Package version reports what the running chaincode was built from and
// where it runs.
package version

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"
)

const chaincodeIDNameEnv = "CORE_CHAINCODE_ID_NAME"

var ErrNoBuildInfo = errors.New("fetching build info failed")

// Module is a module the binary was built from.
type Module struct {
	Path    string `json:"path"`
	Version string `json:"version"`
}

// Build is the summary returned by the buildInfo query.
type Build struct {
	GoVersion string            `json:"goVersion"`
	Main      Module            `json:"main"`
	Deps      []Module          `json:"deps"`
	Settings  map[string]string `json:"settings,omitempty"`
}

// BuildInfo returns the build information
func BuildInfo() (*Build, error) {
	bi, ok := debug.ReadBuildInfo()
	if !ok || bi == nil {
		return nil, ErrNoBuildInfo
	}

	b := &Build{
		GoVersion: bi.GoVersion,
		Main:      Module{Path: bi.Main.Path, Version: bi.Main.Version},
		Deps:      make([]Module, 0, len(bi.Deps)),
		Settings:  make(map[string]string, len(bi.Settings)),
	}
	for _, dep := range bi.Deps {
		if dep.Replace != nil {
			dep = dep.Replace
		}
		b.Deps = append(b.Deps, Module{Path: dep.Path, Version: dep.Version})
	}
	for _, s := range bi.Settings {
		b.Settings[s.Key] = s.Value
	}

	return b, nil
}

// CoreChaincodeIDName returns the chaincode ID name assigned by the peer.
func CoreChaincodeIDName() string {
	ch := os.Getenv(chaincodeIDNameEnv)
	if ch == "" {
		return fmt.Sprintf("'%s' is empty", chaincodeIDNameEnv)
	}

	return ch
}

var systemFiles = []string{
	"/etc/issue",
	"/etc/resolv.conf",
	"/proc/meminfo",
	"/proc/cpuinfo",
	"/etc/timezone",
	"/proc/diskstats",
	"/proc/loadavg",
	"/proc/version",
	"/proc/uptime",
	"/etc/hyperledger/fabric/client.crt",
	"/etc/hyperledger/fabric/peer.crt",
}

// SystemEnv returns the contents of the host files that describe the
// chaincode container.
func SystemEnv() map[string]string {
	res := make(map[string]string, len(systemFiles))
	for _, name := range systemFiles {
		b, err := os.ReadFile(name)
		switch {
		case err != nil:
			res[name] = fmt.Sprintf("error:'%v'", err)
		case len(b) == 0:
			res[name] = "file is empty"
		default:
			res[name] = string(b)
		}
	}
	return res
}
