//go:build !windows

package configpaths

import (
	"os"
	"path/filepath"
)

// SystemConfigDir returns the machine wide configuration directory consulted
// when running as root (typically the receiver started by a service unit).
func SystemConfigDir() string {
	if os.Geteuid() == 0 {
		return filepath.Join(string(os.PathSeparator), "etc", AppName)
	}
	return ""
}
