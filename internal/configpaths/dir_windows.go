//go:build windows

package configpaths

// SystemConfigDir returns "" on Windows; only the per-user directory is used.
func SystemConfigDir() string {
	return ""
}
