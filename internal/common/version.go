package common

// Version is set at build time via -ldflags
var Version = "dev"

// GetVersion returns the application version
func GetVersion() string {
	return Version
}
