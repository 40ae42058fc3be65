// Package constants defines application-wide constants and version information.
package constants

import "runtime"

// Version holds the application version information
const Version = "1.0-" + runtime.GOOS + "/" + runtime.GOARCH

// AppName is used in log lines, the page footer and the CLI version output
const AppName = "bikedash"
