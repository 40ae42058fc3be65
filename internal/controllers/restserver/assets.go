package restserver

import (
	"embed"
	"io/fs"
	"os"
)

// Embed the dashboard assets
//
//go:embed all:assets
var assetsFS embed.FS

// GetAssets returns the assets filesystem, either from disk or embedded
func GetAssets() fs.FS {
	// If BIKEDASH_ASSETS_DIR points to a directory, serve the template and
	// static files from disk so they can be edited without a rebuild.
	if dir := os.Getenv("BIKEDASH_ASSETS_DIR"); dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return os.DirFS(dir)
		}
	}

	// Return a sub-filesystem starting from the "assets" directory
	assets, err := fs.Sub(assetsFS, "assets")
	if err != nil {
		panic("failed to create assets sub-filesystem: " + err.Error())
	}
	return assets
}
