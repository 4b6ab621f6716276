package page

import "github.com/goliatone/go-vanreport/pkg/offline"

const (
	// StylingEngineURL is the CDN script that styles the shell.
	StylingEngineURL = "https://cdn.tailwindcss.com/3.4.5"
	// ImageRendererURL is the CDN script the shell uses to rasterize the report.
	ImageRendererURL = "https://cdnjs.cloudflare.com/ajax/libs/html2canvas/1.4.1/html2canvas.min.js"

	// WebManifestPath is the install manifest path relative to the scope.
	WebManifestPath = "manifest.webmanifest"
)

// ExternalScripts lists the third-party scripts the shell loads, in load order.
func ExternalScripts() []string {
	return []string{StylingEngineURL, ImageRendererURL}
}

// ShellPaths lists the same-origin resources of the shell relative to the
// scope root.
func ShellPaths() []string {
	return []string{
		"./",
		"index.html",
		"assets/app.js",
		"assets/style.css",
		"assets/icon.svg",
		WebManifestPath,
	}
}

// DefaultManifest is the offline manifest for the shell.
func DefaultManifest() offline.Manifest {
	return offline.Manifest{
		Paths:    ShellPaths(),
		External: ExternalScripts(),
	}
}
