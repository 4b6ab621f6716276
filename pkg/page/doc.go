// Package page renders the report application shell and the export document.
//
// Templates and static assets are embedded. Theme tokens and asset names are
// described by a go-theme manifest and flattened into CSS custom properties at
// construction time. ShellPaths and ExternalScripts describe everything the
// offline worker must pre-cache for the shell to load without a network.
package page
