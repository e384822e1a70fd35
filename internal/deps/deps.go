// Package deps reports which external programs are available. Uploading
// needs none of them; they enable previews, notifications, the browser
// hand-off during sign-in and clipboard copies.
package deps

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Feature names what a missing program disables
type Feature string

const (
	FeaturePreview       Feature = "preview"
	FeatureNotifications Feature = "notifications"
	FeatureBrowser       Feature = "browser"
	FeatureClipboard     Feature = "clipboard"
)

// Dependency represents an external program
type Dependency struct {
	Name        string // Command name (e.g., "ffmpeg")
	Description string // Human-readable description
	Feature     Feature
}

// CheckResult contains the result of checking a dependency
type CheckResult struct {
	Dependency Dependency
	Available  bool
	Path       string // Path to the executable if found
	Error      error  // Error if check failed
}

// Session represents the graphical session type, which decides the clipboard tool
type Session string

const (
	SessionWayland Session = "wayland"
	SessionX11     Session = "x11"
	SessionNone    Session = "none"
)

// DetectSession determines if running on Wayland, X11 or a bare terminal
func DetectSession() Session {
	if os.Getenv("WAYLAND_DISPLAY") != "" {
		return SessionWayland
	}
	if os.Getenv("DISPLAY") != "" {
		return SessionX11
	}
	return SessionNone
}

// BaseDeps lists programs used regardless of session
var BaseDeps = []Dependency{
	{Name: "ffmpeg", Description: "Thumbnail extraction for previews", Feature: FeaturePreview},
	{Name: "ffprobe", Description: "Video duration for thumbnail timing", Feature: FeaturePreview},
	{Name: "notify-send", Description: "Desktop notifications", Feature: FeatureNotifications},
	{Name: "xdg-open", Description: "Opening the sign-in page in a browser", Feature: FeatureBrowser},
}

// WaylandDeps lists programs specific to Wayland
var WaylandDeps = []Dependency{
	{Name: "wl-copy", Description: "Clipboard access on Wayland", Feature: FeatureClipboard},
}

// X11Deps lists programs specific to X11
var X11Deps = []Dependency{
	{Name: "xclip", Description: "Clipboard access on X11", Feature: FeatureClipboard},
}

// GetDeps returns the programs relevant to the current session
func GetDeps() []Dependency {
	deps := make([]Dependency, len(BaseDeps))
	copy(deps, BaseDeps)

	switch DetectSession() {
	case SessionWayland:
		deps = append(deps, WaylandDeps...)
	case SessionX11:
		deps = append(deps, X11Deps...)
	}
	return deps
}

// LookPath finds an executable; replaced in tests
var LookPath = exec.LookPath

// Check verifies if a single dependency is available
func Check(dep Dependency) CheckResult {
	result := CheckResult{Dependency: dep}

	path, err := LookPath(dep.Name)
	if err != nil {
		result.Error = err
	} else {
		result.Available = true
		result.Path = path
	}
	return result
}

// CheckAll verifies every dependency for the current session
func CheckAll() []CheckResult {
	var results []CheckResult
	for _, dep := range GetDeps() {
		results = append(results, Check(dep))
	}
	return results
}

// Missing returns the results whose program was not found
func Missing(results []CheckResult) []CheckResult {
	var missing []CheckResult
	for _, r := range results {
		if !r.Available {
			missing = append(missing, r)
		}
	}
	return missing
}

// FormatAll returns a formatted string of all dependency check results
func FormatAll(results []CheckResult) string {
	var sb strings.Builder

	for _, r := range results {
		status := "✓"
		if !r.Available {
			status = "○"
		}
		sb.WriteString(fmt.Sprintf("  %s %s - %s\n", status, r.Dependency.Name, r.Dependency.Description))
		if r.Available {
			sb.WriteString(fmt.Sprintf("      Path: %s\n", r.Path))
		} else {
			sb.WriteString(fmt.Sprintf("      Disables: %s\n", r.Dependency.Feature))
		}
	}

	return sb.String()
}
