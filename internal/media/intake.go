package media

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-shellwords"
)

// ExpandPath resolves a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

// SplitPaths splits user input into paths with shell quoting rules, so
// "my video.mp4" and my\ video.mp4 both stay one path. Environment
// variables and backticks are left alone.
func SplitPaths(input string) ([]string, error) {
	parser := shellwords.NewParser()
	parser.ParseEnv = false
	parser.ParseBacktick = false

	paths, err := parser.Parse(input)
	if err != nil {
		return nil, fmt.Errorf("invalid path list: %w", err)
	}
	// The parser stops at an unquoted ; & | < or >, dropping the rest.
	if runes := []rune(input); parser.Position >= 0 && parser.Position < len(runes) {
		return nil, fmt.Errorf("invalid path list: quote or escape %q", runes[parser.Position])
	}
	if len(paths) == 0 {
		return nil, nil
	}
	return paths, nil
}

// Intake opens every path, expanding ~ and glob patterns. Files that fail
// ValidateVideoFile are still returned, with the reason in warnings.
// Paths that cannot be opened at all are reported in err.
func Intake(paths []string) (files []File, warnings []string, err error) {
	var errs []error
	for _, raw := range paths {
		path := ExpandPath(raw)

		matches := []string{path}
		if strings.ContainsAny(path, "*?[") {
			globbed, gerr := filepath.Glob(path)
			if gerr != nil {
				errs = append(errs, fmt.Errorf("%s: %w", raw, gerr))
				continue
			}
			if len(globbed) == 0 {
				errs = append(errs, fmt.Errorf("%s: no files match", raw))
				continue
			}
			matches = globbed
		}

		for _, match := range matches {
			f, oerr := OpenFile(match)
			if oerr != nil {
				errs = append(errs, fmt.Errorf("%s: %w", match, oerr))
				continue
			}
			if verr := ValidateVideoFile(f); verr != nil {
				warnings = append(warnings, fmt.Sprintf("%s: %v", f.Name, verr))
			}
			files = append(files, f)
		}
	}
	return files, warnings, errors.Join(errs...)
}
