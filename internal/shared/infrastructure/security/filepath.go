// Package security guards the file reads driven by configuration: calendar fixtures and OAuth tokens.
package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var ErrOutsideDir = errors.New("path escapes base directory")

// forbiddenChars are shell metacharacters never expected in a configured path.
const forbiddenChars = ";&|$`(){}<>!\n\r"

// CleanPath makes path absolute, removes dot segments and resolves symlinks when the file exists.
func CleanPath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("file path cannot be empty")
	}
	if i := strings.IndexAny(path, forbiddenChars); i >= 0 {
		return "", fmt.Errorf("file path contains forbidden character %q: %s", path[i], path)
	}

	abs, err := absolute(path)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return abs, nil
		}
		return "", fmt.Errorf("failed to resolve file path: %w", err)
	}
	return resolved, nil
}

// CleanPathInDir is CleanPath plus a check that the result stays inside baseDir.
func CleanPathInDir(path, baseDir string) (string, error) {
	if baseDir == "" {
		return "", fmt.Errorf("base directory cannot be empty")
	}
	cleaned, err := CleanPath(path)
	if err != nil {
		return "", err
	}
	base, err := absolute(baseDir)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(base); err == nil {
		base = resolved
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to resolve base directory: %w", err)
	}

	// The separator suffix stops /tokens matching /tokens-old.
	if cleaned != base && !strings.HasPrefix(cleaned, base+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s is not within %s", ErrOutsideDir, path, baseDir)
	}
	return cleaned, nil
}

// ReadFile reads path after CleanPath.
func ReadFile(path string) ([]byte, error) {
	cleaned, err := CleanPath(path)
	if err != nil {
		return nil, err
	}
	// #nosec G304 - path is validated above
	return os.ReadFile(cleaned)
}

// ReadFileInDir reads path after CleanPathInDir.
func ReadFileInDir(path, baseDir string) ([]byte, error) {
	cleaned, err := CleanPathInDir(path, baseDir)
	if err != nil {
		return nil, err
	}
	// #nosec G304 - path is validated above
	return os.ReadFile(cleaned)
}

func absolute(path string) (string, error) {
	cleaned := filepath.Clean(path)
	if filepath.IsAbs(cleaned) {
		return cleaned, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}
	return filepath.Join(cwd, cleaned), nil
}
