// Package inventory implements the library-scan utility (§6 CLI surface,
// SUPPLEMENTED FEATURES #4): probe every executable in a library
// directory, and symlink the ones that exit 0 into the live plugin
// directory.
package inventory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/preemptive/monchero-agent/internal/discovery"
	"github.com/preemptive/monchero-agent/internal/runner"
)

// Scan runs every eligible executable regular file directly under libDir
// with no arguments, and returns the absolute paths of the ones that
// exited 0. A missing libDir is not an error; it yields an empty
// inventory, matching the source's "does not exist" debug-and-return.
func Scan(ctx context.Context, libDir string, log zerolog.Logger) ([]string, error) {
	abs, err := filepath.Abs(libDir)
	if err != nil {
		return nil, fmt.Errorf("inventory: resolve %s: %w", libDir, err)
	}

	children, err := os.ReadDir(abs)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debug().Str("dir", abs).Msg("library directory does not exist")
			return nil, nil
		}
		return nil, fmt.Errorf("inventory: read %s: %w", abs, err)
	}

	var found []string
	for _, child := range children {
		if child.IsDir() || discovery.IsBackupFile(child.Name()) {
			continue
		}
		info, err := child.Info()
		if err != nil || !info.Mode().IsRegular() || info.Mode()&0o111 == 0 {
			continue
		}

		filename := filepath.Join(abs, child.Name())
		result, err := runner.Run(ctx, runner.MaxTimeout, filename, nil)
		if err != nil {
			log.Debug().Str("filename", filename).Err(err).Msg("inventory probe did not run to completion")
			continue
		}
		if result.ExitCode == 0 {
			found = append(found, filename)
		}
	}
	return found, nil
}

// Install symlinks every item in inventory into pluginDir, using the
// item's base name as the link name. Per §9's resolved open question, an
// existing symlink pointing elsewhere, or an existing non-symlink file,
// is left untouched: logged as a warning and skipped, never overwritten
// or repaired.
func Install(inventory []string, pluginDir string, log zerolog.Logger) error {
	for _, item := range inventory {
		dest := filepath.Join(pluginDir, filepath.Base(item))

		link, err := os.Readlink(dest)
		switch {
		case err == nil:
			if link == item {
				log.Debug().Str("dest", dest).Msg("link is already correct")
			} else {
				log.Warn().Str("dest", dest).Str("link", link).Msg("could not overwrite symlink pointing elsewhere")
			}
			continue
		case os.IsNotExist(err):
			// Fall through to create it.
		default:
			// Exists but is not a symlink (os.Readlink's EINVAL case).
			log.Warn().Str("dest", dest).Msg("could not overwrite existing non-symlink file")
			continue
		}

		if err := os.Symlink(item, dest); err != nil {
			return fmt.Errorf("inventory: symlink %s -> %s: %w", dest, item, err)
		}
	}
	return nil
}
