package pipeline

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// LinkStatus describes what PublishLink did.
type LinkStatus string

const (
	LinkCreated     LinkStatus = "created"
	LinkReplaced    LinkStatus = "replaced"
	LinkKeptFile    LinkStatus = "kept-regular-file"
	LinkUnsupported LinkStatus = "unsupported"
)

// PublishLink makes target reachable at link through a relative symlink.
// An existing symlink at link is replaced; any other existing file is left
// alone.
func PublishLink(fs afero.Fs, target, link string) (LinkStatus, error) {
	linker, canLink := fs.(afero.Linker)
	lstater, canLstat := fs.(afero.Lstater)
	if !canLink || !canLstat {
		slog.Warn("filesystem does not support symlinks, mirror not published", "link", link)
		return LinkUnsupported, nil
	}

	if err := fs.MkdirAll(filepath.Dir(link), 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", filepath.Dir(link), err)
	}

	status := LinkCreated
	info, _, err := lstater.LstatIfPossible(link)
	switch {
	case err == nil && info.Mode()&os.ModeSymlink != 0:
		if err := fs.Remove(link); err != nil {
			return "", fmt.Errorf("failed to remove old link: %w", err)
		}
		status = LinkReplaced
	case err == nil:
		slog.Warn("mirror location holds a regular file, leaving it untouched", "path", link)
		return LinkKeptFile, nil
	case !os.IsNotExist(err):
		return "", fmt.Errorf("failed to inspect %s: %w", link, err)
	}

	rel, err := relativeTarget(target, link)
	if err != nil {
		return "", err
	}
	if err := linker.SymlinkIfPossible(rel, link); err != nil {
		return "", fmt.Errorf("failed to create link: %w", err)
	}
	return status, nil
}

// relativeTarget returns target as seen from the directory holding link.
func relativeTarget(target, link string) (string, error) {
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return "", err
	}
	absLink, err := filepath.Abs(link)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(filepath.Dir(absLink), absTarget)
	if err != nil {
		return "", fmt.Errorf("failed to relativize %s: %w", target, err)
	}
	return rel, nil
}
