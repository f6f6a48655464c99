package pipeline

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mfenderov/llmsref/internal/frontmatter"
	"github.com/mfenderov/llmsref/internal/markdown"
	"github.com/mfenderov/llmsref/pkg/models"
	"github.com/spf13/afero"
)

// Discover walks root and parses every document with one of the given
// extensions whose name does not start with partialPrefix. Files that
// cannot be read are returned as failures; a missing root is an error.
func Discover(fs afero.Fs, root string, extensions []string, partialPrefix string) ([]models.Document, []Failure, error) {
	info, err := fs.Stat(root)
	if err != nil {
		return nil, nil, fmt.Errorf("docs dir %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("docs dir %s is not a directory", root)
	}

	var docs []models.Document
	var failures []Failure

	err = afero.Walk(fs, root, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			slog.Warn("skipping unreadable path", "path", path, "error", walkErr)
			failures = append(failures, Failure{Path: filepath.ToSlash(path), Err: walkErr})
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			return nil
		}

		name := info.Name()
		if !markdown.IsDocumentFile(name, extensions) || markdown.IsPartial(name, partialPrefix) {
			return nil
		}

		docPath := filepath.ToSlash(path)
		content, err := afero.ReadFile(fs, path)
		if err != nil {
			slog.Warn("failed to read document", "path", docPath, "error", err)
			failures = append(failures, Failure{Path: docPath, Err: err})
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("failed to relativize %s: %w", path, err)
		}

		meta, body := frontmatter.Parse(string(content))
		docs = append(docs, models.Document{
			Path:    docPath,
			RelPath: filepath.ToSlash(rel),
			Content: string(content),
			Meta:    meta,
			Body:    body,
		})
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	slog.Debug("documents discovered", "root", root, "count", len(docs), "failures", len(failures))
	return docs, failures, nil
}
