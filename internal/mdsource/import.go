package mdsource

import (
	"context"
	"fmt"
	"io/fs"
	"net/url"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/finbarsheehy/memodeck/internal/domain"
	"github.com/finbarsheehy/memodeck/internal/engine"
)

// Result summarizes one import pass.
type Result struct {
	Parsed  int
	Added   int
	Skipped int
	Errors  []error
}

// ImportDir walks dir for .md files and adds every draft that is not
// already in the deck. Identity is the content hash, so re-importing
// the same files is idempotent and never resets scheduling state.
func ImportDir(ctx context.Context, eng *engine.Engine, dir string, logger *zap.Logger) (Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	existing := make(map[string]bool)
	for _, card := range eng.Cards() {
		existing[Hash(card.Front, card.Back)] = true
	}

	var res Result
	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}

		drafts, parseErr := ParseFile(path)
		if parseErr != nil {
			res.Errors = append(res.Errors, fmt.Errorf("parsing %s: %w", path, parseErr))
			return nil
		}
		res.Parsed += len(drafts)

		for _, draft := range drafts {
			hash := Hash(draft.Front, draft.Back)
			if existing[hash] {
				res.Skipped++
				continue
			}
			card, createErr := eng.CreateCard(ctx, draft.Front, draft.Back, domain.Options{Tags: draft.Tags})
			if createErr != nil {
				res.Errors = append(res.Errors, fmt.Errorf("adding card from %s: %w", path, createErr))
				continue
			}
			existing[hash] = true
			res.Added++
			logger.Debug("card imported", zap.String("card_id", card.ID), zap.String("file", path))
		}
		return nil
	})
	if walkErr != nil {
		return res, fmt.Errorf("walking %s: %w", dir, walkErr)
	}

	logger.Info("import complete",
		zap.String("dir", dir),
		zap.Int("parsed", res.Parsed),
		zap.Int("added", res.Added),
		zap.Int("skipped", res.Skipped),
		zap.Int("errors", len(res.Errors)),
	)
	return res, nil
}

// ImportSource imports from a local directory or, when the source
// looks like a git URL, from a clone kept under reposDir.
func ImportSource(ctx context.Context, eng *engine.Engine, source, reposDir string, logger *zap.Logger) (Result, error) {
	if !isGitSource(source) {
		return ImportDir(ctx, eng, source, logger)
	}

	localPath, err := gitURLToLocalPath(reposDir, source)
	if err != nil {
		return Result{}, err
	}
	if err := SyncRepo(source, localPath, logger); err != nil {
		return Result{}, err
	}
	return ImportDir(ctx, eng, localPath, logger)
}

func isGitSource(source string) bool {
	return strings.HasSuffix(source, ".git") ||
		strings.HasPrefix(source, "https://") ||
		strings.HasPrefix(source, "http://") ||
		strings.Contains(source, "@")
}

func gitURLToLocalPath(baseDir, repoURL string) (string, error) {
	parsedURL, err := url.Parse(repoURL)
	if err != nil || (parsedURL.Scheme != "https" && parsedURL.Scheme != "http") {
		// scp-like syntax: git@host:user/repo.git
		if strings.Contains(repoURL, "@") {
			parts := strings.Split(repoURL, ":")
			if len(parts) == 2 {
				hostAndUser := strings.Split(parts[0], "@")
				if len(hostAndUser) == 2 {
					host := hostAndUser[1]
					repoPath := strings.TrimSuffix(parts[1], ".git")
					return filepath.Join(baseDir, host, repoPath), nil
				}
			}
		}
		return "", fmt.Errorf("could not parse git URL: %s", repoURL)
	}

	sanitizedPath := strings.TrimSuffix(parsedURL.Path, ".git")
	return filepath.Join(baseDir, parsedURL.Host, sanitizedPath), nil
}
