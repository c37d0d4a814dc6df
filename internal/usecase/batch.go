package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"docai/internal/adapter/fs"
	"docai/internal/domain"
	"docai/internal/port"
)

// Selection picks files in directory mode. Empty Includes derive patterns
// from the language's extensions (or every supported extension).
type Selection struct {
	Includes []string
	Excludes []string
}

// BatchResult aggregates the per-file results of a directory run.
type BatchResult struct {
	Files        []*DocumentResult
	FilesSkipped int
	FilesFailed  int
	Warnings     []string
}

// Documented sums documented units over all files.
func (b *BatchResult) Documented() int {
	n := 0
	for _, f := range b.Files {
		n += f.Documented
	}
	return n
}

// RunPath documents a file, or every selected file under a directory. In
// directory mode a failing file is recorded and the walk continues.
func (u *DocumentUseCase) RunPath(ctx context.Context, root string, sel Selection, opts Options) (*BatchResult, error) {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &domain.PreconditionError{Path: root, Reason: "target does not exist", Err: domain.ErrTargetMissing}
		}
		return nil, err
	}

	batch := &BatchResult{}
	if !info.IsDir() {
		res, err := u.Run(ctx, root, opts)
		if err != nil {
			return nil, err
		}
		batch.Files = append(batch.Files, res)
		return batch, nil
	}

	if opts.Language != "" {
		if _, err := domain.ParseLanguage(opts.Language); err != nil {
			return nil, err
		}
	}
	includes := sel.Includes
	if len(includes) == 0 {
		includes = fs.IncludesForExtensions(extensionsFor(opts.Language))
	}
	excludes := sel.Excludes
	if excludes == nil {
		excludes = fs.DefaultExcludes
	}

	var walker port.FileWalker = fs.NewWalker(includes, excludes)
	files, err := walker.Walk(root)
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}
	log.Info().Str("root", root).Int("files", len(files)).Msg("Documenting directory")

	for _, file := range files {
		if ctx.Err() != nil {
			batch.Warnings = append(batch.Warnings, "run cancelled")
			break
		}

		res, err := u.Run(ctx, file.Path, opts)
		switch {
		case errors.Is(err, domain.ErrNoMethods):
			batch.FilesSkipped++
			continue
		case err != nil:
			batch.FilesFailed++
			batch.Warnings = append(batch.Warnings, fmt.Sprintf("%s: %v", file.Path, err))
			log.Warn().Err(err).Str("file", file.Path).Msg("Skipping file")
			continue
		}
		batch.Files = append(batch.Files, res)
		for _, w := range res.Warnings {
			batch.Warnings = append(batch.Warnings, fmt.Sprintf("%s: %s", file.Path, w))
		}
		if res.Cancelled {
			break
		}
	}
	return batch, nil
}

func extensionsFor(tag string) []string {
	if tag != "" {
		if lang, err := domain.ParseLanguage(tag); err == nil {
			return lang.Extensions()
		}
	}
	var exts []string
	for _, lang := range domain.SupportedLanguages {
		exts = append(exts, lang.Extensions()...)
	}
	return exts
}
