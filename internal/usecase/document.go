package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog/log"

	"docai/internal/adapter/fs"
	"docai/internal/adapter/splicer"
	"docai/internal/domain"
	"docai/internal/port"
	"docai/internal/worker"
)

// Options control one documentation run.
type Options struct {
	// Language is a language tag. Empty derives the language from the file extension.
	Language    string
	Inline      bool
	Guided      bool
	AllowDirty  bool
	DryRun      bool
	Concurrency int
	Progress    ProgressFunc
}

// EventKind tags a progress event.
type EventKind int

const (
	EventUnitStarted EventKind = iota
	EventUnitFinished
)

// ProgressEvent reports generation progress for one unit.
type ProgressEvent struct {
	Kind    EventKind
	Path    string
	Unit    domain.MethodUnit
	Index   int
	Total   int
	Outcome domain.UnitOutcome
	Err     error
}

type ProgressFunc func(ProgressEvent)

// UnitReport is the outcome of one method unit.
type UnitReport struct {
	Name      string
	Kind      string
	StartLine int
	Outcome   domain.UnitOutcome
	Detail    string
}

// DocumentResult contains the results of a documentation run on one file.
type DocumentResult struct {
	Path     string
	Language domain.Language
	Units    []UnitReport

	Documented      int
	SkippedExisting int
	Declined        int
	Failed          int
	Missed          int

	// Content is the rewritten file content, also set on dry runs.
	Content   string
	Written   bool
	Cancelled bool
	Warnings  []string
}

func (r *DocumentResult) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *DocumentResult) sortUnits() {
	sort.SliceStable(r.Units, func(i, j int) bool {
		return r.Units[i].StartLine < r.Units[j].StartLine
	})
}

func (r *DocumentResult) record(u domain.MethodUnit, outcome domain.UnitOutcome, detail string) {
	r.Units = append(r.Units, UnitReport{
		Name:      u.Name,
		Kind:      u.Kind,
		StartLine: u.StartLine,
		Outcome:   outcome,
		Detail:    detail,
	})
	switch outcome {
	case domain.OutcomeDocumented:
		r.Documented++
	case domain.OutcomeSkippedExisting:
		r.SkippedExisting++
	case domain.OutcomeDeclined:
		r.Declined++
	case domain.OutcomeGenerationError:
		r.Failed++
	case domain.OutcomeSpliceMiss:
		r.Missed++
	}
}

// DocumentUseCase adds generated doc comments to the methods of a file.
type DocumentUseCase struct {
	parser    port.StructuralParser
	generator port.Generator
	decider   port.Decider
	vcs       port.VersionControl
	splicer   *splicer.Splicer
}

func NewDocumentUseCase(
	parser port.StructuralParser,
	generator port.Generator,
	decider port.Decider,
	vcs port.VersionControl,
	sp *splicer.Splicer,
) *DocumentUseCase {
	if sp == nil {
		sp = splicer.New(splicer.ModeOffset)
	}
	return &DocumentUseCase{
		parser:    parser,
		generator: generator,
		decider:   decider,
		vcs:       vcs,
		splicer:   sp,
	}
}

// Run documents a single file. Precondition failures and parse errors abort
// the run before any generation; per-unit failures are recorded in the result.
func (u *DocumentUseCase) Run(ctx context.Context, path string, opts Options) (*DocumentResult, error) {
	lang, err := u.resolveLanguage(path, opts.Language)
	if err != nil {
		return nil, err
	}
	if err := u.checkTarget(ctx, path, lang, opts.AllowDirty); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &domain.PreconditionError{Path: path, Reason: "cannot read target", Err: err}
	}
	content := string(data)

	units, err := u.parser.Parse(ctx, data, lang)
	if err != nil {
		var perr *domain.ParseError
		if errors.As(err, &perr) {
			perr.Path = path
		}
		return nil, err
	}

	result := &DocumentResult{Path: path, Language: lang, Content: content}
	defer result.sortUnits()
	logger := log.With().Str("file", path).Str("language", string(lang)).Logger()
	logger.Debug().Int("units", len(units)).Msg("Parsed file")

	selected, err := u.selectUnits(ctx, units, opts, result)
	if err != nil {
		return nil, err
	}
	if len(selected) == 0 {
		logger.Info().Msg("Nothing to document")
		return result, nil
	}

	generated := u.generate(ctx, path, content, lang, selected, opts)

	var reps []domain.Replacement
	var pending []domain.MethodUnit
	for i, task := range generated {
		unit := selected[i]
		switch {
		case !task.Done:
			result.Cancelled = true
			result.record(unit, domain.OutcomeGenerationError, "cancelled")
		case task.Err != nil:
			gerr := &domain.GenerationError{Unit: unit.Name, Err: task.Err}
			logger.Warn().Err(task.Err).Str("unit", unit.Name).Msg("Generation failed, skipping unit")
			result.warn("%v", gerr)
			result.record(unit, domain.OutcomeGenerationError, task.Err.Error())
		default:
			reps = append(reps, domain.NewReplacement(unit, task.Result))
			pending = append(pending, unit)
		}
	}

	if len(reps) == 0 {
		return result, nil
	}

	newContent, report := u.splicer.Splice(content, reps)
	missed := make(map[string]int)
	for _, m := range report.Misses {
		missed[m.Name]++
		logger.Warn().Str("unit", m.Name).Str("reason", m.Reason).Msg("Could not splice doc comment")
		result.warn("splice %s", m)
	}
	for _, unit := range pending {
		if missed[unit.Name] > 0 {
			missed[unit.Name]--
			result.record(unit, domain.OutcomeSpliceMiss, "")
			continue
		}
		result.record(unit, domain.OutcomeDocumented, "")
	}
	result.Content = newContent

	if report.Applied == 0 || opts.DryRun {
		return result, nil
	}
	if err := fs.WriteFileAtomic(path, newContent); err != nil {
		return result, fmt.Errorf("write %s: %w", path, err)
	}
	result.Written = true
	logger.Info().Int("documented", result.Documented).Msg("File updated")
	return result, nil
}

func (u *DocumentUseCase) resolveLanguage(path, tag string) (domain.Language, error) {
	var lang domain.Language
	if tag != "" {
		var err error
		if lang, err = domain.ParseLanguage(tag); err != nil {
			return lang, err
		}
	} else {
		lang = domain.LanguageFromExtension(filepath.Ext(path))
		if !lang.Known() {
			return lang, &domain.PreconditionError{
				Path:   path,
				Reason: "cannot determine language from file extension, pass a language tag",
				Err:    domain.ErrUnknownLanguage,
			}
		}
	}
	if !u.parser.Supports(lang) {
		return lang, &domain.PreconditionError{
			Path:     path,
			Language: string(lang),
			Reason:   "no structural rules for language",
			Err:      domain.ErrUnknownLanguage,
		}
	}
	return lang, nil
}

func (u *DocumentUseCase) checkTarget(ctx context.Context, path string, lang domain.Language, allowDirty bool) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &domain.PreconditionError{Path: path, Reason: "target does not exist", Err: domain.ErrTargetMissing}
		}
		return &domain.PreconditionError{Path: path, Reason: "cannot stat target", Err: err}
	}
	if !info.Mode().IsRegular() {
		return &domain.PreconditionError{Path: path, Reason: "target is not a regular file", Err: domain.ErrNotAFile}
	}

	if allowDirty || u.vcs == nil {
		return nil
	}
	dirty, err := u.vcs.HasUncommittedChanges(ctx, path)
	if err != nil {
		return &domain.PreconditionError{
			Path:   path,
			Reason: "version control check failed (use --allow-dirty outside a repository)",
			Err:    err,
		}
	}
	if dirty {
		return &domain.PreconditionError{
			Path:     path,
			Language: string(lang),
			Reason:   "file has uncommitted changes, commit or stash them first",
			Err:      domain.ErrDirty,
		}
	}
	return nil
}

func (u *DocumentUseCase) selectUnits(ctx context.Context, units []domain.MethodUnit, opts Options, result *DocumentResult) ([]domain.MethodUnit, error) {
	var selected []domain.MethodUnit
	for _, unit := range units {
		if unit.HasDocComment {
			log.Debug().Str("unit", unit.Name).Msg("Already documented, skipping")
			result.record(unit, domain.OutcomeSkippedExisting, "")
			continue
		}
		if opts.Guided && u.decider != nil {
			ok, err := u.decider.Decide(ctx, unit)
			if err != nil {
				return nil, fmt.Errorf("guided confirmation: %w", err)
			}
			if !ok {
				result.record(unit, domain.OutcomeDeclined, "")
				continue
			}
		}
		selected = append(selected, unit)
	}
	return selected, nil
}

func (u *DocumentUseCase) generate(ctx context.Context, path, content string, lang domain.Language, units []domain.MethodUnit, opts Options) []worker.Task[int, string] {
	progress := opts.Progress
	if progress == nil {
		progress = func(ProgressEvent) {}
	}

	indexes := make([]int, len(units))
	for i := range units {
		indexes[i] = i
	}

	pool := worker.NewPool(opts.Concurrency, func(ctx context.Context, i int) (string, error) {
		unit := units[i]
		progress(ProgressEvent{Kind: EventUnitStarted, Path: path, Unit: unit, Index: i, Total: len(units)})

		indentation := splicer.IndentationAt(content, unit.StartByte)
		out, err := u.generator.Generate(ctx, domain.GenerationRequest{
			Language: lang,
			Source:   splicer.Dedent(unit.Source, indentation),
			Inline:   opts.Inline,
		})

		outcome := domain.OutcomeDocumented
		if err != nil {
			outcome = domain.OutcomeGenerationError
		}
		progress(ProgressEvent{Kind: EventUnitFinished, Path: path, Unit: unit, Index: i, Total: len(units), Outcome: outcome, Err: err})
		return out, err
	})
	return pool.Execute(ctx, indexes)
}
