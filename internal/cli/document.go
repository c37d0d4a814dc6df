package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"docai/config"
	"docai/internal/adapter/cache"
	"docai/internal/adapter/decider"
	"docai/internal/adapter/llm"
	"docai/internal/adapter/splicer"
	"docai/internal/adapter/store"
	"docai/internal/adapter/treesitter"
	"docai/internal/adapter/vcs"
	"docai/internal/domain"
	"docai/internal/port"
	"docai/internal/usecase"
)

var (
	docLanguage    string
	docProvider    string
	docModel       string
	docBaseURL     string
	docInline      bool
	docGuided      bool
	docAllowDirty  bool
	docDryRun      bool
	docConcurrency int
	docNoCache     bool
	docSpliceMode  string
)

func init() {
	f := rootCmd.Flags()
	f.StringVarP(&docLanguage, "language", "l", "", "language tag (default from file extension)")
	f.StringVar(&docProvider, "provider", "", "generation backend: "+fmt.Sprint(llm.Providers()))
	f.StringVar(&docModel, "model", "", "model identifier (default from config)")
	f.StringVar(&docBaseURL, "base-url", "", "override the backend endpoint")
	f.BoolVar(&docInline, "inline", false, "also add inline comments to method bodies")
	f.BoolVar(&docGuided, "guided", false, "confirm each method before generating")
	f.BoolVar(&docAllowDirty, "allow-dirty", false, "skip the uncommitted changes check")
	f.BoolVar(&docDryRun, "dry-run", false, "print the result instead of writing the file")
	f.IntVar(&docConcurrency, "concurrency", 0, "parallel generation requests (default from config)")
	f.BoolVar(&docNoCache, "no-cache", false, "bypass the generated doc cache")
	f.StringVar(&docSpliceMode, "splice-mode", "", "offset or search (default from config)")
}

func runDocument(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	target := GetRootDir()
	if len(args) > 0 {
		target = args[0]
	}

	mode, err := splicer.ParseMode(firstNonEmpty(docSpliceMode, cfg.Document.SpliceMode))
	if err != nil {
		return err
	}

	var dec port.Decider = decider.AcceptAll{}
	if docGuided {
		prompt, err := decider.NewPrompt()
		if err != nil {
			return err
		}
		dec = prompt
	}

	gen, closeGen, err := buildGenerator(cfg)
	if err != nil {
		return err
	}
	defer closeGen()

	parser := treesitter.NewParser()
	defer parser.Close()

	documentUC := usecase.NewDocumentUseCase(parser, gen, dec, vcs.NewGit(), splicer.New(mode))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	concurrency := cfg.Generation.Concurrency
	if docConcurrency > 0 {
		concurrency = docConcurrency
	}
	if docGuided && concurrency > 1 {
		log.Debug().Msg("Guided mode runs generation after all confirmations")
	}

	spinner := newSpinner(docDryRun || docGuided)
	opts := usecase.Options{
		Language:    docLanguage,
		Inline:      docInline || cfg.Document.Inline,
		Guided:      docGuided,
		AllowDirty:  docAllowDirty || cfg.Document.AllowDirty,
		DryRun:      docDryRun,
		Concurrency: concurrency,
		Progress:    spinner.update,
	}

	log.Info().Str("target", target).Str("provider", cfg.Generation.Provider).Str("model", gen.ModelName()).Msg("Starting run")
	batch, err := documentUC.RunPath(ctx, target, usecase.Selection{
		Includes: cfg.Document.Includes,
		Excludes: cfg.Document.Excludes,
	}, opts)
	spinner.finish()
	if err != nil {
		return err
	}

	printBatch(batch, docDryRun)
	return nil
}

// buildGenerator wires the configured backend behind the memory and bolt caches.
func buildGenerator(cfg *config.Config) (port.Generator, func(), error) {
	gc := cfg.Generation
	provider := firstNonEmpty(docProvider, gc.Provider)
	model := docModel
	if model == "" && provider == gc.Provider {
		model = gc.Model
	}

	gen, err := llm.New(llm.Settings{
		Provider:    provider,
		Model:       model,
		BaseURL:     firstNonEmpty(docBaseURL, gc.BaseURL),
		APIKeyEnv:   gc.APIKeyEnv,
		MaxTokens:   gc.MaxTokens,
		Temperature: gc.Temperature,
		Timeout:     gc.Timeout,
		MaxRetries:  gc.MaxRetries,
	})
	if err != nil {
		return nil, nil, err
	}
	cfg.Generation.Provider = provider

	if docNoCache || !cfg.Cache.Enabled || provider == "mock" {
		return gen, func() {}, nil
	}

	namespace := provider + "/" + gen.ModelName() + "/" + llm.PromptHash()
	layers := []port.DocCache{cache.NewMemoryCache(cfg.Cache.MemorySize, cfg.Cache.MemoryTTL)}

	if cfg.Cache.Path == "" {
		if err := config.EnsureDir(GetRootDir()); err != nil {
			return nil, nil, fmt.Errorf("failed to create .docai directory: %w", err)
		}
	}
	dbPath := cfg.CacheDBPath(GetRootDir())
	bolt, err := store.OpenBoltCache(dbPath, llm.PromptHash())
	if err != nil {
		log.Warn().Err(err).Str("path", dbPath).Msg("Doc cache unavailable, continuing without it")
		return cache.NewCachedGenerator(gen, namespace, layers...), func() {}, nil
	}
	layers = append(layers, bolt)
	return cache.NewCachedGenerator(gen, namespace, layers...), func() { bolt.Close() }, nil
}

// spinner drives a progressbar spinner from use case progress events.
type spinner struct {
	mu  sync.Mutex
	bar *progressbar.ProgressBar
}

func newSpinner(disabled bool) *spinner {
	if disabled || !stderrIsTerminal() {
		return &spinner{}
	}
	return &spinner{bar: progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetDescription("[cyan]Generating doc comments[reset]"),
		progressbar.OptionClearOnFinish(),
	)}
}

func (s *spinner) update(ev usecase.ProgressEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev.Kind {
	case usecase.EventUnitStarted:
		if s.bar != nil {
			s.bar.Describe(fmt.Sprintf("[cyan]%s[reset] %s (%d/%d)", filepath.Base(ev.Path), ev.Unit.Name, ev.Index+1, ev.Total))
			s.bar.Add(1)
		}
	case usecase.EventUnitFinished:
		if ev.Err != nil {
			log.Debug().Err(ev.Err).Str("unit", ev.Unit.Name).Msg("Unit failed")
		}
	}
}

func (s *spinner) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bar != nil {
		s.bar.Finish()
	}
}

func printBatch(batch *usecase.BatchResult, dryRun bool) {
	for _, res := range batch.Files {
		if dryRun {
			fmt.Printf("==> %s <==\n%s", res.Path, res.Content)
			continue
		}
		for _, u := range res.Units {
			fmt.Printf("%s  %s:%d %s\n", outcomeIcon(u.Outcome), res.Path, u.StartLine, u.Name)
		}
	}

	documented, skipped, declined, failed, missed := 0, 0, 0, 0, 0
	for _, res := range batch.Files {
		documented += res.Documented
		skipped += res.SkippedExisting
		declined += res.Declined
		failed += res.Failed
		missed += res.Missed
	}

	fmt.Printf("\nDocumentation complete:\n")
	fmt.Printf("  Files processed:   %d\n", len(batch.Files))
	if batch.FilesFailed > 0 {
		fmt.Printf("  Files failed:      %d\n", batch.FilesFailed)
	}
	fmt.Printf("  Methods documented: %d\n", documented)
	fmt.Printf("  Already documented: %d\n", skipped)
	if declined > 0 {
		fmt.Printf("  Declined:           %d\n", declined)
	}
	if failed+missed > 0 {
		fmt.Printf("  Failed:             %d\n", failed+missed)
	}

	if len(batch.Warnings) > 0 {
		fmt.Printf("\nWarnings:\n")
		for _, w := range batch.Warnings {
			fmt.Printf("  - %s\n", w)
		}
	}
}

func outcomeIcon(o domain.UnitOutcome) string {
	switch o {
	case domain.OutcomeDocumented:
		return "✅"
	case domain.OutcomeSkippedExisting:
		return "⏭ "
	case domain.OutcomeDeclined:
		return "🚫"
	default:
		return "⚠️ "
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
