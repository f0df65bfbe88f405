// Package main provides the CLI entrypoint for pictoword.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/pictoword/internal/catalog"
	"github.com/verte-zerg/pictoword/internal/config"
	"github.com/verte-zerg/pictoword/internal/coordinator"
	"github.com/verte-zerg/pictoword/internal/gallery"
	"github.com/verte-zerg/pictoword/internal/imagegen"
	"github.com/verte-zerg/pictoword/internal/logging"
	"github.com/verte-zerg/pictoword/internal/model"
	"github.com/verte-zerg/pictoword/internal/picker"
	"github.com/verte-zerg/pictoword/internal/presentation"
	"github.com/verte-zerg/pictoword/internal/safety"
	"github.com/verte-zerg/pictoword/internal/store"
	"github.com/verte-zerg/pictoword/internal/tui"
)

const (
	defaultImages  = 1
	defaultButtons = picker.DefaultButtons
	maxButtons     = 9
	maxImages      = 10
	previewCols    = 32
)

var (
	playImages    int
	playTimeout   time.Duration
	playButtons   int
	playSecondary bool
	playOut       string
	playAPIKey    string
	logLevel      string

	wordsSlot string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "pictoword",
		Short:         "Build a three-word sentence and get a picture of it",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPlayCmd,
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (default: $"+logging.LevelEnv+" or info)")
	rootCmd.PersistentFlags().IntVar(&playImages, "images", defaultImages, "images per generation")
	rootCmd.PersistentFlags().DurationVar(&playTimeout, "timeout", imagegen.DefaultTimeout, "generation request timeout")
	rootCmd.PersistentFlags().StringVar(&playOut, "out", "", "directory for saved pictures (default: "+config.DefaultGalleryDir()+")")
	rootCmd.PersistentFlags().StringVar(&playAPIKey, "api-key", "", "image service key (default: $"+config.APIKeyEnv+")")
	rootCmd.Flags().IntVar(&playButtons, "buttons", defaultButtons, "candidate words per step")
	rootCmd.Flags().BoolVar(&playSecondary, "secondary", false, "show words in the secondary language")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newWordsCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newGenerateCmd())

	return rootCmd
}

// settings gathers everything resolved from flags and the config file.
type settings struct {
	cfg      model.Config
	endpoint string
	apiKey   string
}

func resolveSettings(cmd *cobra.Command) (settings, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return settings{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "images", &playImages, fileCfg.Generation.Images)
	applyIntConfig(cmd, "buttons", &playButtons, fileCfg.Selection.ButtonsPerStep)
	applyBoolConfig(cmd, "secondary", &playSecondary, fileCfg.Selection.Secondary)
	applyStringConfig(cmd, "out", &playOut, fileCfg.Output.Dir)
	if err := applyDurationConfig(cmd, "timeout", "generation.timeout", &playTimeout, fileCfg.Generation.Timeout); err != nil {
		return settings{}, err
	}

	gen := model.GenerationConfig{
		Endpoint: imagegen.DefaultEndpoint,
		Images:   playImages,
		Timeout:  playTimeout,
		Width:    imagegen.DefaultWidth,
		Height:   imagegen.DefaultHeight,
		Steps:    imagegen.DefaultSteps,
		CfgScale: imagegen.DefaultCfgScale,
	}
	if v := fileCfg.Generation.Endpoint; v != nil {
		gen.Endpoint = *v
	}
	if v := fileCfg.Generation.Width; v != nil {
		gen.Width = *v
	}
	if v := fileCfg.Generation.Height; v != nil {
		gen.Height = *v
	}
	if v := fileCfg.Generation.Steps; v != nil {
		gen.Steps = *v
	}
	if v := fileCfg.Generation.CfgScale; v != nil {
		gen.CfgScale = *v
	}
	if d, ok, err := config.ParseDuration("generation.cache-ttl", fileCfg.Generation.CacheTTL); err != nil {
		return settings{}, err
	} else if ok {
		gen.CacheTTL = d
	}
	if d, ok, err := config.ParseDuration("generation.min-interval", fileCfg.Generation.MinInterval); err != nil {
		return settings{}, err
	} else if ok {
		gen.MinInterval = d
	}
	gen.APIKey = config.ResolveAPIKey(playAPIKey, fileCfg.Generation.APIKey)

	pres := model.PresentationConfig{Frames: presentation.DefaultFrames, Interval: presentation.DefaultInterval}
	if v := fileCfg.Presentation.Frames; v != nil {
		pres.Frames = *v
	}
	if d, ok, err := config.ParseDuration("presentation.interval", fileCfg.Presentation.Interval); err != nil {
		return settings{}, err
	} else if ok {
		pres.Interval = d
	}

	outDir := playOut
	if outDir == "" {
		outDir = config.DefaultGalleryDir()
	}
	cfg := model.Config{
		Generation:   gen,
		Selection:    model.SelectionConfig{ButtonsPerStep: playButtons, Secondary: playSecondary},
		Presentation: pres,
		OutputDir:    outDir,
	}
	if err := validateConfig(cfg); err != nil {
		return settings{}, err
	}
	return settings{cfg: cfg, endpoint: gen.Endpoint, apiKey: gen.APIKey}, nil
}

func newClient(cfg model.GenerationConfig, filter *safety.Filter) *imagegen.Client {
	if cfg.APIKey == "" {
		log.Warn().Str("env", config.APIKeyEnv).Msg("No image service key; pictures will be placeholders")
	}
	return imagegen.New(imagegen.Options{
		Endpoint:    cfg.Endpoint,
		APIKey:      cfg.APIKey,
		Timeout:     cfg.Timeout,
		Width:       cfg.Width,
		Height:      cfg.Height,
		Steps:       cfg.Steps,
		CfgScale:    cfg.CfgScale,
		CacheTTL:    cfg.CacheTTL,
		MinInterval: cfg.MinInterval,
	}, imagegen.NewHTTPTransport(), filter)
}

// openCatalog opens the word store and loads the safe words from it.
func openCatalog(ctx context.Context, filter *safety.Filter) (*store.Store, *catalog.Catalog, error) {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db: %w", err)
	}
	cat, err := catalog.FromStore(ctx, st, catalog.SafeWords(filter))
	if err != nil {
		closeStore(st)
		return nil, nil, fmt.Errorf("failed to load words: %w", err)
	}
	return st, cat, nil
}

func closeStore(st *store.Store) {
	if err := st.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close db")
	}
}

func runPlayCmd(cmd *cobra.Command, _ []string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("play needs an interactive terminal; use: pictoword generate <subject> <object> <verb>")
	}
	closeLog, err := logging.InitFile(config.DefaultLogPath(), logLevel)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeLog(); cerr != nil {
			logErrf("failed to close log: %v\n", cerr)
		}
	}()

	s, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	filter := safety.New()
	st, cat, err := openCatalog(cmd.Context(), filter)
	if err != nil {
		return err
	}
	defer closeStore(st)

	m := tui.New(tui.Options{
		Catalog:    cat,
		Picker:     picker.New(),
		Generator:  newClient(s.cfg.Generation, filter),
		Gallery:    gallery.New(s.cfg.OutputDir),
		ImageCount: s.cfg.Generation.Images,
		Buttons:    s.cfg.Selection.ButtonsPerStep,
		Secondary:  s.cfg.Selection.Secondary,
		Frames:     s.cfg.Presentation.Frames,
		Interval:   s.cfg.Presentation.Interval,
	})
	defer m.Close()

	log.Info().Str("endpoint", s.endpoint).Int("words", cat.Len()).Msg("Starting play session")
	program := tea.NewProgram(m, tea.WithAltScreen())
	m.SetSender(program.Send)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newWordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "words",
		Short: "List catalog words",
		Args:  cobra.NoArgs,
		RunE:  runWordsCmd,
	}
	cmd.Flags().StringVar(&wordsSlot, "slot", "", "only list one slot: subject, object or verb")
	return cmd
}

func runWordsCmd(cmd *cobra.Command, _ []string) error {
	logging.Init(os.Stderr, logLevel)
	kinds := model.SlotKinds[:]
	if wordsSlot != "" {
		kind, err := model.ParseSlotKind(wordsSlot)
		if err != nil {
			return fmt.Errorf("--slot must be subject, object or verb: %w", err)
		}
		kinds = []model.SlotKind{kind}
	}
	filter := safety.New()
	st, _, err := openCatalog(cmd.Context(), filter)
	if err != nil {
		return err
	}
	defer closeStore(st)
	return writeWords(cmd.Context(), cmd.OutOrStdout(), st, kinds, catalog.SafeWords(filter))
}

// writeWords prints the stored words of each kind, one per line.
func writeWords(ctx context.Context, w io.Writer, st catalog.SlotStore, kinds []model.SlotKind, keep catalog.FilterFunc) error {
	for _, kind := range kinds {
		words, err := catalog.SlotWords(ctx, st, kind, keep)
		if err != nil {
			return err
		}
		for _, word := range words {
			if _, err := fmt.Fprintf(w, "%s\t%s\t%s\n", kind, word.Text, word.TextAlt); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}
	}
	return nil
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.toml>",
		Short: "Replace the word catalog with words from a TOML file",
		Args:  cobra.ExactArgs(1),
		RunE:  runImportCmd,
	}
}

func runImportCmd(cmd *cobra.Command, args []string) error {
	logging.Init(os.Stderr, logLevel)
	entries, err := catalog.Load(args[0])
	if err != nil {
		return err
	}
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer closeStore(st)

	n, err := catalog.Import(cmd.Context(), st, entries, catalog.SafeWords(safety.New()))
	if err != nil {
		return fmt.Errorf("failed to import %s: %w", args[0], err)
	}
	logErrf("Imported %d of %d words\n", n, len(entries))
	return nil
}

func newGenerateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate <subject> <object> <verb>",
		Short: "Draw a sentence without the TUI and save the pictures",
		Args:  cobra.ExactArgs(model.SlotCount),
		RunE:  runGenerateCmd,
	}
}

// revealed forwards shown results to a channel.
type revealed chan imagegen.Result

func (r revealed) Show(res imagegen.Result) { r <- res }

func (r revealed) Clear() {}

func runGenerateCmd(cmd *cobra.Command, args []string) error {
	logging.Init(os.Stderr, logLevel)
	s, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	filter := safety.New()
	st, cat, err := openCatalog(cmd.Context(), filter)
	if err != nil {
		return err
	}
	defer closeStore(st)

	words := make([]model.WordEntry, 0, model.SlotCount)
	for i, kind := range model.SlotKinds {
		w, err := findWord(cat, kind, args[i])
		if err != nil {
			return err
		}
		words = append(words, w)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	gal := gallery.New(s.cfg.OutputDir)
	done := make(revealed, 1)
	coord := coordinator.New(coordinator.Options{
		Generator:  newClient(s.cfg.Generation, filter),
		Display:    coordinator.Displays{gal, done},
		ImageCount: s.cfg.Generation.Images,
	})
	defer coord.Close()

	if err := coord.Start(); err != nil {
		return err
	}
	for _, w := range words {
		if err := coord.Selection().Select(w); err != nil {
			return err
		}
	}
	logErrf("Drawing %q...\n", coord.Selection().ComposeDisplaySentence(s.cfg.Selection.Secondary))
	if err := coord.StartGeneration(ctx); err != nil {
		return err
	}

	var res imagegen.Result
	select {
	case res = <-done:
	case <-ctx.Done():
		return fmt.Errorf("generation interrupted: %w", ctx.Err())
	}
	_, paths, err := gal.Last()
	if err != nil {
		return fmt.Errorf("failed to save pictures: %w", err)
	}
	if res.Outcome == imagegen.OutcomeFallback {
		logErrln("The image service did not return a picture; saved placeholders instead.")
	}
	if len(res.Images) > 0 && term.IsTerminal(int(os.Stderr.Fd())) {
		logErrln(tui.RenderPreview(res.Images[0].Image, previewWidth()))
	}
	for _, p := range paths {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), p); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

// findWord matches text against either language of the words in slot kind.
func findWord(cat *catalog.Catalog, kind model.SlotKind, text string) (model.WordEntry, error) {
	text = strings.TrimSpace(text)
	words := cat.WordsForSlot(kind)
	names := make([]string, 0, len(words))
	for _, w := range words {
		if strings.EqualFold(w.Text, text) || strings.EqualFold(w.TextAlt, text) {
			return w, nil
		}
		names = append(names, w.PromptText())
	}
	return model.WordEntry{}, fmt.Errorf("unknown %s %q (available: %s)", kind, text, strings.Join(names, ", "))
}

func previewWidth() int {
	width, _, err := term.GetSize(int(os.Stderr.Fd()))
	if err != nil || width <= 0 {
		return previewCols
	}
	return min(previewCols, width)
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyDurationConfig(cmd *cobra.Command, name, key string, target *time.Duration, value *string) error {
	if cmd.Flags().Changed(name) {
		return nil
	}
	d, ok, err := config.ParseDuration(key, value)
	if err != nil {
		return err
	}
	if ok {
		*target = d
	}
	return nil
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# pictoword configuration
# Uncomment a value to enable it. CLI flags override config values.

[generation]
# endpoint = %q
# api-key = ""            # Prefer $%s
# images = %d              # Images per generation
# timeout = %q           # Request timeout
# width = %d
# height = %d
# steps = %d
# cfg-scale = %.1f
# cache-ttl = "10m"       # Reuse pictures for the same sentence
# min-interval = "2s"     # Minimum time between requests

[selection]
# buttons-per-step = %d    # Candidate words per step
# secondary-language = false

[presentation]
# frames = %d
# interval = %q

[output]
# dir = %q
`,
		imagegen.DefaultEndpoint,
		config.APIKeyEnv,
		defaultImages,
		imagegen.DefaultTimeout.String(),
		imagegen.DefaultWidth,
		imagegen.DefaultHeight,
		imagegen.DefaultSteps,
		imagegen.DefaultCfgScale,
		defaultButtons,
		presentation.DefaultFrames,
		presentation.DefaultInterval.String(),
		config.DefaultGalleryDir(),
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.Generation.Images <= 0 || cfg.Generation.Images > maxImages {
		return fmt.Errorf("--images must be between 1 and %d", maxImages)
	}
	if cfg.Generation.Timeout <= 0 {
		return fmt.Errorf("--timeout must be > 0")
	}
	if cfg.Selection.ButtonsPerStep <= 0 || cfg.Selection.ButtonsPerStep > maxButtons {
		return fmt.Errorf("--buttons must be between 1 and %d", maxButtons)
	}
	if cfg.Generation.Endpoint == "" {
		return fmt.Errorf("generation.endpoint must not be empty")
	}
	if cfg.Generation.Width <= 0 || cfg.Generation.Height <= 0 {
		return fmt.Errorf("generation.width and generation.height must be > 0")
	}
	if cfg.Generation.Steps <= 0 {
		return fmt.Errorf("generation.steps must be > 0")
	}
	if cfg.Presentation.Frames < 0 {
		return fmt.Errorf("presentation.frames must be >= 0")
	}
	if cfg.Presentation.Interval < 0 {
		return fmt.Errorf("presentation.interval must be >= 0")
	}
	if cfg.OutputDir == "" {
		return fmt.Errorf("--out must not be empty")
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
