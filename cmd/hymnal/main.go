// Package main provides the CLI entrypoint for hymnal.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"hymnal/internal/config"
	"hymnal/internal/corpus"
	"hymnal/internal/importer"
	"hymnal/internal/model"
	"hymnal/internal/pick"
	"hymnal/internal/search"
	"hymnal/internal/stats"
	"hymnal/internal/tui"
	"hymnal/internal/userstate"
)

const (
	defaultRecentLimit   = 20
	defaultSearchLimit   = 10
	defaultStatsTop      = 15
	defaultFavoritesBias = 2.0
	defaultBundleURL     = "https://raw.githubusercontent.com/TinasheMzondiwa/cis-hymnals/main/english.json"
)

var (
	corpusPath string
	statePath  string

	browseRecentLimit int
	browseCategory    string

	searchLimit int

	randomFavoritesBias float64
	randomCategory      string

	importSource string
	importForce  bool

	statsTop      int
	statsCategory string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "hymnal",
		Short:         "TUI hymnal browser",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runBrowseCmd,
	}

	rootCmd.PersistentFlags().StringVar(&corpusPath, "corpus", config.DefaultCorpusPath(), "path to the corpus database")
	rootCmd.PersistentFlags().StringVar(&statePath, "state", config.DefaultStatePath(), "path to the user state file")
	rootCmd.Flags().IntVar(&browseRecentLimit, "recent-limit", defaultRecentLimit, "number of recent hymns to keep")
	rootCmd.Flags().StringVar(&browseCategory, "category", "", "restrict browsing to one category")

	rootCmd.AddCommand(newSearchCmd())
	rootCmd.AddCommand(newShowCmd())
	rootCmd.AddCommand(newRandomCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func runBrowseCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "recent-limit", &browseRecentLimit, fileCfg.Browse.RecentLimit)
	applyStringConfig(cmd, "category", &browseCategory, fileCfg.Browse.Category)
	if browseRecentLimit <= 0 {
		return fmt.Errorf("--recent-limit must be > 0")
	}

	store, err := openCorpus(cmd.Context())
	if err != nil {
		return err
	}
	defer closeCorpus(store)

	state, err := openState(store, browseRecentLimit)
	if err != nil {
		return err
	}
	defer closeState(state)

	engine := search.New(store)
	cfg := model.BrowseConfig{
		RecentLimit: browseRecentLimit,
		Category:    browseCategory,
	}
	browseModel := tui.NewModel(engine, state, cfg)
	program := tea.NewProgram(browseModel, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search QUERY...",
		Short: "Search hymns by title, lyrics, author, or composer",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSearchCmd,
	}
	cmd.Flags().IntVar(&searchLimit, "limit", defaultSearchLimit, "maximum number of results")
	return cmd
}

func runSearchCmd(cmd *cobra.Command, args []string) error {
	store, err := openCorpus(cmd.Context())
	if err != nil {
		return err
	}
	defer closeCorpus(store)

	engine := search.New(store)
	matches := engine.Search(strings.Join(args, " "))
	if len(matches) == 0 {
		return fmt.Errorf("no hymns match %q", strings.Join(args, " "))
	}
	if searchLimit > 0 && len(matches) > searchLimit {
		matches = matches[:searchLimit]
	}
	for _, match := range matches {
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%4d  %s\n", match.Hymn.Number, match.Hymn.Title); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show NUMBER",
		Short: "Print one hymn",
		Args:  cobra.ExactArgs(1),
		RunE:  runShowCmd,
	}
}

func runShowCmd(cmd *cobra.Command, args []string) error {
	number, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid hymn number %q", args[0])
	}

	store, err := openCorpus(cmd.Context())
	if err != nil {
		return err
	}
	defer closeCorpus(store)

	hymn, err := store.ByNumber(number)
	if err != nil {
		return err
	}

	state, err := openState(store, defaultRecentLimit)
	if err != nil {
		return err
	}
	defer closeState(state)
	if err := state.RecordView(number); err != nil {
		warnPersistence(err)
	}

	return printHymn(cmd, hymn)
}

func newRandomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "random",
		Short: "Print a random hymn",
		Args:  cobra.NoArgs,
		RunE:  runRandomCmd,
	}
	cmd.Flags().Float64Var(&randomFavoritesBias, "favorites-bias", defaultFavoritesBias, "weight factor for favorite hymns")
	cmd.Flags().StringVar(&randomCategory, "category", "", "restrict selection to one category")
	return cmd
}

func runRandomCmd(cmd *cobra.Command, _ []string) error {
	store, err := openCorpus(cmd.Context())
	if err != nil {
		return err
	}
	defer closeCorpus(store)

	state, err := openState(store, defaultRecentLimit)
	if err != nil {
		return err
	}
	defer closeState(state)

	hymns := store.All()
	if randomCategory != "" {
		filtered := make([]model.Hymn, 0, len(hymns))
		for _, h := range hymns {
			if h.Category == randomCategory {
				filtered = append(filtered, h)
			}
		}
		hymns = filtered
	}

	favorites := map[int]struct{}{}
	for _, n := range state.Favorites() {
		favorites[n] = struct{}{}
	}
	picker := pick.New()
	hymn, ok := picker.PickWeighted(hymns, favorites, state.ViewCounts(), randomFavoritesBias)
	if !ok {
		return fmt.Errorf("no hymns to pick from")
	}
	if err := state.RecordView(hymn.Number); err != nil {
		warnPersistence(err)
	}
	return printHymn(cmd, hymn)
}

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Build the corpus database from a hymnal bundle",
		Args:  cobra.NoArgs,
		RunE:  runImportCmd,
	}
	cmd.Flags().StringVar(&importSource, "source", "", "bundle file or URL (default: bundled English hymnal)")
	cmd.Flags().BoolVar(&importForce, "force", false, "overwrite an existing corpus")
	return cmd
}

func runImportCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "source", &importSource, fileCfg.Import.Source)
	source := importSource
	if source == "" {
		source = defaultBundleURL
	}

	if !importForce {
		if _, err := os.Stat(corpusPath); err == nil {
			return fmt.Errorf("corpus already exists: %s (use --force to overwrite)", corpusPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat corpus: %w", err)
		}
	}

	bundlePath := source
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		logErrf("Fetching bundle %s...\n", source)
		bundle, err := importer.FetchBundle(cmd.Context(), source, config.DefaultImportCacheDir())
		if err != nil {
			return fmt.Errorf("failed to fetch bundle: %w", err)
		}
		if bundle.Cached {
			logErrf("Using cached bundle %s\n", bundle.Filename)
		} else {
			logErrf("Downloaded bundle %s\n", bundle.Filename)
		}
		bundlePath = bundle.Path
	}

	count, err := importer.ImportFile(cmd.Context(), bundlePath, corpusPath)
	if err != nil {
		return err
	}
	logErrf("Imported %d hymns into %s\n", count, corpusPath)
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show usage stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().IntVar(&statsTop, "top", defaultStatsTop, "number of most-viewed hymns to list")
	cmd.Flags().StringVar(&statsCategory, "category", "", "category filter")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	store, err := openCorpus(cmd.Context())
	if err != nil {
		return err
	}
	defer closeCorpus(store)

	state, err := openState(store, defaultRecentLimit)
	if err != nil {
		return err
	}
	defer closeState(state)

	cfg := model.StatsConfig{Top: statsTop, Category: statsCategory}
	report := stats.BuildReport(store, state, cfg)
	if err := stats.RenderReport(cmd.OutOrStdout(), report); err != nil {
		return fmt.Errorf("failed to render stats: %w", err)
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

func openCorpus(ctx context.Context) (*corpus.Store, error) {
	store, err := corpus.Open(corpusPath)
	if err != nil {
		return nil, corpusOpenError(err)
	}
	if err := store.Load(ctx); err != nil {
		if cerr := store.Close(); cerr != nil {
			// Best-effort close on load failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

func corpusOpenError(err error) error {
	lines := []string{
		fmt.Sprintf("failed to open corpus: %v", err),
		fmt.Sprintf("expected corpus at: %s", corpusPath),
		"Build it with: hymnal import",
	}
	return fmt.Errorf("%s", strings.Join(lines, "\n"))
}

func openState(store *corpus.Store, recentLimit int) (*userstate.Store, error) {
	state, err := userstate.Open(statePath, recentLimit, store.Contains)
	if err != nil {
		// Persistence failures are non-fatal: continue with empty state.
		warnPersistence(err)
	}
	return state, nil
}

func closeCorpus(store *corpus.Store) {
	if cerr := store.Close(); cerr != nil {
		logErrf("failed to close corpus: %v\n", cerr)
	}
}

func closeState(state *userstate.Store) {
	if cerr := state.Close(); cerr != nil {
		logErrf("failed to save user state: %v\n", cerr)
	}
}

func warnPersistence(err error) {
	var perr *userstate.PersistenceError
	if errors.As(err, &perr) {
		logErrf("warning: %v (changes kept in memory)\n", perr)
		return
	}
	logErrf("warning: %v\n", err)
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

func printHymn(cmd *cobra.Command, hymn model.Hymn) error {
	width := stats.TerminalWidth()
	out := cmd.OutOrStdout()
	if _, err := fmt.Fprintf(out, "%d. %s\n", hymn.Number, hymn.Title); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	var meta []string
	if hymn.Author != "" {
		meta = append(meta, "Words: "+hymn.Author)
	}
	if hymn.Composer != "" {
		meta = append(meta, "Music: "+hymn.Composer)
	}
	if hymn.Category != "" {
		meta = append(meta, hymn.Category)
	}
	if len(meta) > 0 {
		if _, err := fmt.Fprintln(out, strings.Join(meta, "  ")); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	if _, err := fmt.Fprintln(out, ""); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if _, err := fmt.Fprintln(out, stats.WrapText(hymn.FullText(), width)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# hymnal configuration
# Uncomment a value to enable it. CLI flags override config values.

[browse]
# recent-limit = %d       # Number of recent hymns to keep
# category = ""           # Restrict browsing to one category

[import]
# source = %q
`,
		defaultRecentLimit,
		defaultBundleURL,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
