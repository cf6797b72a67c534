package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ZanzyTHEbar/vgc-analyzer/vgca/analysis"
	ports "github.com/ZanzyTHEbar/vgc-analyzer/vgca/analysis/ports"
	"github.com/ZanzyTHEbar/vgc-analyzer/vgca/config"
	"github.com/ZanzyTHEbar/vgc-analyzer/vgca/db"
	"github.com/ZanzyTHEbar/vgc-analyzer/vgca/team"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool

	// Analyze flags
	textPath   string
	jsonOutput bool

	// History flags
	historyLimit int

	logger zerolog.Logger
	cfg    *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "vgca",
	Short: "Extract structured VGC teams from Japanese Pokémon articles",
	Long: `vgca fetches a Japanese VGC article, distills the team-relevant text,
asks a completion model to extract the team, and prints a structured
result: up to six Pokémon with ability, item, tera type, moves, nature
and a validated EV spread. Fields the article does not state are marked
"Not specified in the article" rather than guessed.

Results for the same article URL are cached in-process for the
configured TTL, and optionally recorded in a local history database.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := zerolog.InfoLevel
		if verbose {
			level = zerolog.DebugLevel
		}
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
			Level(level).
			With().Timestamp().Logger()

		var err error
		cfg, err = config.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

// analyzeCmd runs the pipeline for one article
var analyzeCmd = &cobra.Command{
	Use:   "analyze [url]",
	Short: "Analyze one article and print the extracted team",
	Long: `Analyzes a VGC article given by URL, or raw article text when --text
names a file ("-" reads stdin). Exactly one source must be provided.

Examples:
  vgca analyze https://note.com/some-player/n/article
  vgca analyze --text report.txt
  cat report.txt | vgca analyze --text -`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

// cacheCmd groups the result cache admin verbs
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the in-process result cache",
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached results with age and remaining TTL",
	RunE:  runCacheList,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache occupancy",
	RunE:  runCacheStats,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached result",
	RunE:  runCacheClear,
}

// historyCmd groups the persisted-analysis verbs
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect persisted analyses",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent analyses from the history database",
	RunE:  runHistoryList,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: ./config.yaml, then the user config dir)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	analyzeCmd.Flags().StringVar(&textPath, "text", "", `Read article text from a file instead of fetching a URL ("-" for stdin)`)
	analyzeCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the result as JSON")

	historyListCmd.Flags().IntVar(&historyLimit, "limit", 10, "Maximum number of records to list")

	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	historyCmd.AddCommand(historyListCmd)

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newComponents wires the pipeline from config. The returned DB handle is
// nil when history is disabled; the caller owns closing it.
func newComponents() (*analysis.Orchestrator, *analysis.TemplateWatcher, *sql.DB, error) {
	var handle *sql.DB
	if cfg.History.Enabled {
		var err error
		handle, err = db.Connect(cfg.History.DSN, cfg.History.DataDir, logger)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to open history database: %w", err)
		}
	}

	orchestrator, watcher, err := analysis.NewFactory(cfg, handle, logger).CreateComponents()
	if err != nil {
		if handle != nil {
			handle.Close()
		}
		return nil, nil, nil, err
	}
	return orchestrator, watcher, handle, nil
}

// runAnalyze executes the full pipeline for one source
func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	src := analysis.Source{}
	if len(args) > 0 {
		src.URL = args[0]
	}
	if textPath != "" {
		text, err := readTextSource(textPath)
		if err != nil {
			return err
		}
		src.Text = text
	}

	orchestrator, watcher, handle, err := newComponents()
	if err != nil {
		return err
	}
	if handle != nil {
		defer handle.Close()
	}
	if watcher != nil {
		if err := watcher.Start(ctx); err != nil {
			logger.Warn().Err(err).Msg("template watcher failed to start; using the loaded template")
		} else {
			defer watcher.Stop()
		}
	}

	result, err := orchestrator.Analyze(ctx, src)
	if err != nil {
		return errors.New(analysis.UserMessage(err))
	}

	if jsonOutput {
		data, err := orchestrator.Export(result)
		if err != nil {
			return fmt.Errorf("failed to export result: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	printAnalysis(result)
	return nil
}

// readTextSource loads pasted article text from a file or stdin
func readTextSource(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read text file: %w", err)
	}
	return string(data), nil
}

// printAnalysis renders a result for the terminal
func printAnalysis(a *team.Analysis) {
	fmt.Printf("Title: %s\n", a.Title)
	if a.SourceURL != "" {
		fmt.Printf("Source: %s\n", a.SourceURL)
	}
	fmt.Printf("Confidence: %.2f\n", a.Confidence)
	if a.LowConfidence {
		fmt.Println()
		fmt.Println("Warning: no team data was recognized in this article.")
	}

	for i, m := range a.Members {
		fmt.Printf("\nPokémon %d: %s\n", i+1, m.Name)
		fmt.Printf("  Ability:    %s\n", m.Ability)
		fmt.Printf("  Held Item:  %s\n", m.HeldItem)
		fmt.Printf("  Tera Type:  %s\n", m.TeraType)
		fmt.Printf("  Moves:      %s\n", renderMoves(m.Moves))
		fmt.Printf("  Nature:     %s\n", m.Nature)
		fmt.Printf("  EV Spread:  %s\n", m.EVSpread)
		fmt.Printf("  EV Notes:   %s\n", m.EVExplanation)
	}

	fmt.Printf("\nSummary: %s\n", a.Summary)
}

func renderMoves(moves []string) string {
	if len(moves) == 0 {
		return team.NotSpecified
	}
	return strings.Join(moves, " / ")
}

// runCacheList lists the cache entries of this process
func runCacheList(cmd *cobra.Command, args []string) error {
	orchestrator, _, handle, err := newComponents()
	if err != nil {
		return err
	}
	if handle != nil {
		defer handle.Close()
	}

	entries := orchestrator.CacheEntries(cmd.Context())
	if len(entries) == 0 {
		fmt.Println("Cache is empty. Results are cached in-process for the configured TTL.")
		return nil
	}

	for _, e := range entries {
		fmt.Printf("%s  %6d bytes  age %-10s  expires in %s\n",
			e.Key, e.Size, e.Age.Truncate(time.Second), e.Remaining.Truncate(time.Second))
	}
	return nil
}

// runCacheStats prints cache occupancy
func runCacheStats(cmd *cobra.Command, args []string) error {
	orchestrator, _, handle, err := newComponents()
	if err != nil {
		return err
	}
	if handle != nil {
		defer handle.Close()
	}

	stats := orchestrator.CacheStats(cmd.Context())
	fmt.Printf("Entries:  %d (%d valid, %d expired)\n", stats.TotalEntries, stats.ValidEntries, stats.ExpiredEntries)
	fmt.Printf("Size:     %d bytes\n", stats.TotalBytes)
	return nil
}

// runCacheClear empties the cache
func runCacheClear(cmd *cobra.Command, args []string) error {
	orchestrator, _, handle, err := newComponents()
	if err != nil {
		return err
	}
	if handle != nil {
		defer handle.Close()
	}

	if err := orchestrator.ClearCache(cmd.Context()); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	fmt.Println("Cache cleared.")
	return nil
}

// runHistoryList prints recent persisted analyses
func runHistoryList(cmd *cobra.Command, args []string) error {
	if !cfg.History.Enabled {
		return errors.New("history is disabled: set history.enabled to true in config")
	}

	orchestrator, _, handle, err := newComponents()
	if err != nil {
		return err
	}
	if handle != nil {
		defer handle.Close()
	}

	records, err := orchestrator.History(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}
	if len(records) == 0 {
		fmt.Println("No analyses recorded yet.")
		return nil
	}

	for _, rec := range records {
		printHistoryRecord(rec)
	}
	return nil
}

func printHistoryRecord(rec ports.HistoryRecord) {
	fmt.Printf("%s  %s\n", rec.CreatedAt.Format(time.RFC3339), rec.Title)
	if rec.SourceURL != "" {
		fmt.Printf("    source: %s\n", rec.SourceURL)
	}
	fmt.Printf("    id: %s\n", rec.ID)
}
