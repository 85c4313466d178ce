package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jian131/agent-bds/internal"
	"github.com/jian131/agent-bds/internal/adapters/rest"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

var crawlLimit int

var rootCmd = &cobra.Command{
	Use:   "agent-bds",
	Short: "Vietnamese real-estate listing search service",
	Long: `agent-bds crawls Vietnamese property listing sites on demand,
extracts and deduplicates the listings it finds, and serves them over
a REST API with optional persistence, caching and similarity search.

Run without arguments to start the server.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server, queue consumer and scheduler",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var crawlCmd = &cobra.Command{
	Use:   "crawl \"<query>\"",
	Short: "Run one search pipeline pass and print the result as JSON",
	Long: `Runs the full pipeline for a single query, exactly like a POST
/api/v1/search call: intent parsing, crawl, extraction, validation and
persistence of whatever was collected. The batch result is printed to
stdout as JSON.

Example:
  agent-bds crawl "căn hộ 2 phòng ngủ quận 7 dưới 3 tỷ"`,
	Args: cobra.ExactArgs(1),
	RunE: runCrawl,
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Expire listings older than the configured window",
	Args:  cobra.NoArgs,
	RunE:  runCleanup,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(*cobra.Command, []string) {
		fmt.Printf("agent-bds %s\n", version)
	},
}

func init() {
	crawlCmd.Flags().IntVar(&crawlLimit, "limit", 0, "maximum listings to return (0 uses the configured default)")
	rootCmd.AddCommand(serveCmd, crawlCmd, cleanupCmd, versionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	app, err := internal.NewApp(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return app.Run()
}

func runCrawl(cmd *cobra.Command, args []string) error {
	app, err := internal.NewApp(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer app.Close()

	result, err := app.RunSearch(cmd.Context(), args[0], crawlLimit)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(rest.NewSearchResponse(result), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode the result: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

func runCleanup(cmd *cobra.Command, _ []string) error {
	app, err := internal.NewApp(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer app.Close()

	expired, err := app.RunCleanup(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("Expired %d listings.\n", expired)
	return nil
}
