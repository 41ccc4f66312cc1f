package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gigcity/harvester/internal/config"
	"github.com/gigcity/harvester/internal/extract"
	"github.com/gigcity/harvester/internal/fetch"
	"github.com/gigcity/harvester/internal/pipeline"
	"github.com/gigcity/harvester/internal/sink"
	"github.com/gigcity/harvester/internal/venue"
)

var (
	scrapeSinkURL  string
	scrapeAPIKey   string
	scrapeDryRun   bool
	scrapeLimit    int
	scrapeVenueDir string
	scrapeRendered bool

	// flags for scrape test
	scrapeTestConfigFile  string
	scrapeTestContainer   string
	scrapeTestTitle       string
	scrapeTestDate        string
	scrapeTestURL         string
	scrapeTestImage       string
	scrapeTestDescription string
	scrapeTestVenue       string
)

// scrapeCmd is the root command group for scraper subcommands.
var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape events from configured venues",
	Long: `Scrape event listings from venue websites and submit them to the events API.

Supports scraping a single URL, a named venue, or all enabled venues from the
venue config directory.

Examples:
  # Scrape a single URL
  harvester scrape url https://example.com/events

  # List configured venues
  harvester scrape list

  # Scrape a named venue (dry-run)
  harvester scrape venue commodore-ballroom --dry-run

  # Scrape all enabled venues
  harvester scrape all

  # Discover CSS selectors for a page
  harvester scrape inspect https://example.com/events

  # Test CSS selectors against a live URL
  harvester scrape test https://example.com/events --container ".event-card" --title "h2"`,
}

// scrapeURLCmd scrapes a single URL with the default strategy list.
var scrapeURLCmd = &cobra.Command{
	Use:   "url <URL>",
	Short: "Scrape events from a single URL",
	Long: `Fetch the given URL, extract event candidates with the default strategies
(JSON-LD, then common selectors, then a date scan), and normalize them.

Examples:
  harvester scrape url https://thecommodoreballroom.com/shows
  harvester scrape url https://example.com/events --dry-run
  harvester scrape url https://example.com/events --rendered --limit 10`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rawURL := args[0]
		logger := newLogger()

		cfg := venue.Default()
		cfg.Name = venueNameFromURL(rawURL)
		cfg.URL = rawURL
		if scrapeRendered {
			cfg.Fetch.Mode = string(fetch.ModeRendered)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		res, err := pipeline.New(logger).Run(ctx, cfg)
		if err != nil {
			return fmt.Errorf("scrape url: %w", err)
		}

		if err := submitResult(ctx, &res); err != nil {
			return err
		}
		printSingleResult(res)
		return nil
	},
}

// scrapeListCmd lists all configured venues.
var scrapeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured venues",
	Long: `List all venue configurations found in the venues directory.

Examples:
  harvester scrape list
  harvester scrape list --venues configs/venues`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configs, err := venue.LoadDir(scrapeVenueDir)
		if err != nil {
			// Still print what we have, but note validation errors
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}

		if len(configs) == 0 {
			fmt.Printf("No venue configs found in %s\n", scrapeVenueDir)
			return nil
		}

		fmt.Printf("%-28s %-44s %-9s %-7s %s\n", "NAME", "URL", "MODE", "ENABLED", "SCHEDULE")
		for _, cfg := range configs {
			u := cfg.URL
			if len(u) > 44 {
				u = u[:41] + "..."
			}
			fmt.Printf("%-28s %-44s %-9s %-7v %s\n",
				cfg.Name, u, cfg.Fetch.Mode, cfg.Enabled, cfg.Schedule,
			)
		}
		return nil
	},
}

// scrapeVenueCmd scrapes a named configured venue.
var scrapeVenueCmd = &cobra.Command{
	Use:   "venue <name>",
	Short: "Scrape events from a named configured venue",
	Long: `Load the named venue from the venues directory and scrape it.

Examples:
  harvester scrape venue commodore-ballroom
  harvester scrape venue commodore-ballroom --dry-run
  harvester scrape venue commodore-ballroom --limit 5`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		logger := newLogger()

		cfg, err := findVenue(scrapeVenueDir, name)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		res, err := pipeline.New(logger).Run(ctx, cfg)
		if err != nil {
			return fmt.Errorf("scrape venue: %w", err)
		}

		if err := submitResult(ctx, &res); err != nil {
			return err
		}
		printSingleResult(res)
		return nil
	},
}

// scrapeAllCmd scrapes all enabled configured venues.
var scrapeAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Scrape all enabled configured venues",
	Long: `Load all enabled venues from the venues directory and scrape each one.

Per-venue errors are reported in the table but do not abort the run.
Exits with a non-zero status if any venue encountered an error.

Examples:
  harvester scrape all
  harvester scrape all --dry-run
  harvester scrape all --limit 10`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()

		configs, err := venue.LoadDir(scrapeVenueDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
		if len(configs) == 0 {
			fmt.Printf("No venue configs found in %s\n", scrapeVenueDir)
			return nil
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		appCfg := config.Load()
		runner := pipeline.NewRunner(pipeline.New(logger), appCfg.Runner.Parallelism, logger)
		results := runner.RunAll(ctx, configs)

		for i := range results {
			if results[i].Err != nil {
				continue
			}
			if err := submitResult(ctx, &results[i]); err != nil {
				results[i].Err = err
			}
		}

		return printAllResults(results)
	},
}

// scrapeInspectCmd fetches a URL and prints a DOM structure summary to help
// discover CSS selectors for a selector strategy.
var scrapeInspectCmd = &cobra.Command{
	Use:   "inspect <URL>",
	Short: "Analyse a page's DOM to discover CSS selectors",
	Long: `Fetch a URL and print a summary of its DOM structure:
  - Most frequent CSS classes
  - data-* attribute names and counts
  - hrefs containing "event", "show", "concert" or "gig"
  - Candidate event container elements
  - Count of elements containing date-like text

Use this to identify selectors before writing a venue config. Pass --rendered
for pages that populate their listings client-side.

Examples:
  harvester scrape inspect https://thedanforth.com/events/
  harvester scrape inspect https://example.com/shows --rendered`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()

		fetchCfg := fetch.Config{MaxPages: 1}
		if scrapeRendered {
			fetchCfg.Mode = fetch.ModeRendered
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		res, err := fetch.New(fetchCfg, logger).Fetch(ctx, args[0])
		if err != nil {
			return fmt.Errorf("inspect: %w", err)
		}
		if len(res.Pages) == 0 {
			return fmt.Errorf("inspect: no page fetched")
		}

		fmt.Print(extract.FormatInspectResult(extract.Inspect(res.Pages[0].Doc, res.FinalURL)))
		return nil
	},
}

// scrapeTestCmd runs a selector strategy against a live URL and prints the
// raw candidates. Selectors may be provided via flags or a YAML file.
var scrapeTestCmd = &cobra.Command{
	Use:   "test <URL>",
	Short: "Test CSS selectors against a live URL",
	Long: `Run a selector strategy against a live URL and print the extracted
candidates before normalization. Use this to validate selectors before
enabling a venue config.

Selectors can be specified via flags or loaded from a YAML venue config file
(--config). Flags take precedence over the config file.

Examples:
  # Test with inline flags
  harvester scrape test https://thedanforth.com/events/ \
    --container ".event-card" \
    --title "h3" \
    --date ".event-date"

  # Test using an existing venue config file
  harvester scrape test https://thedanforth.com/events/ \
    --config configs/venues/danforth-music-hall.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rawURL := args[0]
		logger := newLogger()

		var sel extract.Selectors

		if scrapeTestConfigFile != "" {
			loaded, err := venue.Load(scrapeTestConfigFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			for _, s := range loaded.Strategies {
				if s.Kind == extract.KindSelector {
					sel = s.Selectors
					break
				}
			}
		}

		// Apply flag overrides.
		if scrapeTestContainer != "" {
			sel.Container = scrapeTestContainer
		}
		if scrapeTestTitle != "" {
			sel.Title = scrapeTestTitle
		}
		if scrapeTestDate != "" {
			sel.Date = scrapeTestDate
		}
		if scrapeTestURL != "" {
			sel.URL = scrapeTestURL
		}
		if scrapeTestImage != "" {
			sel.Image = scrapeTestImage
		}
		if scrapeTestDescription != "" {
			sel.Description = scrapeTestDescription
		}
		if scrapeTestVenue != "" {
			sel.Venue = scrapeTestVenue
		}

		if sel.Container == "" {
			return fmt.Errorf("--container (or --config with a selector strategy) is required")
		}

		fetchCfg := fetch.Config{MaxPages: 1}
		if scrapeRendered {
			fetchCfg.Mode = fetch.ModeRendered
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		res, err := fetch.New(fetchCfg, logger).Fetch(ctx, rawURL)
		if err != nil {
			return fmt.Errorf("scrape test: %w", err)
		}

		strategies := []extract.Strategy{{Kind: extract.KindSelector, Selectors: sel}}
		candidates, _ := extract.New(logger).Extract(res, strategies)

		if len(candidates) == 0 {
			fmt.Println("No candidates extracted.")
			return nil
		}

		fmt.Printf("Extracted %d candidate(s):\n\n", len(candidates))
		for i, c := range candidates {
			fmt.Printf("[%d] Title:    %s\n", i+1, c.Title)
			fmt.Printf("    DateText: %s\n", c.RawDateText)
			fmt.Printf("    URL:      %s\n", c.URL)
			fmt.Printf("    Image:    %s\n", c.ImageURL)
			if c.VenueNameHint != "" {
				fmt.Printf("    Venue:    %s\n", c.VenueNameHint)
			}
			if c.Description != "" {
				desc := c.Description
				if len(desc) > 120 {
					desc = desc[:120] + "…"
				}
				fmt.Printf("    Desc:     %s\n", desc)
			}
			fmt.Println()
		}
		return nil
	},
}

func init() {
	// Subcommands
	scrapeCmd.AddCommand(scrapeURLCmd)
	scrapeCmd.AddCommand(scrapeListCmd)
	scrapeCmd.AddCommand(scrapeVenueCmd)
	scrapeCmd.AddCommand(scrapeAllCmd)
	scrapeCmd.AddCommand(scrapeInspectCmd)
	scrapeCmd.AddCommand(scrapeTestCmd)

	// Persistent flags available to all scrape subcommands
	scrapeCmd.PersistentFlags().StringVar(&scrapeSinkURL, "sink", "", "events API base URL (default: HARVESTER_SINK_URL or http://localhost:8080)")
	scrapeCmd.PersistentFlags().StringVar(&scrapeAPIKey, "key", "", "API key for event submission (default: HARVESTER_SINK_KEY env var)")
	scrapeCmd.PersistentFlags().BoolVar(&scrapeDryRun, "dry-run", false, "display extracted events without submitting")
	scrapeCmd.PersistentFlags().IntVar(&scrapeLimit, "limit", 0, "max events per venue (0 = no limit)")
	scrapeCmd.PersistentFlags().StringVar(&scrapeVenueDir, "venues", "configs/venues", "path to venues directory")
	scrapeCmd.PersistentFlags().BoolVar(&scrapeRendered, "rendered", false, "use the headless browser fetcher")

	// Flags for `scrape test`
	scrapeTestCmd.Flags().StringVar(&scrapeTestConfigFile, "config", "", "path to a YAML venue config file to load selectors from")
	scrapeTestCmd.Flags().StringVar(&scrapeTestContainer, "container", "", "CSS selector for the event container element (required)")
	scrapeTestCmd.Flags().StringVar(&scrapeTestTitle, "title", "", "CSS selector for the event title")
	scrapeTestCmd.Flags().StringVar(&scrapeTestDate, "date", "", "CSS selector for the event date")
	scrapeTestCmd.Flags().StringVar(&scrapeTestURL, "url", "", "CSS selector for the event URL link element")
	scrapeTestCmd.Flags().StringVar(&scrapeTestImage, "image", "", "CSS selector for the event image element")
	scrapeTestCmd.Flags().StringVar(&scrapeTestDescription, "description", "", "CSS selector for the event description")
	scrapeTestCmd.Flags().StringVar(&scrapeTestVenue, "venue-name", "", "CSS selector for a per-event venue name")
}

// findVenue loads the named venue from dir, accepting either the config's
// name field or its file name.
func findVenue(dir, name string) (venue.Config, error) {
	configs, err := venue.LoadDir(dir)
	if err != nil && len(configs) == 0 {
		return venue.Config{}, err
	}
	for _, cfg := range configs {
		if cfg.Name == name {
			return cfg, nil
		}
	}
	for _, ext := range []string{".yaml", ".yml"} {
		path := dir + "/" + name + ext
		if _, statErr := os.Stat(path); statErr == nil {
			return venue.Load(path)
		}
	}
	return venue.Config{}, fmt.Errorf("venue %q not found in %s", name, dir)
}

// newSinkClient resolves the sink endpoint from flags or environment.
func newSinkClient() *sink.Client {
	cfg := config.Load().Sink
	if scrapeSinkURL != "" {
		cfg.BaseURL = scrapeSinkURL
	}
	if scrapeAPIKey != "" {
		cfg.APIKey = scrapeAPIKey
	}
	return sink.NewClient(cfg.BaseURL, cfg.APIKey, cfg.RequestsPerSec)
}

// submitResult applies the event limit and submits the run's events to the
// sink, recording the submission outcome on the result. Dry runs skip the
// network entirely.
func submitResult(ctx context.Context, res *pipeline.Result) error {
	if res.Err != nil || len(res.Events) == 0 {
		return nil
	}
	if scrapeLimit > 0 && len(res.Events) > scrapeLimit {
		res.Events = res.Events[:scrapeLimit]
	}

	client := newSinkClient()
	if scrapeDryRun {
		_, err := client.SubmitDryRun(ctx, res.Events)
		return err
	}
	sres, err := client.Submit(ctx, res.Events)
	if err != nil {
		return fmt.Errorf("submit %s: %w", res.Venue, err)
	}
	if sres.EventsFailed > 0 {
		fmt.Fprintf(os.Stderr, "Warning: %s: %d event(s) failed server-side\n", res.Venue, sres.EventsFailed)
	}
	return nil
}

// venueNameFromURL derives an ad-hoc venue name from a URL's host.
func venueNameFromURL(rawURL string) string {
	host := rawURL
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	if i := strings.IndexAny(host, "/?#"); i >= 0 {
		host = host[:i]
	}
	host = strings.TrimPrefix(host, "www.")
	if host == "" {
		return "adhoc"
	}
	return host
}

// printSingleResult prints a summary for one venue run, including the
// accepted events and a rejection breakdown.
func printSingleResult(r pipeline.Result) {
	if r.Err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", r.Err)
		return
	}

	fmt.Printf("Venue:    %s\n", r.Venue)
	fmt.Printf("Strategy: %s\n", r.Strategy)
	fmt.Printf("Accepted: %d   Rejected: %d\n\n", r.Report.Accepted, len(r.Report.Rejected))

	for i, e := range r.Events {
		fmt.Printf("[%d] %s\n", i+1, e.Title)
		fmt.Printf("    When:  %s\n", e.StartISO())
		if e.URL != "" {
			fmt.Printf("    URL:   %s\n", e.URL)
		}
		if e.Venue.Name != "" {
			fmt.Printf("    Venue: %s\n", e.Venue.Name)
		}
		fmt.Println()
	}

	if len(r.Report.ByReason) > 0 {
		fmt.Println("Rejections by reason:")
		for reason, n := range r.Report.ByReason {
			fmt.Printf("  %-18s %d\n", reason, n)
		}
	}
}

// printAllResults prints a table of per-venue results and a totals row.
// Returns an error if any venue had a failure.
func printAllResults(results []pipeline.Result) error {
	if len(results) == 0 {
		fmt.Println("No venues scraped.")
		return nil
	}

	var totalAccepted, totalRejected int
	anyError := false

	fmt.Printf("%-28s %-10s %-9s %-9s  %s\n",
		"VENUE", "STRATEGY", "ACCEPTED", "REJECTED", "STATUS",
	)

	for _, r := range results {
		status := "ok"
		if r.Err != nil {
			status = fmt.Sprintf("error: %v", r.Err)
			anyError = true
		}
		fmt.Printf("%-28s %-10s %-9d %-9d  %s\n",
			r.Venue, r.Strategy, r.Report.Accepted, len(r.Report.Rejected), status,
		)
		totalAccepted += r.Report.Accepted
		totalRejected += len(r.Report.Rejected)
	}

	fmt.Printf("---\n")
	fmt.Printf("%-28s %-10s %-9d %-9d\n", "TOTAL", "", totalAccepted, totalRejected)

	if anyError {
		return fmt.Errorf("one or more venues failed")
	}
	return nil
}
