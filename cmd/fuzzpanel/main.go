package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ormasoftchile/fuzzpanel/pkg/config"
	"github.com/ormasoftchile/fuzzpanel/pkg/console"
	"github.com/ormasoftchile/fuzzpanel/pkg/entity"
	"github.com/ormasoftchile/fuzzpanel/pkg/logging"
	"github.com/ormasoftchile/fuzzpanel/pkg/overrides"
	"github.com/ormasoftchile/fuzzpanel/pkg/panel"
	"github.com/ormasoftchile/fuzzpanel/pkg/results"
	"github.com/ormasoftchile/fuzzpanel/pkg/schema"
	"github.com/ormasoftchile/fuzzpanel/pkg/serve"
	"github.com/ormasoftchile/fuzzpanel/pkg/tui"
)

// Version is set at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	loadDotEnv() // load .env file if present (gitignored)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadDotEnv reads a .env file from the working directory and sets
// any variables that aren't already set in the environment.
// Lines are KEY=VALUE (or KEY="VALUE"). Comments (#) and blanks are skipped.
func loadDotEnv() {
	f, err := os.Open(".env")
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		val := strings.TrimSpace(parts[1])
		val = strings.Trim(val, `"'`)
		if os.Getenv(key) == "" {
			os.Setenv(key, val)
		}
	}
}

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "fuzzpanel",
	Short: "Fuzz panel backend",
	Long:  "fuzzpanel classifies fuzz-run results into outcome grids and turns override controls into fuzzer payloads.",
}

// setup loads the workspace config and builds the logger. The --log-level
// flag wins over the config file and the environment.
func setup() (*config.Config, *zap.Logger, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load(cwd)
	if err != nil {
		return nil, nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func panelOptions(cfg *config.Config) panel.Options {
	return panel.Options{
		ClearStaleGrids: cfg.Grids.ClearStale,
		OptionsVisible:  cfg.Options.Visible,
	}
}

// readInput reads a file, or stdin when path is "-" or empty.
func readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

// loadGrids reads, validates and classifies a results document.
func loadGrids(path string, escaped bool) (*results.Grids, error) {
	data, err := readInput(path)
	if err != nil {
		return nil, fmt.Errorf("read results: %w", err)
	}
	if escaped {
		data = []byte(entity.Unescape(string(data)))
	}
	if errs := schema.ValidateResults(data); schema.HasErrors(errs) {
		printValidationErrors(errs)
		return nil, fmt.Errorf("invalid results: %w", schema.First(errs))
	}
	doc, err := results.Decode(data)
	if err != nil {
		return nil, err
	}
	return results.Classify(doc.Results)
}

func printValidationErrors(errs []*schema.ValidationError) {
	n := 0
	for _, e := range errs {
		if e.Severity == "warning" {
			continue
		}
		n++
		fmt.Fprintf(os.Stderr, "  %d. [%s] %s\n", n, e.Phase, e.Message)
		if e.Path != "" {
			fmt.Fprintf(os.Stderr, "     at: %s\n", e.Path)
		}
	}
}

// --- classify ---

var (
	classifyEscaped bool
	classifyWhere   string
	classifyJSON    bool
)

var classifyCmd = &cobra.Command{
	Use:   "classify [results.json]",
	Short: "Classify fuzz results into timeout, exception, badOutput and passed grids",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runClassify,
}

func runClassify(cmd *cobra.Command, args []string) error {
	path := ""
	if len(args) == 1 {
		path = args[0]
	}
	g, err := loadGrids(path, classifyEscaped)
	if err != nil {
		return err
	}
	if classifyWhere != "" {
		if g, err = results.Filter(g, classifyWhere); err != nil {
			return err
		}
	}

	if classifyJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(g)
	}
	printGrids(cmd.OutOrStdout(), g)
	return nil
}

// --- extract ---

var (
	extractMessage bool
	extractCompact bool
)

var extractCmd = &cobra.Command{
	Use:   "extract [panel.yaml]",
	Short: "Build the fuzzer payload from a panel file",
	Args:  cobra.ExactArgs(1),
	RunE:  runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	form, err := overrides.LoadPanelFile(args[0])
	if err != nil {
		return err
	}
	x, err := overrides.Extract(form)
	if err != nil {
		return fmt.Errorf("extract overrides: %w", err)
	}
	if err := x.Overrides.Validate(); err != nil {
		return fmt.Errorf("invalid overrides: %w", err)
	}

	payload := x.Payload()
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if errs := schema.ValidatePayload(data); schema.HasErrors(errs) {
		printValidationErrors(errs)
		return fmt.Errorf("invalid payload: %w", schema.First(errs))
	}

	var out interface{} = payload
	if extractMessage {
		out = panel.Message{Command: overrides.StartCommand, JSON: string(data)}
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	if !extractCompact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(out)
}

// --- serve ---

var servePanel string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start JSON-RPC server for the editor extension (stdio)",
	Long: `Start a JSON-RPC server that communicates over stdin/stdout.
Used by the editor extension to load results into the panel grids and to
start the fuzzer. Messages are newline-delimited JSON-RPC 2.0; logs go to stderr.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		defer log.Sync() //nolint:errcheck

		var form *overrides.Form
		if servePanel != "" {
			if form, err = overrides.LoadPanelFile(servePanel); err != nil {
				return err
			}
		}
		log.Info("serving", zap.String("version", version), zap.Bool("clear_stale", cfg.Grids.ClearStale))
		return serve.New(panel.New(form, panelOptions(cfg)), log).Run()
	},
}

// --- view ---

var (
	viewEscaped bool
	viewWhere   string
)

var viewCmd = &cobra.Command{
	Use:   "view [results.json]",
	Short: "Browse classified results in an interactive terminal UI",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		g, err := loadGrids(path, viewEscaped)
		if err != nil {
			return err
		}
		source := path
		if source == "" || source == "-" {
			source = "stdin"
		}
		return tui.Run(tui.Config{Source: source, Grids: g, Where: viewWhere})
	},
}

// --- console ---

var consoleCmd = &cobra.Command{
	Use:   "console [panel.yaml]",
	Short: "Edit override controls interactively and start the fuzzer",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := setup()
		if err != nil {
			return err
		}
		var form *overrides.Form
		if len(args) == 1 {
			if form, err = overrides.LoadPanelFile(args[0]); err != nil {
				return err
			}
		}

		out := cmd.OutOrStdout()
		sender := panel.SenderFunc(func(m panel.Message) error {
			data, err := json.Marshal(m)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(out, "%s %s\n", postedLabel(m.Command), data)
			return err
		})

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		return console.New(panel.New(form, panelOptions(cfg)), sender).Run(ctx)
	},
}

// --- schema ---

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Schema operations",
}

var schemaExportCmd = &cobra.Command{
	Use:       "export [payload|results]",
	Short:     "Export JSON Schema to stdout",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"payload", "results"},
	RunE:      runSchemaExport,
}

func runSchemaExport(cmd *cobra.Command, args []string) error {
	var data []byte
	var err error
	switch args[0] {
	case "payload":
		data, err = schema.GeneratePayloadSchema()
	case "results":
		data, err = schema.GenerateResultsSchema()
	}
	if err != nil {
		return fmt.Errorf("generate schema: %w", err)
	}
	var out json.RawMessage = data
	formatted, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		formatted = data
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(formatted))
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("fuzzpanel %s (build: %s)\n", version, commit)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error (overrides config)")

	// classify flags
	classifyCmd.Flags().BoolVar(&classifyEscaped, "escaped", false, "Input is HTML-entity escaped as embedded in the panel page")
	classifyCmd.Flags().StringVar(&classifyWhere, "where", "", `Filter expression, e.g. 'category == "exception"'`)
	classifyCmd.Flags().BoolVar(&classifyJSON, "json", false, "Output grids as JSON")

	// extract flags
	extractCmd.Flags().BoolVar(&extractMessage, "message", false, "Print the full fuzz.start message instead of the payload")
	extractCmd.Flags().BoolVar(&extractCompact, "compact", false, "Print compact JSON")

	serveCmd.Flags().StringVar(&servePanel, "panel", "", "Panel file with the initial controls")

	viewCmd.Flags().BoolVar(&viewEscaped, "escaped", false, "Input is HTML-entity escaped as embedded in the panel page")
	viewCmd.Flags().StringVar(&viewWhere, "where", "", "Initial filter expression")

	schemaCmd.AddCommand(schemaExportCmd)

	// root subcommands
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(consoleCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(versionCmd)
}
