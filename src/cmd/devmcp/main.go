// Package main provides the devmcp CLI: an MCP server that runs Maven/Gradle
// builds for AI clients, plus local commands for running and inspecting builds.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"devmcp-agent/src/build"
	"devmcp-agent/src/config"
	"devmcp-agent/src/contracts"
	"devmcp-agent/src/logger"
	"devmcp-agent/src/mcp"
	"devmcp-agent/src/notify"
	"devmcp-agent/src/store"
	"devmcp-agent/src/tui"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	configFile string
	appConfig  *config.Config
	appLogger  logger.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "devmcp",
	Short: "devmcp - remote build execution over MCP",
	Long: `devmcp runs Maven and Gradle builds on behalf of MCP clients.

The serve command exposes the run_build and read_file tools, project resources
and prompts. Build progress is streamed to the client; on failure the client is
asked (via MCP sampling) to explain the error.

Set REDPANDA_BROKERS to publish build events and POSTGRES_DSN to keep the last
build result across processes.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if configFile == "" {
			appConfig, err = config.LoadFromEnv()
		} else {
			appConfig, err = config.Load(configFile)
		}
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}
		appLogger = logger.NewLevelLogger(appConfig.LogLevel, os.Stderr)
		return nil
	},
}

// serveCmd starts the MCP server
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server (stdio or streamable HTTP)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, appConfig, appLogger)
		if err != nil {
			return err
		}
		defer a.Close()

		srv := mcp.NewServer(mcp.Options{
			Orchestrator: a.orchestrator,
			Results:      a.results,
			WorkDir:      appConfig.WorkDir,
			Version:      version,
			Logger:       appLogger,
		})

		appLogger.Info("[MCP] Starting %s %s on %s", mcp.ServerName, version, appConfig.Transport)
		if appConfig.Transport == config.TransportHTTP {
			return srv.RunHTTP(ctx, appConfig.HTTPAddr)
		}
		return srv.Run()
	},
}

var (
	buildPath string
	buildTUI  bool
)

// buildCmd runs a build locally
var buildCmd = &cobra.Command{
	Use:   "build <goals...>",
	Short: "Run a build locally and print its output",
	Long: `Run goals in a project directory the same way the run_build tool does.

Progress goes to stderr, the final result to stdout. There is no MCP client to
ask for an explanation, so failed builds end with the no-exchange placeholder.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, appConfig, appLogger)
		if err != nil {
			return err
		}
		defer a.Close()

		goals := strings.Join(args, " ")
		run := func(ctx context.Context, observer notify.Observer) string {
			return a.orchestrator.Run(ctx, goals, buildPath, observer, nil)
		}

		var result string
		if buildTUI && term.IsTerminal(os.Stderr.Fd()) {
			result, err = tui.RunInteractive(ctx, os.Stderr, run)
			if err != nil {
				return err
			}
		} else {
			result = run(ctx, tui.NewConsoleObserver(os.Stderr, terminalWidth()))
		}

		fmt.Fprint(os.Stdout, result)
		if !strings.HasSuffix(result, "\n") {
			fmt.Fprintln(os.Stdout)
		}
		if failed(result) {
			return errBuildFailed
		}
		return nil
	},
}

var errBuildFailed = errors.New("build failed")

// failed reports whether a build result describes a failed or unrunnable build.
func failed(result string) bool {
	return strings.HasPrefix(result, build.ExecutionErrorPrefix) ||
		strings.Contains(result, build.AnalysisSeparator)
}

func terminalWidth() int {
	if !term.IsTerminal(os.Stderr.Fd()) {
		return 0
	}
	width, _, err := term.GetSize(os.Stderr.Fd())
	if err != nil {
		return 0
	}
	return width
}

// lastCmd prints the last build result stored in Postgres
var lastCmd = &cobra.Command{
	Use:   "last",
	Short: "Print the last build result stored in Postgres",
	Long: `Read the last build result mirrored to Postgres by a running server.

This command requires POSTGRES_DSN.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if appConfig.PostgresDSN == "" {
			return errors.New("POSTGRES_DSN environment variable is required for the last command")
		}

		ctx := cmd.Context()
		st, err := store.NewPostgresStore(ctx, appConfig.PostgresDSN, appLogger)
		if err != nil {
			return fmt.Errorf("failed to connect to Postgres: %w", err)
		}
		defer st.Close()

		output, updatedAt, err := st.Latest(ctx)
		if errors.Is(err, store.ErrNoResult) {
			fmt.Println(store.NoBuildYet)
			return nil
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stderr, "Last build stored %s\n\n", updatedAt.Local().Format(time.RFC1123))
		fmt.Print(output)
		return nil
	},
}

var eventsGroup string

// eventsCmd follows build events published to Redpanda
var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Follow build events from Redpanda",
	Long: `Print build events published by devmcp servers as they arrive.

This command requires REDPANDA_BROKERS.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !appConfig.EventsEnabled() {
			return errors.New("REDPANDA_BROKERS environment variable is required for the events command")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		b, err := newEventsBroker(appConfig, appLogger)
		if err != nil {
			return err
		}
		defer b.Close()

		msgs, err := b.Subscribe(ctx, appConfig.EventsTopic, eventsGroup)
		if err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", appConfig.EventsTopic, err)
		}

		printer := tui.NewConsoleObserver(os.Stdout, terminalWidth())
		for msg := range msgs {
			var ev contracts.BuildEvent
			if err := json.Unmarshal(msg.Value, &ev); err != nil {
				appLogger.Error("[Events] Skipping malformed event at offset %d: %v", msg.Offset, err)
				continue
			}
			printEvent(ctx, printer, ev)
		}
		return nil
	},
}

func printEvent(ctx context.Context, printer *tui.ConsoleObserver, ev contracts.BuildEvent) {
	switch ev.Type {
	case contracts.EventProgress:
		printer.Progress(ctx, notify.Progress{BuildID: ev.BuildID, Fraction: ev.Progress, Total: ev.Total, Label: ev.Message})
	case contracts.EventLog:
		printer.Log(ctx, notify.LogEntry{BuildID: ev.BuildID, Message: ev.Message})
	case contracts.EventCompleted:
		printer.Completed(ctx, notify.Completion{BuildID: ev.BuildID, ExitCode: ev.ExitCode, Error: ev.Error})
	}
}

// versionCmd prints the version
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the devmcp version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("%s %s\n", mcp.ServerName, version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ./devmcp.yaml)")

	buildCmd.Flags().StringVarP(&buildPath, "path", "p", ".", "project directory")
	buildCmd.Flags().BoolVar(&buildTUI, "tui", false, "show an interactive build view")
	eventsCmd.Flags().StringVar(&eventsGroup, "group", "devmcp-events-cli", "consumer group")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(lastCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errBuildFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
