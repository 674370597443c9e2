// Package cli implements the ecoexpand command-line client.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/turtacn/EcoExpand-AI/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/EcoExpand-AI/pkg/client"
	"github.com/turtacn/EcoExpand-AI/pkg/errors"
)

var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// DefaultServerAddr is used when neither --server nor ECOEXPAND_SERVER is set.
const DefaultServerAddr = "http://localhost:8000"

type cliContextKey struct{}

// RootOptions are the persistent flags.
type RootOptions struct {
	ServerAddr   string
	OutputFormat string
	Timeout      time.Duration
	Verbose      bool
	NoColor      bool
}

// CLIContext is built once per invocation and shared by every subcommand.
type CLIContext struct {
	Client       *client.Client
	Logger       logging.Logger
	OutputFormat string
	Timeout      time.Duration
}

// NewRootCommand assembles the full command tree.
func NewRootCommand() *cobra.Command {
	return newRootCommand(nil)
}

func newRootCommand(events EventSourceFactory) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "ecoexpand",
		Short:   "EcoExpand AI CLI: export risk scoring, compliance chat and knowledge graph",
		Long:    "ecoexpand talks to an EcoExpand AI API server. It scores country export risk,\nasks the compliance assistant, analyses text and manages the knowledge graph.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPreRun(cmd, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.ServerAddr, "server", "", "API server address (default: $ECOEXPAND_SERVER or "+DefaultServerAddr+")")
	pf.StringVarP(&opts.OutputFormat, "output", "o", "text", "output format (text, json)")
	pf.DurationVar(&opts.Timeout, "timeout", 30*time.Second, "per-request timeout")
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "enable debug logging")
	pf.BoolVar(&opts.NoColor, "no-color", false, "disable colored output")

	cmd.AddCommand(
		NewCountriesCmd(),
		NewAnalyzeCmd(),
		NewImportanceCmd(),
		NewSummaryCmd(),
		NewChatCmd(),
		NewPhrasesCmd(),
		NewSummarizeCmd(),
		NewInsightsCmd(),
		NewGraphCmd(),
		NewEventsCmd(events),
		NewVersionCmd(),
	)
	return cmd
}

func persistentPreRun(cmd *cobra.Command, opts *RootOptions) error {
	switch strings.ToLower(opts.OutputFormat) {
	case "text", "json":
	default:
		return errors.InvalidParam(fmt.Sprintf("unsupported output format %q; expected text or json", opts.OutputFormat))
	}
	if opts.NoColor {
		color.NoColor = true
	}

	logger, err := initLogger(opts)
	if err != nil {
		return fmt.Errorf("logger initialization failed: %w", err)
	}

	apiClient, err := initClient(opts, logger)
	if err != nil {
		return fmt.Errorf("client initialization failed: %w", err)
	}

	cliCtx := &CLIContext{
		Client:       apiClient,
		Logger:       logger,
		OutputFormat: strings.ToLower(opts.OutputFormat),
		Timeout:      opts.Timeout,
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, cliContextKey{}, cliCtx))
	return nil
}

func initLogger(opts *RootOptions) (logging.Logger, error) {
	level := "warn"
	if opts.Verbose {
		level = "debug"
	}
	return logging.NewLogger(logging.LogConfig{
		Level:            level,
		Format:           "console",
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	})
}

func initClient(opts *RootOptions, logger logging.Logger) (*client.Client, error) {
	addr := opts.ServerAddr
	if addr == "" {
		addr = os.Getenv("ECOEXPAND_SERVER")
	}
	if addr == "" {
		addr = DefaultServerAddr
	}
	return client.NewClient(addr,
		client.WithTimeout(opts.Timeout),
		client.WithUserAgent("ecoexpand-cli/"+Version),
		client.WithLogger(sdkLogger{logger}),
	)
}

// sdkLogger adapts logging.Logger to the SDK's printf-style Logger.
type sdkLogger struct{ l logging.Logger }

func (s sdkLogger) Debugf(format string, args ...interface{}) { s.l.Debug(fmt.Sprintf(format, args...)) }
func (s sdkLogger) Infof(format string, args ...interface{})  { s.l.Info(fmt.Sprintf(format, args...)) }
func (s sdkLogger) Errorf(format string, args ...interface{}) { s.l.Error(fmt.Sprintf(format, args...)) }

// GetCLIContext returns the context set up by the root command.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.New(errors.CodeValidation, "command context is nil")
	}
	cliCtx, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok || cliCtx == nil {
		return nil, errors.New(errors.CodeValidation, "CLIContext not found in command context")
	}
	return cliCtx, nil
}

// requestContext bounds one API call by the --timeout flag.
func requestContext(cmd *cobra.Command, cliCtx *CLIContext) (context.Context, context.CancelFunc) {
	if cliCtx.Timeout > 0 {
		return context.WithTimeout(cmd.Context(), cliCtx.Timeout)
	}
	return context.WithCancel(cmd.Context())
}

// Execute runs the root command and prints any error to stderr.
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		PrintError(rootCmd, err)
		return err
	}
	return nil
}

// PrintResult writes data as JSON, or calls text for the text format.
func PrintResult(cmd *cobra.Command, data interface{}, text func(w io.Writer) error) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil || cliCtx.OutputFormat == "json" || text == nil {
		return printJSON(cmd.OutOrStdout(), data)
	}
	return text(cmd.OutOrStdout())
}

func printJSON(w io.Writer, data interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// PrintError writes err to stderr. API errors show the server's detail.
func PrintError(cmd *cobra.Command, err error) {
	if err == nil {
		return
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s %s (HTTP %d)\n", color.RedString("Error:"), apiErr.Detail, apiErr.StatusCode)
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", color.RedString("Error:"), err.Error())
}

// PrintSuccess writes a one-line acknowledgement.
func PrintSuccess(cmd *cobra.Command, msg string) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", color.GreenString("OK:"), msg)
}

func truncateString(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
