package cli

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/turtacn/EcoExpand-AI/internal/config"
	"github.com/turtacn/EcoExpand-AI/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/EcoExpand-AI/internal/infrastructure/monitoring/logging"
)

// EventSource delivers audit envelopes until ctx ends or the handler fails.
type EventSource interface {
	Run(ctx context.Context, handler kafka.EventHandler) error
	Close() error
}

// EventSourceFactory opens an EventSource.
type EventSourceFactory func(cfg config.KafkaConfig, opts kafka.ConsumerOptions, logger logging.Logger) (EventSource, error)

func kafkaEventSource(cfg config.KafkaConfig, opts kafka.ConsumerOptions, logger logging.Logger) (EventSource, error) {
	c, err := kafka.NewConsumer(cfg, opts, logger)
	if err != nil {
		return nil, err
	}
	return c, nil
}

var errLimitReached = stderrors.New("event limit reached")

type tailOptions struct {
	brokers       []string
	topic         string
	group         string
	fromBeginning bool
	limit         int
}

// NewEventsCmd groups the audit stream subcommands. A nil factory reads
// from Kafka.
func NewEventsCmd(factory EventSourceFactory) *cobra.Command {
	if factory == nil {
		factory = kafkaEventSource
	}
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Follow the server's audit event stream",
	}
	cmd.AddCommand(newEventsTailCmd(factory))
	return cmd
}

func newEventsTailCmd(factory EventSourceFactory) *cobra.Command {
	opts := &tailOptions{}
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Print audit events as they arrive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			return runTail(cmd, cliCtx, factory, opts)
		},
	}
	cmd.Flags().StringSliceVar(&opts.brokers, "brokers", []string{"localhost:9092"}, "Kafka broker addresses")
	cmd.Flags().StringVar(&opts.topic, "topic", config.DefaultKafkaTopic, "audit topic")
	cmd.Flags().StringVar(&opts.group, "group", "", "consumer group (empty reads without committing offsets)")
	cmd.Flags().BoolVar(&opts.fromBeginning, "from-beginning", false, "start at the earliest retained event")
	cmd.Flags().IntVar(&opts.limit, "limit", 0, "stop after this many events (0 follows forever)")
	return cmd
}

func runTail(cmd *cobra.Command, cliCtx *CLIContext, factory EventSourceFactory, opts *tailOptions) error {
	source, err := factory(config.KafkaConfig{
		Enabled: true,
		Brokers: opts.brokers,
		Topic:   opts.topic,
	}, kafka.ConsumerOptions{GroupID: opts.group, FromBeginning: opts.fromBeginning}, cliCtx.Logger)
	if err != nil {
		return err
	}
	defer source.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	seen := 0
	err = source.Run(ctx, func(_ context.Context, env *kafka.EventEnvelope) error {
		if err := printEnvelope(out, cliCtx.OutputFormat, env); err != nil {
			return err
		}
		seen++
		if opts.limit > 0 && seen >= opts.limit {
			return errLimitReached
		}
		return nil
	})
	if stderrors.Is(err, errLimitReached) {
		return nil
	}
	return err
}

func printEnvelope(w io.Writer, format string, env *kafka.EventEnvelope) error {
	if format == "json" {
		return json.NewEncoder(w).Encode(env)
	}
	_, err := fmt.Fprintf(w, "%s  %s  %s\n",
		env.Timestamp.UTC().Format(time.RFC3339),
		color.CyanString("%-24s", env.EventType),
		string(env.Payload),
	)
	return err
}
