/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/jobboard/apiserver/config"
	"github.com/jobboard/apiserver/internal/events"
	"github.com/jobboard/apiserver/internal/logging"
	"github.com/jobboard/apiserver/internal/mq"
	"github.com/spf13/cobra"
)

// workerCmd consumes the domain event channels and logs every event.
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume domain events",
	Long: `Subscribes to every domain event channel on the configured message queue
and logs each event. Usage:

	MQ_BACKEND=rabbitmq jobboard worker
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		log := logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		broker, err := mq.Connect(ctx, cfg.Queue)
		if err != nil {
			return err
		}
		if broker == nil {
			return fmt.Errorf("worker needs a message queue, MQ_BACKEND is %q", cfg.Queue.Backend)
		}
		defer broker.Close()

		var wg sync.WaitGroup
		errCh := make(chan error, len(events.All))
		for _, eventType := range events.All {
			channel := events.Channel(eventType)
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := broker.Subscribe(ctx, channel, handleEvent)
				if err != nil && !errors.Is(err, context.Canceled) {
					errCh <- fmt.Errorf("subscribe %s: %w", channel, err)
					stop()
				}
			}()
			log.Info().Str("channel", channel).Msg("subscribed")
		}

		wg.Wait()
		close(errCh)
		return <-errCh
	},
}

func handleEvent(ctx context.Context, msg mq.Message) error {
	evt, err := events.Decode(msg)
	if err != nil {
		// Malformed payloads are acknowledged so they are not redelivered.
		logging.Ctx(ctx).Warn().Err(err).Str("message_id", msg.ID).Msg("dropping malformed event")
		return nil
	}
	logging.Ctx(ctx).Info().
		Str("event_id", evt.ID).
		Str("type", string(evt.Type)).
		Time("occurred_at", evt.OccurredAt).
		RawJSON("data", evt.Data).
		Msg("event received")
	return nil
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
