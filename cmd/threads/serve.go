package main

import (
	"fmt"
	"io"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/threads/httpapi"
	"github.com/tailored-agentic-units/threads/observability"
)

func newServeCommand() *cobra.Command {
	var (
		addr   string
		events bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the conversation workspace as a JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			logger, err := newLogger()
			if err != nil {
				return err
			}
			if logger.GetLevel() > zerolog.DebugLevel {
				gin.SetMode(gin.ReleaseMode)
			}

			pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, watermill.NopLogger{})
			defer pubSub.Close()

			if events {
				msgs, err := pubSub.Subscribe(ctx, observability.DefaultTopic)
				if err != nil {
					return err
				}
				go streamEvents(msgs, cmd.OutOrStdout())
			}

			published := observability.NewWatermillObserver(pubSub, observability.DefaultTopic, func(err error) {
				logger.Debug().Err(err).Msg("event publish failed")
			})

			k, err := openKernel(ctx, logger, published)
			if err != nil {
				return err
			}
			defer k.Close()

			srv := httpapi.New(k, httpapi.WithObserver(observability.NewZerologObserver(logger)))

			logger.Info().Str("addr", addr).Msg("serving threads API")
			return srv.Run(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")
	cmd.Flags().BoolVar(&events, "events", false, "Stream kernel events to stdout as JSON lines")
	return cmd
}

func streamEvents(msgs <-chan *message.Message, w io.Writer) {
	for msg := range msgs {
		fmt.Fprintln(w, string(msg.Payload))
		msg.Ack()
	}
}
