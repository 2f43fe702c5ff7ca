package cli

import (
	"context"
	"encoding/json"
	"time"

	"storefront-admin/internal/bootstrap"
	"storefront-admin/internal/session"
	"storefront-admin/pkg/events"
	pktNats "storefront-admin/pkg/nats"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type AuditTailOptions struct {
	Replay  bool
	Subject string
}

func NewAuditCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Inspect the admin audit stream",
	}

	opts := &AuditTailOptions{}
	tail := &cobra.Command{
		Use:   "tail",
		Short: "Follow admin mutations as they are published",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGuarded(cmd, rootOpts, func(ctx context.Context, c *bootstrap.Container, _ *session.Session, out *OutputFormatter) error {
				sub, err := pktNats.NewSubscriber(c.Config.App.NatsURL)
				if err != nil {
					return WrapExitError(ExitFailure, "connect to audit stream", err)
				}
				defer sub.Close()

				out.VerboseLog("Following %s on %s", opts.Subject, c.Config.App.NatsURL)
				return sub.Follow(ctx, opts.Subject, opts.Replay, func(_ context.Context, e events.Event) error {
					return printAuditEvent(out, e)
				})
			})
		},
	}
	tail.Flags().BoolVar(&opts.Replay, "replay", false, "print stored events before following")
	tail.Flags().StringVar(&opts.Subject, "subject", pktNats.SubjectPrefix+">", "subject filter")
	cmd.AddCommand(tail)

	return cmd
}

func printAuditEvent(out *OutputFormatter, e events.Event) error {
	if out.JSON() {
		return json.NewEncoder(out.Writer).Encode(map[string]interface{}{
			"type":       e.EventType(),
			"data":       e.Payload(),
			"occurredAt": e.Timestamp(),
		})
	}

	data, err := json.Marshal(e.Payload())
	if err != nil {
		return err
	}
	color.New(color.FgCyan).Fprintf(out.Writer, "%s ", e.Timestamp().Format(time.RFC3339))
	color.New(color.FgYellow).Fprintf(out.Writer, "%s ", e.EventType())
	_, err = out.Writer.Write(append(data, '\n'))
	return err
}
