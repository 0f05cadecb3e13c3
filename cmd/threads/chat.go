package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/tcnksm/go-input"

	"github.com/tailored-agentic-units/threads/agent"
	"github.com/tailored-agentic-units/threads/conversation"
	"github.com/tailored-agentic-units/threads/kernel"
)

const chatHelp = `Commands:
  /new            start a new conversation
  /list           list conversations
  /select <id>    switch to a conversation
  /delete [id]    delete a conversation (default: the current one)
  /history        print the current transcript
  /agents         list named agents
  /agent <name>   answer with a named agent from now on
  /quit           leave
Anything else is sent to the current conversation.`

func newChatCommand() *cobra.Command {
	var (
		id     string
		latest bool
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			k, err := openCommandKernel(cmd)
			if err != nil {
				return err
			}
			defer k.Close()

			switch {
			case id != "":
				if err := k.Select(ctx, id); err != nil {
					return err
				}
			case latest:
				if convs := k.State().Conversations; len(convs) > 0 {
					if err := k.Select(ctx, convs[0].ID); err != nil {
						return err
					}
				}
			}

			ui := &input.UI{
				Reader: cmd.InOrStdin(),
				Writer: cmd.OutOrStdout(),
			}
			return runREPL(ctx, k, ui, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Resume the conversation with this id")
	cmd.Flags().BoolVar(&latest, "latest", false, "Resume the most recently modified conversation")
	return cmd
}

func runREPL(ctx context.Context, k *kernel.Kernel, ui *input.UI, out io.Writer) error {
	fmt.Fprintln(out, "Type a message, or /help for commands.")
	if view := k.State(); view.Active != nil {
		printTranscript(out, *view.Active)
	}

	for {
		line, err := ui.Ask(prompt(k), &input.Options{})
		if err != nil {
			// Interrupt and end of input both end the session.
			return nil
		}

		quit, err := handleLine(ctx, k, strings.TrimSpace(line), out)
		if err != nil {
			return err
		}
		if quit || ctx.Err() != nil {
			return nil
		}
	}
}

// handleLine runs one REPL line. Conversation errors are reported to out and
// the session continues; only an unexpected failure is returned.
func handleLine(ctx context.Context, k *kernel.Kernel, line string, out io.Writer) (bool, error) {
	if line == "" {
		return false, nil
	}

	if !strings.HasPrefix(line, "/") {
		result, err := k.SubmitActive(ctx, line)
		return false, report(out, printTurn(out, result, err))
	}

	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit", "/exit":
		return true, nil
	case "/help":
		fmt.Fprintln(out, chatHelp)
	case "/new":
		c, err := k.NewConversation(ctx)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(out, "started %s\n", c.ID)
	case "/list":
		printSummaries(out, k.State().Conversations)
	case "/select":
		if len(fields) != 2 {
			fmt.Fprintln(out, "usage: /select <id>")
			return false, nil
		}
		if err := k.Select(ctx, fields[1]); err != nil {
			return false, report(out, err)
		}
		if c, err := k.Conversation(fields[1]); err == nil {
			printTranscript(out, c)
		}
	case "/delete":
		id := k.Active()
		if len(fields) == 2 {
			id = fields[1]
		}
		if id == "" {
			fmt.Fprintln(out, "no conversation selected")
			return false, nil
		}
		if err := k.Delete(ctx, id); err != nil {
			return false, report(out, err)
		}
		fmt.Fprintf(out, "deleted %s\n", id)
	case "/agents":
		printAgents(out, k.Agents().List())
	case "/agent":
		if len(fields) != 2 {
			fmt.Fprintln(out, "usage: /agent <name>")
			return false, nil
		}
		if err := k.UseAgent(fields[1]); err != nil {
			return false, report(out, err)
		}
		fmt.Fprintf(out, "using agent %s\n", fields[1])
	case "/history":
		if view := k.State(); view.Active != nil {
			printTranscript(out, *view.Active)
		} else {
			fmt.Fprintln(out, "no conversation selected")
		}
	default:
		fmt.Fprintf(out, "unknown command %s, try /help\n", fields[0])
	}
	return false, nil
}

// report prints conversation-level errors and swallows them.
func report(out io.Writer, err error) error {
	if err == nil {
		return nil
	}
	var (
		modelErr   *kernel.ModelError
		persistErr *kernel.PersistenceError
	)
	switch {
	case errors.As(err, &modelErr):
		fmt.Fprintf(out, "model error: %v\n", modelErr.Err)
	case errors.As(err, &persistErr):
		fmt.Fprintf(out, "warning: conversation not saved: %v\n", persistErr.Err)
	case errors.Is(err, kernel.ErrNotFound), errors.Is(err, kernel.ErrTurnInProgress),
		errors.Is(err, agent.ErrAgentNotFound):
		fmt.Fprintf(out, "%v\n", err)
	default:
		return err
	}
	return nil
}

func prompt(k *kernel.Kernel) string {
	title := conversation.PlaceholderTitle
	if view := k.State(); view.Active != nil {
		title = view.Active.Title
	}
	return fmt.Sprintf("\n[%s] you>", title)
}

func printTranscript(out io.Writer, c conversation.Conversation) {
	fmt.Fprintf(out, "# %s (%s)\n", c.Title, c.ID)
	for _, m := range c.Messages {
		fmt.Fprintf(out, "%s: %s\n", m.Role, m.Content)
	}
}
