package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/threads/agent"
	"github.com/tailored-agentic-units/threads/kernel"
	"github.com/tailored-agentic-units/threads/registry"
)

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List conversations, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := openCommandKernel(cmd)
			if err != nil {
				return err
			}
			defer k.Close()

			printSummaries(cmd.OutOrStdout(), k.State().Conversations)
			return nil
		},
	}
}

func newShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print the transcript of a conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := openCommandKernel(cmd)
			if err != nil {
				return err
			}
			defer k.Close()

			c, err := k.Conversation(args[0])
			if err != nil {
				return err
			}
			printTranscript(cmd.OutOrStdout(), c)
			return nil
		},
	}
}

func newNewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "new <message>...",
		Short: "Start a conversation with a first message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := openCommandKernel(cmd)
			if err != nil {
				return err
			}
			defer k.Close()

			c, err := k.NewConversation(cmd.Context())
			if err != nil {
				return err
			}
			result, err := k.Submit(cmd.Context(), c.ID, strings.Join(args, " "))
			return printTurn(cmd.OutOrStdout(), result, err)
		},
	}
}

func newSendCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "send <id> <message>...",
		Short: "Send a message to an existing conversation",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := openCommandKernel(cmd)
			if err != nil {
				return err
			}
			defer k.Close()

			result, err := k.Submit(cmd.Context(), args[0], strings.Join(args[1:], " "))
			return printTurn(cmd.OutOrStdout(), result, err)
		},
	}
}

func newDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := openCommandKernel(cmd)
			if err != nil {
				return err
			}
			defer k.Close()

			if err := k.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}

func newAgentsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "agents",
		Short: "List the named agents from the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := openCommandKernel(cmd)
			if err != nil {
				return err
			}
			defer k.Close()

			printAgents(cmd.OutOrStdout(), k.Agents().List())
			return nil
		},
	}
}

func openCommandKernel(cmd *cobra.Command) (*kernel.Kernel, error) {
	logger, err := newLogger()
	if err != nil {
		return nil, err
	}
	return openKernel(cmd.Context(), logger)
}

func printSummaries(w io.Writer, summaries []registry.Summary) {
	if len(summaries) == 0 {
		fmt.Fprintln(w, "no conversations")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tLAST MODIFIED")
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", s.ID, s.Title, s.LastModified.Local().Format(time.DateTime))
	}
	tw.Flush()
}

func printAgents(w io.Writer, infos []agent.Info) {
	if len(infos) == 0 {
		fmt.Fprintln(w, "no named agents")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tPROVIDER\tMODEL")
	for _, info := range infos {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", info.Name, info.Provider, info.Model)
	}
	tw.Flush()
}

// printTurn prints whatever part of the turn completed. A persistence
// failure still shows the reply, since the turn is kept in memory.
func printTurn(w io.Writer, result *kernel.Result, err error) error {
	if result == nil {
		return err
	}
	var persistErr *kernel.PersistenceError
	if result.State == kernel.StatePersisted || errors.As(err, &persistErr) {
		fmt.Fprintf(w, "[%s] %s\n", result.ConversationID, result.Title)
		fmt.Fprintf(w, "assistant: %s\n", result.Reply.Content)
	}
	return err
}
