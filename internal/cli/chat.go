package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/set-night/sketchbot/internal/config"
	"github.com/spf13/cobra"
)

func newChatCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "chat [message]",
		Short: "Talk to the design assistant",
		Long: "With a message, sends it and prints the reply. Without one, starts an\n" +
			"interactive session; an empty line or \"/exit\" ends it.",
		RunE: withEnv(opts, func(cmd *cobra.Command, args []string, e *env) error {
			out := cmd.OutOrStdout()
			if len(args) > 0 {
				return ask(cmd, e, out, strings.Join(args, " "))
			}

			fmt.Fprintln(out, "assistant>", config.AssistantGreeting)
			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				fmt.Fprint(out, "you> ")
				if !scanner.Scan() {
					fmt.Fprintln(out)
					return scanner.Err()
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "" || line == "/exit" {
					return nil
				}
				if err := ask(cmd, e, out, line); err != nil && cmd.Context().Err() != nil {
					return err
				}
			}
		}),
	}
}

// ask sends one message. A failed call still prints the fallback reply.
func ask(cmd *cobra.Command, e *env, out io.Writer, text string) error {
	reply, err := e.ws.Assistant.Send(cmd.Context(), text)
	if reply != nil {
		fmt.Fprintln(out, "assistant>", reply.Text)
	}
	return reported(err)
}
