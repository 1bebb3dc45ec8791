package command

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mikey/llm-inbox-prioritizer/internal/bus"
)

func newSendCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "send <link> <text>...",
		Short: "Send a response to the conversation at link",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return invoke(opts, func(b *bus.Bus) error {
				defer b.Close()

				resp, err := b.Send(cmd.Context(), bus.SendAutomatedResponse{
					MessageLink:  args[0],
					ResponseText: strings.Join(args[1:], " "),
				})
				if err != nil {
					return err
				}
				if err := ackError(resp); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("sent"))
				return nil
			})
		},
	}
}

func newActionCmd(opts *globalOptions) *cobra.Command {
	var list bool
	cmd := &cobra.Command{
		Use:   "action [<json>|-]",
		Short: "Dispatch a raw {\"action\": ...} request and print the response",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if list {
				for _, name := range bus.Actions() {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			}
			if len(args) == 0 {
				return fmt.Errorf("a request is required")
			}

			data, err := readRequest(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			req, err := bus.Decode(data)
			if err != nil {
				return err
			}

			return invoke(opts, func(b *bus.Bus) error {
				defer b.Close()

				resp, err := b.Send(cmd.Context(), req)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), resp)
			})
		},
	}
	cmd.Flags().BoolVarP(&list, "list", "l", false, "list the supported actions")
	return cmd
}

func readRequest(stdin io.Reader, arg string) ([]byte, error) {
	switch {
	case arg == "-":
		return io.ReadAll(stdin)
	case strings.HasPrefix(arg, "@"):
		return os.ReadFile(strings.TrimPrefix(arg, "@"))
	default:
		return []byte(arg), nil
	}
}
