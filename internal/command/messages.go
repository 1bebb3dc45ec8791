package command

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mikey/llm-inbox-prioritizer/internal/bus"
	"github.com/mikey/llm-inbox-prioritizer/internal/config"
	"github.com/mikey/llm-inbox-prioritizer/internal/core"
	"github.com/mikey/llm-inbox-prioritizer/internal/session"
)

// scannedPreview is one entry of an import file
type scannedPreview struct {
	Sender    string `json:"sender"`
	Preview   string `json:"preview"`
	Timestamp string `json:"timestamp"`
	Link      string `json:"link"`
}

func newImportCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json|->",
		Short: "Replace the conversation list with scanned previews",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			messages, err := readPreviews(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			return invoke(opts, func(store core.Store, logger *zap.Logger) error {
				if err := core.SaveJSON(cmd.Context(), store, core.KeyMessages, messages); err != nil {
					return err
				}
				logger.Info("Imported conversation list", zap.Int("count", len(messages)))
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d messages\n", len(messages))
				return nil
			})
		},
	}
}

func readPreviews(stdin io.Reader, path string) ([]core.Message, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read previews: %w", err)
	}

	var scanned []scannedPreview
	if err := json.Unmarshal(data, &scanned); err != nil {
		return nil, fmt.Errorf("failed to parse previews: %w", err)
	}

	messages := make([]core.Message, 0, len(scanned))
	for _, s := range scanned {
		if s.Sender == "" && s.Preview == "" {
			continue
		}
		messages = append(messages, core.NewMessage(s.Sender, s.Preview, s.Timestamp, s.Link))
	}
	return messages, nil
}

func newClassifyCmd(opts *globalOptions) *cobra.Command {
	var method string
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Run a classification pass over the conversation list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return invoke(opts, func(cfg *config.Config, b *bus.Bus, store core.Store) error {
				defer b.Close()

				if method == "" {
					method = cfg.GetString("classifier.method")
				}
				resp, err := b.Send(cmd.Context(), bus.AnalyzeMessages{Method: core.Method(method)})
				if err != nil {
					return err
				}
				if err := ackError(resp); err != nil {
					return err
				}

				groups, err := core.LoadGroups(cmd.Context(), store)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s %d\n", highStyle.Render("high priority:"), len(groups.High))
				fmt.Fprintf(out, "%s %d\n", spamStyle.Render("spam:"), len(groups.Spam))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&method, "method", "m", "", "classification method (rule, ai)")
	return cmd
}

func newListCmd(opts *globalOptions) *cobra.Command {
	var sortHigh, hideSpam bool
	var output string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the conversation list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseFormat(output)
			if err != nil {
				return err
			}
			return invoke(opts, func(b *bus.Bus, sess *session.Session) error {
				defer b.Close()

				ctx := cmd.Context()
				if err := sess.Highlight(ctx); err != nil {
					return err
				}
				if sortHigh {
					if _, err := b.Send(ctx, bus.ToggleSort{}); err != nil {
						return err
					}
				}
				if hideSpam {
					if _, err := b.Send(ctx, bus.ToggleSpamDetection{}); err != nil {
						return err
					}
				}

				visible, hidden := visibleItems(sess.List().Nodes())
				return render(cmd.OutOrStdout(), format, visible, hidden, time.Now())
			})
		},
	}
	cmd.Flags().BoolVarP(&sortHigh, "sort", "s", false, "move high-priority conversations to the top")
	cmd.Flags().BoolVar(&hideSpam, "hide-spam", false, "hide conversations labeled as spam")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format (table, json, yaml)")
	return cmd
}

func newStateCmd(opts *globalOptions) *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Show the session state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return invoke(opts, func(b *bus.Bus) error {
				defer b.Close()

				var req bus.Request = bus.GetState{}
				if refresh {
					req = bus.RefreshMessages{}
				}
				resp, err := b.Send(cmd.Context(), req)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), resp)
			})
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "rescan the conversation list first")
	return cmd
}

// ackError turns an unsuccessful acknowledgement into an error
func ackError(resp bus.Response) error {
	ack, ok := resp.(bus.Ack)
	if !ok || ack.Success {
		return nil
	}
	if ack.Reason == "" {
		return fmt.Errorf("request was not successful")
	}
	return fmt.Errorf("request was not successful: %s", ack.Reason)
}
