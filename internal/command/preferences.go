package command

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mikey/llm-inbox-prioritizer/internal/automation"
	"github.com/mikey/llm-inbox-prioritizer/internal/bus"
	"github.com/mikey/llm-inbox-prioritizer/internal/core"
	"github.com/mikey/llm-inbox-prioritizer/internal/preferences"
)

// listEditor describes one editable preference list
type listEditor struct {
	use, noun string
	items     func(core.UserPreferences) []string
	add       func(*preferences.Manager, context.Context, string) (bool, error)
	remove    func(*preferences.Manager, context.Context, string) (bool, error)
}

func newContactsCmd(opts *globalOptions) *cobra.Command {
	return newListEditorCmd(opts, listEditor{
		use:    "contacts",
		noun:   "contact",
		items:  func(p core.UserPreferences) []string { return p.ImportantContacts },
		add:    (*preferences.Manager).AddImportantContact,
		remove: (*preferences.Manager).RemoveImportantContact,
	})
}

func newTagsCmd(opts *globalOptions) *cobra.Command {
	return newListEditorCmd(opts, listEditor{
		use:    "tags",
		noun:   "tag",
		items:  func(p core.UserPreferences) []string { return p.PriorityTags },
		add:    (*preferences.Manager).AddPriorityTag,
		remove: (*preferences.Manager).RemovePriorityTag,
	})
}

func newListEditorCmd(opts *globalOptions, e listEditor) *cobra.Command {
	cmd := &cobra.Command{
		Use:   e.use,
		Short: fmt.Sprintf("Manage %s entries", e.noun),
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: fmt.Sprintf("List %s entries", e.noun),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return invoke(opts, func(prefs *preferences.Manager) error {
				for _, item := range e.items(prefs.Snapshot()) {
					fmt.Fprintln(cmd.OutOrStdout(), item)
				}
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <value>...",
		Short: fmt.Sprintf("Add %s entries", e.noun),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return invoke(opts, func(prefs *preferences.Manager) error {
				for _, arg := range args {
					added, err := e.add(prefs, cmd.Context(), arg)
					if err != nil {
						return err
					}
					report(cmd.OutOrStdout(), added, "added %s %q", "%s %q already present", e.noun, arg)
				}
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "remove <value>...",
		Aliases: []string{"rm"},
		Short:   fmt.Sprintf("Remove %s entries", e.noun),
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return invoke(opts, func(prefs *preferences.Manager) error {
				for _, arg := range args {
					removed, err := e.remove(prefs, cmd.Context(), arg)
					if err != nil {
						return err
					}
					report(cmd.OutOrStdout(), removed, "removed %s %q", "%s %q not found", e.noun, arg)
				}
				return nil
			})
		},
	})

	return cmd
}

func report(w io.Writer, changed bool, done, skipped, noun, value string) {
	if changed {
		fmt.Fprintln(w, successStyle.Render(fmt.Sprintf(done, noun, value)))
		return
	}
	fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf(skipped, noun, value)))
}

func newAutomationCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "automation",
		Short: "Configure and run automated responses",
	}

	var enabled bool
	var template string
	set := &cobra.Command{
		Use:   "set",
		Short: "Update the automated response settings",
		Long:  "Update the automated response settings. The template may use {sender}, {fullname}, {date} and {time}.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return invoke(opts, func(prefs *preferences.Manager) error {
				current := prefs.Snapshot().Automation
				if cmd.Flags().Changed("enabled") {
					current.Enabled = enabled
				}
				if cmd.Flags().Changed("template") {
					current.Template = template
				}
				if err := prefs.SetAutomation(cmd.Context(), current); err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), current)
			})
		},
	}
	set.Flags().BoolVar(&enabled, "enabled", false, "enable automated responses")
	set.Flags().StringVar(&template, "template", "", "response template")

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the automated response settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return invoke(opts, func(prefs *preferences.Manager) error {
				return writeJSON(cmd.OutOrStdout(), prefs.Snapshot().Automation)
			})
		},
	}

	var preview bool
	run := &cobra.Command{
		Use:   "run",
		Short: "Respond to every unresponded high-priority conversation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if preview {
				return invoke(opts, func(prefs *preferences.Manager, store core.Store) error {
					return previewResponses(cmd, prefs, store)
				})
			}
			return invoke(opts, func(b *bus.Bus) error {
				defer b.Close()

				resp, err := b.Send(cmd.Context(), bus.ProcessUnresponded{})
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), resp)
			})
		},
	}
	run.Flags().BoolVar(&preview, "dry-run", false, "print the personalized responses without sending them")

	cmd.AddCommand(set, show, run)
	return cmd
}

func previewResponses(cmd *cobra.Command, prefs *preferences.Manager, store core.Store) error {
	settings := prefs.Snapshot().Automation
	messages, err := core.LoadMessages(cmd.Context(), store)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, m := range messages {
		if m.Label != core.LabelHigh || m.Responded {
			continue
		}
		fmt.Fprintf(out, "%s\n  %s\n", highStyle.Render(m.Sender), automation.Personalize(settings.Template, m, timeNow()))
	}
	return nil
}
