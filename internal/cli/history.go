package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type historyEntry struct {
	ID        string    `json:"id"`
	Request   string    `json:"request"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// NewHistoryCommand groups the commands over saved generated texts.
func NewHistoryCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Manage saved generated texts",
	}
	cmd.AddCommand(newHistoryListCommand(a))
	cmd.AddCommand(newHistoryAddCommand(a))
	cmd.AddCommand(newHistoryDeleteCommand(a))
	return cmd
}

func newHistoryListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved texts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.store(cmd.Context())
			if err != nil {
				return err
			}
			entries, err := db.ListGenerated(cmd.Context())
			if err != nil {
				return err
			}

			out := make([]historyEntry, 0, len(entries))
			for _, e := range entries {
				out = append(out, historyEntry{ID: e.ID, Request: e.Request, Text: e.Text, CreatedAt: e.CreatedAt})
			}
			return a.emit(cmd.OutOrStdout(), out, func(w io.Writer) error {
				if len(out) == 0 {
					fmt.Fprintln(w, "no saved texts")
					return nil
				}
				for _, e := range out {
					fmt.Fprintf(w, "%s  %s  %s\n", e.ID, e.CreatedAt.Local().Format("2006-01-02 15:04"), e.Request)
					fmt.Fprintf(w, "    %s\n", strings.ReplaceAll(e.Text, "\n", "\n    "))
				}
				return nil
			})
		},
	}
}

func newHistoryAddCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <request> <text>",
		Short: "Save a generated text with the request that produced it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.store(cmd.Context())
			if err != nil {
				return err
			}
			e, err := db.SaveGenerated(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			out := historyEntry{ID: e.ID, Request: e.Request, Text: e.Text, CreatedAt: e.CreatedAt}
			return a.emit(cmd.OutOrStdout(), out, func(w io.Writer) error {
				fmt.Fprintf(w, "saved %s\n", e.ID)
				return nil
			})
		},
	}
}

func newHistoryDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.store(cmd.Context())
			if err != nil {
				return err
			}
			if err := db.DeleteGenerated(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}
