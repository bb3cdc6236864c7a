package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/set-night/sketchbot/internal/domain"
	"github.com/set-night/sketchbot/internal/service"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newHistoryCmd(opts *options) *cobra.Command {
	var (
		format  string
		page    int
		perPage int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past generations and assistant chats, newest first",
		RunE: withEnv(opts, func(cmd *cobra.Command, args []string, e *env) error {
			entries, err := e.ws.Sessions.LoadHistory(cmd.Context())
			if err != nil {
				return err
			}
			items, shown, total := service.Paginate(entries, page-1, perPage)
			return writeHistory(cmd.OutOrStdout(), format, items, shown+1, total)
		}),
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "text, json or yaml")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&perPage, "per-page", 20, "entries per page")
	return cmd
}

func writeHistory(w io.Writer, format string, items []domain.HistoryEntry, page, totalPages int) error {
	switch strings.ToLower(format) {
	case "json":
		data, err := domain.EncodeHistory(items)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err

	case "yaml":
		// Go through JSON so YAML keys match the stored field names.
		data, err := domain.EncodeHistory(items)
		if err != nil {
			return err
		}
		var generic []map[string]any
		if err := json.Unmarshal(data, &generic); err != nil {
			return fmt.Errorf("convert history: %w", err)
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(generic); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()

	case "text":
		if len(items) == 0 {
			_, err := fmt.Fprintln(w, "No history yet.")
			return err
		}
		for _, e := range items {
			fmt.Fprintf(w, "%s  %-22s %s\n", e.When(), e.Heading(), e.EntryID())
			switch r := e.(type) {
			case domain.GenerationRecord:
				fmt.Fprintf(w, "    %s\n", r.Description)
				if r.ImageURL != "" && !strings.HasPrefix(r.ImageURL, "data:") {
					fmt.Fprintf(w, "    %s\n", r.ImageURL)
				}
			case domain.ChatRecord:
				fmt.Fprintf(w, "    %s\n", r.Message)
			}
		}
		if totalPages > 1 {
			fmt.Fprintf(w, "page %d/%d\n", page, totalPages)
		}
		return nil
	}
	return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
}
