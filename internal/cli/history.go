package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/artpar/curl2json/internal/history"
	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"
)

const shortIDLen = 8

// HistoryListOptions holds options for history list.
type HistoryListOptions struct {
	Limit  int
	Method string
	Search string
	Fuzzy  string
	JSON   bool
}

// NewHistoryCommand creates the history command and its subcommands.
func NewHistoryCommand(root *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect and replay previously executed commands",
	}

	cmd.AddCommand(newHistoryListCommand(root))
	cmd.AddCommand(newHistoryShowCommand(root))
	cmd.AddCommand(newHistoryReplayCommand(root))
	cmd.AddCommand(newHistoryPruneCommand(root))
	cmd.AddCommand(newHistoryClearCommand(root))

	return cmd
}

func newHistoryListCommand(root *RootOptions) *cobra.Command {
	opts := &HistoryListOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent commands, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, root, true)
			if err != nil {
				return err
			}
			defer s.Close()

			queryOpts := history.QueryOptions{
				Method: strings.ToUpper(opts.Method),
				Limit:  opts.Limit,
			}

			var entries []history.Entry
			switch {
			case opts.Fuzzy != "":
				queryOpts.Limit = 0
				entries, err = s.store.List(cmd.Context(), queryOpts)
				entries = fuzzyFilter(entries, opts.Fuzzy, opts.Limit)
			case opts.Search != "":
				entries, err = s.store.Search(cmd.Context(), opts.Search, queryOpts)
			default:
				entries, err = s.store.List(cmd.Context(), queryOpts)
			}
			if err != nil {
				return fmt.Errorf("failed to list history: %w", err)
			}

			if opts.JSON {
				return encodeJSON(cmd, entries)
			}
			return writeEntries(cmd, entries)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "Maximum number of entries (0 = all)")
	cmd.Flags().StringVar(&opts.Method, "method", "", "Only show this HTTP method")
	cmd.Flags().StringVarP(&opts.Search, "search", "s", "", "Only show entries whose URL, command or body contains this text")
	cmd.Flags().StringVar(&opts.Fuzzy, "fuzzy", "", "Rank entries by a fuzzy match against their URL")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Output entries as JSON")
	cmd.MarkFlagsMutuallyExclusive("search", "fuzzy")

	return cmd
}

// fuzzyFilter keeps the entries whose URL fuzzily matches pattern, best
// match first. Equal scores keep their newest-first order.
func fuzzyFilter(entries []history.Entry, pattern string, limit int) []history.Entry {
	urls := make([]string, len(entries))
	for i, e := range entries {
		urls[i] = e.RequestURL
	}

	matches := fuzzy.Find(pattern, urls)
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Index < matches[j].Index
	})

	result := make([]history.Entry, 0, len(matches))
	for _, m := range matches {
		if limit > 0 && len(result) == limit {
			break
		}
		result = append(result, entries[m.Index])
	}
	return result
}

func writeEntries(cmd *cobra.Command, entries []history.Entry) error {
	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		_, err := fmt.Fprintln(out, "No history entries")
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTIME\tMETHOD\tSTATUS\tDURATION\tURL")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%dms\t%s\n",
			shortID(e.ID),
			e.Timestamp.Local().Format(time.DateTime),
			e.RequestMethod,
			e.ResponseStatus,
			e.ResponseTime,
			e.RequestURL,
		)
	}
	return tw.Flush()
}

func shortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}

func newHistoryShowCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show a recorded entry as JSON (ID prefixes are accepted)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, root, true)
			if err != nil {
				return err
			}
			defer s.Close()

			entry, err := s.store.Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("history entry %q: %w", args[0], err)
			}
			return encodeJSON(cmd, entry)
		},
	}
}

func newHistoryReplayCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "replay ID",
		Short: "Run a recorded command again",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return root.validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, root, true)
			if err != nil {
				return err
			}
			defer s.Close()

			entry, err := s.store.Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("history entry %q: %w", args[0], err)
			}
			s.logger.Debug("replaying", "id", entry.ID, "command", entry.Command)
			return s.run(cmd.Context(), entry.Command)
		},
	}
}

func newHistoryPruneCommand(root *RootOptions) *cobra.Command {
	var opts history.PruneOptions

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete old entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.OlderThan <= 0 && opts.KeepLast <= 0 {
				return fmt.Errorf("prune needs --older-than or --keep")
			}

			s, err := newSession(cmd, root, true)
			if err != nil {
				return err
			}
			defer s.Close()

			res, err := s.store.Prune(cmd.Context(), opts)
			if err != nil {
				return fmt.Errorf("failed to prune history: %w", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Removed %d entries\n", res.DeletedCount)
			return err
		},
	}

	cmd.Flags().DurationVar(&opts.OlderThan, "older-than", 0, "Delete entries older than this, e.g. 720h")
	cmd.Flags().IntVar(&opts.KeepLast, "keep", 0, "Keep only the newest N entries")

	return cmd
}

func newHistoryClearCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, root, true)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.store.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("failed to clear history: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "History cleared")
			return err
		},
	}
}

func encodeJSON(cmd *cobra.Command, v any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(v)
}
