package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/artpar/curl2json/internal/cookies"
	cookiestore "github.com/artpar/curl2json/internal/cookies/sqlite"
	"github.com/spf13/cobra"
)

// ErrCookiesNotPersisted is returned by cookie commands when the cookie jar
// only lives for a single run.
var ErrCookiesNotPersisted = errors.New("cookies are not persisted; set cookies.persist in the config file")

// NewCookiesCommand creates the cookies command and its subcommands.
func NewCookiesCommand(root *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cookies",
		Short: "Inspect or clear the persisted cookie jar",
	}

	cmd.AddCommand(newCookiesListCommand(root))
	cmd.AddCommand(newCookiesClearCommand(root))

	return cmd
}

func openCookieStore(cmd *cobra.Command, root *RootOptions) (cookies.Store, error) {
	cfg, _, err := loadConfig(cmd, root)
	if err != nil {
		return nil, err
	}
	if !cfg.Cookies.Persist {
		return nil, ErrCookiesNotPersisted
	}
	store, err := cookiestore.New(cfg.Cookies.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cookie jar: %w", err)
	}
	return store, nil
}

func newCookiesListCommand(root *RootOptions) *cobra.Command {
	var (
		domain string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored cookies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openCookieStore(cmd, root)
			if err != nil {
				return err
			}
			defer store.Close()

			list, err := store.List(cmd.Context(), domain)
			if err != nil {
				return err
			}
			if asJSON {
				return encodeJSON(cmd, list)
			}
			return writeCookies(cmd, list)
		},
	}

	cmd.Flags().StringVar(&domain, "domain", "", "Only show cookies for this domain")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output cookies as JSON")

	return cmd
}

func writeCookies(cmd *cobra.Command, list []cookies.Cookie) error {
	out := cmd.OutOrStdout()
	if len(list) == 0 {
		_, err := fmt.Fprintln(out, "No cookies")
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DOMAIN\tPATH\tNAME\tVALUE\tEXPIRES")
	for _, c := range list {
		expires := "session"
		if !c.Expires.IsZero() {
			expires = c.Expires.Local().Format(time.DateTime)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", c.Domain, c.Path, c.Name, c.Value, expires)
	}
	return tw.Flush()
}

func newCookiesClearCommand(root *RootOptions) *cobra.Command {
	var domain string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete stored cookies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openCookieStore(cmd, root)
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := store.Clear(cmd.Context(), domain)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cookies\n", n)
			return err
		},
	}

	cmd.Flags().StringVar(&domain, "domain", "", "Only delete cookies for this domain")

	return cmd
}
