package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/postreview/internal/session"
)

var (
	loginToken string
	loginForce bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store a review server token for the configured user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.User == "" {
			return fmt.Errorf("no review user: run 'postreview setup' or set USER")
		}

		token := loginToken
		if token == "" {
			var err error
			token, err = readToken(cmd.InOrStdin(), cmd.OutOrStdout())
			if err != nil {
				return fmt.Errorf("reading token: %w", err)
			}
		}
		if token == "" {
			return fmt.Errorf("empty token")
		}

		store, err := session.NewSessionStore()
		if err != nil {
			return err
		}
		existing, err := store.Load()
		switch {
		case err == nil && existing.HasToken() && existing.Matches(cfg.ServerURL, cfg.User):
			if existing.Token() == token {
				fmt.Fprintf(cmd.OutOrStdout(), "Already logged in to %s as %s\n", cfg.ServerURL, cfg.User)
				return nil
			}
			if !loginForce {
				return fmt.Errorf("already logged in to %s as %s: pass --force to replace the token", cfg.ServerURL, cfg.User)
			}
		case err != nil && !errors.Is(err, session.ErrNoSession):
			return err
		}

		s := &session.Session{ServerURL: cfg.ServerURL, User: cfg.User, CreatedAt: time.Now()}
		s.SetToken(token)
		if err := store.Save(s); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Logged in to %s as %s\n", cfg.ServerURL, cfg.User)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored review server token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := session.NewSessionStore()
		if err != nil {
			return err
		}
		s, err := store.Load()
		if err != nil {
			if errors.Is(err, session.ErrNoSession) {
				return fmt.Errorf("not logged in")
			}
			return err
		}
		if err := store.Delete(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Logged out of %s\n", s.ServerURL)
		return nil
	},
}

// readToken prompts for the token without echo on a terminal and reads one
// line from in otherwise.
func readToken(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprintf(out, "Token for %s@%s: ", cfg.User, cfg.ServerURL)
	if f, ok := in.(*os.File); ok && term.IsTerminal(f.Fd()) {
		b, err := term.ReadPassword(f.Fd())
		fmt.Fprintln(out)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func init() {
	loginCmd.Flags().StringVar(&loginToken, "token", "", "token to store (prompted for when omitted)")
	loginCmd.Flags().BoolVar(&loginForce, "force", false, "replace the token of an existing login")
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}
