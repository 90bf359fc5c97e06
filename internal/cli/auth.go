package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pagesmith/pkg/auth"
	"github.com/matzehuels/pagesmith/pkg/client"
	"github.com/matzehuels/pagesmith/pkg/errors"
	"github.com/matzehuels/pagesmith/pkg/session"
)

// envPassword supplies the login password non-interactively.
const envPassword = "PAGESMITH_PASSWORD"

// remoteTimeout bounds every remote command.
const remoteTimeout = 30 * time.Second

// remoteLoginCommand creates the "remote login" subcommand.
func (c *CLI) remoteLoginCommand() *cobra.Command {
	var (
		server   string
		email    string
		password string
		username string
		register bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to a pagesmith server",
		Long: `Log in to a pagesmith server and keep the session token locally.

The password is read from --password, then $PAGESMITH_PASSWORD, then
standard input. With --register a new account is created first.
Credentials are stored in ~/.config/pagesmith/sessions/.`,
		Example: `  pagesmith remote login --email ada@example.com
  pagesmith remote login --server https://pages.example.com --register --username ada --email ada@example.com`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if email == "" {
				return errors.New(errors.ErrCodeInvalidInput, "--email is required")
			}
			if password == "" {
				password = os.Getenv(envPassword)
			}
			if password == "" {
				p, err := promptLine(os.Stdin, "Password: ")
				if err != nil {
					return err
				}
				password = p
			}

			cl, err := client.New(server, client.WithLogger(c.Logger))
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(ctx, remoteTimeout)
			defer cancel()

			spinner := newSpinnerWithContext(ctx, "Logging in to "+server+"...")
			spinner.Start()
			var res *auth.Result
			if register {
				res, err = cl.Register(ctx, auth.RegisterRequest{Username: username, Email: email, Password: password})
			} else {
				res, err = cl.Login(ctx, email, password)
			}
			if err != nil {
				spinner.StopWithError("Login failed")
				return err
			}
			spinner.Stop()

			if _, err := saveCredentials(ctx, server, res); err != nil {
				return err
			}
			if register {
				printSuccess("Registered and logged in as %s", StyleHighlight.Render(res.User.Username))
			} else {
				printSuccess("Logged in as %s", StyleHighlight.Render(res.User.Username))
			}
			printDetail("Server: %s", server)
			return nil
		},
	}

	cmd.Flags().StringVar(&server, "server", defaultServer, "API base URL")
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.Flags().StringVar(&username, "username", "", "username (with --register)")
	cmd.Flags().BoolVar(&register, "register", false, "create the account first")

	return cmd
}

// remoteLogoutCommand creates the "remote logout" subcommand.
func (c *CLI) remoteLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the remote session and remove stored credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), remoteTimeout)
			defer cancel()

			store, err := openCredentials()
			if err != nil {
				return fmt.Errorf("open credentials: %w", err)
			}
			sess, err := store.Load(ctx)
			if err != nil {
				return err
			}
			if sess == nil {
				printInfo("Not logged in")
				return nil
			}

			// The server may be gone; local credentials are removed regardless.
			if cl, err := c.clientFor(sess); err == nil {
				if err := cl.Logout(ctx); err != nil {
					c.Logger.Debug("server logout failed", "error", err)
				}
			}
			if err := store.Delete(ctx); err != nil {
				return fmt.Errorf("delete credentials: %w", err)
			}
			printSuccess("Logged out")
			return nil
		},
	}
}

// remoteWhoamiCommand creates the "remote whoami" subcommand.
func (c *CLI) remoteWhoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the user of the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), remoteTimeout)
			defer cancel()

			sess, cl, err := c.remoteClient(ctx)
			if err != nil {
				return err
			}

			spinner := newSpinnerWithContext(ctx, "Verifying session...")
			spinner.Start()
			user, err := cl.Me(ctx)
			if err != nil {
				spinner.StopWithError("Session invalid")
				return err
			}
			spinner.Stop()

			printSuccess("Pagesmith Session")
			printKeyValue("Username", user.Username)
			printKeyValue("Email", user.Email)
			printKeyValue("Server", sess.Server)
			printKeyValue("Logged in", sess.CreatedAt.Format("Jan 2, 2006"))
			printKeyValue("Expires", sess.ExpiresAt.Format("Jan 2, 2006"))
			return nil
		},
	}
}

// =============================================================================
// Credentials
// =============================================================================

// saveCredentials stores the login result for server.
func saveCredentials(ctx context.Context, server string, res *auth.Result) (*session.Session, error) {
	store, err := openCredentials()
	if err != nil {
		return nil, fmt.Errorf("open credentials: %w", err)
	}
	sess := &session.Session{
		ID:        res.Token,
		ExpiresAt: res.ExpiresAt,
		CreatedAt: time.Now(),
		Server:    server,
	}
	if res.User != nil {
		sess.UserID = res.User.ID
		sess.Username = res.User.Username
	}
	if err := store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// remoteClient loads the stored credentials and returns a client for
// their server.
func (c *CLI) remoteClient(ctx context.Context) (*session.Session, *client.Client, error) {
	store, err := openCredentials()
	if err != nil {
		return nil, nil, fmt.Errorf("open credentials: %w", err)
	}
	sess, err := store.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	if sess == nil {
		return nil, nil, errors.New(errors.ErrCodeUnauthorized,
			"not logged in (run '%s remote login' first)", appName)
	}
	cl, err := c.clientFor(sess)
	if err != nil {
		return nil, nil, err
	}
	return sess, cl, nil
}

func (c *CLI) clientFor(sess *session.Session) (*client.Client, error) {
	server := sess.Server
	if server == "" {
		server = defaultServer
	}
	return client.New(server, client.WithToken(sess.ID), client.WithLogger(c.Logger))
}

// promptLine writes prompt to stderr and reads one line from r.
func promptLine(r io.Reader, prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New(errors.ErrCodeInvalidInput, "no input")
	}
	return line, nil
}
