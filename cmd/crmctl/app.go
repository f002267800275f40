package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Marga-Ghale/ora-crm-backend/pkg/client"
)

type app struct {
	ctx      context.Context
	server   string
	sessions *SessionStore
	out      io.Writer
}

func (a *app) newClient(baseURL string, opts ...client.Option) *client.Client {
	return client.New(baseURL, opts...)
}

// withSession runs fn with an authenticated client. A 401 removes the stored
// session; success refreshes its idle timer.
func (a *app) withSession(fn func(c *client.Client) error) error {
	sess, err := a.sessions.Load()
	switch {
	case errors.Is(err, ErrNoSession):
		return fmt.Errorf("not logged in; run 'crmctl login'")
	case errors.Is(err, ErrSessionExpired):
		return fmt.Errorf("session expired; run 'crmctl login'")
	case err != nil:
		return err
	}

	baseURL := sess.BaseURL
	if baseURL == "" {
		baseURL = a.server
	}
	c := a.newClient(baseURL,
		client.WithToken(sess.Token),
		client.OnUnauthorized(func() { _ = a.sessions.Clear() }),
	)

	if err := fn(c); err != nil {
		if client.IsUnauthorized(err) {
			return fmt.Errorf("session rejected by server; run 'crmctl login'")
		}
		return err
	}
	return a.sessions.Save(sess)
}

// ============================================
// Auth commands
// ============================================

func (a *app) login(args []string) error {
	fs := newFlagSet("login")
	email := fs.String("email", "", "account email")
	password := fs.String("password", os.Getenv("CRMCTL_PASSWORD"), "account password (or CRMCTL_PASSWORD)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		return fmt.Errorf("--email and --password are required")
	}

	c := a.newClient(a.server)
	resp, err := c.Login(a.ctx, *email, *password)
	if err != nil {
		return err
	}
	if err := a.sessions.Save(&Session{BaseURL: a.server, Token: resp.Token, Email: resp.User.Email}); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Logged in as %s (%s)\n", resp.User.Name, resp.User.Role)
	return nil
}

func (a *app) logout([]string) error {
	if err := a.sessions.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *app) register(args []string) error {
	fs := newFlagSet("register")
	var req client.RegisterRequest
	fs.StringVar(&req.Email, "email", "", "account email")
	fs.StringVar(&req.Password, "password", "", "account password (min 6 chars)")
	fs.StringVar(&req.Name, "name", "", "display name")
	fs.StringVar(&req.Role, "role", "", "admin or sales (default sales)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.newClient(a.server).Register(a.ctx, req); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Registered %s\n", req.Email)
	return nil
}

func (a *app) whoami([]string) error {
	return a.withSession(func(c *client.Client) error {
		user, err := c.Profile(a.ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%s <%s> role=%s id=%s\n", user.Name, user.Email, user.Role, user.ID)
		return nil
	})
}

// ============================================
// Helpers
// ============================================

// splitAction pops a leading verb off args; list is the default.
func splitAction(args []string) (string, []string) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return "list", args
	}
	return args[0], args[1:]
}

// requireID parses fs and returns its first positional argument.
func requireID(fs *flag.FlagSet, args []string) (string, error) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return "", fmt.Errorf("%s: missing id", fs.Name())
	}
	id := args[0]
	if err := fs.Parse(args[1:]); err != nil {
		return "", err
	}
	return id, nil
}

// setFlags reports which flags were given on the command line.
func setFlags(fs *flag.FlagSet) map[string]bool {
	seen := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { seen[f.Name] = true })
	return seen
}

func optString(seen map[string]bool, name string, value string) *string {
	if !seen[name] {
		return nil
	}
	return &value
}

func (a *app) printJSON(v interface{}) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func userName(u *client.UserRef) string {
	if u == nil {
		return "-"
	}
	return u.Name
}
