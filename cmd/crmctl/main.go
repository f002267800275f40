package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// Version information (set via ldflags during build)
var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	global := flag.NewFlagSet("crmctl", flag.ContinueOnError)
	server := global.String("server", envOr("CRMCTL_SERVER", "http://localhost:5000"), "API base URL")
	idle := global.Duration("idle", 30*time.Minute, "discard a session unused for this long (0 disables)")
	sessionPath := global.String("session", envOr("CRMCTL_SESSION", defaultSessionPath()), "session file")
	if err := global.Parse(args); err != nil {
		return err
	}

	a := &app{
		ctx:      ctx,
		server:   *server,
		sessions: NewSessionStore(*sessionPath, *idle),
		out:      out,
	}
	registry := NewCommandRegistry()
	registerCommands(registry, a)
	return registry.Execute(global.Args())
}

func registerCommands(r *CommandRegistry, a *app) {
	r.Register(&Command{
		Name:        "login",
		Description: "Authenticate and store a session",
		Usage:       "crmctl login --email <email> [--password <password>]",
		Examples: []string{
			"crmctl login --email marga@oracrm.dev --password password123",
			"CRMCTL_PASSWORD=secret crmctl --server https://crm.example.com login --email me@example.com",
		},
		Run: a.login,
	})
	r.Register(&Command{
		Name:        "logout",
		Description: "Remove the stored session",
		Usage:       "crmctl logout",
		Run:         a.logout,
	})
	r.Register(&Command{
		Name:        "register",
		Description: "Create a user account",
		Usage:       "crmctl register --email <email> --password <password> --name <name> [--role admin|sales]",
		Examples:    []string{"crmctl register --email ann@example.com --password secret123 --name Ann"},
		Run:         a.register,
	})
	r.Register(&Command{
		Name:        "whoami",
		Description: "Show the logged-in user",
		Usage:       "crmctl whoami",
		Run:         a.whoami,
	})
	r.Register(&Command{
		Name:        "customers",
		Description: "List and manage customers",
		Usage:       "crmctl customers [list|get|create|update|delete|interact] [flags]",
		Examples: []string{
			"crmctl customers list --q acme",
			"crmctl customers create --name Acme --email ops@acme.test --company Acme",
			"crmctl customers interact <id> --type call --notes \"intro call\"",
		},
		Run: a.customers,
	})
	r.Register(&Command{
		Name:        "leads",
		Description: "List and manage leads",
		Usage:       "crmctl leads [list|get|create|update|delete] [flags]",
		Examples: []string{
			"crmctl leads list --stage Qualified --sort value --order desc",
			"crmctl leads create --customer <id> --title Renewal --source Referral --value 1200",
			"crmctl leads update <id> --stage Won",
		},
		Run: a.leads,
	})
	r.Register(&Command{
		Name:        "tasks",
		Description: "List and manage tasks",
		Usage:       "crmctl tasks [list|get|create|update|delete] [flags]",
		Examples: []string{
			"crmctl tasks list --due overdue",
			"crmctl tasks create --title \"Send contract\" --due 2026-07-01 --related lead:<id>",
			"crmctl tasks update <id> --status Completed",
		},
		Run: a.tasks,
	})
	r.Register(&Command{
		Name:        "dashboard",
		Description: "Show dashboard stats or lead performance",
		Usage:       "crmctl dashboard [stats|performance]",
		Run:         a.dashboard,
	})
	r.Register(&Command{
		Name:        "version",
		Description: "Print the crmctl version",
		Usage:       "crmctl version",
		Run: func([]string) error {
			fmt.Fprintf(a.out, "crmctl %s (%s)\n", version, commit)
			return nil
		},
	})
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
