// Package cli implements the stockroom command-line client.
package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	clientapi "stockroom/internal/client/api"
	"stockroom/internal/client/iocli"
	"stockroom/internal/client/session"
	"stockroom/internal/validation"
	"stockroom/pkg/api"
)

// Cli dispatches client commands
type Cli struct {
	client   *clientapi.Client
	sessions *session.Store
	io       iocli.IO
}

// New creates the CLI
func New(client *clientapi.Client, sessions *session.Store, io iocli.IO) *Cli {
	return &Cli{
		client:   client,
		sessions: sessions,
		io:       io,
	}
}

// Run executes a single command
func (c *Cli) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		c.printUsage()
		return fmt.Errorf("no command given")
	}

	cmd, rest := args[0], args[1:]

	switch cmd {
	case "register":
		return c.register(ctx)
	case "login":
		return c.login(ctx)
	case "logout":
		return c.logout()
	case "whoami":
		return c.whoami(ctx)
	case "list":
		return c.list(ctx)
	case "mine":
		return c.mine(ctx)
	case "get":
		return c.get(ctx, rest)
	case "add":
		return c.add(ctx, rest)
	case "update":
		return c.update(ctx, rest)
	case "delete":
		return c.delete(ctx, rest)
	case "help":
		c.printUsage()
		return nil
	default:
		c.printUsage()
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func (c *Cli) printUsage() {
	c.io.Println("Usage: stockroom-cli <command> [arguments]")
	c.io.Println("")
	c.io.Println("Commands:")
	c.io.Println("  register              register a new account")
	c.io.Println("  login                 log in and store the session")
	c.io.Println("  logout                forget the stored session")
	c.io.Println("  whoami                show the current account")
	c.io.Println("  list                  list all items")
	c.io.Println("  mine                  list your items")
	c.io.Println("  get <id>              show one item")
	c.io.Println("  add <title> <price> [description]")
	c.io.Println("  update <id> [-title t] [-price p] [-desc d]")
	c.io.Println("  delete <id>           delete your item")
}

// withSession attaches the stored token to the API client
func (c *Cli) withSession() error {
	sess, err := c.sessions.Get()
	if err != nil {
		if errors.Is(err, session.ErrNotLoggedIn) {
			return fmt.Errorf("not logged in, run 'login' first")
		}
		return err
	}
	c.client.SetToken(sess.AccessToken)
	return nil
}

func (c *Cli) register(ctx context.Context) error {
	email, err := c.io.ReadInput("Email: ")
	if err != nil {
		return err
	}
	if err := validation.ValidateEmail(email); err != nil {
		return err
	}

	username, err := c.io.ReadInput("Username: ")
	if err != nil {
		return err
	}
	if err := validation.ValidateUsername(username); err != nil {
		return err
	}

	fullName, err := c.io.ReadInput("Full name (optional): ")
	if err != nil {
		return err
	}

	password, err := c.io.ReadPassword("Password: ")
	if err != nil {
		return err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return err
	}

	confirm, err := c.io.ReadPassword("Confirm password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	user, err := c.client.Register(ctx, api.RegisterRequest{
		Email:    email,
		Username: username,
		Password: password,
		FullName: fullName,
	})
	if err != nil {
		return err
	}

	c.io.Printf("Registered %s (id %d)\n", user.Username, user.ID)
	return nil
}

func (c *Cli) login(ctx context.Context) error {
	username, err := c.io.ReadInput("Username: ")
	if err != nil {
		return err
	}

	password, err := c.io.ReadPassword("Password: ")
	if err != nil {
		return err
	}

	token, err := c.client.Login(ctx, username, password)
	if err != nil {
		return err
	}

	err = c.sessions.Save(&session.Session{
		Username:    username,
		AccessToken: token.AccessToken,
		SavedAt:     time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	c.io.Printf("Logged in as %s\n", username)
	return nil
}

func (c *Cli) logout() error {
	if err := c.sessions.Delete(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	c.io.Println("Logged out")
	return nil
}

func (c *Cli) whoami(ctx context.Context) error {
	if err := c.withSession(); err != nil {
		return err
	}

	user, err := c.client.Me(ctx)
	if err != nil {
		return err
	}

	c.io.Printf("%s <%s> (id %d)\n", user.Username, user.Email, user.ID)
	if user.FullName != "" {
		c.io.Printf("  name: %s\n", user.FullName)
	}
	if user.IsSuperuser {
		c.io.Println("  superuser")
	}
	return nil
}
