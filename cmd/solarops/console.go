package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/solarops/solarops/internal/access"
	"github.com/solarops/solarops/internal/identity"
	"github.com/solarops/solarops/internal/modules"
	"github.com/solarops/solarops/internal/platform/config"
	"github.com/solarops/solarops/internal/platform/telemetry"
	"github.com/solarops/solarops/internal/session"
)

var (
	errNotLoggedIn   = errors.New("not logged in, run: solarops login <handle>")
	errUnknownHandle = errors.New("unknown handle")
)

func runConsole(ctx context.Context, cfg *config.Config, directory identity.Resolver, command string, args []string, out io.Writer) error {
	store, err := session.OpenSQLiteStore(ctx, cfg.Session.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	mgr := session.NewManager(directory, store,
		session.WithLoginDelay(time.Duration(cfg.Session.LoginDelayMS)*time.Millisecond),
		session.WithLogger(telemetry.Component(nil, "session")),
	)
	return console{
		sessions: mgr,
		gate:     access.NewGate(modules.Default()),
		out:      out,
	}.run(ctx, command, args)
}

// console runs one session command against a restored Manager.
type console struct {
	sessions *session.Manager
	gate     *access.Gate
	out      io.Writer
}

func (c console) run(ctx context.Context, command string, args []string) error {
	c.sessions.Restore(ctx)
	if err := c.sessions.Wait(ctx); err != nil {
		return err
	}

	switch command {
	case "login":
		if len(args) != 1 {
			return errors.New("usage: solarops login <handle>")
		}
		return c.login(ctx, args[0])
	case "logout":
		c.sessions.Logout(ctx)
		fmt.Fprintln(c.out, "logged out")
		return nil
	case "whoami":
		return c.whoami()
	case "modules":
		return c.modules()
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func (c console) login(ctx context.Context, handle string) error {
	ok, err := c.sessions.Login(ctx, handle)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %q", errUnknownHandle, handle)
	}
	return c.whoami()
}

func (c console) whoami() error {
	id := c.sessions.Current()
	if id == nil {
		return errNotLoggedIn
	}
	fmt.Fprintf(c.out, "%s (%s)\n%s\n", id.DisplayName, id.Handle, id.RoleLabel())
	return nil
}

func (c console) modules() error {
	id := c.sessions.Current()
	if id == nil {
		return errNotLoggedIn
	}
	for _, m := range c.gate.Modules(id) {
		fmt.Fprintf(c.out, "%-10s %-12s %s\n", m.ID, m.Path, m.Label)
	}
	return nil
}
