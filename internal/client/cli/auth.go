package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/authkeeper/internal/client/client"
	"github.com/dmitrijs2005/authkeeper/internal/shared"
)

// Prompt indirections, swapped in tests.
var (
	promptLine        = PromptLine
	promptPassword    = PromptPassword
	promptNewPassword = PromptNewPassword
)

var errUnknownCommand = errors.New("unknown command")

func (a *App) exec(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "signup", "register":
		return a.SignUp(ctx, args)
	case "signin", "login":
		return a.SignIn(ctx, args)
	case "signout", "logout":
		return a.SignOut(ctx)
	case "renew":
		return a.Renew(ctx)
	case "whoami":
		return a.WhoAmI(ctx)
	default:
		return fmt.Errorf("%w: %s", errUnknownCommand, cmd)
	}
}

// usernameArg returns args[0] or asks for a user name.
func (a *App) usernameArg(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	return promptLine(a.reader, a.out, "Username")
}

// SignUp registers a new account. Profile fields are optional and an
// empty answer skips them.
func (a *App) SignUp(ctx context.Context, args []string) error {
	username, err := a.usernameArg(args)
	if err != nil {
		return err
	}

	password, err := promptNewPassword(a.out)
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(password)

	req := client.SignUpRequest{Username: username, Password: string(password)}
	for _, f := range []struct {
		prompt string
		dst    *string
	}{
		{"First name (optional)", &req.FirstName},
		{"Last name (optional)", &req.LastName},
		{"Email (optional)", &req.Email},
	} {
		if *f.dst, err = promptLine(a.reader, a.out, f.prompt); err != nil {
			return err
		}
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	name, err := a.client.SignUp(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "User %s created, sign in to start a session\n", name)
	return nil
}

// SignIn opens a session for this device and stores it in the session file.
func (a *App) SignIn(ctx context.Context, args []string) error {
	username, err := a.usernameArg(args)
	if err != nil {
		return err
	}

	password, err := promptPassword(a.out, "Password")
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(password)

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	sess, err := a.client.SignIn(ctx, username, string(password))
	if err != nil {
		return err
	}
	if err := a.store.Save(sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	fmt.Fprintf(a.out, "Signed in as %s (client %s), access token valid for %ds\n", sess.Username, sess.ClientID, sess.ExpiresIn)
	return nil
}

// SignOut ends the stored session. The local session is dropped even when
// the server already considers it logged out.
func (a *App) SignOut(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	err := a.client.SignOut(ctx)
	if err != nil && !errors.Is(err, client.ErrUnauthorized) {
		return err
	}

	a.client.SetSession(nil)
	if cerr := a.store.Clear(); cerr != nil {
		return cerr
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Signed out")
	return nil
}

func (a *App) Renew(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.client.Renew(ctx); err != nil {
		return err
	}
	if err := a.store.Save(a.client.Session()); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	fmt.Fprintf(a.out, "Access token renewed, valid for %ds\n", a.client.Session().ExpiresIn)
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	p, err := a.client.WhoAmI(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "user:   %s\n", p.Username)
	if name := fmt.Sprintf("%s %s", p.FirstName, p.LastName); name != " " {
		fmt.Fprintf(a.out, "name:   %s\n", name)
	}
	if p.Email != "" {
		fmt.Fprintf(a.out, "email:  %s\n", p.Email)
	}
	fmt.Fprintf(a.out, "client: %s\n", p.ClientID)
	fmt.Fprintf(a.out, "active sessions: %d\n", len(p.Clients))
	for _, c := range p.Clients {
		marker := " "
		if c.ClientID == p.ClientID {
			marker = "*"
		}
		fmt.Fprintf(a.out, " %s %s  %s\n", marker, c.ClientID, c.CreatedAt)
	}
	return nil
}
