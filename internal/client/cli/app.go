package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/dmitrijs2005/authkeeper/internal/client/client"
	"github.com/dmitrijs2005/authkeeper/internal/client/config"
)

// authClient is the part of client.GRPCClient the commands use.
type authClient interface {
	SignUp(ctx context.Context, r client.SignUpRequest) (string, error)
	SignIn(ctx context.Context, username, password string) (*client.Session, error)
	SignOut(ctx context.Context) error
	Renew(ctx context.Context) error
	WhoAmI(ctx context.Context) (*client.Profile, error)
	Session() *client.Session
	SetSession(s *client.Session)
	Close() error
}

type sessionStore interface {
	Load() (*client.Session, error)
	Save(s *client.Session) error
	Clear() error
}

type App struct {
	config *config.Config
	client authClient
	store  sessionStore
	reader *bufio.Reader
	out    io.Writer
}

// NewApp dials the server lazily and restores the session saved by a
// previous run, if any.
func NewApp(c *config.Config) (*App, error) {
	apiClient, err := client.NewAuthKeeperClient(c.ServerEndpointAddr)
	if err != nil {
		return nil, err
	}

	store := client.NewSessionStore(c.SessionFile)
	sess, err := store.Load()
	switch {
	case err == nil:
		apiClient.SetSession(sess)
	case errors.Is(err, client.ErrNoSession):
	default:
		log.Printf("ignoring session file: %v", err)
	}

	apiClient.OnRenew(func(s *client.Session) {
		if err := store.Save(s); err != nil {
			log.Printf("error saving session: %v", err)
		}
	})

	return &App{
		config: c,
		client: apiClient,
		store:  store,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}, nil
}

// Run executes args as a single command, or starts the interactive prompt
// when args is empty.
func (a *App) Run(ctx context.Context, args []string) error {
	defer a.client.Close()

	if len(args) == 0 {
		fmt.Fprintln(a.out, "Welcome to authkeeper CLI (type 'help' for commands)")
		runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.reader))
		return nil
	}
	return a.exec(ctx, args[0], args[1:])
}

func (a *App) isLoggedIn() bool {
	return a.client.Session() != nil
}

func (a *App) getStatus() string {
	if s := a.client.Session(); s != nil {
		return fmt.Sprintf("(%s)", s.Username)
	}
	return ""
}

func (a *App) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config == nil || a.config.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.config.RequestTimeout)
}
