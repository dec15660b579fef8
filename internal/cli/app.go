// Package cli implements the interactive terminal front end: a small REPL
// over the session manager, the account registry and the entry ledger.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/rvasani/lenden/internal/accounts"
	"github.com/rvasani/lenden/internal/api"
	"github.com/rvasani/lenden/internal/config"
	"github.com/rvasani/lenden/internal/confirm"
	"github.com/rvasani/lenden/internal/entries"
	"github.com/rvasani/lenden/internal/keystore"
	"github.com/rvasani/lenden/internal/logging"
	"github.com/rvasani/lenden/internal/models"
	"github.com/rvasani/lenden/internal/session"

	_ "modernc.org/sqlite"
)

// App wires the client components together and carries the REPL's
// view state: the cached account listing shown last and the account
// currently open in the detail view.
type App struct {
	config   *config.Config
	db       *sql.DB
	sessions *session.Manager
	registry *accounts.Registry
	ledger   *entries.Ledger
	gate     confirm.Gate
	amounts  *models.AmountFormatter
	log      logging.Logger

	reader *bufio.Reader
	out    io.Writer

	listed  []models.Account // accounts as last rendered, for number selection
	current *models.Account  // open detail view, nil when none
	shown   []models.Entry   // entries as last rendered
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()

	log := logging.NewTextLogger(os.Stderr, c.LogLevel)

	db, err := keystore.Open(ctx, c.KeystorePath)
	if err != nil {
		return nil, fmt.Errorf("opening keystore: %w", err)
	}

	// The gateway needs the session's token and the session manager needs
	// the gateway, so the token source closes over the manager variable.
	var sessions *session.Manager
	gw := api.New(c.ServerBaseURL, c.RequestTimeout, func() string {
		return sessions.Token()
	}, log)
	sessions = session.NewManager(db, gw, log)

	registry := accounts.NewRegistry(gw, log)
	ledger := entries.NewLedger(gw, log)
	ledger.Subscribe(func(ctx context.Context, accountID string) error {
		_, err := registry.RefreshOne(ctx, accountID)
		return err
	})

	return &App{
		config:   c,
		db:       db,
		sessions: sessions,
		registry: registry,
		ledger:   ledger,
		amounts:  models.NewAmountFormatter(c.DisplayLocale),
		log:      log,
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
	}, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.db.Close()

	a.sessions.Restore(ctx)

	fmt.Fprintln(a.out, "Welcome to lenden (type 'help' for commands)")
	runREPL(ctx, a, a.status, bufio.NewScanner(os.Stdin), a.out)
}

func (a *App) isLoggedIn() bool {
	return a.sessions.Current().Status == session.StatusAuthenticated
}

func (a *App) hasOpenAccount() bool {
	return a.current != nil
}

func (a *App) status() string {
	s := ""
	if u := a.sessions.Current().Identity; u != nil {
		s = u.DisplayName()
	}
	if a.current != nil {
		s = s + "/" + a.current.Name
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}
