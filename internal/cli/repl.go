package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a
// lightweight stub.
type execIface interface {
	isLoggedIn() bool
	hasOpenAccount() bool

	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) error

	ListAccounts(ctx context.Context) error
	SearchAccounts(ctx context.Context) error
	AddAccount(ctx context.Context) error
	EditAccount(ctx context.Context) error
	DeleteAccount(ctx context.Context) error
	OpenAccount(ctx context.Context) error
	CloseAccount(ctx context.Context) error

	AddEntry(ctx context.Context, given bool) error
	ShowEntries(ctx context.Context) error
	ShowEntry(ctx context.Context) error
	EditEntry(ctx context.Context) error
	DeleteEntry(ctx context.Context) error
	EntriesInRange(ctx context.Context) error
	History(ctx context.Context) error
	Recent(ctx context.Context) error

	Confirm(ctx context.Context) error
	Cancel(ctx context.Context) error
}

// runREPL reads a line from the provided scanner, parses the first token as
// the command, and dispatches to methods on 'a'. Unknown commands are
// reported back to the user. The loop exits on scanner EOF or when the user
// types "exit" or "quit".
//
// Errors returned by command handlers are ignored here; handlers print
// their own messages. This keeps the loop focused on dispatch.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner, out io.Writer) {
	for {
		fmt.Fprintf(out, "lenden %s> ", statusFn())
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			printHelp(a, out)

		case "exit", "quit":
			fmt.Fprintln(out, "Bye!")
			return

		case "yes", "y":
			_ = a.Confirm(ctx)

		case "no", "n":
			_ = a.Cancel(ctx)

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami":
			_ = a.Whoami(ctx)

		case "l", "list":
			_ = a.ListAccounts(ctx)

		case "search":
			_ = a.SearchAccounts(ctx)

		case "add":
			_ = a.AddAccount(ctx)

		case "edit":
			_ = a.EditAccount(ctx)

		case "del":
			_ = a.DeleteAccount(ctx)

		case "open":
			_ = a.OpenAccount(ctx)

		case "back":
			_ = a.CloseAccount(ctx)

		case "given":
			_ = a.AddEntry(ctx, true)

		case "received":
			_ = a.AddEntry(ctx, false)

		case "e", "entries":
			_ = a.ShowEntries(ctx)

		case "show":
			_ = a.ShowEntry(ctx)

		case "update", "editentry":
			_ = a.EditEntry(ctx)

		case "del-entry", "delentry":
			_ = a.DeleteEntry(ctx)

		case "range":
			_ = a.EntriesInRange(ctx)

		case "history":
			_ = a.History(ctx)

		case "recent":
			_ = a.Recent(ctx)

		default:
			fmt.Fprintln(out, "Unknown command:", cmd)
		}
	}
}

func printHelp(a execIface, out io.Writer) {
	switch {
	case !a.isLoggedIn():
		fmt.Fprintln(out, "Available commands: register, login, exit")
	case a.hasOpenAccount():
		fmt.Fprintln(out, "Available commands: given, received, (e)ntries, show, update, del-entry, range, back, logout, exit")
	default:
		fmt.Fprintln(out, "Available commands: (l)ist, search, add, edit, del, open, history, recent, whoami, logout, exit")
	}
}
