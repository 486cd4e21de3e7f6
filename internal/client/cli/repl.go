package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/elibrary/internal/client/api"
	"github.com/dmitrijs2005/elibrary/internal/client/models"
	"github.com/dmitrijs2005/elibrary/internal/client/session"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	current() session.Session

	Register(ctx context.Context) error
	Login(ctx context.Context, args []string) error
	Logout(ctx context.Context) error
	Status(ctx context.Context) error
	Profile(ctx context.Context, args []string) error

	List(ctx context.Context, kind models.ContentKind, args []string) error
	Show(ctx context.Context, args []string) error
	Download(ctx context.Context, args []string) error
	Upload(ctx context.Context, args []string) error
	Watch(ctx context.Context, args []string) error

	Discussions(ctx context.Context) error
	Say(ctx context.Context, args []string) error
	Unsay(ctx context.Context, args []string) error

	Students(ctx context.Context, args []string) error
	Pending(ctx context.Context) error
	Moderate(ctx context.Context, action string, args []string) error
	Remove(ctx context.Context, args []string) error
	Stats(ctx context.Context) error
}

// access is the minimum session a command needs.
type access int

const (
	public access = iota
	signedIn
	studentOnly
	adminOnly
)

func allowed(s session.Session, need access) (bool, string) {
	switch need {
	case public:
		return true, ""
	case signedIn:
		if !s.Authenticated {
			return false, "Please log in first ('login student' or 'login admin')."
		}
	case studentOnly:
		if s.Role != models.RoleStudent {
			return false, "This command is for students."
		}
	case adminOnly:
		if s.Role != models.RoleAdmin {
			return false, "This command is for administrators."
		}
	}
	return true, ""
}

// runREPL starts the read–eval–print loop for the e-library CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on a after checking the session allows it. Errors
// returned by handlers are printed and the loop continues. The loop exits on
// EOF or when the user types "exit" or "quit".
//
// Commands
//
//	Anyone:
//	  - help                          — show available commands
//	  - register                      — submit a student registration
//	  - login student|admin           — authenticate
//	  - status                        — show session and token details
//	  - exit | quit                   — leave the program
//
//	Signed in:
//	  - books|notes|pyqs [name=value] — list content with filters
//	  - show <kind> <id>              — show one item
//	  - download <kind> <id> [path]   — save an item's file
//	  - upload <kind> <file> name=.. category=.. department=.. year=..
//	  - watch <view> [filters]        — live view; type filters to change them, Enter to stop
//	  - discussions, say <text>, unsay <id>
//	  - logout
//
//	Students: profile [name=value]
//	Admins:   students [status], pending, approve|reject|block|unblock <id>,
//	          remove <kind> <id>, stats
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("elib%s> ", prefixed(statusFn())))
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts, err := tokenize(line)
		if err != nil {
			printlnFn("error:", err)
			continue
		}
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if cmd == "exit" || cmd == "quit" {
			printlnFn("Bye!")
			return
		}

		need, run, ok := route(a, cmd, args)
		if !ok {
			printlnFn("Unknown command:", cmd)
			continue
		}
		if cmd == "help" {
			printlnFn(helpText(a.current()))
			continue
		}
		if ok, msg := allowed(a.current(), need); !ok {
			printlnFn(msg)
			continue
		}
		if err := run(ctx); err != nil {
			printlnFn("error:", describe(err))
		}
	}
}

func prefixed(s string) string {
	if s == "" {
		return ""
	}
	return " " + s
}

// route maps a command to its access level and handler.
func route(a execIface, cmd string, args []string) (access, func(context.Context) error, bool) {
	with := func(need access, fn func(context.Context) error) (access, func(context.Context) error, bool) {
		return need, fn, true
	}
	switch cmd {
	case "help":
		return with(public, nil)
	case "register":
		return with(public, a.Register)
	case "login":
		return with(public, func(ctx context.Context) error { return a.Login(ctx, args) })
	case "status":
		return with(public, a.Status)
	case "logout":
		return with(signedIn, a.Logout)
	case "books", "notes", "pyqs":
		kind := models.ContentKind(cmd)
		return with(signedIn, func(ctx context.Context) error { return a.List(ctx, kind, args) })
	case "show":
		return with(signedIn, func(ctx context.Context) error { return a.Show(ctx, args) })
	case "download":
		return with(signedIn, func(ctx context.Context) error { return a.Download(ctx, args) })
	case "upload":
		return with(signedIn, func(ctx context.Context) error { return a.Upload(ctx, args) })
	case "watch":
		return with(signedIn, func(ctx context.Context) error { return a.Watch(ctx, args) })
	case "discussions":
		return with(signedIn, a.Discussions)
	case "say":
		return with(signedIn, func(ctx context.Context) error { return a.Say(ctx, args) })
	case "unsay":
		return with(signedIn, func(ctx context.Context) error { return a.Unsay(ctx, args) })
	case "profile":
		return with(studentOnly, func(ctx context.Context) error { return a.Profile(ctx, args) })
	case "students":
		return with(adminOnly, func(ctx context.Context) error { return a.Students(ctx, args) })
	case "pending":
		return with(adminOnly, a.Pending)
	case "approve", "reject", "block", "unblock":
		return with(adminOnly, func(ctx context.Context) error { return a.Moderate(ctx, cmd, args) })
	case "remove":
		return with(adminOnly, func(ctx context.Context) error { return a.Remove(ctx, args) })
	case "stats":
		return with(adminOnly, a.Stats)
	}
	return public, nil, false
}

func helpText(s session.Session) string {
	switch {
	case s.Role == models.RoleAdmin:
		return "Available commands: books, notes, pyqs, show, download, upload, watch, discussions, say, unsay, " +
			"students, pending, approve, reject, block, unblock, remove, stats, status, logout, exit"
	case s.Authenticated:
		return "Available commands: books, notes, pyqs, show, download, upload, watch, discussions, say, unsay, " +
			"profile, status, logout, exit"
	default:
		return "Available commands: login student, login admin, register, status, exit"
	}
}

// describe turns an error into a line for the user.
func describe(err error) string {
	switch {
	case errors.Is(err, api.ErrUnavailable):
		return "server unavailable, please try again later"
	case errors.Is(err, api.ErrResponseTooLarge):
		return "response too large to load"
	case errors.Is(err, api.ErrUnexpected):
		return "unexpected response from server"
	case errors.Is(err, session.ErrNotInitialized):
		return "still checking your session, try again"
	default:
		return api.MessageOf(err)
	}
}
