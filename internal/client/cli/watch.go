package cli

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/elibrary/internal/client/models"
	"github.com/dmitrijs2005/elibrary/internal/client/poll"
)

var ErrNoFilters = errors.New("this view has no filters")

// watcher mounts a polling view and keeps it until the user presses Enter.
type watcher interface {
	Mount(ctx context.Context) error
	Unmount()
	Refetch()
}

// liveView is a mounted watch target. refilter replaces the filter of
// content views; it is nil for views without filters.
type liveView struct {
	watcher
	refilter func(args []string) error
}

func newView[T any](a *App, name string, interval time.Duration, fetch poll.FetchFunc[T], render func(T)) watcher {
	return poll.New(name, interval, fetch, a.log,
		poll.OnUpdate(func(v T) {
			fmt.Fprintf(a.out, "--- %s @ %s ---\n", name, time.Now().Format("15:04:05"))
			render(v)
		}),
		poll.OnError[T](func(err error) {
			fmt.Fprintf(a.out, "--- %s: %s (showing last data) ---\n", name, describe(err))
		}),
	)
}

// view builds the polling view for a watch target. Content lists refresh on
// the content interval, discussions and admin tables on the live one.
func (a *App) view(target string, args []string) (*liveView, error) {
	live := a.config.LivePollInterval
	isAdmin := a.current().Role == models.RoleAdmin

	switch target {
	case "books", "notes", "pyqs":
		kind := models.ContentKind(target)
		initial, err := contentFilter(args)
		if err != nil {
			return nil, err
		}
		var filter atomic.Pointer[models.Filter]
		filter.Store(&initial)

		w := newView(a, target, a.config.ContentPollInterval,
			func(ctx context.Context) ([]models.Item, error) { return a.content.List(ctx, kind, *filter.Load()) },
			func(items []models.Item) { renderItems(a.out, items) })
		return &liveView{watcher: w, refilter: func(args []string) error {
			f, err := contentFilter(args)
			if err != nil {
				return err
			}
			filter.Store(&f)
			w.Refetch()
			return nil
		}}, nil
	case "discussions":
		return &liveView{watcher: newView(a, target, live, a.discussions.List,
			func(msgs []models.Message) { renderMessages(a.out, msgs) })}, nil
	case "students", "pending":
		if !isAdmin {
			return nil, fmt.Errorf("watching %s is for administrators", target)
		}
		fetch := a.admin.Pending
		if target == "students" {
			fetch = func(ctx context.Context) ([]models.User, error) {
				return a.admin.Students(ctx, models.StudentQuery{})
			}
		}
		return &liveView{watcher: newView(a, target, live, fetch,
			func(users []models.User) { renderStudents(a.out, users) })}, nil
	case "stats":
		if !isAdmin {
			return nil, fmt.Errorf("watching %s is for administrators", target)
		}
		return &liveView{watcher: newView(a, target, live, a.admin.Stats,
			func(s models.DashboardStats) { renderStats(a.out, s) })}, nil
	}
	return nil, usage("watch <books|notes|pyqs|discussions|students|pending|stats> [filters]")
}

// Watch shows a live view until an empty line is entered. Any other line
// replaces the filter of a content view and refreshes it at once.
func (a *App) Watch(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage("watch <books|notes|pyqs|discussions|students|pending|stats> [filters]")
	}
	v, err := a.view(args[0], args[1:])
	if err != nil {
		return err
	}

	viewCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if err := v.Mount(viewCtx); err != nil {
		return err
	}
	defer v.Unmount()

	if v.refilter != nil {
		fmt.Fprintln(a.out, "Watching, type new filters (e.g. search=algo) to change them or press Enter to stop.")
	} else {
		fmt.Fprintln(a.out, "Watching, press Enter to stop.")
	}
	for {
		line, err := readLine(a.reader)
		if err != nil || line == "" {
			return nil
		}
		if err := a.refilter(v, line); err != nil {
			fmt.Fprintln(a.out, "error:", describe(err))
		}
	}
}

func (a *App) refilter(v *liveView, line string) error {
	if v.refilter == nil {
		return ErrNoFilters
	}
	args, err := tokenize(line)
	if err != nil {
		return err
	}
	return v.refilter(args)
}
