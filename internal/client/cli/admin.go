package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/elibrary/internal/client/models"
)

// Students lists student accounts, optionally by status
// (pending, approved, blocked).
func (a *App) Students(ctx context.Context, args []string) error {
	positional, named, err := splitArgs(args)
	if err != nil {
		return err
	}
	q := models.StudentQuery{Status: models.StudentStatus(named["status"])}
	if q.Status == "" && len(positional) > 0 {
		q.Status = models.StudentStatus(positional[0])
	}
	users, err := a.admin.Students(ctx, q)
	if err != nil {
		return err
	}
	renderStudents(a.out, users)
	return nil
}

func (a *App) Pending(ctx context.Context) error {
	users, err := a.admin.Pending(ctx)
	if err != nil {
		return err
	}
	renderStudents(a.out, users)
	return nil
}

// Moderate applies approve, reject, block or unblock to one student.
func (a *App) Moderate(ctx context.Context, action string, args []string) error {
	if len(args) != 1 {
		return usage(action + " <student id>")
	}
	id := args[0]

	var err error
	switch action {
	case "approve":
		err = a.admin.Approve(ctx, id)
	case "reject":
		err = a.admin.Reject(ctx, id)
	case "block":
		err = a.admin.Block(ctx, id)
	case "unblock":
		err = a.admin.Unblock(ctx, id)
	default:
		return usage("approve|reject|block|unblock <student id>")
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Student %s: %s done.\n", id, action)
	return nil
}

func (a *App) Stats(ctx context.Context) error {
	stats, err := a.admin.Stats(ctx)
	if err != nil {
		return err
	}
	renderStats(a.out, stats)
	return nil
}
