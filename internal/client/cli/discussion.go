package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/elibrary/internal/client/models"
)

func (a *App) Discussions(ctx context.Context) error {
	msgs, err := a.discussions.List(ctx)
	if err != nil {
		return err
	}
	renderMessages(a.out, msgs)
	return nil
}

func (a *App) Say(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage("say <text>")
	}
	m, err := a.discussions.Post(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Posted (id %s)\n", m.ID)
	return nil
}

// Unsay deletes a message: admins through the moderation endpoint, students
// only their own.
func (a *App) Unsay(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("unsay <id>")
	}
	var err error
	if a.current().Role == models.RoleAdmin {
		err = a.admin.DeleteDiscussion(ctx, args[0])
	} else {
		err = a.discussions.Delete(ctx, args[0])
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Deleted.")
	return nil
}
