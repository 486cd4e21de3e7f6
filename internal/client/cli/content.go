package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/elibrary/internal/client/models"
)

var ErrUsage = errors.New("wrong arguments")

func usage(format string) error {
	return fmt.Errorf("%w, usage: %s", ErrUsage, format)
}

func contentFilter(args []string) (models.Filter, error) {
	positional, named, err := splitArgs(args)
	if err != nil {
		return models.Filter{}, err
	}
	f := models.Filter{
		Department: named["department"],
		Year:       named["year"],
		Category:   named["category"],
		Search:     named["search"],
	}
	if f.Search == "" && len(positional) > 0 {
		f.Search = positional[0]
	}
	return f, nil
}

// List prints the items of one collection, optionally filtered by
// department, year, category and search.
func (a *App) List(ctx context.Context, kind models.ContentKind, args []string) error {
	filter, err := contentFilter(args)
	if err != nil {
		return err
	}
	items, err := a.content.List(ctx, kind, filter)
	if err != nil {
		return err
	}
	renderItems(a.out, items)
	return nil
}

func (a *App) Show(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usage("show <books|notes|pyqs> <id>")
	}
	kind, err := models.ParseContentKind(args[0])
	if err != nil {
		return err
	}
	it, err := a.content.Get(ctx, kind, args[1])
	if err != nil {
		return err
	}
	renderItem(a.out, it)
	return nil
}

func (a *App) Download(ctx context.Context, args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return usage("download <books|notes|pyqs> <id> [path]")
	}
	kind, err := models.ParseContentKind(args[0])
	if err != nil {
		return err
	}
	dest := "."
	if len(args) == 3 {
		dest = args[2]
	}
	path, err := a.content.Download(ctx, kind, args[1], dest)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Saved to %s\n", path)
	return nil
}

// Upload sends a local file as a new item. The name defaults to the file
// name.
func (a *App) Upload(ctx context.Context, args []string) error {
	positional, named, err := splitArgs(args)
	if err != nil {
		return err
	}
	if len(positional) != 2 {
		return usage("upload <books|notes|pyqs> <file> name=.. category=.. department=.. year=..")
	}
	kind, err := models.ParseContentKind(positional[0])
	if err != nil {
		return err
	}
	path := positional[1]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	up := models.Upload{
		Name:       named["name"],
		Category:   named["category"],
		Department: named["department"],
		Year:       named["year"],
		FileName:   filepath.Base(path),
		Content:    data,
	}
	if up.Name == "" {
		up.Name = up.FileName
	}
	it, err := a.content.Upload(ctx, kind, up)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Uploaded %q (id %s)\n", it.Name, it.ID)
	return nil
}

// Remove deletes an item as an administrator.
func (a *App) Remove(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usage("remove <books|notes|pyqs> <id>")
	}
	kind, err := models.ParseContentKind(args[0])
	if err != nil {
		return err
	}
	if err := a.admin.DeleteContent(ctx, kind, args[1]); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Removed.")
	return nil
}
