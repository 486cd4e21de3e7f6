package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/elibrary/internal/client/models"
	"github.com/dmitrijs2005/elibrary/internal/client/tokens"
	"github.com/dmitrijs2005/elibrary/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

var ErrUnknownRole = errors.New("choose 'student' or 'admin'")

// Register prompts for the registration form and submits it. The account
// stays pending until an administrator approves it.
func (a *App) Register(ctx context.Context) error {
	a.setScreen(screenRegister)
	defer a.setScreen(screenLoginSelector)

	var reg models.Registration
	fields := []struct {
		prompt string
		dst    *string
	}{
		{"Full name", &reg.Name},
		{"Email", &reg.Email},
		{"Roll number", &reg.RollNo},
		{"Department (e.g. CSE)", &reg.Department},
		{"Year (1-4)", &reg.Year},
		{"Mobile", &reg.Mobile},
	}
	for _, f := range fields {
		v, err := getSimpleText(a.reader, f.prompt, a.out)
		if err != nil {
			return err
		}
		*f.dst = v
	}
	reg.Department = strings.ToUpper(reg.Department)

	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	reg.Password = string(password)

	msg, err := a.auth.Register(ctx, reg)
	if err != nil {
		return err
	}
	if msg == "" {
		msg = "Registration submitted. Please wait for admin approval."
	}
	fmt.Fprintln(a.out, msg)
	return nil
}

// Login authenticates as a student (email) or admin (username), stores the
// issued tokens and records the session.
func (a *App) Login(ctx context.Context, args []string) error {
	a.setScreen(screenLogin)
	ok := false
	defer func() {
		if ok {
			a.setScreen(screenHome)
		} else {
			a.setScreen(screenLoginSelector)
		}
	}()

	kind := ""
	if len(args) > 0 {
		kind = args[0]
	} else {
		v, err := getSimpleText(a.reader, "Log in as (student/admin)", a.out)
		if err != nil {
			return err
		}
		kind = v
	}
	role, err := models.ParseRole(strings.ToLower(kind))
	if err != nil || role == models.RoleNone {
		return ErrUnknownRole
	}

	prompt := "Enter email"
	if role == models.RoleAdmin {
		prompt = "Enter username"
	}
	login, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}

	var user *models.User
	if role == models.RoleAdmin {
		user, err = a.auth.LoginAdmin(ctx, login, password)
	} else {
		user, err = a.auth.LoginStudent(ctx, login, password)
	}
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	if user.Role != models.RoleNone {
		role = user.Role
	}
	if err := a.session.Login(ctx, role, user); err != nil {
		return err
	}

	ok = true
	fmt.Fprintf(a.out, "Welcome, %s!\n", user.DisplayName())
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.session.Logout(ctx); err != nil {
		return err
	}
	a.setScreen(screenLoginSelector)
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

// Status prints the session state and what the stored access token says
// about itself.
func (a *App) Status(ctx context.Context) error {
	s := a.current()
	switch {
	case s.Authenticated:
		fmt.Fprintf(a.out, "Logged in as %s (%s)", displayName(s), s.Role)
		if s.Unverified {
			fmt.Fprint(a.out, ", not verified with the server")
		}
		fmt.Fprintln(a.out)
	default:
		fmt.Fprintln(a.out, "Not logged in.")
	}

	fmt.Fprintf(a.out, "Credential storage: %s\n", strings.Join(a.store.Backends(), " -> "))

	access, ok := a.store.Access(ctx)
	if !ok {
		fmt.Fprintln(a.out, "No access token stored.")
		return nil
	}
	claims, err := tokens.Inspect(access)
	if err != nil {
		fmt.Fprintln(a.out, "Access token stored (opaque).")
		return nil
	}
	if left, ok := claims.ExpiresIn(time.Now()); ok {
		if left > 0 {
			fmt.Fprintf(a.out, "Access token expires in %s.\n", left.Round(time.Second))
		} else {
			fmt.Fprintln(a.out, "Access token expired; it will be refreshed on the next request.")
		}
	}
	return nil
}

// Profile shows the student's profile, or updates it when name=value pairs
// are given (name, department, year, mobile).
func (a *App) Profile(ctx context.Context, args []string) error {
	_, named, err := splitArgs(args)
	if err != nil {
		return err
	}

	var u *models.User
	if len(named) == 0 {
		u, err = a.student.Profile(ctx)
	} else {
		u, err = a.student.UpdateProfile(ctx, models.ProfileUpdate{
			Name:       named["name"],
			Department: strings.ToUpper(named["department"]),
			Year:       named["year"],
			Mobile:     named["mobile"],
		})
	}
	if err != nil {
		return err
	}
	renderProfile(a.out, u)
	return nil
}
