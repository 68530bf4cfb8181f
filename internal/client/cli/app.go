// Package cli is the terminal front end: a login/register screen while
// anonymous and the user directory dashboard once authenticated.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"golang.org/x/term"

	"github.com/arjun/auth-dashboard/internal/client/api"
	"github.com/arjun/auth-dashboard/internal/client/dashboard"
	"github.com/arjun/auth-dashboard/internal/client/session"
	"github.com/arjun/auth-dashboard/internal/models"
)

// sessionManager is the slice of session.Manager the app drives.
type sessionManager interface {
	State() session.State
	CurrentUser() *models.Profile
	Rehydrate(ctx context.Context) session.State
	Login(ctx context.Context, email, password string) error
	Register(ctx context.Context, req models.RegisterRequest) error
	Logout(ctx context.Context)
}

// App wires the session manager to the terminal.
type App struct {
	session sessionManager
	pager   *dashboard.Pager
	in      *bufio.Scanner
	out     io.Writer
	stdin   bool // reading from a real terminal
	eof     bool
}

func NewApp(sess sessionManager, in io.Reader, out io.Writer) *App {
	return &App{
		session: sess,
		pager:   dashboard.NewPager(dashboard.MockUsers(), 5),
		in:      bufio.NewScanner(in),
		out:     out,
		stdin:   in == os.Stdin,
	}
}

// Run rehydrates the session and enters the command loop.
func (a *App) Run(ctx context.Context) {
	if a.session.Rehydrate(ctx) == session.StateAuthenticated {
		a.printf("Welcome back, %s\n", a.session.CurrentUser().Name)
		a.showUsers()
	} else {
		a.printf("Not signed in. Type 'login' or 'register' to begin, 'help' for commands.\n")
	}
	a.repl(ctx)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) authenticated() bool {
	return a.session.State() == session.StateAuthenticated
}

func (a *App) readLine(prompt string) string {
	a.printf("%s", prompt)
	if !a.in.Scan() {
		a.eof = true
		return ""
	}
	return strings.TrimSpace(a.in.Text())
}

func (a *App) readPassword(prompt string) string {
	if a.stdin && term.IsTerminal(int(os.Stdin.Fd())) {
		a.printf("%s", prompt)
		pw, err := term.ReadPassword(int(os.Stdin.Fd()))
		a.printf("\n")
		if err == nil {
			return string(pw)
		}
	}
	return a.readLine(prompt)
}

func (a *App) login(ctx context.Context) {
	if a.guardAnonymousOnly() {
		return
	}
	email := a.readLine("Email: ")
	password := a.readPassword("Password: ")
	if email == "" || password == "" {
		a.printf("All fields are required\n")
		return
	}
	if err := a.session.Login(ctx, email, password); err != nil {
		a.printf("Error: %s\n", errorMessage(err))
		return
	}
	a.printf("Welcome, %s\n", a.session.CurrentUser().Name)
	a.showUsers()
}

func (a *App) register(ctx context.Context) {
	if a.guardAnonymousOnly() {
		return
	}
	req := models.RegisterRequest{
		Name:        a.readLine("Name: "),
		Email:       a.readLine("Email: "),
		DateOfBirth: a.readLine("Date of birth (YYYY-MM-DD): "),
		Password:    a.readPassword("Password: "),
	}
	if err := a.session.Register(ctx, req); err != nil {
		a.printf("Error: %s\n", errorMessage(err))
		return
	}
	a.printf("Account created. Welcome, %s\n", a.session.CurrentUser().Name)
	a.showUsers()
}

func (a *App) logout(ctx context.Context) {
	if a.guardAuthenticated() {
		return
	}
	a.session.Logout(ctx)
	a.printf("Logged out.\n")
}

func (a *App) me() {
	if a.guardAuthenticated() {
		return
	}
	u := a.session.CurrentUser()
	if u == nil {
		a.printf("No profile loaded.\n")
		return
	}
	a.printf("Name:          %s\n", u.Name)
	a.printf("Email:         %s\n", u.Email)
	a.printf("Date of birth: %s\n", u.DateOfBirth)
}

// guardAnonymousOnly keeps login/register screens away from signed-in
// users: they land on the dashboard instead.
func (a *App) guardAnonymousOnly() bool {
	if a.authenticated() {
		a.printf("Already signed in as %s, opening dashboard.\n", a.session.CurrentUser().Name)
		a.showUsers()
		return true
	}
	return false
}

// guardAuthenticated bounces anonymous users back to the login screen.
func (a *App) guardAuthenticated() bool {
	if !a.authenticated() {
		a.printf("Please log in first. Type 'login' or 'register'.\n")
		return true
	}
	return false
}

func (a *App) showUsers() {
	if a.guardAuthenticated() {
		return
	}

	w := tabwriter.NewWriter(a.out, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tNAME\tDATE CREATED\tROLE\tSTATUS")
	for _, u := range a.pager.Page() {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", u.ID, u.Name, u.DateCreated, u.Role, u.Status)
	}
	w.Flush()

	first, last, total := a.pager.Showing()
	a.printf("Showing %d to %d of %d results (page %d/%d)\n",
		first, last, total, a.pager.CurrentPage(), a.pager.TotalPages())
}

func (a *App) goToPage(arg string) {
	if a.guardAuthenticated() {
		return
	}
	n, err := strconv.Atoi(arg)
	if err != nil {
		a.printf("Usage: page <number>\n")
		return
	}
	a.pager.GoTo(n)
	a.showUsers()
}

// errorMessage shows the server-provided message verbatim, matching the
// form-level error banner behavior.
func errorMessage(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
