package cli

import (
	"context"
	"strings"
)

// repl reads commands until EOF or exit. The prompt reflects the live
// session state, so a mid-loop 401 teardown lands the user back on the
// login screen on the next iteration.
func (a *App) repl(ctx context.Context) {
	for {
		line := a.readLine(a.prompt())
		if a.eof {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch cmd := parts[0]; cmd {
		case "help":
			a.help()

		case "login":
			a.login(ctx)

		case "register":
			a.register(ctx)

		case "users", "u":
			a.showUsers()

		case "next", "n":
			if !a.guardAuthenticated() {
				a.pager.Next()
				a.showUsers()
			}

		case "prev", "p":
			if !a.guardAuthenticated() {
				a.pager.Prev()
				a.showUsers()
			}

		case "page":
			if len(parts) < 2 {
				a.printf("Usage: page <number>\n")
				continue
			}
			a.goToPage(parts[1])

		case "me":
			a.me()

		case "logout":
			a.logout(ctx)

		case "exit", "quit":
			a.printf("Bye!\n")
			return

		default:
			a.printf("Unknown command: %s\n", cmd)
		}
	}
}

func (a *App) prompt() string {
	if a.authenticated() {
		return "dashboard> "
	}
	return "sign-in> "
}

func (a *App) help() {
	if a.authenticated() {
		a.printf("Available commands: users, next, prev, page <n>, me, logout, exit\n")
	} else {
		a.printf("Available commands: login, register, exit\n")
	}
}
