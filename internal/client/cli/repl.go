package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"time"
)

const onlineCheckInterval = 5 * time.Second

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Account(ctx context.Context, email string) error
	AddPoints(ctx context.Context) error
}

// runREPL starts a simple read-eval-print loop.
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help            show available commands
//	  - register        create an account
//	  - login           authenticate
//	  - exit | quit     leave the program
//
//	Logged in:
//	  - help            show available commands
//	  - account [email] show an account, the own one by default
//	  - points          add loyalty points to the own account
//	  - logout          log out
//	  - exit | quit     leave the program
//
// Command handlers report their own failures, so their errors are only
// printed here.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("acct %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: account [email], points, logout, exit")
			} else {
				printlnFn("Available commands: register, login, exit")
			}

		case "register":
			err = a.Register(ctx)

		case "login":
			err = a.Login(ctx)

		case "account":
			email := ""
			if len(args) > 0 {
				email = args[0]
			}
			err = a.Account(ctx, email)

		case "points":
			err = a.AddPoints(ctx)

		case "logout":
			err = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err)
		}
	}
}

// runCommand performs a single command given on the command line:
//
//	register
//	login
//	account <email>
//
// account logs in first, because lookups need a session.
func runCommand(ctx context.Context, a execIface, args []string) error {
	switch args[0] {
	case "register":
		return a.Register(ctx)
	case "login":
		return a.Login(ctx)
	case "account":
		if len(args) < 2 {
			return fmt.Errorf("usage: account <email>")
		}
		if !a.isLoggedIn() {
			if err := a.Login(ctx); err != nil {
				return err
			}
		}
		return a.Account(ctx, args[1])
	default:
		return fmt.Errorf("unknown command %q (want register, login or account <email>)", args[0])
	}
}
