// Package cli provides the account service command-line client.
//
// Invoked with a command (register, login, account <email>) it performs that
// one action and exits; without one it starts an interactive REPL. A
// background watcher probes the server and switches between online and
// offline mode.
//
// Key features:
//   - Register / Login / Logout
//   - Account lookup by email
//   - Adding loyalty points to the logged-in account
//
// See App, runCommand and runREPL for details.
package cli
