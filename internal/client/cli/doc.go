// Package cli is the authkeeper command-line client.
//
// Run with a command to execute it once:
//
//	authkeeper-cli [-a host:port] [-f session.json] signin alice
//
// or without one to start an interactive prompt. The session (client id and
// tokens) survives between runs in the configured session file, so a later
// whoami or signout acts on the device that signed in.
//
// Commands: signup, signin, signout, renew, whoami, help, exit.
package cli
