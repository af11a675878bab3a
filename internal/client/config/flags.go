package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/flagx"
)

// Flags owned by the CLI configuration. Everything else on the command line
// belongs to the subcommand.
var Flags = []string{"-a", "-f", "-t"}

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string   address and port of the server
//	-f string   session file path
//	-t int      request timeout in seconds
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], Flags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.StringVar(&cfg.SessionFile, "f", cfg.SessionFile, "session file")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
}

// Command returns the subcommand and its arguments, i.e. everything on the
// command line that is not a configuration flag. It is empty when the CLI
// should start interactively.
func Command() []string {
	return flagx.Positional(os.Args[1:], append([]string{"-c", "-config"}, Flags...))
}
