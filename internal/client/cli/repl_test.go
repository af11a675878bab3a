package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool
	calls    []string
	failOn   string
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }

func (f *fakeExec) exec(_ context.Context, cmd string, args []string) error {
	switch cmd {
	case "signin", "signout", "whoami", "renew", "signup":
	default:
		return fmt.Errorf("%w: %s", errUnknownCommand, cmd)
	}
	f.calls = append(f.calls, strings.TrimSpace(cmd+" "+strings.Join(args, " ")))
	if cmd == "signin" {
		f.loggedIn = true
	}
	if cmd == f.failOn {
		return errors.New("failed")
	}
	return nil
}

func capturePrint(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, fmt.Sprint(a...))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func TestRunREPL_Dispatch(t *testing.T) {
	printed := capturePrint(t)

	input := strings.Join([]string{
		"help",
		"signin alice",
		"",
		"help",
		"whoami",
		"renew",
		"foobar",
		"exit",
		"signout",
	}, "\n")

	f := &fakeExec{failOn: "renew"}
	runREPL(context.Background(), f, func() string { return "s" }, bufio.NewScanner(strings.NewReader(input)))

	assert.Equal(t, []string{"signin alice", "whoami", "renew"}, f.calls)
	text := strings.Join(*printed, "\n")
	assert.Contains(t, text, "Available commands: signup")
	assert.Contains(t, text, "Available commands: whoami")
	assert.Contains(t, text, "Error:failed")
	assert.Contains(t, text, "Unknown command:foobar")
	assert.Contains(t, text, "Bye!")
}

func TestRunREPL_EOF(t *testing.T) {
	capturePrint(t)
	f := &fakeExec{}
	runREPL(context.Background(), f, func() string { return "" }, bufio.NewScanner(strings.NewReader("whoami")))
	assert.Equal(t, []string{"whoami"}, f.calls)
}
