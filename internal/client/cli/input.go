package cli

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/authkeeper/internal/shared"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

var (
	errEmptyPassword    = errors.New("password must not be empty")
	errPasswordMismatch = errors.New("passwords do not match")
)

// PromptLine writes "prompt: " and returns the trimmed answer. A last line
// without a newline still counts at EOF.
func PromptLine(reader *bufio.Reader, w io.Writer, prompt string) (string, error) {
	if _, err := fmt.Fprintf(w, "%s: ", prompt); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// PromptPassword reads a password from the terminal without echo. The
// caller wipes the result.
func PromptPassword(w io.Writer, prompt string) ([]byte, error) {
	if _, err := fmt.Fprintf(w, "%s: ", prompt); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

// PromptNewPassword asks for a password twice and returns it when both
// entries match and are not empty.
func PromptNewPassword(w io.Writer) ([]byte, error) {
	pw, err := PromptPassword(w, "Choose password")
	if err != nil {
		return nil, err
	}
	if len(pw) == 0 {
		return nil, errEmptyPassword
	}

	again, err := PromptPassword(w, "Repeat password")
	defer shared.WipeByteArray(again)
	if err != nil {
		shared.WipeByteArray(pw)
		return nil, err
	}
	if !bytes.Equal(pw, again) {
		shared.WipeByteArray(pw)
		return nil, errPasswordMismatch
	}
	return pw, nil
}
