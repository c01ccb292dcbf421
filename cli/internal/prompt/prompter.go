// Package prompt asks the user questions on the terminal.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrNoInput is returned when input is required but cannot be read.
var ErrNoInput = errors.New("no input available")

type Prompter interface {
	YesNo(msg string, defaultYes bool) (bool, error)
	Input(label string) (string, error)
	// Secret reads a line without echoing it when possible.
	Secret(label string) (string, error)
}

type cliPrompter struct {
	in             *bufio.Reader
	out            io.Writer
	fd             int
	nonInteractive bool
}

// NewCLIPrompter prompts on stdin/stderr. A non-interactive prompter answers
// yes/no questions with their default and refuses free-form input.
func NewCLIPrompter(nonInteractive bool) Prompter {
	return &cliPrompter{
		in:             bufio.NewReader(os.Stdin),
		out:            os.Stderr,
		fd:             int(os.Stdin.Fd()),
		nonInteractive: nonInteractive || !term.IsTerminal(int(os.Stdin.Fd())),
	}
}

// New prompts on arbitrary streams; secrets are read as plain lines.
func New(in io.Reader, out io.Writer) Prompter {
	return &cliPrompter{in: bufio.NewReader(in), out: out, fd: -1}
}

func (p *cliPrompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		if err == io.EOF {
			return "", ErrNoInput
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (p *cliPrompter) YesNo(msg string, defaultYes bool) (bool, error) {
	if p.nonInteractive {
		return defaultYes, nil
	}

	hint := "[y/N]"
	if defaultYes {
		hint = "[Y/n]"
	}
	fmt.Fprintf(p.out, "%s %s: ", msg, hint)
	input, err := p.readLine()
	if errors.Is(err, ErrNoInput) {
		return defaultYes, nil
	}
	if err != nil {
		return false, err
	}

	switch strings.ToLower(input) {
	case "":
		return defaultYes, nil
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func (p *cliPrompter) Input(label string) (string, error) {
	if p.nonInteractive {
		return "", ErrNoInput
	}
	fmt.Fprintf(p.out, "%s: ", label)
	return p.readLine()
}

func (p *cliPrompter) Secret(label string) (string, error) {
	if p.nonInteractive {
		return "", ErrNoInput
	}
	fmt.Fprintf(p.out, "%s: ", label)
	if p.fd >= 0 && term.IsTerminal(p.fd) {
		b, err := term.ReadPassword(p.fd)
		fmt.Fprintln(p.out)
		if err != nil {
			return "", fmt.Errorf("read secret: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}
	return p.readLine()
}
