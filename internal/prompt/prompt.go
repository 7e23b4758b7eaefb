// Package prompt reads harvester inputs from an interactive terminal.
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

// Prompt texts shown to the user.
const (
	HandlesPrompt = "Please enter a list of channel names, separated by commas: "
	APIKeyPrompt  = "Please enter your API Key: "
)

// ErrNoHandles is returned when no channel handle was entered.
var ErrNoHandles = errors.New("no channel handles entered")

// SplitHandles splits a comma-separated list, trimming whitespace and dropping
// empty entries.
func SplitHandles(input string) []string {
	parts := strings.Split(input, ",")
	handles := make([]string, 0, len(parts))
	for _, p := range parts {
		if h := strings.TrimSpace(p); h != "" {
			handles = append(handles, h)
		}
	}
	return handles
}

// Prompter asks questions on out and reads answers from in. One Prompter
// must serve every question of a session so that buffered input is not lost
// between them.
type Prompter struct {
	in     io.Reader
	reader *bufio.Reader
	out    io.Writer
}

// New creates a Prompter.
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: in, reader: bufio.NewReader(in), out: out}
}

// ReadHandles writes the handles prompt and reads one line.
func (p *Prompter) ReadHandles() ([]string, error) {
	line, err := p.readLine(HandlesPrompt)
	if err != nil {
		return nil, err
	}

	handles := SplitHandles(line)
	if len(handles) == 0 {
		return nil, ErrNoHandles
	}
	return handles, nil
}

// ReadAPIKey prompts for the API key. When input is a terminal, it is not
// echoed.
func (p *Prompter) ReadAPIKey() (string, error) {
	if f, ok := p.in.(*os.File); ok && p.reader.Buffered() == 0 && term.IsTerminal(int(f.Fd())) {
		if _, err := fmt.Fprint(p.out, APIKeyPrompt); err != nil {
			return "", err
		}
		key, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(p.out)
		if err != nil {
			return "", fmt.Errorf("read API key: %w", err)
		}
		return strings.TrimSpace(string(key)), nil
	}

	line, err := p.readLine(APIKeyPrompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (p *Prompter) readLine(prompt string) (string, error) {
	if _, err := fmt.Fprint(p.out, prompt); err != nil {
		return "", err
	}

	line, err := p.reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
