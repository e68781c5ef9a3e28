package labeling

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/pbaille/sentiment/internal/domain"
)

// ErrInvalidLabel is returned for operator input that is not a command and
// not an integer label in range
var ErrInvalidLabel = errors.New("invalid label")

var errOutOfRange = fmt.Errorf("%w: out of range", ErrInvalidLabel)

// CommandKind is what an operator line asks for
type CommandKind int

const (
	CommandLabel CommandKind = iota
	CommandSkip
	CommandExit
)

// Command is one parsed operator line
type Command struct {
	Kind  CommandKind
	Label int
}

// ParseCommand reads an operator line: an integer label, "skip", or
// "exit"/"quit". Case and surrounding whitespace are ignored.
func ParseCommand(line string) (Command, error) {
	s := strings.ToLower(strings.TrimSpace(line))
	switch s {
	case "exit", "quit":
		return Command{Kind: CommandExit}, nil
	case "skip":
		return Command{Kind: CommandSkip}, nil
	}
	v, err := ParseLabelInput(s)
	if err != nil {
		return Command{}, err
	}
	return Command{Kind: CommandLabel, Label: v}, nil
}

// ParseLabelInput accepts only integers in [1,10]
func ParseLabelInput(input string) (int, error) {
	s := strings.TrimSpace(input)
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLabel, input)
	}
	if v < domain.MinLabel || v > domain.MaxLabel {
		return 0, fmt.Errorf("%w: %d", errOutOfRange, v)
	}
	return v, nil
}
