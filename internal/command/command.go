// Package command parses pilot commands into typed values the fleet can act
// on. Commands arrive as argument vectors from the dispatcher, one vector per
// command.
package command

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/windward-sim/windward/pkg/geo"
)

// Verb identifies a pilot command.
type Verb string

const (
	VerbAdd       Verb = "add"
	VerbRemove    Verb = "remove"
	VerbStart     Verb = "start"
	VerbStop      Verb = "stop"
	VerbCourse    Verb = "course"
	VerbSailsUp   Verb = "sails_up"
	VerbSailsDown Verb = "sails_down"
)

// Command is one parsed pilot command.
type Command struct {
	Verb   Verb
	BoatID uint16

	// Course is set for VerbCourse, normalized into [0,360).
	Course float64

	// Add-only fields.
	Name     string
	Class    string
	Position geo.Pos
}

// ErrEmptyCommand is returned when a command has no arguments at all.
var ErrEmptyCommand = fmt.Errorf("empty command")

// Parser turns raw argument vectors into Commands.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a command parser.
func NewParser(logger *slog.Logger) *Parser {
	return &Parser{logger: logger}
}

// Parse parses one argument vector. The first argument is the verb; the rest
// depend on it:
//
//	add <name> <class> <lat,lon>
//	course <boatID> <degrees>
//	start|stop|sails_up|sails_down|remove <boatID>
func (p *Parser) Parse(args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, ErrEmptyCommand
	}

	verb := Verb(args[0])
	rest := args[1:]

	switch verb {
	case VerbAdd:
		return p.parseAdd(rest)
	case VerbCourse:
		return p.parseCourse(rest)
	case VerbStart, VerbStop, VerbSailsUp, VerbSailsDown, VerbRemove:
		id, err := parseBoatID(rest)
		if err != nil {
			return Command{}, fmt.Errorf("%s: %w", verb, err)
		}
		return Command{Verb: verb, BoatID: id}, nil
	default:
		return Command{}, fmt.Errorf("unknown command verb %q", args[0])
	}
}

func (p *Parser) parseAdd(args []string) (Command, error) {
	if len(args) != 3 {
		return Command{}, fmt.Errorf("add: expected 3 arguments, got %d", len(args))
	}

	pos, err := geo.PosFromString(args[2])
	if err != nil {
		return Command{}, fmt.Errorf("add: error parsing position: %w", err)
	}

	return Command{
		Verb:     VerbAdd,
		Name:     args[0],
		Class:    args[1],
		Position: pos,
	}, nil
}

func (p *Parser) parseCourse(args []string) (Command, error) {
	if len(args) != 2 {
		return Command{}, fmt.Errorf("course: expected 2 arguments, got %d", len(args))
	}

	id, err := parseBoatID(args[:1])
	if err != nil {
		return Command{}, fmt.Errorf("course: %w", err)
	}

	deg, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return Command{}, fmt.Errorf("course: error parsing degrees: %w", err)
	}

	normalized := geo.Normalize(deg)
	if normalized != deg {
		p.logger.Warn("Course normalized", "raw", deg, "normalized", normalized)
	}

	return Command{Verb: VerbCourse, BoatID: id, Course: normalized}, nil
}

func parseBoatID(args []string) (uint16, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expected 1 argument, got %d", len(args))
	}
	id, err := strconv.ParseUint(args[0], 10, 16)
	if err != nil {
		return 0, fmt.Errorf("error parsing boat id: %w", err)
	}
	return uint16(id), nil
}
