package room

import (
	"fmt"
	"strings"
)

const CommandTrigger = "/"

type CommandKind int

const (
	// CmdNone means the text is ordinary chat, not a command.
	CmdNone CommandKind = iota
	CmdCreateRoom
	CmdJoinRoom
	CmdReady
)

// Command is the parsed form of a chat-prefixed command.
type Command struct {
	Kind CommandKind
	Room string
}

// ParseCommand scans a chat message for the command prefix. Text without
// the prefix parses as CmdNone. A prefixed message with an unknown verb
// or the wrong argument count is an error; callers log and drop it.
func ParseCommand(text string) (Command, error) {
	if !strings.HasPrefix(text, CommandTrigger) {
		return Command{Kind: CmdNone}, nil
	}
	fields := strings.Fields(strings.TrimPrefix(text, CommandTrigger))
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("empty command")
	}
	verb := strings.ToLower(fields[0])
	args := fields[1:]
	switch verb {
	case "createroom":
		if len(args) != 1 {
			return Command{}, fmt.Errorf("createroom: want 1 argument, got %d", len(args))
		}
		return Command{Kind: CmdCreateRoom, Room: args[0]}, nil
	case "joinroom":
		if len(args) != 1 {
			return Command{}, fmt.Errorf("joinroom: want 1 argument, got %d", len(args))
		}
		return Command{Kind: CmdJoinRoom, Room: args[0]}, nil
	case "ready":
		if len(args) != 0 {
			return Command{}, fmt.Errorf("ready: takes no arguments")
		}
		return Command{Kind: CmdReady}, nil
	default:
		return Command{}, fmt.Errorf("unknown command %q", verb)
	}
}
