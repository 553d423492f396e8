package core

import "strings"

// SlashKind identifies a parsed slash command.
type SlashKind int

const (
	// SlashLeave leaves the current room.
	SlashLeave SlashKind = iota
	// SlashNick renames the user.
	SlashNick
	// SlashWhisper sends a private message to a room member.
	SlashWhisper
	// SlashEmote broadcasts an action line.
	SlashEmote
	// SlashUnknown is any unrecognized command.
	SlashUnknown
)

// SlashCommand is the parsed form of slash-command input.
type SlashCommand struct {
	Kind SlashKind
	// Raw is the command token as typed, kept for unknown-command notices.
	Raw string
	// Target is the whisper recipient's display name.
	Target string
	// Text is the nick name, whisper body, or emote body.
	Text string
}

// ParseSlash splits command input into a closed command variant. The first
// whitespace-delimited token after the prefix selects the command; the
// remainder, trimmed, is its argument.
func ParseSlash(input string) SlashCommand {
	input = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(input), "/"))

	cmd, args, _ := strings.Cut(input, " ")
	args = strings.TrimSpace(args)

	switch cmd {
	case "leave":
		return SlashCommand{Kind: SlashLeave, Raw: cmd}
	case "nick":
		return SlashCommand{Kind: SlashNick, Raw: cmd, Text: args}
	case "w", "whisper":
		target, text, _ := strings.Cut(args, " ")
		return SlashCommand{
			Kind:   SlashWhisper,
			Raw:    cmd,
			Target: target,
			Text:   strings.TrimSpace(text),
		}
	case "me":
		return SlashCommand{Kind: SlashEmote, Raw: cmd, Text: args}
	default:
		return SlashCommand{Kind: SlashUnknown, Raw: cmd}
	}
}
