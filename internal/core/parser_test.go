package core

import "testing"

func TestParseSlash(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  SlashCommand
	}{
		{
			name:  "leave",
			input: "/leave",
			want:  SlashCommand{Kind: SlashLeave, Raw: "leave"},
		},
		{
			name:  "leave with trailing junk",
			input: "/leave now",
			want:  SlashCommand{Kind: SlashLeave, Raw: "leave"},
		},
		{
			name:  "nick",
			input: "/nick Alicia",
			want:  SlashCommand{Kind: SlashNick, Raw: "nick", Text: "Alicia"},
		},
		{
			name:  "nick without argument",
			input: "/nick",
			want:  SlashCommand{Kind: SlashNick, Raw: "nick"},
		},
		{
			name:  "nick with padding",
			input: "  /nick   Alicia  ",
			want:  SlashCommand{Kind: SlashNick, Raw: "nick", Text: "Alicia"},
		},
		{
			name:  "whisper short form",
			input: "/w Bob see you at noon",
			want:  SlashCommand{Kind: SlashWhisper, Raw: "w", Target: "Bob", Text: "see you at noon"},
		},
		{
			name:  "whisper long form",
			input: "/whisper Bob hi",
			want:  SlashCommand{Kind: SlashWhisper, Raw: "whisper", Target: "Bob", Text: "hi"},
		},
		{
			name:  "whisper missing text",
			input: "/w Bob",
			want:  SlashCommand{Kind: SlashWhisper, Raw: "w", Target: "Bob"},
		},
		{
			name:  "whisper missing target",
			input: "/w",
			want:  SlashCommand{Kind: SlashWhisper, Raw: "w"},
		},
		{
			name:  "emote",
			input: "/me waves at everyone",
			want:  SlashCommand{Kind: SlashEmote, Raw: "me", Text: "waves at everyone"},
		},
		{
			name:  "unknown",
			input: "/shrug it all",
			want:  SlashCommand{Kind: SlashUnknown, Raw: "shrug"},
		},
		{
			name:  "missing prefix still parses",
			input: "nick Alicia",
			want:  SlashCommand{Kind: SlashNick, Raw: "nick", Text: "Alicia"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseSlash(tt.input)
			if got != tt.want {
				t.Fatalf("ParseSlash(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}
