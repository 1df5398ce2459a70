package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		line string
		want ParseResult
	}{
		{
			name: "empty line",
			line: "",
			want: ParseResult{},
		},
		{
			name: "whitespace only",
			line: "   ",
			want: ParseResult{},
		},
		{
			name: "bare command",
			line: "look",
			want: ParseResult{Command: "look"},
		},
		{
			name: "command is lowercased",
			line: "ATTACK grak",
			want: ParseResult{Command: "attack", Args: []string{"grak"}, RawArgs: "grak"},
		},
		{
			name: "args preserve case",
			line: "attack Grak",
			want: ParseResult{Command: "attack", Args: []string{"Grak"}, RawArgs: "Grak"},
		},
		{
			name: "raw args keep interior spacing",
			line: "say hello   there",
			want: ParseResult{Command: "say", Args: []string{"hello", "there"}, RawArgs: "hello   there"},
		},
		{
			name: "leading and trailing whitespace trimmed",
			line: "  use potion on Grak  ",
			want: ParseResult{Command: "use", Args: []string{"potion", "on", "Grak"}, RawArgs: "potion on Grak"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.line)
			assert.Equal(t, tt.want.Command, got.Command)
			assert.Equal(t, tt.want.Args, got.Args)
		})
	}
}

func TestParse_RawArgs(t *testing.T) {
	got := Parse("say hello   there")
	assert.Equal(t, "hello   there", got.RawArgs)

	got = Parse("look")
	assert.Equal(t, "", got.RawArgs)
}
