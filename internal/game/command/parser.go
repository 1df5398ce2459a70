package command

import "strings"

// ParseResult holds the parsed command name and arguments from a text line.
type ParseResult struct {
	// Command is the first word of the input, lowercased.
	Command string
	// Args are the remaining whitespace-separated words.
	Args []string
	// RawArgs is the raw text after the command word, trimmed but with
	// interior spacing preserved for say.
	RawArgs string
}

// Parse splits a text line into a command word and its arguments.
//
// Postcondition: Returns a ParseResult. If line is blank, Command is empty.
func Parse(line string) ParseResult {
	line = strings.TrimSpace(line)
	if line == "" {
		return ParseResult{}
	}

	word, rest, found := strings.Cut(line, " ")
	if !found {
		return ParseResult{Command: strings.ToLower(word)}
	}

	rest = strings.TrimSpace(rest)
	res := ParseResult{
		Command: strings.ToLower(word),
		RawArgs: rest,
	}
	if rest != "" {
		res.Args = strings.Fields(rest)
	}
	return res
}
