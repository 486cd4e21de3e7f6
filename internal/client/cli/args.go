package cli

import (
	"errors"
	"strings"
)

var (
	ErrIncorrectArgument = errors.New("named arguments must look like name=value")
	ErrUnterminatedQuote = errors.New("unterminated quote")
)

// tokenize splits a command line on whitespace. Double quotes group words,
// so search="operating systems" is one token.
func tokenize(line string) ([]string, error) {
	var (
		tokens  []string
		cur     strings.Builder
		inQuote bool
		started bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			inQuote = !inQuote
			started = true
		case !inQuote && (r == ' ' || r == '\t'):
			if started {
				tokens = append(tokens, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	if inQuote {
		return nil, ErrUnterminatedQuote
	}
	if started {
		tokens = append(tokens, cur.String())
	}
	return tokens, nil
}

// splitArgs separates positional words from name=value pairs.
func splitArgs(args []string) ([]string, map[string]string, error) {
	positional := make([]string, 0, len(args))
	named := make(map[string]string)
	for _, item := range args {
		name, value, ok := strings.Cut(item, "=")
		if !ok {
			positional = append(positional, item)
			continue
		}
		if name == "" {
			return nil, nil, ErrIncorrectArgument
		}
		named[strings.ToLower(name)] = value
	}
	return positional, named, nil
}
