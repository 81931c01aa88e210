package domain

import (
	"strings"
	"unicode"
)

// Command is a bot-directed request extracted from a room message.
// It only lives for the duration of a dispatch.
type Command struct {
	Issuer Identity
	Room   Identity
	Text   string
}

// ParseCommand recognizes bodies addressed to nickname, e.g. "bot: help" or
// "bot,help". The match is a case-sensitive literal prefix. Address
// punctuation (whitespace, ',' and ':') following the nickname is stripped.
// It returns false when the body is not addressed to the bot or nothing is
// left after stripping.
func ParseCommand(nickname, body string) (string, bool) {
	if nickname == "" {
		return "", false
	}
	rest, ok := strings.CutPrefix(body, nickname)
	if !ok {
		return "", false
	}
	rest = strings.TrimLeftFunc(rest, isAddressPunctuation)
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return "", false
	}
	return rest, true
}

func isAddressPunctuation(r rune) bool {
	return unicode.IsSpace(r) || r == ',' || r == ':'
}
