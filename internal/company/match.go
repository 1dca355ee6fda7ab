package company

import "strings"

// questionWords are lead-ins that mark free text as a question rather
// than a department name.
var questionWords = []string{
	"how", "what", "why", "when", "where", "who", "can", "could",
	"should", "is there", "do we", "help", "i need", "i want", "i'm trying",
}

// challengeLengthThreshold is the rune length past which department-step
// input is assumed to be a challenge statement, not a team name.
const challengeLengthThreshold = 40

// MatchTeam resolves free text to a canonical team name. Matching tiers,
// first hit wins: exact case-insensitive equality, alias-table lookup,
// then bidirectional substring containment against team names and
// aliases. Returns "" when nothing matches.
func (c *Context) MatchTeam(input string) string {
	needle := strings.ToLower(strings.TrimSpace(input))
	if needle == "" {
		return ""
	}

	for _, team := range c.Teams {
		if strings.ToLower(team) == needle {
			return team
		}
	}

	if team, ok := c.TeamAliases[needle]; ok {
		return team
	}

	for _, team := range c.Teams {
		lower := strings.ToLower(team)
		if strings.Contains(needle, lower) || strings.Contains(lower, needle) {
			return team
		}
	}
	for alias, team := range c.TeamAliases {
		if strings.Contains(needle, alias) || strings.Contains(alias, needle) {
			return team
		}
	}
	return ""
}

// LooksLikeQuestion reports whether department-step input reads as a
// challenge statement instead of a team name: it contains a question
// mark, starts with a question word, or is simply too long to be a team.
func LooksLikeQuestion(input string) bool {
	text := strings.ToLower(strings.TrimSpace(input))
	if text == "" {
		return false
	}
	if strings.Contains(text, "?") {
		return true
	}
	if len([]rune(text)) > challengeLengthThreshold {
		return true
	}
	for _, w := range questionWords {
		if strings.HasPrefix(text, w+" ") || text == w {
			return true
		}
	}
	return false
}

// ExampleTeams returns a few team names for the re-prompt message.
func (c *Context) ExampleTeams(n int) []string {
	if n > len(c.Teams) {
		n = len(c.Teams)
	}
	return c.Teams[:n]
}
