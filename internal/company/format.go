package company

import (
	"fmt"
	"math/rand"
	"regexp"
	"sort"
	"strings"

	"innovators-bot/internal/domain"
)

// FormatToolsList renders the AI tool catalog as Slack mrkdwn. With a
// search term it returns a flat detail list; without one it groups tools
// by what you can do with them.
func (c *Context) FormatToolsList(search string) string {
	aiTools := make([]Tool, 0, len(c.Tools))
	for _, t := range c.Tools {
		if t.HasAI {
			aiTools = append(aiTools, t)
		}
	}

	search = strings.TrimSpace(search)
	if search != "" {
		needle := strings.ToLower(search)
		var matched []Tool
		for _, t := range aiTools {
			if toolMatches(t, needle) {
				matched = append(matched, t)
			}
		}
		if len(matched) == 0 {
			return fmt.Sprintf("No AI tools found matching %q. Try `/tools` to see all.", search)
		}
		lines := make([]string, 0, len(matched))
		for _, t := range matched {
			features := ""
			if len(t.AIFeatures) > 0 {
				max := 2
				if len(t.AIFeatures) < max {
					max = len(t.AIFeatures)
				}
				features = "\n   _" + strings.Join(t.AIFeatures[:max], ", ") + "_"
			}
			lines = append(lines, fmt.Sprintf("• *%s* (%s)%s", t.Name, t.Category, features))
		}
		return fmt.Sprintf("🔧 *AI Tools matching %q:*\n\n%s", search, strings.Join(lines, "\n"))
	}

	if len(aiTools) == 0 {
		return "No AI tools configured yet."
	}

	groups := []struct {
		label string
		match func(Tool) bool
	}{
		{"Writing & Content", func(t Tool) bool { return toolMatchesPattern(t, writingRe) }},
		{"Sales & Calls", func(t Tool) bool { return toolMatchesPattern(t, salesRe) || teamMatches(t, "sales") }},
		{"Code & Engineering", func(t Tool) bool { return toolMatchesPattern(t, codeRe) || teamMatches(t, "engineering") }},
		{"General AI", func(t Tool) bool { return t.Category == "AI Assistant" || teamMatches(t, "all teams") }},
	}

	var sections []string
	for _, g := range groups {
		seen := map[string]bool{}
		var names []string
		for _, t := range aiTools {
			if g.match(t) && !seen[t.Name] {
				seen[t.Name] = true
				names = append(names, t.Name)
			}
		}
		if len(names) > 0 {
			sections = append(sections, fmt.Sprintf("*%s:* %s", g.label, strings.Join(names, ", ")))
		}
	}

	return "🔧 *AI Tools You Can Use*\n\n" + strings.Join(sections, "\n") +
		"\n\n_Try `/tools sales` or `/tools writing` for details_"
}

var (
	writingRe = regexp.MustCompile(`(?i)writing|content|document`)
	salesRe   = regexp.MustCompile(`(?i)sales|call|crm`)
	codeRe    = regexp.MustCompile(`(?i)code|dev|test|review`)
)

func toolMatches(t Tool, needle string) bool {
	if strings.Contains(strings.ToLower(t.Name), needle) ||
		strings.Contains(strings.ToLower(t.Category), needle) {
		return true
	}
	for _, u := range t.UseCases {
		if strings.Contains(strings.ToLower(u), needle) {
			return true
		}
	}
	for _, f := range t.AIFeatures {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

func toolMatchesPattern(t Tool, re *regexp.Regexp) bool {
	for _, u := range t.UseCases {
		if re.MatchString(u) {
			return true
		}
	}
	for _, f := range t.AIFeatures {
		if re.MatchString(f) {
			return true
		}
	}
	return false
}

func teamMatches(t Tool, team string) bool {
	for _, tm := range t.Teams {
		if strings.EqualFold(tm, team) {
			return true
		}
	}
	return false
}

// FormatWorkflows renders the seeded workflow catalog. With a team search
// it shows that team's items; otherwise a per-team summary.
func FormatWorkflows(workflows []domain.Workflow, teamSearch string) string {
	if len(workflows) == 0 {
		return "No workflows configured yet. An admin can load them with `/seed`."
	}

	teamSearch = strings.TrimSpace(teamSearch)
	if teamSearch != "" {
		needle := strings.ToLower(teamSearch)
		for _, w := range workflows {
			if strings.Contains(strings.ToLower(w.Team), needle) {
				items := make([]string, 0, len(w.Items))
				for _, it := range w.Items {
					items = append(items, "• "+it)
				}
				return fmt.Sprintf("📋 *%s Workflows:*\n\n%s", w.Team, strings.Join(items, "\n"))
			}
		}
		names := make([]string, 0, len(workflows))
		for _, w := range workflows {
			names = append(names, w.Team)
		}
		return fmt.Sprintf("Team %q not found.\n\nAvailable teams: %s", teamSearch, strings.Join(names, ", "))
	}

	sorted := append([]domain.Workflow(nil), workflows...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Team < sorted[j].Team })
	lines := make([]string, 0, len(sorted))
	for _, w := range sorted {
		lines = append(lines, fmt.Sprintf("• *%s* (%d workflows)", w.Team, len(w.Items)))
	}
	return "📋 *AI Workflows by Team:*\n\n" + strings.Join(lines, "\n") +
		"\n\n_Use `/workflows [team]` to see details (e.g., `/workflows sales`)_"
}

// HallOfFame renders approved submissions grouped by submitter.
func HallOfFame(approved []domain.Submission) string {
	if len(approved) == 0 {
		return "🏆 *The Innovators Circle*\n\n_No innovators yet! Be the first to submit a solution with `/submit`_"
	}

	byName := map[string][]domain.Submission{}
	var order []string
	for _, s := range approved {
		name := s.UserName
		if name == "" {
			name = "Unknown"
		}
		if _, ok := byName[name]; !ok {
			order = append(order, name)
		}
		byName[name] = append(byName[name], s)
	}

	lines := make([]string, 0, len(order))
	for _, name := range order {
		subs := byName[name]
		plural := ""
		if len(subs) > 1 {
			plural = "s"
		}
		lines = append(lines, fmt.Sprintf("🏆 *%s* (%d solution%s)\n   _Latest:_ %s",
			name, len(subs), plural, subs[0].Answers.Problem))
	}

	return "🏆 *The Innovators Circle - Hall of Fame*\n\n" +
		"These problem solvers have contributed AI solutions that help the whole team:\n\n" +
		strings.Join(lines, "\n\n") +
		"\n\n_Want to join them? Type `/submit` to share your AI win!_"
}

// PendingList renders the admin review queue with row references.
func PendingList(pending []domain.Submission) string {
	if len(pending) == 0 {
		return "✅ *No pending submissions!*\n\nAll caught up. New submissions will appear here."
	}

	lines := make([]string, 0, len(pending))
	for i, s := range pending {
		name := s.UserName
		if name == "" {
			name = "Unknown"
		}
		lines = append(lines, fmt.Sprintf(
			"*%d. %s* (Row %d)\n   _Problem:_ %s\n   _Solution:_ %s\n   `/approve %d` or `/decline %d`",
			i+1, name, s.Row, truncate(s.Answers.Problem, 100), truncate(s.Answers.Solution, 80), s.Row, s.Row))
	}
	return fmt.Sprintf("📋 *Pending Submissions (%d)*\n\n%s", len(pending), strings.Join(lines, "\n\n"))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

var curatedTips = []string{
	"💡 *Tip:* When using ChatGPT for emails, paste in an example of your writing style first for more personalized results.",
	"💡 *Tip:* Use ClickUp AI to summarize long comment threads - just click the AI button on any task.",
	"💡 *Tip:* Before a customer call, ask ChatGPT to summarize key points from their recent feedback data.",
	"💡 *Tip:* Stuck on how to phrase something? Ask AI for 3 different versions and pick your favorite.",
	"💡 *Tip:* Use AI to create first drafts, then edit with your expertise - faster than starting from scratch.",
}

// RandomTip picks a curated tip, mixing in a recent approved win when one
// is available. rng is injected so tests can pin the choice.
func RandomTip(approved []domain.Submission, rng *rand.Rand) string {
	tips := append([]string(nil), curatedTips...)
	if len(approved) > 0 {
		s := approved[rng.Intn(len(approved))]
		tips = append(tips, fmt.Sprintf("🏆 *Recent win:* %s\n_Solution:_ %s\n_Time saved:_ %s",
			s.Answers.Problem, s.Answers.Solution, s.Answers.TimeSaved))
	}
	return tips[rng.Intn(len(tips))]
}
