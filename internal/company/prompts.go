package company

import (
	"fmt"
	"strings"

	"innovators-bot/internal/domain"
)

// PolishPrompt builds the prompt that turns raw submission answers into a
// clean summary. editRequest, when non-empty, carries the user's review
// feedback; the original answers are always preserved as the source.
func PolishPrompt(a domain.SubmitAnswers, editRequest string) string {
	var b strings.Builder
	b.WriteString("You are helping format an employee's AI solution submission. ")
	b.WriteString("Take their raw inputs and create a clean, professional summary. Keep it concise.\n\n")
	b.WriteString("Raw inputs:\n")
	fmt.Fprintf(&b, "- Problem they solved: %s\n", a.Problem)
	fmt.Fprintf(&b, "- Tool/solution used: %s\n", a.Solution)
	fmt.Fprintf(&b, "- Time saved: %s\n", a.TimeSaved)
	fmt.Fprintf(&b, "- Who else could use it: %s\n", a.ReusableBy)
	fmt.Fprintf(&b, "- How others can reuse it: %s\n", a.HowToReuse)
	if editRequest != "" {
		fmt.Fprintf(&b, "\nThe employee reviewed an earlier draft and asked for this change:\n%s\n", editRequest)
	}
	b.WriteString("\nFormat as:\n📋 *SUBMISSION SUMMARY*\n\n")
	b.WriteString("*Problem:* [1 sentence, cleaned up]\n")
	b.WriteString("*Solution:* [tool/approach, cleaned up]\n")
	b.WriteString("*Time Saved:* [standardized format]\n")
	b.WriteString("*Reusable By:* [who can benefit]\n")
	b.WriteString("*How To Reuse:* [short, concrete steps]\n\n")
	b.WriteString("Keep it brief and professional. Use Slack mrkdwn formatting.")
	return b.String()
}

// ChatSystemPrompt is the system prompt for freeform brainstorming.
func (c *Context) ChatSystemPrompt() string {
	return fmt.Sprintf(`You are a helpful AI assistant for the Innovators Circle program at %s.
Help employees brainstorm practical ways to apply AI to their work.

COMPANY: %s
INDUSTRY: %s
KEY TERMS: %s
TEAMS: %s

APPROVED TOOLS:
%s

Be conversational and concise (this is Slack). Give specific, actionable
suggestions grounded in the approved tools. Use Slack mrkdwn formatting.`,
		c.Name, c.Description, c.Industry,
		strings.Join(c.IndustryTerms, ", "),
		strings.Join(c.Teams, ", "),
		c.toolsContext())
}

// HelpSystemPrompt is the system prompt for the help flow. challenge and
// department come from the session; approved submissions are woven in as
// proven patterns from colleagues.
func (c *Context) HelpSystemPrompt(challenge, department string, approved []domain.Submission) string {
	deptLine := ""
	if department != "" {
		deptLine = fmt.Sprintf("\nThe employee is on the %s team; prefer tools and examples relevant to them.", department)
	}
	return fmt.Sprintf(`You are a helpful AI assistant for the Innovators Circle program at %s.
Your job is to help employees find AI tools and solutions for their work challenges.

## Company Context
Industry: %s
Teams: %s%s

## The employee's challenge
%s

## Company-Approved Tools (We Have Subscriptions)
%s

## Employee-Submitted Solutions (Real wins from colleagues)
%s

## How to Respond
For the FIRST response: acknowledge the challenge in one sentence, then
give 1-2 specific, actionable recommendations immediately - name the tool
and feature, give a concrete example, include a sample prompt to try. End
with at most one focused follow-up question. Never just ask clarifying
questions without recommending anything, and never give vague advice.

Be conversational and concise (this is Slack). Use Slack mrkdwn formatting.`,
		c.Name, c.Industry, strings.Join(c.Teams, ", "), deptLine,
		challenge, c.toolsContext(), submissionsContext(approved))
}

// WeeklyTipPrompt asks for one short practical tip for the channel.
func (c *Context) WeeklyTipPrompt() string {
	names := make([]string, 0, len(c.Tools))
	for _, t := range c.Tools {
		names = append(names, t.Name)
	}
	return fmt.Sprintf(`You are the Innovators Circle assistant at %s. Generate a short,
practical AI tip or lesson for the team.

Context:
- Company: %s (%s)
- Teams: %s
- Approved AI tools: %s

Requirements:
- Pick ONE specific, actionable tip (not generic advice)
- Include a concrete example or sample prompt people can try right now
- Keep it short: 3-5 sentences max, plus the example
- Make it feel like a friendly tip from a coworker, not a lecture
- Use single asterisks *bold* for bold (NOT **double asterisks**)
- Use Slack mrkdwn formatting

Format:
💡 *AI Tip of the Week*

[The tip with a specific tool and use case]

_Try this prompt:_
> [A ready-to-use prompt they can copy-paste]

[One sentence about who this is most useful for]`,
		c.Name, c.Name, c.Industry, strings.Join(c.Teams, ", "), strings.Join(names, ", "))
}

func (c *Context) toolsContext() string {
	if len(c.Tools) == 0 {
		return "No company-approved tools configured yet."
	}
	lines := make([]string, 0, len(c.Tools))
	for _, t := range c.Tools {
		aiTag := ""
		if t.HasAI {
			aiTag = " ✨ *Has AI*"
		}
		extra := ""
		if len(t.AIFeatures) > 0 {
			extra += "\n   AI Features: " + strings.Join(t.AIFeatures, ", ")
		}
		if len(t.Teams) > 0 {
			extra += "\n   Teams: " + strings.Join(t.Teams, ", ")
		}
		if t.Notes != "" {
			extra += "\n   Note: " + t.Notes
		}
		lines = append(lines, fmt.Sprintf("• *%s* (%s)%s\n   Use cases: %s%s",
			t.Name, t.Category, aiTag, strings.Join(t.UseCases, ", "), extra))
	}
	return strings.Join(lines, "\n\n")
}

func submissionsContext(approved []domain.Submission) string {
	if len(approved) == 0 {
		return "No employee solutions have been submitted yet."
	}
	// Most recent 20 keep the prompt bounded.
	start := 0
	if len(approved) > 20 {
		start = len(approved) - 20
	}
	lines := make([]string, 0, len(approved)-start)
	for i, s := range approved[start:] {
		lines = append(lines, fmt.Sprintf("%d. *%s*\n   Solution: %s\n   Time Saved: %s\n   Useful for: %s",
			i+1, s.Answers.Problem, s.Answers.Solution, s.Answers.TimeSaved, s.Answers.ReusableBy))
	}
	return "Here are recent AI solutions submitted by employees:\n\n" + strings.Join(lines, "\n\n")
}
