// Package company holds the static company context the assistant reasons
// over: teams, the approved tool catalog, workflow opportunities, and the
// prompt/formatting helpers built on top of them.
package company

// Tool is one entry in the approved tool catalog.
type Tool struct {
	Name       string
	Category   string
	Plan       string
	HasAI      bool
	AIFeatures []string
	UseCases   []string
	Teams      []string
	Notes      string
}

// Context is the static configuration describing the company. It is
// constructed once in the composition root and passed to everything that
// needs it; nothing reads it from ambient scope.
type Context struct {
	Name          string
	Industry      string
	Description   string
	IndustryTerms []string
	Teams         []string
	// TeamAliases maps lowercase shorthand to a canonical team name.
	TeamAliases map[string]string
	Tools       []Tool
	// Workflows lists per-team tasks where AI could help. This is also
	// the seed content for the workflow records store.
	Workflows map[string][]string
}

// Default returns the built-in company context.
func Default() *Context {
	return &Context{
		Name:     "Opiniion",
		Industry: "Property Management Software & Resident Experience Management",
		Description: "Opiniion is a resident experience and feedback management platform " +
			"for property management companies. We help property managers collect, " +
			"analyze, and act on resident feedback.",
		IndustryTerms: []string{
			"Resident experience", "Sentiment analysis", "Touchpoints",
			"Multifamily", "Work orders", "Move-in/move-out", "Renewals",
			"Online reputation management",
		},
		Teams: []string{
			"Marketing", "Sales", "Engineering", "Operations",
			"Customer Success", "Onboarding", "Training", "Customer Support",
			"HR", "Product", "Finance", "Revenue Operations", "Executive",
		},
		TeamAliases: map[string]string{
			"eng":         "Engineering",
			"dev":         "Engineering",
			"engineering": "Engineering",
			"cs":          "Customer Success",
			"success":     "Customer Success",
			"support":     "Customer Support",
			"people":      "HR",
			"recruiting":  "HR",
			"ops":         "Operations",
			"revops":      "Revenue Operations",
			"mktg":        "Marketing",
			"design":      "Product",
		},
		Tools: []Tool{
			{
				Name: "ChatGPT", Category: "AI Assistant", Plan: "Team", HasAI: true,
				AIFeatures: []string{"Drafting and rewriting", "Summarization", "Brainstorming"},
				UseCases:   []string{"Writing", "Content", "Research", "Analysis"},
				Teams:      []string{"All teams"},
			},
			{
				Name: "ClickUp", Category: "Project Management", Plan: "Enterprise", HasAI: true,
				AIFeatures: []string{"ClickUp AI for writing", "Task summarization", "Action item extraction"},
				UseCases:   []string{"Task management", "Documentation", "Team collaboration"},
				Teams:      []string{"All teams"},
			},
			{
				Name: "GitHub Copilot", Category: "Development", Plan: "Enterprise", HasAI: true,
				AIFeatures: []string{"Code completion", "Copilot Chat", "Test generation"},
				UseCases:   []string{"Code completion", "Code review", "Test generation"},
				Teams:      []string{"Engineering"},
				Notes:      "Custom agents exist for planning, migrations, and test generation.",
			},
			{
				Name: "Gong", Category: "Sales Intelligence", Plan: "Business", HasAI: true,
				AIFeatures: []string{"Call transcription", "Deal insights", "Call summaries"},
				UseCases:   []string{"Sales calls", "CRM hygiene", "Coaching"},
				Teams:      []string{"Sales", "Customer Success"},
			},
			{
				Name: "Figma", Category: "Design", Plan: "Professional", HasAI: true,
				AIFeatures: []string{"AI design suggestions", "Content generation"},
				UseCases:   []string{"UI/UX design", "Prototyping", "Component specs"},
				Teams:      []string{"Product", "Marketing", "Engineering"},
			},
			{
				Name: "Zendesk", Category: "Customer Service", Plan: "Suite", HasAI: true,
				AIFeatures: []string{"Reply suggestions", "Ticket summarization", "Intent triage"},
				UseCases:   []string{"Ticket handling", "Macros", "Support analytics"},
				Teams:      []string{"Customer Support"},
			},
		},
		Workflows: map[string][]string{
			"Sales": {
				"Drafting outreach emails from prospect research",
				"Summarizing discovery calls into CRM notes",
				"Building proposal outlines from requirements",
			},
			"Marketing": {
				"Repurposing long-form content into social posts",
				"First drafts of campaign copy and landing pages",
			},
			"Engineering": {
				"Generating unit tests for existing modules",
				"Drafting migration plans with Copilot agents",
				"Summarizing PR review threads",
			},
			"Customer Support": {
				"Drafting replies to common ticket categories",
				"Summarizing long ticket histories before escalation",
			},
			"Customer Success": {
				"Preparing QBR summaries from account feedback data",
				"Turning sentiment reports into renewal talking points",
			},
			"Operations": {
				"Automating recurring report assembly",
				"Extracting action items from meeting notes",
			},
			"HR": {
				"Drafting job descriptions from role outlines",
				"Summarizing candidate feedback across interviewers",
			},
			"Finance": {
				"Explaining variance reports in plain language",
				"Drafting recurring board update sections",
			},
		},
	}
}
