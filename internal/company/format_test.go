package company

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"innovators-bot/internal/domain"
)

func TestFormatToolsList_GroupedView(t *testing.T) {
	out := Default().FormatToolsList("")

	require.Contains(t, out, "🔧 *AI Tools You Can Use*")
	require.Contains(t, out, "*Writing & Content:*")
	require.Contains(t, out, "*Code & Engineering:*")
	require.Contains(t, out, "GitHub Copilot")
	require.Contains(t, out, "ChatGPT")
}

func TestFormatToolsList_Search(t *testing.T) {
	c := Default()

	out := c.FormatToolsList("sales")
	require.Contains(t, out, `AI Tools matching "sales"`)
	require.Contains(t, out, "Gong")
	require.NotContains(t, out, "Figma")

	out = c.FormatToolsList("underwater basket weaving")
	require.Contains(t, out, "No AI tools found matching")
}

func TestFormatWorkflows(t *testing.T) {
	ws := []domain.Workflow{
		{Team: "Sales", Items: []string{"Drafting outreach emails", "Summarizing calls"}},
		{Team: "Engineering", Items: []string{"Generating unit tests"}},
	}

	summary := FormatWorkflows(ws, "")
	require.Contains(t, summary, "*Engineering* (1 workflows)")
	require.Contains(t, summary, "*Sales* (2 workflows)")

	detail := FormatWorkflows(ws, "sales")
	require.Contains(t, detail, "📋 *Sales Workflows:*")
	require.Contains(t, detail, "• Drafting outreach emails")

	missing := FormatWorkflows(ws, "astronomy")
	require.Contains(t, missing, `Team "astronomy" not found`)
	require.Contains(t, missing, "Sales, Engineering")

	require.Contains(t, FormatWorkflows(nil, ""), "No workflows configured yet")
}

func TestHallOfFame(t *testing.T) {
	require.Contains(t, HallOfFame(nil), "No innovators yet")

	approved := []domain.Submission{
		{UserName: "Jesse", Answers: domain.SubmitAnswers{Problem: "slow reports"}},
		{UserName: "Jesse", Answers: domain.SubmitAnswers{Problem: "manual QA"}},
		{UserName: "", Answers: domain.SubmitAnswers{Problem: "ticket triage"}},
	}
	out := HallOfFame(approved)
	require.Contains(t, out, "*Jesse* (2 solutions)")
	require.Contains(t, out, "*Unknown* (1 solution)")
	require.Contains(t, out, "_Latest:_ slow reports")
}

func TestPendingList(t *testing.T) {
	require.Contains(t, PendingList(nil), "No pending submissions")

	pending := []domain.Submission{
		{Row: 7, UserName: "Dana", Answers: domain.SubmitAnswers{Problem: strings.Repeat("p", 150), Solution: "ChatGPT"}},
	}
	out := PendingList(pending)
	require.Contains(t, out, "Pending Submissions (1)")
	require.Contains(t, out, "(Row 7)")
	require.Contains(t, out, "`/approve 7` or `/decline 7`")
	require.Contains(t, out, strings.Repeat("p", 100)+"...")
}

func TestRandomTip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	// Without approved wins every draw is a curated tip.
	for i := 0; i < 20; i++ {
		require.Contains(t, RandomTip(nil, rng), "💡 *Tip:*")
	}

	// With a win in the pool it eventually surfaces.
	approved := []domain.Submission{{Answers: domain.SubmitAnswers{Problem: "slow invoices", Solution: "ClickUp AI", TimeSaved: "2h/week"}}}
	sawWin := false
	for i := 0; i < 100 && !sawWin; i++ {
		sawWin = strings.Contains(RandomTip(approved, rng), "Recent win")
	}
	require.True(t, sawWin)
}
