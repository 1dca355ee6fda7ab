package usecase

import "innovators-bot/internal/domain"

// Bot reply text. Kept together so wording changes don't touch flow logic.

const welcomeMessage = `👋 Hey! I'm the *Innovators Circle Bot*. I can help you in three ways:

*1️⃣ Submit a solution* - Share an AI win with the team
*2️⃣ Get help* - Find existing tools or get AI recommendations for your challenge
*3️⃣ Chat* - Brainstorm AI solutions for a challenge you're facing

What would you like to do? Reply with *"submit"*, *"help"*, or *"chat"*`

const helpWelcome = `🔍 *Let's find a solution for you!*

First - what team are you on? (You can also just describe your challenge and I'll dive right in.)`

const helpChallengePrompt = `Got it! What challenge are you trying to solve? Be specific - what task takes too long, what's frustrating, or what would you like to automate?`

const chatWelcome = "I'm ready to help you brainstorm! What challenge are you trying to solve with AI?"

const submitWelcome = "Great! Let's capture your AI win. 🎯\n\n"

const submitSwitch = "Switching to submission mode! 🎯\n\n"

const submitCancelled = "Submission cancelled. Message me anytime to start over!"

const helpCancelled = "No problem! Message me anytime you need help."

const chatCleared = "Chat cleared! Message me anytime to start fresh."

const thinkingMessage = "Let me think about that... 🤔"

const polishingMessage = "Thanks! Let me polish that up for you... ✨"

const retryMessage = "Sorry, I had trouble processing that. Could you try again?"

const submissionErrorMessage = "Sorry, there was an error processing your submission. Please try again."

const notAllowedMessage = "🚧 This bot is currently in testing mode. Check back soon!"

const adminOnlyMessage = "🔒 This command is admin-only."

const submissionConfirmed = `✅ *Got it!* Your solution has officially been submitted!

If your idea gets rolled out company-wide, you'll earn:
🍽️ A night out on us!
🏆 A spot in the *Innovators Circle* hall of fame

Thanks for being a problem solver — that's what makes this team awesome. 💪

Have another brilliant idea? Just type ` + "`submit`" + ` anytime!`

const commandsHelp = `🤖 *Innovators Circle Commands*

*Quick Actions:*
• ` + "`/submit`" + ` - Share an AI win with the team
• ` + "`/innovators-circle`" + ` - See the Innovators Circle hall of fame
• ` + "`/new`" + ` - Start a fresh conversation
• ` + "`/tools`" + ` - List all approved AI tools
• ` + "`/tools [search]`" + ` - Search tools (e.g., ` + "`/tools writing`" + `)
• ` + "`/workflows [team]`" + ` - Show AI workflows for a team
• ` + "`/tip`" + ` - Get a random AI tip or recent win

*In conversation:*
• Type ` + "`cancel`" + ` to exit current flow
• Type ` + "`submit`" + ` to switch to submission mode

Just message me directly to ask about AI solutions!`

// questions maps each submit question step to its prompt.
var questions = map[domain.SubmitStep]string{
	domain.StepProblem:    "What problem did you solve with AI? (Describe the challenge you faced)",
	domain.StepSolution:   "What AI tool or solution did you use? (e.g., ChatGPT, Claude, Copilot, custom script)",
	domain.StepTimeSaved:  "How much time did this save you? (e.g., '2 hours per week', '30 minutes per report')",
	domain.StepReusableBy: "Who else in the company could benefit from this? (e.g., 'All project managers', 'Sales team')",
	domain.StepHowToReuse: "How could someone else reuse this? (Share the prompt, template, or steps involved)",
}
