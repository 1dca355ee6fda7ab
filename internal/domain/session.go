package domain

import "fmt"

// Mode is the top-level conversation type a session is in.
type Mode string

const (
	ModeSubmit Mode = "submit"
	ModeHelp   Mode = "help"
	ModeChat   Mode = "chat"
)

// SubmitStep is a position in the submission flow.
type SubmitStep string

const (
	StepProblem    SubmitStep = "problem"
	StepSolution   SubmitStep = "solution"
	StepTimeSaved  SubmitStep = "time_saved"
	StepReusableBy SubmitStep = "reusable_by"
	StepHowToReuse SubmitStep = "how_to_reuse"
	StepReview     SubmitStep = "review"
)

// SubmitQuestionOrder is the fixed order of question steps before review.
var SubmitQuestionOrder = []SubmitStep{
	StepProblem,
	StepSolution,
	StepTimeSaved,
	StepReusableBy,
	StepHowToReuse,
}

// NextSubmitStep returns the question step after cur, or StepReview when
// the question order is exhausted. It returns an error for steps outside
// the question sequence.
func NextSubmitStep(cur SubmitStep) (SubmitStep, error) {
	for i, s := range SubmitQuestionOrder {
		if s != cur {
			continue
		}
		if i+1 < len(SubmitQuestionOrder) {
			return SubmitQuestionOrder[i+1], nil
		}
		return StepReview, nil
	}
	return "", fmt.Errorf("domain: %q is not a submit question step", cur)
}

// HelpStep is a position in the help flow.
type HelpStep string

const (
	StepDepartment   HelpStep = "department"
	StepChallenge    HelpStep = "challenge"
	StepConversation HelpStep = "conversation"
)

// SubmitAnswers holds the five collected answers, verbatim.
type SubmitAnswers struct {
	Problem    string `json:"problem" dynamodbav:"problem"`
	Solution   string `json:"solution" dynamodbav:"solution"`
	TimeSaved  string `json:"timeSaved" dynamodbav:"timeSaved"`
	ReusableBy string `json:"reusableBy" dynamodbav:"reusableBy"`
	HowToReuse string `json:"howToReuse" dynamodbav:"howToReuse"`
}

// Set stores text under the answer field named by the given question step.
func (a *SubmitAnswers) Set(step SubmitStep, text string) error {
	switch step {
	case StepProblem:
		a.Problem = text
	case StepSolution:
		a.Solution = text
	case StepTimeSaved:
		a.TimeSaved = text
	case StepReusableBy:
		a.ReusableBy = text
	case StepHowToReuse:
		a.HowToReuse = text
	default:
		return fmt.Errorf("domain: no answer field for step %q", step)
	}
	return nil
}

// SubmitState is the submit-mode variant of a session.
type SubmitState struct {
	Step    SubmitStep    `json:"step" dynamodbav:"step"`
	Answers SubmitAnswers `json:"answers" dynamodbav:"answers"`
	// Summary holds the polished text while the session sits at review.
	Summary string `json:"summary,omitempty" dynamodbav:"summary,omitempty"`
}

// HelpState is the help-mode variant of a session.
type HelpState struct {
	Step       HelpStep      `json:"step" dynamodbav:"step"`
	Department string        `json:"department,omitempty" dynamodbav:"department,omitempty"`
	Challenge  string        `json:"challenge,omitempty" dynamodbav:"challenge,omitempty"`
	History    []ChatMessage `json:"history,omitempty" dynamodbav:"history,omitempty"`
}

// ChatState is the chat-mode variant of a session. Chat mode has no
// steps; the whole session is one conversation.
type ChatState struct {
	History []ChatMessage `json:"history,omitempty" dynamodbav:"history,omitempty"`
}

// Session is a per-user conversation record. Exactly one variant field
// is set, matching Mode; switching modes always means delete-and-create,
// never mutating Mode in place.
type Session struct {
	Mode   Mode         `json:"mode" dynamodbav:"mode"`
	Submit *SubmitState `json:"submit,omitempty" dynamodbav:"submit,omitempty"`
	Help   *HelpState   `json:"help,omitempty" dynamodbav:"help,omitempty"`
	Chat   *ChatState   `json:"chat,omitempty" dynamodbav:"chat,omitempty"`
}

// NewSubmitSession returns a fresh submit session at the first question.
func NewSubmitSession() *Session {
	return &Session{Mode: ModeSubmit, Submit: &SubmitState{Step: StepProblem}}
}

// NewHelpSession returns a fresh help session at the department question.
func NewHelpSession() *Session {
	return &Session{Mode: ModeHelp, Help: &HelpState{Step: StepDepartment}}
}

// NewChatSession returns a fresh chat session with empty history.
func NewChatSession() *Session {
	return &Session{Mode: ModeChat, Chat: &ChatState{}}
}

// Validate checks that exactly the variant matching Mode is present and
// that the variant's step belongs to its mode's step set.
func (s *Session) Validate() error {
	if s == nil {
		return fmt.Errorf("domain: nil session")
	}
	switch s.Mode {
	case ModeSubmit:
		if s.Submit == nil || s.Help != nil || s.Chat != nil {
			return fmt.Errorf("domain: submit session with wrong variant set")
		}
		switch s.Submit.Step {
		case StepProblem, StepSolution, StepTimeSaved, StepReusableBy, StepHowToReuse, StepReview:
		default:
			return fmt.Errorf("domain: invalid submit step %q", s.Submit.Step)
		}
	case ModeHelp:
		if s.Help == nil || s.Submit != nil || s.Chat != nil {
			return fmt.Errorf("domain: help session with wrong variant set")
		}
		switch s.Help.Step {
		case StepDepartment, StepChallenge, StepConversation:
		default:
			return fmt.Errorf("domain: invalid help step %q", s.Help.Step)
		}
	case ModeChat:
		if s.Chat == nil || s.Submit != nil || s.Help != nil {
			return fmt.Errorf("domain: chat session with wrong variant set")
		}
	default:
		return fmt.Errorf("domain: unknown mode %q", s.Mode)
	}
	return nil
}
