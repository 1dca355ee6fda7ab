package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNextSubmitStep_WalksQuestionOrder(t *testing.T) {
	cases := []struct {
		cur  SubmitStep
		next SubmitStep
	}{
		{StepProblem, StepSolution},
		{StepSolution, StepTimeSaved},
		{StepTimeSaved, StepReusableBy},
		{StepReusableBy, StepHowToReuse},
		{StepHowToReuse, StepReview},
	}
	for _, tc := range cases {
		next, err := NextSubmitStep(tc.cur)
		require.NoError(t, err)
		require.Equal(t, tc.next, next)
	}
}

func TestNextSubmitStep_RejectsNonQuestionSteps(t *testing.T) {
	_, err := NextSubmitStep(StepReview)
	require.Error(t, err)

	_, err = NextSubmitStep("bogus")
	require.Error(t, err)
}

func TestSubmitAnswers_Set(t *testing.T) {
	var a SubmitAnswers
	require.NoError(t, a.Set(StepProblem, "p"))
	require.NoError(t, a.Set(StepSolution, "s"))
	require.NoError(t, a.Set(StepTimeSaved, "t"))
	require.NoError(t, a.Set(StepReusableBy, "r"))
	require.NoError(t, a.Set(StepHowToReuse, "h"))
	require.Equal(t, SubmitAnswers{Problem: "p", Solution: "s", TimeSaved: "t", ReusableBy: "r", HowToReuse: "h"}, a)

	require.Error(t, a.Set(StepReview, "x"))
}

func TestSessionValidate(t *testing.T) {
	cases := []struct {
		name    string
		sess    *Session
		wantErr bool
	}{
		{name: "fresh submit", sess: NewSubmitSession()},
		{name: "fresh help", sess: NewHelpSession()},
		{name: "fresh chat", sess: NewChatSession()},
		{name: "submit at review", sess: &Session{Mode: ModeSubmit, Submit: &SubmitState{Step: StepReview}}},
		{name: "nil session", sess: nil, wantErr: true},
		{name: "unknown mode", sess: &Session{Mode: "other"}, wantErr: true},
		{name: "submit missing variant", sess: &Session{Mode: ModeSubmit}, wantErr: true},
		{name: "two variants set", sess: &Session{Mode: ModeHelp, Help: &HelpState{Step: StepDepartment}, Chat: &ChatState{}}, wantErr: true},
		{name: "submit with help step", sess: &Session{Mode: ModeSubmit, Submit: &SubmitState{Step: "department"}}, wantErr: true},
		{name: "help with bad step", sess: &Session{Mode: ModeHelp, Help: &HelpState{Step: "problem"}}, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.sess.Validate()
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}
