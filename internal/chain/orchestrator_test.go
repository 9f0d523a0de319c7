package chain

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/hurdle/internal/game"
	"github.com/robalobadob/hurdle/internal/words"
)

// scriptedStrategy hands out targets in order, skipping the excluded word.
type scriptedStrategy struct {
	targets []string
	next    int
}

func (s *scriptedStrategy) Name() string { return "scripted" }

func (s *scriptedStrategy) Pick(ctx context.Context, exclude string, _ words.DifficultyRange) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	for s.next < len(s.targets) {
		w := s.targets[s.next]
		s.next++
		if w != exclude {
			return w, nil
		}
	}
	return "", errors.New("script exhausted")
}

// memoryRepo records everything it is given.
type memoryRepo struct {
	rounds   []RoundRecord
	sessions []SessionRecord
	err      error
}

func (m *memoryRepo) SaveRound(_ context.Context, r RoundRecord) error {
	m.rounds = append(m.rounds, r)
	return m.err
}

func (m *memoryRepo) SaveSession(_ context.Context, s SessionRecord) error {
	m.sessions = append(m.sessions, s)
	return m.err
}

// flakyProvider is a word list whose validity lookups can be switched off.
type flakyProvider struct {
	*words.List
	down bool
}

func (p *flakyProvider) IsValidWord(ctx context.Context, w string) (bool, error) {
	if p.down {
		return false, errors.New("dictionary unavailable")
	}
	return p.List.IsValidWord(ctx, w)
}

var vocabulary = []string{"crane", "house", "plant", "slate", "crate", "trace", "ghost", "audio"}

func newTestOrchestrator(t *testing.T, targets ...string) (*Orchestrator, *memoryRepo) {
	t.Helper()
	list, err := words.NewList(vocabulary, nil)
	require.NoError(t, err)
	repo := &memoryRepo{}
	sel := words.NewSelector(&scriptedStrategy{targets: targets}).WithLogger(zerolog.Nop())
	o := NewOrchestrator(list, sel, repo).WithLogger(zerolog.Nop()).WithClock(func() time.Time { return testTime })
	return o, repo
}

func guess(t *testing.T, o *Orchestrator, w string) Outcome {
	t.Helper()
	out, err := o.SubmitGuess(context.Background(), w)
	require.NoError(t, err)
	return out
}

func TestOrchestrator_FullChain(t *testing.T) {
	ctx := context.Background()
	o, repo := newTestOrchestrator(t, "crane", "crane", "house", "plant")

	v, err := o.StartSession(ctx, Options{MaxAttempts: 4})
	require.NoError(t, err)
	assert.True(t, v.Active)
	assert.NotEmpty(t, v.SessionID)
	assert.Equal(t, 1, v.CurrentHurdleNumber)
	require.NotNil(t, v.Round)
	assert.Equal(t, 4, v.Round.RemainingAttempts)
	assert.Empty(t, v.Round.TargetWord, "target hidden while playing")

	out := guess(t, o, "slate")
	assert.True(t, out.Success)
	assert.Nil(t, out.Transition)

	out = guess(t, o, "crane")
	require.True(t, out.Success)
	assert.Equal(t, game.RoundWon, out.Status)
	require.NotNil(t, out.Transition)
	assert.Equal(t, 1, out.Transition.Completed.HurdleNumber)
	assert.Equal(t, 150, out.Transition.Completed.Score)
	assert.Equal(t, 2, out.Transition.NextHurdleNumber)
	assert.Equal(t, "crane", out.Transition.AutoGuess)
	assert.Equal(t, "crane", o.LastAnswer())

	v = o.View()
	assert.Equal(t, "crane", v.Round.TargetWord, "target revealed after the round")
	assert.Equal(t, 1, v.Round.HurdleNumber)

	next, err := o.StartNextRound(ctx, out.Transition.AutoGuess)
	require.NoError(t, err)
	require.True(t, next.AutoGuess.Success)
	assert.Equal(t, "crane", next.AutoGuess.Guess.Word())
	assert.Equal(t, game.RoundInProgress, next.AutoGuess.Status)
	assert.Equal(t, 3, o.CurrentRound().RemainingAttempts(), "auto-guess uses an attempt")
	assert.Equal(t, "house", o.CurrentRound().Target())

	out = guess(t, o, "house")
	require.NotNil(t, out.Transition)
	assert.Equal(t, 2, out.Transition.Completed.HurdleNumber)
	assert.Equal(t, 2, out.Transition.Completed.GuessCount)
	assert.Equal(t, 300, out.Transition.Completed.Score)
	assert.Equal(t, 450, out.Transition.TotalScore)

	_, err = o.StartNextRound(ctx, "house")
	require.NoError(t, err)
	for _, w := range []string{"slate", "crate", "trace"} {
		out = guess(t, o, w)
		require.True(t, out.Success, w)
	}
	assert.Equal(t, game.RoundLost, out.Status)
	assert.True(t, out.SessionEnded)

	v = o.View()
	assert.False(t, v.Active)
	assert.Equal(t, EndReasonFailure, v.EndReason)
	assert.Equal(t, "plant", v.FinalAnswer)
	assert.Equal(t, 2, v.CompletedCount)
	assert.Equal(t, 450, v.TotalScore)
	assert.Equal(t, 3, v.CurrentHurdleNumber)

	require.Len(t, repo.rounds, 3)
	assert.True(t, repo.rounds[0].Won)
	assert.Equal(t, []string{"slate", "crane"}, repo.rounds[0].Guesses)
	assert.False(t, repo.rounds[2].Won)
	assert.Equal(t, 3, repo.rounds[2].HurdleNumber)
	assert.Equal(t, 4, repo.rounds[2].AttemptsUsed)
	require.Len(t, repo.sessions, 1)
	assert.Equal(t, 450, repo.sessions[0].TotalScore)
	assert.Equal(t, 2, repo.sessions[0].HurdlesCompleted)

	out = guess(t, o, "plant")
	assert.False(t, out.Success)
	assert.Equal(t, game.MsgGameOver, out.Error)

	_, err = o.StartNextRound(ctx, "plant")
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestOrchestrator_RejectedGuessesChangeNothing(t *testing.T) {
	o, _ := newTestOrchestrator(t, "crane")
	_, err := o.StartSession(context.Background(), Options{})
	require.NoError(t, err)

	for _, w := range []string{"cran", "zzzzz"} {
		out := guess(t, o, w)
		assert.False(t, out.Success)
	}
	require.True(t, guess(t, o, "slate").Success)
	out := guess(t, o, "slate")
	assert.Equal(t, game.MsgAlreadyGuessed, out.Error)

	v := o.View()
	assert.Equal(t, 3, v.Round.RemainingAttempts)
	assert.Equal(t, 1, v.CurrentHurdleNumber)
	assert.Equal(t, 0, v.TotalScore)
}

func TestOrchestrator_SessionIsolation(t *testing.T) {
	ctx := context.Background()
	o, _ := newTestOrchestrator(t, "crane", "house", "plant", "ghost")

	first, err := o.StartSession(ctx, Options{})
	require.NoError(t, err)
	guess(t, o, "crane")
	_, err = o.StartNextRound(ctx, "crane")
	require.NoError(t, err)
	guess(t, o, "house")
	require.Equal(t, 3, o.View().CurrentHurdleNumber)

	second, err := o.StartSession(ctx, Options{})
	require.NoError(t, err)
	assert.NotEqual(t, first.SessionID, second.SessionID)
	assert.Equal(t, 1, second.CurrentHurdleNumber)
	assert.Equal(t, 0, second.CompletedCount)
	assert.Equal(t, 0, second.TotalScore)
	assert.Empty(t, second.CompletedHurdles)
	assert.Equal(t, 4, second.Round.RemainingAttempts)
}

func TestOrchestrator_AutoGuessCanExhaustBudget(t *testing.T) {
	ctx := context.Background()
	o, repo := newTestOrchestrator(t, "crane", "house")
	_, err := o.StartSession(ctx, Options{MaxAttempts: 1})
	require.NoError(t, err)

	out := guess(t, o, "crane")
	require.NotNil(t, out.Transition)
	assert.Equal(t, 175, out.Transition.Completed.Score)

	next, err := o.StartNextRound(ctx, "crane")
	require.NoError(t, err)
	assert.Equal(t, game.RoundLost, next.AutoGuess.Status)
	assert.True(t, next.SessionEnded)
	assert.Nil(t, next.Transition)

	v := o.View()
	assert.Equal(t, EndReasonFailure, v.EndReason)
	assert.Equal(t, "house", v.FinalAnswer)
	require.Len(t, repo.sessions, 1)
}

func TestOrchestrator_CompleteRoundGuards(t *testing.T) {
	ctx := context.Background()
	o, _ := newTestOrchestrator(t, "crane", "house")

	_, err := o.CompleteRound(ctx, nil)
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = o.StartSession(ctx, Options{})
	require.NoError(t, err)
	_, err = o.CompleteRound(ctx, o.CurrentRound())
	assert.ErrorIs(t, err, ErrRoundNotWon)

	_, err = o.StartNextRound(ctx, "crane")
	assert.ErrorIs(t, err, ErrRoundInProgress)

	out := guess(t, o, "crane")
	require.NotNil(t, out.Transition)
	_, err = o.CompleteRound(ctx, o.CurrentRound())
	assert.ErrorIs(t, err, ErrAlreadyCompleted)
	assert.Equal(t, 1, o.View().CompletedCount)

	_, err = o.StartNextRound(ctx, "cr")
	assert.ErrorIs(t, err, ErrInvalidPrevious)
}

func TestOrchestrator_EndSession(t *testing.T) {
	ctx := context.Background()
	o, repo := newTestOrchestrator(t, "crane")

	require.ErrorIs(t, o.EndSession(ctx, EndReasonManualStop, ""), ErrNoSession)

	_, err := o.StartSession(ctx, Options{HardMode: true})
	require.NoError(t, err)

	require.ErrorIs(t, o.EndSession(ctx, EndReason("timeout"), ""), ErrInvalidEndReason)
	require.NoError(t, o.EndSession(ctx, EndReasonManualStop, ""))
	require.ErrorIs(t, o.EndSession(ctx, EndReasonManualStop, ""), ErrSessionClosed)

	out := guess(t, o, "crane")
	assert.False(t, out.Success)
	assert.Equal(t, game.MsgGameOver, out.Error)
	assert.True(t, out.SessionEnded)

	require.Len(t, repo.sessions, 1)
	assert.Equal(t, EndReasonManualStop, repo.sessions[0].EndReason)
	assert.True(t, repo.sessions[0].HardMode)
	assert.Equal(t, testTime, repo.sessions[0].EndedAt)
}

func TestOrchestrator_RepositoryErrorsDoNotBreakPlay(t *testing.T) {
	ctx := context.Background()
	o, repo := newTestOrchestrator(t, "crane", "house")
	repo.err = errors.New("disk full")

	_, err := o.StartSession(ctx, Options{})
	require.NoError(t, err)
	out := guess(t, o, "crane")
	require.NotNil(t, out.Transition)
	_, err = o.StartNextRound(ctx, "crane")
	require.NoError(t, err)
	assert.Len(t, repo.rounds, 1)
}

func TestOrchestrator_InvalidOptions(t *testing.T) {
	o, _ := newTestOrchestrator(t, "crane")
	_, err := o.StartSession(context.Background(), Options{MaxAttempts: 6})
	assert.ErrorIs(t, err, ErrInvalidOptions)

	_, err = o.StartSession(context.Background(), Options{Difficulty: words.DifficultyRange{Min: 5, Max: 1}})
	assert.ErrorIs(t, err, ErrInvalidOptions)
}

func TestOrchestrator_FallsBackWhenProviderFails(t *testing.T) {
	list, err := words.NewList(vocabulary, nil)
	require.NoError(t, err)
	sel := words.NewSelector(&scriptedStrategy{}).WithLogger(zerolog.Nop())
	o := NewOrchestrator(list, sel, nil).WithLogger(zerolog.Nop())

	v, err := o.StartSession(context.Background(), Options{})
	require.NoError(t, err)
	assert.Equal(t, 4, v.Round.RemainingAttempts)
	assert.Equal(t, "crane", o.CurrentRound().Target(), "first emergency word")
}

func TestOrchestrator_ViewIsACopy(t *testing.T) {
	o, _ := newTestOrchestrator(t, "crane", "house")
	_, err := o.StartSession(context.Background(), Options{})
	require.NoError(t, err)
	guess(t, o, "slate")
	guess(t, o, "crane")

	v := o.View()
	v.CompletedHurdles[0].Score = 0
	v.Round.Guesses[0] = game.Guess{}

	again := o.View()
	assert.Equal(t, 150, again.CompletedHurdles[0].Score)
	assert.Equal(t, "slate", again.Round.Guesses[0].Word())
}

func TestOrchestrator_AutoGuessSurvivesDictionaryOutage(t *testing.T) {
	ctx := context.Background()
	list, err := words.NewList(vocabulary, nil)
	require.NoError(t, err)
	provider := &flakyProvider{List: list}
	sel := words.NewSelector(&scriptedStrategy{targets: []string{"crane", "house"}}).WithLogger(zerolog.Nop())
	o := NewOrchestrator(provider, sel, nil).WithLogger(zerolog.Nop())

	_, err = o.StartSession(ctx, Options{})
	require.NoError(t, err)
	require.NotNil(t, guess(t, o, "crane").Transition)

	provider.down = true
	next, err := o.StartNextRound(ctx, "crane")
	require.NoError(t, err)
	require.True(t, next.AutoGuess.Success)
	assert.Equal(t, "crane", next.AutoGuess.Guess.Word())
	assert.Equal(t, 1, o.CurrentRound().GuessCount())
	assert.Equal(t, 3, o.CurrentRound().RemainingAttempts())

	// Player guesses still go through the dictionary.
	out := guess(t, o, "house")
	assert.False(t, out.Success)
	assert.Equal(t, game.MsgDictionaryError, out.Error)
	assert.Equal(t, 3, o.CurrentRound().RemainingAttempts())
}

func TestOrchestrator_FailedStartKeepsPreviousSession(t *testing.T) {
	o, _ := newTestOrchestrator(t, "crane", "house")
	first, err := o.StartSession(context.Background(), Options{})
	require.NoError(t, err)
	require.NotNil(t, guess(t, o, "crane").Transition)

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = o.StartSession(cancelled, Options{})
	require.ErrorIs(t, err, context.Canceled)

	v := o.View()
	assert.Equal(t, first.SessionID, v.SessionID)
	assert.True(t, v.Active)
	assert.Equal(t, 1, v.CompletedCount)
	assert.Equal(t, 2, v.CurrentHurdleNumber)
	assert.Equal(t, "crane", o.LastAnswer())

	_, err = o.StartNextRound(context.Background(), "crane")
	require.NoError(t, err)
	assert.Equal(t, "house", o.CurrentRound().Target())
}
