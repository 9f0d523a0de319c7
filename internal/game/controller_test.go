package game

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDictionary accepts every word in its set.
type fakeDictionary struct {
	words map[string]bool
	err   error
	calls int
}

func newFakeDictionary(words ...string) *fakeDictionary {
	d := &fakeDictionary{words: map[string]bool{}}
	for _, w := range words {
		d.words[w] = true
	}
	return d
}

func (d *fakeDictionary) IsValidWord(_ context.Context, word string) (bool, error) {
	d.calls++
	if d.err != nil {
		return false, d.err
	}
	return d.words[word], nil
}

var testWords = []string{"crane", "cigar", "slate", "plant", "house", "cloak", "scare", "chair", "crate"}

func TestController_NoGame(t *testing.T) {
	c := NewController(newFakeDictionary(testWords...))
	res := c.SubmitGuess(context.Background(), "crane")
	assert.False(t, res.Success)
	assert.Equal(t, MsgNoGame, res.Error)
}

func TestController_LengthValidation(t *testing.T) {
	dict := newFakeDictionary(testWords...)
	c := NewController(dict)
	_, err := c.StartRound("crane", 4, false)
	require.NoError(t, err)

	for _, w := range []string{"", "cran", "cranes", "ab", "ab1de", "12345", "ab de", "cr\u00e4ne"} {
		res := c.SubmitGuess(context.Background(), w)
		assert.False(t, res.Success)
		assert.Equal(t, MsgWrongLength, res.Error)
		assert.Equal(t, RoundInProgress, res.Status)
	}
	assert.Equal(t, 0, c.Round().GuessCount())
	assert.Equal(t, 4, c.Round().RemainingAttempts())
	assert.Zero(t, dict.calls, "length is checked before the dictionary")
}

func TestController_PipelineOrder(t *testing.T) {
	dict := newFakeDictionary(testWords...)
	c := NewController(dict)
	_, err := c.StartRound("crane", 4, false)
	require.NoError(t, err)

	res := c.SubmitGuess(context.Background(), "zzzzz")
	assert.Equal(t, MsgNotAWord, res.Error)

	res = c.SubmitGuess(context.Background(), "Slate")
	require.True(t, res.Success)
	require.NotNil(t, res.Guess)
	assert.Equal(t, "slate", res.Guess.Word())

	res = c.SubmitGuess(context.Background(), "SLATE")
	assert.False(t, res.Success)
	assert.Equal(t, MsgAlreadyGuessed, res.Error)
	assert.Equal(t, 1, c.Round().GuessCount())
}

func TestController_DictionaryFailureLeavesStateAlone(t *testing.T) {
	dict := newFakeDictionary(testWords...)
	dict.err = errors.New("boom")
	c := NewController(dict)
	_, err := c.StartRound("crane", 4, false)
	require.NoError(t, err)

	res := c.SubmitGuess(context.Background(), "slate")
	assert.False(t, res.Success)
	assert.Equal(t, MsgDictionaryError, res.Error)
	assert.Equal(t, 0, c.Round().GuessCount())
}

func TestController_WinThenGameOver(t *testing.T) {
	c := NewController(newFakeDictionary(testWords...))
	_, err := c.StartRound("crane", 4, false)
	require.NoError(t, err)

	res := c.SubmitGuess(context.Background(), "crane")
	require.True(t, res.Success)
	assert.Equal(t, RoundWon, res.Status)

	res = c.SubmitGuess(context.Background(), "slate")
	assert.False(t, res.Success)
	assert.Equal(t, MsgGameOver, res.Error)
	assert.Equal(t, RoundWon, res.Status)
	assert.Equal(t, 1, c.Round().GuessCount())
}

func TestController_Loss(t *testing.T) {
	c := NewController(newFakeDictionary(testWords...))
	_, err := c.StartRound("crane", 3, false)
	require.NoError(t, err)

	var res GuessResult
	for _, w := range []string{"slate", "plant", "house"} {
		res = c.SubmitGuess(context.Background(), w)
		require.True(t, res.Success)
	}
	assert.Equal(t, RoundLost, res.Status)
	assert.Equal(t, 0, c.Round().RemainingAttempts())
}

func TestController_HardMode(t *testing.T) {
	c := NewController(newFakeDictionary(testWords...))
	_, err := c.StartRound("cigar", 6, true)
	require.NoError(t, err)

	res := c.SubmitGuess(context.Background(), "crane")
	require.True(t, res.Success)

	res = c.SubmitGuess(context.Background(), "cloak")
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "must contain R")

	res = c.SubmitGuess(context.Background(), "scare")
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "1st letter must be C")
	assert.Equal(t, 1, c.Round().GuessCount())

	res = c.SubmitGuess(context.Background(), "chair")
	assert.True(t, res.Success)
}

func TestController_HardModeOffIgnoresClues(t *testing.T) {
	c := NewController(newFakeDictionary(testWords...))
	_, err := c.StartRound("cigar", 6, false)
	require.NoError(t, err)

	require.True(t, c.SubmitGuess(context.Background(), "crane").Success)
	assert.True(t, c.SubmitGuess(context.Background(), "house").Success)
	assert.Empty(t, c.Constraints().IncludedLetters())
}

func TestController_StartRoundResetsConstraints(t *testing.T) {
	c := NewController(newFakeDictionary(testWords...))
	_, err := c.StartRound("cigar", 6, true)
	require.NoError(t, err)
	require.True(t, c.SubmitGuess(context.Background(), "crane").Success)

	_, err = c.StartRound("house", 6, true)
	require.NoError(t, err)
	assert.Empty(t, c.Constraints().IncludedLetters())
	assert.True(t, c.SubmitGuess(context.Background(), "plant").Success)
}

func TestController_AutoGuessSkipsDictionary(t *testing.T) {
	dict := newFakeDictionary(testWords...)
	dict.err = errors.New("dictionary down")
	c := NewController(dict)

	assert.Equal(t, MsgNoGame, c.AutoGuess("crane").Error)

	_, err := c.StartRound("house", 4, false)
	require.NoError(t, err)

	res := c.AutoGuess("CRANE")
	require.True(t, res.Success)
	assert.Equal(t, "crane", res.Guess.Word())
	assert.Equal(t, RoundInProgress, res.Status)
	assert.Equal(t, 3, c.Round().RemainingAttempts())
	assert.Zero(t, dict.calls)

	assert.Equal(t, MsgAlreadyGuessed, c.AutoGuess("crane").Error)
	assert.Equal(t, MsgWrongLength, c.AutoGuess("cr4ne").Error)
	assert.Equal(t, 1, c.Round().GuessCount())
}

func TestController_AutoGuessRespectsHardMode(t *testing.T) {
	c := NewController(newFakeDictionary(testWords...))
	_, err := c.StartRound("cigar", 4, true)
	require.NoError(t, err)
	require.True(t, c.SubmitGuess(context.Background(), "crane").Success)

	res := c.AutoGuess("house")
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "1st letter must be C")
	assert.Equal(t, 1, c.Round().GuessCount())
}
