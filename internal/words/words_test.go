package words

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/cenkalti/backoff/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultList(t *testing.T) {
	l, err := DefaultList()
	require.NoError(t, err)

	answers, allowed := l.Stats()
	assert.Greater(t, answers, 100)
	assert.Greater(t, allowed, answers)

	ok, err := l.IsValidWord(context.Background(), "CRANE")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = l.IsValidWord(context.Background(), "kebab")
	assert.True(t, ok, "allowed-only words are valid guesses")
	assert.False(t, l.IsAnswer("kebab"))

	ok, _ = l.IsValidWord(context.Background(), "qzxvw")
	assert.False(t, ok)
}

func TestNewList_Normalizes(t *testing.T) {
	l, err := NewList([]string{" Crane ", "crane", "toolong", "ab1de", "slate"}, []string{"HOUSE"})
	require.NoError(t, err)
	assert.Equal(t, []string{"crane", "slate"}, l.Answers())

	ok, _ := l.IsValidWord(context.Background(), "house")
	assert.True(t, ok)

	_, err = NewList([]string{"nope"}, nil)
	assert.Error(t, err)
}

func TestLoadList_Files(t *testing.T) {
	dir := t.TempDir()
	ans := filepath.Join(dir, "answers.txt")
	all := filepath.Join(dir, "allowed.txt")
	require.NoError(t, os.WriteFile(ans, []byte("crane\nslate\n"), 0o644))
	require.NoError(t, os.WriteFile(all, []byte("house\nplant\n"), 0o644))

	l, err := LoadList(ans, all)
	require.NoError(t, err)
	a, g := l.Stats()
	assert.Equal(t, 2, a)
	assert.Equal(t, 4, g)

	l, err = LoadList("", all)
	require.NoError(t, err)
	assert.Equal(t, []string{"house", "plant"}, l.Answers())

	_, err = LoadList(filepath.Join(dir, "missing.txt"), all)
	assert.Error(t, err)
}

func TestList_RandomExcept(t *testing.T) {
	l, err := NewList([]string{"crane", "slate"}, nil)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		w, err := l.RandomExcept("CRANE")
		require.NoError(t, err)
		assert.Equal(t, "slate", w)
	}

	single, err := NewList([]string{"crane"}, nil)
	require.NoError(t, err)
	_, err = single.RandomExcept("crane")
	assert.ErrorIs(t, err, ErrNoWords)
}

// ---------------------------------------------------------------------------

func newDictionaryServer(t *testing.T, random string, hits *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		switch {
		case r.URL.Path == "/random":
			if r.URL.Query().Get("min") != "" {
				w.Header().Set("X-Min", r.URL.Query().Get("min"))
			}
			_, _ = w.Write([]byte(`{"word":"` + random + `"}`))
		case r.URL.Path == "/words/crane":
			w.WriteHeader(http.StatusOK)
		case strings.HasPrefix(r.URL.Path, "/words/"):
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
}

func TestDictionary_IsValidWordCaches(t *testing.T) {
	var hits int32
	srv := newDictionaryServer(t, "Slate", &hits)
	defer srv.Close()

	d, err := NewDictionary(DictionaryConfig{BaseURL: srv.URL + "/"})
	require.NoError(t, err)

	ok, err := d.IsValidWord(context.Background(), "crane")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = d.IsValidWord(context.Background(), "CRANE")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))

	ok, err = d.IsValidWord(context.Background(), "qzxvw")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDictionary_RandomWord(t *testing.T) {
	var hits int32
	srv := newDictionaryServer(t, "Slate", &hits)
	defer srv.Close()

	d, err := NewDictionary(DictionaryConfig{BaseURL: srv.URL, RPS: 100})
	require.NoError(t, err)

	w, err := d.RandomWord(context.Background(), DifficultyRange{Min: 2.5, Max: 5})
	require.NoError(t, err)
	assert.Equal(t, "slate", w)

	ok, err := d.IsValidWord(context.Background(), "slate")
	require.NoError(t, err)
	assert.True(t, ok, "served words are cached as valid")
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestDictionary_BadResponses(t *testing.T) {
	var hits int32
	srv := newDictionaryServer(t, "toolong", &hits)
	defer srv.Close()

	d, err := NewDictionary(DictionaryConfig{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = d.RandomWord(context.Background(), DifficultyRange{})
	assert.ErrorIs(t, err, ErrBadResponse)

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer broken.Close()
	d, err = NewDictionary(DictionaryConfig{BaseURL: broken.URL})
	require.NoError(t, err)
	_, err = d.IsValidWord(context.Background(), "crane")
	assert.ErrorIs(t, err, ErrBadResponse)

	_, err = NewDictionary(DictionaryConfig{})
	assert.Error(t, err)
}

// ---------------------------------------------------------------------------

// scriptedProvider returns words (or errors) in order, then repeats the last.
type scriptedProvider struct {
	words []string
	errs  []error
	calls int
}

func (p *scriptedProvider) IsValidWord(context.Context, string) (bool, error) { return true, nil }

func (p *scriptedProvider) RandomWord(context.Context, DifficultyRange) (string, error) {
	i := p.calls
	p.calls++
	if i < len(p.errs) && p.errs[i] != nil {
		return "", p.errs[i]
	}
	if i >= len(p.words) {
		i = len(p.words) - 1
	}
	if i < 0 {
		return "", errors.New("no words scripted")
	}
	return p.words[i], nil
}

func TestProviderStrategy_RetriesUntilDifferent(t *testing.T) {
	p := &scriptedProvider{words: []string{"crane", "crane", "slate"}}
	s := NewProviderStrategy(p, 3).WithBackOff(&backoff.ZeroBackOff{})

	w, err := s.Pick(context.Background(), "crane", DifficultyRange{})
	require.NoError(t, err)
	assert.Equal(t, "slate", w)
	assert.Equal(t, 3, p.calls)
}

func TestProviderStrategy_BoundedAttempts(t *testing.T) {
	p := &scriptedProvider{errs: []error{errors.New("down"), errors.New("down"), errors.New("down"), errors.New("down")}}
	s := NewProviderStrategy(p, 3).WithBackOff(&backoff.ZeroBackOff{})

	_, err := s.Pick(context.Background(), "", DifficultyRange{})
	require.Error(t, err)
	assert.Equal(t, 3, p.calls)
}

func TestSelector_FallsBackInOrder(t *testing.T) {
	down := &scriptedProvider{errs: []error{errors.New("down"), errors.New("down")}}
	list, err := NewList([]string{"crane", "house"}, nil)
	require.NoError(t, err)

	sel := NewSelector(
		NewProviderStrategy(down, 2).WithBackOff(&backoff.ZeroBackOff{}),
		NewListStrategy(list),
	)
	assert.Equal(t, []string{"provider", "list", "emergency"}, sel.Strategies())

	w, err := sel.Select(context.Background(), "Crane", DifficultyRange{})
	require.NoError(t, err)
	assert.Equal(t, "house", w)
	assert.Equal(t, 2, down.calls)
}

func TestSelector_EmergencyNeverRepeatsExcluded(t *testing.T) {
	sel := NewSelector(NewListStrategy(nil))
	for _, prev := range []string{"crane", "slate", "trace", "audio", "crane"} {
		w, err := sel.Select(context.Background(), prev, DifficultyRange{})
		require.NoError(t, err)
		assert.NotEqual(t, prev, w)
		assert.Len(t, w, 5)
	}
}

func TestEmergencyStrategy_SkipsExcluded(t *testing.T) {
	s := NewEmergencyStrategy()
	first, err := s.Pick(context.Background(), "", DifficultyRange{})
	require.NoError(t, err)
	assert.Equal(t, "crane", first)

	s = NewEmergencyStrategy()
	w, err := s.Pick(context.Background(), "crane", DifficultyRange{})
	require.NoError(t, err)
	assert.Equal(t, "slate", w)
}
