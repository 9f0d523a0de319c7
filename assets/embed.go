// assets/embed.go
//
// Default word lists compiled into the binary.
//   - answers.txt: words eligible as hurdle targets.
//   - allowed.txt: extra words accepted as guesses but never served as targets.
//
// Both files use the same line format as the external WORDS_*_FILE lists:
// one word per line, "#" starts a comment line, blank lines are ignored.

package assets

import (
	"bufio"
	"bytes"
	"embed"
	"fmt"
	"io"
	"strings"
)

const (
	answersFile = "answers.txt"
	allowedFile = "allowed.txt"
)

//go:embed answers.txt allowed.txt
var lists embed.FS

// ParseWordLines reads one entry per line, trimmed and lowercased. Comment and
// blank lines are dropped; validating the entries is left to the caller.
func ParseWordLines(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.ToLower(strings.TrimSpace(sc.Text()))
		if line == "" || line[0] == '#' {
			continue
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func load(name string) ([]string, error) {
	b, err := lists.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("assets: %s: %w", name, err)
	}
	return ParseWordLines(bytes.NewReader(b))
}

// Answers returns the embedded target words.
func Answers() ([]string, error) { return load(answersFile) }

// Allowed returns the embedded guess-only words.
func Allowed() ([]string, error) { return load(allowedFile) }
