package verify

import (
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// Match is one matched line from a repository search.
type Match struct {
	File string
	Line int
	Text string
}

// Searcher is the repository content search the scanner runs on. The
// production implementation shells out to ripgrep; tests substitute an
// in-memory fake.
type Searcher interface {
	// FilesWithMatches returns paths under root whose content matches
	// pattern. Zero matches is a nil slice with a nil error; an error means
	// the search mechanism itself failed.
	FilesWithMatches(ctx context.Context, root, pattern string) ([]string, error)

	// Matches returns matched lines with line numbers for pattern within
	// one file under root.
	Matches(ctx context.Context, root, pattern, file string) ([]Match, error)
}

// ignoreGlobs keeps build output and vendored trees out of evidence
// searches.
var ignoreGlobs = []string{"!target", "!node_modules", "!dist", "!build", "!.git", "!vendor"}

const (
	maxFilesPerSearch   = 10
	maxMatchesPerSearch = 30
)

// RipgrepSearcher shells out to rg for repository searches.
type RipgrepSearcher struct{}

// CheckRipgrep reports whether the rg binary is available. Verification
// cannot run without it; callers degrade to unverified output.
func CheckRipgrep() error {
	if _, err := exec.LookPath("rg"); err != nil {
		return eris.Wrap(err, "ripgrep (rg) not found on PATH")
	}
	return nil
}

func (RipgrepSearcher) FilesWithMatches(ctx context.Context, root, pattern string) ([]string, error) {
	args := []string{"--ignore-case", "--files-with-matches", "--fixed-strings"}
	args = appendIgnoreGlobs(args)
	args = append(args, pattern)

	stdout, err := runRipgrep(ctx, root, args)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, line := range strings.Split(strings.TrimSpace(stdout), "\n") {
		if line == "" {
			continue
		}
		files = append(files, line)
		if len(files) >= maxFilesPerSearch {
			break
		}
	}
	return files, nil
}

func (RipgrepSearcher) Matches(ctx context.Context, root, pattern, file string) ([]Match, error) {
	args := []string{"--ignore-case", "--line-number", "--max-count", strconv.Itoa(maxMatchesPerSearch)}
	args = append(args, pattern, file)

	stdout, err := runRipgrep(ctx, root, args)
	if err != nil {
		return nil, err
	}

	var matches []Match
	for _, line := range strings.Split(stdout, "\n") {
		if m, ok := parseMatchLine(file, line); ok {
			matches = append(matches, m)
		}
	}
	return matches, nil
}

// runRipgrep executes rg under root. Exit code 1 means zero matches and
// is not an error; anything else non-zero is a mechanism failure.
func runRipgrep(ctx context.Context, root string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, "rg", args...)
	cmd.Dir = root

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if eris.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return "", nil
		}
		return "", eris.Wrapf(err, "rg failed: %s", strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

func appendIgnoreGlobs(args []string) []string {
	for _, g := range ignoreGlobs {
		args = append(args, "-g", g)
	}
	return args
}

// parseMatchLine splits rg --line-number output ("123:content") into a
// Match.
func parseMatchLine(file, line string) (Match, bool) {
	idx := strings.Index(line, ":")
	if idx <= 0 {
		return Match{}, false
	}
	num, err := strconv.Atoi(line[:idx])
	if err != nil {
		return Match{}, false
	}
	return Match{File: file, Line: num, Text: line[idx+1:]}, true
}
