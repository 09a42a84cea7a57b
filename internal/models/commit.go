package models

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// CommitType is the change category of a conventional commit.
type CommitType string

const (
	CommitFeat     CommitType = "feat"
	CommitFix      CommitType = "fix"
	CommitDocs     CommitType = "docs"
	CommitStyle    CommitType = "style"
	CommitRefactor CommitType = "refactor"
	CommitPerf     CommitType = "perf"
	CommitTest     CommitType = "test"
	CommitChore    CommitType = "chore"
	CommitBuild    CommitType = "build"
	CommitCI       CommitType = "ci"
)

var commitTypes = map[CommitType]bool{
	CommitFeat:     true,
	CommitFix:      true,
	CommitDocs:     true,
	CommitStyle:    true,
	CommitRefactor: true,
	CommitPerf:     true,
	CommitTest:     true,
	CommitChore:    true,
	CommitBuild:    true,
	CommitCI:       true,
}

// ParseCommitType parses a commit type, case-insensitively.
func ParseCommitType(s string) (CommitType, error) {
	ct := CommitType(strings.ToLower(s))
	if !commitTypes[ct] {
		return "", fmt.Errorf("%w: %s", ErrUnknownCommitType, s)
	}
	return ct, nil
}

func (c CommitType) String() string {
	return string(c)
}

// FooterToken is a single [key] or [key=value] directive found in the
// commit body or footer. Equality is structural.
type FooterToken struct {
	Key   string
	Value string
}

// Errors surfaced by commit parsing. Merge commits are a skippable
// classification rather than a format failure, so they get their own
// sentinel callers can test with errors.Is.
var (
	ErrHeaderFormat      = errors.New("commit header does not match conventional format")
	ErrUnknownCommitType = errors.New("unknown commit type")
	ErrMergeCommit       = errors.New("merge or placeholder commit message")
)

var (
	headerPattern = regexp.MustCompile(`^([a-zA-Z]+)(?:\(([^)]+)\))?(!)?:\s*(.+)$`)
	footerPattern = regexp.MustCompile(`\[([^\]=]+)(?:=([^\]]+))?\]`)
	fixupPattern  = regexp.MustCompile(`(?i)^(fixup!|squash!)\s*`)
	// Covers both spellings of the breaking change footer marker.
	breakingPattern = regexp.MustCompile(`BREAKING[ -]CHANGE:`)
)

// ConventionalCommit is a parsed conventional commit message. It is
// constructed once per parse and never mutated afterwards.
type ConventionalCommit struct {
	Type        CommitType
	Scope       string
	Breaking    bool
	Description string
	Body        string
	Footer      string
}

// IsFixupCommit reports whether the message starts with fixup! or
// squash! (case-insensitive). Callers are expected to check this before
// ParseCommit so fixups can be skipped silently.
func IsFixupCommit(message string) bool {
	return fixupPattern.MatchString(strings.TrimSpace(message))
}

// IsMergeMessage reports whether the message is a merge commit or an
// editor placeholder that should never be parsed as conventional.
func IsMergeMessage(message string) bool {
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return true
	}
	firstLine := strings.SplitN(trimmed, "\n", 2)[0]
	if strings.HasPrefix(firstLine, "Merge ") {
		return true
	}
	if strings.HasPrefix(firstLine, "# Please enter") || strings.HasPrefix(firstLine, "# On branch") {
		return true
	}
	return false
}

// ParseCommit parses a conventional commit message.
//
// The message is split on the first two blank-line separators into
// header, body and footer. Only the header's first line is matched
// against the grammar; squashed messages carrying further commit
// headers fold those lines into body/footer untouched.
func ParseCommit(message string) (*ConventionalCommit, error) {
	if IsMergeMessage(message) {
		return nil, ErrMergeCommit
	}

	parts := strings.SplitN(strings.TrimSpace(message), "\n\n", 3)
	header := parts[0]
	var body, footer string
	if len(parts) > 1 {
		body = parts[1]
	}
	if len(parts) > 2 {
		footer = parts[2]
	}

	firstLine := strings.TrimSpace(strings.SplitN(header, "\n", 2)[0])
	match := headerPattern.FindStringSubmatch(firstLine)
	if match == nil {
		return nil, ErrHeaderFormat
	}

	commitType, err := ParseCommitType(match[1])
	if err != nil {
		return nil, err
	}

	breaking := match[3] == "!"

	// A BREAKING CHANGE marker in the body promotes the body into the
	// footer, keeping footer token scanning in one place downstream.
	if body != "" && breakingPattern.MatchString(body) {
		if footer != "" {
			footer = body + "\n\n" + footer
		} else {
			footer = body
		}
		body = ""
		breaking = true
	} else if footer != "" && breakingPattern.MatchString(footer) {
		breaking = true
	}

	return &ConventionalCommit{
		Type:        commitType,
		Scope:       match[2],
		Breaking:    breaking,
		Description: strings.TrimSpace(match[4]),
		Body:        body,
		Footer:      footer,
	}, nil
}

// ParseCommitSkippingFixups parses a commit message, returning (nil, nil)
// for fixup/squash commits so batch callers can skip them without
// treating them as failures.
func ParseCommitSkippingFixups(message string) (*ConventionalCommit, error) {
	if IsFixupCommit(message) {
		return nil, nil
	}
	return ParseCommit(message)
}

// FooterTokens parses [key] and [key=value] directives out of the body
// and footer sections, in order of appearance.
func (c *ConventionalCommit) FooterTokens() []FooterToken {
	var tokens []FooterToken
	for _, section := range []string{c.Body, c.Footer} {
		if section == "" {
			continue
		}
		for _, m := range footerPattern.FindAllStringSubmatch(section, -1) {
			tokens = append(tokens, FooterToken{Key: m[1], Value: m[2]})
		}
	}
	return tokens
}

// BumpType derives the version bump this commit implies. Directive
// tokens win over the standard type-based rules: skip-bump short
// circuits everything, then force-major/force-minor/force-patch apply
// in that fixed priority.
func (c *ConventionalCommit) BumpType() BumpType {
	tokens := c.FooterTokens()

	for _, t := range tokens {
		if t.Key == "skip-bump" {
			return BumpNone
		}
	}

	for _, forced := range []struct {
		key  string
		bump BumpType
	}{
		{"force-major", BumpMajor},
		{"force-minor", BumpMinor},
		{"force-patch", BumpPatch},
	} {
		for _, t := range tokens {
			if t.Key == forced.key {
				return forced.bump
			}
		}
	}

	switch {
	case c.Breaking:
		return BumpMajor
	case c.Type == CommitFeat:
		return BumpMinor
	case c.Type == CommitFix:
		return BumpPatch
	default:
		return BumpNone
	}
}

// PrereleaseLabel extracts the pre-release label from footer directives.
// Only alpha, beta and rc take effect; first match wins.
func (c *ConventionalCommit) PrereleaseLabel() string {
	for _, t := range c.FooterTokens() {
		if t.Key != "pre-release" {
			continue
		}
		switch t.Value {
		case "alpha", "beta", "rc":
			return t.Value
		}
	}
	return ""
}
