package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// BuildChangelogPrompt assembles the generation prompt from a free-form
// summary of changes (commit subjects, PR titles). The summary passes
// through SanitizeForPrompt before embedding.
func BuildChangelogPrompt(repoName, previousVersion, changes string) string {
	var context string
	if previousVersion == "" {
		context = fmt.Sprintf(`This is the INITIAL RELEASE of %q.
For initial releases, describe the core features and capabilities that the project provides.`, repoName)
	} else {
		context = fmt.Sprintf(`This is an incremental release for %q (previous version: %s).
Focus only on changes since the last release.
Ignore docs-only, test-only, and chore commits unless they affect users.`, repoName, previousVersion)
	}

	return fmt.Sprintf(`You are generating release notes for a software project.

%s

Given the following changes, generate changelog entries following the
Keep a Changelog format.

## Changes
%s

## Instructions
1. Group changes into categories: Added, Changed, Deprecated, Removed, Fixed, Security
2. Write user-facing descriptions (not technical commit messages)
3. Focus on benefits and impact
4. Combine related changes into single entries where appropriate

Respond with JSON:
{
  "entries": [
    {"category": "Added", "description": "..."},
    ...
  ]
}`, context, SanitizeForPrompt(changes))
}

// BuildBumpPrompt assembles the semantic-version-bump prompt.
func BuildBumpPrompt(repoName, previousVersion, changes string) string {
	versionContext := "There is no previous version (initial release)."
	if previousVersion != "" {
		versionContext = fmt.Sprintf("The previous version is %s.", previousVersion)
	}

	return fmt.Sprintf(`You are determining the next semantic version bump for the project %q.

## Semantic Versioning Rules
- major: breaking changes incompatible with the previous API or behavior
- minor: new features added in a backwards-compatible manner
- patch: backwards-compatible bug fixes or internal changes

%s

## Changes
%s

Respond with JSON:
{"bump_type": "major|minor|patch", "reasoning": "..."}`,
		repoName, versionContext, SanitizeForPrompt(changes))
}

// ParseBumpResponse decodes and validates the bump-suggestion payload.
func ParseBumpResponse(raw string) (bumpType, reasoning string, err error) {
	var resp struct {
		BumpType  string `json:"bump_type"`
		Reasoning string `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(ExtractJSON(raw)), &resp); err != nil {
		return "", "", err
	}
	switch strings.ToLower(strings.TrimSpace(resp.BumpType)) {
	case "major":
		return "major", resp.Reasoning, nil
	case "minor":
		return "minor", resp.Reasoning, nil
	case "patch":
		return "patch", resp.Reasoning, nil
	default:
		return "", "", fmt.Errorf("unknown bump_type %q", resp.BumpType)
	}
}
