// Package xref rewrites relative guide links inside index content to the
// output path convention of the active emitter, so the routing table in a
// generated index points at generated guide files rather than source paths.
package xref

import (
	"regexp"
	"strings"
)

// guideLinkPattern matches the markdown link target convention for guides:
// an optional ./ or ../ chain followed by guides/<identifier>.md
var guideLinkPattern = regexp.MustCompile(`\]\(((?:\.\./|\./)*guides/([A-Za-z0-9._-]+)\.md)\)`)

// Rewrite replaces every guide link whose identifier appears in links with the
// mapped output path. It is a pure string transform: unknown identifiers are
// left untouched and reported as unresolved, since authored content may
// legitimately reference material outside the installed section. All other
// links (external URLs, decisions, agents) pass through unchanged.
func Rewrite(body string, links map[string]string) (string, []string) {
	var unresolved []string
	seen := make(map[string]bool)

	rewritten := guideLinkPattern.ReplaceAllStringFunc(body, func(match string) string {
		groups := guideLinkPattern.FindStringSubmatch(match)
		id := groups[2]

		target, ok := links[id]
		if !ok {
			if !seen[id] {
				unresolved = append(unresolved, id)
				seen[id] = true
			}
			return match
		}
		return "](" + target + ")"
	})

	return rewritten, unresolved
}

// HasGuideLinks reports whether body contains any link matching the guide
// convention. Useful for callers that skip rewriting entirely.
func HasGuideLinks(body string) bool {
	return strings.Contains(body, "guides/") && guideLinkPattern.MatchString(body)
}
