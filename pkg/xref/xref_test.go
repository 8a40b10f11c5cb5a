package xref

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRewrite_MapsKnownGuide(t *testing.T) {
	body := "See [Query keys](guides/01-query-keys.md) for details."
	links := map[string]string{"01-query-keys": "./tanstack-query-01-query-keys.mdc"}

	rewritten, unresolved := Rewrite(body, links)

	assert.Equal(t, "See [Query keys](./tanstack-query-01-query-keys.mdc) for details.", rewritten)
	assert.Empty(t, unresolved)
}

func TestRewrite_RelativePrefixes(t *testing.T) {
	links := map[string]string{"02-mutations": "./out.mdc"}

	for _, body := range []string{
		"[m](guides/02-mutations.md)",
		"[m](./guides/02-mutations.md)",
		"[m](../guides/02-mutations.md)",
	} {
		rewritten, unresolved := Rewrite(body, links)
		assert.Equal(t, "[m](./out.mdc)", rewritten)
		assert.Empty(t, unresolved)
	}
}

func TestRewrite_UnknownGuideLeftUntouched(t *testing.T) {
	body := "See [elsewhere](guides/99-missing.md)."

	rewritten, unresolved := Rewrite(body, map[string]string{"01-query-keys": "./x.mdc"})

	assert.Equal(t, body, rewritten)
	assert.Equal(t, []string{"99-missing"}, unresolved)
}

func TestRewrite_UnresolvedReportedOnce(t *testing.T) {
	body := "[a](guides/99-missing.md) and [b](guides/99-missing.md)"

	_, unresolved := Rewrite(body, nil)

	assert.Equal(t, []string{"99-missing"}, unresolved)
}

func TestRewrite_NonGuideLinksPassThrough(t *testing.T) {
	body := "External [docs](https://tanstack.com/query), a " +
		"[decision](decisions/0001-server-state.md), an [agent](agents/query-refactor.md) " +
		"and a cross-section link [keys](../tanstack-query/guides/01-query-keys.md)."

	rewritten, unresolved := Rewrite(body, map[string]string{"01-query-keys": "./x.mdc"})

	assert.Equal(t, body, rewritten)
	assert.Empty(t, unresolved)
}

func TestRewrite_IdempotentWithoutMatches(t *testing.T) {
	body := "Only [external](https://example.com) links here.\n\nNo guides at all."

	rewritten, unresolved := Rewrite(body, map[string]string{"01-query-keys": "./x.mdc"})

	assert.Equal(t, body, rewritten)
	assert.Empty(t, unresolved)
}

func TestRewrite_SurroundingTextUnaltered(t *testing.T) {
	body := "| Task | Guide |\n|---|---|\n| keys | [Query keys](guides/01-query-keys.md) |\n"
	links := map[string]string{"01-query-keys": "./tanstack-query-01-query-keys.mdc"}

	rewritten, _ := Rewrite(body, links)

	assert.Equal(t, "| Task | Guide |\n|---|---|\n| keys | [Query keys](./tanstack-query-01-query-keys.mdc) |\n", rewritten)
}

func TestHasGuideLinks(t *testing.T) {
	assert.True(t, HasGuideLinks("[g](guides/01-a.md)"))
	assert.False(t, HasGuideLinks("[g](https://example.com/docs/01-a.md)"))
	assert.False(t, HasGuideLinks("no links"))
}
