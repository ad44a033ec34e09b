package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/haze/internal/ir"
)

func TestGet_IncludeResolvesIntoCopy(t *testing.T) {
	e := newTestEngine(t)
	u := e.Create("users", ir.IRObject{"name": ir.IRString("Ann")})
	p := e.Create("posts", ir.IRObject{"author": ir.IRString("users:" + u.ID)})

	got, ok := e.Get("posts", p.ID, "author")
	require.True(t, ok)
	author, ok := got["author"].(ir.IRObject)
	require.True(t, ok)
	assert.Equal(t, ir.IRString("Ann"), author["name"])
	assert.Equal(t, ir.IRString(u.ID), author["id"])

	stored, _ := e.Get("posts", p.ID)
	assert.Equal(t, ir.IRString("users:"+u.ID), stored["author"], "reads never rewrite stored data")
}

func TestGet_NestedInclude(t *testing.T) {
	e := newTestEngine(t)
	org := e.Create("orgs", ir.IRObject{"name": ir.IRString("Acme")})
	u := e.Create("users", ir.IRObject{"name": ir.IRString("Ann"), "org": ir.IRString("orgs:" + org.ID)})
	p := e.Create("posts", ir.IRObject{"author": ir.IRString("users:" + u.ID)})

	got, ok := e.Get("posts", p.ID, "author.org")
	require.True(t, ok)

	author := got["author"].(ir.IRObject)
	orgDoc, ok := author["org"].(ir.IRObject)
	require.True(t, ok, "second level resolved")
	assert.Equal(t, ir.IRString("Acme"), orgDoc["name"])

	storedUser, _ := e.Get("users", u.ID)
	assert.Equal(t, ir.IRString("orgs:"+org.ID), storedUser["org"])
}

func TestGet_SeparatePathsResolveSameField(t *testing.T) {
	e := newTestEngine(t)
	org := e.Create("orgs", ir.IRObject{"name": ir.IRString("Acme")})
	u := e.Create("users", ir.IRObject{"org": ir.IRString("orgs:" + org.ID)})
	p := e.Create("posts", ir.IRObject{"author": ir.IRString("users:" + u.ID)})

	got, _ := e.Get("posts", p.ID, "author", "author.org")

	author := got["author"].(ir.IRObject)
	_, ok := author["org"].(ir.IRObject)
	assert.True(t, ok)
}

func TestGet_DanglingReferenceBecomesAbsent(t *testing.T) {
	e := newTestEngine(t)
	p := e.Create("posts", ir.IRObject{
		"author": ir.IRString("users:ghost"),
		"editor": ir.IRString("nowhere:x"),
	})

	got, ok := e.Get("posts", p.ID, "author", "editor")
	require.True(t, ok)
	_, hasAuthor := got["author"]
	_, hasEditor := got["editor"]
	assert.False(t, hasAuthor)
	assert.False(t, hasEditor)

	stored, _ := e.Get("posts", p.ID)
	assert.Contains(t, stored, "author")
}

func TestResolveIncludes_LeavesNonReferences(t *testing.T) {
	e := newTestEngine(t)

	doc := ir.IRObject{
		"title":  ir.IRString("no colon here"),
		"half":   ir.IRString(":x"),
		"count":  ir.IRInt(3),
		"author": ir.IRString("users:"),
	}
	got := e.ResolveIncludes([]string{"title", "half", "count", "author", "missing", ""}, doc)
	assert.Equal(t, doc, got)
}

func TestResolveIncludes_DoesNotModifyInput(t *testing.T) {
	e := newTestEngine(t)
	u := e.Create("users", ir.IRObject{"name": ir.IRString("Ann")})

	doc := ir.IRObject{"author": ir.IRString("users:" + u.ID)}
	got := e.ResolveIncludes([]string{"author"}, doc)

	assert.IsType(t, ir.IRObject{}, got["author"])
	assert.Equal(t, ir.IRString("users:"+u.ID), doc["author"])
}

func TestResolveIncludes_IDWithColon(t *testing.T) {
	e := newTestEngine(t, WithIDGenerator(NewFixedGenerator("a:b")))
	e.Create("users", ir.IRObject{"name": ir.IRString("Ann")})

	got := e.ResolveIncludes([]string{"author"}, ir.IRObject{"author": ir.IRString("users:a:b")})
	author, ok := got["author"].(ir.IRObject)
	require.True(t, ok)
	assert.Equal(t, ir.IRString("Ann"), author["name"])
}
