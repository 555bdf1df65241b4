// SPDX-License-Identifier: Apache-2.0

package catalog_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wheelclass/wheelclass-mcp/internal/catalog"
	"github.com/wheelclass/wheelclass-mcp/internal/source"
)

var project = map[string]string{
	"model/User.java": `package com.acme.model;

import lombok.Data;

@Data
public class User extends Base {
    private Long id;
    private String name;
}
`,
	"model/Base.java": `package com.acme.model;

public class Base {
    private Long createdAt;
}
`,
	"model/Item.java": `package com.acme.model;

@lombok.Data
public class Item {
    private String sku;
}
`,
	"cycle/Cycle.java": `package com.acme.cycle;

class A extends B {
    int a;
}

class B extends A {
    int b;
}
`,
	"order/order.go": `package order

//wheelclass:data
type Order struct {
	Audit
	ID   int64
	Name string
}

type Audit struct {
	UpdatedAt string
}

type Item struct {
	SKU string
}
`,
	"order/order_test.go": `package order

type Fixture struct{ X int }
`,
	"vendor/lib/lib.go": `package lib

type Vendored struct{ X int }
`,
	"README.md": "# project\n",
}

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		writeFile(t, root, rel, content)
	}
	return root
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newCatalog(t *testing.T, files map[string]string, opts ...catalog.Option) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(writeProject(t, files), opts...)
	require.NoError(t, err)
	return c
}

func qualifiedNames(classes []*source.Class) []string {
	names := make([]string, 0, len(classes))
	for _, c := range classes {
		names = append(names, c.QualifiedName)
	}
	return names
}

func fieldNames(c *catalog.Snapshot, class *source.Class, inherited bool) []string {
	var names []string
	for _, f := range c.Fields(class, inherited) {
		names = append(names, f.Name)
	}
	return names
}

func TestNew_RejectsMissingRoot(t *testing.T) {
	_, err := catalog.New(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}

func TestSnapshot_ScansMatchingFiles(t *testing.T) {
	c := newCatalog(t, project)
	snap, err := c.Snapshot(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, snap.Files)
	assert.ElementsMatch(t, []string{
		"com.acme.cycle.A",
		"com.acme.cycle.B",
		"com.acme.model.Base",
		"com.acme.model.Item",
		"com.acme.model.User",
		"order.Order",
		"order.Audit",
		"order.Item",
	}, qualifiedNames(snap.Classes()))
}

func TestSnapshot_CachesUntilInvalidated(t *testing.T) {
	c := newCatalog(t, project)
	ctx := context.Background()

	first, err := c.Snapshot(ctx)
	require.NoError(t, err)
	again, err := c.Snapshot(ctx)
	require.NoError(t, err)
	assert.Same(t, first, again)

	// Unchanged files are reused by content hash.
	c.Invalidate()
	rescanned, err := c.Snapshot(ctx)
	require.NoError(t, err)
	assert.NotSame(t, first, rescanned)
	assert.Equal(t, first.Version, rescanned.Version)
	user, err := first.Lookup("User")
	require.NoError(t, err)
	userAgain, err := rescanned.Lookup("User")
	require.NoError(t, err)
	assert.Same(t, user, userAgain)

	// An evicted path is parsed again.
	c.Invalidate(filepath.Join(c.Root(), "model", "User.java"))
	reparsed, err := c.Snapshot(ctx)
	require.NoError(t, err)
	userReparsed, err := reparsed.Lookup("User")
	require.NoError(t, err)
	assert.NotSame(t, user, userReparsed)
	assert.Equal(t, first.Version, reparsed.Version)
}

func TestSnapshot_VersionTracksContent(t *testing.T) {
	c := newCatalog(t, project)
	ctx := context.Background()

	before, err := c.Snapshot(ctx)
	require.NoError(t, err)

	writeFile(t, c.Root(), "model/Item.java", `package com.acme.model;

@lombok.Data
public class Item {
    private String sku;
    private int quantity;
}
`)
	c.Invalidate("model/Item.java")
	after, err := c.Snapshot(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, before.Version, after.Version)

	item, err := after.Lookup("com.acme.model.Item")
	require.NoError(t, err)
	assert.Len(t, item.Fields, 2)
}

func TestSnapshot_Options(t *testing.T) {
	c := newCatalog(t, project,
		catalog.WithInclude("**/*.go"),
		catalog.WithExclude(),
		catalog.WithWorkers(1),
		catalog.WithCacheSize(8),
	)
	snap, err := c.Snapshot(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"order.Order", "order.Audit", "order.Item", "order.Fixture", "lib.Vendored",
	}, qualifiedNames(snap.Classes()))

	small := newCatalog(t, project, catalog.WithMaxFileSize(80))
	snap, err = small.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Files, "only Base.java is under 80 bytes")
}

func TestSnapshot_Cancelled(t *testing.T) {
	c := newCatalog(t, project)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Snapshot(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestMatches(t *testing.T) {
	c := newCatalog(t, nil)
	tests := []struct {
		path string
		want bool
	}{
		{path: "src/main/java/User.java", want: true},
		{path: "order/order.go", want: true},
		{path: "main.go", want: true},
		{path: "order/order_test.go", want: false},
		{path: "vendor/lib/lib.go", want: false},
		{path: "app/node_modules/x/X.java", want: false},
		{path: "build/generated/User.java", want: false},
		{path: "README.md", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Matches(tt.path))
		})
	}
}

func TestLookup(t *testing.T) {
	c := newCatalog(t, project)
	snap, err := c.Snapshot(context.Background())
	require.NoError(t, err)

	user, err := snap.Lookup("com.acme.model.User")
	require.NoError(t, err)
	assert.Equal(t, "model/User.java", user.Path)

	order, err := snap.Lookup("Order")
	require.NoError(t, err)
	assert.Equal(t, source.LanguageGo, order.Language)

	_, err = snap.Lookup("Missing")
	require.ErrorIs(t, err, catalog.ErrNotFound)

	_, err = snap.Lookup("Item")
	require.ErrorIs(t, err, catalog.ErrAmbiguous)
	assert.Contains(t, err.Error(), "com.acme.model.Item")
	assert.Contains(t, err.Error(), "order.Item")

	item, err := snap.Lookup("order/order.go#Item")
	require.NoError(t, err)
	assert.Equal(t, "order.Item", item.QualifiedName)
}

func TestFields_Inheritance(t *testing.T) {
	c := newCatalog(t, project)
	snap, err := c.Snapshot(context.Background())
	require.NoError(t, err)

	user, err := snap.Lookup("User")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, fieldNames(snap, user, false))
	assert.Equal(t, []string{"id", "name", "createdAt"}, fieldNames(snap, user, true))

	order, err := snap.Lookup("Order")
	require.NoError(t, err)
	assert.Equal(t, []string{"ID", "Name", "UpdatedAt"}, fieldNames(snap, order, true))

	a, err := snap.Lookup("com.acme.cycle.A")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, fieldNames(snap, a, true), "cycles terminate")

	assert.Nil(t, snap.Fields(nil, true))
}

func TestDataClasses(t *testing.T) {
	c := newCatalog(t, project)
	snap, err := c.Snapshot(context.Background())
	require.NoError(t, err)

	marked := snap.DataClasses([]string{"lombok.Data", "wheelclass:data"}, true)
	assert.ElementsMatch(t, []string{
		"com.acme.model.User", "com.acme.model.Item", "order.Order",
	}, qualifiedNames(marked))

	all := snap.DataClasses(nil, false)
	assert.Len(t, all, len(snap.Classes()))
}
