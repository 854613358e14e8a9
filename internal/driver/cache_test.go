package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BendyLand/blfmt-sub000/internal/cst"
	"github.com/BendyLand/blfmt-sub000/internal/diag"
	"github.com/BendyLand/blfmt-sub000/internal/format"
	"github.com/BendyLand/blfmt-sub000/internal/source"
)

func TestKeyForDependsOnInputs(t *testing.T) {
	src := []byte("int x;\n")
	base := KeyFor(src, cst.LangC, format.Options{})
	assert.Equal(t, base, KeyFor(src, cst.LangC, format.Options{}))
	assert.NotEqual(t, base, KeyFor(src, cst.LangCPP, format.Options{}))
	assert.NotEqual(t, base, KeyFor(src, cst.LangC, format.Options{Style: format.StyleAllman}))
	assert.NotEqual(t, base, KeyFor(src, cst.LangC, format.Options{UseTabs: true}))
	assert.NotEqual(t, base, KeyFor([]byte("int y;\n"), cst.LangC, format.Options{}))
}

func TestDiskCacheRoundTrip(t *testing.T) {
	cache, err := NewDiskCache(t.TempDir())
	require.NoError(t, err)
	key := KeyFor([]byte("int x;\n"), cst.LangC, format.Options{})

	_, ok, err := cache.Get(key)
	require.NoError(t, err)
	assert.False(t, ok)

	diags := []diag.Diagnostic{diag.NewWarning(diag.FmtUnsupportedConstruct, source.Span{File: 3, Start: 1, End: 4}, "odd")}
	require.NoError(t, cache.Put(key, &CacheEntry{Output: []byte("int x;\n"), Diagnostics: toCached(diags)}))

	entry, ok, err := cache.Get(key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "int x;\n", string(entry.Output))

	restored := fromCached(entry.Diagnostics, 7)
	require.Len(t, restored, 1)
	assert.Equal(t, diag.FmtUnsupportedConstruct, restored[0].Code)
	assert.Equal(t, diag.SevWarning, restored[0].Severity)
	assert.Equal(t, source.Span{File: 7, Start: 1, End: 4}, restored[0].Primary)

	require.NoError(t, cache.DropAll())
	_, ok, err = cache.Get(key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNilDiskCache(t *testing.T) {
	var cache *DiskCache
	_, ok, err := cache.Get(CacheKey{})
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, cache.Put(CacheKey{}, &CacheEntry{}))
	assert.NoError(t, cache.DropAll())
}
