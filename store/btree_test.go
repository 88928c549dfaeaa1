package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, it Iterator) []Model {
	t.Helper()
	defer it.Close()
	var res []Model
	for ; it.Valid(); require.NoError(t, it.Next()) {
		res = append(res, Model{Key: it.Key(), Value: it.Value()})
	}
	return res
}

func models(kv ...string) []Model {
	var res []Model
	for i := 0; i < len(kv); i += 2 {
		res = append(res, Model{Key: []byte(kv[i]), Value: []byte(kv[i+1])})
	}
	return res
}

func TestCacheWrapGetSetDelete(t *testing.T) {
	base := MemStore()
	require.NoError(t, base.Set([]byte("a"), []byte("1")))
	require.NoError(t, base.Set([]byte("b"), []byte("2")))

	cache := base.CacheWrap()
	require.NoError(t, cache.Set([]byte("a"), []byte("one")))
	require.NoError(t, cache.Delete([]byte("b")))
	require.NoError(t, cache.Set([]byte("c"), []byte("3")))

	val, err := cache.Get([]byte("a"))
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), val)
	has, err := cache.Has([]byte("b"))
	require.NoError(t, err)
	assert.False(t, has)

	// parent is untouched until written
	val, err = base.Get([]byte("a"))
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), val)
	has, err = base.Has([]byte("c"))
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, cache.Write())

	val, err = base.Get([]byte("a"))
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), val)
	val, err = base.Get([]byte("b"))
	require.NoError(t, err)
	assert.Nil(t, val)
	val, err = base.Get([]byte("c"))
	require.NoError(t, err)
	assert.Equal(t, []byte("3"), val)
}

func TestCacheWrapDiscard(t *testing.T) {
	base := MemStore()
	require.NoError(t, base.Set([]byte("a"), []byte("1")))

	cache := base.CacheWrap()
	require.NoError(t, cache.Set([]byte("a"), []byte("2")))
	cache.Discard()

	val, err := base.Get([]byte("a"))
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), val)
}

func TestCacheWrapIterators(t *testing.T) {
	base := MemStore()
	for _, m := range models("a", "1", "c", "3", "e", "5", "g", "7") {
		require.NoError(t, base.Set(m.Key, m.Value))
	}

	cache := base.CacheWrap()
	require.NoError(t, cache.Set([]byte("b"), []byte("2")))
	require.NoError(t, cache.Set([]byte("c"), []byte("three")))
	require.NoError(t, cache.Delete([]byte("e")))
	require.NoError(t, cache.Delete([]byte("x")))
	require.NoError(t, cache.Set([]byte("h"), []byte("8")))

	cases := map[string]struct {
		start, end []byte
		reverse    bool
		want       []Model
	}{
		"everything": {
			want: models("a", "1", "b", "2", "c", "three", "g", "7", "h", "8"),
		},
		"everything reversed": {
			reverse: true,
			want:    models("h", "8", "g", "7", "c", "three", "b", "2", "a", "1"),
		},
		"bounded": {
			start: []byte("b"),
			end:   []byte("g"),
			want:  models("b", "2", "c", "three"),
		},
		"bounded reversed": {
			start:   []byte("b"),
			end:     []byte("h"),
			reverse: true,
			want:    models("g", "7", "c", "three", "b", "2"),
		},
		"open end": {
			start: []byte("d"),
			want:  models("g", "7", "h", "8"),
		},
		"open start": {
			end:  []byte("c"),
			want: models("a", "1", "b", "2"),
		},
		"only deleted in range": {
			start: []byte("d"),
			end:   []byte("f"),
			want:  nil,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var (
				it  Iterator
				err error
			)
			if tc.reverse {
				it, err = cache.ReverseIterator(tc.start, tc.end)
			} else {
				it, err = cache.Iterator(tc.start, tc.end)
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, collect(t, it))
		})
	}
}

func TestNestedCacheWrap(t *testing.T) {
	base := MemStore()
	outer := base.CacheWrap()
	require.NoError(t, outer.Set([]byte("k"), []byte("outer")))

	inner := outer.CacheWrap()
	require.NoError(t, inner.Set([]byte("k"), []byte("inner")))
	require.NoError(t, inner.Set([]byte("j"), []byte("inner")))

	val, err := outer.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("outer"), val)

	require.NoError(t, inner.Write())
	it, err := outer.Iterator(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, models("j", "inner", "k", "inner"), collect(t, it))

	require.NoError(t, outer.Write())
	val, err = base.Get([]byte("j"))
	require.NoError(t, err)
	assert.Equal(t, []byte("inner"), val)
}

func TestNonAtomicBatch(t *testing.T) {
	kv := MemStore()
	b := NewNonAtomicBatch(kv)
	require.NoError(t, b.Set([]byte("a"), []byte("1")))
	require.NoError(t, b.Delete([]byte("a")))
	require.NoError(t, b.Set([]byte("b"), []byte("2")))
	assert.Len(t, b.ShowOps(), 3)

	has, err := kv.Has([]byte("b"))
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, b.Write())
	assert.Empty(t, b.ShowOps())

	it, err := kv.Iterator(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, models("b", "2"), collect(t, it))
}

func TestSliceIterator(t *testing.T) {
	it := NewSliceIterator(models("a", "1"))
	assert.True(t, it.Valid())
	assert.Equal(t, []byte("a"), it.Key())
	require.NoError(t, it.Next())
	assert.False(t, it.Valid())
	assert.Error(t, it.Next())
	assert.Panics(t, func() { it.Key() })
}
