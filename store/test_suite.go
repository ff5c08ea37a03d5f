package store

import (
	"bytes"
	"testing"

	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/swaptest/assert"
)

// TestSuite runs the checks every ledger backend must pass against a store
// built by the constructor. Keys follow the ledger layout: accounts under the
// "acct:" prefix next to configuration keys that must never show up in an
// account scan.
type TestSuite struct {
	makeBase TestStoreConstructor
}

type TestStoreConstructor func() (base CacheableKVStore, cleanup func())

func NewTestSuite(constructor TestStoreConstructor) *TestSuite {
	return &TestSuite{
		makeBase: constructor,
	}
}

var (
	suiteConfig = []byte("_c:runtime")
	suiteAfter  = []byte("zz")
)

// suiteAccount returns the key of an account whose address is n repeated.
func suiteAccount(n byte) []byte {
	return append([]byte("acct:"), bytes.Repeat([]byte{n}, 32)...)
}

// suiteAccounts is the range holding all account keys.
func suiteAccounts() (start, end []byte) {
	return []byte("acct:"), []byte("acct;")
}

// Transaction checks a single cache wrap, which is how the ledger runs one
// transaction: changes are visible only in the cache until written and are
// gone when discarded.
func (s *TestSuite) Transaction(t *testing.T) {
	a, b, c := suiteAccount(1), suiteAccount(2), suiteAccount(3)

	cases := map[string]struct {
		ops     []Op
		write   bool
		wantGet []Model // Value nil means absent
	}{
		"written transaction": {
			ops:     []Op{SetOp(a, []byte("drained")), DelOp(b), SetOp(c, []byte("new"))},
			write:   true,
			wantGet: []Model{Pair(a, []byte("drained")), Pair(b, nil), Pair(c, []byte("new"))},
		},
		"discarded transaction": {
			ops:     []Op{SetOp(a, []byte("drained")), DelOp(b), SetOp(c, []byte("new"))},
			wantGet: []Model{Pair(a, []byte("a")), Pair(b, []byte("b")), Pair(c, nil)},
		},
		"delete then recreate": {
			ops:     []Op{DelOp(a), SetOp(a, []byte("again"))},
			write:   true,
			wantGet: []Model{Pair(a, []byte("again")), Pair(b, []byte("b"))},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			base, cleanup := s.makeBase()
			defer cleanup()
			assert.Nil(t, base.Set(a, []byte("a")))
			assert.Nil(t, base.Set(b, []byte("b")))

			cache := base.CacheWrap()
			for _, op := range tc.ops {
				assert.Nil(t, op.Apply(cache))
			}
			// nothing leaks before the cache is done
			s.AssertGetHas(t, base, a, []byte("a"), true)
			s.AssertGetHas(t, base, c, nil, false)

			if tc.write {
				assert.Nil(t, cache.Write())
			} else {
				cache.Discard()
			}
			for _, q := range tc.wantGet {
				s.AssertGetHas(t, base, q.Key, q.Value, q.Value != nil)
			}
		})
	}
}

// NestedCache checks a transaction cache on top of the pending block cache.
// Only writing both layers reaches the base.
func (s *TestSuite) NestedCache(t *testing.T) {
	a, b := suiteAccount(1), suiteAccount(2)

	cases := map[string]struct {
		writeTx    bool
		writeBlock bool
		wantBlock  []byte
		wantBase   []byte
	}{
		"both written": {
			writeTx:    true,
			writeBlock: true,
			wantBlock:  []byte("tx"),
			wantBase:   []byte("tx"),
		},
		"transaction failed": {
			writeBlock: true,
			wantBlock:  []byte("block"),
			wantBase:   []byte("block"),
		},
		"block not committed": {
			writeTx:   true,
			wantBlock: []byte("tx"),
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			base, cleanup := s.makeBase()
			defer cleanup()

			block := base.CacheWrap()
			assert.Nil(t, block.Set(a, []byte("block")))
			tx := block.CacheWrap()
			assert.Nil(t, tx.Set(a, []byte("tx")))
			assert.Nil(t, tx.Set(b, []byte("tx")))
			s.AssertGetHas(t, block, b, nil, false)

			if tc.writeTx {
				assert.Nil(t, tx.Write())
			} else {
				tx.Discard()
			}
			s.AssertGetHas(t, block, a, tc.wantBlock, true)

			if tc.writeBlock {
				assert.Nil(t, block.Write())
			} else {
				block.Discard()
			}
			s.AssertGetHas(t, base, a, tc.wantBase, tc.wantBase != nil)
		})
	}
}

// AccountScan checks iteration over the account range of a cache on top of
// stored state. Keys outside of the range must not be returned, cached values
// win over stored ones and deleted accounts are skipped.
func (s *TestSuite) AccountScan(t *testing.T) {
	a, b, c, d := suiteAccount(1), suiteAccount(2), suiteAccount(3), suiteAccount(0xff)
	stored := []Op{
		SetOp(suiteConfig, []byte("conf")),
		SetOp(suiteAfter, []byte("other")),
		SetOp(a, []byte("a")),
		SetOp(c, []byte("c")),
	}
	start, end := suiteAccounts()

	cases := map[string]iterCase{
		"stored accounts only": {
			pre: stored,
			queries: []rangeQuery{
				{start, end, []Model{Pair(a, []byte("a")), Pair(c, []byte("c"))}},
			},
		},
		"cached accounts only": {
			child: []Op{SetOp(d, []byte("d")), SetOp(b, []byte("b")), SetOp(suiteConfig, []byte("conf"))},
			queries: []rangeQuery{
				{start, end, []Model{Pair(b, []byte("b")), Pair(d, []byte("d"))}},
			},
		},
		"cache merged over stored state": {
			pre:   stored,
			child: []Op{SetOp(b, []byte("b")), SetOp(c, []byte("c2")), SetOp(d, []byte("d"))},
			queries: []rangeQuery{
				{start, end, []Model{Pair(a, []byte("a")), Pair(b, []byte("b")), Pair(c, []byte("c2")), Pair(d, []byte("d"))}},
				{b, d, []Model{Pair(b, []byte("b")), Pair(c, []byte("c2"))}},
			},
		},
		"drained accounts are skipped": {
			pre:   stored,
			child: []Op{DelOp(a), SetOp(b, []byte("b")), DelOp(b)},
			queries: []rangeQuery{
				{start, end, []Model{Pair(c, []byte("c"))}},
				{start, c, nil},
			},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			base, cleanup := s.makeBase()
			defer cleanup()
			tc.verify(t, base)
		})
	}
}

func (s *TestSuite) AssertGetHas(t testing.TB, kv ReadOnlyKVStore, key, val []byte, has bool) {
	t.Helper()
	got, err := kv.Get(key)
	assert.Nil(t, err)
	assert.Equal(t, val, got)
	exists, err := kv.Has(key)
	assert.Nil(t, err)
	assert.Equal(t, has, exists)
}

// iterCase is a test case for iteration
type iterCase struct {
	pre     []Op
	child   []Op
	queries []rangeQuery
}

func (i iterCase) verify(t testing.TB, base CacheableKVStore) {
	t.Helper()
	for _, op := range i.pre {
		assert.Nil(t, op.Apply(base))
	}

	child := base.CacheWrap()
	for _, op := range i.child {
		assert.Nil(t, op.Apply(child))
	}

	for _, q := range i.queries {
		iter, err := child.Iterator(q.start, q.end)
		assert.Nil(t, err)

		for i := 0; i < len(q.expected); i++ {
			key, value, err := iter.Next()
			assert.Nil(t, err)
			if !bytes.Equal(q.expected[i].Key, key) {
				t.Fatalf("Expected key: %X\nGot keys %d = %X", q.expected[i].Key, i, key)
			}
			assert.Equal(t, q.expected[i].Value, value)
		}
		_, _, err = iter.Next()
		if !errors.ErrIteratorDone.Is(err) {
			t.Fatalf("Expected ErrIteratorDone, got %+v", err)
		}
		iter.Release()
	}
}

// rangeQuery checks the results of iteration
type rangeQuery struct {
	start    []byte
	end      []byte
	expected []Model
}
