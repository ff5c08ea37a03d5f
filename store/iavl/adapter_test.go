package iavl

import (
	"os"
	"testing"

	"github.com/iov-one/tokenswap/store"
	"github.com/iov-one/tokenswap/swaptest/assert"
)

// makeBase returns the base layer
//
// If you want to test a different kvstore implementation
// you can copy most of these tests and change makeBase.
// Once that passes, customize and extend as you wish
func makeBase() (store.CacheableKVStore, func()) {
	commit, close := makeCommitStore()
	return commit.Adapter(), close
}

func makeCommitStore() (*CommitStore, func()) {
	tmpDir, err := os.MkdirTemp("", "iavl-adapter-")
	if err != nil {
		panic(err)
	}
	commit, err := NewCommitStore(tmpDir, "base")
	if err != nil {
		panic(err)
	}
	close := func() {
		commit.Close()
		os.RemoveAll(tmpDir)
	}
	return commit, close
}

var suite = store.NewTestSuite(makeBase)

func TestIavlTransaction(t *testing.T) {
	suite.Transaction(t)
}

func TestIavlNestedCache(t *testing.T) {
	suite.NestedCache(t)
}

func TestIavlAccountScan(t *testing.T) {
	suite.AccountScan(t)
}

func TestCommitAndReload(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "iavl-commit-")
	assert.Nil(t, err)
	defer os.RemoveAll(tmpDir)

	commit, err := NewCommitStore(tmpDir, "state")
	assert.Nil(t, err)

	id, err := commit.LatestVersion()
	assert.Nil(t, err)
	assert.Equal(t, int64(0), id.Version)

	k, v := []byte("acct:alice"), []byte("lamports")
	cache := commit.CacheWrap()
	assert.Nil(t, cache.Set(k, v))
	assert.Nil(t, cache.Write())

	// Written but not committed data is not part of the committed state.
	got, err := commit.Get(k)
	assert.Nil(t, err)
	assert.Nil(t, got)

	first, err := commit.Commit()
	assert.Nil(t, err)
	assert.Equal(t, int64(1), first.Version)
	if len(first.Hash) == 0 {
		t.Fatal("commit must produce a root hash")
	}
	got, err = commit.Get(k)
	assert.Nil(t, err)
	assert.Equal(t, v, got)

	// A discarded change never reaches the tree.
	discarded := commit.CacheWrap()
	assert.Nil(t, discarded.Set([]byte("acct:bob"), []byte("nothing")))
	discarded.Discard()

	// Uncommitted changes are lost on reload.
	pending := commit.CacheWrap()
	assert.Nil(t, pending.Set([]byte("acct:carol"), []byte("pending")))
	assert.Nil(t, pending.Write())
	commit.Close()

	reopened, err := NewCommitStore(tmpDir, "state")
	assert.Nil(t, err)
	defer reopened.Close()

	id, err = reopened.LatestVersion()
	assert.Nil(t, err)
	assert.Equal(t, first.Version, id.Version)
	assert.Equal(t, first.Hash, id.Hash)

	got, err = reopened.Get(k)
	assert.Nil(t, err)
	assert.Equal(t, v, got)

	for _, key := range []string{"acct:bob", "acct:carol"} {
		got, err = reopened.Get([]byte(key))
		assert.Nil(t, err)
		assert.Nil(t, got)
	}
}
