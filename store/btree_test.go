package store

import (
	"testing"
)

func makeBase() (CacheableKVStore, func()) {
	return MemStore(), func() {}
}

var suite = NewTestSuite(makeBase)

func TestBTreeTransaction(t *testing.T) {
	suite.Transaction(t)
}

func TestBTreeNestedCache(t *testing.T) {
	suite.NestedCache(t)
}

func TestBTreeAccountScan(t *testing.T) {
	suite.AccountScan(t)
}
