/*
Package gconf keeps package configurations in the ledger database.

A configuration is taken from the conf section of the genesis file, validated
and stored as JSON under a key derived from the owning package name. It is
validated again on every read, so a ledger never runs with a configuration it
would have refused at genesis.
*/
package gconf
