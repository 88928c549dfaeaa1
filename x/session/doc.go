/*
Package session rotates the validator set at fixed block intervals.

Blocks are grouped into sessions of a configured length. At the first
block of every session the Ticker asks a Manager for the validator set
of the new session and, if it changed, hands the difference to
tendermint. Validators are identified towards tendermint by the finality
key of their session key bundle, with the same configured voting power
for everyone.

The keys in force are recorded with every member of the set, so that a
validator rotating its finality key is moved to the new key at the next
session.
*/
package session
