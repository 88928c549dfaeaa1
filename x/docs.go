/*
Package x holds what the extensions share: the Authenticator abstraction
used by every handler to learn who authorized a transaction.

The sub-packages are the extensions themselves. x/validators manages the
validator set, x/session rotates it at session boundaries, x/sessionkeys
keeps the consensus keys of every validator, x/origin authenticates the
transaction origin and x/utils provides the common decorators.
*/
package x
