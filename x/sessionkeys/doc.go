/*
Package sessionkeys keeps the consensus key bundle of every validator.

A bundle holds one key per consensus role: "aura" for block authoring and
"gran" for finality voting. The owner of a validator account registers
its bundle with SetKeysMsg and can drop it with PurgeKeysMsg, as long as
the validator is neither active nor queued for activation.

Other extensions read the bundles through a Registry. The validators
extension uses it to refuse validators without a complete bundle, the
session extension to find the finality key passed to tendermint.
*/
package sessionkeys
