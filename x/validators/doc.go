/*
Package validators manages admission to the validator set.

Validators are never added or removed directly. An administrator queues
changes with RegisterValidatorsMsg and RemoveValidatorMsg, and the
queued changes are applied at the next session boundary, when the
session extension asks the Reconciler for the next validator set.

A validator can be queued for addition only once its consensus key
bundle is complete, see KeyReadinessGate. A removal is refused if the
set would drop below the configured minimum number of authorities. The
Reconciler checks the minimum again when building the next set and
keeps the current one if the minimum is not met.

The first sessions of a chain are special. At session 0 the validators
queued at genesis become the initial set. During the following
bootstrap sessions the set is not changed at all.
*/
package validators
