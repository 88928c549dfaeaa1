/*
Package gconf keeps the configuration of each extension inside the
application state.

Every extension owns a single configuration object saved under a key
derived from the extension name. The initial value is read from the "conf"
section of the genesis file and validated before it is written. Handlers
load it from the store they are given, so that all nodes always agree on
the values in use.
*/
package gconf
