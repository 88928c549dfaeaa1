/*
Package weavetest provides mocks and helpers for testing extensions.
*/
package weavetest
