/*
Package errors implements the error kinds shared by all extensions.

Each error kind is registered once with a unique ABCI code using
Register(code, description). The code is returned to the client, which
can act on it. Extensions declare their own kinds next to their handlers,
for example x/validators registers ErrAlreadyQueued.

Create an error with ErrXyz.New("...") or Wrap(ErrXyz, "...") at the place
where it happens so that a stack trace is attached. Test for a kind with
ErrXyz.Is(err), which unwraps the error chain.

	%s   prints the error message
	%+v  prints the message followed by the stack trace
*/
package errors
