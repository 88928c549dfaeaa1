package errors

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Append clubs together all provided errors. Nil values are ignored. If
// there is nothing to report nil is returned, a single error is returned
// as it is.
//
// The result carries the ABCI code of the first collected error and is
// of every kind any of its members is.
func Append(errs ...error) error {
	var all []error
	for _, err := range errs {
		if isNilErr(err) {
			continue
		}
		if u, ok := err.(unpacker); ok {
			all = append(all, u.Unpack()...)
		} else {
			all = append(all, err)
		}
	}
	switch len(all) {
	case 0:
		return nil
	case 1:
		return all[0]
	}
	return multiErr(all)
}

type multiErr []error

func (m multiErr) Error() string {
	points := make([]string, len(m))
	for i, err := range m {
		points[i] = fmt.Sprintf("* %s", err)
	}
	return fmt.Sprintf("%d errors occurred:\n\t%s\n", len(m), strings.Join(points, "\n\t"))
}

// Unpack returns all clubbed errors.
func (m multiErr) Unpack() []error {
	return m
}

// ABCICode returns the code of the first error.
func (m multiErr) ABCICode() uint32 {
	return abciCode(m[0])
}

// StackTrace returns the stack of the first error.
func (m multiErr) StackTrace() errors.StackTrace {
	return stackTrace(m[0])
}

type unpacker interface {
	Unpack() []error
}

// Field returns an error that wraps the original one with the name of the
// field it is about. It returns nil if err is nil.
//
// Use Go naming for the field name. For nested fields use the dot
// notation, for example Validators.2 for the third element of a list.
func Field(fieldName string, err error, description string, args ...interface{}) error {
	if isNilErr(err) {
		return nil
	}
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}
	if len(args) > 0 {
		description = fmt.Sprintf(description, args...)
	}
	return &fieldError{
		parent: err,
		field:  fieldName,
		desc:   description,
	}
}

// AppendField is a shortcut for Append(errs, Field(fieldName, err, "")).
func AppendField(errs error, fieldName string, err error) error {
	return Append(errs, Field(fieldName, err, ""))
}

type fieldError struct {
	parent error
	field  string
	desc   string
}

func (err *fieldError) Error() string {
	if err.desc == "" {
		return fmt.Sprintf("field %q: %s", err.field, err.parent)
	}
	return fmt.Sprintf("field %q: %s: %s", err.field, err.desc, err.parent)
}

func (err *fieldError) Cause() error {
	return err.parent
}

// Field returns the name of the field this error was created for.
func (err *fieldError) Field() string {
	return err.field
}

// FieldErrors returns all errors created for the given field name.
func FieldErrors(err error, fieldName string) []error {
	if isNilErr(err) {
		return nil
	}
	var res []error
	for err != nil {
		if f, ok := err.(*fieldError); ok && f.field == fieldName {
			return append(res, err)
		}
		if u, ok := err.(unpacker); ok {
			for _, e := range u.Unpack() {
				res = append(res, FieldErrors(e, fieldName)...)
			}
			return res
		}
		c, ok := err.(causer)
		if !ok {
			break
		}
		err = c.Cause()
	}
	return res
}
