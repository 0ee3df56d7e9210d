package listing

import (
	"net/url"
	"slices"
)

// Cursor is the position of a list page: the opaque backend cursor being
// shown and the cursors of the pages visited before it.
type Cursor struct {
	Current string
	Stack   []string
}

// CursorFromValues rebuilds a cursor from request query values
func CursorFromValues(values url.Values) Cursor {
	return Cursor{
		Current: values.Get("cursor"),
		Stack:   slices.Clone(values["stack"]),
	}
}

// Values encodes the cursor as query values. The first page encodes to
// nothing.
func (c Cursor) Values() url.Values {
	values := url.Values{}
	if c.Current != "" {
		values.Set("cursor", c.Current)
	}
	for _, s := range c.Stack {
		values.Add("stack", s)
	}
	return values
}

// Advance returns the cursor positioned at next with the current cursor
// pushed on the stack.
func (c Cursor) Advance(next string) Cursor {
	stack := append(slices.Clone(c.Stack), c.Current)
	return Cursor{Current: next, Stack: stack}
}

// Back returns the cursor of the previous page
func (c Cursor) Back() (Cursor, bool) {
	if len(c.Stack) == 0 {
		return c, false
	}
	last := len(c.Stack) - 1
	return Cursor{Current: c.Stack[last], Stack: slices.Clone(c.Stack[:last])}, true
}

// IsFirst reports whether there is no page before this one
func (c Cursor) IsFirst() bool {
	return len(c.Stack) == 0
}
