package query

import "github.com/CaliLuke/go-odm/docstore"

// Update accumulates field update operators. The zero value is ready to use
// and every method returns the receiver for chaining.
type Update struct {
	ops docstore.Document
}

// NewUpdate creates an empty update.
func NewUpdate() *Update {
	return &Update{}
}

// Set assigns value to field.
func (u *Update) Set(field string, value any) *Update {
	return u.add("$set", field, value)
}

// Unset removes field.
func (u *Update) Unset(field string) *Update {
	return u.add("$unset", field, "")
}

// Inc adds delta to a numeric field, creating it when missing.
func (u *Update) Inc(field string, delta any) *Update {
	return u.add("$inc", field, delta)
}

// Push appends value to an array field.
func (u *Update) Push(field string, value any) *Update {
	return u.add("$push", field, value)
}

// IsEmpty reports whether no operator has been added.
func (u *Update) IsEmpty() bool {
	return len(u.ops) == 0
}

// ToDocument renders the update document.
func (u *Update) ToDocument() docstore.Document {
	out := make(docstore.Document, len(u.ops))
	for op, fields := range u.ops {
		f := fields.(docstore.Document)
		cp := make(docstore.Document, len(f))
		for k, v := range f {
			cp[k] = v
		}
		out[op] = cp
	}
	return out
}

func (u *Update) add(op, field string, value any) *Update {
	if u.ops == nil {
		u.ops = docstore.Document{}
	}
	fields, ok := u.ops[op].(docstore.Document)
	if !ok {
		fields = docstore.Document{}
		u.ops[op] = fields
	}
	fields[field] = value
	return u
}
