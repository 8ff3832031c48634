package docstore

import (
	"fmt"
	"strings"
)

// ApplyUpdate applies an update specification to doc in place and reports
// whether doc changed. Supported operators: $set, $unset, $inc, $push.
// Updating _id is rejected.
func ApplyUpdate(doc, update Document) (bool, error) {
	if len(update) == 0 {
		return false, &OperatorError{Operator: "update", Message: "update document is empty"}
	}
	changed := false
	for op, arg := range update {
		fields, ok := asDocument(arg)
		if !ok {
			if !strings.HasPrefix(op, "$") {
				return false, &OperatorError{Operator: op, Message: "update documents may only contain operators"}
			}
			return false, &OperatorError{Operator: op, Message: "argument must be a document"}
		}
		for path, value := range fields {
			if path == IDKey || strings.HasPrefix(path, IDKey+".") {
				return false, &OperatorError{Operator: op, Message: "_id is immutable"}
			}
			c, err := applyFieldUpdate(doc, op, path, value)
			if err != nil {
				return false, err
			}
			changed = changed || c
		}
	}
	return changed, nil
}

func applyFieldUpdate(doc Document, op, path string, value any) (bool, error) {
	switch op {
	case "$set":
		old, ok := getPath(doc, path)
		if ok && Equal(old, value) {
			return false, nil
		}
		return true, setPath(doc, path, value)
	case "$unset":
		return unsetPath(doc, path), nil
	case "$inc":
		delta, ok := toFloat(value)
		if !ok {
			return false, &OperatorError{Operator: op, Message: fmt.Sprintf("%s: increment must be numeric", path)}
		}
		old, exists := getPath(doc, path)
		if !exists || old == nil {
			return delta != 0 || !exists, setPath(doc, path, value)
		}
		if oi, ok := toInt64(old); ok {
			if di, ok := toInt64(value); ok {
				return di != 0, setPath(doc, path, oi+di)
			}
		}
		of, ok := toFloat(old)
		if !ok {
			return false, &OperatorError{Operator: op, Message: fmt.Sprintf("%s: field is not numeric", path)}
		}
		return delta != 0, setPath(doc, path, of+delta)
	case "$push":
		old, exists := getPath(doc, path)
		if !exists || old == nil {
			return true, setPath(doc, path, []any{value})
		}
		s, ok := asSlice(old)
		if !ok {
			return false, &OperatorError{Operator: op, Message: fmt.Sprintf("%s: field is not an array", path)}
		}
		return true, setPath(doc, path, append(append([]any{}, s...), value))
	}
	return false, unsupported(op)
}

// upsertSeed builds the document inserted by an upserting update: the
// equality conditions of filter, to which the update is then applied.
func upsertSeed(filter Document) Document {
	seed := Document{}
	for k, v := range filter {
		if strings.HasPrefix(k, "$") {
			continue
		}
		if _, isOp := operatorDocument(v); isOp {
			if ops, _ := asDocument(v); ops != nil {
				if eq, ok := ops["$eq"]; ok {
					_ = setPath(seed, k, eq)
				}
			}
			continue
		}
		_ = setPath(seed, k, v)
	}
	return seed
}
