package docstore

import (
	"fmt"
	"regexp"
	"strings"
)

// Match reports whether doc satisfies filter. An empty or nil filter matches
// every document.
//
// Supported operators: implicit equality, $eq, $ne, $gt, $gte, $lt, $lte,
// $in, $nin, $exists, $regex (with $options), $not, $size, and the logical
// $and, $or, $nor. Field names may be dotted paths into sub-documents; a
// field holding an array matches when any element does.
func Match(doc, filter Document) (bool, error) {
	for key, cond := range filter {
		ok, err := matchKey(doc, key, cond)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func matchKey(doc Document, key string, cond any) (bool, error) {
	switch key {
	case "$and", "$or", "$nor":
		subs, ok := asSlice(cond)
		if !ok || len(subs) == 0 {
			return false, &OperatorError{Operator: key, Message: "argument must be a non-empty array"}
		}
		return matchLogical(doc, key, subs)
	}
	if strings.HasPrefix(key, "$") {
		return false, unsupported(key)
	}

	values, found := lookupPath(doc, key)
	if ops, ok := operatorDocument(cond); ok {
		for op, arg := range ops {
			ok, err := matchOperator(values, found, op, arg, ops)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	}
	return matchEq(values, found, cond), nil
}

func matchLogical(doc Document, op string, subs []any) (bool, error) {
	for _, s := range subs {
		sub, ok := asDocument(s)
		if !ok {
			return false, &OperatorError{Operator: op, Message: "array elements must be documents"}
		}
		ok, err := Match(doc, sub)
		if err != nil {
			return false, err
		}
		switch op {
		case "$and":
			if !ok {
				return false, nil
			}
		case "$or":
			if ok {
				return true, nil
			}
		case "$nor":
			if ok {
				return false, nil
			}
		}
	}
	return op != "$or", nil
}

// operatorDocument returns cond as an operator document when every key is a
// $-operator.
func operatorDocument(cond any) (Document, bool) {
	d, ok := asDocument(cond)
	if !ok || len(d) == 0 {
		return nil, false
	}
	for k := range d {
		if !strings.HasPrefix(k, "$") {
			return nil, false
		}
	}
	return d, true
}

func matchOperator(values []any, found bool, op string, arg any, ops Document) (bool, error) {
	switch op {
	case "$eq":
		return matchEq(values, found, arg), nil
	case "$ne":
		return !matchEq(values, found, arg), nil
	case "$gt", "$gte", "$lt", "$lte":
		for _, v := range expand(values) {
			if !comparableKinds(v, arg) {
				continue
			}
			c := Compare(v, arg)
			if (op == "$gt" && c > 0) || (op == "$gte" && c >= 0) ||
				(op == "$lt" && c < 0) || (op == "$lte" && c <= 0) {
				return true, nil
			}
		}
		return false, nil
	case "$in", "$nin":
		set, ok := asSlice(arg)
		if !ok {
			return false, &OperatorError{Operator: op, Message: "argument must be an array"}
		}
		in := false
		for _, want := range set {
			if matchEq(values, found, want) {
				in = true
				break
			}
		}
		return in == (op == "$in"), nil
	case "$exists":
		want, ok := arg.(bool)
		if !ok {
			return false, &OperatorError{Operator: op, Message: "argument must be a boolean"}
		}
		return found == want, nil
	case "$regex":
		re, err := compileRegex(arg, ops["$options"])
		if err != nil {
			return false, err
		}
		for _, v := range expand(values) {
			if s, ok := v.(string); ok && re.MatchString(s) {
				return true, nil
			}
		}
		return false, nil
	case "$options":
		if _, ok := ops["$regex"]; !ok {
			return false, &OperatorError{Operator: op, Message: "requires $regex"}
		}
		return true, nil
	case "$size":
		n, ok := toInt64(arg)
		if !ok {
			return false, &OperatorError{Operator: op, Message: "argument must be an integer"}
		}
		for _, v := range values {
			if s, ok := asSlice(v); ok && int64(len(s)) == n {
				return true, nil
			}
		}
		return false, nil
	case "$not":
		inner, ok := operatorDocument(arg)
		if !ok {
			return false, &OperatorError{Operator: op, Message: "argument must be an operator document"}
		}
		for iop, iarg := range inner {
			ok, err := matchOperator(values, found, iop, iarg, inner)
			if err != nil {
				return false, err
			}
			if !ok {
				return true, nil
			}
		}
		return false, nil
	}
	return false, unsupported(op)
}

// matchEq implements equality with document-store semantics: a null target
// matches a missing field, and an array field matches when any element
// equals the target or the whole array does.
func matchEq(values []any, found bool, want any) bool {
	if want == nil && !found {
		return true
	}
	for _, v := range values {
		if Equal(v, want) {
			return true
		}
		if s, ok := asSlice(v); ok {
			for _, e := range s {
				if Equal(e, want) {
					return true
				}
			}
		}
	}
	return false
}

// expand flattens one level of array values so that ordering and regex
// operators test individual elements.
func expand(values []any) []any {
	var out []any
	for _, v := range values {
		if s, ok := asSlice(v); ok {
			out = append(out, s...)
			continue
		}
		out = append(out, v)
	}
	return out
}

func compileRegex(pattern, options any) (*regexp.Regexp, error) {
	if re, ok := pattern.(*regexp.Regexp); ok {
		return re, nil
	}
	s, ok := pattern.(string)
	if !ok {
		return nil, &OperatorError{Operator: "$regex", Message: fmt.Sprintf("pattern must be a string, got %T", pattern)}
	}
	if opts, ok := options.(string); ok && opts != "" {
		var flags strings.Builder
		for _, r := range opts {
			switch r {
			case 'i', 'm', 's':
				flags.WriteRune(r)
			default:
				return nil, &OperatorError{Operator: "$options", Message: fmt.Sprintf("unknown flag %q", r)}
			}
		}
		s = "(?" + flags.String() + ")" + s
	}
	re, err := regexp.Compile(s)
	if err != nil {
		return nil, &OperatorError{Operator: "$regex", Message: err.Error()}
	}
	return re, nil
}

// lookupPath resolves a dotted path. When a path segment crosses an array
// of documents, the lookup fans out across its elements. found reports
// whether the path exists anywhere in doc.
func lookupPath(doc Document, path string) (values []any, found bool) {
	current := []any{doc}
	for _, seg := range strings.Split(path, ".") {
		var next []any
		for _, c := range current {
			if d, ok := asDocument(c); ok {
				if v, ok := d[seg]; ok {
					next = append(next, v)
				}
				continue
			}
			if s, ok := asSlice(c); ok {
				for _, e := range s {
					if d, ok := asDocument(e); ok {
						if v, ok := d[seg]; ok {
							next = append(next, v)
						}
					}
				}
			}
		}
		if len(next) == 0 {
			return nil, false
		}
		current = next
	}
	return current, true
}

// getPath returns the single value at a dotted path, without fanning out
// over arrays.
func getPath(doc Document, path string) (any, bool) {
	var cur any = doc
	for _, seg := range strings.Split(path, ".") {
		d, ok := asDocument(cur)
		if !ok {
			return nil, false
		}
		cur, ok = d[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// setPath assigns value at a dotted path, creating intermediate documents.
func setPath(doc Document, path string, value any) error {
	segs := strings.Split(path, ".")
	cur := doc
	for _, seg := range segs[:len(segs)-1] {
		next, ok := cur[seg]
		if !ok || next == nil {
			d := Document{}
			cur[seg] = d
			cur = d
			continue
		}
		d, ok := next.(Document)
		if !ok {
			return &OperatorError{Operator: path, Message: fmt.Sprintf("cannot traverse %T", next)}
		}
		cur = d
	}
	cur[segs[len(segs)-1]] = value
	return nil
}

// unsetPath removes the value at a dotted path. It reports whether anything was removed.
func unsetPath(doc Document, path string) bool {
	segs := strings.Split(path, ".")
	cur := doc
	for _, seg := range segs[:len(segs)-1] {
		d, ok := cur[seg].(Document)
		if !ok {
			return false
		}
		cur = d
	}
	last := segs[len(segs)-1]
	if _, ok := cur[last]; !ok {
		return false
	}
	delete(cur, last)
	return true
}
