package docstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// collectionSource loads every document of a collection, for $lookup.
type collectionSource func(ctx context.Context, collection string) ([]Document, error)

// runPipeline evaluates an aggregation pipeline over docs.
//
// Supported stages: $match, $sort, $skip, $limit, $project, $count,
// $lookup, $unwind, $group. Group accumulators: $sum, $first, $last,
// $push, $addToSet. Expressions: "$path" field references (fanning out over
// arrays of documents), literals, and {$first|$last|$size: expr}.
func runPipeline(ctx context.Context, docs []Document, pipeline []Document, load collectionSource) ([]Document, error) {
	for i, stage := range pipeline {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(stage) != 1 {
			return nil, &OperatorError{Operator: fmt.Sprintf("stage %d", i), Message: "a stage must have exactly one operator"}
		}
		var err error
		for op, arg := range stage {
			docs, err = runStage(ctx, docs, op, arg, load)
		}
		if err != nil {
			return nil, err
		}
	}
	return docs, nil
}

func runStage(ctx context.Context, docs []Document, op string, arg any, load collectionSource) ([]Document, error) {
	switch op {
	case "$match":
		filter, ok := asDocument(arg)
		if !ok {
			return nil, &OperatorError{Operator: op, Message: "argument must be a document"}
		}
		return filterDocs(docs, filter)
	case "$sort":
		keys, err := sortKeys(arg)
		if err != nil {
			return nil, err
		}
		sortDocs(docs, keys)
		return docs, nil
	case "$skip":
		n, ok := toInt64(arg)
		if !ok || n < 0 {
			return nil, &OperatorError{Operator: op, Message: "argument must be a non-negative integer"}
		}
		return skipLimit(docs, n, 0), nil
	case "$limit":
		n, ok := toInt64(arg)
		if !ok || n <= 0 {
			return nil, &OperatorError{Operator: op, Message: "argument must be a positive integer"}
		}
		return skipLimit(docs, 0, n), nil
	case "$project":
		spec, ok := asDocument(arg)
		if !ok {
			return nil, &OperatorError{Operator: op, Message: "argument must be a document"}
		}
		out := make([]Document, 0, len(docs))
		for _, d := range docs {
			p, err := project(d, spec)
			if err != nil {
				return nil, err
			}
			out = append(out, p)
		}
		return out, nil
	case "$count":
		name, ok := arg.(string)
		if !ok || name == "" || strings.HasPrefix(name, "$") {
			return nil, &OperatorError{Operator: op, Message: "argument must be a field name"}
		}
		if len(docs) == 0 {
			return nil, nil
		}
		return []Document{{name: int64(len(docs))}}, nil
	case "$lookup":
		return lookupStage(ctx, docs, arg, load)
	case "$unwind":
		path, ok := arg.(string)
		if !ok || !strings.HasPrefix(path, "$") {
			return nil, &OperatorError{Operator: op, Message: "argument must be a $field path"}
		}
		return unwind(docs, path[1:]), nil
	case "$group":
		spec, ok := asDocument(arg)
		if !ok {
			return nil, &OperatorError{Operator: op, Message: "argument must be a document"}
		}
		return group(docs, spec)
	}
	return nil, unsupported(op)
}

func filterDocs(docs []Document, filter Document) ([]Document, error) {
	out := docs[:0:0]
	for _, d := range docs {
		ok, err := Match(d, filter)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, d)
		}
	}
	return out, nil
}

// sortKeys accepts either an ordered []SortField or a single-key document.
// Multi-key documents are rejected because Go maps carry no key order.
func sortKeys(arg any) ([]SortField, error) {
	switch v := arg.(type) {
	case []SortField:
		return v, nil
	case SortField:
		return []SortField{v}, nil
	}
	d, ok := asDocument(arg)
	if !ok || len(d) == 0 {
		return nil, &OperatorError{Operator: "$sort", Message: "argument must be a document or []SortField"}
	}
	if len(d) > 1 {
		return nil, &OperatorError{Operator: "$sort", Message: "multi-key sort needs an ordered []SortField"}
	}
	for field, dir := range d {
		n, ok := toInt64(dir)
		if !ok || (n != 1 && n != -1) {
			return nil, &OperatorError{Operator: "$sort", Message: fmt.Sprintf("%s: direction must be 1 or -1", field)}
		}
		return []SortField{{Field: field, Desc: n == -1}}, nil
	}
	return nil, nil
}

func sortDocs(docs []Document, keys []SortField) {
	if len(keys) == 0 {
		return
	}
	sort.SliceStable(docs, func(i, j int) bool {
		for _, k := range keys {
			a, _ := getPath(docs[i], k.Field)
			b, _ := getPath(docs[j], k.Field)
			c := Compare(a, b)
			if c == 0 {
				continue
			}
			if k.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

func skipLimit(docs []Document, skip, limit int64) []Document {
	if skip > 0 {
		if skip >= int64(len(docs)) {
			return nil
		}
		docs = docs[skip:]
	}
	if limit > 0 && limit < int64(len(docs)) {
		docs = docs[:limit]
	}
	return docs
}

// project applies an inclusion or exclusion projection. _id is kept unless
// excluded explicitly. String values of the form "$path" compute a field.
func project(doc Document, spec Document) (Document, error) {
	include, exclude := false, false
	for k, v := range spec {
		if k == IDKey {
			continue
		}
		if isProjectionExpr(v) {
			include = true
			continue
		}
		if truthy(v) {
			include = true
		} else {
			exclude = true
		}
	}
	if include && exclude {
		return nil, &OperatorError{Operator: "$project", Message: "cannot mix inclusion and exclusion"}
	}

	var out Document
	if exclude {
		out = copyShallow(doc)
		for k, v := range spec {
			if !truthy(v) {
				unsetPath(out, k)
			}
		}
		return out, nil
	}

	out = Document{}
	if v, ok := spec[IDKey]; !ok || truthy(v) {
		if id, ok := doc[IDKey]; ok {
			out[IDKey] = id
		}
	}
	for k, v := range spec {
		if k == IDKey {
			continue
		}
		if isProjectionExpr(v) {
			if err := setPath(out, k, evalExpr(doc, v)); err != nil {
				return nil, err
			}
			continue
		}
		if val, ok := getPath(doc, k); ok {
			if err := setPath(out, k, val); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// isProjectionExpr reports whether a projection value computes a field
// rather than including or excluding one.
func isProjectionExpr(v any) bool {
	if _, ok := v.(string); ok {
		return true
	}
	_, ok := asDocument(v)
	return ok
}

func truthy(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case nil:
		return false
	}
	if f, ok := toFloat(v); ok {
		return f != 0
	}
	return true
}

func copyShallow(d Document) Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

func lookupStage(ctx context.Context, docs []Document, arg any, load collectionSource) ([]Document, error) {
	spec, ok := asDocument(arg)
	if !ok {
		return nil, &OperatorError{Operator: "$lookup", Message: "argument must be a document"}
	}
	from, _ := spec["from"].(string)
	local, _ := spec["localField"].(string)
	foreign, _ := spec["foreignField"].(string)
	as, _ := spec["as"].(string)
	if from == "" || local == "" || foreign == "" || as == "" {
		return nil, &OperatorError{Operator: "$lookup", Message: "from, localField, foreignField and as are required"}
	}
	others, err := load(ctx, from)
	if err != nil {
		return nil, err
	}

	out := make([]Document, 0, len(docs))
	for _, d := range docs {
		localVals, found := lookupPath(d, local)
		if !found {
			localVals = []any{nil}
		}
		matched := []any{}
		for _, o := range others {
			fv, ffound := lookupPath(o, foreign)
			if !ffound {
				fv = []any{nil}
			}
			if anyEqual(expand(localVals), expand(fv)) {
				matched = append(matched, o)
			}
		}
		nd := copyShallow(d)
		if err := setPath(nd, as, matched); err != nil {
			return nil, err
		}
		out = append(out, nd)
	}
	return out, nil
}

func anyEqual(a, b []any) bool {
	for _, x := range a {
		for _, y := range b {
			if Equal(x, y) {
				return true
			}
		}
	}
	return false
}

func unwind(docs []Document, path string) []Document {
	var out []Document
	for _, d := range docs {
		v, ok := getPath(d, path)
		if !ok {
			continue
		}
		s, ok := asSlice(v)
		if !ok {
			out = append(out, d)
			continue
		}
		for _, e := range s {
			nd := copyShallow(d)
			_ = setPath(nd, path, e)
			out = append(out, nd)
		}
	}
	return out
}

type groupState struct {
	id     any
	fields Document
	sets   map[string][]any
}

func group(docs []Document, spec Document) ([]Document, error) {
	idExpr, ok := spec[IDKey]
	if !ok {
		return nil, &OperatorError{Operator: "$group", Message: "_id is required"}
	}
	type accumulator struct {
		field string
		op    string
		expr  any
	}
	var accs []accumulator
	for field, v := range spec {
		if field == IDKey {
			continue
		}
		d, ok := asDocument(v)
		if !ok || len(d) != 1 {
			return nil, &OperatorError{Operator: "$group", Message: fmt.Sprintf("%s: accumulator must be a single-operator document", field)}
		}
		for op, expr := range d {
			switch op {
			case "$sum", "$first", "$last", "$push", "$addToSet":
			default:
				return nil, unsupported(op)
			}
			accs = append(accs, accumulator{field: field, op: op, expr: expr})
		}
	}
	sort.Slice(accs, func(i, j int) bool { return accs[i].field < accs[j].field })

	var order []*groupState
	for _, d := range docs {
		id := evalExpr(d, idExpr)
		var st *groupState
		for _, g := range order {
			if Equal(g.id, id) {
				st = g
				break
			}
		}
		if st == nil {
			st = &groupState{id: id, fields: Document{}, sets: map[string][]any{}}
			order = append(order, st)
		}
		for _, a := range accs {
			v := evalExpr(d, a.expr)
			switch a.op {
			case "$sum":
				prev, _ := st.fields[a.field]
				st.fields[a.field] = addNumbers(prev, v)
			case "$first":
				if _, seen := st.fields[a.field]; !seen {
					st.fields[a.field] = v
				}
			case "$last":
				st.fields[a.field] = v
			case "$push":
				st.sets[a.field] = append(st.sets[a.field], v)
			case "$addToSet":
				dup := false
				for _, e := range st.sets[a.field] {
					if Equal(e, v) {
						dup = true
						break
					}
				}
				if !dup {
					st.sets[a.field] = append(st.sets[a.field], v)
				}
			}
		}
	}

	out := make([]Document, 0, len(order))
	for _, g := range order {
		d := Document{IDKey: g.id}
		for _, a := range accs {
			switch a.op {
			case "$push", "$addToSet":
				vals := g.sets[a.field]
				if vals == nil {
					vals = []any{}
				}
				d[a.field] = vals
			default:
				d[a.field] = g.fields[a.field]
			}
		}
		out = append(out, d)
	}
	return out, nil
}

func addNumbers(a, b any) any {
	if a == nil {
		a = int64(0)
	}
	if _, ok := toFloat(b); !ok {
		return a
	}
	if ai, ok := toInt64(a); ok {
		if bi, ok := toInt64(b); ok {
			return ai + bi
		}
	}
	af, _ := toFloat(a)
	bf, _ := toFloat(b)
	return af + bf
}

// evalExpr evaluates a pipeline expression against doc.
func evalExpr(doc Document, expr any) any {
	switch e := expr.(type) {
	case string:
		if strings.HasPrefix(e, "$") {
			vals, found := lookupPath(doc, e[1:])
			if !found {
				return nil
			}
			if len(vals) == 1 && !crossesArray(doc, e[1:]) {
				return vals[0]
			}
			return vals
		}
		return e
	}
	d, ok := asDocument(expr)
	if !ok {
		return expr
	}
	if len(d) == 1 {
		for op, arg := range d {
			switch op {
			case "$first", "$last":
				s, ok := asSlice(evalExpr(doc, arg))
				if !ok || len(s) == 0 {
					return nil
				}
				if op == "$first" {
					return s[0]
				}
				return s[len(s)-1]
			case "$size":
				s, _ := asSlice(evalExpr(doc, arg))
				return int64(len(s))
			}
		}
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = evalExpr(doc, v)
	}
	return out
}

// crossesArray reports whether resolving path passes through an array of
// documents, in which case the expression value is the array of results.
func crossesArray(doc Document, path string) bool {
	segs := strings.Split(path, ".")
	var cur any = doc
	for i, seg := range segs {
		d, ok := asDocument(cur)
		if !ok {
			return false
		}
		cur = d[seg]
		if i < len(segs)-1 {
			if _, isArr := asSlice(cur); isArr {
				return true
			}
		}
	}
	return false
}
