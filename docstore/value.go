package docstore

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Type ranks used to order values of different kinds, following the usual
// document-database convention: null < numbers < strings < documents <
// arrays < booleans < dates.
const (
	rankNull = iota
	rankNumber
	rankString
	rankDocument
	rankArray
	rankBool
	rankTime
	rankOther
)

func typeRank(v any) int {
	if v == nil {
		return rankNull
	}
	if _, ok := toFloat(v); ok {
		return rankNumber
	}
	switch v.(type) {
	case string:
		return rankString
	case Document:
		return rankDocument
	case bool:
		return rankBool
	case time.Time:
		return rankTime
	}
	if _, ok := asSlice(v); ok {
		return rankArray
	}
	return rankOther
}

// toFloat reports v as a float64 if it is any Go numeric kind.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// toInt64 reports v as an int64 if it is an integer kind that fits.
func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		if uint64(n) > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	}
	return 0, false
}

// asSlice returns the elements of any slice or array value except []byte.
func asSlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []byte:
		return nil, false
	case nil:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// asDocument returns v as a Document if it is any map with string keys.
func asDocument(v any) (Document, bool) {
	switch d := v.(type) {
	case Document:
		return d, true
	case nil:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(Document, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

// Equal reports whether two document values are equal. Numbers compare by
// value regardless of their Go type, documents and arrays compare deeply.
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if ai, ok := toInt64(a); ok {
		if bi, ok := toInt64(b); ok {
			return ai == bi
		}
	}
	if af, ok := toFloat(a); ok {
		bf, ok := toFloat(b)
		return ok && af == bf
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case time.Time:
		bv, ok := b.(time.Time)
		return ok && av.Equal(bv)
	case []byte:
		bv, ok := b.([]byte)
		return ok && string(av) == string(bv)
	}
	if ad, ok := asDocument(a); ok {
		bd, ok := asDocument(b)
		if !ok || len(ad) != len(bd) {
			return false
		}
		for k, v := range ad {
			w, ok := bd[k]
			if !ok || !Equal(v, w) {
				return false
			}
		}
		return true
	}
	if as, ok := asSlice(a); ok {
		bs, ok := asSlice(b)
		if !ok || len(as) != len(bs) {
			return false
		}
		for i := range as {
			if !Equal(as[i], bs[i]) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a, b)
}

// Compare orders two values. Values of different kinds are ordered by kind rank.
func Compare(a, b any) int {
	ra, rb := typeRank(a), typeRank(b)
	if ra != rb {
		return cmpInt(ra, rb)
	}
	switch ra {
	case rankNull:
		return 0
	case rankNumber:
		if ai, ok := toInt64(a); ok {
			if bi, ok := toInt64(b); ok {
				return cmpInt64(ai, bi)
			}
		}
		af, _ := toFloat(a)
		bf, _ := toFloat(b)
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
		return 0
	case rankString:
		return strings.Compare(a.(string), b.(string))
	case rankBool:
		ab, bb := a.(bool), b.(bool)
		switch {
		case ab == bb:
			return 0
		case !ab:
			return -1
		}
		return 1
	case rankTime:
		return a.(time.Time).Compare(b.(time.Time))
	case rankArray:
		as, _ := asSlice(a)
		bs, _ := asSlice(b)
		for i := 0; i < len(as) && i < len(bs); i++ {
			if c := Compare(as[i], bs[i]); c != 0 {
				return c
			}
		}
		return cmpInt(len(as), len(bs))
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

// comparable reports whether the ordering operators apply between a and b.
func comparableKinds(a, b any) bool {
	ra, rb := typeRank(a), typeRank(b)
	return ra == rb && ra != rankNull && ra != rankDocument && ra != rankOther
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// KeyOf returns a canonical string for an identity value so that the same
// logical id always maps to the same key, whatever its Go numeric type.
func KeyOf(id any) (string, error) {
	if id == nil {
		return "", ErrMissingID
	}
	if i, ok := toInt64(id); ok {
		return "n:" + strconv.FormatInt(i, 10), nil
	}
	if f, ok := toFloat(id); ok {
		if f == math.Trunc(f) && math.Abs(f) < 1<<63 {
			return "n:" + strconv.FormatInt(int64(f), 10), nil
		}
		return "n:" + strconv.FormatFloat(f, 'g', -1, 64), nil
	}
	switch v := id.(type) {
	case string:
		return "s:" + v, nil
	case []byte:
		return "b:" + string(v), nil
	case bool:
		return "t:" + strconv.FormatBool(v), nil
	case time.Time:
		return "d:" + v.UTC().Format(time.RFC3339Nano), nil
	case fmt.Stringer:
		return "s:" + v.String(), nil
	}
	return "", &OperatorError{Operator: IDKey, Message: fmt.Sprintf("unsupported identity type %T", id)}
}
