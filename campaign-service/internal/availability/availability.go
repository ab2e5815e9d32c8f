// Package availability reconciles loosely typed item counters into
// non-negative counts.
package availability

import (
	"fmt"
	"math"
	"reflect"
	"strings"
)

// Sources is a prioritized list of field names that may carry the same
// logical counter. The first one present wins; values are never merged.
type Sources []string

// Lookup returns the value of the first source present in fields with a
// non-nil value, or nil.
func (s Sources) Lookup(fields map[string]any) any {
	for _, name := range s {
		if v, ok := fields[name]; ok && v != nil {
			return v
		}
	}
	return nil
}

// Counts is the reconciled view of a campaign's inventory.
type Counts struct {
	Total     int `json:"total"`
	Consumed  int `json:"consumed"`
	Available int `json:"available"`
}

// Reconcile reads the total and consumed counters from fields and derives
// the available count.
func Reconcile(fields map[string]any, total, consumed Sources) Counts {
	t := Count(total.Lookup(fields))
	c := Count(consumed.Lookup(fields))
	return Counts{Total: t, Consumed: c, Available: Available(t, c)}
}

// Consume adds n consumed items on top of the reconciled counters. It is
// for quantities tracked apart from the source fields, such as adoptions
// recorded locally, so they are added rather than matched as alternates.
func (c Counts) Consume(n int) Counts {
	if n > 0 {
		c.Consumed += n
		c.Available = Available(c.Total, c.Consumed)
	}
	return c
}

// Available is total minus consumed, floored at zero.
func Available(total, consumed int) int {
	if n := total - consumed; n > 0 {
		return n
	}
	return 0
}

// Count normalizes a raw counter: nil is 0, a collection counts its
// elements, anything else is read as a leading integer from its text.
// Unreadable and negative values count as 0, as do values beyond the
// range of int.
func Count(v any) int {
	if v == nil {
		return 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len()
	case reflect.Pointer:
		if rv.IsNil() {
			return 0
		}
		return Count(rv.Elem().Interface())
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || f < 0 || f >= float64(math.MaxInt) {
			return 0
		}
		return int(f)
	}
	n, ok := leadingInt(strings.TrimSpace(fmt.Sprint(v)))
	if !ok || n < 0 {
		return 0
	}
	return n
}

// leadingInt parses an optional sign followed by digits, ignoring anything
// after the first non-digit ("12.5" reads as 12).
func leadingInt(s string) (int, bool) {
	i, neg := 0, false
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		neg = s[i] == '-'
		i++
	}
	start := i
	n := 0
	for ; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		d := int(s[i] - '0')
		if n > (math.MaxInt-d)/10 {
			return 0, false
		}
		n = n*10 + d
	}
	if i == start {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}
