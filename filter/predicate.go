/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package filter

import (
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/tomoncle/keeper/types"
)

// ErrInvalidFilterValue is returned when a search value cannot be parsed as
// the type its operator compares with.
var ErrInvalidFilterValue = errors.New("invalid filter value")

// Op is the predicate node tag.
type Op int

const (
	OpContains Op = iota
	OpEq
	OpLt
	OpGt
	OpLe
	OpGe
)

var opSQL = map[Op]string{
	OpEq: "=",
	OpLt: "<",
	OpGt: ">",
	OpLe: "<=",
	OpGe: ">=",
}

func (o Op) String() string {
	if o == OpContains {
		return "LIKE"
	}
	return opSQL[o]
}

func opFor(operator types.SearchOperator) (Op, bool) {
	switch operator {
	case types.Contains:
		return OpContains, true
	case types.Equals:
		return OpEq, true
	case types.LessThan:
		return OpLt, true
	case types.GreaterThan:
		return OpGt, true
	case types.LessOrEqualThan:
		return OpLe, true
	case types.GreaterOrEqualThan:
		return OpGe, true
	}
	return 0, false
}

// LiteralKind tags the parsed comparison value.
type LiteralKind int

const (
	LitString LiteralKind = iota
	LitInt
	LitFloat
	LitBool
	LitTime
)

// Literal is a typed comparison value.
type Literal struct {
	Kind  LiteralKind
	Str   string
	Int   int64
	Float float64
	Bool  bool
	Time  time.Time
}

// Value returns the literal as a query argument.
func (l Literal) Value() interface{} {
	switch l.Kind {
	case LitInt:
		return l.Int
	case LitFloat:
		return l.Float
	case LitBool:
		return l.Bool
	case LitTime:
		return l.Time
	}
	return l.Str
}

// Predicate is one typed condition over one field.
type Predicate struct {
	Op      Op
	Field   Field
	Literal Literal
}

// layouts accepted for date values, tried in order.
var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006",
}

// ParseTime parses s with the accepted date layouts. Values without a zone are UTC.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// Build turns a single (field, operator, raw value) triple into a predicate.
// ok is false when the parameter does not apply to the field and should be
// skipped. Unparsable values under typed comparisons fail with
// ErrInvalidFilterValue.
func Build(field Field, operator types.SearchOperator, raw string) (p Predicate, ok bool, err error) {
	op, known := opFor(operator)
	if !known {
		return Predicate{}, false, errors.Wrapf(ErrInvalidFilterValue, "unknown operator %d", int(operator))
	}
	p = Predicate{Op: op, Field: field}
	switch op {
	case OpContains:
		if field.Kind != KindString {
			return Predicate{}, false, nil
		}
		p.Literal = Literal{Kind: LitString, Str: raw}
	case OpEq:
		lit, err := equalityLiteral(field, raw)
		if err != nil {
			return Predicate{}, false, err
		}
		p.Literal = lit
	default:
		lit, err := orderingLiteral(field, raw)
		if err != nil {
			return Predicate{}, false, err
		}
		p.Literal = lit
	}
	return p, true, nil
}

func equalityLiteral(field Field, raw string) (Literal, error) {
	s := strings.TrimSpace(raw)
	switch field.Kind {
	case KindBool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return Literal{}, invalidValue(field, raw, "boolean")
		}
		return Literal{Kind: LitBool, Bool: b}, nil
	case KindInt:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return Literal{}, invalidValue(field, raw, "integer")
		}
		return Literal{Kind: LitInt, Int: n}, nil
	case KindFloat:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Literal{}, invalidValue(field, raw, "number")
		}
		return Literal{Kind: LitFloat, Float: f}, nil
	case KindTime:
		t, ok := ParseTime(s)
		if !ok {
			return Literal{}, invalidValue(field, raw, "date")
		}
		return Literal{Kind: LitTime, Time: t}, nil
	}
	return Literal{Kind: LitString, Str: raw}, nil
}

func orderingLiteral(field Field, raw string) (Literal, error) {
	s := strings.TrimSpace(raw)
	if field.Kind != KindTime {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return Literal{Kind: LitInt, Int: n}, nil
		}
	}
	if t, ok := ParseTime(s); ok {
		return Literal{Kind: LitTime, Time: t}, nil
	}
	return Literal{}, invalidValue(field, raw, "integer or date")
}

func invalidValue(field Field, raw, want string) error {
	return errors.Wrapf(ErrInvalidFilterValue, "%s: %q is not a valid %s", field.GoName, raw, want)
}
