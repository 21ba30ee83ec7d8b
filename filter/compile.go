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
	"fmt"
	"reflect"
	"strings"

	"github.com/tomoncle/keeper/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// Order is a requested sort on a resolved field.
type Order struct {
	Field     Field
	Direction types.SearchOrder
}

// Query is the compiled conjunction of a search request's predicates.
type Query struct {
	Predicates []Predicate
	Orders     []Order
	// Skipped holds the keys of parameters that did not apply to the record type.
	Skipped []string
}

// Compile resolves every parameter against typ and builds its predicate, in
// order. Unknown fields are skipped; an unparsable value aborts compilation.
func Compile(typ reflect.Type, params []types.SearchParameter) (*Query, error) {
	q := &Query{}
	for _, param := range params {
		field, ok := ResolveField(typ, param.Key)
		if !ok {
			q.Skipped = append(q.Skipped, param.Key)
			continue
		}
		p, ok, err := Build(field, param.Operator, param.Value)
		if err != nil {
			return nil, err
		}
		if !ok {
			q.Skipped = append(q.Skipped, param.Key)
			continue
		}
		q.Predicates = append(q.Predicates, p)
		q.Orders = append(q.Orders, Order{Field: field, Direction: param.Order})
	}
	return q, nil
}

// Apply adds the predicates as AND-ed WHERE clauses.
func (q *Query) Apply(sel *bun.SelectQuery, d dialect.Name) *bun.SelectQuery {
	for _, p := range q.Predicates {
		sel = p.Apply(sel, d)
	}
	return sel
}

// ApplyOrder adds the requested sorts, in order.
func (q *Query) ApplyOrder(sel *bun.SelectQuery) *bun.SelectQuery {
	for _, o := range q.Orders {
		sel = sel.OrderExpr("?TableAlias.? "+o.Direction.SQL(), bun.Ident(o.Field.Column))
	}
	return sel
}

const columnExpr = "?TableAlias.?"

// Apply compiles the predicate into a WHERE clause for dialect d. Text
// columns compared with an ordering or date literal only match rows whose
// value parses as that literal's type.
func (p Predicate) Apply(sel *bun.SelectQuery, d dialect.Name) *bun.SelectQuery {
	ident := bun.Ident(p.Field.Column)
	if p.Op == OpContains {
		return sel.Where(columnExpr+" LIKE ? ESCAPE '!'", ident, "%"+escapeLike(p.Literal.Str)+"%")
	}

	var lhs, rhs, guard string
	switch {
	case p.Literal.Kind == LitTime:
		lhs, rhs = timeOperands(p.Field, d)
		if p.Field.Kind != KindTime {
			guard = dateGuard(d)
		}
	case p.Op == OpEq, p.Field.Kind.Numeric():
		lhs, rhs = columnExpr, "?"
	default:
		lhs, rhs = fmt.Sprintf("CAST(%s AS %s)", columnExpr, integerType(d)), "?"
		guard = integerGuard(d)
	}

	args := make([]interface{}, 0, 5)
	if guard != "" {
		lhs = fmt.Sprintf("CASE WHEN %s THEN %s END", guard, lhs)
		for i := strings.Count(guard, columnExpr); i > 0; i-- {
			args = append(args, ident)
		}
	}
	args = append(args, ident, p.Literal.Value())
	return sel.Where(fmt.Sprintf("%s %s %s", lhs, p.Op, rhs), args...)
}

// integerGuard matches text holding an optionally signed integer of at most
// 18 digits, so the cast can neither fail nor overflow.
func integerGuard(d dialect.Name) string {
	switch d {
	case dialect.PG:
		return columnExpr + ` ~ '^[-+]{0,1}[0-9]{1,18}$'`
	case dialect.MySQL:
		return columnExpr + ` REGEXP '^[-+]{0,1}[0-9]{1,18}$'`
	}
	return columnExpr + " GLOB '[0-9+-]*' AND " +
		columnExpr + " GLOB '*[0-9]' AND " +
		"substr(" + columnExpr + ", 2) NOT GLOB '*[^0-9]*' AND " +
		"length(ltrim(" + columnExpr + ", '+-')) <= 18"
}

// dateGuard matches text holding an ISO date, optionally followed by a time
// of day and a zone. sqlite only checks the date prefix; julianday yields
// NULL for the rest.
func dateGuard(d dialect.Name) string {
	const iso = `'^[0-9]{4}-(0[1-9]|1[0-2])-(0[1-9]|[12][0-9]|3[01])` +
		`([ T][0-9]{2}:[0-9]{2}(:[0-9]{2}([.][0-9]+){0,1}){0,1}(Z|[+-][0-9]{2}(:{0,1}[0-9]{2}){0,1}){0,1}){0,1}$'`
	switch d {
	case dialect.PG:
		return columnExpr + " ~ " + iso
	case dialect.MySQL:
		return columnExpr + " REGEXP " + iso
	}
	return columnExpr + " GLOB '[0-9][0-9][0-9][0-9]-[0-9][0-9]-[0-9][0-9]*'"
}

// timeOperands returns the column and argument expressions used to compare
// a field with a date value. Text columns are re-parsed as timestamps.
func timeOperands(f Field, d dialect.Name) (string, string) {
	switch d {
	case dialect.SQLite:
		return "julianday(" + columnExpr + ")", "julianday(?)"
	case dialect.MySQL:
		if f.Kind == KindTime {
			return columnExpr, "?"
		}
		return "CAST(" + columnExpr + " AS DATETIME)", "?"
	default:
		if f.Kind == KindTime {
			return columnExpr, "?"
		}
		return "CAST(" + columnExpr + " AS TIMESTAMP)", "?"
	}
}

func integerType(d dialect.Name) string {
	switch d {
	case dialect.PG:
		return "BIGINT"
	case dialect.MySQL:
		return "SIGNED"
	}
	return "INTEGER"
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(s string) string { return likeEscaper.Replace(s) }
