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
	"database/sql"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/guregu/null/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/keeper/entity"
	"github.com/tomoncle/keeper/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type gadget struct {
	bun.BaseModel `bun:"table:gadgets,alias:g"`
	entity.BaseEntity

	SomeProperty string
	Quantity     int       `bun:"qty"`
	Price        float64
	Enabled      bool
	DueAt        time.Time
	Note         null.String
	Secret       string `bun:"-"`
	hidden       string
}

var gadgetType = reflect.TypeOf(gadget{})

func TestResolveField(t *testing.T) {
	tests := []struct {
		name   string
		column string
		kind   Kind
	}{
		{"SomeProperty", "some_property", KindString},
		{"someproperty", "some_property", KindString},
		{"SOME_PROPERTY", "some_property", KindString},
		{"quantity", "qty", KindInt},
		{"qty", "qty", KindInt},
		{"price", "price", KindFloat},
		{"Enabled", "enabled", KindBool},
		{"dueAt", "due_at", KindTime},
		{"note", "note", KindString},
		{"status", "status", KindString},
		{"createdat", "created_at", KindTime},
		{"ID", "id", KindOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, ok := ResolveField(gadgetType, tt.name)
			require.True(t, ok)
			assert.Equal(t, tt.column, f.Column)
			assert.Equal(t, tt.kind, f.Kind)
		})
	}

	for _, name := range []string{"", "Secret", "hidden", "BaseModel", "NoSuchField"} {
		_, ok := ResolveField(gadgetType, name)
		assert.False(t, ok, name)
	}

	_, ok := ResolveField(reflect.TypeOf(&gadget{}), "Quantity")
	assert.True(t, ok)
}

func TestUnderscore(t *testing.T) {
	assert.Equal(t, "id", underscore("ID"))
	assert.Equal(t, "some_property", underscore("SomeProperty"))
	assert.Equal(t, "http_server", underscore("HTTPServer"))
	assert.Equal(t, "user_id", underscore("UserID"))
}

func TestBuild(t *testing.T) {
	field := func(name string) Field {
		f, ok := ResolveField(gadgetType, name)
		require.True(t, ok)
		return f
	}

	p, ok, err := Build(field("SomeProperty"), types.GreaterThan, "7")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, OpGt, p.Op)
	assert.Equal(t, LitInt, p.Literal.Kind)
	assert.EqualValues(t, 7, p.Literal.Int)

	p, _, err = Build(field("SomeProperty"), types.LessOrEqualThan, "2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, LitTime, p.Literal.Kind)
	assert.Equal(t, time.March, p.Literal.Time.Month())

	p, _, err = Build(field("DueAt"), types.GreaterOrEqualThan, "2024")
	assert.ErrorIs(t, err, ErrInvalidFilterValue)

	p, _, err = Build(field("Enabled"), types.Equals, "true")
	require.NoError(t, err)
	assert.Equal(t, true, p.Literal.Value())

	p, _, err = Build(field("Quantity"), types.Equals, " 12 ")
	require.NoError(t, err)
	assert.Equal(t, int64(12), p.Literal.Value())

	p, _, err = Build(field("Note"), types.Equals, "free text")
	require.NoError(t, err)
	assert.Equal(t, "free text", p.Literal.Value())

	_, ok, err = Build(field("Quantity"), types.Contains, "1")
	require.NoError(t, err)
	assert.False(t, ok)

	for _, tc := range []struct {
		name string
		op   types.SearchOperator
		raw  string
	}{
		{"SomeProperty", types.GreaterThan, "not-a-number-or-date"},
		{"SomeProperty", types.LessThan, ""},
		{"Enabled", types.Equals, "maybe"},
		{"Quantity", types.Equals, "seven"},
		{"Price", types.Equals, "cheap"},
		{"DueAt", types.Equals, "tomorrow"},
	} {
		_, _, err := Build(field(tc.name), tc.op, tc.raw)
		assert.True(t, errors.Is(err, ErrInvalidFilterValue), tc.name)
	}

	_, _, err = Build(field("Quantity"), types.SearchOperator(99), "1")
	assert.ErrorIs(t, err, ErrInvalidFilterValue)
}

func TestCompileSkipsUnknownFields(t *testing.T) {
	q, err := Compile(gadgetType, []types.SearchParameter{
		{Key: "Missing", Operator: types.GreaterThan, Value: "garbage"},
		{Key: "SomeProperty", Operator: types.Contains, Value: "abc"},
		{Key: "Quantity", Operator: types.Contains, Value: "abc"},
		{Key: "Quantity", Operator: types.LessThan, Value: "5", Order: types.Ascending},
	})
	require.NoError(t, err)
	assert.Len(t, q.Predicates, 2)
	assert.Equal(t, []string{"Missing", "Quantity"}, q.Skipped)
	assert.Equal(t, types.Ascending, q.Orders[1].Direction)
}

func TestCompileFailsOnUnparsableOrderingValue(t *testing.T) {
	_, err := Compile(gadgetType, []types.SearchParameter{
		{Key: "SomeProperty", Operator: types.Equals, Value: "x"},
		{Key: "SomeProperty", Operator: types.GreaterThan, Value: "not-a-number-or-date"},
	})
	assert.ErrorIs(t, err, ErrInvalidFilterValue)
}

func TestParseTime(t *testing.T) {
	for _, s := range []string{"2024-05-06", "2024-05-06 07:08:09", "2024-05-06T07:08:09Z", "05/06/2024"} {
		got, ok := ParseTime(s)
		assert.True(t, ok, s)
		assert.Equal(t, 2024, got.Year(), s)
	}
	_, ok := ParseTime("06.05.2024")
	assert.False(t, ok)
}

func newSQLiteDB(t *testing.T) *bun.DB {
	t.Helper()
	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:")
	require.NoError(t, err)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestApplyRendersSQL(t *testing.T) {
	db := newSQLiteDB(t)
	q, err := Compile(gadgetType, []types.SearchParameter{
		{Key: "SomeProperty", Operator: types.GreaterThan, Value: "7"},
		{Key: "Quantity", Operator: types.LessOrEqualThan, Value: "3"},
		{Key: "SomeProperty", Operator: types.Contains, Value: "50%_off"},
		{Key: "DueAt", Operator: types.LessThan, Value: "2024-01-01"},
	})
	require.NoError(t, err)

	sel := q.Apply(db.NewSelect().Model((*gadget)(nil)), dialect.SQLite)
	sel = q.ApplyOrder(sel)
	rendered := sel.String()

	assert.Contains(t, rendered, `CASE WHEN "g"."some_property" GLOB '[0-9+-]*' AND "g"."some_property" GLOB '*[0-9]'`)
	assert.Contains(t, rendered, `THEN CAST("g"."some_property" AS INTEGER) END > 7`)
	assert.Contains(t, rendered, `"g"."qty" <= 3`)
	assert.Contains(t, rendered, `"g"."some_property" LIKE '%50!%!_off%' ESCAPE '!'`)
	assert.Contains(t, rendered, `julianday("g"."due_at") < julianday(`)
	assert.Contains(t, rendered, `ORDER BY "g"."some_property" DESC`)
}

func TestTextColumnGuards(t *testing.T) {
	db := newSQLiteDB(t)
	q, err := Compile(gadgetType, []types.SearchParameter{
		{Key: "SomeProperty", Operator: types.GreaterOrEqualThan, Value: "2024-01-01"},
		{Key: "Note", Operator: types.Equals, Value: "5"},
	})
	require.NoError(t, err)
	rendered := q.Apply(db.NewSelect().Model((*gadget)(nil)), dialect.SQLite).String()
	assert.Contains(t, rendered, `CASE WHEN "g"."some_property" GLOB '[0-9][0-9][0-9][0-9]-[0-9][0-9]-[0-9][0-9]*' THEN julianday("g"."some_property") END >= julianday(`)
	assert.Contains(t, rendered, `"g"."note" = '5'`)

	assert.Equal(t, `?TableAlias.? ~ '^[-+]{0,1}[0-9]{1,18}$'`, integerGuard(dialect.PG))
	assert.Equal(t, `?TableAlias.? REGEXP '^[-+]{0,1}[0-9]{1,18}$'`, integerGuard(dialect.MySQL))
	assert.Equal(t, 4, strings.Count(integerGuard(dialect.SQLite), columnExpr))
	assert.Contains(t, dateGuard(dialect.PG), `?TableAlias.? ~ '^[0-9]{4}-`)
	assert.Contains(t, dateGuard(dialect.MySQL), `?TableAlias.? REGEXP '^[0-9]{4}-`)
	assert.Equal(t, 2, strings.Count(dateGuard(dialect.PG), "?"), "only the column placeholder")
}

func TestIntegerTypePerDialect(t *testing.T) {
	assert.Equal(t, "BIGINT", integerType(dialect.PG))
	assert.Equal(t, "SIGNED", integerType(dialect.MySQL))
	assert.Equal(t, "INTEGER", integerType(dialect.SQLite))

	lhs, rhs := timeOperands(Field{Kind: KindString}, dialect.PG)
	assert.Equal(t, "CAST(?TableAlias.? AS TIMESTAMP)", lhs)
	assert.Equal(t, "?", rhs)
	lhs, _ = timeOperands(Field{Kind: KindTime}, dialect.MySQL)
	assert.Equal(t, "?TableAlias.?", lhs)
}
