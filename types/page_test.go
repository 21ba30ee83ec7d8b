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

package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageRequestDefaults(t *testing.T) {
	p := NewPageRequest(0, -3)
	assert.Equal(t, DefaultPage, p.GetPage())
	assert.Equal(t, DefaultPageSize, p.GetPageSize())
	assert.Equal(t, 0, p.GetOffset())

	p = NewPageRequest(3, 25)
	assert.Equal(t, 50, p.GetOffset())
}

func TestPaginatedResponseEchoesWindow(t *testing.T) {
	page := NewPaginatedResponse[struct{}](NewPageRequest(2, 2))
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 2, page.PageSize)
	assert.Equal(t, 0, page.TotalCount)
	assert.NotNil(t, page.Data)
	assert.Equal(t, 0, page.TotalPages())

	page.TotalCount = 5
	assert.Equal(t, 3, page.TotalPages())
}

func TestSearchParameterJSON(t *testing.T) {
	var p SearchParameter
	require.NoError(t, json.Unmarshal([]byte(`{"key":"Name","value":"7","operator":"greaterthan"}`), &p))
	assert.Equal(t, GreaterThan, p.Operator)
	assert.Equal(t, Descending, p.Order)

	require.NoError(t, json.Unmarshal([]byte(`{"key":"Name","operator":1,"order":"Ascending"}`), &p))
	assert.Equal(t, Equals, p.Operator)
	assert.Equal(t, Ascending, p.Order)

	assert.Error(t, json.Unmarshal([]byte(`{"operator":"Between"}`), &p))

	out, err := json.Marshal(SearchParameter{Key: "k", Operator: LessOrEqualThan})
	require.NoError(t, err)
	assert.JSONEq(t, `{"key":"k","value":"","operator":"LessOrEqualThan","order":"Descending"}`, string(out))
}

func TestSearchOperatorEnum(t *testing.T) {
	assert.True(t, GreaterOrEqualThan.IsOrdering())
	assert.False(t, Equals.IsOrdering())
	assert.Equal(t, IllegalValue, SearchOperator(42).Number())
	assert.Equal(t, IllegalName, SearchOperator(42).Name())
	assert.Equal(t, "DESC", Descending.SQL())
	assert.Equal(t, "ASC", Ascending.SQL())
}

func TestJSONColumn(t *testing.T) {
	col := NewJSON([]string{"a", "b"})
	v, err := col.Value()
	require.NoError(t, err)
	assert.Equal(t, `["a","b"]`, v)

	var back JSON[[]string]
	require.NoError(t, back.Scan([]byte(`["c"]`)))
	assert.Equal(t, []string{"c"}, back.V)
	require.NoError(t, back.Scan(nil))
	assert.Nil(t, back.V)
	assert.Error(t, back.Scan(12))
}
