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
	"fmt"
	"strconv"
)

// SearchOperator selects how a SearchParameter value is compared with a field.
type SearchOperator int

const (
	Contains SearchOperator = iota
	Equals
	LessThan
	GreaterThan
	LessOrEqualThan
	GreaterOrEqualThan
)

var searchOperators = []SearchOperator{Contains, Equals, LessThan, GreaterThan, LessOrEqualThan, GreaterOrEqualThan}

var searchOperatorNames = map[SearchOperator][2]string{
	Contains:           {"Contains", "field contains the value"},
	Equals:             {"Equals", "field equals the value"},
	LessThan:           {"LessThan", "field is less than the value"},
	GreaterThan:        {"GreaterThan", "field is greater than the value"},
	LessOrEqualThan:    {"LessOrEqualThan", "field is less than or equal to the value"},
	GreaterOrEqualThan: {"GreaterOrEqualThan", "field is greater than or equal to the value"},
}

func (o SearchOperator) IsValid() bool {
	_, ok := searchOperatorNames[o]
	return ok
}

func (o SearchOperator) Number() int {
	if !o.IsValid() {
		return IllegalValue
	}
	return int(o)
}

func (o SearchOperator) Name() string {
	if n, ok := searchOperatorNames[o]; ok {
		return n[0]
	}
	return IllegalName
}

func (o SearchOperator) Desc() string {
	if n, ok := searchOperatorNames[o]; ok {
		return n[1]
	}
	return IllegalDesc
}

func (o SearchOperator) String() string { return o.Name() }

// IsOrdering reports whether the operator compares with an ordering relation.
func (o SearchOperator) IsOrdering() bool {
	switch o {
	case LessThan, GreaterThan, LessOrEqualThan, GreaterOrEqualThan:
		return true
	}
	return false
}

// MarshalJSON writes the operator name.
func (o SearchOperator) MarshalJSON() ([]byte, error) { return json.Marshal(o.Name()) }

// UnmarshalJSON accepts either the operator name or its number.
func (o *SearchOperator) UnmarshalJSON(data []byte) error {
	v, err := unmarshalEnum(data, searchOperators)
	if err != nil {
		return fmt.Errorf("search operator: %w", err)
	}
	*o = v
	return nil
}

// SearchOrder is the sort direction attached to a SearchParameter.
// The zero value is Descending.
type SearchOrder int

const (
	Descending SearchOrder = iota
	Ascending
)

var searchOrders = []SearchOrder{Descending, Ascending}

func (o SearchOrder) IsValid() bool { return o == Descending || o == Ascending }

func (o SearchOrder) Number() int {
	if !o.IsValid() {
		return IllegalValue
	}
	return int(o)
}

func (o SearchOrder) Name() string {
	switch o {
	case Descending:
		return "Descending"
	case Ascending:
		return "Ascending"
	}
	return IllegalName
}

func (o SearchOrder) Desc() string { return o.Name() }

func (o SearchOrder) String() string { return o.Name() }

// SQL returns the ORDER BY keyword for the direction.
func (o SearchOrder) SQL() string {
	if o == Ascending {
		return "ASC"
	}
	return "DESC"
}

func (o SearchOrder) MarshalJSON() ([]byte, error) { return json.Marshal(o.Name()) }

func (o *SearchOrder) UnmarshalJSON(data []byte) error {
	v, err := unmarshalEnum(data, searchOrders)
	if err != nil {
		return fmt.Errorf("search order: %w", err)
	}
	*o = v
	return nil
}

func unmarshalEnum[E BaseEnum](data []byte, values []E) (E, error) {
	var zero E
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		if v, ok := EnumByName(values, name); ok {
			return v, nil
		}
		if n, err := strconv.Atoi(name); err == nil {
			if v, ok := EnumByNumber(values, n); ok {
				return v, nil
			}
		}
		return zero, fmt.Errorf("unknown value %q", name)
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return zero, err
	}
	if v, ok := EnumByNumber(values, n); ok {
		return v, nil
	}
	return zero, fmt.Errorf("unknown value %d", n)
}

// SearchParameter is a single (field, operator, value) filter.
type SearchParameter struct {
	Key      string         `json:"key"`
	Value    string         `json:"value"`
	Operator SearchOperator `json:"operator"`
	Order    SearchOrder    `json:"order"`
}

// SearchParameterRequest describes a filtered, paginated search.
type SearchParameterRequest struct {
	Page             int               `json:"page"`
	PageSize         int               `json:"page_size"`
	SearchParameters []SearchParameter `json:"search_parameters"`
	IncludeNotActive bool              `json:"include_not_active"`
}

// PageRequest converts the request paging fields into a PageRequest.
func (r *SearchParameterRequest) PageRequest() *PageRequest {
	return NewPageRequest(r.Page, r.PageSize)
}
