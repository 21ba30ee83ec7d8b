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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyColumnType(t *testing.T) {
	tests := []struct {
		dataType string
		want     ColumnTypeGroup
	}{
		{"varchar", ColumnText},
		{"NVARCHAR", ColumnText},
		{"character varying", ColumnText},
		{"bpchar", ColumnText},
		{"int", ColumnNumber},
		{"Double Precision", ColumnNumber},
		{"money", ColumnNumber},
		{"datetime2", ColumnDate},
		{"timestamp with time zone", ColumnDate},
		{"interval", ColumnDate},
		{"bytea", ColumnBinary},
		{"VarBinary", ColumnBinary},
		{"bit", ColumnBoolean},
		{"bool", ColumnBoolean},
		{"uniqueidentifier", ColumnLookup},
		{"UUID", ColumnLookup},
	}
	for _, tt := range tests {
		t.Run(tt.dataType, func(t *testing.T) {
			got, ok := ClassifyColumnType(tt.dataType)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyColumnTypeUnknown(t *testing.T) {
	for _, dataType := range []string{"", "geometry", "jsonb", " varchar", "xml"} {
		got, ok := ClassifyColumnType(dataType)
		assert.False(t, ok, dataType)
		assert.Empty(t, got)
	}
}

func TestEveryMemberClassifiesToItsGroup(t *testing.T) {
	for _, group := range ColumnTypeGroups {
		for _, name := range group.Members() {
			got, ok := ClassifyColumnType(strings.ToUpper(name))
			assert.True(t, ok, name)
			assert.Equal(t, group, got, name)
		}
	}
}

func TestMembersReturnsCopy(t *testing.T) {
	members := ColumnText.Members()
	members[0] = "mutated"
	got, ok := ClassifyColumnType("char")
	assert.True(t, ok)
	assert.Equal(t, ColumnText, got)
	assert.Equal(t, "char", ColumnText.Members()[0])
}
