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

import "strings"

// ColumnTypeGroup is the semantic family of a database column type.
type ColumnTypeGroup string

const (
	ColumnText    ColumnTypeGroup = "Text"
	ColumnNumber  ColumnTypeGroup = "Number"
	ColumnDate    ColumnTypeGroup = "Date"
	ColumnBinary  ColumnTypeGroup = "Binary"
	ColumnBoolean ColumnTypeGroup = "Boolean"
	ColumnLookup  ColumnTypeGroup = "Lookup"
)

// ColumnTypeGroups lists every group in lookup order.
var ColumnTypeGroups = []ColumnTypeGroup{
	ColumnText, ColumnNumber, ColumnDate, ColumnBinary, ColumnBoolean, ColumnLookup,
}

// Membership sets, SQL Server and PostgreSQL vocabularies. Read only.
var columnTypeMembers = map[ColumnTypeGroup][]string{
	ColumnText: {
		"char", "nchar", "varchar", "nvarchar", "text", "ntext",
		"character varying", "character", "bpchar",
	},
	ColumnNumber: {
		"int", "smallint", "bigint", "tinyint", "decimal", "numeric", "float", "real",
		"money", "smallmoney", "integer", "int2", "int4", "int8", "float4", "float8",
		"double precision",
	},
	ColumnDate: {
		"date", "datetime", "datetime2", "smalldatetime", "datetimeoffset", "time",
		"timestamp", "timestamp without time zone", "timestamp with time zone",
		"timestamptz", "time without time zone", "time with time zone", "timetz",
		"interval",
	},
	ColumnBinary: {
		"binary", "varbinary", "image", "bytea",
	},
	ColumnBoolean: {
		"bit", "boolean", "bool",
	},
	ColumnLookup: {
		"uniqueidentifier", "uuid",
	},
}

var columnTypeIndex = func() map[string]ColumnTypeGroup {
	idx := make(map[string]ColumnTypeGroup)
	for _, group := range ColumnTypeGroups {
		for _, name := range columnTypeMembers[group] {
			idx[name] = group
		}
	}
	return idx
}()

// ClassifyColumnType maps a raw column type name to its group. The lookup is
// case-insensitive; unknown or empty names report false.
func ClassifyColumnType(dataType string) (ColumnTypeGroup, bool) {
	if dataType == "" {
		return "", false
	}
	group, ok := columnTypeIndex[strings.ToLower(dataType)]
	return group, ok
}

// Members returns a copy of the type names belonging to the group.
func (g ColumnTypeGroup) Members() []string {
	members := columnTypeMembers[g]
	out := make([]string, len(members))
	copy(out, members)
	return out
}

func (g ColumnTypeGroup) String() string { return string(g) }
