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

package entity

import (
	"sort"

	"github.com/tomoncle/keeper/types"
	"github.com/uptrace/bun"
)

// TableColumn describes one column of a table.
type TableColumn struct {
	Name         string `json:"name" yaml:"name"`
	Type         string `json:"type" yaml:"type"`
	Order        int    `json:"order" yaml:"order"`
	DefaultValue string `json:"default_value,omitempty" yaml:"default_value"`
	MaxLength    int    `json:"max_length,omitempty" yaml:"max_length"`
	Nullable     bool   `json:"nullable" yaml:"nullable"`
}

// Group classifies the column type; false when the type is not recognized.
func (c TableColumn) Group() (types.ColumnTypeGroup, bool) {
	return types.ClassifyColumnType(c.Type)
}

// TableColumns is a read-only snapshot of a table's columns.
type TableColumns struct {
	bun.BaseModel `bun:"table:table_columns,alias:tc" json:"-"`

	TableName string                    `bun:"table_name,pk,type:varchar(255)" json:"table_name"`
	Columns   types.JSON[[]TableColumn] `bun:"columns,type:text" json:"columns"`
}

// NewTableColumns builds a snapshot with columns sorted by Order.
func NewTableColumns(table string, columns []TableColumn) *TableColumns {
	sorted := make([]TableColumn, len(columns))
	copy(sorted, columns)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })
	return &TableColumns{TableName: table, Columns: types.NewJSON(sorted)}
}

// List returns the columns in Order.
func (t *TableColumns) List() []TableColumn {
	return t.Columns.V
}

// Column finds a column by name.
func (t *TableColumns) Column(name string) (TableColumn, bool) {
	for _, c := range t.Columns.V {
		if c.Name == name {
			return c, true
		}
	}
	return TableColumn{}, false
}

// TableColumnDTO is the transport shape of a column, with its type group.
type TableColumnDTO struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	Group        string `json:"group,omitempty"`
	Order        int    `json:"order"`
	DefaultValue string `json:"default_value,omitempty"`
	MaxLength    int    `json:"max_length,omitempty"`
	Nullable     bool   `json:"nullable"`
}

// TableColumnsDTO is the transport shape of a TableColumns snapshot.
type TableColumnsDTO struct {
	TableName string           `json:"table_name"`
	Columns   []TableColumnDTO `json:"columns"`
}

// ToDTO maps the snapshot to its transport shape. A nil snapshot maps to nil.
func (t *TableColumns) ToDTO() *TableColumnsDTO {
	if t == nil {
		return nil
	}
	dto := &TableColumnsDTO{TableName: t.TableName, Columns: make([]TableColumnDTO, 0, len(t.Columns.V))}
	for _, c := range t.Columns.V {
		group, _ := c.Group()
		dto.Columns = append(dto.Columns, TableColumnDTO{
			Name:         c.Name,
			Type:         c.Type,
			Group:        group.String(),
			Order:        c.Order,
			DefaultValue: c.DefaultValue,
			MaxLength:    c.MaxLength,
			Nullable:     c.Nullable,
		})
	}
	return dto
}

// ToModel maps the transport shape back to a snapshot.
func (d *TableColumnsDTO) ToModel() *TableColumns {
	if d == nil {
		return nil
	}
	columns := make([]TableColumn, 0, len(d.Columns))
	for _, c := range d.Columns {
		columns = append(columns, TableColumn{
			Name:         c.Name,
			Type:         c.Type,
			Order:        c.Order,
			DefaultValue: c.DefaultValue,
			MaxLength:    c.MaxLength,
			Nullable:     c.Nullable,
		})
	}
	return NewTableColumns(d.TableName, columns)
}
