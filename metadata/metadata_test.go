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

package metadata

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/keeper/database"
	"github.com/tomoncle/keeper/entity"
	"github.com/tomoncle/keeper/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

const descriptors = `
tables:
  - table_name: widget
    columns:
      - {name: quantity, type: int, order: 2}
      - {name: some_property, type: nvarchar, order: 1, max_length: 100, nullable: true}
  - table_name: invoice
    columns:
      - {name: issued_on, type: datetime2, order: 1}
`

type widget struct {
	bun.BaseModel `bun:"table:widgets,alias:w"`
	entity.BaseEntity

	SomeProperty string `bun:"some_property,type:varchar(100)"`
	Quantity     int    `bun:"quantity,notnull,default:0"`
}

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()
	sqldb, err := sql.Open(sqliteshim.ShimName, fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.CreateTables(context.Background(), db, nil, (*entity.TableColumns)(nil), (*widget)(nil)))
	return db
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tables.yaml")
	require.NoError(t, os.WriteFile(path, []byte(descriptors), 0o600))

	tables, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, tables, 2)
	assert.Equal(t, "widget", tables[0].TableName)

	cols := tables[0].List()
	require.Len(t, cols, 2)
	assert.Equal(t, "some_property", cols[0].Name)
	assert.Equal(t, 100, cols[0].MaxLength)
	assert.True(t, cols[0].Nullable)
	group, ok := cols[0].Group()
	require.True(t, ok)
	assert.Equal(t, types.ColumnText, group)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDecodeRejectsBadDescriptors(t *testing.T) {
	_, err := Decode(strings.NewReader("tables:\n  - columns: []\n"))
	assert.Error(t, err)

	_, err = Decode(strings.NewReader("tables:\n  - table_name: a\n  - table_name: a\n"))
	assert.Error(t, err)

	_, err = Decode(strings.NewReader("tabels: []\n"))
	assert.Error(t, err)

	tables, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, tables)
}

func TestEncodeIsReadableByDecode(t *testing.T) {
	tables, err := Decode(strings.NewReader(descriptors))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, tables...))
	again, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, tables, again)
}

func TestSaveReplacesExistingSnapshots(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	tables, err := Decode(strings.NewReader(descriptors))
	require.NoError(t, err)
	require.NoError(t, Save(ctx, db, tables...))

	replacement := entity.NewTableColumns("widget", []entity.TableColumn{{Name: "only", Type: "bit", Order: 1}})
	require.NoError(t, Save(ctx, db, replacement))

	n, err := db.NewSelect().Model((*entity.TableColumns)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	stored := new(entity.TableColumns)
	require.NoError(t, db.NewSelect().Model(stored).Where("?TableAlias.table_name = ?", "widget").Scan(ctx))
	require.Len(t, stored.List(), 1)
	assert.Equal(t, "only", stored.List()[0].Name)

	assert.NoError(t, Save(ctx, db))
}

func TestLoadAndSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tables.yaml")
	require.NoError(t, os.WriteFile(path, []byte(descriptors), 0o600))

	n, err := LoadAndSave(context.Background(), newTestDB(t), path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestIntrospect(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	snapshot, err := Introspect(ctx, db, "widgets")
	require.NoError(t, err)
	require.NotNil(t, snapshot)
	assert.Equal(t, "widgets", snapshot.TableName)

	id, ok := snapshot.Column("id")
	require.True(t, ok)
	assert.Equal(t, "varchar", id.Type)
	assert.Equal(t, 36, id.MaxLength)
	assert.False(t, id.Nullable)
	assert.Equal(t, 1, id.Order)

	prop, ok := snapshot.Column("some_property")
	require.True(t, ok)
	assert.Equal(t, 100, prop.MaxLength)
	assert.True(t, prop.Nullable)

	qty, ok := snapshot.Column("quantity")
	require.True(t, ok)
	assert.False(t, qty.Nullable)
	assert.Equal(t, "0", qty.DefaultValue)

	missing, err := Introspect(ctx, db, "no_such_table")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestIntrospectModelUsesTypeName(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	snapshot, err := IntrospectModel(ctx, db, (*widget)(nil))
	require.NoError(t, err)
	require.NotNil(t, snapshot)
	assert.Equal(t, "widget", snapshot.TableName)
	require.NoError(t, Save(ctx, db, snapshot))
}

func TestSplitLength(t *testing.T) {
	tests := []struct {
		in   string
		typ  string
		size int
	}{
		{"VARCHAR(36)", "varchar", 36},
		{"decimal(10, 2)", "decimal", 10},
		{"TEXT", "text", 0},
		{"char(x)", "char", 0},
	}
	for _, tt := range tests {
		typ, size := splitLength(tt.in)
		assert.Equal(t, tt.typ, typ, tt.in)
		assert.Equal(t, tt.size, size, tt.in)
	}
}
