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
	"context"
	"database/sql"
	"reflect"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/tomoncle/keeper/entity"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// Introspect reads the columns of table from the live schema. It returns nil
// when the table does not exist.
func Introspect(ctx context.Context, db bun.IDB, table string) (*entity.TableColumns, error) {
	columns, err := listColumns(ctx, db, table)
	if err != nil {
		return nil, errors.Wrapf(err, "introspect %s", table)
	}
	if len(columns) == 0 {
		return nil, nil
	}
	return entity.NewTableColumns(table, columns), nil
}

// IntrospectModel snapshots the table of a bun model under the Go type name
// of the model, which is the name repositories look snapshots up by.
func IntrospectModel(ctx context.Context, db bun.IDB, model interface{}) (*entity.TableColumns, error) {
	typ := reflect.TypeOf(model)
	for typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	table := db.Dialect().Tables().Get(typ)
	snapshot, err := Introspect(ctx, db, table.Name)
	if err != nil || snapshot == nil {
		return nil, err
	}
	snapshot.TableName = typ.Name()
	return snapshot, nil
}

func listColumns(ctx context.Context, db bun.IDB, table string) ([]entity.TableColumn, error) {
	name := db.Dialect().Name()
	var (
		rows *sql.Rows
		err  error
	)
	switch name {
	case dialect.PG:
		rows, err = db.QueryContext(ctx, `SELECT column_name, data_type, is_nullable, column_default, character_maximum_length, ordinal_position
			FROM information_schema.columns WHERE table_schema = current_schema() AND table_name = ? ORDER BY ordinal_position`, table)
	case dialect.MySQL:
		rows, err = db.QueryContext(ctx, `SELECT COLUMN_NAME, DATA_TYPE, IS_NULLABLE, COLUMN_DEFAULT, CHARACTER_MAXIMUM_LENGTH, ORDINAL_POSITION
			FROM INFORMATION_SCHEMA.COLUMNS WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ? ORDER BY ORDINAL_POSITION`, table)
	case dialect.SQLite:
		rows, err = db.QueryContext(ctx, "PRAGMA table_info(?)", bun.Ident(table))
	default:
		return nil, errors.Newf("introspection is not supported for %s", name)
	}
	if err != nil {
		return nil, err
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	var columns []entity.TableColumn
	for rows.Next() {
		var (
			col       entity.TableColumn
			defaultNS sql.NullString
		)
		switch name {
		case dialect.SQLite:
			var cid, notnull, pk int
			var typ string
			if err := rows.Scan(&cid, &col.Name, &typ, &notnull, &defaultNS, &pk); err != nil {
				return nil, err
			}
			col.Type, col.MaxLength = splitLength(typ)
			col.Nullable = notnull == 0 && pk == 0
			col.Order = cid + 1
		default:
			var nullable string
			var maxLength sql.NullInt64
			if err := rows.Scan(&col.Name, &col.Type, &nullable, &defaultNS, &maxLength, &col.Order); err != nil {
				return nil, err
			}
			col.Type = strings.ToLower(col.Type)
			col.Nullable = strings.EqualFold(nullable, "YES")
			if maxLength.Valid && maxLength.Int64 > 0 {
				col.MaxLength = int(maxLength.Int64)
			}
		}
		if defaultNS.Valid {
			col.DefaultValue = defaultNS.String
		}
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

// splitLength turns "VARCHAR(36)" into ("varchar", 36).
func splitLength(typ string) (string, int) {
	typ = strings.ToLower(strings.TrimSpace(typ))
	open := strings.IndexByte(typ, '(')
	if open < 0 || !strings.HasSuffix(typ, ")") {
		return typ, 0
	}
	base := strings.TrimSpace(typ[:open])
	args := typ[open+1 : len(typ)-1]
	if comma := strings.IndexByte(args, ','); comma >= 0 {
		args = args[:comma]
	}
	n, err := strconv.Atoi(strings.TrimSpace(args))
	if err != nil {
		return base, 0
	}
	return base, n
}
