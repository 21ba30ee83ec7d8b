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

	"github.com/cockroachdb/errors"
	"github.com/tomoncle/keeper/database"
	"github.com/tomoncle/keeper/entity"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/feature"
)

// Save inserts the snapshots, replacing the columns of tables already stored.
func Save(ctx context.Context, db bun.IDB, tables ...*entity.TableColumns) error {
	if len(tables) == 0 {
		return nil
	}
	q := db.NewInsert().Model(&tables)
	switch {
	case db.Dialect().Features().Has(feature.InsertOnConflict):
		q = q.On("CONFLICT (table_name) DO UPDATE").Set("columns = EXCLUDED.columns")
	case db.Dialect().Features().Has(feature.InsertOnDuplicateKey):
		q = q.On("DUPLICATE KEY UPDATE columns = VALUES(columns)")
	default:
		return saveFallback(ctx, db, tables)
	}
	if _, err := q.Exec(ctx); err != nil {
		return errors.Wrapf(err, "save %d table column snapshots", len(tables))
	}
	database.GetLogger().Debug("table columns saved", "tables", len(tables))
	return nil
}

func saveFallback(ctx context.Context, db bun.IDB, tables []*entity.TableColumns) error {
	for _, t := range tables {
		res, err := db.NewUpdate().Model(t).WherePK().Exec(ctx)
		if err != nil {
			return errors.Wrapf(err, "update table columns of %s", t.TableName)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			continue
		}
		if _, err := db.NewInsert().Model(t).Exec(ctx); err != nil {
			return errors.Wrapf(err, "insert table columns of %s", t.TableName)
		}
	}
	return nil
}

// LoadAndSave reads a descriptor file and saves its tables.
func LoadAndSave(ctx context.Context, db bun.IDB, path string) (int, error) {
	tables, err := LoadFile(path)
	if err != nil {
		return 0, err
	}
	return len(tables), Save(ctx, db, tables...)
}
