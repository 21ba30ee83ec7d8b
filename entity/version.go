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
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/guregu/null/v5"
	"github.com/uptrace/bun"
)

// ObjectVersion is one immutable audit record: the serialized state of an
// object before and after a mutation.
type ObjectVersion struct {
	bun.BaseModel `bun:"table:object_versions,alias:ov" json:"-"`

	ID           uuid.UUID   `bun:"id,pk,type:varchar(36)" json:"id"`
	ObjectType   string      `bun:"object_type,type:varchar(255),notnull" json:"object_type"`
	ObjectID     uuid.UUID   `bun:"object_id,type:varchar(36),notnull" json:"object_id"`
	ObjectTenant uuid.UUID   `bun:"object_tenant,type:varchar(36),notnull" json:"object_tenant"`
	BeforeValue  null.String `bun:"before_value,type:text" json:"before_value"`
	AfterValue   string      `bun:"after_value,type:text,notnull" json:"after_value"`
	UpdatedOn    time.Time   `bun:"updated_on,notnull" json:"updated_on"`
	UpdatedBy    string      `bun:"updated_by,type:varchar(255)" json:"updated_by"`
}

var _ bun.AfterCreateTableHook = (*ObjectVersion)(nil)

// AfterCreateTable adds the lookup indexes used by the history queries.
func (*ObjectVersion) AfterCreateTable(ctx context.Context, query *bun.CreateTableQuery) error {
	db := query.DB()
	if _, err := db.NewCreateIndex().
		Model((*ObjectVersion)(nil)).
		Index("idx_object_versions_object_id").
		Column("object_id", "updated_on").
		IfNotExists().
		Exec(ctx); err != nil {
		return err
	}
	_, err := db.NewCreateIndex().
		Model((*ObjectVersion)(nil)).
		Index("idx_object_versions_object").
		Column("object_type", "object_tenant", "object_id").
		IfNotExists().
		Exec(ctx)
	return err
}
