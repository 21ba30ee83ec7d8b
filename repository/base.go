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

package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"reflect"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/guregu/null/v5"
	"github.com/tomoncle/keeper/database"
	"github.com/tomoncle/keeper/entity"
	"github.com/tomoncle/keeper/filter"
	"github.com/tomoncle/keeper/types"
	"github.com/tomoncle/keeper/versioning"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

func init() {
	database.RegisteredModel(database.NewModelAdapter((*entity.TableColumns)(nil), 20))
}

// BaseRepository is the bun implementation of Repository. T is the record
// struct; PT is *T and carries the entity capability set.
type BaseRepository[T any, PT entity.Record[T]] struct {
	db         bun.IDB
	versions   versioning.Store
	typ        reflect.Type
	objectType string
	now        func() time.Time
	logger     database.Logger
}

// Option configures a BaseRepository.
type Option func(*options)

type options struct {
	now    func() time.Time
	logger database.Logger
}

// WithClock overrides the time source for CreatedAt and UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLogger sets the repository logger.
func WithLogger(logger database.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// New returns a repository for T over db. Mutations are audited into
// versions. Neither connection is owned by the repository.
func New[T any, PT entity.Record[T]](db bun.IDB, versions versioning.Store, opts ...Option) *BaseRepository[T, PT] {
	o := &options{now: time.Now}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = database.GetLogger()
	}
	typ := reflect.TypeOf((*T)(nil)).Elem()
	return &BaseRepository[T, PT]{
		db:         db,
		versions:   versions,
		typ:        typ,
		objectType: typ.Name(),
		now:        o.now,
		logger:     o.logger,
	}
}

// ObjectType is the name stamped on the audit records of T.
func (r *BaseRepository[T, PT]) ObjectType() string { return r.objectType }

func (r *BaseRepository[T, PT]) Dialect() schema.Dialect { return r.db.Dialect() }

// NewSelect starts a select over the table of T.
func (r *BaseRepository[T, PT]) NewSelect() *bun.SelectQuery {
	return r.db.NewSelect().Model((*T)(nil))
}

func (r *BaseRepository[T, PT]) GetAll(ctx context.Context) ([]*T, error) {
	entities := make([]*T, 0)
	if err := r.db.NewSelect().Model(&entities).Scan(ctx); err != nil {
		return nil, r.storeFailure(err, "select %s", r.objectType)
	}
	return entities, nil
}

func (r *BaseRepository[T, PT]) GetAllActive(ctx context.Context) ([]*T, error) {
	entities := make([]*T, 0)
	err := r.db.NewSelect().
		Model(&entities).
		Where("?TableAlias.status = ?", entity.StatusActive).
		Scan(ctx)
	if err != nil {
		return nil, r.storeFailure(err, "select active %s", r.objectType)
	}
	return entities, nil
}

// GetByID returns the record with id, or nil when there is none.
func (r *BaseRepository[T, PT]) GetByID(ctx context.Context, id uuid.UUID) (*T, error) {
	record := new(T)
	err := r.db.NewSelect().Model(record).Where("?TableAlias.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, r.storeFailure(err, "select %s %s", r.objectType, id)
	}
	return record, nil
}

// Add assigns a new ID and CreatedAt, defaults the status to Active and
// inserts the record. The insert is audited with no before value.
func (r *BaseRepository[T, PT]) Add(ctx context.Context, e *T) (uuid.UUID, error) {
	if e == nil {
		return uuid.Nil, errors.Wrapf(ErrInvalidArgument, "add %s: entity is nil", r.objectType)
	}
	record := PT(e)
	record.SetID(uuid.New())
	record.SetCreatedAt(r.now().UTC())
	if record.GetStatus() == "" {
		record.SetStatus(entity.StatusActive)
	}

	if _, err := r.db.NewInsert().Model(e).Exec(ctx); err != nil {
		return uuid.Nil, r.storeFailure(err, "insert %s", r.objectType)
	}
	id := record.GetID()
	r.logger.Debug("entity added", "type", r.objectType, "id", id)

	return id, r.audit(ctx, record, null.String{}, record.GetCreatedBy())
}

// Update merges the non-default fields of e onto the stored record with the
// same ID, stamps UpdatedAt and persists it. The change is audited with
// before and after snapshots.
func (r *BaseRepository[T, PT]) Update(ctx context.Context, e *T) (*T, error) {
	if e == nil {
		return nil, errors.Wrapf(ErrInvalidArgument, "update %s: entity is nil", r.objectType)
	}
	id := PT(e).GetID()
	stored, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, errors.Wrapf(ErrNotFound, "update %s %s", r.objectType, id)
	}
	record := PT(stored)
	before, err := snapshot(stored)
	if err != nil {
		return nil, errors.Wrapf(err, "snapshot %s %s", r.objectType, id)
	}

	record.Merge(e)
	record.SetUpdatedAt(r.now().UTC())

	res, err := r.db.NewUpdate().Model(stored).WherePK().Exec(ctx)
	if err != nil {
		return nil, r.storeFailure(err, "update %s %s", r.objectType, id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, r.storeFailure(err, "update %s %s", r.objectType, id)
	}
	if n == 0 {
		return nil, errors.Wrapf(ErrNotFound, "update %s %s", r.objectType, id)
	}
	r.logger.Debug("entity updated", "type", r.objectType, "id", id)

	return stored, r.audit(ctx, record, null.StringFrom(before), modifiedBy(record))
}

// Delete marks the record Deleted. It returns false when no record has id.
func (r *BaseRepository[T, PT]) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	stored, err := r.GetByID(ctx, id)
	if err != nil || stored == nil {
		return false, err
	}
	record := PT(stored)
	before, err := snapshot(stored)
	if err != nil {
		return false, errors.Wrapf(err, "snapshot %s %s", r.objectType, id)
	}

	record.SetStatus(entity.StatusDeleted)
	record.SetUpdatedAt(r.now().UTC())

	res, err := r.db.NewUpdate().Model(stored).WherePK().Exec(ctx)
	if err != nil {
		return false, r.storeFailure(err, "delete %s %s", r.objectType, id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, r.storeFailure(err, "delete %s %s", r.objectType, id)
	}
	if n == 0 {
		return false, nil
	}
	r.logger.Debug("entity deleted", "type", r.objectType, "id", id)

	return true, r.audit(ctx, record, null.StringFrom(before), modifiedBy(record))
}

// Search filters the records by the request parameters and returns the
// requested page. Parameters naming unknown fields are skipped. Records that
// are not Active are excluded unless IncludeNotActive is set.
func (r *BaseRepository[T, PT]) Search(ctx context.Context, request *types.SearchParameterRequest) (*types.PaginatedResponse[T], error) {
	if request == nil {
		return nil, errors.Wrapf(ErrInvalidArgument, "search %s: request is nil", r.objectType)
	}
	compiled, err := filter.Compile(r.typ, request.SearchParameters)
	if err != nil {
		return nil, errors.Wrapf(err, "search %s", r.objectType)
	}
	for _, key := range compiled.Skipped {
		r.logger.Debug("search parameter skipped", "type", r.objectType, "key", key)
	}

	return r.page(ctx, request.PageRequest(), func(q *bun.SelectQuery) *bun.SelectQuery {
		if !request.IncludeNotActive {
			q = q.Where("?TableAlias.status = ?", entity.StatusActive)
		}
		return compiled.Apply(q, r.db.Dialect().Name())
	}, compiled.ApplyOrder)
}

// GetPaginated returns one page of all records, whatever their status.
func (r *BaseRepository[T, PT]) GetPaginated(ctx context.Context, page, pageSize int) (*types.PaginatedResponse[T], error) {
	return r.page(ctx, types.NewPageRequest(page, pageSize), nil, nil)
}

func (r *BaseRepository[T, PT]) page(
	ctx context.Context,
	pageRequest *types.PageRequest,
	where func(*bun.SelectQuery) *bun.SelectQuery,
	order func(*bun.SelectQuery) *bun.SelectQuery,
) (*types.PaginatedResponse[T], error) {
	entities := make([]*T, 0)
	query := r.db.NewSelect().Model(&entities)
	if where != nil {
		query = where(query)
	}
	pagination := types.NewPaginatedResponse[T](pageRequest)
	total, err := query.Count(ctx)
	if err != nil {
		return nil, r.storeFailure(err, "count %s", r.objectType)
	}
	if total == 0 {
		return pagination, nil
	}

	if order != nil {
		query = order(query)
	}
	err = query.
		OrderExpr("?TableAlias.created_at ASC, ?TableAlias.id ASC").
		Offset(pageRequest.GetOffset()).
		Limit(pageRequest.GetPageSize()).
		Scan(ctx)
	if err != nil {
		return nil, r.storeFailure(err, "select %s page", r.objectType)
	}
	pagination.TotalCount = total
	pagination.Data = entities
	return pagination, nil
}

// GetTableColumns returns the column snapshot of tableName, which defaults
// to the type name of T. It returns nil when no snapshot is stored.
func (r *BaseRepository[T, PT]) GetTableColumns(ctx context.Context, tableName ...string) (*entity.TableColumns, error) {
	name := r.objectType
	if len(tableName) > 0 && tableName[0] != "" {
		name = tableName[0]
	}
	columns := new(entity.TableColumns)
	err := r.db.NewSelect().Model(columns).Where("?TableAlias.table_name = ?", name).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, r.storeFailure(err, "select table columns of %s", name)
	}
	return columns, nil
}

// History returns the audit records of id, most recent first.
func (r *BaseRepository[T, PT]) History(ctx context.Context, id uuid.UUID) ([]*entity.ObjectVersion, error) {
	return r.versions.GetByObjectID(ctx, id)
}

func (r *BaseRepository[T, PT]) audit(ctx context.Context, record PT, before null.String, updatedBy string) error {
	after, err := snapshot(record)
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "snapshot %s %s", r.objectType, record.GetID()), ErrAuditWriteFailure)
	}
	version := &entity.ObjectVersion{
		ObjectType:   r.objectType,
		ObjectID:     record.GetID(),
		ObjectTenant: tenantOf(record),
		BeforeValue:  before,
		AfterValue:   after,
		UpdatedBy:    updatedBy,
	}
	if _, err := r.versions.Add(ctx, version); err != nil {
		r.logger.Error("audit write failed", "type", r.objectType, "id", record.GetID(), "error", err)
		return errors.Mark(errors.Wrapf(err, "append version of %s %s", r.objectType, record.GetID()), ErrAuditWriteFailure)
	}
	return nil
}

func (r *BaseRepository[T, PT]) storeFailure(err error, format string, args ...interface{}) error {
	if ok, kind := database.IsSqlError(err); ok {
		r.logger.Warn("store rejected statement", "type", r.objectType, "kind", kind, "error", err)
	}
	return errors.Mark(errors.Wrapf(err, format, args...), ErrStoreFailure)
}

func snapshot(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func tenantOf(record entity.Entity) uuid.UUID {
	if t, ok := record.(entity.Tenanted); ok && t.GetTenantID() != uuid.Nil {
		return t.GetTenantID()
	}
	return record.GetID()
}

func modifiedBy(record entity.Entity) string {
	if by := record.GetUpdatedBy(); by != "" {
		return by
	}
	return record.GetCreatedBy()
}
