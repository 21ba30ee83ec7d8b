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
	"time"

	"github.com/google/uuid"
	"github.com/guregu/null/v5"
)

// Entity is the capability set every repository record exposes.
type Entity interface {
	GetID() uuid.UUID
	SetID(id uuid.UUID)
	GetCreatedAt() time.Time
	SetCreatedAt(t time.Time)
	GetUpdatedAt() *time.Time
	SetUpdatedAt(t time.Time)
	GetCreatedBy() string
	GetUpdatedBy() string
	GetStatus() Status
	SetStatus(s Status)
}

// Record constrains PT to a pointer to T that is an Entity and can merge a
// sparse patch of itself.
type Record[T any] interface {
	*T
	Entity
	Merge(src *T)
}

// Tenanted is implemented by records that carry an owning tenant.
type Tenanted interface {
	GetTenantID() uuid.UUID
}

// BaseEntity carries the common columns. Embed it in record types.
type BaseEntity struct {
	ID        uuid.UUID   `bun:"id,pk,type:varchar(36)" json:"id"`
	CreatedAt time.Time   `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt *time.Time  `bun:"updated_at" json:"updated_at,omitempty"`
	CreatedBy string      `bun:"created_by,type:varchar(255)" json:"created_by"`
	UpdatedBy null.String `bun:"updated_by,type:varchar(255)" json:"updated_by"`
	Status    Status      `bun:"status,type:varchar(16),notnull" json:"status"`
}

func (e *BaseEntity) GetID() uuid.UUID { return e.ID }

func (e *BaseEntity) SetID(id uuid.UUID) { e.ID = id }

func (e *BaseEntity) GetCreatedAt() time.Time { return e.CreatedAt }

func (e *BaseEntity) SetCreatedAt(t time.Time) { e.CreatedAt = t }

func (e *BaseEntity) GetUpdatedAt() *time.Time { return e.UpdatedAt }

func (e *BaseEntity) SetUpdatedAt(t time.Time) { e.UpdatedAt = &t }

func (e *BaseEntity) GetCreatedBy() string { return e.CreatedBy }

func (e *BaseEntity) GetUpdatedBy() string { return e.UpdatedBy.String }

func (e *BaseEntity) GetStatus() Status { return e.Status }

func (e *BaseEntity) SetStatus(s Status) { e.Status = s }

// Merge copies the non-default base fields of src onto e. ID, CreatedAt and
// CreatedBy are never overwritten and a Deleted record stays Deleted.
func (e *BaseEntity) Merge(src *BaseEntity) {
	if src == nil {
		return
	}
	PatchTimePtr(&e.UpdatedAt, src.UpdatedAt)
	PatchNullString(&e.UpdatedBy, src.UpdatedBy)
	if src.Status != "" && e.Status.CanTransition(src.Status) {
		e.Status = src.Status
	}
}

// TenantEntity is a BaseEntity owned by a tenant.
type TenantEntity struct {
	BaseEntity
	TenantID uuid.UUID `bun:"tenant_id,type:varchar(36)" json:"tenant_id"`
}

func (e *TenantEntity) GetTenantID() uuid.UUID { return e.TenantID }

// Merge applies src like BaseEntity.Merge and keeps the tenant unless src
// names one.
func (e *TenantEntity) Merge(src *TenantEntity) {
	if src == nil {
		return
	}
	e.BaseEntity.Merge(&src.BaseEntity)
	Patch(&e.TenantID, src.TenantID)
}
