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
	"github.com/tomoncle/keeper/types"
)

// Status is the lifecycle state of a record. Deleted is terminal.
type Status string

const (
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
	StatusDeleted  Status = "Deleted"
	StatusDraft    Status = "Draft"
)

var _ types.BaseEnum = StatusActive

// Statuses lists every valid status in declaration order.
var Statuses = []Status{StatusActive, StatusInactive, StatusDeleted, StatusDraft}

func (s Status) IsValid() bool {
	return s.Number() != types.IllegalValue
}

func (s Status) Number() int {
	for i, v := range Statuses {
		if v == s {
			return i
		}
	}
	return types.IllegalValue
}

func (s Status) Name() string {
	if s.Number() == types.IllegalValue {
		return types.IllegalName
	}
	return string(s)
}

func (s Status) Desc() string {
	switch s {
	case StatusActive:
		return "record is active and visible by default"
	case StatusInactive:
		return "record is disabled"
	case StatusDeleted:
		return "record is soft deleted"
	case StatusDraft:
		return "record has not been published"
	}
	return types.IllegalDesc
}

func (s Status) String() string { return string(s) }

// CanTransition reports whether a record in s may move to next.
func (s Status) CanTransition(next Status) bool {
	return s != StatusDeleted || next == StatusDeleted
}
