// Copyright 2019 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

// Package record defines the immutable DataRecord, the unit of persistence
// the historian writes to and reads from an Archive, and the SnapshotID that
// addresses one version of one object.
package record

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ExtraKeys names the well-known entries of a DataRecord's Extras map.
type ExtraKeys string

const (
	ExtraCreatedBy ExtraKeys = "created_by"
	ExtraCopiedFrom ExtraKeys = "copied_from"
	ExtraUser       ExtraKeys = "user"
	ExtraHostname   ExtraKeys = "hostname"
)

// Deleted is the sentinel state value that marks a version as a deletion
// rather than a live state snapshot.
const Deleted = "!!deleted!!"

// SnapshotID addresses one version of one object: the pair (obj_id, version).
type SnapshotID struct {
	ObjID   uuid.UUID
	Version int
}

// NewSnapshotID builds a SnapshotID from an object id and a version number.
func NewSnapshotID(objID uuid.UUID, version int) SnapshotID {
	return SnapshotID{ObjID: objID, Version: version}
}

// String renders the textual form "{obj_id}#{version}" (spec §6.2).
func (s SnapshotID) String() string {
	return fmt.Sprintf("%s#%d", s.ObjID.String(), s.Version)
}

// ParseSnapshotID parses the textual form produced by String.
func ParseSnapshotID(text string) (SnapshotID, error) {
	for i := len(text) - 1; i >= 0; i-- {
		if text[i] == '#' {
			id, err := uuid.Parse(text[:i])
			if err != nil {
				return SnapshotID{}, fmt.Errorf("record: invalid obj id in snapshot id %q: %w", text, err)
			}
			var version int
			if _, err := fmt.Sscanf(text[i+1:], "%d", &version); err != nil {
				return SnapshotID{}, fmt.Errorf("record: invalid version in snapshot id %q: %w", text, err)
			}
			return SnapshotID{ObjID: id, Version: version}, nil
		}
	}
	return SnapshotID{}, fmt.Errorf("record: snapshot id %q missing '#'", text)
}

// ToList renders the SnapshotID as a two-element primitive list, the same
// wire shape the archive uses when a reference is embedded in object state.
func (s SnapshotID) ToList() []interface{} {
	return []interface{}{s.ObjID, s.Version}
}

// SchemaEntry names, at a path inside the saved state tree, which TypeHelper
// produced the value found there and at which helper version.
type SchemaEntry struct {
	Path    []interface{}
	TypeID  uuid.UUID
	Version int // -1 means "no version recorded"
}

// StateSchema is the full list of SchemaEntry produced while encoding one
// object's state; it lets the Loader reconstruct non-primitive values.
type StateSchema []SchemaEntry

// DataRecord is the immutable unit of persistence: one version of one
// object's state plus the bookkeeping the historian needs to reconstruct,
// supersede or delete it. Fields are unexported; construct one through a
// Builder and read it back through the accessor methods.
type DataRecord struct {
	objID        uuid.UUID
	typeID       uuid.UUID
	creationTime time.Time
	version      int
	state        interface{}
	stateTypes   StateSchema
	snapshotHash []byte
	snapshotTime time.Time
	extras       map[ExtraKeys]interface{}
}

func (r DataRecord) ObjID() uuid.UUID                   { return r.objID }
func (r DataRecord) TypeID() uuid.UUID                  { return r.typeID }
func (r DataRecord) CreationTime() time.Time            { return r.creationTime }
func (r DataRecord) Version() int                       { return r.version }
func (r DataRecord) State() interface{}                 { return r.state }
func (r DataRecord) StateTypes() StateSchema            { return r.stateTypes }
func (r DataRecord) SnapshotHash() []byte               { return r.snapshotHash }
func (r DataRecord) SnapshotTime() time.Time            { return r.snapshotTime }
func (r DataRecord) Extras() map[ExtraKeys]interface{}  { return r.extras }

// SnapshotID is this record's own address.
func (r DataRecord) SnapshotID() SnapshotID {
	return SnapshotID{ObjID: r.objID, Version: r.version}
}

// IsDeletedRecord reports whether this version marks a deletion.
func (r DataRecord) IsDeletedRecord() bool {
	state, ok := r.state.(string)
	return ok && state == Deleted
}

// GetStateSchema returns the schema to use when decoding this record's
// state, defaulting to an empty schema rather than nil.
func (r DataRecord) GetStateSchema() StateSchema {
	if r.stateTypes == nil {
		return StateSchema{}
	}
	return r.stateTypes
}

// Builder accumulates the fields of a DataRecord before Build freezes them.
// The zero Builder is not usable; start from NewBuilder, CopyBuilder or
// ChildBuilder.
type Builder struct {
	objID        uuid.UUID
	typeID       uuid.UUID
	creationTime time.Time
	version      int
	state        interface{}
	stateTypes   StateSchema
	snapshotHash []byte
	snapshotTime time.Time
	extras       map[ExtraKeys]interface{}
}

// NewBuilder starts a version-0 record for a brand new object.
func NewBuilder(objID, typeID uuid.UUID) *Builder {
	return &Builder{
		objID:   objID,
		typeID:  typeID,
		version: 0,
		extras:  map[ExtraKeys]interface{}{},
	}
}

// CopyBuilder starts a new, independent object whose initial state is a copy
// of an existing record's state (the ExtraCopiedFrom extra is stamped by the
// caller).
func CopyBuilder(objID uuid.UUID, from DataRecord) *Builder {
	b := NewBuilder(objID, from.typeID)
	b.state = from.state
	b.stateTypes = from.stateTypes
	return b
}

// ChildBuilder starts the next version of the same object, inheriting its
// type id and bumping the version counter.
func ChildBuilder(parent DataRecord) *Builder {
	extras := map[ExtraKeys]interface{}{}
	for k, v := range parent.extras {
		extras[k] = v
	}
	return &Builder{
		objID:   parent.objID,
		typeID:  parent.typeID,
		version: parent.version + 1,
		extras:  extras,
	}
}

// MakeDeletedBuilder starts the next version of an object that records its
// deletion: state is set to the Deleted sentinel.
func MakeDeletedBuilder(parent DataRecord) *Builder {
	b := ChildBuilder(parent)
	b.state = Deleted
	b.stateTypes = nil
	return b
}

func (b *Builder) SetState(state interface{}) *Builder {
	b.state = state
	return b
}

func (b *Builder) SetStateTypes(st StateSchema) *Builder {
	b.stateTypes = st
	return b
}

func (b *Builder) SetSnapshotHash(hash []byte) *Builder {
	b.snapshotHash = hash
	return b
}

func (b *Builder) SetSnapshotTime(t time.Time) *Builder {
	b.snapshotTime = t
	return b
}

func (b *Builder) SetCreationTime(t time.Time) *Builder {
	b.creationTime = t
	return b
}

func (b *Builder) SetExtra(key ExtraKeys, value interface{}) *Builder {
	if b.extras == nil {
		b.extras = map[ExtraKeys]interface{}{}
	}
	b.extras[key] = value
	return b
}

func (b *Builder) ObjID() uuid.UUID   { return b.objID }
func (b *Builder) Version() int       { return b.version }
func (b *Builder) SnapshotHash() []byte { return b.snapshotHash }

// SetVersion overrides the version number the builder will stamp, used when
// rewriting an existing version's state in place (e.g. after a migration)
// rather than creating a new one.
func (b *Builder) SetVersion(v int) *Builder {
	b.version = v
	return b
}

// Update copies over the state and state-type fields of an already-computed
// save, equivalent to the source's Builder.update(save_state(obj)).
func (b *Builder) Update(state interface{}, stateTypes StateSchema) *Builder {
	b.state = state
	b.stateTypes = stateTypes
	return b
}

// Build freezes the builder into an immutable DataRecord, stamping a
// creation time if one was never set.
func (b *Builder) Build() DataRecord {
	creation := b.creationTime
	if creation.IsZero() {
		creation = time.Now().UTC()
	}
	snapTime := b.snapshotTime
	if snapTime.IsZero() {
		snapTime = creation
	}
	extras := b.extras
	if extras == nil {
		extras = map[ExtraKeys]interface{}{}
	}
	return DataRecord{
		objID:        b.objID,
		typeID:       b.typeID,
		creationTime: creation,
		version:      b.version,
		state:        b.state,
		stateTypes:   b.stateTypes,
		snapshotHash: b.snapshotHash,
		snapshotTime: snapTime,
		extras:       extras,
	}
}
