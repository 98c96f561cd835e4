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

package txn

import "github.com/archivian/historian/record"

// Operation is one pending write a Transaction will flush to the archive on
// commit: the insertion of a new record version (InsertOp), an in-place
// update of a stored record's state (UpdateOp), or a deletion marker
// (DeleteOp).
type Operation interface {
	SnapshotID() record.SnapshotID
}

// InsertOp stages a whole new DataRecord version for the archive.
type InsertOp struct {
	Record record.DataRecord
}

func (o InsertOp) SnapshotID() record.SnapshotID { return o.Record.SnapshotID() }

// UpdateOp stages an in-place rewrite of a record's state and state-type
// schema without creating a new version; the historian's flush turns it into
// an archive.BulkUpdate. Nothing in this module stages one: the depositor's
// decoding applies no migrations.
type UpdateOp struct {
	ID         record.SnapshotID
	State      interface{}
	StateTypes record.StateSchema
}

func (o UpdateOp) SnapshotID() record.SnapshotID { return o.ID }

// DeleteOp stages the deletion-marker record produced by
// record.MakeDeletedBuilder.
type DeleteOp struct {
	Record record.DataRecord
}

func (o DeleteOp) SnapshotID() record.SnapshotID { return o.Record.SnapshotID() }
