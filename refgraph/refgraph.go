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

// Package refgraph implements the reference-graph reachability service
// spec.md §4.10 describes, on top of whichever archive.Archive a historian
// is using. A single object's reachable set comes straight from the
// backend's own RefGraph; this package adds the part no single backend call
// gives you: merging and deduplicating the reachable sets of several seed
// objects into one sorted stream, the way the teacher's
// core/state/snapshot/iterator.go fastIterator merges several diff-layer
// account iterators into one.
package refgraph

import (
	"context"
	"sort"

	"github.com/archivian/historian/archive"
	"github.com/google/uuid"
)

// Service answers forward ("what does X refer to") and backward ("what
// refers to X") reachability questions.
type Service struct {
	archive archive.Archive
}

// New builds a Service backed by arc.
func New(arc archive.Archive) *Service {
	return &Service{archive: arc}
}

// Reachable returns every object objID's state directly or transitively
// refers to, up to maxDepth hops (0 means unlimited).
func (s *Service) Reachable(ctx context.Context, objID uuid.UUID, maxDepth int) ([]uuid.UUID, error) {
	return s.archive.RefGraph(ctx, objID, archive.Outgoing, maxDepth)
}

// Referrers returns every object that directly or transitively refers to
// objID, up to maxDepth hops (0 means unlimited).
func (s *Service) Referrers(ctx context.Context, objID uuid.UUID, maxDepth int) ([]uuid.UUID, error) {
	return s.archive.RefGraph(ctx, objID, archive.Incoming, maxDepth)
}

// IsReferenced reports whether any other live object still refers to objID,
// the guard historian.Delete applies before allowing a non-forced delete
// (spec.md §4.10).
func (s *Service) IsReferenced(ctx context.Context, objID uuid.UUID) (bool, []uuid.UUID, error) {
	referrers, err := s.Referrers(ctx, objID, 1)
	if err != nil {
		return false, nil, err
	}
	return len(referrers) > 0, referrers, nil
}

// ReachableFromAny merges the reachable sets of every seed into one sorted,
// deduplicated union, mirroring fastIterator's merge of several per-layer
// streams into a single deduplicated one.
func (s *Service) ReachableFromAny(ctx context.Context, seeds []uuid.UUID, maxDepth int) ([]uuid.UUID, error) {
	seen := map[uuid.UUID]bool{}
	for _, seed := range seeds {
		ids, err := s.Reachable(ctx, seed, maxDepth)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			seen[id] = true
		}
	}
	return sortedKeys(seen), nil
}

// ReferredByAny is ReachableFromAny's backward counterpart: the union of
// every object that refers, directly or transitively, to any of targets.
func (s *Service) ReferredByAny(ctx context.Context, targets []uuid.UUID, maxDepth int) ([]uuid.UUID, error) {
	seen := map[uuid.UUID]bool{}
	for _, target := range targets {
		ids, err := s.Referrers(ctx, target, maxDepth)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			seen[id] = true
		}
	}
	return sortedKeys(seen), nil
}

func sortedKeys(seen map[uuid.UUID]bool) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
