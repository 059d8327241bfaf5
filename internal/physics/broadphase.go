package physics

import "sort"

type bodyPair struct {
	a, b *RigidBody
}

type sweepEntry struct {
	body  *RigidBody
	order int
	box   AABB
}

// findPairs returns the body pairs whose margin-grown boxes overlap, found by
// sorting on the x axis and sweeping. Pairs are ordered by insertion order of
// their first and then second body, with the earlier body first.
func (w *World) findPairs() []bodyPair {
	entries := make([]sweepEntry, len(w.bodies))
	for i, b := range w.bodies {
		entries[i] = sweepEntry{body: b, order: i, box: b.bounds()}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].box.Min[0] < entries[j].box.Min[0]
	})

	type indexPair struct{ i, j int }
	var found []indexPair
	for i := range entries {
		ei := entries[i]
		for j := i + 1; j < len(entries); j++ {
			ej := entries[j]
			if ej.box.Min[0] > ei.box.Max[0] {
				break
			}
			if !ei.box.Overlaps(ej.box) || !wantsCollision(ei.body, ej.body) {
				continue
			}
			lo, hi := ei.order, ej.order
			if lo > hi {
				lo, hi = hi, lo
			}
			found = append(found, indexPair{lo, hi})
		}
	}

	sort.Slice(found, func(i, j int) bool {
		if found[i].i != found[j].i {
			return found[i].i < found[j].i
		}
		return found[i].j < found[j].j
	})

	pairs := make([]bodyPair, len(found))
	for k, p := range found {
		pairs[k] = bodyPair{a: w.bodies[p.i], b: w.bodies[p.j]}
	}
	return pairs
}

// wantsCollision rejects pairs that cannot produce a response.
func wantsCollision(a, b *RigidBody) bool {
	if a.state == DisableSimulation || b.state == DisableSimulation {
		return false
	}
	if a.IsStatic() && b.IsStatic() {
		return false
	}
	// Nothing wakes a sleeper resting on static geometry.
	if (a.IsStatic() && !b.IsActive()) || (b.IsStatic() && !a.IsActive()) {
		return false
	}
	if !a.IsActive() && !b.IsActive() {
		return false
	}
	return true
}
