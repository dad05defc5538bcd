package ecs

// Each2 iterates over entities that have both component A and B, in the
// insertion order of store A.
func Each2[A, B any](sa *PtrComponentStore[A], sb *PtrComponentStore[B], fn func(EntityID, *A, *B)) {
	for i, id := range sa.ids {
		if j, ok := sb.index[id]; ok {
			fn(id, sa.data[i], sb.data[j])
		}
	}
}
