package utils

// UniqueUint deduplicates IDs while keeping first-seen order, used when
// fanning out reward payouts to event participants.
func UniqueUint(ids []uint) []uint {
	seen := make(map[uint]bool)
	out := []uint{}
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
