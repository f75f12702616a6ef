package hashtable

// Stats is a diagnostic snapshot of a table's shape.
// Collecting it is an O(N) operation; it is intended for debugging and monitoring, not for the hot path.
type Stats struct {
	// Buckets is the length of the bucket array
	Buckets int `json:"buckets"`
	// EmptyBuckets is the number of buckets without entries
	EmptyBuckets int `json:"empty_buckets"`
	// Size is the number of stored entries
	Size int `json:"size"`
	// MinChain is the length of the shortest bucket chain
	MinChain int `json:"min_chain"`
	// MaxChain is the length of the longest bucket chain
	MaxChain int `json:"max_chain"`
	// LoadFactor is Size / Buckets, or InvalidLoadFactor without buckets
	LoadFactor float32 `json:"load_factor"`
	// Growths is the number of times the bucket array was reallocated
	Growths int `json:"growths"`
}

// Stats collects statistics about the table
func (table *Table[K, V]) Stats() Stats {
	stats := Stats{
		Buckets:    len(table.buckets),
		Size:       table.count,
		LoadFactor: table.LoadFactor(),
		Growths:    table.growths,
	}
	for i := range table.buckets {
		n := table.buckets[i].count
		if n == 0 {
			stats.EmptyBuckets++
		}
		if i == 0 || n < stats.MinChain {
			stats.MinChain = n
		}
		stats.MaxChain = max(stats.MaxChain, n)
	}
	return stats
}
