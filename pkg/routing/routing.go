// Package routing holds an operation-name keyed routing table deciding
// whether an incoming query is partitioned, flat-cached, or passed straight
// through. It generalizes original_source/src/main.rs's
// PROCESSING_INSTRUCTIONS table and ProcessingInstruction decision tree.
package routing

// Behavior is the routing decision for one operation name.
type Behavior int

const (
	// PartitionGeneral runs the full §4.3 partitioner. This is also the
	// fallback when an operation name has no table entry — a deliberate
	// generalization over the original's two-way path split, which treated
	// an absent table entry as DoNotProcess. Since this component's
	// partitioner supports any number of independently cacheable
	// sub-queries, falling through to it by default extracts more cache
	// value than refusing to process unrecognized operations.
	PartitionGeneral Behavior = iota
	// DoNotPartition forwards the operation as a single cacheable GET,
	// unmodified, relying on the edge CDN's default GET caching rather than
	// the partitioner's per-field split. This is original_source's
	// flat_cache behavior.
	DoNotPartition
	// DoNotProcess forwards the request as a pass-through POST, bypassing
	// GET caching entirely.
	DoNotProcess
)

// Table maps operation name to Behavior. A zero-value Table is empty and
// Lookup on it always returns PartitionGeneral.
type Table map[string]Behavior

// Lookup returns the configured Behavior for operationName, defaulting to
// PartitionGeneral when no entry exists.
func (t Table) Lookup(operationName string) Behavior {
	if b, ok := t[operationName]; ok {
		return b
	}
	return PartitionGeneral
}
