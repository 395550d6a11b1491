package glrtree

// Error-cost weights (spec §3 invariant 2, §4.4.1). Named after the
// formula's own variables rather than tuned against any reference
// implementation: PER_SKIPPED_CHAR/PER_SKIPPED_LINE/PER_SKIPPED_TREE serve
// both the per-node accumulation formula and the recovery-strategy cost
// estimate, matching how the original groups them under one
// error_costs.h-style table.
const (
	costPerSkippedChar = 1
	costPerSkippedLine = 30
	costPerSkippedTree = 100
	costMissingTree    = 110
	costRecovery       = 500

	// costMaxDifference gates when a smaller error cost dominates outright
	// during condensation (spec §4.4 "condense").
	costMaxDifference = 16 * costPerSkippedTree
)
