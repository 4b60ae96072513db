package mapreduce

import "go.uber.org/zap"

// RunContext bundles everything a map or reduce callback needs for one Run
// call: the partition store, the partition count, and a logger already
// tagged with the run's correlation ID. It replaces the package-level
// globals (partitions, num_partitions, map_func) that the original C
// implementation used to avoid threading this state through every call —
// see the Design Notes on run-scoped state.
type RunContext struct {
	runID      string
	log        *zap.Logger
	partitions []*partition
}

// RunID returns the UUID minted for this run, for caller-side log
// correlation.
func (rc *RunContext) RunID() string {
	return rc.runID
}

// Logger returns a logger scoped to this run, for callbacks that want to
// report their own status the way the original reporter.go did for Hadoop.
func (rc *RunContext) Logger() *zap.Logger {
	return rc.log
}

// NumPartitions returns the partition count this run was started with.
func (rc *RunContext) NumPartitions() uint32 {
	return uint32(len(rc.partitions))
}

// Emit routes (key, value) into its partition via DefaultPartitioner. A
// RunContext built with zero partitions (only reachable by hand-building
// one outside of Run, e.g. in tests) makes Emit a no-op.
func (rc *RunContext) Emit(key, value string) {
	if len(rc.partitions) == 0 {
		return
	}
	idx := DefaultPartitioner(key, uint32(len(rc.partitions)))
	rc.partitions[idx].emit(key, value)
}

// GetNext drains one value for key from partition p, transferring
// ownership to the caller. Returns ("", false) if p is out of range or the
// partition's head key does not match.
func (rc *RunContext) GetNext(key string, p uint32) (string, bool) {
	if p >= uint32(len(rc.partitions)) {
		return "", false
	}
	return rc.partitions[p].getNext(key)
}
