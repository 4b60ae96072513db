// Coordinator: drives the map phase, the map barrier, the reduce phase,
// and the reduce barrier over a Pool and a partition store.
// The overall shape — size the inputs, submit jobs in size order, drive a
// worker pool, then drain results per key — is adapted from runners.go's
// mapreduce() (which parallelized independent mapper processes, sorted
// intermediate output, then fanned out reducers) and from mapreduce.c's
// MR_Run. The Hadoop-streaming plumbing (stdin/stdout KeyValue framing,
// the -mapper/-reducer/-partitions flags) is dropped: this engine is an
// in-process, direct function-call API, not a streaming protocol — see
// SPEC_FULL.md section 6, "no wire protocol."
// Copyright (c) 2011 Damian Gryski <damian@gryski.com>
// License: GPLv3 or, at your option, any later version

package mapreduce

import (
	"context"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MapFunc is invoked once per input file during the map phase. It receives
// the run's context (for Emit) and the file's path.
type MapFunc func(rc *RunContext, path string)

// ReduceFunc is invoked during the reduce phase, after the map phase has
// fully completed, once for each key found at the head of a partition: a
// reducer that drains its key with GetNext is called once per distinct key.
// It receives the run's context (for GetNext), the key, and the partition
// index it was taken from.
type ReduceFunc func(rc *RunContext, key string, partition uint32)

// Run executes a full map/reduce job: it maps mapFn over files using
// workers worker goroutines ordered shortest-file-first, waits for every
// map job to finish, then reduces each partition with reduceFn ordered
// smallest-partition-first, and waits for every reduce job to finish.
//
// ctx is not read by Run: it is never consulted for cancellation and no
// log fields are taken from it (see SPEC_FULL.md section 4.5).
func Run(ctx context.Context, files []string, mapFn MapFunc, reduceFn ReduceFunc, workers int, numPartitions uint32) error {
	if workers < 1 {
		return ErrInvalidWorkerCount
	}
	if numPartitions < 1 {
		return ErrInvalidPartitionCount
	}

	runID := uuid.NewString()
	log := logger().With(zap.String("run_id", runID))

	rc := &RunContext{
		runID:      runID,
		log:        log,
		partitions: newPartitions(runID, numPartitions),
	}

	pool, err := NewPool(runID, workers)
	if err != nil {
		return err
	}

	start := time.Now()
	log.Info("run starting",
		zap.Int("files", len(files)),
		zap.Int("workers", workers),
		zap.Uint32("partitions", numPartitions),
	)

	runMapPhase(rc, pool, files, mapFn, log)
	pool.WaitIdle()

	runReducePhase(rc, pool, reduceFn, log)
	pool.WaitIdle()

	pool.Destroy()
	unregisterRunMetrics(runID, numPartitions)

	log.Info("run complete", zap.Duration("elapsed", time.Since(start)))
	return nil
}

// fileInfo pairs an input path with its size, for size-ascending sort.
type fileInfo struct {
	path string
	size int64
}

// runMapPhase stats every input file, sorts them ascending by size, and
// submits one map job per file with jobSize == file size. A file whose
// stat fails contributes size 0, matching the original's behavior of
// letting an inaccessible file sort first rather than aborting the run.
func runMapPhase(rc *RunContext, pool *Pool, files []string, mapFn MapFunc, log *zap.Logger) {
	infos := make([]fileInfo, len(files))
	for i, f := range files {
		fi, err := os.Stat(f)
		if err != nil {
			log.Warn("stat failed, treating file as size 0", zap.String("path", f), zap.Error(err))
			infos[i] = fileInfo{path: f, size: 0}
			continue
		}
		infos[i] = fileInfo{path: f, size: fi.Size()}
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].size < infos[j].size })

	for _, fi := range infos {
		path := fi.path
		_ = pool.Submit(func() {
			mapFn(rc, path)
		}, uint64(fi.size))
	}
}

// partBytes pairs a partition index with its byte accumulator, for
// size-ascending sort ahead of the reduce phase.
type partBytes struct {
	index uint32
	bytes uint64
}

// runReducePhase snapshots every partition's byte count, sorts ascending,
// and submits one reduce job per partition with jobSize == that count.
// Each reduce job drains its partition to exhaustion by repeatedly copying
// the head key and calling reduceFn with it (reduceFn pops the values via
// GetNext), until the partition is empty.
func runReducePhase(rc *RunContext, pool *Pool, reduceFn ReduceFunc, log *zap.Logger) {
	parts := make([]partBytes, len(rc.partitions))
	for i, p := range rc.partitions {
		parts[i] = partBytes{index: uint32(i), bytes: p.snapshotBytes()}
	}

	sort.Slice(parts, func(i, j int) bool { return parts[i].bytes < parts[j].bytes })

	for _, pb := range parts {
		idx := pb.index
		_ = pool.Submit(func() {
			drainPartition(rc, reduceFn, idx)
		}, pb.bytes)
	}
}

// drainPartition repeatedly copies the current head key of partition idx
// and invokes reduceFn with it, until the partition reports an empty head.
// The key is read before GetNext is called again so that reduceFn's own
// GetNext calls (which mutate the list) never race against the key the
// callback was given.
func drainPartition(rc *RunContext, reduceFn ReduceFunc, idx uint32) {
	part := rc.partitions[idx]
	for {
		part.mu.Lock()
		if part.head == nil {
			part.mu.Unlock()
			return
		}
		key := part.head.key
		part.mu.Unlock()

		reduceFn(rc, key, idx)
	}
}
