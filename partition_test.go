package mapreduce

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPartitionerIsBitExactDjb2(t *testing.T) {
	// h = 5381; h = h*33 + c for each byte of "hello", mod 10.
	var h uint64 = 5381
	for _, c := range []byte("hello") {
		h = h*33 + uint64(c)
	}
	want := uint32(h % 10)

	assert.Equal(t, want, DefaultPartitioner("hello", 10))
}

func TestDefaultPartitionerZeroPartitionsIsNoPanic(t *testing.T) {
	assert.Equal(t, uint32(0), DefaultPartitioner("anything", 0))
}

func TestDefaultPartitionerDeterministic(t *testing.T) {
	for _, key := range []string{"", "a", "the", "cat", "sat on the mat"} {
		first := DefaultPartitioner(key, 17)
		for i := 0; i < 5; i++ {
			assert.Equal(t, first, DefaultPartitioner(key, 17))
		}
	}
}

func TestPartitionEmitSortInvariant(t *testing.T) {
	p := &partition{}
	keys := []string{"banana", "apple", "cherry", "apple", "date", "banana"}
	for _, k := range keys {
		p.emit(k, "v")
	}

	var got []string
	for n := p.head; n != nil; n = n.next {
		got = append(got, n.key)
	}

	sorted := append([]string(nil), got...)
	sort.Strings(sorted)
	assert.Equal(t, sorted, got, "partition list must be key-sorted ascending")
}

func TestPartitionGetNextMultiplicity(t *testing.T) {
	p := &partition{}
	p.emit("hello", "1")
	p.emit("hello", "1")
	p.emit("hello", "1")
	p.emit("world", "1")

	var drained []string
	for {
		v, ok := p.getNext("hello")
		if !ok {
			break
		}
		drained = append(drained, v)
	}
	assert.Equal(t, []string{"1", "1", "1"}, drained)

	// world is still at the head now.
	v, ok := p.getNext("world")
	require.True(t, ok)
	assert.Equal(t, "1", v)

	_, ok = p.getNext("world")
	assert.False(t, ok)
}

func TestPartitionGetNextWrongKeyAtHeadReturnsFalse(t *testing.T) {
	p := &partition{}
	p.emit("b", "1")
	p.emit("a", "1")

	// head is "a" (sorted ascending); asking for "b" must not pop anything.
	_, ok := p.getNext("b")
	assert.False(t, ok)

	v, ok := p.getNext("a")
	require.True(t, ok)
	assert.Equal(t, "1", v)
}

func TestPartitionGetNextOutOfRangeOnRunContext(t *testing.T) {
	rc := &RunContext{partitions: newPartitions("t", 2)}
	_, ok := rc.GetNext("x", 5)
	assert.False(t, ok)
}

func TestPartitionByteAccumulatorTracksLiveBytes(t *testing.T) {
	p := &partition{}
	assert.Equal(t, uint64(0), p.snapshotBytes())

	p.emit("ab", "cd") // len("ab")+len("cd")+2 = 6
	assert.Equal(t, uint64(6), p.snapshotBytes())

	p.emit("e", "f") // +4
	assert.Equal(t, uint64(10), p.snapshotBytes())

	_, ok := p.getNext("ab")
	require.True(t, ok)
	assert.Equal(t, uint64(4), p.snapshotBytes())
}

func TestConcurrentEmitAcrossPartitionsPreservesInvariants(t *testing.T) {
	// S5: W map jobs each emit many pairs with keys from a small alphabet;
	// after all emits, every partition is sorted, every pair routes to the
	// partition DefaultPartitioner assigns it, and the total count matches.
	const (
		numMapJobs    = 8
		pairsPerJob   = 10000
		alphabetSize  = 200
		numPartitions = 16
	)

	alphabet := make([]string, alphabetSize)
	for i := range alphabet {
		alphabet[i] = fmt.Sprintf("key-%d", i)
	}

	parts := newPartitions("s5", numPartitions)

	var wg sync.WaitGroup
	wg.Add(numMapJobs)
	for j := 0; j < numMapJobs; j++ {
		go func(seed int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(int64(seed)))
			for i := 0; i < pairsPerJob; i++ {
				k := alphabet[r.Intn(alphabetSize)]
				idx := DefaultPartitioner(k, numPartitions)
				parts[idx].emit(k, "1")
			}
		}(j)
	}
	wg.Wait()

	total := 0
	for idx, p := range parts {
		var prev string
		count := 0
		for n := p.head; n != nil; n = n.next {
			if count > 0 {
				assert.LessOrEqual(t, prev, n.key, "partition %d out of order", idx)
			}
			assert.Equal(t, uint32(idx), DefaultPartitioner(n.key, numPartitions), "pair routed to wrong partition")
			prev = n.key
			count++
		}
		total += count
	}

	assert.Equal(t, numMapJobs*pairsPerJob, total)
}
