/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package pydevd

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequenceCounter(t *testing.T) {
	t.Parallel()

	c := NewSequenceCounter()
	assert.Equal(t, int64(0), c.Current(), "initial value should be 0")

	assert.Equal(t, Sequence(1), c.NextOdd())
	assert.Equal(t, Sequence(2), c.NextEven())
	assert.Equal(t, Sequence(5), c.NextOdd())
	assert.Equal(t, int64(6), c.Current())

	seq, err := c.Next(OriginDaemon)
	require.NoError(t, err)
	assert.Equal(t, Sequence(6), seq)

	_, err = c.Next(Origin("ide"))
	require.Error(t, err)

	c.Reset()
	assert.Equal(t, Sequence(1), c.NextOdd(), "counter should restart after Reset")
}

func TestSequenceParity(t *testing.T) {
	t.Parallel()

	c := NewSequenceCounter()
	for i := 0; i < 50; i++ {
		odd := c.NextOdd()
		assert.Equal(t, OriginDebugger, odd.Origin(), "%d should be a debugger sequence", odd)
		even := c.NextEven()
		assert.Equal(t, OriginDaemon, even.Origin(), "%d should be a daemon sequence", even)
	}
}

func TestSequenceCounterConcurrentMintsAreUnique(t *testing.T) {
	t.Parallel()

	const workers = 8
	const perWorker = 200

	c := NewSequenceCounter()
	results := make(chan Sequence, workers*perWorker)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				if w%2 == 0 {
					results <- c.NextOdd()
				} else {
					results <- c.NextEven()
				}
			}
		}(w)
	}
	wg.Wait()
	close(results)

	seen := make(map[Sequence]bool, workers*perWorker)
	for seq := range results {
		require.False(t, seen[seq], "sequence %d minted twice", seq)
		seen[seq] = true
	}
	assert.Len(t, seen, workers*perWorker)
}

func TestSequencesIterator(t *testing.T) {
	t.Parallel()

	c := NewSequenceCounter()
	var got []Sequence
	for seq := range c.Sequences(OriginDebugger) {
		got = append(got, seq)
		if len(got) == 3 {
			break
		}
	}
	assert.Equal(t, []Sequence{1, 3, 5}, got)

	for seq := range c.Sequences(OriginDaemon) {
		assert.Equal(t, Sequence(6), seq, "iteration should continue from the shared counter")
		break
	}
}

func TestNewSequence(t *testing.T) {
	t.Parallel()

	seq, err := NewSequence(0)
	require.NoError(t, err)
	assert.Equal(t, OriginDaemon, seq.Origin())

	_, err = NewSequence(-1)
	require.Error(t, err)

	_, err = ParseSequence("x")
	require.Error(t, err)

	seq, err = ParseSequence("17")
	require.NoError(t, err)
	assert.Equal(t, Sequence(17), seq)
}
