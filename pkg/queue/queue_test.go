package queue

import (
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQueueReturnsDataInOrder(t *testing.T) {
	t.Parallel()

	q := NewConcurrentQueue[int](0)
	for i := 0; i < 100; i++ {
		q.Enqueue(i)
	}
	for i := 0; i < 100; i++ {
		v, ok := q.Dequeue()
		require.True(t, ok)
		require.Equal(t, i, v)
	}
}

func TestQueueDrainAll(t *testing.T) {
	t.Parallel()

	q := NewConcurrentQueue[string](0)
	require.Nil(t, q.DrainAll())

	q.Enqueue("a")
	q.Enqueue("b")
	q.Enqueue("c")

	require.Equal(t, []string{"a", "b", "c"}, q.DrainAll())
	require.Equal(t, 0, q.Len())
	require.Nil(t, q.DrainAll())
}

func TestQueueClear(t *testing.T) {
	t.Parallel()

	q := NewConcurrentQueue[int](0)
	for i := 0; i < 10; i++ {
		q.Enqueue(i)
	}
	q.Clear()

	require.Equal(t, 0, q.Len())
	_, ok := q.Dequeue()
	require.False(t, ok)
}

// Good test to run with the -race option.
func TestQueueMultipleProducers(t *testing.T) {
	t.Parallel()

	const producers = 8
	const perProducer = 250

	q := NewConcurrentQueue[int](0)
	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Enqueue(base + i)
			}
		}(p * perProducer)
	}
	wg.Wait()

	got := q.DrainAll()
	require.Len(t, got, producers*perProducer)

	// Each producer's items must appear in its submission order.
	for p := 0; p < producers; p++ {
		base := p * perProducer
		prev := -1
		for _, v := range got {
			if v >= base && v < base+perProducer {
				require.Greater(t, v, prev)
				prev = v
			}
		}
	}

	slices.Sort(got)
	for i, v := range got {
		require.Equal(t, i, v)
	}
}

func TestQueueNewDataWakesConsumer(t *testing.T) {
	t.Parallel()

	q := NewConcurrentQueue[int](0)
	done := make(chan int)
	go func() {
		<-q.NewData()
		v, _ := q.Dequeue()
		done <- v
	}()

	q.Enqueue(42)
	require.Equal(t, 42, <-done)
}
