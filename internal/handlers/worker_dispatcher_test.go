package handlers_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/on-the-ground/fleeting_state/internal/handlers"
	"go.uber.org/zap"
)

// dummyMessage implements Partitionable for testing partitioned dispatching.
type dummyMessage struct {
	id    int
	group string
}

func (d dummyMessage) PartitionKey() string {
	return d.group
}

// Test that PartitionedQueue dispatches messages to the correct worker
// based on their PartitionKey.
func TestPartitionedQueue_DispatchesToCorrectWorker(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu        sync.Mutex
		workerHit = make(map[string][]int)
		wg        sync.WaitGroup
	)
	wg.Add(4)

	handleFn := func(_ context.Context, msg dummyMessage) {
		defer wg.Done()
		mu.Lock()
		workerHit[msg.group] = append(workerHit[msg.group], msg.id)
		mu.Unlock()
	}

	dispatcher := handlers.NewPartitionedQueue(ctx, 10, 10, zap.NewNop(), handleFn)

	msgs := []dummyMessage{
		{1, "groupA"},
		{2, "groupA"},
		{3, "groupB"},
		{4, "groupB"},
	}

	for _, msg := range msgs {
		ch := dispatcher.GetChannelOf(msg)
		ch <- msg
	}

	wg.Wait()

	mu.Lock()
	defer mu.Unlock()

	if len(workerHit["groupA"]) != 2 || len(workerHit["groupB"]) != 2 {
		t.Errorf("Expected each group to handle 2 messages: got %v", workerHit)
	}
}

// Test that messages with the same partition key
// are processed in order.
func TestPartitionedQueue_OrderIsPreservedForSamePartitionKey(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	const numMsgs = 100
	var (
		mu    sync.Mutex
		order []int
		wg    sync.WaitGroup
	)
	wg.Add(numMsgs)

	dispatcher := handlers.NewPartitionedQueue(ctx, 4, 8, zap.NewNop(), func(_ context.Context, msg dummyMessage) {
		defer wg.Done()
		mu.Lock()
		order = append(order, msg.id)
		mu.Unlock()
	})

	for i := 0; i < numMsgs; i++ {
		msg := dummyMessage{id: i, group: "same"}
		dispatcher.GetChannelOf(msg) <- msg
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	for i, id := range order {
		if id != i {
			t.Fatalf("message %d handled out of order: got %v", i, order)
		}
	}
}

// Test that a panicking handler does not kill its worker.
func TestPartitionedQueue_SurvivesHandlerPanic(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handled := make(chan int, 1)
	dispatcher := handlers.NewPartitionedQueue(ctx, 1, 2, zap.NewNop(), func(_ context.Context, msg dummyMessage) {
		if msg.id == 0 {
			panic("boom")
		}
		handled <- msg.id
	})

	dispatcher.GetChannelOf(dummyMessage{}) <- dummyMessage{id: 0, group: "g"}
	dispatcher.GetChannelOf(dummyMessage{}) <- dummyMessage{id: 1, group: "g"}

	select {
	case id := <-handled:
		if id != 1 {
			t.Fatalf("expected message 1, got %d", id)
		}
	case <-time.After(time.Second):
		t.Fatal("worker stopped after panic")
	}
}
