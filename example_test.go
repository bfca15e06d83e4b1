package lockingqueue

import (
	"context"
	"fmt"
	"time"
)

// Example showing basic FIFO with the non-blocking TryPop.
func Example_basic() {
	q := New[int]()
	q.Push(3)
	q.Push(1)
	q.Push(4)
	for {
		v, ok := q.TryPop()
		if !ok {
			break
		}
		fmt.Println(v)
	}
	// Output:
	// 3
	// 1
	// 4
}

// Example of a consumer blocked in WaitAndPop being woken by a producer.
func Example_waitAndPop() {
	q := New[string]()
	go func() {
		time.Sleep(10 * time.Millisecond)
		q.Push("hello")
	}()
	fmt.Println(q.WaitAndPop())
	// Output:
	// hello
}

// Example of a bounded wait on a queue that stays empty.
func Example_tryWaitAndPop() {
	q := New[int]()
	_, ok := q.TryWaitAndPop(10 * time.Millisecond)
	fmt.Println(ok)
	q.Push(9)
	v, ok := q.TryWaitAndPop(10 * time.Millisecond)
	fmt.Println(v, ok)
	// Output:
	// false
	// 9 true
}

// Example composing the queue with a cancellation signal.
func Example_context() {
	q := New[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := q.WaitAndPopContext(ctx)
	fmt.Println(IsContextError(err))
	fmt.Println(err == ErrDeadlineExceeded)
	// Output:
	// true
	// true
}

// Example for PushMany and Peek.
func Example_pushMany() {
	q := New[string]()
	q.PushMany("x", "y", "z")
	v, _ := q.Peek()
	fmt.Println(v, q.Len())
	// Output:
	// x 3
}
