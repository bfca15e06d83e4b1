package lockingqueue

import (
	"testing"
	"time"
)

func BenchmarkPush(b *testing.B) {
	q := New[int]()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		q.Push(i)
	}
}

func BenchmarkPushTryPop(b *testing.B) {
	q := New[int]()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		q.Push(i)
		if i%2 == 1 { // keep size bounded
			q.TryPop()
			q.TryPop()
		}
	}
}

// Benchmark pairs of Push/WaitAndPop with a single consumer.
func BenchmarkPushWaitAndPop(b *testing.B) {
	q := New[int]()
	done := make(chan struct{})
	go func() {
		for i := 0; i < b.N; i++ {
			q.WaitAndPop()
		}
		close(done)
	}()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		q.Push(i)
	}
	<-done
}

func BenchmarkTryWaitAndPopHit(b *testing.B) {
	q := New[int]()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		q.Push(i)
		q.TryWaitAndPop(time.Millisecond)
	}
}

func BenchmarkParallelPushTryPop(b *testing.B) {
	q := New[int]()
	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			q.Push(i)
			q.TryPop()
			i++
		}
	})
}
