package dedup

import (
	"math/rand"
	"testing"
)

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

func BenchmarkPush_DedupHits(b *testing.B) {
	q := New[int]()
	// Preload with a small range to force many duplicate hits.
	for i := 0; i < 1024; i++ {
		q.Push(i)
	}
	rnd := rand.New(rand.NewSource(1))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		q.Push(rnd.Intn(1024)) // mostly ignored
	}
}
