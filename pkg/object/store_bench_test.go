package object

import (
	"crypto/rand"
	"os"
	"path/filepath"
	"testing"
)

func benchStore(b *testing.B) *Store {
	b.Helper()
	dir := b.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "objects"), 0o755); err != nil {
		b.Fatalf("Mkdir: %v", err)
	}
	return NewStore(dir)
}

func randomPayloads(b *testing.B, size int) [][]byte {
	b.Helper()
	// Distinct payloads so each Put writes instead of hitting the
	// already-stored fast path.
	payloads := make([][]byte, b.N)
	for i := range payloads {
		buf := make([]byte, size)
		if _, err := rand.Read(buf); err != nil {
			b.Fatalf("rand.Read: %v", err)
		}
		payloads[i] = buf
	}
	return payloads
}

// BenchmarkStorePutSmall benchmarks writing a 100-byte blob to the store.
func BenchmarkStorePutSmall(b *testing.B) {
	s := benchStore(b)
	payloads := randomPayloads(b, 100)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.Put(payloads[i]); err != nil {
			b.Fatalf("Put: %v", err)
		}
	}
}

// BenchmarkStorePutLarge benchmarks writing a 100KB blob to the store.
func BenchmarkStorePutLarge(b *testing.B) {
	s := benchStore(b)
	payloads := randomPayloads(b, 100*1024)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.Put(payloads[i]); err != nil {
			b.Fatalf("Put: %v", err)
		}
	}
}

// BenchmarkStoreGetUncached reads an object from disk on every iteration.
func BenchmarkStoreGetUncached(b *testing.B) {
	s := benchStore(b)
	data := make([]byte, 4096)
	if _, err := rand.Read(data); err != nil {
		b.Fatalf("rand.Read: %v", err)
	}
	h, err := s.Put(data)
	if err != nil {
		b.Fatalf("Put: %v", err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.cache.Purge()
		if _, err := s.Get(h); err != nil {
			b.Fatalf("Get: %v", err)
		}
	}
}

// BenchmarkStoreGetCached reads the same object back through the cache.
func BenchmarkStoreGetCached(b *testing.B) {
	s := benchStore(b)
	h, err := s.Put([]byte("cached object"))
	if err != nil {
		b.Fatalf("Put: %v", err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.Get(h); err != nil {
			b.Fatalf("Get: %v", err)
		}
	}
}
