//nolint:testpackage // using package name 'benchmark' to access unexported fields for testing
package benchmark

import (
	"fmt"
	"testing"

	fuzzy "github.com/dzonerzy/go-cstress/internal/fuzzy"
	pool "github.com/dzonerzy/go-cstress/internal/pool"
)

// Category: pool

func BenchmarkBufferPool_GetPut(b *testing.B) {
	bp := pool.NewBufferPool()

	for _, size := range []int{16, 64, 256, 1024, 4096} {
		b.Run(fmt.Sprintf("Size%d", size), func(b *testing.B) {
			b.RunParallel(func(pb *testing.PB) {
				for pb.Next() {
					buf := bp.Get(size)
					*buf = append(*buf, make([]byte, size/2)...)
					bp.Put(buf)
				}
			})
		})
	}
}

func BenchmarkPool_vs_Direct(b *testing.B) {
	p := pool.NewPoolWithReset(func() *[]byte {
		buf := make([]byte, 0, 64)
		return &buf
	}, func(buf *[]byte) { *buf = (*buf)[:0] })

	b.Run("Pool", func(b *testing.B) {
		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				obj := p.Get()
				*obj = append(*obj, 0, 4, 1, 2, 3, 4, 0)
				p.Put(obj)
			}
		})
	})

	b.Run("Direct", func(b *testing.B) {
		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				buf := make([]byte, 0, 64)
				buf = append(buf, 0, 4, 1, 2, 3, 4, 0)
				_ = buf
			}
		})
	})
}

// Category: fuzzy

func BenchmarkFindBestPrefix(b *testing.B) {
	prefixes := []string{"threads=", "throttle=", "fixed=", "auto", "threads>=", "threads<="}
	b.Run("Hit", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			fuzzy.FindBestPrefix("thraeds", prefixes, 2)
		}
	})
	b.Run("Miss", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			fuzzy.FindBestPrefix("compaction", prefixes, 2)
		}
	})
}
