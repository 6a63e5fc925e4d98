//nolint:testpackage // using package name 'benchmark' to access unexported fields for testing
package benchmark

import (
	"testing"

	"github.com/dzonerzy/go-cstress/settings"
	"github.com/dzonerzy/go-cstress/settings/option"
	"github.com/dzonerzy/go-cstress/settings/param"
)

// Category: parser

func BenchmarkParseRateFixed(b *testing.B) {
	frags := []string{"threads=100", "throttle=15/s"}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r, err := option.ParseRate(frags)
		if err != nil || r.Fixed == nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkParseRateAuto(b *testing.B) {
	frags := []string{"auto", "threads>=8", "threads<=64"}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r, err := option.ParseRate(frags)
		if err != nil || r.Auto == nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkParseNode(b *testing.B) {
	frags := []string{"datacenter=dc1", "whitelist", "10.0.0.1,10.0.0.2,10.0.0.3"}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		n, err := option.ParseNode(frags)
		if err != nil || len(n.Nodes) != 3 {
			b.Fatal(err)
		}
	}
}

func BenchmarkParseSchema(b *testing.B) {
	frags := []string{"keyspace=ks1", "replication(strategy=NetworkTopologyStrategy,dc1=3,dc2=2)", "compaction(strategy=LeveledCompactionStrategy)"}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s, err := option.ParseSchema(frags)
		if err != nil || len(s.Replication.Options) != 2 {
			b.Fatal(err)
		}
	}
}

func BenchmarkParseCommand(b *testing.B) {
	frags := []string{"n=1m", "cl=quorum", "no-warmup"}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c, err := option.ParseCommand("write", frags)
		if err != nil || c.Stop != option.StopOnCount {
			b.Fatal(err)
		}
	}
}

func BenchmarkParseError(b *testing.B) {
	frags := []string{"thraeds=4"}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := option.ParseRate(frags); err == nil {
			b.Fatal("expected error")
		}
	}
}

func BenchmarkValueKinds(b *testing.B) {
	b.Run("Count", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = param.Count.Parse("250k")
		}
	})
	b.Run("Rate", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = param.Rate.Parse("15000/s")
		}
	})
	b.Run("Duration", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = param.Duration.Parse("90s")
		}
	})
}

func BenchmarkSplitArgs(b *testing.B) {
	args := []string{"write", "n=100", "cl=quorum", "-rate", "threads=8", "throttle=10/s", "-node", "10.0.0.1", "-schema"}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := settings.SplitArgs(args); err != nil {
			b.Fatal(err)
		}
	}
}
