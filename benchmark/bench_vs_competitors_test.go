package benchmark_test

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/urfave/cli/v2"

	"github.com/dzonerzy/go-cstress/settings"
)

// The same rate and node settings expressed in each library's native syntax.
// All three resolve the command and the option values.

func noEnv(string) (string, bool) { return "", false }

func BenchmarkRateNode_Settings(b *testing.B) {
	args := []string{"write", "n=1000", "-rate", "threads=100", "throttle=15/s", "-node", "10.0.0.1,10.0.0.2"}
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		s, err := settings.Parse(args, settings.WithEnv(noEnv))
		if err != nil || s.Rate.Fixed == nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRateNode_Cobra(b *testing.B) {
	args := []string{"write", "--n", "1000", "--threads", "100", "--throttle", "15", "--node", "10.0.0.1,10.0.0.2"}
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		rootCmd := &cobra.Command{Use: "cstress"}
		writeCmd := &cobra.Command{
			Use: "write",
			Run: func(_ *cobra.Command, _ []string) {},
		}
		writeCmd.Flags().Uint64("n", 0, "Operation count")
		writeCmd.Flags().Uint64("threads", 0, "Thread count")
		writeCmd.Flags().Uint64("throttle", 0, "Operations per second")
		writeCmd.Flags().StringSlice("node", []string{"localhost"}, "Nodes to connect to")
		rootCmd.AddCommand(writeCmd)
		rootCmd.SetArgs(args)
		_ = rootCmd.Execute()
	}
}

func BenchmarkRateNode_Urfave(b *testing.B) {
	args := []string{"cstress", "write", "--n", "1000", "--threads", "100", "--throttle", "15", "--node", "10.0.0.1,10.0.0.2"}
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		app := &cli.App{
			Name: "cstress",
			Commands: []*cli.Command{
				{
					Name: "write",
					Flags: []cli.Flag{
						&cli.Uint64Flag{Name: "n", Usage: "Operation count"},
						&cli.Uint64Flag{Name: "threads", Usage: "Thread count"},
						&cli.Uint64Flag{Name: "throttle", Usage: "Operations per second"},
						&cli.StringSliceFlag{Name: "node", Value: cli.NewStringSlice("localhost"), Usage: "Nodes to connect to"},
					},
					Action: func(_ *cli.Context) error { return nil },
				},
			},
		}
		_ = app.Run(args)
	}
}

// Benchmark with grouped settings
// cobra and urfave have no notion of alternative usages, so the auto group is
// modelled as plain flags.

func BenchmarkAutoRate_Settings(b *testing.B) {
	args := []string{"read", "duration=5m", "-rate", "auto", "threads>=8", "threads<=64"}
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		s, err := settings.Parse(args, settings.WithEnv(noEnv))
		if err != nil || s.Rate.Auto == nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkAutoRate_Cobra(b *testing.B) {
	args := []string{"read", "--duration", "5m", "--auto", "--min-threads", "8", "--max-threads", "64"}
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		rootCmd := &cobra.Command{Use: "cstress"}
		readCmd := &cobra.Command{
			Use: "read",
			Run: func(_ *cobra.Command, _ []string) {},
		}
		readCmd.Flags().Duration("duration", 0, "Run time")
		readCmd.Flags().Bool("auto", false, "Stop increasing threads once throughput saturates")
		readCmd.Flags().Uint64("min-threads", 4, "Minimum thread count")
		readCmd.Flags().Uint64("max-threads", 1000, "Maximum thread count")
		readCmd.MarkFlagsRequiredTogether("min-threads", "max-threads")
		rootCmd.AddCommand(readCmd)
		rootCmd.SetArgs(args)
		_ = rootCmd.Execute()
	}
}

func BenchmarkAutoRate_Urfave(b *testing.B) {
	args := []string{"cstress", "read", "--duration", "5m", "--auto", "--min-threads", "8", "--max-threads", "64"}
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		app := &cli.App{
			Name: "cstress",
			Commands: []*cli.Command{
				{
					Name: "read",
					Flags: []cli.Flag{
						&cli.DurationFlag{Name: "duration", Usage: "Run time"},
						&cli.BoolFlag{Name: "auto", Usage: "Stop increasing threads once throughput saturates"},
						&cli.Uint64Flag{Name: "min-threads", Value: 4, Usage: "Minimum thread count"},
						&cli.Uint64Flag{Name: "max-threads", Value: 1000, Usage: "Maximum thread count"},
					},
					Action: func(_ *cli.Context) error { return nil },
				},
			},
		}
		_ = app.Run(args)
	}
}
