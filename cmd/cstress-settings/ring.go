package main

import (
	"encoding/hex"
	"fmt"
	"math/rand"
	"runtime"
	"sort"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dzonerzy/go-cstress/ring"
	"github.com/dzonerzy/go-cstress/settings"
	"github.com/dzonerzy/go-cstress/token"
)

var (
	tokenKeyType string
	composite    bool
)

var tokensCmd = &cobra.Command{
	Use:   "tokens [flags] <key>...",
	Short: "Print the Murmur3 token of partition keys",
	Long: "Print the Murmur3 token of each key. With --composite the keys are the " +
		"components of a single composite partition key.",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b := token.NewKeyBuilder()
		defer b.Release()

		out := cmd.OutOrStdout()
		for _, arg := range args {
			if !composite {
				b.Reset()
			}
			if err := appendComponent(b, tokenKeyType, arg); err != nil {
				return err
			}
			if composite {
				continue
			}
			tok, err := b.Token()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s\t%d\n", arg, tok)
		}
		if composite {
			tok, err := b.Token()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%d\n", tok)
		}
		return nil
	},
}

func appendComponent(b *token.KeyBuilder, kind, raw string) error {
	switch kind {
	case "text":
		b.Text(raw)
	case "int32":
		v, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid int32 key %q: %w", raw, err)
		}
		b.Int32(int32(v))
	case "int64":
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid int64 key %q: %w", raw, err)
		}
		b.Int64(v)
	case "uuid":
		id, err := uuid.Parse(raw)
		if err != nil {
			return fmt.Errorf("invalid uuid key %q: %w", raw, err)
		}
		b.UUID(id)
	case "blob":
		p, err := hex.DecodeString(raw)
		if err != nil {
			return fmt.Errorf("invalid hex key %q: %w", raw, err)
		}
		b.Blob(p)
	default:
		return fmt.Errorf("unknown key type %q (want text, int32, int64, uuid or blob)", kind)
	}
	return nil
}

var (
	ringNodes   []string
	vnodes      int
	seed        int64
	sampleKeys  int
	ringWorkers int
	ringKeyType string
)

var ringCmd = &cobra.Command{
	Use:   "ring [flags] [-- <command> [-node ...]]",
	Short: "Preview how generated keys spread over a simulated token ring",
	Long: "Build a token ring with --vnodes tokens per node and hash --keys generated " +
		"keys onto it. Nodes come from --nodes or from the -node option of a stress command line.",
	RunE: func(cmd *cobra.Command, args []string) error {
		nodes := ringNodes
		if len(args) > 0 {
			s, err := settings.Parse(args, settings.WithLogger(logger))
			if err != nil {
				return err
			}
			nodes = s.Node.Nodes
		}

		r, err := ring.New(nodes, vnodes, seed)
		if err != nil {
			return err
		}

		keys, err := generateKeys(ringKeyType, sampleKeys, seed)
		if err != nil {
			return err
		}
		logger.Debug("hashing sample keys",
			zap.Int("keys", len(keys)),
			zap.Int("tokens", r.Tokens()),
			zap.Int("workers", ringWorkers))

		counts, err := r.Distribution(cmd.Context(), keys, ringWorkers)
		if err != nil {
			return err
		}

		owned := r.Ownership()
		names := append([]string(nil), r.Nodes()...)
		sort.Strings(names)
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-24s %10s %10s %10s\n", "Node", "Owns", "Keys", "Share")
		for _, n := range names {
			share := 0.0
			if len(keys) > 0 {
				share = float64(counts[n]) / float64(len(keys))
			}
			fmt.Fprintf(out, "%-24s %9.2f%% %10d %9.2f%%\n", n, owned[n]*100, counts[n], share*100)
		}
		return nil
	},
}

// generateKeys builds n single component keys of the given type from a
// seeded source so repeated runs hash the same keys.
func generateKeys(kind string, n int, seed int64) ([][]byte, error) {
	rng := rand.New(rand.NewSource(seed))
	b := token.NewKeyBuilder()
	defer b.Release()

	keys := make([][]byte, 0, n)
	for i := 0; i < n; i++ {
		b.Reset()
		switch kind {
		case "text":
			b.Text("key" + strconv.Itoa(i))
		case "int32":
			b.Int32(rng.Int31())
		case "int64":
			b.Int64(rng.Int63())
		case "uuid":
			id, err := uuid.NewRandomFromReader(rng)
			if err != nil {
				return nil, err
			}
			b.UUID(id)
		case "blob":
			p := make([]byte, 16)
			rng.Read(p)
			b.Blob(p)
		default:
			return nil, fmt.Errorf("unknown key type %q (want text, int32, int64, uuid or blob)", kind)
		}
		key, err := b.Bytes()
		if err != nil {
			return nil, err
		}
		keys = append(keys, append([]byte(nil), key...))
	}
	return keys, nil
}

func init() {
	tokensCmd.Flags().StringVarP(&tokenKeyType, "type", "t", "text", "key type: text, int32, int64, uuid or blob (hex)")
	tokensCmd.Flags().BoolVar(&composite, "composite", false, "treat the keys as components of one composite key")

	ringCmd.Flags().StringSliceVar(&ringNodes, "nodes", []string{"localhost"}, "nodes of the simulated ring")
	ringCmd.Flags().IntVar(&vnodes, "vnodes", 256, "tokens per node")
	ringCmd.Flags().Int64Var(&seed, "seed", 1, "seed for tokens and generated keys")
	ringCmd.Flags().IntVar(&sampleKeys, "keys", 100_000, "number of generated keys")
	ringCmd.Flags().IntVar(&ringWorkers, "workers", runtime.NumCPU(), "hashing goroutines")
	ringCmd.Flags().StringVarP(&ringKeyType, "type", "t", "uuid", "generated key type: text, int32, int64, uuid or blob")
}
