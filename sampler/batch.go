package sampler

import (
	"runtime"
	"sync"

	"github.com/notargets/meshtree/mesh"
)

// ShardStrategy defines how batch points are grouped across workers
type ShardStrategy int

const (
	BlockShards      ShardStrategy = iota // consecutive points per worker
	RoundRobinShards                      // distribute cyclically
)

// BatchConfig controls parallel batch evaluation. The zero value is usable:
// Workers defaults to GOMAXPROCS with block sharding.
type BatchConfig struct {
	Workers  int // evaluation goroutines
	Strategy ShardStrategy
}

// BatchResult is one entry of a batch evaluation
type BatchResult struct {
	Result
	Found bool
}

// EvalBatch evaluates the field at every point, sharded across worker
// goroutines. The index and field are only read, so workers share them
// without locking.
func (l *Locator) EvalBatch(xs []mesh.Point, f *Field, cfg BatchConfig) []BatchResult {
	out := make([]BatchResult, len(xs))
	if len(xs) == 0 {
		return out
	}
	w := cfg.Workers
	if w <= 0 {
		w = runtime.GOMAXPROCS(0)
	}
	if w > len(xs) {
		w = len(xs)
	}

	var wg sync.WaitGroup
	for s := 0; s < w; s++ {
		wg.Add(1)
		go func(shard int) {
			defer wg.Done()
			switch cfg.Strategy {
			case RoundRobinShards:
				for i := shard; i < len(xs); i += w {
					out[i].Result, out[i].Found = l.Eval(xs[i], f)
				}
			default: // BlockShards
				per := (len(xs) + w - 1) / w
				lo := shard * per
				hi := lo + per
				if hi > len(xs) {
					hi = len(xs)
				}
				for i := lo; i < hi; i++ {
					out[i].Result, out[i].Found = l.Eval(xs[i], f)
				}
			}
		}(s)
	}
	wg.Wait()
	return out
}
