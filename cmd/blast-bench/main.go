// Profiling:
// go build ./cmd/blast-bench
// BENCH_PROFILE=mem ./blast-bench
// go tool pprof -http=":8000" -nodefraction=0.001 ./blast-bench mem.pprof

package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/l1jgo/bullets/internal/app"
	"github.com/l1jgo/bullets/internal/config"
	"github.com/l1jgo/bullets/internal/geom"
	"github.com/pkg/profile"
	"go.uber.org/zap"
)

const (
	rounds  = 20
	waves   = 40 // spawns per round, one per preset in turn
	ticks   = 240
	targets = 32
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Default()
	if p := os.Getenv("BULLETS_CONFIG"); p != "" {
		var err error
		if cfg, err = config.Load(p); err != nil {
			return err
		}
	}
	cfg.Logging.Level = "warn"
	log, err := app.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	a, err := app.New(context.Background(), cfg, log, app.Options{Seed: 42, NoDatabase: true})
	if err != nil {
		return err
	}
	defer func() { _ = a.Close(context.Background()) }()
	a.Prewarm()
	a.SpawnTargets("dummy", targets, geom.Vec2{}, 200)

	mode := profile.CPUProfile
	if os.Getenv("BENCH_PROFILE") == "mem" {
		mode = profile.MemProfileAllocs
	}
	p := profile.Start(mode, profile.ProfilePath("."), profile.NoShutdownHook)
	res := bench(a)
	p.Stop()

	res.print()
	log.Info("效能測試完成", zap.Duration("elapsed", res.elapsed))
	return nil
}

type result struct {
	spawned int
	bullets int
	peak    int
	ticks   int
	elapsed time.Duration
	spawnIn time.Duration
	tickIn  time.Duration
	groups  int
}

func bench(a *app.App) result {
	var r result
	names := a.Presets.Names()
	rng := rand.New(rand.NewPCG(7, 11))
	start := time.Now()

	for round := 0; round < rounds; round++ {
		t0 := time.Now()
		for w := 0; w < waves; w++ {
			name := names[w%len(names)]
			d, err := a.Presets.Build(name, geom.Vec2{}, rng.Float64()*geom.Tau, a.Scripts, rng)
			if err != nil {
				continue
			}
			if _, err := a.Factory.Spawn(d, geom.Vec2{}); err != nil {
				continue
			}
			r.spawned++
			r.bullets += d.Capacity()
		}
		r.spawnIn += time.Since(t0)

		t0 = time.Now()
		for i := 0; i < ticks; i++ {
			a.Tick()
			if i%30 == 0 {
				r.peak = max(r.peak, a.Factory.Stats().ActiveBullets())
			}
		}
		r.tickIn += time.Since(t0)
		r.ticks += ticks
		// infinite presets never retire on their own
		a.Factory.FreeActive()
	}
	r.elapsed = time.Since(start)
	r.groups = a.Grid.GroupCount()
	return r
}

func (r result) print() {
	fmt.Printf("batches spawned   %d (%d bullets)\n", r.spawned, r.bullets)
	fmt.Printf("peak live bullets %d\n", r.peak)
	fmt.Printf("spawn             %v total, %v per batch\n", r.spawnIn, perOp(r.spawnIn, r.spawned))
	fmt.Printf("tick              %v total, %v per tick\n", r.tickIn, perOp(r.tickIn, r.ticks))
	fmt.Printf("shape groups left %d\n", r.groups)
	fmt.Printf("elapsed           %v\n", r.elapsed)
}

func perOp(d time.Duration, n int) time.Duration {
	if n == 0 {
		return 0
	}
	return d / time.Duration(n)
}
