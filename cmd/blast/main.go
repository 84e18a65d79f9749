package main

import (
	"context"
	"fmt"
	"maps"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/l1jgo/bullets/internal/app"
	"github.com/l1jgo/bullets/internal/config"
	"github.com/l1jgo/bullets/internal/factory"
	"github.com/l1jgo/bullets/internal/geom"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(cfgPath string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m             Bullets  v0.1.0               \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m        批次彈幕模擬 · 無頭執行器          \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1m設定檔:\033[0m %s\n\n", cfgPath)
}

// displayWidth counts CJK runes as two columns.
func displayWidth(s string) int {
	w := 0
	for _, r := range s {
		if r > 0x7F {
			w += 2
		} else {
			w++
		}
	}
	return w
}

func printSection(title string) {
	lineLen := 46 - displayWidth(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - displayWidth(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Engine loop ────────────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/blast.toml"
	if p := os.Getenv("BULLETS_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	// 2. Logger
	log, err := app.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	printBanner(cfgPath)

	// 3. Scripts, presets, scene and factory
	ctx := context.Background()
	a, err := app.New(ctx, cfg, log, app.Options{Seed: uint64(time.Now().UnixNano())})
	if err != nil {
		return err
	}

	printSection("載入資料")
	printStat("彈幕預設", a.Presets.Count())
	printStat("Lua 曲線", len(a.Scripts.CurveNames()))
	printStat("場景模板", a.Templates())
	fmt.Println()

	// 4. Database and snapshot restore
	if a.Database() {
		printSection("資料庫")
		printOK("資料庫連線成功")
		restored, err := a.Restore(ctx)
		if err != nil {
			log.Warn("快照還原失敗", zap.Error(err))
		}
		printStat("還原批次", restored)
		fmt.Println()
	}

	// 5. Pools
	a.Prewarm()
	st := a.Factory.Stats()
	printSection("物件池")
	printStat("方向型批次", st.Directional.PooledBatches)
	printStat("區塊型批次", st.Block.PooledBatches)
	printStat("附件", st.PooledAttachments)
	fmt.Println()

	// 6. Targets and emitters
	targets := a.SpawnTargets("dummy", cfg.Sandbox.Targets, geom.Vec2{}, 240)
	if err := a.AddEmitters(cfg.Sandbox.Preset, geom.Vec2{}); err != nil {
		_ = a.Close(ctx)
		return err
	}

	// 7. Start loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Engine.TickRate)
	defer ticker.Stop()
	report := time.NewTicker(5 * time.Second)
	defer report.Stop()

	var deadline <-chan time.Time
	if d := os.Getenv("BULLETS_DURATION"); d != "" {
		dur, err := time.ParseDuration(d)
		if err != nil {
			_ = a.Close(ctx)
			return fmt.Errorf("parse BULLETS_DURATION: %w", err)
		}
		deadline = time.After(dur)
	}

	printSection("引擎就緒")
	printReady(fmt.Sprintf("發射器 %d 個，目標 %d 個", len(a.Emitters.Emitters()), len(targets)))
	printReady(fmt.Sprintf("模擬迴圈啟動 (tick: %s)", cfg.Engine.TickRate))
	fmt.Println()

	start := time.Now()
	for {
		select {
		case <-ticker.C:
			a.Tick()
		case <-report.C:
			s := a.Factory.Stats()
			log.Info("模擬狀態",
				zap.Uint64("ticks", a.Bullets.Ticks()),
				zap.Int("batches", s.Directional.ActiveBatches+s.Block.ActiveBatches),
				zap.Int("bullets", s.ActiveBullets()),
				zap.Int("hits", a.Hits()))
		case <-deadline:
			log.Info("到達執行時間上限")
			return shutdown(a, log, start)
		case sig := <-shutdownCh:
			log.Info("收到關閉信號", zap.String("signal", sig.String()))
			return shutdown(a, log, start)
		}
	}
}

func shutdown(a *app.App, log *zap.Logger, start time.Time) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.Close(ctx); err != nil {
		log.Error("關閉時存檔失敗", zap.Error(err))
	}
	printReport(a, time.Since(start))
	log.Info("引擎已停止")
	return nil
}

func printReport(a *app.App, elapsed time.Duration) {
	p := message.NewPrinter(language.TraditionalChinese)
	s := a.Factory.Stats()
	ticks := a.Bullets.Ticks()

	fmt.Println()
	printSection("統計")
	p.Printf("  執行時間      %v\n", elapsed.Round(time.Millisecond))
	p.Printf("  更新次數      %d\n", ticks)
	p.Printf("  發射批次      %d\n", a.Emitters.Fired())
	p.Printf("  命中次數      %d\n", a.Hits())
	p.Printf("  擊破目標      %d\n", a.Kills())
	p.Printf("  存活子彈      %d\n", s.ActiveBullets())
	if secs := elapsed.Seconds(); secs > 0 {
		p.Printf("  每秒更新      %.1f\n", float64(ticks)/secs)
	}
	printKind(p, "方向型", s.Directional)
	printKind(p, "區塊型", s.Block)
	fmt.Println()
}

func printKind(p *message.Printer, name string, k factory.KindStats) {
	p.Printf("  %s  批次 %d (活躍 %d / 池中 %d)  子彈 %d\n",
		name, k.Batches, k.ActiveBatches, k.PooledBatches, k.ActiveBullets)
	for _, capacity := range slices.Sorted(maps.Keys(k.PoolInfo)) {
		p.Printf("      容量 %d × %d\n", capacity, k.PoolInfo[capacity])
	}
}
