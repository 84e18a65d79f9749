package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/l1jgo/bullets/internal/app"
	"github.com/l1jgo/bullets/internal/bullet"
	"github.com/l1jgo/bullets/internal/config"
	"github.com/l1jgo/bullets/internal/core/event"
	"github.com/l1jgo/bullets/internal/factory"
	"github.com/l1jgo/bullets/internal/geom"
	"github.com/l1jgo/bullets/internal/snapshot"
	"github.com/l1jgo/bullets/internal/system"
	"go.uber.org/zap"
)

const (
	frameRate    = 33 * time.Millisecond
	snapshotFile = "sandbox.blst"
)

type sandbox struct {
	app      *app.App
	screen   tcell.Screen
	renderer *termRenderer
	sound    *hitSound
	view     view
	log      *zap.Logger

	presets  []string
	current  int
	gun      *system.Emitter
	lastTick time.Time
	message  string
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := "config/blast.toml"
	if p := os.Getenv("BULLETS_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	// the terminal belongs to tcell
	if cfg.Logging.File == "" {
		cfg.Logging.File = "blast-sandbox.log"
	}
	log, err := app.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	renderer := newTermRenderer()
	a, err := app.New(context.Background(), cfg, log, app.Options{
		Renderer:   renderer,
		Seed:       uint64(time.Now().UnixNano()),
		NoDatabase: true,
	})
	if err != nil {
		return err
	}
	defer func() { _ = a.Close(context.Background()) }()
	a.Prewarm()

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer screen.Fini()
	screen.EnableMouse()

	g := &sandbox{
		app:      a,
		screen:   screen,
		renderer: renderer,
		sound:    &hitSound{},
		log:      log,
		presets:  a.Presets.Names(),
	}
	if cfg.Sandbox.Sound {
		if g.sound, err = newHitSound(); err != nil {
			log.Warn("音效初始化失敗", zap.Error(err))
		}
	}
	defer g.sound.close()
	for i, name := range g.presets {
		if name == cfg.Sandbox.Preset {
			g.current = i
		}
	}
	if len(g.presets) == 0 {
		return errors.New("no presets loaded")
	}

	g.view.w, g.view.h = screen.Size()
	g.spawnTargets()
	// the gun only fires on click
	g.gun = &system.Emitter{Preset: g.preset()}
	a.Emitters.Add(g.gun)
	a.OnHit(func(ev event.BulletHit) {
		g.sound.play(!ev.Target.IsZero() && !a.Scene.Alive(ev.Target))
	})

	log.Info("沙盒啟動", zap.Int("presets", len(g.presets)), zap.Int("targets", cfg.Sandbox.Targets))
	g.loop()
	log.Info("沙盒已關閉")
	return nil
}

func (g *sandbox) preset() string { return g.presets[g.current] }

func (g *sandbox) spawnTargets() {
	radius := float64(min(g.view.w/2*int(cellW), g.view.h/2*int(cellH))) * 0.7
	g.app.SpawnTargets("dummy", g.app.Config.Sandbox.Targets, geom.Vec2{}, radius)
	g.app.SpawnTargets("drone", 2, geom.Vec2{}, radius*0.5)
}

func (g *sandbox) loop() {
	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := g.screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	tick := time.NewTicker(g.app.Config.Engine.TickRate)
	defer tick.Stop()
	frame := time.NewTicker(frameRate)
	defer frame.Stop()
	g.lastTick = time.Now()

	for {
		select {
		case ev := <-events:
			if !g.handle(ev) {
				return
			}
		case <-tick.C:
			g.app.Tick()
			g.lastTick = time.Now()
		case <-frame.C:
			frac := float64(time.Since(g.lastTick)) / float64(g.app.Config.Engine.TickRate)
			g.app.Factory.Interpolate(geom.Clamp(frac, 0, 1))
			g.draw()
		}
	}
}

func (g *sandbox) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		g.view.w, g.view.h = g.screen.Size()
		g.screen.Sync()
	case *tcell.EventMouse:
		x, y := ev.Position()
		p := g.view.toWorld(x, y)
		g.app.Scene.SetPointer(p)
		if ev.Buttons()&tcell.Button1 != 0 {
			g.gun.Preset = g.preset()
			g.gun.Aim = p.Angle()
			g.app.Emitters.Fire(g.gun)
		}
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyTab:
			g.current = (g.current + 1) % len(g.presets)
			g.message = ""
		case tcell.KeyRune:
			return g.command(ev.Rune())
		}
	}
	return true
}

func (g *sandbox) command(r rune) bool {
	f := g.app.Factory
	switch r {
	case 'q':
		return false
	case ' ':
		f.SetProcessing(!f.Processing())
	case 't':
		g.spawnTargets()
	case 'r':
		if err := f.Reset(); err != nil {
			g.message = err.Error()
		}
	case 'f':
		f.FreePool(bullet.Directional, 0)
		f.FreePool(bullet.Block, 0)
		f.FreeAttachments(-1)
		g.message = "pools freed"
	case 's':
		g.message = g.save()
	case 'l':
		g.message = g.load()
	}
	return true
}

func (g *sandbox) save() string {
	snap, err := g.app.Factory.Save()
	if err != nil {
		return err.Error()
	}
	payload, err := snapshot.Encode(snap)
	if err != nil {
		return err.Error()
	}
	if err := os.WriteFile(snapshotFile, payload, 0o644); err != nil {
		g.log.Error("快照寫入失敗", zap.Error(err))
		return "save failed"
	}
	return fmt.Sprintf("saved %d batches", len(snap.Batches))
}

func (g *sandbox) load() string {
	payload, err := os.ReadFile(snapshotFile)
	if err != nil {
		return "no snapshot"
	}
	snap, err := snapshot.Decode(payload)
	if err != nil {
		g.log.Error("快照損毀", zap.Error(err))
		return "snapshot corrupt"
	}
	if err := g.app.Factory.Reset(); err != nil {
		return err.Error()
	}
	n, err := g.app.Factory.Load(snap)
	if errors.Is(err, factory.ErrBusy) {
		return "busy"
	}
	return fmt.Sprintf("loaded %d batches", n)
}
