package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/l1jgo/bullets/internal/bullet"
	"github.com/l1jgo/bullets/internal/collision"
	"github.com/l1jgo/bullets/internal/config"
	"github.com/l1jgo/bullets/internal/core/ecs"
	"github.com/l1jgo/bullets/internal/core/event"
	coresys "github.com/l1jgo/bullets/internal/core/system"
	"github.com/l1jgo/bullets/internal/data"
	"github.com/l1jgo/bullets/internal/factory"
	"github.com/l1jgo/bullets/internal/geom"
	"github.com/l1jgo/bullets/internal/persist"
	"github.com/l1jgo/bullets/internal/render"
	"github.com/l1jgo/bullets/internal/scene"
	"github.com/l1jgo/bullets/internal/scripting"
	"github.com/l1jgo/bullets/internal/snapshot"
	"github.com/l1jgo/bullets/internal/system"
	"go.uber.org/zap"
)

// defaultInterval paces the fallback emitter.
const defaultInterval = 400 * time.Millisecond

// Options are the parts of an App that differ between binaries.
type Options struct {
	Renderer render.Renderer // nil renders nothing
	Seed     uint64
	// NoDatabase skips [database] even when it is enabled.
	NoDatabase bool
}

// App is the engine wired from a Config: scene, collision grid, Lua
// templates and curves, presets, the factory and the system runner.
type App struct {
	Config   *config.Config
	Log      *zap.Logger
	Bus      *event.Bus
	Grid     *collision.Grid
	Scene    *scene.Scene
	Scripts  *scripting.Engine
	Presets  *data.PresetTable
	Factory  *factory.Factory
	Runner   *coresys.Runner
	Emitters *system.EmitterSystem
	Bullets  *system.BulletSystem
	Persist  *system.PersistenceSystem // nil without a database

	db        *persist.DB
	snapshots *persist.SnapshotRepo
	targets   []ecs.EntityID
	templates int
	hits      int
	kills     int
	onHit     []func(event.BulletHit)
}

// New wires every subsystem. The caller owns the returned App and must Close it.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger, opts Options) (*App, error) {
	a := &App{
		Config: cfg,
		Log:    log,
		Bus:    event.NewBus(),
		Grid:   collision.NewGrid(cfg.Collision.CellSize, log.Named("grid")),
		Scene:  scene.New(log.Named("scene")),
		Runner: coresys.NewRunner(),
	}
	a.Scene.AttachGrid(a.Grid)

	scripts, err := scripting.NewEngine(cfg.Data.ScriptsDir, log.Named("lua"))
	if err != nil {
		return nil, fmt.Errorf("load scripts: %w", err)
	}
	a.Scripts = scripts
	scripts.BindScene(a.Scene)
	if a.templates, err = scripts.RegisterTemplates(a.Scene); err != nil {
		scripts.Close()
		return nil, fmt.Errorf("register templates: %w", err)
	}

	presets, err := data.LoadPresetTable(cfg.Data.Presets)
	if err != nil {
		scripts.Close()
		return nil, fmt.Errorf("load presets: %w", err)
	}
	a.Presets = presets

	a.Factory = factory.New(&bullet.Env{
		Backend:       a.Grid,
		Renderer:      opts.Renderer,
		Host:          a.Scene,
		Bus:           a.Bus,
		Interpolation: cfg.Engine.Interpolation,
		Log:           log,
	})
	a.Factory.SetProcessing(cfg.Engine.ProcessBullets)

	seed := opts.Seed
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	a.Emitters = system.NewEmitterSystem(a.Factory, presets, scripts, rng, log.Named("emitter"))
	a.Emitters.SetAttachmentAutoPooling(cfg.Engine.AttachmentAutoPooling)
	a.Bullets = system.NewBulletSystem(a.Factory, log)

	if cfg.Database.Enabled && !opts.NoDatabase {
		if err := a.openDatabase(ctx); err != nil {
			scripts.Close()
			return nil, err
		}
	}

	a.Runner.Register(a.Emitters)
	a.Runner.Register(system.NewEventDispatchSystem(a.Bus))
	a.Runner.Register(system.NewSceneSystem(a.Scene))
	a.Runner.Register(a.Bullets)
	a.Runner.Register(system.NewCollisionSystem(a.Grid, a.Scene))
	if a.Persist != nil {
		a.Runner.Register(a.Persist)
	}
	a.Runner.Register(system.NewCleanupSystem(a.Scene))

	event.Subscribe(a.Bus, a.handleHit)
	return a, nil
}

func (a *App) openDatabase(ctx context.Context) error {
	cfg := a.Config.Database
	db, err := persist.NewDB(ctx, cfg, a.Log.Named("db"))
	if err != nil {
		return err
	}
	if _, err := persist.RunMigrations(ctx, db.Pool, a.Log.Named("migrate")); err != nil {
		db.Close()
		return err
	}
	a.db = db
	a.snapshots = persist.NewSnapshotRepo(db)
	a.Persist = system.NewPersistenceSystem(a.Factory, a.Bus, a.snapshots, persist.NewHitLogRepo(db),
		cfg.SnapshotName, cfg.AutosaveInterval, a.Log.Named("persist"))
	return nil
}

func (a *App) handleHit(ev event.BulletHit) {
	a.hits++
	if !ev.Target.IsZero() && a.Scripts.HandleHit(a.Scene, ev) {
		a.kills++
	}
	for _, fn := range a.onHit {
		fn(ev)
	}
}

// OnHit registers fn for every dispatched bullet hit, after the Lua handler.
func (a *App) OnHit(fn func(event.BulletHit)) { a.onHit = append(a.onHit, fn) }

// Prewarm fills the batch and attachment pools listed under [pool].
func (a *App) Prewarm() {
	for _, p := range a.Config.Pool.Prewarm {
		kind := bullet.Directional
		if p.Kind == "block" {
			kind = bullet.Block
		}
		a.Factory.Populate(kind, p.Count, p.Capacity)
	}
	for _, p := range a.Config.Pool.Attachments {
		a.Factory.PopulateAttachments(p.Template, p.PoolingID, p.Count)
	}
}

// SpawnTargets places n instances of template evenly on a circle.
func (a *App) SpawnTargets(template string, n int, center geom.Vec2, radius float64) []ecs.EntityID {
	out := make([]ecs.EntityID, 0, n)
	for i := 0; i < n; i++ {
		angle := geom.Tau * float64(i) / float64(n)
		p := center.Add(geom.FromAngle(angle).Scale(radius))
		id := a.Scene.Spawn(template, geom.NewTransform(0, p))
		out = append(out, id)
	}
	a.targets = append(a.targets, out...)
	return out
}

// AddEmitters adds one emitter per [[emitters]] entry, or a single emitter
// firing preset from origin when none are configured.
func (a *App) AddEmitters(preset string, origin geom.Vec2) error {
	cfgs := a.Config.Emitters
	if len(cfgs) == 0 {
		cfgs = []config.EmitterConfig{{Preset: preset, X: origin.X, Y: origin.Y, Spin: 7, Interval: defaultInterval}}
	}
	for _, c := range cfgs {
		if a.Presets.Get(c.Preset) == nil {
			return fmt.Errorf("emitter %q: %w", c.Preset, data.ErrUnknownPreset)
		}
		e := &system.Emitter{
			Preset:   c.Preset,
			Origin:   geom.V(c.X, c.Y),
			Aim:      c.Aim * math.Pi / 180,
			Spin:     c.Spin * math.Pi / 180,
			Interval: c.Interval,
		}
		if c.Homing {
			e.Target = a.firstTarget()
		}
		a.Emitters.Add(e)
	}
	return nil
}

func (a *App) firstTarget() ecs.EntityID {
	for _, id := range a.targets {
		if a.Scene.Alive(id) {
			return id
		}
	}
	return 0
}

// Restore loads the newest stored snapshot into the factory. It returns the
// number of batches restored, 0 when there is no database or no snapshot.
func (a *App) Restore(ctx context.Context) (int, error) {
	if a.snapshots == nil {
		return 0, nil
	}
	payload, err := a.snapshots.Latest(ctx, a.Config.Database.SnapshotName)
	if errors.Is(err, persist.ErrNoSnapshot) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	snap, err := snapshot.Decode(payload)
	if err != nil {
		return 0, fmt.Errorf("restore %s: %w", a.Config.Database.SnapshotName, err)
	}
	return a.Factory.Load(snap)
}

// Tick runs one fixed step of every system.
func (a *App) Tick() { a.Runner.Tick(a.Config.Engine.TickRate) }

// Templates is the number of scene templates registered from Lua.
func (a *App) Templates() int { return a.templates }

// Database reports whether snapshots are persisted.
func (a *App) Database() bool { return a.db != nil }

// Hits is the number of bullet hits dispatched so far.
func (a *App) Hits() int { return a.hits }

// Kills is the number of hits a template's on_hit turned into a destroy.
func (a *App) Kills() int { return a.kills }

// Close flushes pending persistence and releases the database and Lua VM.
func (a *App) Close(ctx context.Context) error {
	var err error
	if a.Persist != nil {
		err = a.Persist.Flush(ctx)
	}
	if a.db != nil {
		a.db.Close()
	}
	a.Scripts.Close()
	return err
}
