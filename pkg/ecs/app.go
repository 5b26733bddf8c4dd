// Package ecs is a small single-threaded entity/event runtime: an App owns a
// World and runs its systems schedule by schedule, once per tick.
//
// Systems run sequentially in the order they were added. Startup schedules
// run once, before the first update. Every update swaps the event queues and
// then runs PreUpdate, Update, PostUpdate and Last.
package ecs

import (
	"context"
	"fmt"
	"reflect"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Schedule names a phase of the tick.
type Schedule int

const (
	PreStartup Schedule = iota
	Startup
	PreUpdate
	Update
	PostUpdate
	Last
)

var scheduleNames = [...]string{"PreStartup", "Startup", "PreUpdate", "Update", "PostUpdate", "Last"}

func (s Schedule) String() string {
	if s < 0 || int(s) >= len(scheduleNames) {
		return fmt.Sprintf("Schedule(%d)", int(s))
	}
	return scheduleNames[s]
}

var updateSchedules = []Schedule{PreUpdate, Update, PostUpdate, Last}

// SystemSet groups systems of a schedule under one run condition.
type SystemSet string

// System is a function run by a schedule.
type System func(w *World)

// Condition gates a system set.
type Condition func(w *World) bool

// SystemInfo describes an added system.
type SystemInfo struct {
	Name   string
	Set    SystemSet
	Reads  []reflect.Type
	Writes []reflect.Type
}

type system struct {
	info SystemInfo
	run  System
}

// SystemOption configures a system when it is added.
type SystemOption func(*SystemInfo)

// InSet places the system in set.
func InSet(set SystemSet) SystemOption {
	return func(s *SystemInfo) { s.Set = set }
}

// Named overrides the name derived from the function.
func Named(name string) SystemOption {
	return func(s *SystemInfo) { s.Name = name }
}

// Reads declares that the system reads resource T.
func Reads[T any]() SystemOption {
	return func(s *SystemInfo) { s.Reads = append(s.Reads, reflect.TypeFor[T]()) }
}

// Writes declares that the system mutates resource T.
func Writes[T any]() SystemOption {
	return func(s *SystemInfo) { s.Writes = append(s.Writes, reflect.TypeFor[T]()) }
}

// Plugin bundles setup of an App.
type Plugin interface {
	Build(a *App)
}

// Option configures an App.
type Option func(*options)

type options struct {
	logger        *zap.Logger
	trackLocation bool
}

// WithLogger sets the host logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithLocationTracking makes sends and triggers record their call sites.
func WithLocationTracking(on bool) Option {
	return func(o *options) { o.trackLocation = on }
}

type setKey struct {
	schedule Schedule
	set      SystemSet
}

// App holds the world, the schedules and the installed plugins.
type App struct {
	world      *World
	schedules  map[Schedule][]system
	conditions map[setKey][]Condition
	plugins    map[reflect.Type]Plugin
	started    bool
	exits      Cursor[AppExit]
	onExit     []func(*World, AppExit)
	logger     *zap.Logger
}

// New creates an App with AppExit already added.
func New(opts ...Option) *App {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	a := &App{
		world:      newWorld(o.logger, o.trackLocation),
		schedules:  make(map[Schedule][]system),
		conditions: make(map[setKey][]Condition),
		plugins:    make(map[reflect.Type]Plugin),
		logger:     o.logger,
	}
	AddEvent[AppExit](a)
	return a
}

// World returns the app's world.
func (a *App) World() *World { return a.world }

// Logger returns the host logger.
func (a *App) Logger() *zap.Logger { return a.logger }

// Started reports whether the startup schedules already ran.
func (a *App) Started() bool { return a.started }

// AddPlugins builds each plugin once. A plugin whose type was already added
// is skipped with a warning.
func (a *App) AddPlugins(plugins ...Plugin) *App {
	for _, p := range plugins {
		t := reflect.TypeOf(p)
		if _, ok := a.plugins[t]; ok {
			a.logger.Warn("plugin already added", zap.Stringer("plugin", t))
			continue
		}
		a.plugins[t] = p
		p.Build(a)
	}
	return a
}

// GetPlugin returns the added plugin of type P.
func GetPlugin[P Plugin](a *App) (P, bool) {
	p, ok := a.plugins[reflect.TypeFor[P]()]
	if !ok {
		var zero P
		return zero, false
	}
	return p.(P), true
}

// AddSystems appends fn to schedule s.
func (a *App) AddSystems(s Schedule, fn System, opts ...SystemOption) *App {
	info := SystemInfo{Name: funcName(fn)}
	for _, opt := range opts {
		opt(&info)
	}
	a.schedules[s] = append(a.schedules[s], system{info: info, run: fn})
	if a.started && (s == PreStartup || s == Startup) {
		a.logger.Debug("startup system added after startup; running it now",
			zap.String("system", info.Name))
		fn(a.world)
	}
	return a
}

// OnExit registers fn to run once the tick in which an AppExit was sent has
// finished, whichever schedule sent it. Hooks run in the order added.
func (a *App) OnExit(fn func(*World, AppExit)) *App {
	a.onExit = append(a.onExit, fn)
	return a
}

// ConfigureSet adds a run condition to set within schedule s. A set with
// several conditions runs only when all of them hold.
func (a *App) ConfigureSet(s Schedule, set SystemSet, cond Condition) *App {
	k := setKey{s, set}
	a.conditions[k] = append(a.conditions[k], cond)
	return a
}

// Systems lists the systems of schedule s in run order.
func (a *App) Systems(s Schedule) []SystemInfo {
	out := make([]SystemInfo, 0, len(a.schedules[s]))
	for _, sys := range a.schedules[s] {
		out = append(out, sys.info)
	}
	return out
}

func (a *App) runSchedule(s Schedule) {
	var gates map[SystemSet]bool
	for _, sys := range a.schedules[s] {
		if sys.info.Set != "" {
			if gates == nil {
				gates = make(map[SystemSet]bool)
			}
			open, ok := gates[sys.info.Set]
			if !ok {
				open = a.setOpen(s, sys.info.Set)
				gates[sys.info.Set] = open
			}
			if !open {
				continue
			}
		}
		sys.run(a.world)
	}
}

func (a *App) setOpen(s Schedule, set SystemSet) bool {
	for _, cond := range a.conditions[setKey{s, set}] {
		if !cond(a.world) {
			return false
		}
	}
	return true
}

// Startup runs the startup schedules if they have not run yet.
func (a *App) Startup() {
	if a.started {
		return
	}
	a.started = true
	a.runSchedule(PreStartup)
	a.runSchedule(Startup)
}

// Update runs one tick and returns the AppExit sent during it, if any.
func (a *App) Update() (AppExit, bool) {
	a.Startup()
	for _, t := range a.world.eventOrder {
		a.world.events[t].swap()
	}
	for _, s := range updateSchedules {
		a.runSchedule(s)
	}
	a.world.tick++
	exits := a.exits.Read(a.world)
	if len(exits) == 0 {
		return AppExit{}, false
	}
	exit := exits[len(exits)-1].Event
	for _, fn := range a.onExit {
		fn(a.world, exit)
	}
	return exit, true
}

// Run ticks every interval until an AppExit is sent. When ctx is cancelled
// an AppExit is sent and one final tick runs, so exit handlers still fire.
func (a *App) Run(ctx context.Context, interval time.Duration) AppExit {
	var tick <-chan time.Time
	if interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
	}
	for {
		if exit, ok := a.Update(); ok {
			return exit
		}
		if tick == nil {
			if ctx.Err() != nil {
				return a.shutdown(ctx)
			}
			continue
		}
		select {
		case <-ctx.Done():
			return a.shutdown(ctx)
		case <-tick:
		}
	}
}

func (a *App) shutdown(ctx context.Context) AppExit {
	a.logger.Debug("context done, sending AppExit", zap.Error(ctx.Err()))
	Exit(a.world, 0)
	exit, _ := a.Update()
	return exit
}

func funcName(fn any) string {
	f := runtime.FuncForPC(reflect.ValueOf(fn).Pointer())
	if f == nil {
		return "system"
	}
	name := f.Name()
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	return name
}
