package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/gridmud/server/internal/command"
	"github.com/gridmud/server/internal/config"
	"github.com/gridmud/server/internal/core/event"
	coresys "github.com/gridmud/server/internal/core/system"
	"github.com/gridmud/server/internal/core/tick"
	"github.com/gridmud/server/internal/data"
	gamenet "github.com/gridmud/server/internal/net"
	"github.com/gridmud/server/internal/persist"
	"github.com/gridmud/server/internal/scripting"
	"github.com/gridmud/server/internal/system"
	"github.com/gridmud/server/internal/world"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(serverName string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m             GridMUD  v0.1.0               \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m      a text world served over telnet      \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mserver:\033[0m %s\n\n", serverName)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := strconv.Itoa(count)
	dotsLen := 42 - len(label) - len(numStr)
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

// ── Main server logic ─────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/server.toml"
	if p := os.Getenv("GRIDMUD_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name)

	// 3. Connect to PostgreSQL and run migrations
	printSection("Database")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := persist.NewDB(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()
	printOK("PostgreSQL connected")

	if err := persist.RunMigrations(ctx, db.Pool); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	printOK("migrations applied")
	fmt.Println()

	// 4. Create repositories
	accounts := persist.NewAccountRepo(db)
	chars := persist.NewCharacterRepo(db)

	// 5. Load definition tables
	printSection("World data")

	raceTable, err := data.LoadRaceTable(filepath.Join(cfg.Game.DataDir, "races.yaml"))
	if err != nil {
		return fmt.Errorf("races: %w", err)
	}
	printStat("races", raceTable.Count())

	jobTable, err := data.LoadJobTable(filepath.Join(cfg.Game.DataDir, "jobs.yaml"))
	if err != nil {
		return fmt.Errorf("jobs: %w", err)
	}
	printStat("jobs", jobTable.Count())

	abilityTable, err := data.LoadAbilityTable(filepath.Join(cfg.Game.DataDir, "abilities.yaml"))
	if err != nil {
		return fmt.Errorf("abilities: %w", err)
	}
	printStat("abilities", abilityTable.Count())

	effectTable, err := data.LoadEffectTable(filepath.Join(cfg.Game.DataDir, "effects.yaml"))
	if err != nil {
		return fmt.Errorf("effects: %w", err)
	}
	printStat("effects", effectTable.Count())

	// 6. Build the world: clock, timer wheel, entity graph
	clock := tick.SystemClock{}
	wheel := tick.NewWheel(clock)
	w := world.NewWorld(world.Options{
		Clock:     clock,
		Scheduler: wheel,
		RNG:       tick.NewRNG(time.Now().UnixNano()),
		Log:       log,
	})
	w.Resolvers = world.Resolvers{
		Race:    raceTable.Get,
		Job:     jobTable.Get,
		Ability: abilityTable.Get,
		Effect:  effectTable.Get,
	}

	dungeons, err := data.BuildWorld(w, filepath.Join(cfg.Game.DataDir, "dungeons"))
	if err != nil {
		return fmt.Errorf("dungeons: %w", err)
	}
	printStat("dungeons", len(dungeons))

	// 7. Initialize Lua scripting engine
	luaEngine, err := scripting.NewEngine(cfg.Game.ScriptsDir, log)
	if err != nil {
		return fmt.Errorf("lua engine: %w", err)
	}
	defer luaEngine.Close()
	printOK("Lua scripts loaded")

	// 8. Command registry and shared handler deps
	registry := command.NewRegistry()
	command.RegisterAll(registry)
	bus := event.NewBus()
	deps := &command.Deps{
		World:    w,
		Players:  command.NewPlayers(),
		Commands: registry,
		Accounts: accounts,
		Chars:    chars,
		Bus:      bus,
		Config:   cfg,
		Log:      log,
		Races:    raceTable.All(),
		Jobs:     jobTable.All(),
	}

	// 9. Driver hooks and the scripted AI sink
	ai := system.NewAISystem(w, luaEngine, log)
	system.NewHookBridge(deps, ai, cfg.Rates.ExpRate, cfg.Rates.GoldRate, log).Install(w)

	// 10. First population pass, then resolve the starting room
	spawned := 0
	for _, d := range w.Dungeons() {
		spawned += d.ExecuteResets()
	}
	printStat("mobs spawned", spawned)

	start := w.ResolveRoomRef(cfg.Game.StartingRoom)
	if start == nil {
		return fmt.Errorf("starting room %s does not exist", cfg.Game.StartingRoom)
	}
	deps.StartRoom = start
	fmt.Println()

	// 11. Create network server
	linesPerSec := 0
	if cfg.RateLimit.Enabled {
		linesPerSec = cfg.RateLimit.CommandsPerSecond
	}
	netServer, err := gamenet.NewServer(
		cfg.Network.BindAddress,
		cfg.Network.InQueueSize,
		cfg.Network.OutQueueSize,
		linesPerSec,
		log,
	)
	if err != nil {
		return fmt.Errorf("net server: %w", err)
	}

	// 12. Create systems and register with runner, in phase order
	sessions := system.NewSessions()
	runner := coresys.NewRunner()
	runner.Register(system.NewInputSystem(netServer, sessions, deps, cfg.Network.MaxCommandsPerTick, log))
	runner.Register(system.NewEventSystem(bus))
	runner.Register(system.NewTimerSystem(clock, wheel))
	runner.Register(ai)
	runner.Register(system.NewCombatSystem(w, luaEngine, cfg.Game.CombatRound, log))
	runner.Register(system.NewWanderSystem(w, cfg.Game.WanderInterval))
	runner.Register(system.NewResetSystem(w, cfg.Game.ResetInterval, log))
	runner.Register(system.NewRegenSystem(w, cfg.Game.RegenInterval))
	runner.Register(system.NewOutputSystem(sessions, deps.Players))
	persistSys := system.NewPersistSystem(deps, cfg.Game.AutosaveInterval, log)
	runner.Register(persistSys)
	runner.Register(system.NewCleanupSystem(netServer, sessions, deps, log))

	printSection("Server ready")
	printReady("listening on " + netServer.Addr().String())
	printReady(fmt.Sprintf("game loop started (tick: %s)", cfg.Network.TickRate))
	fmt.Println()

	// 13. Run until a signal lands. The game loop goroutine owns all
	// world state; the accept loop only feeds the session channel.
	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		netServer.AcceptLoop()
		return nil
	})
	g.Go(func() error {
		ticker := time.NewTicker(cfg.Network.TickRate)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				runner.Tick(cfg.Network.TickRate)
			case <-gctx.Done():
				log.Info("shutdown signal received")
				persistSys.SaveAll()
				netServer.Shutdown()
				log.Info("server stopped")
				return nil
			}
		}
	})
	return g.Wait()
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
