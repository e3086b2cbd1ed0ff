package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"geotokens/internal/config"
	"geotokens/internal/logs"
	"geotokens/internal/movement"
	"geotokens/internal/session"
	"geotokens/internal/store"
	"geotokens/internal/ui"
)

func main() {
	var (
		cfgPath    string
		storePath  string
		freshStart bool
		walk       bool
	)
	flag.StringVar(&cfgPath, "config", "", "path to configuration file")
	flag.StringVar(&storePath, "store", "", "override the storage database path")
	flag.BoolVar(&freshStart, "new", false, "discard the saved session and start a new game")
	flag.BoolVar(&walk, "walk", false, "add a simulated location stream on top of button movement")
	flag.Parse()

	if wrote, err := writeConfigFromEnv(cfgPath); err != nil {
		log.Fatalf("apply environment config: %v", err)
	} else if wrote {
		log.Printf("configuration written from environment to %s", cfgPath)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, logLevel := logs.New(cfg.Log)
	defer logger.Sync()

	if storePath == "" {
		storePath = cfg.Storage.Path
	}
	kv, err := store.OpenSQLite(storePath)
	if err != nil {
		logger.Fatal("open storage", zap.String("path", storePath), zap.Error(err))
	}
	defer kv.Close()

	screen, err := tcell.NewScreen()
	if err != nil {
		logger.Fatal("create screen", zap.Error(err))
	}
	if err := screen.Init(); err != nil {
		logger.Fatal("init screen", zap.Error(err))
	}
	defer screen.Fini()
	screen.EnableMouse()

	renderer := ui.NewRenderer(screen)
	sess := session.New(cfg, renderer, logger)
	serializer := session.NewSerializer(kv, cfg.Storage.SnapshotKey, cfg.Game.BaseTokenValue, logger)
	if !freshStart {
		sess.Restore(serializer.Load())
	}
	sess.SetCommitHook(func() {
		if err := serializer.Save(sess); err != nil {
			logger.Warn("snapshot checkpoint failed", zap.Error(err))
		}
	})

	ctx, cancel := signalContext()
	defer cancel()

	buttons := movement.NewButtons(sess.Player(), cfg.Movement.Step)
	var walker *movement.Walker
	if walk {
		walker = movement.NewWalker(sess.Player(), cfg.Movement.Step, cfg.Movement.WalkInterval.Duration(), cfg.Movement.WalkSeed)
		go walker.Run(ctx)
	}

	g := newGame(cfg, logger, logLevel, screen, renderer, sess, serializer, buttons, walker)

	if cfgPath != "" {
		go func() {
			if err := config.Watch(ctx, cfgPath, logger, g.configChanged); err != nil && ctx.Err() == nil {
				logger.Warn("config watcher stopped", zap.Error(err))
			}
		}()
	}

	if err := g.run(ctx); err != nil {
		logger.Error("game loop exited", zap.Error(err))
	}

	if err := serializer.Save(sess); err != nil {
		logger.Error("final snapshot failed", zap.Error(err))
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(signals)
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
