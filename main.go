package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	easy "git.fiblab.net/utils/logrus-easy-formatter"
	"github.com/sirupsen/logrus"

	"github.com/evacsys/evacroute/recorder"
	"github.com/evacsys/evacroute/router"
)

var (
	// 配置信息
	mapSourceStr = flag.String("map", "", "building map source [format: {fspath} or {db}.{col}]")
	mongoURI     = flag.String("mongo_uri", "", "mongo db uri, only for {db}.{col} map sources")
	configPath   = flag.String("config", "", "tuning config yaml path (empty means defaults)")
	replayPath   = flag.String("replay", "", "sensor sample replay file path")
	tickInterval = flag.Duration("tick", 100*time.Millisecond, "pipeline tick interval")
	feedAddr     = flag.String("listen", "localhost:8080", "guidance feed listening address (empty disables)")
	recordPath   = flag.String("record", "", "sqlite event log path (empty disables)")
	logLevel     = flag.String("log-level", "info", "log level [debug, info, warn, error, fatal, panic]")

	// 性能测试
	benchmark = flag.Bool("benchmark", false, "benchmark mode")
	pprofAddr = flag.String("pprof", "", "pprof listening address (empty disables)")

	LOG_LEVELS = map[string]logrus.Level{
		"debug": logrus.DebugLevel,
		"info":  logrus.InfoLevel,
		"warn":  logrus.WarnLevel,
		"error": logrus.ErrorLevel,
		"fatal": logrus.FatalLevel,
		"panic": logrus.PanicLevel,
	}
)

func main() {
	logrus.SetFormatter(&easy.Formatter{
		TimestampFormat: "2006-01-02 15:04:05.0000",
		LogFormat:       "[%module%] [%time%] [%lvl%] %msg%\n",
	})
	flag.Parse()
	if level, ok := LOG_LEVELS[*logLevel]; ok {
		logrus.SetLevel(level)
	} else {
		logrus.Fatalf("invalid log level: %s", *logLevel)
	}

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	mapSource, err := NewMapSource(*mapSourceStr)
	if err != nil {
		log.Fatalf("invalid map source: %v", err)
	}
	mapData, err := mapSource.Load(context.Background(), *mongoURI)
	if err != nil {
		// fatal: no partial graph is retained
		log.Fatalf("failed to load map from %s: %v", mapSource, err)
	}
	if len(cfg.ExitAreas) > 0 {
		mapData.ExitAreas = cfg.ExitAreas
	}
	r := router.New(cfg.RouterOptions())
	if err := r.LoadMap(mapData); err != nil {
		log.Fatalf("failed to build graph from %s: %v", mapSource, err)
	}
	defer r.Close()

	if *pprofAddr != "" {
		// 启动pprof
		startHTTPDebugger(*pprofAddr)
	}

	if *benchmark {
		// 性能测试
		runBenchmark(r, mapData)
		return
	}

	var rec *recorder.Recorder
	if *recordPath != "" {
		rec, err = recorder.Open(*recordPath)
		if err != nil {
			log.Fatalf("failed to open event log: %v", err)
		}
		defer rec.Close()
	}

	engine := NewEngine(cfg, r, rec)

	if *replayPath == "" {
		log.Fatal("no sample source: -replay is required")
	}
	src, err := OpenReplay(*replayPath)
	if err != nil {
		log.Fatalf("failed to open sample source: %v", err)
	}
	defer src.Close()

	var feed interface{ Close() error }
	if *feedAddr != "" {
		feed = startFeedServer(*feedAddr, engine)
	}

	// 优雅退出
	ctx, cancel := context.WithCancel(context.Background())
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signalCh
		log.Info("stopping...")
		go func() {
			<-signalCh
			os.Exit(1) // 强制结束
		}()
		cancel()
	}()

	log.Infof("guidance pipeline ticking every %v", *tickInterval)
	if err := engine.Run(ctx, src, *tickInterval); err != nil && err != context.Canceled {
		log.Fatalf("pipeline failed: %v", err)
	}
	if feed != nil {
		feed.Close()
	}
	log.Info("evacd closes")
}
