package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/windward-sim/windward/internal/api"
	"github.com/windward-sim/windward/internal/boat"
	"github.com/windward-sim/windward/internal/command"
	"github.com/windward-sim/windward/internal/config"
	"github.com/windward-sim/windward/internal/database"
	"github.com/windward-sim/windward/internal/dispatcher"
	"github.com/windward-sim/windward/internal/fleet"
	"github.com/windward-sim/windward/internal/influx"
	"github.com/windward-sim/windward/internal/logging"
	"github.com/windward-sim/windward/internal/monitor"
	"github.com/windward-sim/windward/internal/queue"
	"github.com/windward-sim/windward/internal/storage"
	"github.com/windward-sim/windward/internal/stream"
	"github.com/windward-sim/windward/internal/voyage"
	"github.com/windward-sim/windward/internal/worker"
	"github.com/windward-sim/windward/pkg/core"
)

// EngineVersion can be overridden at build time via ldflags.
var (
	EngineVersion string = "0.1.0"
	BuildDate     string = "unknown"
)

// global services
var (
	slogManager *logging.SlogManager
	logger      *slog.Logger

	dbManager      *database.Manager
	storageBackend storage.Backend
	influxManager  *influx.Manager

	voyageCtx       *voyage.Context
	trackQueue      *queue.Queue[core.TrackPoint]
	fleetService    *fleet.Service
	workerManager   *worker.Manager
	monitorService  *monitor.Service
	feedServer      *stream.Server
	eventDispatcher *dispatcher.Dispatcher
)

func setupLogging() error {
	logsDir := viper.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("failed to create logs dir: %w", err)
	}

	logFile, err := os.OpenFile(
		logging.LogFilePath(logsDir, "windwardd", time.Now()),
		os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644,
	)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	level := viper.GetString("logLevel")
	var extra []slog.Handler
	if viper.GetBool("graylog.enabled") {
		gelfHandler, err := logging.NewGelfHandler(viper.GetString("graylog.address"), level)
		if err != nil {
			fmt.Fprintf(os.Stderr, "GELF handler unavailable: %v\n", err)
		} else {
			extra = append(extra, gelfHandler)
		}
	}

	slogManager = logging.NewSlogManager()
	slogManager.SetupWithContext(logFile, level, voyageAttrs, extra...)
	logger = slogManager.Logger()
	return nil
}

// voyageAttrs stamps every log record with the running voyage and tick.
// Logging is set up before the services, so both globals may still be nil.
func voyageAttrs() []slog.Attr {
	var attrs []slog.Attr
	if voyageCtx != nil {
		if v := voyageCtx.Get(); v.ID != 0 {
			attrs = append(attrs, slog.String("voyage", v.Name))
		}
	}
	if fleetService != nil {
		attrs = append(attrs, slog.Uint64("tick", fleetService.CurrentTick()))
	}
	return attrs
}

func zerologConsole() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
}

// startServices wires the fleet, dispatcher, worker, monitor and feed
// together once storage and the environment are ready.
func startServices(env boat.Environment) error {
	trackQueue = queue.New[core.TrackPoint]()
	voyageCtx = voyage.NewContext()

	var err error
	eventDispatcher, err = dispatcher.New(logging.NewDispatcherLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create dispatcher: %w", err)
	}

	fleetDeps := fleet.Dependencies{
		LogManager: slogManager,
		Backend:    storageBackend,
		TrackQueue: trackQueue,
		Env:        env,
	}

	if viper.GetBool("stream.enabled") {
		feedServer = stream.NewServer(stream.Dependencies{LogManager: slogManager})
		fleetDeps.Feed = feedServer
		go func() {
			addr := viper.GetString("stream.listenAddr")
			logger.Info("Live feed listening", "addr", addr)
			if err := feedServer.ListenAndServe(addr); err != nil {
				logger.Error("Feed server stopped", "error", err)
			}
		}()
	}

	fleetService, err = fleet.NewService(fleetDeps, voyageCtx)
	if err != nil {
		return fmt.Errorf("failed to create fleet service: %w", err)
	}
	fleetService.Register(eventDispatcher)

	workerManager = worker.NewManager(worker.Dependencies{
		LogManager:    slogManager,
		TrackQueue:    trackQueue,
		FlushInterval: viper.GetDuration("worker.flushInterval"),
	}, storageBackend)

	if feedServer != nil {
		workerManager.AddSink(func(tp *core.TrackPoint) {
			if err := feedServer.PublishTrackPoint(tp); err != nil {
				logger.Error("Failed to publish track point to feed", "error", err)
			}
		})
	}

	if influxManager != nil && (influxManager.IsValid || influxManager.BackupWriter != nil) {
		workerManager.AddSink(func(tp *core.TrackPoint) {
			point := influx.TrackPointToInflux(voyageCtx.Get().Name, tp)
			if err := influxManager.WritePoint(context.Background(), influx.BucketVoyageData, point); err != nil {
				logger.Error("Failed to write track point to InfluxDB", "error", err)
			}
		})
	}

	monitorDeps := monitor.Dependencies{
		LogManager:      slogManager,
		VoyageContext:   voyageCtx,
		WorkerManager:   workerManager,
		Fleet:           fleetService,
		Influx:          influxManager,
		StatusDir:       viper.GetString("logsDir"),
		IsDatabaseValid: func() bool { return dbManager != nil && dbManager.IsValid },
	}
	if dbManager != nil {
		monitorDeps.DB = dbManager.DB
	}
	monitorService = monitor.NewService(monitorDeps)

	if dbManager != nil && dbManager.IsValid && !dbManager.ShouldSaveLocal {
		tables := map[string][]string{
			"track_points":     {"boat_object_id"},
			"sim_performances": {"voyage_id"},
		}
		if err := monitorService.ValidateHypertables(tables); err != nil {
			logger.Error("Hypertable validation failed", "error", err)
		}
	}

	if err := workerManager.Start(); err != nil {
		return fmt.Errorf("failed to start worker: %w", err)
	}
	if err := monitorService.Start(); err != nil {
		return fmt.Errorf("failed to start monitor: %w", err)
	}

	if dbManager != nil && dbManager.ShouldSaveLocal {
		go func() {
			for range time.Tick(3 * time.Minute) {
				if err := dbManager.DumpMemoryToDisk(); err != nil {
					logger.Error("Failed to dump in-memory DB to disk", "error", err)
				}
			}
		}()
	}

	return nil
}

func startVoyage() error {
	v := &core.Voyage{
		Name:          viper.GetString("voyage.name"),
		ServerName:    viper.GetString("voyage.serverName"),
		StartTime:     time.Now(),
		TickSeconds:   viper.GetFloat64("sim.tickSeconds"),
		ChartName:     viper.GetString("chart.type"),
		EngineVersion: EngineVersion,
		Tag:           viper.GetString("defaultTag"),
		WeatherSource: viper.GetString("weather.type"),
		OceanSource:   viper.GetString("ocean.type"),
	}

	if err := storageBackend.StartVoyage(v); err != nil {
		return fmt.Errorf("failed to start voyage: %w", err)
	}
	voyageCtx.Set(v)

	if feedServer != nil {
		if err := feedServer.PublishVoyageStart(v); err != nil {
			logger.Error("Failed to announce voyage on feed", "error", err)
		}
	}

	logger.Info("Voyage started", "name", v.Name, "chart", v.ChartName, "tickSeconds", v.TickSeconds)
	return nil
}

// BoatSpec is one initial fleet entry from the config file.
type BoatSpec struct {
	Name   string  `mapstructure:"name"`
	Class  string  `mapstructure:"class"`
	Lat    float64 `mapstructure:"lat"`
	Lon    float64 `mapstructure:"lon"`
	Course float64 `mapstructure:"course"`
	Start  bool    `mapstructure:"start"`
}

// loadInitialFleet registers boats listed under fleet.boats in the config.
func loadInitialFleet() {
	var specs []BoatSpec
	if err := viper.UnmarshalKey("fleet.boats", &specs); err != nil {
		logger.Error("Failed to parse fleet.boats", "error", err)
		return
	}

	parser := command.NewParser(logger)
	for _, spec := range specs {
		args := []string{
			string(command.VerbAdd),
			spec.Name, spec.Class,
			fmt.Sprintf("%f,%f", spec.Lat, spec.Lon),
		}
		cmd, err := parser.Parse(args)
		if err != nil {
			logger.Error("Invalid boat spec", "name", spec.Name, "error", err)
			continue
		}

		result, err := dispatch(cmd)
		if err != nil {
			logger.Error("Failed to add boat", "name", spec.Name, "error", err)
			continue
		}
		id, _ := result.(uint16)

		if spec.Course != 0 {
			_, _ = dispatch(command.Command{Verb: command.VerbCourse, BoatID: id, Course: spec.Course})
		}
		if spec.Start {
			_, _ = dispatch(command.Command{Verb: command.VerbStart, BoatID: id})
		}
	}
}

func dispatch(cmd command.Command) (any, error) {
	return eventDispatcher.Dispatch(dispatcher.Event{
		Verb:      cmd.Verb,
		Cmd:       cmd,
		Timestamp: time.Now(),
	})
}

// commandLoop reads pilot commands from stdin until EOF or "quit".
func commandLoop(quit chan<- struct{}) {
	parser := command.NewParser(logger)
	scanner := bufio.NewScanner(os.Stdin)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			quit <- struct{}{}
			return
		}

		cmd, err := parser.Parse(strings.Fields(line))
		if err != nil {
			fmt.Printf("error: %v\n", err)
			continue
		}

		result, err := dispatch(cmd)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			continue
		}
		if result != nil {
			fmt.Printf("ok: %v\n", result)
		} else {
			fmt.Println("ok")
		}
	}
}

func shutdown() {
	logger.Info("Shutting down...")

	if monitorService != nil {
		monitorService.Stop()
	}
	if workerManager != nil {
		workerManager.Stop()
	}

	if feedServer != nil {
		if err := feedServer.PublishVoyageEnd(fleetService.CurrentTick()); err != nil {
			logger.Error("Failed to announce voyage end on feed", "error", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := feedServer.Shutdown(ctx); err != nil {
			logger.Error("Feed server shutdown failed", "error", err)
		}
		cancel()
	}

	if storageBackend != nil {
		if err := storageBackend.EndVoyage(); err != nil {
			logger.Error("Failed to end voyage", "error", err)
		}

		if viper.GetBool("api.uploadExports") {
			uploadExport()
		}

		if err := storageBackend.Close(); err != nil {
			logger.Error("Failed to close storage backend", "error", err)
		}
	}

	if dbManager != nil && dbManager.ShouldSaveLocal {
		if err := dbManager.DumpMemoryToDisk(); err != nil {
			logger.Error("Failed to dump in-memory DB to disk", "error", err)
		}
	}

	if influxManager != nil {
		influxManager.Close()
	}

	logger.Info("Shutdown complete")
}

// uploadExport pushes the exported voyage file to the web frontend when the
// backend produced one.
func uploadExport() {
	uploadable, ok := storageBackend.(storage.Uploadable)
	if !ok {
		return
	}
	path := uploadable.GetExportedFilePath()
	if path == "" {
		return
	}

	client := api.New(viper.GetString("api.serverUrl"), viper.GetString("api.apiKey"))
	if err := client.Healthcheck(); err != nil {
		logger.Error("Web frontend unreachable, keeping export on disk", "path", path, "error", err)
		return
	}
	if err := client.Upload(path, uploadable.GetExportMetadata()); err != nil {
		logger.Error("Failed to upload voyage export", "path", path, "error", err)
		return
	}
	logger.Info("Voyage export uploaded", "path", path)
}

func main() {
	configDir := "."
	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		if args[i] == "-config" && i+1 < len(args) {
			configDir = args[i+1]
			args = append(args[:i], args[i+2:]...)
			break
		}
	}

	if err := config.Load(configDir); err != nil {
		fmt.Fprintf(os.Stderr, "No config file loaded, using defaults: %v\n", err)
	}

	if err := setupLogging(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	logger.Info("Starting windwardd", "version", EngineVersion, "buildDate", BuildDate)

	if viper.GetBool("influx.enabled") {
		influxManager = influx.NewManager(zerologConsole(), viper.GetString("influx.backupPath"))
		if err := influxManager.Connect(); err != nil {
			logger.Error("InfluxDB unavailable", "error", err)
			influxManager = nil
		}
	}

	if err := initStorage(); err != nil {
		logger.Error("Storage initialization failed", "error", err)
		os.Exit(1)
	}

	if len(args) > 0 && strings.ToLower(args[0]) == "setupdb" {
		if dbManager == nil {
			fmt.Println("setupdb requires storage.type=gorm")
			os.Exit(1)
		}
		if err := dbManager.Setup(); err != nil {
			logger.Error("DB setup failed", "error", err)
			os.Exit(1)
		}
		logger.Info("DB setup complete")
		return
	}

	env, err := buildEnvironment()
	if err != nil {
		logger.Error("Failed to build simulation environment", "error", err)
		os.Exit(1)
	}

	if err := startServices(env); err != nil {
		logger.Error("Failed to start services", "error", err)
		os.Exit(1)
	}
	if err := startVoyage(); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}

	loadInitialFleet()

	quit := make(chan struct{}, 1)
	go commandLoop(quit)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	dt := viper.GetFloat64("sim.tickSeconds")
	ticker := time.NewTicker(viper.GetDuration("sim.tickInterval"))
	defer ticker.Stop()

	logger.Info("Tick loop running", "dt", dt, "interval", viper.GetDuration("sim.tickInterval"))

loop:
	for {
		select {
		case <-ticker.C:
			fleetService.Tick(dt)
		case sig := <-sigChan:
			logger.Info("Signal received", "signal", sig.String())
			break loop
		case <-quit:
			break loop
		}
	}

	shutdown()
}
