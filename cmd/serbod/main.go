package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"serbod/internal/common/fsutil"
	"serbod/internal/config"
	"serbod/internal/httpapi"
	"serbod/internal/registry"
	"serbod/internal/supervisor"
)

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func main() {
	// Flags with environment variable defaults
	addr := flag.String("addr", envStr("SERBOD_ADDR", ":8080"), "HTTP listen address, e.g. :8080")
	configPath := flag.String("config", envStr("SERBOD_CONFIG", ""), "Optional config file (.yaml/.json/.toml); flags take precedence")
	serversDir := flag.String("servers-dir", envStr("SERBOD_SERVERS_DIR", "~/serbo/servers"), "Directory holding server working directories")
	versionsDir := flag.String("versions-dir", envStr("SERBOD_VERSIONS_DIR", "~/serbo/versions"), "Directory holding version templates")
	jarName := flag.String("jar-name", envStr("SERBOD_JAR_NAME", "server.jar"), "Jar artifact name inside each template")
	javaBin := flag.String("java-bin", envStr("SERBOD_JAVA_BIN", "java"), "Java binary used to launch servers")
	heapMB := flag.Int("heap-mb", envInt("SERBOD_HEAP_MB", 1024), "Heap size per server in MB")
	portMin := flag.Int("port-min", envInt("SERBOD_PORT_MIN", 25565), "Lowest port assigned to servers")
	portMax := flag.Int("port-max", envInt("SERBOD_PORT_MAX", 35565), "Highest port assigned to servers")
	stopCommand := flag.String("stop-command", envStr("SERBOD_STOP_COMMAND", "stop"), "Console command sent for graceful shutdown")
	logLevel := flag.String("log-level", envStr("SERBOD_LOG_LEVEL", "info"), "Log level: debug|info|warn|error")
	corsEnabled := flag.Bool("cors-enabled", false, "Enable CORS for panel front ends")
	corsOrigins := flag.String("cors-origins", "", "Comma-separated allowed CORS origins")
	flag.Parse()

	setFlags := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })

	// Config file fills in whatever the command line left at its default.
	if *configPath != "" {
		fileCfg, err := config.Load(*configPath)
		if err != nil {
			errLogger := zerolog.New(os.Stderr)
			errLogger.Fatal().Err(err).Str("path", *configPath).Msg("load config")
		}
		pickStr := func(name string, dst *string, v string) {
			if !setFlags[name] && v != "" {
				*dst = v
			}
		}
		pickInt := func(name string, dst *int, v int) {
			if !setFlags[name] && v != 0 {
				*dst = v
			}
		}
		pickStr("addr", addr, fileCfg.Addr)
		pickStr("servers-dir", serversDir, fileCfg.ServersDir)
		pickStr("versions-dir", versionsDir, fileCfg.VersionsDir)
		pickStr("jar-name", jarName, fileCfg.JarName)
		pickStr("java-bin", javaBin, fileCfg.JavaBin)
		pickInt("heap-mb", heapMB, fileCfg.HeapMB)
		pickInt("port-min", portMin, fileCfg.PortMin)
		pickInt("port-max", portMax, fileCfg.PortMax)
		pickStr("stop-command", stopCommand, fileCfg.StopCommand)
		pickStr("log-level", logLevel, fileCfg.LogLevel)
		if !setFlags["cors-enabled"] && fileCfg.CORSEnabled {
			*corsEnabled = true
		}
		if !setFlags["cors-origins"] && len(fileCfg.CORSOrigins) > 0 {
			*corsOrigins = strings.Join(fileCfg.CORSOrigins, ",")
		}
	}

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	sDir, err := fsutil.ExpandHome(*serversDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("resolve servers dir")
	}
	vDir, err := fsutil.ExpandHome(*versionsDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("resolve versions dir")
	}
	for _, dir := range []string{sDir, vDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Fatal().Err(err).Str("dir", dir).Msg("create dir")
		}
	}

	mgr := supervisor.New(supervisor.Config{
		ServersDir:  sDir,
		VersionsDir: vDir,
		JarName:     *jarName,
		JavaBin:     *javaBin,
		HeapMB:      *heapMB,
		PortMin:     *portMin,
		PortMax:     *portMax,
		StopCommand: *stopCommand,
		Logger:      &logger,
	})

	// Initial template scan plus a watch so installs become visible without a
	// restart.
	versions, err := registry.LoadDir(vDir, *jarName)
	if err != nil {
		logger.Fatal().Err(err).Str("dir", vDir).Msg("scan versions")
	}
	mgr.SetVersions(versions)

	watchCh, watchCleanup, err := registry.Watch(context.Background(), vDir, *jarName)
	if err != nil {
		logger.Fatal().Err(err).Str("dir", vDir).Msg("watch versions")
	}
	go func() {
		for snapshot := range watchCh {
			mgr.SetVersions(snapshot)
			logger.Debug().Int("count", len(snapshot)).Msg("version snapshot updated")
		}
	}()

	httpapi.SetLogger(logger)
	if *corsEnabled {
		origins := []string{"*"}
		if *corsOrigins != "" {
			origins = strings.Split(*corsOrigins, ",")
		}
		httpapi.SetCORSOptions(true, origins, []string{"GET", "POST", "OPTIONS"}, []string{"Content-Type"})
	}

	mux := httpapi.NewMux(mgr)
	srv := &http.Server{Addr: *addr, Handler: mux}

	go func() {
		logger.Info().Str("addr", *addr).Str("servers_dir", sDir).Str("versions_dir", vDir).Msg("serbod listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn().Err(err).Msg("graceful shutdown error")
	}
	if err := watchCleanup(); err != nil {
		logger.Warn().Err(err).Msg("watch cleanup error")
	}
	mgr.StopAll()
}
