package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/solarops/solarops/internal/access"
	"github.com/solarops/solarops/internal/api"
	"github.com/solarops/solarops/internal/audit"
	"github.com/solarops/solarops/internal/auth"
	"github.com/solarops/solarops/internal/identity"
	"github.com/solarops/solarops/internal/modules"
	"github.com/solarops/solarops/internal/platform/config"
	"github.com/solarops/solarops/internal/platform/database"
	"github.com/solarops/solarops/internal/platform/metrics"
	"github.com/solarops/solarops/internal/platform/middleware"
	"github.com/solarops/solarops/internal/platform/server"
	"github.com/solarops/solarops/internal/platform/telemetry"
	"github.com/solarops/solarops/internal/records"
)

const version = "0.3.0"

// devSigningKey is only used when dev mode is on and no key is configured.
const devSigningKey = "solarops-dev-signing-key-not-for-production"

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	flagSet := pflag.NewFlagSet("solarops", pflag.ContinueOnError)
	configPath := flagSet.StringP("config", "c", "config.yaml", "path to the YAML config file")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(stdout, flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(stdout, flagSet)
		return nil
	}

	rest := flagSet.Args()
	command := "serve"
	if len(rest) > 0 {
		command, rest = rest[0], rest[1:]
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := telemetry.NewLogger(cfg.Log.Level, cfg.Log.Format)
	telemetry.SetDefault(logger)

	ids, err := cfg.Directory.Identities()
	if err != nil {
		return fmt.Errorf("loading directory: %w", err)
	}
	directory, err := identity.NewDirectory(ids)
	if err != nil {
		return fmt.Errorf("building directory: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch command {
	case "serve":
		return serve(ctx, cfg, directory, logger)
	case "version":
		fmt.Fprintf(stdout, "solarops %s\n", version)
		return nil
	case "login", "logout", "whoami", "modules":
		return runConsole(ctx, cfg, directory, command, rest, stdout)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintln(w, "usage: solarops [flags] [command]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")
	fmt.Fprintln(w, "  serve            run the HTTP API (default)")
	fmt.Fprintln(w, "  login <handle>   sign the console in as a directory account")
	fmt.Fprintln(w, "  logout           clear the console session")
	fmt.Fprintln(w, "  whoami           print the signed-in account")
	fmt.Fprintln(w, "  modules          list the modules the signed-in account may open")
	fmt.Fprintln(w, "  version          print the version")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "flags:")
	fmt.Fprint(w, flagSet.FlagUsages())
}

func serve(ctx context.Context, cfg *config.Config, directory *identity.Directory, logger *slog.Logger) error {
	slog.Info("solarops starting",
		"version", version,
		"port", cfg.Server.Port,
		"accounts", directory.Len(),
	)

	// Connect to database (optional, records fall back to memory)
	var pool *database.Pool
	if cfg.Database.URL != "" {
		slog.Info("connecting to database")
		p, err := database.Connect(ctx, cfg.Database.URL, cfg.Database.MaxConns)
		if err != nil {
			slog.Warn("database connection failed, records kept in memory", "error", err)
		} else {
			pool = p
			defer pool.Close()
		}
	}

	stores, err := buildStores(ctx, pool, cfg.Database.Seed)
	if err != nil {
		return err
	}

	signingKey := cfg.Auth.JWT.SigningKey
	if signingKey == "" {
		if !cfg.Auth.DevMode {
			return errors.New("auth.jwt.signingkey is required outside dev mode")
		}
		slog.Warn("no signing key configured, using the dev key")
		signingKey = devSigningKey
	}
	tokenSvc := auth.NewTokenService(
		signingKey,
		cfg.Auth.JWT.Issuer,
		cfg.Auth.JWT.ExpiryHours,
		cfg.Auth.JWT.RefreshExpiryHours,
	)

	m := metrics.New()
	m.SetBuildInfo(version)

	authHandler := auth.NewHandler(auth.HandlerConfig{
		TokenSvc: tokenSvc,
		Resolver: directory,
		Recorder: m,
		Logger:   telemetry.Component(logger, "auth"),
	})

	auditLogger, auditHandler := buildAudit(pool, cfg.Audit, telemetry.Component(logger, "audit"))
	defer func() {
		if err := auditLogger.Close(); err != nil {
			slog.Error("closing audit logger", "error", err)
		}
	}()

	apiHandler := api.NewHandler(
		access.NewGate(modules.Default()),
		stores,
		api.WithAuditLogger(auditLogger),
		api.WithLogger(telemetry.Component(logger, "api")),
	)

	devIdentity, err := resolveDevIdentity(cfg.Auth, directory)
	if err != nil {
		return err
	}
	if devIdentity != nil {
		slog.Warn("running in dev mode, 'Bearer dev' acts as a directory account", "handle", devIdentity.Handle)
	}

	trustedProxies, err := middleware.ParseTrustedProxies(cfg.RateLimit.TrustedProxies)
	if err != nil {
		return fmt.Errorf("ratelimit.trusted_proxies: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := server.New(addr, server.Dependencies{
		Pool:               pool,
		Auth:               tokenSvc,
		AuthHandler:        authHandler,
		APIHandler:         apiHandler,
		AuditHandler:       auditHandler,
		Metrics:            m,
		DevMode:            cfg.Auth.DevMode,
		DevIdentity:        devIdentity,
		Logger:             logger,
		CORSAllowedOrigins: cfg.CORS.AllowedOrigins,
		LoginRateLimit: server.RateLimit{
			PerSecond:      cfg.RateLimit.LoginPerSecond,
			Burst:          cfg.RateLimit.LoginBurst,
			TrustedProxies: trustedProxies,
		},
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(gctx)
	})

	slog.Info("server ready", "addr", addr, "dev_mode", cfg.Auth.DevMode, "storage", storageName(pool))
	return g.Wait()
}

// buildStores returns Postgres-backed stores when pool is set and the
// in-memory demo stores otherwise. The schema is created in one
// transaction; seeding runs outside it so duplicates are skipped per row.
func buildStores(ctx context.Context, pool *database.Pool, seed bool) (api.Stores, error) {
	if pool == nil {
		return api.NewMemoryStores(), nil
	}

	err := database.WithTx(ctx, pool, func(ctx context.Context, q database.Querier) error {
		if err := records.EnsureSchema(ctx, q); err != nil {
			return err
		}
		return audit.EnsureSchema(ctx, q)
	})
	if err != nil {
		return api.Stores{}, fmt.Errorf("creating schema: %w", err)
	}

	stores := api.NewPostgresStores(pool)
	if seed {
		if err := api.Seed(ctx, stores); err != nil {
			return api.Stores{}, fmt.Errorf("seeding records: %w", err)
		}
		slog.Info("demo records seeded")
	}
	return stores, nil
}

// buildAudit returns the audit logger and the read handler. Events go to
// Postgres when a pool is available and to the process log otherwise; the
// handler then serves an empty trail.
func buildAudit(pool *database.Pool, cfg config.AuditConfig, logger *slog.Logger) (audit.Logger, *audit.Handler) {
	if !cfg.Enabled {
		return audit.NopLogger{}, audit.NewHandler(nil)
	}

	loggerCfg := audit.LoggerConfig{
		BufferSize:    cfg.BufferSize,
		BatchSize:     cfg.BatchSize,
		FlushInterval: time.Duration(cfg.FlushIntervalMS) * time.Millisecond,
		Logger:        logger,
	}

	if pool == nil {
		return audit.NewAsyncLogger(audit.SlogSink{Logger: logger}, loggerCfg), audit.NewHandler(nil)
	}
	store := audit.NewStore(pool)
	return audit.NewAsyncLogger(store, loggerCfg), audit.NewHandler(store)
}

// resolveDevIdentity returns the account "Bearer dev" acts as, or nil when
// dev mode is off.
func resolveDevIdentity(cfg config.AuthConfig, directory identity.Resolver) (*identity.Identity, error) {
	if !cfg.DevMode {
		return nil, nil
	}
	id, err := directory.Resolve(cfg.DevHandle)
	if err != nil {
		return nil, fmt.Errorf("resolving dev handle %q: %w", cfg.DevHandle, err)
	}
	return &id, nil
}

func storageName(pool *database.Pool) string {
	if pool == nil {
		return "memory"
	}
	return "postgres"
}
