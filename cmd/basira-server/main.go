package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/basira/care-server/internal/config"
	"github.com/basira/care-server/internal/domain/conscience"
	"github.com/basira/care-server/internal/domain/incident"
	"github.com/basira/care-server/internal/domain/registry"
	"github.com/basira/care-server/internal/domain/risk"
	"github.com/basira/care-server/internal/platform/auth"
	"github.com/basira/care-server/internal/platform/culture"
	"github.com/basira/care-server/internal/platform/db"
	"github.com/basira/care-server/internal/platform/middleware"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "basira-server",
		Short: "Basira care facility API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(rulesCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the care API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			count, err := db.NewMigrator(pool, dir).Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, dir).Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage rule definitions",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configured rule files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			if cfg.RiskRulesFile != "" {
				rules, err := risk.LoadRuleSet(cfg.RiskRulesFile)
				if err != nil {
					return err
				}
				fmt.Printf("risk rules: %d rule(s) OK (%s)\n", len(rules), cfg.RiskRulesFile)
			} else {
				fmt.Printf("risk rules: using %d built-in rule(s)\n", len(risk.DefaultRuleSet()))
			}

			if cfg.EthicalRulesFile != "" {
				rules, err := conscience.LoadEthicalRuleSet(cfg.EthicalRulesFile)
				if err != nil {
					return err
				}
				fmt.Printf("ethical rules: %d rule(s) OK (%s)\n", len(rules), cfg.EthicalRulesFile)
			} else {
				fmt.Printf("ethical rules: using %d built-in rule(s)\n", len(conscience.DefaultEthicalRules()))
			}
			return nil
		},
	})

	return cmd
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Rule sets
	riskRules := risk.DefaultRuleSet()
	if cfg.RiskRulesFile != "" {
		riskRules, err = risk.LoadRuleSet(cfg.RiskRulesFile)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to load risk rules")
		}
	}
	ethicalRules := conscience.DefaultEthicalRules()
	if cfg.EthicalRulesFile != "" {
		ethicalRules, err = conscience.LoadEthicalRuleSet(cfg.EthicalRulesFile)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to load ethical rules")
		}
	}

	// Environment context provider
	var provider culture.Provider = culture.NoneProvider{}
	if cfg.Observance != "" {
		start, err := time.Parse("2006-01-02", cfg.ObservanceStart)
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid OBSERVANCE_START")
		}
		end, err := time.Parse("2006-01-02", cfg.ObservanceEnd)
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid OBSERVANCE_END")
		}
		provider = culture.NewStaticProvider(cfg.Observance, start, end)
	}

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Auth middleware
	if cfg.IsDev() {
		logger.Warn().Msg("running in development mode; all requests get admin access")
		e.Use(auth.DevAuthMiddleware())
	} else {
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:     cfg.AuthIssuer,
			Audience:   cfg.AuthAudience,
			SigningKey: []byte(cfg.AuthSigningKey),
		}))
	}

	// Access audit middleware
	e.Use(middleware.Audit(logger))

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	apiV1 := e.Group("/api/v1")

	// -- Register Domain Handlers --

	// Incident domain
	incidentRepo := incident.NewReportRepoPG(pool)
	incidentSvc := incident.NewService(incidentRepo)
	incident.NewHandler(incidentSvc).RegisterRoutes(apiV1)

	// Registry domain
	incidentWindow := time.Duration(cfg.IncidentWindowDays) * 24 * time.Hour
	registryRepo := registry.NewBeneficiaryRepoPG(pool)
	registrySvc := registry.NewService(registryRepo, incidentSvc, incidentWindow)
	registry.NewHandler(registrySvc).RegisterRoutes(apiV1)

	// Risk domain
	thresholds := risk.Thresholds{
		Critical: cfg.RiskCriticalAt,
		High:     cfg.RiskHighAt,
		Medium:   cfg.RiskMediumAt,
	}
	riskSvc := risk.NewService(registrySvc, riskRules, thresholds)
	risk.NewHandler(riskSvc).RegisterRoutes(apiV1)

	// Conscience domain
	dignityPreserving, err := conscience.DignityPreservingSet(cfg.DignityPreservingActions)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid DIGNITY_PRESERVING_ACTIONS")
	}
	engineCfg := conscience.EngineConfig{
		ApprovalThreshold: cfg.ApprovalThreshold,
		MinorConcernAt:    cfg.MinorConcernAt,
		DignityPreserving: dignityPreserving,
	}
	evaluator := conscience.NewEvaluator(engineCfg, ethicalRules)
	decisionLog := conscience.NewDecisionLogPG(pool)
	recorder := conscience.NewRecorder(decisionLog, cfg.AuditWriteTimeout, logger)
	conscienceSvc := conscience.NewService(evaluator, registrySvc, provider, recorder)
	conscience.NewHandler(conscienceSvc).RegisterRoutes(apiV1)

	// Start with graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
