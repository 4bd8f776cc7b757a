package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gorm.io/gorm"

	"github.com/mkrogh/homewatch/internal/ingest"
	"github.com/mkrogh/homewatch/internal/store"
	"github.com/mkrogh/homewatch/pkg/metrics"
)

// Server represents the homewatch HTTP server.
type Server struct {
	logger     *slog.Logger
	httpServer *http.Server
	db         *gorm.DB
	consumer   *ingest.Consumer
	config     *ServerConfig
}

// ServerConfig holds the configuration for the Server.
type ServerConfig struct {
	Logger *slog.Logger

	// Database configuration
	DBHost           string
	DBUser           string
	DBPassword       string
	DBName           string
	DBSSLMode        string
	DBPort           int
	DBConnectTimeout time.Duration

	// HTTP server configuration
	HTTPPort int

	// Session cookie signing key
	SessionSecret string

	// RabbitMQ configuration; the queue consumer is skipped when the
	// URL is empty and devices report over HTTP only.
	RabbitMQURL string
	QueueName   string

	// Metrics (optional)
	Metrics   *metrics.ServerMetrics
	MQMetrics *metrics.MQMetrics
}

// NewServer creates a new Server instance.
func NewServer(cfg *ServerConfig) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("server config cannot be nil")
	}

	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.HTTPPort <= 0 {
		return nil, errors.New("HTTP port must be positive")
	}

	if cfg.SessionSecret == "" {
		return nil, errors.New("session secret cannot be empty")
	}

	return &Server{
		logger: cfg.Logger,
		config: cfg,
	}, nil
}

// Run starts the server and blocks until shutdown.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("starting homewatch server")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	// Connect to database
	s.logger.Info("connecting to database",
		"host", s.config.DBHost,
		"port", s.config.DBPort,
		"database", s.config.DBName,
	)
	db, err := store.NewDB(&store.DBConfig{
		Logger:         s.logger,
		Host:           s.config.DBHost,
		User:           s.config.DBUser,
		Password:       s.config.DBPassword,
		DBName:         s.config.DBName,
		SSLMode:        s.config.DBSSLMode,
		Port:           s.config.DBPort,
		ConnectTimeout: s.config.DBConnectTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	s.db = db

	handler, service, err := s.buildHandler(db)
	if err != nil {
		return err
	}

	// Start queue consumer if configured
	if s.config.RabbitMQURL != "" {
		consumer, err := ingest.NewConsumer(&ingest.ConsumerConfig{
			Logger:      s.logger,
			Service:     service,
			RabbitMQURL: s.config.RabbitMQURL,
			QueueName:   s.config.QueueName,
			MQMetrics:   s.config.MQMetrics,
		})
		if err != nil {
			return fmt.Errorf("failed to create queue consumer: %w", err)
		}
		s.consumer = consumer

		go func() {
			if err := consumer.Start(ctx); err != nil {
				s.logger.Error("queue consumer stopped", "error", err)
			}
		}()
	}

	// Create HTTP server
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.HTTPPort),
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.logger.Info("starting HTTP server", "address", s.httpServer.Addr)

	httpErr := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			httpErr <- fmt.Errorf("HTTP server error: %w", err)
		}
		close(httpErr)
	}()

	s.logger.Info("homewatch server started successfully")

	// Wait for shutdown signal or HTTP error
	select {
	case sig := <-sigChan:
		s.logger.Info("received shutdown signal", "signal", sig.String())
		cancel()
	case <-ctx.Done():
		s.logger.Info("context canceled")
	case err := <-httpErr:
		if err != nil {
			s.logger.Error("HTTP server error", "error", err)
			cancel()
			return err
		}
	}

	return s.Shutdown()
}

// buildHandler wires the stores, the ingestion service, and the HTTP
// handler on top of an open database connection.
func (s *Server) buildHandler(db *gorm.DB) (*Handler, *ingest.Service, error) {
	users, err := store.NewUserStore(db, s.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create user store: %w", err)
	}

	readings, err := store.NewReadingStore(db, s.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create reading store: %w", err)
	}

	motion, err := store.NewMotionStore(db, s.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create motion store: %w", err)
	}

	door, err := store.NewDoorStore(db, s.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create door store: %w", err)
	}

	service, err := ingest.NewService(&ingest.ServiceConfig{
		Logger:   s.logger,
		Readings: readings,
		Motion:   motion,
		Door:     door,
		Metrics:  s.config.Metrics,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create ingest service: %w", err)
	}

	handler, err := NewHandler(&HandlerConfig{
		Logger:        s.logger,
		SessionSecret: s.config.SessionSecret,
		Users:         users,
		Readings:      readings,
		Motion:        motion,
		Door:          door,
		Ingest:        service,
		Metrics:       s.config.Metrics,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create handler: %w", err)
	}

	return handler, service, nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	s.logger.Info("shutting down homewatch server")

	var shutdownErr error

	// Stop queue consumer
	if s.consumer != nil {
		s.logger.Info("stopping queue consumer")
		if err := s.consumer.Stop(); err != nil {
			s.logger.Error("failed to stop queue consumer", "error", err)
			shutdownErr = fmt.Errorf("queue consumer stop error: %w", err)
		}
	}

	// Shutdown HTTP server
	if s.httpServer != nil {
		s.logger.Info("stopping HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("failed to shutdown HTTP server", "error", err)
			if shutdownErr != nil {
				shutdownErr = fmt.Errorf("%w; HTTP server shutdown error: %w", shutdownErr, err)
			} else {
				shutdownErr = fmt.Errorf("HTTP server shutdown error: %w", err)
			}
		}
		s.logger.Info("HTTP server stopped")
	}

	// Close database connection
	if s.db != nil {
		if err := store.CloseDB(s.db, s.logger); err != nil {
			s.logger.Error("failed to close database", "error", err)
			if shutdownErr != nil {
				shutdownErr = fmt.Errorf("%w; database close error: %w", shutdownErr, err)
			} else {
				shutdownErr = fmt.Errorf("database close error: %w", err)
			}
		}
	}

	if shutdownErr != nil {
		s.logger.Error("homewatch server shutdown completed with errors", "error", shutdownErr)
		return shutdownErr
	}

	s.logger.Info("homewatch server shutdown completed successfully")
	return nil
}
