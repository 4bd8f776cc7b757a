package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mkrogh/homewatch/internal/server"
	"github.com/mkrogh/homewatch/pkg/metrics"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the homewatch server",
	Long: `Run the homewatch server that:
- Serves the session-authenticated web dashboard
- Accepts sensor reports over the HTTP API
- Optionally consumes sensor reports from RabbitMQ
- Persists data to PostgreSQL`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().String("db-host", "localhost", "PostgreSQL host")
	serverCmd.Flags().Int("db-port", 5432, "PostgreSQL port")
	serverCmd.Flags().String("db-user", "homewatch", "PostgreSQL user")
	serverCmd.Flags().String("db-password", "", "PostgreSQL password")
	serverCmd.Flags().String("db-name", "homewatch", "PostgreSQL database name")
	serverCmd.Flags().String("db-sslmode", "disable", "PostgreSQL SSL mode")
	serverCmd.Flags().Duration("db-connect-timeout", 10*time.Second, "PostgreSQL connect timeout")
	serverCmd.Flags().Int("http-port", 5000, "HTTP server port")
	serverCmd.Flags().String("session-secret", "dev-key-change-in-production", "session cookie signing key")
	serverCmd.Flags().String("rabbitmq-url", "", "RabbitMQ URL (queue consumer disabled when empty)")
	serverCmd.Flags().String("queue-name", "sensor-data", "RabbitMQ queue name for sensor reports")

	_ = viper.BindPFlag("server.db.host", serverCmd.Flags().Lookup("db-host"))
	_ = viper.BindPFlag("server.db.port", serverCmd.Flags().Lookup("db-port"))
	_ = viper.BindPFlag("server.db.user", serverCmd.Flags().Lookup("db-user"))
	_ = viper.BindPFlag("server.db.password", serverCmd.Flags().Lookup("db-password"))
	_ = viper.BindPFlag("server.db.name", serverCmd.Flags().Lookup("db-name"))
	_ = viper.BindPFlag("server.db.sslmode", serverCmd.Flags().Lookup("db-sslmode"))
	_ = viper.BindPFlag("server.db.connect_timeout", serverCmd.Flags().Lookup("db-connect-timeout"))
	_ = viper.BindPFlag("server.http.port", serverCmd.Flags().Lookup("http-port"))
	_ = viper.BindPFlag("server.session.secret", serverCmd.Flags().Lookup("session-secret"))
	_ = viper.BindPFlag("server.rabbitmq.url", serverCmd.Flags().Lookup("rabbitmq-url"))
	_ = viper.BindPFlag("server.rabbitmq.queue_name", serverCmd.Flags().Lookup("queue-name"))
}

func runServer(_ *cobra.Command, _ []string) error {
	logger := GetLogger()
	logger.Info("starting homewatch service")

	config := &server.ServerConfig{
		Logger:           logger,
		DBHost:           viper.GetString("server.db.host"),
		DBPort:           viper.GetInt("server.db.port"),
		DBUser:           viper.GetString("server.db.user"),
		DBPassword:       viper.GetString("server.db.password"),
		DBName:           viper.GetString("server.db.name"),
		DBSSLMode:        viper.GetString("server.db.sslmode"),
		DBConnectTimeout: viper.GetDuration("server.db.connect_timeout"),
		HTTPPort:         viper.GetInt("server.http.port"),
		SessionSecret:    viper.GetString("server.session.secret"),
		RabbitMQURL:      viper.GetString("server.rabbitmq.url"),
		QueueName:        viper.GetString("server.rabbitmq.queue_name"),
		Metrics:          metrics.NewServerMetrics("homewatch"),
		MQMetrics:        metrics.NewMQMetrics("homewatch"),
	}

	srv, err := server.NewServer(config)
	if err != nil {
		logger.Error("failed to create server", "error", err)
		return err
	}

	logger.Info("server configuration",
		"db_host", config.DBHost,
		"db_port", config.DBPort,
		"db_name", config.DBName,
		"http_port", config.HTTPPort,
		"rabbitmq_url", config.RabbitMQURL,
		"queue_name", config.QueueName,
	)

	if err := srv.Run(context.Background()); err != nil {
		logger.Error("server error", "error", err)
		return err
	}

	logger.Info("server stopped")
	return nil
}
