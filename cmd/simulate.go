package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mkrogh/homewatch/internal/simulator"
	"github.com/mkrogh/homewatch/pkg/metrics"
	"github.com/mkrogh/homewatch/pkg/mq"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Publish synthetic sensor traffic",
	Long: `Publish synthetic home sensor traffic for development and load
testing. Readings go onto the RabbitMQ queue, or straight at the HTTP
ingestion API when --server-url is set.`,
	RunE: runSimulate,
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().String("rabbitmq-url", "amqp://localhost:5672", "RabbitMQ URL")
	simulateCmd.Flags().String("queue-name", "sensor-data", "RabbitMQ queue name for sensor reports")
	simulateCmd.Flags().String("server-url", "", "post to this homewatch server instead of RabbitMQ")
	simulateCmd.Flags().Duration("interval", 5*time.Second, "interval between readings")

	_ = viper.BindPFlag("simulate.rabbitmq.url", simulateCmd.Flags().Lookup("rabbitmq-url"))
	_ = viper.BindPFlag("simulate.rabbitmq.queue_name", simulateCmd.Flags().Lookup("queue-name"))
	_ = viper.BindPFlag("simulate.server_url", simulateCmd.Flags().Lookup("server-url"))
	_ = viper.BindPFlag("simulate.interval", simulateCmd.Flags().Lookup("interval"))
}

func runSimulate(_ *cobra.Command, _ []string) error {
	logger := GetLogger()
	logger.Info("starting simulator")

	config := &simulator.Config{
		Logger:   logger,
		Interval: viper.GetDuration("simulate.interval"),
	}

	serverURL := viper.GetString("simulate.server_url")
	if serverURL != "" {
		config.BaseURL = serverURL
	} else {
		client := mq.New(
			viper.GetString("simulate.rabbitmq.queue_name"),
			viper.GetString("simulate.rabbitmq.url"),
			logger,
		)
		client.SetMetrics(metrics.NewMQMetrics("homewatch"))
		defer func() { _ = client.Close() }()
		config.MQClient = client
	}

	sim, err := simulator.New(config)
	if err != nil {
		logger.Error("failed to create simulator", "error", err)
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := sim.Run(ctx); err != nil {
		logger.Error("simulator error", "error", err)
		return err
	}

	logger.Info("simulator stopped")
	return nil
}
