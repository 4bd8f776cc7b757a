package server_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mkrogh/homewatch/internal/server"
)

var _ = Describe("Server", func() {
	validConfig := func() *server.ServerConfig {
		return &server.ServerConfig{
			Logger:           testLogger(),
			DBHost:           "localhost",
			DBUser:           "homewatch",
			DBPassword:       "homewatch",
			DBName:           "homewatch",
			DBSSLMode:        "disable",
			DBPort:           5432,
			DBConnectTimeout: 10 * time.Second,
			HTTPPort:         5000,
			SessionSecret:    "test-session-secret",
		}
	}

	Describe("NewServer", func() {
		It("should create a server with valid configuration", func() {
			srv, err := server.NewServer(validConfig())
			Expect(err).NotTo(HaveOccurred())
			Expect(srv).NotTo(BeNil())
		})

		It("should reject a nil config", func() {
			srv, err := server.NewServer(nil)
			Expect(err).To(MatchError("server config cannot be nil"))
			Expect(srv).To(BeNil())
		})

		It("should reject a missing logger", func() {
			cfg := validConfig()
			cfg.Logger = nil
			_, err := server.NewServer(cfg)
			Expect(err).To(MatchError("logger cannot be nil"))
		})

		It("should reject a non-positive HTTP port", func() {
			cfg := validConfig()
			cfg.HTTPPort = 0
			_, err := server.NewServer(cfg)
			Expect(err).To(MatchError("HTTP port must be positive"))
		})

		It("should reject an empty session secret", func() {
			cfg := validConfig()
			cfg.SessionSecret = ""
			_, err := server.NewServer(cfg)
			Expect(err).To(MatchError("session secret cannot be empty"))
		})
	})

	Describe("NewHandler", func() {
		It("should reject a nil config", func() {
			handler, err := server.NewHandler(nil)
			Expect(err).To(MatchError("handler config cannot be nil"))
			Expect(handler).To(BeNil())
		})

		It("should reject a config without stores", func() {
			_, err := server.NewHandler(&server.HandlerConfig{
				Logger:        testLogger(),
				SessionSecret: "secret",
			})
			Expect(err).To(MatchError("user store cannot be nil"))
		})
	})
})
