package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"liyu1981.xyz/iot-datalogger/pkg/common"
	"liyu1981.xyz/iot-datalogger/pkg/config"
	"liyu1981.xyz/iot-datalogger/pkg/db"
	iotGrpc "liyu1981.xyz/iot-datalogger/pkg/grpc"
	iotHttp "liyu1981.xyz/iot-datalogger/pkg/http"
	"liyu1981.xyz/iot-datalogger/pkg/iot"
	"liyu1981.xyz/iot-datalogger/pkg/metrics"
	"liyu1981.xyz/iot-datalogger/pkg/notify"
	"liyu1981.xyz/iot-datalogger/pkg/stream"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration, copy .env.example to .env first if in development: %v", err)
	}

	var dbInstance *db.DB
	switch cfg.DBType {
	case "file":
		dbInstance, err = db.Open(db.UseSqliteDialector())
	case "memory":
		dbInstance, err = db.Open(db.UseMemorySqliteDialector())
	}
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer dbInstance.Close()

	logger := common.GetLogger()

	settings := iot.DefaultSettings()
	settings.DashboardURL = cfg.DashboardURL()
	settings.PollInterval = cfg.PollInterval
	settings.Thresholds = iot.Thresholds{
		OfflineAfter: cfg.OfflineAfter,
		TempMin:      cfg.TempMin,
		TempMax:      cfg.TempMax,
		HumMin:       cfg.HumMin,
		HumMax:       cfg.HumMax,
	}
	settings.AlarmLogMax = cfg.AlarmLogMax
	settings.LiveWindow = cfg.LiveWindow
	settings.HistoryPoints = cfg.HistoryPoints
	settings.DeviceHistoryPoints = cfg.DeviceHistoryPoints

	iotCore := &iot.IOT{
		Db:       dbInstance,
		Settings: settings,
	}

	hub := stream.NewHub()
	defer hub.Close()
	promMetrics := metrics.NewMetrics()

	observers := []iot.IObserver{promMetrics, hub}

	if cfg.MqttBroker != "" {
		client, err := notify.Connect(cfg.MqttBroker, cfg.MqttClientID, cfg.FetchTimeout)
		if err != nil {
			log.Fatalf("failed to connect mqtt broker: %v", err)
		}
		defer client.Disconnect(250)
		observers = append(observers, notify.NewAlarmPublisher(client, cfg.MqttTopic))
		logger.Info("Publishing alarms to mqtt",
			zap.String("broker", cfg.MqttBroker),
			zap.String("topic", cfg.MqttTopic))
	}

	iotCore.WithServices(iot.ServiceOpts{
		Fetcher:   iot.NewHTTPFetcher(cfg.FetchTimeout),
		Alarm:     iotCore.GetIAlarm(),
		User:      iotCore.GetIUser(),
		Observers: observers,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	poll := iotCore.StartPolling(ctx)
	logger.Info("Polling dashboard",
		zap.String("url", settings.DashboardURL),
		zap.Duration("interval", settings.PollInterval))

	var grpcServer *grpc.Server
	if cfg.GrpcHostPort != "" {
		iotGrpcServer := iotGrpc.IOTServer{
			Iot:              iotCore,
			RateLimiterStore: iot.NewRateLimiterStore(rate.Limit(cfg.DefaultRate), cfg.DefaultBurst),
		}
		grpcServer = iotGrpcServer.NewServer()
		logger.Info("gRPC server created with:",
			zap.String("default_limiter",
				fmt.Sprintf("{\"default_rate\": %v, \"default_burst\": %v}", cfg.DefaultRate, cfg.DefaultBurst)))

		listener, err := net.Listen("tcp", cfg.GrpcHostPort)
		if err != nil {
			log.Fatalf("failed to listen: %v", err)
		}

		go func() {
			logger.Info("start gRPC server on " + cfg.GrpcHostPort)
			if err := grpcServer.Serve(listener); err != nil {
				logger.Error("grpc server failed to serve", zap.Error(err))
			}
		}()
	}

	rs := &iotHttp.RestfulServer{
		Server:           gin.Default(),
		Iot:              iotCore,
		RateLimiterStore: iot.NewRateLimiterStore(rate.Limit(cfg.DefaultRate), cfg.DefaultBurst),
		StreamHandler:    hub,
		MetricsHandler:   promMetrics.Handler(),
	}
	rs.Setup()

	logger.Info("http server created with:",
		zap.String("default_limiter",
			fmt.Sprintf("{\"default_rate\": %v, \"default_burst\": %v}", cfg.DefaultRate, cfg.DefaultBurst)))

	httpServer := &http.Server{Addr: cfg.HTTPHostPort, Handler: rs.Server}
	go func() {
		logger.Info("Starting HTTP server on: " + cfg.HTTPHostPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed to serve", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	poll.Stop()
	hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown", zap.Error(err))
	}
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
}
