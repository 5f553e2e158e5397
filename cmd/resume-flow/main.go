package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"resume-flow-go/internal/api/handler"
	"resume-flow-go/internal/api/router"
	"resume-flow-go/internal/config"
	appCoreLogger "resume-flow-go/internal/logger"
	"resume-flow-go/internal/outbox"
	"resume-flow-go/internal/processor"
	"resume-flow-go/internal/storage"
	"resume-flow-go/internal/tracing"

	"github.com/cloudwego/hertz/pkg/app/server"
	glog "github.com/cloudwego/hertz/pkg/common/hlog"
	hertzadapter "github.com/hertz-contrib/logger/zerolog"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"
	"github.com/spf13/pflag"
)

func main() {
	var configPath, initConfigPath string
	pflag.StringVarP(&configPath, "config", "c", "", "Path to config file")
	pflag.StringVar(&initConfigPath, "init-config", "", "Write a sample config with defaults to this path and exit")
	pflag.Parse()

	if initConfigPath != "" {
		if err := writeSampleConfig(initConfigPath); err != nil {
			appCoreLogger.Fatal().Err(err).Msg("生成示例配置失败")
		}
		return
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		appCoreLogger.Fatal().Err(err).Msg("加载配置失败")
	}
	initLogger(cfg)
	glog.Info("配置加载成功")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.InitProvider(ctx, cfg.Tracing)
	if err != nil {
		glog.Fatalf("初始化链路追踪失败: %v", err)
	}

	storageManager, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		glog.Fatalf("初始化存储失败: %v", err)
	}
	defer storageManager.Close()
	glog.Info("存储服务初始化完成")

	relay := startOutboxRelay(cfg, storageManager)

	service, err := processor.NewResumeServiceFromConfig(ctx, cfg, storageManager)
	if err != nil {
		glog.Fatalf("初始化ResumeService失败: %v", err)
	}
	glog.Info("ResumeService初始化成功")

	tracer, tracerCfg := hertztracing.NewServerTracer()
	h := server.New(
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
		server.WithMaxRequestBodySize(int(cfg.MaxUploadBytes())+1<<20),
		tracer,
	)
	h.Use(hertztracing.ServerMiddleware(tracerCfg))

	router.RegisterRoutes(h, cfg, handler.NewResumeHandler(service), handler.NewJobSearchHandler(service))
	glog.Info("HTTP路由注册成功")

	glog.Infof("HTTP 服务器启动中，监听地址: %s", cfg.Server.Address)
	go func() {
		if err := h.Run(); err != nil {
			glog.Fatalf("启动HTTP服务器失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	glog.Info("接收到终止信号，正在优雅退出...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := h.Shutdown(shutdownCtx); err != nil {
		glog.Errorf("服务器关闭失败: %v", err)
	}
	if relay != nil {
		relay.Stop()
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		glog.Warnf("关闭链路追踪失败: %v", err)
	}
	glog.Info("优雅退出完成")
}

// writeSampleConfig 写出默认配置并确认它能被重新加载
func writeSampleConfig(path string) error {
	if err := config.CreateSampleConfig(path); err != nil {
		return err
	}
	if _, err := config.LoadConfig(path); err != nil {
		return fmt.Errorf("示例配置无法加载: %w", err)
	}
	appCoreLogger.Info().Str("path", path).Msg("示例配置已生成")
	return nil
}

// startOutboxRelay MySQL 和 RabbitMQ 都可用时启动 outbox 中继
func startOutboxRelay(cfg *config.Config, st *storage.Storage) *outbox.MessageRelay {
	if !cfg.Outbox.Enabled {
		return nil
	}
	if st.MySQL == nil || st.RabbitMQ == nil {
		glog.Warn("outbox 已开启，但 MySQL 或 RabbitMQ 不可用，事件暂不投递")
		return nil
	}
	relay := outbox.NewMessageRelay(st.MySQL.DB(), st.RabbitMQ,
		outbox.WithPollingInterval(config.GetDuration(cfg.Outbox.PollingInterval, 5*time.Second)),
		outbox.WithBatchSize(cfg.Outbox.BatchSize),
		outbox.WithMaxRetries(cfg.Outbox.MaxRetries),
	)
	relay.Start()
	return relay
}

// initLogger 按配置初始化 zerolog，并让 Hertz 的 hlog 复用同一个 logger
func initLogger(cfg *config.Config) {
	appCoreLogger.Init(appCoreLogger.Config{
		Level:        cfg.Logger.Level,
		Format:       cfg.Logger.Format,
		TimeFormat:   cfg.Logger.TimeFormat,
		ReportCaller: cfg.Logger.ReportCaller,
	})

	glog.SetLogger(hertzadapter.From(appCoreLogger.Logger))
	if cfg.Logger.Level == "debug" {
		glog.SetLevel(glog.LevelDebug)
	} else {
		glog.SetLevel(glog.LevelInfo)
	}
}
