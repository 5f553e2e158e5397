package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"resume-flow-go/internal/config"
	"resume-flow-go/internal/jobs"
	appCoreLogger "resume-flow-go/internal/logger"
	"resume-flow-go/internal/processor"

	"github.com/spf13/pflag"
)

// 命令行参数定义
var (
	inputFile  = pflag.StringP("file", "f", "", "简历文件路径 (必填，支持 .pdf .docx .doc .txt)")
	format     = pflag.String("format", "text", "输出格式，可选项：text, json")
	withJobs   = pflag.Bool("jobs", false, "同时输出岗位匹配结果")
	filter     = pflag.String("filter", "all", "岗位过滤方式：all, best")
	configPath = pflag.StringP("config", "c", "", "配置文件路径 (可选，用于岗位匹配阈值)")
	verbose    = pflag.BoolP("verbose", "v", false, "输出调试日志")
)

func main() {
	pflag.Parse()

	level := "warn"
	if *verbose {
		level = "debug"
	}
	appCoreLogger.Init(appCoreLogger.Config{Level: level, Format: "pretty", TimeFormat: "15:04:05"})

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if *inputFile == "" {
		pflag.Usage()
		return fmt.Errorf("必须通过 --file 提供简历文件路径")
	}
	if *format != "text" && *format != "json" {
		return fmt.Errorf("未知输出格式 %q，可选 text 或 json", *format)
	}
	jobFilter, err := jobs.ParseFilter(*filter)
	if err != nil {
		return err
	}

	cfg := config.DefaultConfig()
	if *configPath != "" {
		if cfg, err = config.LoadConfig(*configPath); err != nil {
			return err
		}
	}
	// 命令行模式不需要展示性等待
	cfg.Pacing.ParseDelay = "0s"
	cfg.Pacing.SearchDelay = "0s"

	absPath, err := filepath.Abs(*inputFile)
	if err != nil {
		return fmt.Errorf("无法获取文件的绝对路径: %w", err)
	}
	data, err := os.ReadFile(absPath)
	if err != nil {
		return fmt.Errorf("无法读取文件 %s: %w", absPath, err)
	}

	// 创建上下文，添加超时以防止无限等待
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	service, err := processor.NewResumeServiceFromConfig(ctx, cfg, nil)
	if err != nil {
		return err
	}

	result, err := service.ParseUpload(ctx, filepath.Base(absPath), data)
	if err != nil {
		return err
	}

	out := output{Result: result}
	if *withJobs {
		matches, err := service.SearchJobs(ctx, result.Record, jobFilter)
		if err != nil {
			return err
		}
		out.Jobs = matches
	}

	if *format == "json" {
		return writeJSON(os.Stdout, out)
	}
	writeText(os.Stdout, out)
	return nil
}
