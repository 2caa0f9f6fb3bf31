// Package main 提供 dds 命令行入口
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/dep2p/go-dds"
	"github.com/dep2p/go-dds/pkg/lib/log"
)

var logger = log.Logger("dds/cmd")

// ═══════════════════════════════════════════════════════════════════════════
// 命令行参数
// ═══════════════════════════════════════════════════════════════════════════
//
//	命令行参数：运行时覆盖（「这次运行」想怎么跑）
//	JSON 配置文件：持久化配置
//
// ═══════════════════════════════════════════════════════════════════════════
var (
	configFile = flag.String("config", "", "配置文件路径")
	preset     = flag.String("preset", "default", "预设配置 (default/debug/constrained)")
	maxHandles = flag.Int("max-handles", 0, "句柄表容量（0 = 沿用预设）")
	introspect = flag.String("introspect", "", "自省服务监听地址，如 127.0.0.1:6060")
	demo       = flag.Bool("demo", false, "启动后构建示例实体树")

	// ─────────────────────────────────────────────────────────────────────
	// 日志参数
	// ─────────────────────────────────────────────────────────────────────
	logLevel = flag.String("log-level", "", "日志级别 (debug/info/warn/error)")
	logFile  = flag.String("log", "", "日志文件路径（默认输出到控制台）")

	// ─────────────────────────────────────────────────────────────────────
	// 信息显示
	// ─────────────────────────────────────────────────────────────────────
	showVersion = flag.Bool("version", false, "显示版本信息")
	showHelp    = flag.Bool("help", false, "显示帮助信息")
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flag.Parse()

	if *showVersion {
		printVersion()
		return nil
	}
	if *showHelp {
		printHelp()
		return nil
	}

	opts, err := buildOptions()
	if err != nil {
		return fmt.Errorf("配置错误: %w", err)
	}

	// 设置日志
	logPath := *logFile
	if logPath == "" {
		logPath = getLogFileFromEnv()
	}
	if logPath != "" {
		file, err := openLogFile(logPath)
		if err != nil {
			return err
		}
		defer func() { _ = file.Close() }()
		opts = append(opts, dds.WithLogOutput(file))
	}

	fmt.Printf("📦 %s\n", dds.VersionInfo())
	logger.Info("启动 dds 运行时", "version", dds.Version, "commit", dds.GitCommit, "buildDate", dds.BuildDate)

	rt, err := dds.New(opts...)
	if err != nil {
		return fmt.Errorf("启动失败: %w", err)
	}
	defer func() {
		if err := rt.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "关闭出错: %v\n", err)
		}
	}()

	if addr := rt.IntrospectAddr(); addr != "" {
		fmt.Printf("自省服务: http://%s/debug/introspect\n", addr)
	}

	if *demo {
		if err := runDemo(rt); err != nil {
			return fmt.Errorf("示例失败: %w", err)
		}
	}

	fmt.Println("运行时已启动，按 Ctrl+C 退出")
	waitForSignal()

	fmt.Println("\n正在关闭运行时...")
	return nil
}

// buildOptions 构建选项
//
// 配置优先级（从高到低）：
//  1. 命令行参数
//  2. 环境变量（DDS_* 前缀）
//  3. 配置文件
//  4. 预设默认值
func buildOptions() ([]dds.Option, error) {
	uc := &dds.UserConfig{}
	if *configFile != "" {
		var err error
		uc, err = loadConfigFile(*configFile)
		if err != nil {
			return nil, fmt.Errorf("加载配置文件失败: %w", err)
		}
	}

	applyEnvOverrides(uc)

	if isFlagSet("preset") || uc.Preset == "" {
		uc.Preset = *preset
	}
	if isFlagSet("max-handles") {
		uc.MaxHandles = *maxHandles
	}
	if *logLevel != "" {
		if uc.Log == nil {
			uc.Log = &dds.LogUserConfig{}
		}
		uc.Log.Level = *logLevel
	}
	if *introspect != "" {
		if uc.Diagnostics == nil {
			uc.Diagnostics = &dds.DiagnosticsUserConfig{}
		}
		uc.Diagnostics.Introspect = *introspect
	}

	return []dds.Option{dds.WithUserConfig(uc)}, nil
}

// runDemo 构建一棵示例实体树并演示等待集
func runDemo(rt *dds.Runtime) error {
	pp, err := rt.CreateParticipant(dds.DefaultDomainID, nil, nil)
	if err != nil {
		return err
	}
	tp, err := rt.CreateTopic(pp, "demo/chatter", "Chatter", nil, nil)
	if err != nil {
		return err
	}
	if _, err := rt.CreateWriter(pp, tp, nil, nil); err != nil {
		return err
	}
	rd, err := rt.CreateReader(pp, tp, nil, nil)
	if err != nil {
		return err
	}
	ws, err := rt.CreateWaitSet(pp)
	if err != nil {
		return err
	}
	if err := rt.SetStatusMask(rd, dds.DataAvailableStatus); err != nil {
		return err
	}
	if err := rt.WaitSetAttach(ws, rd, "reader"); err != nil {
		return err
	}

	if err := rt.DeliverData(rd, "hello"); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	triggered, err := rt.WaitSetWait(ctx, ws)
	if err != nil {
		return err
	}
	fmt.Printf("等待集触发: %v\n", triggered)
	if err := rt.ConsumeData(rd); err != nil {
		return err
	}

	printTree(rt, rt.RootHandle(), 0)
	return nil
}

// printTree 打印实体树
func printTree(rt *dds.Runtime, h dds.Handle, depth int) {
	iid, err := rt.GetInstanceHandle(h)
	if err != nil {
		return
	}
	fmt.Printf("%s- %v (instance %d)\n", strings.Repeat("  ", depth), h, iid)
	children, err := rt.GetChildren(h)
	if err != nil {
		return
	}
	for _, c := range children {
		printTree(rt, c, depth+1)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// 辅助函数
// ═══════════════════════════════════════════════════════════════════════════

func isFlagSet(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

func waitForSignal() {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	<-signals
}

// openLogFile 打开日志文件，必要时创建目录
func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("创建日志目录失败: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600) //nolint:gosec // G304: 用户指定的日志路径
	if err != nil {
		return nil, fmt.Errorf("打开日志文件失败: %w", err)
	}
	return file, nil
}

func printVersion() {
	fmt.Printf("dds %s\n", dds.Version)
	if dds.GitCommit != "" {
		fmt.Printf("  commit: %s\n", dds.GitCommit)
	}
	if dds.BuildDate != "" {
		fmt.Printf("  built:  %s\n", dds.BuildDate)
	}
}

func printHelp() {
	fmt.Println("dds - 实体生命周期运行时")
	fmt.Println()
	fmt.Println("用法:")
	fmt.Println("  dds [选项]")
	fmt.Println()
	fmt.Println("选项:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("环境变量:")
	fmt.Println("  DDS_PRESET        预设名称")
	fmt.Println("  DDS_MAX_HANDLES   句柄表容量")
	fmt.Println("  DDS_LOG_LEVEL     日志级别")
	fmt.Println("  DDS_LOG_FILE      日志文件路径")
	fmt.Println("  DDS_METRICS       启用实体指标 (true/false)")
	fmt.Println("  DDS_INTROSPECT    自省服务监听地址")
	fmt.Println()
	fmt.Println("预设配置:")
	fmt.Println("  default       默认配置")
	fmt.Println("  debug         调试日志")
	fmt.Println("  constrained   小句柄表，关闭指标")
	fmt.Println()
	fmt.Println("示例:")
	fmt.Println("  dds -demo -introspect 127.0.0.1:6060")
	fmt.Println("  dds -config dds.json -log-level debug")
}
