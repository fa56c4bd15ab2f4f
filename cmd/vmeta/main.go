package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/John-Robertt/vmeta/internal/app/session"
	"github.com/John-Robertt/vmeta/internal/config"
	"github.com/John-Robertt/vmeta/internal/domain"
	"github.com/John-Robertt/vmeta/internal/infra/logx"
	"github.com/John-Robertt/vmeta/internal/webui"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || isHelp(args[0]) {
		printUsage(stdout)
		return 0
	}

	switch args[0] {
	case "serve":
		return serveCmd(args[1:], stdout, stderr)
	case "table":
		return tableCmd(args[1:], stdout, stderr)
	default:
		fmt.Fprintf(stderr, "未知命令：%q\n\n", args[0])
		printUsage(stderr)
		return 2
	}
}

// loadDotEnv 读取当前目录的 .env（不存在则忽略；不覆盖已有环境变量）。
func loadDotEnv(stderr io.Writer) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(stderr, "读取 .env 失败：%v\n", err)
	}
}

func serveCmd(args []string, stdout, stderr io.Writer) int {
	fset := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	fset.SetOutput(io.Discard)
	var sa config.ServerArgs
	fset.StringVar(&sa.Addr, "addr", config.DefaultAddr, "HTTP 监听地址")
	fset.StringVar(&sa.BaseDir, "base-dir", "", "上传配置中相对路径的基准目录（默认当前目录）")
	fset.IntVar(&sa.PageSize, "page-size", config.DefaultPageSize, "表格每页行数")
	fset.StringVar(&sa.LogLevel, "log-level", config.DefaultLogLevel, "日志级别：debug|info|warn|error")
	help := fset.BoolP("help", "h", false, "显示帮助")

	if err := fset.Parse(args); err != nil {
		fmt.Fprintf(stderr, "参数错误：%v\n\n", err)
		printServeUsage(stderr)
		return 2
	}
	if *help {
		printServeUsage(stdout)
		return 0
	}
	if fset.NArg() > 0 {
		fmt.Fprintf(stderr, "参数错误：多余的参数 %q\n\n", fset.Args())
		printServeUsage(stderr)
		return 2
	}
	sa.AddrSet = fset.Changed("addr")
	sa.BaseDirSet = fset.Changed("base-dir")
	sa.PageSizeSet = fset.Changed("page-size")
	sa.LogLevelSet = fset.Changed("log-level")

	loadDotEnv(stderr)

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(stderr, "读取当前目录失败：%v\n", err)
		return 1
	}
	cfg, err := config.LoadServer(cwd, sa, os.Getenv)
	if err != nil {
		fmt.Fprintf(stderr, "配置错误：%v\n", err)
		return 1
	}

	logger, err := logx.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(stderr, "初始化日志失败：%v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logx.WithLogger(ctx, logger)

	if err := webui.New(cfg, logger).Run(ctx); err != nil {
		logger.Error("web ui stopped", zap.Error(err))
		return 1
	}
	return 0
}

// tableOutput 是 table 子命令在 stdout 上输出的唯一 JSON。
type tableOutput struct {
	Columns     []string     `json:"columns"`
	Rows        []domain.Row `json:"rows"`
	Placeholder bool         `json:"placeholder"`
}

func tableCmd(args []string, stdout, stderr io.Writer) int {
	fset := pflag.NewFlagSet("table", pflag.ContinueOnError)
	fset.SetOutput(io.Discard)
	cfgPath := fset.String("config", "", "上传配置文件（yaml）")
	baseDir := fset.String("base-dir", "", "配置中相对路径的基准目录（默认当前目录）")
	withMissing := fset.Bool("with-missing", false, "为缺少元数据文件的视频追加行")
	logLevel := fset.String("log-level", "warn", "日志级别：debug|info|warn|error")
	help := fset.BoolP("help", "h", false, "显示帮助")

	if err := fset.Parse(args); err != nil {
		fmt.Fprintf(stderr, "参数错误：%v\n\n", err)
		printTableUsage(stderr)
		return 2
	}
	if *help {
		printTableUsage(stdout)
		return 0
	}
	if *cfgPath == "" {
		fmt.Fprint(stderr, "参数错误：缺少 --config\n\n")
		printTableUsage(stderr)
		return 2
	}

	loadDotEnv(stderr)

	logger, err := logx.New(*logLevel)
	if err != nil {
		fmt.Fprintf(stderr, "参数错误：%v\n", err)
		return 2
	}
	defer func() { _ = logger.Sync() }()
	ctx := logx.WithLogger(context.Background(), logger)

	b, err := os.ReadFile(*cfgPath)
	if err != nil {
		fmt.Fprintf(stderr, "读取配置文件失败：%v\n", err)
		return 1
	}

	base := *baseDir
	if base == "" {
		if base, err = os.Getwd(); err != nil {
			fmt.Fprintf(stderr, "读取当前目录失败：%v\n", err)
			return 1
		}
	}
	env := session.Env{BaseDir: base}

	st := session.Upload(ctx, env, b, *cfgPath)
	if !st.HasTable() {
		fmt.Fprintln(stderr, st.Err)
		return 1
	}
	if *withMissing {
		st = session.AddRowsForMissing(ctx, env, st)
		if st.Alert.Open && st.Alert.Error {
			fmt.Fprintln(stderr, st.Alert.Message)
			return 1
		}
	}

	out := tableOutput{Columns: st.Table.Columns, Rows: st.Table.Rows, Placeholder: st.Table.Placeholder}
	if out.Columns == nil {
		out.Columns = []string{}
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(stderr, "输出 JSON 失败：%v\n", err)
		return 1
	}
	return 0
}

func isHelp(s string) bool {
	return s == "-h" || s == "--help" || s == "help"
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `用法：
  vmeta serve [--addr host:port] [--base-dir dir] [--page-size n] [--log-level level]
  vmeta table --config file.yaml [--base-dir dir] [--with-missing]

命令：
  serve  启动浏览器端元数据编辑器
  table  聚合元数据并以 JSON 输出表格（不写任何文件）

使用 "vmeta <命令> --help" 查看详细说明。
`)
}

func printServeUsage(w io.Writer) {
	fmt.Fprintf(w, `用法：
  vmeta serve [--addr host:port] [--base-dir dir] [--page-size n] [--log-level level]

参数：
  --addr       HTTP 监听地址（默认 %s；环境变量 %s）
  --base-dir   上传配置中相对路径的基准目录（默认当前目录；环境变量 %s）
  --page-size  表格每页行数（默认 %d；环境变量 %s）
  --log-level  日志级别 debug|info|warn|error（默认 %s；环境变量 %s）
  -h, --help   显示帮助

当前目录下的 .env 会被读取，但不会覆盖已有环境变量。
`, config.DefaultAddr, config.EnvAddr, config.EnvBaseDir, config.DefaultPageSize, config.EnvPageSize, config.DefaultLogLevel, config.EnvLogLevel)
}

func printTableUsage(w io.Writer) {
	fmt.Fprint(w, `用法：
  vmeta table --config file.yaml [--base-dir dir] [--with-missing]

参数：
  --config        上传配置文件（必填）
  --base-dir      配置中相对路径的基准目录（默认当前目录）
  --with-missing  为缺少元数据文件的视频追加行
  --log-level     日志级别（默认 warn，日志输出到 stderr）
  -h, --help      显示帮助

stdout 只输出一个 JSON：{"columns": [...], "rows": [...], "placeholder": bool}
`)
}
