package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	DefaultAddr     = "127.0.0.1:8050"
	DefaultPageSize = 25
	DefaultLogLevel = "info"

	maxPageSize = 500
)

// 环境变量名（可放在 .env 中）。
const (
	EnvAddr     = "VMETA_ADDR"
	EnvBaseDir  = "VMETA_BASE_DIR"
	EnvPageSize = "VMETA_PAGE_SIZE"
	EnvLogLevel = "VMETA_LOG_LEVEL"
)

// ServerArgs 是 CLI 暴露的入口参数，并保留“是否显式指定”的信息，
// 以保证 CLI > 环境变量 > 默认值 的覆盖顺序可实现。
type ServerArgs struct {
	Addr    string
	AddrSet bool

	BaseDir    string
	BaseDirSet bool

	PageSize    int
	PageSizeSet bool

	LogLevel    string
	LogLevelSet bool
}

// ServerConfig 是合并后的最终服务配置。
type ServerConfig struct {
	Addr     string
	BaseDir  string // 上传配置中相对路径的基准目录（clean + absolute）
	PageSize int
	LogLevel string
}

// LoadServer 合并 CLI 参数与环境变量。
// getenv 通常是 os.Getenv；测试中可注入。
func LoadServer(cwd string, cli ServerArgs, getenv func(string) string) (ServerConfig, error) {
	if getenv == nil {
		getenv = os.Getenv
	}

	addr := DefaultAddr
	if cli.AddrSet {
		addr = cli.Addr
	} else if v := strings.TrimSpace(getenv(EnvAddr)); v != "" {
		addr = v
	}
	if strings.TrimSpace(addr) == "" {
		return ServerConfig{}, &Error{Code: ErrCodeInvalid, Path: "addr", Err: fmt.Errorf("addr 不能为空")}
	}

	baseDir := cwd
	if cli.BaseDirSet {
		baseDir = cli.BaseDir
	} else if v := strings.TrimSpace(getenv(EnvBaseDir)); v != "" {
		baseDir = v
	}
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return ServerConfig{}, &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}
	baseDir = absCleanFrom(cwdAbs, baseDir)

	pageSize := DefaultPageSize
	if cli.PageSizeSet {
		pageSize = cli.PageSize
	} else if v := strings.TrimSpace(getenv(EnvPageSize)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return ServerConfig{}, &Error{Code: ErrCodeInvalid, Path: EnvPageSize, Err: err}
		}
		pageSize = n
	}
	// 超出范围截断，而不是报错。
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	level := DefaultLogLevel
	if cli.LogLevelSet {
		level = cli.LogLevel
	} else if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		level = v
	}
	level = strings.ToLower(strings.TrimSpace(level))
	switch level {
	case "debug", "info", "warn", "error":
	default:
		return ServerConfig{}, &Error{Code: ErrCodeInvalid, Path: "log-level", Err: fmt.Errorf("log level 只能是 debug/info/warn/error，实际是 %q", level)}
	}

	return ServerConfig{
		Addr:     addr,
		BaseDir:  baseDir,
		PageSize: pageSize,
		LogLevel: level,
	}, nil
}
