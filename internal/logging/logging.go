package logging

import (
	"context"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"

	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Options 日志配置。File 非空时写入滚动文件。
type Options struct {
	Level      string // debug|info|warn|error
	Format     string // text|json
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Setup 同时配置 slog 默认 logger 和标准库 log，返回底层 writer
func Setup(opts Options) io.Writer {
	var w io.Writer = os.Stderr
	if strings.TrimSpace(opts.File) != "" {
		w = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    orDefault(opts.MaxSizeMB, 50),
			MaxBackups: orDefault(opts.MaxBackups, 5),
			MaxAge:     orDefault(opts.MaxAgeDays, 14),
			Compress:   true,
		}
	}

	handlerOpts := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}
	var h slog.Handler
	if strings.ToLower(opts.Format) == "json" {
		h = slog.NewJSONHandler(w, handlerOpts)
		log.SetFlags(0)
	} else {
		h = slog.NewTextHandler(w, handlerOpts)
		log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	}
	slog.SetDefault(slog.New(&countHandler{next: h}))
	log.SetOutput(w)
	return w
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// 各级别日志计数，/health 会带上
var cntDebug, cntInfo, cntWarn, cntError atomic.Int64

type countHandler struct{ next slog.Handler }

func (c *countHandler) Enabled(ctx context.Context, lvl slog.Level) bool {
	return c.next.Enabled(ctx, lvl)
}

func (c *countHandler) Handle(ctx context.Context, rec slog.Record) error {
	switch {
	case rec.Level >= slog.LevelError:
		cntError.Add(1)
	case rec.Level >= slog.LevelWarn:
		cntWarn.Add(1)
	case rec.Level >= slog.LevelInfo:
		cntInfo.Add(1)
	default:
		cntDebug.Add(1)
	}
	return c.next.Handle(ctx, rec)
}

func (c *countHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &countHandler{next: c.next.WithAttrs(attrs)}
}

func (c *countHandler) WithGroup(name string) slog.Handler {
	return &countHandler{next: c.next.WithGroup(name)}
}

// Counters 返回各级别日志数量
func Counters() map[string]int64 {
	d, i, w, e := cntDebug.Load(), cntInfo.Load(), cntWarn.Load(), cntError.Load()
	return map[string]int64{"debug": d, "info": i, "warn": w, "error": e, "total": d + i + w + e}
}
