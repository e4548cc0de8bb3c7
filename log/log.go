package log

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var logger = logrus.New()

func init() {
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetLevel(logrus.InfoLevel)
	logger.SetOutput(os.Stdout)
}

// Init 配置日志输出：stdout + 滚动文件。path 为空则仅输出到 stdout。
func Init(path string, verbose bool) {
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	if path == "" {
		return
	}
	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    50, // MB
		MaxBackups: 5,
		MaxAge:     14, // days
		Compress:   true,
	}
	logger.SetOutput(io.MultiWriter(os.Stdout, rotator))
}

func Info(args ...any)                 { logger.Info(args...) }
func Infof(format string, args ...any) { logger.Infof(format, args...) }

func Warn(args ...any)                 { logger.Warn(args...) }
func Warnf(format string, args ...any) { logger.Warnf(format, args...) }

func Error(args ...any)                 { logger.Error(args...) }
func Errorf(format string, args ...any) { logger.Errorf(format, args...) }

func Debug(args ...any)                 { logger.Debug(args...) }
func Debugf(format string, args ...any) { logger.Debugf(format, args...) }
