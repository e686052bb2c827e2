package logger

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config is parsed from LOG_* variables by the config package.
type Config struct {
	Level      string `env:"LEVEL" envDefault:"info"`
	Format     string `env:"FORMAT" envDefault:"text"`
	Output     string `env:"OUTPUT" envDefault:"stdout"`
	File       string `env:"FILE" envDefault:"logs/app.log"`
	MaxSize    int    `env:"MAX_SIZE" envDefault:"100"`
	MaxBackups int    `env:"MAX_BACKUPS" envDefault:"5"`
	MaxAge     int    `env:"MAX_AGE" envDefault:"14"`
	Compress   bool   `env:"COMPRESS" envDefault:"true"`
}

func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "text",
		Output:     "stdout",
		File:       "logs/app.log",
		MaxSize:    100,
		MaxBackups: 5,
		MaxAge:     14,
		Compress:   true,
	}
}

var (
	mu      sync.Mutex
	cfg     = DefaultConfig()
	loggers = make(map[string]*logrus.Logger)
	out     io.Writer
)

// Init replaces the configuration. Loggers created before Init are rebuilt on
// their next Get.
func Init(c Config) error {
	mu.Lock()
	defer mu.Unlock()

	writer, err := buildWriter(c)
	if err != nil {
		return err
	}
	cfg = c
	out = writer
	loggers = make(map[string]*logrus.Logger)
	return nil
}

// Get returns the named logger. Every entry carries a "module" field.
func Get(name string) *logrus.Entry {
	mu.Lock()
	defer mu.Unlock()

	l, ok := loggers[name]
	if !ok {
		l = newLogger()
		loggers[name] = l
	}
	return l.WithField("module", name)
}

func newLogger() *logrus.Logger {
	l := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	if cfg.Format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05.000",
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime: "timestamp",
				logrus.FieldKeyMsg:  "message",
			},
		})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05.000",
		})
	}

	if out != nil {
		l.SetOutput(out)
	} else {
		l.SetOutput(os.Stdout)
	}
	return l
}

func buildWriter(c Config) (io.Writer, error) {
	switch c.Output {
	case "file", "both":
		if dir := filepath.Dir(c.File); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
		file := &lumberjack.Logger{
			Filename:   c.File,
			MaxSize:    c.MaxSize,
			MaxBackups: c.MaxBackups,
			MaxAge:     c.MaxAge,
			Compress:   c.Compress,
		}
		if c.Output == "both" {
			return io.MultiWriter(os.Stdout, file), nil
		}
		return file, nil
	default:
		return os.Stdout, nil
	}
}
