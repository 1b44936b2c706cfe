package service

import (
	"github.com/priyankverma/notescribe/internal/storage"
	"github.com/priyankverma/notescribe/internal/transcribe"
	"github.com/priyankverma/notescribe/pkg/logger"
)

type Config struct {
	DBPath     string
	TempDir    string
	OutputDir  string
	SampleRate int
	Transcribe transcribe.Config
	Predictor  transcribe.Predictor
	Storage    *storage.DBClient
	Logger     *logger.Logger
}

type Option func(*Config)

func WithDBPath(path string) Option {
	return func(c *Config) {
		c.DBPath = path
	}
}

func WithTempDir(dir string) Option {
	return func(c *Config) {
		c.TempDir = dir
	}
}

func WithOutputDir(dir string) Option {
	return func(c *Config) {
		c.OutputDir = dir
	}
}

func WithSampleRate(rate int) Option {
	return func(c *Config) {
		c.SampleRate = rate
	}
}

func WithTranscribeConfig(cfg transcribe.Config) Option {
	return func(c *Config) {
		c.Transcribe = cfg
	}
}

func WithPredictor(p transcribe.Predictor) Option {
	return func(c *Config) {
		c.Predictor = p
	}
}

func WithStorage(s *storage.DBClient) Option {
	return func(c *Config) {
		c.Storage = s
	}
}

func WithLogger(log *logger.Logger) Option {
	return func(c *Config) {
		c.Logger = log
	}
}

func defaultConfig() *Config {
	return &Config{
		DBPath:     storage.DefaultDBFile,
		TempDir:    "/tmp",
		OutputDir:  ".",
		SampleRate: transcribe.SampleRate,
		Transcribe: transcribe.DefaultConfig(),
	}
}
