package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/mindwave/internal/physics"
)

const (
	DefaultGame       = "pendulum"
	DefaultFrames     = 1200
	DefaultDt         = 1.0 / 60
	DefaultFPS        = 60
	DefaultReplyDelay = time.Second
	DefaultMoodLimit  = 7
)

type Config struct {
	Game      string                 `yaml:"game"`
	Seed      int64                  `yaml:"seed"`
	UserID    string                 `yaml:"user_id"`
	Display   DisplayConfig          `yaml:"display"`
	Pendulum  physics.PendulumConfig `yaml:"pendulum"`
	Particles ParticlesConfig        `yaml:"particles"`
	Waves     physics.WaveConfig     `yaml:"waves"`
	Run       RunConfig              `yaml:"run"`
	Store     StoreConfig            `yaml:"store"`
	Chat      ChatConfig             `yaml:"chat"`
	Training  TrainingConfig         `yaml:"training"`
	Log       LogConfig              `yaml:"log"`
	Server    ServerConfig           `yaml:"server"`
}

type DisplayConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	FPS    int     `yaml:"fps"`
	Theme  string  `yaml:"theme"`
}

type ParticlesConfig struct {
	Count int `yaml:"count"`
}

type RunConfig struct {
	Frames int     `yaml:"frames"`
	Dt     float64 `yaml:"dt"`
	Dir    string  `yaml:"dir"`
}

type StoreConfig struct {
	// Driver is "memory" or "postgres".
	Driver        string        `yaml:"driver"`
	DatabaseURL   string        `yaml:"database_url"`
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	SessionTTL    time.Duration `yaml:"session_ttl"`
	MoodLimit     int           `yaml:"mood_limit"`
}

type ChatConfig struct {
	ReplyDelay time.Duration `yaml:"reply_delay"`
}

type TrainingConfig struct {
	BaseModel      string        `yaml:"base_model"`
	Epochs         int           `yaml:"epochs"`
	LearningRate   float64       `yaml:"learning_rate"`
	BatchSize      int           `yaml:"batch_size"`
	UploadInterval time.Duration `yaml:"upload_interval"`
	TrainInterval  time.Duration `yaml:"train_interval"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

func DefaultConfig() *Config {
	return &Config{
		Game: DefaultGame,
		Seed: 42,
		Display: DisplayConfig{
			Width:  800,
			Height: 500,
			FPS:    DefaultFPS,
			Theme:  "teal",
		},
		Pendulum:  physics.DefaultPendulumConfig(),
		Particles: ParticlesConfig{Count: physics.DefaultParticleCount},
		Waves:     physics.DefaultWaveConfig(),
		Run: RunConfig{
			Frames: DefaultFrames,
			Dt:     DefaultDt,
			Dir:    "runs",
		},
		Store: StoreConfig{
			Driver:     "memory",
			SessionTTL: 24 * time.Hour,
			MoodLimit:  DefaultMoodLimit,
		},
		Chat: ChatConfig{ReplyDelay: DefaultReplyDelay},
		Training: TrainingConfig{
			BaseModel:      "GPT-4o",
			Epochs:         3,
			LearningRate:   0.0001,
			BatchSize:      16,
			UploadInterval: 200 * time.Millisecond,
			TrainInterval:  300 * time.Millisecond,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// GameParams returns the live-control values configured for game.
func (c *Config) GameParams(game string) map[string]float64 {
	switch game {
	case physics.PendulumName:
		return map[string]float64{"length": c.Pendulum.Length}
	case physics.ParticlesName:
		return map[string]float64{"count": float64(c.Particles.Count)}
	case physics.WavesName:
		return map[string]float64{"frequency": c.Waves.Frequency, "amplitude": c.Waves.Amplitude}
	}
	return nil
}

// FrameInterval is the scheduler interval for the configured FPS.
func (c *Config) FrameInterval() time.Duration {
	if c.Display.FPS <= 0 {
		return time.Second / DefaultFPS
	}
	return time.Second / time.Duration(c.Display.FPS)
}
