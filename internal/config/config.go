package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

type GatewayConfig struct {
	URL             string        `mapstructure:"url"`
	Plugin          string        `mapstructure:"plugin"`
	OpaqueIDPrefix  string        `mapstructure:"opaque_id_prefix"`
	KeepalivePeriod time.Duration `mapstructure:"keepalive_period"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ICEServers      []string      `mapstructure:"ice_servers"`
}

type CallConfig struct {
	DualChannel bool   `mapstructure:"dual_channel"`
	FieldSuffix string `mapstructure:"field_suffix"`
}

type HTTPConfig struct {
	CommandLimit  int           `mapstructure:"command_limit"`
	CommandWindow time.Duration `mapstructure:"command_window"`
}

type Config struct {
	Mode       string        `mapstructure:"mode"`
	Port       int           `mapstructure:"port"`
	StaticPath string        `mapstructure:"static_path"`
	ReadLimit  int64         `mapstructure:"read_limit"`
	PingPeriod time.Duration `mapstructure:"ping_period"`
	Secret     string        `mapstructure:"secret"`
	LogLevel   string        `mapstructure:"log_level"`

	Gateway GatewayConfig `mapstructure:"gateway"`
	Call    CallConfig    `mapstructure:"call"`
	HTTP    HTTPConfig    `mapstructure:"http"`

	v      *viper.Viper
	loaded bool
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("static_path", "./web")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("secret", "change-me")
	v.SetDefault("log_level", "info")

	v.SetDefault("gateway.url", "ws://localhost:8188/")
	v.SetDefault("gateway.plugin", "janus.plugin.videocall")
	v.SetDefault("gateway.opaque_id_prefix", "eye")
	v.SetDefault("gateway.keepalive_period", "25s")
	v.SetDefault("gateway.request_timeout", "10s")
	v.SetDefault("gateway.ice_servers", []string{"stun:stun.l.google.com:19302"})

	v.SetDefault("call.dual_channel", true)
	v.SetDefault("call.field_suffix", "-field")

	v.SetDefault("http.command_limit", 10)
	v.SetDefault("http.command_window", "10s")
}

// Load reads config/config.<CONFIG_ENV>.yaml over the defaults. EYE_* env
// vars override both, e.g. EYE_GATEWAY_URL.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvPrefix("EYE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	loaded := true
	if err := v.ReadInConfig(); err != nil {
		loaded = false
		fmt.Fprintf(os.Stderr, "⚠️ Config file not found (%s), using defaults\n", fileName)
	} else {
		fmt.Fprintf(os.Stderr, "✅ Loaded config: %s\n", fileName)
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	cfg.loaded = loaded
	fmt.Fprintf(os.Stderr, "🧩 Mode: %s | Port: %d | Gateway: %s | Dual: %t\n",
		cfg.Mode, cfg.Port, cfg.Gateway.URL, cfg.Call.DualChannel)
	return cfg, nil
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d", cfg.Port)
	}
	if cfg.Gateway.URL == "" {
		return nil, fmt.Errorf("gateway.url is required")
	}
	cfg.v = v
	return &cfg, nil
}

// Watch re-decodes the file on every change and passes the result to fn.
// Only settings read at call time (log level) take effect without a restart.
func (c *Config) Watch(fn func(*Config)) {
	if c.v == nil || !c.loaded {
		return
	}
	var mu sync.Mutex
	c.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		next, err := decode(c.v)
		if err != nil {
			fmt.Fprintf(os.Stderr, "⚠️ Config reload (%s) rejected: %v\n", e.Name, err)
			return
		}
		fn(next)
	})
	c.v.WatchConfig()
}
