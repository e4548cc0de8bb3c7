package system

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 全量配置。config.yaml + .env（环境变量优先）。
type Config struct {
	Server struct {
		Port    int    `mapstructure:"port"`
		LogFile string `mapstructure:"log_file"`
	} `mapstructure:"server"`

	BitJita struct {
		BaseURL    string `mapstructure:"base_url"`
		UserAgent  string `mapstructure:"user_agent"`
		RatePerMin int    `mapstructure:"rate_per_min"`
		Workers    int    `mapstructure:"workers"`
		ThrottleMs int    `mapstructure:"throttle_ms"`
	} `mapstructure:"bitjita"`

	Map struct {
		Output             string `mapstructure:"output"`
		ColorStore         string `mapstructure:"color_store"`
		RefreshMinutes     int    `mapstructure:"refresh_minutes"`
		LimitEmpires       int    `mapstructure:"limit_empires"`
		MaxTowersPerEmpire int    `mapstructure:"max_towers_per_empire"`
		ForcePairwise      bool   `mapstructure:"force_pairwise"`
		Verbose            bool   `mapstructure:"verbose"`
	} `mapstructure:"map"`
}

var cfg = defaultConfig()

func defaultConfig() *Config {
	c := &Config{}
	c.Server.Port = 8080
	c.BitJita.BaseURL = "https://bitjita.com"
	c.BitJita.UserAgent = "EmpireMap/1.0"
	c.BitJita.RatePerMin = 100
	c.BitJita.Workers = 4
	c.BitJita.ThrottleMs = 120
	c.Map.Output = "resource/generated.geojson"
	c.Map.ColorStore = "resource/color_map.yaml"
	c.Map.RefreshMinutes = 15
	return c
}

// Init 读取 .env 与 config.yaml。配置文件缺失不报错，走默认值。
func Init() error {
	_ = godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.SetEnvPrefix("EMPIREMAP")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("read config: %w", err)
		}
	}

	c := defaultConfig()
	if err := viper.Unmarshal(c); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	cfg = c
	return nil
}

// GetConfig 当前生效配置
func GetConfig() *Config { return cfg }
