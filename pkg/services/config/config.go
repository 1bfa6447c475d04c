package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "CASE_ATLAS"

type HistoryConfig struct {
	DBPath  string `mapstructure:"db_path"`
	Threads int    `mapstructure:"threads"`
}

type WorkbookConfig struct {
	MaxColumnWidth float64 `mapstructure:"max_column_width"`
	ColumnPadding  int     `mapstructure:"column_padding"`
}

type ParquetConfig struct {
	Dir string `mapstructure:"dir"`
}

type PublishConfig struct {
	Bucket     string `mapstructure:"bucket"`
	Prefix     string `mapstructure:"prefix"`
	AWSProfile string `mapstructure:"aws_profile"`
	Region     string `mapstructure:"region"`
}

func (p PublishConfig) Enabled() bool {
	return p.Bucket != ""
}

// Config holds the application settings shared by the CLI and the web server.
type Config struct {
	Output       string         `mapstructure:"output"`
	LogLevel     string         `mapstructure:"log_level"`
	ProfilesPath string         `mapstructure:"profiles_path"`
	History      HistoryConfig  `mapstructure:"history"`
	Workbook     WorkbookConfig `mapstructure:"workbook"`
	Parquet      ParquetConfig  `mapstructure:"parquet"`
	Publish      PublishConfig  `mapstructure:"publish"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("output", "case-report.xlsx")
	v.SetDefault("log_level", "info")
	v.SetDefault("profiles_path", "reports.ini")
	v.SetDefault("history.db_path", "")
	v.SetDefault("history.threads", 4)
	v.SetDefault("workbook.max_column_width", 60)
	v.SetDefault("workbook.column_padding", 3)
	v.SetDefault("parquet.dir", "")
	v.SetDefault("publish.bucket", "")
	v.SetDefault("publish.prefix", "")
	v.SetDefault("publish.aws_profile", "")
	v.SetDefault("publish.region", "us-east-1")
}

// LoadConfig reads the optional config file at path. Every key may be overridden by a
// CASE_ATLAS_ environment variable, e.g. CASE_ATLAS_HISTORY_DB_PATH.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
