package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// MemoryConfig holds in-memory/JSON storage backend settings
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// GormConfig holds database-backed storage settings
type GormConfig struct {
	BatchInterval time.Duration `json:"batchInterval" mapstructure:"batchInterval"`
}

// StorageConfig selects and configures the storage backend
type StorageConfig struct {
	Type   string       `json:"type" mapstructure:"type"`
	Memory MemoryConfig `json:"memory" mapstructure:"memory"`
	Gorm   GormConfig   `json:"gorm" mapstructure:"gorm"`
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	// Set default values
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("defaultTag", "Regatta")
	viper.SetDefault("logsDir", "./windwardlogs")

	viper.SetDefault("sim.tickSeconds", 1.0)
	viper.SetDefault("sim.tickInterval", "1s")
	viper.SetDefault("sim.seed", 0)

	viper.SetDefault("voyage.name", "Voyage")
	viper.SetDefault("voyage.serverName", "windwardd")

	viper.SetDefault("worker.flushInterval", "1s")

	viper.SetDefault("chart.type", "opensea")
	viper.SetDefault("chart.landFile", "")

	viper.SetDefault("weather.type", "uniform")
	viper.SetDefault("weather.gridFile", "")
	viper.SetDefault("weather.windAngle", 270.0)
	viper.SetDefault("weather.windMps", 8.0)

	viper.SetDefault("ocean.type", "nodata")
	viper.SetDefault("ocean.gridFile", "")

	viper.SetDefault("api.serverUrl", "http://localhost:5000")
	viper.SetDefault("api.apiKey", "")
	viper.SetDefault("api.uploadExports", false)

	viper.SetDefault("stream.enabled", false)
	viper.SetDefault("stream.listenAddr", ":5231")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "windward")
	viper.SetDefault("db.sqlitePath", "./windward.db")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "windward-metrics")
	viper.SetDefault("influx.backupPath", "./windwardlogs/influx_backup.gz")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.memory.outputDir", "./voyages")
	viper.SetDefault("storage.memory.compressOutput", true)
	viper.SetDefault("storage.gorm.batchInterval", "10s")

	viper.SetConfigName("windward.cfg.json")
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// GetStorageConfig returns the storage backend configuration.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		Memory: MemoryConfig{
			OutputDir:      viper.GetString("storage.memory.outputDir"),
			CompressOutput: viper.GetBool("storage.memory.compressOutput"),
		},
		Gorm: GormConfig{
			BatchInterval: viper.GetDuration("storage.gorm.batchInterval"),
		},
	}
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetFloat64 returns a float64 config value.
func GetFloat64(key string) float64 {
	return viper.GetFloat64(key)
}

// GetDuration returns a duration config value.
func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}
