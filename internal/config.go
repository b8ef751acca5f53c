package internal

import (
	"log"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/tagship/tagship/internal/util"
)

var Config *Configuration

// Configuration is the static pipeline definition: which repository is
// released, with which pinned toolchain, for which target triple. It is
// written out with defaults on first start and read back on every start.
type Configuration struct {
	Repository       string `yaml:"repository"`
	ToolchainVersion string `yaml:"toolchain_version"`
	Target           string `yaml:"target"`
	ArtifactName     string `yaml:"artifact_name"`
	PublishEnabled   bool   `yaml:"publish_enabled"`
	ScheduleCron     string `yaml:"schedule_cron"`
	QueueSize        int64  `yaml:"queue_size"`
	HistoryDays      int64  `yaml:"history_days"`
}

func DefaultConfiguration() *Configuration {
	return &Configuration{
		Repository:       "https://github.com/example/plugin.git",
		ToolchainVersion: "1.83.0",
		Target:           "wasm32-wasip1",
		ArtifactName:     "plugin.wasm",
		PublishEnabled:   true,
		QueueSize:        3,
		HistoryDays:      30,
	}
}

func InitializeConfiguration() {
	Config = DefaultConfiguration()

	configFileExists, _ := util.PathExists(ConfigPath)
	if !configFileExists {
		b, err := yaml.Marshal(Config)
		if err != nil {
			log.Fatal(err)
		}
		if err := os.WriteFile(ConfigPath, b, 0644); err != nil {
			log.Fatal(err)
		}
	} else {
		configBytes, err := os.ReadFile(ConfigPath)
		if err != nil {
			log.Fatal(err)
		}
		if err := yaml.Unmarshal(configBytes, Config); err != nil {
			log.Fatal(err)
		}
	}
}

func UpdateConfiguration(config *Configuration) error {
	b, err := yaml.Marshal(config)
	if err != nil {
		return err
	}

	if err := os.WriteFile(ConfigPath, b, 0644); err != nil {
		return err
	}

	Config = config

	return nil
}
