// Copyright 2026 voiceguide Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/juju/errors"
	"github.com/rafay-ai/voiceguide-recommend/base/log"
	"github.com/rafay-ai/voiceguide-recommend/model"
	"github.com/rafay-ai/voiceguide-recommend/model/mf"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config is the configuration for the recommender.
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Recommend RecommendConfig `mapstructure:"recommend"`
	Params    ParamsConfig    `mapstructure:"params"`
}

type DatabaseConfig struct {
	DataStore string `mapstructure:"data_store"`
}

type RecommendConfig struct {
	TopK                   int           `mapstructure:"top_k" validate:"gt=0"`
	WindowDays             int           `mapstructure:"window_days" validate:"gt=0"`
	RebuildThreshold       int           `mapstructure:"rebuild_threshold" validate:"gt=0"`
	CheckPeriod            time.Duration `mapstructure:"check_period" validate:"gt=0"`
	DiscoverCFWeight       float32       `mapstructure:"discover_cf_weight" validate:"gte=0,lte=1"`
	ReorderFrequencyWeight float32       `mapstructure:"reorder_frequency_weight" validate:"gte=0,lte=1"`
}

type ParamsConfig struct {
	Model       string  `mapstructure:"model" validate:"oneof=svd als"`
	NFactors    int     `mapstructure:"n_factors" validate:"gt=0"`
	NEpochs     int     `mapstructure:"n_epochs" validate:"gt=0"`
	Lr          float32 `mapstructure:"lr" validate:"gt=0"`
	Reg         float32 `mapstructure:"reg" validate:"gte=0"`
	Alpha       float32 `mapstructure:"alpha" validate:"gte=0"`
	InitStdDev  float32 `mapstructure:"init_std_dev" validate:"gt=0"`
	RandomState int64   `mapstructure:"random_state"`
	FitJobs     int     `mapstructure:"fit_jobs" validate:"gt=0"`
}

// GetDefaultConfig returns a config with default values.
func GetDefaultConfig() *Config {
	return &Config{
		Recommend: RecommendConfig{
			TopK:                   10,
			WindowDays:             90,
			RebuildThreshold:       10,
			CheckPeriod:            time.Minute,
			DiscoverCFWeight:       0.7,
			ReorderFrequencyWeight: 0.7,
		},
		Params: ParamsConfig{
			Model:      "svd",
			NFactors:   8,
			NEpochs:    50,
			Lr:         0.01,
			Reg:        0.05,
			Alpha:      0.05,
			InitStdDev: 0.1,
			FitJobs:    1,
		},
	}
}

func setDefault() {
	defaultConfig := GetDefaultConfig()
	// [recommend]
	viper.SetDefault("recommend.top_k", defaultConfig.Recommend.TopK)
	viper.SetDefault("recommend.window_days", defaultConfig.Recommend.WindowDays)
	viper.SetDefault("recommend.rebuild_threshold", defaultConfig.Recommend.RebuildThreshold)
	viper.SetDefault("recommend.check_period", defaultConfig.Recommend.CheckPeriod)
	viper.SetDefault("recommend.discover_cf_weight", defaultConfig.Recommend.DiscoverCFWeight)
	viper.SetDefault("recommend.reorder_frequency_weight", defaultConfig.Recommend.ReorderFrequencyWeight)
	// [params]
	viper.SetDefault("params.model", defaultConfig.Params.Model)
	viper.SetDefault("params.n_factors", defaultConfig.Params.NFactors)
	viper.SetDefault("params.n_epochs", defaultConfig.Params.NEpochs)
	viper.SetDefault("params.lr", defaultConfig.Params.Lr)
	viper.SetDefault("params.reg", defaultConfig.Params.Reg)
	viper.SetDefault("params.alpha", defaultConfig.Params.Alpha)
	viper.SetDefault("params.init_std_dev", defaultConfig.Params.InitStdDev)
	viper.SetDefault("params.random_state", defaultConfig.Params.RandomState)
	viper.SetDefault("params.fit_jobs", defaultConfig.Params.FitJobs)
}

// LoadConfig loads and validates the configuration from a TOML file.
// Environment variables prefixed with VOICEGUIDE_ override file values.
func LoadConfig(path string) (*Config, error) {
	setDefault()
	viper.SetConfigFile(path)
	viper.SetEnvPrefix("voiceguide")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err != nil {
		return nil, errors.Trace(err)
	}
	var conf Config
	if err := viper.Unmarshal(&conf); err != nil {
		return nil, errors.Trace(err)
	}
	if err := conf.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &conf, nil
}

// Validate checks invariants the unmarshaller can't.
func (config *Config) Validate() error {
	return errors.Trace(validator.New().Struct(config))
}

// Dump returns the effective configuration as a generic map for diagnostics.
// Database credentials are redacted.
func (config *Config) Dump() map[string]any {
	redacted := *config
	redacted.Database.DataStore = log.RedactDBURL(config.Database.DataStore)
	var m map[string]any
	if err := mapstructure.Decode(redacted, &m); err != nil {
		log.Logger().Error("failed to dump config", zap.Error(err))
	}
	return m
}

// Window returns the trailing interaction window as a duration.
func (config *RecommendConfig) Window() time.Duration {
	return time.Duration(config.WindowDays) * 24 * time.Hour
}

// ToParams converts the [params] section into model hyper-parameters.
func (config *ParamsConfig) ToParams() model.Params {
	return model.Params{
		model.NFactors:    config.NFactors,
		model.NEpochs:     config.NEpochs,
		model.Lr:          config.Lr,
		model.Reg:         config.Reg,
		model.Alpha:       config.Alpha,
		model.InitStdDev:  config.InitStdDev,
		model.RandomState: config.RandomState,
	}
}

// NewModel creates the configured factorization model.
func (config *ParamsConfig) NewModel() mf.MatrixFactorization {
	if config.Model == "als" {
		return mf.NewALS(config.ToParams())
	}
	return mf.NewSVD(config.ToParams())
}
