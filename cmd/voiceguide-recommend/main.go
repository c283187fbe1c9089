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

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/rafay-ai/voiceguide-recommend/base/log"
	"github.com/rafay-ai/voiceguide-recommend/cmd/version"
	"github.com/rafay-ai/voiceguide-recommend/config"
	"github.com/rafay-ai/voiceguide-recommend/engine"
	"github.com/rafay-ai/voiceguide-recommend/storage/data"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCommand = &cobra.Command{
	Use:   "voiceguide-recommend",
	Short: "The recommendation engine of the voiceguide food ordering assistant.",
	Run: func(cmd *cobra.Command, args []string) {
		if showVersion, _ := cmd.PersistentFlags().GetBool("version"); showVersion {
			fmt.Println(version.BuildInfo())
			return
		}
		e, _ := setup(cmd)
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := e.Serve(ctx); err != nil && ctx.Err() == nil {
			log.Logger().Fatal("failed to serve", zap.Error(err))
		}
		log.Logger().Info("stop voiceguide-recommend successfully")
	},
}

var rebuildCommand = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the recommendation model once and exit.",
	Run: func(cmd *cobra.Command, args []string) {
		e, _ := setup(cmd)
		result := e.RebuildSync(context.Background())
		if result.Err != nil {
			log.Logger().Error("rebuild finished with error", zap.Error(result.Err))
		}
		fmt.Println("Status:", result.Status)
		fmt.Println("Elapsed:", result.FinishedAt.Sub(result.StartedAt))
		if result.Status != engine.RebuildSuccess {
			os.Exit(1)
		}
	},
}

func init() {
	log.AddFlags(rootCommand.PersistentFlags())
	rootCommand.PersistentFlags().Bool("debug", false, "use debug log mode")
	rootCommand.PersistentFlags().BoolP("version", "v", false, "voiceguide-recommend version")
	rootCommand.PersistentFlags().StringP("config", "c", "", "configuration file path")
	rootCommand.AddCommand(rebuildCommand)
	rootCommand.AddCommand(evaluateCommand)
	rootCommand.AddCommand(importCommand)
}

// setup loads the configuration, connects the logger and opens the database.
func setup(cmd *cobra.Command) (*engine.Engine, data.Database) {
	debug, _ := cmd.Flags().GetBool("debug")
	log.SetLogger(cmd.Flags(), debug)
	configPath, _ := cmd.Flags().GetString("config")
	var conf *config.Config
	var err error
	if configPath == "" {
		conf = config.GetDefaultConfig()
	} else {
		log.Logger().Info("load config", zap.String("config", configPath))
		conf, err = config.LoadConfig(configPath)
		if err != nil {
			log.Logger().Fatal("failed to load config", zap.Error(err))
		}
	}
	log.Logger().Debug("effective config", zap.Any("config", conf.Dump()))
	log.Logger().Info("connect data store",
		zap.String("database", log.RedactDBURL(conf.Database.DataStore)))
	database, err := data.Open(conf.Database.DataStore)
	if err != nil {
		log.Logger().Fatal("failed to connect database", zap.Error(err))
	}
	if err = database.Init(); err != nil {
		log.Logger().Fatal("failed to initialize database", zap.Error(err))
	}
	return engine.NewEngine(conf, database), database
}

func main() {
	if err := rootCommand.Execute(); err != nil {
		log.Logger().Fatal("failed to execute", zap.Error(err))
	}
}
