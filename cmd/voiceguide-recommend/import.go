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
	"encoding/json"
	"os"

	"github.com/juju/errors"
	"github.com/rafay-ai/voiceguide-recommend/base/log"
	"github.com/rafay-ai/voiceguide-recommend/storage/data"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const importBatchSize = 100

var importCommand = &cobra.Command{
	Use:   "import",
	Short: "Import users, menu items, orders and ratings from JSON files.",
	Run: func(cmd *cobra.Command, args []string) {
		_, database := setup(cmd)
		ctx := context.Background()
		if path, _ := cmd.Flags().GetString("users"); path != "" {
			if err := importUsers(ctx, database, path); err != nil {
				log.Logger().Fatal("failed to import users", zap.Error(err))
			}
		}
		if path, _ := cmd.Flags().GetString("items"); path != "" {
			if err := importItems(ctx, database, path); err != nil {
				log.Logger().Fatal("failed to import items", zap.Error(err))
			}
		}
		if path, _ := cmd.Flags().GetString("orders"); path != "" {
			if err := importOrders(ctx, database, path); err != nil {
				log.Logger().Fatal("failed to import orders", zap.Error(err))
			}
		}
		if path, _ := cmd.Flags().GetString("ratings"); path != "" {
			if err := importRatings(ctx, database, path); err != nil {
				log.Logger().Fatal("failed to import ratings", zap.Error(err))
			}
		}
	},
}

func init() {
	importCommand.Flags().String("users", "", "path of a JSON array of users")
	importCommand.Flags().String("items", "", "path of a JSON array of menu items")
	importCommand.Flags().String("orders", "", "path of a JSON array of orders")
	importCommand.Flags().String("ratings", "", "path of a JSON array of ratings")
}

func readJSON[T any](path string) ([]T, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	var records []T
	if err = json.Unmarshal(buf, &records); err != nil {
		return nil, errors.Trace(err)
	}
	return records, nil
}

func importUsers(ctx context.Context, database data.Database, path string) error {
	users, err := readJSON[data.User](path)
	if err != nil {
		return errors.Trace(err)
	}
	bar := progressbar.Default(int64(len(users)), "Importing users")
	for begin := 0; begin < len(users); begin += importBatchSize {
		end := min(begin+importBatchSize, len(users))
		if err = database.BatchInsertUsers(ctx, users[begin:end]); err != nil {
			return errors.Trace(err)
		}
		_ = bar.Add(end - begin)
	}
	return errors.Trace(bar.Finish())
}

func importItems(ctx context.Context, database data.Database, path string) error {
	items, err := readJSON[data.Item](path)
	if err != nil {
		return errors.Trace(err)
	}
	bar := progressbar.Default(int64(len(items)), "Importing items")
	for begin := 0; begin < len(items); begin += importBatchSize {
		end := min(begin+importBatchSize, len(items))
		if err = database.BatchInsertItems(ctx, items[begin:end]); err != nil {
			return errors.Trace(err)
		}
		_ = bar.Add(end - begin)
	}
	return errors.Trace(bar.Finish())
}

func importOrders(ctx context.Context, database data.Database, path string) error {
	orders, err := readJSON[data.Order](path)
	if err != nil {
		return errors.Trace(err)
	}
	bar := progressbar.Default(int64(len(orders)), "Importing orders")
	for begin := 0; begin < len(orders); begin += importBatchSize {
		end := min(begin+importBatchSize, len(orders))
		if err = database.BatchInsertOrders(ctx, orders[begin:end]); err != nil {
			return errors.Trace(err)
		}
		_ = bar.Add(end - begin)
	}
	return errors.Trace(bar.Finish())
}

// Ratings go through PutRating one by one so the per-item aggregates are
// refreshed as they would be in serving.
func importRatings(ctx context.Context, database data.Database, path string) error {
	ratings, err := readJSON[data.Rating](path)
	if err != nil {
		return errors.Trace(err)
	}
	bar := progressbar.Default(int64(len(ratings)), "Importing ratings")
	for _, rating := range ratings {
		if err = database.PutRating(ctx, rating); err != nil {
			return errors.Trace(err)
		}
		_ = bar.Add(1)
	}
	return errors.Trace(bar.Finish())
}
