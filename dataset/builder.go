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

package dataset

import (
	"context"
	"time"

	"github.com/rafay-ai/voiceguide-recommend/base/log"
	"github.com/rafay-ai/voiceguide-recommend/storage/data"
	"go.uber.org/zap"
)

// NeutralRating is the score below which a rating counts as a dislike
// instead of positive evidence.
const NeutralRating = 3

// Extractor converts delivered orders and explicit ratings into the
// canonical interaction stream.
type Extractor struct {
	database data.Database
	window   time.Duration
}

// NewExtractor creates an extractor reading interactions from the trailing
// time window.
func NewExtractor(database data.Database, window time.Duration) *Extractor {
	return &Extractor{
		database: database,
		window:   window,
	}
}

// Extract builds a dataset from storage. Only delivered orders count; a
// rating r >= NeutralRating contributes strength r, lower ratings contribute
// nothing positive. Storage failure yields an empty dataset rather than an
// error. The caller treats it as insufficient data.
func (e *Extractor) Extract(ctx context.Context) *Dataset {
	d := NewDataset()
	end := time.Now()
	begin := end.Add(-e.window)
	orders, err := e.database.GetDeliveredOrders(ctx, begin, end)
	if err != nil {
		log.Logger().Warn("failed to read delivered orders", zap.Error(err))
		return NewDataset()
	}
	for _, order := range orders {
		for _, line := range order.Items {
			if line.Quantity > 0 {
				d.AddInteraction(order.UserId, line.ItemId, float32(line.Quantity))
			}
		}
	}
	users, err := e.database.GetRatedUsers(ctx)
	if err != nil {
		log.Logger().Warn("failed to list rated users", zap.Error(err))
		return NewDataset()
	}
	for _, userId := range users {
		ratings, err := e.database.GetUserRatings(ctx, userId)
		if err != nil {
			log.Logger().Warn("failed to read ratings",
				zap.String("user_id", userId), zap.Error(err))
			return NewDataset()
		}
		for _, rating := range ratings {
			if rating.Score >= NeutralRating {
				d.AddInteraction(rating.UserId, rating.ItemId, float32(rating.Score))
			}
		}
	}
	log.Logger().Info("extracted interactions",
		zap.Int("users", d.CountUsers()),
		zap.Int("items", d.CountItems()),
		zap.Int("interactions", d.CountFeedback()))
	return d
}
