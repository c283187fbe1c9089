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

// Package engine ties the extractor, the factorization model and the blender
// into a serving loop: one shared read-only model, rebuilt in the background
// and swapped in atomically.
package engine

import (
	"context"
	"sync/atomic"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/juju/errors"
	"github.com/rafay-ai/voiceguide-recommend/base/log"
	"github.com/rafay-ai/voiceguide-recommend/config"
	"github.com/rafay-ai/voiceguide-recommend/dataset"
	"github.com/rafay-ai/voiceguide-recommend/logics"
	"github.com/rafay-ai/voiceguide-recommend/model/mf"
	"github.com/rafay-ai/voiceguide-recommend/storage/data"
	"go.uber.org/zap"
)

// ErrStorageUnavailable is returned by request paths when the database
// cannot be reached. Requests fail closed rather than serve partial lists.
var ErrStorageUnavailable = errors.NotYetAvailablef("storage")

type RebuildStatus string

const (
	RebuildSuccess          RebuildStatus = "success"
	RebuildInsufficientData RebuildStatus = "insufficient_data"
	RebuildFailure          RebuildStatus = "failure"
)

// RebuildResult reports the outcome of the latest rebuild attempt.
type RebuildResult struct {
	Status     RebuildStatus
	Err        error
	StartedAt  time.Time
	FinishedAt time.Time
}

// modelHolder is the immutable unit of the build-then-swap lifecycle. It
// pairs the fitted model with the stats of the dataset it was built from.
type modelHolder struct {
	model        mf.MatrixFactorization
	builtAt      time.Time
	users        int
	items        int
	interactions int
	// delivered orders at build time, drives the rebuild threshold
	orderCount int64
}

// storageError logs the underlying failure and maps it to the fail-closed
// sentinel callers test against with errors.Is.
func storageError(err error) error {
	log.Logger().Warn("storage unavailable", zap.Error(err))
	return errors.Annotate(ErrStorageUnavailable, err.Error())
}

type Engine struct {
	cfg       *config.Config
	database  data.Database
	extractor *dataset.Extractor
	blender   *logics.Blender

	holder      atomic.Pointer[modelHolder]
	building    atomic.Bool
	lastRebuild atomic.Pointer[RebuildResult]
}

func NewEngine(cfg *config.Config, database data.Database) *Engine {
	return &Engine{
		cfg:       cfg,
		database:  database,
		extractor: dataset.NewExtractor(database, cfg.Recommend.Window()),
		blender:   logics.NewBlender(&cfg.Recommend),
	}
}

// Model returns the serving model, or nil when no build has succeeded yet.
func (e *Engine) Model() mf.MatrixFactorization {
	if holder := e.holder.Load(); holder != nil {
		return holder.model
	}
	return nil
}

// LastRebuild returns the result of the latest rebuild attempt, or nil when
// no rebuild has run.
func (e *Engine) LastRebuild() *RebuildResult {
	return e.lastRebuild.Load()
}

// Rebuild triggers a background rebuild and returns immediately. Returns
// false when a rebuild is already in flight and this trigger was coalesced.
func (e *Engine) Rebuild(ctx context.Context) bool {
	if !e.building.CompareAndSwap(false, true) {
		return false
	}
	go func() {
		defer e.building.Store(false)
		e.rebuild(ctx)
	}()
	return true
}

// RebuildSync runs one rebuild inline and returns its result. When another
// rebuild is already in flight it waits for nothing and reports the latest
// known result instead.
func (e *Engine) RebuildSync(ctx context.Context) *RebuildResult {
	if e.building.CompareAndSwap(false, true) {
		defer e.building.Store(false)
		e.rebuild(ctx)
	}
	return e.LastRebuild()
}

// rebuild builds a fresh dataset and model, swapping it in only on success.
// A failed build leaves the serving model untouched.
func (e *Engine) rebuild(ctx context.Context) {
	result := RebuildResult{StartedAt: time.Now()}
	defer func() {
		result.FinishedAt = time.Now()
		e.lastRebuild.Store(&result)
	}()
	orderCount, err := e.database.CountDeliveredOrders(ctx)
	if err != nil {
		log.Logger().Warn("failed to count delivered orders", zap.Error(err))
	}
	d := e.extractor.Extract(ctx)
	if err := d.Check(); err != nil {
		result.Status = RebuildInsufficientData
		result.Err = err
		log.Logger().Info("rebuild skipped", zap.Error(err))
		return
	}
	m := e.cfg.Params.NewModel()
	fitConfig := mf.NewFitConfig().SetJobs(e.cfg.Params.FitJobs)
	if err := m.Fit(ctx, d, dataset.NewDataset(), fitConfig); err != nil {
		if errors.Is(err, dataset.ErrInsufficientData) {
			result.Status = RebuildInsufficientData
		} else {
			result.Status = RebuildFailure
		}
		result.Err = err
		log.Logger().Error("rebuild failed", zap.Error(err))
		return
	}
	e.holder.Store(&modelHolder{
		model:        m,
		builtAt:      time.Now(),
		users:        d.CountUsers(),
		items:        d.CountItems(),
		interactions: d.CountFeedback(),
		orderCount:   orderCount,
	})
	result.Status = RebuildSuccess
	log.Logger().Info("rebuild complete",
		zap.Int("users", d.CountUsers()),
		zap.Int("items", d.CountItems()),
		zap.Int("interactions", d.CountFeedback()),
		zap.Int64("order_count", orderCount))
}

// Serve runs the rebuild monitor until the context is cancelled: an initial
// build, then a rebuild whenever enough delivered orders arrived since the
// last successful build.
func (e *Engine) Serve(ctx context.Context) error {
	e.Rebuild(ctx)
	ticker := time.NewTicker(e.cfg.Recommend.CheckPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			count, err := e.database.CountDeliveredOrders(ctx)
			if err != nil {
				log.Logger().Warn("failed to count delivered orders", zap.Error(err))
				continue
			}
			holder := e.holder.Load()
			if holder == nil || count-holder.orderCount >= int64(e.cfg.Recommend.RebuildThreshold) {
				e.Rebuild(ctx)
			}
		}
	}
}

// orderHistory folds delivered orders into per-item counts and the most
// recent order time.
func orderHistory(orders []data.Order) map[string]logics.OrderStats {
	history := make(map[string]logics.OrderStats)
	for _, order := range orders {
		for _, line := range order.Items {
			if line.Quantity <= 0 {
				continue
			}
			stats := history[line.ItemId]
			stats.Count += line.Quantity
			if order.Timestamp.After(stats.LastOrdered) {
				stats.LastOrdered = order.Timestamp
			}
			history[line.ItemId] = stats
		}
	}
	return history
}

// GetRecommendations serves one request. Read-only against the model; the
// dislike set is recomputed from ratings on every call. Storage failure
// fails the whole request with ErrStorageUnavailable, never partial data.
// The profile argument overrides the stored preference profile when non-nil:
// the upstream classifier may claim preferences, but filters still come
// from this engine.
func (e *Engine) GetRecommendations(ctx context.Context, userId string, profile *data.User, exclude []string, n int) (*logics.Result, error) {
	if n <= 0 {
		n = e.cfg.Recommend.TopK
	}
	user := data.User{UserId: userId}
	if profile != nil {
		user = *profile
		user.UserId = userId
	} else {
		stored, err := e.database.GetUser(ctx, userId)
		if err == nil {
			user = stored
		} else if !errors.Is(err, data.ErrUserNotExist) {
			return nil, storageError(err)
		}
	}
	orders, err := e.database.GetUserDeliveredOrders(ctx, userId, time.Now().Add(-e.cfg.Recommend.Window()))
	if err != nil {
		return nil, storageError(err)
	}
	history := orderHistory(orders)
	ratings, err := e.database.GetUserRatings(ctx, userId)
	if err != nil {
		return nil, storageError(err)
	}
	dislikes := mapset.NewSet[string]()
	for _, rating := range ratings {
		if rating.Score < dataset.NeutralRating {
			dislikes.Add(rating.ItemId)
		}
	}
	catalog, err := e.database.GetAvailableItems(ctx)
	if err != nil {
		return nil, storageError(err)
	}
	if len(exclude) > 0 {
		excluded := mapset.NewSet[string](exclude...)
		kept := catalog[:0]
		for _, item := range catalog {
			if !excluded.Contains(item.ItemId) {
				kept = append(kept, item)
			}
		}
		catalog = kept
	}
	return e.blender.Blend(&logics.Request{
		User:     user,
		Catalog:  catalog,
		History:  history,
		Dislikes: dislikes,
		Model:    e.Model(),
		K:        n,
		Now:      time.Now(),
	}), nil
}

// Evaluate fits a fresh model on a leave-one-out train split and measures
// the serving blender offline. Ground truth per user is the set of items
// rated at or above logics.PositiveRating. The serving model is untouched.
func (e *Engine) Evaluate(ctx context.Context, k int) (*logics.Report, error) {
	if k <= 0 {
		k = e.cfg.Recommend.TopK
	}
	d := e.extractor.Extract(ctx)
	if err := d.Check(); err != nil {
		return nil, errors.Trace(err)
	}
	train, test := d.SplitUserLeaveOneOut(e.cfg.Params.RandomState)
	m := e.cfg.Params.NewModel()
	fitConfig := mf.NewFitConfig().SetJobs(e.cfg.Params.FitJobs)
	if err := m.Fit(ctx, train, test, fitConfig); err != nil {
		return nil, errors.Trace(err)
	}
	catalog, err := e.database.GetAvailableItems(ctx)
	if err != nil {
		return nil, storageError(err)
	}
	users, err := e.database.GetRatedUsers(ctx)
	if err != nil {
		return nil, storageError(err)
	}
	now := time.Now()
	lists := make(map[string][]logics.RecommendedItem)
	truth := make(map[string]mapset.Set[string])
	for _, userId := range users {
		ratings, err := e.database.GetUserRatings(ctx, userId)
		if err != nil {
			return nil, storageError(err)
		}
		targets := mapset.NewSet[string]()
		dislikes := mapset.NewSet[string]()
		for _, rating := range ratings {
			if rating.Score >= logics.PositiveRating {
				targets.Add(rating.ItemId)
			} else if rating.Score < dataset.NeutralRating {
				dislikes.Add(rating.ItemId)
			}
		}
		if targets.Cardinality() == 0 {
			continue
		}
		orders, err := e.database.GetUserDeliveredOrders(ctx, userId, now.Add(-e.cfg.Recommend.Window()))
		if err != nil {
			return nil, storageError(err)
		}
		user, err := e.database.GetUser(ctx, userId)
		if err != nil && !errors.Is(err, data.ErrUserNotExist) {
			return nil, storageError(err)
		}
		user.UserId = userId
		result := e.blender.Blend(&logics.Request{
			User:     user,
			Catalog:  catalog,
			History:  orderHistory(orders),
			Dislikes: dislikes,
			Model:    m,
			K:        k,
			Now:      now,
		})
		list := append(result.ReorderItems, result.NewItems...)
		if len(list) > k {
			list = list[:k]
		}
		lists[userId] = list
		truth[userId] = targets
	}
	return logics.EvaluateLists(k, len(catalog), lists, truth), nil
}
