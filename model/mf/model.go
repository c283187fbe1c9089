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

package mf

import (
	"context"

	"github.com/bits-and-blooms/bitset"
	"github.com/rafay-ai/voiceguide-recommend/base/floats"
	"github.com/rafay-ai/voiceguide-recommend/base/log"
	"github.com/rafay-ai/voiceguide-recommend/dataset"
	"github.com/rafay-ai/voiceguide-recommend/model"
	"go.uber.org/zap"
)

type FitConfig struct {
	Jobs       int
	Verbose    int
	Candidates int
	TopK       int
}

func NewFitConfig() *FitConfig {
	return &FitConfig{
		Jobs:       1,
		Verbose:    10,
		Candidates: 100,
		TopK:       10,
	}
}

func (config *FitConfig) SetVerbose(verbose int) *FitConfig {
	config.Verbose = verbose
	return config
}

func (config *FitConfig) SetJobs(jobs int) *FitConfig {
	config.Jobs = jobs
	return config
}

func (config *FitConfig) LoadDefaultIfNil() *FitConfig {
	if config == nil {
		return NewFitConfig()
	}
	return config
}

// MatrixFactorization learns latent factors from a strength matrix and
// predicts the affinity of a user to an item.
type MatrixFactorization interface {
	model.Model
	// Fit a model with a train set and parameters. Ranking quality on the
	// validation set is logged every config.Verbose epochs; an empty
	// validation set skips the cross validation.
	Fit(ctx context.Context, trainSet, valSet *dataset.Dataset, config *FitConfig) error
	// Predict the affinity of a user (userId) to an item (itemId).
	Predict(userId, itemId string) float32
	// internalPredict predicts affinity given a user index and an item index.
	internalPredict(userIndex, itemIndex int32) float32
	// GetUserIndex returns the user index.
	GetUserIndex() *dataset.FreqDict
	// GetItemIndex returns the item index.
	GetItemIndex() *dataset.FreqDict
	// IsUserPredictable returns false if the user has no feedback and its embedding vector was never trained.
	IsUserPredictable(userIndex int32) bool
	// IsItemPredictable returns false if the item has no feedback and its embedding vector was never trained.
	IsItemPredictable(itemIndex int32) bool
}

type BaseMatrixFactorization struct {
	model.BaseModel
	UserIndex       *dataset.FreqDict
	ItemIndex       *dataset.FreqDict
	UserPredictable *bitset.BitSet
	ItemPredictable *bitset.BitSet
	// Model parameters
	UserFactor [][]float32 // p_u
	ItemFactor [][]float32 // q_i
}

func (baseModel *BaseMatrixFactorization) Init(trainSet *dataset.Dataset) {
	baseModel.UserIndex = trainSet.GetUserDict()
	baseModel.ItemIndex = trainSet.GetItemDict()
	// set user trained flags
	baseModel.UserPredictable = bitset.New(uint(baseModel.UserIndex.Count()))
	for userIndex := int32(0); userIndex < baseModel.UserIndex.Count(); userIndex++ {
		if len(trainSet.GetUserFeedback()[userIndex]) > 0 {
			baseModel.UserPredictable.Set(uint(userIndex))
		}
	}
	// set item trained flags
	baseModel.ItemPredictable = bitset.New(uint(baseModel.ItemIndex.Count()))
	for itemIndex := int32(0); itemIndex < baseModel.ItemIndex.Count(); itemIndex++ {
		if len(trainSet.GetItemFeedback()[itemIndex]) > 0 {
			baseModel.ItemPredictable.Set(uint(itemIndex))
		}
	}
}

func (baseModel *BaseMatrixFactorization) GetUserIndex() *dataset.FreqDict {
	return baseModel.UserIndex
}

func (baseModel *BaseMatrixFactorization) GetItemIndex() *dataset.FreqDict {
	return baseModel.ItemIndex
}

// IsUserPredictable returns false if the user has no feedback and its embedding vector was never trained.
func (baseModel *BaseMatrixFactorization) IsUserPredictable(userIndex int32) bool {
	if baseModel.UserIndex == nil || userIndex >= baseModel.UserIndex.Count() || userIndex < 0 {
		return false
	}
	return baseModel.UserPredictable.Test(uint(userIndex))
}

// IsItemPredictable returns false if the item has no feedback and its embedding vector was never trained.
func (baseModel *BaseMatrixFactorization) IsItemPredictable(itemIndex int32) bool {
	if baseModel.ItemIndex == nil || itemIndex >= baseModel.ItemIndex.Count() || itemIndex < 0 {
		return false
	}
	return baseModel.ItemPredictable.Test(uint(itemIndex))
}

func (baseModel *BaseMatrixFactorization) Predict(userId, itemId string) float32 {
	// Convert sparse names to dense indices
	userIndex := int32(-1)
	itemIndex := int32(-1)
	if baseModel.UserIndex != nil {
		userIndex = baseModel.UserIndex.Id(userId)
	}
	if baseModel.ItemIndex != nil {
		itemIndex = baseModel.ItemIndex.Id(itemId)
	}
	if userIndex < 0 {
		log.Logger().Warn("unknown user", zap.String("user_id", userId))
	}
	if itemIndex < 0 {
		log.Logger().Warn("unknown item", zap.String("item_id", itemId))
	}
	return baseModel.internalPredict(userIndex, itemIndex)
}

func (baseModel *BaseMatrixFactorization) internalPredict(userIndex, itemIndex int32) float32 {
	ret := float32(0.0)
	if itemIndex >= 0 && userIndex >= 0 {
		ret = floats.Dot(baseModel.UserFactor[userIndex], baseModel.ItemFactor[itemIndex])
	} else {
		log.Logger().Warn("unknown user or item")
	}
	return ret
}

// Clear resets the model to an untrained state.
func (baseModel *BaseMatrixFactorization) Clear() {
	baseModel.UserIndex = nil
	baseModel.ItemIndex = nil
	baseModel.UserPredictable = nil
	baseModel.ItemPredictable = nil
	baseModel.UserFactor = nil
	baseModel.ItemFactor = nil
}

// Invalid reports whether the model is untrained.
func (baseModel *BaseMatrixFactorization) Invalid() bool {
	return baseModel.UserIndex == nil || baseModel.ItemIndex == nil ||
		baseModel.UserFactor == nil || baseModel.ItemFactor == nil
}

// effectiveRank clamps the configured number of factors to what the matrix
// can support. A rank below one means the matrix is degenerate.
func effectiveRank(nFactors, nUsers, nItems int) int {
	rank := min(nFactors, nUsers-1, nItems-1)
	return rank
}
