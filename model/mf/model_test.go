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
	"fmt"
	"testing"

	"github.com/rafay-ai/voiceguide-recommend/dataset"
	"github.com/rafay-ai/voiceguide-recommend/model"
	"github.com/stretchr/testify/assert"
)

// twoTasteDataset builds two disjoint taste groups: users u0..u3 order items
// i0..i5, users u4..u7 order items i6..i11.
func twoTasteDataset() *dataset.Dataset {
	d := dataset.NewDataset()
	for u := 0; u < 4; u++ {
		for i := 0; i < 6; i++ {
			d.AddInteraction(fmt.Sprintf("u%d", u), fmt.Sprintf("i%d", i), 5)
		}
	}
	for u := 4; u < 8; u++ {
		for i := 6; i < 12; i++ {
			d.AddInteraction(fmt.Sprintf("u%d", u), fmt.Sprintf("i%d", i), 5)
		}
	}
	return d
}

func TestSVD_Fit(t *testing.T) {
	trainSet := twoTasteDataset()
	svd := NewSVD(model.Params{
		model.NFactors:    4,
		model.NEpochs:     100,
		model.Lr:          0.02,
		model.Reg:         0.01,
		model.RandomState: int64(42),
	})
	err := svd.Fit(context.Background(), trainSet, dataset.NewDataset(), NewFitConfig())
	assert.NoError(t, err)
	// in-group items score above cross-group items
	assert.Greater(t, svd.Predict("u0", "i1"), svd.Predict("u0", "i7"))
	assert.Greater(t, svd.Predict("u5", "i8"), svd.Predict("u5", "i2"))
	assert.True(t, svd.IsUserPredictable(0))
	assert.False(t, svd.IsUserPredictable(100))
	assert.False(t, svd.Invalid())
}

func TestSVD_FitWithValidation(t *testing.T) {
	trainSet, valSet := twoTasteDataset().SplitUserLeaveOneOut(0)
	svd := NewSVD(model.Params{
		model.NFactors:    4,
		model.NEpochs:     100,
		model.Lr:          0.02,
		model.Reg:         0.01,
		model.RandomState: int64(42),
	})
	err := svd.Fit(context.Background(), trainSet, valSet, NewFitConfig().SetVerbose(20))
	assert.NoError(t, err)
	// the held-out item sits in the user's own taste group, so it must rank
	// above the cross-group negatives
	scores := Evaluate(svd, valSet, trainSet, 10, 50, 1, NDCG, Precision, Recall)
	assert.Greater(t, scores[0], float32(0.5))
}

func TestALS_FitWithValidation(t *testing.T) {
	trainSet, valSet := twoTasteDataset().SplitUserLeaveOneOut(0)
	als := NewALS(model.Params{
		model.NFactors:    4,
		model.NEpochs:     20,
		model.Reg:         0.06,
		model.Alpha:       0.5,
		model.RandomState: int64(42),
	})
	err := als.Fit(context.Background(), trainSet, valSet, NewFitConfig().SetVerbose(5))
	assert.NoError(t, err)
	scores := Evaluate(als, valSet, trainSet, 10, 50, 1, NDCG)
	assert.Greater(t, scores[0], float32(0.5))
}

func TestSVD_FitDeterministic(t *testing.T) {
	trainSet := twoTasteDataset()
	params := model.Params{model.NFactors: 4, model.NEpochs: 20, model.RandomState: int64(7)}
	a := NewSVD(params)
	assert.NoError(t, a.Fit(context.Background(), trainSet, dataset.NewDataset(), NewFitConfig()))
	b := NewSVD(params)
	assert.NoError(t, b.Fit(context.Background(), trainSet, dataset.NewDataset(), NewFitConfig()))
	assert.Equal(t, a.UserFactor, b.UserFactor)
	assert.Equal(t, a.ItemFactor, b.ItemFactor)
}

func TestSVD_InsufficientData(t *testing.T) {
	d := dataset.NewDataset()
	d.AddInteraction("u0", "i0", 1)
	svd := NewSVD(model.Params{})
	err := svd.Fit(context.Background(), d, dataset.NewDataset(), NewFitConfig())
	assert.ErrorIs(t, err, dataset.ErrInsufficientData)
	assert.True(t, svd.Invalid())
}

func TestALS_Fit(t *testing.T) {
	trainSet := twoTasteDataset()
	als := NewALS(model.Params{
		model.NFactors:    4,
		model.NEpochs:     20,
		model.Reg:         0.06,
		model.Alpha:       0.5,
		model.RandomState: int64(42),
	})
	err := als.Fit(context.Background(), trainSet, dataset.NewDataset(), NewFitConfig().SetJobs(2))
	assert.NoError(t, err)
	assert.Greater(t, als.Predict("u0", "i1"), als.Predict("u0", "i7"))
	assert.Greater(t, als.Predict("u5", "i8"), als.Predict("u5", "i2"))
}

func TestALS_InsufficientData(t *testing.T) {
	d := dataset.NewDataset()
	d.AddInteraction("u0", "i0", 1)
	als := NewALS(model.Params{})
	err := als.Fit(context.Background(), d, dataset.NewDataset(), NewFitConfig())
	assert.ErrorIs(t, err, dataset.ErrInsufficientData)
}

func TestClear(t *testing.T) {
	trainSet := twoTasteDataset()
	svd := NewSVD(model.Params{model.NFactors: 2, model.NEpochs: 5})
	assert.NoError(t, svd.Fit(context.Background(), trainSet, dataset.NewDataset(), NewFitConfig()))
	svd.Clear()
	assert.True(t, svd.Invalid())
}

func TestEffectiveRank(t *testing.T) {
	assert.Equal(t, 4, effectiveRank(8, 5, 12))
	assert.Equal(t, 8, effectiveRank(8, 100, 100))
	assert.Equal(t, 0, effectiveRank(8, 1, 12))
}
