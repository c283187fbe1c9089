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

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/rafay-ai/voiceguide-recommend/dataset"
	"github.com/stretchr/testify/assert"
)

const evalEpsilon = 0.00001

func TestNDCG(t *testing.T) {
	targetSet := mapset.NewSet[int32](1, 3, 5, 7)
	rankList := []int32{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	assert.InDelta(t, 0.6766372989, NDCG(targetSet, rankList), evalEpsilon)
}

func TestPrecision(t *testing.T) {
	targetSet := mapset.NewSet[int32](1, 3, 5, 7)
	rankList := []int32{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	assert.InDelta(t, 0.4, Precision(targetSet, rankList), evalEpsilon)
}

func TestRecall(t *testing.T) {
	targetSet := mapset.NewSet[int32](1, 3, 15, 17, 19)
	rankList := []int32{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	assert.InDelta(t, 0.4, Recall(targetSet, rankList), evalEpsilon)
}

func TestHR(t *testing.T) {
	rankList := []int32{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	assert.InDelta(t, 1, HR(mapset.NewSet[int32](3), rankList), evalEpsilon)
	assert.InDelta(t, 0, HR(mapset.NewSet[int32](30), rankList), evalEpsilon)
}

// mockMatrixFactorization scores an item by its index so rankings are known.
type mockMatrixFactorization struct {
	BaseMatrixFactorization
}

func (m *mockMatrixFactorization) internalPredict(_, itemIndex int32) float32 {
	return float32(itemIndex)
}

func (m *mockMatrixFactorization) Fit(_ context.Context, _, _ *dataset.Dataset, _ *FitConfig) error {
	return nil
}

func TestRank(t *testing.T) {
	rankList, scores := Rank(&mockMatrixFactorization{}, 0, []int32{4, 1, 3, 0, 2}, 3)
	assert.Equal(t, []int32{4, 3, 2}, rankList)
	assert.Equal(t, []float32{4, 3, 2}, scores)
}

func TestEvaluate(t *testing.T) {
	d := dataset.NewDataset()
	for u := 0; u < 8; u++ {
		for i := 0; i < 12; i++ {
			d.AddInteraction(fmt.Sprintf("u%d", u), fmt.Sprintf("i%d", i), float32(i+1))
		}
	}
	train, test := d.SplitUserLeaveOneOut(0)
	// the mock ranks high item indices first, so low held-out items miss
	scores := Evaluate(&mockMatrixFactorization{}, test, train, 3, 4, 2, HR, Precision)
	assert.Len(t, scores, 2)
	assert.GreaterOrEqual(t, scores[0], float32(0))
	assert.LessOrEqual(t, scores[0], float32(1))
	assert.LessOrEqual(t, scores[1], float32(1))
}
