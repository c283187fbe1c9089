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
	"math/rand"

	"github.com/chewxy/math32"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/rafay-ai/voiceguide-recommend/base/floats"
	"github.com/rafay-ai/voiceguide-recommend/base/heap"
	"github.com/rafay-ai/voiceguide-recommend/base/parallel"
	"github.com/rafay-ai/voiceguide-recommend/dataset"
)

/* Evaluate item ranking */

// Metric is used by evaluators in personalized ranking tasks.
type Metric func(targetSet mapset.Set[int32], rankList []int32) float32

// Evaluate evaluates a model in top-n tasks. Candidates per user are the test
// items plus sampled negatives the user never interacted with.
func Evaluate(estimator MatrixFactorization, testSet, trainSet *dataset.Dataset, topK, numCandidates, nJobs int, scorers ...Metric) []float32 {
	partSum := make([][]float32, nJobs)
	partCount := make([]float32, nJobs)
	for i := 0; i < nJobs; i++ {
		partSum[i] = make([]float32, len(scorers))
	}
	negatives := negativeSample(testSet, trainSet, numCandidates)
	_ = parallel.Parallel(context.Background(), testSet.CountUsers(), nJobs, func(workerId, userIndex int) error {
		// find target items in the test set
		testFeedback := testSet.GetUserFeedback()[userIndex]
		if len(testFeedback) == 0 {
			return nil
		}
		targetSet := mapset.NewSet[int32]()
		candidates := make([]int32, 0, len(testFeedback)+len(negatives[userIndex]))
		for _, t := range testFeedback {
			targetSet.Add(t.A)
			candidates = append(candidates, t.A)
		}
		candidates = append(candidates, negatives[userIndex]...)
		// rank candidates by predicted affinity
		rankList, _ := Rank(estimator, int32(userIndex), candidates, topK)
		partCount[workerId]++
		for i, metric := range scorers {
			partSum[workerId][i] += metric(targetSet, rankList)
		}
		return nil
	})
	sum := make([]float32, len(scorers))
	for i := 0; i < nJobs; i++ {
		for j := range partSum[i] {
			sum[j] += partSum[i][j]
		}
	}
	count := floats.Sum(partCount)
	if count > 0 {
		floats.MulConst(sum, 1/count)
	}
	return sum
}

// negativeSample draws up to numCandidates items per user that the user never
// interacted with in either split. Deterministic for reproducible reports.
func negativeSample(testSet, trainSet *dataset.Dataset, numCandidates int) [][]int32 {
	rng := rand.New(rand.NewSource(0))
	nItems := int32(trainSet.CountItems())
	negatives := make([][]int32, testSet.CountUsers())
	for userIndex := range negatives {
		seen := trainSet.GetUserItems(int32(userIndex)).Union(testSet.GetUserItems(int32(userIndex)))
		sampled := mapset.NewSet[int32]()
		budget := min(numCandidates, int(nItems)-seen.Cardinality())
		for sampled.Cardinality() < budget {
			itemIndex := rng.Int31n(nItems)
			if !seen.Contains(itemIndex) {
				sampled.Add(itemIndex)
			}
		}
		negatives[userIndex] = sampled.ToSlice()
	}
	return negatives
}

// NDCG means Normalized Discounted Cumulative Gain.
func NDCG(targetSet mapset.Set[int32], rankList []int32) float32 {
	// IDCG = \sum^{|REL|}_{i=1} \frac {1} {\log_2(i+1)}
	idcg := float32(0)
	for i := 0; i < targetSet.Cardinality() && i < len(rankList); i++ {
		idcg += 1.0 / math32.Log2(float32(i)+2.0)
	}
	// DCG = \sum^{N}_{i=1} \frac {2^{rel_i}-1} {\log_2(i+1)}
	dcg := float32(0)
	for i, itemId := range rankList {
		if targetSet.Contains(itemId) {
			dcg += 1.0 / math32.Log2(float32(i)+2.0)
		}
	}
	if idcg == 0 {
		return 0
	}
	return dcg / idcg
}

// Precision is the fraction of relevant items among the recommended items.
func Precision(targetSet mapset.Set[int32], rankList []int32) float32 {
	if len(rankList) == 0 {
		return 0
	}
	hit := float32(0)
	for _, itemId := range rankList {
		if targetSet.Contains(itemId) {
			hit++
		}
	}
	return hit / float32(len(rankList))
}

// Recall is the fraction of relevant items that have been recommended over
// the total amount of relevant items.
func Recall(targetSet mapset.Set[int32], rankList []int32) float32 {
	if targetSet.Cardinality() == 0 {
		return 0
	}
	hit := 0
	for _, itemId := range rankList {
		if targetSet.Contains(itemId) {
			hit++
		}
	}
	return float32(hit) / float32(targetSet.Cardinality())
}

// HR means Hit Ratio.
func HR(targetSet mapset.Set[int32], rankList []int32) float32 {
	for _, itemId := range rankList {
		if targetSet.Contains(itemId) {
			return 1
		}
	}
	return 0
}

// Rank returns the top-n candidates by predicted affinity.
func Rank(model MatrixFactorization, userIndex int32, candidates []int32, topN int) ([]int32, []float32) {
	itemsHeap := heap.NewTopKFilter[int32, float32](topN)
	for _, itemIndex := range candidates {
		itemsHeap.Push(itemIndex, model.internalPredict(userIndex, itemIndex))
	}
	return itemsHeap.PopAll()
}
