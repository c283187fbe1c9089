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

package logics

import (
	"strings"

	"github.com/chewxy/math32"
	mapset "github.com/deckarep/golang-set/v2"
)

// PositiveRating is the score from which a rating counts as ground truth
// for offline evaluation.
const PositiveRating = 4

// Report aggregates offline ranking quality over all evaluated users.
// All metrics are averages except Coverage, which is catalog-wide.
type Report struct {
	K         int
	Users     int
	Precision float32
	Recall    float32
	NDCG      float32
	HitRate   float32
	Coverage  float32
	Diversity float32
}

// EvaluateLists measures recommendation lists against ground-truth positives.
// It mutates nothing: lists come from the same blender that serves requests.
// catalogSize is the number of recommendable items, used for coverage.
func EvaluateLists(k, catalogSize int, lists map[string][]RecommendedItem, truth map[string]mapset.Set[string]) *Report {
	report := &Report{K: k}
	recommended := mapset.NewSet[string]()
	var sumDiversity float32
	diversityLists := 0
	for userId, list := range lists {
		if len(list) > k {
			list = list[:k]
		}
		for _, item := range list {
			recommended.Add(item.ItemId)
		}
		if len(list) > 1 {
			sumDiversity += diversity(list)
			diversityLists++
		}
		targets := truth[userId]
		if targets == nil || targets.Cardinality() == 0 {
			continue
		}
		report.Users++
		report.Precision += precision(targets, list)
		report.Recall += recall(targets, list)
		report.NDCG += ndcg(targets, list)
		report.HitRate += hitRate(targets, list)
	}
	if report.Users > 0 {
		n := float32(report.Users)
		report.Precision /= n
		report.Recall /= n
		report.NDCG /= n
		report.HitRate /= n
	}
	if diversityLists > 0 {
		report.Diversity = sumDiversity / float32(diversityLists)
	}
	// normalized so that full concentration on a single item scores zero
	if catalogSize > 1 && recommended.Cardinality() > 0 {
		report.Coverage = float32(recommended.Cardinality()-1) / float32(catalogSize-1)
	}
	return report
}

func precision(targets mapset.Set[string], list []RecommendedItem) float32 {
	if len(list) == 0 {
		return 0
	}
	hit := float32(0)
	for _, item := range list {
		if targets.Contains(item.ItemId) {
			hit++
		}
	}
	return hit / float32(len(list))
}

func recall(targets mapset.Set[string], list []RecommendedItem) float32 {
	hit := float32(0)
	for _, item := range list {
		if targets.Contains(item.ItemId) {
			hit++
		}
	}
	return hit / float32(targets.Cardinality())
}

func ndcg(targets mapset.Set[string], list []RecommendedItem) float32 {
	idcg := float32(0)
	for i := 0; i < targets.Cardinality() && i < len(list); i++ {
		idcg += 1 / math32.Log2(float32(i)+2)
	}
	if idcg == 0 {
		return 0
	}
	dcg := float32(0)
	for i, item := range list {
		if targets.Contains(item.ItemId) {
			dcg += 1 / math32.Log2(float32(i)+2)
		}
	}
	return dcg / idcg
}

func hitRate(targets mapset.Set[string], list []RecommendedItem) float32 {
	for _, item := range list {
		if targets.Contains(item.ItemId) {
			return 1
		}
	}
	return 0
}

// diversity is the mean pairwise cuisine dissimilarity (1 - Jaccard) inside
// one user's list.
func diversity(list []RecommendedItem) float32 {
	var sum float32
	pairs := 0
	for i := 0; i < len(list); i++ {
		for j := i + 1; j < len(list); j++ {
			sum += 1 - jaccard(list[i].Cuisines, list[j].Cuisines)
			pairs++
		}
	}
	if pairs == 0 {
		return 0
	}
	return sum / float32(pairs)
}

func jaccard(a, b []string) float32 {
	as := mapset.NewSet[string]()
	for _, c := range a {
		as.Add(strings.ToLower(c))
	}
	bs := mapset.NewSet[string]()
	for _, c := range b {
		bs.Add(strings.ToLower(c))
	}
	if as.Cardinality() == 0 && bs.Cardinality() == 0 {
		return 1
	}
	union := as.Union(bs).Cardinality()
	if union == 0 {
		return 0
	}
	return float32(as.Intersect(bs).Cardinality()) / float32(union)
}
