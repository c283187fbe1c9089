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
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/stretchr/testify/assert"
)

func items(ids ...string) []RecommendedItem {
	list := make([]RecommendedItem, len(ids))
	for i, id := range ids {
		list[i] = RecommendedItem{ItemId: id}
	}
	return list
}

func TestEvaluateLists_Metrics(t *testing.T) {
	lists := map[string][]RecommendedItem{
		"u1": items("a", "b", "c", "d"),
		"u2": items("e", "f"),
	}
	truth := map[string]mapset.Set[string]{
		"u1": mapset.NewSet("a", "c"),
		"u2": mapset.NewSet("x"),
	}
	report := EvaluateLists(4, 10, lists, truth)
	assert.Equal(t, 2, report.Users)
	// u1: 2/4 hits, u2: 0/2
	assert.InDelta(t, 0.25, report.Precision, 0.001)
	// u1: 2/2 recall, u2: 0/1
	assert.InDelta(t, 0.5, report.Recall, 0.001)
	assert.InDelta(t, 0.5, report.HitRate, 0.001)
	assert.Greater(t, report.NDCG, float32(0))
}

func TestEvaluateLists_CoverageZeroWhenConcentrated(t *testing.T) {
	// every user receives the same single item
	lists := map[string][]RecommendedItem{
		"u1": items("a"),
		"u2": items("a"),
		"u3": items("a"),
	}
	report := EvaluateLists(1, 20, lists, nil)
	assert.Equal(t, float32(0), report.Coverage)
}

func TestEvaluateLists_CoverageGrowsWithSpread(t *testing.T) {
	narrow := EvaluateLists(2, 5, map[string][]RecommendedItem{
		"u1": items("a", "b"),
	}, nil)
	wide := EvaluateLists(2, 5, map[string][]RecommendedItem{
		"u1": items("a", "b"),
		"u2": items("c", "d"),
	}, nil)
	assert.Greater(t, wide.Coverage, narrow.Coverage)
	full := EvaluateLists(5, 5, map[string][]RecommendedItem{
		"u1": items("a", "b", "c", "d", "e"),
	}, nil)
	assert.InDelta(t, 1, full.Coverage, 0.001)
}

func TestEvaluateLists_Diversity(t *testing.T) {
	same := map[string][]RecommendedItem{
		"u1": {
			{ItemId: "a", Cuisines: []string{"Thai"}},
			{ItemId: "b", Cuisines: []string{"Thai"}},
		},
	}
	assert.Equal(t, float32(0), EvaluateLists(2, 10, same, nil).Diversity)
	disjoint := map[string][]RecommendedItem{
		"u1": {
			{ItemId: "a", Cuisines: []string{"Thai"}},
			{ItemId: "b", Cuisines: []string{"Japanese"}},
		},
	}
	assert.Equal(t, float32(1), EvaluateLists(2, 10, disjoint, nil).Diversity)
}

func TestEvaluateLists_TruncatesToK(t *testing.T) {
	lists := map[string][]RecommendedItem{
		"u1": items("a", "b", "c", "d"),
	}
	truth := map[string]mapset.Set[string]{
		"u1": mapset.NewSet("d"),
	}
	// d sits beyond K and must not count as a hit
	report := EvaluateLists(2, 10, lists, truth)
	assert.Equal(t, float32(0), report.HitRate)
}
