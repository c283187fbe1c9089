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
	"sort"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/rafay-ai/voiceguide-recommend/config"
	"github.com/rafay-ai/voiceguide-recommend/model/mf"
	"github.com/rafay-ai/voiceguide-recommend/storage/data"
	"github.com/samber/lo"
)

// State of one recommendation request, decided once per request from the
// order history, model readiness and the user's presence in the model index.
type State int

const (
	// StateNewUser means no order history: reorders are empty by contract.
	StateNewUser State = iota
	// StateHistoryOnly means history exists but the model can't score this user.
	StateHistoryOnly
	// StateCollaborative means the model is ready and knows this user.
	StateCollaborative
)

func (s State) String() string {
	switch s {
	case StateNewUser:
		return "new_user"
	case StateHistoryOnly:
		return "history_only"
	case StateCollaborative:
		return "collaborative"
	default:
		return "unknown"
	}
}

// OrderStats summarizes a user's delivered history of one item.
type OrderStats struct {
	Count       int
	LastOrdered time.Time
}

// RecommendedItem is one ranked entry of a recommendation list.
type RecommendedItem struct {
	ItemId        string
	RestaurantId  string
	Name          string
	Description   string
	Price         float64
	ImageURL      string
	Cuisines      []string
	Tags          []string
	SpiceLevel    string
	IsVegetarian  bool
	IsVegan       bool
	IsHalal       bool
	IsGlutenFree  bool
	AverageRating float32
	// OrderCount is the requesting user's delivered-order count in reorder
	// lists and the catalog-wide count in discover lists.
	OrderCount int
	Score      float32
}

// Request carries everything a single recommendation needs. The blender
// reads it and mutates nothing.
type Request struct {
	User     data.User
	Catalog  []data.Item
	History  map[string]OrderStats
	Dislikes mapset.Set[string]
	Model    mf.MatrixFactorization
	K        int
	Now      time.Time
}

// Result is transient: computed per request, never persisted.
type Result struct {
	State        State
	ReorderItems []RecommendedItem
	NewItems     []RecommendedItem
}

// Blender merges factorization predictions and content scores into the
// reorder and discover lists, then applies the dietary and dislike filters
// as a single shared final stage.
type Blender struct {
	discoverCFWeight  float32
	reorderFreqWeight float32
}

func NewBlender(cfg *config.RecommendConfig) *Blender {
	return &Blender{
		discoverCFWeight:  cfg.DiscoverCFWeight,
		reorderFreqWeight: cfg.ReorderFrequencyWeight,
	}
}

func (b *Blender) Blend(r *Request) *Result {
	state := determineState(r)
	scorer := NewContentScorer(r.User)
	var reorder, discover []RecommendedItem
	switch state {
	case StateNewUser:
		// reorder stays empty by contract
		discover = b.rankByContent(r, scorer, r.Catalog)
	case StateHistoryOnly:
		ordered, fresh := splitByHistory(r)
		reorder = b.rankReorder(r, ordered, nil)
		discover = b.rankByContent(r, scorer, fresh)
	case StateCollaborative:
		ordered, fresh := splitByHistory(r)
		reorder = b.rankReorder(r, ordered, r.Model)
		discover = b.rankDiscover(r, scorer, fresh)
	}
	return &Result{
		State:        state,
		ReorderItems: b.finalize(r, reorder),
		NewItems:     b.finalize(r, discover),
	}
}

func determineState(r *Request) State {
	if len(r.History) == 0 {
		return StateNewUser
	}
	if r.Model == nil {
		return StateHistoryOnly
	}
	userIndex := r.Model.GetUserIndex().Id(r.User.UserId)
	if !r.Model.IsUserPredictable(userIndex) {
		return StateHistoryOnly
	}
	return StateCollaborative
}

// splitByHistory partitions the catalog into previously-ordered and
// never-ordered items.
func splitByHistory(r *Request) (ordered, fresh []data.Item) {
	for _, item := range r.Catalog {
		if _, exist := r.History[item.ItemId]; exist {
			ordered = append(ordered, item)
		} else {
			fresh = append(fresh, item)
		}
	}
	return
}

// rankByContent scores candidates with the content scorer alone.
func (b *Blender) rankByContent(r *Request, scorer *ContentScorer, candidates []data.Item) []RecommendedItem {
	ranked := lo.Map(candidates, func(item data.Item, _ int) RecommendedItem {
		return newRecommendedItem(item, item.OrderCount, scorer.Score(item))
	})
	sortRanked(ranked)
	return ranked
}

// rankReorder ranks previously-ordered items by order frequency blended with
// predicted affinity when the model knows the user, or recency otherwise.
func (b *Blender) rankReorder(r *Request, candidates []data.Item, model mf.MatrixFactorization) []RecommendedItem {
	maxCount := 0
	for _, stats := range r.History {
		maxCount = max(maxCount, stats.Count)
	}
	var affinity []float32
	if model != nil {
		affinity = normalizedAffinity(r, model, candidates)
	}
	ranked := make([]RecommendedItem, 0, len(candidates))
	for i, item := range candidates {
		stats := r.History[item.ItemId]
		frequency := float32(stats.Count) / float32(maxCount)
		var rest float32
		if model != nil {
			rest = affinity[i]
		} else {
			rest = recencyScore(r.Now, stats.LastOrdered)
		}
		score := b.reorderFreqWeight*frequency + (1-b.reorderFreqWeight)*rest
		ranked = append(ranked, newRecommendedItem(item, stats.Count, score*100))
	}
	sortRanked(ranked)
	return ranked
}

// rankDiscover blends normalized predicted affinity with the content score.
func (b *Blender) rankDiscover(r *Request, scorer *ContentScorer, candidates []data.Item) []RecommendedItem {
	affinity := normalizedAffinity(r, r.Model, candidates)
	ranked := make([]RecommendedItem, 0, len(candidates))
	for i, item := range candidates {
		score := b.discoverCFWeight*affinity[i] + (1-b.discoverCFWeight)*scorer.Score(item)/100
		ranked = append(ranked, newRecommendedItem(item, item.OrderCount, score*100))
	}
	sortRanked(ranked)
	return ranked
}

// normalizedAffinity min-max normalizes predictions within this request.
// Items the model can't predict score zero.
func normalizedAffinity(r *Request, model mf.MatrixFactorization, candidates []data.Item) []float32 {
	raw := make([]float32, len(candidates))
	known := make([]bool, len(candidates))
	lower, upper := float32(0), float32(0)
	found := false
	for i, item := range candidates {
		itemIndex := model.GetItemIndex().Id(item.ItemId)
		if model.IsItemPredictable(itemIndex) {
			raw[i] = model.Predict(r.User.UserId, item.ItemId)
			known[i] = true
			if !found {
				lower, upper = raw[i], raw[i]
				found = true
			} else {
				lower = min(lower, raw[i])
				upper = max(upper, raw[i])
			}
		}
	}
	normalized := make([]float32, len(candidates))
	for i := range candidates {
		if known[i] {
			if upper > lower {
				normalized[i] = (raw[i] - lower) / (upper - lower)
			} else {
				normalized[i] = 1
			}
		}
	}
	return normalized
}

// recencyScore decays with the age of the last delivered order.
func recencyScore(now, lastOrdered time.Time) float32 {
	if lastOrdered.IsZero() {
		return 0
	}
	ageDays := float32(now.Sub(lastOrdered).Hours() / 24)
	if ageDays < 0 {
		ageDays = 0
	}
	return 1 / (1 + ageDays/30)
}

// finalize applies the shared final stage: dietary hard filter, dislike
// filter, truncate to K. These filters override any score.
func (b *Blender) finalize(r *Request, ranked []RecommendedItem) []RecommendedItem {
	result := make([]RecommendedItem, 0, r.K)
	for _, item := range ranked {
		if len(result) >= r.K {
			break
		}
		if r.Dislikes != nil && r.Dislikes.Contains(item.ItemId) {
			continue
		}
		if !dietaryCompatible(r.User.DietaryRestrictions, item) {
			continue
		}
		result = append(result, item)
	}
	return result
}

// dietaryCompatible reports whether an item violates none of the declared
// restrictions. No score can override a violation.
func dietaryCompatible(restrictions []string, item RecommendedItem) bool {
	for _, restriction := range restrictions {
		switch strings.ToLower(restriction) {
		case "vegetarian":
			if !item.IsVegetarian {
				return false
			}
		case "vegan":
			if !item.IsVegan {
				return false
			}
		case "halal":
			// untagged items pass unless marked otherwise
			if !item.IsHalal && hasAnyTag(item.Tags, "pork", "alcohol", "non-halal") {
				return false
			}
		case "gluten-free":
			if !item.IsGlutenFree && hasAnyTag(item.Tags, "gluten", "wheat") {
				return false
			}
		}
	}
	return true
}

func hasAnyTag(tags []string, needles ...string) bool {
	for _, tag := range tags {
		for _, needle := range needles {
			if strings.EqualFold(tag, needle) {
				return true
			}
		}
	}
	return false
}

func newRecommendedItem(item data.Item, orderCount int, score float32) RecommendedItem {
	return RecommendedItem{
		ItemId:        item.ItemId,
		RestaurantId:  item.RestaurantId,
		Name:          item.Name,
		Description:   item.Description,
		Price:         item.Price,
		ImageURL:      item.ImageURL,
		Cuisines:      item.Cuisines,
		Tags:          item.Tags,
		SpiceLevel:    item.SpiceLevel,
		IsVegetarian:  item.IsVegetarian,
		IsVegan:       item.IsVegan,
		IsHalal:       item.IsHalal,
		IsGlutenFree:  item.IsGlutenFree,
		AverageRating: item.AverageRating,
		OrderCount:    orderCount,
		Score:         score,
	}
}

func sortRanked(ranked []RecommendedItem) {
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].ItemId < ranked[j].ItemId
	})
}
