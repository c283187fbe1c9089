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

	"github.com/rafay-ai/voiceguide-recommend/storage/data"
	"github.com/stretchr/testify/assert"
)

func TestContentScorer_Cuisine(t *testing.T) {
	scorer := NewContentScorer(data.User{FavoriteCuisines: []string{"Japanese", "Thai"}})
	// first favorite is worth the full budget
	assert.Equal(t, float32(50), scorer.cuisineScore(data.Item{Cuisines: []string{"japanese"}}))
	// second favorite is worth half
	assert.Equal(t, float32(25), scorer.cuisineScore(data.Item{Cuisines: []string{"Thai"}}))
	// the best matching cuisine wins
	assert.Equal(t, float32(50), scorer.cuisineScore(data.Item{Cuisines: []string{"Thai", "Japanese"}}))
	assert.Equal(t, float32(0), scorer.cuisineScore(data.Item{Cuisines: []string{"Italian"}}))
	// no declared favorites, no score
	assert.Equal(t, float32(0), NewContentScorer(data.User{}).cuisineScore(data.Item{Cuisines: []string{"Thai"}}))
}

func TestContentScorer_Spice(t *testing.T) {
	scorer := NewContentScorer(data.User{SpicePreference: data.SpiceHot})
	assert.Equal(t, float32(15), scorer.spiceScore(data.Item{SpiceLevel: data.SpiceHot}))
	assert.Equal(t, float32(7.5), scorer.spiceScore(data.Item{SpiceLevel: data.SpiceMedium}))
	assert.Equal(t, float32(0), scorer.spiceScore(data.Item{SpiceLevel: data.SpiceMild}))
	// unknown levels default to medium
	assert.Equal(t, float32(7.5), scorer.spiceScore(data.Item{}))
	assert.Equal(t, float32(0), NewContentScorer(data.User{}).spiceScore(data.Item{SpiceLevel: data.SpiceHot}))
}

func TestPopularityScore(t *testing.T) {
	// a perfect rating with massive volume exhausts the popularity budget
	assert.InDelta(t, 25, popularityScore(data.Item{AverageRating: 5, OrderCount: 100}), 0.001)
	assert.InDelta(t, 15, popularityScore(data.Item{AverageRating: 5}), 0.001)
	assert.Equal(t, float32(0), popularityScore(data.Item{}))
	// order count saturates, no unbounded growth
	assert.InDelta(t, 25, popularityScore(data.Item{AverageRating: 5, OrderCount: 100000}), 0.001)
}

func TestContentScorer_DietaryBonus(t *testing.T) {
	scorer := NewContentScorer(data.User{DietaryRestrictions: []string{"vegetarian", "vegan", "halal"}})
	item := data.Item{IsVegetarian: true, IsVegan: true, IsHalal: true}
	// bonus is capped at the budget
	assert.Equal(t, float32(10), scorer.dietaryScore(item))
	assert.Equal(t, float32(5), scorer.dietaryScore(data.Item{IsVegetarian: true}))
	assert.Equal(t, float32(0), scorer.dietaryScore(data.Item{}))
}

func TestContentScorer_Bounded(t *testing.T) {
	scorer := NewContentScorer(data.User{
		FavoriteCuisines:    []string{"Thai"},
		DietaryRestrictions: []string{"vegetarian", "vegan"},
		SpicePreference:     data.SpiceHot,
	})
	item := data.Item{
		Cuisines:      []string{"Thai"},
		SpiceLevel:    data.SpiceHot,
		AverageRating: 5,
		OrderCount:    100,
		IsVegetarian:  true,
		IsVegan:       true,
	}
	assert.InDelta(t, 100, scorer.Score(item), 0.001)
	assert.GreaterOrEqual(t, scorer.Score(data.Item{}), float32(0))
}
