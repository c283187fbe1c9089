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
	"github.com/rafay-ai/voiceguide-recommend/storage/data"
	"github.com/samber/lo"
)

// Weights of the content score components. The budget is fixed at 100;
// a missing signal loses its headroom instead of redistributing it.
const (
	cuisineWeight    = 50
	spiceWeight      = 15
	popularityWeight = 25
	dietaryBonus     = 10
)

// ContentScorer scores items for one user from declared preferences and
// popularity signals only. It needs no interaction history, so it serves
// cold-start users and items outside the factorization model.
type ContentScorer struct {
	user      data.User
	favorites []string
}

func NewContentScorer(user data.User) *ContentScorer {
	return &ContentScorer{
		user: user,
		favorites: lo.Map(user.FavoriteCuisines, func(c string, _ int) string {
			return strings.ToLower(c)
		}),
	}
}

// Score returns a bounded score in [0, 100].
func (scorer *ContentScorer) Score(item data.Item) float32 {
	return scorer.cuisineScore(item) +
		scorer.spiceScore(item) +
		popularityScore(item) +
		scorer.dietaryScore(item)
}

// cuisineScore weights matches by the position of the cuisine in the user's
// ordered favorites: the first favorite is worth the full budget, later ones
// proportionally less.
func (scorer *ContentScorer) cuisineScore(item data.Item) float32 {
	if len(scorer.favorites) == 0 {
		return 0
	}
	best := float32(0)
	for _, cuisine := range item.Cuisines {
		if pos := lo.IndexOf(scorer.favorites, strings.ToLower(cuisine)); pos >= 0 {
			score := cuisineWeight * float32(len(scorer.favorites)-pos) / float32(len(scorer.favorites))
			best = max(best, score)
		}
	}
	return best
}

// spiceScore decays with the ordinal distance between the item's spice level
// and the user's preference.
func (scorer *ContentScorer) spiceScore(item data.Item) float32 {
	if scorer.user.SpicePreference == "" {
		return 0
	}
	distance := math32.Abs(float32(spiceOrdinal(item.SpiceLevel) - spiceOrdinal(scorer.user.SpicePreference)))
	return spiceWeight * max(0, 1-distance/2)
}

func spiceOrdinal(level string) int {
	switch strings.ToLower(level) {
	case data.SpiceMild:
		return 0
	case data.SpiceHot:
		return 2
	default:
		return 1
	}
}

// popularityScore combines the normalized average rating with a log-scaled
// order count, so a handful of five-star ratings can't outrank a dish the
// whole city keeps ordering.
func popularityScore(item data.Item) float32 {
	rating := item.AverageRating / 5 * 15
	orders := min(math32.Log1p(float32(item.OrderCount))/math32.Log1p(100), 1) * 10
	return rating + orders
}

// dietaryScore rewards items that align with declared restrictions beyond
// the hard filter, e.g. an explicitly vegan dish for a vegan user.
func (scorer *ContentScorer) dietaryScore(item data.Item) float32 {
	bonus := float32(0)
	for _, restriction := range scorer.user.DietaryRestrictions {
		switch strings.ToLower(restriction) {
		case "vegetarian":
			if item.IsVegetarian {
				bonus += 5
			}
		case "vegan":
			if item.IsVegan {
				bonus += 5
			}
		case "halal":
			if item.IsHalal {
				bonus += 5
			}
		case "gluten-free":
			if item.IsGlutenFree {
				bonus += 5
			}
		}
	}
	return min(bonus, dietaryBonus)
}
