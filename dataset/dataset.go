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

package dataset

import (
	"math/rand"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/juju/errors"
	"github.com/samber/lo"
)

const (
	// MaxStrength caps the accumulated interaction strength of a (user, item)
	// pair so heavy reorder habits don't dominate the factorization.
	MaxStrength float32 = 10
	// MinUsers is the minimum number of distinct users required to fit a model.
	MinUsers = 5
	// MinItems is the minimum number of distinct items required to fit a model.
	MinItems = 10
)

// ErrInsufficientData is returned when the interaction matrix is too small or
// too degenerate to factorize.
var ErrInsufficientData = errors.New("insufficient data to build a model")

// Interaction is one unit of positive preference evidence: a delivered order
// line or a rating at or above the neutral threshold.
type Interaction struct {
	UserId    string
	ItemId    string
	Strength  float32
	Timestamp time.Time
}

// Dataset is the sparse user-item strength matrix in index space. It is
// immutable after Freeze and rebuilt from scratch on every model rebuild,
// so indices from different datasets must never be mixed.
type Dataset struct {
	userDict *FreqDict
	itemDict *FreqDict
	// adjacency in both directions, strengths summed and capped
	userFeedback [][]lo.Tuple2[int32, float32]
	itemFeedback [][]lo.Tuple2[int32, float32]
	// position of an item in userFeedback[u], for strength accumulation
	userItemPos []map[int32]int
	// per-user set of interacted items, kept for negative sampling
	userItems []mapset.Set[int32]
	count     int
}

func NewDataset() *Dataset {
	return &Dataset{
		userDict: NewFreqDict(),
		itemDict: NewFreqDict(),
	}
}

// AddInteraction accumulates one interaction. Duplicate (user, item) pairs
// sum their strengths, capped at MaxStrength.
func (d *Dataset) AddInteraction(userId, itemId string, strength float32) {
	if strength <= 0 {
		return
	}
	userIndex := d.userDict.Add(userId)
	itemIndex := d.itemDict.Add(itemId)
	for int(userIndex) >= len(d.userFeedback) {
		d.userFeedback = append(d.userFeedback, nil)
		d.userItemPos = append(d.userItemPos, make(map[int32]int))
		d.userItems = append(d.userItems, mapset.NewSet[int32]())
	}
	for int(itemIndex) >= len(d.itemFeedback) {
		d.itemFeedback = append(d.itemFeedback, nil)
	}
	if pos, exist := d.userItemPos[userIndex][itemIndex]; exist {
		s := min(d.userFeedback[userIndex][pos].B+strength, MaxStrength)
		d.userFeedback[userIndex][pos].B = s
		for i, t := range d.itemFeedback[itemIndex] {
			if t.A == userIndex {
				d.itemFeedback[itemIndex][i].B = s
				break
			}
		}
		return
	}
	d.userItemPos[userIndex][itemIndex] = len(d.userFeedback[userIndex])
	d.userFeedback[userIndex] = append(d.userFeedback[userIndex], lo.Tuple2[int32, float32]{A: itemIndex, B: min(strength, MaxStrength)})
	d.itemFeedback[itemIndex] = append(d.itemFeedback[itemIndex], lo.Tuple2[int32, float32]{A: userIndex, B: min(strength, MaxStrength)})
	d.userItems[userIndex].Add(itemIndex)
	d.count++
}

func (d *Dataset) GetUserDict() *FreqDict {
	return d.userDict
}

func (d *Dataset) GetItemDict() *FreqDict {
	return d.itemDict
}

// GetUserFeedback returns (itemIndex, strength) pairs per user index.
func (d *Dataset) GetUserFeedback() [][]lo.Tuple2[int32, float32] {
	return d.userFeedback
}

// GetItemFeedback returns (userIndex, strength) pairs per item index.
func (d *Dataset) GetItemFeedback() [][]lo.Tuple2[int32, float32] {
	return d.itemFeedback
}

// GetUserItems returns the set of item indices a user interacted with.
func (d *Dataset) GetUserItems(userIndex int32) mapset.Set[int32] {
	if userIndex < 0 || int(userIndex) >= len(d.userItems) {
		return mapset.NewSet[int32]()
	}
	return d.userItems[userIndex]
}

func (d *Dataset) CountUsers() int {
	return int(d.userDict.Count())
}

func (d *Dataset) CountItems() int {
	return int(d.itemDict.Count())
}

func (d *Dataset) CountFeedback() int {
	return d.count
}

// Check validates the minimum data bounds for model fitting.
func (d *Dataset) Check() error {
	if d.CountUsers() < MinUsers || d.CountItems() < MinItems || d.count == 0 {
		return errors.Trace(ErrInsufficientData)
	}
	return nil
}

// SplitUserLeaveOneOut holds out one random interaction per user with at
// least two interactions. Train and test share this dataset's dictionaries,
// so indices stay comparable across the split.
func (d *Dataset) SplitUserLeaveOneOut(seed int64) (train, test *Dataset) {
	rng := rand.New(rand.NewSource(seed))
	train = &Dataset{userDict: d.userDict, itemDict: d.itemDict}
	test = &Dataset{userDict: d.userDict, itemDict: d.itemDict}
	n := len(d.userFeedback)
	train.userFeedback = make([][]lo.Tuple2[int32, float32], n)
	train.userItemPos = make([]map[int32]int, n)
	train.userItems = make([]mapset.Set[int32], n)
	train.itemFeedback = make([][]lo.Tuple2[int32, float32], len(d.itemFeedback))
	test.userFeedback = make([][]lo.Tuple2[int32, float32], n)
	test.userItemPos = make([]map[int32]int, n)
	test.userItems = make([]mapset.Set[int32], n)
	test.itemFeedback = make([][]lo.Tuple2[int32, float32], len(d.itemFeedback))
	for u := range d.userFeedback {
		train.userItemPos[u] = make(map[int32]int)
		train.userItems[u] = mapset.NewSet[int32]()
		test.userItemPos[u] = make(map[int32]int)
		test.userItems[u] = mapset.NewSet[int32]()
		heldOut := -1
		if len(d.userFeedback[u]) > 1 {
			heldOut = rng.Intn(len(d.userFeedback[u]))
		}
		for pos, t := range d.userFeedback[u] {
			target := train
			if pos == heldOut {
				target = test
			}
			target.userItemPos[u][t.A] = len(target.userFeedback[u])
			target.userFeedback[u] = append(target.userFeedback[u], t)
			target.itemFeedback[t.A] = append(target.itemFeedback[t.A], lo.Tuple2[int32, float32]{A: int32(u), B: t.B})
			target.userItems[u].Add(t.A)
			target.count++
		}
	}
	return
}
