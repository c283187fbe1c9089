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
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFreqDict(t *testing.T) {
	d := NewFreqDict()
	assert.Equal(t, int32(0), d.Add("a"))
	assert.Equal(t, int32(1), d.Add("b"))
	assert.Equal(t, int32(0), d.Add("a"))
	assert.Equal(t, int32(2), d.Count())
	assert.Equal(t, int32(2), d.Freq(0))
	assert.Equal(t, int32(1), d.Freq(1))
	assert.Equal(t, int32(-1), d.Id("c"))
	s, ok := d.String(1)
	assert.True(t, ok)
	assert.Equal(t, "b", s)
	_, ok = d.String(5)
	assert.False(t, ok)
}

func TestDataset_AddInteraction(t *testing.T) {
	d := NewDataset()
	d.AddInteraction("u1", "i1", 2)
	d.AddInteraction("u1", "i2", 1)
	d.AddInteraction("u2", "i1", 4)
	assert.Equal(t, 2, d.CountUsers())
	assert.Equal(t, 2, d.CountItems())
	assert.Equal(t, 3, d.CountFeedback())
	// duplicate pairs sum
	d.AddInteraction("u1", "i1", 3)
	assert.Equal(t, 3, d.CountFeedback())
	assert.Equal(t, float32(5), d.GetUserFeedback()[0][0].B)
	assert.Equal(t, float32(5), d.GetItemFeedback()[0][0].B)
	// and cap at MaxStrength
	d.AddInteraction("u1", "i1", 100)
	assert.Equal(t, MaxStrength, d.GetUserFeedback()[0][0].B)
	// non-positive strengths are dropped
	d.AddInteraction("u3", "i3", 0)
	assert.Equal(t, 2, d.CountUsers())
	assert.True(t, d.GetUserItems(0).Contains(d.GetItemDict().Id("i2")))
	assert.Equal(t, 0, d.GetUserItems(42).Cardinality())
}

func TestDataset_Check(t *testing.T) {
	d := NewDataset()
	for u := 0; u < 4; u++ {
		for i := 0; i < 12; i++ {
			d.AddInteraction(fmt.Sprintf("u%d", u), fmt.Sprintf("i%d", i), 1)
		}
	}
	assert.ErrorIs(t, d.Check(), ErrInsufficientData)
	for i := 0; i < 12; i++ {
		d.AddInteraction("u4", fmt.Sprintf("i%d", i), 1)
	}
	assert.NoError(t, d.Check())
}

func TestDataset_SplitUserLeaveOneOut(t *testing.T) {
	d := NewDataset()
	for u := 0; u < 6; u++ {
		for i := 0; i <= u; i++ {
			d.AddInteraction(fmt.Sprintf("u%d", u), fmt.Sprintf("i%d", i), 1)
		}
	}
	train, test := d.SplitUserLeaveOneOut(42)
	assert.Same(t, d.GetUserDict(), train.GetUserDict())
	assert.Same(t, d.GetItemDict(), test.GetItemDict())
	assert.Equal(t, d.CountFeedback(), train.CountFeedback()+test.CountFeedback())
	for u := 0; u < 6; u++ {
		if u == 0 {
			// single interaction stays in train
			assert.Len(t, train.GetUserFeedback()[u], 1)
			assert.Empty(t, test.GetUserFeedback()[u])
		} else {
			assert.Len(t, test.GetUserFeedback()[u], 1)
			assert.Len(t, train.GetUserFeedback()[u], u)
		}
	}
	// deterministic for a fixed seed
	train2, test2 := d.SplitUserLeaveOneOut(42)
	assert.Equal(t, train.GetUserFeedback(), train2.GetUserFeedback())
	assert.Equal(t, test.GetUserFeedback(), test2.GetUserFeedback())
}
