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
	"context"
	"testing"
	"time"

	"github.com/rafay-ai/voiceguide-recommend/storage/data"
	"github.com/stretchr/testify/assert"
)

type mockDatabase struct {
	data.NoDatabase
	orders  []data.Order
	ratings map[string][]data.Rating
	broken  bool
}

func (m *mockDatabase) GetDeliveredOrders(_ context.Context, _, _ time.Time) ([]data.Order, error) {
	if m.broken {
		return nil, data.ErrNoDatabase
	}
	return m.orders, nil
}

func (m *mockDatabase) GetRatedUsers(_ context.Context) ([]string, error) {
	users := make([]string, 0, len(m.ratings))
	for userId := range m.ratings {
		users = append(users, userId)
	}
	return users, nil
}

func (m *mockDatabase) GetUserRatings(_ context.Context, userId string) ([]data.Rating, error) {
	return m.ratings[userId], nil
}

func TestExtractor_Extract(t *testing.T) {
	db := &mockDatabase{
		orders: []data.Order{
			{OrderId: "o1", UserId: "u1", Status: data.StatusDelivered,
				Items: []data.OrderItem{{ItemId: "i1", Quantity: 2}, {ItemId: "i2", Quantity: 1}}},
			{OrderId: "o2", UserId: "u1", Status: data.StatusDelivered,
				Items: []data.OrderItem{{ItemId: "i1", Quantity: 1}}},
		},
		ratings: map[string][]data.Rating{
			"u2": {
				{UserId: "u2", ItemId: "i1", Score: 5},
				{UserId: "u2", ItemId: "i2", Score: 1},
			},
		},
	}
	d := NewExtractor(db, 90*24*time.Hour).Extract(context.Background())
	assert.Equal(t, 2, d.CountUsers())
	assert.Equal(t, 2, d.CountItems())
	// u1 ordered i1 twice: strengths sum to 3
	u1 := d.GetUserDict().Id("u1")
	i1 := d.GetItemDict().Id("i1")
	assert.Equal(t, float32(3), d.GetUserFeedback()[u1][0].B)
	// a 5-star rating contributes its score
	u2 := d.GetUserDict().Id("u2")
	assert.True(t, d.GetUserItems(u2).Contains(i1))
	// a 1-star rating contributes nothing positive
	i2 := d.GetItemDict().Id("i2")
	assert.False(t, d.GetUserItems(u2).Contains(i2))
}

func TestExtractor_StorageFailure(t *testing.T) {
	db := &mockDatabase{broken: true}
	d := NewExtractor(db, 90*24*time.Hour).Extract(context.Background())
	assert.Equal(t, 0, d.CountUsers())
	assert.Equal(t, 0, d.CountFeedback())
	assert.ErrorIs(t, d.Check(), ErrInsufficientData)
}
