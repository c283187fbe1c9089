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

package data

import (
	"context"
	"time"
)

// NoDatabase means no database is configured.
type NoDatabase struct{}

func (NoDatabase) Init() error {
	return ErrNoDatabase
}

func (NoDatabase) Ping() error {
	return ErrNoDatabase
}

func (NoDatabase) Close() error {
	return ErrNoDatabase
}

func (NoDatabase) Purge() error {
	return ErrNoDatabase
}

func (NoDatabase) BatchInsertUsers(_ context.Context, _ []User) error {
	return ErrNoDatabase
}

func (NoDatabase) GetUser(_ context.Context, _ string) (User, error) {
	return User{}, ErrNoDatabase
}

func (NoDatabase) BatchInsertItems(_ context.Context, _ []Item) error {
	return ErrNoDatabase
}

func (NoDatabase) GetItem(_ context.Context, _ string) (Item, error) {
	return Item{}, ErrNoDatabase
}

func (NoDatabase) GetItems(_ context.Context, _ []string) ([]Item, error) {
	return nil, ErrNoDatabase
}

func (NoDatabase) GetAvailableItems(_ context.Context) ([]Item, error) {
	return nil, ErrNoDatabase
}

func (NoDatabase) InsertOrder(_ context.Context, _ Order) error {
	return ErrNoDatabase
}

func (NoDatabase) BatchInsertOrders(_ context.Context, _ []Order) error {
	return ErrNoDatabase
}

func (NoDatabase) GetDeliveredOrders(_ context.Context, _, _ time.Time) ([]Order, error) {
	return nil, ErrNoDatabase
}

func (NoDatabase) GetUserDeliveredOrders(_ context.Context, _ string, _ time.Time) ([]Order, error) {
	return nil, ErrNoDatabase
}

func (NoDatabase) CountDeliveredOrders(_ context.Context) (int64, error) {
	return 0, ErrNoDatabase
}

func (NoDatabase) PutRating(_ context.Context, _ Rating) error {
	return ErrNoDatabase
}

func (NoDatabase) GetUserRatings(_ context.Context, _ string) ([]Rating, error) {
	return nil, ErrNoDatabase
}

func (NoDatabase) GetRatedUsers(_ context.Context) ([]string, error) {
	return nil, ErrNoDatabase
}
