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
	"sort"
	"strings"
	"time"

	"github.com/juju/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

const (
	MongoPrefix    = "mongodb://"
	MongoSrvPrefix = "mongodb+srv://"
)

var (
	ErrUserNotExist = errors.NotFoundf("user")
	ErrItemNotExist = errors.NotFoundf("item")
	ErrNoDatabase   = errors.NotAssignedf("database")
)

// Order statuses. Only delivered orders count as preference evidence.
const (
	StatusPending   = "pending"
	StatusPreparing = "preparing"
	StatusOnTheWay  = "on_the_way"
	StatusDelivered = "delivered"
	StatusCancelled = "cancelled"
)

// Spice levels, ordered from mild to hot.
const (
	SpiceMild   = "mild"
	SpiceMedium = "medium"
	SpiceHot    = "hot"
)

// Item stores metadata about a menu item.
type Item struct {
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
	IsAvailable   bool
	AverageRating float32
	RatingCount   int
	OrderCount    int
	Timestamp     time.Time
}

// User stores a user record with the preference profile. The profile is
// read-only input to scoring and never mutated by the recommender.
type User struct {
	UserId              string
	FavoriteCuisines    []string
	DietaryRestrictions []string
	SpicePreference     string
}

// OrderItem is one line of an order.
type OrderItem struct {
	ItemId   string
	Quantity int
	Price    float64
}

// Order stores an order with its line items.
type Order struct {
	OrderId   string
	UserId    string
	Status    string
	Items     []OrderItem
	Total     float64
	Timestamp time.Time
}

// Rating is an explicit 1-5 star rating of an item by a user.
type Rating struct {
	UserId    string
	ItemId    string
	Score     int
	Comment   string
	Timestamp time.Time
}

// SortOrders sorts orders from latest to oldest.
func SortOrders(orders []Order) {
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].Timestamp.After(orders[j].Timestamp)
	})
}

type Database interface {
	Init() error
	Ping() error
	Close() error
	Purge() error
	BatchInsertUsers(ctx context.Context, users []User) error
	GetUser(ctx context.Context, userId string) (User, error)
	BatchInsertItems(ctx context.Context, items []Item) error
	GetItem(ctx context.Context, itemId string) (Item, error)
	GetItems(ctx context.Context, itemIds []string) ([]Item, error)
	GetAvailableItems(ctx context.Context) ([]Item, error)
	InsertOrder(ctx context.Context, order Order) error
	BatchInsertOrders(ctx context.Context, orders []Order) error
	GetDeliveredOrders(ctx context.Context, begin, end time.Time) ([]Order, error)
	GetUserDeliveredOrders(ctx context.Context, userId string, begin time.Time) ([]Order, error)
	CountDeliveredOrders(ctx context.Context) (int64, error)
	PutRating(ctx context.Context, rating Rating) error
	GetUserRatings(ctx context.Context, userId string) ([]Rating, error)
	GetRatedUsers(ctx context.Context) ([]string, error)
}

// Open a connection to the database, dispatching on the URI scheme.
func Open(path string) (Database, error) {
	if strings.HasPrefix(path, MongoPrefix) || strings.HasPrefix(path, MongoSrvPrefix) {
		// connect to database
		database := new(MongoDB)
		opts := options.Client()
		opts.ApplyURI(path)
		var err error
		if database.client, err = mongo.Connect(context.Background(), opts); err != nil {
			return nil, errors.Trace(err)
		}
		// parse DSN and extract database name
		if cs, err := connstring.ParseAndValidate(path); err != nil {
			return nil, errors.Trace(err)
		} else {
			database.dbName = cs.Database
		}
		return database, nil
	}
	return nil, errors.Errorf("unknown database: %s", path)
}
