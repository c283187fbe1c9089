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

	"github.com/juju/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDB is the data storage based on MongoDB.
type MongoDB struct {
	client *mongo.Client
	dbName string
}

// Init collections and indices in MongoDB.
func (db *MongoDB) Init() error {
	ctx := context.Background()
	d := db.client.Database(db.dbName)
	// list collections
	var hasUsers, hasItems, hasOrders, hasRatings bool
	collections, err := d.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return errors.Trace(err)
	}
	for _, collectionName := range collections {
		switch collectionName {
		case "users":
			hasUsers = true
		case "items":
			hasItems = true
		case "orders":
			hasOrders = true
		case "ratings":
			hasRatings = true
		}
	}
	// create collections
	if !hasUsers {
		if err = d.CreateCollection(ctx, "users"); err != nil {
			return errors.Trace(err)
		}
	}
	if !hasItems {
		if err = d.CreateCollection(ctx, "items"); err != nil {
			return errors.Trace(err)
		}
	}
	if !hasOrders {
		if err = d.CreateCollection(ctx, "orders"); err != nil {
			return errors.Trace(err)
		}
	}
	if !hasRatings {
		if err = d.CreateCollection(ctx, "ratings"); err != nil {
			return errors.Trace(err)
		}
	}
	// create indices
	_, err = d.Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.M{"userid": 1},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return errors.Trace(err)
	}
	_, err = d.Collection("items").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.M{"itemid": 1},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return errors.Trace(err)
	}
	_, err = d.Collection("orders").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.M{"orderid": 1},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return errors.Trace(err)
	}
	_, err = d.Collection("orders").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "status", Value: 1}, {Key: "timestamp", Value: 1}},
	})
	if err != nil {
		return errors.Trace(err)
	}
	_, err = d.Collection("ratings").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userid", Value: 1}, {Key: "itemid", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return errors.Trace(err)
}

func (db *MongoDB) Ping() error {
	return errors.Trace(db.client.Ping(context.Background(), nil))
}

func (db *MongoDB) Close() error {
	return errors.Trace(db.client.Disconnect(context.Background()))
}

// Purge removes all documents while keeping collections and indices.
func (db *MongoDB) Purge() error {
	ctx := context.Background()
	d := db.client.Database(db.dbName)
	for _, collectionName := range []string{"users", "items", "orders", "ratings"} {
		if _, err := d.Collection(collectionName).DeleteMany(ctx, bson.D{}); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

func (db *MongoDB) BatchInsertUsers(ctx context.Context, users []User) error {
	if len(users) == 0 {
		return nil
	}
	c := db.client.Database(db.dbName).Collection("users")
	var models []mongo.WriteModel
	for _, user := range users {
		models = append(models, mongo.NewReplaceOneModel().
			SetUpsert(true).
			SetFilter(bson.M{"userid": user.UserId}).
			SetReplacement(user))
	}
	_, err := c.BulkWrite(ctx, models)
	return errors.Trace(err)
}

func (db *MongoDB) GetUser(ctx context.Context, userId string) (User, error) {
	var user User
	c := db.client.Database(db.dbName).Collection("users")
	err := c.FindOne(ctx, bson.M{"userid": userId}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return User{}, errors.Annotate(ErrUserNotExist, userId)
	} else if err != nil {
		return User{}, errors.Trace(err)
	}
	return user, nil
}

func (db *MongoDB) BatchInsertItems(ctx context.Context, items []Item) error {
	if len(items) == 0 {
		return nil
	}
	c := db.client.Database(db.dbName).Collection("items")
	var models []mongo.WriteModel
	for _, item := range items {
		models = append(models, mongo.NewReplaceOneModel().
			SetUpsert(true).
			SetFilter(bson.M{"itemid": item.ItemId}).
			SetReplacement(item))
	}
	_, err := c.BulkWrite(ctx, models)
	return errors.Trace(err)
}

func (db *MongoDB) GetItem(ctx context.Context, itemId string) (Item, error) {
	var item Item
	c := db.client.Database(db.dbName).Collection("items")
	err := c.FindOne(ctx, bson.M{"itemid": itemId}).Decode(&item)
	if err == mongo.ErrNoDocuments {
		return Item{}, errors.Annotate(ErrItemNotExist, itemId)
	} else if err != nil {
		return Item{}, errors.Trace(err)
	}
	return item, nil
}

func (db *MongoDB) GetItems(ctx context.Context, itemIds []string) ([]Item, error) {
	if len(itemIds) == 0 {
		return nil, nil
	}
	c := db.client.Database(db.dbName).Collection("items")
	r, err := c.Find(ctx, bson.M{"itemid": bson.M{"$in": itemIds}})
	if err != nil {
		return nil, errors.Trace(err)
	}
	return decodeItems(ctx, r)
}

func (db *MongoDB) GetAvailableItems(ctx context.Context) ([]Item, error) {
	c := db.client.Database(db.dbName).Collection("items")
	r, err := c.Find(ctx, bson.M{"isavailable": true})
	if err != nil {
		return nil, errors.Trace(err)
	}
	return decodeItems(ctx, r)
}

func decodeItems(ctx context.Context, r *mongo.Cursor) ([]Item, error) {
	var items []Item
	defer r.Close(ctx)
	for r.Next(ctx) {
		var item Item
		if err := r.Decode(&item); err != nil {
			return nil, errors.Trace(err)
		}
		items = append(items, item)
	}
	return items, errors.Trace(r.Err())
}

func (db *MongoDB) InsertOrder(ctx context.Context, order Order) error {
	c := db.client.Database(db.dbName).Collection("orders")
	opt := options.Replace().SetUpsert(true)
	_, err := c.ReplaceOne(ctx, bson.M{"orderid": order.OrderId}, order, opt)
	return errors.Trace(err)
}

func (db *MongoDB) BatchInsertOrders(ctx context.Context, orders []Order) error {
	if len(orders) == 0 {
		return nil
	}
	c := db.client.Database(db.dbName).Collection("orders")
	var models []mongo.WriteModel
	for _, order := range orders {
		models = append(models, mongo.NewReplaceOneModel().
			SetUpsert(true).
			SetFilter(bson.M{"orderid": order.OrderId}).
			SetReplacement(order))
	}
	_, err := c.BulkWrite(ctx, models)
	return errors.Trace(err)
}

func (db *MongoDB) GetDeliveredOrders(ctx context.Context, begin, end time.Time) ([]Order, error) {
	c := db.client.Database(db.dbName).Collection("orders")
	r, err := c.Find(ctx, bson.M{
		"status":    StatusDelivered,
		"timestamp": bson.M{"$gte": begin, "$lte": end},
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	return decodeOrders(ctx, r)
}

func (db *MongoDB) GetUserDeliveredOrders(ctx context.Context, userId string, begin time.Time) ([]Order, error) {
	c := db.client.Database(db.dbName).Collection("orders")
	r, err := c.Find(ctx, bson.M{
		"userid":    userId,
		"status":    StatusDelivered,
		"timestamp": bson.M{"$gte": begin},
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	return decodeOrders(ctx, r)
}

func decodeOrders(ctx context.Context, r *mongo.Cursor) ([]Order, error) {
	var orders []Order
	defer r.Close(ctx)
	for r.Next(ctx) {
		var order Order
		if err := r.Decode(&order); err != nil {
			return nil, errors.Trace(err)
		}
		orders = append(orders, order)
	}
	return orders, errors.Trace(r.Err())
}

func (db *MongoDB) CountDeliveredOrders(ctx context.Context) (int64, error) {
	c := db.client.Database(db.dbName).Collection("orders")
	count, err := c.CountDocuments(ctx, bson.M{"status": StatusDelivered})
	return count, errors.Trace(err)
}

// PutRating upserts a rating and refreshes the rated item's aggregates.
func (db *MongoDB) PutRating(ctx context.Context, rating Rating) error {
	c := db.client.Database(db.dbName).Collection("ratings")
	opt := options.Update().SetUpsert(true)
	_, err := c.UpdateOne(ctx,
		bson.M{"userid": rating.UserId, "itemid": rating.ItemId},
		bson.M{"$set": bson.M{
			"score":     rating.Score,
			"comment":   rating.Comment,
			"timestamp": rating.Timestamp,
		}}, opt)
	if err != nil {
		return errors.Trace(err)
	}
	// refresh item aggregates
	r, err := c.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"itemid": rating.ItemId}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"avg":   bson.M{"$avg": "$score"},
			"count": bson.M{"$sum": 1},
		}}},
	})
	if err != nil {
		return errors.Trace(err)
	}
	defer r.Close(ctx)
	if r.Next(ctx) {
		var aggregate struct {
			Avg   float64 `bson:"avg"`
			Count int     `bson:"count"`
		}
		if err = r.Decode(&aggregate); err != nil {
			return errors.Trace(err)
		}
		items := db.client.Database(db.dbName).Collection("items")
		_, err = items.UpdateOne(ctx, bson.M{"itemid": rating.ItemId},
			bson.M{"$set": bson.M{
				"averagerating": float32(aggregate.Avg),
				"ratingcount":   aggregate.Count,
			}})
		if err != nil {
			return errors.Trace(err)
		}
	}
	return errors.Trace(r.Err())
}

func (db *MongoDB) GetUserRatings(ctx context.Context, userId string) ([]Rating, error) {
	c := db.client.Database(db.dbName).Collection("ratings")
	r, err := c.Find(ctx, bson.M{"userid": userId})
	if err != nil {
		return nil, errors.Trace(err)
	}
	var ratings []Rating
	defer r.Close(ctx)
	for r.Next(ctx) {
		var rating Rating
		if err = r.Decode(&rating); err != nil {
			return nil, errors.Trace(err)
		}
		ratings = append(ratings, rating)
	}
	return ratings, errors.Trace(r.Err())
}

func (db *MongoDB) GetRatedUsers(ctx context.Context) ([]string, error) {
	c := db.client.Database(db.dbName).Collection("ratings")
	values, err := c.Distinct(ctx, "userid", bson.D{})
	if err != nil {
		return nil, errors.Trace(err)
	}
	users := make([]string, 0, len(values))
	for _, value := range values {
		if s, ok := value.(string); ok {
			users = append(users, s)
		}
	}
	return users, nil
}
