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

package mf

import (
	"context"
	"fmt"
	"time"

	"github.com/juju/errors"
	"github.com/rafay-ai/voiceguide-recommend/base/floats"
	"github.com/rafay-ai/voiceguide-recommend/base/log"
	"github.com/rafay-ai/voiceguide-recommend/dataset"
	"github.com/rafay-ai/voiceguide-recommend/model"
	"go.uber.org/zap"
)

// SVD factorizes the strength matrix by stochastic gradient descent on the
// observed entries only. The affinity of user u to item i is estimated by:
//
//	\hat r_{ui} = p_u^T q_i
//
// Hyper-parameters:
//
//	 Reg 		- The regularization parameter of the cost function that is
//				  optimized. Default is 0.05.
//	 Lr 		- The learning rate of SGD. Default is 0.01.
//	 NFactors	- The number of latent factors. Default is 8.
//	 NEpochs	- The number of iterations of the SGD procedure. Default is 50.
//	 InitMean	- The mean of initial random latent factors. Default is 0.
//	 InitStdDev	- The standard deviation of initial random latent factors. Default is 0.1.
type SVD struct {
	BaseMatrixFactorization
	// Hyper parameters
	nFactors   int
	nEpochs    int
	lr         float32
	reg        float32
	initMean   float32
	initStdDev float32
}

// NewSVD creates an SVD model.
func NewSVD(params model.Params) *SVD {
	svd := new(SVD)
	svd.SetParams(params)
	return svd
}

// SetParams sets hyper-parameters of the SVD model.
func (svd *SVD) SetParams(params model.Params) {
	svd.BaseModel.SetParams(params)
	svd.nFactors = svd.Params.GetInt(model.NFactors, 8)
	svd.nEpochs = svd.Params.GetInt(model.NEpochs, 50)
	svd.lr = svd.Params.GetFloat32(model.Lr, 0.01)
	svd.reg = svd.Params.GetFloat32(model.Reg, 0.05)
	svd.initMean = svd.Params.GetFloat32(model.InitMean, 0)
	svd.initStdDev = svd.Params.GetFloat32(model.InitStdDev, 0.1)
}

func (svd *SVD) init(trainSet *dataset.Dataset, rank int) {
	svd.UserFactor = svd.GetRandomGenerator().NormalMatrix(trainSet.CountUsers(), rank, svd.initMean, svd.initStdDev)
	svd.ItemFactor = svd.GetRandomGenerator().NormalMatrix(trainSet.CountItems(), rank, svd.initMean, svd.initStdDev)
	svd.BaseMatrixFactorization.Init(trainSet)
}

// Fit the SVD model. Returns dataset.ErrInsufficientData when the matrix is
// too degenerate to support a rank of at least one.
func (svd *SVD) Fit(ctx context.Context, trainSet, valSet *dataset.Dataset, config *FitConfig) error {
	config = config.LoadDefaultIfNil()
	if err := trainSet.Check(); err != nil {
		return errors.Trace(err)
	}
	rank := effectiveRank(svd.nFactors, trainSet.CountUsers(), trainSet.CountItems())
	if rank < 1 {
		return errors.Trace(dataset.ErrInsufficientData)
	}
	log.Logger().Info("fit svd",
		zap.Int("train_set_size", trainSet.CountFeedback()),
		zap.Int("val_set_size", valSet.CountFeedback()),
		zap.Int("rank", rank),
		zap.Any("params", svd.GetParams()))
	svd.init(trainSet, rank)
	// buffers reused across samples
	userGrad := make([]float32, rank)
	itemGrad := make([]float32, rank)
	// visit users in a shuffled but seeded order each epoch
	order := make([]int32, trainSet.CountUsers())
	for i := range order {
		order[i] = int32(i)
	}
	rng := svd.GetRandomGenerator()
	for epoch := 1; epoch <= svd.nEpochs; epoch++ {
		select {
		case <-ctx.Done():
			return errors.Trace(ctx.Err())
		default:
		}
		fitStart := time.Now()
		rng.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
		cost := float32(0)
		for _, userIndex := range order {
			for _, t := range trainSet.GetUserFeedback()[userIndex] {
				itemIndex, strength := t.A, t.B
				diff := strength - svd.internalPredict(userIndex, itemIndex)
				cost += diff * diff
				// p_u <- p_u + lr * (diff * q_i - reg * p_u)
				floats.MulConstTo(svd.ItemFactor[itemIndex], diff, userGrad)
				floats.MulConstAddTo(svd.UserFactor[userIndex], -svd.reg, userGrad)
				// q_i <- q_i + lr * (diff * p_u - reg * q_i)
				floats.MulConstTo(svd.UserFactor[userIndex], diff, itemGrad)
				floats.MulConstAddTo(svd.ItemFactor[itemIndex], -svd.reg, itemGrad)
				floats.MulConstAddTo(userGrad, svd.lr, svd.UserFactor[userIndex])
				floats.MulConstAddTo(itemGrad, svd.lr, svd.ItemFactor[itemIndex])
			}
		}
		// Cross validation
		if epoch%config.Verbose == 0 || epoch == svd.nEpochs {
			fields := []zap.Field{
				zap.String("fit_time", time.Since(fitStart).String()),
				zap.Float32("cost", cost),
			}
			if valSet.CountFeedback() > 0 {
				scores := Evaluate(svd, valSet, trainSet, config.TopK, config.Candidates, config.Jobs, NDCG, Precision, Recall)
				fields = append(fields,
					zap.Float32(fmt.Sprintf("NDCG@%v", config.TopK), scores[0]),
					zap.Float32(fmt.Sprintf("Precision@%v", config.TopK), scores[1]),
					zap.Float32(fmt.Sprintf("Recall@%v", config.TopK), scores[2]))
			}
			log.Logger().Debug(fmt.Sprintf("fit svd %v/%v", epoch, svd.nEpochs), fields...)
		}
	}
	log.Logger().Info("fit svd complete",
		zap.Int("users", trainSet.CountUsers()),
		zap.Int("items", trainSet.CountItems()))
	return nil
}
