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
	"github.com/rafay-ai/voiceguide-recommend/base/log"
	"github.com/rafay-ai/voiceguide-recommend/base/parallel"
	"github.com/rafay-ai/voiceguide-recommend/dataset"
	"github.com/rafay-ai/voiceguide-recommend/model"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// ALS factorizes the strength matrix by alternating least squares with
// confidence weighting. An observed strength s carries confidence
// 1 + alpha * s, unobserved pairs carry confidence 1 with preference 0.
//
// Hyper-parameters:
//
//	 Reg 		- The regularization parameter of the cost function that is
//				  optimized. Default is 0.06.
//	 NFactors	- The number of latent factors. Default is 8.
//	 NEpochs	- The number of alternating sweeps. Default is 20.
//	 Alpha		- The confidence weight of observed strengths. Default is 0.05.
//	 InitMean	- The mean of initial random latent factors. Default is 0.
//	 InitStdDev	- The standard deviation of initial random latent factors. Default is 0.1.
type ALS struct {
	BaseMatrixFactorization
	// Hyper parameters
	nFactors   int
	nEpochs    int
	reg        float64
	alpha      float64
	initMean   float64
	initStdDev float64
}

// NewALS creates an ALS model.
func NewALS(params model.Params) *ALS {
	als := new(ALS)
	als.SetParams(params)
	return als
}

// SetParams sets hyper-parameters of the ALS model.
func (als *ALS) SetParams(params model.Params) {
	als.BaseModel.SetParams(params)
	als.nFactors = als.Params.GetInt(model.NFactors, 8)
	als.nEpochs = als.Params.GetInt(model.NEpochs, 20)
	als.reg = float64(als.Params.GetFloat32(model.Reg, 0.06))
	als.alpha = float64(als.Params.GetFloat32(model.Alpha, 0.05))
	als.initMean = float64(als.Params.GetFloat32(model.InitMean, 0))
	als.initStdDev = float64(als.Params.GetFloat32(model.InitStdDev, 0.1))
}

// Fit the ALS model. Returns dataset.ErrInsufficientData when the matrix is
// too degenerate to support a rank of at least one.
func (als *ALS) Fit(ctx context.Context, trainSet, valSet *dataset.Dataset, config *FitConfig) error {
	config = config.LoadDefaultIfNil()
	if err := trainSet.Check(); err != nil {
		return errors.Trace(err)
	}
	rank := effectiveRank(als.nFactors, trainSet.CountUsers(), trainSet.CountItems())
	if rank < 1 {
		return errors.Trace(dataset.ErrInsufficientData)
	}
	log.Logger().Info("fit als",
		zap.Int("train_set_size", trainSet.CountFeedback()),
		zap.Int("val_set_size", valSet.CountFeedback()),
		zap.Int("rank", rank),
		zap.Any("params", als.GetParams()))
	nUsers, nItems := trainSet.CountUsers(), trainSet.CountItems()
	// initialize factors
	userFactor := mat.NewDense(nUsers, rank, nil)
	itemFactor := mat.NewDense(nItems, rank, nil)
	for u := 0; u < nUsers; u++ {
		userFactor.SetRow(u, als.GetRandomGenerator().NormalVector64(rank, als.initMean, als.initStdDev))
	}
	for i := 0; i < nItems; i++ {
		itemFactor.SetRow(i, als.GetRandomGenerator().NormalVector64(rank, als.initMean, als.initStdDev))
	}
	// temporary matrices per job
	temp1 := make([]*mat.Dense, config.Jobs)
	temp2 := make([]*mat.VecDense, config.Jobs)
	a := make([]*mat.Dense, config.Jobs)
	for i := 0; i < config.Jobs; i++ {
		temp1[i] = mat.NewDense(rank, rank, nil)
		temp2[i] = mat.NewVecDense(rank, nil)
		a[i] = mat.NewDense(rank, rank, nil)
	}
	c := mat.NewDense(rank, rank, nil)
	regs := make([]float64, rank)
	for i := range regs {
		regs[i] = als.reg
	}
	regI := mat.NewDiagDense(rank, regs)
	for epoch := 1; epoch <= als.nEpochs; epoch++ {
		select {
		case <-ctx.Done():
			return errors.Trace(ctx.Err())
		default:
		}
		fitStart := time.Now()
		// Recompute all user factors: x_u = (Y^T C^u Y + reg I)^{-1} Y^T C^u p(u)
		c.Mul(itemFactor.T(), itemFactor)
		err := parallel.Parallel(ctx, nUsers, config.Jobs, func(workerId, userIndex int) error {
			a[workerId].Copy(c)
			b := mat.NewVecDense(rank, nil)
			for _, t := range trainSet.GetUserFeedback()[userIndex] {
				confidence := als.alpha * float64(t.B)
				// Y^T (C^u - I) Y
				temp1[workerId].Outer(confidence, itemFactor.RowView(int(t.A)), itemFactor.RowView(int(t.A)))
				a[workerId].Add(a[workerId], temp1[workerId])
				// Y^T C^u p(u)
				temp2[workerId].ScaleVec(1+confidence, itemFactor.RowView(int(t.A)))
				b.AddVec(b, temp2[workerId])
			}
			a[workerId].Add(a[workerId], regI)
			if err := temp1[workerId].Inverse(a[workerId]); err != nil {
				return errors.Trace(err)
			}
			temp2[workerId].MulVec(temp1[workerId], b)
			userFactor.SetRow(userIndex, temp2[workerId].RawVector().Data)
			return nil
		})
		if err != nil {
			return errors.Trace(err)
		}
		// Recompute all item factors: y_i = (X^T C^i X + reg I)^{-1} X^T C^i p(i)
		c.Mul(userFactor.T(), userFactor)
		err = parallel.Parallel(ctx, nItems, config.Jobs, func(workerId, itemIndex int) error {
			a[workerId].Copy(c)
			b := mat.NewVecDense(rank, nil)
			for _, t := range trainSet.GetItemFeedback()[itemIndex] {
				confidence := als.alpha * float64(t.B)
				temp1[workerId].Outer(confidence, userFactor.RowView(int(t.A)), userFactor.RowView(int(t.A)))
				a[workerId].Add(a[workerId], temp1[workerId])
				temp2[workerId].ScaleVec(1+confidence, userFactor.RowView(int(t.A)))
				b.AddVec(b, temp2[workerId])
			}
			a[workerId].Add(a[workerId], regI)
			if err := temp1[workerId].Inverse(a[workerId]); err != nil {
				return errors.Trace(err)
			}
			temp2[workerId].MulVec(temp1[workerId], b)
			itemFactor.SetRow(itemIndex, temp2[workerId].RawVector().Data)
			return nil
		})
		if err != nil {
			return errors.Trace(err)
		}
		// Cross validation
		if epoch%config.Verbose == 0 || epoch == als.nEpochs {
			fields := []zap.Field{
				zap.String("fit_time", time.Since(fitStart).String()),
			}
			if valSet.CountFeedback() > 0 {
				als.UserFactor = denseToRows(userFactor, nUsers, rank)
				als.ItemFactor = denseToRows(itemFactor, nItems, rank)
				scores := Evaluate(als, valSet, trainSet, config.TopK, config.Candidates, config.Jobs, NDCG, Precision, Recall)
				fields = append(fields,
					zap.Float32(fmt.Sprintf("NDCG@%v", config.TopK), scores[0]),
					zap.Float32(fmt.Sprintf("Precision@%v", config.TopK), scores[1]),
					zap.Float32(fmt.Sprintf("Recall@%v", config.TopK), scores[2]))
			}
			log.Logger().Debug(fmt.Sprintf("fit als %v/%v", epoch, als.nEpochs), fields...)
		}
	}
	// publish float32 factors for serving
	als.UserFactor = denseToRows(userFactor, nUsers, rank)
	als.ItemFactor = denseToRows(itemFactor, nItems, rank)
	als.BaseMatrixFactorization.Init(trainSet)
	log.Logger().Info("fit als complete",
		zap.Int("users", nUsers),
		zap.Int("items", nItems))
	return nil
}

func denseToRows(m *mat.Dense, rows, cols int) [][]float32 {
	ret := make([][]float32, rows)
	for i := 0; i < rows; i++ {
		ret[i] = make([]float32, cols)
		for j := 0; j < cols; j++ {
			ret[i][j] = float32(m.At(i, j))
		}
	}
	return ret
}
