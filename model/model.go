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

package model

// Model is the interface for hyper-parameterized models.
type Model interface {
	// SetParams sets hyper-parameters for the model.
	SetParams(params Params)
	// GetParams returns all hyper-parameters.
	GetParams() Params
	// Clear resets the model to an untrained state.
	Clear()
}

// BaseModel carries hyper-parameters and the seeded random generator shared
// by all models.
type BaseModel struct {
	Params    Params          // hyper-parameters
	rng       RandomGenerator // random generator
	randState int64           // random seed
}

// SetParams sets hyper-parameters for the BaseModel.
func (model *BaseModel) SetParams(params Params) {
	model.Params = params
	model.randState = model.Params.GetInt64(RandomState, 0)
	model.rng = NewRandomGenerator(model.randState)
}

// GetParams returns all hyper-parameters.
func (model *BaseModel) GetParams() Params {
	return model.Params
}

// GetRandomGenerator returns the seeded random generator.
func (model *BaseModel) GetRandomGenerator() RandomGenerator {
	return model.rng
}
