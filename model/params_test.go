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

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParams(t *testing.T) {
	p := Params{
		Lr:          float32(0.1),
		Reg:         0.2,
		NEpochs:     100,
		NFactors:    30,
		RandomState: 0,
	}
	assert.Equal(t, float32(0.1), p.GetFloat32(Lr, 0))
	assert.Equal(t, float32(0.2), p.GetFloat32(Reg, 0))
	assert.Equal(t, 100, p.GetInt(NEpochs, 0))
	assert.Equal(t, 30, p.GetInt(NFactors, 0))
	assert.Equal(t, int64(0), p.GetInt64(RandomState, 42))
	// defaults
	assert.Equal(t, float32(0.01), p.GetFloat32(InitStdDev, 0.01))
	assert.Equal(t, 10, Params{}.GetInt(NFactors, 10))
	assert.Equal(t, "a", Params{}.GetString("unknown", "a"))
}

func TestParams_Copy(t *testing.T) {
	p := Params{Lr: float32(0.1)}
	q := p.Copy()
	q[Lr] = float32(0.2)
	assert.Equal(t, float32(0.1), p.GetFloat32(Lr, 0))
	assert.Equal(t, float32(0.2), q.GetFloat32(Lr, 0))
}

func TestParams_Overwrite(t *testing.T) {
	a := Params{Lr: float32(0.1), NEpochs: 10}
	b := Params{NEpochs: 20, NFactors: 8}
	c := a.Overwrite(b)
	assert.Equal(t, float32(0.1), c.GetFloat32(Lr, 0))
	assert.Equal(t, 20, c.GetInt(NEpochs, 0))
	assert.Equal(t, 8, c.GetInt(NFactors, 0))
}

func TestRandomGenerator_Deterministic(t *testing.T) {
	a := NewRandomGenerator(42).NewNormalVector(8, 0, 0.1)
	b := NewRandomGenerator(42).NewNormalVector(8, 0, 0.1)
	assert.Equal(t, a, b)
	m := NewRandomGenerator(42).NormalMatrix(3, 4, 0, 0.1)
	assert.Len(t, m, 3)
	assert.Len(t, m[0], 4)
}
