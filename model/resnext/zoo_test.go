// Copyright 2025 Lattice ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package resnext

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lattice-ml/lattice/backend/cpu"
)

func TestZoo_Presets(t *testing.T) {
	backend := cpu.New()

	tests := []struct {
		name        string
		build       func() (*ResNeXt[*cpu.CPUBackend], error)
		depth       int
		cardinality int
		useSE       bool
	}{
		{"resnext50_32x4d", func() (*ResNeXt[*cpu.CPUBackend], error) {
			return ResNeXt50_32x4d(backend)
		}, 50, 32, false},
		{"resnext101_32x4d", func() (*ResNeXt[*cpu.CPUBackend], error) {
			return ResNeXt101_32x4d(backend)
		}, 101, 32, false},
		{"resnext101_64x4d", func() (*ResNeXt[*cpu.CPUBackend], error) {
			return ResNeXt101_64x4d(backend)
		}, 101, 64, false},
		{"se_resnext50_32x4d", func() (*ResNeXt[*cpu.CPUBackend], error) {
			return SEResNeXt50_32x4d(backend)
		}, 50, 32, true},
		{"se_resnext101_32x4d", func() (*ResNeXt[*cpu.CPUBackend], error) {
			return SEResNeXt101_32x4d(backend)
		}, 101, 32, true},
		{"se_resnext101_64x4d", func() (*ResNeXt[*cpu.CPUBackend], error) {
			return SEResNeXt101_64x4d(backend)
		}, 101, 64, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := tt.build()
			require.NoError(t, err)

			cfg := m.Config()
			assert.Equal(t, tt.depth, cfg.Depth)
			assert.Equal(t, tt.cardinality, cfg.Cardinality)
			assert.Equal(t, 4, cfg.BottleneckWidth)
			assert.Equal(t, tt.useSE, cfg.UseSE)
			assert.Equal(t, 1000, m.Classes())

			if tt.depth == 101 {
				assert.Len(t, m.Stage(2), 23)
			} else {
				assert.Len(t, m.Stage(2), 6)
			}
		})
	}
}

func TestZoo_Options(t *testing.T) {
	backend := cpu.New()

	m, err := New(50, 32, 4, false, backend, WithClasses(21), WithLastGamma())
	require.NoError(t, err)
	assert.Equal(t, 21, m.Classes())
	assert.True(t, m.Config().LastGamma)

	_, err = New(34, 32, 4, false, backend)
	var confErr *ConfigurationError
	assert.ErrorAs(t, err, &confErr)
}

func TestZoo_WithLabels(t *testing.T) {
	backend := cpu.New()

	path := filepath.Join(t.TempDir(), "labels.txt")
	require.NoError(t, os.WriteFile(path, []byte(
		"n01440764\ttench\ttench, Tinca tinca\n"+
			"n01443537\tgoldfish\tgoldfish, Carassius auratus\n"), 0o644))

	m, err := ResNeXt50_32x4d(backend, WithClasses(2), WithLabels(path))
	require.NoError(t, err)
	require.NotNil(t, m.Attributes())
	assert.Equal(t, 2, m.Attributes().Len())
	assert.Equal(t, "goldfish", m.Attributes().Class(1))
}

func TestZoo_WithPretrained_MissingFile(t *testing.T) {
	backend := cpu.New()

	_, err := ResNeXt50_32x4d(backend, WithPretrained("/does/not/exist.ltc"))
	assert.Error(t, err)
}
