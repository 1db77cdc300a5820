// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package promhook_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	arkiv "github.com/hashicorp/go-arkiv"
	"github.com/hashicorp/go-arkiv/telemetry/promhook"
)

func TestHook_Observe(t *testing.T) {
	reg := prometheus.NewRegistry()
	hook, err := promhook.New(reg)
	require.NoError(t, err)

	observe := hook.TelemetryHook()
	observe(context.Background(), &arkiv.TelemetryData{
		Format:           "tar.gz",
		UnpackedFiles:    3,
		UnpackedDirs:     1,
		UnpackedSymlinks: 1,
		UnpackedSize:     1024,
		InputSize:        512,
		UnpackDuration:   20 * time.Millisecond,
	})
	observe(context.Background(), &arkiv.TelemetryData{
		Format:          "tar.gz",
		UnpackedFiles:   1,
		UnpackErrors:    1,
		LastUnpackError: errors.New("boom"),
	})
	observe(context.Background(), nil)

	families, err := reg.Gather()
	require.NoError(t, err)
	values := map[string]float64{}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				key := mf.GetName()
				for _, l := range m.GetLabel() {
					if l.GetName() == "kind" {
						key += "/" + l.GetValue()
					}
				}
				values[key] = m.GetCounter().GetValue()
			case m.GetHistogram() != nil:
				values[mf.GetName()] = float64(m.GetHistogram().GetSampleCount())
			}
		}
	}

	assert.Equal(t, 2.0, values["arkiv_unpacks_total"])
	assert.Equal(t, 1.0, values["arkiv_unpack_errors_total"])
	assert.Equal(t, 4.0, values["arkiv_unpacked_entries_total/file"])
	assert.Equal(t, 1.0, values["arkiv_unpacked_entries_total/dir"])
	assert.Equal(t, 1.0, values["arkiv_unpacked_entries_total/symlink"])
	assert.Equal(t, 1024.0, values["arkiv_unpacked_bytes_total"])
	assert.Equal(t, 512.0, values["arkiv_input_bytes_total"])
	assert.Equal(t, 2.0, values["arkiv_unpack_duration_seconds"])
}

func TestHook_Unpack(t *testing.T) {
	reg := prometheus.NewRegistry()
	hook, err := promhook.New(reg)
	require.NoError(t, err)

	a, err := arkiv.OpenReader(tarStream(t), "sample.tar", arkiv.WithTelemetryHook(hook.TelemetryHook()))
	require.NoError(t, err)
	defer a.Close()
	require.NoError(t, a.Unpack(context.Background(), t.TempDir()))

	assert.Equal(t, 1, testutil.CollectAndCount(reg, "arkiv_unpacks_total"))
}

func TestNew_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := promhook.New(reg)
	require.NoError(t, err)

	_, err = promhook.New(reg)
	var are prometheus.AlreadyRegisteredError
	assert.ErrorAs(t, err, &are)
}
