/*
 * Copyright (c) 2026, NVIDIA CORPORATION.  All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package state

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/NVIDIA/radiodeck/api/radiodeck/v1alpha1"
	"github.com/NVIDIA/radiodeck/internal/logger"
	"github.com/NVIDIA/radiodeck/pkg/testutil"
)

func newStore(t *testing.T) (*Store, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	log := logger.NewLogger()
	log.Out = &buf
	log.IsCI = true
	return NewStore(log, t.TempDir()), &buf
}

func condition(t string, s metav1.ConditionStatus) metav1.Condition {
	return metav1.Condition{Type: t, Status: s, Reason: "Test", LastTransitionTime: metav1.Now()}
}

func TestNewStoreDefaultPath(t *testing.T) {
	t.Setenv(EnvCachePath, "")
	t.Setenv("HOME", "/home/operator")
	s := NewStore(logger.NewLogger(), "")
	assert.Equal(t, "/home/operator/.cache/radiodeck", s.cachePath)

	t.Setenv(EnvCachePath, "/var/cache/radiodeck")
	s = NewStore(logger.NewLogger(), "")
	assert.Equal(t, "/var/cache/radiodeck", s.cachePath)

	s = NewStore(logger.NewLogger(), "/tmp/radiodeck-test")
	assert.Equal(t, "/tmp/radiodeck-test", s.cachePath)
}

func TestPathRejectsInvalidNames(t *testing.T) {
	s, _ := newStore(t)

	for _, name := range []string{"", "../../etc/passwd", "a/b", "Node", "-node", "node-"} {
		_, err := s.Path(name)
		assert.Error(t, err, "name %q", name)
	}

	path, err := s.Path("cellsdr1-ustar")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.cachePath, "cellsdr1-ustar.yaml"), path)
}

func TestSaveAndLoad(t *testing.T) {
	s, _ := newStore(t)
	profile := testutil.NodeProfile("/etc/srslte")
	profile.Status.Tokens = []string{"srslte", "channel_setup-50-3400-10-20"}
	profile.Status.Channel = &v1alpha1.ChannelParams{NumResourceBlocks: 50, EARFCN: 3400, UplinkAmplitude: 10, DownlinkGain: 20}
	profile.Status.Conditions = []metav1.Condition{condition(v1alpha1.ConditionAvailable, metav1.ConditionTrue)}

	require.NoError(t, s.Save(profile))

	got, err := s.Load(profile.Name)
	require.NoError(t, err)
	// Timestamps lose their sub-second part on the way through YAML.
	if diff := cmp.Diff(profile, got, cmpopts.IgnoreTypes(metav1.Time{})); diff != "" {
		t.Errorf("loaded profile mismatch (-saved +loaded):\n%s", diff)
	}

	rec, err := s.Get(profile.Name)
	require.NoError(t, err)
	assert.Equal(t, PhaseAvailable, rec.Phase)
	assert.Equal(t, "test-node", rec.Name)
}

func TestLoadMissing(t *testing.T) {
	s, _ := newStore(t)

	_, err := s.Load("nobody")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Get("nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestList(t *testing.T) {
	s, buf := newStore(t)

	records, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, records)

	for _, name := range []string{"node-b", "node-a"} {
		p := testutil.NodeProfile("/etc/srslte")
		p.Name = name
		require.NoError(t, s.Save(p))
	}
	testutil.MustWriteFile(t, filepath.Join(s.cachePath, "garbage.yaml"), "kind: [")
	testutil.MustWriteFile(t, filepath.Join(s.cachePath, "notes.txt"), "not a record")

	records, err = s.List()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "node-a", records[0].Name)
	assert.Equal(t, "node-b", records[1].Name)
	assert.Equal(t, PhaseUnknown, records[0].Phase)
	assert.Contains(t, buf.String(), "garbage.yaml")
}

func TestListMissingCacheDir(t *testing.T) {
	s := NewStore(logger.NewLogger(), filepath.Join(t.TempDir(), "absent"))
	records, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, records)
	_, statErr := os.Stat(s.cachePath)
	assert.True(t, os.IsNotExist(statErr), "listing must not create the cache directory")
}

func TestPhase(t *testing.T) {
	tests := []struct {
		name       string
		conditions []metav1.Condition
		want       string
	}{
		{"no conditions", nil, PhaseUnknown},
		{"available", []metav1.Condition{condition(v1alpha1.ConditionAvailable, metav1.ConditionTrue)}, PhaseAvailable},
		{"progressing", []metav1.Condition{
			condition(v1alpha1.ConditionProgressing, metav1.ConditionTrue),
			condition(v1alpha1.ConditionAvailable, metav1.ConditionFalse),
		}, PhaseProgressing},
		{"degraded wins", []metav1.Condition{
			condition(v1alpha1.ConditionAvailable, metav1.ConditionTrue),
			condition(v1alpha1.ConditionDegraded, metav1.ConditionTrue),
		}, PhaseDegraded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Phase(v1alpha1.NodeProfileStatus{Conditions: tt.conditions}))
		})
	}
}

func TestRecordsTable(t *testing.T) {
	records := Records{
		{Name: "node-a", Phase: PhaseAvailable, Steps: 5,
			Channel: &v1alpha1.ChannelParams{NumResourceBlocks: 6, EARFCN: 2850, UplinkAmplitude: 10, DownlinkGain: 20.5}},
		{Name: "node-b", Phase: PhaseDegraded, Steps: 2},
	}
	assert.Equal(t, []string{"NAME", "PHASE", "CHANNEL", "STEPS", "UPDATED"}, records.Headers())
	rows := records.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "channel_setup-6-2850-10-20.5", rows[0][2])
	assert.Equal(t, "-", rows[1][2])
	assert.Equal(t, "2", rows[1][3])
}
