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

package patch

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/radiodeck/api/radiodeck/v1alpha1"
	"github.com/NVIDIA/radiodeck/internal/logger"
	"github.com/NVIDIA/radiodeck/pkg/testutil"
)

func TestVerify(t *testing.T) {
	params := v1alpha1.ChannelParams{NumResourceBlocks: 50, EARFCN: 3400, UplinkAmplitude: 80, DownlinkGain: 40}

	tests := []struct {
		name    string
		content string
		want    []Setting
		wantErr string
	}{
		{
			name:    "stock ue.conf matches its own values",
			content: testutil.UEConf,
			want:    []Setting{{Section: "rf", Key: "dl_earfcn", Value: "3400"}, {Section: "rf", Key: "tx_gain", Value: "80"}},
		},
		{
			name:    "commented key is missing",
			content: testutil.UEConf,
			want:    ueSettings(params),
			wantErr: "has no rx_gain in [rf]",
		},
		{
			name:    "stock enb.conf",
			content: testutil.ENBConf,
			want:    []Setting{{Section: "enb", Key: "n_prb", Value: "50"}, {Section: "rf", Key: "tx_gain", Value: "80"}},
		},
		{
			name:    "wrong value",
			content: testutil.ENBConf,
			want:    enbSettings(v1alpha1.ChannelParams{NumResourceBlocks: 6, EARFCN: 3400, DownlinkGain: 80}),
			wantErr: `[enb] n_prb is "50", want "6"`,
		},
		{
			name:    "missing section",
			content: testutil.UEConf,
			want:    []Setting{{Section: "enb", Key: "n_prb", Value: "50"}},
			wantErr: "has no [enb] section",
		},
		{
			name:    "nothing to check",
			content: testutil.SIBConf,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := verify("/etc/srslte/x.conf", []byte(tt.content), tt.want)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrVerifyFailed)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestBuiltinBackendVerifiesResult(t *testing.T) {
	dir := testutil.SrsLTEConfigDir(t)
	log := logger.NewLogger()
	log.Out = &bytes.Buffer{}
	log.IsCI = true
	p := New(log, nil, testutil.NodeProfile(dir).Spec)

	params := v1alpha1.ChannelParams{NumResourceBlocks: 6, EARFCN: 2850, UplinkAmplitude: 10, DownlinkGain: 20.5}
	rendered, err := p.Render(params)
	require.NoError(t, err)
	require.Equal(t, "ue.conf", rendered[0].Name)

	// A diff that applies but sets the wrong gain must not be written.
	r := rendered[0]
	r.settings = ueSettings(v1alpha1.ChannelParams{NumResourceBlocks: 6, EARFCN: 2850, UplinkAmplitude: 11, DownlinkGain: 20.5})

	err = p.backend.apply(context.Background(), r)
	require.ErrorIs(t, err, ErrVerifyFailed)
	assert.Contains(t, err.Error(), `[rf] tx_gain is "10", want "11"`)
	assert.Equal(t, testutil.UEConf, testutil.MustReadFile(t, r.Target))

	require.NoError(t, p.backend.apply(context.Background(), rendered[0]))
}
