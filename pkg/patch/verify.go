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
	"errors"
	"fmt"
	"strconv"

	"gopkg.in/ini.v1"

	"github.com/NVIDIA/radiodeck/api/radiodeck/v1alpha1"
)

// ErrVerifyFailed is returned when a diff applied cleanly but the result
// does not carry the requested channel parameters.
var ErrVerifyFailed = errors.New("patched file does not carry the channel parameters")

// Setting is one INI value a patched file must carry.
type Setting struct {
	Section string
	Key     string
	Value   string
}

func ueSettings(c v1alpha1.ChannelParams) []Setting {
	return []Setting{
		{Section: "rf", Key: "dl_earfcn", Value: strconv.Itoa(c.EARFCN)},
		{Section: "rf", Key: "tx_gain", Value: formatNumber(c.UplinkAmplitude)},
		{Section: "rf", Key: "rx_gain", Value: formatNumber(c.DownlinkGain)},
	}
}

func enbSettings(c v1alpha1.ChannelParams) []Setting {
	return []Setting{
		{Section: "enb", Key: "n_prb", Value: strconv.Itoa(c.NumResourceBlocks)},
		{Section: "rf", Key: "dl_earfcn", Value: strconv.Itoa(c.EARFCN)},
		{Section: "rf", Key: "tx_gain", Value: formatNumber(c.DownlinkGain)},
	}
}

// verify parses content as INI and checks every setting in want.
func verify(target string, content []byte, want []Setting) error {
	if len(want) == 0 {
		return nil
	}

	cfg, err := ini.Load(content)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrVerifyFailed, target, err)
	}

	for _, s := range want {
		section, err := cfg.GetSection(s.Section)
		if err != nil {
			return fmt.Errorf("%w: %s has no [%s] section", ErrVerifyFailed, target, s.Section)
		}
		if !section.HasKey(s.Key) {
			return fmt.Errorf("%w: %s has no %s in [%s]", ErrVerifyFailed, target, s.Key, s.Section)
		}
		if got := section.Key(s.Key).String(); got != s.Value {
			return fmt.Errorf("%w: %s: [%s] %s is %q, want %q", ErrVerifyFailed, target, s.Section, s.Key, got, s.Value)
		}
	}
	return nil
}
