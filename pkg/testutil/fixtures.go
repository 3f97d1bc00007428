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

package testutil

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/NVIDIA/radiodeck/api/radiodeck/v1alpha1"
)

// UEConf is the stock srsUE configuration the channel patches are cut
// against.
const UEConf = `#####################################################################
# srsUE configuration file
#####################################################################
# RF configuration
#####################################################################
[rf]
dl_earfcn = 3400
freq_offset = 0
tx_gain = 80
#rx_gain = 40
#nof_antennas = 1
device_name = auto
device_args = auto
time_adv_nsamples = auto
#####################################################################
# USIM configuration
#####################################################################
[usim]
mode = soft
algo = milenage
opc  = 63BFA50EE6523365FF14C1F45F88737D
k    = 00112233445566778899aabbccddeeff
imsi = 001010123456780
imei = 353490069873319
`

// ENBConf is the stock srsENB configuration the channel patches are cut
// against.
const ENBConf = `#####################################################################
# srsENB configuration file
#####################################################################
# eNB configuration
#####################################################################
[enb]
enb_id = 0x19B
mcc = 001
mnc = 01
mme_addr = 127.0.1.100
gtp_bind_addr = 127.0.1.1
s1c_bind_addr = 127.0.1.1
n_prb = 50
#tm = 4
#nof_ports = 2
#####################################################################
# eNB configuration files
#####################################################################
[enb_files]
sib_config = sib.conf
rr_config  = rr.conf
drb_config = drb.conf
#####################################################################
# RF configuration
#####################################################################
[rf]
dl_earfcn = 3400
tx_gain = 80
rx_gain = 40
#device_name = auto
#device_args = auto
#time_adv_nsamples = auto
`

// SIBConf is the stock srsENB system information configuration.
const SIBConf = `mib_config =
{
  phich_length = "normal";
  phich_resources = "1";
};
sib1 =
{
  intra_freq_reselection = "Allowed";
  q_rx_lev_min = -65;
  //p_max = 3;
  cell_barred = "NotBarred"
  si_window_length = 20;
};
sib2 =
{
  rr_config_common_sib =
  {
    prach_cnfg =
    {
      root_sequence_index = 128;
      prach_cnfg_info =
      {
        high_speed_flag = false;
        prach_config_index = 3;
        prach_freq_offset = 4;
        zero_correlation_zone_config = 5;
      };
    };
  };
};
`

// SrsLTEConfigs maps file names to their stock content.
func SrsLTEConfigs() map[string]string {
	return map[string]string{
		"ue.conf":  UEConf,
		"enb.conf": ENBConf,
		"sib.conf": SIBConf,
	}
}

// ProfileYAML is a complete NodeProfile document.
const ProfileYAML = `apiVersion: radiodeck.nvidia.com/v1alpha1
kind: NodeProfile
metadata:
  name: cellsdr1-ustar
spec:
  privilege: none
  repository:
    keyserver: hkp://keyserver.ubuntu.com:80
    ppa: ppa:srslte/releases
  packages:
    srslte:
      name: srslte
      extraDeps:
        - uhd-host
  firmware:
    command: uhd_images_downloader
    args: ["-t", "x3xx"]
  channel:
    configDir: /etc/srslte
    backup: true
  retry:
    maxAttempts: 5
    initialInterval: 2s
    maxInterval: 30s
`

// NodeProfile returns a defaulted, unprivileged profile rooted at configDir.
func NodeProfile(configDir string) *v1alpha1.NodeProfile {
	p := &v1alpha1.NodeProfile{
		ObjectMeta: metav1.ObjectMeta{
			Name: "test-node",
		},
		Spec: v1alpha1.NodeProfileSpec{
			Privilege: v1alpha1.PrivilegeNone,
			Channel: v1alpha1.Channel{
				ConfigDir: configDir,
			},
		},
	}
	v1alpha1.SetDefaults(p)
	return p
}
