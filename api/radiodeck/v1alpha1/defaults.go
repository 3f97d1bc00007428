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

package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

const (
	DefaultKeyserver = "hkp://keyserver.ubuntu.com:80"
	DefaultPPA       = "ppa:srslte/releases"
	DefaultConfigDir = "/etc/srslte"
	// DefaultFirmwareCommand ships with uhd-host and fills /usr/share/uhd/images.
	DefaultFirmwareCommand = "uhd_images_downloader"
)

// DefaultNodeProfile returns the profile used when no profile file is given.
func DefaultNodeProfile() NodeProfile {
	p := NodeProfile{
		TypeMeta: metav1.TypeMeta{
			Kind:       Kind,
			APIVersion: APIVersion,
		},
		ObjectMeta: metav1.ObjectMeta{
			Name: "default",
		},
	}
	SetDefaults(&p)
	return p
}

// SetDefaults fills every unset field of the profile spec.
func SetDefaults(p *NodeProfile) {
	if p.Kind == "" {
		p.Kind = Kind
	}
	if p.APIVersion == "" {
		p.APIVersion = APIVersion
	}
	if p.Name == "" {
		p.Name = "default"
	}

	spec := &p.Spec
	if spec.Privilege == "" {
		spec.Privilege = PrivilegeSudo
	}

	if spec.Repository.Keyserver == "" {
		spec.Repository.Keyserver = DefaultKeyserver
	}
	if spec.Repository.PPA == "" {
		spec.Repository.PPA = DefaultPPA
	}

	if spec.Packages.GNURadio.Name == "" {
		spec.Packages.GNURadio = PackageSet{Name: "gnuradio"}
	}
	if spec.Packages.GNURadioCompanion.Name == "" {
		// gnuradio-companion needs the GTK introspection bindings on top of
		// the plain gnuradio package.
		spec.Packages.GNURadioCompanion = PackageSet{
			Name:      "gnuradio",
			ExtraDeps: []string{"python-gi", "python-gi-cairo", "gir1.2-gtk-3.0"},
		}
	}
	if spec.Packages.SrsLTE.Name == "" {
		spec.Packages.SrsLTE = PackageSet{
			Name:      "srslte",
			ExtraDeps: []string{"uhd-host"},
		}
	}

	if spec.Firmware.Command == "" {
		spec.Firmware.Command = DefaultFirmwareCommand
	}

	if spec.Channel.ConfigDir == "" {
		spec.Channel.ConfigDir = DefaultConfigDir
	}
	if spec.Channel.Backend == "" {
		spec.Channel.Backend = PatchBackendBuiltin
	}
}
