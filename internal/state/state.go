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

// Package state keeps the outcome of the last provisioning run of every
// node profile in a local cache directory.
package state

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"time"

	"k8s.io/apimachinery/pkg/api/meta"

	"github.com/NVIDIA/radiodeck/api/radiodeck/v1alpha1"
	"github.com/NVIDIA/radiodeck/internal/logger"
	"github.com/NVIDIA/radiodeck/pkg/jyaml"
)

// EnvCachePath overrides the default cache directory.
const EnvCachePath = "RADIODECK_CACHE"

// Phases reported for a recorded run.
const (
	PhaseAvailable   = "available"
	PhaseDegraded    = "degraded"
	PhaseProgressing = "progressing"
	PhaseUnknown     = "unknown"
)

// ErrNotFound is returned when no run was recorded for a profile.
var ErrNotFound = errors.New("no recorded run")

var validName = regexp.MustCompile(`^[a-z0-9]([-a-z0-9.]*[a-z0-9])?$`)

// Record summarizes one recorded run.
type Record struct {
	Name      string                  `json:"name"`
	RunID     string                  `json:"runID,omitempty"`
	Phase     string                  `json:"phase"`
	Channel   *v1alpha1.ChannelParams `json:"channel,omitempty"`
	Steps     int                     `json:"steps"`
	UpdatedAt time.Time               `json:"updatedAt"`
	File      string                  `json:"file"`
}

// Records is a list of runs renderable as a table.
type Records []Record

// Headers implements output.TableData.
func (r Records) Headers() []string {
	return []string{"NAME", "PHASE", "CHANNEL", "STEPS", "UPDATED"}
}

// Rows implements output.TableData.
func (r Records) Rows() [][]string {
	rows := make([][]string, 0, len(r))
	for _, rec := range r {
		channel := "-"
		if rec.Channel != nil {
			channel = rec.Channel.Token()
		}
		rows = append(rows, []string{
			rec.Name,
			rec.Phase,
			channel,
			strconv.Itoa(rec.Steps),
			rec.UpdatedAt.Format(time.RFC3339),
		})
	}
	return rows
}

// Store reads and writes run records
type Store struct {
	log       logger.Logger
	cachePath string
}

// DefaultCachePath returns $RADIODECK_CACHE, or ~/.cache/radiodeck.
func DefaultCachePath() string {
	if p := os.Getenv(EnvCachePath); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".cache", "radiodeck")
}

// NewStore creates a store rooted at cachePath, or at DefaultCachePath when
// it is empty.
func NewStore(log logger.Logger, cachePath string) *Store {
	if cachePath == "" {
		cachePath = DefaultCachePath()
	}
	return &Store{
		log:       log,
		cachePath: cachePath,
	}
}

// Path returns the record file of a profile.
func (s *Store) Path(name string) (string, error) {
	if !validName.MatchString(name) {
		return "", fmt.Errorf("invalid profile name %q", name)
	}
	return filepath.Join(s.cachePath, name+".yaml"), nil
}

// Save writes the profile, including its status, as the latest run.
func (s *Store) Save(profile *v1alpha1.NodeProfile) error {
	path, err := s.Path(profile.Name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.cachePath, 0750); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	if err := jyaml.WriteFile(path, profile); err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	s.log.Debug("Recorded run of %s in %s", profile.Name, path)
	return nil
}

// Load returns the latest recorded run of a profile.
func (s *Store) Load(name string) (*v1alpha1.NodeProfile, error) {
	path, err := s.Path(name)
	if err != nil {
		return nil, err
	}
	profile, err := jyaml.UnmarshalFromFile[v1alpha1.NodeProfile](path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w for %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return &profile, nil
}

// Get returns the summary of one recorded run.
func (s *Store) Get(name string) (*Record, error) {
	profile, err := s.Load(name)
	if err != nil {
		return nil, err
	}
	path, _ := s.Path(name)
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get file info: %w", err)
	}
	rec := newRecord(profile, path, fi.ModTime())
	return &rec, nil
}

// List returns every recorded run, sorted by name. Unreadable files are
// skipped with a warning.
func (s *Store) List() (Records, error) {
	entries, err := os.ReadDir(s.cachePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache directory: %w", err)
	}

	var records Records
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}
		path := filepath.Join(s.cachePath, entry.Name())

		profile, err := jyaml.UnmarshalFromFile[v1alpha1.NodeProfile](path)
		if err != nil || profile.Kind != v1alpha1.Kind {
			s.log.Warning("Skipping unreadable run record %s", path)
			continue
		}
		info, err := entry.Info()
		if err != nil {
			s.log.Warning("Failed to get file info for %s: %v", path, err)
			continue
		}
		records = append(records, newRecord(&profile, path, info.ModTime()))
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Name < records[j].Name })
	return records, nil
}

func newRecord(profile *v1alpha1.NodeProfile, path string, modTime time.Time) Record {
	return Record{
		Name:      profile.Name,
		RunID:     profile.Status.RunID,
		Phase:     Phase(profile.Status),
		Channel:   profile.Status.Channel,
		Steps:     len(profile.Status.Steps),
		UpdatedAt: modTime,
		File:      path,
	}
}

// Phase reduces the status conditions to a single word. Degraded wins over
// Progressing, which wins over Available.
func Phase(status v1alpha1.NodeProfileStatus) string {
	switch {
	case meta.IsStatusConditionTrue(status.Conditions, v1alpha1.ConditionDegraded):
		return PhaseDegraded
	case meta.IsStatusConditionTrue(status.Conditions, v1alpha1.ConditionProgressing):
		return PhaseProgressing
	case meta.IsStatusConditionTrue(status.Conditions, v1alpha1.ConditionAvailable):
		return PhaseAvailable
	default:
		return PhaseUnknown
	}
}
