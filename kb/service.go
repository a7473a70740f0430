// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package kb

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
)

// IndexInfo describes one knowledge base found under the storage root.
type IndexInfo struct {
	KBID   string `json:"kb_id"`
	Path   string `json:"path"`
	Cached bool   `json:"cached"`
}

// Service ties the registry and tracker to the storage root for the
// lifecycle operations the HTTP surface exposes.
type Service struct {
	storageDir string
	registry   *Registry
	tracker    *Tracker
	logger     *slog.Logger
}

// NewService creates the lifecycle service.
func NewService(storageDir string, registry *Registry, tracker *Tracker) *Service {
	return &Service{
		storageDir: storageDir,
		registry:   registry,
		tracker:    tracker,
		logger:     slog.Default().With("component", "kb-service"),
	}
}

// Registry returns the engine registry.
func (s *Service) Registry() *Registry { return s.registry }

// Tracker returns the job tracker.
func (s *Service) Tracker() *Tracker { return s.tracker }

// StorageDir returns the storage root path.
func (s *Service) StorageDir() string { return s.storageDir }

// Exists reports whether a storage directory exists for kbID.
func (s *Service) Exists(kbID string) bool {
	info, err := os.Stat(Path(s.storageDir, kbID))
	return err == nil && info.IsDir()
}

// Delete evicts kbID's engine and job record and removes its storage
// directory. It reports whether a directory existed to remove.
func (s *Service) Delete(kbID string) (bool, error) {
	s.registry.Remove(kbID)
	s.tracker.Forget(kbID)

	dir := Path(s.storageDir, kbID)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return false, nil
	}
	if err := os.RemoveAll(dir); err != nil {
		return false, fmt.Errorf("removing %s: %w", dir, err)
	}

	s.logger.Info("knowledge base deleted", "kb_id", kbID)
	return true, nil
}

// List enumerates the knowledge bases present under the storage root,
// sorted by id.
func (s *Service) List() ([]IndexInfo, error) {
	entries, err := os.ReadDir(s.storageDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []IndexInfo{}, nil
		}
		return nil, fmt.Errorf("reading storage root: %w", err)
	}

	infos := []IndexInfo{}
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), dirPrefix) {
			continue
		}
		kbID := strings.TrimPrefix(entry.Name(), dirPrefix)
		infos = append(infos, IndexInfo{
			KBID:   kbID,
			Path:   Path(s.storageDir, kbID),
			Cached: s.registry.Cached(kbID),
		})
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].KBID < infos[j].KBID })
	return infos, nil
}

// Instances returns the number of cached engines, for health reporting.
func (s *Service) Instances() int {
	return s.registry.Count()
}

// Close shuts down every cached engine.
func (s *Service) Close() {
	s.registry.CloseAll()
}
