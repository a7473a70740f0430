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

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/poiesic/graphkb/core"
	"github.com/poiesic/graphkb/graph"
	"github.com/poiesic/graphkb/ingestion"
	"github.com/poiesic/graphkb/kb"
)

type handlers struct {
	service  *kb.Service
	pipeline *ingestion.Pipeline
	reader   *graph.Reader
	logger   *slog.Logger
}

// health reports service identity and the number of cached engines.
func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "healthy",
		"service":     "graphkb",
		"storage_dir": h.service.StorageDir(),
		"instances":   h.service.Instances(),
	})
}

type indexRequest struct {
	KBID      string          `json:"kb_id"`
	Documents []core.Document `json:"documents"`
}

// index accepts a document batch and schedules background indexing.
func (h *handlers) index(w http.ResponseWriter, r *http.Request) {
	var req indexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.KBID == "" {
		writeError(w, http.StatusBadRequest, "kb_id is required")
		return
	}

	err := h.pipeline.Submit(req.KBID, req.Documents)
	switch {
	case errors.Is(err, core.ErrNoDocuments):
		writeError(w, http.StatusBadRequest, "documents list is empty")
		return
	case errors.Is(err, core.ErrIndexingInProgress):
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "already_indexing",
			"kb_id":   req.KBID,
			"message": "An indexing job for this knowledge base is already running",
		})
		return
	case err != nil:
		h.logger.Error("submitting index job", "kb_id", req.KBID, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to schedule indexing")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "accepted",
		"kb_id":   req.KBID,
		"message": fmt.Sprintf("Indexing %d documents in background", len(req.Documents)),
	})
}

type statusResponse struct {
	KBID string `json:"kb_id"`
	core.IndexJob
}

// status reports the indexing job state for one knowledge base.
func (h *handlers) status(w http.ResponseWriter, r *http.Request) {
	kbID := r.PathValue("kb_id")
	job := h.service.Tracker().Status(kbID)
	writeJSON(w, http.StatusOK, statusResponse{KBID: kbID, IndexJob: job})
}

type queryRequest struct {
	KBID     string `json:"kb_id"`
	Question string `json:"question"`
	Mode     string `json:"mode"`
}

// query answers a question against an indexed knowledge base.
func (h *handlers) query(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.KBID == "" {
		writeError(w, http.StatusBadRequest, "kb_id is required")
		return
	}
	if err := core.ValidateQuestion(req.Question); err != nil {
		writeError(w, http.StatusBadRequest, "question is empty")
		return
	}

	mode, err := core.ParseQueryMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if !h.service.Exists(req.KBID) {
		writeError(w, http.StatusNotFound, "knowledge base not found; index documents first")
		return
	}

	eng, err := h.service.Registry().GetOrCreate(r.Context(), req.KBID)
	if err != nil {
		h.logger.Error("obtaining engine for query", "kb_id", req.KBID, "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	answer, err := eng.Query(r.Context(), req.Question, mode)
	if err != nil {
		h.logger.Error("query failed", "kb_id", req.KBID, "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"kb_id":    req.KBID,
		"question": req.Question,
		"mode":     string(mode),
		"answer":   answer,
	})
}

// deleteIndex removes a knowledge base entirely.
func (h *handlers) deleteIndex(w http.ResponseWriter, r *http.Request) {
	kbID := r.PathValue("kb_id")

	deleted, err := h.service.Delete(kbID)
	if err != nil {
		h.logger.Error("deleting knowledge base", "kb_id", kbID, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to delete knowledge base")
		return
	}

	status := "not_found"
	if deleted {
		status = "deleted"
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": status,
		"kb_id":  kbID,
	})
}

// listIndexes enumerates the knowledge bases under the storage root.
func (h *handlers) listIndexes(w http.ResponseWriter, r *http.Request) {
	infos, err := h.service.List()
	if err != nil {
		h.logger.Error("listing knowledge bases", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to list knowledge bases")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"indexes": infos,
		"total":   len(infos),
	})
}

type graphResponse struct {
	KBID string `json:"kb_id"`
	*core.GraphSnapshot
}

// readGraph returns a truncated snapshot of a knowledge base's graph.
// A missing knowledge base is not an error here.
func (h *handlers) readGraph(w http.ResponseWriter, r *http.Request) {
	kbID := r.PathValue("kb_id")

	limit := graph.DefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	snapshot, err := h.reader.Read(kbID, limit)
	if err != nil {
		h.logger.Error("reading graph", "kb_id", kbID, "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, graphResponse{KBID: kbID, GraphSnapshot: snapshot})
}
