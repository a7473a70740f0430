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


package core

import "errors"

// Domain validation errors
var (
	// ErrNoDocuments indicates an index request carried no documents.
	ErrNoDocuments = errors.New("no documents provided")

	// ErrEmptyQuestion indicates a query request carried no question.
	ErrEmptyQuestion = errors.New("question is required")

	// ErrInvalidQueryMode indicates an unrecognized query mode.
	ErrInvalidQueryMode = errors.New("invalid query mode")

	// ErrIndexingInProgress indicates a knowledge base already has a running job.
	ErrIndexingInProgress = errors.New("indexing already in progress")

	// ErrKnowledgeBaseNotFound indicates no persisted index exists for the id.
	ErrKnowledgeBaseNotFound = errors.New("knowledge base not found")
)
