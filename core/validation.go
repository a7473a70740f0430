package core

import "strings"

// ValidateDocuments checks that an index submission carries at least one
// document. Individual documents may still have empty content; those are
// skipped during ingestion rather than rejected here.
func ValidateDocuments(docs []Document) error {
	if len(docs) == 0 {
		return ErrNoDocuments
	}
	return nil
}

// ValidateQuestion checks that a query carries a non-blank question.
func ValidateQuestion(question string) error {
	if strings.TrimSpace(question) == "" {
		return ErrEmptyQuestion
	}
	return nil
}
