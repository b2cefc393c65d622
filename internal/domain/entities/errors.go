package entities

import (
	"errors"
	"fmt"
	"strings"
)

// Settings resolution failures. Each one is reported to the user on its own.
var (
	ErrNoEnvironments      = errors.New("no environments specified in settings")
	ErrEnvironmentNotFound = errors.New("environment was not found in settings")
	ErrTenantMissing       = errors.New("tenant not set for environment")
)

// UnresolvedDocument is a document whose base policy chain never reaches a root.
type UnresolvedDocument struct {
	ID         string `json:"id" yaml:"id"`
	ParentID   string `json:"parent_id" yaml:"parent_id"`
	SourceFile string `json:"source_file" yaml:"source_file"`
}

// UnresolvableDependencyError indicates that some documents can never be deployed
// because their base policy is missing or part of a cycle.
type UnresolvableDependencyError struct {
	Documents []UnresolvedDocument
}

func (e *UnresolvableDependencyError) Error() string {
	parts := make([]string, len(e.Documents))
	for i, doc := range e.Documents {
		parts[i] = fmt.Sprintf("%s (base policy %s)", doc.ID, doc.ParentID)
	}
	return fmt.Sprintf("%d policies cannot be deployed due to missing base policy: %s",
		len(e.Documents), strings.Join(parts, ", "))
}

// IDs returns the ids of the unresolved documents.
func (e *UnresolvableDependencyError) IDs() []string {
	ids := make([]string, len(e.Documents))
	for i, doc := range e.Documents {
		ids[i] = doc.ID
	}
	return ids
}

// DuplicateDocumentError indicates the same PolicyId is declared by more than one file.
type DuplicateDocumentError struct {
	ID    string
	Files []string
}

func (e *DuplicateDocumentError) Error() string {
	return fmt.Sprintf("policy %s is declared by multiple files: %s", e.ID, strings.Join(e.Files, ", "))
}

// MissingDocumentIDError indicates a document without a PolicyId.
type MissingDocumentIDError struct {
	SourceFile string
}

func (e *MissingDocumentIDError) Error() string {
	return fmt.Sprintf("policy file %s does not declare a PolicyId", e.SourceFile)
}
