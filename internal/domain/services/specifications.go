package services

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/reglet-dev/b2cdeploy/internal/domain/entities"
)

// DocumentSpecification defines a condition that a policy document must meet.
type DocumentSpecification interface {
	// IsSatisfiedBy checks if the document meets the specification.
	// Returns true if satisfied, along with a reason if not (or empty if satisfied).
	IsSatisfiedBy(doc entities.PolicyDocument) (bool, string)
}

// AndSpecification combines multiple specifications with logical AND.
type AndSpecification struct {
	specs []DocumentSpecification
}

// NewAndSpecification creates a new AndSpecification.
func NewAndSpecification(specs ...DocumentSpecification) *AndSpecification {
	return &AndSpecification{specs: specs}
}

// IsSatisfiedBy checks if all specifications are satisfied.
func (s *AndSpecification) IsSatisfiedBy(doc entities.PolicyDocument) (bool, string) {
	for _, spec := range s.specs {
		if satisfied, reason := spec.IsSatisfiedBy(doc); !satisfied {
			return false, reason
		}
	}
	return true, ""
}

// SelectedDocumentsSpecification includes only the listed policy ids.
type SelectedDocumentsSpecification struct {
	ids map[string]bool
}

// NewSelectedDocumentsSpecification creates a new SelectedDocumentsSpecification.
func NewSelectedDocumentsSpecification(ids map[string]bool) *SelectedDocumentsSpecification {
	return &SelectedDocumentsSpecification{ids: ids}
}

// IsSatisfiedBy checks if the document id is in the selected list.
func (s *SelectedDocumentsSpecification) IsSatisfiedBy(doc entities.PolicyDocument) (bool, string) {
	if len(s.ids) == 0 {
		return true, "" // Not active
	}
	if s.ids[doc.ID] {
		return true, ""
	}
	return false, "excluded by --policy filter"
}

// ExcludedDocumentsSpecification excludes the listed policy ids.
type ExcludedDocumentsSpecification struct {
	ids map[string]bool
}

// NewExcludedDocumentsSpecification creates a new ExcludedDocumentsSpecification.
func NewExcludedDocumentsSpecification(ids map[string]bool) *ExcludedDocumentsSpecification {
	return &ExcludedDocumentsSpecification{ids: ids}
}

// IsSatisfiedBy checks if the document id is NOT in the excluded list.
func (s *ExcludedDocumentsSpecification) IsSatisfiedBy(doc entities.PolicyDocument) (bool, string) {
	if s.ids[doc.ID] {
		return false, "excluded by --exclude-policy"
	}
	return true, ""
}

// ExpressionSpecification filters documents using an expr program.
type ExpressionSpecification struct {
	program *vm.Program
}

// NewExpressionSpecification creates a new ExpressionSpecification.
func NewExpressionSpecification(program *vm.Program) *ExpressionSpecification {
	return &ExpressionSpecification{program: program}
}

// IsSatisfiedBy evaluates the expr program against the document.
func (s *ExpressionSpecification) IsSatisfiedBy(doc entities.PolicyDocument) (bool, string) {
	if s.program == nil {
		return true, ""
	}

	output, err := expr.Run(s.program, NewDocumentEnv(doc))
	if err != nil {
		return false, fmt.Sprintf("filter expression error: %v", err)
	}

	result, ok := output.(bool)
	if !ok {
		return false, fmt.Sprintf("filter expression did not return boolean: %v", output)
	}

	if !result {
		return false, "excluded by --filter expression"
	}

	return true, ""
}
