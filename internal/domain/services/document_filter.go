package services

import (
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/reglet-dev/b2cdeploy/internal/domain/entities"
)

// DocumentEnv defines the variables available during filter expression evaluation.
type DocumentEnv struct {
	ID       string `expr:"id"`
	ParentID string `expr:"parentId"`
	File     string `expr:"file"`
}

// NewDocumentEnv builds the evaluation environment for a document.
func NewDocumentEnv(doc entities.PolicyDocument) DocumentEnv {
	return DocumentEnv{
		ID:       doc.ID,
		ParentID: doc.ParentID,
		File:     doc.SourceFile,
	}
}

// CompileDocumentFilter compiles a --filter expression. The expression must
// evaluate to a boolean.
func CompileDocumentFilter(expression string) (*vm.Program, error) {
	return expr.Compile(expression, expr.Env(DocumentEnv{}), expr.AsBool())
}

// DocumentFilter selects which documents of a plan are published.
type DocumentFilter struct {
	// Exclusive mode: only include specified policies
	selectedIDs map[string]bool

	excludedIDs map[string]bool

	filterProgram    *vm.Program
	includeAncestors bool
}

// NewDocumentFilter initializes a new empty filter.
func NewDocumentFilter() *DocumentFilter {
	return &DocumentFilter{
		selectedIDs: make(map[string]bool),
		excludedIDs: make(map[string]bool),
	}
}

// WithSelectedPolicies restricts publishing to the specified policy ids.
func (f *DocumentFilter) WithSelectedPolicies(ids []string) *DocumentFilter {
	f.selectedIDs = toSet(ids)
	return f
}

// WithExcludedPolicies excludes specific policy ids.
func (f *DocumentFilter) WithExcludedPolicies(ids []string) *DocumentFilter {
	f.excludedIDs = toSet(ids)
	return f
}

// WithFilterExpression applies a compiled Expr program for advanced filtering.
func (f *DocumentFilter) WithFilterExpression(program *vm.Program) *DocumentFilter {
	f.filterProgram = program
	return f
}

// WithAncestors makes Apply keep the base policy chain of every selected document.
func (f *DocumentFilter) WithAncestors(include bool) *DocumentFilter {
	f.includeAncestors = include
	return f
}

// IsEmpty reports whether the filter selects every document.
func (f *DocumentFilter) IsEmpty() bool {
	return len(f.selectedIDs) == 0 && len(f.excludedIDs) == 0 && f.filterProgram == nil
}

// Matches evaluates whether a document matches the filter criteria.
// It returns a reason when the document is skipped.
func (f *DocumentFilter) Matches(doc entities.PolicyDocument) (bool, string) {
	var specs []DocumentSpecification

	if len(f.selectedIDs) > 0 {
		specs = append(specs, NewSelectedDocumentsSpecification(f.selectedIDs))
	}
	if len(f.excludedIDs) > 0 {
		specs = append(specs, NewExcludedDocumentsSpecification(f.excludedIDs))
	}
	if f.filterProgram != nil {
		specs = append(specs, NewExpressionSpecification(f.filterProgram))
	}

	return NewAndSpecification(specs...).IsSatisfiedBy(doc)
}

// SkippedDocument records why a document was left out of a filtered plan.
type SkippedDocument struct {
	ID     string
	Reason string
}

// Apply restricts the plan to matching documents, plus their ancestors when
// WithAncestors is set, and reports every document it left out. The plan must
// already be complete, so every ancestor chain is finite and present.
//
// Excluded policies stay excluded even when they are ancestors of a selected
// document.
func (f *DocumentFilter) Apply(plan *entities.DeploymentPlan) (*entities.DeploymentPlan, []SkippedDocument) {
	if f.IsEmpty() {
		return plan, nil
	}

	var (
		all      []entities.PolicyDocument
		selected = make(map[string]bool)
		reasons  = make(map[string]string)
		matched  []string
	)
	for _, wave := range plan.Waves {
		for _, doc := range wave.Documents {
			all = append(all, doc)
			ok, reason := f.Matches(doc)
			if !ok {
				reasons[doc.ID] = reason
				continue
			}
			selected[doc.ID] = true
			matched = append(matched, doc.ID)
		}
	}

	if f.includeAncestors {
		for id := range NewWaveScheduler().Ancestors(all, matched) {
			if f.excludedIDs[id] {
				continue
			}
			selected[id] = true
		}
	}

	var skipped []SkippedDocument
	for _, doc := range all {
		if !selected[doc.ID] {
			skipped = append(skipped, SkippedDocument{ID: doc.ID, Reason: reasons[doc.ID]})
		}
	}

	return plan.Restrict(selected), skipped
}

// toSet converts a slice to a map (set)
func toSet(slice []string) map[string]bool {
	s := make(map[string]bool, len(slice))
	for _, item := range slice {
		s[item] = true
	}
	return s
}
