package services

import (
	"github.com/reglet-dev/b2cdeploy/internal/domain/entities"
)

// WaveScheduler orders policy documents into deployment waves so that every
// base policy is published before the policies that extend it.
type WaveScheduler struct{}

// NewWaveScheduler creates a new wave scheduler service
func NewWaveScheduler() *WaveScheduler {
	return &WaveScheduler{}
}

// BuildPlan groups documents into waves by level-order closure over the
// parent forest.
//
// Algorithm:
// 1. Wave 0 holds every document without a base policy
// 2. Each following wave holds the unresolved documents whose base policy is resolved
// 3. Stop once a round resolves nothing or every document is resolved
// 4. Anything still unresolved has a missing base policy, a self reference, or a cycle
//
// Within a wave documents keep their discovery order.
func (s *WaveScheduler) BuildPlan(docs []entities.PolicyDocument) (*entities.DeploymentPlan, error) {
	if err := validateDocumentIDs(docs); err != nil {
		return nil, err
	}

	plan := &entities.DeploymentPlan{}
	resolved := make(map[string]bool, len(docs))

	wave := nextWave(docs, resolved)
	for len(wave) > 0 {
		plan.Waves = append(plan.Waves, entities.DeploymentWave{
			Level:     len(plan.Waves),
			Documents: wave,
		})
		for _, doc := range wave {
			resolved[doc.ID] = true
		}
		if len(resolved) == len(docs) {
			break
		}
		wave = nextWave(docs, resolved)
	}

	if len(resolved) < len(docs) {
		return nil, &entities.UnresolvableDependencyError{Documents: unresolvedDocuments(docs, resolved)}
	}

	return plan, nil
}

// nextWave returns the documents that become deployable given the resolved set.
// It does not modify resolved.
func nextWave(docs []entities.PolicyDocument, resolved map[string]bool) []entities.PolicyDocument {
	var wave []entities.PolicyDocument
	for _, doc := range docs {
		if resolved[doc.ID] {
			continue
		}
		if doc.IsRoot() || resolved[doc.ParentID] {
			wave = append(wave, doc)
		}
	}
	return wave
}

func unresolvedDocuments(docs []entities.PolicyDocument, resolved map[string]bool) []entities.UnresolvedDocument {
	var unresolved []entities.UnresolvedDocument
	for _, doc := range docs {
		if resolved[doc.ID] {
			continue
		}
		unresolved = append(unresolved, entities.UnresolvedDocument{
			ID:         doc.ID,
			ParentID:   doc.ParentID,
			SourceFile: doc.SourceFile,
		})
	}
	return unresolved
}

// validateDocumentIDs rejects empty and duplicate policy ids.
func validateDocumentIDs(docs []entities.PolicyDocument) error {
	filesByID := make(map[string][]string, len(docs))
	var order []string

	for _, doc := range docs {
		if doc.ID == "" {
			return &entities.MissingDocumentIDError{SourceFile: doc.SourceFile}
		}
		if _, seen := filesByID[doc.ID]; !seen {
			order = append(order, doc.ID)
		}
		filesByID[doc.ID] = append(filesByID[doc.ID], doc.SourceFile)
	}

	for _, id := range order {
		if files := filesByID[id]; len(files) > 1 {
			return &entities.DuplicateDocumentError{ID: id, Files: files}
		}
	}

	return nil
}

// Ancestors returns the transitive base policies of the given ids that are
// present in docs. The ids themselves are not included unless they are an
// ancestor of another id.
//
// Used by --include-ancestors to pull the base chain into a filtered publish.
func (s *WaveScheduler) Ancestors(docs []entities.PolicyDocument, ids []string) map[string]bool {
	parentOf := make(map[string]string, len(docs))
	for _, doc := range docs {
		parentOf[doc.ID] = doc.ParentID
	}

	ancestors := make(map[string]bool)
	for _, id := range ids {
		for parent := parentOf[id]; parent != ""; parent = parentOf[parent] {
			if _, known := parentOf[parent]; !known || ancestors[parent] {
				break
			}
			ancestors[parent] = true
		}
	}

	return ancestors
}
