package entities

import "time"

// DeploymentWave is a batch of documents that can be published together.
// Level 0 holds the root documents, level 1 their children, and so on.
type DeploymentWave struct {
	Documents []PolicyDocument `json:"documents" yaml:"documents"`
	Level     int              `json:"level" yaml:"level"`
}

// IDs returns the policy ids of the wave in discovery order.
func (w DeploymentWave) IDs() []string {
	ids := make([]string, len(w.Documents))
	for i, doc := range w.Documents {
		ids[i] = doc.ID
	}
	return ids
}

// DeploymentPlan is the ordered list of waves for a corpus.
// A document's wave always comes after its parent's wave.
type DeploymentPlan struct {
	Waves []DeploymentWave `json:"waves" yaml:"waves"`
}

// DocumentCount returns the number of documents across all waves.
func (p *DeploymentPlan) DocumentCount() int {
	if p == nil {
		return 0
	}
	count := 0
	for _, wave := range p.Waves {
		count += len(wave.Documents)
	}
	return count
}

// IDs returns the policy ids grouped by wave.
func (p *DeploymentPlan) IDs() [][]string {
	if p == nil {
		return nil
	}
	ids := make([][]string, len(p.Waves))
	for i, wave := range p.Waves {
		ids[i] = wave.IDs()
	}
	return ids
}

// Restrict returns a new plan holding only the selected documents.
// Waves left empty are dropped and the remaining ones renumbered.
func (p *DeploymentPlan) Restrict(selected map[string]bool) *DeploymentPlan {
	restricted := &DeploymentPlan{}
	if p == nil {
		return restricted
	}
	for _, wave := range p.Waves {
		var docs []PolicyDocument
		for _, doc := range wave.Documents {
			if selected[doc.ID] {
				docs = append(docs, doc)
			}
		}
		if len(docs) == 0 {
			continue
		}
		restricted.Waves = append(restricted.Waves, DeploymentWave{
			Level:     len(restricted.Waves),
			Documents: docs,
		})
	}
	return restricted
}

// PublishReport summarizes a plan execution.
type PublishReport struct {
	// FailedID is the document whose upload aborted the run, empty on success.
	FailedID  string        `json:"failed_id,omitempty" yaml:"failed_id,omitempty"`
	Published []string      `json:"published" yaml:"published"`
	Completed int           `json:"completed" yaml:"completed"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
}
