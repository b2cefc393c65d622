package entities

// PolicyDocument is one custom policy file discovered in the input folder.
type PolicyDocument struct {
	// ID is the declared PolicyId, unique across the corpus.
	ID string `json:"id" yaml:"id"`

	// ParentID is the declared base policy. Empty for root documents.
	ParentID string `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`

	// SourceFile is the file name relative to the input folder.
	SourceFile string `json:"source_file" yaml:"source_file"`

	// RawContent is only populated on the build side.
	RawContent string `json:"-" yaml:"-"`
}

// IsRoot reports whether the document declares no base policy.
func (d PolicyDocument) IsRoot() bool {
	return d.ParentID == ""
}
