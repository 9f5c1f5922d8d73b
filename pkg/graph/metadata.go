package graph

import "github.com/OFFIS-RIT/kgraph/backend/pkg/common"

// CollectMetadata groups metadata spans by sentence. The result has one
// non-nil entry per sentence; literals keep their order of occurrence and
// are not deduplicated.
func CollectMetadata(spans []MetadataSpan, sentences int) []common.Metadata {
	out := make([]common.Metadata, sentences)
	for i := range out {
		out[i] = common.Metadata{}
	}
	for _, s := range spans {
		if s.Sentence < 0 || s.Sentence >= sentences || s.Text == "" {
			continue
		}
		out[s.Sentence].Add(s.Kind, s.Text)
	}
	return out
}

// DocumentMetadata merges per sentence metadata in sentence order.
func DocumentMetadata(perSentence []common.Metadata) common.Metadata {
	doc := common.Metadata{}
	for _, m := range perSentence {
		doc.Merge(m)
	}
	return doc
}
