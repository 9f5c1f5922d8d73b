package neo4j

import (
	"strings"
	"testing"

	"github.com/OFFIS-RIT/kgraph/backend/pkg/common"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/store"
)

var _ store.GraphStorage = (*GraphNeo4jStorage)(nil)

func TestEntityRows(t *testing.T) {
	rows := entityRows([]common.Entity{{
		Text:       "Apple",
		Type:       common.EntityCompany,
		Category:   common.CategoryStructural,
		Context:    "Steve Jobs founded Apple.",
		DocumentID: "doc-1",
	}})
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0]["key"] != "apple" || rows[0]["type"] != "COMPANY" || rows[0]["name"] != "Apple" {
		t.Errorf("row = %v", rows[0])
	}
}

func TestRelationshipRows(t *testing.T) {
	jobs := common.NewEntityKey("Steve Jobs", common.EntityPerson)
	apple := common.NewEntityKey("Apple", common.EntityCompany)
	beats := common.NewEntityKey("Beats", common.EntityCompany)

	byType, order := relationshipRows([]common.Relationship{
		{Source: jobs, Target: apple, Type: common.RelationFounded, Confidence: 0.9, Metadata: map[string]string{"date": "1976"}},
		{Source: apple, Target: beats, Type: common.RelationAcquired, Confidence: 0.8},
		{Source: jobs, Target: apple, Type: common.RelationType("RELATED_TO"), Confidence: 0.9},
		{Source: jobs, Target: apple, Type: common.RelationCEOOf, Confidence: 0.7},
	})

	want := []common.RelationType{common.RelationAcquired, common.RelationCEOOf, common.RelationFounded}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %s, want %s", i, order[i], want[i])
		}
	}
	if _, ok := byType["RELATED_TO"]; ok {
		t.Error("unknown relationship type was kept")
	}

	founded := byType[common.RelationFounded][0]
	if founded["source_key"] != "steve jobs" || founded["target_type"] != "COMPANY" {
		t.Errorf("row = %v", founded)
	}
	meta, ok := founded["metadata"].(map[string]any)
	if !ok || meta["date"] != "1976" {
		t.Errorf("metadata = %v", founded["metadata"])
	}
}

func TestMergeRelationshipsQuery(t *testing.T) {
	q := mergeRelationshipsQuery(common.RelationHeadquarteredIn)
	if !strings.Contains(q, "MERGE (a)-[r:HEADQUARTERED_IN]->(b)") {
		t.Fatalf("query does not merge the relationship type:\n%s", q)
	}
}

func TestEventRows(t *testing.T) {
	apple := common.NewEntityKey("Apple", common.EntityCompany)
	rows := eventRows([]common.Event{{
		EventType:    common.EventAcquisition,
		Name:         "Apple acquires Beats",
		Participants: []common.EntityKey{apple},
		Amount:       "$3 billion",
	}})
	if len(rows) != 1 || rows[0]["event_type"] != "ACQUISITION" || rows[0]["amount"] != "$3 billion" {
		t.Fatalf("rows = %v", rows)
	}
	participants := rows[0]["participants"].([]map[string]any)
	if len(participants) != 1 || participants[0]["key"] != "apple" {
		t.Errorf("participants = %v", participants)
	}
}
