package graph

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/OFFIS-RIT/kgraph/backend/pkg/common"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/rules"
)

// DetectEvents looks for event trigger phrases in one sentence. Trigger
// sets are tried in rule order and the first one that matches decides the
// event type; when none of its required entity types is present the
// sentence has no event. Participants are all non-location mentions in
// order of appearance.
func DetectEvents(r *rules.Set, in SentenceInput) []common.Event {
	if len(in.Mentions) == 0 {
		return nil
	}
	text := asciiLower(in.Sentence.Text)

	for _, trigger := range r.EventTriggers {
		phrase, ok := firstTrigger(text, trigger.Phrases)
		if !ok {
			continue
		}
		if !hasType(in.Mentions, trigger.Requires) {
			return nil
		}

		var participants []common.Mention
		seen := make(map[common.EntityKey]struct{})
		location := ""
		for _, m := range in.Mentions {
			if m.Key.Type == common.EntityLocation {
				if location == "" {
					location = m.Text
				}
				continue
			}
			if _, ok := seen[m.Key]; ok {
				continue
			}
			seen[m.Key] = struct{}{}
			participants = append(participants, m)
		}
		if len(participants) == 0 {
			return nil
		}

		keys := make([]common.EntityKey, len(participants))
		for i, p := range participants {
			keys[i] = p.Key
		}
		words := len(strings.Fields(phrase))
		return []common.Event{{
			EventType:    trigger.Type,
			Name:         eventName(trigger.Type, participants),
			Participants: keys,
			Date:         in.Metadata.First(common.MetadataDate),
			Location:     location,
			Amount:       in.Metadata.First(common.MetadataAmount),
			Context:      in.Sentence.Text,
			Confidence:   math.Round(min(0.9, 0.6+0.1*float64(words))*100) / 100,
			DocumentID:   in.DocumentID,
		}}
	}
	return nil
}

func firstTrigger(text string, phrases []string) (string, bool) {
	for _, p := range phrases {
		if len(findPhrase(text, p)) > 0 {
			return p, true
		}
	}
	return "", false
}

func hasType(mentions []common.Mention, types []common.EntityType) bool {
	if len(types) == 0 {
		return true
	}
	for _, m := range mentions {
		if slices.Contains(types, m.Key.Type) {
			return true
		}
	}
	return false
}

func firstOfType(participants []common.Mention, types ...common.EntityType) (common.Mention, bool) {
	for _, p := range participants {
		if slices.Contains(types, p.Key.Type) {
			return p, true
		}
	}
	return common.Mention{}, false
}

func eventName(t common.EventType, participants []common.Mention) string {
	first := participants[0].Text
	switch t {
	case common.EventAcquisition:
		if len(participants) >= 2 {
			return fmt.Sprintf("%s acquires %s", first, participants[1].Text)
		}
		return fmt.Sprintf("%s acquisition", first)
	case common.EventProductLaunch:
		org, hasOrg := firstOfType(participants, common.EntityCompany, common.EntityOrganization)
		product, hasProduct := firstOfType(participants, common.EntityProduct)
		switch {
		case hasOrg && hasProduct:
			return fmt.Sprintf("%s launches %s", org.Text, product.Text)
		case hasProduct:
			return fmt.Sprintf("%s launch", product.Text)
		}
		return fmt.Sprintf("%s launch", first)
	case common.EventLeadershipChange:
		person, hasPerson := firstOfType(participants, common.EntityPerson)
		org, hasOrg := firstOfType(participants, common.EntityCompany, common.EntityOrganization)
		if hasPerson && hasOrg {
			return fmt.Sprintf("%s joins %s", person.Text, org.Text)
		}
		return fmt.Sprintf("%s leadership change", first)
	case common.EventConference:
		if ev, ok := firstOfType(participants, common.EntityEvent); ok {
			return ev.Text
		}
		return fmt.Sprintf("%s conference", first)
	case common.EventFundingRound:
		return fmt.Sprintf("%s funding round", first)
	}
	return fmt.Sprintf("%s %s", first, strings.ToLower(string(t)))
}
