package agent

import (
	"github.com/example/claim-verifier/internal/models"
)

// AssembleBundle packages claims, evidence, and credibility into the snapshot
// handed to the synthesis stage. Slices are never nil so the serialized form
// always carries all three fields.
func AssembleBundle(claims []string, evidence []models.EvidenceItem, credibility []models.CredibilityItem) models.EvidenceBundle {
	ev := make([]models.EvidenceItem, len(evidence))
	copy(ev, evidence)
	cred := make([]models.CredibilityItem, len(credibility))
	copy(cred, credibility)
	return models.EvidenceBundle{
		Claims:           models.ClaimsFrom(claims),
		Evidence:         ev,
		CredibilityItems: cred,
	}
}
