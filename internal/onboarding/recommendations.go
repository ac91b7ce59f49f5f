package onboarding

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	// maxRecommendations caps every generated recommendation list.
	maxRecommendations = 5
	// candidateFetchLimit bounds the catalog retrieval feeding the scorer.
	candidateFetchLimit = 50

	serviceBaseScore       = 70
	serviceMatchBonus      = 25
	consultantBaseScore    = 75
	consultantMatchBonus   = 15
	maxRecommendationScore = 100
)

// RecommendationEngine scores catalog candidates against a client's stated
// preferences. Candidates keep their catalog retrieval order; the score
// informs display but does not re-rank the list.
type RecommendationEngine struct {
	catalog CandidateCatalog
	logger  *zap.Logger
}

// NewRecommendationEngine creates a new recommendation engine
func NewRecommendationEngine(catalog CandidateCatalog, logger *zap.Logger) *RecommendationEngine {
	return &RecommendationEngine{catalog: catalog, logger: logger}
}

// ScoreServices returns up to five scored service recommendations
func (e *RecommendationEngine) ScoreServices(ctx context.Context, preferences, companyInfo map[string]interface{}) ([]ServiceRecommendation, error) {
	candidates, err := e.catalog.ListPublishedServices(ctx, candidateFetchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch service candidates: %w", err)
	}

	interests := normalizedList(preferences["services_interested"])
	industry := normalizedString(companyInfo["industry"])

	seen := make(map[string]bool)
	recs := make([]ServiceRecommendation, 0, maxRecommendations)
	for _, svc := range candidates {
		if len(recs) >= maxRecommendations {
			break
		}
		id := svc.ID.String()
		if seen[id] {
			continue
		}
		seen[id] = true

		score := serviceBaseScore
		reason := "Popular with new clients"
		if matched, term := intersects(append([]string{svc.Category}, svc.Name), interests); matched {
			score += serviceMatchBonus
			reason = fmt.Sprintf("Matches your interest in %s", term)
		} else if industry != "" && containsFold(svc.Industries, industry) {
			score += serviceMatchBonus
			reason = fmt.Sprintf("Relevant to the %s industry", industry)
		}

		recs = append(recs, ServiceRecommendation{
			ServiceID:  id,
			Name:       svc.Name,
			MatchScore: clampScore(score),
			Reason:     reason,
			Status:     RecommendationRecommended,
		})
	}
	return recs, nil
}

// ScoreConsultants returns up to five scored consultant recommendations
func (e *RecommendationEngine) ScoreConsultants(ctx context.Context, preferences, companyInfo map[string]interface{}) ([]ConsultantRecommendation, error) {
	candidates, err := e.catalog.ListAvailableConsultants(ctx, candidateFetchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch consultant candidates: %w", err)
	}

	interests := normalizedList(preferences["services_interested"])
	industry := normalizedString(companyInfo["industry"])

	seen := make(map[string]bool)
	recs := make([]ConsultantRecommendation, 0, maxRecommendations)
	for _, profile := range candidates {
		if len(recs) >= maxRecommendations {
			break
		}
		id := profile.UserID.String()
		if seen[id] {
			continue
		}
		seen[id] = true

		score := consultantBaseScore
		reason := "Experienced consultant on the platform"
		if matched, term := intersects(profile.Skills, interests); matched {
			score += consultantMatchBonus
			reason = fmt.Sprintf("Skilled in %s", term)
		} else if industry != "" && containsFold(profile.Industries, industry) {
			score += consultantMatchBonus
			reason = fmt.Sprintf("Has worked in the %s industry", industry)
		}

		recs = append(recs, ConsultantRecommendation{
			ConsultantID: id,
			DisplayName:  profile.DisplayName,
			MatchScore:   clampScore(score),
			Reason:       reason,
			Status:       RecommendationRecommended,
		})
	}
	return recs, nil
}

// MergeServiceRecommendations folds a freshly scored list into an existing
// one. Fresh entries drive the result order; an entry already present keeps
// its client-facing status (viewed, contacted) and only refreshes its score
// and reason.
func MergeServiceRecommendations(existing, fresh []ServiceRecommendation) []ServiceRecommendation {
	byID := make(map[string]ServiceRecommendation, len(existing))
	for _, rec := range existing {
		byID[rec.ServiceID] = rec
	}

	merged := make([]ServiceRecommendation, 0, len(fresh))
	for _, rec := range fresh {
		if prior, ok := byID[rec.ServiceID]; ok {
			rec.Status = prior.Status
		}
		merged = append(merged, rec)
	}
	return merged
}

// MergeConsultantRecommendations mirrors MergeServiceRecommendations for
// consultant recommendations.
func MergeConsultantRecommendations(existing, fresh []ConsultantRecommendation) []ConsultantRecommendation {
	byID := make(map[string]ConsultantRecommendation, len(existing))
	for _, rec := range existing {
		byID[rec.ConsultantID] = rec
	}

	merged := make([]ConsultantRecommendation, 0, len(fresh))
	for _, rec := range fresh {
		if prior, ok := byID[rec.ConsultantID]; ok {
			rec.Status = prior.Status
		}
		merged = append(merged, rec)
	}
	return merged
}

func clampScore(score int) int {
	if score > maxRecommendationScore {
		return maxRecommendationScore
	}
	return score
}

func normalizedString(v interface{}) string {
	s, _ := v.(string)
	return strings.ToLower(strings.TrimSpace(s))
}

// normalizedList accepts []string or []interface{} payload values, since
// step data arrives as decoded JSON.
func normalizedList(v interface{}) []string {
	switch list := v.(type) {
	case []string:
		out := make([]string, 0, len(list))
		for _, s := range list {
			out = append(out, strings.ToLower(strings.TrimSpace(s)))
		}
		return out
	case []interface{}:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, strings.ToLower(strings.TrimSpace(s)))
			}
		}
		return out
	default:
		return nil
	}
}

// intersects reports whether any candidate term appears in the normalized
// interest list, returning the first matching interest for the reason text.
func intersects(terms []string, interests []string) (bool, string) {
	for _, term := range terms {
		normalized := strings.ToLower(strings.TrimSpace(term))
		if normalized == "" {
			continue
		}
		for _, interest := range interests {
			if interest == "" {
				continue
			}
			if normalized == interest || strings.Contains(normalized, interest) || strings.Contains(interest, normalized) {
				return true, interest
			}
		}
	}
	return false, ""
}

func containsFold(list []string, target string) bool {
	for _, item := range list {
		if strings.EqualFold(strings.TrimSpace(item), target) {
			return true
		}
	}
	return false
}
