// Package export renders onboarding records and aggregate statistics as
// downloadable CSV and Excel snapshots for the admin dashboard.
package export

import (
	"time"

	"consultbridge/marketplace-portal/marketplace-portal-backend/internal/onboarding"
)

// Columns shared by both export formats. Order is the column order in the
// rendered file.
var (
	clientColumns = []string{
		"client_id", "status", "progress", "current_step",
		"assigned_to", "started_at", "last_activity", "completed_at",
	}
	consultantColumns = []string{
		"consultant_id", "status", "progress", "current_step",
		"assigned_to", "reviewed_by", "started_at", "last_activity",
		"approved_at", "completed_at",
	}
	summaryColumns = []string{"track", "metric", "value"}
)

func clientRows(records []*onboarding.ClientOnboarding) []map[string]interface{} {
	rows := make([]map[string]interface{}, 0, len(records))
	for _, rec := range records {
		rows = append(rows, map[string]interface{}{
			"client_id":     rec.ClientID,
			"status":        string(rec.Status),
			"progress":      rec.Progress,
			"current_step":  rec.CurrentStep,
			"assigned_to":   deref(rec.AssignedTo),
			"started_at":    rec.StartedAt,
			"last_activity": rec.LastActivity,
			"completed_at":  rec.CompletedAt,
		})
	}
	return rows
}

func consultantRows(records []*onboarding.ConsultantOnboarding) []map[string]interface{} {
	rows := make([]map[string]interface{}, 0, len(records))
	for _, rec := range records {
		rows = append(rows, map[string]interface{}{
			"consultant_id": rec.ConsultantID,
			"status":        string(rec.Status),
			"progress":      rec.Progress,
			"current_step":  rec.CurrentStep,
			"assigned_to":   deref(rec.AssignedTo),
			"reviewed_by":   deref(rec.ReviewedBy),
			"started_at":    rec.StartedAt,
			"last_activity": rec.LastActivity,
			"approved_at":   rec.ApprovedAt,
			"completed_at":  rec.CompletedAt,
		})
	}
	return rows
}

func summaryRows(stats *onboarding.Statistics) []map[string]interface{} {
	rows := []map[string]interface{}{}
	appendTrack := func(track string, ts onboarding.TrackStatistics) {
		rows = append(rows,
			map[string]interface{}{"track": track, "metric": "total", "value": ts.Total},
			map[string]interface{}{"track": track, "metric": "stalled", "value": ts.Stalled},
			map[string]interface{}{"track": track, "metric": "average_days_to_complete", "value": ts.AverageDaysToComplete},
		)
		for _, status := range []onboarding.Status{
			onboarding.StatusNotStarted, onboarding.StatusInProgress,
			onboarding.StatusUnderReview, onboarding.StatusApproved,
			onboarding.StatusRejected, onboarding.StatusCompleted,
		} {
			if count, ok := ts.ByStatus[status]; ok {
				rows = append(rows, map[string]interface{}{
					"track":  track,
					"metric": "status:" + string(status),
					"value":  count,
				})
			}
		}
	}
	appendTrack("clients", stats.Clients)
	appendTrack("consultants", stats.Consultants)
	return rows
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatTime(v interface{}) interface{} {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.Format(time.RFC3339)
	case *time.Time:
		if t == nil || t.IsZero() {
			return ""
		}
		return t.Format(time.RFC3339)
	default:
		return v
	}
}
