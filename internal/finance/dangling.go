package finance

import "pride-finance-backend/internal/models"

// LiveSet holds the ids of records that still exist, per source type.
type LiveSet map[models.SourceType]map[int64]struct{}

func (l LiveSet) Add(t models.SourceType, ids ...int64) {
	if l[t] == nil {
		l[t] = make(map[int64]struct{})
	}
	for _, id := range ids {
		l[t][id] = struct{}{}
	}
}

// FilterDangling drops payments whose source reference no longer resolves
// to a live record. Payments with source type "other" or no source id
// reference nothing and pass through. Raw payment listings never use
// this; aggregated and enriched views always do.
func FilterDangling(payments []models.Payment, live LiveSet) []models.Payment {
	out := make([]models.Payment, 0, len(payments))
	for _, p := range payments {
		if p.SourceType == models.SourceOther || p.SourceID == nil {
			out = append(out, p)
			continue
		}
		if _, ok := live[p.SourceType][*p.SourceID]; ok {
			out = append(out, p)
		}
	}
	return out
}
