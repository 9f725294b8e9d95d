package dataset

import (
	"go.uber.org/zap"

	"github.com/foodwatch-nsw/offences-cli/internal/model"
)

// MergeStats counts what Merge did with a batch of parsed notices.
type MergeStats struct {
	Added     int
	Updated   int
	Unchanged int
}

// Merge folds freshly parsed notices into the dataset, keyed by penalty
// notice number. An entry whose published fields differ is replaced whole,
// which drops its coordinates; the next geocode run restores them.
func Merge(existing map[string]*model.Notice, incoming []*model.Notice) MergeStats {
	var stats MergeStats

	for _, n := range incoming {
		id := n.PenaltyNoticeNumber
		cur, ok := existing[id]
		if !ok {
			existing[id] = n
			stats.Added++
			continue
		}
		if SameEntry(cur, n) {
			stats.Unchanged++
			continue
		}

		zap.L().Warn("existing entry differs, replacing",
			zap.String("id", id),
			zap.String("name", n.Name))
		existing[id] = n
		stats.Updated++
	}

	return stats
}

// SameEntry reports whether two entries carry the same published fields.
// Coordinates and the prosecution detail block are not compared, so a
// re-parse of an already-geocoded notice counts as unchanged.
func SameEntry(a, b *model.Notice) bool {
	if a.PenaltyNoticeNumber != b.PenaltyNoticeNumber ||
		a.Name != b.Name ||
		a.Council != b.Council ||
		a.DateOfOffence != b.DateOfOffence ||
		a.OffenceCode != b.OffenceCode ||
		a.OffenceDescription != b.OffenceDescription ||
		a.OffenceNature != b.OffenceNature ||
		a.PenaltyAmount != b.PenaltyAmount ||
		a.PartyServed != b.PartyServed ||
		a.DateIssued != b.DateIssued ||
		a.IssuedBy != b.IssuedBy {
		return false
	}

	return a.Address.Street == b.Address.Street &&
		a.Address.City == b.Address.City &&
		a.Address.PostalCode == b.Address.PostalCode &&
		a.Address.Full == b.Address.Full
}
