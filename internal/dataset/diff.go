package dataset

import (
	"reflect"
	"sort"

	"github.com/foodwatch-nsw/offences-cli/internal/model"
)

// Diff summarizes how one snapshot of the notices dataset differs from
// another. Changed compares whole entries, coordinates included, so a
// geocoding-only update shows up here.
type Diff struct {
	Added   []string
	Removed []string
	Changed []string
}

// DiffNotices compares two snapshots of the notices dataset. The id slices
// come back sorted.
func DiffNotices(old, current map[string]*model.Notice) Diff {
	var d Diff

	for id, n := range current {
		prev, ok := old[id]
		if !ok {
			d.Added = append(d.Added, id)
			continue
		}
		if !reflect.DeepEqual(prev, n) {
			d.Changed = append(d.Changed, id)
		}
	}
	for id := range old {
		if _, ok := current[id]; !ok {
			d.Removed = append(d.Removed, id)
		}
	}

	sort.Strings(d.Added)
	sort.Strings(d.Removed)
	sort.Strings(d.Changed)
	return d
}

// ChangedFields lists which fields differ between two versions of a notice,
// address fields prefixed "address.".
func ChangedFields(old, current *model.Notice) []string {
	var fields []string
	add := func(name string, differs bool) {
		if differs {
			fields = append(fields, name)
		}
	}

	add("name", old.Name != current.Name)
	add("council", old.Council != current.Council)
	add("date_of_offence", old.DateOfOffence != current.DateOfOffence)
	add("offence_code", old.OffenceCode != current.OffenceCode)
	add("offence_description", old.OffenceDescription != current.OffenceDescription)
	add("offence_nature", old.OffenceNature != current.OffenceNature)
	add("penalty_amount", old.PenaltyAmount != current.PenaltyAmount)
	add("party_served", old.PartyServed != current.PartyServed)
	add("date_issued", old.DateIssued != current.DateIssued)
	add("issued_by", old.IssuedBy != current.IssuedBy)
	add("address.street", old.Address.Street != current.Address.Street)
	add("address.city", old.Address.City != current.Address.City)
	add("address.postal_code", old.Address.PostalCode != current.Address.PostalCode)
	add("address.full", old.Address.Full != current.Address.Full)
	add("address.lat", !coordEqual(old.Address.Lat, current.Address.Lat))
	add("address.lon", !coordEqual(old.Address.Lon, current.Address.Lon))
	add("prosecution", !reflect.DeepEqual(old.Prosecution, current.Prosecution))
	return fields
}

func coordEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
