package model

// LocationGroup clusters the notices issued against one business premises.
// It is the unit the map frontend renders: one pin per group.
type LocationGroup struct {
	Name        string    `json:"name"`
	Address     Address   `json:"address"`
	Council     string    `json:"council,omitempty"`
	PartyServed string    `json:"party_served,omitempty"`
	Penalties   []*Notice `json:"penalties"`
}

// FailedGeocode records a notice whose address could not be geocoded under
// any variant. The list is written out for operator review.
type FailedGeocode struct {
	PenaltyNoticeNumber string   `json:"penalty_notice_number"`
	Name                string   `json:"name"`
	Address             string   `json:"address"`
	VariantsTried       []string `json:"variants_tried"`
}
