package model

// NoticeType distinguishes the two kinds of offence records published by the
// NSW Food Authority.
type NoticeType string

const (
	TypePenaltyNotice NoticeType = "penalty_notice"
	TypeProsecution   NoticeType = "prosecution"
)

// NoTradingName is the placeholder used when a notice has no trade name.
const NoTradingName = "(NO TRADING NAME)"

// Notice is a single offence record: a penalty notice or a prosecution.
// Field names match the published penalty_notices.json dataset.
type Notice struct {
	Type                NoticeType   `json:"type"`
	PenaltyNoticeNumber string       `json:"penalty_notice_number"`
	ProsecutionNoticeID string       `json:"prosecution_notice_id,omitempty"`
	Name                string       `json:"name"`
	Address             Address      `json:"address"`
	Council             string       `json:"council,omitempty"`
	DateOfOffence       string       `json:"date_of_offence,omitempty"`
	OffenceCode         string       `json:"offence_code,omitempty"`
	OffenceDescription  string       `json:"offence_description,omitempty"`
	OffenceNature       string       `json:"offence_nature,omitempty"`
	PenaltyAmount       string       `json:"penalty_amount"`
	PartyServed         string       `json:"party_served,omitempty"`
	DateIssued          string       `json:"date_issued,omitempty"`
	IssuedBy            string       `json:"issued_by,omitempty"`
	Prosecution         *Prosecution `json:"prosecution,omitempty"`
}

// Address is the premises address of a notice. Lat and Lon are set together
// once the address has been geocoded, and are null until then.
type Address struct {
	Street     string   `json:"street,omitempty"`
	City       string   `json:"city,omitempty"`
	PostalCode string   `json:"postal_code,omitempty"`
	Full       string   `json:"full,omitempty"`
	Lat        *float64 `json:"lat"`
	Lon        *float64 `json:"lon"`
}

// Prosecution holds the extra detail block present on prosecution records.
type Prosecution struct {
	Court                 string `json:"court,omitempty"`
	BroughtBy             string `json:"brought_by,omitempty"`
	Decision              string `json:"decision,omitempty"`
	PenaltyDetailsRaw     string `json:"penalty_details_raw,omitempty"`
	DecisionDetails       string `json:"decision_details,omitempty"`
	UsualPlaceOfBusiness  string `json:"usual_place_of_business,omitempty"`
}

// Clone returns a copy of the notice that shares no pointers with the
// original.
func (n *Notice) Clone() *Notice {
	c := *n
	c.Address = n.Address.Clone()
	if n.Prosecution != nil {
		p := *n.Prosecution
		c.Prosecution = &p
	}
	return &c
}

// Clone returns a copy of the address with its own coordinate pointers.
func (a Address) Clone() Address {
	c := a
	if a.Lat != nil {
		lat := *a.Lat
		c.Lat = &lat
	}
	if a.Lon != nil {
		lon := *a.Lon
		c.Lon = &lon
	}
	return c
}

// Geocoded reports whether the notice carries coordinates.
func (n *Notice) Geocoded() bool {
	return n.Address.Lat != nil && n.Address.Lon != nil
}

// SetCoordinates writes both coordinates onto the notice address.
func (n *Notice) SetCoordinates(lat, lon float64) {
	n.Address.Lat = &lat
	n.Address.Lon = &lon
}

// Coordinates returns the geocoded position. Valid only when Geocoded.
func (n *Notice) Coordinates() (lat, lon float64) {
	if !n.Geocoded() {
		return 0, 0
	}
	return *n.Address.Lat, *n.Address.Lon
}
