package parse

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/foodwatch-nsw/offences-cli/internal/model"
)

// PenaltyNotice extracts a penalty notice record from a scraped notice
// page. A page without a penalty notice number is not a notice page.
func PenaltyNotice(data []byte) (*model.Notice, error) {
	doc, err := Document(data)
	if err != nil {
		return nil, err
	}
	return penaltyNoticeFromDoc(doc)
}

func penaltyNoticeFromDoc(doc *goquery.Document) (*model.Notice, error) {
	number := fieldText(doc, ".field--name-field-penalty-notice-number .field__item")
	if number == "" {
		return nil, eris.New("parse: no penalty notice number")
	}

	tradeName := fieldText(doc, ".field--name-field-penalty-notice-trade .field__item")

	// The party served is the individual's surname when one is named,
	// otherwise the trading entity.
	partyServed := fieldText(doc, ".field--name-field-penalty-notice-surname .field__item")
	if partyServed == "" {
		partyServed = tradeName
	}

	street := fieldText(doc, ".field--name-field-penalty-notice-street .field__item")
	city := fieldText(doc, ".field--name-field-penalty-notice-city .field__item")
	postalCode := fieldText(doc, ".field--name-field-penalty-notice-zip .field__item")
	if postalCode == "" {
		postalCode = city
	}

	name := tradeName
	if name == "" {
		name = model.NoTradingName
	}

	return &model.Notice{
		Type:                model.TypePenaltyNotice,
		PenaltyNoticeNumber: number,
		Name:                name,
		Address: model.Address{
			Street:     street,
			City:       city,
			PostalCode: postalCode,
			Full:       joinAddress(street, city, postalCode),
		},
		Council:            fieldText(doc, ".field--name-field-penalty-notice-council .field__item"),
		DateOfOffence:      fieldDatetime(doc, ".field--name-field-penalty-notice-date .field__item time"),
		OffenceCode:        fieldText(doc, ".field--name-field-penalty-notice-code .field__item"),
		OffenceDescription: fieldText(doc, ".field--name-field-penalty-notice-description .field__item"),
		OffenceNature:      fieldText(doc, ".field--name-field-penalty-notice-nature .field__item"),
		PenaltyAmount:      fieldText(doc, ".field--name-field-penalty-notice-amount .field__item"),
		PartyServed:        partyServed,
		DateIssued:         fieldDatetime(doc, ".field--name-field-penalty-notice-issued-date .field__item time"),
		IssuedBy:           fieldText(doc, ".field--name-field-penalty-notice-issued-by .field__item"),
	}, nil
}
