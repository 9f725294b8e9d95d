package parse

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/foodwatch-nsw/offences-cli/internal/model"
)

var (
	nodeID       = regexp.MustCompile(`/node/(\d+)`)
	totalPenalty = regexp.MustCompile(`(?i)Total penalty:\s*\$?([0-9][0-9,]*(?:\.[0-9]{2})?)`)
)

// ProsecutionNotice extracts a prosecution record from a scraped
// prosecution page. Prosecutions are folded into the same record shape as
// penalty notices with an extra detail block; fallbackID names the record
// when the page carries no node shortlink (usually the file's slug).
func ProsecutionNotice(data []byte, fallbackID string) (*model.Notice, error) {
	doc, err := Document(data)
	if err != nil {
		return nil, err
	}
	return prosecutionFromDoc(doc, fallbackID)
}

func prosecutionFromDoc(doc *goquery.Document, fallbackID string) (*model.Notice, error) {
	id := "prosecution-" + fallbackID
	if href, ok := doc.Find(`link[rel="shortlink"]`).First().Attr("href"); ok {
		if m := nodeID.FindStringSubmatch(href); m != nil {
			id = "prosecution-" + m[1]
		}
	}

	tradeName := fieldText(doc, ".field--name-field-prosecution-notice-trade .field__item")
	name := tradeName
	if name == "" {
		name = model.NoTradingName
	}

	street, city, full := prosecutionAddress(doc)

	decision := fieldHTMLText(doc, ".field--name-field-prosecution-notice-desc .field__item")
	description := "Prosecution"
	if decision != "" {
		description = "Prosecution: " + decision
	}

	penaltyText := fieldHTMLText(doc, ".field--name-field-prosecution-notice-penalty .field__item")
	penaltyAmount := penaltyText
	if m := totalPenalty.FindStringSubmatch(penaltyText); m != nil {
		penaltyAmount = "$" + m[1]
	}

	broughtBy := fieldText(doc, ".field--name-field-prosecution-notice-brought .field__item")

	return &model.Notice{
		Type:                model.TypeProsecution,
		PenaltyNoticeNumber: id,
		ProsecutionNoticeID: id,
		Name:                name,
		PartyServed:         fieldText(doc, ".field--name-field-prosecution-notice-name .field__item"),
		Address: model.Address{
			Street: street,
			City:   city,
			Full:   full,
		},
		Council:            fieldText(doc, ".field--name-field-prosecution-notice-council .field__item"),
		DateOfOffence:      parseHumanDate(fieldHTMLText(doc, ".field--name-field-prosecution-notice-offence .field__item")),
		OffenceDescription: description,
		OffenceNature:      fieldHTMLText(doc, ".field--name-field-prosecution-notice-nature .field__item"),
		PenaltyAmount:      penaltyAmount,
		DateIssued:         fieldDatetime(doc, ".field--name-field-prosecution-notice-date .field__item time"),
		IssuedBy:           broughtBy,
		Prosecution: &model.Prosecution{
			Court:                fieldText(doc, ".field--name-field-prosecution-notice-court .field__item"),
			BroughtBy:            broughtBy,
			Decision:             decision,
			PenaltyDetailsRaw:    penaltyText,
			DecisionDetails:      fieldHTMLText(doc, ".field--name-field-prosecution-notice-details .field__item"),
			UsualPlaceOfBusiness: fieldHTMLText(doc, ".field--name-field-prosecution-notice-place .field__item"),
		},
	}, nil
}

// prosecutionAddress reads the free-form address block: the first line is
// the street, the second the locality.
func prosecutionAddress(doc *goquery.Document) (street, city, full string) {
	sel := doc.Find(".field--name-field-prosecution-notice-address .field__item").First()
	if sel.Length() == 0 {
		return "", "", ""
	}

	var lines []string
	for _, line := range strings.Split(fieldHTMLText(doc, ".field--name-field-prosecution-notice-address .field__item"), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return "", "", ""
	}

	street = lines[0]
	if len(lines) > 1 {
		city = lines[1]
	}
	return street, city, joinAddress(street, city)
}
