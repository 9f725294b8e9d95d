package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodwatch-nsw/offences-cli/internal/model"
)

const penaltyPage = `<!DOCTYPE html>
<html><head><meta charset="utf-8"></head><body>
<div class="field field--name-field-penalty-notice-number"><div class="field__item">3012345678</div></div>
<div class="field field--name-field-penalty-notice-trade"><div class="field__item">GOLDEN WOK</div></div>
<div class="field field--name-field-penalty-notice-surname"><div class="field__item">NGUYEN T</div></div>
<div class="field field--name-field-penalty-notice-street"><div class="field__item">Shop 2, 14 Main Street</div></div>
<div class="field field--name-field-penalty-notice-city"><div class="field__item">Cambridge Gardens</div></div>
<div class="field field--name-field-penalty-notice-zip"><div class="field__item">2747</div></div>
<div class="field field--name-field-penalty-notice-council"><div class="field__item">Penrith</div></div>
<div class="field field--name-field-penalty-notice-date"><div class="field__item"><time datetime="2023-09-18T12:00:00Z">18 September 2023</time></div></div>
<div class="field field--name-field-penalty-notice-issued-date"><div class="field__item"><time datetime="2023-10-02T12:00:00Z">2 October 2023</time></div></div>
<div class="field field--name-field-penalty-notice-code"><div class="field__item">11332</div></div>
<div class="field field--name-field-penalty-notice-description"><div class="field__item">Fail to maintain food premises to required standard</div></div>
<div class="field field--name-field-penalty-notice-nature"><div class="field__item">Dirty floor  and   walls</div></div>
<div class="field field--name-field-penalty-notice-amount"><div class="field__item">$880</div></div>
<div class="field field--name-field-penalty-notice-issued-by"><div class="field__item">NSW Food Authority</div></div>
</body></html>`

func TestPenaltyNotice_FullPage(t *testing.T) {
	t.Parallel()

	n, err := PenaltyNotice([]byte(penaltyPage))
	require.NoError(t, err)

	assert.Equal(t, model.TypePenaltyNotice, n.Type)
	assert.Equal(t, "3012345678", n.PenaltyNoticeNumber)
	assert.Equal(t, "GOLDEN WOK", n.Name)
	assert.Equal(t, "NGUYEN T", n.PartyServed)
	assert.Equal(t, "Shop 2, 14 Main Street", n.Address.Street)
	assert.Equal(t, "Cambridge Gardens", n.Address.City)
	assert.Equal(t, "2747", n.Address.PostalCode)
	assert.Equal(t, "Shop 2, 14 Main Street, Cambridge Gardens, 2747", n.Address.Full)
	assert.Equal(t, "Penrith", n.Council)
	assert.Equal(t, "2023-09-18T12:00:00Z", n.DateOfOffence)
	assert.Equal(t, "2023-10-02T12:00:00Z", n.DateIssued)
	assert.Equal(t, "11332", n.OffenceCode)
	assert.Equal(t, "Dirty floor and walls", n.OffenceNature)
	assert.Equal(t, "$880", n.PenaltyAmount)
	assert.Equal(t, "NSW Food Authority", n.IssuedBy)
	assert.False(t, n.Geocoded())
	assert.Nil(t, n.Prosecution)
}

func TestPenaltyNotice_NoNumber(t *testing.T) {
	t.Parallel()

	_, err := PenaltyNotice([]byte(`<html><body><p>not a notice page</p></body></html>`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no penalty notice number")
}

func TestPenaltyNotice_Fallbacks(t *testing.T) {
	t.Parallel()

	page := `<html><body>
<div class="field--name-field-penalty-notice-number"><div class="field__item">3000000001</div></div>
<div class="field--name-field-penalty-notice-trade"><div class="field__item">ACME FOODS PTY LTD</div></div>
<div class="field--name-field-penalty-notice-street"><div class="field__item">1 High Street</div></div>
<div class="field--name-field-penalty-notice-city"><div class="field__item">Orange</div></div>
</body></html>`

	n, err := PenaltyNotice([]byte(page))
	require.NoError(t, err)

	// No surname field: party served falls back to the trading entity.
	assert.Equal(t, "ACME FOODS PTY LTD", n.PartyServed)
	// No postcode: falls back to the city.
	assert.Equal(t, "Orange", n.Address.PostalCode)
	assert.Equal(t, "1 High Street, Orange, Orange", n.Address.Full)
}

func TestPenaltyNotice_NoTradingName(t *testing.T) {
	t.Parallel()

	page := `<html><body>
<div class="field--name-field-penalty-notice-number"><div class="field__item">3000000002</div></div>
<div class="field--name-field-penalty-notice-surname"><div class="field__item">SMITH J</div></div>
</body></html>`

	n, err := PenaltyNotice([]byte(page))
	require.NoError(t, err)
	assert.Equal(t, model.NoTradingName, n.Name)
	assert.Equal(t, "SMITH J", n.PartyServed)
	assert.Empty(t, n.Address.Full)
}
