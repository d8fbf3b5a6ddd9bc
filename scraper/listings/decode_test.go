package listings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePage(t *testing.T) {
	body := []byte(`{"cars": {
		"data": [{"id": 1, "title": "Audi A4"}, "junk", 42, {"id": "2", "offer_price": 15000}],
		"current_page": 1, "last_page": "3", "per_page": 12, "total": 30
	}}`)

	page, err := DecodePage(body, nil)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "1", page.Items[0].ID.String())
	assert.Equal(t, "Audi A4", page.Items[0].Title.String())
	assert.Equal(t, "15000", page.Items[1].OfferPrice.String())
	assert.Equal(t, 1, page.CurrentPage)
	assert.Equal(t, 3, page.LastPage)
	assert.Equal(t, 12, page.PerPage)
	assert.Equal(t, 30, page.Total)
}

func TestDecodePage_DegradesToEmpty(t *testing.T) {
	bodies := map[string]string{
		"no cars":          `{"message": "ok"}`,
		"cars null":        `{"cars": null}`,
		"cars not object":  `{"cars": "nope"}`,
		"data missing":     `{"cars": {"current_page": 1}}`,
		"data not array":   `{"cars": {"data": {"id": 1}}}`,
		"top level array":  `[]`,
		"top level number": `7`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			page, err := DecodePage([]byte(body), nil)
			require.NoError(t, err)
			assert.Empty(t, page.Items)
			assert.Equal(t, 1, page.CurrentPage)
			assert.Equal(t, 1, page.LastPage)
		})
	}
}

func TestDecodePage_InvalidJSON(t *testing.T) {
	_, err := DecodePage([]byte(`<html>gateway</html>`), nil)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindDecode))
}

func TestDecodePage_LastPageNeverBelowCurrent(t *testing.T) {
	page, err := DecodePage([]byte(`{"cars": {"data": [], "current_page": 4, "last_page": 2}}`), nil)
	require.NoError(t, err)
	assert.Equal(t, 4, page.LastPage)
}
