package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type thing struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func decodeThings(t *testing.T, raw string) ([]thing, int) {
	t.Helper()
	page, err := DecodeList(json.RawMessage(raw), "things")
	require.NoError(t, err)
	var items []thing
	require.NoError(t, json.Unmarshal(page.Items, &items))
	return items, page.Total
}

func TestDecodeListBareArray(t *testing.T) {
	items, total := decodeThings(t, `[{"id":1,"name":"a"},{"id":2,"name":"b"}]`)
	assert.Len(t, items, 2)
	assert.Equal(t, 2, total)
}

func TestDecodeListDataArray(t *testing.T) {
	items, total := decodeThings(t, `{"data":[{"id":1,"name":"a"}],"total":41}`)
	assert.Len(t, items, 1)
	assert.Equal(t, 41, total, "server-reported total wins over item count")
}

func TestDecodeListKeyedEnvelope(t *testing.T) {
	items, total := decodeThings(t, `{"success":true,"data":{"things":[{"id":7,"name":"x"}],"total":9}}`)
	require.Len(t, items, 1)
	assert.Equal(t, int64(7), items[0].ID)
	assert.Equal(t, 9, total)
}

func TestDecodeListKeyedEnvelopeWrongPlural(t *testing.T) {
	// Some endpoints key the collection under a legacy name; the only
	// array present is taken.
	items, total := decodeThings(t, `{"data":{"items":[{"id":3,"name":"y"}],"total":1}}`)
	require.Len(t, items, 1)
	assert.Equal(t, int64(3), items[0].ID)
	assert.Equal(t, 1, total)
}

func TestDecodeListEmptyData(t *testing.T) {
	page, err := DecodeList(json.RawMessage(`{"success":true}`), "things")
	require.NoError(t, err)
	var items []thing
	require.NoError(t, json.Unmarshal(page.Items, &items))
	assert.Empty(t, items)
	assert.Zero(t, page.Total)
}

func TestDecodeItemEnveloped(t *testing.T) {
	var item thing
	require.NoError(t, DecodeItem(json.RawMessage(`{"success":true,"data":{"id":5,"name":"z"}}`), &item))
	assert.Equal(t, thing{ID: 5, Name: "z"}, item)
}

func TestDecodeItemBare(t *testing.T) {
	var item thing
	require.NoError(t, DecodeItem(json.RawMessage(`{"id":6,"name":"w"}`), &item))
	assert.Equal(t, thing{ID: 6, Name: "w"}, item)
}
