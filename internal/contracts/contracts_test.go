package contracts

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemasAreRegistered(t *testing.T) {
	for _, key := range []string{ListingsPayloadV1, ListingsChangedV1, CatalogRefreshedV1} {
		_, ok := compiledSchemas[key]
		assert.True(t, ok, "schema %s is not compiled", key)
	}
	assert.Equal(t, "ListingsChangedEvent/1.0.0", keyFromPath("schemas/events/listings-changed/v1.json"))
}

func TestDecodeRecordsArray(t *testing.T) {
	records, err := DecodeRecords([]byte(`[{"id":"1","price":125000000123},{"id":"2"},"junk",7]`))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, json.Number("125000000123"), records[0]["price"])
}

func TestDecodeRecordsEnvelope(t *testing.T) {
	for _, body := range []string{
		`{"data":[{"id":"a"}]}`,
		`{"listings":[{"id":"a"}],"total":1}`,
		`{"properties":[{"id":"a"}]}`,
		`{"results":[{"id":"a"}],"next":null}`,
	} {
		records, err := DecodeRecords([]byte(body))
		require.NoError(t, err, body)
		require.Len(t, records, 1, body)
		assert.Equal(t, "a", records[0]["id"])
	}
}

func TestDecodeRecordsRejectsUnknownShapes(t *testing.T) {
	for _, body := range []string{
		`{"items":[]}`,
		`{"data":"nope"}`,
		`"just a string"`,
		`not json`,
		`[] []`,
	} {
		_, err := DecodeRecords([]byte(body))
		assert.ErrorIs(t, err, ErrInvalidPayload, body)
	}
}

func TestDecodeRecord(t *testing.T) {
	rec, err := DecodeRecord([]byte(`{"title":"Flat","beds":"2"}`))
	require.NoError(t, err)
	assert.Equal(t, "Flat", rec["title"])

	_, err = DecodeRecord([]byte(`[1,2]`))
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestValidateEvent(t *testing.T) {
	assert.NoError(t, ValidateEvent(ListingsChangedV1, []byte(`{"source":"crm","ids":["a","b"]}`)))
	assert.Error(t, ValidateEvent(ListingsChangedV1, []byte(`{"ids":"a"}`)))
	assert.Error(t, ValidateEvent(CatalogRefreshedV1, []byte(`{"status":"ready"}`)))
	assert.Error(t, ValidateEvent("Unknown/1.0.0", []byte(`{}`)))
}
