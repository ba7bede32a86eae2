package cell

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verigraph/verigraph/errors"
)

func TestJSONRoundTrip(t *testing.T) {
	orig, err := New(validHeader(), validFact(), validAnchor(),
		[]string{"doc:offer-letter"}, &Proof{SignerKeyID: "hr-system"})
	require.NoError(t, err)

	data, err := orig.ToJSON()
	require.NoError(t, err)

	restored, err := FromJSON(data)
	require.NoError(t, err)

	assert.Equal(t, orig.ID, restored.ID)
	assert.Equal(t, orig.Fact, restored.Fact)
	assert.Equal(t, orig.Evidence, restored.Evidence)
	assert.True(t, orig.Header.SystemTime.Equal(restored.Header.SystemTime))
}

func TestFromJSONRejectsTampering(t *testing.T) {
	orig, err := New(validHeader(), validFact(), validAnchor(), nil, nil)
	require.NoError(t, err)

	data, err := orig.ToJSON()
	require.NoError(t, err)

	// Flip the object field in the serialized form without recomputing the hash
	tampered := bytes.Replace(data, []byte(`"Engineer"`), []byte(`"Director"`), 1)
	require.NotEqual(t, data, tampered)

	_, err = FromJSON(tampered)
	require.Error(t, err)
	assert.True(t, errors.IsIntegrityError(err), "tampered cell must be rejected, not coerced: %v", err)
}

func TestFromJSONRejectsForgedID(t *testing.T) {
	orig, err := New(validHeader(), validFact(), validAnchor(), nil, nil)
	require.NoError(t, err)

	data, err := orig.ToJSON()
	require.NoError(t, err)

	forged := bytes.Replace(data, []byte(orig.ID), []byte(NullHash), 1)
	_, err = FromJSON(forged)
	assert.Error(t, err)
}

func TestFromJSONRevalidatesFields(t *testing.T) {
	// A hand-edited document with an out-of-range confidence must fail field
	// validation even before the hash comparison gets a chance to reject it.
	doc := []byte(`{"cell_id":"` + string(NullHash) + `","header":{"version":"1.0","graph_id":"x","cell_type":"fact","system_time":"2026-01-15T09:30:00Z","prev_cell_hash":"` + string(NullHash) + `"},"fact":{"namespace":"acme","subject":"s","predicate":"p","object":"o","source_quality":"verified","confidence":7.0},"logic_anchor":{"rule_id":"r","rule_logic_hash":"` + HashRuleLogic("r") + `"}}`)

	_, err := FromJSON(doc)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrValidation))
}

func TestFromJSONMalformed(t *testing.T) {
	_, err := FromJSON([]byte(`{not json`))
	assert.Error(t, err)
}
