package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartbizmap.kr/internal/registry"
)

func TestNewEmptyReferences(t *testing.T) {
	refs := NewEmptyReferences()
	assert.NotNil(t, refs.Entities)
	assert.NotNil(t, refs.Industries)
	assert.Empty(t, refs.Entities)
	assert.Empty(t, refs.Industries)
}

func TestReferences(t *testing.T) {
	reg := registry.New(nil)
	e, ok := reg.EntityByName("서교동")
	require.True(t, ok)
	ind, ok := reg.Industry("커피-음료")
	require.True(t, ok)

	refs := NewEmptyReferences()
	refs.Entities = append(refs.Entities, NewEntityReference(e))
	refs.Industries = append(refs.Industries, NewIndustryReference(ind))

	jsonData, err := json.Marshal(refs)
	require.NoError(t, err)

	var decoded ReferencesModel
	require.NoError(t, json.Unmarshal(jsonData, &decoded))
	assert.Equal(t, "서교동", decoded.Entities[0].Name)
	assert.Equal(t, "마포구", decoded.Entities[0].District)
	assert.Equal(t, IndustryReference{Name: "커피-음료", Category: "food", CategoryLabel: "외식업"}, decoded.Industries[0])
}
