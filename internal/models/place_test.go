package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringList_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    StringList
		wantErr bool
	}{
		{name: "single string", input: `"Paris"`, want: StringList{"Paris"}},
		{name: "empty string", input: `""`, want: nil},
		{name: "array", input: `["Paris","Lyon"]`, want: StringList{"Paris", "Lyon"}},
		{name: "number", input: `42`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var l StringList
			err := json.Unmarshal([]byte(tt.input), &l)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, l)
		})
	}
}

func TestPlaceFilter_Decode(t *testing.T) {
	raw := `{"category":"flat","city":["Paris","Lyon"],"district":"11e","price":{"min":100,"max":500},"available":false,"amenities":["wifi"]}`

	var f PlaceFilter
	require.NoError(t, json.Unmarshal([]byte(raw), &f))

	assert.Equal(t, "flat", f.Category)
	assert.Equal(t, StringList{"Paris", "Lyon"}, f.City)
	assert.Equal(t, StringList{"11e"}, f.District)
	require.NotNil(t, f.Price)
	assert.Equal(t, 100.0, *f.Price.Min)
	assert.Equal(t, 500.0, *f.Price.Max)
	require.NotNil(t, f.Available)
	assert.False(t, *f.Available)
	assert.Equal(t, []string{"wifi"}, f.Amenities)
	assert.Nil(t, f.Area)
}

func TestUserUpdate_IsEmpty(t *testing.T) {
	assert.True(t, UserUpdate{}.IsEmpty())

	password := "secret"
	assert.True(t, UserUpdate{Password: &password}.IsEmpty(), "plain password alone is not persisted")

	bio := "hello"
	assert.False(t, UserUpdate{Biography: &bio}.IsEmpty())
}
