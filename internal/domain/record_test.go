package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValuesFollowMasterColumns(t *testing.T) {
	d := time.Date(2024, 11, 15, 0, 0, 0, 0, time.UTC)
	r := Record{
		Institution: "Uni A",
		Title:       "Assistant Professor",
		Deadline:    &d,
		Country:     "FRANCE",
		JPID:        "12345",
		JOEURL:      "https://www.aeaweb.org/joe/listing.php?JOE_ID=12345",
		BatchDate:   "J_2024-3-1",
		Source:      SourceJOE,
	}

	vals := r.Values()
	require.Len(t, vals, len(MasterColumns))
	assert.Equal(t, "Uni A", vals[0])
	assert.Nil(t, vals[1], "absent division")
	assert.Equal(t, "2024-11-15", vals[5])
	assert.Equal(t, int64(12345), vals[7])
	assert.Nil(t, vals[8], "absent ejm_id")
	assert.Equal(t, "J_2024-3-1", vals[11])
	assert.Equal(t, "JOE", vals[12])
}

func TestMasterColumnsOrder(t *testing.T) {
	assert.Equal(t, []string{
		"institution", "division", "department", "keywords", "title",
		"deadline", "country", "jp_id", "ejm_id", "joe_url",
		"ejm_url", "BatchDate", "Source",
	}, MasterColumns)
}

func TestSetAndIdentifier(t *testing.T) {
	var r Record
	r.Set("ejm_id", " 101.0 ", nil)
	r.Set("country", "  Germany ", nil)
	r.Set("Source", "EJM", nil)
	r.Set("not_a_column", "x", nil)

	assert.Equal(t, "101", r.EJMID)
	assert.Equal(t, "Germany", r.Country)
	assert.Equal(t, SourceEJM, r.Source)
	assert.Equal(t, "101", r.Identifier())

	r.JPID = "7"
	assert.Equal(t, "7", r.Identifier())
}

func TestIdentifierValuesKeepTheirText(t *testing.T) {
	tests := []struct {
		id   string
		want any
	}{
		{"1001", int64(1001)},
		{"0123", "0123"},
		{"+12", "+12"},
		{"-0", "-0"},
		{"A-17", "A-17"},
	}
	for _, tt := range tests {
		vals := Record{EJMID: tt.id}.Values()
		assert.Equal(t, tt.want, vals[8], "id %q", tt.id)
	}
}

func TestCanonicalID(t *testing.T) {
	cases := map[string]string{
		"":        "",
		"123":     "123",
		"123.0":   "123",
		" 42 ":    "42",
		"12.5":    "12.5",
		"abc-123": "abc-123",
	}
	for in, want := range cases {
		assert.Equal(t, want, CanonicalID(in), "input %q", in)
	}
}

func TestBatchTag(t *testing.T) {
	d := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "J_2024-3-1", BatchTag(SourceJOE, d, true))
	assert.Equal(t, "E_2024-3-1", BatchTag(SourceEJM, d, true))
	assert.Equal(t, "J_unknown", BatchTag(SourceJOE, time.Time{}, false))
	assert.Equal(t, "E_unknown", BatchTag(SourceEJM, time.Time{}, false))
}

func TestSourcePolicy(t *testing.T) {
	r := Record{JPID: "1", EJMID: "2"}
	assert.Equal(t, "1", SourceJOE.IdentifierOf(r))
	assert.Equal(t, "2", SourceEJM.IdentifierOf(r))
	assert.True(t, SourceEJM.RequiresCountry())
	assert.False(t, SourceJOE.RequiresCountry())
}
