package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GregZOL/API-France-March--BOAMP/internal/port"
)

const (
	testBase    = "https://boamp-datadila.opendatasoft.com"
	testDataset = "boamp"
)

func row(id string, fields map[string]interface{}) port.RawRow {
	return port.RawRow{ID: id, Fields: fields}
}

func TestRecord_FullRow(t *testing.T) {
	n := New(testBase, testDataset)
	catalog := port.DefaultFieldCatalog()
	catalog[port.RoleDate] = "dateparution"
	catalog[port.RoleTitle] = "intitule"

	rec := n.Record(row("rec-1", map[string]interface{}{
		"intitule":     "Formation bureautique",
		"dateparution": "2024-03-15T08:30:00+01:00",
		"acheteur":     "Ville de Paris",
		"departement":  []interface{}{"75"},
		"cpv":          []interface{}{"80500000", "80533100"},
		"id":           "24-001234",
		"permalink":    testBase + "/avis/something",
	}), catalog)

	assert.Equal(t, "Formation bureautique", rec.Title)
	assert.Equal(t, "24-001234", rec.Ref)
	require.NotNil(t, rec.DateISO)
	assert.Equal(t, "2024-03-15", *rec.DateISO)
	require.NotNil(t, rec.Buyer)
	assert.Equal(t, "Ville de Paris", *rec.Buyer)
	assert.Equal(t, []string{"75"}, rec.Departments)
	assert.Equal(t, []string{"80500000", "80533100"}, rec.CPV)
	assert.Equal(t, testBase+"/avis/something", rec.Href)
}

func TestRecord_EmptyRowIsStillTotal(t *testing.T) {
	n := New(testBase, testDataset)

	rec := n.Record(row("xyz", map[string]interface{}{}), port.DefaultFieldCatalog())

	assert.Equal(t, "Avis #xyz", rec.Title)
	assert.Equal(t, "xyz", rec.Ref)
	assert.NotEmpty(t, rec.Href)
	assert.Nil(t, rec.DateISO)
	assert.Nil(t, rec.Buyer)
	assert.Nil(t, rec.Departments)
	assert.Nil(t, rec.CPV)
}

func TestRecord_TitleFallbackChain(t *testing.T) {
	n := New(testBase, testDataset)

	rec := n.Record(row("1", map[string]interface{}{"titre": "Marché de services"}), port.DefaultFieldCatalog())

	assert.Equal(t, "Marché de services", rec.Title)
}

func TestRecord_ListValuesCapped(t *testing.T) {
	n := New(testBase, testDataset)

	rec := n.Record(row("1", map[string]interface{}{
		"cpv": []interface{}{"1", "2", "3", "4", "5"},
	}), port.DefaultFieldCatalog())

	assert.Equal(t, []string{"1", "2", "3"}, rec.CPV)
}

func TestRecord_ScalarDeptBecomesSingletonList(t *testing.T) {
	n := New(testBase, testDataset)

	rec := n.Record(row("1", map[string]interface{}{"departement": "92"}), port.DefaultFieldCatalog())

	assert.Equal(t, []string{"92"}, rec.Departments)
}

func TestDetailURL(t *testing.T) {
	opendatasoft := New(testBase, testDataset)
	boamp := New("https://www.boamp.fr", testDataset)

	cases := []struct {
		name string
		n    *Normalizer
		raw  string
		ref  string
		id   string
		want string
	}{
		{
			name: "trusted absolute URL passes through",
			n:    opendatasoft,
			raw:  "https://www.boamp.fr/avis/detail/24-1",
			ref:  "24-1", id: "r1",
			want: "https://www.boamp.fr/avis/detail/24-1",
		},
		{
			name: "relative URL resolves against the portal",
			n:    opendatasoft,
			raw:  "/avis/detail/24-1",
			ref:  "24-1", id: "r1",
			want: testBase + "/avis/detail/24-1",
		},
		{
			name: "portal root is rejected",
			n:    opendatasoft,
			raw:  testBase + "/",
			ref:  "", id: "r1",
			want: testBase + "/explore/dataset/boamp/record/?id=r1",
		},
		{
			name: "generic landing page is rejected",
			n:    opendatasoft,
			raw:  "https://www.boamp.fr/pages/entreprise-accueil",
			ref:  "", id: "r1",
			want: testBase + "/explore/dataset/boamp/record/?id=r1",
		},
		{
			name: "malformed URL falls back",
			n:    opendatasoft,
			raw:  "ht tp://%zz",
			ref:  "", id: "r1",
			want: testBase + "/explore/dataset/boamp/record/?id=r1",
		},
		{
			name: "empty URL on a boamp host uses the canonical detail path",
			n:    boamp,
			raw:  "",
			ref:  "24-55", id: "r1",
			want: "https://www.boamp.fr/avis/detail/24-55",
		},
		{
			name: "no signal at all degrades to the base URL",
			n:    opendatasoft,
			raw:  "",
			ref:  "", id: "",
			want: testBase,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.n.DetailURL(tc.raw, tc.ref, tc.id))
		})
	}
}

func TestIsoDate(t *testing.T) {
	n := New(testBase, testDataset)
	catalog := port.DefaultFieldCatalog()
	catalog[port.RoleDate] = "dateparution"

	t.Run("short value kept as-is", func(t *testing.T) {
		rec := n.Record(row("1", map[string]interface{}{"dateparution": "2024-03"}), catalog)
		require.NotNil(t, rec.DateISO)
		assert.Equal(t, "2024-03", *rec.DateISO)
	})

	t.Run("timestamp truncated to the date", func(t *testing.T) {
		rec := n.Record(row("1", map[string]interface{}{"dateparution": "2024-03-15T00:00:00Z"}), catalog)
		require.NotNil(t, rec.DateISO)
		assert.Equal(t, "2024-03-15", *rec.DateISO)
	})
}
