package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestCSV(t *testing.T) {
	items := []Item{
		{
			Title:       "Formation UX; module avancé",
			Href:        "https://www.boamp.fr/avis/detail/24-1",
			DeadlineISO: strPtr("2024-09-01"),
			Buyer:       strPtr("Ville de Paris"),
		},
		{
			Title:        "Marché 3D",
			Href:         "https://www.boamp.fr/avis/detail/24-2",
			BuyerAddress: strPtr("Mairie, 75004 Paris"),
			Buyer:        strPtr("ignored when address present"),
		},
	}

	data, err := CSV(items)
	require.NoError(t, err)
	out := string(data)

	t.Run("starts with a UTF-8 BOM", func(t *testing.T) {
		assert.True(t, strings.HasPrefix(out, "\uFEFF"))
	})

	t.Run("semicolon-delimited header", func(t *testing.T) {
		assert.Contains(t, out, "Intitule;Lien;Date_limite;Nom_Adresse_Acheteur")
	})

	t.Run("semicolons inside values are quoted", func(t *testing.T) {
		assert.Contains(t, out, `"Formation UX; module avancé"`)
	})

	t.Run("buyer address preferred over buyer name", func(t *testing.T) {
		assert.Contains(t, out, "75004 Paris")
		assert.NotContains(t, out, "ignored when address present")
	})

	t.Run("buyer name used when no address", func(t *testing.T) {
		assert.Contains(t, out, "Ville de Paris")
	})
}

func TestCSV_Empty(t *testing.T) {
	data, err := CSV(nil)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Intitule")
}

func TestICS(t *testing.T) {
	items := []Item{
		{
			Title:        "Formation UX",
			Href:         "https://www.boamp.fr/avis/detail/24-1",
			DeadlineISO:  strPtr("2024-09-01"),
			BuyerAddress: strPtr("Mairie de Paris\n4 place de l'Hôtel de Ville"),
		},
		{
			Title:   "Sans échéance",
			DateISO: strPtr("2024-06-10"),
		},
		{
			Title: "Sans date du tout",
		},
	}

	out := string(ICS(items))

	assert.True(t, strings.HasPrefix(out, "BEGIN:VCALENDAR\r\nVERSION:2.0"))
	assert.True(t, strings.HasSuffix(out, "END:VCALENDAR"))
	assert.Equal(t, 3, strings.Count(out, "BEGIN:VEVENT"))

	t.Run("deadline becomes an all-day event", func(t *testing.T) {
		assert.Contains(t, out, "DTSTART;VALUE=DATE:20240901")
		assert.Contains(t, out, "DTEND;VALUE=DATE:20240901")
	})

	t.Run("publication date used when deadline missing", func(t *testing.T) {
		assert.Contains(t, out, "DTSTART;VALUE=DATE:20240610")
	})

	t.Run("dateless items keep their event", func(t *testing.T) {
		assert.Contains(t, out, "SUMMARY:Sans date du tout")
	})

	t.Run("newlines flattened in descriptions", func(t *testing.T) {
		assert.Contains(t, out, "DESCRIPTION:Mairie de Paris 4 place de l'Hôtel de Ville")
	})

	t.Run("url carried per event", func(t *testing.T) {
		assert.Contains(t, out, "URL:https://www.boamp.fr/avis/detail/24-1")
	})
}

func TestICSDate(t *testing.T) {
	assert.Equal(t, "20240901", icsDate("2024-09-01"))
	assert.Equal(t, "", icsDate("not a date"))
	assert.Equal(t, "", icsDate(""))
	assert.Equal(t, "20240901T083000Z", icsDate("2024-09-01T08:30:00Z"))
}
