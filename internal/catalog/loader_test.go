package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadClients_EmptyPathReturnsSeed(t *testing.T) {
	clients, err := LoadClients("")
	require.NoError(t, err)
	assert.Equal(t, SeedClients(), clients)
}

func TestLoadClients_DefaultsTier(t *testing.T) {
	path := writeFile(t, "clients.json", `[{"id":"X-1","givenNames":"Rosa","surnames":"Paz","creditCeiling":1000}]`)

	clients, err := LoadClients(path)
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, TierGreen, clients[0].RiskTier)
	assert.Equal(t, "Rosa Paz", clients[0].FullName())
}

func TestLoadClients_RejectsDuplicatesAndUnknownTier(t *testing.T) {
	dup := writeFile(t, "dup.json", `[{"id":"A"},{"id":"A"}]`)
	_, err := LoadClients(dup)
	assert.ErrorContains(t, err, "duplicate id")

	bad := writeFile(t, "tier.json", `[{"id":"A","riskTier":"PURPLE"}]`)
	_, err = LoadClients(bad)
	assert.ErrorContains(t, err, "unknown risk tier")
}

func TestLoadArticles_ParsesOptions(t *testing.T) {
	path := writeFile(t, "articles.json", `[
		{"id":"P-1","name":"Silla","category":"Muebles","cashPrice":1000,
		 "options":[{"installments":6,"frequency":"MONTHLY","totalPrice":1210,"perPeriod":202}]}
	]`)

	articles, err := LoadArticles(path)
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, []int{6}, articles[0].InstallmentCounts())
}

func TestLoadArticles_ValidationErrors(t *testing.T) {
	cases := map[string]string{
		"no id":         `[{"name":"x"}]`,
		"negative":      `[{"id":"a","cashPrice":-1}]`,
		"bad frequency": `[{"id":"a","options":[{"installments":3,"frequency":"YEARLY"}]}]`,
		"zero count":    `[{"id":"a","options":[{"installments":0,"frequency":"MONTHLY"}]}]`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadArticles(writeFile(t, "a.json", body))
			assert.Error(t, err)
		})
	}
}

func TestLoadArticles_MissingFile(t *testing.T) {
	_, err := LoadArticles(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "reading articles catalog")
}

func TestSeedArticlesAreValid(t *testing.T) {
	assert.NoError(t, ValidateArticles(SeedArticles()))
}
