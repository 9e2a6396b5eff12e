package fortnite_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rarefeed/fortnite"
)

const cosmeticsURL = "http://api.test/v2/cosmetics/br"

func TestFetchCosmetics(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", cosmeticsURL, func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "secret", req.Header.Get("Authorization"))
		return httpmock.NewStringResponse(200, `{
			"status": 200,
			"data": [
				{
					"id": "CID_029",
					"name": "Ghoul Trooper",
					"type": {"value": "outfit", "displayValue": "Outfit"},
					"rarity": {"value": "epic", "displayValue": "Epic"},
					"images": {"icon": "https://img.test/a.png", "smallIcon": "https://img.test/a_small.png"},
					"shopHistory": ["2019-12-19T00:00:00Z", "2024-11-20T00:00:00Z"]
				},
				{
					"id": "CID_NEW",
					"name": "Fresh",
					"type": {"displayValue": "Outfit"},
					"images": {"smallIcon": "https://img.test/b_small.png"}
				}
			]
		}`), nil
	})

	client := fortnite.NewClient("http://api.test", "secret")
	cosmetics, err := client.FetchCosmetics(context.Background())

	require.NoError(t, err)
	require.Len(t, cosmetics, 2)

	ghoul := cosmetics[0]
	assert.Equal(t, "CID_029", ghoul.Id)
	assert.Equal(t, "outfit", ghoul.TypeValue())
	assert.Equal(t, "epic", ghoul.RarityValue())
	assert.Equal(t, "https://img.test/a.png", ghoul.IconURL())
	require.Len(t, ghoul.ShopHistory, 2)
	assert.Equal(t, time.Date(2024, 11, 20, 0, 0, 0, 0, time.UTC), ghoul.ShopHistory[1].UTC())

	fresh := cosmetics[1]
	assert.Equal(t, "Outfit", fresh.TypeValue())
	assert.Equal(t, "", fresh.RarityValue())
	assert.Equal(t, "https://img.test/b_small.png", fresh.IconURL())
	assert.Empty(t, fresh.ShopHistory)
}

func TestFetchCosmeticsRetriesServerError(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	calls := 0
	httpmock.RegisterResponder("GET", cosmeticsURL, func(req *http.Request) (*http.Response, error) {
		calls++
		if calls == 1 {
			return httpmock.NewStringResponse(500, "upstream exploded"), nil
		}
		return httpmock.NewStringResponse(200, `{
			"status": 200,
			"data": [{"id": "CID_029", "name": "Ghoul Trooper"}]
		}`), nil
	})

	client := fortnite.NewClient("http://api.test", "")
	cosmetics, err := client.FetchCosmetics(context.Background())

	require.NoError(t, err)
	require.Len(t, cosmetics, 1)
	assert.Equal(t, "CID_029", cosmetics[0].Id)
	// The first attempt failed, so a retry must have happened
	assert.GreaterOrEqual(t, httpmock.GetTotalCallCount(), 2)
}

func TestFetchCosmeticsClientError(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", cosmeticsURL,
		httpmock.NewStringResponder(403, `{"status": 403, "error": "invalid api key"}`))

	client := fortnite.NewClient("http://api.test", "wrong")
	cosmetics, err := client.FetchCosmetics(context.Background())

	require.Error(t, err)
	assert.Nil(t, cosmetics)
	// Client errors must not be retried
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestFetchCosmeticsMalformedResponse(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", cosmeticsURL,
		httpmock.NewStringResponder(200, `{not json`))

	client := fortnite.NewClient("http://api.test", "")
	_, err := client.FetchCosmetics(context.Background())

	require.Error(t, err)
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}
