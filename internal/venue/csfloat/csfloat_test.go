package csfloat_test

import (
	"context"
	"bytes"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"skinvalue/internal/venue"
	csfloat "skinvalue/internal/venue/csfloat"
)

func TestFetch_MinListingPriceBecomesAsk(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock controller
	ctrl := gomock.NewController(t)

	// Arrange: create a mock HTTP client
	httpClient := NewMockHTTPClient(ctrl)

	// Assert: stub the Do method
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, http.MethodGet, req.Method)
			require.Equal(t, "test-key", req.Header.Get("Authorization"))
			require.Equal(t, "AK-47 | Redline (Field-Tested)", req.URL.Query().Get("market_hash_name"))
			require.Equal(t, "50", req.URL.Query().Get("limit"))
			require.Equal(t, "lowest_price", req.URL.Query().Get("sort_by"))

			body := `[
				{"price":1500,"item":{"market_hash_name":"AK-47 | Redline (Field-Tested)"}},
				{"price":1199,"item":{"market_hash_name":"AK-47 | Redline (Field-Tested)"}},
				{"price":1250,"item":{"market_hash_name":"AK-47 | Redline (Field-Tested)"}}
			]`
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(bytes.NewReader([]byte(body))),
			}, nil
		}).
		Times(1)

	// Arrange: setup the adapter with a credential
	a := csfloat.New(csfloat.Config{APIKey: "test-key"}, csfloat.WithHTTPClient(httpClient))

	// Act: fetch a quote
	q, err := a.Fetch(context.Background(), "AK-47 | Redline (Field-Tested)", "")
	require.NoError(t, err)

	// Assert: the cheapest listing becomes the ask, in dollars
	require.Equal(t, venue.CSFloat, q.Venue)
	require.NotNil(t, q.Ask)
	require.Equal(t, "11.99", q.Ask.String())
	require.NotNil(t, q.Listings)
	require.Equal(t, 3, *q.Listings)
	require.Nil(t, q.Bid)
	require.Nil(t, q.Median)
}

func TestFetch_NoCredentialSkipsNetwork(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock controller
	ctrl := gomock.NewController(t)

	// Arrange: create a mock HTTP client
	httpClient := NewMockHTTPClient(ctrl)

	// Assert: the adapter must not touch the network without a key
	httpClient.EXPECT().
		Do(gomock.Any()).
		Times(0)

	// Arrange: setup the adapter without a credential
	a := csfloat.New(csfloat.Config{}, csfloat.WithHTTPClient(httpClient))

	// Act: fetch a quote
	q, err := a.Fetch(context.Background(), "anything", "")
	require.NoError(t, err)
	require.False(t, q.HasData())
	require.Nil(t, q.Listings)
}

func TestFetch_EmptyListingsMeansZeroInventory(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock controller
	ctrl := gomock.NewController(t)

	// Arrange: create a mock HTTP client
	httpClient := NewMockHTTPClient(ctrl)

	// Assert: stub the Do method
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(bytes.NewReader([]byte(`[]`))),
			}, nil
		}).
		Times(1)

	// Arrange: setup the adapter
	a := csfloat.New(csfloat.Config{APIKey: "test-key"}, csfloat.WithHTTPClient(httpClient))

	// Act: fetch a quote
	q, err := a.Fetch(context.Background(), "rare item", "")
	require.NoError(t, err)

	// Assert: the venue answered, so the zero count is real data
	require.Nil(t, q.Ask)
	require.NotNil(t, q.Listings)
	require.Equal(t, 0, *q.Listings)
}

func TestFetch_ErrPerformingRequest(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock controller
	ctrl := gomock.NewController(t)

	// Arrange: create a mock HTTP client
	httpClient := NewMockHTTPClient(ctrl)

	// Assert: stub the Do method
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			return nil, fmt.Errorf("error")
		}).
		Times(1)

	// Arrange: setup the adapter
	a := csfloat.New(csfloat.Config{APIKey: "test-key"}, csfloat.WithHTTPClient(httpClient))

	// Act: fetch a quote
	_, err := a.Fetch(context.Background(), "item", "")
	require.Error(t, err)
}

func TestFetch_ErrUnauthorized(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock controller
	ctrl := gomock.NewController(t)

	// Arrange: create a mock HTTP client
	httpClient := NewMockHTTPClient(ctrl)

	// Assert: stub the Do method
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusForbidden,
				Body:       io.NopCloser(bytes.NewReader([]byte{})),
			}, nil
		}).
		Times(1)

	// Arrange: setup the adapter with a bad credential
	a := csfloat.New(csfloat.Config{APIKey: "bad-key"}, csfloat.WithHTTPClient(httpClient))

	// Act: fetch a quote
	_, err := a.Fetch(context.Background(), "item", "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unauthorized")
}

func TestFetch_ErrDecodingListings(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock controller
	ctrl := gomock.NewController(t)

	// Arrange: create a mock HTTP client
	httpClient := NewMockHTTPClient(ctrl)

	// Assert: stub the Do method
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(bytes.NewReader([]byte("invalid json"))),
			}, nil
		}).
		Times(1)

	// Arrange: setup the adapter
	a := csfloat.New(csfloat.Config{APIKey: "test-key"}, csfloat.WithHTTPClient(httpClient))

	// Act: fetch a quote
	_, err := a.Fetch(context.Background(), "item", "")
	require.Error(t, err)
}
