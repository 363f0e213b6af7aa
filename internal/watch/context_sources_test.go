package watch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"finsec/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapFetcher(digests map[string]string, failures map[string]error) DigestFetcher {
	return DigestFetcherFunc(func(ctx context.Context, src config.ContextSource) (string, error) {
		if err, ok := failures[src.Name]; ok {
			return "", err
		}
		return digests[src.Name], nil
	})
}

func newSourceDetector(t *testing.T, fetcher DigestFetcher) *Detector {
	t.Helper()
	d, err := NewDetector(newWatchedFile(t, `{}`),
		WithContextSources(config.DefaultContextSources()),
		WithDigestFetcher(fetcher))
	require.NoError(t, err)
	return d
}

func TestCheckContextChanges_FirstCheckReportsEverything(t *testing.T) {
	digests := map[string]string{
		"OFAC_API_ENDPOINT":   "d1",
		"FCA_REGULATIONS":     "d2",
		"PAYMENT_API_SWAGGER": "d3",
		"RISK_MODEL_VERSION":  "d4",
	}
	d := newSourceDetector(t, mapFetcher(digests, nil))

	changes, err := d.CheckContextChanges(context.Background())
	require.NoError(t, err)
	require.Len(t, changes, 4)
	assert.Equal(t, DigestChange{Old: "", New: "d1"}, changes["OFAC_API_ENDPOINT"])
}

func TestCheckContextChanges_DoesNotUpdateBaselines(t *testing.T) {
	digests := map[string]string{"OFAC_API_ENDPOINT": "d1"}
	d := newSourceDetector(t, mapFetcher(digests, nil))

	first, err := d.CheckContextChanges(context.Background())
	require.NoError(t, err)
	second, err := d.CheckContextChanges(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)

	_, ok := d.ContextDigest("OFAC_API_ENDPOINT")
	assert.False(t, ok)
}

func TestCheckContextChanges_AcceptThenDrift(t *testing.T) {
	digests := map[string]string{
		"OFAC_API_ENDPOINT":   "d1",
		"FCA_REGULATIONS":     "d2",
		"PAYMENT_API_SWAGGER": "d3",
		"RISK_MODEL_VERSION":  "d4",
	}
	d := newSourceDetector(t, mapFetcher(digests, nil))

	changes, err := d.CheckContextChanges(context.Background())
	require.NoError(t, err)
	d.AcceptContextDigests(changes)

	changes, err = d.CheckContextChanges(context.Background())
	require.NoError(t, err)
	assert.Empty(t, changes)

	digests["FCA_REGULATIONS"] = "d2-new"
	changes, err = d.CheckContextChanges(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]DigestChange{"FCA_REGULATIONS": {Old: "d2", New: "d2-new"}}, changes)
}

func TestCheckContextChanges_SkipsAndJoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	d := newSourceDetector(t, mapFetcher(
		map[string]string{"FCA_REGULATIONS": "d2", "PAYMENT_API_SWAGGER": "d3"},
		map[string]error{"OFAC_API_ENDPOINT": ErrNoSourceURL, "RISK_MODEL_VERSION": boom},
	))

	changes, err := d.CheckContextChanges(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrNoSourceURL)
	assert.Len(t, changes, 2)
	assert.Contains(t, changes, "FCA_REGULATIONS")
	assert.Contains(t, changes, "PAYMENT_API_SWAGGER")
}

func TestCheckContextChanges_NoFetcher(t *testing.T) {
	d, err := NewDetector(newWatchedFile(t, `{}`))
	require.NoError(t, err)

	_, err = d.CheckContextChanges(context.Background())
	assert.Error(t, err)
}

func TestHTTPDigestFetcher(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/sdn.xml":
			w.Write([]byte("<sdnList/>"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	fetcher := NewHTTPDigestFetcher(server.Client())
	ctx := context.Background()

	got, err := fetcher.FetchDigest(ctx, config.ContextSource{Name: "OFAC_API_ENDPOINT", URL: server.URL + "/sdn.xml"})
	require.NoError(t, err)
	assert.Equal(t, DigestBytes([]byte("<sdnList/>")), got)

	_, err = fetcher.FetchDigest(ctx, config.ContextSource{Name: "FCA_REGULATIONS", URL: server.URL + "/missing"})
	assert.Error(t, err)

	_, err = fetcher.FetchDigest(ctx, config.ContextSource{Name: "RISK_MODEL_VERSION"})
	assert.ErrorIs(t, err, ErrNoSourceURL)

	server.Client().CloseIdleConnections()
}
