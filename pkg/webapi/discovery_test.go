package webapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serverListing(baseURL, link string, ids ...string) string {
	items := ""
	for i, id := range ids {
		if i > 0 {
			items += ","
		}
		items += fmt.Sprintf(`{"Name":%q,"Links":{%q:"%s/children/%s"}}`, id, link, baseURL, id)
	}
	return `{"Items":[` + items + `]}`
}

func TestClient_ListAllAssetDatabases(t *testing.T) {
	rec := newRecorder()
	client, srv := newTestClient(t, rec)

	rec.handle("/assetservers", http.StatusOK, serverListing(srv.URL, LinkDatabases, "AF1", "AF2", "AF3"))
	rec.handle("/children/AF1", http.StatusOK, `{"Items":[{"Name":"db1"}]}`)
	rec.handle("/children/AF2", http.StatusOK, `{"Items":[{"Name":"db2"}]}`)
	rec.handle("/children/AF3", http.StatusOK, `{"Items":[]}`)

	result, err := client.ListAllAssetDatabases(context.Background())
	require.NoError(t, err)
	require.Len(t, result, 3)
	assert.Equal(t, map[string]any{"Items": []any{map[string]any{"Name": "db1"}}}, result[0])
	assert.Equal(t, map[string]any{"Items": []any{map[string]any{"Name": "db2"}}}, result[1])
	assert.Equal(t, map[string]any{"Items": []any{}}, result[2])
	assert.Len(t, rec.all(), 4)
}

func TestClient_ListAllPoints(t *testing.T) {
	rec := newRecorder()
	client, srv := newTestClient(t, rec)

	rec.handle("/dataservers", http.StatusOK, serverListing(srv.URL, LinkPoints, "DA1", "DA2"))
	rec.handle("/children/DA1", http.StatusOK, `{"Items":[{"Name":"sinusoid"}]}`)
	rec.handle("/children/DA2", http.StatusOK, `{"Items":[{"Name":"cdt158"}]}`)

	result, err := client.ListAllPoints(context.Background())
	require.NoError(t, err)
	assert.Len(t, result, 2)
}

func TestClient_FanOutChildFailure(t *testing.T) {
	rec := newRecorder()
	client, srv := newTestClient(t, rec)

	rec.handle("/dataservers", http.StatusOK, serverListing(srv.URL, LinkPoints, "DA1", "DA2"))
	rec.handle("/children/DA1", http.StatusOK, `{"Items":[]}`)
	rec.handle("/children/DA2", http.StatusForbidden, `{"Errors":["denied"]}`)

	result, err := client.ListAllPoints(context.Background())
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.Is(err, ErrRemoteStatus))

	f, ok := AsFailure(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, f.StatusCode)
}

func TestClient_FanOutParentFailure(t *testing.T) {
	rec := newRecorder()
	rec.handle("/assetservers", http.StatusUnauthorized, `{"Errors":["auth"]}`)
	client, _ := newTestClient(t, rec)

	result, err := client.ListAllAssetDatabases(context.Background())
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.Is(err, ErrRemoteStatus))
	assert.Len(t, rec.all(), 1)
}

func TestClient_FanOutEmptyListing(t *testing.T) {
	rec := newRecorder()
	rec.handle("/assetservers", http.StatusOK, `{"Items":[]}`)
	client, _ := newTestClient(t, rec)

	result, err := client.ListAllAssetDatabases(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, result)
	assert.Empty(t, result)
}

func TestClient_FanOutMissingLink(t *testing.T) {
	rec := newRecorder()
	rec.handle("/assetservers", http.StatusOK, `{"Items":[{"Name":"AF1","Links":{"Self":"x"}}]}`)
	client, _ := newTestClient(t, rec)

	_, err := client.ListAllAssetDatabases(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDecode))
	assert.Contains(t, err.Error(), "Links.Databases")
	assert.Len(t, rec.all(), 1)
}

func TestClient_ListAllServersRaw(t *testing.T) {
	rec := newRecorder()
	rec.handle("/assetservers", http.StatusOK, `{"Items":[{"Name":"AF1"}],"Links":{}}`)
	rec.handle("/dataservers", http.StatusOK, `{"Items":[{"Name":"DA1"}],"Links":{}}`)
	client, _ := newTestClient(t, rec)

	assets, err := client.ListAllAssetServers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"Items": []any{map[string]any{"Name": "AF1"}}, "Links": map[string]any{}}, assets)

	data, err := client.ListAllDataServers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"Items": []any{map[string]any{"Name": "DA1"}}, "Links": map[string]any{}}, data)
}

func TestChildLinks(t *testing.T) {
	links, err := childLinks(map[string]any{}, LinkPoints)
	require.NoError(t, err)
	assert.Empty(t, links)

	_, err = childLinks([]any{}, LinkPoints)
	assert.Error(t, err)

	_, err = childLinks(map[string]any{"Items": "nope"}, LinkPoints)
	assert.Error(t, err)

	links, err = childLinks(map[string]any{"Items": []any{
		map[string]any{"Links": map[string]any{"Points": "https://h/a"}},
		map[string]any{"Links": map[string]any{"Points": "https://h/b"}},
	}}, LinkPoints)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://h/a", "https://h/b"}, links)
}
