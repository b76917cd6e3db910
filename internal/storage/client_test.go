package storage

import (
	"context"
	"encoding/xml"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/makerloft/craftfolio-backend/internal/config"
)

const testBucket = "craftfolio-userdata"

// fakeObjectStore speaks just enough of the S3 REST protocol to serve the
// client. With an IP endpoint the SDK falls back to path-style addressing,
// so every request arrives as /<bucket>/<key>.
type fakeObjectStore struct {
	mu         sync.Mutex
	events     []string
	missing    map[string]bool
	deletes    []deletePayload
	listPages  []string
	listTokens []string
}

type deletePayload struct {
	XMLName xml.Name `xml:"Delete"`
	Objects []struct {
		Key string `xml:"Key"`
	} `xml:"Object"`
}

func (f *fakeObjectStore) record(event string) {
	f.mu.Lock()
	f.events = append(f.events, event)
	f.mu.Unlock()
}

func (f *fakeObjectStore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, "/"+testBucket+"/")

	switch {
	case r.Method == http.MethodHead:
		f.record("HEAD " + key)
		if f.missing[key] {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Length", "0")
		w.WriteHeader(http.StatusOK)

	case r.Method == http.MethodPut && r.Header.Get("x-amz-copy-source") != "":
		f.record("COPY " + key)
		w.Header().Set("Content-Type", "application/xml")
		io.WriteString(w, `<CopyObjectResult><ETag>"etag"</ETag></CopyObjectResult>`)

	case r.Method == http.MethodPost && r.URL.Query().Has("delete"):
		body, _ := io.ReadAll(r.Body)
		var payload deletePayload
		if err := xml.Unmarshal(body, &payload); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		f.deletes = append(f.deletes, payload)
		f.mu.Unlock()
		w.Header().Set("Content-Type", "application/xml")
		io.WriteString(w, `<DeleteResult></DeleteResult>`)

	case r.Method == http.MethodGet && r.URL.Query().Get("list-type") == "2":
		f.mu.Lock()
		f.listTokens = append(f.listTokens, r.URL.Query().Get("continuation-token"))
		page := f.listPages[0]
		if len(f.listPages) > 1 {
			f.listPages = f.listPages[1:]
		}
		f.mu.Unlock()
		w.Header().Set("Content-Type", "application/xml")
		io.WriteString(w, page)

	default:
		w.WriteHeader(http.StatusNotImplemented)
	}
}

func (f *fakeObjectStore) deletedKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for _, payload := range f.deletes {
		for _, obj := range payload.Objects {
			keys = append(keys, obj.Key)
		}
	}
	return keys
}

func setupStorageClient(t *testing.T, store *fakeObjectStore) *Client {
	t.Helper()

	srv := httptest.NewServer(store)
	t.Cleanup(srv.Close)

	client, err := NewClient(context.Background(), &config.Config{
		S3Endpoint:         srv.URL,
		AWSAccessKeyID:     "test-key-id",
		AWSSecretAccessKey: "test-secret",
		PublicBaseURL:      "https://cdn.craftfolio.app",
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestClient_CopyMany_MissingSourceFailsWholeBatch(t *testing.T) {
	store := &fakeObjectStore{
		missing: map[string]bool{"mayfly/id-b_2": true},
	}
	client := setupStorageClient(t, store)

	err := client.CopyMany(context.Background(), testBucket, []Transfer{
		{Source: "mayfly/id-a_1", Destination: "tortoise/id-a_1"},
		{Source: "mayfly/id-b_2", Destination: "tortoise/id-b_2"},
		{Source: "mayfly/id-c_3", Destination: "tortoise/id-c_3"},
	})

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrSourceNotFound))
	assert.Contains(t, err.Error(), "mayfly/id-b_2")

	// One missing source means no object in the batch gets copied.
	for _, event := range store.events {
		assert.False(t, strings.HasPrefix(event, "COPY "), "unexpected copy: %s", event)
	}
}

func TestClient_CopyMany_AllChecksPrecedeCopies(t *testing.T) {
	store := &fakeObjectStore{}
	client := setupStorageClient(t, store)

	err := client.CopyMany(context.Background(), testBucket, []Transfer{
		{Source: "mayfly/id-a_1", Destination: "tortoise/id-a_1"},
		{Source: "mayfly/id-b_2", Destination: "tortoise/id-b_2"},
		{Source: "mayfly/id-c_3", Destination: "tortoise/id-c_3"},
	})
	assert.NoError(t, err)

	lastHead, firstCopy := -1, -1
	for i, event := range store.events {
		if strings.HasPrefix(event, "HEAD ") {
			lastHead = i
		}
		if strings.HasPrefix(event, "COPY ") && firstCopy == -1 {
			firstCopy = i
		}
	}
	assert.Equal(t, 6, len(store.events))
	assert.NotEqual(t, -1, firstCopy)
	assert.Less(t, lastHead, firstCopy, "every source check must finish before the first copy")
}

func TestClient_DeleteMany_NormalizesPublicURLs(t *testing.T) {
	store := &fakeObjectStore{}
	client := setupStorageClient(t, store)

	err := client.DeleteMany(context.Background(), testBucket, []string{
		"https://cdn.craftfolio.app/tortoise/id-a_1",
		"tortoise/id-b_2",
		"/tortoise/id-c_3",
	})
	assert.NoError(t, err)

	// The delete request carries bare object keys, never public URLs.
	assert.ElementsMatch(t, []string{
		"tortoise/id-a_1",
		"tortoise/id-b_2",
		"tortoise/id-c_3",
	}, store.deletedKeys())
}

func TestClient_EmptyDirectory_FollowsTruncatedListing(t *testing.T) {
	store := &fakeObjectStore{
		listPages: []string{
			`<?xml version="1.0" encoding="UTF-8"?>
			<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">
				<Name>` + testBucket + `</Name>
				<IsTruncated>true</IsTruncated>
				<NextContinuationToken>page-2</NextContinuationToken>
				<Contents><Key>mayfly/id-a_1</Key></Contents>
			</ListBucketResult>`,
			`<?xml version="1.0" encoding="UTF-8"?>
			<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">
				<Name>` + testBucket + `</Name>
				<IsTruncated>false</IsTruncated>
				<Contents><Key>mayfly/id-b_2</Key></Contents>
			</ListBucketResult>`,
		},
	}
	client := setupStorageClient(t, store)

	err := client.EmptyDirectory(context.Background(), testBucket, "mayfly/")
	assert.NoError(t, err)

	// The second page is requested with the token from the first.
	assert.Equal(t, []string{"", "page-2"}, store.listTokens)
	assert.ElementsMatch(t, []string{"mayfly/id-a_1", "mayfly/id-b_2"}, store.deletedKeys())
}

func TestClient_EmptyDirectory_NoMatchesIsNoOp(t *testing.T) {
	store := &fakeObjectStore{
		listPages: []string{
			`<?xml version="1.0" encoding="UTF-8"?>
			<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">
				<Name>` + testBucket + `</Name>
				<IsTruncated>false</IsTruncated>
			</ListBucketResult>`,
		},
	}
	client := setupStorageClient(t, store)

	err := client.EmptyDirectory(context.Background(), testBucket, "mayfly/")
	assert.NoError(t, err)
	assert.Empty(t, store.deletedKeys())
}
