package blob

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

// fakeStore is an in-memory blob store speaking the wire protocol the client
// expects: list at the root, upload via PUT /<pathname>, delete via POST
// /delete, and public download URLs served from the same host.
type fakeStore struct {
	t       *testing.T
	token   string
	objects map[string][]byte // pathname -> content
	baseURL string
}

func newFakeStore(t *testing.T) (*fakeStore, *httptest.Server) {
	t.Helper()
	fs := &fakeStore{t: t, token: "test-token", objects: map[string][]byte{}}
	srv := httptest.NewServer(http.HandlerFunc(fs.handle))
	t.Cleanup(srv.Close)
	fs.baseURL = srv.URL
	return fs, srv
}

func (fs *fakeStore) handle(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/":
		if r.Header.Get("Authorization") != "Bearer "+fs.token {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		type blobInfo struct {
			URL      string `json:"url"`
			Pathname string `json:"pathname"`
			Size     int64  `json:"size"`
		}
		var out struct {
			Blobs []blobInfo `json:"blobs"`
		}
		out.Blobs = []blobInfo{}
		for name, content := range fs.objects {
			out.Blobs = append(out.Blobs, blobInfo{
				URL:      fs.baseURL + "/content/" + name,
				Pathname: name,
				Size:     int64(len(content)),
			})
		}
		json.NewEncoder(w).Encode(out)

	case r.Method == http.MethodGet && len(r.URL.Path) > len("/content/"):
		name := r.URL.Path[len("/content/"):]
		content, ok := fs.objects[name]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write(content)

	case r.Method == http.MethodPost && r.URL.Path == "/delete":
		var req struct {
			URLs []string `json:"urls"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		for _, u := range req.URLs {
			for name := range fs.objects {
				if u == fs.baseURL+"/content/"+name {
					delete(fs.objects, name)
				}
			}
		}
		w.WriteHeader(http.StatusOK)

	case r.Method == http.MethodPut:
		if r.Header.Get("Authorization") != "Bearer "+fs.token {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		name := r.URL.Path[1:]
		body, _ := io.ReadAll(r.Body)
		fs.objects[name] = body
		json.NewEncoder(w).Encode(map[string]any{
			"url":      fs.baseURL + "/content/" + name,
			"pathname": name,
			"size":     len(body),
		})

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func TestClient_PutListFetchDelete(t *testing.T) {
	fs, srv := newFakeStore(t)
	c := NewClient(srv.URL, fs.token)
	ctx := context.Background()

	info, err := c.Put(ctx, "movies.json", []byte(`[{"id":1}]`), "application/json")
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Pathname != "movies.json" {
		t.Fatalf("pathname = %q", info.Pathname)
	}

	blobs, err := c.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(blobs) != 1 || blobs[0].Pathname != "movies.json" {
		t.Fatalf("unexpected listing: %+v", blobs)
	}

	content, err := c.Fetch(ctx, blobs[0].URL)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if string(content) != `[{"id":1}]` {
		t.Fatalf("content = %s", content)
	}

	if err := c.Delete(ctx, blobs[0].URL); err != nil {
		t.Fatalf("delete: %v", err)
	}
	blobs, err = c.List(ctx)
	if err != nil {
		t.Fatalf("list after delete: %v", err)
	}
	if len(blobs) != 0 {
		t.Fatalf("expected empty store, got %+v", blobs)
	}
}

func TestClient_Find(t *testing.T) {
	fs, srv := newFakeStore(t)
	c := NewClient(srv.URL, fs.token)
	ctx := context.Background()

	if _, ok, err := c.Find(ctx, "movies.json"); err != nil || ok {
		t.Fatalf("expected absent document, ok=%v err=%v", ok, err)
	}

	if _, err := c.Put(ctx, "movies.json", []byte("[]"), "application/json"); err != nil {
		t.Fatalf("put: %v", err)
	}

	info, ok, err := c.Find(ctx, "movies.json")
	if err != nil || !ok {
		t.Fatalf("expected document, ok=%v err=%v", ok, err)
	}
	if info.Pathname != "movies.json" {
		t.Fatalf("pathname = %q", info.Pathname)
	}
}

func TestClient_BadTokenRejected(t *testing.T) {
	_, srv := newFakeStore(t)
	c := NewClient(srv.URL, "wrong-token")

	if _, err := c.List(context.Background()); err == nil {
		t.Fatalf("expected error for bad token")
	}
	if _, err := c.Put(context.Background(), "movies.json", []byte("[]"), ""); err == nil {
		t.Fatalf("expected error for bad token")
	}
}

func TestNewClient_DefaultBaseURL(t *testing.T) {
	c := NewClient("", "tok")
	if c.baseURL != DefaultBaseURL {
		t.Fatalf("baseURL = %q, want %q", c.baseURL, DefaultBaseURL)
	}
	c2 := NewClient("http://example.test/", "tok")
	if c2.baseURL != "http://example.test" {
		t.Fatalf("trailing slash not stripped: %q", c2.baseURL)
	}
}
