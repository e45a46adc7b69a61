package content

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
)

func TestSite_Page(t *testing.T) {
	repo := newFakeRepo(testDoc("home", `{"hero":{"title":"<script>alert(1)</script>Bienvenue","tags":["<b>MBA</b> & Master"]},"order":1}`))
	cache := newMemCache()
	site := NewSite(repo, cache, nil)

	data, err := site.Page(context.Background(), "home")
	if err != nil {
		t.Fatalf("Page() error = %v", err)
	}

	var got struct {
		Key     string                 `json:"key"`
		Content map[string]interface{} `json:"content"`
	}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal page: %v", err)
	}
	want := map[string]interface{}{
		"hero": map[string]interface{}{
			"title": "Bienvenue",
			"tags":  []interface{}{"MBA & Master"},
		},
		"order": float64(1),
	}
	if got.Key != "home" {
		t.Errorf("key = %q", got.Key)
	}
	if diff := cmp.Diff(want, got.Content); diff != "" {
		t.Errorf("content mismatch (-want +got):\n%s", diff)
	}

	// served from the cache until invalidated
	repo.setContent("home", `{"hero":{"title":"Changed","tags":[]},"order":1}`)
	cached, err := site.Page(context.Background(), "home")
	if err != nil {
		t.Fatalf("Page() error = %v", err)
	}
	if string(cached) != string(data) {
		t.Errorf("Page() = %s, want the cached page", cached)
	}
	_ = cache.Delete(context.Background(), "home")
	fresh, _ := site.Page(context.Background(), "home")
	if string(fresh) == string(data) {
		t.Error("Page() served a stale page after invalidation")
	}
}

func TestSite_Page_encodedMarkup(t *testing.T) {
	repo := newFakeRepo(testDoc("home", `{"t":"&lt;script&gt;alert(1)&lt;/script&gt;Bienvenue","u":["&amp;lt;b&amp;gt;Master"]}`))
	site := NewSite(repo, nil, nil)

	data, err := site.Page(context.Background(), "home")
	if err != nil {
		t.Fatalf("Page() error = %v", err)
	}
	var got struct {
		Content map[string]interface{} `json:"content"`
	}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal page: %v", err)
	}
	want := map[string]interface{}{"t": "Bienvenue", "u": []interface{}{"Master"}}
	if diff := cmp.Diff(want, got.Content); diff != "" {
		t.Errorf("content mismatch (-want +got):\n%s", diff)
	}
}

func TestSite_Page_savedWhileRendering(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo(testDoc("home", `{"title":"Avant"}`))
	cache := newMemCache()
	site := NewSite(repo, cache, nil)

	// a save lands between the read and the cache write, invalidation included
	cache.onSet = func() {
		cache.onSet = nil
		if _, err := repo.ReplaceContent(ctx, "home", []byte(`{"title":"Après"}`)); err != nil {
			t.Fatalf("ReplaceContent() error = %v", err)
		}
		_ = cache.Delete(ctx, "home")
	}
	if _, err := site.Page(ctx, "home"); err != nil {
		t.Fatalf("Page() error = %v", err)
	}
	if _, ok, _ := cache.Get(ctx, "home"); ok {
		t.Fatal("stale page left in the cache")
	}

	data, err := site.Page(ctx, "home")
	if err != nil {
		t.Fatalf("Page() error = %v", err)
	}
	if !strings.Contains(string(data), "Après") {
		t.Errorf("Page() = %s, want the saved content", data)
	}
	if _, ok, _ := cache.Get(ctx, "home"); !ok {
		t.Error("fresh page not cached")
	}
}

func TestSite_Page_errors(t *testing.T) {
	repo := newFakeRepo()
	site := NewSite(repo, nil, nil)

	if _, err := site.Page(context.Background(), "missing"); errors.Cause(err) != ErrNotFound {
		t.Errorf("Page() error = %v, wantErr %v", err, ErrNotFound)
	}

	repo.getErr = errStore
	var failure *FailureError
	if _, err := site.Page(context.Background(), "home"); !errors.As(err, &failure) || failure.Op != OpLoad {
		t.Errorf("Page() error = %v, want a load failure", err)
	}
}

func TestSite_Page_cacheErrorFallsBack(t *testing.T) {
	repo := newFakeRepo(testDoc("home", `{"title":"Home"}`))
	cache := newMemCache()
	cache.getErr = errStore
	site := NewSite(repo, cache, nil)

	if _, err := site.Page(context.Background(), "home"); err != nil {
		t.Errorf("Page() error = %v", err)
	}
}
