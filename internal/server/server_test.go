package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/materialkit/matdump/pkg/errors"
	"github.com/materialkit/matdump/pkg/scene"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()

	lib := scene.NewLibrary("hangar")
	lib.Add(scene.NewNode("m1", "hull steel", "Material").
		Set("roughness", 0.42).
		Set("two_sided", false))

	srv := New(Config{
		OpenLibrary: func(ctx context.Context, name string) (scene.Library, func(), error) {
			if name != "hangar" {
				return nil, nil, errors.New(errors.ErrCodeNotFound, "library %q not found", name)
			}
			return lib, func() {}, nil
		},
	})

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, string(body)
}

func TestHealth(t *testing.T) {
	ts := testServer(t)

	resp, body := get(t, ts.URL+"/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if !strings.Contains(body, `"ok"`) {
		t.Errorf("body = %q, want ok status", body)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("response should carry a request ID")
	}
}

func TestListMaterials(t *testing.T) {
	ts := testServer(t)

	resp, body := get(t, ts.URL+"/libraries/hangar/materials")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", resp.StatusCode, body)
	}

	var payload struct {
		Library   string `json:"library"`
		Materials []struct {
			Name  string `json:"name"`
			Class string `json:"class"`
			File  string `json:"file"`
		} `json:"materials"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if payload.Library != "hangar" {
		t.Errorf("library = %q, want hangar", payload.Library)
	}
	if len(payload.Materials) != 1 || payload.Materials[0].Name != "hull steel" {
		t.Fatalf("materials = %+v, want hull steel", payload.Materials)
	}
	if payload.Materials[0].File != "hull_steel" {
		t.Errorf("file = %q, want sanitized name", payload.Materials[0].File)
	}
}

func TestExportMaterial(t *testing.T) {
	ts := testServer(t)

	resp, body := get(t, ts.URL+"/libraries/hangar/materials/hull_steel?style=tagged")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/yaml") {
		t.Errorf("content type = %q, want yaml", ct)
	}
	if !strings.Contains(body, "roughness: 0.42") {
		t.Errorf("document should contain the property, got:\n%s", body)
	}
}

func TestExportMaterialFlowStyle(t *testing.T) {
	ts := testServer(t)

	resp, body := get(t, ts.URL+"/libraries/hangar/materials/hull_steel?style=flow")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("content type = %q, want json", ct)
	}
	if !json.Valid([]byte(body)) {
		t.Errorf("flow document should be valid JSON, got:\n%s", body)
	}
}

func TestExportMaterialNotFound(t *testing.T) {
	ts := testServer(t)

	resp, _ := get(t, ts.URL+"/libraries/hangar/materials/missing")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestExportMaterialBadStyle(t *testing.T) {
	ts := testServer(t)

	resp, _ := get(t, ts.URL+"/libraries/hangar/materials/hull_steel?style=xml")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestUnknownLibrary(t *testing.T) {
	ts := testServer(t)

	resp, _ := get(t, ts.URL+"/libraries/nope/materials")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}
