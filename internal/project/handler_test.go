package project

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"github.com/mvpcad/mvpcad/internal/editor"
)

func newTestRouter(svc *Service) *mux.Router {
	h := NewHandler(svc)
	r := mux.NewRouter()
	r.HandleFunc("/api/project/save", h.Save).Methods("POST")
	r.HandleFunc("/api/project/load", h.Load).Methods("POST")
	r.HandleFunc("/api/export/{format}", h.Export).Methods("POST")
	r.HandleFunc("/api/projects", h.List).Methods("GET")
	r.HandleFunc("/api/projects/{name}/snapshots", h.Snapshot).Methods("POST")
	r.HandleFunc("/api/projects/{name}/restore", h.Restore).Methods("POST")
	return r
}

func do(t *testing.T, h http.Handler, method, target string) (int, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))

	var body map[string]any
	if strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "{") {
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode %s: %v", rec.Body.String(), err)
		}
	}
	return rec.Code, body
}

func TestHandlerSaveAndLoad(t *testing.T) {
	files := &memFiles{}
	router := newTestRouter(NewService(sampleStore(t), files))

	code, body := do(t, router, "POST", "/api/project/save?name=plan")
	if code != http.StatusOK || body["status"] != "saved" {
		t.Fatalf("save = %d %v", code, body)
	}

	files.read = files.written[KindProject]
	code, body = do(t, router, "POST", "/api/project/load?name=plan")
	if code != http.StatusOK || body["status"] != "loaded" {
		t.Fatalf("load = %d %v", code, body)
	}
}

func TestHandlerCancelled(t *testing.T) {
	router := newTestRouter(NewService(editor.NewStore(), &memFiles{cancel: true}))
	code, body := do(t, router, "POST", "/api/project/save")
	if code != http.StatusOK || body["status"] != "cancelled" {
		t.Errorf("save = %d %v", code, body)
	}
}

func TestHandlerErrors(t *testing.T) {
	tests := []struct {
		name   string
		files  *memFiles
		method string
		target string
		want   int
	}{
		{"malformed project", &memFiles{read: []byte(`{"shapes":`)}, "POST", "/api/project/load", http.StatusBadRequest},
		{"bad version", &memFiles{read: []byte(`{"shapes":[],"version":7}`)}, "POST", "/api/project/load", http.StatusBadRequest},
		{"unknown format", &memFiles{}, "POST", "/api/export/gif", http.StatusBadRequest},
		{"bad scale", &memFiles{}, "POST", "/api/export/png?scale=-1", http.StatusBadRequest},
		{"nan scale", &memFiles{}, "POST", "/api/export/png?scale=NaN", http.StatusBadRequest},
		{"inf scale", &memFiles{}, "POST", "/api/export/png?scale=Inf", http.StatusBadRequest},
		{"huge image", &memFiles{}, "POST", "/api/export/png?scale=1e9", http.StatusRequestEntityTooLarge},
		{"no library", &memFiles{}, "GET", "/api/projects", http.StatusNotImplemented},
		{"no library restore", &memFiles{}, "POST", "/api/projects/plan/restore", http.StatusNotImplemented},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(NewService(editor.NewStore(), tt.files))
			code, body := do(t, router, tt.method, tt.target)
			if code != tt.want {
				t.Errorf("status = %d, want %d (%v)", code, tt.want, body)
			}
			if body["error"] == nil {
				t.Errorf("missing error message: %v", body)
			}
		})
	}
}

func TestHandlerExport(t *testing.T) {
	files := &memFiles{}
	router := newTestRouter(NewService(sampleStore(t), files))

	code, body := do(t, router, "POST", "/api/export/png?scale=1")
	if code != http.StatusOK || body["status"] != "exported" || body["format"] != "png" {
		t.Fatalf("export = %d %v", code, body)
	}
	if id, _ := body["id"].(string); !strings.HasPrefix(id, "exp_") {
		t.Errorf("export id = %v", body["id"])
	}
	if len(files.written[KindPNG]) == 0 {
		t.Error("nothing written")
	}
}

func TestHandlerLibrary(t *testing.T) {
	router := newTestRouter(NewService(sampleStore(t), &memFiles{}, WithLibrary(&memLibrary{})))

	code, body := do(t, router, "POST", "/api/projects/plan/snapshots")
	if code != http.StatusCreated || body["version"] != float64(1) {
		t.Fatalf("snapshot = %d %v", code, body)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/projects", nil))
	var list []Summary
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Name != "plan" {
		t.Errorf("list = %+v", list)
	}

	code, _ = do(t, router, "POST", "/api/projects/missing/restore")
	if code != http.StatusNotFound {
		t.Errorf("restore missing = %d, want 404", code)
	}
}
