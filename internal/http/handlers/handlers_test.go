package handlers

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"reelgen/internal/domain"
	"reelgen/internal/infra"
	"reelgen/internal/providers/vision"
)

type stubAdapter struct {
	name string
	kind domain.MediaKind
	res  domain.GenerationResult
	err  error
}

func (s *stubAdapter) Name() string           { return s.name }
func (s *stubAdapter) Kind() domain.MediaKind { return s.kind }
func (s *stubAdapter) Generate(context.Context, domain.GenerationRequest) (domain.GenerationResult, error) {
	if s.err != nil {
		return domain.GenerationResult{}, s.err
	}
	res := s.res
	res.Provider = s.name
	return res, nil
}

type checkerFunc func(ctx context.Context, handle string) (domain.GenerationResult, error)

func (f checkerFunc) CheckStatus(ctx context.Context, handle string) (domain.GenerationResult, error) {
	return f(ctx, handle)
}

type stubSource struct {
	mu       sync.Mutex
	adapters []domain.Adapter
	checkers map[string]domain.StatusChecker
	creds    domain.Credentials
	names    []string
}

func (s *stubSource) Adapters(kind domain.MediaKind, names []string, creds domain.Credentials) []domain.Adapter {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds, s.names = creds, names
	var out []domain.Adapter
	for _, a := range s.adapters {
		if a.Kind() == kind {
			out = append(out, a)
		}
	}
	return out
}

func (s *stubSource) StatusChecker(name string, _ domain.Credentials) (domain.StatusChecker, error) {
	if c, ok := s.checkers[name]; ok {
		return c, nil
	}
	return nil, domain.ErrUnknownProvider
}

func (s *stubSource) Describer(context.Context, domain.Credentials) vision.Describer {
	return vision.NewChain(nil)
}

type memoryProjects struct {
	projects map[string]*domain.Project
}

func (m *memoryProjects) Create(_ context.Context, facets domain.ProjectFacets) (*domain.Project, error) {
	p := &domain.Project{ID: "p-new", Status: domain.ProjectStatusQueued, Facets: facets}
	m.projects[p.ID] = p
	return p, nil
}

func (m *memoryProjects) GetByID(_ context.Context, id string) (*domain.Project, error) {
	if p, ok := m.projects[id]; ok {
		return p, nil
	}
	return nil, domain.ErrNotFound
}

func (m *memoryProjects) ClaimQueued(context.Context) (*domain.Project, error) { return nil, nil }

func (m *memoryProjects) SaveScene(context.Context, string, domain.SceneRecord) error { return nil }

func (m *memoryProjects) UpdateStatus(context.Context, string, domain.ProjectStatus, string) error {
	return nil
}

type recordingNotifier struct {
	ids []string
}

func (n *recordingNotifier) ProjectQueued(_ context.Context, id string) error {
	n.ids = append(n.ids, id)
	return nil
}

type mapMedia map[string][]byte

func (m mapMedia) Read(_ context.Context, key string) ([]byte, error) {
	if data, ok := m[key]; ok {
		return data, nil
	}
	return nil, domain.ErrNotFound
}

func testRouter(app *App) http.Handler {
	r := chi.NewRouter()
	r.Get("/v1/catalog", app.Catalog)
	r.Post("/v1/prompts", app.ComposePrompt)
	r.Post("/v1/storyboards", app.Storyboard)
	r.Post("/v1/images", app.GenerateImage)
	r.Post("/v1/images/master", app.GenerateMasterImage)
	r.Post("/v1/videos", app.GenerateVideo)
	r.Post("/v1/products/describe", app.DescribeProduct)
	r.Get("/v1/operations/{provider}", app.OperationStatus)
	r.Post("/v1/projects", app.CreateProject)
	r.Get("/v1/projects/{id}", app.GetProject)
	r.Get("/v1/projects/{id}/archive", app.ProjectArchive)
	return r
}

func do(t *testing.T, h http.Handler, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return resp.Error.Code
}

const facetsBody = `{"persona":"indonesian_man_fair","background":"studio_white","niche":"elektronik","style":"cinematic","product":"Wireless Earbuds Pro"}`

func TestCatalogListsFacets(t *testing.T) {
	rec := do(t, testRouter(NewApp(App{})), http.MethodGet, "/v1/catalog", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var listing struct {
		Personas []struct{ Key string } `json:"personas"`
		Scenes   []string               `json:"scenes"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listing); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(listing.Personas) == 0 || strings.Join(listing.Scenes, ",") != "HOOK,BENEFIT,DEMO,CTA" {
		t.Fatalf("unexpected listing %s", rec.Body.String())
	}
}

func TestComposePrompt(t *testing.T) {
	h := testRouter(NewApp(App{}))
	body := `{"persona":"indonesian_man_fair","background":"studio_white","niche":"elektronik","scene":"hook","style":"cinematic","product":"Earbuds"}`
	rec := do(t, h, http.MethodPost, "/v1/prompts", body, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	var resp composeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.SceneType != "HOOK" || resp.Duration != "4 seconds" || !strings.Contains(resp.Request.Prompt, "Earbuds") {
		t.Fatalf("unexpected response %+v", resp)
	}

	bad := strings.Replace(body, "indonesian_man_fair", "nobody", 1)
	rec = do(t, h, http.MethodPost, "/v1/prompts", bad, nil)
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "invalid_prompt" {
		t.Fatalf("unknown persona: status = %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestStoryboardReturnsFourScenes(t *testing.T) {
	rec := do(t, testRouter(NewApp(App{})), http.MethodPost, "/v1/storyboards", facetsBody, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Scenes []struct {
			Number int `json:"scene_number"`
		} `json:"scenes"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Scenes) != 4 || resp.Scenes[3].Number != 4 {
		t.Fatalf("unexpected scenes %s", rec.Body.String())
	}
}

func TestGenerateImageValidatesBody(t *testing.T) {
	h := testRouter(NewApp(App{}))
	rec := do(t, h, http.MethodPost, "/v1/images", `{"aspect_ratio":"1:1"}`, nil)
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "invalid_request" {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	rec = do(t, h, http.MethodPost, "/v1/images", `{"prompt":"x","aspect_ratio":"7:3"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad aspect: status = %d", rec.Code)
	}
	rec = do(t, h, http.MethodPost, "/v1/images", `{`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed json: status = %d", rec.Code)
	}
}

func TestBlankPromptsAreRejected(t *testing.T) {
	h := testRouter(NewApp(App{}))
	for target, body := range map[string]string{
		"/v1/images":        `{"prompt":"   \t "}`,
		"/v1/videos":        `{"prompt":"\n"}`,
		"/v1/images/master": `{"background":"studio_white","style":"cinematic","product":"  "}`,
	} {
		rec := do(t, h, http.MethodPost, target, body, nil)
		if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "invalid_request" {
			t.Fatalf("%s: status = %d body=%s", target, rec.Code, rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), "notblank") {
			t.Fatalf("%s: body = %s", target, rec.Body.String())
		}
	}
}

func TestGenerateImageFallsBackAndMergesCredentials(t *testing.T) {
	source := &stubSource{adapters: []domain.Adapter{
		&stubAdapter{name: "huggingface", kind: domain.MediaKindImage, err: domain.TransientError("huggingface", errors.New("status 503"))},
		&stubAdapter{name: "imagen", kind: domain.MediaKindImage, res: domain.GenerationResult{Status: domain.StatusCompleted, Media: domain.InlineMedia("image/png", []byte("png"))}},
	}}
	app := NewApp(App{Config: &infra.Config{ReplicateToken: "server-replicate", GeminiAPIKey: "server-gemini"}, Providers: source})
	rec := do(t, testRouter(app), http.MethodPost, "/v1/images", `{"prompt":"serum bottle"}`, map[string]string{
		"X-Provider-Key-Gemini": "caller-gemini",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Result struct {
			Provider string           `json:"provider"`
			Attempts []domain.Attempt `json:"attempts"`
			Media    struct {
				URL string `json:"url"`
			} `json:"media"`
		} `json:"result"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Result.Provider != "imagen" || len(resp.Result.Attempts) != 1 || resp.Result.Attempts[0].Provider != "huggingface" {
		t.Fatalf("unexpected result %s", rec.Body.String())
	}
	if !strings.HasPrefix(resp.Result.Media.URL, "data:image/png;base64,") {
		t.Fatalf("media url = %q", resp.Result.Media.URL)
	}
	if source.creds.Get("gemini") != "caller-gemini" || source.creds.Get("replicate") != "server-replicate" {
		t.Fatalf("credentials = %v", source.creds.Redacted())
	}
	if strings.Contains(rec.Body.String(), "caller-gemini") {
		t.Fatalf("credential echoed in response")
	}
}

func TestGenerateImageExplicitProviders(t *testing.T) {
	source := &stubSource{}
	app := NewApp(App{Providers: source})
	rec := do(t, testRouter(app), http.MethodPost, "/v1/images", `{"prompt":"serum","providers":["openai","qwen"]}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	if strings.Join(source.names, ",") != "openai,qwen" {
		t.Fatalf("names = %v", source.names)
	}
	if !strings.Contains(rec.Body.String(), `"provider":"simulation"`) {
		t.Fatalf("expected simulated result, got %s", rec.Body.String())
	}
}

func TestGenerateVideoPendingReturnsAccepted(t *testing.T) {
	source := &stubSource{adapters: []domain.Adapter{
		&stubAdapter{name: "veo", kind: domain.MediaKindVideo, res: domain.GenerationResult{Status: domain.StatusPending, Operation: "operations/abc"}},
	}}
	rec := do(t, testRouter(NewApp(App{Providers: source})), http.MethodPost, "/v1/videos", `{"prompt":"a person holding earbuds"}`, nil)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	var resp generationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Result.Operation != "operations/abc" || resp.Request.AspectRatio != "9:16" || resp.Request.NegativePrompt == "" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestGenerateMasterImageRegenerateDrawsSeed(t *testing.T) {
	rec := do(t, testRouter(NewApp(App{})), http.MethodPost, "/v1/images/master",
		`{"background":"studio_white","style":"cinematic","product":"Serum","regenerate":true}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	var resp generationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Request.Seed < 100000 || resp.Request.Seed > 999999 {
		t.Fatalf("seed = %d", resp.Request.Seed)
	}
	if !strings.HasPrefix(resp.Request.Prompt, "Professional product photography of Serum") {
		t.Fatalf("prompt = %q", resp.Request.Prompt)
	}
}

func TestOperationStatus(t *testing.T) {
	source := &stubSource{checkers: map[string]domain.StatusChecker{
		"veo": checkerFunc(func(_ context.Context, handle string) (domain.GenerationResult, error) {
			if handle == "bad" {
				return domain.GenerationResult{}, domain.TerminalError("veo", errors.New("safety filter"))
			}
			return domain.GenerationResult{Status: domain.StatusPending, Provider: "veo", Operation: handle, Progress: 40}, nil
		}),
	}}
	h := testRouter(NewApp(App{Providers: source}))

	rec := do(t, h, http.MethodGet, "/v1/operations/veo?handle=op-1", "", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"progress":40`) {
		t.Fatalf("pending: status = %d body=%s", rec.Code, rec.Body.String())
	}
	rec = do(t, h, http.MethodGet, "/v1/operations/veo?handle=bad", "", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"failed"`) {
		t.Fatalf("terminal: status = %d body=%s", rec.Code, rec.Body.String())
	}
	rec = do(t, h, http.MethodGet, "/v1/operations/huggingface?handle=x", "", nil)
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "unknown_provider" {
		t.Fatalf("sync provider: status = %d body=%s", rec.Code, rec.Body.String())
	}
	rec = do(t, h, http.MethodGet, "/v1/operations/veo", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing handle: status = %d", rec.Code)
	}
}

func TestDescribeProductFallsBackToStatic(t *testing.T) {
	body := `{"image":"data:image/png;base64,iVBORw0KGgo=","product_name":"kopi susu","locale":"id"}`
	rec := do(t, testRouter(NewApp(App{Providers: &stubSource{}})), http.MethodPost, "/v1/products/describe", body, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	var desc vision.Description
	if err := json.Unmarshal(rec.Body.Bytes(), &desc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if desc.Provider != "static" || !strings.HasPrefix(desc.Text, "Kopi Susu") {
		t.Fatalf("description = %+v", desc)
	}

	rec = do(t, testRouter(NewApp(App{})), http.MethodPost, "/v1/products/describe", `{"image":"https://example.com/a.png"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("remote image: status = %d", rec.Code)
	}
}

func TestCreateProject(t *testing.T) {
	repo := &memoryProjects{projects: map[string]*domain.Project{}}
	notifier := &recordingNotifier{}
	h := testRouter(NewApp(App{Projects: repo, Notifier: notifier}))

	rec := do(t, h, http.MethodPost, "/v1/projects", facetsBody, nil)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	if len(notifier.ids) != 1 || notifier.ids[0] != "p-new" {
		t.Fatalf("notifications = %v", notifier.ids)
	}
	if !strings.Contains(rec.Body.String(), `"status":"queued"`) || !strings.Contains(rec.Body.String(), `"scenes":[]`) {
		t.Fatalf("body = %s", rec.Body.String())
	}

	bad := strings.Replace(facetsBody, "elektronik", "pets", 1)
	rec = do(t, h, http.MethodPost, "/v1/projects", bad, nil)
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "invalid_prompt" {
		t.Fatalf("invalid facets: status = %d body=%s", rec.Code, rec.Body.String())
	}
	if len(repo.projects) != 1 {
		t.Fatalf("invalid project was stored")
	}
}

func TestProjectsUnavailableWithoutRepository(t *testing.T) {
	rec := do(t, testRouter(NewApp(App{})), http.MethodGet, "/v1/projects/p1", "", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestGetProjectNotFound(t *testing.T) {
	repo := &memoryProjects{projects: map[string]*domain.Project{}}
	rec := do(t, testRouter(NewApp(App{Projects: repo})), http.MethodGet, "/v1/projects/missing", "", nil)
	if rec.Code != http.StatusNotFound || errorCode(t, rec) != "not_found" {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestProjectArchive(t *testing.T) {
	repo := &memoryProjects{projects: map[string]*domain.Project{
		"p1": {
			ID:     "p1",
			Status: domain.ProjectStatusFailed,
			Scenes: []domain.SceneRecord{
				{Number: 1, Status: domain.StatusCompleted, StorageKey: "projects/p1/scene-1.mp4"},
				{Number: 2, Status: domain.StatusFailed, Error: "content policy"},
			},
		},
	}}
	media := mapMedia{"projects/p1/scene-1.mp4": []byte("video-bytes")}
	rec := do(t, testRouter(NewApp(App{Projects: repo, Media: media})), http.MethodGet, "/v1/projects/p1/archive", "", nil)
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "application/zip" {
		t.Fatalf("status = %d content-type = %q", rec.Code, rec.Header().Get("Content-Type"))
	}
	body := rec.Body.Bytes()
	zr, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	if strings.Join(names, ",") != "scene-1.mp4,manifest.json" {
		t.Fatalf("archive entries = %v", names)
	}
}

func TestCallerCredentialsFromHeaders(t *testing.T) {
	h := http.Header{}
	h.Set("X-Provider-Key-Replicate", " r8_token ")
	h.Set("X-Provider-Key-Ark", "")
	h.Set("Authorization", "Bearer ignored")
	creds := callerCredentials(h)
	if len(creds) != 1 || creds.Get("replicate") != "r8_token" {
		t.Fatalf("creds = %v", creds.Redacted())
	}
}
