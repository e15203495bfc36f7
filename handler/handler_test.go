package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/matahariann/kontrakgen/client"
	"github.com/matahariann/kontrakgen/model"
	"github.com/matahariann/kontrakgen/pkg/logger"
	"github.com/matahariann/kontrakgen/store"
	"github.com/matahariann/kontrakgen/wizard"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// upstream is a canned backend: every create answers with an id envelope
// unless a specific handler is registered.
type upstream struct {
	srv      *httptest.Server
	handlers map[string]http.HandlerFunc
}

func newUpstream(t *testing.T) *upstream {
	t.Helper()
	u := &upstream{handlers: map[string]http.HandlerFunc{}}
	u.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := u.handlers[r.Method+" "+r.URL.Path]; ok {
			h(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"message": "ok", "data": map[string]string{"id": "id-1"}})
	}))
	t.Cleanup(u.srv.Close)
	return u
}

func (u *upstream) on(key string, h http.HandlerFunc) { u.handlers[key] = h }

type testApp struct {
	router *gin.Engine
	wizard *wizard.Wizard
	store  *store.Store
	up     *upstream
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "state.json"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	up := newUpstream(t)
	api := client.New(up.srv.URL, 5*time.Second, client.StaticTokenSource("test-token"))
	w := wizard.New(st, api, wizard.Options{
		EmblemImageID: "emblem-1",
		Organization:  []string{"KEMENTERIAN CONTOH"},
	})

	router := gin.New()
	NewWizardHandler(w, nil).RegisterRoutes(router.Group("/api/wizard"))
	auth := NewAuthHandler(api, st)
	router.POST("/api/auth/login", auth.Login)
	router.GET("/api/auth/me", auth.Me)
	router.POST("/api/auth/logout", auth.Logout)

	return &testApp{router: router, wizard: w, store: st, up: up}
}

func (a *testApp) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewBuffer(data)
	} else {
		reader = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return body
}

func handlerVendor() model.Vendor {
	return model.Vendor{
		NamaVendor:    "PT Handal Sejahtera",
		AlamatVendor:  "Jl. Asia Afrika No. 10",
		NamaPj:        "Rudi Hartono",
		JabatanPj:     "Direktur Utama",
		NPWP:          "03.456.789.0-123.000",
		NamaBank:      "BRI",
		NomorRekening: "5556667778",
		NamaRekening:  "PT Handal Sejahtera",
	}
}

func TestStateEndpoint(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodGet, "/api/wizard", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["current_step"] != "vendor" {
		t.Errorf("current_step = %v", body["current_step"])
	}
	statuses, ok := body["statuses"].(map[string]any)
	if !ok || statuses["vendor"] != "empty" {
		t.Errorf("statuses = %v", body["statuses"])
	}
}

func TestVendorSubmitFlow(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPut, "/api/wizard/vendor", handlerVendor())
	if rec.Code != http.StatusOK {
		t.Fatalf("draft status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = app.do(t, http.MethodPost, "/api/wizard/vendor/submit", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("submit status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = app.do(t, http.MethodPost, "/api/wizard/next", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("next status = %d, body %s", rec.Code, rec.Body.String())
	}
	if body := decodeBody(t, rec); body["current_step"] != "pejabat" {
		t.Errorf("current_step = %v", body["current_step"])
	}
}

func TestVendorValidationReportsFields(t *testing.T) {
	app := newTestApp(t)

	v := handlerVendor()
	v.NPWP = ""
	if rec := app.do(t, http.MethodPut, "/api/wizard/vendor", v); rec.Code != http.StatusOK {
		t.Fatalf("draft status = %d", rec.Code)
	}

	rec := app.do(t, http.MethodPost, "/api/wizard/vendor/submit", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	body := decodeBody(t, rec)
	fields, ok := body["fields"].(map[string]any)
	if !ok {
		t.Fatalf("fields missing in %v", body)
	}
	if _, ok := fields["npwp"]; !ok {
		t.Errorf("npwp not reported: %v", fields)
	}
}

func TestNextRefusedIsConflict(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/api/wizard/next", nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestContractCeilingOverHTTP(t *testing.T) {
	app := newTestApp(t)

	k := model.Contract{
		JenisKontrak:          model.TypeKonsultan,
		Deskripsi:             "Konsultansi",
		JumlahOrang:           1,
		DurasiKontrak:         1,
		NilaiPerkiraanSendiri: 1_000,
		NilaiKontrakAwal:      1_000,
		NilaiKontrakAkhir:     1_000,
	}
	if rec := app.do(t, http.MethodPut, "/api/wizard/contract/0", k); rec.Code != http.StatusOK {
		t.Fatalf("draft status = %d, body %s", rec.Code, rec.Body.String())
	}

	// Raising the values with the type unchanged is accepted as a draft;
	// the aggregate ceiling is enforced at submit.
	k.JumlahOrang = 2
	k.DurasiKontrak = 6
	k.NilaiPerkiraanSendiri = 10_000_000
	k.NilaiKontrakAwal = 10_000_000
	k.NilaiKontrakAkhir = 10_000_000
	if rec := app.do(t, http.MethodPut, "/api/wizard/contract/0", k); rec.Code != http.StatusOK {
		t.Fatalf("raise status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec := app.do(t, http.MethodPost, "/api/wizard/contract/submit", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	msg, _ := body["error"].(string)
	if !strings.Contains(msg, "Konsultan") || !strings.Contains(msg, "Rp100.000.000") {
		t.Errorf("error = %q", msg)
	}
}

func TestGenerateUnconfirmedWarns(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/api/wizard/generate", map[string]any{
		"filename":  "spk",
		"confirmed": false,
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["warning"] != wizard.GenerateWarning {
		t.Errorf("warning = %v", body["warning"])
	}
	// Nothing was touched.
	if got := app.wizard.CurrentStep(); got != wizard.StepVendor {
		t.Errorf("step changed to %v", got)
	}
}

func TestGenerateRefusedBeforeCompletion(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/api/wizard/generate", map[string]any{
		"filename":  "spk",
		"confirmed": true,
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	msg, _ := body["error"].(string)
	if !strings.Contains(msg, wizard.MsgGenerateFailed) {
		t.Errorf("error = %q", msg)
	}
}

func TestLoginPersistsToken(t *testing.T) {
	app := newTestApp(t)
	app.up.on("POST /login", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"message": "ok",
			"data":    map[string]string{"token": "jwt-xyz"},
		})
	})

	rec := app.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"username": "admin",
		"password": "rahasia",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := app.store.GetString(store.TokenKey, ""); got != "jwt-xyz" {
		t.Fatalf("stored token = %q", got)
	}
}

func TestLoginRejectedUpstream(t *testing.T) {
	app := newTestApp(t)
	app.up.on("POST /login", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{"message": "Kredensial salah"})
	})

	rec := app.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"username": "admin",
		"password": "salah",
	})
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["error"] != "Kredensial salah" {
		t.Errorf("error = %v", body["error"])
	}
}

func TestMeWithoutSession(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodGet, "/api/auth/me", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["login_required"] != true {
		t.Errorf("login_required = %v", body["login_required"])
	}
}

func TestMeWithOpaqueToken(t *testing.T) {
	app := newTestApp(t)
	if err := app.store.Set(store.TokenKey, "opaque-session"); err != nil {
		t.Fatalf("set token: %v", err)
	}

	rec := app.do(t, http.MethodGet, "/api/auth/me", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if body := decodeBody(t, rec); body["logged_in"] != true {
		t.Errorf("logged_in = %v", body["logged_in"])
	}
}

func TestLogoutKeepsWizardState(t *testing.T) {
	app := newTestApp(t)
	if err := app.store.Set(store.TokenKey, "tok"); err != nil {
		t.Fatalf("set token: %v", err)
	}
	if rec := app.do(t, http.MethodPut, "/api/wizard/vendor", handlerVendor()); rec.Code != http.StatusOK {
		t.Fatalf("draft status = %d", rec.Code)
	}

	rec := app.do(t, http.MethodPost, "/api/auth/logout", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := app.store.GetString(store.TokenKey, ""); got != "" {
		t.Errorf("token survived logout: %q", got)
	}
	if got := app.wizard.Vendor().NamaVendor; got != "PT Handal Sejahtera" {
		t.Errorf("vendor draft lost: %q", got)
	}
}

func TestStepScopeTagsRequestContext(t *testing.T) {
	router := gin.New()
	var got string
	router.GET("/tagged", stepScope(wizard.StepContract), func(c *gin.Context) {
		got, _ = c.Request.Context().Value(logger.StepKey).(string)
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tagged", nil))
	if got != "kontrak" {
		t.Errorf("wizard_step in context = %q, want %q", got, "kontrak")
	}
}
