package matches

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/falijedan/falijedan/internal/backend"
	"github.com/falijedan/falijedan/internal/i18n"
	"github.com/falijedan/falijedan/internal/identity"
	"github.com/falijedan/falijedan/internal/mapview"
	"github.com/falijedan/falijedan/internal/models"
	"github.com/falijedan/falijedan/internal/testutil"
)

func setupHandlers(t *testing.T) *testutil.FakeBackend {
	t.Helper()

	fake := testutil.NewFakeBackend()
	name := "Ana Anić"
	fake.Matches = []models.Match{
		{ID: "m1", Sport: models.SportFootball, TeamA: "Dinamo", TeamB: "Hajduk", Location: "Zagreb", Venue: "Maksimir", Latitude: 45.8188, Longitude: 16.0182, MatchTime: time.Date(2025, time.June, 4, 16, 30, 0, 0, time.UTC), UserID: "owner"},
		{ID: "m2", Sport: models.SportTennis, TeamA: "Iva", TeamB: "Petra", Location: "Split", Venue: "Firule", MatchTime: time.Date(2025, time.June, 5, 9, 0, 0, 0, time.UTC), UserID: "owner"},
	}
	fake.Profiles = []models.Profile{{ID: "u2", FullName: &name}}
	fake.Participations = []models.Participation{{ID: "p1", MatchID: "m1", UserID: "u2", CreatedAt: time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)}}

	embedder, err := mapview.New("https://www.openstreetmap.org/export/embed.html", 0.01)
	if err != nil {
		t.Fatalf("new embedder: %v", err)
	}

	prev, _ := loadConfig()
	InitHandlers(HandlerConfig{Data: fake, Maps: embedder})
	t.Cleanup(func() { InitHandlers(prev) })
	return fake
}

func zagrebRequest(t *testing.T, req *http.Request) *http.Request {
	t.Helper()

	zagreb, err := time.LoadLocation("Europe/Zagreb")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	bundle, err := i18n.NewBundle("hr", zagreb)
	if err != nil {
		t.Fatalf("new bundle: %v", err)
	}
	return req.WithContext(i18n.WithLocale(req.Context(), bundle.Default()))
}

func asViewer(req *http.Request, id string) *http.Request {
	return req.WithContext(identity.WithIdentity(req.Context(), &backend.Identity{ID: id, Email: id + "@example.com"}))
}

func postForm(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func serve(handler http.HandlerFunc, pattern string, req *http.Request) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.HandleFunc(pattern, handler)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestHandleListingFullPage(t *testing.T) {
	setupHandlers(t)

	rec := httptest.NewRecorder()
	HandleListing(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "<!DOCTYPE html>") || !strings.Contains(body, `id="match-list"`) {
		t.Fatalf("expected full listing page, got %q", body)
	}
	if !strings.Contains(body, "Dinamo vs Hajduk") || !strings.Contains(body, "Iva vs Petra") {
		t.Fatalf("expected both matches, got %q", body)
	}
}

func TestHandleListingFilterWorksWithoutScript(t *testing.T) {
	setupHandlers(t)

	rec := httptest.NewRecorder()
	HandleListing(rec, httptest.NewRequest(http.MethodGet, "/?sport=football", nil))

	body := rec.Body.String()
	if !strings.Contains(body, `<button type="submit" class="text-sm text-blue-600">Primijeni</button>`) {
		t.Fatalf("expected visible filter submit button, got %q", body)
	}
	if strings.Contains(body, "<noscript>") {
		t.Fatal("expected the submit button outside noscript")
	}
	if !strings.Contains(body, "Dinamo vs Hajduk") || strings.Contains(body, "Iva vs Petra") {
		t.Fatalf("expected the full page filtered to football, got %q", body)
	}
}

func TestHandleListingFilteredFragment(t *testing.T) {
	setupHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/?sport=football&location=", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	HandleListing(rec, req)

	body := rec.Body.String()
	if strings.Contains(body, "<!DOCTYPE html>") {
		t.Fatal("expected a fragment for htmx requests")
	}
	if !strings.Contains(body, "Dinamo vs Hajduk") || strings.Contains(body, "Iva vs Petra") {
		t.Fatalf("expected only the football match, got %q", body)
	}
}

func TestHandleListingEmptyFilterResult(t *testing.T) {
	setupHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/?sport=basketball", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	HandleListing(rec, req)

	if !strings.Contains(rec.Body.String(), "Nema pronađenih utakmica.") {
		t.Fatalf("expected empty state, got %q", rec.Body.String())
	}
}

func TestHandleListingLoadError(t *testing.T) {
	fake := setupHandlers(t)
	fake.Fail["select:matches"] = backend.ErrNotConfigured

	rec := httptest.NewRecorder()
	HandleListing(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Greška pri učitavanju utakmica.") {
		t.Fatalf("expected load error, got %q", rec.Body.String())
	}
}

func TestHandleMatchDetail(t *testing.T) {
	setupHandlers(t)

	req := zagrebRequest(t, httptest.NewRequest(http.MethodGet, "/match/m1", nil))
	rec := serve(HandleMatchDetail, "GET /match/{id}", req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"Dinamo vs Hajduk",
		"srijeda, 4. lipnja 2025.",
		"18:30",
		"Maksimir, Zagreb",
		"Ana Anić",
		"Pridružio se 1.06.2025.",
		"openstreetmap.org/export/embed.html",
		`action="/match/m1/join"`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in detail page, got %q", want, body)
		}
	}
}

func TestHandleMatchDetailShowsSelfAndJoined(t *testing.T) {
	setupHandlers(t)

	req := asViewer(httptest.NewRequest(http.MethodGet, "/match/m1", nil), "u2")
	rec := serve(HandleMatchDetail, "GET /match/{id}", req)

	body := rec.Body.String()
	if !strings.Contains(body, ">Vi<") {
		t.Fatalf("expected self label, got %q", body)
	}
	if strings.Contains(body, `action="/match/m1/join"`) {
		t.Fatal("expected no join button for a participant")
	}
}

func TestHandleMatchDetailNotFound(t *testing.T) {
	setupHandlers(t)

	rec := serve(HandleMatchDetail, "GET /match/{id}", httptest.NewRequest(http.MethodGet, "/match/missing", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Utakmica nije pronađena") {
		t.Fatalf("expected not found message, got %q", rec.Body.String())
	}
}

func TestHandleMatchDetailParticipantFailureShowsEmptyList(t *testing.T) {
	fake := setupHandlers(t)
	fake.Fail["select:profiles"] = errors.New("timeout")

	rec := serve(HandleMatchDetail, "GET /match/{id}", httptest.NewRequest(http.MethodGet, "/match/m1", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Dinamo vs Hajduk") {
		t.Fatalf("expected the match to render, got %q", rec.Body.String())
	}
}

func TestHandleJoinAnonymousRedirectsWithoutInsert(t *testing.T) {
	fake := setupHandlers(t)

	rec := serve(HandleJoin, "POST /match/{id}/join", postForm("/match/m1/join", nil))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/login?redirect_to=%2Fmatch%2Fm1" {
		t.Fatalf("unexpected redirect %q", got)
	}
	if fake.CallCount("insert", backend.Participants) != 0 {
		t.Fatal("expected no participation insert")
	}
}

func TestHandleJoin(t *testing.T) {
	fake := setupHandlers(t)

	rec := serve(HandleJoin, "POST /match/{id}/join", asViewer(postForm("/match/m1/join", nil), "u3"))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d: %s", http.StatusSeeOther, rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Location"); got != "/match/m1" {
		t.Fatalf("expected redirect to detail, got %q", got)
	}
	if fake.CallCount("insert", backend.Participants) != 1 {
		t.Fatal("expected one participation insert")
	}
	last := fake.Participations[len(fake.Participations)-1]
	if last.MatchID != "m1" || last.UserID != "u3" {
		t.Fatalf("unexpected participation %+v", last)
	}
}

func TestHandleJoinFailureShowsBanner(t *testing.T) {
	fake := setupHandlers(t)
	fake.Fail["insert:match_participants"] = &backend.Error{Op: "insert", Collection: backend.Participants, Status: http.StatusConflict, Code: "23505", Message: "duplicate key"}

	rec := serve(HandleJoin, "POST /match/{id}/join", asViewer(postForm("/match/m1/join", nil), "u3"))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected status %d, got %d", http.StatusBadGateway, rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Dinamo vs Hajduk") {
		t.Fatalf("expected the detail page behind the banner, got %q", body)
	}
	if !strings.Contains(body, "bg-red-100") {
		t.Fatalf("expected an error banner, got %q", body)
	}
}

func TestHandleAddMatchPage(t *testing.T) {
	setupHandlers(t)

	rec := httptest.NewRecorder()
	HandleAddMatchPage(rec, asViewer(httptest.NewRequest(http.MethodGet, "/add-match", nil), "u1"))

	body := rec.Body.String()
	if !strings.Contains(body, `action="/add-match"`) {
		t.Fatalf("expected the add match form, got %q", body)
	}
	if !strings.Contains(body, `value="45.815399"`) || !strings.Contains(body, `value="15.966568"`) {
		t.Fatalf("expected Zagreb default coordinates, got %q", body)
	}
}

func validMatchValues() url.Values {
	return url.Values{
		"sport":       {"football"},
		"team_a":      {"Dinamo"},
		"team_b":      {"Rijeka"},
		"location":    {"Zagreb"},
		"venue":       {"Maksimir"},
		"latitude":    {"45.8188"},
		"longitude":   {"16.0182"},
		"match_time":  {"2025-06-10T18:30"},
		"description": {"Prijateljska"},
	}
}

func TestHandleCreateMatch(t *testing.T) {
	fake := setupHandlers(t)

	req := zagrebRequest(t, asViewer(postForm("/add-match", validMatchValues()), "u1"))
	rec := httptest.NewRecorder()
	HandleCreateMatch(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d: %s", http.StatusSeeOther, rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Location"); got != "/" {
		t.Fatalf("expected redirect to /, got %q", got)
	}
	created := fake.Matches[len(fake.Matches)-1]
	if created.UserID != "u1" || created.TeamB != "Rijeka" {
		t.Fatalf("unexpected match %+v", created)
	}
	if want := time.Date(2025, time.June, 10, 16, 30, 0, 0, time.UTC); !created.MatchTime.Equal(want) {
		t.Fatalf("expected match time %v, got %v", want, created.MatchTime)
	}
}

func TestHandleCreateMatchInvalidKeepsInput(t *testing.T) {
	fake := setupHandlers(t)
	values := validMatchValues()
	values.Set("team_b", "")
	values.Set("latitude", "north")

	rec := httptest.NewRecorder()
	HandleCreateMatch(rec, asViewer(postForm("/add-match", values), "u1"))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status %d, got %d", http.StatusUnprocessableEntity, rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `value="Dinamo"`) || !strings.Contains(body, `value="north"`) {
		t.Fatalf("expected submitted values to be kept, got %q", body)
	}
	if fake.CallCount("insert", backend.Matches) != 0 {
		t.Fatal("expected no insert for an invalid form")
	}
}

func TestHandleCreateMatchAnonymous(t *testing.T) {
	fake := setupHandlers(t)

	rec := httptest.NewRecorder()
	HandleCreateMatch(rec, postForm("/add-match", validMatchValues()))

	if got := rec.Header().Get("Location"); got != "/login?redirect_to=%2Fadd-match" {
		t.Fatalf("unexpected redirect %q", got)
	}
	if fake.CallCount("insert", backend.Matches) != 0 {
		t.Fatal("expected no insert")
	}
}

func TestHandleCreateMatchBackendFailure(t *testing.T) {
	fake := setupHandlers(t)
	fake.Fail["insert:matches"] = &backend.Error{Op: "insert", Collection: backend.Matches, Status: http.StatusForbidden, Message: "row level security"}

	rec := httptest.NewRecorder()
	HandleCreateMatch(rec, asViewer(postForm("/add-match", validMatchValues()), "u1"))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected status %d, got %d", http.StatusBadGateway, rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `value="Rijeka"`) {
		t.Fatalf("expected the form to be kept, got %q", rec.Body.String())
	}
}
