package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func newTestHandler(load ModelLoader) http.Handler {
	return newWebHandler(NewCalculator(load, Clock12h, discardLogger()), discardLogger())
}

func TestHomeShowsDefaultBedtime(t *testing.T) {
	h := newTestHandler(fixedHours(7.5))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{`value="06:30"`, `value="8"`, `<option value="1" selected>1 cup</option>`, "11:00 PM", "(previous day)"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestHomeRecomputesFromQuery(t *testing.T) {
	h := newTestHandler(fixedHours(7.5))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?wake=07:00&sleep=8&coffee=2", nil))

	body := rec.Body.String()
	if !strings.Contains(body, `id="bedtime">11:30 PM<`) {
		t.Errorf("body missing bedtime 11:30 PM")
	}
	if !strings.Contains(body, `<option value="2" selected>2 cups</option>`) {
		t.Errorf("coffee picker does not reflect query")
	}
}

func TestHomeInvalidQuery(t *testing.T) {
	h := newTestHandler(fixedHours(7.5))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?sleep=13", nil))

	body := rec.Body.String()
	if !strings.Contains(body, `class="err"`) {
		t.Error("expected an error message")
	}
	if strings.Contains(body, `id="bedtime"`) {
		t.Error("no bedtime should be shown for invalid input")
	}
}

func TestHomeBrokenModelShowsFallback(t *testing.T) {
	h := newTestHandler(func() (Predictor, error) { return nil, errors.New("missing artifact") })

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?wake=07:00", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `id="bedtime">Error<`) {
		t.Error("body missing fallback bedtime")
	}
}

func TestCalcRedirects(t *testing.T) {
	tests := []struct {
		name string
		form url.Values
		want string
	}{
		{"defaults", url.Values{"wake": {"06:30"}, "sleep": {"8"}, "coffee": {"1"}}, "/"},
		{"changed", url.Values{"wake": {"07:00"}, "sleep": {"8"}, "coffee": {"3"}}, "/?coffee=3&wake=07%3A00"},
		{"empty uses defaults", url.Values{}, "/"},
	}

	h := newTestHandler(fixedHours(7.5))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/calc", strings.NewReader(tt.form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != http.StatusFound {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusFound)
			}
			if got := rec.Header().Get("Location"); got != tt.want {
				t.Errorf("Location = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCalcRejectsInvalidForm(t *testing.T) {
	h := newTestHandler(fixedHours(7.5))

	form := url.Values{"wake": {"07:00"}, "sleep": {"8"}, "coffee": {"25"}}
	req := httptest.NewRequest(http.MethodPost, "/calc", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if !strings.Contains(rec.Body.String(), "coffee intake") {
		t.Error("body missing validation message")
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/calc", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /calc status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

func TestAPIBedtime(t *testing.T) {
	tests := []struct {
		name       string
		load       ModelLoader
		query      string
		wantStatus int
		wantTime   string
		wantError  bool
	}{
		{"ok", fixedHours(7.5), "wake=07:00&sleep=8&coffee=2", http.StatusOK, "11:30 PM", false},
		{"wrap", fixedHours(9), "wake=00:30", http.StatusOK, "3:30 PM", false},
		{"broken model", func() (Predictor, error) { return nil, errors.New("boom") }, "", http.StatusOK, "Error", true},
		{"bad input", fixedHours(7.5), "coffee=many", http.StatusBadRequest, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newTestHandler(tt.load).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/bedtime?"+tt.query, nil))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var res bedtimeResponse
			if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
				t.Fatal(err)
			}
			if res.Bedtime != tt.wantTime {
				t.Errorf("bedtime = %q, want %q", res.Bedtime, tt.wantTime)
			}
			if (res.Error != "") != tt.wantError {
				t.Errorf("error = %q, wantError %v", res.Error, tt.wantError)
			}
		})
	}
}

func TestMetricsAndHealth(t *testing.T) {
	h := newTestHandler(fixedHours(7.5))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "betterrest_calculations_total") {
		t.Error("metrics missing betterrest_calculations_total")
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("healthz status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown path status = %d", rec.Code)
	}
}

func TestBuildCalcURL(t *testing.T) {
	if got := buildCalcURL(webDefaultWake, webDefaultSleep, webDefaultCoffee); got != "/" {
		t.Errorf("buildCalcURL(defaults) = %q", got)
	}
	if got := buildCalcURL("06:30", "7.5", "1"); got != "/?sleep=7.5" {
		t.Errorf("buildCalcURL = %q", got)
	}
}
