package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Web form defaults; URL query only includes params that differ from these.
const (
	webDefaultWake   = "06:30"
	webDefaultSleep  = "8"
	webDefaultCoffee = "1"
)

type selectOption struct {
	Value    string
	Label    string
	Selected bool
}

type PageData struct {
	Wake   string
	Sleep  string
	Coffee string

	SleepLabel    string
	CoffeeOptions []selectOption

	MinSleep  float64
	MaxSleep  float64
	SleepStep float64

	Version string

	Error       string
	Bedtime     string
	PreviousDay bool

	// Share text: meta description when Bedtime is set (for link previews).
	ShareDescription string
}

type bedtimeResponse struct {
	Wake                string  `json:"wake"`
	SleepAmount         float64 `json:"sleep_amount"`
	Coffee              int     `json:"coffee"`
	Bedtime             string  `json:"bedtime"`
	PredictedSleepHours float64 `json:"predicted_sleep_hours,omitempty"`
	PreviousDay         bool    `json:"previous_day"`
	Error               string  `json:"error,omitempty"`
}

type webServer struct {
	calc   *Calculator
	logger *slog.Logger
	tpl    *template.Template
}

func newWebHandler(calc *Calculator, logger *slog.Logger) http.Handler {
	s := &webServer{
		calc:   calc,
		logger: logger,
		tpl:    template.Must(template.New("page").Parse(pageHTML)),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleHome)
	mux.HandleFunc("/calc", s.handleCalc)
	mux.HandleFunc("/api/bedtime", s.handleAPI)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "ok\n")
	})
	mux.Handle("/metrics", promhttp.Handler())

	return s.logRequests(mux)
}

func (s *webServer) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

func serveWeb(ctx context.Context, port int, calc *Calculator, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           newWebHandler(calc, logger),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("web server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down web server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

func (s *webServer) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	q := r.URL.Query()
	data := s.newPageData(
		trimmedOr(q.Get("wake"), webDefaultWake),
		trimmedOr(q.Get("sleep"), webDefaultSleep),
		trimmedOr(q.Get("coffee"), webDefaultCoffee),
	)

	in, err := parseInputs(data.Wake, data.Sleep, data.Coffee)
	if err != nil {
		data.Error = err.Error()
		s.render(w, http.StatusOK, data)
		return
	}

	// The bedtime is always shown, recomputed from whatever the form holds.
	b, err := s.calc.BedTime(in.Wake, in.SleepAmount, in.Coffee)
	if err != nil {
		s.logger.Warn("bedtime calculation failed", "error", err)
		data.Bedtime = fallbackBedtime
	} else {
		data.Bedtime = b.Formatted
		data.PreviousDay = b.DayOffset < 0
		data.ShareDescription = buildShareDescription(in, b)
	}

	s.render(w, http.StatusOK, data)
}

func (s *webServer) handleCalc(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	wake := trimmedOr(r.FormValue("wake"), webDefaultWake)
	sleep := trimmedOr(r.FormValue("sleep"), webDefaultSleep)
	coffee := trimmedOr(r.FormValue("coffee"), webDefaultCoffee)

	if _, err := parseInputs(wake, sleep, coffee); err != nil {
		data := s.newPageData(wake, sleep, coffee)
		data.Error = err.Error()
		s.render(w, http.StatusBadRequest, data)
		return
	}

	// Redirect to GET with query params (only non-defaults) so the URL reflects the calculation.
	http.Redirect(w, r, buildCalcURL(wake, sleep, coffee), http.StatusFound)
}

func (s *webServer) handleAPI(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	in, err := parseInputs(
		trimmedOr(q.Get("wake"), webDefaultWake),
		trimmedOr(q.Get("sleep"), webDefaultSleep),
		trimmedOr(q.Get("coffee"), webDefaultCoffee),
	)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, bedtimeResponse{Error: err.Error()})
		return
	}

	res := bedtimeResponse{
		Wake:        in.Wake.String(),
		SleepAmount: in.SleepAmount,
		Coffee:      in.Coffee,
	}
	b, err := s.calc.BedTime(in.Wake, in.SleepAmount, in.Coffee)
	if err != nil {
		s.logger.Warn("bedtime calculation failed", "error", err)
		res.Bedtime = fallbackBedtime
		res.Error = err.Error()
	} else {
		res.Bedtime = b.Formatted
		res.PredictedSleepHours = b.PredictedHours
		res.PreviousDay = b.DayOffset < 0
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *webServer) newPageData(wake, sleep, coffee string) PageData {
	data := PageData{
		Wake:      wake,
		Sleep:     sleep,
		Coffee:    coffee,
		MinSleep:  minSleepAmount,
		MaxSleep:  maxSleepAmount,
		SleepStep: sleepAmountStep,
		Version:   appVersion,
	}
	if h, err := parseFloat(sleep); err == nil {
		data.SleepLabel = sleepLabel(h)
	}
	for n := minCoffee; n <= maxCoffee; n++ {
		v := strconv.Itoa(n)
		data.CoffeeOptions = append(data.CoffeeOptions, selectOption{
			Value:    v,
			Label:    coffeeLabel(n),
			Selected: v == coffee,
		})
	}
	return data
}

func (s *webServer) render(w http.ResponseWriter, status int, data PageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.tpl.Execute(w, data); err != nil {
		s.logger.Error("template execution failed", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// parseInputs converts raw form values and applies the widget bounds.
func parseInputs(wakeStr, sleepStr, coffeeStr string) (Inputs, error) {
	wake, err := parseClock(wakeStr)
	if err != nil {
		return Inputs{}, fmt.Errorf("wake time: %w", err)
	}
	sleepH, err := parseFloat(sleepStr)
	if err != nil {
		return Inputs{}, fmt.Errorf("sleep amount must be a number of hours, e.g. 8 or 7.5")
	}
	coffee, err := strconv.Atoi(strings.TrimSpace(coffeeStr))
	if err != nil {
		return Inputs{}, fmt.Errorf("coffee intake must be a whole number of cups")
	}

	in := Inputs{Wake: wake, SleepAmount: sleepH, Coffee: coffee}
	if err := in.Validate(); err != nil {
		return Inputs{}, err
	}
	return in, nil
}

// buildCalcURL returns "/?..." and only adds params that differ from the defaults.
func buildCalcURL(wake, sleep, coffee string) string {
	v := url.Values{}
	if wake != "" && wake != webDefaultWake {
		v.Set("wake", wake)
	}
	if sleep != "" && sleep != webDefaultSleep {
		v.Set("sleep", sleep)
	}
	if coffee != "" && coffee != webDefaultCoffee {
		v.Set("coffee", coffee)
	}
	if len(v) == 0 {
		return "/"
	}
	return "/?" + v.Encode()
}

// buildShareDescription returns the meta description for link previews.
func buildShareDescription(in Inputs, b Bedtime) string {
	return fmt.Sprintf("Wake %s, %s of sleep, %s of coffee: go to bed at %s.",
		in.Wake, sleepLabel(in.SleepAmount), coffeeLabel(in.Coffee), b.Formatted)
}

func trimmedOr(val, def string) string {
	if strings.TrimSpace(val) == "" {
		return def
	}
	return strings.TrimSpace(val)
}

func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", ".")
	return strconv.ParseFloat(s, 64)
}

func printListenAddrs(w io.Writer, port int) {
	fmt.Fprintln(w, "Listening on:")
	fmt.Fprintf(w, "  http://127.0.0.1:%d/\n", port)

	ifaces, _ := net.Interfaces()
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 {
			continue
		}
		addrs, _ := iface.Addrs()
		for _, a := range addrs {
			ip, _, err := net.ParseCIDR(a.String())
			if err != nil || ip == nil || ip.IsLoopback() || ip.To4() == nil {
				continue
			}
			fmt.Fprintf(w, "  http://%s:%d/\n", ip.String(), port)
		}
	}
	fmt.Fprintln(w)
}

/* ---------------- HTML ---------------- */

const pageHTML = `<!doctype html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>BetterRest</title>
  {{if .ShareDescription}}
  <meta name="description" content="{{.ShareDescription}}">
  <meta property="og:description" content="{{.ShareDescription}}">
  {{end}}
  <style>
    body { font-family: system-ui, sans-serif; margin: 0; padding: 24px; max-width: 480px; box-sizing: border-box; }
    * { box-sizing: border-box; }
    h1 { margin-top: 0; font-weight: 700; }
    .err { color: #b00020; margin: 12px 0; padding: 10px; background: #ffebee; border-radius: 6px; }
    .card { border: 1px solid #e0e0e0; border-radius: 24px; padding: 16px 20px; margin: 16px 0; background: #fafafa; }
    .section-title { font-size: 0.8em; font-weight: 600; text-transform: uppercase; letter-spacing: 0.04em; color: #666; margin: 12px 0 6px; }
    .field input, .field select { padding: 8px 10px; font-size: 1em; border: 1px solid #ccc; border-radius: 6px; }
    .hint { color: #666; font-size: 0.9em; margin-left: 6px; }
    .result { text-align: center; font-size: 2em; font-weight: 700; margin-top: 24px; }
    .bedtime { color: #00a88f; }
    .offset { color: #888; font-size: 0.5em; font-weight: 400; }
    footer { margin-top: 40px; color: #666; font-size: 0.9em; text-align: center; }
  </style>
</head>
<body>
  <h1>BetterRest</h1>
  <form method="POST" action="/calc" class="card">
    <div class="section-title">When do you want to wake up?</div>
    <div class="field">
      <input id="wake" name="wake" type="time" value="{{.Wake}}" required onchange="this.form.submit()">
    </div>

    <div class="section-title">Desired amount of sleep</div>
    <div class="field">
      <input id="sleep" name="sleep" type="number" min="{{.MinSleep}}" max="{{.MaxSleep}}" step="{{.SleepStep}}" value="{{.Sleep}}" required onchange="this.form.submit()">
      {{if .SleepLabel}}<span class="hint">{{.SleepLabel}}</span>{{end}}
    </div>

    <div class="section-title">Daily coffee intake</div>
    <div class="field">
      <select id="coffee" name="coffee" onchange="this.form.submit()">
        {{range .CoffeeOptions}}<option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Label}}</option>{{end}}
      </select>
    </div>
    <noscript><button type="submit">Calculate</button></noscript>
  </form>

  {{if .Error}}<div class="err">{{.Error}}</div>{{end}}

  {{if .Bedtime}}
  <div class="result">
    <div>Your ideal bedtime is</div>
    <div class="bedtime" id="bedtime">{{.Bedtime}}</div>
    {{if .PreviousDay}}<div class="offset">(previous day)</div>{{end}}
  </div>
  {{end}}

  <footer>betterrest v{{.Version}}</footer>
</body>
</html>`
