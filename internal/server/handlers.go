package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/resume-site/internal/app"
	"github.com/jonathan/resume-site/internal/events"
	"github.com/jonathan/resume-site/internal/export"
	"github.com/jonathan/resume-site/internal/site"
	"github.com/jonathan/resume-site/internal/storage"
)

// PDFParam switches PDF mode on a rendered page (?pdf=1).
const PDFParam = "pdf"

// SelectionRequest is the body of POST /api/selection/{resume,theme}.
type SelectionRequest struct {
	Value string `json:"value"`
}

// SelectionResponse reports the stored selections.
type SelectionResponse struct {
	Resume     string `json:"resume,omitempty"`
	Theme      string `json:"theme,omitempty"`
	Stylesheet string `json:"stylesheet,omitempty"`
}

// bootPage boots a page session for the request URL. Navigations requested
// during boot are recorded, not performed.
func (s *Server) bootPage(r *http.Request) (*site.Page, error) {
	return site.Boot(r.Context(), site.Options{
		Source:        s.source,
		Store:         s.cfg.Store,
		Location:      requestURL(r),
		Navigator:     &app.RecordingNavigator{},
		Shell:         s.cfg.Shell,
		DefaultResume: s.cfg.DefaultResume,
		Sanitize:      s.cfg.Sanitize,
		Watchdog:      s.cfg.Watchdog,
		Verbose:       s.cfg.Verbose,
	})
}

func requestURL(r *http.Request) *url.URL {
	u := *r.URL
	u.Scheme = "http"
	if r.TLS != nil {
		u.Scheme = "https"
	}
	u.Host = r.Host
	return &u
}

func applyPDFParam(page *site.Page, r *http.Request) {
	v := r.URL.Query().Get(PDFParam)
	if v == "" {
		return
	}
	on, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("[server] ignoring %s=%q: %v", PDFParam, v, err)
		return
	}
	page.PDF.SetActive(on)
}

// handlePage renders the page. A navigation requested by the résumé switcher
// becomes a redirect.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	page, err := s.bootPage(r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	defer page.Close()

	if nav := page.Navigation(); nav != nil {
		http.Redirect(w, r, nav.RequestURI(), http.StatusFound)
		return
	}

	applyPDFParam(page, r)
	html, err := page.HTML()
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(html)); err != nil {
		log.Printf("[server] failed to write page: %v", err)
	}
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleGetSelection returns the stored selections.
func (s *Server) handleGetSelection(w http.ResponseWriter, r *http.Request) {
	var resp SelectionResponse
	for key, dst := range map[string]*string{
		storage.KeySelectedResume: &resp.Resume,
		storage.KeySelectedTheme:  &resp.Theme,
	} {
		v, _, err := s.cfg.Store.Get(r.Context(), key)
		if err != nil {
			s.errorResponse(w, http.StatusInternalServerError, err.Error())
			return
		}
		*dst = v
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) decodeSelection(w http.ResponseWriter, r *http.Request) (string, error) {
	var req SelectionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil {
		return "", &ErrValidation{Field: "body", Message: "invalid JSON"}
	}
	value := strings.TrimSpace(req.Value)
	if value == "" {
		return "", &ErrValidation{Field: "value", Message: "is required"}
	}
	return value, nil
}

// handleSelectResume switches the résumé and stores the selection.
func (s *Server) handleSelectResume(w http.ResponseWriter, r *http.Request) {
	value, err := s.decodeSelection(w, r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	page, err := s.bootPage(r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	defer page.Close()

	if !page.Resumes.Manifest().HasFile(value) {
		err := &ErrValidation{Field: "value", Message: fmt.Sprintf("unknown résumé %q", value)}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	unsub := events.Subscribe(page.App.Bus, events.TopicResumeChanged, func(ev events.ResumeChanged) {
		events.Publish(s.bus, events.TopicResumeChanged, ev)
	})
	defer unsub()

	if err := page.Resumes.ChangeResume(r.Context(), value); err != nil {
		// The selection is stored even when the document fails to load.
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, SelectionResponse{Resume: page.Resumes.CurrentResume()})
}

// handleSelectTheme applies a theme and stores the selection.
func (s *Server) handleSelectTheme(w http.ResponseWriter, r *http.Request) {
	value, err := s.decodeSelection(w, r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	page, err := s.bootPage(r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	defer page.Close()

	unsub := events.Subscribe(page.App.Bus, events.TopicThemeChanged, func(ev events.ThemeChanged) {
		events.Publish(s.bus, events.TopicThemeChanged, ev)
	})
	defer unsub()

	if err := page.Themes.ChangeTheme(r.Context(), value); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, SelectionResponse{
		Theme:      page.Themes.CurrentTheme(),
		Stylesheet: page.Themes.Stylesheet(),
	})
}

// handleEvents streams selection changes made through the API.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	// Streams outlive the server's write timeout.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	ch := make(chan Frame, 16)
	unsubResume := events.Subscribe(s.bus, events.TopicResumeChanged, func(ev events.ResumeChanged) {
		queueFrame(ch, events.TopicResumeChanged, ev)
	})
	defer unsubResume()
	unsubTheme := events.Subscribe(s.bus, events.TopicThemeChanged, func(ev events.ThemeChanged) {
		queueFrame(ch, events.TopicThemeChanged, ev)
	})
	defer unsubTheme()

	if err := sse.WriteComment("connected"); err != nil {
		return
	}

	keepAlive := time.NewTicker(30 * time.Second)
	defer keepAlive.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case f := <-ch:
			if err := sse.WriteFrame(f); err != nil {
				return
			}
		case <-keepAlive.C:
			if err := sse.WriteComment("ping"); err != nil {
				return
			}
		}
	}
}

// queueFrame encodes payload for an event stream, dropping it when the
// stream has fallen behind.
func queueFrame[T any](ch chan<- Frame, topic events.Topic[T], payload T) {
	f, err := EncodeFrame(topic, payload)
	if err != nil {
		log.Printf("[server] %v", err)
		return
	}
	select {
	case ch <- f:
	default:
		log.Printf("[server] event stream full, dropping %s", f.Event)
	}
}

// handleExport prints the page the request URL describes to PDF.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Printer == nil {
		err := &ErrExportUnavailable{}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	page, err := s.bootPage(r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	defer page.Close()
	applyPDFParam(page, r)

	base := requestURL(r)
	base.Path = "/"
	base.RawQuery = ""

	pdf, err := export.Export(r.Context(), page.App, s.cfg.Printer, base.String())
	if err != nil {
		log.Printf("[server] export failed: %v", err)
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", pdfName(page.Resumes.CurrentResume())))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		log.Printf("[server] failed to write PDF: %v", err)
	}
}

func pdfName(resumePath string) string {
	name := strings.TrimSuffix(path.Base(resumePath), path.Ext(resumePath))
	if name == "" || name == "." || name == "/" {
		name = "resume"
	}
	return name + ".pdf"
}
