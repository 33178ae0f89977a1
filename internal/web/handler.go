// Package web implements the HTTP handlers of the portal. Every page is served
// as a JSON view-model; the browser front end owns the markup.
//
// Routes:
//
//	GET  /                    → job list page (?visible=N)
//	GET  /jobs/search         → title search (?q=)
//	GET  /jobs/{id}           → job detail
//	POST /jobs/{id}/apply     → application form (multipart)
//	GET  /auth                → login form state
//	POST /auth/login          → login
//	POST /auth/register       → register
//	POST /logout              → logout
//	GET  /list                → management list (session required)
//	POST /list/{id}/edit      → local edit (session required)
//	POST /list/{id}/delete    → delete (session required)
//	POST /createjob           → create a job
//	GET  /health              → liveness
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/netip"
	"strconv"
	"strings"

	"careerpage/portal-service/internal/detail"
	"careerpage/portal-service/internal/jobstore"
	"careerpage/portal-service/internal/listing"
	"careerpage/portal-service/internal/manage"
	"careerpage/portal-service/internal/model"
	"careerpage/portal-service/internal/ratelimit"
	"careerpage/portal-service/internal/session"
)

const maxUploadBytes = 10 << 20

// JobStore is the part of the Remote Job Store the public pages use.
type JobStore interface {
	ListJobs(ctx context.Context, token string) ([]model.Job, error)
	CreateJob(ctx context.Context, job model.Job) (*model.Job, error)
}

// Handler holds shared dependencies.
type Handler struct {
	store     JobStore
	sessions  *session.Manager
	boards    *manage.Service
	submitter detail.Submitter
	limiter   *ratelimit.Limiter
	proxies   trustedProxies
}

// NewHandler returns a configured Handler. A nil submitter discards
// applications; a nil limiter disables login throttling.
func NewHandler(store JobStore, sessions *session.Manager, boards *manage.Service, submitter detail.Submitter, limiter *ratelimit.Limiter) *Handler {
	if submitter == nil {
		submitter = detail.DiscardSubmitter{}
	}
	return &Handler{
		store:     store,
		sessions:  sessions,
		boards:    boards,
		submitter: submitter,
		limiter:   limiter,
	}
}

// TrustProxies makes the login limiter key on the X-Forwarded-For client
// address, but only for requests arriving from one of prefixes. Without it
// the limiter keys on the peer address alone.
func (h *Handler) TrustProxies(prefixes []netip.Prefix) *Handler {
	h.proxies = trustedProxies(prefixes)
	return h
}

// RegisterRoutes mounts all portal routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/", h.handleHome)
	mux.HandleFunc("/jobs/", h.handleJobs)
	mux.HandleFunc("/auth", h.handleAuthForm)
	mux.HandleFunc("/auth/", h.handleAuthAction)
	mux.HandleFunc("/logout", h.handleLogout)
	mux.HandleFunc("/list", h.handleList)
	mux.HandleFunc("/list/", h.handleListAction)
	mux.HandleFunc("/createjob", h.handleCreateJob)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		jsonOK(w, map[string]string{"status": "ok", "service": "portal-service"})
	})
}

// ─── Route dispatch ───────────────────────────────────────────────────────────

// handleHome handles GET /
func (h *Handler) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		jsonError(w, "not found", http.StatusNotFound)
		return
	}
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.jobList(w, r)
}

// handleJobs handles GET /jobs/search, GET /jobs/{id} and POST /jobs/{id}/apply
func (h *Handler) handleJobs(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case len(parts) == 2 && parts[1] == "search":
		if r.Method != http.MethodGet {
			jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.searchJobs(w, r)
	case len(parts) == 2 && parts[1] != "":
		if r.Method != http.MethodGet {
			jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.jobDetail(w, r, parts[1])
	case len(parts) == 3 && parts[2] == "apply":
		if r.Method != http.MethodPost {
			jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.apply(w, r, parts[1])
	default:
		jsonError(w, "invalid path", http.StatusNotFound)
	}
}

// handleAuthAction handles POST /auth/login|register
func (h *Handler) handleAuthAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	switch action := strings.TrimPrefix(r.URL.Path, "/auth/"); action {
	case "login":
		h.login(w, r)
	case "register":
		h.register(w, r)
	default:
		jsonError(w, fmt.Sprintf("unknown action %q", action), http.StatusNotFound)
	}
}

// handleList handles GET /list
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s := h.requireSession(w, r)
	if s == nil {
		return
	}
	h.managementList(w, r, s)
}

// handleListAction handles POST /list/{id}/edit|delete
func (h *Handler) handleListAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 3 || parts[1] == "" {
		jsonError(w, "invalid path", http.StatusNotFound)
		return
	}
	s := h.requireSession(w, r)
	if s == nil {
		return
	}

	jobID := parts[1]
	switch action := parts[2]; action {
	case "edit":
		h.editJob(w, r, s, jobID)
	case "delete":
		h.deleteJob(w, r, s, jobID)
	default:
		jsonError(w, fmt.Sprintf("unknown action %q", action), http.StatusNotFound)
	}
}

// ─── Public pages ─────────────────────────────────────────────────────────────

func (h *Handler) jobList(w http.ResponseWriter, r *http.Request) {
	cursor := listing.PageStep
	if raw := r.URL.Query().Get("visible"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			jsonError(w, "visible must be a non-negative integer", http.StatusBadRequest)
			return
		}
		cursor = n
	}

	view := listing.NewView(h.store)
	if err := view.Load(r.Context()); err != nil {
		writeJSON(w, http.StatusBadGateway, view.Render(cursor))
		return
	}
	jsonOK(w, view.Render(cursor))
}

func (h *Handler) searchJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.store.ListJobs(r.Context(), "")
	if err != nil {
		log.Printf("[portal] search load error: %v", err)
		jsonError(w, "Failed to load jobs", http.StatusBadGateway)
		return
	}
	query := r.URL.Query().Get("q")
	matches := listing.SearchTitle(jobs, query)
	jsonOK(w, map[string]any{
		"query": query,
		"jobs":  matches,
		"total": len(matches),
	})
}

func (h *Handler) jobDetail(w http.ResponseWriter, r *http.Request, jobID string) {
	jobs, err := h.store.ListJobs(r.Context(), "")
	if err != nil {
		log.Printf("[portal] detail load error: %v", err)
		jsonError(w, "Failed to load jobs", http.StatusBadGateway)
		return
	}
	i := model.IndexByID(jobs, jobID)
	if i < 0 {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	jsonOK(w, detail.Render(jobs[i]))
}

func (h *Handler) apply(w http.ResponseWriter, r *http.Request, jobID string) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		jsonError(w, "body must be multipart/form-data", http.StatusBadRequest)
		return
	}

	form := detail.ApplicationForm{
		Name:       r.FormValue("name"),
		Email:      r.FormValue("email"),
		Phone:      r.FormValue("phone"),
		Experience: r.FormValue("experience"),
	}
	if file, header, err := r.FormFile("resume"); err == nil {
		file.Close()
		form.Resume = &detail.Resume{
			Filename:    header.Filename,
			Size:        header.Size,
			ContentType: header.Header.Get("Content-Type"),
		}
	}

	app, err := form.Validate(jobID)
	if err != nil {
		validationError(w, err)
		return
	}
	if err := h.submitter.Submit(r.Context(), *app); err != nil {
		log.Printf("[portal] submit application for job %s failed: %v", jobID, err)
		jsonError(w, "Failed to submit application", http.StatusBadGateway)
		return
	}
	jsonOK(w, map[string]string{"message": "Application submitted"})
}

func (h *Handler) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body model.Job
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	job, err := detail.ValidateNewJob(body)
	if err != nil {
		validationError(w, err)
		return
	}

	created, err := h.store.CreateJob(r.Context(), job)
	if err != nil {
		log.Printf("[portal] create job error: %v", err)
		jsonError(w, jobstore.MessageOf(err, "Failed to create job"), statusFor(err))
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":  "Job created successfully",
		"job":      created,
		"redirect": "/list",
	})
}

// ─── Auth ─────────────────────────────────────────────────────────────────────

// handleAuthForm handles GET /auth
func (h *Handler) handleAuthForm(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := sessionID(r)
	_, err := h.sessions.Current(r.Context(), id)
	jsonOK(w, map[string]any{
		"username": h.sessions.RememberedUsername(r.Context(), id),
		"loggedIn": err == nil,
	})
}

type credentialsBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

func decodeCredentials(r *http.Request) (credentialsBody, bool) {
	var body credentialsBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return body, false
	}
	body.Username = strings.TrimSpace(body.Username)
	return body, body.Username != "" && body.Password != ""
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	if !h.limiter.Allow(r.Context(), h.proxies.clientIP(r)) {
		jsonError(w, "Too many login attempts, try again later", http.StatusTooManyRequests)
		return
	}
	body, ok := decodeCredentials(r)
	if !ok {
		jsonError(w, "body must contain username and password", http.StatusBadRequest)
		return
	}

	res, err := h.sessions.Login(r.Context(), body.Username, body.Password, body.Remember)
	if err != nil {
		log.Printf("[portal] login error: %v", err)
		jsonError(w, jobstore.MessageOf(err, "Login failed"), statusFor(err))
		return
	}
	if res.Session == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": res.Message})
		return
	}

	// Replace any session the browser already held.
	if old := sessionID(r); old != "" {
		h.endSession(r.Context(), old)
	}
	setSessionCookie(w, res.Session)
	jsonOK(w, map[string]string{"message": res.Message, "redirect": "/list"})
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeCredentials(r)
	if !ok {
		jsonError(w, "body must contain username and password", http.StatusBadRequest)
		return
	}
	msg, err := h.sessions.Register(r.Context(), body.Username, body.Password)
	if err != nil {
		log.Printf("[portal] register error: %v", err)
		jsonError(w, jobstore.MessageOf(err, "Registration failed"), statusFor(err))
		return
	}
	jsonOK(w, map[string]string{"message": msg})
}

// handleLogout handles POST /logout
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if id := sessionID(r); id != "" {
		h.endSession(r.Context(), id)
	}
	clearSessionCookie(w)
	jsonOK(w, map[string]string{"redirect": "/auth"})
}

// ─── Management list ──────────────────────────────────────────────────────────

// ManagementPage is the JSON view-model of /list.
type ManagementPage struct {
	Username string      `json:"username"`
	Message  string      `json:"message,omitempty"`
	Jobs     []model.Job `json:"jobs"`
}

func (h *Handler) managementList(w http.ResponseWriter, r *http.Request, s *session.Session) {
	jobs, err := h.boards.Load(r.Context(), s.ID, s.Token)
	if err != nil {
		if manage.IsAuthFailure(err) {
			h.reauthenticate(w, r, s)
			return
		}
		writeJSON(w, http.StatusBadGateway, ManagementPage{
			Username: s.Username,
			Message:  manage.MsgLoadFailed,
			Jobs:     []model.Job{},
		})
		return
	}
	jsonOK(w, ManagementPage{Username: s.Username, Jobs: jobs})
}

func (h *Handler) editJob(w http.ResponseWriter, r *http.Request, s *session.Session, jobID string) {
	var body model.Job
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	job, err := detail.ValidateNewJob(body)
	if err != nil {
		validationError(w, err)
		return
	}

	edited, err := h.boards.Edit(s.ID, jobID, job)
	if errors.Is(err, manage.ErrNotFound) {
		jsonError(w, manage.MsgEditNotFound, http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	jsonOK(w, map[string]any{"message": manage.MsgEdited, "job": edited})
}

func (h *Handler) deleteJob(w http.ResponseWriter, r *http.Request, s *session.Session, jobID string) {
	msg, err := h.boards.Delete(r.Context(), s.ID, s.Token, jobID)
	if manage.IsAuthFailure(err) {
		h.reauthenticate(w, r, s)
		return
	}
	if err != nil {
		writeJSON(w, statusFor(err), ManagementPage{
			Username: s.Username,
			Message:  msg,
			Jobs:     h.boards.Jobs(s.ID),
		})
		return
	}
	jsonOK(w, ManagementPage{Username: s.Username, Message: msg, Jobs: h.boards.Jobs(s.ID)})
}

// ─── Sessions ─────────────────────────────────────────────────────────────────

// requireSession returns the caller's live session or redirects to /auth.
func (h *Handler) requireSession(w http.ResponseWriter, r *http.Request) *session.Session {
	s, err := h.sessions.Current(r.Context(), sessionID(r))
	if err != nil {
		if !errors.Is(err, session.ErrNoSession) {
			log.Printf("[portal] session lookup error: %v", err)
		}
		http.Redirect(w, r, "/auth", http.StatusSeeOther)
		return nil
	}
	return s
}

// reauthenticate ends a session whose token the Job Store refused and sends
// the browser back to the login view.
func (h *Handler) reauthenticate(w http.ResponseWriter, r *http.Request, s *session.Session) {
	h.endSession(r.Context(), s.ID)
	clearSessionCookie(w)
	http.Redirect(w, r, "/auth", http.StatusSeeOther)
}

func (h *Handler) endSession(ctx context.Context, id string) {
	if err := h.sessions.Logout(ctx, id); err != nil {
		log.Printf("[portal] logout error: %v", err)
	}
	h.boards.Drop(id)
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// statusFor maps Job Store errors onto the status the portal answers with.
func statusFor(err error) int {
	var apiErr *jobstore.APIError
	switch {
	case errors.Is(err, jobstore.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, jobstore.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500:
		return apiErr.Status
	default:
		return http.StatusBadGateway
	}
}

func validationError(w http.ResponseWriter, err error) {
	var vErr *detail.ValidationError
	if errors.As(err, &vErr) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  vErr.Error(),
			"fields": vErr.Fields,
		})
		return
	}
	jsonError(w, err.Error(), http.StatusBadRequest)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonOK(w http.ResponseWriter, v any) {
	writeJSON(w, http.StatusOK, v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
