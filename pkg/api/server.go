package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/skynet2/finance-reconciler/pkg/common"
	"github.com/skynet2/finance-reconciler/pkg/database"
	"github.com/skynet2/finance-reconciler/pkg/enrichment"
	"github.com/skynet2/finance-reconciler/pkg/ingest"
	"github.com/skynet2/finance-reconciler/pkg/jobs"
	"github.com/skynet2/finance-reconciler/pkg/matcher"
	"github.com/skynet2/finance-reconciler/pkg/truelayer"
	"github.com/skynet2/finance-reconciler/pkg/webhook"
)

const (
	maxImportBody  = 32 << 20
	maxRequestBody = 1 << 20
)

type Server struct {
	runner      JobRunner
	syncs       *SyncSubmitter
	links       LinkService
	estimator   Estimator
	connections ConnectionService
	webhooks    WebhookReceiver
	apiKey      string
}

func NewServer(
	runner JobRunner,
	links LinkService,
	estimator Estimator,
	connections ConnectionService,
	webhooks WebhookReceiver,
	apiKey string,
) *Server {
	return &Server{
		runner:      runner,
		syncs:       NewSyncSubmitter(runner),
		links:       links,
		estimator:   estimator,
		connections: connections,
		webhooks:    webhooks,
		apiKey:      apiKey,
	}
}

// Router wires every route. Webhooks authenticate with their signature, the
// rest of the api with the api key when one is configured.
func (s *Server) Router(lg zerolog.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(withLogger(lg))

	r.HandleFunc("/api/webhooks/{provider}", s.receiveWebhook).Methods(http.MethodPost)

	a := r.PathPrefix("/api").Subrouter()
	a.Use(s.authenticate)

	a.HandleFunc("/connections", s.createConnection).Methods(http.MethodPost)
	a.HandleFunc("/connections/{id}", s.getConnection).Methods(http.MethodGet)
	a.HandleFunc("/connections/{id}/disconnect", s.disconnect).Methods(http.MethodPost)
	a.HandleFunc("/connections/{id}/sync/{source}", s.submitSync).Methods(http.MethodPost)
	a.HandleFunc("/imports/{source}", s.submitImport).Methods(http.MethodPost)
	a.HandleFunc("/match/{source}", s.submitMatch).Methods(http.MethodPost)
	a.HandleFunc("/enrich", s.submitEnrich).Methods(http.MethodPost)
	a.HandleFunc("/enrich/estimate", s.estimateEnrich).Methods(http.MethodGet)
	a.HandleFunc("/jobs", s.listJobs).Methods(http.MethodGet)
	a.HandleFunc("/jobs/{id}", s.getJob).Methods(http.MethodGet)
	a.HandleFunc("/jobs/{id}/cancel", s.cancelJob).Methods(http.MethodPost)
	a.HandleFunc("/transactions/{id}/links", s.listLinks).Methods(http.MethodGet)
	a.HandleFunc("/links/{id}/verify", s.verifyLink).Methods(http.MethodPost)

	return r
}

func withLogger(lg zerolog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(lg.WithContext(r.Context())))
		})
	}
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" {
			next.ServeHTTP(w, r)
			return
		}

		key := r.Header.Get("X-API-Key")
		if key == "" {
			key = r.URL.Query().Get("api_key")
		}

		if key != s.apiKey {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) submitSync(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var req ingest.SyncRequest
	if err := decodeOptional(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	req.ConnectionID = vars["id"]
	req.SourceType = database.SourceType(vars["source"])

	if req.SourceType != database.SourceBankFeed {
		writeError(w, r, badRequest("source %q can not be synced, import it instead", req.SourceType))
		return
	}

	job, err := s.syncs.Submit(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, job.View())
}

func (s *Server) submitImport(w http.ResponseWriter, r *http.Request) {
	sourceType := database.SourceType(mux.Vars(r)["source"])

	if !sourceType.Valid() || sourceType == database.SourceBankFeed {
		writeError(w, r, badRequest("source %q can not be imported", sourceType))
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBody))
	if err != nil {
		writeError(w, r, badRequest("can not read import body: %v", err))
		return
	}

	if len(data) == 0 {
		writeError(w, r, badRequest("import body is empty"))
		return
	}

	job, err := s.runner.Submit(r.Context(), jobs.SubmitRequest{
		Type: database.JobTypeImport,
		Params: ingest.ImportRequest{
			SourceType: sourceType,
			Data:       data,
		},
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, job.View())
}

func (s *Server) submitMatch(w http.ResponseWriter, r *http.Request) {
	var req matcher.MatchRequest
	if err := decodeOptional(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	req.SourceType = database.SourceType(mux.Vars(r)["source"])

	if !lo.Contains(database.EnrichmentSources, req.SourceType) {
		writeError(w, r, badRequest("source %q can not be matched", req.SourceType))
		return
	}

	job, err := s.runner.Submit(r.Context(), jobs.SubmitRequest{
		Type:   database.JobTypeMatch,
		Params: req,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, job.View())
}

// submitEnrich refuses a paid batch without confirmation and returns the
// estimate so the caller can confirm it.
func (s *Server) submitEnrich(w http.ResponseWriter, r *http.Request) {
	var req enrichment.BatchRequest
	if err := decodeOptional(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	estimate, err := s.estimator.Estimate(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if !estimate.Free && !req.Confirm {
		writeJSON(w, http.StatusPreconditionFailed, errorResponse{
			Error:    "cost confirmation required",
			Estimate: estimate,
		})
		return
	}

	job, err := s.runner.Submit(r.Context(), jobs.SubmitRequest{
		Type:   database.JobTypeEnrich,
		Params: req,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, job.View())
}

func (s *Server) estimateEnrich(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	req := enrichment.BatchRequest{
		Provider: q.Get("provider"),
		Model:    q.Get("model"),
	}

	limit, err := intParam(q.Get("limit"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	req.Limit = limit

	for _, kind := range splitList(q.Get("kinds")) {
		req.Kinds = append(req.Kinds, enrichment.ItemKind(kind))
	}

	estimate, err := s.estimator.Estimate(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, estimate)
}

func (s *Server) listJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit, err := intParam(q.Get("limit"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	statuses := lo.Map(splitList(q.Get("status")), func(v string, _ int) database.JobStatus {
		return database.JobStatus(v)
	})

	// negative limits mean unlimited in the store, not over http
	filter := jobs.ListFilter{
		Type:   database.JobType(q.Get("type")),
		Status: statuses,
		Limit:  lo.Ternary(limit < 0, 0, limit),
	}

	list, err := s.runner.List(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, lo.Map(list, func(j *database.Job, _ int) database.JobView {
		return j.View()
	}))
}

func (s *Server) getJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.runner.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, job.View())
}

func (s *Server) cancelJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.runner.Cancel(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, job.View())
}

type linkView struct {
	*database.EnrichmentLink
	Source database.SourceRecord `json:"source,omitempty"`
}

func (s *Server) listLinks(w http.ResponseWriter, r *http.Request) {
	links, err := s.links.Links(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}

	views := make([]linkView, 0, len(links))

	for _, link := range links {
		source, err := s.links.Resolve(r.Context(), link)
		if err != nil && !errors.Is(err, common.ErrNotFound) {
			writeError(w, r, err)
			return
		}

		views = append(views, linkView{EnrichmentLink: link, Source: source})
	}

	writeJSON(w, http.StatusOK, views)
}

func (s *Server) verifyLink(w http.ResponseWriter, r *http.Request) {
	link, err := s.links.Verify(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, link)
}

type ConnectRequest struct {
	ProviderID  string `json:"provider_id"`
	Code        string `json:"code"`
	RedirectURI string `json:"redirect_uri"`
}

func (s *Server) createConnection(w http.ResponseWriter, r *http.Request) {
	var req ConnectRequest
	if err := decodeOptional(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if req.ProviderID == "" {
		req.ProviderID = truelayer.ProviderID
	}

	if req.ProviderID != truelayer.ProviderID {
		writeError(w, r, badRequest("unsupported provider %q", req.ProviderID))
		return
	}

	if req.Code == "" {
		writeError(w, r, badRequest("code is required"))
		return
	}

	conn, err := s.connections.Connect(r.Context(), req.ProviderID, req.Code, req.RedirectURI)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, conn)
}

func (s *Server) disconnect(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	revoked := false
	if raw := r.URL.Query().Get("revoked"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, r, badRequest("revoked must be a boolean"))
			return
		}

		revoked = v
	}

	if err := s.connections.Disconnect(r.Context(), id, revoked); err != nil {
		writeError(w, r, err)
		return
	}

	conn, err := s.connections.GetConnection(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, conn)
}

func (s *Server) getConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := s.connections.GetConnection(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, conn)
}

func (s *Server) receiveWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err != nil {
		writeError(w, r, badRequest("can not read webhook body"))
		return
	}

	outcome, err := s.webhooks.Handle(
		r.Context(),
		mux.Vars(r)["provider"],
		body,
		r.Header.Get(webhook.SignatureHeader),
	)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, outcome)
}

func decodeOptional(r *http.Request, target any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		return badRequest("can not read request body: %v", err)
	}

	if len(strings.TrimSpace(string(body))) == 0 {
		return nil
	}

	if err = json.Unmarshal(body, target); err != nil {
		return badRequest("request body is not valid json: %v", err)
	}

	return nil
}

func intParam(value string) (int, error) {
	if value == "" {
		return 0, nil
	}

	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, badRequest("%q is not a number", value)
	}

	return v, nil
}

func splitList(value string) []string {
	return lo.Compact(lo.Map(strings.Split(value, ","), func(v string, _ int) string {
		return strings.TrimSpace(v)
	}))
}
