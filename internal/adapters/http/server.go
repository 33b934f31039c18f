// Package httpadapter exposes search, company pages, the cart and checkout
// over JSON HTTP.
package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"companyhouse/internal/countries"
	"companyhouse/internal/domain"
	"companyhouse/internal/ports"
	"companyhouse/internal/services/cart"
	"companyhouse/internal/services/checkout"
	"companyhouse/internal/services/pricing"
)

const (
	SessionCookie = "session_id"

	minQueryLen     = 2
	maxQueryLen     = 100
	maxSearchLimit  = 50
	maxSuggestLimit = 20
)

type Deps struct {
	Search    ports.Searcher
	Companies ports.Companies
	Prices    *pricing.Resolver
	Carts     *cart.Service
	Checkout  *checkout.Service
	Registry  *countries.Registry
	// Metrics is mounted at /metrics when set.
	Metrics http.Handler
	Logger  *zap.Logger
}

type Server struct {
	Deps
}

func New(d Deps) *Server {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	return &Server{Deps: d}
}

// Routes returns the chi router for the whole API.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.healthz)
	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/search", func(r chi.Router) {
			r.Get("/companies", s.searchCompanies)
			r.Get("/suggestions", s.suggestions)
			r.Delete("/cache", s.clearCache)
		})
		r.Get("/companies/{slug}", s.companyDetail)
		r.Get("/companies/{slug}/reports", s.companyReports)

		r.Group(func(r chi.Router) {
			r.Use(s.session)
			r.Get("/cart", s.getCart)
			r.Delete("/cart", s.clearCart)
			r.Get("/cart/count", s.cartCount)
			r.Get("/cart/companies/{id}/reports", s.cartCompanyReports)
			r.Post("/cart/items", s.addItem)
			r.Patch("/cart/items/{id}", s.updateItem)
			r.Delete("/cart/items/{id}", s.removeItem)
			r.Post("/checkout", s.checkout)
		})
	})
	return r
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) searchCompanies(w http.ResponseWriter, r *http.Request) {
	q, err := queryParam(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	limit, err := limitParam(r, maxSearchLimit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	country := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("country")))
	if country != "" && !s.Registry.Has(country) {
		s.fail(w, r, domain.InvalidCountry(country))
		return
	}
	results, err := s.Search.SearchAll(r.Context(), q, country, limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"query":   q,
		"country": country,
		"count":   len(results),
		"results": results,
	})
}

// suggestions answers short queries with an empty list; autocomplete fires
// on every keystroke.
func (s *Server) suggestions(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if utf8.RuneCountInString(q) < minQueryLen {
		writeJSON(w, http.StatusOK, map[string]any{"suggestions": []domain.SearchResult{}})
		return
	}
	if utf8.RuneCountInString(q) > maxQueryLen {
		s.fail(w, r, domain.Invalid("q", "must be at most 100 characters"))
		return
	}
	limit, err := limitParam(r, maxSuggestLimit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	results, err := s.Search.Suggest(r.Context(), q, limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"suggestions": results})
}

func (s *Server) clearCache(w http.ResponseWriter, r *http.Request) {
	if err := s.Search.ClearCache(r.Context()); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// companyDetail serves /companies/{slug}. With ?country= the path segment is
// the company's numeric id within that country instead of a slug.
func (s *Server) companyDetail(w http.ResponseWriter, r *http.Request) {
	var (
		d   domain.CompanyDetail
		err error
	)
	if country, id, byID, perr := s.idParams(r, "slug"); perr != nil {
		err = perr
	} else if byID {
		d, err = s.Companies.DetailByID(r.Context(), country, id)
	} else {
		d, err = s.Companies.Detail(r.Context(), chi.URLParam(r, "slug"))
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) companyReports(w http.ResponseWriter, r *http.Request) {
	c, err := s.company(r, "slug")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	reports, err := s.Prices.Resolve(r.Context(), c)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	cfg, err := s.Registry.Get(c.Country)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"company_id": c.ID,
		"country":    c.Country,
		"currency":   cfg.Currency,
		"reports":    reports,
	})
}

type cartReport struct {
	domain.Report
	InCart   bool                  `json:"in_cart"`
	CartItem *domain.DuplicateInfo `json:"cart_item,omitempty"`
}

// cartCompanyReports lists a company's reports flagged with whether each is
// already in the caller's cart. country is required.
func (s *Server) cartCompanyReports(w http.ResponseWriter, r *http.Request) {
	if strings.TrimSpace(r.URL.Query().Get("country")) == "" {
		s.fail(w, r, domain.Invalid("country", "is required"))
		return
	}
	c, err := s.company(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	reports, err := s.Prices.Resolve(r.Context(), c)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ledger := s.ledger(r)
	items, err := ledger.Items(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	held := make(map[string]domain.CartItem, len(items))
	for _, it := range items {
		held[it.ID] = it
	}
	out := make([]cartReport, len(reports))
	for i, rep := range reports {
		out[i] = cartReport{Report: rep}
		id, err := ledger.ComputeIdentity(c.ID, rep.ID, c.Country, c.PricingDiscriminant)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		if it, ok := held[id]; ok {
			out[i].InCart = true
			info := cart.Describe(it)
			out[i].CartItem = &info
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"company_id": c.ID,
		"country":    c.Country,
		"reports":    out,
	})
}

// company resolves the company a route addresses: by id when ?country= is
// given, otherwise by slug.
func (s *Server) company(r *http.Request, param string) (domain.Company, error) {
	country, id, byID, err := s.idParams(r, param)
	if err != nil {
		return domain.Company{}, err
	}
	if byID {
		return s.Companies.FindByID(r.Context(), country, id)
	}
	return s.Companies.ResolveBySlug(r.Context(), chi.URLParam(r, param))
}

func (s *Server) idParams(r *http.Request, param string) (country string, id int64, byID bool, err error) {
	country = strings.ToLower(strings.TrimSpace(r.URL.Query().Get("country")))
	if country == "" {
		return "", 0, false, nil
	}
	if !s.Registry.Has(country) {
		return "", 0, false, domain.InvalidCountry(country)
	}
	id, err = strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id < 1 {
		return "", 0, false, domain.Invalid("id", "must be a positive integer")
	}
	return country, id, true, nil
}

func (s *Server) getCart(w http.ResponseWriter, r *http.Request) {
	items, err := s.ledger(r).Items(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"count": cart.Count(items),
		"total": cart.Total(items).StringFixed(2),
	})
}

func (s *Server) cartCount(w http.ResponseWriter, r *http.Request) {
	n, err := s.ledger(r).TotalCount(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": n})
}

func (s *Server) clearCart(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger(r).Clear(r.Context()); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type addItemRequest struct {
	CompanyID int64  `json:"company_id"`
	ReportID  int64  `json:"report_id"`
	Country   string `json:"country"`
	Quantity  *int   `json:"quantity"`
}

func (s *Server) addItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if !s.Registry.Has(req.Country) {
		s.fail(w, r, domain.InvalidCountry(req.Country))
		return
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}
	item, err := s.ledger(r).Add(r.Context(), req.CompanyID, req.ReportID, req.Country, qty)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

func (s *Server) updateItem(w http.ResponseWriter, r *http.Request) {
	var req updateItemRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	item, err := s.ledger(r).UpdateQuantity(r.Context(), chi.URLParam(r, "id"), req.Quantity)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) removeItem(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger(r).Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) checkout(w http.ResponseWriter, r *http.Request) {
	var p checkout.Payment
	if err := decode(r, &p); err != nil {
		s.fail(w, r, err)
		return
	}
	receipt, err := s.Checkout.Checkout(r.Context(), sessionID(r.Context()), p)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

func (s *Server) ledger(r *http.Request) *cart.Ledger {
	return s.Carts.Ledger(sessionID(r.Context()))
}

type sessionKey struct{}

// session attaches the caller's session id, issuing a new cookie when the
// request has none or carries something that is not a uuid.
func (s *Server) session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ""
		if c, err := r.Cookie(SessionCookie); err == nil {
			if u, err := uuid.Parse(c.Value); err == nil {
				id = u.String()
			}
		}
		if id == "" {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, id)))
	})
}

func sessionID(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.Logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

func queryParam(r *http.Request) (string, error) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	n := utf8.RuneCountInString(q)
	if n < minQueryLen || n > maxQueryLen {
		return "", domain.Invalid("q", "must be between 2 and 100 characters")
	}
	return q, nil
}

func limitParam(r *http.Request, max int) (int, error) {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || n > max {
		return 0, domain.Invalid("limit", "must be between 1 and "+strconv.Itoa(max))
	}
	return n, nil
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.Invalid("body", "malformed JSON")
	}
	return nil
}

type errorBody struct {
	Error    string                `json:"error"`
	Field    string                `json:"field,omitempty"`
	Existing *domain.DuplicateInfo `json:"existing,omitempty"`
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr *domain.ValidationError
		dup  *domain.DuplicateError
	)
	switch {
	case errors.As(err, &dup):
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error(), Existing: &dup.Existing})
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error(), Field: verr.Field})
	case errors.Is(err, domain.ErrInvalidCountry):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error(), Field: "country"})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.Is(err, checkout.ErrDeclined):
		writeJSON(w, http.StatusPaymentRequired, errorBody{Error: err.Error()})
	case errors.Is(err, domain.ErrUnavailable):
		s.Logger.Warn("data source unavailable",
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: err.Error()})
	default:
		s.Logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
