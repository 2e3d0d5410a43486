// Package httpapi публикует командный интерфейс витрины по HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/bookhaven/internal/domain"
	"github.com/vladislavdragonenkov/bookhaven/internal/storefront"
)

// SessionHeader передаёт идентификатор сессии браузера.
const SessionHeader = "X-Session-ID"

const (
	defaultRequestTimeout = 10 * time.Second
	defaultIdleSessionTTL = 30 * time.Minute
	maxBodyBytes          = 64 << 10
)

// AddItemRequest: книга, добавляемая в корзину.
type AddItemRequest struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Price  string `json:"price"`
}

// InquiryRequest: поля формы обратной связи.
type InquiryRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// SubscribeRequest: email для подписки на рассылку.
type SubscribeRequest struct {
	Email string `json:"email"`
}

// ErrorResponse описывает ошибку запроса.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Options задаёт параметры HTTP API.
type Options struct {
	RequestTimeout time.Duration
	IdleSessionTTL time.Duration
	// EnableDebug открывает /debug/storage (просмотр и очистка всех данных).
	EnableDebug bool
}

// Server обслуживает команды витрины.
type Server struct {
	router   *chi.Mux
	sessions *sessionRegistry
	logger   *log.Entry
	opts     Options
}

// NewServer создаёт HTTP API поверх фабрики сессий.
func NewServer(factory StorefrontFactory, logger *log.Entry, opts Options) *Server {
	if logger == nil {
		logger = log.WithField("component", "http-api")
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = defaultRequestTimeout
	}
	if opts.IdleSessionTTL <= 0 {
		opts.IdleSessionTTL = defaultIdleSessionTTL
	}

	s := &Server{
		router:   chi.NewRouter(),
		sessions: newSessionRegistry(factory, opts.IdleSessionTTL),
		logger:   logger,
		opts:     opts,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(s.opts.RequestTimeout))
}

func (s *Server) setupRoutes() {
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", s.withSession(s.handleViewCart))
			r.Delete("/", s.withSession(s.handleClearCart))
			r.Get("/summary", s.withSession(s.handleCartSummary))
			r.Post("/items", s.withSession(s.handleAddItem))
		})
		r.Route("/orders", func(r chi.Router) {
			r.Get("/confirmation", s.withSession(s.handleOrderPrompt))
			r.Post("/", s.withSession(s.handleCommitOrder))
		})
		r.Post("/inquiries", s.withSession(s.handleSubmitInquiry))
		r.Post("/subscriptions", s.withSession(s.handleSubscribe))

		if s.opts.EnableDebug {
			r.Route("/debug/storage", func(r chi.Router) {
				r.Get("/", s.withSession(s.handleSnapshot))
				r.Delete("/", s.withSession(s.handleClearAll))
			})
		}
	})
}

type sessionHandler func(ctx context.Context, front *storefront.Storefront, w http.ResponseWriter, r *http.Request)

// withSession определяет сессию по заголовку (или выдаёт новую) и сериализует
// запросы одной сессии.
func (s *Server) withSession(next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.Header.Get(SessionHeader)
		switch {
		case sessionID == "":
			id, err := newSessionID()
			if err != nil {
				s.logger.WithError(err).Error("failed to mint session id")
				respondError(w, http.StatusInternalServerError, "internal_error", "could not start session")
				return
			}
			sessionID = id
		case !validSessionID(sessionID):
			respondError(w, http.StatusBadRequest, "invalid_session", "invalid session id")
			return
		}
		w.Header().Set(SessionHeader, sessionID)

		front, release := s.sessions.acquire(sessionID)
		defer release()

		next(r.Context(), front, w, r)
	}
}

func (s *Server) handleAddItem(ctx context.Context, front *storefront.Storefront, w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	respondOutcome(w, front.AddItem(ctx, req.Title, req.Author, req.Price))
}

func (s *Server) handleViewCart(ctx context.Context, front *storefront.Storefront, w http.ResponseWriter, _ *http.Request) {
	respondOutcome(w, front.ViewCart(ctx))
}

func (s *Server) handleClearCart(ctx context.Context, front *storefront.Storefront, w http.ResponseWriter, _ *http.Request) {
	respondOutcome(w, front.ClearCart(ctx))
}

func (s *Server) handleCartSummary(ctx context.Context, front *storefront.Storefront, w http.ResponseWriter, _ *http.Request) {
	respondOutcome(w, front.CartSummary(ctx))
}

func (s *Server) handleOrderPrompt(ctx context.Context, front *storefront.Storefront, w http.ResponseWriter, _ *http.Request) {
	respondOutcome(w, front.OrderPrompt(ctx))
}

func (s *Server) handleCommitOrder(ctx context.Context, front *storefront.Storefront, w http.ResponseWriter, _ *http.Request) {
	respondOutcome(w, front.CommitOrder(ctx))
}

func (s *Server) handleSubmitInquiry(ctx context.Context, front *storefront.Storefront, w http.ResponseWriter, r *http.Request) {
	var req InquiryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	respondOutcome(w, front.SubmitInquiry(ctx, domain.InquiryInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Message: req.Message,
	}))
}

func (s *Server) handleSubscribe(ctx context.Context, front *storefront.Storefront, w http.ResponseWriter, r *http.Request) {
	var req SubscribeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	respondOutcome(w, front.Subscribe(ctx, req.Email))
}

func (s *Server) handleSnapshot(ctx context.Context, front *storefront.Storefront, w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, front.Session().Snapshot(ctx))
}

func (s *Server) handleClearAll(ctx context.Context, front *storefront.Storefront, w http.ResponseWriter, _ *http.Request) {
	respondOutcome(w, front.ClearAllData(ctx))
}

// statusFor переводит вид результата в HTTP-статус.
func statusFor(kind storefront.OutcomeKind) int {
	switch kind {
	case storefront.OutcomeItemAdded, storefront.OutcomeOrderCommitted,
		storefront.OutcomeInquirySaved, storefront.OutcomeSubscribed:
		return http.StatusCreated
	case storefront.OutcomeOrderNotSaved:
		return http.StatusAccepted
	case storefront.OutcomeItemRejected, storefront.OutcomeMissingFields,
		storefront.OutcomeInvalidEmail, storefront.OutcomeEmailRequired:
		return http.StatusUnprocessableEntity
	case storefront.OutcomeAlreadySubscribed:
		return http.StatusConflict
	case storefront.OutcomeInquiryFailed, storefront.OutcomeSubscribeFailed, storefront.OutcomeOrderFailed:
		return http.StatusServiceUnavailable
	default:
		return http.StatusOK
	}
}

func respondOutcome(w http.ResponseWriter, outcome storefront.Outcome) {
	respondJSON(w, statusFor(outcome.Kind), outcome)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return false
	}
	return true
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.WithError(err).Warn("failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{Error: message, Code: code})
}
