package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/example/microstore-service/internal/domain"
	"github.com/example/microstore-service/internal/usecase"
)

// Server — REST-поверхность микромагазина.
type Server struct {
	Router  *mux.Router
	Sellers usecase.SellerRegistry
	Catalog usecase.CatalogService
	Orders  usecase.OrderService
	Docs    domain.DocumentStore
}

func NewServer(sellers usecase.SellerRegistry, catalog usecase.CatalogService, orders usecase.OrderService, docs domain.DocumentStore) *Server {
	s := &Server{
		Router:  mux.NewRouter(),
		Sellers: sellers,
		Catalog: catalog,
		Orders:  orders,
		Docs:    docs,
	}
	s.Router.HandleFunc("/api/signup", s.handleSignup).Methods(http.MethodPost)
	s.Router.HandleFunc("/api/store", s.handleCreateStore).Methods(http.MethodPost)
	s.Router.HandleFunc("/api/store/{slug}", s.handleGetStore).Methods(http.MethodGet)
	s.Router.HandleFunc("/api/products", s.handleCreateProduct).Methods(http.MethodPost)
	s.Router.HandleFunc("/api/products/{store_slug}", s.handleListProducts).Methods(http.MethodGet)
	s.Router.HandleFunc("/api/checkout", s.handleCheckout).Methods(http.MethodPost)
	s.Router.HandleFunc("/test", s.handleDiag).Methods(http.MethodGet)
	s.Router.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	s.Router.Use(logMiddleware)
	return s
}

func logMiddleware(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.WithFields(log.Fields{
			"method":     r.Method,
			"url":        r.URL.Path,
			"remoteAddr": r.RemoteAddr,
		}).Info("request")
		h.ServeHTTP(w, r)
	})
}

type signupRequest struct {
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	Email          string `json:"email"`
	WhatsAppNumber string `json:"whatsapp_number"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.Validation("invalid request body"))
		return
	}
	id, err := s.Sellers.Register(r.Context(), domain.Seller{
		Name:           req.Name,
		Phone:          req.Phone,
		Email:          req.Email,
		WhatsAppNumber: req.WhatsAppNumber,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"seller_id": id})
}

type createStoreRequest struct {
	OwnerID        string `json:"owner_id"`
	Name           string `json:"name"`
	Slug           string `json:"slug"`
	Description    string `json:"description"`
	WhatsAppNumber string `json:"whatsapp_number"`
}

func (s *Server) handleCreateStore(w http.ResponseWriter, r *http.Request) {
	var req createStoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.Validation("invalid request body"))
		return
	}
	id, err := s.Catalog.CreateStore(r.Context(), domain.Store{
		OwnerID:        req.OwnerID,
		Name:           req.Name,
		Slug:           req.Slug,
		Description:    req.Description,
		WhatsAppNumber: req.WhatsAppNumber,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"store_id": id})
}

func (s *Server) handleGetStore(w http.ResponseWriter, r *http.Request) {
	st, err := s.Catalog.GetStore(r.Context(), mux.Vars(r)["slug"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

type createProductRequest struct {
	StoreSlug   string  `json:"store_slug"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	ImageURL    string  `json:"image_url"`
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.Validation("invalid request body"))
		return
	}
	id, err := s.Catalog.CreateProduct(r.Context(), domain.Product{
		StoreSlug:   req.StoreSlug,
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"product_id": id})
}

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.Catalog.ListProducts(r.Context(), mux.Vars(r)["store_slug"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

type checkoutRequest struct {
	StoreSlug string              `json:"store_slug"`
	Items     []domain.OrderItem  `json:"items"`
	Customer  domain.CustomerInfo `json:"customer"`
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.Validation("invalid request body"))
		return
	}
	order, err := s.Orders.Checkout(r.Context(), req.StoreSlug, req.Items, req.Customer)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"order_id": order.ID,
		"status":   order.Status,
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Microstore API running"})
}

// handleDiag — диагностика доступности хранилища. Текст внутренней
// ошибки усечён, чтобы не раскрывать детали инфраструктуры.
func (s *Server) handleDiag(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	resp := map[string]string{
		"backend": "running",
		"storage": "connected",
	}
	if err := s.Docs.Ping(ctx); err != nil {
		resp["storage"] = "error: " + truncate(err.Error(), 50)
	}
	writeJSON(w, http.StatusOK, resp)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("write response")
	}
}

// writeError — отображение таксономии ошибок на коды ответа.
// Текст внутренних ошибок наружу не уходит.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case domain.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case domain.IsDuplicate(err), domain.IsValidation(err):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case domain.IsGatewayFailure(err):
		log.WithError(err).Error("payment gateway failure")
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "payment gateway unavailable"})
	case domain.IsStorageFailure(err):
		log.WithError(err).Error("storage failure")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "storage unavailable"})
	default:
		log.WithError(err).Error("internal error")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
