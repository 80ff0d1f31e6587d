package server

import (
	"log/slog"
	"net/http"

	"retail-dashboard/internal/handlers"
	"retail-dashboard/internal/services"
)

type Server struct {
	analytics   *services.Analytics
	mux         *http.ServeMux
	logger      *slog.Logger
	apiHandlers *handlers.APIHandlers
	sseHandlers *handlers.SSEHandlers
}

type TemplateHandlers struct {
	Dashboard http.HandlerFunc
}

func NewServer(analytics *services.Analytics, logger *slog.Logger, templateHandlers *TemplateHandlers) *Server {
	s := &Server{
		analytics:   analytics,
		mux:         http.NewServeMux(),
		logger:      logger,
		apiHandlers: handlers.NewAPIHandlers(analytics, logger),
		sseHandlers: handlers.NewSSEHandlers(analytics, logger),
	}
	s.setupRoutes(templateHandlers)
	return s
}

func (s *Server) setupRoutes(templateHandlers *TemplateHandlers) {
	// Dashboard routes
	s.mux.HandleFunc("GET /{$}", templateHandlers.Dashboard)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)

	// REST API endpoints
	s.mux.HandleFunc("GET /api/options", s.apiHandlers.HandleOptions)
	s.mux.HandleFunc("GET /api/sales/monthly", s.apiHandlers.HandleMonthlySales)
	s.mux.HandleFunc("GET /api/sales/countries", s.apiHandlers.HandleCountrySales)
	s.mux.HandleFunc("GET /api/products/subcategories", s.apiHandlers.HandleSubcategories)
	s.mux.HandleFunc("GET /api/channels/weekdays", s.apiHandlers.HandleWeekdaySales)
	s.mux.HandleFunc("GET /api/channels/customers", s.apiHandlers.HandleCustomerGenders)
	s.mux.HandleFunc("GET /api/channels/split", s.apiHandlers.HandleChannelSplit)
	s.mux.HandleFunc("GET /api/export", s.apiHandlers.HandleExport)

	// Datastar SSE endpoints, one per dashboard tab
	s.mux.HandleFunc("GET /sse/sales", s.sseHandlers.HandleSales)
	s.mux.HandleFunc("GET /sse/products", s.sseHandlers.HandleProducts)
	s.mux.HandleFunc("GET /sse/channels", s.sseHandlers.HandleChannels)
	s.mux.HandleFunc("GET /sse/channel-split", s.sseHandlers.HandleChannelSplit)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
