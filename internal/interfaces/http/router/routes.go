package router

import (
	"github.com/delivery/backend/internal/interfaces/http/handler"
)

// NewRateRoutes builds the estimate rate routes:
//
//	GET  /estimates/:id/rates/resolve
//	GET  /estimates/:id/rates
//	POST /estimates/:id/rates/recalculate
//	GET  /estimates/:id/rate-overrides
func NewRateRoutes(h *handler.RateHandler) *DomainGroup {
	estimates := NewDomainGroup("estimates", "/estimates/:id")
	estimates.GET("/rates/resolve", h.Resolve).
		GET("/rates", h.ListEstimateRates).
		POST("/rates/recalculate", h.Recalculate).
		GET("/rate-overrides", h.ListOverrides)
	return estimates
}

// NewSystemRoutes builds /system/ping and /system/info
func NewSystemRoutes(h *handler.SystemHandler) *DomainGroup {
	system := NewDomainGroup("system", "/system")
	system.GET("/ping", h.Ping).
		GET("/info", h.GetSystemInfo)
	return system
}
