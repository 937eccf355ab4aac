package handler

import (
	"guidecal/pkg/contracts"

	"github.com/julienschmidt/httprouter"
)

// Routes groups the hold, booking-request, and calendar handlers behind one
// registration point for the application shell.
type Routes struct {
	handlers []contracts.Handler
}

func NewRoutes(handlers ...contracts.Handler) *Routes {
	return &Routes{handlers: handlers}
}

func (r *Routes) RegisterRoutes(router *httprouter.Router) {
	for _, h := range r.handlers {
		h.RegisterRoutes(router)
	}
}
