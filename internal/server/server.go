package server

import (
	"log"
	"net/http"

	"github.com/intervox/intervox/internal/interview"
)

// Handler assembles the API and websocket routes. visits may be nil when no
// persistent store is available; warnings are startup degradation notices
// surfaced to the UI.
func Handler(hub *Hub, svc *interview.Service, visits VisitStore, warnings []string) http.Handler {
	mux := http.NewServeMux()

	registerWSRoute(mux, hub)
	registerAPIRoutes(mux, svc, visits, warnings)

	return mux
}

func Serve(addr string, hub *Hub, svc *interview.Service, visits VisitStore, warnings []string) error {
	log.Printf("API at http://%s", addr)
	return http.ListenAndServe(addr, Handler(hub, svc, visits, warnings))
}
