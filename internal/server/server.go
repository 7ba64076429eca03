// Package server is the presentation boundary: a JSON HTTP API forwarding
// user intents into the controller and a websocket stream pushing
// controller events back out.
package server

import "net/http"

func Handler(hub *Hub, ctrl Controller, history HistoryStore) http.Handler {
	mux := http.NewServeMux()

	registerWSRoute(mux, hub)
	registerAPIRoutes(mux, ctrl, history)

	return mux
}
