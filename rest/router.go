package rest

import (
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"

	restEndpointV1 "github.com/datastax/query-plan-apis/rest/endpoint/v1"
	"github.com/datastax/query-plan-apis/types"
)

// ApiRouter registers the routes on a router that answers unknown paths and methods with JSON errors
func ApiRouter(routes []types.Route) *httprouter.Router {
	router := httprouter.New()
	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		restEndpointV1.RespondWithError(w, errors.New("route not found"), http.StatusNotFound)
	})
	router.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		restEndpointV1.RespondWithError(w, errors.New("method not allowed"), http.StatusMethodNotAllowed)
	})
	AddRoutes(router, routes)
	return router
}

func AddRoutes(router *httprouter.Router, routes []types.Route) {
	for _, route := range routes {
		router.Handler(route.Method, route.Pattern, route.Handler)
	}
}
