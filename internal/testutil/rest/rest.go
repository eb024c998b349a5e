package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path"
	"reflect"
	"regexp"
	"strings"

	"github.com/julienschmidt/httprouter"
	. "github.com/onsi/gomega"

	"github.com/datastax/query-plan-apis/rest/models"
	"github.com/datastax/query-plan-apis/types"
)

const Prefix = "/rest"

// ExecuteGet performs a GET request on the route matching the format. The query string is
// appended as it is so that tests control the order of the parameters.
func ExecuteGet(routes []types.Route, routeFormat string, query string, responsePtr interface{}, values ...interface{}) int {
	return ExecuteGetWithContext(context.Background(), routes, routeFormat, query, responsePtr, values...)
}

func ExecuteGetWithContext(
	ctx context.Context,
	routes []types.Route,
	routeFormat string,
	query string,
	responsePtr interface{},
	values ...interface{},
) int {
	rv := reflect.ValueOf(responsePtr)
	if responsePtr != nil && rv.Kind() != reflect.Ptr {
		panic("Provided value should be a pointer or nil")
	}

	targetPath := path.Join(Prefix, fmt.Sprintf(routeFormat, values...))
	if query != "" {
		targetPath += "?" + query
	}

	r := httptest.NewRequest(http.MethodGet, targetPath, nil).WithContext(ctx)
	w := httptest.NewRecorder()
	route := lookupRoute(routes, http.MethodGet, routeFormat)

	// Use default router for params to be populated
	router := httprouter.New()
	router.Handler(http.MethodGet, route.Pattern, route.Handler)
	router.ServeHTTP(w, r)

	if w.Code < http.StatusOK || w.Code > http.StatusIMUsed {
		// Not in the 2xx range
		if responsePtr == nil {
			return w.Code
		}
		_, ok := responsePtr.(*models.ModelError)
		if !ok {
			panic(fmt.Sprintf("unexpected http error %d: %s", w.Code, w.Body))
		}
	}

	if responsePtr != nil && w.Code != http.StatusNoContent {
		bodyString := w.Body.String()
		err := json.NewDecoder(bytes.NewBufferString(bodyString)).Decode(responsePtr)
		Expect(err).ToNot(HaveOccurred(),
			fmt.Sprintf("Error decoding response with code %d and body: %s", w.Code, bodyString))
	}

	return w.Code
}

func lookupRoute(routes []types.Route, method, format string) types.Route {
	// Word tokens for parameters
	regexStr := strings.Replace(format, `%s`, `[\w:{}]+`, -1)
	// End of the string
	regexStr += `$`

	re := regexp.MustCompile(regexStr)
	for _, route := range routes {
		if re.MatchString(route.Pattern) && route.Method == method {
			return route
		}
	}

	panic("Route not found")
}
