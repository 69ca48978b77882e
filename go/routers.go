package figurestoreserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
}

// ApiHandleFunctions groups the per-context API handlers the router serves.
type ApiHandleFunctions struct {
	OrderAPI OrderAPI
	StoreAPI StoreAPI
}

// NewRouter returns a new router.
func NewRouter(handleFunctions ApiHandleFunctions) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions)
}

// NewRouterWithGinEngine adds the routes to an existing gin engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions) *gin.Engine {
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = defaultHandleFunc
		}
		switch route.Method {
		case http.MethodGet:
			router.GET(route.Pattern, route.HandlerFunc)
		case http.MethodPost:
			router.POST(route.Pattern, route.HandlerFunc)
		case http.MethodPut:
			router.PUT(route.Pattern, route.HandlerFunc)
		case http.MethodDelete:
			router.DELETE(route.Pattern, route.HandlerFunc)
		}
	}
	return router
}

// defaultHandleFunc is used when a route has no handler registered.
func defaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

func getRoutes(handleFunctions ApiHandleFunctions) []Route {
	return []Route{
		{
			Name:        "SubmitOrder",
			Method:      http.MethodPost,
			Pattern:     "/v1/orders",
			HandlerFunc: handleFunctions.OrderAPI.SubmitOrder,
		},
		{
			Name:        "GetOrder",
			Method:      http.MethodGet,
			Pattern:     "/v1/orders/:orderId",
			HandlerFunc: handleFunctions.OrderAPI.GetOrder,
		},
		{
			Name:        "CancelOrder",
			Method:      http.MethodDelete,
			Pattern:     "/v1/orders/:orderId",
			HandlerFunc: handleFunctions.OrderAPI.CancelOrder,
		},
		{
			Name:        "GetInventory",
			Method:      http.MethodGet,
			Pattern:     "/v1/store/inventory",
			HandlerFunc: handleFunctions.StoreAPI.GetInventory,
		},
		{
			Name:        "SetInventory",
			Method:      http.MethodPut,
			Pattern:     "/v1/store/inventory/:figureType",
			HandlerFunc: handleFunctions.StoreAPI.SetInventory,
		},
	}
}
