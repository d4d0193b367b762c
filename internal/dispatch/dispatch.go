// Package dispatch routes "/{root}/{action}" requests to controller methods.
// A fresh controller is resolved from the container for every request and
// closed afterwards when it implements io.Closer.
package dispatch

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/xraph/go-utils/errs"
	"github.com/xraph/go-utils/log"

	"github.com/xraph/hull"
)

const (
	// CodeDuplicateRoute indicates a root or route mounted twice
	CodeDuplicateRoute = "DUPLICATE_ROUTE"

	// CodeControllerType indicates a resolved controller of the wrong type
	CodeControllerType = "CONTROLLER_TYPE_MISMATCH"
)

// ErrDuplicateRoute is returned when a root or a (method, action) pair is
// mounted twice.
var ErrDuplicateRoute = errs.NewError(CodeDuplicateRoute, "dispatch: duplicate route", nil)

// ErrControllerType is returned when the container hands back something that
// is not the mounted controller type, such as a nil instance.
var ErrControllerType = errs.NewError(CodeControllerType, "dispatch: controller type mismatch", nil)

func errControllerType(capability reflect.Type, ctrl any) *errs.Error {
	return errs.NewError(
		CodeControllerType,
		fmt.Sprintf("dispatch: controller for %s resolved to %T", capability, ctrl),
		nil,
	).WithContext("controller", capability.String()).
		WithContext("instance", fmt.Sprintf("%T", ctrl)).(*errs.Error)
}

func errDuplicateRoute(root, route string) *errs.Error {
	return errs.NewError(CodeDuplicateRoute, "dispatch: duplicate route "+route, nil).
		WithContext("root", root).(*errs.Error)
}

// Route binds an HTTP method and action name to a method of controller C.
// Build routes with Get and Post.
type Route[C any] struct {
	Method string
	Action string
	call   func(ctrl C, r *http.Request) (any, error)
}

// Get routes GET /{root}/{action} to fn. The result is written as text.
func Get[C any, Out any](action string, fn func(C) Out) Route[C] {
	return Route[C]{
		Method: http.MethodGet,
		Action: action,
		call: func(ctrl C, _ *http.Request) (any, error) {
			return fn(ctrl), nil
		},
	}
}

// Post routes POST /{root}/{action} to fn. The request body is decoded as
// JSON into In. The response body is empty.
func Post[C any, In any](action string, fn func(C, In) error) Route[C] {
	return Route[C]{
		Method: http.MethodPost,
		Action: action,
		call: func(ctrl C, r *http.Request) (any, error) {
			var in In
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				return nil, errs.BadRequest("decode request: " + err.Error())
			}

			return nil, fn(ctrl, in)
		},
	}
}

type routeKey struct {
	method string
	action string
}

// handler is a route with the controller type erased.
type handler struct {
	capability reflect.Type
	invoke     func(ctrl any, r *http.Request) (any, error)
}

// Dispatcher maps roots to controllers. Mount everything before serving.
type Dispatcher struct {
	container *hull.Container
	logger    log.Logger
	roots     map[string]map[routeKey]handler
	mux       chi.Router
}

// New creates a Dispatcher resolving controllers from c.
func New(c *hull.Container, logger log.Logger) *Dispatcher {
	if logger == nil {
		logger = log.NewNoopLogger()
	}

	d := &Dispatcher{
		container: c,
		logger:    logger,
		roots:     make(map[string]map[routeKey]handler),
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(d.requestLogger)
	r.Use(middleware.Recoverer)
	r.Get("/{root}/{action}", d.serve)
	r.Post("/{root}/{action}", d.serve)
	d.mux = r

	return d
}

// Mount registers the routes of controller C under root. C must be a
// capability registered in the dispatcher's container.
func Mount[C any](d *Dispatcher, root string, routes ...Route[C]) error {
	if _, exists := d.roots[root]; exists {
		return errDuplicateRoute(root, fmt.Sprintf("root %q", root))
	}

	capability := hull.TypeOf[C]()
	table := make(map[routeKey]handler, len(routes))

	for _, route := range routes {
		key := routeKey{method: route.Method, action: route.Action}
		if _, exists := table[key]; exists {
			return errDuplicateRoute(root, fmt.Sprintf("%s /%s/%s", route.Method, root, route.Action))
		}

		call := route.call
		table[key] = handler{
			capability: capability,
			invoke: func(ctrl any, r *http.Request) (any, error) {
				typed, ok := ctrl.(C)
				if !ok {
					return nil, errControllerType(capability, ctrl)
				}

				return call(typed, r)
			},
		}
	}

	d.roots[root] = table

	d.logger.Debug("controller mounted",
		log.String("root", root),
		log.Stringer("controller", capability),
		log.Int("routes", len(routes)),
	)

	return nil
}

// ServeHTTP implements http.Handler.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	d.mux.ServeHTTP(w, r)
}

func (d *Dispatcher) serve(w http.ResponseWriter, r *http.Request) {
	root := chi.URLParam(r, "root")
	action := chi.URLParam(r, "action")

	h, ok := d.roots[root][routeKey{method: r.Method, action: action}]
	if !ok {
		http.NotFound(w, r)
		return
	}

	ctrl, err := d.container.ResolveContext(r.Context(), h.capability)
	if err != nil {
		d.logger.Error("controller resolution failed",
			log.String("root", root),
			log.Stringer("controller", h.capability),
			log.Error(err),
		)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if closer, ok := ctrl.(io.Closer); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				d.logger.Warn("controller close failed", log.String("root", root), log.Error(err))
			}
		}()
	}

	result, err := h.invoke(ctrl, r)
	if err != nil {
		status := errs.GetHTTPStatusCode(err)
		if status < http.StatusInternalServerError {
			http.Error(w, err.Error(), status)
			return
		}

		if errors.Is(err, ErrControllerType) {
			d.logger.Error("controller type mismatch",
				log.String("root", root),
				log.Stringer("controller", h.capability),
				log.Error(err),
			)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		d.logger.Warn("action failed",
			log.String("root", root),
			log.String("action", action),
			log.Error(err),
		)
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if result != nil {
		_, _ = fmt.Fprint(w, result)
	}
}

// requestLogger logs each request with its status and duration.
func (d *Dispatcher) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		d.logger.Info("request",
			log.HTTPMethod(r.Method),
			log.HTTPPath(r.URL.Path),
			log.HTTPStatus(ww.Status()),
			log.Int("bytes", ww.BytesWritten()),
			log.Duration("elapsed", time.Since(start)),
		)
	})
}

