package feed

import (
	"context"
	"strings"

	"traka/pkg/logger"
)

type route struct {
	segments []string
	kind     Kind
	handler  Handler
}

// Router matches document paths like "orders/abc/messages/m1" against
// registered patterns like "orders/{orderId}/messages/{messageId}" and
// invokes the handlers for the change kind. Handler errors are logged and
// swallowed so one failing handler never stalls the feed.
type Router struct {
	routes []route
	logger *logger.Logger
}

func NewRouter(log *logger.Logger) *Router {
	return &Router{logger: log}
}

func (r *Router) OnCreate(pattern string, h Handler) {
	r.add(pattern, KindCreate, h)
}

func (r *Router) OnUpdate(pattern string, h Handler) {
	r.add(pattern, KindUpdate, h)
}

func (r *Router) OnDelete(pattern string, h Handler) {
	r.add(pattern, KindDelete, h)
}

func (r *Router) add(pattern string, kind Kind, h Handler) {
	r.routes = append(r.routes, route{
		segments: strings.Split(strings.Trim(pattern, "/"), "/"),
		kind:     kind,
		handler:  h,
	})
}

// Dispatch routes one event to every matching handler.
func (r *Router) Dispatch(ctx context.Context, ev *Event) {
	segments := strings.Split(strings.Trim(ev.Path, "/"), "/")
	for _, rt := range r.routes {
		if rt.kind != ev.Kind {
			continue
		}
		params, ok := match(rt.segments, segments)
		if !ok {
			continue
		}
		ev.Params = params
		if err := rt.handler(ctx, ev); err != nil {
			r.logger.WithError(err).WithFields(map[string]interface{}{
				"path": ev.Path,
				"kind": ev.Kind.String(),
			}).Error("Change handler failed")
		}
	}
}

func match(pattern, segments []string) (map[string]string, bool) {
	if len(pattern) != len(segments) {
		return nil, false
	}
	params := make(map[string]string)
	for i, p := range pattern {
		if strings.HasPrefix(p, "{") && strings.HasSuffix(p, "}") {
			params[p[1:len(p)-1]] = segments[i]
			continue
		}
		if p != segments[i] {
			return nil, false
		}
	}
	return params, true
}
