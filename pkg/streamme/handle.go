package streamme

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/tendant/streamme-oauth2-client/pkg/metrics"
	"github.com/tendant/streamme-oauth2-client/pkg/session"
	"github.com/tendant/streamme-oauth2-client/pkg/userstore"
	"github.com/tendant/streamme-oauth2-client/pkg/views"
)

// Handle serves the authenticated proxy routes.
type Handle struct {
	client   *Client
	renderer *views.Renderer
	metrics  metrics.Recorder
}

// NewHandle creates a new proxy route handler
func NewHandle(client *Client, renderer *views.Renderer, recorder metrics.Recorder) *Handle {
	if recorder == nil {
		recorder = metrics.NopRecorder{}
	}
	return &Handle{
		client:   client,
		renderer: renderer,
		metrics:  recorder,
	}
}

// GetFeed returns the user's message feed.
func (h *Handle) GetFeed(w http.ResponseWriter, r *http.Request) {
	h.proxy(w, r, "feed", h.client.GetFeed)
}

// GetEmoticons returns the user's custom emoticons.
func (h *Handle) GetEmoticons(w http.ResponseWriter, r *http.Request) {
	h.proxy(w, r, "emoticons", h.client.GetEmoticons)
}

// UpdateMe edits account information in the user's profile.
func (h *Handle) UpdateMe(w http.ResponseWriter, r *http.Request) {
	h.proxy(w, r, "me", h.client.UpdateProfile)
}

// upstreamFailure is the structured body returned when the provider
// rejects a proxied call. The raw upstream body is passed through verbatim.
type upstreamFailure struct {
	Message string      `json:"message"`
	Code    int         `json:"code"`
	Body    interface{} `json:"body"`
}

func (h *Handle) proxy(w http.ResponseWriter, r *http.Request, routename string, call func(context.Context, userstore.UserRecord) (*Result, error)) {
	// RequireLogin guarantees an authenticated user here.
	user := session.CurrentUser(r)
	if user == nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	start := time.Now()
	result, err := call(r.Context(), *user)
	h.metrics.RecordProxyLatency(routename, time.Since(start))

	if err != nil {
		var upstream *UpstreamError
		if errors.As(err, &upstream) {
			h.metrics.RecordProxyRequest(routename, "upstream_error")
			slog.Warn("Provider rejected proxied call", "route", routename, "code", upstream.Code)
			render.Status(r, upstream.HTTPStatus())
			render.JSON(w, r, upstreamFailure{
				Message: "something-went-wrong",
				Code:    upstream.Code,
				Body:    rawBody(upstream.Body),
			})
			return
		}

		h.metrics.RecordProxyRequest(routename, "transport_error")
		slog.Error("Proxied call failed", "route", routename, "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.metrics.RecordProxyRequest(routename, "success")

	if err := h.renderer.UserData(w, views.UserData{
		Username:  user.Username,
		Routename: routename,
		Data:      prettyJSON(result.Body),
	}); err != nil {
		slog.Error("Failed to render view", "route", routename, "err", err)
	}
}

// rawBody keeps JSON upstream bodies as JSON in the failure response
// instead of double-encoding them as a string.
func rawBody(body []byte) interface{} {
	if json.Valid(body) {
		return json.RawMessage(body)
	}
	return string(body)
}

// prettyJSON re-indents the upstream body for display, falling back to the
// raw text if it is not valid JSON.
func prettyJSON(body []byte) string {
	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return string(body)
	}
	out, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return string(body)
	}
	return string(out)
}
