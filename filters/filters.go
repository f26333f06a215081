// Package filters holds the container-wide go-restful filters: request ids,
// access logging, panic recovery and Prometheus metrics.
package filters

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	restful "github.com/emicklei/go-restful/v3"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	RequestIDHeader    = "X-Request-ID"
	RequestIDAttribute = "request_id"
)

// RequestID tags every request with an id, reusing the caller's when sent.
func RequestID() restful.FilterFunction {
	return func(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
		id := req.HeaderParameter(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		req.SetAttribute(RequestIDAttribute, id)
		resp.Header().Set(RequestIDHeader, id)
		chain.ProcessFilter(req, resp)
	}
}

// Logger logs one line per request after it has been handled.
func Logger(logger *zap.Logger) restful.FilterFunction {
	return func(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
		startTime := time.Now()

		// handle requests
		chain.ProcessFilter(req, resp)

		requestID, _ := req.Attribute(RequestIDAttribute).(string)
		logger.Info("Request",
			zap.String("client_ip", clientIP(req.Request)),
			zap.String("method", req.Request.Method),
			zap.Int("status_code", resp.StatusCode()),
			zap.Duration("latency", time.Since(startTime)),
			zap.String("user_agent", req.Request.UserAgent()),
			zap.String("path", req.Request.URL.Path),
			zap.String("request_id", requestID),
		)
	}
}

// Recovery turns a panic in a later filter or handler into a 500.
func Recovery(logger *zap.Logger) restful.FilterFunction {
	return func(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("Panic while handling request",
					zap.String("path", req.Request.URL.Path),
					zap.String("panic", fmt.Sprint(r)),
					zap.ByteString("stack", debug.Stack()),
				)
				_ = resp.WriteHeaderAndJson(http.StatusInternalServerError,
					map[string]string{"message": "Internal server error"}, restful.MIME_JSON)
			}
		}()
		chain.ProcessFilter(req, resp)
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	return r.RemoteAddr
}
