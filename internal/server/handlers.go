package server

import (
	"bytes"
	"io"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
	"github.com/guiyumin/vlink/internal/core/version"
)

const maxRequestBody = 1 << 20

// ResolveRequest is the inbound (url, platform) pair. It binds from a
// form-encoded body, the query string or a JSON body.
type ResolveRequest struct {
	URL      string `form:"url" json:"url"`
	Platform string `form:"platform" json:"platform"`
}

func (r ResolveRequest) empty() bool {
	return r.URL == "" && r.Platform == ""
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Code: 200,
		Data: gin.H{
			"status":  "ok",
			"version": version.Version,
		},
		Message: "everything is good",
	})
}

func (s *Server) handlePlatforms(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Code: 200,
		Data: gin.H{
			"platforms": s.service.Platforms(),
		},
		Message: "supported platforms",
	})
}

// handleResolve always answers 200; failures travel in the body
func (s *Server) handleResolve(c *gin.Context) {
	req := bindResolveRequest(c)
	result := s.service.Resolve(c.Request.Context(), req.URL, req.Platform)
	c.JSON(http.StatusOK, result)
}

// bindResolveRequest tries gin's content-type binding first, then falls back
// to reading the raw body as JSON or as a urlencoded string.
func bindResolveRequest(c *gin.Context) ResolveRequest {
	var raw []byte
	if c.Request.Body != nil {
		raw, _ = io.ReadAll(io.LimitReader(c.Request.Body, maxRequestBody))
		c.Request.Body = io.NopCloser(bytes.NewReader(raw))
	}

	var req ResolveRequest
	_ = c.ShouldBind(&req)
	if !req.empty() {
		return req
	}

	if q := c.Request.URL.Query(); q.Get("url") != "" || q.Get("platform") != "" {
		return ResolveRequest{URL: q.Get("url"), Platform: q.Get("platform")}
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return req
	}
	if raw[0] == '{' {
		var fromJSON ResolveRequest
		if err := json.Unmarshal(raw, &fromJSON); err == nil {
			return fromJSON
		}
		return req
	}
	if values, err := url.ParseQuery(string(raw)); err == nil {
		return ResolveRequest{URL: values.Get("url"), Platform: values.Get("platform")}
	}
	return req
}
