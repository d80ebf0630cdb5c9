//go:build integration

// Package mock provides stand-ins for the services the API talks to during integration tests.
package mock

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/gin-gonic/gin"
)

// SentEmail is one message accepted by the fake Resend API.
type SentEmail struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	Text    string   `json:"text"`
}

// Resend fakes the POST /emails endpoint of the Resend API.
type Resend struct {
	server *httptest.Server

	mu         sync.Mutex
	sent       []SentEmail
	failStatus int
}

// NewResend starts the fake on a local port.
func NewResend() *Resend {
	r := &Resend{}
	engine := gin.New()
	engine.POST("/emails", r.handleSend)
	r.server = httptest.NewServer(engine)
	return r
}

// URL is the base URL to hand to the Resend client.
func (r *Resend) URL() string {
	return r.server.URL
}

// Close stops the server.
func (r *Resend) Close() {
	r.server.Close()
}

// Reset forgets sent mail and clears any configured failure.
func (r *Resend) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = nil
	r.failStatus = 0
}

// FailWith makes every following send answer with status.
func (r *Resend) FailWith(status int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failStatus = status
}

// Sent returns a copy of the accepted messages in arrival order.
func (r *Resend) Sent() []SentEmail {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]SentEmail(nil), r.sent...)
}

func (r *Resend) handleSend(c *gin.Context) {
	var email SentEmail
	if err := c.ShouldBindJSON(&email); err != nil {
		c.JSON(http.StatusUnprocessableEntity, resendError(http.StatusUnprocessableEntity, "validation_error", "invalid request body"))
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case r.failStatus == http.StatusUnprocessableEntity:
		c.JSON(r.failStatus, resendError(r.failStatus, "validation_error", "invalid `to` field"))
		return
	case r.failStatus != 0:
		c.JSON(r.failStatus, resendError(r.failStatus, "application_error", "service temporarily down"))
		return
	}

	r.sent = append(r.sent, email)
	c.JSON(http.StatusOK, gin.H{"id": fmt.Sprintf("email-%d", len(r.sent))})
}

func resendError(status int, name, message string) gin.H {
	return gin.H{"statusCode": status, "name": name, "message": message}
}
