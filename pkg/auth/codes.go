// Package auth implements the simulated email login: a 6-digit code is
// issued per address and checked on verify. No mail is sent; the caller
// shows the code to the user directly.
package auth

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"github.com/tdai-app/tdai/pkg/core"
	"github.com/tdai-app/tdai/pkg/store"
)

// CodeIssuer hands out and checks login codes.
type CodeIssuer struct {
	mu    sync.Mutex
	codes map[string]string
}

// NewCodeIssuer creates an issuer with no outstanding codes.
func NewCodeIssuer() *CodeIssuer {
	return &CodeIssuer{codes: make(map[string]string)}
}

// Request issues a fresh code for the address. A new request replaces
// any earlier code for the same address.
func (c *CodeIssuer) Request(email string) (string, error) {
	email = store.NormalizeEmail(email)
	if !strings.Contains(email, "@") {
		return "", core.NewConfigError("invalid email address")
	}

	code := fmt.Sprintf("%06d", 100000+rand.Intn(900000))

	c.mu.Lock()
	c.codes[email] = code
	c.mu.Unlock()
	return code, nil
}

// Verify checks the code and consumes it on success.
func (c *CodeIssuer) Verify(email, code string) bool {
	email = store.NormalizeEmail(email)
	code = strings.TrimSpace(code)

	c.mu.Lock()
	defer c.mu.Unlock()

	want, ok := c.codes[email]
	if !ok || want != code {
		return false
	}
	delete(c.codes, email)
	return true
}
