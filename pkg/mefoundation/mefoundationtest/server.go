// Package mefoundationtest provides an in-memory stand-in for the allocation service
package mefoundationtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/screwyprof/airdrop/pkg/solana"
)

// Endpoint paths served by the fake
const (
	SessionPath = "/api/trpc/auth.session"
	VerifyPath  = "/auth/verifyAndCreateSession"
	LinkPath    = "/api/trpc/auth.linkWallet"
	WalletsPath = "/wallets"

	sessionCookie = "me_session"
)

type failure struct {
	remaining int
	status    int
}

type session struct {
	nonce    string
	wallet   string
	verified bool
	authed   bool
	linked   string
}

// Server mimics the session, verification, link and wallets endpoints.
// It checks signatures, nonces and the header fingerprint the way the real
// service does, so a client that gets any of them wrong is rejected.
type Server struct {
	*httptest.Server

	mu          sync.Mutex
	sessions    map[string]*session
	eligibility map[string]string
	allocations map[string]uint64
	links       map[string]string
	calls       map[string]int
	failures    map[string]failure
	failCalls   map[string]map[int]bool
	rejectAll   bool
}

// NewServer starts a fake service; close it with Close
func NewServer() *Server {
	s := &Server{
		sessions:    make(map[string]*session),
		eligibility: make(map[string]string),
		allocations: make(map[string]uint64),
		links:       make(map[string]string),
		calls:       make(map[string]int),
		failures:    make(map[string]failure),
		failCalls:   make(map[string]map[int]bool),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+SessionPath, s.handleSession)
	mux.HandleFunc("POST "+VerifyPath, s.handleVerify)
	mux.HandleFunc("POST "+LinkPath, s.handleLink)
	mux.HandleFunc("GET "+WalletsPath, s.handleWallets)

	s.Server = httptest.NewServer(s.count(mux))
	return s
}

// SetEligibility makes link calls for address answer with status
func (s *Server) SetEligibility(address, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eligibility[address] = status
}

// SetAllocation makes the wallets stream report amount for address
func (s *Server) SetAllocation(address string, amount uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.allocations[address] = amount
}

// FailNext answers the next n calls to path with 502
func (s *Server) FailNext(path string, n int) {
	s.FailNextWith(path, n, http.StatusBadGateway)
}

// FailNextWith answers the next n calls to path with status, replacing any pending failures
func (s *Server) FailNextWith(path string, n, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[path] = failure{remaining: n, status: status}
}

// FailCall answers the nth call to path with 502, counting from server start
func (s *Server) FailCall(path string, nth int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCalls[path] == nil {
		s.failCalls[path] = make(map[int]bool)
	}
	s.failCalls[path][nth] = true
}

// RejectVerification makes every verification answer success=false
func (s *Server) RejectVerification() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejectAll = true
}

// Calls returns how many requests path has received
func (s *Server) Calls(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[path]
}

// LinkedTo returns the claim wallet target was linked to, if any
func (s *Server) LinkedTo(target string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	claim, ok := s.links[target]
	return claim, ok
}

func (s *Server) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls[r.URL.Path]++
		status := 0
		if s.failCalls[r.URL.Path][s.calls[r.URL.Path]] {
			status = http.StatusBadGateway
		} else if f := s.failures[r.URL.Path]; f.remaining > 0 {
			f.remaining--
			s.failures[r.URL.Path] = f
			status = f.status
		}
		s.mu.Unlock()

		if status != 0 {
			http.Error(w, http.StatusText(status), status)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("X-Trpc-Source") != "nextjs-react" || r.URL.Query().Get("batch") != "1" {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	var input struct {
		Batch struct {
			JSON struct {
				UUID string `json:"uuid"`
			} `json:"json"`
		} `json:"0"`
	}
	if err := json.Unmarshal([]byte(r.URL.Query().Get("input")), &input); err != nil || input.Batch.JSON.UUID == "" {
		http.Error(w, "bad input", http.StatusBadRequest)
		return
	}
	nonce := input.Batch.JSON.UUID

	s.mu.Lock()
	sess, ok := s.sessions[nonce]
	if !ok {
		sess = &session{nonce: nonce}
		s.sessions[nonce] = sess
	}
	if sess.verified {
		sess.authed = true
	}
	s.mu.Unlock()

	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: nonce, Path: "/"})
	writeJSON(w, `[{"result":{"data":{"json":null}}}]`)
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("X-Exodus-App-Id") != "magic-eden" {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	var body struct {
		Wallet    string `json:"wallet"`
		Signature string `json:"signature"`
		Message   string `json:"message"`
		Metadata  struct {
			Platform string `json:"platform"`
		} `json:"metadata"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "bad body", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.fromCookie(r)
	ok := sess != nil &&
		!s.rejectAll &&
		body.Metadata.Platform == "ios" &&
		strings.Contains(body.Message, "\nNonce: "+sess.nonce+"\n") &&
		solana.Verify(body.Wallet, body.Message, body.Signature)
	if ok {
		sess.wallet = body.Wallet
		sess.verified = true
	}

	writeJSON(w, fmt.Sprintf(`{"success":%t}`, ok))
}

func (s *Server) handleLink(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("X-Trpc-Source") != "nextjs-react" {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	var body struct {
		Batch struct {
			JSON struct {
				Message         string `json:"message"`
				Wallet          string `json:"wallet"`
				Chain           string `json:"chain"`
				Signature       string `json:"signature"`
				AllocationEvent string `json:"allocationEvent"`
			} `json:"json"`
		} `json:"0"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "bad body", http.StatusBadRequest)
		return
	}
	link := body.Batch.JSON

	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.fromCookie(r)
	if sess == nil || !sess.authed {
		http.Error(w, `{"error":"UNAUTHORIZED"}`, http.StatusUnauthorized)
		return
	}
	if link.Chain != "sol" ||
		!strings.HasSuffix(link.Message, "\nAllocation Wallet: "+link.Wallet+"\nClaim Wallet: "+sess.wallet) ||
		!solana.Verify(link.Wallet, link.Message, link.Signature) {
		http.Error(w, `{"error":"BAD_SIGNATURE"}`, http.StatusBadRequest)
		return
	}

	sess.linked = link.Wallet
	s.links[link.Wallet] = sess.wallet

	status, known := s.eligibility[link.Wallet]
	if !known {
		writeJSON(w, `[{"result":{"data":{"json":{}}}}]`)
		return
	}
	writeJSON(w, fmt.Sprintf(`[{"result":{"data":{"json":{"eligibility":{"eligibility":%q}}}}}]`, status))
}

func (s *Server) handleWallets(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Rsc") != "1" {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	s.mu.Lock()
	sess := s.fromCookie(r)
	if sess == nil || !sess.authed {
		s.mu.Unlock()
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	amount, known := s.allocations[sess.linked]
	s.mu.Unlock()

	w.Header().Set("Content-Type", "text/x-component")
	_, _ = fmt.Fprint(w, WalletsStream(amount, known))
}

// fromCookie must be called with mu held
func (s *Server) fromCookie(r *http.Request) *session {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return nil
	}
	return s.sessions[c.Value]
}

// WalletsStream renders a wallets page stream the way the web app receives it
func WalletsStream(amount uint64, known bool) string {
	var b strings.Builder
	b.WriteString(`0:["$@1",["development",null]]` + "\n")
	b.WriteString(`1:I[12345,["app/layout"],"default"]` + "\n")
	if known {
		fmt.Fprintf(&b, `2:{"wallets":[{"chain":"sol","allocationAmount":%d,"claimed":false}]}`+"\n", amount)
	} else {
		b.WriteString(`2:{"wallets":[]}` + "\n")
	}
	b.WriteString(`3:"$Sreact.suspense"` + "\n")
	return b.String()
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}
