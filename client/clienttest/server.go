// Package clienttest runs an in-process TMS GraphQL API for tests. It
// validates incoming documents against the schema mirror and keeps users
// and shipments in memory.
package clienttest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/99designs/gqlgen/graphql"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/Tanmoy095/LogiSynapse/tms-dashboard/graph"
	"github.com/Tanmoy095/LogiSynapse/tms-dashboard/internal/models"
)

// Request is one recorded call.
type Request struct {
	Operation     string
	Field         string
	Authorization string
	RequestID     string
	Variables     map[string]interface{}
}

type account struct {
	user     models.User
	password string
}

type failure struct {
	code    string
	message string
}

// Server is a fake TMS API.
type Server struct {
	*httptest.Server

	schema *ast.Schema

	mu        sync.Mutex
	accounts  map[string]*account // by email
	tokens    map[string]string   // token -> user id
	shipments []*models.Shipment
	requests  []Request
	failures  map[string]failure // by operation name
	seq       int
	now       time.Time
}

// NewServer starts a fake API and stops it when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()
	schema, err := graph.Schema()
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	s := &Server{
		schema:   schema,
		accounts: make(map[string]*account),
		tokens:   make(map[string]string),
		failures: make(map[string]failure),
		now:      time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// URL of the GraphQL endpoint.
func (s *Server) Endpoint() string {
	return s.Server.URL + "/graphql"
}

// AddUser registers an account and returns the stored user.
func (s *Server) AddUser(u models.User, password string) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	if u.ID == "" {
		u.ID = fmt.Sprintf("user-%d", s.seq)
	}
	if u.FullName == "" {
		u.FullName = strings.TrimSpace(u.FirstName + " " + u.LastName)
	}
	if u.Role == "" {
		u.Role = models.RoleEmployee
	}
	u.IsActive = true
	s.accounts[strings.ToLower(u.Email)] = &account{user: u, password: password}
	return u
}

// IssueToken returns a valid token for an existing user id.
func (s *Server) IssueToken(userID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueLocked(userID)
}

func (s *Server) issueLocked(userID string) string {
	s.seq++
	token := fmt.Sprintf("tok-%s-%d", userID, s.seq)
	s.tokens[token] = userID
	return token
}

// RevokeTokens invalidates every issued token.
func (s *Server) RevokeTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = make(map[string]string)
}

// AddShipment stores a shipment, filling id, tracking number and
// timestamps when empty. Later additions are newer.
func (s *Server) AddShipment(sh models.Shipment) models.Shipment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.addLocked(sh)
}

func (s *Server) addLocked(sh models.Shipment) *models.Shipment {
	s.seq++
	if sh.ID == "" {
		sh.ID = fmt.Sprintf("shp-%d", s.seq)
	}
	if sh.TrackingNumber == "" {
		sh.TrackingNumber = fmt.Sprintf("TMS%06d", s.seq)
	}
	if sh.Status == "" {
		sh.Status = models.ShipmentStatusPending
	}
	if sh.Priority == "" {
		sh.Priority = models.PriorityMedium
	}
	if sh.Type == "" {
		sh.Type = models.TypeStandard
	}
	if sh.CreatedAt == "" {
		sh.CreatedAt = s.now.Add(time.Duration(s.seq) * time.Minute).Format(time.RFC3339)
	}
	if sh.UpdatedAt == "" {
		sh.UpdatedAt = sh.CreatedAt
	}
	if sh.EstimatedDelivery == "" {
		sh.EstimatedDelivery = s.now.AddDate(0, 0, 7).Format(time.RFC3339)
	}
	stored := sh
	s.shipments = append(s.shipments, &stored)
	return &stored
}

// Shipment returns the server-side record.
func (s *Server) Shipment(id string) (models.Shipment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sh := s.findLocked(id); sh != nil {
		return *sh, true
	}
	return models.Shipment{}, false
}

// FailNext makes the next call of operation fail with code and message.
func (s *Server) FailNext(operation, code, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[operation] = failure{code: code, message: message}
}

// Requests returns a copy of every recorded call.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Calls counts recorded calls of operation.
func (s *Server) Calls(operation string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Operation == operation {
			n++
		}
	}
	return n
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	var params graphql.RawParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		http.Error(w, "bad request body", http.StatusBadRequest)
		return
	}

	doc, errs := gqlparser.LoadQuery(s.schema, params.Query)
	if len(errs) > 0 {
		for _, e := range errs {
			e.Extensions = map[string]interface{}{"code": "GRAPHQL_VALIDATION_FAILED"}
		}
		writeJSON(w, http.StatusBadRequest, &graphql.Response{Errors: errs})
		return
	}
	op := doc.Operations.ForName(params.OperationName)
	if op == nil || len(op.SelectionSet) == 0 {
		writeJSON(w, http.StatusBadRequest, &graphql.Response{Errors: gqlerror.List{gqlerror.Errorf("unknown operation")}})
		return
	}
	field, ok := op.SelectionSet[0].(*ast.Field)
	if !ok {
		writeJSON(w, http.StatusBadRequest, &graphql.Response{Errors: gqlerror.List{gqlerror.Errorf("unsupported selection")}})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, Request{
		Operation:     op.Name,
		Field:         field.Name,
		Authorization: r.Header.Get("Authorization"),
		RequestID:     r.Header.Get("X-Request-ID"),
		Variables:     params.Variables,
	})

	if f, ok := s.failures[op.Name]; ok {
		delete(s.failures, op.Name)
		writeError(w, field.Name, f.code, f.message)
		return
	}

	var viewer *models.User
	if field.Name != "login" && field.Name != "register" {
		viewer = s.viewerLocked(r.Header.Get("Authorization"))
		if viewer == nil {
			writeError(w, field.Name, "UNAUTHENTICATED", "You must be logged in")
			return
		}
	}

	result, gqlErr := s.resolveLocked(field.Name, params.Variables, viewer)
	if gqlErr != nil {
		gqlErr.Path = ast.Path{ast.PathName(field.Name)}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"data":   nil,
			"errors": gqlerror.List{gqlErr},
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{field.Name: result},
	})
}

func (s *Server) viewerLocked(header string) *models.User {
	token := strings.TrimPrefix(header, "Bearer ")
	if token == "" || token == header {
		return nil
	}
	id, ok := s.tokens[token]
	if !ok {
		return nil
	}
	for _, a := range s.accounts {
		if a.user.ID == id {
			u := a.user
			return &u
		}
	}
	return nil
}

func writeError(w http.ResponseWriter, field, code, message string) {
	e := &gqlerror.Error{
		Message:    message,
		Path:       ast.Path{ast.PathName(field)},
		Extensions: map[string]interface{}{"code": code},
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":   nil,
		"errors": gqlerror.List{e},
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeVar re-encodes a variable into a typed value.
func decodeVar(vars map[string]interface{}, name string, out interface{}) error {
	raw, err := json.Marshal(vars[name])
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func coded(code, format string, args ...interface{}) *gqlerror.Error {
	e := gqlerror.Errorf(format, args...)
	e.Extensions = map[string]interface{}{"code": code}
	return e
}
