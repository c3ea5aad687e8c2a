package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"acecheckin/internal/core"
	applog "acecheckin/internal/log"
	"acecheckin/internal/records"
)

// Machine-readable error codes carried in error responses.
const (
	codeValidation     = "validation_error"
	codeInvalidJSON    = "invalid_json"
	codeMemberNotFound = "member_not_found"
	codeUnauthorized   = "unauthorized"
	codeRateLimited    = "rate_limited"
	codeInternal       = "internal_error"
)

type errorResponse struct {
	Detail    string `json:"detail"`
	ErrorCode string `json:"error_code"`
}

type createMemberRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type entryCheckinRequest struct {
	MemberID int64  `json:"member_id"`
	Notes    string `json:"notes"`
}

// paymentCheckinRequest keeps the amount as raw JSON so the exact client
// text reaches the validator. A float64 field would round "25.555" before
// the precision check could see it.
type paymentCheckinRequest struct {
	MemberID int64           `json:"member_id"`
	Amount   json.RawMessage `json:"amount"`
	Notes    string          `json:"notes"`
}

type memberResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     *string   `json:"email"`
	Phone     *string   `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

type entryResponse struct {
	ID         int64     `json:"id"`
	MemberID   int64     `json:"member_id"`
	MemberName string    `json:"member_name"`
	Timestamp  time.Time `json:"timestamp"`
	Notes      *string   `json:"notes"`
	Message    string    `json:"message"`
}

type entryItem struct {
	ID        int64     `json:"id"`
	MemberID  int64     `json:"member_id"`
	Timestamp time.Time `json:"timestamp"`
	Notes     *string   `json:"notes"`
}

type entryHistoryResponse struct {
	MemberID     int64       `json:"member_id"`
	MemberName   string      `json:"member_name"`
	TotalEntries int         `json:"total_entries"`
	Entries      []entryItem `json:"entries"`
}

type paymentResponse struct {
	ID         int64      `json:"id"`
	MemberID   int64      `json:"member_id"`
	MemberName string     `json:"member_name"`
	Amount     core.Money `json:"amount"`
	Timestamp  time.Time  `json:"timestamp"`
	Notes      *string    `json:"notes"`
	Message    string     `json:"message"`
}

type paymentItem struct {
	ID        int64      `json:"id"`
	MemberID  int64      `json:"member_id"`
	Amount    core.Money `json:"amount"`
	Timestamp time.Time  `json:"timestamp"`
	Notes     *string    `json:"notes"`
}

type paymentHistoryResponse struct {
	MemberID      int64         `json:"member_id"`
	MemberName    string        `json:"member_name"`
	TotalPayments int           `json:"total_payments"`
	TotalAmount   core.Money    `json:"total_amount"`
	Payments      []paymentItem `json:"payments"`
}

type summaryStats struct {
	TotalEntries    int        `json:"total_entries"`
	TotalPayments   int        `json:"total_payments"`
	TotalAmountPaid core.Money `json:"total_amount_paid"`
	LastEntry       *time.Time `json:"last_entry"`
	LastPayment     *time.Time `json:"last_payment"`
}

type summaryResponse struct {
	Member memberResponse `json:"member"`
	Stats  summaryStats   `json:"stats"`
}

func (s *Server) handleCreateMember(w http.ResponseWriter, r *http.Request) {
	var req createMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed JSON body", codeInvalidJSON)
		return
	}

	member, err := s.service.RegisterMember(r.Context(), records.CreateMemberParams{
		Name:  sanitizeInput(req.Name),
		Email: sanitizeInput(req.Email),
		Phone: sanitizeInput(req.Phone),
	})
	if err != nil {
		writeServiceError(w, r, err, 0)
		return
	}

	writeJSON(w, http.StatusOK, toMemberResponse(member))
}

func (s *Server) handleGetMember(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error(), codeValidation)
		return
	}

	member, err := s.service.GetMember(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, id)
		return
	}

	writeJSON(w, http.StatusOK, toMemberResponse(member))
}

func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	skip, limit, err := pagination(r)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error(), codeValidation)
		return
	}

	members, err := s.service.ListMembers(r.Context(), skip, limit)
	if err != nil {
		writeServiceError(w, r, err, 0)
		return
	}

	resp := make([]memberResponse, 0, len(members))
	for _, m := range members {
		resp = append(resp, toMemberResponse(m))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLogEntry(w http.ResponseWriter, r *http.Request) {
	var req entryCheckinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed JSON body", codeInvalidJSON)
		return
	}

	entry, member, err := s.service.LogEntry(r.Context(), req.MemberID, sanitizeInput(req.Notes))
	if err != nil {
		writeServiceError(w, r, err, req.MemberID)
		return
	}

	s.invalidateSummary(member.ID)

	writeJSON(w, http.StatusOK, entryResponse{
		ID:         entry.ID,
		MemberID:   entry.MemberID,
		MemberName: member.Name,
		Timestamp:  entry.Timestamp,
		Notes:      optString(entry.Notes),
		Message:    fmt.Sprintf("Entry logged for %s", member.Name),
	})
}

func (s *Server) handleEntryHistory(w http.ResponseWriter, r *http.Request) {
	memberID, err := pathID(r, "member_id")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error(), codeValidation)
		return
	}
	skip, limit, err := pagination(r)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error(), codeValidation)
		return
	}

	member, entries, err := s.service.EntryHistory(r.Context(), memberID, skip, limit)
	if err != nil {
		writeServiceError(w, r, err, memberID)
		return
	}

	items := make([]entryItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, entryItem{
			ID:        e.ID,
			MemberID:  e.MemberID,
			Timestamp: e.Timestamp,
			Notes:     optString(e.Notes),
		})
	}

	writeJSON(w, http.StatusOK, entryHistoryResponse{
		MemberID:     member.ID,
		MemberName:   member.Name,
		TotalEntries: len(items),
		Entries:      items,
	})
}

func (s *Server) handleLogPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentCheckinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed JSON body", codeInvalidJSON)
		return
	}

	amount, err := parseAmountJSON(req.Amount)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error(), amountErrorCode(err))
		return
	}

	payment, member, err := s.service.LogPayment(r.Context(), req.MemberID, amount, sanitizeInput(req.Notes))
	if err != nil {
		writeServiceError(w, r, err, req.MemberID)
		return
	}

	s.invalidateSummary(member.ID)

	writeJSON(w, http.StatusOK, paymentResponse{
		ID:         payment.ID,
		MemberID:   payment.MemberID,
		MemberName: member.Name,
		Amount:     payment.Amount,
		Timestamp:  payment.Timestamp,
		Notes:      optString(payment.Notes),
		Message:    fmt.Sprintf("Payment of $%s logged for %s", payment.Amount.String(), member.Name),
	})
}

func (s *Server) handlePaymentHistory(w http.ResponseWriter, r *http.Request) {
	memberID, err := pathID(r, "member_id")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error(), codeValidation)
		return
	}
	skip, limit, err := pagination(r)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error(), codeValidation)
		return
	}

	member, payments, err := s.service.PaymentHistory(r.Context(), memberID, skip, limit)
	if err != nil {
		writeServiceError(w, r, err, memberID)
		return
	}

	items := make([]paymentItem, 0, len(payments))
	for _, p := range payments {
		items = append(items, paymentItem{
			ID:        p.ID,
			MemberID:  p.MemberID,
			Amount:    p.Amount,
			Timestamp: p.Timestamp,
			Notes:     optString(p.Notes),
		})
	}

	// The total covers the returned page, matching the per-page entry count.
	writeJSON(w, http.StatusOK, paymentHistoryResponse{
		MemberID:      member.ID,
		MemberName:    member.Name,
		TotalPayments: len(items),
		TotalAmount:   core.SumPayments(payments),
		Payments:      items,
	})
}

func (s *Server) handleMemberSummary(w http.ResponseWriter, r *http.Request) {
	memberID, err := pathID(r, "member_id")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error(), codeValidation)
		return
	}

	key := s.summaryCacheKey(memberID)
	if cached, found := s.summaryCache.Get(key); found {
		slog.DebugContext(r.Context(), "Summary cache hit", "member_id", memberID)
		writeJSON(w, http.StatusOK, cached)
		return
	}

	member, stats, err := s.service.MemberSummary(r.Context(), memberID)
	if err != nil {
		writeServiceError(w, r, err, memberID)
		return
	}

	resp := summaryResponse{
		Member: toMemberResponse(member),
		Stats: summaryStats{
			TotalEntries:    stats.TotalEntries,
			TotalPayments:   stats.TotalPayments,
			TotalAmountPaid: stats.TotalAmountPaid,
			LastEntry:       optTime(stats.LastEntry),
			LastPayment:     optTime(stats.LastPayment),
		},
	}

	s.summaryCache.Set(key, resp)
	writeJSON(w, http.StatusOK, resp)
}

// parseAmountJSON accepts the amount as a JSON number or string and runs it
// through the exact-decimal validator.
func parseAmountJSON(raw json.RawMessage) (core.Money, error) {
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		return core.Money{}, fmt.Errorf("%w: amount is required", core.ErrAmountNotNumber)
	}
	if strings.HasPrefix(text, `"`) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return core.Money{}, fmt.Errorf("%w: malformed amount", core.ErrAmountNotNumber)
		}
		text = s
	}
	return core.ParseAmount(text)
}

func toMemberResponse(m core.Member) memberResponse {
	return memberResponse{
		ID:        m.ID,
		Name:      m.Name,
		Email:     optString(m.Email),
		Phone:     optString(m.Phone),
		CreatedAt: m.CreatedAt,
	}
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error, memberID int64) {
	switch {
	case errors.Is(err, records.ErrMemberNotFound):
		writeError(w, http.StatusNotFound, fmt.Sprintf("Member with ID %d not found", memberID), codeMemberNotFound)
	case errors.Is(err, core.ErrInvalidAmount):
		writeError(w, http.StatusUnprocessableEntity, err.Error(), amountErrorCode(err))
	case isValidationError(err):
		writeError(w, http.StatusUnprocessableEntity, err.Error(), codeValidation)
	default:
		slog.ErrorContext(r.Context(), "Request failed",
			applog.FieldError, err,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path)
		writeError(w, http.StatusInternalServerError, "Internal server error", codeInternal)
	}
}

func isValidationError(err error) bool {
	return errors.Is(err, core.ErrInvalidMemberID) ||
		errors.Is(err, core.ErrEmptyName) ||
		errors.Is(err, core.ErrNameTooLong) ||
		errors.Is(err, core.ErrEmailTooLong) ||
		errors.Is(err, core.ErrPhoneTooLong) ||
		errors.Is(err, core.ErrNotesTooLong)
}

// amountErrorCode maps each amount validation failure to its own error code
// so clients can tell the kinds apart.
func amountErrorCode(err error) string {
	switch {
	case errors.Is(err, core.ErrAmountNotNumber):
		return "amount_not_a_number"
	case errors.Is(err, core.ErrAmountPrecision):
		return "amount_too_many_decimals"
	case errors.Is(err, core.ErrAmountNotPositive):
		return "amount_not_positive"
	case errors.Is(err, core.ErrAmountTooLarge):
		return "amount_too_large"
	default:
		return codeValidation
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, detail, code string) {
	writeJSON(w, status, errorResponse{Detail: detail, ErrorCode: code})
}

func pathID(r *http.Request, name string) (int64, error) {
	v := r.PathValue(name)
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: must be an integer", name, v)
	}
	return id, nil
}

// pagination reads skip/limit query parameters with the API defaults.
func pagination(r *http.Request) (skip, limit int, err error) {
	skip, err = queryInt(r, "skip", 0)
	if err != nil {
		return 0, 0, err
	}
	limit, err = queryInt(r, "limit", records.DefaultListLimit)
	if err != nil {
		return 0, 0, err
	}
	return skip, limit, nil
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s parameter %q: must be an integer", name, v)
	}
	return n, nil
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
