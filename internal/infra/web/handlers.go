package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"shaparak-pay/internal/domain"
	"shaparak-pay/internal/domain/model"
	"shaparak-pay/internal/usecase"
)

type payRequest struct {
	Gateway     string            `json:"gateway"`
	Amount      string            `json:"amount"`
	CallbackURL string            `json:"callback_url"`
	Data        map[string]string `json:"data,omitempty"`
}

// handlePay initiates a payment and hands the client off to the bank. On a
// successful gateway request the response body IS the transporter output: a
// 302 redirect or an auto-submitting HTML form.
func (s *Server) handlePay(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	var req payRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	amount, err := model.ParseMoney(req.Amount)
	if err != nil {
		http.Error(w, "Invalid amount", http.StatusUnprocessableEntity)
		return
	}

	result, payment, err := s.payUC.Pay(ctx, req.Gateway, amount, req.CallbackURL, req.Data)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrGatewayNotRegistered),
			errors.Is(err, domain.ErrGatewayTypeNotSet),
			errors.Is(err, domain.ErrAmountNotSet),
			errors.Is(err, domain.ErrCallbackURLNotSet):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		default:
			s.log.Error().Err(err).Str("gateway", req.Gateway).Msg("pay failed")
			http.Error(w, "Failed to initiate payment", http.StatusInternalServerError)
		}
		return
	}

	if !result.IsSucceed {
		s.renderResult(w, http.StatusBadGateway, resultPage{
			Msg:            result.Message,
			TrackingNumber: payment.TrackingNumber,
		})
		return
	}
	if err := result.Transporter.Transport(w, r); err != nil {
		s.log.Error().Err(err).Int64("tracking_number", payment.TrackingNumber).Msg("transport failed")
	}
}

// handleCallback is the bank's re-entry point. The tracking number travels as
// a query parameter appended at invoice build time; everything else in the
// request is untrusted until the gateway adapter validates it.
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	trackingNumber, err := strconv.ParseInt(r.URL.Query().Get(usecase.TrackingNumberParam), 10, 64)
	if err != nil {
		s.renderResult(w, http.StatusBadRequest, resultPage{Msg: "missing tracking number"})
		return
	}

	result, err := s.payUC.HandleCallback(ctx, r, trackingNumber)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			s.renderResult(w, http.StatusNotFound, resultPage{Msg: "payment not found", TrackingNumber: trackingNumber})
		case errors.Is(err, domain.ErrPaymentAlreadyHandled):
			s.renderResult(w, http.StatusConflict, resultPage{Msg: "payment already processed", TrackingNumber: trackingNumber})
		default:
			s.log.Error().Err(err).Int64("tracking_number", trackingNumber).Msg("callback failed")
			s.renderResult(w, http.StatusInternalServerError, resultPage{Msg: "payment processing failed", TrackingNumber: trackingNumber})
		}
		return
	}

	code := http.StatusOK
	if !result.IsSucceed {
		code = http.StatusBadRequest
	}
	s.renderResult(w, code, resultPage{
		OK:              result.IsSucceed,
		Msg:             result.Message,
		TrackingNumber:  trackingNumber,
		TransactionCode: result.TransactionCode,
	})
}

type adminLoginRequest struct {
	Secret string `json:"secret"`
}

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if s.cfg.Admin.Secret == "" ||
		subtle.ConstantTimeCompare([]byte(req.Secret), []byte(s.cfg.Admin.Secret)) != 1 {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	token, err := s.auth.Mint(w)
	if err != nil {
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) handleAdminLogout(w http.ResponseWriter, _ *http.Request) {
	s.auth.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

type refundRequest struct {
	TrackingNumber int64 `json:"tracking_number"`
	// Amount is optional; empty means a full refund.
	Amount string `json:"amount,omitempty"`
}

func (s *Server) handleRefund(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	var req refundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	var amount model.Money
	if req.Amount != "" {
		var err error
		amount, err = model.ParseMoney(req.Amount)
		if err != nil {
			http.Error(w, "Invalid amount", http.StatusUnprocessableEntity)
			return
		}
	}

	result, err := s.payUC.Refund(ctx, req.TrackingNumber, amount)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			http.Error(w, "Payment not found", http.StatusNotFound)
		case errors.Is(err, domain.ErrPaymentNotVerified):
			http.Error(w, err.Error(), http.StatusConflict)
		case errors.Is(err, domain.ErrRefundNotSupported):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		case errors.Is(err, domain.ErrTransactionNotFound), errors.Is(err, domain.ErrTokenNotFound):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			s.log.Error().Err(err).Int64("tracking_number", req.TrackingNumber).Msg("refund failed")
			http.Error(w, "Refund failed", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"tracking_number": req.TrackingNumber,
		"is_succeed":      result.IsSucceed,
		"message":         result.Message,
	})
}

func (s *Server) handlePaymentStatus(w http.ResponseWriter, r *http.Request) {
	trackingNumber, err := strconv.ParseInt(chi.URLParam(r, "trackingNumber"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid tracking number", http.StatusBadRequest)
		return
	}

	payment, err := s.payUC.GetByTrackingNumber(r.Context(), trackingNumber)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "Payment not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to load payment", http.StatusInternalServerError)
		return
	}

	type txView struct {
		Type      model.TransactionType `json:"type"`
		IsSucceed bool                  `json:"is_succeed"`
		Message   string                `json:"message"`
		CreatedAt time.Time             `json:"created_at"`
	}
	txs := make([]txView, 0, len(payment.Transactions))
	for _, tx := range payment.Transactions {
		txs = append(txs, txView{Type: tx.Type, IsSucceed: tx.IsSucceed, Message: tx.Message, CreatedAt: tx.CreatedAt})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tracking_number": payment.TrackingNumber,
		"gateway":         payment.GatewayName,
		"amount":          payment.Amount.String(),
		"status":          payment.Status,
		"transactions":    txs,
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// ===== callback result page =====

type resultPage struct {
	OK              bool
	Msg             string
	TrackingNumber  int64
	TransactionCode string
}

var resultTmpl = template.Must(template.New("result").Parse(`<!doctype html>
<html lang="fa" dir="rtl">
<head>
<meta charset="utf-8" />
<meta name="viewport" content="width=device-width,initial-scale=1" />
<title>{{if .OK}}Payment Successful{{else}}Payment Result{{end}}</title>
<style>
body{font-family:system-ui,Tahoma,Arial,sans-serif;margin:2rem;}
.card{max-width:560px;border:1px solid #ddd;border-radius:12px;padding:24px;}
.ok{color:#057a55} .fail{color:#b00020}
.small{font-size:12px;color:#666}
</style>
</head>
<body>
<div class="card">
  <h2 class="{{if .OK}}ok{{else}}fail{{end}}">{{if .OK}}Payment Successful{{else}}Payment Failed{{end}}</h2>
  <p>{{.Msg}}</p>
  {{if .TrackingNumber}}<div class="small">Tracking number: {{.TrackingNumber}}</div>{{end}}
  {{if .TransactionCode}}<div class="small">Transaction code: {{.TransactionCode}}</div>{{end}}
</div>
</body>
</html>`))

func (s *Server) renderResult(w http.ResponseWriter, code int, page resultPage) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	_ = resultTmpl.Execute(w, page)
}
