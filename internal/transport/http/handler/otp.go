package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/otp-notify-api/internal/application/otp"
	"github.com/otp-notify-api/internal/domain"
	"github.com/otp-notify-api/internal/pkg/validate"
	"github.com/otp-notify-api/internal/transport/http/middleware"
)

// OTPHandler exposes code issuance and verification.
type OTPHandler struct {
	svc otp.Service
}

func NewOTPHandler(svc otp.Service) *OTPHandler {
	return &OTPHandler{svc: svc}
}

type sendOTPRequest struct {
	Phone string `json:"phone" validate:"required"`
}

type verifyOTPRequest struct {
	Phone string `json:"phone" validate:"required"`
	Code  string `json:"code" validate:"required"`
}

// SendOTP handles POST /otp.
func (h *OTPHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req sendOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.svc.IssueCode(r.Context(), req.Phone, middleware.RealIP(r))
	if err != nil {
		var rle *domain.RateLimitError
		if errors.As(err, &rle) {
			writeRateLimited(w, rle)
			return
		}
		var de *domain.DeliveryError
		if errors.As(err, &de) {
			slog.Error("otp delivery failed", "provider", de.Provider, "err", de.Message)
			writeError(w, http.StatusBadGateway, "failed to deliver verification code")
			return
		}
		httpError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageEnvelope{
		Success: true,
		Message: "verification code sent",
		Code:    res.Code,
	})
}

// VerifyOTP handles PUT /otp.
func (h *OTPHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.VerifyCode(r.Context(), req.Phone, req.Code); err != nil {
		httpError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageEnvelope{Success: true, Message: "phone number verified"})
}
