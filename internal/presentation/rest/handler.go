package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/PremHer/kasvarealty-sub001/internal/application/dto"
	"github.com/PremHer/kasvarealty-sub001/internal/domain/model"
	"github.com/PremHer/kasvarealty-sub001/internal/presentation/access"
	"github.com/PremHer/kasvarealty-sub001/pkg/auth"
)

// Handler serves the /api/v1 routes.
type Handler struct {
	uc     UseCases
	logger *slog.Logger
}

// paymentBody is the payload of POST /sale-accounts/{id}/payments.
type paymentBody struct {
	InstallmentID string `json:"installment_id"`
	Amount        string `json:"amount"`
	Date          string `json:"date"`
	Method        string `json:"method"`
	Note          string `json:"note"`
	ReceiptRef    string `json:"receipt_ref"`
}

func (h *Handler) createSaleAccount(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.authorize(w, r, access.OpCreateSaleAccount)
	if !ok {
		return
	}
	var req dto.CreateSaleAccountRequest
	if !h.decode(w, r, &req) {
		return
	}
	req.TenantID = claims.TenantID

	resp, err := h.uc.Create.Execute(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) previewSchedule(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authorize(w, r, access.OpPreviewSchedule); !ok {
		return
	}
	var terms dto.ScheduleTerms
	if !h.decode(w, r, &terms) {
		return
	}

	resp, err := h.uc.Preview.Execute(r.Context(), dto.PreviewScheduleRequest{ScheduleTerms: terms})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) getSaleAccount(w http.ResponseWriter, r *http.Request) {
	claims, id, ok := h.authorizeAccount(w, r, access.OpGetSaleAccount)
	if !ok {
		return
	}
	asOf, err := access.ParseDate("as_of", r.URL.Query().Get("as_of"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp, err := h.uc.Get.Execute(r.Context(), dto.GetSaleAccountRequest{
		TenantID: claims.TenantID, SaleAccountID: id, AsOf: asOf,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) computeMora(w http.ResponseWriter, r *http.Request) {
	claims, id, ok := h.authorizeAccount(w, r, access.OpComputeMora)
	if !ok {
		return
	}
	q := r.URL.Query()
	asOf, err := access.ParseDate("as_of", q.Get("as_of"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	rate, err := access.ParseOptionalDecimal("rate", q.Get("rate"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp, err := h.uc.Mora.Execute(r.Context(), dto.ComputeMoraRequest{
		TenantID: claims.TenantID, SaleAccountID: id, AsOf: asOf, Rate: rate,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) applyPayment(w http.ResponseWriter, r *http.Request) {
	claims, id, ok := h.authorizeAccount(w, r, access.OpApplyPayment)
	if !ok {
		return
	}
	var body paymentBody
	if !h.decode(w, r, &body) {
		return
	}
	req, err := body.toRequest(claims.TenantID, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp, err := h.uc.Pay.Execute(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) reprogram(w http.ResponseWriter, r *http.Request) {
	claims, id, ok := h.authorizeAccount(w, r, access.OpReprogram)
	if !ok {
		return
	}
	var req dto.ReprogramRequest
	if !h.decode(w, r, &req) {
		return
	}
	req.TenantID = claims.TenantID
	req.SaleAccountID = id
	req.ActorID = claims.UserID

	resp, err := h.uc.Reprogram.Execute(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) listReprogrammings(w http.ResponseWriter, r *http.Request) {
	claims, id, ok := h.authorizeAccount(w, r, access.OpListReprogrammings)
	if !ok {
		return
	}

	resp, err := h.uc.Reprogrammings.Execute(r.Context(), dto.ListReprogrammingsRequest{
		TenantID: claims.TenantID, SaleAccountID: id,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) recalculateBalances(w http.ResponseWriter, r *http.Request) {
	claims, id, ok := h.authorizeAccount(w, r, access.OpRecalculateBalances)
	if !ok {
		return
	}

	resp, err := h.uc.Recalculate.Execute(r.Context(), dto.RecalculateBalancesRequest{
		TenantID: claims.TenantID, SaleAccountID: id,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) authorize(w http.ResponseWriter, r *http.Request, op access.Operation) (*auth.Claims, bool) {
	claims, err := access.Authorize(r.Context(), op)
	if err != nil {
		h.writeError(w, r, err)
		return nil, false
	}
	return claims, true
}

func (h *Handler) authorizeAccount(w http.ResponseWriter, r *http.Request, op access.Operation) (*auth.Claims, uuid.UUID, bool) {
	claims, ok := h.authorize(w, r, op)
	if !ok {
		return nil, uuid.Nil, false
	}
	id, err := access.ParseID("sale_account_id", mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return nil, uuid.Nil, false
	}
	return claims, id, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		h.writeError(w, r, model.Fail(model.ErrInvalidArgument, "body", err.Error()))
		return false
	}
	return true
}

func (b paymentBody) toRequest(tenantID, accountID uuid.UUID) (dto.ApplyPaymentRequest, error) {
	installmentID, err := access.ParseID("installment_id", b.InstallmentID)
	if err != nil {
		return dto.ApplyPaymentRequest{}, err
	}
	amount, err := access.ParseDecimal("amount", b.Amount)
	if err != nil {
		return dto.ApplyPaymentRequest{}, err
	}
	date, err := access.ParseDate("date", b.Date)
	if err != nil {
		return dto.ApplyPaymentRequest{}, err
	}
	return dto.ApplyPaymentRequest{
		TenantID:      tenantID,
		SaleAccountID: accountID,
		InstallmentID: installmentID,
		Amount:        amount,
		Date:          date,
		Method:        b.Method,
		Note:          b.Note,
		ReceiptRef:    b.ReceiptRef,
	}, nil
}
