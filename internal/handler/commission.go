package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"github.com/openbid/auction-marketplace/internal/media"
	"github.com/openbid/auction-marketplace/internal/model"
	"github.com/openbid/auction-marketplace/internal/repository"
)

// CommissionHandler serves the auctioneer side of commission tracking:
// proof submission and history.
type CommissionHandler struct {
	Accounts    *repository.AccountRepo
	Proofs      *repository.PaymentProofRepo
	Commissions *repository.CommissionRepo
	Media       media.Store
}

func NewCommissionHandler(accounts *repository.AccountRepo, proofs *repository.PaymentProofRepo,
	commissions *repository.CommissionRepo, store media.Store) *CommissionHandler {
	return &CommissionHandler{Accounts: accounts, Proofs: proofs, Commissions: commissions, Media: store}
}

// SubmitProof records a payment proof: a screenshot, the amount paid
// and an optional comment. The proof enters Pending and waits for an
// admin decision; the unpaid balance only moves when the proof settles.
func (h *CommissionHandler) SubmitProof(c echo.Context) error {
	accID, err := accountID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	amount, err := strconv.ParseInt(c.FormValue("amount_cents"), 10, 64)
	if err != nil || amount <= 0 {
		return fail(c, http.StatusBadRequest, "amount_cents must be a positive integer")
	}
	fh, err := c.FormFile("proof")
	if err != nil {
		return fail(c, http.StatusBadRequest, "proof file is required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	src, err := fh.Open()
	if err != nil {
		return failErr(c, err)
	}
	obj, err := h.Media.Upload(ctx, "proofs", fh.Filename, src)
	_ = src.Close()
	if err != nil {
		log.WithField("error", err).Warn("payment proof upload failed")
		return fail(c, http.StatusBadGateway, "proof upload failed")
	}

	p := model.PaymentProof{
		AccountID:   accID,
		ProofID:     obj.PublicID,
		ProofURL:    obj.URL,
		AmountCents: amount,
		Status:      model.ProofPending,
		Comment:     strings.TrimSpace(c.FormValue("comment")),
	}
	p.ID, err = h.Proofs.Create(ctx, p)
	if err != nil {
		return failErr(c, err)
	}
	return respond(c, http.StatusCreated, "payment proof submitted", echo.Map{
		"proof": toProofView(p),
	})
}

// History returns the caller's settled commission ledger.
func (h *CommissionHandler) History(c echo.Context) error {
	accID, err := accountID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	rows, err := h.Commissions.ListByAccount(ctx, accID, repository.ScopeDefault)
	if err != nil {
		return failErr(c, err)
	}
	type commissionView struct {
		ID          uint64    `json:"id"`
		AmountCents int64     `json:"amount_cents"`
		CreatedAt   time.Time `json:"created_at"`
	}
	out := make([]commissionView, 0, len(rows))
	for _, r := range rows {
		out = append(out, commissionView{ID: r.ID, AmountCents: r.AmountCents, CreatedAt: r.CreatedAt})
	}
	return respond(c, http.StatusOK, "commission history", echo.Map{"commissions": out})
}
