package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/openbid/auction-marketplace/internal/clock"
	"github.com/openbid/auction-marketplace/internal/config"
	"github.com/openbid/auction-marketplace/internal/lifecycle"
	"github.com/openbid/auction-marketplace/internal/model"
	"github.com/openbid/auction-marketplace/internal/repository"
	"github.com/openbid/auction-marketplace/internal/role"
	"github.com/openbid/auction-marketplace/internal/utils"
)

// AdminHandler serves the moderation and reporting surface. Route
// groups restrict it to Admin and Super Admin; per-target rules (who
// may moderate whom) are enforced here via the role capability matrix.
type AdminHandler struct {
	Cfg         config.Config
	Accounts    *repository.AccountRepo
	Auctions    *repository.AuctionRepo
	Proofs      *repository.PaymentProofRepo
	Commissions *repository.CommissionRepo
	Notifier    lifecycle.Notifier
	Clock       clock.Clock
}

func NewAdminHandler(cfg config.Config, accounts *repository.AccountRepo, auctions *repository.AuctionRepo,
	proofs *repository.PaymentProofRepo, commissions *repository.CommissionRepo,
	notifier lifecycle.Notifier, clk clock.Clock) *AdminHandler {
	if notifier == nil {
		notifier = lifecycle.NopNotifier{}
	}
	return &AdminHandler{
		Cfg: cfg, Accounts: accounts, Auctions: auctions,
		Proofs: proofs, Commissions: commissions, Notifier: notifier, Clock: clk,
	}
}

// ----- auction moderation -----

// PendingAuctions lists listings awaiting review.
func (h *AdminHandler) PendingAuctions(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	as, err := h.Auctions.ListPending(ctx)
	if err != nil {
		return failErr(c, err)
	}
	return respond(c, http.StatusOK, "pending auctions", echo.Map{"items": toAuctionViews(as)})
}

// ApproveAuction publishes a pending listing.
func (h *AdminHandler) ApproveAuction(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	a, err := h.Auctions.GetByID(ctx, id, repository.ScopeDefault)
	if err != nil {
		return failErr(c, err)
	}
	if a.ApprovalStatus != model.ApprovalPending {
		return fail(c, http.StatusConflict, "auction is not pending review")
	}
	if err := h.Auctions.Approve(ctx, id); err != nil {
		return failErr(c, err)
	}
	h.Notifier.Notify(ctx, a.CreatedBy, "Auction Approved",
		fmt.Sprintf("Your auction %q is now live.", a.Title), model.SeveritySuccess)
	return respond(c, http.StatusOK, "auction approved", nil)
}

type rejectReq struct {
	Reason string `json:"reason"`
}

// RejectAuction declines a pending listing with a reason.
func (h *AdminHandler) RejectAuction(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	var req rejectReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Reason) == "" {
		return fail(c, http.StatusBadRequest, "reason is required")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	a, err := h.Auctions.GetByID(ctx, id, repository.ScopeDefault)
	if err != nil {
		return failErr(c, err)
	}
	if a.ApprovalStatus != model.ApprovalPending {
		return fail(c, http.StatusConflict, "auction is not pending review")
	}
	if err := h.Auctions.Reject(ctx, id, req.Reason); err != nil {
		return failErr(c, err)
	}
	h.Notifier.Notify(ctx, a.CreatedBy, "Auction Rejected",
		fmt.Sprintf("Your auction %q was rejected: %s", a.Title, req.Reason), model.SeverityWarning)
	return respond(c, http.StatusOK, "auction rejected", nil)
}

// DeleteAuction soft-removes any auction, recording who and why.
func (h *AdminHandler) DeleteAuction(c echo.Context) error {
	adminID, err := accountID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	reason := strings.TrimSpace(c.QueryParam("reason"))
	if reason == "" {
		reason = "removed by moderation"
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	a, err := h.Auctions.GetByID(ctx, id, repository.ScopeDefault)
	if err != nil {
		return failErr(c, err)
	}
	if err := h.Auctions.SoftDelete(ctx, id, adminID, reason); err != nil {
		return failErr(c, err)
	}
	h.Notifier.Notify(ctx, a.CreatedBy, "Auction Removed",
		fmt.Sprintf("Your auction %q was removed: %s", a.Title, reason), model.SeverityWarning)
	return respond(c, http.StatusOK, "auction removed", nil)
}

// ----- payment proofs -----

// AllProofs returns the proof review queue.
func (h *AdminHandler) AllProofs(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	ps, err := h.Proofs.List(ctx, repository.ScopeDefault)
	if err != nil {
		return failErr(c, err)
	}
	return respond(c, http.StatusOK, "payment proofs", echo.Map{"proofs": toProofViews(ps)})
}

// ProofDetail returns one proof.
func (h *AdminHandler) ProofDetail(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	p, err := h.Proofs.GetByID(ctx, id, repository.ScopeDefault)
	if err != nil {
		return failErr(c, err)
	}
	return respond(c, http.StatusOK, "payment proof", echo.Map{"proof": toProofView(p)})
}

type proofStatusReq struct {
	Status      string `json:"status"`
	AmountCents int64  `json:"amount_cents"`
	Comment     string `json:"comment"`
}

// UpdateProofStatus moves a pending proof to Approved or Rejected. The
// admin may correct the amount; the settlement sweep later applies
// approved proofs. A proof that already left Pending is immutable here.
func (h *AdminHandler) UpdateProofStatus(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	var req proofStatusReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	if req.Status != model.ProofApproved && req.Status != model.ProofRejected {
		return fail(c, http.StatusBadRequest, "status must be Approved or Rejected")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	p, err := h.Proofs.GetByID(ctx, id, repository.ScopeDefault)
	if err != nil {
		return failErr(c, err)
	}
	if p.Status != model.ProofPending {
		return fail(c, http.StatusConflict, "proof already reviewed")
	}
	amount := p.AmountCents
	if req.AmountCents > 0 {
		amount = req.AmountCents
	}
	if err := h.Proofs.UpdateStatus(ctx, id, req.Status, amount); err != nil {
		return failErr(c, err)
	}

	if req.Status == model.ProofApproved {
		h.Notifier.Notify(ctx, p.AccountID, "Payment Proof Approved",
			"Your payment proof was approved and will be applied shortly.", model.SeveritySuccess)
	} else {
		msg := "Your payment proof was rejected."
		if strings.TrimSpace(req.Comment) != "" {
			msg = fmt.Sprintf("Your payment proof was rejected: %s", req.Comment)
		}
		h.Notifier.Notify(ctx, p.AccountID, "Payment Proof Rejected", msg, model.SeverityWarning)
	}
	return respond(c, http.StatusOK, "proof status updated", nil)
}

// DeleteProof soft-removes a proof from the queue.
func (h *AdminHandler) DeleteProof(c echo.Context) error {
	adminID, err := accountID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Proofs.SoftDelete(ctx, id, adminID, "removed by moderation"); err != nil {
		return failErr(c, err)
	}
	return respond(c, http.StatusOK, "proof removed", nil)
}

// ----- users & reporting -----

// Users lists visible accounts.
func (h *AdminHandler) Users(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	accs, err := h.Accounts.List(ctx, repository.ScopeDefault)
	if err != nil {
		return failErr(c, err)
	}
	return respond(c, http.StatusOK, "users", echo.Map{"users": toAccountViews(accs)})
}

// UserStats returns monthly signup counts bucketed by role.
func (h *AdminHandler) UserStats(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	stats, err := h.Accounts.RegistrationStats(ctx)
	if err != nil {
		return failErr(c, err)
	}
	return respond(c, http.StatusOK, "registration statistics", echo.Map{"stats": stats})
}

// MonthlyIncome returns the commission revenue per month for a year
// (?year=, default the current one).
func (h *AdminHandler) MonthlyIncome(c echo.Context) error {
	year := h.Clock.Now().Year()
	if v := c.QueryParam("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 2000 || n > 2100 {
			return fail(c, http.StatusBadRequest, "invalid year")
		}
		year = n
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	months, err := h.Commissions.MonthlyRevenue(ctx, year)
	if err != nil {
		return failErr(c, err)
	}
	return respond(c, http.StatusOK, "monthly income", echo.Map{
		"year":                year,
		"monthly_total_cents": months,
	})
}

type createAdminReq struct {
	UserName string `json:"user_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateAdmin registers a new Admin account. Admins created here get no
// payment methods; they never auction or bid.
func (h *AdminHandler) CreateAdmin(c echo.Context) error {
	var req createAdminReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	req.UserName = strings.TrimSpace(req.UserName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.UserName == "" || req.Email == "" || req.Password == "" {
		return fail(c, http.StatusBadRequest, "user_name, email and password are required")
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return failErr(c, err)
	}
	acc := model.Account{
		UserName:     req.UserName,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         string(role.Admin),
		Status:       model.StatusActive,
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	acc.ID, err = h.Accounts.Create(ctx, acc)
	if err != nil {
		return failErr(c, err)
	}
	return respond(c, http.StatusCreated, "admin created", echo.Map{"user": toAccountView(acc)})
}

// moderationTarget loads the target account and checks the capability
// matrix: admins moderate bidders and auctioneers, nobody touches the
// Super Admin, and only the Super Admin outranks an Admin.
func (h *AdminHandler) moderationTarget(c echo.Context) (model.Account, error) {
	actor, ok := roleOf(c)
	if !ok {
		return model.Account{}, repository.ErrForbidden
	}
	id, err := pathID(c)
	if err != nil {
		return model.Account{}, err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	target, err := h.Accounts.GetByID(ctx, id, repository.ScopeIncludeDeleted)
	if err != nil {
		return model.Account{}, err
	}
	targetRole, ok := role.Parse(target.Role)
	if !ok || !role.CanModerate(actor, targetRole) {
		return model.Account{}, repository.ErrForbidden
	}
	return target, nil
}

// BanUser permanently locks an account out.
func (h *AdminHandler) BanUser(c echo.Context) error {
	target, err := h.moderationTarget(c)
	if err != nil {
		return failErr(c, err)
	}
	var req rejectReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Reason) == "" {
		return fail(c, http.StatusBadRequest, "reason is required")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Accounts.Ban(ctx, target.ID, req.Reason); err != nil {
		return failErr(c, err)
	}
	return respond(c, http.StatusOK, "user banned", nil)
}

type suspendReq struct {
	Reason string `json:"reason"`
	Days   int    `json:"days"`
}

// SuspendUser locks an account until a deadline; the lock lifts
// automatically at the first login after it passes.
func (h *AdminHandler) SuspendUser(c echo.Context) error {
	target, err := h.moderationTarget(c)
	if err != nil {
		return failErr(c, err)
	}
	var req suspendReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Reason) == "" || req.Days <= 0 {
		return fail(c, http.StatusBadRequest, "reason and a positive days count are required")
	}
	until := h.Clock.Now().Add(time.Duration(req.Days) * 24 * time.Hour)
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Accounts.Suspend(ctx, target.ID, req.Reason, until); err != nil {
		return failErr(c, err)
	}
	return respond(c, http.StatusOK, "user suspended", echo.Map{"until": until})
}

// DeleteUser soft-removes an account.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	adminID, err := accountID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	target, err := h.moderationTarget(c)
	if err != nil {
		return failErr(c, err)
	}
	reason := strings.TrimSpace(c.QueryParam("reason"))
	if reason == "" {
		reason = "removed by moderation"
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Accounts.SoftDelete(ctx, target.ID, adminID, reason); err != nil {
		return failErr(c, err)
	}
	return respond(c, http.StatusOK, "user removed", nil)
}

// RestoreUser reactivates a banned, suspended or removed account.
func (h *AdminHandler) RestoreUser(c echo.Context) error {
	target, err := h.moderationTarget(c)
	if err != nil {
		return failErr(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Accounts.Restore(ctx, target.ID); err != nil {
		return failErr(c, err)
	}
	return respond(c, http.StatusOK, "user restored", nil)
}

// RemoveAdmin soft-removes an Admin account. Super Admin only.
func (h *AdminHandler) RemoveAdmin(c echo.Context) error {
	actorID, err := accountID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	actor, ok := roleOf(c)
	if !ok || !role.CanRemoveAdmin(actor) {
		return fail(c, http.StatusForbidden, "forbidden")
	}
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	target, err := h.Accounts.GetByID(ctx, id, repository.ScopeIncludeDeleted)
	if err != nil {
		return failErr(c, err)
	}
	if target.Role != string(role.Admin) {
		return fail(c, http.StatusBadRequest, "target is not an admin")
	}
	if err := h.Accounts.SoftDelete(ctx, target.ID, actorID, "admin access revoked"); err != nil {
		return failErr(c, err)
	}
	return respond(c, http.StatusOK, "admin removed", nil)
}

// ----- permanent deletion (Super Admin) -----

func (h *AdminHandler) requirePurge(c echo.Context) error {
	actor, ok := roleOf(c)
	if !ok || !role.CanPurge(actor) {
		return repository.ErrForbidden
	}
	return nil
}

// PurgeUser physically deletes an account row.
func (h *AdminHandler) PurgeUser(c echo.Context) error {
	if err := h.requirePurge(c); err != nil {
		return failErr(c, err)
	}
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	target, err := h.Accounts.GetByID(ctx, id, repository.ScopeIncludeDeleted)
	if err != nil {
		return failErr(c, err)
	}
	if target.Role == string(role.SuperAdmin) {
		return fail(c, http.StatusForbidden, "forbidden")
	}
	if err := h.Accounts.HardDelete(ctx, id); err != nil {
		return failErr(c, err)
	}
	return respond(c, http.StatusOK, "user permanently deleted", nil)
}

// PurgeAuction physically deletes an auction and its images.
func (h *AdminHandler) PurgeAuction(c echo.Context) error {
	if err := h.requirePurge(c); err != nil {
		return failErr(c, err)
	}
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Auctions.HardDelete(ctx, id); err != nil {
		return failErr(c, err)
	}
	return respond(c, http.StatusOK, "auction permanently deleted", nil)
}

// PurgeProof physically deletes a payment proof row.
func (h *AdminHandler) PurgeProof(c echo.Context) error {
	if err := h.requirePurge(c); err != nil {
		return failErr(c, err)
	}
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Proofs.HardDelete(ctx, id); err != nil {
		return failErr(c, err)
	}
	return respond(c, http.StatusOK, "proof permanently deleted", nil)
}

// SoftDeleted lists everything moderation has removed, for review or
// restoration.
func (h *AdminHandler) SoftDeleted(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	users, err := h.Accounts.ListRemoved(ctx)
	if err != nil {
		return failErr(c, err)
	}
	auctions, err := h.Auctions.ListRemoved(ctx)
	if err != nil {
		return failErr(c, err)
	}
	proofs, err := h.Proofs.ListRemoved(ctx)
	if err != nil {
		return failErr(c, err)
	}
	return respond(c, http.StatusOK, "soft-deleted records", echo.Map{
		"users":    toAccountViews(users),
		"auctions": toAuctionViews(auctions),
		"proofs":   toProofViews(proofs),
	})
}
