package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/openbid/auction-marketplace/internal/lifecycle"
	"github.com/openbid/auction-marketplace/internal/repository"
)

// BidHandler serves bid placement.
type BidHandler struct {
	Accounts *repository.AccountRepo
	Ctrl     *lifecycle.Controller
}

func NewBidHandler(accounts *repository.AccountRepo, ctrl *lifecycle.Controller) *BidHandler {
	return &BidHandler{Accounts: accounts, Ctrl: ctrl}
}

type placeBidReq struct {
	AmountCents int64 `json:"amount_cents"`
}

// Place records a bid on the auction in the path. All acceptance rules
// live in the lifecycle controller; this handler only shapes I/O.
func (h *BidHandler) Place(c echo.Context) error {
	accID, err := accountID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	auctionID, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	var req placeBidReq
	if err := c.Bind(&req); err != nil || req.AmountCents <= 0 {
		return fail(c, http.StatusBadRequest, "amount_cents must be a positive integer")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	bidder, err := h.Accounts.GetByID(ctx, accID, repository.ScopeDefault)
	if err != nil {
		return failErr(c, err)
	}
	a, bid, err := h.Ctrl.PlaceBid(ctx, auctionID, bidder, req.AmountCents)
	if err != nil {
		return failErr(c, err)
	}
	return respond(c, http.StatusCreated, "bid placed", echo.Map{
		"auction": toAuctionView(a, nil),
		"bid": bidView{
			ID:          bid.ID,
			BidderID:    bid.BidderID,
			BidderName:  bid.BidderName,
			AmountCents: bid.AmountCents,
			CreatedAt:   bid.CreatedAt,
		},
	})
}
