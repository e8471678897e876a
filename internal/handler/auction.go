package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"github.com/openbid/auction-marketplace/internal/clock"
	"github.com/openbid/auction-marketplace/internal/lifecycle"
	"github.com/openbid/auction-marketplace/internal/media"
	"github.com/openbid/auction-marketplace/internal/model"
	"github.com/openbid/auction-marketplace/internal/repository"
)

// Auctions carry between one and six item photos.
const (
	minAuctionImages = 1
	maxAuctionImages = 6
)

// AuctionHandler serves listing, browsing and republish endpoints.
type AuctionHandler struct {
	Accounts *repository.AccountRepo
	Auctions *repository.AuctionRepo
	Bids     *repository.BidRepo
	Media    media.Store
	Ctrl     *lifecycle.Controller
	Clock    clock.Clock
}

func NewAuctionHandler(accounts *repository.AccountRepo, auctions *repository.AuctionRepo,
	bids *repository.BidRepo, store media.Store, ctrl *lifecycle.Controller, clk clock.Clock) *AuctionHandler {
	return &AuctionHandler{
		Accounts: accounts, Auctions: auctions, Bids: bids,
		Media: store, Ctrl: ctrl, Clock: clk,
	}
}

// Create lists a new item. The auctioneer must have no unpaid
// commission; the listing starts in moderation and is invisible to
// bidders until approved.
func (h *AuctionHandler) Create(c echo.Context) error {
	accID, err := accountID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	owner, err := h.Accounts.GetByID(ctx, accID, repository.ScopeDefault)
	if err != nil {
		return failErr(c, err)
	}
	if err := h.Ctrl.CanList(owner); err != nil {
		return failErr(c, err)
	}

	title := strings.TrimSpace(c.FormValue("title"))
	description := strings.TrimSpace(c.FormValue("description"))
	category := strings.TrimSpace(c.FormValue("category"))
	condition := strings.TrimSpace(c.FormValue("condition"))
	if title == "" || description == "" || category == "" || condition == "" {
		return fail(c, http.StatusBadRequest, "title, description, category and condition are required")
	}
	startingBid, err := strconv.ParseInt(c.FormValue("starting_bid_cents"), 10, 64)
	if err != nil || startingBid <= 0 {
		return fail(c, http.StatusBadRequest, "starting_bid_cents must be a positive integer")
	}
	start, err := time.Parse(time.RFC3339, c.FormValue("start_time"))
	if err != nil {
		return fail(c, http.StatusBadRequest, "start_time must be RFC3339")
	}
	end, err := time.Parse(time.RFC3339, c.FormValue("end_time"))
	if err != nil {
		return fail(c, http.StatusBadRequest, "end_time must be RFC3339")
	}
	if !start.After(h.Clock.Now()) || !start.Before(end) {
		return failErr(c, lifecycle.ErrInvalidWindow)
	}

	files, err := auctionImageFiles(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}

	images := make([]model.AuctionImage, 0, len(files))
	for _, fh := range files {
		src, err := fh.Open()
		if err != nil {
			return failErr(c, err)
		}
		obj, err := h.Media.Upload(ctx, "auctions", fh.Filename, src)
		_ = src.Close()
		if err != nil {
			log.WithField("error", err).Warn("auction image upload failed")
			return fail(c, http.StatusBadGateway, "image upload failed")
		}
		images = append(images, model.AuctionImage{PublicID: obj.PublicID, URL: obj.URL})
	}

	a := model.Auction{
		Title:            title,
		Description:      description,
		Category:         category,
		Condition:        condition,
		StartingBidCents: startingBid,
		StartTime:        start.UTC(),
		EndTime:          end.UTC(),
		ApprovalStatus:   model.ApprovalPending,
		CreatedBy:        owner.ID,
	}
	a.ID, err = h.Auctions.Create(ctx, a, images)
	if err != nil {
		return failErr(c, err)
	}
	return respond(c, http.StatusCreated, "auction submitted for review", echo.Map{
		"auction": toAuctionView(a, images),
	})
}

// auctionImageFiles pulls the images[] parts and enforces the 1..6 count.
func auctionImageFiles(c echo.Context) ([]*multipart.FileHeader, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, errors.New("multipart form required")
	}
	files := form.File["images"]
	if len(files) < minAuctionImages || len(files) > maxAuctionImages {
		return nil, errors.New("between 1 and 6 images are required")
	}
	return files, nil
}

// AllItems is the public browse endpoint: approved, non-deleted
// listings only. Sits behind the response cache.
func (h *AuctionHandler) AllItems(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	as, err := h.Auctions.ListApproved(ctx)
	if err != nil {
		return failErr(c, err)
	}
	return respond(c, http.StatusOK, "auctions", echo.Map{"items": toAuctionViews(as)})
}

// Details returns one visible auction with its images and bid history,
// highest first.
func (h *AuctionHandler) Details(c echo.Context) error {
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
	if a.ApprovalStatus != model.ApprovalApproved {
		return fail(c, http.StatusNotFound, "not found")
	}
	images, err := h.Auctions.Images(ctx, a.ID)
	if err != nil {
		return failErr(c, err)
	}
	bids, err := h.Bids.ListByAuction(ctx, a.ID, repository.ScopeDefault)
	if err != nil {
		return failErr(c, err)
	}
	return respond(c, http.StatusOK, "auction", echo.Map{
		"auction": toAuctionView(a, images),
		"bids":    toBidViews(bids),
	})
}

// MyItems lists the caller's own auctions, soft-deleted ones included
// so an auctioneer can see what moderation removed.
func (h *AuctionHandler) MyItems(c echo.Context) error {
	accID, err := accountID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	as, err := h.Auctions.ListByOwner(ctx, accID)
	if err != nil {
		return failErr(c, err)
	}
	return respond(c, http.StatusOK, "my auctions", echo.Map{"items": toAuctionViews(as)})
}

// Delete soft-removes the caller's own auction.
func (h *AuctionHandler) Delete(c echo.Context) error {
	accID, err := accountID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
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
	if a.CreatedBy != accID {
		return failErr(c, lifecycle.ErrNotOwner)
	}
	if err := h.Auctions.SoftDelete(ctx, id, accID, "removed by owner"); err != nil {
		return failErr(c, err)
	}
	return respond(c, http.StatusOK, "auction removed", nil)
}

type republishReq struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// Republish reopens the caller's ended auction under a new window.
func (h *AuctionHandler) Republish(c echo.Context) error {
	accID, err := accountID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	var req republishReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	owner, err := h.Accounts.GetByID(ctx, accID, repository.ScopeDefault)
	if err != nil {
		return failErr(c, err)
	}
	a, err := h.Ctrl.Republish(ctx, id, owner, req.StartTime.UTC(), req.EndTime.UTC())
	if err != nil {
		return failErr(c, err)
	}
	return respond(c, http.StatusOK, "auction republished", echo.Map{
		"auction": toAuctionView(a, nil),
	})
}
