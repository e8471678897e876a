package handler

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/openbid/auction-marketplace/internal/middleware"
	"github.com/openbid/auction-marketplace/internal/model"
	"github.com/openbid/auction-marketplace/internal/role"
)

// dbTimeout bounds every handler-initiated database call.
const dbTimeout = 5 * time.Second

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// accountID reads the authenticated account id set by JWTAuth.
func accountID(c echo.Context) (uint64, error) {
	if v, ok := c.Get(middleware.CtxAccountID).(uint64); ok && v > 0 {
		return v, nil
	}
	return 0, errors.New("missing account identity")
}

// roleOf reads the authenticated role set by JWTAuth.
func roleOf(c echo.Context) (role.Role, bool) {
	v, _ := c.Get(middleware.CtxRole).(string)
	return role.Parse(v)
}

// pathID parses the :id path parameter.
func pathID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// ----- JSON views -----
// Money travels as integer cents; *_cents keys make the unit explicit.

type accountView struct {
	ID                    uint64     `json:"id"`
	UserName              string     `json:"user_name"`
	Email                 string     `json:"email"`
	Phone                 string     `json:"phone,omitempty"`
	Address               string     `json:"address,omitempty"`
	ProfileImageURL       string     `json:"profile_image_url,omitempty"`
	Role                  string     `json:"role"`
	Status                string     `json:"status"`
	UnpaidCommissionCents int64      `json:"unpaid_commission_cents"`
	AuctionsWon           int64      `json:"auctions_won"`
	MoneySpentCents       int64      `json:"money_spent_cents"`
	SuspendedUntil        *time.Time `json:"suspended_until,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
}

func toAccountView(a model.Account) accountView {
	return accountView{
		ID:                    a.ID,
		UserName:              a.UserName,
		Email:                 a.Email,
		Phone:                 a.Phone,
		Address:               a.Address,
		ProfileImageURL:       a.ProfileImageURL,
		Role:                  a.Role,
		Status:                a.Status,
		UnpaidCommissionCents: a.UnpaidCommissionCents,
		AuctionsWon:           a.AuctionsWon,
		MoneySpentCents:       a.MoneySpentCents,
		SuspendedUntil:        a.SuspendedUntil,
		CreatedAt:             a.CreatedAt,
	}
}

func toAccountViews(accs []model.Account) []accountView {
	out := make([]accountView, 0, len(accs))
	for _, a := range accs {
		out = append(out, toAccountView(a))
	}
	return out
}

type imageView struct {
	PublicID string `json:"public_id"`
	URL      string `json:"url"`
}

type auctionView struct {
	ID                   uint64      `json:"id"`
	Title                string      `json:"title"`
	Description          string      `json:"description"`
	Category             string      `json:"category"`
	Condition            string      `json:"condition"`
	StartingBidCents     int64       `json:"starting_bid_cents"`
	CurrentBidCents      int64       `json:"current_bid_cents"`
	StartTime            time.Time   `json:"start_time"`
	EndTime              time.Time   `json:"end_time"`
	ApprovalStatus       string      `json:"approval_status"`
	RejectionReason      *string     `json:"rejection_reason,omitempty"`
	CreatedBy            uint64      `json:"created_by"`
	HighestBidderID      *uint64     `json:"highest_bidder_id,omitempty"`
	CommissionCalculated bool        `json:"commission_calculated"`
	IsDeleted            bool        `json:"is_deleted,omitempty"`
	CreatedAt            time.Time   `json:"created_at"`
	Images               []imageView `json:"images,omitempty"`
}

func toAuctionView(a model.Auction, images []model.AuctionImage) auctionView {
	v := auctionView{
		ID:                   a.ID,
		Title:                a.Title,
		Description:          a.Description,
		Category:             a.Category,
		Condition:            a.Condition,
		StartingBidCents:     a.StartingBidCents,
		CurrentBidCents:      a.CurrentBidCents,
		StartTime:            a.StartTime,
		EndTime:              a.EndTime,
		ApprovalStatus:       a.ApprovalStatus,
		RejectionReason:      a.RejectionReason,
		CreatedBy:            a.CreatedBy,
		HighestBidderID:      a.HighestBidderID,
		CommissionCalculated: a.CommissionCalculated,
		IsDeleted:            a.IsDeleted,
		CreatedAt:            a.CreatedAt,
	}
	for _, img := range images {
		v.Images = append(v.Images, imageView{PublicID: img.PublicID, URL: img.URL})
	}
	return v
}

func toAuctionViews(as []model.Auction) []auctionView {
	out := make([]auctionView, 0, len(as))
	for _, a := range as {
		out = append(out, toAuctionView(a, nil))
	}
	return out
}

type bidView struct {
	ID          uint64    `json:"id"`
	BidderID    uint64    `json:"bidder_id"`
	BidderName  string    `json:"bidder_name"`
	AmountCents int64     `json:"amount_cents"`
	CreatedAt   time.Time `json:"created_at"`
}

func toBidViews(bs []model.Bid) []bidView {
	out := make([]bidView, 0, len(bs))
	for _, b := range bs {
		out = append(out, bidView{
			ID:          b.ID,
			BidderID:    b.BidderID,
			BidderName:  b.BidderName,
			AmountCents: b.AmountCents,
			CreatedAt:   b.CreatedAt,
		})
	}
	return out
}

type proofView struct {
	ID          uint64    `json:"id"`
	AccountID   uint64    `json:"account_id"`
	ProofURL    string    `json:"proof_url"`
	AmountCents int64     `json:"amount_cents"`
	Status      string    `json:"status"`
	Comment     string    `json:"comment,omitempty"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

func toProofView(p model.PaymentProof) proofView {
	return proofView{
		ID:          p.ID,
		AccountID:   p.AccountID,
		ProofURL:    p.ProofURL,
		AmountCents: p.AmountCents,
		Status:      p.Status,
		Comment:     p.Comment,
		UploadedAt:  p.UploadedAt,
	}
}

func toProofViews(ps []model.PaymentProof) []proofView {
	out := make([]proofView, 0, len(ps))
	for _, p := range ps {
		out = append(out, toProofView(p))
	}
	return out
}

type notificationView struct {
	ID        uint64    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Severity  string    `json:"severity"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

func toNotificationViews(ns []model.Notification) []notificationView {
	out := make([]notificationView, 0, len(ns))
	for _, n := range ns {
		out = append(out, notificationView{
			ID:        n.ID,
			Title:     n.Title,
			Message:   n.Message,
			Severity:  n.Severity,
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt,
		})
	}
	return out
}
