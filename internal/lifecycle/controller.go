// Package lifecycle implements the auction lifecycle: the bid-acceptance
// rule, the periodic settlement sweep that closes ended auctions and
// posts commissions, the republish reversal, and the payment-proof
// settlement. All financial effects run inside single transactions
// guarded by atomic claims so each auction and proof settles at most
// once no matter how often a sweep observes it.
package lifecycle

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/openbid/auction-marketplace/internal/clock"
	"github.com/openbid/auction-marketplace/internal/model"
	"github.com/openbid/auction-marketplace/internal/repository"
	"github.com/openbid/auction-marketplace/internal/role"
)

// Sentinel errors returned by lifecycle operations. Handlers map them
// onto HTTP statuses.
var (
	ErrNotBidder         = errors.New("only bidders may place bids")
	ErrAuctionNotStarted = errors.New("auction has not started yet")
	ErrAuctionEnded      = errors.New("auction is ended")
	ErrBidTooLow         = errors.New("bid must exceed the current bid")
	ErrAuctionActive     = errors.New("auction is still active")
	ErrInvalidWindow     = errors.New("start time must be in the future and before end time")
	ErrUnpaidCommission  = errors.New("unpaid commissions must be settled before posting a new auction")
	ErrNotOwner          = errors.New("auction belongs to another auctioneer")
)

// Notifier delivers a message to an account. Delivery is fire-and-forget:
// implementations must not fail the caller, and the controller never
// rolls back state because a notification was lost.
type Notifier interface {
	Notify(ctx context.Context, accountID uint64, title, message, severity string)
}

// NopNotifier drops every message. Used when the broker is unavailable.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, uint64, string, string, string) {}

// Controller owns every mutation of auction, ledger and statistics state.
type Controller struct {
	db          *sql.DB
	accounts    *repository.AccountRepo
	auctions    *repository.AuctionRepo
	bids        *repository.BidRepo
	commissions *repository.CommissionRepo
	proofs      *repository.PaymentProofRepo
	notifier    Notifier
	clock       clock.Clock
	percent     int64 // commission percentage of the winning bid
}

// NewController wires the controller. percent is the platform fee as a
// percentage (5 means 5%).
func NewController(db *sql.DB, accounts *repository.AccountRepo, auctions *repository.AuctionRepo,
	bids *repository.BidRepo, commissions *repository.CommissionRepo, proofs *repository.PaymentProofRepo,
	notifier Notifier, clk clock.Clock, percent int64) *Controller {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Controller{
		db:          db,
		accounts:    accounts,
		auctions:    auctions,
		bids:        bids,
		commissions: commissions,
		proofs:      proofs,
		notifier:    notifier,
		clock:       clk,
		percent:     percent,
	}
}

// CommissionCents computes the platform fee for a winning bid. Integer
// arithmetic keeps settlement and republish reversal exact inverses.
func (c *Controller) CommissionCents(winningBidCents int64) int64 {
	return winningBidCents * c.percent / 100
}

// windowState classifies now against an auction's bidding window.
type windowState int

const (
	windowPending windowState = iota
	windowOpen
	windowClosed
)

// bidWindow is the single time-window predicate: every handler and sweep
// comparison against an auction's window goes through it.
func bidWindow(a model.Auction, now time.Time) windowState {
	if now.Before(a.StartTime) {
		return windowPending
	}
	if now.After(a.EndTime) {
		return windowClosed
	}
	return windowOpen
}

// CanList is the commission tracking gate: an auctioneer with any unpaid
// commission may not post a new auction.
func (c *Controller) CanList(acc model.Account) error {
	if acc.UnpaidCommissionCents > 0 {
		return ErrUnpaidCommission
	}
	return nil
}

// PlaceBid validates and records a bid. The auction row is locked for
// the duration of the transaction, so precondition checks always see the
// last committed bid and two racing bids cannot both win.
//
// Preconditions, first failure wins: bidder role, auction visible,
// window open (distinguishing not-started from ended), amount strictly
// above the current bid (starting bid when none).
func (c *Controller) PlaceBid(ctx context.Context, auctionID uint64, bidder model.Account, amountCents int64) (model.Auction, model.Bid, error) {
	r, ok := role.Parse(bidder.Role)
	if !ok || !r.CanPlaceBid() {
		return model.Auction{}, model.Bid{}, ErrNotBidder
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Auction{}, model.Bid{}, err
	}
	defer func() { _ = tx.Rollback() }()

	a, err := c.auctions.GetForUpdateTx(ctx, tx, auctionID, repository.ScopeDefault)
	if err != nil {
		return model.Auction{}, model.Bid{}, err
	}
	if a.ApprovalStatus != model.ApprovalApproved {
		return model.Auction{}, model.Bid{}, repository.ErrNotFound
	}
	switch bidWindow(a, c.clock.Now()) {
	case windowPending:
		return model.Auction{}, model.Bid{}, ErrAuctionNotStarted
	case windowClosed:
		return model.Auction{}, model.Bid{}, ErrAuctionEnded
	}
	if amountCents <= a.MinimumBidCents() {
		return model.Auction{}, model.Bid{}, ErrBidTooLow
	}

	bid := model.Bid{
		AuctionID:   auctionID,
		BidderID:    bidder.ID,
		BidderName:  bidder.UserName,
		AmountCents: amountCents,
	}
	bid.ID, err = c.bids.InsertTx(ctx, tx, bid)
	if err != nil {
		return model.Auction{}, model.Bid{}, fmt.Errorf("append bid: %w", err)
	}

	// Re-derive the projection from the ledger rather than trusting the
	// amount we just validated; the ledger is authoritative.
	top, err := c.bids.HighestTx(ctx, tx, auctionID)
	if err != nil {
		return model.Auction{}, model.Bid{}, fmt.Errorf("derive highest bid: %w", err)
	}
	if err := c.auctions.UpdateBidStateTx(ctx, tx, auctionID, top.AmountCents, top.BidderID); err != nil {
		return model.Auction{}, model.Bid{}, fmt.Errorf("update bid projection: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return model.Auction{}, model.Bid{}, err
	}

	a.CurrentBidCents = top.AmountCents
	a.HighestBidderID = &top.BidderID
	return a, bid, nil
}

// SettleEndedAuctions runs one settlement sweep: every ended, approved,
// unsettled auction is processed independently; a failure on one is
// logged and does not block the rest.
func (c *Controller) SettleEndedAuctions(ctx context.Context) error {
	ended, err := c.auctions.ListEndedUnsettled(ctx, c.clock.Now())
	if err != nil {
		return fmt.Errorf("list ended auctions: %w", err)
	}
	for _, a := range ended {
		if err := c.settleAuction(ctx, a); err != nil {
			log.WithFields(log.Fields{"auction_id": a.ID, "error": err}).
				Error("auction settlement failed, skipping")
		}
	}
	return nil
}

// settleAuction applies one auction's settlement exactly once. The
// commission_calculated claim and all financial effects share one
// transaction, so a crash or an overlapping sweep can never double-credit
// the winner or double-charge the auctioneer.
func (c *Controller) settleAuction(ctx context.Context, a model.Auction) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	claimed, err := c.auctions.ClaimSettlementTx(ctx, tx, a.ID, c.clock.Now())
	if err != nil {
		return err
	}
	if !claimed {
		// Another sweep run settled this auction first, or a republish
		// reopened the window since it was listed.
		return nil
	}

	top, err := c.bids.HighestTx(ctx, tx, a.ID)
	if errors.Is(err, repository.ErrNotFound) {
		// No bids: the flag still flips so the auction is never re-swept.
		if err := tx.Commit(); err != nil {
			return err
		}
		c.notifier.Notify(ctx, a.CreatedBy, "Auction Ended",
			fmt.Sprintf("Your auction %q ended without any bids.", a.Title),
			model.SeverityInfo)
		return nil
	}
	if err != nil {
		return err
	}

	fee := c.CommissionCents(top.AmountCents)
	if err := c.accounts.ApplyWinTx(ctx, tx, top.BidderID, top.AmountCents); err != nil {
		return fmt.Errorf("credit winner: %w", err)
	}
	if err := c.accounts.AddCommissionTx(ctx, tx, a.CreatedBy, fee); err != nil {
		return fmt.Errorf("post commission: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"auction_id": a.ID,
		"winner_id":  top.BidderID,
		"amount":     top.AmountCents,
		"commission": fee,
	}).Info("auction settled")

	c.notifyOutcome(ctx, a, top, fee)
	return nil
}

// notifyOutcome tells the winner how to pay and the auctioneer what they
// owe. Runs after commit; a lost message never rolls back settlement.
func (c *Controller) notifyOutcome(ctx context.Context, a model.Auction, top model.Bid, feeCents int64) {
	owner, err := c.accounts.GetByID(ctx, a.CreatedBy, repository.ScopeIncludeDeleted)
	if err != nil {
		log.WithFields(log.Fields{"auction_id": a.ID, "error": err}).
			Warn("settlement notification skipped: owner lookup failed")
		return
	}
	c.notifier.Notify(ctx, top.BidderID, "Auction Won",
		fmt.Sprintf("Congratulations, you won %q for %s. Pay the auctioneer via %s.",
			a.Title, formatCents(top.AmountCents), paymentDetails(owner)),
		model.SeveritySuccess)
	c.notifier.Notify(ctx, owner.ID, "Auction Settled",
		fmt.Sprintf("Your auction %q sold for %s. A platform commission of %s has been added to your balance.",
			a.Title, formatCents(top.AmountCents), formatCents(feeCents)),
		model.SeverityInfo)
}

// Republish reopens an ended auction under a fresh window. It is the one
// place settlement is undone: the prior winner's statistics and the
// auctioneer's commission are decremented by exactly the amounts
// settleAuction applied, and the bid ledger for this auction is purged.
func (c *Controller) Republish(ctx context.Context, auctionID uint64, owner model.Account, start, end time.Time) (model.Auction, error) {
	now := c.clock.Now()
	if !start.After(now) || !start.Before(end) {
		return model.Auction{}, ErrInvalidWindow
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Auction{}, err
	}
	defer func() { _ = tx.Rollback() }()

	a, err := c.auctions.GetForUpdateTx(ctx, tx, auctionID, repository.ScopeDefault)
	if err != nil {
		return model.Auction{}, err
	}
	if a.CreatedBy != owner.ID {
		return model.Auction{}, ErrNotOwner
	}
	if bidWindow(a, now) != windowClosed {
		return model.Auction{}, ErrAuctionActive
	}

	if a.CommissionCalculated && a.HighestBidderID != nil {
		if err := c.accounts.ReverseWinTx(ctx, tx, *a.HighestBidderID, a.CurrentBidCents); err != nil {
			return model.Auction{}, fmt.Errorf("reverse winner statistics: %w", err)
		}
		if err := c.accounts.AddCommissionTx(ctx, tx, a.CreatedBy, -c.CommissionCents(a.CurrentBidCents)); err != nil {
			return model.Auction{}, fmt.Errorf("reverse commission: %w", err)
		}
	}
	if err := c.bids.DeleteByAuctionTx(ctx, tx, auctionID); err != nil {
		return model.Auction{}, fmt.Errorf("reset bid ledger: %w", err)
	}
	if err := c.auctions.ResetForRepublishTx(ctx, tx, auctionID, start, end); err != nil {
		return model.Auction{}, fmt.Errorf("reset auction: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return model.Auction{}, err
	}

	a.StartTime = start
	a.EndTime = end
	a.CurrentBidCents = 0
	a.HighestBidderID = nil
	a.CommissionCalculated = false
	return a, nil
}

// SettleApprovedProofs applies every admin-approved payment proof:
// reduce the auctioneer's unpaid balance, append a commission-ledger
// row, mark the proof Settled. Each proof is an independent unit of
// work with the same claim discipline as auction settlement.
func (c *Controller) SettleApprovedProofs(ctx context.Context) error {
	approved, err := c.proofs.ListApproved(ctx)
	if err != nil {
		return fmt.Errorf("list approved proofs: %w", err)
	}
	for _, p := range approved {
		if err := c.settleProof(ctx, p); err != nil {
			log.WithFields(log.Fields{"proof_id": p.ID, "error": err}).
				Error("proof settlement failed, skipping")
		}
	}
	return nil
}

func (c *Controller) settleProof(ctx context.Context, p model.PaymentProof) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	claimed, err := c.proofs.ClaimSettlementTx(ctx, tx, p.ID)
	if err != nil {
		return err
	}
	if !claimed {
		return nil
	}
	if err := c.accounts.SettleCommissionTx(ctx, tx, p.AccountID, p.AmountCents); err != nil {
		return fmt.Errorf("reduce unpaid balance: %w", err)
	}
	if _, err := c.commissions.InsertTx(ctx, tx, p.AccountID, p.AmountCents); err != nil {
		return fmt.Errorf("append commission ledger: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	log.WithFields(log.Fields{"proof_id": p.ID, "account_id": p.AccountID, "amount": p.AmountCents}).
		Info("payment proof settled")
	c.notifier.Notify(ctx, p.AccountID, "Commission Settled",
		fmt.Sprintf("Your payment of %s was verified and applied to your commission balance.",
			formatCents(p.AmountCents)),
		model.SeveritySuccess)
	return nil
}

// formatCents renders an integer cent amount as a currency string.
func formatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}

// paymentDetails summarizes an auctioneer's registered payment
// destinations for the winner's settlement message.
func paymentDetails(owner model.Account) string {
	switch {
	case owner.BankAccountNumber != "":
		return fmt.Sprintf("bank transfer to %s (%s, %s)",
			owner.BankAccountNumber, owner.BankAccountName, owner.BankName)
	case owner.EasypaisaAccountNumber != "":
		return fmt.Sprintf("Easypaisa account %s", owner.EasypaisaAccountNumber)
	case owner.PaypalEmail != "":
		return fmt.Sprintf("PayPal (%s)", owner.PaypalEmail)
	}
	return "the contact details on the auctioneer's profile"
}
