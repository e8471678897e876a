package lifecycle

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbid/auction-marketplace/internal/clock"
	"github.com/openbid/auction-marketplace/internal/model"
	"github.com/openbid/auction-marketplace/internal/repository"
)

// recordingNotifier captures notifications so tests can assert on the
// settlement outcomes without a broker.
type recordingNotifier struct {
	sent []sentNotification
}

type sentNotification struct {
	AccountID uint64
	Title     string
	Severity  string
}

func (r *recordingNotifier) Notify(_ context.Context, accountID uint64, title, _, severity string) {
	r.sent = append(r.sent, sentNotification{AccountID: accountID, Title: title, Severity: severity})
}

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestController(t *testing.T) (*Controller, sqlmock.Sqlmock, *recordingNotifier) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	n := &recordingNotifier{}
	ctrl := NewController(db,
		repository.NewAccountRepo(db),
		repository.NewAuctionRepo(db),
		repository.NewBidRepo(db),
		repository.NewCommissionRepo(db),
		repository.NewPaymentProofRepo(db),
		n, clock.Fixed{T: testNow}, 5)
	return ctrl, mock, n
}

var auctionCols = []string{"id", "title", "description", "category", "item_condition",
	"starting_bid_cents", "current_bid_cents", "start_time", "end_time",
	"approval_status", "rejection_reason", "created_by", "highest_bidder_id",
	"commission_calculated", "is_deleted", "deleted_at", "deleted_by",
	"deletion_reason", "created_at"}

func auctionRow(a model.Auction) *sqlmock.Rows {
	return sqlmock.NewRows(auctionCols).AddRow(
		a.ID, a.Title, a.Description, a.Category, a.Condition,
		a.StartingBidCents, a.CurrentBidCents, a.StartTime, a.EndTime,
		a.ApprovalStatus, a.RejectionReason, a.CreatedBy, a.HighestBidderID,
		a.CommissionCalculated, a.IsDeleted, a.DeletedAt, a.DeletedBy,
		a.DeletionReason, a.CreatedAt)
}

var bidCols = []string{"id", "auction_id", "bidder_id", "bidder_name", "amount_cents",
	"is_deleted", "deleted_at", "deleted_by", "deletion_reason", "created_at"}

func bidRow(b model.Bid) *sqlmock.Rows {
	return sqlmock.NewRows(bidCols).AddRow(
		b.ID, b.AuctionID, b.BidderID, b.BidderName, b.AmountCents,
		b.IsDeleted, b.DeletedAt, b.DeletedBy, b.DeletionReason, b.CreatedAt)
}

var accountCols = []string{"id", "user_name", "email", "password_hash", "phone", "address",
	"profile_image_id", "profile_image_url", "role", "status",
	"bank_account_number", "bank_account_name", "bank_name",
	"easypaisa_account_number", "paypal_email",
	"unpaid_commission_cents", "auctions_won", "money_spent_cents",
	"banned_reason", "suspended_reason", "suspended_until",
	"deleted_at", "deleted_by", "deletion_reason", "created_at"}

func accountRow(a model.Account) *sqlmock.Rows {
	return sqlmock.NewRows(accountCols).AddRow(
		a.ID, a.UserName, a.Email, a.PasswordHash, a.Phone, a.Address,
		a.ProfileImageID, a.ProfileImageURL, a.Role, a.Status,
		a.BankAccountNumber, a.BankAccountName, a.BankName,
		a.EasypaisaAccountNumber, a.PaypalEmail,
		a.UnpaidCommissionCents, a.AuctionsWon, a.MoneySpentCents,
		a.BannedReason, a.SuspendedReason, a.SuspendedUntil,
		a.DeletedAt, a.DeletedBy, a.DeletionReason, a.CreatedAt)
}

func openAuction() model.Auction {
	return model.Auction{
		ID:               11,
		Title:            "Vintage camera",
		StartingBidCents: 10000,
		StartTime:        testNow.Add(-time.Hour),
		EndTime:          testNow.Add(time.Hour),
		ApprovalStatus:   model.ApprovalApproved,
		CreatedBy:        3,
		CreatedAt:        testNow.Add(-2 * time.Hour),
	}
}

func bidder(id uint64, name string) model.Account {
	return model.Account{ID: id, UserName: name, Role: "Bidder", Status: model.StatusActive}
}

func TestPlaceBidAccepted(t *testing.T) {
	ctrl, mock, _ := newTestController(t)

	a := openAuction()
	mock.ExpectBegin()
	mock.ExpectQuery("FROM auctions WHERE id").WithArgs(a.ID).WillReturnRows(auctionRow(a))
	mock.ExpectExec("INSERT INTO bids").
		WithArgs(a.ID, uint64(8), "alice", int64(15000)).
		WillReturnResult(sqlmock.NewResult(71, 1))
	mock.ExpectQuery("FROM bids").WithArgs(a.ID).
		WillReturnRows(bidRow(model.Bid{ID: 71, AuctionID: a.ID, BidderID: 8, BidderName: "alice", AmountCents: 15000, CreatedAt: testNow}))
	mock.ExpectExec("UPDATE auctions SET current_bid_cents").
		WithArgs(int64(15000), uint64(8), a.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	got, bid, err := ctrl.PlaceBid(context.Background(), a.ID, bidder(8, "alice"), 15000)
	require.NoError(t, err)
	assert.Equal(t, int64(15000), got.CurrentBidCents)
	require.NotNil(t, got.HighestBidderID)
	assert.Equal(t, uint64(8), *got.HighestBidderID)
	assert.Equal(t, uint64(71), bid.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceBidTooLowDoesNotMutate(t *testing.T) {
	ctrl, mock, _ := newTestController(t)

	a := openAuction()
	a.CurrentBidCents = 15000
	mock.ExpectBegin()
	mock.ExpectQuery("FROM auctions WHERE id").WithArgs(a.ID).WillReturnRows(auctionRow(a))
	mock.ExpectRollback()

	_, _, err := ctrl.PlaceBid(context.Background(), a.ID, bidder(9, "bob"), 12000)
	assert.ErrorIs(t, err, ErrBidTooLow)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceBidEqualToCurrentRejected(t *testing.T) {
	ctrl, mock, _ := newTestController(t)

	a := openAuction()
	a.CurrentBidCents = 15000
	mock.ExpectBegin()
	mock.ExpectQuery("FROM auctions WHERE id").WithArgs(a.ID).WillReturnRows(auctionRow(a))
	mock.ExpectRollback()

	_, _, err := ctrl.PlaceBid(context.Background(), a.ID, bidder(9, "bob"), 15000)
	assert.ErrorIs(t, err, ErrBidTooLow)
}

func TestPlaceBidFirstBidMustExceedStartingBid(t *testing.T) {
	ctrl, mock, _ := newTestController(t)

	a := openAuction() // starting bid 10000, no bids yet
	mock.ExpectBegin()
	mock.ExpectQuery("FROM auctions WHERE id").WithArgs(a.ID).WillReturnRows(auctionRow(a))
	mock.ExpectRollback()

	_, _, err := ctrl.PlaceBid(context.Background(), a.ID, bidder(9, "bob"), 10000)
	assert.ErrorIs(t, err, ErrBidTooLow)
}

func TestPlaceBidWindow(t *testing.T) {
	t.Run("not started", func(t *testing.T) {
		ctrl, mock, _ := newTestController(t)
		a := openAuction()
		a.StartTime = testNow.Add(time.Minute)
		mock.ExpectBegin()
		mock.ExpectQuery("FROM auctions WHERE id").WithArgs(a.ID).WillReturnRows(auctionRow(a))
		mock.ExpectRollback()
		_, _, err := ctrl.PlaceBid(context.Background(), a.ID, bidder(8, "alice"), 20000)
		assert.ErrorIs(t, err, ErrAuctionNotStarted)
	})
	t.Run("ended", func(t *testing.T) {
		ctrl, mock, _ := newTestController(t)
		a := openAuction()
		a.EndTime = testNow.Add(-time.Minute)
		mock.ExpectBegin()
		mock.ExpectQuery("FROM auctions WHERE id").WithArgs(a.ID).WillReturnRows(auctionRow(a))
		mock.ExpectRollback()
		_, _, err := ctrl.PlaceBid(context.Background(), a.ID, bidder(8, "alice"), 20000)
		assert.ErrorIs(t, err, ErrAuctionEnded)
	})
}

func TestPlaceBidRequiresBidderRole(t *testing.T) {
	ctrl, mock, _ := newTestController(t)
	acc := model.Account{ID: 3, UserName: "seller", Role: "Auctioneer"}
	_, _, err := ctrl.PlaceBid(context.Background(), 11, acc, 20000)
	assert.ErrorIs(t, err, ErrNotBidder)
	// Rejected before any database work.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceBidAuctionMissing(t *testing.T) {
	ctrl, mock, _ := newTestController(t)
	mock.ExpectBegin()
	mock.ExpectQuery("FROM auctions WHERE id").WithArgs(uint64(99)).WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()
	_, _, err := ctrl.PlaceBid(context.Background(), 99, bidder(8, "alice"), 20000)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSettleAuctionWithWinner(t *testing.T) {
	ctrl, mock, n := newTestController(t)

	a := openAuction()
	a.EndTime = testNow.Add(-time.Minute)
	a.CurrentBidCents = 20000
	winner := uint64(8)
	a.HighestBidderID = &winner

	mock.ExpectQuery("FROM auctions").WithArgs(testNow).WillReturnRows(auctionRow(a))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE auctions SET commission_calculated = 1").WithArgs(a.ID, testNow).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM bids").WithArgs(a.ID).
		WillReturnRows(bidRow(model.Bid{ID: 72, AuctionID: a.ID, BidderID: winner, BidderName: "alice", AmountCents: 20000, CreatedAt: testNow}))
	mock.ExpectExec("UPDATE accounts SET auctions_won = auctions_won \\+ 1").
		WithArgs(int64(20000), winner).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE accounts SET unpaid_commission_cents").
		WithArgs(int64(1000), a.CreatedBy). // 5% of 200.00
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery("FROM accounts WHERE id").WithArgs(a.CreatedBy).
		WillReturnRows(accountRow(model.Account{ID: a.CreatedBy, UserName: "seller", Role: "Auctioneer",
			Status: model.StatusActive, PaypalEmail: "seller@example.com", CreatedAt: testNow}))

	require.NoError(t, ctrl.SettleEndedAuctions(context.Background()))
	require.Len(t, n.sent, 2)
	assert.Equal(t, winner, n.sent[0].AccountID)
	assert.Equal(t, "Auction Won", n.sent[0].Title)
	assert.Equal(t, a.CreatedBy, n.sent[1].AccountID)
	assert.Equal(t, "Auction Settled", n.sent[1].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettleAuctionAlreadyClaimed(t *testing.T) {
	ctrl, mock, n := newTestController(t)

	a := openAuction()
	a.EndTime = testNow.Add(-time.Minute)

	mock.ExpectQuery("FROM auctions").WithArgs(testNow).WillReturnRows(auctionRow(a))
	mock.ExpectBegin()
	// Another sweep run flipped the flag between selection and claim.
	mock.ExpectExec("UPDATE auctions SET commission_calculated = 1").WithArgs(a.ID, testNow).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	require.NoError(t, ctrl.SettleEndedAuctions(context.Background()))
	assert.Empty(t, n.sent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettleSkipsAuctionRepublishedAfterListing(t *testing.T) {
	ctrl, mock, n := newTestController(t)

	a := openAuction()
	a.EndTime = testNow.Add(-time.Minute)

	// The sweep lists the auction as ended, then a republish commits
	// first: bids purged, window moved into the future, flag still 0.
	// The claim rechecks end_time against the database, so it misses and
	// the reopened round stays live.
	mock.ExpectQuery("FROM auctions").WithArgs(testNow).WillReturnRows(auctionRow(a))
	mock.ExpectBegin()
	mock.ExpectExec(`commission_calculated = 0 AND end_time <= \?`).WithArgs(a.ID, testNow).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	require.NoError(t, ctrl.SettleEndedAuctions(context.Background()))
	assert.Empty(t, n.sent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettleAuctionNoBids(t *testing.T) {
	ctrl, mock, n := newTestController(t)

	a := openAuction()
	a.EndTime = testNow.Add(-time.Minute)

	mock.ExpectQuery("FROM auctions").WithArgs(testNow).WillReturnRows(auctionRow(a))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE auctions SET commission_calculated = 1").WithArgs(a.ID, testNow).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM bids").WithArgs(a.ID).WillReturnError(sql.ErrNoRows)
	mock.ExpectCommit()

	require.NoError(t, ctrl.SettleEndedAuctions(context.Background()))
	require.Len(t, n.sent, 1)
	assert.Equal(t, a.CreatedBy, n.sent[0].AccountID)
	assert.Equal(t, "Auction Ended", n.sent[0].Title)
	assert.Equal(t, model.SeverityInfo, n.sent[0].Severity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettleSweepSkipsFailedAuction(t *testing.T) {
	ctrl, mock, n := newTestController(t)

	first := openAuction()
	first.ID = 21
	first.EndTime = testNow.Add(-time.Minute)
	second := openAuction()
	second.ID = 22
	second.EndTime = testNow.Add(-time.Minute)

	rows := auctionRow(first)
	rows.AddRow(second.ID, second.Title, second.Description, second.Category, second.Condition,
		second.StartingBidCents, second.CurrentBidCents, second.StartTime, second.EndTime,
		second.ApprovalStatus, second.RejectionReason, second.CreatedBy, second.HighestBidderID,
		second.CommissionCalculated, second.IsDeleted, second.DeletedAt, second.DeletedBy,
		second.DeletionReason, second.CreatedAt)

	mock.ExpectQuery("FROM auctions").WithArgs(testNow).WillReturnRows(rows)
	// First auction fails at claim time; the sweep must continue.
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE auctions SET commission_calculated = 1").WithArgs(first.ID, testNow).
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()
	// Second auction settles normally (no bids path).
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE auctions SET commission_calculated = 1").WithArgs(second.ID, testNow).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM bids").WithArgs(second.ID).WillReturnError(sql.ErrNoRows)
	mock.ExpectCommit()

	require.NoError(t, ctrl.SettleEndedAuctions(context.Background()))
	require.Len(t, n.sent, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepublishReversesSettlement(t *testing.T) {
	ctrl, mock, _ := newTestController(t)

	owner := model.Account{ID: 3, UserName: "seller", Role: "Auctioneer"}
	a := openAuction()
	a.StartTime = testNow.Add(-3 * time.Hour)
	a.EndTime = testNow.Add(-time.Hour)
	a.CurrentBidCents = 20000
	winner := uint64(8)
	a.HighestBidderID = &winner
	a.CommissionCalculated = true

	newStart := testNow.Add(time.Hour)
	newEnd := testNow.Add(48 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM auctions WHERE id").WithArgs(a.ID).WillReturnRows(auctionRow(a))
	mock.ExpectExec("UPDATE accounts SET auctions_won = auctions_won - 1").
		WithArgs(int64(20000), winner).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE accounts SET unpaid_commission_cents").
		WithArgs(int64(-1000), owner.ID). // exactly one settlement's commission
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM bids").WithArgs(a.ID).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("UPDATE auctions SET start_time").
		WithArgs(newStart, newEnd, a.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	got, err := ctrl.Republish(context.Background(), a.ID, owner, newStart, newEnd)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.CurrentBidCents)
	assert.Nil(t, got.HighestBidderID)
	assert.False(t, got.CommissionCalculated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepublishUnsettledRoundSkipsReversal(t *testing.T) {
	ctrl, mock, _ := newTestController(t)

	owner := model.Account{ID: 3, Role: "Auctioneer"}
	a := openAuction()
	a.StartTime = testNow.Add(-3 * time.Hour)
	a.EndTime = testNow.Add(-time.Hour)
	// Ended but the sweep has not run: nothing was applied, nothing to undo.

	newStart := testNow.Add(time.Hour)
	newEnd := testNow.Add(48 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM auctions WHERE id").WithArgs(a.ID).WillReturnRows(auctionRow(a))
	mock.ExpectExec("DELETE FROM bids").WithArgs(a.ID).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("UPDATE auctions SET start_time").
		WithArgs(newStart, newEnd, a.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	_, err := ctrl.Republish(context.Background(), a.ID, owner, newStart, newEnd)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepublishRejectsActiveAuction(t *testing.T) {
	ctrl, mock, _ := newTestController(t)

	owner := model.Account{ID: 3, Role: "Auctioneer"}
	a := openAuction() // still open

	mock.ExpectBegin()
	mock.ExpectQuery("FROM auctions WHERE id").WithArgs(a.ID).WillReturnRows(auctionRow(a))
	mock.ExpectRollback()

	_, err := ctrl.Republish(context.Background(), a.ID, owner, testNow.Add(time.Hour), testNow.Add(2*time.Hour))
	assert.ErrorIs(t, err, ErrAuctionActive)
}

func TestRepublishRejectsForeignAuction(t *testing.T) {
	ctrl, mock, _ := newTestController(t)

	a := openAuction()
	a.EndTime = testNow.Add(-time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM auctions WHERE id").WithArgs(a.ID).WillReturnRows(auctionRow(a))
	mock.ExpectRollback()

	_, err := ctrl.Republish(context.Background(), a.ID, model.Account{ID: 99, Role: "Auctioneer"},
		testNow.Add(time.Hour), testNow.Add(2*time.Hour))
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestRepublishWindowValidation(t *testing.T) {
	ctrl, _, _ := newTestController(t)
	owner := model.Account{ID: 3, Role: "Auctioneer"}

	// Start in the past.
	_, err := ctrl.Republish(context.Background(), 11, owner, testNow.Add(-time.Hour), testNow.Add(time.Hour))
	assert.ErrorIs(t, err, ErrInvalidWindow)
	// Start after end.
	_, err = ctrl.Republish(context.Background(), 11, owner, testNow.Add(2*time.Hour), testNow.Add(time.Hour))
	assert.ErrorIs(t, err, ErrInvalidWindow)
}

func TestSettleApprovedProof(t *testing.T) {
	ctrl, mock, n := newTestController(t)

	proofRows := sqlmock.NewRows([]string{"id", "account_id", "proof_public_id", "proof_url",
		"amount_cents", "status", "comment", "is_deleted", "deleted_at", "deleted_by",
		"deletion_reason", "uploaded_at"}).
		AddRow(5, 3, "img-1", "https://media/img-1", int64(1000), model.ProofApproved, "", false, nil, nil, nil, testNow)

	mock.ExpectQuery("FROM payment_proofs").WillReturnRows(proofRows)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE payment_proofs SET status = 'Settled'").WithArgs(uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE accounts SET unpaid_commission_cents = GREATEST").
		WithArgs(int64(1000), uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO commissions").WithArgs(uint64(3), int64(1000)).
		WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectCommit()

	require.NoError(t, ctrl.SettleApprovedProofs(context.Background()))
	require.Len(t, n.sent, 1)
	assert.Equal(t, "Commission Settled", n.sent[0].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommissionGate(t *testing.T) {
	ctrl, _, _ := newTestController(t)
	assert.ErrorIs(t, ctrl.CanList(model.Account{UnpaidCommissionCents: 1}), ErrUnpaidCommission)
	assert.NoError(t, ctrl.CanList(model.Account{UnpaidCommissionCents: 0}))
}

func TestCommissionCents(t *testing.T) {
	ctrl, _, _ := newTestController(t)
	assert.Equal(t, int64(1000), ctrl.CommissionCents(20000)) // 5% of $200
	assert.Equal(t, int64(0), ctrl.CommissionCents(0))
	assert.Equal(t, int64(5), ctrl.CommissionCents(100))
}

func TestBidWindowPredicate(t *testing.T) {
	a := openAuction()
	assert.Equal(t, windowPending, bidWindow(a, a.StartTime.Add(-time.Second)))
	assert.Equal(t, windowOpen, bidWindow(a, a.StartTime))
	assert.Equal(t, windowOpen, bidWindow(a, a.EndTime))
	assert.Equal(t, windowClosed, bidWindow(a, a.EndTime.Add(time.Second)))
}
