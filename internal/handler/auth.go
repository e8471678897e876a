package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"github.com/openbid/auction-marketplace/internal/clock"
	"github.com/openbid/auction-marketplace/internal/config"
	"github.com/openbid/auction-marketplace/internal/media"
	"github.com/openbid/auction-marketplace/internal/model"
	"github.com/openbid/auction-marketplace/internal/repository"
	"github.com/openbid/auction-marketplace/internal/role"
	"github.com/openbid/auction-marketplace/internal/utils"
)

// AuthHandler bundles dependencies for registration and session endpoints.
type AuthHandler struct {
	Cfg      config.Config
	Accounts *repository.AccountRepo
	Tokens   *repository.TokenRepo
	Media    media.Store
	Clock    clock.Clock
}

func NewAuthHandler(cfg config.Config, accounts *repository.AccountRepo, tokens *repository.TokenRepo,
	store media.Store, clk clock.Clock) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Accounts: accounts, Tokens: tokens, Media: store, Clock: clk}
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

// Register creates an account from a multipart form: identity fields,
// a profile image and at least one payment method. A media upload
// failure aborts registration so no account exists without its image.
func (h *AuthHandler) Register(c echo.Context) error {
	userName := strings.TrimSpace(c.FormValue("user_name"))
	email := strings.ToLower(strings.TrimSpace(c.FormValue("email")))
	password := c.FormValue("password")
	if userName == "" || email == "" || password == "" {
		return fail(c, http.StatusBadRequest, "user_name, email and password are required")
	}
	r, ok := role.Parse(strings.TrimSpace(c.FormValue("role")))
	if !ok || !r.Registerable() {
		return fail(c, http.StatusBadRequest, "role must be Bidder or Auctioneer")
	}

	acc := model.Account{
		UserName:               userName,
		Email:                  email,
		Phone:                  strings.TrimSpace(c.FormValue("phone")),
		Address:                strings.TrimSpace(c.FormValue("address")),
		Role:                   string(r),
		Status:                 model.StatusActive,
		BankAccountNumber:      strings.TrimSpace(c.FormValue("bank_account_number")),
		BankAccountName:        strings.TrimSpace(c.FormValue("bank_account_name")),
		BankName:               strings.TrimSpace(c.FormValue("bank_name")),
		EasypaisaAccountNumber: strings.TrimSpace(c.FormValue("easypaisa_account_number")),
		PaypalEmail:            strings.ToLower(strings.TrimSpace(c.FormValue("paypal_email"))),
	}
	if !acc.HasPaymentMethod() {
		return fail(c, http.StatusBadRequest, "at least one payment method is required")
	}

	fh, err := c.FormFile("profile_image")
	if err != nil {
		return fail(c, http.StatusBadRequest, "profile_image file is required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	src, err := fh.Open()
	if err != nil {
		return failErr(c, err)
	}
	obj, err := h.Media.Upload(ctx, "profiles", fh.Filename, src)
	_ = src.Close()
	if err != nil {
		log.WithField("error", err).Warn("profile image upload failed")
		return fail(c, http.StatusBadGateway, "profile image upload failed")
	}
	acc.ProfileImageID = obj.PublicID
	acc.ProfileImageURL = obj.URL

	acc.PasswordHash, err = utils.HashPassword(password, h.Cfg.BcryptCost)
	if err != nil {
		return failErr(c, err)
	}

	acc.ID, err = h.Accounts.Create(ctx, acc)
	if err != nil {
		// The image went up before the insert; reclaim it so a rejected
		// registration leaves nothing behind in the media store.
		if derr := h.Media.Delete(ctx, obj.PublicID); derr != nil {
			log.WithFields(log.Fields{"public_id": obj.PublicID, "error": derr}).
				Warn("orphaned profile image cleanup failed")
		}
		return failErr(c, err)
	}

	access, refresh, err := h.issueSession(c, acc.ID, acc.Role)
	if err != nil {
		return failErr(c, err)
	}
	return respond(c, http.StatusCreated, "registration successful", echo.Map{
		"user":    toAccountView(acc),
		"access":  access,
		"refresh": refresh,
	})
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies credentials and account standing. An expired
// suspension is lifted here: the account returns to active and the
// login proceeds.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return fail(c, http.StatusBadRequest, "email and password are required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	// Removed and banned accounts still resolve here so the caller gets
	// an accurate message instead of "invalid credentials".
	acc, err := h.Accounts.GetByEmail(ctx, req.Email, repository.ScopeIncludeDeleted)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "invalid credentials")
	}
	if !utils.VerifyPassword(acc.PasswordHash, req.Password) {
		return fail(c, http.StatusUnauthorized, "invalid credentials")
	}

	switch acc.Status {
	case model.StatusDeleted:
		return fail(c, http.StatusForbidden, "this account has been removed")
	case model.StatusBanned:
		return fail(c, http.StatusForbidden, "this account is banned")
	case model.StatusSuspended:
		if acc.SuspendedUntil != nil && h.Clock.Now().After(*acc.SuspendedUntil) {
			if err := h.Accounts.Restore(ctx, acc.ID); err != nil {
				return failErr(c, err)
			}
			acc.Status = model.StatusActive
			acc.SuspendedUntil = nil
		} else {
			return fail(c, http.StatusForbidden, "this account is suspended")
		}
	}

	access, refresh, err := h.issueSession(c, acc.ID, acc.Role)
	if err != nil {
		return failErr(c, err)
	}
	return respond(c, http.StatusOK, "login successful", echo.Map{
		"user":    toAccountView(acc),
		"access":  access,
		"refresh": refresh,
	})
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh rotates a valid refresh token into a fresh session pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return fail(c, http.StatusBadRequest, "refresh_token is required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	hash := utils.HashRefreshRaw(req.RefreshToken)
	accID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "invalid refresh token")
	}
	acc, err := h.Accounts.GetByID(ctx, accID, repository.ScopeDefault)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "invalid refresh token")
	}
	if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
		return failErr(c, err)
	}

	access, refresh, err := h.issueSession(c, acc.ID, acc.Role)
	if err != nil {
		return failErr(c, err)
	}
	return respond(c, http.StatusOK, "token refreshed", echo.Map{
		"access":  access,
		"refresh": refresh,
	})
}

// Logout revokes every refresh token of the authenticated account.
func (h *AuthHandler) Logout(c echo.Context) error {
	accID, err := accountID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Tokens.RevokeAllForAccount(ctx, accID); err != nil {
		return failErr(c, err)
	}
	return respond(c, http.StatusOK, "logged out", nil)
}

// Me returns the authenticated account's profile.
func (h *AuthHandler) Me(c echo.Context) error {
	accID, err := accountID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	acc, err := h.Accounts.GetByID(ctx, accID, repository.ScopeDefault)
	if err != nil {
		return failErr(c, err)
	}
	return respond(c, http.StatusOK, "profile", echo.Map{"user": toAccountView(acc)})
}

// Leaderboard returns bidders ordered by cumulative spend.
func (h *AuthHandler) Leaderboard(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	accs, err := h.Accounts.Leaderboard(ctx, 100)
	if err != nil {
		return failErr(c, err)
	}
	return respond(c, http.StatusOK, "leaderboard", echo.Map{"leaderboard": toAccountViews(accs)})
}

// issueSession mints an access/refresh pair and persists the refresh hash.
func (h *AuthHandler) issueSession(c echo.Context, accID uint64, accRole string) (tokenPart, tokenPart, error) {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, accID, accRole, h.Cfg.AccessTTLMin)
	if err != nil {
		return tokenPart{}, tokenPart{}, err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return tokenPart{}, tokenPart{}, err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Tokens.StoreRefresh(ctx, accID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return tokenPart{}, tokenPart{}, err
	}
	return tokenPart{Token: access.Token, Expires: access.Exp},
		tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, nil
}
