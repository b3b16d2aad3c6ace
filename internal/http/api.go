package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/techizeBuilder/wellness-full-backend-sub002/internal/domain"
	"github.com/techizeBuilder/wellness-full-backend-sub002/internal/service"
	"github.com/techizeBuilder/wellness-full-backend-sub002/internal/token"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	auth     service.AuthService
	accounts service.AccountService
	plans    service.PlanService
	admin    service.AdminService
	issuer   *token.Issuer
	logger   *logrus.Logger
}

func NewHandler(
	auth service.AuthService,
	accounts service.AccountService,
	plans service.PlanService,
	admin service.AdminService,
	issuer *token.Issuer,
	logger *logrus.Logger,
) *Handler {
	return &Handler{
		auth:     auth,
		accounts: accounts,
		plans:    plans,
		admin:    admin,
		issuer:   issuer,
		logger:   logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", h.login)
			auth.POST("/register", h.registerUser)
			auth.POST("/expert/register", h.registerExpert)
			auth.POST("/admin/login", h.adminLogin)
			auth.POST("/refresh-token", h.refreshToken)
			auth.GET("/me", h.requireAuth(), h.me)
			auth.POST("/me/avatar", h.requireAuth(), h.uploadAvatar)
		}

		api.GET("/plans", h.listPlans)

		subs := api.Group("/subscriptions", h.requireAuth(), h.requireKind(domain.KindUser))
		{
			subs.POST("", h.subscribe)
			subs.GET("/me", h.mySubscription)
		}

		admin := api.Group("/admin", h.requireAuth(), h.requireKind(domain.KindAdmin))
		{
			admin.GET("/permissions", h.listPermissions)
		}

		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Password  string `json:"password"`
}

type registerExpertRequest struct {
	registerRequest
	Specialization  string `json:"specialization"`
	ExperienceYears int    `json:"experienceYears"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type subscribeRequest struct {
	PlanID string `json:"planId"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Email and password are required")
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, result.Account.Kind.Title()+" login successful", authResultToResponse(result))
}

func (h *Handler) adminLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Email and password are required")
		return
	}

	result, err := h.auth.AdminLogin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, result.Account.Kind.Title()+" login successful", authResultToResponse(result))
}

func (h *Handler) registerUser(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.accounts.RegisterUser(c.Request.Context(), service.RegisterUserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Password:  req.Password,
	})
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusCreated, "User registered successfully", authResultToResponse(result))
}

func (h *Handler) registerExpert(c *gin.Context) {
	var req registerExpertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.accounts.RegisterExpert(c.Request.Context(), service.RegisterExpertInput{
		RegisterUserInput: service.RegisterUserInput{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Email:     req.Email,
			Phone:     req.Phone,
			Password:  req.Password,
		},
		Specialization:  req.Specialization,
		ExperienceYears: req.ExperienceYears,
	})
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusCreated, "Expert registered successfully", authResultToResponse(result))
}

func (h *Handler) refreshToken(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Refresh token is required")
		return
	}

	result, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, "Token refreshed successfully", authResultToResponse(result))
}

func (h *Handler) me(c *gin.Context) {
	id, kind, ok := accountIdentity(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	profile, err := h.accounts.Profile(c.Request.Context(), id, kind)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, "Profile fetched successfully", gin.H{
		"user": accountToResponse(profile.Account, profile.ImageURL),
	})
}

func (h *Handler) uploadAvatar(c *gin.Context) {
	id, kind, ok := accountIdentity(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	file, err := c.FormFile("avatar")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Avatar file is required")
		return
	}

	src, err := file.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "Avatar file is unreadable")
		return
	}
	defer src.Close()

	url, err := h.accounts.UpdateAvatar(c.Request.Context(), id, kind, file.Filename, file.Header.Get("Content-Type"), src)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	var image *string
	if url != "" {
		image = &url
	}
	respondData(c, http.StatusOK, "Avatar updated successfully", gin.H{"profileImage": image})
}

func (h *Handler) listPlans(c *gin.Context) {
	plans, err := h.plans.ListPlans(c.Request.Context())
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	resp := make([]PlanResponse, len(plans))
	for i := range plans {
		resp[i] = planToResponse(plans[i])
	}
	respondData(c, http.StatusOK, "Plans fetched successfully", gin.H{"plans": resp})
}

func (h *Handler) subscribe(c *gin.Context) {
	id, _, ok := accountIdentity(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.PlanID) == "" {
		respondError(c, http.StatusBadRequest, "Plan id is required")
		return
	}

	sub, err := h.plans.Subscribe(c.Request.Context(), id, strings.TrimSpace(req.PlanID))
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusCreated, "Subscription created successfully", gin.H{
		"subscription": subscriptionToResponse(*sub),
	})
}

func (h *Handler) mySubscription(c *gin.Context) {
	id, _, ok := accountIdentity(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	sub, err := h.plans.CurrentSubscription(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNoSubscription) {
			respondData(c, http.StatusOK, "No active subscription", gin.H{"subscription": nil})
			return
		}
		h.respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, "Subscription fetched successfully", gin.H{
		"subscription": subscriptionToResponse(*sub),
	})
}

func (h *Handler) listPermissions(c *gin.Context) {
	perms, err := h.admin.ListPermissions(c.Request.Context())
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	resp := make([]PermissionResponse, len(perms))
	for i := range perms {
		resp[i] = PermissionResponse{
			ID:          perms[i].ID,
			Name:        perms[i].Name,
			Description: perms[i].Description,
			Module:      perms[i].Module,
		}
	}
	respondData(c, http.StatusOK, "Permissions fetched successfully", gin.H{"permissions": resp})
}

// respondServiceError maps the service error taxonomy onto the status codes
// and messages of the public contract. Unrecognized errors are logged and
// presented as a generic failure so internals never leak.
func (h *Handler) respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCredentialsRequired):
		respondError(c, http.StatusBadRequest, "Email and password are required")
	case errors.Is(err, service.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, service.ErrAccountLocked):
		respondError(c, http.StatusLocked, "Account is temporarily locked due to multiple failed login attempts. Please try again later.")
	case errors.Is(err, service.ErrAccountDeactivated):
		respondError(c, http.StatusUnauthorized, "Your account has been deactivated. Please contact support.")
	case errors.Is(err, service.ErrInvalidRefreshToken):
		respondError(c, http.StatusUnauthorized, "Invalid or expired refresh token")
	case errors.Is(err, service.ErrEmailTaken):
		respondError(c, http.StatusConflict, "An account with this email already exists")
	case errors.Is(err, service.ErrValidation):
		respondError(c, http.StatusBadRequest, validationMessage(err))
	case errors.Is(err, service.ErrAccountNotFound):
		respondError(c, http.StatusNotFound, "Account not found")
	case errors.Is(err, service.ErrPlanNotFound):
		respondError(c, http.StatusNotFound, "Plan not found")
	case errors.Is(err, service.ErrAlreadySubscribed):
		respondError(c, http.StatusConflict, "An active subscription already exists")
	default:
		h.logger.WithError(err).Error("request failed")
		respondError(c, http.StatusInternalServerError, "Something went wrong. Please try again later.")
	}
}

func validationMessage(err error) string {
	msg := strings.TrimPrefix(err.Error(), service.ErrValidation.Error()+": ")
	if msg == "" {
		return "Invalid request"
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

func respondData(c *gin.Context, status int, message string, data any) {
	c.JSON(status, gin.H{"success": true, "message": message, "data": data})
}

// AccountResponse is the sanitized account view. Expert-only fields are
// omitted for other kinds; profileImage is the resolved URL or null.
type AccountResponse struct {
	ID                 string   `json:"id"`
	Email              string   `json:"email"`
	FirstName          string   `json:"firstName"`
	LastName           string   `json:"lastName"`
	Phone              string   `json:"phone"`
	UserType           string   `json:"userType"`
	IsEmailVerified    bool     `json:"isEmailVerified"`
	ProfileImage       *string  `json:"profileImage"`
	Specialization     string   `json:"specialization,omitempty"`
	ExperienceYears    *int     `json:"experienceYears,omitempty"`
	Rating             *float64 `json:"rating,omitempty"`
	VerificationStatus string   `json:"verificationStatus,omitempty"`
	Role               string   `json:"role,omitempty"`
}

type AuthDataResponse struct {
	User         AccountResponse `json:"user"`
	UserType     string          `json:"userType"`
	AccountType  string          `json:"accountType"`
	Token        string          `json:"token"`
	RefreshToken string          `json:"refreshToken"`
}

type PlanResponse struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	PriceCents   int64    `json:"priceCents"`
	DurationDays int      `json:"durationDays"`
	Features     []string `json:"features"`
	SortOrder    int      `json:"sortOrder"`
}

type SubscriptionResponse struct {
	ID       string `json:"id"`
	PlanID   string `json:"planId"`
	Status   string `json:"status"`
	StartsAt string `json:"startsAt"`
	EndsAt   string `json:"endsAt"`
}

type PermissionResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Module      string `json:"module"`
}

func authResultToResponse(result *service.AuthResult) AuthDataResponse {
	return AuthDataResponse{
		User:         accountToResponse(result.Account, result.ImageURL),
		UserType:     string(result.Account.Kind),
		AccountType:  result.Account.Kind.Title(),
		Token:        result.Tokens.Token,
		RefreshToken: result.Tokens.RefreshToken,
	}
}

func accountToResponse(account *domain.Account, imageURL string) AccountResponse {
	resp := AccountResponse{UserType: string(account.Kind)}
	if imageURL != "" {
		resp.ProfileImage = &imageURL
	}

	switch account.Kind {
	case domain.KindExpert:
		e := account.Expert
		resp.ID = e.ID
		resp.Email = e.Email
		resp.FirstName = e.FirstName
		resp.LastName = e.LastName
		resp.Phone = e.Phone
		resp.IsEmailVerified = e.IsEmailVerified
		resp.Specialization = e.Specialization
		years := e.ExperienceYears
		resp.ExperienceYears = &years
		rating := e.Rating
		resp.Rating = &rating
		resp.VerificationStatus = string(e.VerificationStatus)
	case domain.KindAdmin:
		a := account.Admin
		resp.ID = a.ID
		resp.Email = a.Email
		resp.FirstName = a.FirstName
		resp.LastName = a.LastName
		resp.IsEmailVerified = true
		resp.Role = a.Role
	default:
		u := account.User
		resp.ID = u.ID
		resp.Email = u.Email
		resp.FirstName = u.FirstName
		resp.LastName = u.LastName
		resp.Phone = u.Phone
		resp.IsEmailVerified = u.IsEmailVerified
	}
	return resp
}

func planToResponse(plan domain.Plan) PlanResponse {
	return PlanResponse{
		ID:           plan.ID,
		Name:         plan.Name,
		Description:  plan.Description,
		PriceCents:   plan.PriceCents,
		DurationDays: plan.DurationDays,
		Features:     plan.Features,
		SortOrder:    plan.SortOrder,
	}
}

func subscriptionToResponse(sub domain.Subscription) SubscriptionResponse {
	return SubscriptionResponse{
		ID:       sub.ID,
		PlanID:   sub.PlanID,
		Status:   string(sub.Status),
		StartsAt: sub.StartsAt.Format(time.RFC3339),
		EndsAt:   sub.EndsAt.Format(time.RFC3339),
	}
}
