package handlers

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// GoogleOAuthURL generates the Google OAuth URL
func (h *Handler) GoogleOAuthURL(c *fiber.Ctx) error {
	googleClientID := os.Getenv("GOOGLE_CLIENT_ID")
	googleRedirectURL := os.Getenv("GOOGLE_REDIRECT_URL")

	if googleClientID == "" || googleRedirectURL == "" {
		return fail(c, fiber.StatusInternalServerError, "Google OAuth not configured")
	}

	// Generate state token for CSRF protection
	state := generateStateToken()

	c.Cookie(&fiber.Cookie{
		Name:     "oauth_state",
		Value:    state,
		HTTPOnly: true,
		Secure:   false,
		SameSite: "Lax",
		MaxAge:   300, // 5 minutes
	})

	oauthURL := fmt.Sprintf(
		"https://accounts.google.com/o/oauth2/v2/auth?client_id=%s&redirect_uri=%s&response_type=code&scope=openid email profile&state=%s",
		googleClientID,
		googleRedirectURL,
		state,
	)

	return ok(c, fiber.Map{"url": oauthURL})
}

// GoogleOAuthCallback handles the OAuth callback. The user document is
// created on first sign-in and its display name, avatar and last-seen are
// refreshed on every later one.
func (h *Handler) GoogleOAuthCallback(c *fiber.Ctx) error {
	// Verify state token
	cookieState := c.Cookies("oauth_state")
	queryState := c.Query("state")
	if cookieState == "" || cookieState != queryState {
		return fail(c, fiber.StatusBadRequest, "Invalid state parameter")
	}
	clearCookie(c, "oauth_state")

	code := c.Query("code")
	if code == "" {
		return fail(c, fiber.StatusBadRequest, "Authorization code not found")
	}

	tokenData, err := exchangeCodeForToken(code)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to exchange code for token")
	}

	googleUser, err := getGoogleUserInfo(tokenData.AccessToken)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to get user info")
	}

	name := googleUser.Name
	if name == "" {
		name = "Anonymous"
	}
	var avatar *string
	if googleUser.Picture != "" {
		avatar = &googleUser.Picture
	}

	user, err := h.users.UpsertProfile(c.Context(), googleUser.Email, name, avatar, &googleUser.Sub)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to save user")
	}

	if err := h.users.SetPresence(c.Context(), user.ID, true); err == nil {
		user.IsOnline = true
	}

	if err := h.issueAuthCookies(c, user); err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to generate token")
	}

	// Redirect to frontend
	frontendURL := os.Getenv("FRONTEND_URL")
	if frontendURL == "" {
		frontendURL = "http://localhost:3000"
	}

	return c.Redirect(frontendURL + "/chat")
}

// TokenResponse represents Google OAuth token response
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// GoogleUser represents user info from Google
type GoogleUser struct {
	Sub           string `json:"sub"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Picture       string `json:"picture"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
}

// exchangeCodeForToken exchanges authorization code for access token
func exchangeCodeForToken(code string) (*TokenResponse, error) {
	googleClientID := os.Getenv("GOOGLE_CLIENT_ID")
	googleClientSecret := os.Getenv("GOOGLE_CLIENT_SECRET")
	googleRedirectURL := os.Getenv("GOOGLE_REDIRECT_URL")

	tokenURL := "https://oauth2.googleapis.com/token"

	data := fmt.Sprintf(
		"code=%s&client_id=%s&client_secret=%s&redirect_uri=%s&grant_type=authorization_code",
		code, googleClientID, googleClientSecret, googleRedirectURL,
	)

	resp, err := http.Post(tokenURL, "application/x-www-form-urlencoded", strings.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to get token, status: %d", resp.StatusCode)
	}

	var tokenResp TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return nil, err
	}

	return &tokenResp, nil
}

// getGoogleUserInfo gets user information from Google
func getGoogleUserInfo(accessToken string) (*GoogleUser, error) {
	userInfoURL := "https://www.googleapis.com/oauth2/v2/userinfo"

	req, err := http.NewRequest("GET", userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to get user info, status: %d, body: %s", resp.StatusCode, string(body))
	}

	var googleUser GoogleUser
	if err := json.NewDecoder(resp.Body).Decode(&googleUser); err != nil {
		return nil, err
	}

	return &googleUser, nil
}

// generateStateToken generates a random state token
func generateStateToken() string {
	b := make([]byte, 32)
	rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}
