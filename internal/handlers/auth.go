package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"regexp"
	"unicode"

	"tripmate/internal/config"
	"tripmate/internal/database"
	"tripmate/internal/logger"
	"tripmate/internal/middleware"
	"tripmate/internal/token"

	"github.com/gin-gonic/gin"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func handleSignupPage(c *gin.Context) {
	cfg := c.MustGet("config").(*config.Config)
	c.HTML(http.StatusOK, "signup.html", gin.H{
		"Title":            "Sign up - Tripmate",
		"GoogleMapsAPIKey": cfg.GoogleMapsAPIKey,
	})
}

func handleSignup(c *gin.Context) {
	db := c.MustGet("db").(*sql.DB)

	username := c.PostForm("username")
	password := c.PostForm("password")
	email := c.PostForm("email")

	if username == "" || password == "" || email == "" {
		renderSignupError(c, http.StatusBadRequest, "Username, password and email are required", username, email)
		return
	}

	if !emailRegex.MatchString(email) {
		renderSignupError(c, http.StatusBadRequest, "Please enter a valid email address", username, email)
		return
	}

	if !validPassword(password) {
		renderSignupError(c, http.StatusBadRequest,
			"Password must be at least 8 characters with an uppercase letter, a lowercase letter, and end in a digit",
			username, email)
		return
	}

	user, err := database.CreateUser(db, username, email, password)
	if err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			renderSignupError(c, http.StatusBadRequest, "An account with that username or email already exists", username, email)
			return
		}
		logger.Error("Failed to create user", "username", username, "error", err)
		renderSignupError(c, http.StatusInternalServerError, "Failed to create account. Please try again.", username, email)
		return
	}

	logger.Info("User signed up", "user_id", user.ID, "username", user.Username)
	issueTokenAndRedirect(c, user.Username)
}

func renderSignupError(c *gin.Context, status int, msg, username, email string) {
	c.HTML(status, "signup.html", gin.H{
		"Title":    "Sign up - Tripmate",
		"Error":    msg,
		"Username": username,
		"Email":    email,
	})
}

// validPassword enforces the signup policy: at least one lowercase letter,
// at least one uppercase letter, a numeric final character, and a minimum
// of 8 characters.
func validPassword(pw string) bool {
	runes := []rune(pw)
	if len(runes) < 8 {
		return false
	}

	var hasLower, hasUpper bool
	for _, r := range runes {
		if unicode.IsLower(r) {
			hasLower = true
		}
		if unicode.IsUpper(r) {
			hasUpper = true
		}
	}

	return hasLower && hasUpper && unicode.IsDigit(runes[len(runes)-1])
}

func handleAdmitPage(c *gin.Context) {
	cfg := c.MustGet("config").(*config.Config)
	c.HTML(http.StatusOK, "admit.html", gin.H{
		"Title":            "Log in - Tripmate",
		"GoogleMapsAPIKey": cfg.GoogleMapsAPIKey,
	})
}

func handleAdmit(c *gin.Context) {
	db := c.MustGet("db").(*sql.DB)

	username := c.PostForm("username")
	password := c.PostForm("password")

	if username == "" || password == "" {
		c.HTML(http.StatusBadRequest, "admit.html", gin.H{
			"Title":    "Log in - Tripmate",
			"Error":    "Username and password are required",
			"Username": username,
		})
		return
	}

	user, err := database.AuthenticateUser(db, username, password)
	if err != nil {
		c.HTML(http.StatusUnauthorized, "admit.html", gin.H{
			"Title":    "Log in - Tripmate",
			"Error":    "Incorrect username or password",
			"Username": username,
		})
		return
	}

	logger.Info("User logged in", "user_id", user.ID, "username", user.Username)
	issueTokenAndRedirect(c, user.Username)
}

func issueTokenAndRedirect(c *gin.Context, username string) {
	cfg := c.MustGet("config").(*config.Config)
	tokens := c.MustGet("tokens").(*token.Manager)

	signed, err := tokens.Issue(username)
	if err != nil {
		logger.Error("Failed to issue token", "username", username, "error", err)
		c.HTML(http.StatusInternalServerError, "admit.html", gin.H{
			"Title": "Log in - Tripmate",
			"Error": "Failed to start a session. Please try again.",
		})
		return
	}

	middleware.SetTokenCookie(c, cfg, tokens, signed)
	c.Redirect(http.StatusFound, "/mainpage")
}

func handleLogout(c *gin.Context) {
	middleware.ClearTokenCookie(c)
	c.Redirect(http.StatusFound, "/")
}
