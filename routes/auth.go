package routes

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/burntkayatoast/web-dev-project/db"
	m "github.com/burntkayatoast/web-dev-project/models"
)

const sessionCookieName = "session"
const sessionMaxAge = 24 * time.Hour

var errNoSession = errors.New("no valid session")

// generateToken signs a session token carrying the user summary, so gated
// requests don't need a user lookup just to know who is asking.
func (a *API) generateToken(user m.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"email":    user.Email,
		"exp":      time.Now().Add(sessionMaxAge).Unix(),
	})
	return token.SignedString([]byte(a.Config.GetJWTSecret()))
}

// userFromRequest resolves the session cookie (or a Bearer header for
// non-browser clients) into the authenticated user summary.
func (a *API) userFromRequest(c *gin.Context) (m.User, error) {
	tokenString, err := c.Cookie(sessionCookieName)
	if err != nil || tokenString == "" {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			return m.User{}, errNoSession
		}
		tokenString = strings.Replace(authHeader, "Bearer ", "", 1)
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(a.Config.GetJWTSecret()), nil
	})
	if err != nil || !token.Valid {
		return m.User{}, errNoSession
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return m.User{}, errNoSession
	}
	userID, ok := claims["user_id"].(float64)
	if !ok {
		return m.User{}, errNoSession
	}
	username, _ := claims["username"].(string)
	email, _ := claims["email"].(string)
	return m.User{ID: int(userID), Username: username, Email: email}, nil
}

// requireAPIAuth gates JSON endpoints: no session means 401, never a redirect.
func (a *API) requireAPIAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := a.userFromRequest(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}
		c.Set("user", user)
		c.Set("user_id", user.ID)
		c.Next()
	}
}

// requirePageAuth gates HTML pages: anonymous visitors are sent to /login.
func (a *API) requirePageAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := a.userFromRequest(c)
		if err != nil {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Set("user", user)
		c.Set("user_id", user.ID)
		c.Next()
	}
}

func currentUser(c *gin.Context) m.User {
	user, _ := c.MustGet("user").(m.User)
	return user
}

func (a *API) setSessionCookie(c *gin.Context, token string) {
	c.SetCookie(sessionCookieName, token, int(sessionMaxAge.Seconds()), "/", "", false, true)
}

func (a *API) clearSessionCookie(c *gin.Context) {
	c.SetCookie(sessionCookieName, "", -1, "/", "", false, true)
}

// startSession issues the token and cookie for a freshly registered or
// logged-in user.
func (a *API) startSession(c *gin.Context, user m.User) error {
	token, err := a.generateToken(user)
	if err != nil {
		return err
	}
	a.setSessionCookie(c, token)
	return nil
}

func (a *API) handleRegister(c *gin.Context) {
	user := m.User{
		FirstName: strings.TrimSpace(c.PostForm("first_name")),
		LastName:  strings.TrimSpace(c.PostForm("last_name")),
		Username:  strings.TrimSpace(c.PostForm("username")),
		Email:     strings.TrimSpace(c.PostForm("email")),
		Password:  c.PostForm("password"),
	}
	if user.FirstName == "" || user.LastName == "" || user.Username == "" ||
		user.Email == "" || user.Password == "" {
		c.HTML(http.StatusBadRequest, "register.html", gin.H{"Error": "All fields are required"})
		return
	}

	user, err := a.DB.InsertNewUser(user)
	switch {
	case errors.Is(err, db.ErrEmailTaken):
		c.HTML(http.StatusConflict, "register.html", gin.H{"Error": "Email already registered"})
		return
	case errors.Is(err, db.ErrUsernameTaken):
		c.HTML(http.StatusConflict, "register.html", gin.H{"Error": "Username already taken"})
		return
	case errors.Is(err, db.ErrFieldTooLong):
		c.HTML(http.StatusBadRequest, "register.html", gin.H{"Error": "One of the fields is too long"})
		return
	case err != nil:
		log.Printf("Error registering user: %v", err)
		c.HTML(http.StatusInternalServerError, "register.html", gin.H{"Error": "Something went wrong, try again"})
		return
	}

	if err := a.startSession(c, user); err != nil {
		log.Printf("Error creating session: %v", err)
		c.HTML(http.StatusInternalServerError, "register.html", gin.H{"Error": "Something went wrong, try again"})
		return
	}
	c.Redirect(http.StatusFound, "/profile")
}

func (a *API) handleLogin(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")
	if username == "" || password == "" {
		c.HTML(http.StatusBadRequest, "login.html", gin.H{"Error": "Username and password are required"})
		return
	}

	user, err := a.DB.ValidateUser(username, password)
	switch {
	case errors.Is(err, db.ErrUserNotFound):
		c.HTML(http.StatusUnauthorized, "login.html", gin.H{"Error": "User not found"})
		return
	case errors.Is(err, db.ErrInvalidCredentials):
		c.HTML(http.StatusUnauthorized, "login.html", gin.H{"Error": "Incorrect password"})
		return
	case err != nil:
		log.Printf("Error validating user: %v", err)
		c.HTML(http.StatusInternalServerError, "login.html", gin.H{"Error": "Something went wrong, try again"})
		return
	}

	if err := a.startSession(c, user); err != nil {
		log.Printf("Error creating session: %v", err)
		c.HTML(http.StatusInternalServerError, "login.html", gin.H{"Error": "Something went wrong, try again"})
		return
	}
	c.Redirect(http.StatusFound, "/")
}

// handleAPILogin is the JSON flavor of login for non-browser clients; it
// returns the token directly instead of setting a cookie.
func (a *API) handleAPILogin(c *gin.Context) {
	var loginData struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&loginData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid login data"})
		return
	}

	user, err := a.DB.ValidateUser(loginData.Username, loginData.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := a.generateToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
		},
	})
}

func (a *API) handleLogout(c *gin.Context) {
	a.clearSessionCookie(c)
	c.Redirect(http.StatusFound, "/")
}

func (a *API) handleUpdateProfile(c *gin.Context) {
	userID := c.GetInt("user_id")
	update := db.UserUpdate{
		FirstName:      strings.TrimSpace(c.PostForm("first_name")),
		LastName:       strings.TrimSpace(c.PostForm("last_name")),
		Username:       strings.TrimSpace(c.PostForm("username")),
		Email:          strings.TrimSpace(c.PostForm("email")),
		Password:       c.PostForm("password"),
		ProfilePicture: strings.TrimSpace(c.PostForm("profile_picture")),
	}

	err := a.DB.UpdateUser(userID, update)
	switch {
	case errors.Is(err, db.ErrEmailTaken):
		a.renderEditProfile(c, http.StatusConflict, "Email already registered")
		return
	case errors.Is(err, db.ErrUsernameTaken):
		a.renderEditProfile(c, http.StatusConflict, "Username already taken")
		return
	case errors.Is(err, db.ErrFieldTooLong):
		a.renderEditProfile(c, http.StatusBadRequest, "One of the fields is too long")
		return
	case err != nil:
		log.Printf("Error updating user: %v", err)
		a.renderEditProfile(c, http.StatusInternalServerError, "Something went wrong, try again")
		return
	}

	// Re-issue the session so the summary in the token stays current.
	user, err := a.DB.GetUserByID(userID)
	if err == nil {
		if err := a.startSession(c, user); err != nil {
			log.Printf("Error refreshing session: %v", err)
		}
	}
	c.Redirect(http.StatusFound, "/profile")
}

func (a *API) handleDeleteAccount(c *gin.Context) {
	userID := c.GetInt("user_id")
	if err := a.DB.DeleteUser(userID); err != nil {
		log.Printf("Error deleting user: %v", err)
		a.renderEditProfile(c, http.StatusInternalServerError, "Something went wrong, try again")
		return
	}
	a.clearSessionCookie(c)
	c.Redirect(http.StatusFound, "/")
}

func (a *API) renderEditProfile(c *gin.Context, status int, message string) {
	user, err := a.DB.GetUserByID(c.GetInt("user_id"))
	if err != nil {
		user = currentUser(c)
	}
	c.HTML(status, "edit_profile.html", gin.H{"User": user, "Error": message})
}
