package gateway

import (
	"net/http"

	"github.com/example/storefront/pkg/models"
	"github.com/example/storefront/pkg/service"
	"github.com/gin-gonic/gin"
)

func (g *Gateway) setSession(c *gin.Context, user *models.User) bool {
	token, exp, err := g.services.Auth.Issue(user.ID.Hex())
	if err != nil {
		g.fail(c, err)
		return false
	}
	http.SetCookie(c.Writer, g.services.Auth.Cookie(token, exp))
	return true
}

func userBody(user *models.User) gin.H {
	return gin.H{
		"_id":     user.ID,
		"name":    user.Name,
		"email":   user.Email,
		"isAdmin": user.IsAdmin,
	}
}

// authUser godoc
// @Summary  Sign in and receive the session cookie
// @Tags     users
// @Accept   json
// @Produce  json
// @Param    body  body  service.LoginInput  true  "Credentials"
// @Success  200  {object}  map[string]interface{}
// @Failure  401  {object}  map[string]string
// @Router   /api/users/auth [post]
func (g *Gateway) authUser(c *gin.Context) {
	var req service.LoginInput
	if !g.bindJSON(c, &req) {
		return
	}

	user, err := g.services.Users.Login(c.Request.Context(), req)
	if err != nil {
		g.fail(c, err)
		return
	}
	if !g.setSession(c, user) {
		return
	}
	c.JSON(http.StatusOK, userBody(user))
}

func (g *Gateway) registerUser(c *gin.Context) {
	var req service.RegisterInput
	if !g.bindJSON(c, &req) {
		return
	}

	user, err := g.services.Users.Register(c.Request.Context(), req)
	if err != nil {
		g.fail(c, err)
		return
	}
	if !g.setSession(c, user) {
		return
	}
	c.JSON(http.StatusCreated, userBody(user))
}

func (g *Gateway) logoutUser(c *gin.Context) {
	http.SetCookie(c.Writer, g.services.Auth.ClearCookie())
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (g *Gateway) getProfile(c *gin.Context) {
	c.JSON(http.StatusOK, userBody(currentUser(c)))
}

func (g *Gateway) updateProfile(c *gin.Context) {
	var req service.ProfileInput
	if !g.bindJSON(c, &req) {
		return
	}

	user, err := g.services.Users.UpdateProfile(c.Request.Context(), currentUser(c).ID.Hex(), req)
	if err != nil {
		g.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, userBody(user))
}

func (g *Gateway) listUsers(c *gin.Context) {
	users, err := g.services.Users.ListUsers(c.Request.Context())
	if err != nil {
		g.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (g *Gateway) getUser(c *gin.Context) {
	user, err := g.services.Users.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		g.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (g *Gateway) updateUser(c *gin.Context) {
	var req service.UserUpdateInput
	if !g.bindJSON(c, &req) {
		return
	}

	user, err := g.services.Users.UpdateUser(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		g.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, userBody(user))
}

func (g *Gateway) deleteUser(c *gin.Context) {
	if err := g.services.Users.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		g.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User removed"})
}
