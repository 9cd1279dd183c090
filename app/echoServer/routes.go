package echoServer

import (
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/Rizwanwaseer11/homerental/app/echoServer/controller/admin"
	"github.com/Rizwanwaseer11/homerental/app/echoServer/controller/auth"
	"github.com/Rizwanwaseer11/homerental/app/echoServer/controller/booking"
	"github.com/Rizwanwaseer11/homerental/app/echoServer/controller/cart"
	"github.com/Rizwanwaseer11/homerental/app/echoServer/controller/notification"
	"github.com/Rizwanwaseer11/homerental/app/echoServer/controller/property"
	"github.com/Rizwanwaseer11/homerental/app/echoServer/jwtx"
	jwtutil "github.com/Rizwanwaseer11/homerental/util/jwt"
)

type C struct {
	Auth         *auth.Controller
	Property     *property.Controller
	Booking      *booking.Controller
	Notification *notification.Controller
	Cart         *cart.Controller
	Admin        *admin.Controller
	JWTSecret    string
	UploadDir    string
	RateLimit    echo.MiddlewareFunc
}

func Register(e *echo.Echo, c C) {
	if c.RateLimit != nil {
		e.Use(c.RateLimit)
	}

	e.GET("/health", func(ctx echo.Context) error {
		return ctx.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.Static("/uploads", c.UploadDir)

	// Public
	pub := e.Group("/v1")
	pub.POST("/auth/register", c.Auth.Register)
	pub.POST("/auth/login", c.Auth.Login)

	// Listing and detail are public but role-aware: owners browsing the
	// catalogue see their own pending houses, renters only see available ones.
	pub.GET("/properties", c.Property.List, optionalClaims(c.JWTSecret))
	pub.GET("/properties/:id", c.Property.Detail, optionalClaims(c.JWTSecret))

	// Auth
	api := e.Group("/v1")
	api.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(c.JWTSecret),
	}))
	api.Use(extractClaims)

	api.POST("/properties", c.Property.Create)
	api.PUT("/properties/:id", c.Property.Update)
	api.DELETE("/properties/:id", c.Property.Delete)
	api.POST("/properties/:id/images", c.Property.UploadImages)

	api.POST("/bookings", c.Booking.Create)
	api.POST("/bookings/:id/approve", c.Booking.Approve)
	api.POST("/bookings/:id/reject", c.Booking.Reject)
	api.POST("/bookings/:id/cancel", c.Booking.Cancel)
	api.GET("/bookings/my", c.Booking.My)
	api.GET("/bookings/received", c.Booking.Received)
	api.GET("/bookings/:id", c.Booking.Detail)

	api.GET("/notifications", c.Notification.List)
	api.GET("/notifications/unread-count", c.Notification.UnreadCount)
	api.POST("/notifications/:id/read", c.Notification.MarkRead)
	api.POST("/notifications/read-all", c.Notification.MarkAllRead)
	api.DELETE("/notifications/:id", c.Notification.Delete)

	api.GET("/cart", c.Cart.List)
	api.POST("/cart/:propertyId", c.Cart.Add)
	api.DELETE("/cart/:propertyId", c.Cart.Remove)

	api.GET("/admin/dashboard", c.Admin.Dashboard)
	api.POST("/admin/properties/:id/approve", c.Admin.ApproveProperty)
	api.POST("/admin/properties/:id/reject", c.Admin.RejectProperty)
}

// extractClaims lifts user_id and role out of the verified token so handlers
// read plain context values instead of poking at jwt claims.
func extractClaims(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		uid, err := jwtx.UserIDFromContext(c)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
		}
		role, err := jwtx.RoleFromContext(c)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
		}
		c.Set("user_id", uid)
		c.Set("role", role)
		return next(c)
	}
}

// optionalClaims sets user_id and role when a valid bearer token is present
// and falls through anonymously otherwise. Used on the public catalogue routes.
func optionalClaims(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return next(c)
			}
			claims, err := jwtutil.ParseAuth(header, secret)
			if err != nil {
				return next(c)
			}
			if sub, ok := claims["sub"].(float64); ok {
				c.Set("user_id", int64(sub))
			}
			if role, ok := claims["role"].(string); ok {
				c.Set("role", role)
			}
			return next(c)
		}
	}
}
