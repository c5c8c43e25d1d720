package router

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	rd "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"marketplace/internal/config"
	"marketplace/internal/inventory"
	"marketplace/internal/middleware"
	"marketplace/internal/model"
	"marketplace/internal/reservation"
)

// Setup registers all HTTP routes.
func Setup(r *gin.Engine, db *gorm.DB, rdb *rd.Client, svc *reservation.Service, cfg config.AppConfig) {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"msg": "pong"})
	})

	// Products
	r.GET("/api/products", listProducts(db))
	r.POST("/api/products", createProduct(db))

	// Reservations
	r.POST("/api/reservations",
		middleware.RedisRateLimit(rdb, cfg.ReserveRateLimit, cfg.ReserveRateWindow),
		createReservation(svc))
	r.GET("/api/reservations/:id", getReservation(svc))
	r.POST("/api/reservations/:id/status", transitionReservation(svc))
	r.DELETE("/api/reservations/:id", archiveReservation(svc))

	// Admin back-office view of the notification sink.
	r.GET("/api/notifications", listNotifications(db))
}

// currentActor reads the identity fact the auth layer established. The
// core trusts the headers as-is; a missing id means not authenticated.
func currentActor(c *gin.Context) (reservation.Actor, bool) {
	userID, err := strconv.ParseInt(c.GetHeader("X-User-ID"), 10, 64)
	if err != nil || userID <= 0 {
		return reservation.Actor{}, false
	}
	return reservation.Actor{
		UserID: userID,
		Admin:  c.GetHeader("X-User-Role") == "admin",
	}, true
}

// respondErr maps the service error taxonomy onto HTTP statuses.
func respondErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, reservation.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"code": 404, "msg": err.Error()})
	case errors.Is(err, reservation.ErrNotAuthorized):
		c.JSON(http.StatusForbidden, gin.H{"code": 403, "msg": err.Error()})
	case errors.Is(err, reservation.ErrInvalidStatus),
		errors.Is(err, reservation.ErrInvalidQuantity),
		errors.Is(err, reservation.ErrInsufficientStock),
		errors.Is(err, inventory.ErrOversell):
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
	}
}

// listProducts returns the catalog.
func listProducts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var list []model.Product
		if err := db.Find(&list).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": list})
	}
}

// createProduct lets the acting seller publish a listing.
func createProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := currentActor(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"code": 401, "msg": "not authenticated"})
			return
		}

		var req struct {
			Name       string `json:"name" binding:"required"`
			PriceCents int64  `json:"price_cents" binding:"required,min=1"`
			Quantity   int64  `json:"quantity" binding:"required,min=1"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": err.Error()})
			return
		}

		p := &model.Product{
			SellerID:   actor.UserID,
			Name:       req.Name,
			PriceCents: req.PriceCents,
			Quantity:   req.Quantity,
		}
		if err := db.Create(p).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": p})
	}
}

// createReservation is the buyer entry point into the lifecycle. Stock is
// checked but not held: the reservation starts as a PENDING soft hold and
// units only move when the seller marks it SOLD.
func createReservation(svc *reservation.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := currentActor(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"code": 401, "msg": "not authenticated"})
			return
		}

		var req struct {
			ProductID uint  `json:"product_id" binding:"required,min=1"`
			Quantity  int64 `json:"quantity" binding:"omitempty,min=1"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": err.Error()})
			return
		}
		if req.Quantity <= 0 {
			req.Quantity = 1
		}

		res, err := svc.Create(c.Request.Context(), actor.UserID, req.ProductID, req.Quantity)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": res})
	}
}

// getReservation returns one reservation by id. Authentication is
// required like on every other reservation endpoint; the service redacts
// the review token for callers who are neither the buyer nor the owning
// seller.
func getReservation(svc *reservation.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := currentActor(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"code": 401, "msg": "not authenticated"})
			return
		}

		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "invalid reservation id"})
			return
		}
		res, err := svc.Get(c.Request.Context(), uint(id), actor)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": res})
	}
}

// transitionReservation lets the owning seller (or an admin) move a
// reservation through its lifecycle. All stock movement happens inside the
// service's transaction.
func transitionReservation(svc *reservation.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := currentActor(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"code": 401, "msg": "not authenticated"})
			return
		}

		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "invalid reservation id"})
			return
		}

		var req struct {
			Status model.ReservationStatus `json:"status" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": err.Error()})
			return
		}

		res, err := svc.ApplyTransition(c.Request.Context(), uint(id), req.Status, actor)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": res})
	}
}

// archiveReservation soft-deletes a reservation from the seller's working
// view. Stock and flags stay as they are; repeating the call is harmless.
func archiveReservation(svc *reservation.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := currentActor(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"code": 401, "msg": "not authenticated"})
			return
		}

		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "invalid reservation id"})
			return
		}

		if err := svc.Archive(c.Request.Context(), uint(id), actor); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// listNotifications exposes the admin notification records.
func listNotifications(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := currentActor(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"code": 401, "msg": "not authenticated"})
			return
		}
		if !actor.Admin {
			c.JSON(http.StatusForbidden, gin.H{"code": 403, "msg": "admin only"})
			return
		}

		var list []model.Notification
		if err := db.Order("id desc").Limit(100).Find(&list).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": list})
	}
}
