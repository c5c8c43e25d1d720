package router

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	rd "github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"marketplace/internal/config"
	"marketplace/internal/model"
	"marketplace/internal/reservation"
)

var dbSeq int64

func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:router%d?mode=memory&cache=shared", atomic.AddInt64(&dbSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("db open: %v", err)
	}
	if err := db.AutoMigrate(&model.Product{}, &model.Reservation{}, &model.Notification{}); err != nil {
		t.Fatalf("db migrate: %v", err)
	}

	// Unreachable Redis: the limiter fails open, which is all these
	// tests need.
	rdb := rd.NewClient(&rd.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond})
	t.Cleanup(func() { rdb.Close() })

	svc := reservation.NewService(db, nil)
	cfg := config.AppConfig{ReserveRateLimit: 1000, ReserveRateWindow: time.Second}

	r := gin.New()
	Setup(r, db, rdb, svc, cfg)
	return r, db
}

func do(t *testing.T, r *gin.Engine, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sellerHeaders(id int64) map[string]string {
	return map[string]string{"X-User-ID": fmt.Sprint(id), "X-User-Role": "seller"}
}

func TestRouter_Unauthenticated(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/api/reservations", `{"product_id":1}`, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d", w.Code)
	}
}

func TestRouter_ReservationLifecycle(t *testing.T) {
	r, db := newTestRouter(t)

	prod := &model.Product{SellerID: 1, Name: "widget", PriceCents: 500, Quantity: 5}
	if err := db.Create(prod).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	w := do(t, r, http.MethodPost, "/api/reservations",
		fmt.Sprintf(`{"product_id":%d,"quantity":3}`, prod.ID),
		map[string]string{"X-User-ID": "42", "X-User-Role": "buyer"})
	if w.Code != http.StatusOK {
		t.Fatalf("create: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// A stranger may not transition it.
	w = do(t, r, http.MethodPost, "/api/reservations/1/status", `{"status":"SOLD"}`, sellerHeaders(9))
	if w.Code != http.StatusForbidden {
		t.Fatalf("foreign seller: expected 403, got %d", w.Code)
	}

	// The owning seller marks it sold.
	w = do(t, r, http.MethodPost, "/api/reservations/1/status", `{"status":"SOLD"}`, sellerHeaders(1))
	if w.Code != http.StatusOK {
		t.Fatalf("sell: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// Unknown status is a 400.
	w = do(t, r, http.MethodPost, "/api/reservations/1/status", `{"status":"SHIPPED"}`, sellerHeaders(1))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad status: expected 400, got %d", w.Code)
	}

	// Archival answers 204 with no body.
	w = do(t, r, http.MethodDelete, "/api/reservations/1", "", sellerHeaders(1))
	if w.Code != http.StatusNoContent {
		t.Fatalf("archive: expected 204, got %d", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("archive: expected empty body, got %q", w.Body.String())
	}
}

func TestRouter_GetReservationGuardsReviewToken(t *testing.T) {
	r, db := newTestRouter(t)

	prod := &model.Product{SellerID: 1, Name: "widget", PriceCents: 500, Quantity: 5}
	if err := db.Create(prod).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	w := do(t, r, http.MethodPost, "/api/reservations",
		fmt.Sprintf(`{"product_id":%d,"quantity":3}`, prod.ID),
		map[string]string{"X-User-ID": "42", "X-User-Role": "buyer"})
	if w.Code != http.StatusOK {
		t.Fatalf("create: expected 200, got %d", w.Code)
	}
	w = do(t, r, http.MethodPost, "/api/reservations/1/status", `{"status":"SOLD"}`, sellerHeaders(1))
	if w.Code != http.StatusOK {
		t.Fatalf("sell: expected 200, got %d", w.Code)
	}

	// Anonymous read is rejected outright.
	w = do(t, r, http.MethodGet, "/api/reservations/1", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: expected 401, got %d", w.Code)
	}

	// An unrelated authenticated user sees the reservation but never the
	// one-time review credential.
	w = do(t, r, http.MethodGet, "/api/reservations/1", "",
		map[string]string{"X-User-ID": "7", "X-User-Role": "buyer"})
	if w.Code != http.StatusOK {
		t.Fatalf("stranger: expected 200, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "review_token") {
		t.Errorf("Token leaked to a stranger: %s", w.Body.String())
	}

	// The buyer gets their token.
	w = do(t, r, http.MethodGet, "/api/reservations/1", "",
		map[string]string{"X-User-ID": "42", "X-User-Role": "buyer"})
	if w.Code != http.StatusOK {
		t.Fatalf("buyer: expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "review_token") {
		t.Errorf("Expected token in buyer response: %s", w.Body.String())
	}
}

func TestRouter_NotFoundAndInsufficient(t *testing.T) {
	r, db := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/api/reservations", `{"product_id":99}`,
		map[string]string{"X-User-ID": "42"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown product: expected 404, got %d", w.Code)
	}

	prod := &model.Product{SellerID: 1, Name: "widget", PriceCents: 500, Quantity: 1}
	if err := db.Create(prod).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	w = do(t, r, http.MethodPost, "/api/reservations",
		fmt.Sprintf(`{"product_id":%d,"quantity":2}`, prod.ID),
		map[string]string{"X-User-ID": "42"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("insufficient stock: expected 400, got %d", w.Code)
	}
}

func TestRouter_NotificationsAdminOnly(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(t, r, http.MethodGet, "/api/notifications", "", sellerHeaders(1))
	if w.Code != http.StatusForbidden {
		t.Fatalf("seller: expected 403, got %d", w.Code)
	}

	w = do(t, r, http.MethodGet, "/api/notifications", "",
		map[string]string{"X-User-ID": "1", "X-User-Role": "admin"})
	if w.Code != http.StatusOK {
		t.Fatalf("admin: expected 200, got %d", w.Code)
	}
}
