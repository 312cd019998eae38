package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Lixing-Zhang/restaurant-app/backend/internal/middleware"
	"github.com/Lixing-Zhang/restaurant-app/backend/internal/models"
	"github.com/Lixing-Zhang/restaurant-app/backend/internal/money"
	"github.com/Lixing-Zhang/restaurant-app/backend/internal/repository"
	"github.com/Lixing-Zhang/restaurant-app/backend/internal/service"
	"github.com/Lixing-Zhang/restaurant-app/backend/internal/session"
)

func testProducts() []models.Product {
	return []models.Product{
		{ID: "1", Name: "Pizza Margherita", Description: "Molho de tomate, mussarela e manjericão", Price: money.MustParse("29.90"), Category: "pizzas"},
		{ID: "2", Name: "Spaghetti Carbonara", Description: "Massa com bacon e parmesão", Price: money.MustParse("32.50"), Category: "massas"},
		{ID: "3", Name: "Tiramisu", Description: "Sobremesa italiana com café", Price: money.MustParse("8.50"), Category: "sobremesas"},
	}
}

func testCategories() []models.Category {
	return []models.Category{
		{ID: "pizzas", Name: "Pizzas"},
		{ID: "massas", Name: "Massas"},
		{ID: "sobremesas", Name: "Sobremesas"},
	}
}

func testTables() []models.Table {
	return []models.Table{
		{ID: "1", Number: 1, Seats: 2, Status: models.TableAvailable},
		{ID: "2", Number: 2, Seats: 4, Status: models.TableReserved},
		{ID: "3", Number: 3, Seats: 6, Status: models.TableOccupied},
		{ID: "4", Number: 4, Seats: 4, Status: models.TableAvailable},
	}
}

func testProductService() *service.ProductService {
	return service.NewProductService(repository.NewInMemoryProductRepository(testProducts(), testCategories()))
}

func testFormatter(t *testing.T) *money.Formatter {
	t.Helper()
	f, err := money.NewFormatter("pt-BR")
	if err != nil {
		t.Fatalf("failed to create formatter: %v", err)
	}
	return f
}

func testSession(t *testing.T, orders service.OrderSubmitter, reservations service.ReservationSubmitter) *session.Session {
	t.Helper()
	return newTestSessionFor(t, repository.NewInMemoryTableRepository(testTables()), orders, reservations)
}

func testSessionWithTables(t *testing.T, tables service.TableSource) *session.Session {
	t.Helper()
	return newTestSessionFor(t, tables, nil, nil)
}

func newTestSessionFor(t *testing.T, tables service.TableSource, orders service.OrderSubmitter, reservations service.ReservationSubmitter) *session.Session {
	t.Helper()
	selector := service.NewReservationSelector(tables, reservations)
	if err := selector.Refresh(context.Background()); err != nil {
		t.Fatalf("failed to load tables: %v", err)
	}
	return &session.Session{
		ID:          "test-session",
		Cart:        service.NewCart(money.MustParse("5.00"), orders),
		Reservation: selector,
	}
}

// injectSession stands in for the session middleware
func injectSession(sess *session.Session) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(middleware.WithSession(r.Context(), sess)))
		})
	}
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("failed to marshal request: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(dst); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var response map[string]string
	decodeBody(t, w, &response)
	return response["error"]
}

func newRequest(method, path string) *http.Request {
	return httptest.NewRequest(method, path, nil)
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}
