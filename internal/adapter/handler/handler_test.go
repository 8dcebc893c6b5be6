package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/QuestionAndAnswer/vending-api/internal/adapter/handler"
	"github.com/QuestionAndAnswer/vending-api/internal/adapter/memstore"
	"github.com/QuestionAndAnswer/vending-api/internal/adapter/middleware"
	"github.com/QuestionAndAnswer/vending-api/internal/core/domain"
	"github.com/QuestionAndAnswer/vending-api/internal/core/session"
	"github.com/QuestionAndAnswer/vending-api/internal/core/vending"
)

type testEnv struct {
	app      *fiber.App
	store    *memstore.Store
	service  *vending.Service
	sessions *session.Store
}

// newTestEnv wires the app the same way cmd/api does, over a memstore.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memstore.New()
	service := vending.NewService(store)
	sessions := session.NewStore(time.Hour)

	authHandler := &handler.AuthHandler{Service: service, Sessions: sessions, MaxAge: time.Hour}
	userHandler := &handler.UserHandler{Service: service}
	productHandler := &handler.ProductHandler{Service: service}
	actionsHandler := &handler.ActionsHandler{Service: service}

	app := fiber.New()

	authn := middleware.Protected(sessions)
	buyerOnly := middleware.RequireRole(domain.RoleBuyer)
	sellerOnly := middleware.RequireRole(domain.RoleSeller)

	app.Post("/login", authHandler.Login)
	app.Get("/logout", authHandler.Logout)
	app.Get("/whoami", authHandler.WhoAmI)
	app.Post("/users", userHandler.Register)
	app.Get("/users", userHandler.List)
	app.Get("/products", productHandler.List)

	app.Post("/deposit", authn, buyerOnly, actionsHandler.Deposit)
	app.Post("/reset", authn, buyerOnly, actionsHandler.Reset)
	app.Post("/buy", authn, buyerOnly, actionsHandler.Buy)

	app.Post("/products", authn, sellerOnly, productHandler.Create)
	app.Put("/products/:id", authn, sellerOnly, productHandler.Update)
	app.Delete("/products/:id", authn, sellerOnly, productHandler.Delete)

	return &testEnv{app: app, store: store, service: service, sessions: sessions}
}

func (e *testEnv) request(t *testing.T, method, target, body, token string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: token})
	}

	res, err := e.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}
	return res
}

func (e *testEnv) sessionFor(t *testing.T, identity domain.Identity) string {
	t.Helper()
	token, err := e.sessions.Create(identity)
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func (e *testEnv) seedSeller(t *testing.T, name string) domain.Identity {
	t.Helper()
	id, err := e.store.CreateAccount(context.Background(), domain.Account{
		Name: name, PassHash: "h", PassSalt: "s", Role: domain.RoleSeller,
	})
	if err != nil {
		t.Fatal(err)
	}
	return domain.Identity{ID: id, Name: name, Role: domain.RoleSeller}
}

func (e *testEnv) seedBuyer(t *testing.T, name string, deposit int64) domain.Identity {
	t.Helper()
	id, err := e.service.Register(context.Background(), name, "s3cret", deposit)
	if err != nil {
		t.Fatal(err)
	}
	return domain.Identity{ID: id, Name: name, Role: domain.RoleBuyer}
}

func decodeBody(t *testing.T, res *http.Response) map[string]any {
	t.Helper()
	defer res.Body.Close()
	var out map[string]any
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return out
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"short name", `{"name":"a","password":"s3cret","deposit":0,"role":"buyer"}`, ".name must be at least 2 symbols"},
		{"negative deposit", `{"name":"alice","password":"s3cret","deposit":-5,"role":"buyer"}`, ".deposit must be positive integer number"},
		{"seller role", `{"name":"alice","password":"s3cret","deposit":0,"role":"seller"}`, ".role may be one of [buyer]"},
		{"short password", `{"name":"alice","password":"abc","deposit":0,"role":"buyer"}`, ".password must be at least 4 symbols"},
	}

	for _, tt := range tests {
		res := env.request(t, http.MethodPost, "/users", tt.body, "")
		if res.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: status %d, want 400", tt.name, res.StatusCode)
			continue
		}
		if body := decodeBody(t, res); body["error"] != tt.want {
			t.Errorf("%s: error %q, want %q", tt.name, body["error"], tt.want)
		}
	}
}

func TestRegisterAndDuplicate(t *testing.T) {
	env := newTestEnv(t)
	payload := `{"name":"alice","password":"s3cret","deposit":0,"role":"buyer"}`

	res := env.request(t, http.MethodPost, "/users", payload, "")
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("register: status %d, want 201", res.StatusCode)
	}
	if body := decodeBody(t, res); body["id"] == nil {
		t.Error("register response has no id")
	}

	res = env.request(t, http.MethodPost, "/users", payload, "")
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("duplicate register: status %d, want 400", res.StatusCode)
	}
	if body := decodeBody(t, res); body["error"] != "username already in use" {
		t.Errorf("duplicate register error: %q", body["error"])
	}
}

func TestLoginAndWhoAmI(t *testing.T) {
	env := newTestEnv(t)
	env.seedBuyer(t, "alice", 0)

	// Anonymous whoami is an empty object, not an error.
	res := env.request(t, http.MethodGet, "/whoami", "", "")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("anonymous whoami: status %d", res.StatusCode)
	}
	if body := decodeBody(t, res); len(body) != 0 {
		t.Errorf("anonymous whoami body: %v, want empty object", body)
	}

	res = env.request(t, http.MethodPost, "/login", `{"name":"alice","password":"wrong"}`, "")
	if res.StatusCode != http.StatusUnauthorized {
		t.Errorf("wrong password login: status %d, want 401", res.StatusCode)
	}

	res = env.request(t, http.MethodPost, "/login", `{"name":"alice","password":"s3cret"}`, "")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("login: status %d, want 200", res.StatusCode)
	}

	var token string
	for _, cookie := range res.Cookies() {
		if cookie.Name == session.CookieName {
			token = cookie.Value
		}
	}
	if token == "" {
		t.Fatal("login did not set a session cookie")
	}

	res = env.request(t, http.MethodGet, "/whoami", "", token)
	body := decodeBody(t, res)
	if body["name"] != "alice" || body["role"] != "buyer" {
		t.Errorf("whoami: %v", body)
	}

	res = env.request(t, http.MethodGet, "/logout", "", token)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("logout: status %d", res.StatusCode)
	}
	res = env.request(t, http.MethodGet, "/whoami", "", token)
	if body := decodeBody(t, res); len(body) != 0 {
		t.Errorf("whoami after logout: %v, want empty object", body)
	}
}

func TestDepositGateAndValidation(t *testing.T) {
	env := newTestEnv(t)
	buyer := env.seedBuyer(t, "alice", 0)
	seller := env.seedSeller(t, "sally")

	// No session.
	res := env.request(t, http.MethodPost, "/deposit", `{"amount":50}`, "")
	if res.StatusCode != http.StatusForbidden {
		t.Errorf("anonymous deposit: status %d, want 403", res.StatusCode)
	}

	// Wrong role, same bare denial.
	res = env.request(t, http.MethodPost, "/deposit", `{"amount":50}`, env.sessionFor(t, seller))
	if res.StatusCode != http.StatusForbidden {
		t.Errorf("seller deposit: status %d, want 403", res.StatusCode)
	}

	token := env.sessionFor(t, buyer)

	// Coin not in the set.
	res = env.request(t, http.MethodPost, "/deposit", `{"amount":7}`, token)
	if res.StatusCode != http.StatusBadRequest {
		t.Errorf("deposit of 7: status %d, want 400", res.StatusCode)
	}

	res = env.request(t, http.MethodPost, "/deposit", `{"amount":50}`, token)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("deposit: status %d, want 200", res.StatusCode)
	}
	if body := decodeBody(t, res); body["deposit"] != float64(50) {
		t.Errorf("deposit response: %v", body)
	}

	res = env.request(t, http.MethodPost, "/reset", "", token)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("reset: status %d", res.StatusCode)
	}
	if body := decodeBody(t, res); body["deposit"] != float64(0) {
		t.Errorf("reset response: %v", body)
	}
}

func TestBuyFlow(t *testing.T) {
	env := newTestEnv(t)
	seller := env.seedSeller(t, "sally")
	buyer := env.seedBuyer(t, "alice", 100)

	productID, err := env.service.CreateProduct(context.Background(), seller, "cola", 5, 30)
	if err != nil {
		t.Fatal(err)
	}

	token := env.sessionFor(t, buyer)

	res := env.request(t, http.MethodPost, "/buy", `{"productId":"not-a-uuid","amount":1}`, token)
	if res.StatusCode != http.StatusBadRequest {
		t.Errorf("bad product id: status %d, want 400", res.StatusCode)
	}

	res = env.request(t, http.MethodPost, "/buy", `{"productId":"`+uuid.NewString()+`","amount":1}`, token)
	if res.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown product: status %d, want 400", res.StatusCode)
	}

	res = env.request(t, http.MethodPost, "/buy", `{"productId":"`+productID.String()+`","amount":2}`, token)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("buy: status %d, want 200", res.StatusCode)
	}

	body := decodeBody(t, res)
	if body["total"] != float64(60) {
		t.Errorf("total: %v, want 60", body["total"])
	}
	if body["remaining"] != float64(0) {
		t.Errorf("remaining: %v, want 0", body["remaining"])
	}
	change, ok := body["change"].(map[string]any)
	if !ok || change["20"] != float64(2) || len(change) != 1 {
		t.Errorf("change: %v, want {\"20\": 2}", body["change"])
	}
	product, ok := body["product"].(map[string]any)
	if !ok || product["amount"] != float64(3) {
		t.Errorf("product snapshot: %v, want stock 3", body["product"])
	}
}

func TestProductEndpointsOwnership(t *testing.T) {
	env := newTestEnv(t)
	sellerA := env.seedSeller(t, "sally")
	sellerB := env.seedSeller(t, "bob")

	tokenA := env.sessionFor(t, sellerA)
	tokenB := env.sessionFor(t, sellerB)

	res := env.request(t, http.MethodPost, "/products", `{"name":"cola","amount":5,"cost":30}`, tokenA)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create product: status %d, want 201", res.StatusCode)
	}
	productID, _ := decodeBody(t, res)["id"].(string)
	if productID == "" {
		t.Fatal("create product returned no id")
	}

	// Cost not a multiple of the smallest coin.
	res = env.request(t, http.MethodPost, "/products", `{"name":"gum","amount":1,"cost":7}`, tokenA)
	if res.StatusCode != http.StatusBadRequest {
		t.Errorf("cost 7: status %d, want 400", res.StatusCode)
	}

	// A well-formed payload from the wrong seller is still a bare 403,
	// identical to the missing-product response.
	res = env.request(t, http.MethodPut, "/products/"+productID, `{"name":"mine now","amount":1,"cost":5}`, tokenB)
	if res.StatusCode != http.StatusForbidden {
		t.Errorf("non-owner update: status %d, want 403", res.StatusCode)
	}
	res = env.request(t, http.MethodDelete, "/products/"+productID, "", tokenB)
	if res.StatusCode != http.StatusForbidden {
		t.Errorf("non-owner delete: status %d, want 403", res.StatusCode)
	}
	res = env.request(t, http.MethodPut, "/products/"+uuid.NewString(), `{"name":"ghost","amount":1,"cost":5}`, tokenB)
	if res.StatusCode != http.StatusForbidden {
		t.Errorf("missing product update: status %d, want 403", res.StatusCode)
	}

	// Unchanged after the denials.
	p, err := env.store.Product(context.Background(), uuid.MustParse(productID))
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "cola" || p.Amount != 5 || p.Cost != 30 {
		t.Errorf("product mutated by denied requests: %+v", p)
	}

	res = env.request(t, http.MethodPut, "/products/"+productID, `{"name":"cola zero","amount":4,"cost":35}`, tokenA)
	if res.StatusCode != http.StatusOK {
		t.Errorf("owner update: status %d, want 200", res.StatusCode)
	}

	res = env.request(t, http.MethodGet, "/products", "", "")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("list products: status %d", res.StatusCode)
	}
	defer res.Body.Close()
	var listed []map[string]any
	if err := json.NewDecoder(res.Body).Decode(&listed); err != nil {
		t.Fatal(err)
	}
	if len(listed) != 1 || listed[0]["name"] != "cola zero" {
		t.Errorf("listed products: %v", listed)
	}

	res = env.request(t, http.MethodDelete, "/products/"+productID, "", tokenA)
	if res.StatusCode != http.StatusOK {
		t.Errorf("owner delete: status %d, want 200", res.StatusCode)
	}
}

func TestListUsersExposesOnlyPublicFields(t *testing.T) {
	env := newTestEnv(t)
	env.seedBuyer(t, "alice", 100)

	res := env.request(t, http.MethodGet, "/users", "", "")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("list users: status %d", res.StatusCode)
	}
	defer res.Body.Close()

	var listed []map[string]any
	if err := json.NewDecoder(res.Body).Decode(&listed); err != nil {
		t.Fatal(err)
	}
	if len(listed) != 1 {
		t.Fatalf("listed %d users, want 1", len(listed))
	}
	if listed[0]["name"] != "alice" || listed[0]["id"] == nil {
		t.Errorf("listed user: %v", listed[0])
	}
	for _, secret := range []string{"deposit", "passHash", "PassHash", "pass_hash"} {
		if _, leaked := listed[0][secret]; leaked {
			t.Errorf("user list leaks %q", secret)
		}
	}
}
