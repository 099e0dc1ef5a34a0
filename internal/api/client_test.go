package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fastroute/console/internal/model"
)

func TestClient_GetMapData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/map/data" {
			t.Errorf("path = %q, want /api/map/data", r.URL.Path)
		}
		resp := model.MapData{
			GridSize: 9,
			Nodes: []model.Node{
				{ID: 12, X: 3, Y: 1},
			},
			BlockedPaths: []model.BlockedEdge{{FromID: 12, ToID: 13}},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	data, err := client.GetMapData(context.Background())
	if err != nil {
		t.Fatalf("GetMapData failed: %v", err)
	}

	if data.GridSize != 9 {
		t.Errorf("GridSize = %d, want 9", data.GridSize)
	}
	if len(data.Nodes) != 1 || data.Nodes[0].ID != 12 {
		t.Errorf("Nodes = %+v", data.Nodes)
	}
	if len(data.BlockedPaths) != 1 {
		t.Errorf("BlockedPaths = %+v", data.BlockedPaths)
	}
}

func TestClient_GetRoute(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("start_x") != "2" || q.Get("start_y") != "3" ||
			q.Get("end_x") != "4" || q.Get("end_y") != "4" {
			t.Errorf("unexpected query: %v", q)
		}
		resp := model.Route{
			Path:          []model.RoutePoint{{X: 2, Y: 3}, {X: 3, Y: 3}, {X: 4, Y: 3}, {X: 4, Y: 4}},
			Distance:      3,
			EstimatedTime: 3,
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	route, err := client.GetRoute(context.Background(),
		model.RoutePoint{X: 2, Y: 3}, model.RoutePoint{X: 4, Y: 4})
	if err != nil {
		t.Fatalf("GetRoute failed: %v", err)
	}

	if len(route.Path) != 4 {
		t.Errorf("path length = %d, want 4", len(route.Path))
	}
	if route.Distance != 3 {
		t.Errorf("Distance = %d, want 3", route.Distance)
	}
}

func TestClient_RetryOnServerError(t *testing.T) {
	var attempts atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode([]model.Order{{ID: 1, Status: model.StatusPending}})
	}))
	defer server.Close()

	client := NewClient(server.URL, WithRetries(3, 10*time.Millisecond))

	orders, err := client.GetOrders(context.Background())
	if err != nil {
		t.Fatalf("GetOrders failed: %v", err)
	}
	if len(orders) != 1 {
		t.Errorf("orders = %+v", orders)
	}
	if got := attempts.Load(); got != 3 {
		t.Errorf("attempts = %d, want 3", got)
	}
}

func TestClient_NoRetryOnClientError(t *testing.T) {
	var attempts atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient(server.URL, WithRetries(3, 10*time.Millisecond))

	_, err := client.GetOrders(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %T, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("StatusCode = %d, want 400", apiErr.StatusCode)
	}
	if got := attempts.Load(); got != 1 {
		t.Errorf("attempts = %d, want 1", got)
	}
}

func TestClient_CreateOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		q := r.URL.Query()
		if q.Get("customer_name") != "Tanaka" || q.Get("restaurant_id") != "2" ||
			q.Get("delivery_x") != "4" || q.Get("delivery_y") != "4" {
			t.Errorf("unexpected query: %v", q)
		}
		json.NewEncoder(w).Encode(model.Order{ID: 42, Status: model.StatusPending})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	order, err := client.CreateOrder(context.Background(), CreateOrderParams{
		CustomerName:    "Tanaka",
		CustomerAddress: "Shibuya 1-2-3",
		RestaurantID:    2,
		DeliveryX:       4,
		DeliveryY:       4,
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	if order.ID != 42 {
		t.Errorf("ID = %d, want 42", order.ID)
	}
}

func TestClient_ActionsNeverRetry(t *testing.T) {
	var attempts atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, WithRetries(3, 10*time.Millisecond))

	if err := client.CancelOrder(context.Background(), 7); err == nil {
		t.Fatal("expected error")
	}
	if got := attempts.Load(); got != 1 {
		t.Errorf("attempts = %d, want 1: actions must not retry", got)
	}
}

func TestClient_DeleteOrderRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Backend rejects deletes past pending.
		w.WriteHeader(http.StatusConflict)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	err := client.DeleteOrder(context.Background(), 7)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusConflict {
		t.Errorf("err = %v, want APIError 409", err)
	}
}

func TestClient_GetBots(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/bots" {
			t.Errorf("path = %q, want /api/bots", r.URL.Path)
		}
		resp := []model.Bot{
			{ID: 7, Name: "bot-7", Status: model.BotBusy, CurrentX: 2, CurrentY: 3, OrdersCount: 1},
			{ID: 8, Name: "bot-8", Status: model.BotAvailable},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	bots, err := client.GetBots(context.Background())
	if err != nil {
		t.Fatalf("GetBots failed: %v", err)
	}

	if len(bots) != 2 {
		t.Fatalf("bots = %d, want 2", len(bots))
	}
	if bots[0].Status != model.BotBusy || bots[0].OrdersCount != 1 {
		t.Errorf("bot 7 = %+v", bots[0])
	}
}

func TestClient_GetRestaurants(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/restaurants" {
			t.Errorf("path = %q, want /api/restaurants", r.URL.Path)
		}
		resp := []model.Restaurant{
			{ID: 1, Name: "Ichiraku", Type: model.Ramen, NodeID: 0, IsActive: true},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	restaurants, err := client.GetRestaurants(context.Background())
	if err != nil {
		t.Fatalf("GetRestaurants failed: %v", err)
	}

	if len(restaurants) != 1 || restaurants[0].Type != model.Ramen {
		t.Errorf("restaurants = %+v", restaurants)
	}
}
