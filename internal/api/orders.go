package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/fastroute/console/internal/model"
)

// GetOrders fetches all orders.
func (c *Client) GetOrders(ctx context.Context) ([]model.Order, error) {
	var resp []model.Order
	if err := c.get(ctx, "/api/orders", nil, &resp); err != nil {
		return nil, fmt.Errorf("get orders: %w", err)
	}
	return resp, nil
}

// GetBots fetches all bots.
func (c *Client) GetBots(ctx context.Context) ([]model.Bot, error) {
	var resp []model.Bot
	if err := c.get(ctx, "/api/bots", nil, &resp); err != nil {
		return nil, fmt.Errorf("get bots: %w", err)
	}
	return resp, nil
}

// GetRestaurants fetches all restaurants.
func (c *Client) GetRestaurants(ctx context.Context) ([]model.Restaurant, error) {
	var resp []model.Restaurant
	if err := c.get(ctx, "/api/restaurants", nil, &resp); err != nil {
		return nil, fmt.Errorf("get restaurants: %w", err)
	}
	return resp, nil
}

// CreateOrderParams are the operator inputs for a new order.
type CreateOrderParams struct {
	CustomerName    string
	CustomerAddress string
	RestaurantID    int
	DeliveryX       int
	DeliveryY       int
}

// CreateOrder places a new order. The backend accepts parameters in the
// query string, not a request body.
func (c *Client) CreateOrder(ctx context.Context, p CreateOrderParams) (*model.Order, error) {
	query := url.Values{}
	query.Set("customer_name", p.CustomerName)
	query.Set("customer_address", p.CustomerAddress)
	query.Set("restaurant_id", strconv.Itoa(p.RestaurantID))
	query.Set("delivery_x", strconv.Itoa(p.DeliveryX))
	query.Set("delivery_y", strconv.Itoa(p.DeliveryY))

	var resp model.Order
	if err := c.act(ctx, http.MethodPost, "/api/orders", query, &resp); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return &resp, nil
}

// UpdateOrderStatus advances an order to the given lifecycle status.
func (c *Client) UpdateOrderStatus(ctx context.Context, orderID int, status model.OrderStatus) error {
	path := fmt.Sprintf("/api/orders/%d/status/%s", orderID, status)
	if err := c.act(ctx, http.MethodPut, path, nil, nil); err != nil {
		return fmt.Errorf("update order %d status: %w", orderID, err)
	}
	return nil
}

// CancelOrder cancels an order.
func (c *Client) CancelOrder(ctx context.Context, orderID int) error {
	path := fmt.Sprintf("/api/orders/%d/cancel", orderID)
	if err := c.act(ctx, http.MethodPost, path, nil, nil); err != nil {
		return fmt.Errorf("cancel order %d: %w", orderID, err)
	}
	return nil
}

// DeleteOrder deletes an order. The backend rejects deletes for orders
// past pending; the APIError is returned to the caller unchanged.
func (c *Client) DeleteOrder(ctx context.Context, orderID int) error {
	path := fmt.Sprintf("/api/orders/%d", orderID)
	if err := c.act(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("delete order %d: %w", orderID, err)
	}
	return nil
}
