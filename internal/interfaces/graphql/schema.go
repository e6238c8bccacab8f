// Package graphql exposes the order operations over a GraphQL schema built
// with graphql-go.
package graphql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/graphql-go/graphql"
	orderapp "github.com/ikkasa/orderhub/internal/application/order"
	"github.com/ikkasa/orderhub/internal/domain/order"
)

// OrderService is the order surface the resolvers depend on
type OrderService interface {
	Create(ctx context.Context, input order.Patch) (*orderapp.OrderResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*orderapp.OrderResponse, error)
	List(ctx context.Context, page, limit int) (*orderapp.ListResponse, error)
	Update(ctx context.Context, id uuid.UUID, input order.Patch) (*orderapp.OrderResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// SyncService is the Shopify sync surface the resolvers depend on
type SyncService interface {
	Sync(ctx context.Context, api string, mode orderapp.SyncMode) (*orderapp.SyncResult, error)
}

type resolver struct {
	orders OrderService
	sync   SyncService
}

// NewSchema builds the order schema. sync may be nil, in which case
// syncOrders is not exposed.
func NewSchema(orders OrderService, sync SyncService) (graphql.Schema, error) {
	r := &resolver{orders: orders, sync: sync}

	idArg := &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)}
	inputArg := &graphql.ArgumentConfig{Type: graphql.NewNonNull(orderInputType)}
	orderList := graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(orderType)))

	queryFields := graphql.Fields{
		"orders": &graphql.Field{
			Type: orderList,
			Args: graphql.FieldConfigArgument{
				"page":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: orderapp.DefaultPage},
				"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: orderapp.DefaultLimit},
			},
			Resolve: r.listOrders,
		},
		"order": &graphql.Field{
			Type:    orderType,
			Args:    graphql.FieldConfigArgument{"id": idArg},
			Resolve: r.getOrder,
		},
	}
	if sync != nil {
		queryFields["syncOrders"] = &graphql.Field{
			Type:        orderList,
			Description: "Pull orders from Shopify with the configured API and mode",
			Resolve:     r.syncOrders,
		}
	}

	mutationFields := graphql.Fields{
		"createOrder": &graphql.Field{
			Type:    orderType,
			Args:    graphql.FieldConfigArgument{"input": inputArg},
			Resolve: r.createOrder,
		},
		"updateOrder": &graphql.Field{
			Type:    orderType,
			Args:    graphql.FieldConfigArgument{"id": idArg, "input": inputArg},
			Resolve: r.updateOrder,
		},
		"deleteOrder": &graphql.Field{
			Type:    graphql.Boolean,
			Args:    graphql.FieldConfigArgument{"id": idArg},
			Resolve: r.deleteOrder,
		},
	}

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    graphql.NewObject(graphql.ObjectConfig{Name: "Query", Fields: queryFields}),
		Mutation: graphql.NewObject(graphql.ObjectConfig{Name: "Mutation", Fields: mutationFields}),
	})
}

func (r *resolver) listOrders(p graphql.ResolveParams) (any, error) {
	page, _ := p.Args["page"].(int)
	limit, _ := p.Args["limit"].(int)
	resp, err := r.orders.List(p.Context, page, limit)
	if err != nil {
		return nil, toGraphQLError(p.Context, err)
	}
	return resp.Orders, nil
}

func (r *resolver) getOrder(p graphql.ResolveParams) (any, error) {
	id, err := parseID(p.Args["id"])
	if err != nil {
		return nil, toGraphQLError(p.Context, err)
	}
	resp, err := r.orders.Get(p.Context, id)
	if err != nil {
		return nil, toGraphQLError(p.Context, err)
	}
	return *resp, nil
}

func (r *resolver) syncOrders(p graphql.ResolveParams) (any, error) {
	result, err := r.sync.Sync(p.Context, "", "")
	if err != nil {
		return nil, toGraphQLError(p.Context, err)
	}
	return result.Orders, nil
}

func (r *resolver) createOrder(p graphql.ResolveParams) (any, error) {
	patch, err := patchFromInput(p.Args["input"])
	if err != nil {
		return nil, toGraphQLError(p.Context, err)
	}
	resp, err := r.orders.Create(p.Context, patch)
	if err != nil {
		return nil, toGraphQLError(p.Context, err)
	}
	return *resp, nil
}

func (r *resolver) updateOrder(p graphql.ResolveParams) (any, error) {
	id, err := parseID(p.Args["id"])
	if err != nil {
		return nil, toGraphQLError(p.Context, err)
	}
	patch, err := patchFromInput(p.Args["input"])
	if err != nil {
		return nil, toGraphQLError(p.Context, err)
	}
	resp, err := r.orders.Update(p.Context, id, patch)
	if err != nil {
		return nil, toGraphQLError(p.Context, err)
	}
	return *resp, nil
}

func (r *resolver) deleteOrder(p graphql.ResolveParams) (any, error) {
	id, err := parseID(p.Args["id"])
	if err != nil {
		return nil, toGraphQLError(p.Context, err)
	}
	if err := r.orders.Delete(p.Context, id); err != nil {
		return nil, toGraphQLError(p.Context, err)
	}
	return true, nil
}

func parseID(v any) (uuid.UUID, error) {
	s, _ := v.(string)
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, order.NewValidationError("id", "must be a UUID")
	}
	return id, nil
}

// patchFromInput converts a coerced OrderInput into a Patch. graphql-go drops
// input keys that were not supplied, so they stay absent in the Patch.
func patchFromInput(v any) (order.Patch, error) {
	var p order.Patch
	raw, err := json.Marshal(v)
	if err != nil {
		return p, fmt.Errorf("encode order input: %w", err)
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return p, order.NewValidationError("input", err.Error())
	}
	return p, nil
}
