package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	orderapp "github.com/ikkasa/orderhub/internal/application/order"
	"github.com/ikkasa/orderhub/internal/domain/order"
	"github.com/ikkasa/orderhub/internal/domain/shared"
	"github.com/ikkasa/orderhub/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type routeRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

func newTestEngine(h routeRegistrar) *gin.Engine {
	r := gin.New()
	h.RegisterRoutes(r.Group("/api/v1"))
	return r
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestOrderHandler_Create(t *testing.T) {
	svc := new(MockOrderService)
	r := newTestEngine(NewOrderHandler(svc))

	created := &orderapp.OrderResponse{ID: uuid.New(), OrderID: "S-1", Status: order.StatusNew}
	svc.On("Create", mock.Anything, mock.MatchedBy(func(p order.Patch) bool {
		id, _ := p.OrderID.Get()
		return id == "S-1" && !p.ShopifyID.IsPresent()
	})).Return(created, nil)

	w := doJSON(r, http.MethodPost, "/api/v1/orders", `{"orderId":"S-1","customerName":"Asha"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp struct {
		Success bool                   `json:"success"`
		Data    orderapp.OrderResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "S-1", resp.Data.OrderID)
	svc.AssertExpectations(t)
}

func TestOrderHandler_Create_InvalidJSON(t *testing.T) {
	svc := new(MockOrderService)
	r := newTestEngine(NewOrderHandler(svc))

	w := doJSON(r, http.MethodPost, "/api/v1/orders", `{"orderId":`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeBadRequest, decodeError(t, w).Error.Code)
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestOrderHandler_Create_ValidationError(t *testing.T) {
	svc := new(MockOrderService)
	r := newTestEngine(NewOrderHandler(svc))
	svc.On("Create", mock.Anything, mock.Anything).
		Return(nil, order.NewValidationError("orderId", "orderId or shopifyId is required"))

	w := doJSON(r, http.MethodPost, "/api/v1/orders", `{"customerName":"Asha"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, dto.ErrCodeValidation, body.Error.Code)
	assert.JSONEq(t, `{"field":"orderId"}`, string(body.Error.Details))
}

func TestOrderHandler_List(t *testing.T) {
	svc := new(MockOrderService)
	r := newTestEngine(NewOrderHandler(svc))
	svc.On("List", mock.Anything, 2, 10).Return(&orderapp.ListResponse{
		Total:  25,
		Page:   2,
		Limit:  10,
		Orders: []orderapp.OrderResponse{{OrderID: "S-11"}},
	}, nil)

	w := doJSON(r, http.MethodGet, "/api/v1/orders?page=2&limit=10", "")

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data orderapp.ListResponse `json:"data"`
		Meta dto.Meta              `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(25), resp.Data.Total)
	assert.Len(t, resp.Data.Orders, 1)
	assert.Equal(t, 3, resp.Meta.TotalPages)
}

func TestOrderHandler_List_NonNumericQueryUsesDefaults(t *testing.T) {
	svc := new(MockOrderService)
	r := newTestEngine(NewOrderHandler(svc))
	svc.On("List", mock.Anything, 0, 0).Return(&orderapp.ListResponse{
		Page:   orderapp.DefaultPage,
		Limit:  orderapp.DefaultLimit,
		Orders: []orderapp.OrderResponse{},
	}, nil)

	w := doJSON(r, http.MethodGet, "/api/v1/orders?page=abc", "")

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestOrderHandler_Get(t *testing.T) {
	id := uuid.New()
	tests := []struct {
		name           string
		path           string
		setup          func(*MockOrderService)
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "found",
			path: "/api/v1/orders/" + id.String(),
			setup: func(m *MockOrderService) {
				m.On("Get", mock.Anything, id).Return(&orderapp.OrderResponse{ID: id}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "not found",
			path: "/api/v1/orders/" + id.String(),
			setup: func(m *MockOrderService) {
				m.On("Get", mock.Anything, id).Return(nil, shared.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedCode:   dto.ErrCodeNotFound,
		},
		{
			name:           "malformed id",
			path:           "/api/v1/orders/not-a-uuid",
			setup:          func(*MockOrderService) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   dto.ErrCodeBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockOrderService)
			tt.setup(svc)
			r := newTestEngine(NewOrderHandler(svc))

			w := doJSON(r, http.MethodGet, tt.path, "")

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				body := decodeError(t, w)
				assert.Equal(t, tt.expectedCode, body.Error.Code)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestOrderHandler_Get_NotFoundMessage(t *testing.T) {
	id := uuid.New()
	svc := new(MockOrderService)
	svc.On("Get", mock.Anything, id).Return(nil, shared.ErrNotFound)
	r := newTestEngine(NewOrderHandler(svc))

	w := doJSON(r, http.MethodGet, "/api/v1/orders/"+id.String(), "")

	assert.Equal(t, "Order not found", decodeError(t, w).Error.Message)
}

func TestOrderHandler_Update_AbsentKeysStayAbsent(t *testing.T) {
	id := uuid.New()
	svc := new(MockOrderService)
	svc.On("Update", mock.Anything, id, mock.MatchedBy(func(p order.Patch) bool {
		city, ok := p.City.Get()
		return ok && city == "Pune" && !p.CustomerName.IsPresent() && !p.Products.IsPresent()
	})).Return(&orderapp.OrderResponse{ID: id, City: "Pune"}, nil)
	r := newTestEngine(NewOrderHandler(svc))

	w := doJSON(r, http.MethodPut, "/api/v1/orders/"+id.String(), `{"city":"Pune"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestOrderHandler_Update_NotFound(t *testing.T) {
	id := uuid.New()
	svc := new(MockOrderService)
	svc.On("Update", mock.Anything, id, mock.Anything).Return(nil, shared.ErrNotFound)
	r := newTestEngine(NewOrderHandler(svc))

	w := doJSON(r, http.MethodPut, "/api/v1/orders/"+id.String(), `{"city":"Pune"}`)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOrderHandler_Delete(t *testing.T) {
	id := uuid.New()
	svc := new(MockOrderService)
	svc.On("Delete", mock.Anything, id).Return(nil)
	r := newTestEngine(NewOrderHandler(svc))

	w := doJSON(r, http.MethodDelete, "/api/v1/orders/"+id.String(), "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "Order deleted"))
	svc.AssertExpectations(t)
}

func TestOrderHandler_Delete_NotFound(t *testing.T) {
	id := uuid.New()
	svc := new(MockOrderService)
	svc.On("Delete", mock.Anything, id).Return(shared.ErrNotFound)
	r := newTestEngine(NewOrderHandler(svc))

	w := doJSON(r, http.MethodDelete, "/api/v1/orders/"+id.String(), "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Order not found", decodeError(t, w).Error.Message)
}
