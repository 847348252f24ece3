package storeapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Wjwesley1/queen-store-frontend/internal/domain"
	"github.com/Wjwesley1/queen-store-frontend/internal/profile"
	"github.com/Wjwesley1/queen-store-frontend/internal/session"
	apperrors "github.com/Wjwesley1/queen-store-frontend/pkg/errors"
	"github.com/Wjwesley1/queen-store-frontend/pkg/httpclient"
	"github.com/Wjwesley1/queen-store-frontend/pkg/logger"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

type staticTokens string

func (s staticTokens) BearerToken(context.Context) string { return string(s) }

// recorded captures what the fake backend saw.
type recorded struct {
	mu       sync.Mutex
	requests []*http.Request
	bodies   []string
}

func (r *recorded) add(req *http.Request) {
	body, _ := io.ReadAll(req.Body)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, req)
	r.bodies = append(r.bodies, string(body))
}

func (r *recorded) last() (*http.Request, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.requests)
	return r.requests[n-1], r.bodies[n-1]
}

func setup(t *testing.T, tokens session.TokenSource, handler http.HandlerFunc) (*Client, *recorded, string) {
	t.Helper()
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.add(r)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	sessions := session.NewProvider(profile.NewMemoryStore(), newTestLogger())
	sc := session.NewContext(sessions, tokens)
	c := New(httpclient.New(httpclient.DefaultConfig()), srv.URL+"/", sc, newTestLogger())
	return c, rec, sessions.GetOrCreate(context.Background())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ---------------------------------------------------------------------------
// Headers
// ---------------------------------------------------------------------------

func TestClient_SendsSessionHeaderAndNoAuthWhenAnonymous(t *testing.T) {
	c, rec, sid := setup(t, nil, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, []any{})
	})

	_, err := c.ListCart(context.Background())
	require.NoError(t, err)

	req, _ := rec.last()
	assert.Equal(t, sid, req.Header.Get("X-Session-Id"))
	assert.Empty(t, req.Header.Get("Authorization"))
	assert.NotEmpty(t, req.Header.Get("X-Correlation-ID"))
}

func TestClient_SendsBearerAndCorrelationID(t *testing.T) {
	c, rec, _ := setup(t, staticTokens("jwt-123"), func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, []any{})
	})

	ctx := logger.WithCorrelationID(context.Background(), "corr-1")
	_, err := c.ListProducts(ctx)
	require.NoError(t, err)

	req, _ := rec.last()
	assert.Equal(t, "Bearer jwt-123", req.Header.Get("Authorization"))
	assert.Equal(t, "corr-1", req.Header.Get("X-Correlation-ID"))
	assert.Equal(t, "/api/produtos", req.URL.Path)
}

func TestClient_WithTokensLeavesOriginalAnonymous(t *testing.T) {
	anon, rec, sessionID := setup(t, nil, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, []any{})
	})
	authed := anon.WithTokens(staticTokens("jwt-9"))
	ctx := context.Background()

	_, err := authed.ListProducts(ctx)
	require.NoError(t, err)
	req, _ := rec.last()
	assert.Equal(t, "Bearer jwt-9", req.Header.Get("Authorization"))
	assert.Equal(t, sessionID, req.Header.Get("X-Session-Id"))

	_, err = anon.ListProducts(ctx)
	require.NoError(t, err)
	req, _ = rec.last()
	assert.Empty(t, req.Header.Get("Authorization"))
}

// ---------------------------------------------------------------------------
// Cart
// ---------------------------------------------------------------------------

func TestListCart_DecodesArrayAndDropsInvalidLines(t *testing.T) {
	c, _, _ := setup(t, nil, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[
			{"produto_id":1,"nome":"Sérum","preco":"10.50","quantidade":2},
			{"id":2,"nome":"Batom","preco":20,"quantidade":1},
			{"produto_id":3,"nome":"Ghost","preco":"5.00","quantidade":0}
		]`))
	})

	cart, err := c.ListCart(context.Background())
	require.NoError(t, err)
	require.Len(t, cart.Lines, 2)
	assert.Equal(t, 2, cart.Lines[1].ProductID)
	assert.Equal(t, "41.00", cart.Total().String())
}

func TestListCart_DecodesEnvelope(t *testing.T) {
	c, _, _ := setup(t, nil, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"itens":[{"produto_id":1,"nome":"A","preco":1,"quantidade":1}]}`))
	})

	cart, err := c.ListCart(context.Background())
	require.NoError(t, err)
	assert.Len(t, cart.Lines, 1)
}

func TestListCart_NullIsEmpty(t *testing.T) {
	c, _, _ := setup(t, nil, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`null`))
	})

	cart, err := c.ListCart(context.Background())
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
}

func TestListCart_Garbage(t *testing.T) {
	c, _, _ := setup(t, nil, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`"nope"`))
	})

	_, err := c.ListCart(context.Background())
	assert.Error(t, err)
}

func TestAddCartLine_Body(t *testing.T) {
	c, rec, _ := setup(t, nil, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusCreated, map[string]bool{"sucesso": true})
	})

	require.NoError(t, c.AddCartLine(context.Background(), 7, 2))

	req, body := rec.last()
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/api/carrinho", req.URL.Path)
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	assert.JSONEq(t, `{"produto_id":7,"quantidade":2}`, body)
}

func TestAddCartLine_RejectsBadInputLocally(t *testing.T) {
	c, rec, _ := setup(t, nil, func(w http.ResponseWriter, _ *http.Request) {})

	err := c.AddCartLine(context.Background(), 7, 0)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	err = c.UpdateCartLine(context.Background(), 7, -1)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	assert.Empty(t, rec.requests)
}

func TestUpdateAndDeleteCartLine(t *testing.T) {
	c, rec, _ := setup(t, nil, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	ctx := context.Background()

	require.NoError(t, c.UpdateCartLine(ctx, 4, 3))
	req, body := rec.last()
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "/api/carrinho/4", req.URL.Path)
	assert.JSONEq(t, `{"quantidade":3}`, body)

	require.NoError(t, c.DeleteCartLine(ctx, 4))
	req, _ = rec.last()
	assert.Equal(t, http.MethodDelete, req.Method)
	assert.Equal(t, "/api/carrinho/4", req.URL.Path)
}

func TestMutation_ServerErrorMapsToAppError(t *testing.T) {
	c, _, _ := setup(t, nil, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"erro": "Erro ao adicionar"})
	})

	err := c.AddCartLine(context.Background(), 1, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInternal))
	assert.Contains(t, err.Error(), "Erro ao adicionar")
}

// ---------------------------------------------------------------------------
// Orders
// ---------------------------------------------------------------------------

func TestCreateOrder(t *testing.T) {
	c, rec, _ := setup(t, nil, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusCreated, map[string]any{"sucesso": true, "id": 15})
	})

	draft := domain.NewOrderDraft(
		domain.Cart{Lines: []domain.CartLine{{ProductID: 1, Name: "A", UnitPrice: domain.MustPrice("10"), Quantity: 2}}},
		domain.ContactInfo{Name: "Ana", WhatsApp: "11999999999"},
	)
	created, err := c.CreateOrder(context.Background(), draft)
	require.NoError(t, err)
	assert.Equal(t, domain.FlexibleID("15"), created.ID)

	_, body := rec.last()
	assert.JSONEq(t, `{"cliente_nome":"Ana","cliente_whatsapp":"11999999999","itens":[{"produto_id":1,"nome":"A","quantidade":2,"preco":10.00}],"valor_total":20.00}`, body)
}

func TestCreateOrder_AnySuccessStatusIsRecorded(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		wantID domain.FlexibleID
	}{
		{name: "201 empty body", status: http.StatusCreated, body: ""},
		{name: "200 empty object", status: http.StatusOK, body: "{}"},
		{name: "201 message only", status: http.StatusCreated, body: `{"mensagem":"ok"}`},
		{name: "201 id without sucesso", status: http.StatusCreated, body: `{"id":"abc"}`, wantID: "abc"},
		{name: "204 no content", status: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _, _ := setup(t, nil, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			created, err := c.CreateOrder(context.Background(), domain.OrderDraft{})
			require.NoError(t, err)
			assert.True(t, created.Success)
			assert.Equal(t, tt.wantID, created.ID)
		})
	}
}

func TestCreateOrder_NotAccepted(t *testing.T) {
	c, _, _ := setup(t, nil, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"sucesso": false, "erro": "sem estoque"})
	})

	_, err := c.CreateOrder(context.Background(), domain.OrderDraft{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sem estoque")
}

func TestListCustomerOrders_RequiresToken(t *testing.T) {
	c, rec, _ := setup(t, nil, func(w http.ResponseWriter, _ *http.Request) {})

	_, err := c.ListCustomerOrders(context.Background())
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
	assert.Empty(t, rec.requests)
}

func TestListCustomerOrders(t *testing.T) {
	c, _, _ := setup(t, staticTokens("jwt"), func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id":1,"status":"pendente","valor_total":"30.00","itens":"[{\"nome\":\"A\",\"quantidade\":1,\"preco\":30}]"}]`))
	})

	orders, err := c.ListCustomerOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "30.00", orders[0].Total.String())
	assert.Len(t, orders[0].Items, 1)
}

// ---------------------------------------------------------------------------
// Auth and contact
// ---------------------------------------------------------------------------

func TestLogin_Unauthorized(t *testing.T) {
	c, _, _ := setup(t, nil, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"erro": "Email ou senha incorretos"})
	})

	_, err := c.Login(context.Background(), domain.Credentials{Email: "a@b.co", Password: "x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
	assert.Contains(t, err.Error(), "Email ou senha incorretos")
}

func TestRegister_DoesNotSendConfirmation(t *testing.T) {
	c, rec, _ := setup(t, nil, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusCreated, map[string]any{"sucesso": true})
	})

	_, err := c.Register(context.Background(), domain.Registration{Name: "Ana", Email: "a@b.co", Password: "123456", PasswordConfirm: "123456"})
	require.NoError(t, err)
	_, body := rec.last()
	assert.JSONEq(t, `{"nome":"Ana","email":"a@b.co","senha":"123456"}`, body)
}

func TestVerifyAccount_EscapesToken(t *testing.T) {
	c, rec, _ := setup(t, nil, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"sucesso": true})
	})

	_, err := c.VerifyAccount(context.Background(), "a/b")
	require.NoError(t, err)
	req, _ := rec.last()
	assert.Equal(t, "/api/auth/verify/a%2Fb", req.URL.RawPath)
}

func TestSubscribeAndResend(t *testing.T) {
	c, rec, _ := setup(t, nil, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"sucesso": true, "mensagem": "ok"})
	})
	ctx := context.Background()

	ack, err := c.Subscribe(ctx, domain.Subscription{Email: "a@b.co"})
	require.NoError(t, err)
	assert.Equal(t, "ok", ack.Message)
	req, body := rec.last()
	assert.Equal(t, "/api/contato", req.URL.Path)
	assert.JSONEq(t, `{"email":"a@b.co"}`, body)

	_, err = c.ResendVerification(ctx, "a@b.co")
	require.NoError(t, err)
	req, _ = rec.last()
	assert.Equal(t, "/api/auth/resend-verification", req.URL.Path)
}

func TestPing(t *testing.T) {
	c, _, _ := setup(t, nil, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"erro": "down"})
	})
	err := c.Ping(context.Background())
	assert.True(t, errors.Is(err, apperrors.ErrServiceUnavail))
}

func TestCircuitOpenFallback(t *testing.T) {
	resp, err := CircuitOpenFallback(context.Background(), httpclient.ErrCircuitOpen)
	assert.Nil(t, resp)
	assert.True(t, errors.Is(err, apperrors.ErrServiceUnavail))
}

func TestBaseURLTrimsSlash(t *testing.T) {
	c, _, _ := setup(t, nil, func(w http.ResponseWriter, _ *http.Request) {})
	assert.False(t, strings.HasSuffix(c.BaseURL(), "/"))
}
