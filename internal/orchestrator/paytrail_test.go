package orchestrator

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/checkout-relay/internal/adapter"
	"github.com/yourorg/checkout-relay/internal/session"
	"github.com/yourorg/checkout-relay/internal/token"
)

const paytrailPayment = `{"stamp":"s-1","reference":"r-1","amount":1590,"currency":"EUR","language":"FI","items":[{"unitPrice":1590,"units":1,"vatPercentage":25.5,"productCode":"p"}]}`

func paytrailInput(payment string) PaytrailInput {
	return PaytrailInput{MerchantID: "375917", SecretKey: "SAIPPUAKAUPPIAS", Payment: json.RawMessage(payment)}
}

func TestPaytrail_Validation(t *testing.T) {
	f := newFixture(t, spOnly, "")
	ctx := context.Background()

	in := paytrailInput(paytrailPayment)
	in.MerchantID = " "
	_, err := f.orch.PaytrailPayment(ctx, in)
	assertValidation(t, err, "merchantId")

	in = paytrailInput(paytrailPayment)
	in.SecretKey = ""
	_, err = f.orch.PaytrailPayment(ctx, in)
	assertValidation(t, err, "secretKey")

	_, err = f.orch.PaytrailPayment(ctx, paytrailInput(""))
	assertValidation(t, err, "payment")
	_, err = f.orch.PaytrailPayment(ctx, paytrailInput(`[1,2]`))
	assertValidation(t, err, "payment")

	_, err = f.orch.PaytrailKlarnaCharge(ctx, paytrailInput(paytrailPayment))
	assertValidation(t, err, "klarnaNetworkSessionToken")

	assert.Equal(t, 0, f.paytrail.CallCount())
}

func TestPaytrailPayment_CreatedWithKlarnaRedirect(t *testing.T) {
	f := newFixture(t, spOnly, "")
	f.paytrail.Respond(http.StatusCreated, `{
		"transactionId":"tx_1","href":"https://pay.paytrail.com/pay/tx_1","reference":"r-1",
		"providers":[
			{"id":"osuuspankki","name":"OP","group":"bank","url":"https://op.example","icon":"i","parameters":[]},
			{"id":"klarna","name":"Klarna","group":"credit","url":"https://klarna.example","icon":"k","parameters":[{"name":"checkout-transaction-id","value":"tx_1"}]}
		]}`)

	res, err := f.orch.PaytrailPayment(context.Background(), paytrailInput(paytrailPayment))
	require.NoError(t, err)
	created, ok := res.Outcome.(Created)
	require.True(t, ok)
	assert.Equal(t, "tx_1", created.TransactionID)
	assert.Equal(t, "https://pay.paytrail.com/pay/tx_1", created.Href)
	require.Len(t, created.Providers, 2)
	require.NotNil(t, created.Redirect)
	assert.Equal(t, "https://klarna.example", created.Redirect.URL)
	assert.Equal(t, http.MethodPost, created.Redirect.Method)
	assert.Equal(t, []FormParameter{{Name: "checkout-transaction-id", Value: "tx_1"}}, created.Redirect.Parameters)

	req, call, ok := f.paytrail.LastRequest()
	require.True(t, ok)
	assert.Equal(t, "/payments", req.Path)
	assert.Equal(t, "375917", call.Credentials.Account)
	assert.JSONEq(t, paytrailPayment, string(req.Body))

	raw, err := json.Marshal(res.Exchange)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "SAIPPUAKAUPPIAS")
}

func TestPaytrailPayment_FallsBackToFirstProvider(t *testing.T) {
	f := newFixture(t, spOnly, "")
	f.paytrail.Respond(http.StatusCreated, `{"transactionId":"tx_2","providers":[{"id":"nordea","url":"https://nordea.example"}]}`)
	res, err := f.orch.PaytrailPayment(context.Background(), paytrailInput(paytrailPayment))
	require.NoError(t, err)
	created := res.Outcome.(Created)
	require.NotNil(t, created.Redirect)
	assert.Equal(t, "https://nordea.example", created.Redirect.URL)
}

func TestPaytrailKlarnaCharge_InjectsToken(t *testing.T) {
	f := newFixture(t, spOnly, "")
	f.paytrail.Respond(http.StatusCreated, `{"transactionId":"tx_3"}`)

	in := paytrailInput(paytrailPayment)
	in.NetworkSessionToken = token.New(token.KindNetworkSession, "nst_9")
	res, err := f.orch.PaytrailKlarnaCharge(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, Approved{TransactionID: "tx_3"}, res.Outcome)

	req, _, _ := f.paytrail.LastRequest()
	assert.Equal(t, "/payments/klarna/charge", req.Path)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(req.Body, &body))
	assert.Equal(t, "nst_9", body["token"])
	assert.EqualValues(t, 1590, body["amount"])
	assert.True(t, in.NetworkSessionToken.Consumed())
}

func TestPaytrailAuthorizationHold_KeepsExplicitToken(t *testing.T) {
	f := newFixture(t, spOnly, "")
	f.paytrail.Respond(http.StatusOK, `{"transactionId":"tx_4"}`)

	in := paytrailInput(`{"amount":100,"token":"explicit"}`)
	in.NetworkSessionToken = token.New(token.KindNetworkSession, "nst_unused")
	_, err := f.orch.PaytrailAuthorizationHold(context.Background(), in)
	require.NoError(t, err)

	req, _, _ := f.paytrail.LastRequest()
	assert.Equal(t, "/payments/klarna/authorization-hold", req.Path)
	assert.JSONEq(t, `{"amount":100,"token":"explicit"}`, string(req.Body))
	assert.False(t, in.NetworkSessionToken.Consumed())
}

func TestPaytrail_StepUpAndErrors(t *testing.T) {
	t.Run("3ds step up", func(t *testing.T) {
		f := newFixture(t, spOnly, "")
		f.paytrail.Respond(http.StatusForbidden, `{"transactionId":"tx_5","threeDSecureUrl":"https://3ds.example"}`)
		in := paytrailInput(paytrailPayment)
		in.NetworkSessionToken = token.New(token.KindNetworkSession, "nst")
		res, err := f.orch.PaytrailKlarnaCharge(context.Background(), in)
		require.NoError(t, err)
		assert.Equal(t, StepUpRequired{TransactionID: "tx_5", PaymentRequestURL: "https://3ds.example"}, res.Outcome)
	})

	t.Run("vendor message", func(t *testing.T) {
		f := newFixture(t, spOnly, "")
		f.paytrail.Respond(http.StatusBadRequest, `{"status":"error","message":"Validation failed","meta":["amount is invalid"]}`)
		res, err := f.orch.PaytrailPayment(context.Background(), paytrailInput(paytrailPayment))
		require.NoError(t, err)
		errored, ok := res.Outcome.(Errored)
		require.True(t, ok)
		assert.Equal(t, "Validation failed", errored.Message)
		assert.Equal(t, http.StatusBadRequest, errored.HTTPStatus())
		assert.JSONEq(t, `["amount is invalid"]`, string(errored.Details))
	})

	t.Run("invalid signature", func(t *testing.T) {
		f := newFixture(t, spOnly, "")
		f.paytrail.ProcessFunc = func(_ context.Context, req adapter.Request, _ session.Call) (adapter.ProviderResult, error) {
			return adapter.ProviderResult{
				Provider:    adapter.VendorPaytrail,
				HTTPStatus:  http.StatusCreated,
				RawResponse: []byte(`{"transactionId":"tx_6"}`),
				Signature:   adapter.SignatureInvalid,
			}, nil
		}
		res, err := f.orch.PaytrailPayment(context.Background(), paytrailInput(paytrailPayment))
		require.NoError(t, err)
		errored, ok := res.Outcome.(Errored)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadGateway, errored.HTTPStatus())
		assert.Contains(t, errored.Message, "signature")
	})
}
