package relay

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/yourorg/checkout-relay/internal/model"
	"github.com/yourorg/checkout-relay/internal/monitor"
	"github.com/yourorg/checkout-relay/internal/orchestrator"
)

type identityTokenBody struct {
	Country  string `json:"country" binding:"omitempty,len=2"`
	AuthMode string `json:"authMode"`
}

type interopTestTokenBody struct {
	CustomerJourney string `json:"customerJourney" binding:"required"`
	Country         string `json:"country" binding:"omitempty,len=2"`
	AuthMode        string `json:"authMode"`
}

type interopSDKTokenBody struct {
	InteroperabilityToken string `json:"interoperabilityToken" binding:"required"`
	AuthMode              string `json:"authMode"`
}

type paymentBody struct {
	PaymentRequestData        *model.PaymentRequestData `json:"paymentRequestData"`
	PaymentOptionID           string                    `json:"paymentOptionId"`
	KlarnaNetworkSessionToken string                    `json:"klarnaNetworkSessionToken"`
	ReturnURL                 string                    `json:"returnUrl" binding:"omitempty,url"`
	Country                   string                    `json:"country" binding:"omitempty,len=2"`
	UseCustomerToken          bool                      `json:"useCustomerToken"`
	AuthMode                  string                    `json:"authMode"`
}

type paytrailBody struct {
	MerchantID                string          `json:"merchantId" binding:"required"`
	SecretKey                 string          `json:"secretKey" binding:"required"`
	Payment                   json.RawMessage `json:"payment" binding:"required"`
	KlarnaNetworkSessionToken string          `json:"klarnaNetworkSessionToken"`
}

var registerOnce sync.Once

// registerJSONFieldNames makes validator report json names instead of Go
// field names.
func registerJSONFieldNames() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

// bind checks the raw body against schema (when set) and binds it into dst.
func (s *Server) bind(c *gin.Context, schema string, dst interface{}) error {
	raw, err := c.GetRawData()
	if err != nil {
		return &orchestrator.ValidationError{Message: "unreadable request body"}
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		raw = []byte(`{}`)
	}
	if cm, ok := s.monitors[schema]; ok {
		valid, errs, err := cm.Validate(raw)
		if err != nil {
			return &orchestrator.ValidationError{Message: "request body is not valid JSON"}
		}
		if !valid {
			return &orchestrator.ValidationError{
				Message: "request body does not match " + cm.Name() + ": " + monitor.FormatErrors(errs),
				Details: errs,
			}
		}
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(raw))
	if err := c.ShouldBindJSON(dst); err != nil {
		return bindingError(err)
	}
	return nil
}

func bindingError(err error) *orchestrator.ValidationError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &orchestrator.ValidationError{Message: "invalid request body: " + err.Error()}
	}
	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, describe(fe))
	}
	return &orchestrator.ValidationError{Field: verrs[0].Field(), Message: "invalid request body", Details: details}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "len":
		return fmt.Sprintf("%s must be %s characters long", fe.Field(), fe.Param())
	case "url":
		return fe.Field() + " must be an absolute URL"
	default:
		return fmt.Sprintf("%s failed the %s check", fe.Field(), fe.Tag())
	}
}
